// Package app wires configuration into the reminder services shared by the
// server and the operator CLI.
package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/meetreminder/meetreminder/internal/calendar"
	"github.com/meetreminder/meetreminder/internal/config"
	"github.com/meetreminder/meetreminder/internal/database"
	"github.com/meetreminder/meetreminder/internal/email"
	"github.com/meetreminder/meetreminder/internal/googleapi"
	"github.com/meetreminder/meetreminder/internal/logger"
	"github.com/meetreminder/meetreminder/internal/repository"
	"github.com/meetreminder/meetreminder/internal/service"
	"github.com/meetreminder/meetreminder/internal/template"
	"github.com/meetreminder/meetreminder/internal/trigger"
)

// App holds the connected stores and services
type App struct {
	DB         database.SQL
	Redis      *database.Redis
	Triggers   trigger.Registry
	Scheduler  *service.SchedulerService
	Dispatcher *service.DispatchService
	Mail       *service.MailService
}

// New connects the stores and builds every service. The caller must Close
// the returned App.
func New(ctx context.Context, cfg *config.Config, log *logger.Logger) (*App, error) {
	loc, err := cfg.Reminder.Location()
	if err != nil {
		return nil, err
	}

	db, err := database.Open(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	a := &App{DB: db}
	log.Info().Str("driver", string(db.Dialect())).Msg("connected to reminder store")

	if err := database.MigrateUp(db); err != nil {
		a.Close()
		return nil, err
	}

	a.Triggers = trigger.NewMemoryRegistry()
	if cfg.Redis.Enabled {
		rdb, err := database.NewRedis(ctx, cfg.Redis)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("failed to connect to Redis: %w", err)
		}
		a.Redis = rdb
		a.Triggers = trigger.NewRedisRegistry(rdb)
		log.Info().Msg("connected to Redis")
	}

	httpClient, err := googleapi.NewHTTPClient(ctx, cfg.Google)
	if err != nil {
		a.Close()
		return nil, err
	}

	senderAddress := cfg.Email.SenderAddress
	if senderAddress == "" {
		senderAddress = cfg.Google.OwnerAddress
	}
	gmailClient, err := email.NewGmailClient(ctx, httpClient, email.GmailConfig{
		SenderAddress: senderAddress,
		SenderName:    cfg.Email.SenderName,
	})
	if err != nil {
		a.Close()
		return nil, err
	}

	var sender email.Sender = gmailClient
	switch strings.ToLower(cfg.Email.Provider) {
	case "", "gmail":
	case "sendgrid":
		sender, err = email.NewSendGridSender(email.SendGridConfig{
			APIKey:        cfg.Email.SendGrid.APIKey,
			SenderAddress: senderAddress,
			SenderName:    cfg.Email.SenderName,
		})
		if err != nil {
			a.Close()
			return nil, err
		}
	default:
		a.Close()
		return nil, fmt.Errorf("unsupported email provider %q", cfg.Email.Provider)
	}
	log.Info().Str("provider", cfg.Email.Provider).Msg("email sender initialized")

	events, err := calendar.NewGoogleCalendar(ctx, httpClient)
	if err != nil {
		a.Close()
		return nil, err
	}

	store := repository.NewReminderRepository(db, cfg.Reminder.SentFormat, loc)

	a.Scheduler = service.NewSchedulerService(store, a.Triggers, cfg.Reminder.TriggerInterval, log)
	a.Dispatcher = service.NewDispatchService(
		store,
		template.NewDraftSource(gmailClient),
		calendar.NewLivenessChecker(events),
		sender,
		service.DispatchConfig{
			CalendarID:   cfg.Calendar.ID,
			DraftSubject: cfg.Reminder.DraftSubject,
			LeadWindow:   cfg.Reminder.LeadWindow,
			SentFormat:   cfg.Reminder.SentFormat,
			Location:     loc,
		},
		log,
	).WithRunLog(repository.NewDispatchRunRepository(db))
	a.Mail = service.NewMailService(sender, gmailClient, service.MailConfig{
		ReportRecipient: cfg.Report.Recipient,
		DefaultSubject:  cfg.Report.DefaultSubject,
		InboxQuery:      cfg.Inbox.Query,
	}, log)

	return a, nil
}

// Close releases the store connections
func (a *App) Close() {
	if a.Redis != nil {
		_ = a.Redis.Close()
	}
	if a.DB != nil {
		_ = a.DB.Close()
	}
}
