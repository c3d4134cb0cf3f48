package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/meetreminder/meetreminder/internal/email"
	"github.com/meetreminder/meetreminder/internal/logger"
	"github.com/meetreminder/meetreminder/internal/model"
	"github.com/meetreminder/meetreminder/internal/template"
)

// LivenessWindow is the width of the calendar window a meeting must start in.
const LivenessWindow = time.Minute

// Liveness confirms a meeting is still on the calendar
type Liveness interface {
	IsStillScheduled(ctx context.Context, calendarID string, start, end time.Time, title, attendee string) (bool, error)
}

// RunLog stores the history of dispatch cycles
type RunLog interface {
	Create(ctx context.Context, run *model.DispatchRun) error
	ListRecent(ctx context.Context, limit int) ([]model.DispatchRun, error)
}

// DispatchConfig holds dispatch settings
type DispatchConfig struct {
	CalendarID   string
	DraftSubject string
	LeadWindow   time.Duration
	SentFormat   string
	Location     *time.Location
}

// DispatchResult summarises one dispatch cycle
type DispatchResult struct {
	Processed int `json:"processed"`
	Sent      int `json:"sent"`
	Cancelled int `json:"cancelled"`
	Failed    int `json:"failed"`
}

// DispatchService runs dispatch cycles over the reminder table. Cycles are
// serialised: the trigger runner, the API and the CLI share one instance.
type DispatchService struct {
	cycle sync.Mutex

	store     ReminderStore
	templates template.Source
	liveness  Liveness
	sender    email.Sender
	runs      RunLog
	cfg       DispatchConfig
	now       func() time.Time
	log       *logger.Logger
}

// NewDispatchService creates a new DispatchService
func NewDispatchService(
	store ReminderStore,
	templates template.Source,
	liveness Liveness,
	sender email.Sender,
	cfg DispatchConfig,
	log *logger.Logger,
) *DispatchService {
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	if cfg.LeadWindow <= 0 {
		cfg.LeadWindow = 6 * time.Minute
	}
	if cfg.SentFormat == "" {
		cfg.SentFormat = "2006-01-02 15:04"
	}
	return &DispatchService{
		store:     store,
		templates: templates,
		liveness:  liveness,
		sender:    sender,
		cfg:       cfg,
		now:       time.Now,
		log:       log.WithComponent("dispatch_service"),
	}
}

// WithRunLog records every cycle in runs
func (s *DispatchService) WithRunLog(runs RunLog) *DispatchService {
	s.runs = runs
	return s
}

// Dispatch runs one cycle: every due reminder is checked against the
// calendar and then sent or cancelled, and the status column is written back
// once at the end.
func (s *DispatchService) Dispatch(ctx context.Context) (DispatchResult, error) {
	s.cycle.Lock()
	defer s.cycle.Unlock()

	result, err := s.dispatch(ctx)
	s.record(ctx, result, err)
	return result, err
}

// RecentRuns returns the newest recorded cycles
func (s *DispatchService) RecentRuns(ctx context.Context, limit int) ([]model.DispatchRun, error) {
	if s.runs == nil {
		return []model.DispatchRun{}, nil
	}
	runs, err := s.runs.ListRecent(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to read dispatch history: %w", err)
	}
	if runs == nil {
		runs = []model.DispatchRun{}
	}
	return runs, nil
}

func (s *DispatchService) record(ctx context.Context, result DispatchResult, cycleErr error) {
	if s.runs == nil {
		return
	}
	run := &model.DispatchRun{
		Processed: result.Processed,
		Sent:      result.Sent,
		Cancelled: result.Cancelled,
		Failed:    result.Failed,
		Metadata:  map[string]string{"template": s.cfg.DraftSubject},
		CreatedAt: s.now(),
	}
	if cycleErr != nil {
		run.Error = cycleErr.Error()
	}
	if err := s.runs.Create(ctx, run); err != nil {
		s.log.Error().Err(err).Msg("failed to record dispatch run")
	}
}

func (s *DispatchService) dispatch(ctx context.Context) (DispatchResult, error) {
	var result DispatchResult

	bundle, err := s.templates.ResolveBySubject(ctx, s.cfg.DraftSubject)
	if err != nil {
		s.log.Error().Err(err).Str("subject", s.cfg.DraftSubject).Msg("dispatch aborted: template unavailable")
		return result, fmt.Errorf("failed to resolve template: %w", err)
	}

	rows, err := s.store.List(ctx)
	if err != nil {
		return result, fmt.Errorf("failed to read reminders: %w", err)
	}

	statuses := make([]model.Status, len(rows))
	for i := range rows {
		row := &rows[i]
		result.Processed++

		next := s.decide(ctx, bundle, row)
		statuses[i] = next
		if !row.Status.IsPending() || next.IsPending() {
			continue
		}
		switch next.Kind {
		case model.StatusSent:
			result.Sent++
		case model.StatusCancelled:
			result.Cancelled++
		case model.StatusFailed:
			result.Failed++
		}
	}

	if len(statuses) > 0 {
		if _, err := s.store.WriteStatusColumn(ctx, statuses); err != nil {
			return result, fmt.Errorf("failed to write statuses: %w", err)
		}
	}

	s.log.Info().
		Int("processed", result.Processed).
		Int("sent", result.Sent).
		Int("cancelled", result.Cancelled).
		Int("failed", result.Failed).
		Msg("dispatch cycle finished")
	return result, nil
}

// decide returns the status row should carry after this cycle.
func (s *DispatchService) decide(ctx context.Context, bundle *model.TemplateBundle, row *model.Reminder) model.Status {
	if !row.Status.IsPending() {
		return row.Status
	}
	if strings.TrimSpace(row.RecipientEmail) == "" || strings.TrimSpace(row.MeetURL) == "" {
		return row.Status
	}

	now := s.now().In(s.cfg.Location)
	scheduled, err := model.OnDay(row.ScheduledTime, now)
	if err != nil {
		return row.Status
	}
	if lead := scheduled.Sub(now); lead < 0 || lead > s.cfg.LeadWindow {
		return row.Status
	}

	log := s.log.WithReminder(row.ID, row.RecipientEmail)

	live, err := s.liveness.IsStillScheduled(ctx, s.cfg.CalendarID, scheduled, scheduled.Add(LivenessWindow), row.Title, row.RecipientEmail)
	if err != nil {
		log.Warn().Err(err).Msg("liveness check failed, sending anyway")
		live = true
	}
	if !live {
		log.Info().Msg("meeting no longer on calendar")
		return model.Cancelled()
	}

	if err := s.send(ctx, bundle, row); err != nil {
		log.Error().Err(err).Msg("failed to send reminder")
		return model.Failed(err.Error())
	}
	log.Info().Msg("reminder sent")
	return model.Sent(s.now().In(s.cfg.Location))
}

func (s *DispatchService) send(ctx context.Context, bundle *model.TemplateBundle, row *model.Reminder) error {
	rendered, err := template.Render(bundle, row.MergeFields(s.cfg.SentFormat))
	if err != nil {
		return err
	}
	return s.sender.Send(ctx, email.Message{
		To:           strings.TrimSpace(row.RecipientEmail),
		Subject:      rendered.Subject,
		TextBody:     rendered.Text,
		HTMLBody:     rendered.HTML,
		Attachments:  bundle.Attachments,
		InlineImages: bundle.InlineImages,
	})
}
