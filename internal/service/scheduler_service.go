package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/meetreminder/meetreminder/internal/logger"
	"github.com/meetreminder/meetreminder/internal/model"
	"github.com/meetreminder/meetreminder/internal/repository"
	"github.com/meetreminder/meetreminder/internal/trigger"
)

// Scheduler service errors
var (
	ErrValidation       = errors.New("validation failed")
	ErrReminderNotFound = errors.New("reminder not found")
)

// DispatchHandler is the trigger handler name the dispatch cycle runs under.
const DispatchHandler = "dispatch-reminders"

// ScheduleStatus is the outcome of a registration
type ScheduleStatus string

const (
	ScheduleScheduled     ScheduleStatus = "scheduled"
	ScheduleAlreadyExists ScheduleStatus = "already_exists"
)

// ReminderStore is the durable reminder table
type ReminderStore interface {
	Append(ctx context.Context, reminder *model.Reminder) error
	List(ctx context.Context) ([]model.Reminder, error)
	WriteStatusColumn(ctx context.Context, statuses []model.Status) (int64, error)
	GetByID(ctx context.Context, id int64) (*model.Reminder, error)
}

// ScheduleRequest carries a reminder registration
type ScheduleRequest struct {
	Email   string `json:"email"`
	Name    string `json:"name"`
	Time    string `json:"time"`
	MeetURL string `json:"meetUrl"`
	Title   string `json:"title"`
}

// SchedulerService registers reminders and keeps the dispatch trigger alive
type SchedulerService struct {
	store           ReminderStore
	triggers        trigger.Registry
	triggerInterval time.Duration
	log             *logger.Logger
}

// NewSchedulerService creates a new SchedulerService
func NewSchedulerService(store ReminderStore, triggers trigger.Registry, triggerInterval time.Duration, log *logger.Logger) *SchedulerService {
	if triggerInterval <= 0 {
		triggerInterval = time.Minute
	}
	return &SchedulerService{
		store:           store,
		triggers:        triggers,
		triggerInterval: triggerInterval,
		log:             log.WithComponent("scheduler_service"),
	}
}

// Schedule appends a pending reminder unless an identical one is still pending.
func (s *SchedulerService) Schedule(ctx context.Context, req ScheduleRequest) (ScheduleStatus, error) {
	email := strings.TrimSpace(req.Email)
	if email == "" {
		return "", fmt.Errorf("%w: email is required", ErrValidation)
	}
	if strings.TrimSpace(req.Time) == "" {
		return "", fmt.Errorf("%w: time is required", ErrValidation)
	}
	clock, err := model.NormalizeClock(req.Time)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrValidation, err)
	}

	reminder := &model.Reminder{
		RecipientEmail: email,
		FirstName:      model.FirstName(req.Name),
		ScheduledTime:  clock,
		MeetURL:        strings.TrimSpace(req.MeetURL),
		Status:         model.Pending(),
		Title:          req.Title,
	}

	rows, err := s.store.List(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to read reminders: %w", err)
	}
	key := reminder.DedupKey()
	for i := range rows {
		if rows[i].Status.IsPending() && rows[i].DedupKey() == key {
			s.log.Info().Str("recipient", email).Str("time", clock).Msg("reminder already scheduled")
			return ScheduleAlreadyExists, nil
		}
	}

	if err := s.store.Append(ctx, reminder); err != nil {
		return "", fmt.Errorf("failed to store reminder: %w", err)
	}
	s.log.Info().Int64("reminder_id", reminder.ID).Str("recipient", email).Str("time", clock).Msg("reminder scheduled")

	s.ensureTrigger(ctx)
	return ScheduleScheduled, nil
}

// Resume re-creates the dispatch trigger when pending reminders exist. It is
// called at startup since an in-process registry does not survive restarts.
func (s *SchedulerService) Resume(ctx context.Context) (int, error) {
	rows, err := s.store.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to read reminders: %w", err)
	}
	pending := 0
	for i := range rows {
		if rows[i].Status.IsPending() {
			pending++
		}
	}
	if pending > 0 {
		s.ensureTrigger(ctx)
	}
	return pending, nil
}

func (s *SchedulerService) ensureTrigger(ctx context.Context) {
	if s.triggers == nil {
		return
	}
	created, err := trigger.Ensure(ctx, s.triggers, trigger.Trigger{Handler: DispatchHandler, Every: s.triggerInterval})
	if err != nil {
		s.log.Error().Err(err).Msg("failed to ensure dispatch trigger")
		return
	}
	if created {
		s.log.Info().Dur("every", s.triggerInterval).Msg("dispatch trigger created")
	}
}

// List returns every reminder row
func (s *SchedulerService) List(ctx context.Context) ([]model.Reminder, error) {
	rows, err := s.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read reminders: %w", err)
	}
	return rows, nil
}

// Get returns one reminder row
func (s *SchedulerService) Get(ctx context.Context, id int64) (*model.Reminder, error) {
	rem, err := s.store.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrReminderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read reminder: %w", err)
	}
	return rem, nil
}
