package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/meetreminder/meetreminder/internal/email"
	"github.com/meetreminder/meetreminder/internal/logger"
	"github.com/meetreminder/meetreminder/internal/model"
)

// Mail service errors
var (
	ErrReportRecipientMissing = errors.New("report recipient is not configured")
	ErrInboxUnavailable       = errors.New("inbox search is not available")
)

const reportTextBody = "Please view the HTML content."

// InboxSearcher finds the newest message matching a mailbox query
type InboxSearcher interface {
	LatestMessage(ctx context.Context, query string) (*model.InboxMessage, error)
}

// MailConfig holds direct mail settings
type MailConfig struct {
	ReportRecipient string
	DefaultSubject  string
	InboxQuery      string
}

// MailService sends ad hoc reports and reads the owner's inbox
type MailService struct {
	sender email.Sender
	inbox  InboxSearcher
	cfg    MailConfig
	log    *logger.Logger
}

// NewMailService creates a new MailService. inbox may be nil when the mail
// provider cannot search a mailbox.
func NewMailService(sender email.Sender, inbox InboxSearcher, cfg MailConfig, log *logger.Logger) *MailService {
	if cfg.DefaultSubject == "" {
		cfg.DefaultSubject = "Daily Huddle Report"
	}
	return &MailService{
		sender: sender,
		inbox:  inbox,
		cfg:    cfg,
		log:    log.WithComponent("mail_service"),
	}
}

// SendReport sends html to the report recipient
func (s *MailService) SendReport(ctx context.Context, subject, html string) error {
	if strings.TrimSpace(html) == "" {
		return fmt.Errorf("%w: html is required", ErrValidation)
	}
	if s.cfg.ReportRecipient == "" {
		return ErrReportRecipientMissing
	}
	if strings.TrimSpace(subject) == "" {
		subject = s.cfg.DefaultSubject
	}

	err := s.sender.Send(ctx, email.Message{
		To:       s.cfg.ReportRecipient,
		Subject:  subject,
		TextBody: reportTextBody,
		HTMLBody: html,
	})
	if err != nil {
		return fmt.Errorf("failed to send report: %w", err)
	}
	s.log.Info().Str("subject", subject).Msg("report sent")
	return nil
}

// LatestAlert returns the newest inbox message matching the configured query.
func (s *MailService) LatestAlert(ctx context.Context) (*model.InboxMessage, error) {
	if s.inbox == nil {
		return nil, ErrInboxUnavailable
	}
	msg, err := s.inbox.LatestMessage(ctx, s.cfg.InboxQuery)
	if err != nil {
		return nil, fmt.Errorf("failed to search inbox: %w", err)
	}
	return msg, nil
}
