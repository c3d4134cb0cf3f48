package email

import (
	"context"

	"github.com/meetreminder/meetreminder/internal/model"
)

// Sender is the interface that all email providers must implement.
type Sender interface {
	// Send sends an email to the specified recipient.
	Send(ctx context.Context, msg Message) error
}

// Message represents an email message to be sent.
type Message struct {
	To          string // recipient email address
	Subject     string // email subject
	HTMLBody    string // HTML email body
	TextBody    string // plain-text fallback body
	Attachments []model.Attachment
	// InlineImages maps the content id used in HTMLBody to the image part.
	InlineImages map[string]model.Attachment
}
