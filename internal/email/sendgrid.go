package email

import (
	"context"
	"encoding/base64"
	"fmt"
	"sort"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// SendGridConfig holds the configuration for the SendGrid sender.
type SendGridConfig struct {
	APIKey        string
	SenderAddress string
	SenderName    string
}

// SendGridSender implements Sender using the SendGrid v3 API.
type SendGridSender struct {
	client    *sendgrid.Client
	fromEmail string
	fromName  string
}

// NewSendGridSender creates a new SendGridSender.
func NewSendGridSender(cfg SendGridConfig) (*SendGridSender, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("sendgrid: api key is required")
	}
	if cfg.SenderAddress == "" {
		return nil, fmt.Errorf("sendgrid: sender address is required")
	}
	return &SendGridSender{
		client:    sendgrid.NewSendClient(cfg.APIKey),
		fromEmail: cfg.SenderAddress,
		fromName:  cfg.SenderName,
	}, nil
}

// Send sends an email via SendGrid, carrying inline images as content-id attachments.
func (s *SendGridSender) Send(ctx context.Context, msg Message) error {
	from := mail.NewEmail(s.fromName, s.fromEmail)
	to := mail.NewEmail("", msg.To)
	message := mail.NewSingleEmail(from, msg.Subject, to, msg.TextBody, msg.HTMLBody)

	cids := make([]string, 0, len(msg.InlineImages))
	for cid := range msg.InlineImages {
		cids = append(cids, cid)
	}
	sort.Strings(cids)
	for _, cid := range cids {
		img := msg.InlineImages[cid]
		a := mail.NewAttachment()
		a.SetContent(base64.StdEncoding.EncodeToString(img.Data))
		a.SetType(img.ContentType)
		a.SetFilename(img.Name)
		a.SetDisposition("inline")
		a.SetContentID(cid)
		message.AddAttachment(a)
	}
	for _, att := range msg.Attachments {
		a := mail.NewAttachment()
		a.SetContent(base64.StdEncoding.EncodeToString(att.Data))
		a.SetType(att.ContentType)
		a.SetFilename(att.Name)
		a.SetDisposition("attachment")
		message.AddAttachment(a)
	}

	response, err := s.client.SendWithContext(ctx, message)
	if err != nil {
		return fmt.Errorf("sendgrid: failed to send email: %w", err)
	}
	if response.StatusCode >= 400 {
		return fmt.Errorf("sendgrid: failed to send email to %s: status %d", msg.To, response.StatusCode)
	}
	return nil
}

var _ Sender = (*SendGridSender)(nil)
