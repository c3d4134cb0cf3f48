package email

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/meetreminder/meetreminder/internal/model"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"
)

const gmailUser = "me"

// GmailConfig holds the configuration for the Gmail client.
type GmailConfig struct {
	// SenderAddress is the email address emails are sent from.
	SenderAddress string
	// SenderName is the display name for the sender.
	SenderName string
}

// GmailClient sends mail, reads drafts and searches the owner's mailbox
// through the Gmail API.
type GmailClient struct {
	service       *gmail.Service
	senderAddress string
	senderName    string
}

// NewGmailClient creates a GmailClient on an authenticated HTTP client.
func NewGmailClient(ctx context.Context, httpClient *http.Client, cfg GmailConfig) (*GmailClient, error) {
	if cfg.SenderAddress == "" {
		return nil, fmt.Errorf("gmail: sender address is required")
	}

	svc, err := gmail.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("gmail: failed to create service: %w", err)
	}

	return &GmailClient{
		service:       svc,
		senderAddress: cfg.SenderAddress,
		senderName:    cfg.SenderName,
	}, nil
}

func (g *GmailClient) from() string {
	if g.senderName != "" {
		return fmt.Sprintf("%s <%s>", g.senderName, g.senderAddress)
	}
	return g.senderAddress
}

// Send sends an email via the Gmail API.
func (g *GmailClient) Send(ctx context.Context, msg Message) error {
	raw, err := BuildMIME(g.from(), msg)
	if err != nil {
		return fmt.Errorf("gmail: failed to build message: %w", err)
	}

	gmailMsg := &gmail.Message{
		Raw: base64.URLEncoding.EncodeToString(raw),
	}

	if _, err := g.service.Users.Messages.Send(gmailUser, gmailMsg).Context(ctx).Do(); err != nil {
		return fmt.Errorf("gmail: failed to send email: %w", err)
	}
	return nil
}

// FindDraftBySubject returns the first draft whose subject equals subject exactly.
func (g *GmailClient) FindDraftBySubject(ctx context.Context, subject string) (*model.Draft, bool, error) {
	var ids []string
	err := g.service.Users.Drafts.List(gmailUser).
		Q(fmt.Sprintf("subject:%q", subject)).
		Pages(ctx, func(resp *gmail.ListDraftsResponse) error {
			for _, d := range resp.Drafts {
				ids = append(ids, d.Id)
			}
			return nil
		})
	if err != nil {
		return nil, false, fmt.Errorf("gmail: failed to list drafts: %w", err)
	}

	for _, id := range ids {
		d, err := g.service.Users.Drafts.Get(gmailUser, id).Format("full").Context(ctx).Do()
		if err != nil {
			return nil, false, fmt.Errorf("gmail: failed to get draft %s: %w", id, err)
		}
		if d.Message == nil || d.Message.Payload == nil {
			continue
		}
		if header(d.Message.Payload, "Subject") != subject {
			continue
		}

		draft := &model.Draft{ID: d.Id, Subject: subject}
		if err := g.collectParts(ctx, d.Message.Id, d.Message.Payload, draft); err != nil {
			return nil, false, err
		}
		return draft, true, nil
	}
	return nil, false, nil
}

// LatestMessage returns the last message of the newest thread matching query.
func (g *GmailClient) LatestMessage(ctx context.Context, query string) (*model.InboxMessage, error) {
	resp, err := g.service.Users.Threads.List(gmailUser).Q(query).MaxResults(1).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("gmail: failed to search threads: %w", err)
	}
	if len(resp.Threads) == 0 {
		return &model.InboxMessage{Found: false}, nil
	}

	thread, err := g.service.Users.Threads.Get(gmailUser, resp.Threads[0].Id).Format("full").Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("gmail: failed to get thread: %w", err)
	}
	if len(thread.Messages) == 0 {
		return &model.InboxMessage{Found: false}, nil
	}

	msg := thread.Messages[len(thread.Messages)-1]
	var parsed model.Draft
	if err := g.collectParts(ctx, msg.Id, msg.Payload, &parsed); err != nil {
		return nil, err
	}
	body := parsed.HTML
	if body == "" {
		body = parsed.Text
	}
	return &model.InboxMessage{
		Found:   true,
		Subject: header(msg.Payload, "Subject"),
		Date:    time.UnixMilli(msg.InternalDate),
		Body:    body,
	}, nil
}

// collectParts walks a message payload, filling bodies and file parts.
func (g *GmailClient) collectParts(ctx context.Context, messageID string, p *gmail.MessagePart, out *model.Draft) error {
	if p == nil {
		return nil
	}

	switch {
	case p.Filename != "":
		data, err := g.partData(ctx, messageID, p)
		if err != nil {
			return err
		}
		disposition := strings.ToLower(header(p, "Content-Disposition"))
		out.Parts = append(out.Parts, model.Attachment{
			Name:        p.Filename,
			ContentType: p.MimeType,
			Data:        data,
			Inline:      strings.HasPrefix(disposition, "inline") || header(p, "Content-ID") != "",
		})
	case p.MimeType == "text/plain" && out.Text == "":
		data, err := g.partData(ctx, messageID, p)
		if err != nil {
			return err
		}
		out.Text = string(data)
	case p.MimeType == "text/html" && out.HTML == "":
		data, err := g.partData(ctx, messageID, p)
		if err != nil {
			return err
		}
		out.HTML = string(data)
	}

	for _, child := range p.Parts {
		if err := g.collectParts(ctx, messageID, child, out); err != nil {
			return err
		}
	}
	return nil
}

func (g *GmailClient) partData(ctx context.Context, messageID string, p *gmail.MessagePart) ([]byte, error) {
	if p.Body == nil {
		return nil, nil
	}
	encoded := p.Body.Data
	if encoded == "" && p.Body.AttachmentId != "" {
		att, err := g.service.Users.Messages.Attachments.Get(gmailUser, messageID, p.Body.AttachmentId).Context(ctx).Do()
		if err != nil {
			return nil, fmt.Errorf("gmail: failed to get attachment %q: %w", p.Filename, err)
		}
		encoded = att.Data
	}
	return decodeBase64URL(encoded)
}

func decodeBase64URL(s string) ([]byte, error) {
	if s == "" {
		return nil, nil
	}
	data, err := base64.URLEncoding.DecodeString(s)
	if err != nil {
		data, err = base64.RawURLEncoding.DecodeString(strings.TrimRight(s, "="))
		if err != nil {
			return nil, fmt.Errorf("gmail: failed to decode part body: %w", err)
		}
	}
	return data, nil
}

func header(p *gmail.MessagePart, name string) string {
	for _, h := range p.Headers {
		if strings.EqualFold(h.Name, name) {
			return h.Value
		}
	}
	return ""
}

var _ Sender = (*GmailClient)(nil)
