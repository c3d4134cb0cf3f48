package email

import (
	"bytes"
	"fmt"
	"net/textproto"
	"sort"
	"strings"

	mailer "github.com/jordan-wright/email"
	"github.com/meetreminder/meetreminder/internal/model"
)

var headerBreaks = strings.NewReplacer("\r", "", "\n", "")

// BuildMIME renders msg as a raw RFC 5322 message. Inline images go into
// the multipart/related part next to the HTML body and carry their cid as
// Content-ID; the rest are plain attachments.
func BuildMIME(from string, msg Message) ([]byte, error) {
	e := &mailer.Email{
		From:    headerBreaks.Replace(from),
		To:      []string{headerBreaks.Replace(msg.To)},
		Subject: headerBreaks.Replace(msg.Subject),
		Text:    []byte(msg.TextBody),
		HTML:    []byte(msg.HTMLBody),
		Headers: textproto.MIMEHeader{},
	}

	cids := make([]string, 0, len(msg.InlineImages))
	for cid := range msg.InlineImages {
		cids = append(cids, cid)
	}
	sort.Strings(cids)
	for _, cid := range cids {
		a, err := attach(e, msg.InlineImages[cid])
		if err != nil {
			return nil, err
		}
		a.HTMLRelated = true
		a.Header.Set("Content-Disposition", fmt.Sprintf("inline; filename=%q", a.Filename))
		a.Header.Set("Content-ID", "<"+cid+">")
	}
	for _, att := range msg.Attachments {
		if _, err := attach(e, att); err != nil {
			return nil, err
		}
	}

	raw, err := e.Bytes()
	if err != nil {
		return nil, fmt.Errorf("failed to encode message: %w", err)
	}
	return raw, nil
}

func attach(e *mailer.Email, att model.Attachment) (*mailer.Attachment, error) {
	contentType := att.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	a, err := e.Attach(bytes.NewReader(att.Data), att.Name, contentType)
	if err != nil {
		return nil, fmt.Errorf("failed to attach %q: %w", att.Name, err)
	}
	return a, nil
}
