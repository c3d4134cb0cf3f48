package model

import "time"

// Attachment is a file carried by a template or an outgoing message
type Attachment struct {
	Name        string
	ContentType string
	Data        []byte
	// Inline marks parts embedded in the HTML body rather than attached.
	Inline bool
}

// TemplateBundle is a resolved message template
type TemplateBundle struct {
	Subject     string
	Text        string
	HTML        string
	Attachments []Attachment
	// InlineImages maps a content id referenced by the HTML body to its image.
	InlineImages map[string]Attachment
}

// RenderedMessage is a template after field substitution
type RenderedMessage struct {
	Subject string `json:"subject"`
	Text    string `json:"text"`
	HTML    string `json:"html"`
}

// CalendarEvent is a live calendar entry used for liveness checks
type CalendarEvent struct {
	ID        string
	Title     string
	Start     time.Time
	End       time.Time
	Attendees []string
}

// InboxMessage is the result of an inbox lookup
type InboxMessage struct {
	Found   bool      `json:"found"`
	Subject string    `json:"subject,omitempty"`
	Date    time.Time `json:"date,omitempty"`
	Body    string    `json:"body,omitempty"`
}

// Draft is a stored draft message used as a template source
type Draft struct {
	ID      string
	Subject string
	Text    string
	HTML    string
	// Parts holds every file part of the draft, inline or attached.
	Parts []Attachment
}
