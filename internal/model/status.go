package model

import (
	"encoding/json"
	"strings"
	"time"
)

// StatusKind enumerates the reminder delivery states
type StatusKind int

const (
	StatusPending StatusKind = iota
	StatusSent
	StatusCancelled
	StatusFailed
)

const (
	cancelledMarker = "Cancelled/Moved"
	errorPrefix     = "Error: "
)

// String returns the lowercase name of the kind
func (k StatusKind) String() string {
	switch k {
	case StatusSent:
		return "sent"
	case StatusCancelled:
		return "cancelled"
	case StatusFailed:
		return "failed"
	default:
		return "pending"
	}
}

// Status is the delivery state of a reminder. Only the pending state is
// mutable; every other kind is terminal.
type Status struct {
	Kind StatusKind
	// SentAt is set for StatusSent when the marker could be parsed.
	SentAt time.Time
	// Text is the failure message for StatusFailed, or the raw marker for
	// a StatusSent value that did not parse as a time.
	Text string
}

// Pending returns the pending status
func Pending() Status { return Status{Kind: StatusPending} }

// Sent returns a sent status stamped at t
func Sent(t time.Time) Status { return Status{Kind: StatusSent, SentAt: t} }

// Cancelled returns the cancelled status
func Cancelled() Status { return Status{Kind: StatusCancelled} }

// Failed returns a failed status carrying msg
func Failed(msg string) Status { return Status{Kind: StatusFailed, Text: msg} }

// IsPending reports whether the reminder still awaits delivery
func (s Status) IsPending() bool { return s.Kind == StatusPending }

// Format serialises the status to its storage form.
func (s Status) Format(sentFormat string) string {
	switch s.Kind {
	case StatusSent:
		if s.SentAt.IsZero() {
			return s.Text
		}
		return s.SentAt.Format(sentFormat)
	case StatusCancelled:
		return cancelledMarker
	case StatusFailed:
		return errorPrefix + s.Text
	default:
		return ""
	}
}

// ParseStatus decodes a stored status. Times are read in loc.
func ParseStatus(raw, sentFormat string, loc *time.Location) Status {
	raw = strings.TrimSpace(raw)
	switch {
	case raw == "":
		return Pending()
	case raw == cancelledMarker:
		return Cancelled()
	case strings.HasPrefix(raw, errorPrefix):
		return Failed(strings.TrimPrefix(raw, errorPrefix))
	}
	if loc == nil {
		loc = time.Local
	}
	if t, err := time.ParseInLocation(sentFormat, raw, loc); err == nil {
		return Status{Kind: StatusSent, SentAt: t, Text: raw}
	}
	return Status{Kind: StatusSent, Text: raw}
}

// MarshalJSON renders the status for API responses
func (s Status) MarshalJSON() ([]byte, error) {
	out := struct {
		State   string     `json:"state"`
		SentAt  *time.Time `json:"sentAt,omitempty"`
		Message string     `json:"message,omitempty"`
	}{State: s.Kind.String()}
	switch s.Kind {
	case StatusSent:
		if !s.SentAt.IsZero() {
			t := s.SentAt
			out.SentAt = &t
		} else {
			out.Message = s.Text
		}
	case StatusFailed:
		out.Message = s.Text
	}
	return json.Marshal(out)
}
