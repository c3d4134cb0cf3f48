package model

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Column headers a reminder row exposes to message templates.
const (
	FieldRecipient     = "Recipient"
	FieldFirst         = "First"
	FieldTimeScheduled = "TimeScheduled"
	FieldMeetURL       = "GoogleMeetURL"
	FieldEmailSent     = "Email Sent"
	FieldStatus        = "Status"
	FieldTitle         = "Title"
)

// ScheduledLabel is the value of the Status column for every stored row.
const ScheduledLabel = "Scheduled"

// Reminder is one row of the reminder table
type Reminder struct {
	ID             int64     `json:"id"`
	RecipientEmail string    `json:"recipientEmail"`
	FirstName      string    `json:"firstName"`
	ScheduledTime  string    `json:"scheduledTime"`
	MeetURL        string    `json:"meetUrl"`
	Status         Status    `json:"status"`
	Title          string    `json:"title"`
	CreatedAt      time.Time `json:"createdAt"`
}

// MergeFields returns the row keyed by column header.
func (r *Reminder) MergeFields(sentFormat string) map[string]string {
	return map[string]string{
		FieldRecipient:     r.RecipientEmail,
		FieldFirst:         r.FirstName,
		FieldTimeScheduled: r.ScheduledTime,
		FieldMeetURL:       r.MeetURL,
		FieldEmailSent:     r.Status.Format(sentFormat),
		FieldStatus:        ScheduledLabel,
		FieldTitle:         r.Title,
	}
}

// DedupKey identifies a reminder for idempotent registration.
func (r *Reminder) DedupKey() string {
	clock := strings.TrimSpace(r.ScheduledTime)
	if n, err := NormalizeClock(clock); err == nil {
		clock = n
	}
	return strings.TrimSpace(r.RecipientEmail) + "|" + clock
}

// FirstName returns the first space-separated token of a full name.
func FirstName(fullName string) string {
	fields := strings.Fields(fullName)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

// ParseClock parses an "H:MM" or "HH:MM" time of day.
func ParseClock(s string) (hour, minute int, err error) {
	s = strings.TrimSpace(s)
	h, m, ok := strings.Cut(s, ":")
	if !ok {
		return 0, 0, fmt.Errorf("time %q is not in HH:MM form", s)
	}
	hour, err = strconv.Atoi(h)
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, fmt.Errorf("time %q has an invalid hour", s)
	}
	if len(m) != 2 {
		return 0, 0, fmt.Errorf("time %q has an invalid minute", s)
	}
	minute, err = strconv.Atoi(m)
	if err != nil || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("time %q has an invalid minute", s)
	}
	return hour, minute, nil
}

// NormalizeClock returns the zero-padded HH:MM form of s.
func NormalizeClock(s string) (string, error) {
	h, m, err := ParseClock(s)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%02d:%02d", h, m), nil
}

// OnDay places the HH:MM time of day s on the calendar day of ref, in ref's location.
func OnDay(s string, ref time.Time) (time.Time, error) {
	h, m, err := ParseClock(s)
	if err != nil {
		return time.Time{}, err
	}
	y, mo, d := ref.Date()
	return time.Date(y, mo, d, h, m, 0, 0, ref.Location()), nil
}
