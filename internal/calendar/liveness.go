// Package calendar reads the owner's live calendar.
package calendar

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/meetreminder/meetreminder/internal/model"
)

// EventLister lists calendar events overlapping a window
type EventLister interface {
	ListEvents(ctx context.Context, calendarID string, start, end time.Time) ([]model.CalendarEvent, error)
}

// LivenessChecker confirms a meeting is still on the calendar
type LivenessChecker struct {
	lister EventLister
}

// NewLivenessChecker creates a LivenessChecker over lister
func NewLivenessChecker(lister EventLister) *LivenessChecker {
	return &LivenessChecker{lister: lister}
}

// IsStillScheduled reports whether an event in [start, end) has the given
// title or lists attendee among its guests.
func (c *LivenessChecker) IsStillScheduled(ctx context.Context, calendarID string, start, end time.Time, title, attendee string) (bool, error) {
	events, err := c.lister.ListEvents(ctx, calendarID, start, end)
	if err != nil {
		return false, fmt.Errorf("liveness lookup failed: %w", err)
	}

	attendee = strings.TrimSpace(attendee)
	for _, e := range events {
		if e.Title == title {
			return true, nil
		}
		for _, guest := range e.Attendees {
			if attendee != "" && strings.EqualFold(strings.TrimSpace(guest), attendee) {
				return true, nil
			}
		}
	}
	return false, nil
}
