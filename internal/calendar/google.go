package calendar

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/meetreminder/meetreminder/internal/model"
	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

// GoogleCalendar lists events through the Google Calendar API
type GoogleCalendar struct {
	service *gcal.Service
}

// NewGoogleCalendar creates a GoogleCalendar on an authenticated HTTP client
func NewGoogleCalendar(ctx context.Context, httpClient *http.Client) (*GoogleCalendar, error) {
	svc, err := gcal.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("calendar: failed to create service: %w", err)
	}
	return &GoogleCalendar{service: svc}, nil
}

// ListEvents returns the single events overlapping [start, end).
func (c *GoogleCalendar) ListEvents(ctx context.Context, calendarID string, start, end time.Time) ([]model.CalendarEvent, error) {
	var events []model.CalendarEvent
	err := c.service.Events.List(calendarID).
		ShowDeleted(false).
		SingleEvents(true).
		TimeMin(start.Format(time.RFC3339)).
		TimeMax(end.Format(time.RFC3339)).
		OrderBy("startTime").
		Pages(ctx, func(resp *gcal.Events) error {
			for _, item := range resp.Items {
				events = append(events, toEvent(item))
			}
			return nil
		})
	if err != nil {
		return nil, fmt.Errorf("calendar: failed to list events: %w", err)
	}
	return events, nil
}

func toEvent(item *gcal.Event) model.CalendarEvent {
	event := model.CalendarEvent{
		ID:    item.Id,
		Title: item.Summary,
	}
	if item.Start != nil && item.Start.DateTime != "" {
		event.Start, _ = time.Parse(time.RFC3339, item.Start.DateTime)
	}
	if item.End != nil && item.End.DateTime != "" {
		event.End, _ = time.Parse(time.RFC3339, item.End.DateTime)
	}
	for _, a := range item.Attendees {
		event.Attendees = append(event.Attendees, a.Email)
	}
	return event
}
