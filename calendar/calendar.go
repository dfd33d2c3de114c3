// Package calendar manages Google Calendar events with a service account.
//
// The package offers the same operations in two shapes: free functions taking a connected
// service, and a Client bound to one calendar that connects on demand with the narrowest
// scope each operation needs.
package calendar

import (
	"context"
	"fmt"
	"strings"
	"time"
	_ "time/tzdata"

	gcal "google.golang.org/api/calendar/v3"

	"github.com/gurre/cloud-api-samples/apierr"
	"github.com/gurre/cloud-api-samples/gcp"
)

// DefaultTimeZone is used when an event or calendar names no time zone.
const DefaultTimeZone = "Asia/Tokyo"

// DefaultMaxResults bounds an event listing.
const DefaultMaxResults = 10

// EventInput describes an event to create.
type EventInput struct {
	Summary     string
	Description string
	Start       time.Time
	End         time.Time
	TimeZone    string
}

// Event is a normalized calendar event. Start and End hold the dateTime of timed events and
// the date of all-day events.
type Event struct {
	ID          string `json:"id"`
	Summary     string `json:"summary"`
	Description string `json:"description,omitempty"`
	Start       string `json:"start"`
	End         string `json:"end"`
	HTMLLink    string `json:"htmlLink,omitempty"`
}

// Calendar is a created secondary calendar.
type Calendar struct {
	ID       string `json:"id"`
	Summary  string `json:"summary"`
	TimeZone string `json:"timeZone"`
}

// ConnectFunc builds a Calendar service with read-only or read-write scope.
type ConnectFunc func(ctx context.Context, readOnly bool) (gcp.CalendarClient, error)

// FactoryConnector connects through a gcp.Factory.
func FactoryConnector(f *gcp.Factory) ConnectFunc {
	return func(ctx context.Context, readOnly bool) (gcp.CalendarClient, error) {
		c, err := f.Calendar(ctx, readOnly)
		if err != nil {
			return nil, err
		}
		return c, nil
	}
}

// Connect builds a Calendar service.
func Connect(ctx context.Context, connect ConnectFunc, readOnly bool) (gcp.CalendarClient, error) {
	if connect == nil {
		return nil, apierr.Configf("calendar.Connect", "no connector configured")
	}
	return connect(ctx, readOnly)
}

// BuildEvent validates in and maps it to the API shape.
func BuildEvent(in EventInput) (*gcal.Event, error) {
	const op = "calendar.BuildEvent"
	if strings.TrimSpace(in.Summary) == "" {
		return nil, apierr.Configf(op, "an event summary is required")
	}
	if in.Start.IsZero() || in.End.IsZero() {
		return nil, apierr.Configf(op, "start and end times are required")
	}
	if !in.End.After(in.Start) {
		return nil, apierr.Configf(op, "end %s must be after start %s", in.End.Format(time.RFC3339), in.Start.Format(time.RFC3339))
	}
	tz := in.TimeZone
	if tz == "" {
		tz = DefaultTimeZone
	}
	if _, err := time.LoadLocation(tz); err != nil {
		return nil, apierr.Configf(op, "unknown time zone %q", tz)
	}
	return &gcal.Event{
		Summary:     in.Summary,
		Description: in.Description,
		Start:       &gcal.EventDateTime{DateTime: in.Start.Format(time.RFC3339), TimeZone: tz},
		End:         &gcal.EventDateTime{DateTime: in.End.Format(time.RFC3339), TimeZone: tz},
	}, nil
}

func requireID(op, calendarID string) error {
	if strings.TrimSpace(calendarID) == "" {
		return apierr.Configf(op, "a calendar id is required")
	}
	return nil
}

// AddEvent creates an event.
func AddEvent(ctx context.Context, api gcp.CalendarClient, calendarID string, in EventInput) (Event, error) {
	const op = "calendar.events.insert"
	if err := requireID(op, calendarID); err != nil {
		return Event{}, err
	}
	ev, err := BuildEvent(in)
	if err != nil {
		return Event{}, err
	}
	created, err := api.InsertEvent(ctx, calendarID, ev)
	if err != nil {
		return Event{}, apierr.Classify(op, err)
	}
	if created == nil || created.Id == "" {
		return Event{}, apierr.Shapef(op, "response has no event id")
	}
	return NormalizeEvent(created), nil
}

// ListEvents returns up to max upcoming events in start order, with recurring events expanded.
// A max of zero or less selects DefaultMaxResults.
func ListEvents(ctx context.Context, api gcp.CalendarClient, calendarID string, max int64) ([]Event, error) {
	return listEvents(ctx, api, calendarID, max, time.Now())
}

func listEvents(ctx context.Context, api gcp.CalendarClient, calendarID string, max int64, now time.Time) ([]Event, error) {
	const op = "calendar.events.list"
	if err := requireID(op, calendarID); err != nil {
		return nil, err
	}
	if max <= 0 {
		max = DefaultMaxResults
	}
	resp, err := api.ListEvents(ctx, calendarID, gcp.EventQuery{
		TimeMin:    now.UTC().Format(time.RFC3339),
		MaxResults: max,
	})
	if err != nil {
		return nil, apierr.Classify(op, err)
	}
	return NormalizeEvents(resp), nil
}

// DeleteEvent removes an event.
func DeleteEvent(ctx context.Context, api gcp.CalendarClient, calendarID, eventID string) error {
	const op = "calendar.events.delete"
	if err := requireID(op, calendarID); err != nil {
		return err
	}
	if strings.TrimSpace(eventID) == "" {
		return apierr.Configf(op, "an event id is required")
	}
	if err := api.DeleteEvent(ctx, calendarID, eventID); err != nil {
		return apierr.Classify(op, err)
	}
	return nil
}

// CreateCalendar creates a secondary calendar owned by the service account.
func CreateCalendar(ctx context.Context, api gcp.CalendarClient, summary, timeZone string) (Calendar, error) {
	const op = "calendar.calendars.insert"
	if strings.TrimSpace(summary) == "" {
		return Calendar{}, apierr.Configf(op, "a calendar summary is required")
	}
	if timeZone == "" {
		timeZone = DefaultTimeZone
	}
	created, err := api.InsertCalendar(ctx, &gcal.Calendar{Summary: summary, TimeZone: timeZone})
	if err != nil {
		return Calendar{}, apierr.Classify(op, err)
	}
	if created == nil || created.Id == "" {
		return Calendar{}, apierr.Shapef(op, "response has no calendar id")
	}
	return Calendar{ID: created.Id, Summary: created.Summary, TimeZone: created.TimeZone}, nil
}

// NormalizeEvent flattens one API event.
func NormalizeEvent(ev *gcal.Event) Event {
	return Event{
		ID:          ev.Id,
		Summary:     ev.Summary,
		Description: ev.Description,
		Start:       eventTime(ev.Start),
		End:         eventTime(ev.End),
		HTMLLink:    ev.HtmlLink,
	}
}

// NormalizeEvents flattens a listing. A missing listing is empty.
func NormalizeEvents(resp *gcal.Events) []Event {
	events := make([]Event, 0)
	if resp == nil {
		return events
	}
	for _, ev := range resp.Items {
		if ev != nil {
			events = append(events, NormalizeEvent(ev))
		}
	}
	return events
}

func eventTime(t *gcal.EventDateTime) string {
	if t == nil {
		return ""
	}
	if t.DateTime != "" {
		return t.DateTime
	}
	return t.Date
}

// EventLines renders a listing as "N. <start> - <summary> (ID: <id>)" lines.
func EventLines(events []Event) []string {
	if len(events) == 0 {
		return []string{"No upcoming events found."}
	}
	lines := make([]string, 0, len(events))
	for i, ev := range events {
		lines = append(lines, fmt.Sprintf("%d. %s - %s (ID: %s)", i+1, ev.Start, ev.Summary, ev.ID))
	}
	return lines
}
