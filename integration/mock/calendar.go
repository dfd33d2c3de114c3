package mock

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/googleapi"

	"github.com/gurre/cloud-api-samples/gcp"
)

// CalendarClient is an in-memory gcp.CalendarClient. Listings return events in start order,
// filtered by TimeMin against the event end, like the Calendar API with singleEvents and
// orderBy=startTime.
type CalendarClient struct {
	mu        sync.Mutex
	events    map[string][]*gcal.Event // calendar id -> events
	calendars []*gcal.Calendar
	nextID    int

	// Connects records the readOnly flag of every Connect call.
	Connects []bool
	// Calls records the operations issued, e.g. "events.insert".
	Calls []string
	// ConnectErr fails every Connect call when set.
	ConnectErr error
}

// NewCalendarClient creates an empty calendar store.
func NewCalendarClient() *CalendarClient {
	return &CalendarClient{events: make(map[string][]*gcal.Event)}
}

// Connect has the shape of calendar.ConnectFunc and hands out the store itself.
func (m *CalendarClient) Connect(ctx context.Context, readOnly bool) (gcp.CalendarClient, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Connects = append(m.Connects, readOnly)
	if m.ConnectErr != nil {
		return nil, m.ConnectErr
	}
	return m, nil
}

func (m *CalendarClient) record(call string) {
	m.Calls = append(m.Calls, call)
}

// InsertEvent stores a copy of event with a generated id.
func (m *CalendarClient) InsertEvent(ctx context.Context, calendarID string, event *gcal.Event) (*gcal.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.record("events.insert")
	m.nextID++
	ev := *event
	ev.Id = fmt.Sprintf("evt%03d", m.nextID)
	ev.Status = "confirmed"
	ev.HtmlLink = "https://www.google.com/calendar/event?eid=" + ev.Id
	m.events[calendarID] = append(m.events[calendarID], &ev)
	return &ev, nil
}

// ListEvents returns the events ending at or after q.TimeMin, in start order, capped at
// q.MaxResults.
func (m *CalendarClient) ListEvents(ctx context.Context, calendarID string, q gcp.EventQuery) (*gcal.Events, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.record("events.list")
	var min time.Time
	if q.TimeMin != "" {
		t, err := time.Parse(time.RFC3339, q.TimeMin)
		if err != nil {
			return nil, &googleapi.Error{Code: 400, Message: "Bad Request: invalid timeMin"}
		}
		min = t
	}

	items := make([]*gcal.Event, 0)
	for _, ev := range m.events[calendarID] {
		if !min.IsZero() && eventTime(ev.End).Before(min) {
			continue
		}
		items = append(items, ev)
	}
	sort.SliceStable(items, func(i, j int) bool {
		return eventTime(items[i].Start).Before(eventTime(items[j].Start))
	})
	if q.MaxResults > 0 && int64(len(items)) > q.MaxResults {
		items = items[:q.MaxResults]
	}
	return &gcal.Events{Items: items}, nil
}

// DeleteEvent removes an event. An unknown id is a 404 like the API returns.
func (m *CalendarClient) DeleteEvent(ctx context.Context, calendarID, eventID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.record("events.delete")
	events := m.events[calendarID]
	for i, ev := range events {
		if ev.Id == eventID {
			m.events[calendarID] = append(events[:i], events[i+1:]...)
			return nil
		}
	}
	return &googleapi.Error{Code: 404, Message: "Not Found"}
}

// InsertCalendar stores a copy of cal with a generated id.
func (m *CalendarClient) InsertCalendar(ctx context.Context, cal *gcal.Calendar) (*gcal.Calendar, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.record("calendars.insert")
	m.nextID++
	c := *cal
	c.Id = fmt.Sprintf("cal%03d@group.calendar.google.com", m.nextID)
	m.calendars = append(m.calendars, &c)
	return &c, nil
}

// Events returns the stored events of a calendar in insertion order.
func (m *CalendarClient) Events(calendarID string) []*gcal.Event {
	m.mu.Lock()
	defer m.mu.Unlock()

	return append([]*gcal.Event(nil), m.events[calendarID]...)
}

// Calendars returns the created calendars.
func (m *CalendarClient) Calendars() []*gcal.Calendar {
	m.mu.Lock()
	defer m.mu.Unlock()

	return append([]*gcal.Calendar(nil), m.calendars...)
}

func eventTime(t *gcal.EventDateTime) time.Time {
	if t == nil {
		return time.Time{}
	}
	if t.DateTime != "" {
		if v, err := time.Parse(time.RFC3339, t.DateTime); err == nil {
			return v
		}
	}
	if t.Date != "" {
		if v, err := time.Parse("2006-01-02", t.Date); err == nil {
			return v
		}
	}
	return time.Time{}
}

var _ gcp.CalendarClient = (*CalendarClient)(nil)
