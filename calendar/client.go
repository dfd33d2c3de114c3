package calendar

import (
	"context"
	"time"

	"github.com/gurre/cloud-api-samples/gcp"
)

// Client manages the events of one calendar. Each operation connects on demand: listing uses
// a read-only scope and every mutation a read-write one. An empty calendar id fails every
// operation before any connection is attempted.
type Client struct {
	calendarID string
	connect    ConnectFunc
	now        func() time.Time
}

// NewClient creates a Client for calendarID.
func NewClient(calendarID string, connect ConnectFunc) *Client {
	return &Client{calendarID: calendarID, connect: connect, now: time.Now}
}

// CalendarID returns the calendar the client is bound to.
func (c *Client) CalendarID() string { return c.calendarID }

func (c *Client) service(ctx context.Context, op string, readOnly bool) (gcp.CalendarClient, error) {
	if err := requireID(op, c.calendarID); err != nil {
		return nil, err
	}
	return Connect(ctx, c.connect, readOnly)
}

// AddEvent creates an event.
func (c *Client) AddEvent(ctx context.Context, in EventInput) (Event, error) {
	api, err := c.service(ctx, "calendar.Client.AddEvent", false)
	if err != nil {
		return Event{}, err
	}
	return AddEvent(ctx, api, c.calendarID, in)
}

// ListEvents returns up to max upcoming events.
func (c *Client) ListEvents(ctx context.Context, max int64) ([]Event, error) {
	api, err := c.service(ctx, "calendar.Client.ListEvents", true)
	if err != nil {
		return nil, err
	}
	return listEvents(ctx, api, c.calendarID, max, c.now())
}

// DeleteEvent removes an event.
func (c *Client) DeleteEvent(ctx context.Context, eventID string) error {
	api, err := c.service(ctx, "calendar.Client.DeleteEvent", false)
	if err != nil {
		return err
	}
	return DeleteEvent(ctx, api, c.calendarID, eventID)
}

// DeleteFirstEvent removes the next upcoming event. ok is false when there is none.
func (c *Client) DeleteFirstEvent(ctx context.Context) (Event, bool, error) {
	events, err := c.ListEvents(ctx, 5)
	if err != nil {
		return Event{}, false, err
	}
	if len(events) == 0 {
		return Event{}, false, nil
	}
	first := events[0]
	if err := c.DeleteEvent(ctx, first.ID); err != nil {
		return Event{}, false, err
	}
	return first, true, nil
}
