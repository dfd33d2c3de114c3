// Package gcp holds the Google service abstractions used by the samples. The generated Google
// clients expose call builders rather than methods, so each interface flattens the one call a
// sample issues into a single context-aware method.
package gcp

import (
	"context"

	"cloud.google.com/go/maps/routing/apiv2/routingpb"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/sheets/v4"
	"google.golang.org/api/texttospeech/v1"
	"google.golang.org/api/translate/v2"
	"google.golang.org/api/vision/v1"
	gmaps "googlemaps.github.io/maps"
)

// VisionClient annotates images.
type VisionClient interface {
	Annotate(ctx context.Context, req *vision.BatchAnnotateImagesRequest) (*vision.BatchAnnotateImagesResponse, error)
}

// TranslateClient translates text with the Cloud Translation v2 API.
type TranslateClient interface {
	Translate(ctx context.Context, q []string, source, target, format string) (*translate.TranslationsListResponse, error)
}

// TextToSpeechClient synthesizes speech.
type TextToSpeechClient interface {
	Synthesize(ctx context.Context, req *texttospeech.SynthesizeSpeechRequest) (*texttospeech.SynthesizeSpeechResponse, error)
}

// SheetsClient reads and mutates one spreadsheet at a time.
type SheetsClient interface {
	Get(ctx context.Context, spreadsheetID string) (*sheets.Spreadsheet, error)
	BatchUpdate(ctx context.Context, spreadsheetID string, req *sheets.BatchUpdateSpreadsheetRequest) (*sheets.BatchUpdateSpreadsheetResponse, error)
	UpdateValues(ctx context.Context, spreadsheetID, rng string, values *sheets.ValueRange) (*sheets.UpdateValuesResponse, error)
}

// EventQuery narrows an event listing.
type EventQuery struct {
	TimeMin    string // RFC 3339 lower bound on event end time
	MaxResults int64
}

// CalendarClient manages events and calendars.
type CalendarClient interface {
	InsertEvent(ctx context.Context, calendarID string, event *calendar.Event) (*calendar.Event, error)
	ListEvents(ctx context.Context, calendarID string, q EventQuery) (*calendar.Events, error)
	DeleteEvent(ctx context.Context, calendarID, eventID string) error
	InsertCalendar(ctx context.Context, cal *calendar.Calendar) (*calendar.Calendar, error)
}

// GenerativeClient returns the text a generative model produces for a prompt.
type GenerativeClient interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// DirectionsClient plans routes with the Directions API.
type DirectionsClient interface {
	Directions(ctx context.Context, req *gmaps.DirectionsRequest) ([]gmaps.Route, []gmaps.GeocodedWaypoint, error)
}

// RouteMatrixClient computes origin/destination matrices with the Routes API. The field mask
// selects the element fields the API returns and must not be empty.
type RouteMatrixClient interface {
	ComputeRouteMatrix(ctx context.Context, req *routingpb.ComputeRouteMatrixRequest, fieldMask string) ([]*routingpb.RouteMatrixElement, error)
}

// Compile-time interface checks to ensure implementations satisfy interfaces
var (
	_ VisionClient       = (*VisionClientImpl)(nil)
	_ TranslateClient    = (*TranslateClientImpl)(nil)
	_ TextToSpeechClient = (*TextToSpeechClientImpl)(nil)
	_ SheetsClient       = (*SheetsClientImpl)(nil)
	_ CalendarClient     = (*CalendarClientImpl)(nil)
	_ GenerativeClient   = (*GeminiClientImpl)(nil)
	_ DirectionsClient   = (*DirectionsClientImpl)(nil)
	_ RouteMatrixClient  = (*RouteMatrixClientImpl)(nil)
)
