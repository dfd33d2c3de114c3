package gcp

import (
	"context"
	"errors"
	"io"
	"strings"

	routing "cloud.google.com/go/maps/routing/apiv2"
	"cloud.google.com/go/maps/routing/apiv2/routingpb"
	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/sheets/v4"
	"google.golang.org/api/texttospeech/v1"
	"google.golang.org/api/translate/v2"
	"google.golang.org/api/vision/v1"
	"google.golang.org/grpc/metadata"
	gmaps "googlemaps.github.io/maps"

	"github.com/gurre/cloud-api-samples/apierr"
)

// VisionClientImpl implements VisionClient using the generated Vision client.
type VisionClientImpl struct {
	svc *vision.Service
}

// NewVisionClient creates a new VisionClientImpl instance
func NewVisionClient(svc *vision.Service) *VisionClientImpl {
	return &VisionClientImpl{svc: svc}
}

// Annotate implements the VisionClient interface
func (c *VisionClientImpl) Annotate(ctx context.Context, req *vision.BatchAnnotateImagesRequest) (*vision.BatchAnnotateImagesResponse, error) {
	return c.svc.Images.Annotate(req).Context(ctx).Do()
}

// TranslateClientImpl implements TranslateClient using the generated Translation v2 client.
type TranslateClientImpl struct {
	svc *translate.Service
}

// NewTranslateClient creates a new TranslateClientImpl instance
func NewTranslateClient(svc *translate.Service) *TranslateClientImpl {
	return &TranslateClientImpl{svc: svc}
}

// Translate implements the TranslateClient interface. An empty source lets the API detect it.
func (c *TranslateClientImpl) Translate(ctx context.Context, q []string, source, target, format string) (*translate.TranslationsListResponse, error) {
	call := c.svc.Translations.List(q, target).Context(ctx)
	if source != "" {
		call = call.Source(source)
	}
	if format != "" {
		call = call.Format(format)
	}
	return call.Do()
}

// TextToSpeechClientImpl implements TextToSpeechClient using the generated client.
type TextToSpeechClientImpl struct {
	svc *texttospeech.Service
}

// NewTextToSpeechClient creates a new TextToSpeechClientImpl instance
func NewTextToSpeechClient(svc *texttospeech.Service) *TextToSpeechClientImpl {
	return &TextToSpeechClientImpl{svc: svc}
}

// Synthesize implements the TextToSpeechClient interface
func (c *TextToSpeechClientImpl) Synthesize(ctx context.Context, req *texttospeech.SynthesizeSpeechRequest) (*texttospeech.SynthesizeSpeechResponse, error) {
	return c.svc.Text.Synthesize(req).Context(ctx).Do()
}

// SheetsClientImpl implements SheetsClient using the generated Sheets v4 client.
type SheetsClientImpl struct {
	svc *sheets.Service
}

// NewSheetsClient creates a new SheetsClientImpl instance
func NewSheetsClient(svc *sheets.Service) *SheetsClientImpl {
	return &SheetsClientImpl{svc: svc}
}

// Get implements the SheetsClient interface
func (c *SheetsClientImpl) Get(ctx context.Context, spreadsheetID string) (*sheets.Spreadsheet, error) {
	return c.svc.Spreadsheets.Get(spreadsheetID).Context(ctx).Do()
}

// BatchUpdate implements the SheetsClient interface
func (c *SheetsClientImpl) BatchUpdate(ctx context.Context, spreadsheetID string, req *sheets.BatchUpdateSpreadsheetRequest) (*sheets.BatchUpdateSpreadsheetResponse, error) {
	return c.svc.Spreadsheets.BatchUpdate(spreadsheetID, req).Context(ctx).Do()
}

// UpdateValues implements the SheetsClient interface. Values are written as entered.
func (c *SheetsClientImpl) UpdateValues(ctx context.Context, spreadsheetID, rng string, values *sheets.ValueRange) (*sheets.UpdateValuesResponse, error) {
	return c.svc.Spreadsheets.Values.Update(spreadsheetID, rng, values).
		ValueInputOption("RAW").
		Context(ctx).
		Do()
}

// CalendarClientImpl implements CalendarClient using the generated Calendar v3 client.
type CalendarClientImpl struct {
	svc *calendar.Service
}

// NewCalendarClient creates a new CalendarClientImpl instance
func NewCalendarClient(svc *calendar.Service) *CalendarClientImpl {
	return &CalendarClientImpl{svc: svc}
}

// InsertEvent implements the CalendarClient interface
func (c *CalendarClientImpl) InsertEvent(ctx context.Context, calendarID string, event *calendar.Event) (*calendar.Event, error) {
	return c.svc.Events.Insert(calendarID, event).Context(ctx).Do()
}

// ListEvents implements the CalendarClient interface. Recurring events are expanded and the
// result is ordered by start time.
func (c *CalendarClientImpl) ListEvents(ctx context.Context, calendarID string, q EventQuery) (*calendar.Events, error) {
	call := c.svc.Events.List(calendarID).
		SingleEvents(true).
		OrderBy("startTime").
		Context(ctx)
	if q.TimeMin != "" {
		call = call.TimeMin(q.TimeMin)
	}
	if q.MaxResults > 0 {
		call = call.MaxResults(q.MaxResults)
	}
	return call.Do()
}

// DeleteEvent implements the CalendarClient interface
func (c *CalendarClientImpl) DeleteEvent(ctx context.Context, calendarID, eventID string) error {
	return c.svc.Events.Delete(calendarID, eventID).Context(ctx).Do()
}

// InsertCalendar implements the CalendarClient interface
func (c *CalendarClientImpl) InsertCalendar(ctx context.Context, cal *calendar.Calendar) (*calendar.Calendar, error) {
	return c.svc.Calendars.Insert(cal).Context(ctx).Do()
}

// GeminiClientImpl implements GenerativeClient with one Gemini model.
type GeminiClientImpl struct {
	client *genai.Client
	model  *genai.GenerativeModel
}

// NewGeminiClient creates a GeminiClientImpl that asks the model for JSON output.
func NewGeminiClient(client *genai.Client, model string, temperature float32) *GeminiClientImpl {
	m := client.GenerativeModel(strings.TrimSpace(model))
	m.GenerationConfig = genai.GenerationConfig{
		Temperature:      &temperature,
		ResponseMIMEType: "application/json",
	}
	return &GeminiClientImpl{client: client, model: m}
}

// Generate implements the GenerativeClient interface. It returns the text parts of the first
// candidate joined together.
func (c *GeminiClientImpl) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := c.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", err
	}
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", apierr.Shapef("gemini.Generate", "response has no candidates")
	}
	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			b.WriteString(string(txt))
		}
	}
	return b.String(), nil
}

// Close releases the underlying connection.
func (c *GeminiClientImpl) Close() error {
	return c.client.Close()
}

// DirectionsClientImpl implements DirectionsClient with the Maps web service client.
type DirectionsClientImpl struct {
	client *gmaps.Client
}

// NewDirectionsClient creates a new DirectionsClientImpl instance
func NewDirectionsClient(client *gmaps.Client) *DirectionsClientImpl {
	return &DirectionsClientImpl{client: client}
}

// Directions implements the DirectionsClient interface
func (c *DirectionsClientImpl) Directions(ctx context.Context, req *gmaps.DirectionsRequest) ([]gmaps.Route, []gmaps.GeocodedWaypoint, error) {
	return c.client.Directions(ctx, req)
}

// RouteMatrixClientImpl implements RouteMatrixClient with the gRPC Routes client.
type RouteMatrixClientImpl struct {
	client *routing.RoutesClient
}

// NewRouteMatrixClient creates a new RouteMatrixClientImpl instance
func NewRouteMatrixClient(client *routing.RoutesClient) *RouteMatrixClientImpl {
	return &RouteMatrixClientImpl{client: client}
}

// ComputeRouteMatrix implements the RouteMatrixClient interface. The API streams one element per
// origin/destination pair; the stream is drained before returning.
func (c *RouteMatrixClientImpl) ComputeRouteMatrix(ctx context.Context, req *routingpb.ComputeRouteMatrixRequest, fieldMask string) ([]*routingpb.RouteMatrixElement, error) {
	if fieldMask == "" {
		return nil, apierr.Configf("routes.ComputeRouteMatrix", "a field mask is required")
	}
	ctx = metadata.AppendToOutgoingContext(ctx, "x-goog-fieldmask", fieldMask)
	stream, err := c.client.ComputeRouteMatrix(ctx, req)
	if err != nil {
		return nil, err
	}

	var elements []*routingpb.RouteMatrixElement
	for {
		el, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			return elements, nil
		}
		if err != nil {
			return nil, err
		}
		elements = append(elements, el)
	}
}

// Close releases the underlying connection.
func (c *RouteMatrixClientImpl) Close() error {
	return c.client.Close()
}
