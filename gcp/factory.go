package gcp

import (
	"context"

	routing "cloud.google.com/go/maps/routing/apiv2"
	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
	"google.golang.org/api/texttospeech/v1"
	"google.golang.org/api/translate/v2"
	"google.golang.org/api/vision/v1"
	gmaps "googlemaps.github.io/maps"

	"github.com/gurre/cloud-api-samples/apierr"
	"github.com/gurre/cloud-api-samples/creds"
)

// Factory builds Google service clients. Key-based services need an API key; Sheets and Calendar
// need a service account. A client is only constructed when its credential is present, so a
// missing value never reaches the network.
type Factory struct {
	apiKey         string
	serviceAccount creds.ServiceAccount
	opts           []option.ClientOption
}

// NewFactory creates a Factory. Extra options are appended to every client, which is how tests
// point clients at a local server.
func NewFactory(apiKey string, sa creds.ServiceAccount, opts ...option.ClientOption) *Factory {
	return &Factory{apiKey: apiKey, serviceAccount: sa, opts: opts}
}

func (f *Factory) keyOptions(op string) ([]option.ClientOption, error) {
	if f.apiKey == "" {
		return nil, apierr.Configf(op, "an API key is required")
	}
	return append([]option.ClientOption{option.WithAPIKey(f.apiKey)}, f.opts...), nil
}

func (f *Factory) serviceAccountOptions(op string, scopes ...string) ([]option.ClientOption, error) {
	if f.serviceAccount.File == "" {
		return nil, apierr.Configf(op, "a service account key file is required")
	}
	opts := []option.ClientOption{
		option.WithCredentialsFile(f.serviceAccount.File),
		option.WithScopes(scopes...),
	}
	return append(opts, f.opts...), nil
}

// Vision returns a Cloud Vision client.
func (f *Factory) Vision(ctx context.Context) (*VisionClientImpl, error) {
	const op = "gcp.Vision"
	opts, err := f.keyOptions(op)
	if err != nil {
		return nil, err
	}
	svc, err := vision.NewService(ctx, opts...)
	if err != nil {
		return nil, apierr.Configf(op, "failed to create vision client: %v", err)
	}
	return NewVisionClient(svc), nil
}

// Translate returns a Cloud Translation v2 client.
func (f *Factory) Translate(ctx context.Context) (*TranslateClientImpl, error) {
	const op = "gcp.Translate"
	opts, err := f.keyOptions(op)
	if err != nil {
		return nil, err
	}
	svc, err := translate.NewService(ctx, opts...)
	if err != nil {
		return nil, apierr.Configf(op, "failed to create translate client: %v", err)
	}
	return NewTranslateClient(svc), nil
}

// TextToSpeech returns a Cloud Text-to-Speech client.
func (f *Factory) TextToSpeech(ctx context.Context) (*TextToSpeechClientImpl, error) {
	const op = "gcp.TextToSpeech"
	opts, err := f.keyOptions(op)
	if err != nil {
		return nil, err
	}
	svc, err := texttospeech.NewService(ctx, opts...)
	if err != nil {
		return nil, apierr.Configf(op, "failed to create text-to-speech client: %v", err)
	}
	return NewTextToSpeechClient(svc), nil
}

// Sheets returns a Sheets client scoped for reading only or for reading and writing.
func (f *Factory) Sheets(ctx context.Context, readOnly bool) (*SheetsClientImpl, error) {
	const op = "gcp.Sheets"
	scope := sheets.SpreadsheetsScope
	if readOnly {
		scope = sheets.SpreadsheetsReadonlyScope
	}
	opts, err := f.serviceAccountOptions(op, scope)
	if err != nil {
		return nil, err
	}
	svc, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, apierr.Configf(op, "failed to create sheets client: %v", err)
	}
	return NewSheetsClient(svc), nil
}

// Calendar returns a Calendar client scoped for reading only or for reading and writing.
func (f *Factory) Calendar(ctx context.Context, readOnly bool) (*CalendarClientImpl, error) {
	const op = "gcp.Calendar"
	scope := calendar.CalendarScope
	if readOnly {
		scope = calendar.CalendarReadonlyScope
	}
	opts, err := f.serviceAccountOptions(op, scope)
	if err != nil {
		return nil, err
	}
	svc, err := calendar.NewService(ctx, opts...)
	if err != nil {
		return nil, apierr.Configf(op, "failed to create calendar client: %v", err)
	}
	return NewCalendarClient(svc), nil
}

// Gemini returns a generative client for the named model. The caller must Close it.
func (f *Factory) Gemini(ctx context.Context, model string, temperature float32) (*GeminiClientImpl, error) {
	const op = "gcp.Gemini"
	if model == "" {
		return nil, apierr.Configf(op, "a model name is required")
	}
	opts, err := f.keyOptions(op)
	if err != nil {
		return nil, err
	}
	client, err := genai.NewClient(ctx, opts...)
	if err != nil {
		return nil, apierr.Configf(op, "failed to create gemini client: %v", err)
	}
	return NewGeminiClient(client, model, temperature), nil
}

// Directions returns a Directions API client. The Maps web service client takes its own options
// rather than the factory's, so tests pass a base URL and HTTP client here.
func (f *Factory) Directions(opts ...gmaps.ClientOption) (*DirectionsClientImpl, error) {
	const op = "gcp.Directions"
	if f.apiKey == "" {
		return nil, apierr.Configf(op, "an API key is required")
	}
	client, err := gmaps.NewClient(append([]gmaps.ClientOption{gmaps.WithAPIKey(f.apiKey)}, opts...)...)
	if err != nil {
		return nil, apierr.Configf(op, "failed to create directions client: %v", err)
	}
	return NewDirectionsClient(client), nil
}

// RouteMatrix returns a Routes API client. The caller must Close it.
func (f *Factory) RouteMatrix(ctx context.Context) (*RouteMatrixClientImpl, error) {
	const op = "gcp.RouteMatrix"
	opts, err := f.keyOptions(op)
	if err != nil {
		return nil, err
	}
	client, err := routing.NewRoutesClient(ctx, opts...)
	if err != nil {
		return nil, apierr.Configf(op, "failed to create routes client: %v", err)
	}
	return NewRouteMatrixClient(client), nil
}
