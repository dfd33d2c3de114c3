package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/gurre/cloud-api-samples/apierr"
	"github.com/gurre/cloud-api-samples/pipeline"
	"github.com/gurre/cloud-api-samples/translation"
)

// Request is the input event of the function.
type Request struct {
	Texts      []string `json:"texts"`
	SourceLang string   `json:"sourceLang"`
	TargetLang string   `json:"targetLang"`
}

// Translation is one translated text. Index is the position of the text in the request.
type Translation struct {
	Index int `json:"index"`
	translation.Result
}

// Response is the output of the function. Texts that failed are left out of Translations and
// counted in Skipped.
type Response struct {
	RunID        string        `json:"runId,omitempty"`
	Translations []Translation `json:"translations"`
	Skipped      int64         `json:"skipped"`
	Error        string        `json:"error,omitempty"`
}

// Handler translates the texts of one event with Amazon Translate.
type Handler struct {
	translator *translation.AWSTranslator
	warmer     *Warmer
	log        *zap.Logger
}

// NewHandler creates a Handler. warmer may be nil, in which case warmup events are answered
// without self-invocation.
func NewHandler(translator *translation.AWSTranslator, warmer *Warmer, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{translator: translator, warmer: warmer, log: log}
}

// Handle processes one raw event. Request problems are reported in Response.Error rather than as
// an invocation error so the caller always gets a body back.
func (h *Handler) Handle(ctx context.Context, event json.RawMessage) (any, error) {
	if warmup, ok := IsWarmupEvent(event); ok {
		return h.warmer.Handle(ctx, warmup), nil
	}

	var req Request
	if err := json.Unmarshal(event, &req); err != nil {
		return &Response{Error: fmt.Sprintf("invalid request: %v", err)}, nil
	}
	return h.Translate(ctx, req), nil
}

// Translate runs every text through the failure policy: configuration errors stop the request,
// any other failure skips that text.
func (h *Handler) Translate(ctx context.Context, req Request) *Response {
	if err := validateRequest(&req); err != nil {
		return &Response{Error: err.Error()}
	}

	// The response is the only output; nothing is emitted.
	r := pipeline.NewRunner(pipeline.Options{
		Logger:  h.log,
		Out:     io.Discard,
		Command: "translate-lambda",
	})

	resp := &Response{RunID: r.RunID(), Translations: []Translation{}}
	for i, text := range req.Texts {
		res, ok, err := pipeline.Invoke(ctx, r, "translate.TranslateText", func(ctx context.Context) (translation.Result, error) {
			return h.translator.Translate(ctx, text, req.SourceLang, req.TargetLang)
		})
		if err != nil {
			resp.Error = err.Error()
			break
		}
		if !ok {
			continue
		}
		resp.Translations = append(resp.Translations, Translation{Index: i, Result: res})
	}

	report := r.Finish(ctx, "")
	resp.Skipped = report.Skipped
	return resp
}

func validateRequest(req *Request) error {
	const op = "translate-lambda.Request"
	if req.Texts == nil {
		return apierr.Configf(op, "texts is required")
	}
	if strings.TrimSpace(req.SourceLang) == "" {
		req.SourceLang = translation.Auto
	}
	if strings.TrimSpace(req.TargetLang) == "" {
		return apierr.Configf(op, "targetLang is required")
	}
	if req.SourceLang == req.TargetLang {
		return apierr.Configf(op, "sourceLang and targetLang must be different")
	}
	return translation.ValidateLanguages(req.SourceLang, req.TargetLang)
}
