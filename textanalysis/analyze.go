package textanalysis

import (
	"context"

	"github.com/gurre/cloud-api-samples/input"
	"github.com/gurre/cloud-api-samples/pipeline"
)

// AnalyzeFile reads one text file and runs the four analyses in order. A failed analysis is
// left absent in the result and the remaining ones still run. ok is false when the file could
// not be read; err is non-nil only when the run must stop.
func AnalyzeFile(ctx context.Context, r *pipeline.Runner, a *Analyzer, path string) (Analysis, bool, error) {
	text, ok, err := pipeline.Prepare(ctx, r, "textanalysis.ReadText", func() (string, error) {
		text, err := input.ReadText(path)
		if err != nil {
			return "", err
		}
		return text, ValidateText(text)
	})
	if err != nil || !ok {
		return Analysis{}, false, err
	}

	result := Analysis{Filename: input.Stem(path), Text: text}

	sentiment, ok, err := pipeline.Invoke(ctx, r, "comprehend.DetectSentiment", func(ctx context.Context) (Sentiment, error) {
		return a.Sentiment(ctx, text)
	})
	if err != nil {
		return Analysis{}, false, err
	}
	if ok {
		result.Sentiment = &sentiment
	}

	if result.KeyPhrases, _, err = pipeline.Invoke(ctx, r, "comprehend.DetectKeyPhrases", func(ctx context.Context) ([]KeyPhrase, error) {
		return a.KeyPhrases(ctx, text)
	}); err != nil {
		return Analysis{}, false, err
	}

	if result.Entities, _, err = pipeline.Invoke(ctx, r, "comprehend.DetectEntities", func(ctx context.Context) ([]Entity, error) {
		return a.Entities(ctx, text)
	}); err != nil {
		return Analysis{}, false, err
	}

	if result.Languages, _, err = pipeline.Invoke(ctx, r, "comprehend.DetectDominantLanguage", func(ctx context.Context) ([]Language, error) {
		return a.DominantLanguages(ctx, text)
	}); err != nil {
		return Analysis{}, false, err
	}

	return result, true, nil
}
