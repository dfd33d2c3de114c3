// Package textanalysis runs the single-document Amazon Comprehend analyses: sentiment, key
// phrases, entities and dominant language.
package textanalysis

import (
	"context"
	"fmt"
	"strings"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/comprehend"
	"github.com/aws/aws-sdk-go-v2/service/comprehend/types"

	"github.com/gurre/cloud-api-samples/apierr"
	"github.com/gurre/cloud-api-samples/aws"
)

const (
	// DefaultLanguage is the document language used when none is given.
	DefaultLanguage = "ja"
	// MaxTextBytes is the largest UTF-8 document the synchronous APIs accept.
	MaxTextBytes = 5000
)

// Scores are the sentiment confidences. Each lies in [0,1] and they sum to about 1.
type Scores struct {
	Positive float32 `json:"Positive"`
	Negative float32 `json:"Negative"`
	Neutral  float32 `json:"Neutral"`
	Mixed    float32 `json:"Mixed"`
}

// Sentiment is the overall sentiment of a document.
type Sentiment struct {
	Sentiment      string `json:"Sentiment"`
	SentimentScore Scores `json:"SentimentScore"`
}

// KeyPhrase is a noun phrase found in the document.
type KeyPhrase struct {
	Text  string  `json:"Text"`
	Score float32 `json:"Score"`
}

// Entity is a named entity such as a PERSON or LOCATION.
type Entity struct {
	Text  string  `json:"Text"`
	Type  string  `json:"Type"`
	Score float32 `json:"Score"`
}

// Language is one detected language.
type Language struct {
	LanguageCode string  `json:"LanguageCode"`
	Score        float32 `json:"Score"`
}

// Analyzer runs Comprehend analyses in one document language.
type Analyzer struct {
	client   aws.ComprehendClient
	language string
}

// NewAnalyzer creates an Analyzer. An empty language selects DefaultLanguage.
func NewAnalyzer(client aws.ComprehendClient, language string) *Analyzer {
	if language == "" {
		language = DefaultLanguage
	}
	return &Analyzer{client: client, language: language}
}

// ValidateText rejects documents the API would refuse. The error is a local I/O error so a
// loop over input files skips the document instead of stopping.
func ValidateText(text string) error {
	const op = "textanalysis.ValidateText"
	if strings.TrimSpace(text) == "" {
		return apierr.LocalIOf(op, "text is empty")
	}
	if len(text) > MaxTextBytes {
		return apierr.LocalIOf(op, "text is %d bytes, the limit is %d", len(text), MaxTextBytes)
	}
	return nil
}

// Sentiment detects the overall sentiment of text.
func (a *Analyzer) Sentiment(ctx context.Context, text string) (Sentiment, error) {
	const op = "comprehend.DetectSentiment"
	if err := ValidateText(text); err != nil {
		return Sentiment{}, err
	}
	out, err := a.client.DetectSentiment(ctx, &comprehend.DetectSentimentInput{
		Text:         sdkaws.String(text),
		LanguageCode: types.LanguageCode(a.language),
	})
	if err != nil {
		return Sentiment{}, apierr.Classify(op, err)
	}
	return NormalizeSentiment(out)
}

// NormalizeSentiment extracts the label and the four scores. A missing score block or a score
// outside [0,1] is a shape error.
func NormalizeSentiment(out *comprehend.DetectSentimentOutput) (Sentiment, error) {
	const op = "textanalysis.NormalizeSentiment"
	if out == nil || out.SentimentScore == nil {
		return Sentiment{}, apierr.Shapef(op, "response has no SentimentScore")
	}
	if out.Sentiment == "" {
		return Sentiment{}, apierr.Shapef(op, "response has no Sentiment")
	}

	s := out.SentimentScore
	scores := Scores{
		Positive: sdkaws.ToFloat32(s.Positive),
		Negative: sdkaws.ToFloat32(s.Negative),
		Neutral:  sdkaws.ToFloat32(s.Neutral),
		Mixed:    sdkaws.ToFloat32(s.Mixed),
	}
	for name, v := range map[string]float32{
		"Positive": scores.Positive,
		"Negative": scores.Negative,
		"Neutral":  scores.Neutral,
		"Mixed":    scores.Mixed,
	} {
		if v < 0 || v > 1 {
			return Sentiment{}, apierr.Shapef(op, "%s score %f is outside [0,1]", name, v)
		}
	}
	return Sentiment{Sentiment: string(out.Sentiment), SentimentScore: scores}, nil
}

// KeyPhrases extracts key phrases from text.
func (a *Analyzer) KeyPhrases(ctx context.Context, text string) ([]KeyPhrase, error) {
	const op = "comprehend.DetectKeyPhrases"
	if err := ValidateText(text); err != nil {
		return nil, err
	}
	out, err := a.client.DetectKeyPhrases(ctx, &comprehend.DetectKeyPhrasesInput{
		Text:         sdkaws.String(text),
		LanguageCode: types.LanguageCode(a.language),
	})
	if err != nil {
		return nil, apierr.Classify(op, err)
	}
	return NormalizeKeyPhrases(out), nil
}

// NormalizeKeyPhrases returns an empty, non-nil slice when nothing was found.
func NormalizeKeyPhrases(out *comprehend.DetectKeyPhrasesOutput) []KeyPhrase {
	phrases := make([]KeyPhrase, 0)
	if out == nil {
		return phrases
	}
	for _, p := range out.KeyPhrases {
		phrases = append(phrases, KeyPhrase{Text: sdkaws.ToString(p.Text), Score: sdkaws.ToFloat32(p.Score)})
	}
	return phrases
}

// Entities detects named entities in text.
func (a *Analyzer) Entities(ctx context.Context, text string) ([]Entity, error) {
	const op = "comprehend.DetectEntities"
	if err := ValidateText(text); err != nil {
		return nil, err
	}
	out, err := a.client.DetectEntities(ctx, &comprehend.DetectEntitiesInput{
		Text:         sdkaws.String(text),
		LanguageCode: types.LanguageCode(a.language),
	})
	if err != nil {
		return nil, apierr.Classify(op, err)
	}
	return NormalizeEntities(out), nil
}

// NormalizeEntities returns an empty, non-nil slice when nothing was found.
func NormalizeEntities(out *comprehend.DetectEntitiesOutput) []Entity {
	entities := make([]Entity, 0)
	if out == nil {
		return entities
	}
	for _, e := range out.Entities {
		entities = append(entities, Entity{
			Text:  sdkaws.ToString(e.Text),
			Type:  string(e.Type),
			Score: sdkaws.ToFloat32(e.Score),
		})
	}
	return entities
}

// DominantLanguages detects the languages of text, most likely first. It needs no language code.
func (a *Analyzer) DominantLanguages(ctx context.Context, text string) ([]Language, error) {
	const op = "comprehend.DetectDominantLanguage"
	if err := ValidateText(text); err != nil {
		return nil, err
	}
	out, err := a.client.DetectDominantLanguage(ctx, &comprehend.DetectDominantLanguageInput{
		Text: sdkaws.String(text),
	})
	if err != nil {
		return nil, apierr.Classify(op, err)
	}
	return NormalizeLanguages(out), nil
}

// NormalizeLanguages returns an empty, non-nil slice when nothing was detected.
func NormalizeLanguages(out *comprehend.DetectDominantLanguageOutput) []Language {
	langs := make([]Language, 0)
	if out == nil {
		return langs
	}
	for _, l := range out.Languages {
		if l.LanguageCode == nil {
			continue
		}
		langs = append(langs, Language{LanguageCode: *l.LanguageCode, Score: sdkaws.ToFloat32(l.Score)})
	}
	return langs
}

// FormatSentiment renders the console lines for a sentiment result.
func FormatSentiment(s Sentiment) []string {
	return []string{
		fmt.Sprintf("Sentiment: %s", s.Sentiment),
		fmt.Sprintf("Positive: %.3f", s.SentimentScore.Positive),
		fmt.Sprintf("Negative: %.3f", s.SentimentScore.Negative),
		fmt.Sprintf("Neutral: %.3f", s.SentimentScore.Neutral),
		fmt.Sprintf("Mixed: %.3f", s.SentimentScore.Mixed),
	}
}

// FormatKeyPhrases renders one line per phrase.
func FormatKeyPhrases(phrases []KeyPhrase) []string {
	if len(phrases) == 0 {
		return []string{"No key phrases detected."}
	}
	lines := make([]string, 0, len(phrases))
	for _, p := range phrases {
		lines = append(lines, fmt.Sprintf("- %s (score: %.3f)", p.Text, p.Score))
	}
	return lines
}

// FormatEntities renders one line per entity.
func FormatEntities(entities []Entity) []string {
	if len(entities) == 0 {
		return []string{"No entities detected."}
	}
	lines := make([]string, 0, len(entities))
	for _, e := range entities {
		lines = append(lines, fmt.Sprintf("- %s (%s) score: %.3f", e.Text, e.Type, e.Score))
	}
	return lines
}

// FormatLanguage renders the dominant language line.
func FormatLanguage(langs []Language) string {
	if len(langs) == 0 {
		return "No language detected."
	}
	return fmt.Sprintf("Language: %s (score: %.3f)", langs[0].LanguageCode, langs[0].Score)
}
