// Package translation translates text with Amazon Translate and the Cloud Translation v2 API,
// and detects the language of a text with Amazon Comprehend.
//
// Translation is not round-trip stable: translating ja→en→ja rarely returns the original text,
// so callers never compare a round trip for equality.
package translation

import (
	"context"
	"fmt"
	"html"
	"regexp"
	"strings"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/translate"

	"github.com/gurre/cloud-api-samples/apierr"
	"github.com/gurre/cloud-api-samples/aws"
	"github.com/gurre/cloud-api-samples/gcp"
	"github.com/gurre/cloud-api-samples/textanalysis"
)

// Auto asks the provider to detect the source language.
const Auto = "auto"

// MaxTextBytes is the largest text Amazon Translate accepts in one synchronous call.
const MaxTextBytes = 10000

var languagePattern = regexp.MustCompile(`^[a-z]{2,3}(-[A-Za-z]{2,4})?$`)

// Result is a translated text and the language pair it was translated between. Source holds the
// detected language when the request used Auto.
type Result struct {
	Text   string `json:"translatedText"`
	Source string `json:"sourceLanguage"`
	Target string `json:"targetLanguage"`
}

// ValidateLanguages checks a language pair. Auto is accepted as the source only.
func ValidateLanguages(source, target string) error {
	const op = "translation.ValidateLanguages"
	if source != Auto && !languagePattern.MatchString(source) {
		return apierr.Configf(op, "invalid source language code %q", source)
	}
	if !languagePattern.MatchString(target) {
		return apierr.Configf(op, "invalid target language code %q", target)
	}
	if source == target {
		return apierr.Configf(op, "source and target languages must be different")
	}
	return nil
}

func validateText(op, text string, limit int) error {
	if strings.TrimSpace(text) == "" {
		return apierr.LocalIOf(op, "text is empty")
	}
	if limit > 0 && len(text) > limit {
		return apierr.LocalIOf(op, "text is %d bytes, the limit is %d", len(text), limit)
	}
	return nil
}

// BuildTranslateInput maps a translation request to the Amazon Translate request shape.
func BuildTranslateInput(text, source, target string) (*translate.TranslateTextInput, error) {
	const op = "translation.BuildTranslateInput"
	if err := ValidateLanguages(source, target); err != nil {
		return nil, err
	}
	if err := validateText(op, text, MaxTextBytes); err != nil {
		return nil, err
	}
	return &translate.TranslateTextInput{
		Text:               sdkaws.String(text),
		SourceLanguageCode: sdkaws.String(source),
		TargetLanguageCode: sdkaws.String(target),
	}, nil
}

// AWSTranslator translates with Amazon Translate.
type AWSTranslator struct {
	client aws.TranslateClient
}

// NewAWSTranslator creates an AWSTranslator.
func NewAWSTranslator(client aws.TranslateClient) *AWSTranslator {
	return &AWSTranslator{client: client}
}

// Translate translates text from source to target. source may be Auto.
func (t *AWSTranslator) Translate(ctx context.Context, text, source, target string) (Result, error) {
	const op = "translate.TranslateText"
	input, err := BuildTranslateInput(text, source, target)
	if err != nil {
		return Result{}, err
	}
	out, err := t.client.TranslateText(ctx, input)
	if err != nil {
		return Result{}, apierr.Classify(op, err)
	}
	return NormalizeTranslateOutput(out, source, target)
}

// NormalizeTranslateOutput extracts the translated text. A response without it is a shape error.
func NormalizeTranslateOutput(out *translate.TranslateTextOutput, source, target string) (Result, error) {
	const op = "translation.NormalizeTranslateOutput"
	if out == nil || out.TranslatedText == nil {
		return Result{}, apierr.Shapef(op, "response has no TranslatedText")
	}
	r := Result{Text: *out.TranslatedText, Source: source, Target: target}
	if out.SourceLanguageCode != nil && *out.SourceLanguageCode != "" {
		r.Source = *out.SourceLanguageCode
	}
	if out.TargetLanguageCode != nil && *out.TargetLanguageCode != "" {
		r.Target = *out.TargetLanguageCode
	}
	return r, nil
}

// DetectLanguage returns the dominant language of text. When Comprehend detects nothing the
// result is the zero Language and no error.
func DetectLanguage(ctx context.Context, client aws.ComprehendClient, text string) (textanalysis.Language, error) {
	langs, err := textanalysis.NewAnalyzer(client, "").DominantLanguages(ctx, text)
	if err != nil {
		return textanalysis.Language{}, err
	}
	if len(langs) == 0 {
		return textanalysis.Language{}, nil
	}
	return langs[0], nil
}

// FormatHTML asks the Cloud Translation API to keep markup intact.
const FormatHTML = "html"

// GoogleTranslator translates with the Cloud Translation v2 API.
type GoogleTranslator struct {
	client gcp.TranslateClient
	format string
}

// NewGoogleTranslator creates a GoogleTranslator that sends text in HTML format.
func NewGoogleTranslator(client gcp.TranslateClient) *GoogleTranslator {
	return &GoogleTranslator{client: client, format: FormatHTML}
}

// WithFormat returns a copy of t sending text in format ("html" or "text").
func (t *GoogleTranslator) WithFormat(format string) *GoogleTranslator {
	return &GoogleTranslator{client: t.client, format: format}
}

// Translate translates text and unescapes the HTML entities the API returns.
func (t *GoogleTranslator) Translate(ctx context.Context, text, source, target string) (string, error) {
	const op = "translate.translations.list"
	if err := ValidateLanguages(source, target); err != nil {
		return "", err
	}
	if err := validateText(op, text, 0); err != nil {
		return "", err
	}
	if source == Auto {
		source = ""
	}

	resp, err := t.client.Translate(ctx, []string{text}, source, target, t.format)
	if err != nil {
		return "", apierr.Classify(op, fmt.Errorf("translation failed: %w", err))
	}
	if resp == nil || len(resp.Translations) == 0 {
		return "", apierr.Shapef(op, "response has no translations")
	}
	return html.UnescapeString(resp.Translations[0].TranslatedText), nil
}

// TranslateLines translates every non-blank line with its own call and keeps blank lines, so
// the line structure of plain text survives translation. The first failed line aborts the text.
func (t *GoogleTranslator) TranslateLines(ctx context.Context, text, source, target string) (string, error) {
	if err := ValidateLanguages(source, target); err != nil {
		return "", err
	}
	lines := strings.Split(text, "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			out = append(out, "")
			continue
		}
		translated, err := t.Translate(ctx, line, source, target)
		if err != nil {
			return "", err
		}
		out = append(out, translated)
	}
	return strings.Join(out, "\n"), nil
}
