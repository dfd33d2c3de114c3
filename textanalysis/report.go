package textanalysis

import (
	"fmt"
	"path"
	"strings"

	"github.com/gurre/cloud-api-samples/sink"
)

// Dir is the artifact directory of the per-file analyses.
const Dir = "comprehend"

// Analysis collects the four analyses of one document. A nil field means the analysis failed;
// an empty slice means it succeeded and found nothing.
type Analysis struct {
	Filename   string      `json:"filename"`
	Text       string      `json:"original_text"`
	Sentiment  *Sentiment  `json:"sentiment"`
	KeyPhrases []KeyPhrase `json:"key_phrases"`
	Entities   []Entity    `json:"entities"`
	Languages  []Language  `json:"-"`
}

// LanguageCode returns the dominant language code, or "" when none was detected.
func (a Analysis) LanguageCode() string {
	if len(a.Languages) == 0 {
		return ""
	}
	return a.Languages[0].LanguageCode
}

type summary struct {
	Analysis
	Language *string `json:"language"`
}

type languageResult struct {
	LanguageCode *string `json:"language_code"`
}

func (a Analysis) languagePtr() *string {
	if code := a.LanguageCode(); code != "" {
		return &code
	}
	return nil
}

// Report renders the analysis as the comprehend/<stem>_*.{json,txt} artifacts.
func Report(a Analysis) ([]sink.Artifact, error) {
	name := func(suffix string) string { return path.Join(Dir, a.Filename+suffix) }

	var arts []sink.Artifact
	add := func(n string, v any) error {
		art, err := sink.JSON(n, v)
		if err != nil {
			return err
		}
		arts = append(arts, art)
		return nil
	}

	if err := add(name("_summary.json"), summary{Analysis: a, Language: a.languagePtr()}); err != nil {
		return nil, err
	}

	var sentiment []string
	if a.Sentiment != nil {
		sentiment = append([]string{"--- Result ---"}, FormatSentiment(*a.Sentiment)...)
	} else {
		sentiment = []string{"Sentiment analysis result is not available."}
	}
	arts = append(arts, sink.Lines(name("_sentiment.txt"), section("Amazon Comprehend sentiment", a, sentiment)))
	if err := add(name("_sentiment.json"), a.Sentiment); err != nil {
		return nil, err
	}

	phrases := append([]string{"--- Key phrases ---"}, FormatKeyPhrases(a.KeyPhrases)...)
	arts = append(arts, sink.Lines(name("_key_phrases.txt"), section("Key phrases", a, phrases)))
	if err := add(name("_key_phrases.json"), a.KeyPhrases); err != nil {
		return nil, err
	}

	entities := append([]string{"--- Entities ---"}, FormatEntities(a.Entities)...)
	arts = append(arts, sink.Lines(name("_entities.txt"), section("Detected entities", a, entities)))
	if err := add(name("_entities.json"), a.Entities); err != nil {
		return nil, err
	}

	lang := []string{"--- Language ---"}
	if code := a.LanguageCode(); code != "" {
		lang = append(lang, fmt.Sprintf("Detected language: %s", code))
	} else {
		lang = append(lang, "No language detected.")
	}
	arts = append(arts, sink.Lines(name("_language.txt"), section("Language detection", a, lang)))
	if err := add(name("_language.json"), languageResult{LanguageCode: a.languagePtr()}); err != nil {
		return nil, err
	}

	return arts, nil
}

func section(title string, a Analysis, body []string) []string {
	lines := []string{
		fmt.Sprintf("=== %s (%s) ===", title, a.Filename),
		"",
		"--- Text ---",
		strings.TrimRight(a.Text, "\n"),
		"",
	}
	return append(lines, body...)
}
