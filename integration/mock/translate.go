package mock

import (
	"context"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/translate"
)

// TranslateClient translates through a fixed phrase table. Unknown text comes back in brackets.
type TranslateClient struct {
	mu      sync.Mutex
	Phrases map[string]string
	// Err fails every call when set.
	Err    error
	Inputs []*translate.TranslateTextInput
}

// NewTranslateClient creates a fake with a phrase table.
func NewTranslateClient(phrases map[string]string) *TranslateClient {
	return &TranslateClient{Phrases: phrases}
}

// TranslateText looks the text up in the phrase table.
func (m *TranslateClient) TranslateText(ctx context.Context, params *translate.TranslateTextInput, optFns ...func(*translate.Options)) (*translate.TranslateTextOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Inputs = append(m.Inputs, params)
	if m.Err != nil {
		return nil, m.Err
	}
	text := aws.ToString(params.Text)
	translated, ok := m.Phrases[text]
	if !ok {
		translated = "[" + text + "]"
	}
	source := aws.ToString(params.SourceLanguageCode)
	if source == "auto" {
		source = "ja"
	}
	return &translate.TranslateTextOutput{
		TranslatedText:     aws.String(translated),
		SourceLanguageCode: aws.String(source),
		TargetLanguageCode: params.TargetLanguageCode,
	}, nil
}
