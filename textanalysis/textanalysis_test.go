package textanalysis

import (
	"context"
	"strings"
	"testing"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/comprehend"
	"github.com/aws/aws-sdk-go-v2/service/comprehend/types"
	"github.com/aws/smithy-go"
	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gurre/cloud-api-samples/apierr"
)

type mockComprehendClient struct {
	sentiment *comprehend.DetectSentimentOutput
	phrases   *comprehend.DetectKeyPhrasesOutput
	entities  *comprehend.DetectEntitiesOutput
	languages *comprehend.DetectDominantLanguageOutput
	err       error

	calls        int
	lastLanguage types.LanguageCode
}

func (m *mockComprehendClient) DetectSentiment(ctx context.Context, params *comprehend.DetectSentimentInput, optFns ...func(*comprehend.Options)) (*comprehend.DetectSentimentOutput, error) {
	m.calls++
	m.lastLanguage = params.LanguageCode
	return m.sentiment, m.err
}

func (m *mockComprehendClient) DetectKeyPhrases(ctx context.Context, params *comprehend.DetectKeyPhrasesInput, optFns ...func(*comprehend.Options)) (*comprehend.DetectKeyPhrasesOutput, error) {
	m.calls++
	m.lastLanguage = params.LanguageCode
	return m.phrases, m.err
}

func (m *mockComprehendClient) DetectEntities(ctx context.Context, params *comprehend.DetectEntitiesInput, optFns ...func(*comprehend.Options)) (*comprehend.DetectEntitiesOutput, error) {
	m.calls++
	return m.entities, m.err
}

func (m *mockComprehendClient) DetectDominantLanguage(ctx context.Context, params *comprehend.DetectDominantLanguageInput, optFns ...func(*comprehend.Options)) (*comprehend.DetectDominantLanguageOutput, error) {
	m.calls++
	return m.languages, m.err
}

func score(p, n, neu, mix float32) *types.SentimentScore {
	return &types.SentimentScore{
		Positive: sdkaws.Float32(p),
		Negative: sdkaws.Float32(n),
		Neutral:  sdkaws.Float32(neu),
		Mixed:    sdkaws.Float32(mix),
	}
}

func TestSentiment(t *testing.T) {
	client := &mockComprehendClient{sentiment: &comprehend.DetectSentimentOutput{
		Sentiment:      types.SentimentTypePositive,
		SentimentScore: score(0.95, 0.01, 0.03, 0.01),
	}}
	a := NewAnalyzer(client, "")

	s, err := a.Sentiment(context.Background(), "今日は最高に楽しい一日でした！")
	require.NoError(t, err)
	assert.Equal(t, "POSITIVE", s.Sentiment)
	assert.Equal(t, types.LanguageCode("ja"), client.lastLanguage)

	for _, v := range []float32{s.SentimentScore.Positive, s.SentimentScore.Negative, s.SentimentScore.Neutral, s.SentimentScore.Mixed} {
		assert.GreaterOrEqual(t, v, float32(0))
		assert.LessOrEqual(t, v, float32(1))
	}
}

func TestNormalizeSentimentShapeErrors(t *testing.T) {
	tests := []struct {
		name string
		out  *comprehend.DetectSentimentOutput
	}{
		{"nil output", nil},
		{"no scores", &comprehend.DetectSentimentOutput{Sentiment: types.SentimentTypeNeutral}},
		{"no label", &comprehend.DetectSentimentOutput{SentimentScore: score(0.1, 0.1, 0.7, 0.1)}},
		{"score above one", &comprehend.DetectSentimentOutput{Sentiment: types.SentimentTypeMixed, SentimentScore: score(1.2, 0, 0, 0)}},
		{"negative score", &comprehend.DetectSentimentOutput{Sentiment: types.SentimentTypeMixed, SentimentScore: score(0, -0.1, 0, 0)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NormalizeSentiment(tt.out)
			require.Error(t, err)
			assert.True(t, apierr.Is(err, apierr.KindShape))
		})
	}
}

func TestEmptyCollectionsAreNotErrors(t *testing.T) {
	client := &mockComprehendClient{
		phrases:   &comprehend.DetectKeyPhrasesOutput{},
		entities:  &comprehend.DetectEntitiesOutput{},
		languages: &comprehend.DetectDominantLanguageOutput{},
	}
	a := NewAnalyzer(client, "ja")
	ctx := context.Background()

	phrases, err := a.KeyPhrases(ctx, "今日は普通の日でした。")
	require.NoError(t, err)
	assert.NotNil(t, phrases)
	assert.Empty(t, phrases)

	entities, err := a.Entities(ctx, "今日は普通の日でした。")
	require.NoError(t, err)
	assert.NotNil(t, entities)
	assert.Empty(t, entities)

	langs, err := a.DominantLanguages(ctx, "今日は普通の日でした。")
	require.NoError(t, err)
	assert.Empty(t, langs)
}

func TestNormalizers(t *testing.T) {
	phrases := NormalizeKeyPhrases(&comprehend.DetectKeyPhrasesOutput{KeyPhrases: []types.KeyPhrase{
		{Text: sdkaws.String("美味しいランチ"), Score: sdkaws.Float32(0.99)},
	}})
	assert.Equal(t, []KeyPhrase{{Text: "美味しいランチ", Score: 0.99}}, phrases)

	entities := NormalizeEntities(&comprehend.DetectEntitiesOutput{Entities: []types.Entity{
		{Text: sdkaws.String("カルモジイン"), Type: types.EntityTypeLocation, Score: sdkaws.Float32(0.8)},
	}})
	assert.Equal(t, []Entity{{Text: "カルモジイン", Type: "LOCATION", Score: 0.8}}, entities)

	langs := NormalizeLanguages(&comprehend.DetectDominantLanguageOutput{Languages: []types.DominantLanguage{
		{LanguageCode: sdkaws.String("ja"), Score: sdkaws.Float32(0.99)},
		{Score: sdkaws.Float32(0.01)},
	}})
	assert.Equal(t, []Language{{LanguageCode: "ja", Score: 0.99}}, langs)
}

func TestValidateTextRejectsBeforeCall(t *testing.T) {
	client := &mockComprehendClient{}
	a := NewAnalyzer(client, "ja")

	_, err := a.Sentiment(context.Background(), "   ")
	assert.True(t, apierr.Is(err, apierr.KindLocalIO))

	_, err = a.KeyPhrases(context.Background(), strings.Repeat("あ", 2000))
	assert.True(t, apierr.Is(err, apierr.KindLocalIO))

	assert.Equal(t, 0, client.calls)
}

func TestProviderError(t *testing.T) {
	client := &mockComprehendClient{err: &smithy.GenericAPIError{Code: "TextSizeLimitExceededException", Message: "Input text size exceeds limit"}}
	_, err := NewAnalyzer(client, "ja").Entities(context.Background(), "text")
	require.Error(t, err)
	assert.True(t, apierr.Is(err, apierr.KindProvider))
	assert.Contains(t, err.Error(), "Input text size exceeds limit")
}

func TestReport(t *testing.T) {
	a := Analysis{
		Filename:   "comprehend_sample1",
		Text:       "今日は最高に楽しい一日でした！\n",
		Sentiment:  &Sentiment{Sentiment: "POSITIVE", SentimentScore: Scores{Positive: 0.95, Negative: 0.01, Neutral: 0.03, Mixed: 0.01}},
		KeyPhrases: []KeyPhrase{},
		Entities:   nil,
		Languages:  []Language{{LanguageCode: "ja", Score: 0.99}},
	}

	arts, err := Report(a)
	require.NoError(t, err)

	byName := map[string]string{}
	for _, art := range arts {
		byName[art.Name] = string(art.Body)
	}
	assert.Len(t, byName, 9)

	assert.Contains(t, byName["comprehend/comprehend_sample1_sentiment.txt"], "Sentiment: POSITIVE\nPositive: 0.950\n")
	assert.Contains(t, byName["comprehend/comprehend_sample1_key_phrases.txt"], "No key phrases detected.")
	assert.Contains(t, byName["comprehend/comprehend_sample1_entities.txt"], "No entities detected.")
	assert.Contains(t, byName["comprehend/comprehend_sample1_language.txt"], "Detected language: ja")
	assert.Equal(t, "[]\n", byName["comprehend/comprehend_sample1_key_phrases.json"])
	assert.Equal(t, "null\n", byName["comprehend/comprehend_sample1_entities.json"], "failed analyses are recorded as absent")

	var got map[string]any
	require.NoError(t, json.Unmarshal([]byte(byName["comprehend/comprehend_sample1_summary.json"]), &got))
	assert.Equal(t, "comprehend_sample1", got["filename"])
	assert.Equal(t, "ja", got["language"])
	assert.Nil(t, got["entities"])
	assert.Equal(t, []any{}, got["key_phrases"])
}

func TestReportWithoutLanguage(t *testing.T) {
	arts, err := Report(Analysis{Filename: "x", Text: "t"})
	require.NoError(t, err)
	for _, art := range arts {
		switch art.Name {
		case "comprehend/x_language.json":
			assert.JSONEq(t, `{"language_code": null}`, string(art.Body))
		case "comprehend/x_sentiment.txt":
			assert.Contains(t, string(art.Body), "Sentiment analysis result is not available.")
		}
	}
}
