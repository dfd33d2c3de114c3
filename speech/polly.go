// Package speech synthesizes speech with Amazon Polly and Google Cloud Text-to-Speech.
package speech

import (
	"context"
	"fmt"
	"io"
	"slices"
	"strings"
	"unicode/utf8"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/polly"
	"github.com/aws/aws-sdk-go-v2/service/polly/types"

	"github.com/gurre/cloud-api-samples/apierr"
	"github.com/gurre/cloud-api-samples/aws"
)

// Polly request defaults.
const (
	DefaultVoice    = "Mizuki"
	DefaultLanguage = "ja-JP"
	EngineStandard  = "standard"
	EngineNeural    = "neural"
	// MaxPollyChars is the character limit of one SynthesizeSpeech request.
	MaxPollyChars = 3000
)

// Request parameterizes a synthesis. Zero values select the defaults.
type Request struct {
	Text         string
	VoiceID      string
	Engine       string
	LanguageCode string
}

// Voice is one Polly voice.
type Voice struct {
	ID       string   `json:"Id"`
	Name     string   `json:"Name"`
	Gender   string   `json:"Gender"`
	Language string   `json:"LanguageCode"`
	Engines  []string `json:"SupportedEngines"`
}

// BuildSynthesizeInput validates a request and maps it to the Polly request shape. The output
// format is always MP3.
func BuildSynthesizeInput(req Request) (*polly.SynthesizeSpeechInput, error) {
	const op = "speech.BuildSynthesizeInput"
	if strings.TrimSpace(req.Text) == "" {
		return nil, apierr.LocalIOf(op, "text is empty")
	}
	if n := utf8.RuneCountInString(req.Text); n > MaxPollyChars {
		return nil, apierr.LocalIOf(op, "text is %d characters, the limit is %d", n, MaxPollyChars)
	}

	voice := req.VoiceID
	if voice == "" {
		voice = DefaultVoice
	}
	engine := req.Engine
	if engine == "" {
		engine = EngineStandard
	}
	if engine != EngineStandard && engine != EngineNeural {
		return nil, apierr.Configf(op, "engine must be %q or %q, got %q", EngineStandard, EngineNeural, engine)
	}
	lang := req.LanguageCode
	if lang == "" {
		lang = DefaultLanguage
	}

	return &polly.SynthesizeSpeechInput{
		Text:         sdkaws.String(req.Text),
		OutputFormat: types.OutputFormatMp3,
		VoiceId:      types.VoiceId(voice),
		LanguageCode: types.LanguageCode(lang),
		Engine:       types.Engine(engine),
	}, nil
}

// Polly wraps Amazon Polly.
type Polly struct {
	client aws.PollyClient
}

// NewPolly creates a Polly.
func NewPolly(client aws.PollyClient) *Polly {
	return &Polly{client: client}
}

// Synthesize returns the MP3 audio for req.
func (p *Polly) Synthesize(ctx context.Context, req Request) ([]byte, error) {
	const op = "polly.SynthesizeSpeech"
	in, err := BuildSynthesizeInput(req)
	if err != nil {
		return nil, err
	}
	out, err := p.client.SynthesizeSpeech(ctx, in)
	if err != nil {
		return nil, apierr.Classify(op, err)
	}
	if out.AudioStream == nil {
		return nil, apierr.Shapef(op, "response has no AudioStream")
	}
	defer out.AudioStream.Close()

	audio, err := io.ReadAll(out.AudioStream)
	if err != nil {
		return nil, apierr.Classify(op, fmt.Errorf("failed to read audio stream: %w", err))
	}
	if len(audio) == 0 {
		return nil, apierr.Shapef(op, "audio stream is empty")
	}
	return audio, nil
}

// ListVoices lists the voices of a language, following NextToken until the listing ends.
func (p *Polly) ListVoices(ctx context.Context, languageCode string) ([]Voice, error) {
	const op = "polly.DescribeVoices"
	if languageCode == "" {
		languageCode = DefaultLanguage
	}

	voices := make([]Voice, 0)
	var token *string
	for {
		out, err := p.client.DescribeVoices(ctx, &polly.DescribeVoicesInput{
			LanguageCode: types.LanguageCode(languageCode),
			NextToken:    token,
		})
		if err != nil {
			return nil, apierr.Classify(op, err)
		}
		voices = append(voices, NormalizeVoices(out)...)
		if out.NextToken == nil || *out.NextToken == "" {
			return voices, nil
		}
		token = out.NextToken
	}
}

// NormalizeVoices flattens the voice descriptions of one page.
func NormalizeVoices(out *polly.DescribeVoicesOutput) []Voice {
	voices := make([]Voice, 0)
	if out == nil {
		return voices
	}
	for _, v := range out.Voices {
		voice := Voice{
			ID:       string(v.Id),
			Name:     sdkaws.ToString(v.Name),
			Gender:   string(v.Gender),
			Language: string(v.LanguageCode),
			Engines:  make([]string, 0, len(v.SupportedEngines)),
		}
		if voice.Name == "" {
			voice.Name = voice.ID
		}
		for _, e := range v.SupportedEngines {
			voice.Engines = append(voice.Engines, string(e))
		}
		voices = append(voices, voice)
	}
	return voices
}

// EngineFor returns the standard engine when the voice supports it and neural otherwise.
func EngineFor(v Voice) string {
	if slices.Contains(v.Engines, EngineStandard) {
		return EngineStandard
	}
	return EngineNeural
}

// AudioName is the artifact name of a per-voice sample.
func AudioName(v Voice, engine string) string {
	return fmt.Sprintf("speech-%s-%s.mp3", v.Name, engine)
}
