package speech

import (
	"context"
	"encoding/base64"
	"strings"

	"google.golang.org/api/texttospeech/v1"

	"github.com/gurre/cloud-api-samples/apierr"
	"github.com/gurre/cloud-api-samples/gcp"
)

// Google Text-to-Speech defaults.
const (
	DefaultGoogleVoice  = "ja-JP-Neural2-B"
	DefaultGoogleGender = "FEMALE"
	// MaxGoogleTextBytes is the input limit of one synthesize request.
	MaxGoogleTextBytes = 5000
)

// GoogleVoice selects a Cloud Text-to-Speech voice.
type GoogleVoice struct {
	LanguageCode string
	Name         string
	Gender       string
}

// BuildGoogleRequest maps text and a voice to an MP3 synthesis request.
func BuildGoogleRequest(text string, voice GoogleVoice) (*texttospeech.SynthesizeSpeechRequest, error) {
	const op = "speech.BuildGoogleRequest"
	if strings.TrimSpace(text) == "" {
		return nil, apierr.LocalIOf(op, "text is empty")
	}
	if len(text) > MaxGoogleTextBytes {
		return nil, apierr.LocalIOf(op, "text is %d bytes, the limit is %d", len(text), MaxGoogleTextBytes)
	}
	if voice.LanguageCode == "" {
		voice.LanguageCode = DefaultLanguage
	}
	if voice.Name == "" {
		voice.Name = DefaultGoogleVoice
	}
	if voice.Gender == "" {
		voice.Gender = DefaultGoogleGender
	}

	return &texttospeech.SynthesizeSpeechRequest{
		Input: &texttospeech.SynthesisInput{Text: text},
		Voice: &texttospeech.VoiceSelectionParams{
			LanguageCode: voice.LanguageCode,
			Name:         voice.Name,
			SsmlGender:   voice.Gender,
		},
		AudioConfig: &texttospeech.AudioConfig{AudioEncoding: "MP3"},
	}, nil
}

// GoogleTTS wraps Cloud Text-to-Speech.
type GoogleTTS struct {
	client gcp.TextToSpeechClient
	voice  GoogleVoice
}

// NewGoogleTTS creates a GoogleTTS using voice. Empty voice fields select the defaults.
func NewGoogleTTS(client gcp.TextToSpeechClient, voice GoogleVoice) *GoogleTTS {
	return &GoogleTTS{client: client, voice: voice}
}

// Synthesize returns the decoded MP3 audio for text.
func (g *GoogleTTS) Synthesize(ctx context.Context, text string) ([]byte, error) {
	const op = "texttospeech.text.synthesize"
	req, err := BuildGoogleRequest(text, g.voice)
	if err != nil {
		return nil, err
	}
	resp, err := g.client.Synthesize(ctx, req)
	if err != nil {
		return nil, apierr.Classify(op, err)
	}
	if resp == nil || resp.AudioContent == "" {
		return nil, apierr.Shapef(op, "response has no audioContent")
	}
	audio, err := base64.StdEncoding.DecodeString(resp.AudioContent)
	if err != nil {
		return nil, apierr.Shapef(op, "audioContent is not base64: %v", err)
	}
	return audio, nil
}
