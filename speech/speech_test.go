package speech

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"io"
	"strings"
	"testing"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/polly"
	"github.com/aws/aws-sdk-go-v2/service/polly/types"
	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/texttospeech/v1"

	"github.com/gurre/cloud-api-samples/apierr"
	"github.com/gurre/cloud-api-samples/pipeline"
	"github.com/gurre/cloud-api-samples/sink"
	"github.com/gurre/cloud-api-samples/sink/sinktest"
)

type mockPollyClient struct {
	synthInputs []*polly.SynthesizeSpeechInput
	audio       []byte
	synthErr    error

	describeInputs []*polly.DescribeVoicesInput
	pages          []*polly.DescribeVoicesOutput
}

func (m *mockPollyClient) SynthesizeSpeech(ctx context.Context, params *polly.SynthesizeSpeechInput, optFns ...func(*polly.Options)) (*polly.SynthesizeSpeechOutput, error) {
	m.synthInputs = append(m.synthInputs, params)
	if m.synthErr != nil {
		return nil, m.synthErr
	}
	return &polly.SynthesizeSpeechOutput{AudioStream: io.NopCloser(bytes.NewReader(m.audio))}, nil
}

func (m *mockPollyClient) DescribeVoices(ctx context.Context, params *polly.DescribeVoicesInput, optFns ...func(*polly.Options)) (*polly.DescribeVoicesOutput, error) {
	i := len(m.describeInputs)
	m.describeInputs = append(m.describeInputs, params)
	if i >= len(m.pages) {
		return nil, errors.New("unexpected page request")
	}
	return m.pages[i], nil
}

type mockTTSClient struct {
	reqs []*texttospeech.SynthesizeSpeechRequest
	resp *texttospeech.SynthesizeSpeechResponse
	err  error
}

func (m *mockTTSClient) Synthesize(ctx context.Context, req *texttospeech.SynthesizeSpeechRequest) (*texttospeech.SynthesizeSpeechResponse, error) {
	m.reqs = append(m.reqs, req)
	return m.resp, m.err
}

func TestBuildSynthesizeInputDefaults(t *testing.T) {
	in, err := BuildSynthesizeInput(Request{Text: "こんにちは"})
	require.NoError(t, err)

	assert.Equal(t, "こんにちは", sdkaws.ToString(in.Text))
	assert.Equal(t, types.VoiceId("Mizuki"), in.VoiceId)
	assert.Equal(t, types.Engine("standard"), in.Engine)
	assert.Equal(t, types.LanguageCode("ja-JP"), in.LanguageCode)
	assert.Equal(t, types.OutputFormatMp3, in.OutputFormat)
}

func TestBuildSynthesizeInputValidation(t *testing.T) {
	tests := []struct {
		name string
		req  Request
		kind apierr.Kind
	}{
		{"empty text", Request{Text: "  "}, apierr.KindLocalIO},
		{"too long", Request{Text: strings.Repeat("あ", MaxPollyChars+1)}, apierr.KindLocalIO},
		{"bad engine", Request{Text: "hi", Engine: "generative-ish"}, apierr.KindConfiguration},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := BuildSynthesizeInput(tt.req)
			require.Error(t, err)
			assert.Equal(t, tt.kind, apierr.KindOf(err))
		})
	}

	// Exactly at the limit counts characters, not bytes.
	_, err := BuildSynthesizeInput(Request{Text: strings.Repeat("あ", MaxPollyChars)})
	assert.NoError(t, err)
}

func TestPollySynthesize(t *testing.T) {
	client := &mockPollyClient{audio: []byte("ID3fake-mp3")}
	p := NewPolly(client)

	audio, err := p.Synthesize(context.Background(), Request{Text: "テスト", VoiceID: "Takumi", Engine: EngineNeural})
	require.NoError(t, err)
	assert.Equal(t, []byte("ID3fake-mp3"), audio)

	require.Len(t, client.synthInputs, 1)
	assert.Equal(t, types.VoiceId("Takumi"), client.synthInputs[0].VoiceId)
	assert.Equal(t, types.Engine("neural"), client.synthInputs[0].Engine)
}

func TestPollySynthesizeFailures(t *testing.T) {
	t.Run("empty text makes no call", func(t *testing.T) {
		client := &mockPollyClient{}
		_, err := NewPolly(client).Synthesize(context.Background(), Request{})
		assert.Equal(t, apierr.KindLocalIO, apierr.KindOf(err))
		assert.Empty(t, client.synthInputs)
	})

	t.Run("provider error", func(t *testing.T) {
		client := &mockPollyClient{synthErr: &smithy.GenericAPIError{Code: "TextLengthExceededException", Message: "text too long"}}
		_, err := NewPolly(client).Synthesize(context.Background(), Request{Text: "hi"})
		assert.Equal(t, apierr.KindProvider, apierr.KindOf(err))
	})

	t.Run("empty audio", func(t *testing.T) {
		client := &mockPollyClient{audio: nil}
		_, err := NewPolly(client).Synthesize(context.Background(), Request{Text: "hi"})
		assert.Equal(t, apierr.KindShape, apierr.KindOf(err))
	})
}

func TestPollyVoicesPaginates(t *testing.T) {
	client := &mockPollyClient{pages: []*polly.DescribeVoicesOutput{
		{
			Voices: []types.Voice{{
				Id:               types.VoiceId("Mizuki"),
				Name:             sdkaws.String("Mizuki"),
				Gender:           types.GenderFemale,
				LanguageCode:     types.LanguageCode("ja-JP"),
				SupportedEngines: []types.Engine{types.EngineStandard},
			}},
			NextToken: sdkaws.String("page-2"),
		},
		{
			Voices: []types.Voice{{
				Id:               types.VoiceId("Kazuha"),
				Name:             sdkaws.String("Kazuha"),
				Gender:           types.GenderFemale,
				LanguageCode:     types.LanguageCode("ja-JP"),
				SupportedEngines: []types.Engine{types.EngineNeural},
			}},
		},
	}}

	voices, err := NewPolly(client).ListVoices(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, voices, 2)
	assert.Equal(t, "Mizuki", voices[0].Name)
	assert.Equal(t, "Kazuha", voices[1].Name)

	require.Len(t, client.describeInputs, 2)
	assert.Nil(t, client.describeInputs[0].NextToken)
	assert.Equal(t, "page-2", sdkaws.ToString(client.describeInputs[1].NextToken))
	assert.Equal(t, types.LanguageCode("ja-JP"), client.describeInputs[0].LanguageCode)

	assert.Equal(t, EngineStandard, EngineFor(voices[0]))
	assert.Equal(t, EngineNeural, EngineFor(voices[1]))
	assert.Equal(t, "speech-Kazuha-neural.mp3", AudioName(voices[1], EngineFor(voices[1])))
}

func TestNormalizeVoicesEmpty(t *testing.T) {
	voices := NormalizeVoices(&polly.DescribeVoicesOutput{})
	assert.NotNil(t, voices)
	assert.Empty(t, voices)
	assert.NotNil(t, NormalizeVoices(nil))
}

func TestBuildGoogleRequest(t *testing.T) {
	req, err := BuildGoogleRequest("おはよう", GoogleVoice{})
	require.NoError(t, err)
	assert.Equal(t, "おはよう", req.Input.Text)
	assert.Equal(t, "ja-JP", req.Voice.LanguageCode)
	assert.Equal(t, "ja-JP-Neural2-B", req.Voice.Name)
	assert.Equal(t, "FEMALE", req.Voice.SsmlGender)
	assert.Equal(t, "MP3", req.AudioConfig.AudioEncoding)

	_, err = BuildGoogleRequest("", GoogleVoice{})
	assert.Equal(t, apierr.KindLocalIO, apierr.KindOf(err))
	_, err = BuildGoogleRequest(strings.Repeat("a", MaxGoogleTextBytes+1), GoogleVoice{})
	assert.Equal(t, apierr.KindLocalIO, apierr.KindOf(err))
}

func TestGoogleTTSSynthesize(t *testing.T) {
	mp3 := []byte{0xff, 0xfb, 0x90, 0x00}
	client := &mockTTSClient{resp: &texttospeech.SynthesizeSpeechResponse{
		AudioContent: base64.StdEncoding.EncodeToString(mp3),
	}}

	audio, err := NewGoogleTTS(client, GoogleVoice{Name: "ja-JP-Wavenet-A"}).Synthesize(context.Background(), "こんにちは")
	require.NoError(t, err)
	assert.Equal(t, mp3, audio)
	require.Len(t, client.reqs, 1)
	assert.Equal(t, "ja-JP-Wavenet-A", client.reqs[0].Voice.Name)
}

func TestGoogleTTSFailures(t *testing.T) {
	tests := []struct {
		name   string
		client *mockTTSClient
		kind   apierr.Kind
	}{
		{"provider", &mockTTSClient{err: &googleapi.Error{Code: 403, Message: "API not enabled"}}, apierr.KindProvider},
		{"no audio", &mockTTSClient{resp: &texttospeech.SynthesizeSpeechResponse{}}, apierr.KindShape},
		{"nil response", &mockTTSClient{}, apierr.KindShape},
		{"bad base64", &mockTTSClient{resp: &texttospeech.SynthesizeSpeechResponse{AudioContent: "%%%"}}, apierr.KindShape},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewGoogleTTS(tt.client, GoogleVoice{}).Synthesize(context.Background(), "hi")
			require.Error(t, err)
			assert.Equal(t, tt.kind, apierr.KindOf(err))
		})
	}
}

func TestSynthesizeAllVoicesSkipsFailedVoice(t *testing.T) {
	client := &failingVoiceClient{
		mockPollyClient: mockPollyClient{
			audio: []byte("mp3"),
			pages: []*polly.DescribeVoicesOutput{{Voices: []types.Voice{
				{Id: "Mizuki", Name: sdkaws.String("Mizuki"), Gender: types.GenderFemale, SupportedEngines: []types.Engine{types.EngineStandard}},
				{Id: "Takumi", Name: sdkaws.String("Takumi"), Gender: types.GenderMale, SupportedEngines: []types.Engine{types.EngineStandard, types.EngineNeural}},
				{Id: "Kazuha", Name: sdkaws.String("Kazuha"), Gender: types.GenderFemale, SupportedEngines: []types.Engine{types.EngineNeural}},
			}}},
		},
		failVoice: "Takumi",
	}
	mem := sinktest.NewMemory()
	r := pipeline.NewRunner(pipeline.Options{Sink: mem, Out: io.Discard})

	n, err := SynthesizeAllVoices(context.Background(), r, NewPolly(client), "こんにちは", "ja-JP")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	var names []string
	for _, a := range mem.Artifacts() {
		names = append(names, a.Name)
		assert.Equal(t, sink.ContentTypeMP3, a.ContentType)
	}
	assert.Equal(t, []string{"speech-Mizuki-standard.mp3", "speech-Kazuha-neural.mp3"}, names)
	assert.Equal(t, int64(1), r.Metrics().Failures(apierr.KindProvider))
}

type failingVoiceClient struct {
	mockPollyClient
	failVoice string
}

func (f *failingVoiceClient) SynthesizeSpeech(ctx context.Context, params *polly.SynthesizeSpeechInput, optFns ...func(*polly.Options)) (*polly.SynthesizeSpeechOutput, error) {
	if string(params.VoiceId) == f.failVoice {
		return nil, &smithy.GenericAPIError{Code: "ServiceFailureException", Message: "internal failure"}
	}
	return f.mockPollyClient.SynthesizeSpeech(ctx, params, optFns...)
}
