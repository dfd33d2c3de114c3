package speech

import (
	"context"

	"go.uber.org/zap"

	"github.com/gurre/cloud-api-samples/pipeline"
	"github.com/gurre/cloud-api-samples/sink"
)

// SynthesizeAllVoices reads text aloud once per voice of the language and emits one MP3 artifact
// per voice. Voices are processed one at a time; a failed voice is logged and skipped. It
// returns the number of samples written.
func SynthesizeAllVoices(ctx context.Context, r *pipeline.Runner, p *Polly, text, languageCode string) (int, error) {
	voices, ok, err := pipeline.Invoke(ctx, r, "polly.DescribeVoices", func(ctx context.Context) ([]Voice, error) {
		return p.ListVoices(ctx, languageCode)
	})
	if err != nil || !ok {
		return 0, err
	}
	r.Logger().Info("voices found", zap.Int("count", len(voices)), zap.String("language", languageCode))

	written := 0
	for _, v := range voices {
		engine := EngineFor(v)
		audio, ok, err := pipeline.Invoke(ctx, r, "polly.SynthesizeSpeech", func(ctx context.Context) ([]byte, error) {
			return p.Synthesize(ctx, Request{Text: text, VoiceID: v.ID, Engine: engine, LanguageCode: languageCode})
		})
		if err != nil {
			return written, err
		}
		if !ok {
			continue
		}
		name := AudioName(v, engine)
		if r.Emit(ctx, sink.Bytes(name, audio, sink.ContentTypeMP3)) {
			written++
			r.Printf("%s (%s, %s)\n", name, v.Gender, engine)
		}
	}
	return written, nil
}
