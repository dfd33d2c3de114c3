package imaging

import (
	"context"
	"fmt"

	"github.com/gurre/cloud-api-samples/input"
	"github.com/gurre/cloud-api-samples/pipeline"
	"github.com/gurre/cloud-api-samples/sink"
)

// ForEachImage reads every image file and hands it to fn. Unreadable images are recorded as
// local failures and skipped.
func ForEachImage(ctx context.Context, r *pipeline.Runner, paths []string, fn func(path string, image []byte) error) error {
	for _, p := range paths {
		image, ok, err := pipeline.Prepare(ctx, r, "input.ReadImage", func() ([]byte, error) {
			return input.ReadImage(p)
		})
		if err != nil {
			return err
		}
		if !ok {
			continue
		}
		if err := fn(p, image); err != nil {
			return err
		}
	}
	return nil
}

// LabelOptions configures DetectLabelsFiles. Nil limits select the service defaults.
type LabelOptions struct {
	MaxLabels     *int32
	MinConfidence *float32
	WithPosition  bool
}

// DetectLabelsFiles detects labels in each image file, prints them and emits
// <stem>_labels.{json,txt}, or <stem>_labels_with_position.{json,txt} with WithPosition.
func DetectLabelsFiles(ctx context.Context, r *pipeline.Runner, rek *Rekognition, opts LabelOptions, paths []string) error {
	render := LabelArtifacts
	format := LabelLines
	if opts.WithPosition {
		render = PositionArtifacts
		format = PositionLines
	}

	return ForEachImage(ctx, r, paths, func(path string, image []byte) error {
		labels, ok, err := pipeline.Invoke(ctx, r, "rekognition.DetectLabels", func(ctx context.Context) ([]Label, error) {
			return rek.Labels(ctx, LabelRequest{Image: image, MaxLabels: opts.MaxLabels, MinConfidence: opts.MinConfidence})
		})
		if err != nil || !ok {
			return err
		}
		stem := input.Stem(path)
		artifacts, ok, err := pipeline.Prepare(ctx, r, "imaging.LabelArtifacts", func() ([]sink.Artifact, error) {
			return render(stem, labels)
		})
		if err != nil || !ok {
			return err
		}

		r.Printf("=== %s の分析結果 ===\n", path)
		for _, line := range format(labels) {
			fmt.Fprintln(r.Out(), line)
		}
		r.Emit(ctx, artifacts...)
		return nil
	})
}
