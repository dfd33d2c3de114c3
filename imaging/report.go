package imaging

import (
	"fmt"
	"path"
	"strings"

	"github.com/gurre/cloud-api-samples/sink"
)

// LabelLines renders one "- Name: 91.2%" line per label.
func LabelLines(labels []Label) []string {
	if len(labels) == 0 {
		return []string{"No labels detected."}
	}
	lines := make([]string, 0, len(labels))
	for _, l := range labels {
		lines = append(lines, fmt.Sprintf("- %s: %.1f%%", l.Name, l.Confidence))
	}
	return lines
}

// LabelArtifacts renders <stem>_labels.json and <stem>_labels.txt.
func LabelArtifacts(stem string, labels []Label) ([]sink.Artifact, error) {
	js, err := sink.JSON(stem+"_labels.json", Summaries(labels))
	if err != nil {
		return nil, err
	}
	return []sink.Artifact{js, sink.Lines(stem+"_labels.txt", LabelLines(labels))}, nil
}

// PositionLines renders labels with their instances and parent categories.
func PositionLines(labels []Label) []string {
	if len(labels) == 0 {
		return []string{"No labels detected."}
	}
	var lines []string
	for _, l := range labels {
		lines = append(lines,
			fmt.Sprintf("- Label: %s", l.Name),
			fmt.Sprintf("  Confidence: %.1f%%", l.Confidence),
		)
		for i, inst := range l.Instances {
			b := inst.BoundingBox
			lines = append(lines,
				fmt.Sprintf("  - Instance %d:", i+1),
				fmt.Sprintf("    Position (normalized): left(%.2f), top(%.2f), width(%.2f), height(%.2f)", b.Left, b.Top, b.Width, b.Height),
				fmt.Sprintf("    Position confidence: %.1f%%", inst.Confidence),
			)
		}
		if len(l.Parents) > 0 {
			lines = append(lines, fmt.Sprintf("  Parents: %s", strings.Join(l.Parents, ", ")))
		}
		lines = append(lines, "---")
	}
	return lines
}

// PositionArtifacts renders <stem>_labels_with_position.{json,txt}.
func PositionArtifacts(stem string, labels []Label) ([]sink.Artifact, error) {
	js, err := sink.JSON(stem+"_labels_with_position.json", labels)
	if err != nil {
		return nil, err
	}
	return []sink.Artifact{js, sink.Lines(stem+"_labels_with_position.txt", PositionLines(labels))}, nil
}

// FaceLines renders the estimated attributes of each face.
func FaceLines(faces []Face) []string {
	if len(faces) == 0 {
		return []string{"No faces detected."}
	}
	var lines []string
	for i, f := range faces {
		lines = append(lines,
			fmt.Sprintf("Face %d:", i+1),
			fmt.Sprintf("  Age: %d-%d", f.AgeLow, f.AgeHigh),
			fmt.Sprintf("  Gender: %s (%.1f%%)", f.Gender, f.GenderConfidence),
		)
		if f.TopEmotion != "" {
			lines = append(lines, fmt.Sprintf("  Emotion: %s (%.1f%%)", f.TopEmotion, f.TopEmotionConfidence))
		}
	}
	return lines
}

// FaceArtifacts renders <stem>_faces.{json,txt}.
func FaceArtifacts(stem string, faces []Face) ([]sink.Artifact, error) {
	js, err := sink.JSON(stem+"_faces.json", faces)
	if err != nil {
		return nil, err
	}
	return []sink.Artifact{js, sink.Lines(stem+"_faces.txt", FaceLines(faces))}, nil
}

// TextLines renders one line per detected line of text.
func TextLines(lines []TextLine) []string {
	if len(lines) == 0 {
		return []string{"No text detected."}
	}
	out := make([]string, 0, len(lines))
	for _, l := range lines {
		out = append(out, fmt.Sprintf("- %s (confidence: %.1f%%)", l.Text, l.Confidence))
	}
	return out
}

// TextArtifact renders <stem>_text.txt.
func TextArtifact(stem string, lines []TextLine) sink.Artifact {
	return sink.Lines(stem+"_text.txt", TextLines(lines))
}

// OCRArtifact renders <dir>/<stem>.json.
func OCRArtifact(dir, stem string, r OCRResult) (sink.Artifact, error) {
	return sink.JSON(path.Join(dir, stem+".json"), r)
}
