// Package imaging detects labels, faces and text in images with Amazon Rekognition and reads
// receipt text with Google Cloud Vision.
package imaging

import (
	"context"
	"sort"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/rekognition"
	"github.com/aws/aws-sdk-go-v2/service/rekognition/types"

	"github.com/gurre/cloud-api-samples/apierr"
	"github.com/gurre/cloud-api-samples/aws"
	"github.com/gurre/cloud-api-samples/input"
)

// Label detection defaults.
const (
	DefaultMaxLabels     = 10
	DefaultMinConfidence = 70
)

// BoundingBox is a box in coordinates relative to the image size.
type BoundingBox struct {
	Left   float32 `json:"Left"`
	Top    float32 `json:"Top"`
	Width  float32 `json:"Width"`
	Height float32 `json:"Height"`
}

// Instance is one located occurrence of a label.
type Instance struct {
	BoundingBox BoundingBox `json:"BoundingBox"`
	Confidence  float32     `json:"Confidence"`
}

// Label is a detected object or concept.
type Label struct {
	Name       string     `json:"Name"`
	Confidence float32    `json:"Confidence"`
	Instances  []Instance `json:"Instances"`
	Parents    []string   `json:"Parents"`
}

// LabelSummary is the name and confidence of a label.
type LabelSummary struct {
	Name       string  `json:"Name"`
	Confidence float32 `json:"Confidence"`
}

// LabelRequest parameterizes label detection. Nil limits select the defaults; set values are
// validated as given, so a zero MinConfidence is sent as zero.
type LabelRequest struct {
	Image         []byte
	MaxLabels     *int32
	MinConfidence *float32
}

// BuildDetectLabelsInput validates a request and maps it to the Rekognition request shape.
func BuildDetectLabelsInput(req LabelRequest) (*rekognition.DetectLabelsInput, error) {
	const op = "imaging.BuildDetectLabelsInput"
	if err := validateImage(op, req.Image); err != nil {
		return nil, err
	}
	maxLabels := int32(DefaultMaxLabels)
	if req.MaxLabels != nil {
		maxLabels = *req.MaxLabels
	}
	if maxLabels < 1 || maxLabels > 1000 {
		return nil, apierr.Configf(op, "max labels must be between 1 and 1000, got %d", maxLabels)
	}
	minConfidence := float32(DefaultMinConfidence)
	if req.MinConfidence != nil {
		minConfidence = *req.MinConfidence
	}
	if minConfidence < 0 || minConfidence > 100 {
		return nil, apierr.Configf(op, "min confidence must be between 0 and 100, got %g", minConfidence)
	}

	return &rekognition.DetectLabelsInput{
		Image:         &types.Image{Bytes: req.Image},
		MaxLabels:     sdkaws.Int32(maxLabels),
		MinConfidence: sdkaws.Float32(minConfidence),
	}, nil
}

func validateImage(op string, image []byte) error {
	if len(image) == 0 {
		return apierr.LocalIOf(op, "image is empty")
	}
	if len(image) > input.MaxImageBytes {
		return apierr.LocalIOf(op, "image is %d bytes, the limit is %d", len(image), input.MaxImageBytes)
	}
	return nil
}

// Rekognition wraps the image analyses of Amazon Rekognition.
type Rekognition struct {
	client aws.RekognitionClient
}

// NewRekognition creates a Rekognition.
func NewRekognition(client aws.RekognitionClient) *Rekognition {
	return &Rekognition{client: client}
}

// Labels detects labels in an image.
func (r *Rekognition) Labels(ctx context.Context, req LabelRequest) ([]Label, error) {
	const op = "rekognition.DetectLabels"
	in, err := BuildDetectLabelsInput(req)
	if err != nil {
		return nil, err
	}
	out, err := r.client.DetectLabels(ctx, in)
	if err != nil {
		return nil, apierr.Classify(op, err)
	}
	return NormalizeLabels(out), nil
}

// NormalizeLabels keeps the provider's order. Labels without instances or parents get empty
// slices; labels without a name are dropped.
func NormalizeLabels(out *rekognition.DetectLabelsOutput) []Label {
	labels := make([]Label, 0)
	if out == nil {
		return labels
	}
	for _, l := range out.Labels {
		if l.Name == nil {
			continue
		}
		label := Label{
			Name:       *l.Name,
			Confidence: sdkaws.ToFloat32(l.Confidence),
			Instances:  make([]Instance, 0, len(l.Instances)),
			Parents:    make([]string, 0, len(l.Parents)),
		}
		for _, inst := range l.Instances {
			i := Instance{Confidence: sdkaws.ToFloat32(inst.Confidence)}
			if b := inst.BoundingBox; b != nil {
				i.BoundingBox = BoundingBox{
					Left:   sdkaws.ToFloat32(b.Left),
					Top:    sdkaws.ToFloat32(b.Top),
					Width:  sdkaws.ToFloat32(b.Width),
					Height: sdkaws.ToFloat32(b.Height),
				}
			}
			label.Instances = append(label.Instances, i)
		}
		for _, p := range l.Parents {
			if p.Name != nil {
				label.Parents = append(label.Parents, *p.Name)
			}
		}
		labels = append(labels, label)
	}
	return labels
}

// Summaries drops instances and parents.
func Summaries(labels []Label) []LabelSummary {
	out := make([]LabelSummary, 0, len(labels))
	for _, l := range labels {
		out = append(out, LabelSummary{Name: l.Name, Confidence: l.Confidence})
	}
	return out
}

// Face is the estimated attributes of one detected face.
type Face struct {
	AgeLow               int32   `json:"AgeLow"`
	AgeHigh              int32   `json:"AgeHigh"`
	Gender               string  `json:"Gender"`
	GenderConfidence     float32 `json:"GenderConfidence"`
	TopEmotion           string  `json:"TopEmotion"`
	TopEmotionConfidence float32 `json:"TopEmotionConfidence"`
}

// Faces detects faces with all facial attributes.
func (r *Rekognition) Faces(ctx context.Context, image []byte) ([]Face, error) {
	const op = "rekognition.DetectFaces"
	if err := validateImage(op, image); err != nil {
		return nil, err
	}
	out, err := r.client.DetectFaces(ctx, &rekognition.DetectFacesInput{
		Image:      &types.Image{Bytes: image},
		Attributes: []types.Attribute{types.AttributeAll},
	})
	if err != nil {
		return nil, apierr.Classify(op, err)
	}
	return NormalizeFaces(out), nil
}

// NormalizeFaces reduces each face to its age range, gender and most confident emotion.
// Missing attribute blocks leave the corresponding fields zero.
func NormalizeFaces(out *rekognition.DetectFacesOutput) []Face {
	faces := make([]Face, 0)
	if out == nil {
		return faces
	}
	for _, d := range out.FaceDetails {
		var f Face
		if d.AgeRange != nil {
			f.AgeLow = sdkaws.ToInt32(d.AgeRange.Low)
			f.AgeHigh = sdkaws.ToInt32(d.AgeRange.High)
		}
		if d.Gender != nil {
			f.Gender = string(d.Gender.Value)
			f.GenderConfidence = sdkaws.ToFloat32(d.Gender.Confidence)
		}
		if len(d.Emotions) > 0 {
			emotions := append([]types.Emotion(nil), d.Emotions...)
			sort.SliceStable(emotions, func(i, j int) bool {
				return sdkaws.ToFloat32(emotions[i].Confidence) > sdkaws.ToFloat32(emotions[j].Confidence)
			})
			f.TopEmotion = string(emotions[0].Type)
			f.TopEmotionConfidence = sdkaws.ToFloat32(emotions[0].Confidence)
		}
		faces = append(faces, f)
	}
	return faces
}

// TextLine is one line of text found in an image.
type TextLine struct {
	Text       string  `json:"DetectedText"`
	Confidence float32 `json:"Confidence"`
}

// Text detects text and keeps whole lines only.
func (r *Rekognition) Text(ctx context.Context, image []byte) ([]TextLine, error) {
	const op = "rekognition.DetectText"
	if err := validateImage(op, image); err != nil {
		return nil, err
	}
	out, err := r.client.DetectText(ctx, &rekognition.DetectTextInput{
		Image: &types.Image{Bytes: image},
	})
	if err != nil {
		return nil, apierr.Classify(op, err)
	}
	return NormalizeText(out), nil
}

// NormalizeText keeps LINE detections and drops WORD detections.
func NormalizeText(out *rekognition.DetectTextOutput) []TextLine {
	lines := make([]TextLine, 0)
	if out == nil {
		return lines
	}
	for _, d := range out.TextDetections {
		if d.Type != types.TextTypesLine || d.DetectedText == nil {
			continue
		}
		lines = append(lines, TextLine{Text: *d.DetectedText, Confidence: sdkaws.ToFloat32(d.Confidence)})
	}
	return lines
}
