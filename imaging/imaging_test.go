package imaging

import (
	"context"
	"encoding/base64"
	"errors"
	"testing"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/rekognition"
	"github.com/aws/aws-sdk-go-v2/service/rekognition/types"
	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/vision/v1"

	"github.com/gurre/cloud-api-samples/apierr"
	"github.com/gurre/cloud-api-samples/input"
)

type mockRekognitionClient struct {
	labels *rekognition.DetectLabelsOutput
	faces  *rekognition.DetectFacesOutput
	text   *rekognition.DetectTextOutput
	err    error

	labelInputs []*rekognition.DetectLabelsInput
	faceInputs  []*rekognition.DetectFacesInput
	calls       int
}

func (m *mockRekognitionClient) DetectLabels(ctx context.Context, params *rekognition.DetectLabelsInput, optFns ...func(*rekognition.Options)) (*rekognition.DetectLabelsOutput, error) {
	m.calls++
	m.labelInputs = append(m.labelInputs, params)
	return m.labels, m.err
}

func (m *mockRekognitionClient) DetectFaces(ctx context.Context, params *rekognition.DetectFacesInput, optFns ...func(*rekognition.Options)) (*rekognition.DetectFacesOutput, error) {
	m.calls++
	m.faceInputs = append(m.faceInputs, params)
	return m.faces, m.err
}

func (m *mockRekognitionClient) DetectText(ctx context.Context, params *rekognition.DetectTextInput, optFns ...func(*rekognition.Options)) (*rekognition.DetectTextOutput, error) {
	m.calls++
	return m.text, m.err
}

type mockVisionClient struct {
	resp *vision.BatchAnnotateImagesResponse
	req  *vision.BatchAnnotateImagesRequest
	err  error
}

func (m *mockVisionClient) Annotate(ctx context.Context, req *vision.BatchAnnotateImagesRequest) (*vision.BatchAnnotateImagesResponse, error) {
	m.req = req
	return m.resp, m.err
}

var png = []byte{0x89, 'P', 'N', 'G', 0x0d, 0x0a}

func label(name string, confidence float32) types.Label {
	return types.Label{Name: sdkaws.String(name), Confidence: sdkaws.Float32(confidence)}
}

func TestBuildDetectLabelsInput(t *testing.T) {
	in, err := BuildDetectLabelsInput(LabelRequest{Image: png})
	require.NoError(t, err)
	assert.Equal(t, int32(10), *in.MaxLabels)
	assert.Equal(t, float32(70), *in.MinConfidence)
	assert.Equal(t, png, in.Image.Bytes)

	tests := []struct {
		name string
		req  LabelRequest
		kind apierr.Kind
	}{
		{"empty image", LabelRequest{}, apierr.KindLocalIO},
		{"oversized image", LabelRequest{Image: make([]byte, input.MaxImageBytes+1)}, apierr.KindLocalIO},
		{"too many labels", LabelRequest{Image: png, MaxLabels: sdkaws.Int32(1001)}, apierr.KindConfiguration},
		{"zero labels", LabelRequest{Image: png, MaxLabels: sdkaws.Int32(0)}, apierr.KindConfiguration},
		{"negative labels", LabelRequest{Image: png, MaxLabels: sdkaws.Int32(-1)}, apierr.KindConfiguration},
		{"confidence above 100", LabelRequest{Image: png, MinConfidence: sdkaws.Float32(101)}, apierr.KindConfiguration},
		{"negative confidence", LabelRequest{Image: png, MinConfidence: sdkaws.Float32(-0.5)}, apierr.KindConfiguration},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := BuildDetectLabelsInput(tt.req)
			require.Error(t, err)
			assert.True(t, apierr.Is(err, tt.kind))
		})
	}
}

func TestBuildDetectLabelsInputKeepsExplicitBounds(t *testing.T) {
	in, err := BuildDetectLabelsInput(LabelRequest{Image: png, MaxLabels: sdkaws.Int32(1), MinConfidence: sdkaws.Float32(0)})
	require.NoError(t, err)
	assert.Equal(t, int32(1), *in.MaxLabels)
	assert.Equal(t, float32(0), *in.MinConfidence, "zero confidence must not fall back to the default")

	in, err = BuildDetectLabelsInput(LabelRequest{Image: png, MaxLabels: sdkaws.Int32(1000), MinConfidence: sdkaws.Float32(100)})
	require.NoError(t, err)
	assert.Equal(t, int32(1000), *in.MaxLabels)
	assert.Equal(t, float32(100), *in.MinConfidence)
}

func TestLabelsRoundTrip(t *testing.T) {
	names := []string{"Chair", "Table", "Furniture", "Indoors", "Room"}
	out := &rekognition.DetectLabelsOutput{}
	for i, n := range names {
		out.Labels = append(out.Labels, label(n, 99-float32(i)*5.5))
	}
	client := &mockRekognitionClient{labels: out}

	labels, err := NewRekognition(client).Labels(context.Background(), LabelRequest{Image: png})
	require.NoError(t, err)

	arts, err := LabelArtifacts("objects", labels)
	require.NoError(t, err)

	var got []LabelSummary
	require.NoError(t, json.Unmarshal(arts[0].Body, &got))
	require.Len(t, got, len(names))
	for i, l := range out.Labels {
		assert.Equal(t, *l.Name, got[i].Name)
		assert.Equal(t, *l.Confidence, got[i].Confidence)
	}
}

func TestLabelArtifactsScenario(t *testing.T) {
	client := &mockRekognitionClient{labels: &rekognition.DetectLabelsOutput{
		Labels: []types.Label{label("Chair", 91.2), label("Table", 77.5)},
	}}
	labels, err := NewRekognition(client).Labels(context.Background(), LabelRequest{Image: png})
	require.NoError(t, err)

	arts, err := LabelArtifacts("objects", labels)
	require.NoError(t, err)
	require.Len(t, arts, 2)

	assert.Equal(t, "objects_labels.json", arts[0].Name)
	assert.JSONEq(t, `[{"Name":"Chair","Confidence":91.2},{"Name":"Table","Confidence":77.5}]`, string(arts[0].Body))
	assert.Equal(t, "objects_labels.txt", arts[1].Name)
	assert.Equal(t, "- Chair: 91.2%\n- Table: 77.5%\n", string(arts[1].Body))
}

func TestEmptyLabels(t *testing.T) {
	client := &mockRekognitionClient{labels: &rekognition.DetectLabelsOutput{}}
	labels, err := NewRekognition(client).Labels(context.Background(), LabelRequest{Image: png})
	require.NoError(t, err)
	assert.NotNil(t, labels)
	assert.Empty(t, labels)

	arts, err := LabelArtifacts("empty", labels)
	require.NoError(t, err)
	assert.Equal(t, "[]\n", string(arts[0].Body))
	assert.Equal(t, "No labels detected.\n", string(arts[1].Body))

	arts, err = PositionArtifacts("empty", labels)
	require.NoError(t, err)
	assert.Equal(t, "empty_labels_with_position.txt", arts[1].Name)
	assert.Equal(t, "No labels detected.\n", string(arts[1].Body))
}

func TestNormalizeLabelsWithPosition(t *testing.T) {
	out := &rekognition.DetectLabelsOutput{Labels: []types.Label{
		{
			Name:       sdkaws.String("Chair"),
			Confidence: sdkaws.Float32(91.2),
			Instances: []types.Instance{{
				BoundingBox: &types.BoundingBox{Left: sdkaws.Float32(0.1), Top: sdkaws.Float32(0.2), Width: sdkaws.Float32(0.3), Height: sdkaws.Float32(0.4)},
				Confidence:  sdkaws.Float32(90.1),
			}},
			Parents: []types.Parent{{Name: sdkaws.String("Furniture")}},
		},
		label("Indoors", 80),
		{Confidence: sdkaws.Float32(50)},
	}}

	labels := NormalizeLabels(out)
	require.Len(t, labels, 2, "labels without a name are dropped")
	assert.Equal(t, BoundingBox{Left: 0.1, Top: 0.2, Width: 0.3, Height: 0.4}, labels[0].Instances[0].BoundingBox)
	assert.Equal(t, []string{"Furniture"}, labels[0].Parents)
	assert.NotNil(t, labels[1].Instances)
	assert.Empty(t, labels[1].Instances)

	lines := PositionLines(labels)
	assert.Contains(t, lines, "    Position (normalized): left(0.10), top(0.20), width(0.30), height(0.40)")
	assert.Contains(t, lines, "  Parents: Furniture")
}

func TestFaces(t *testing.T) {
	client := &mockRekognitionClient{faces: &rekognition.DetectFacesOutput{FaceDetails: []types.FaceDetail{{
		AgeRange: &types.AgeRange{Low: sdkaws.Int32(25), High: sdkaws.Int32(35)},
		Gender:   &types.Gender{Value: types.GenderTypeFemale, Confidence: sdkaws.Float32(99.1)},
		Emotions: []types.Emotion{
			{Type: types.EmotionNameCalm, Confidence: sdkaws.Float32(10)},
			{Type: types.EmotionNameHappy, Confidence: sdkaws.Float32(85.5)},
		},
	}, {}}}}

	faces, err := NewRekognition(client).Faces(context.Background(), png)
	require.NoError(t, err)
	require.Len(t, faces, 2)
	assert.Equal(t, Face{AgeLow: 25, AgeHigh: 35, Gender: "Female", GenderConfidence: 99.1, TopEmotion: "HAPPY", TopEmotionConfidence: 85.5}, faces[0])
	assert.Equal(t, Face{}, faces[1])
	assert.Equal(t, []types.Attribute{types.AttributeAll}, client.faceInputs[0].Attributes)

	lines := FaceLines(faces)
	assert.Equal(t, []string{"Face 1:", "  Age: 25-35", "  Gender: Female (99.1%)", "  Emotion: HAPPY (85.5%)"}, lines[:4])
}

func TestTextKeepsLines(t *testing.T) {
	client := &mockRekognitionClient{text: &rekognition.DetectTextOutput{TextDetections: []types.TextDetection{
		{DetectedText: sdkaws.String("OPEN 24 HOURS"), Type: types.TextTypesLine, Confidence: sdkaws.Float32(98.7)},
		{DetectedText: sdkaws.String("OPEN"), Type: types.TextTypesWord, Confidence: sdkaws.Float32(99)},
	}}}

	lines, err := NewRekognition(client).Text(context.Background(), png)
	require.NoError(t, err)
	assert.Equal(t, []TextLine{{Text: "OPEN 24 HOURS", Confidence: 98.7}}, lines)
	assert.Equal(t, "- OPEN 24 HOURS (confidence: 98.7%)\n", string(TextArtifact("sign", lines).Body))
}

func TestInvalidImageMakesNoCall(t *testing.T) {
	client := &mockRekognitionClient{}
	r := NewRekognition(client)
	_, err := r.Faces(context.Background(), nil)
	assert.Error(t, err)
	_, err = r.Text(context.Background(), nil)
	assert.Error(t, err)
	assert.Equal(t, 0, client.calls)
}

func TestRekognitionProviderError(t *testing.T) {
	client := &mockRekognitionClient{err: errors.New("InvalidImageFormatException: Request has invalid image format")}
	_, err := NewRekognition(client).Labels(context.Background(), LabelRequest{Image: png})
	require.Error(t, err)
	assert.True(t, apierr.Is(err, apierr.KindProvider))
	assert.Contains(t, err.Error(), "invalid image format")
}

func TestVisionOCR(t *testing.T) {
	client := &mockVisionClient{resp: &vision.BatchAnnotateImagesResponse{Responses: []*vision.AnnotateImageResponse{{
		TextAnnotations: []*vision.EntityAnnotation{
			{Description: "ローソン\n合計 ¥1,080"},
			{Description: "ローソン", BoundingPoly: &vision.BoundingPoly{Vertices: []*vision.Vertex{{X: 1, Y: 2}, {X: 3, Y: 4}}}},
			{Description: "合計"},
		},
	}}}}

	r, err := NewVision(client).OCR(context.Background(), png)
	require.NoError(t, err)
	assert.Equal(t, "ローソン\n合計 ¥1,080", r.FullText)
	require.Len(t, r.Blocks, 2)
	assert.Equal(t, []Vertex{{X: 1, Y: 2}, {X: 3, Y: 4}}, r.Blocks[0].BoundingBox.Vertices)
	assert.Empty(t, r.Blocks[1].BoundingBox.Vertices)

	req := client.req.Requests[0]
	assert.Equal(t, base64.StdEncoding.EncodeToString(png), req.Image.Content)
	assert.Equal(t, "TEXT_DETECTION", req.Features[0].Type)
	assert.Equal(t, int64(OCRMaxResults), req.Features[0].MaxResults)

	art, err := OCRArtifact("ocr_results", "img1", r)
	require.NoError(t, err)
	assert.Equal(t, "ocr_results/img1.json", art.Name)
	var got map[string]any
	require.NoError(t, json.Unmarshal(art.Body, &got))
	assert.Contains(t, got, "full_text")
	assert.Contains(t, got, "text_blocks")
}

func TestVisionOCRNoText(t *testing.T) {
	client := &mockVisionClient{resp: &vision.BatchAnnotateImagesResponse{Responses: []*vision.AnnotateImageResponse{{}}}}
	r, err := NewVision(client).OCR(context.Background(), png)
	require.NoError(t, err)
	assert.Empty(t, r.FullText)
	assert.NotNil(t, r.Blocks)
	assert.Empty(t, r.Blocks)
}

func TestVisionOCRImageError(t *testing.T) {
	client := &mockVisionClient{resp: &vision.BatchAnnotateImagesResponse{Responses: []*vision.AnnotateImageResponse{{
		Error: &vision.Status{Code: 3, Message: "Bad image data."},
	}}}}
	_, err := NewVision(client).OCR(context.Background(), png)
	require.Error(t, err)
	assert.True(t, apierr.Is(err, apierr.KindProvider))
	assert.Contains(t, err.Error(), "Bad image data.")

	client = &mockVisionClient{resp: &vision.BatchAnnotateImagesResponse{}}
	_, err = NewVision(client).OCR(context.Background(), png)
	assert.True(t, apierr.Is(err, apierr.KindShape))
}
