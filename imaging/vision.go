package imaging

import (
	"context"
	"encoding/base64"
	"fmt"

	"google.golang.org/api/vision/v1"

	"github.com/gurre/cloud-api-samples/apierr"
	"github.com/gurre/cloud-api-samples/gcp"
)

// OCRMaxResults is the maxResults sent with TEXT_DETECTION.
const OCRMaxResults = 10000

// OCRDir is the artifact directory of the OCR results.
const OCRDir = "ocr_results"

// Vertex is a pixel position.
type Vertex struct {
	X int64 `json:"x"`
	Y int64 `json:"y"`
}

// OCRBoundingBox outlines a text block.
type OCRBoundingBox struct {
	Vertices []Vertex `json:"vertices"`
}

// TextBlock is one text annotation after the full-text one.
type TextBlock struct {
	Text        string         `json:"text"`
	Confidence  float64        `json:"confidence"`
	BoundingBox OCRBoundingBox `json:"bounding_box"`
}

// OCRResult is the normalized text of an image.
type OCRResult struct {
	FullText string      `json:"full_text"`
	Blocks   []TextBlock `json:"text_blocks"`
}

// BuildOCRRequest maps image bytes to a TEXT_DETECTION request.
func BuildOCRRequest(image []byte) (*vision.BatchAnnotateImagesRequest, error) {
	const op = "imaging.BuildOCRRequest"
	if err := validateImage(op, image); err != nil {
		return nil, err
	}
	return &vision.BatchAnnotateImagesRequest{
		Requests: []*vision.AnnotateImageRequest{{
			Image: &vision.Image{Content: base64.StdEncoding.EncodeToString(image)},
			Features: []*vision.Feature{{
				Type:       "TEXT_DETECTION",
				MaxResults: OCRMaxResults,
			}},
			ImageContext: &vision.ImageContext{},
		}},
	}, nil
}

// Vision reads text from images with Cloud Vision.
type Vision struct {
	client gcp.VisionClient
}

// NewVision creates a Vision.
func NewVision(client gcp.VisionClient) *Vision {
	return &Vision{client: client}
}

// OCR detects the text of one image.
func (v *Vision) OCR(ctx context.Context, image []byte) (OCRResult, error) {
	const op = "vision.images.annotate"
	req, err := BuildOCRRequest(image)
	if err != nil {
		return OCRResult{}, err
	}
	resp, err := v.client.Annotate(ctx, req)
	if err != nil {
		return OCRResult{}, apierr.Classify(op, err)
	}
	return NormalizeOCR(resp)
}

// NormalizeOCR takes the first annotation as the full text and the rest as blocks. A response
// with no annotations is an empty result. An error status on the image is a provider error.
func NormalizeOCR(resp *vision.BatchAnnotateImagesResponse) (OCRResult, error) {
	const op = "imaging.NormalizeOCR"
	result := OCRResult{Blocks: make([]TextBlock, 0)}
	if resp == nil || len(resp.Responses) == 0 {
		return OCRResult{}, apierr.Shapef(op, "response has no image results")
	}

	r := resp.Responses[0]
	if r == nil {
		return result, nil
	}
	if r.Error != nil && r.Error.Code != 0 {
		return OCRResult{}, apierr.New(apierr.KindProvider, op, fmt.Errorf("image annotation failed with code %d: %s", r.Error.Code, r.Error.Message))
	}
	if len(r.TextAnnotations) == 0 {
		return result, nil
	}

	if first := r.TextAnnotations[0]; first != nil {
		result.FullText = first.Description
	}
	for _, a := range r.TextAnnotations[1:] {
		if a == nil {
			continue
		}
		block := TextBlock{Text: a.Description, Confidence: a.Confidence, BoundingBox: OCRBoundingBox{Vertices: make([]Vertex, 0)}}
		if a.BoundingPoly != nil {
			for _, vx := range a.BoundingPoly.Vertices {
				if vx != nil {
					block.BoundingBox.Vertices = append(block.BoundingBox.Vertices, Vertex{X: vx.X, Y: vx.Y})
				}
			}
		}
		result.Blocks = append(result.Blocks, block)
	}
	return result, nil
}
