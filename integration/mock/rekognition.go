package mock

import (
	"context"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/rekognition"
	"github.com/aws/aws-sdk-go-v2/service/rekognition/types"
	"github.com/aws/smithy-go"
)

// RekognitionClient answers every DetectLabels call with the configured labels, applying
// MinConfidence and MaxLabels the way the service does.
type RekognitionClient struct {
	mu     sync.Mutex
	Labels []types.Label
	// Err fails every call when set.
	Err   error
	calls int
}

// NewRekognitionClient creates a fake that returns labels.
func NewRekognitionClient(labels ...types.Label) *RekognitionClient {
	return &RekognitionClient{Labels: labels}
}

// Label builds a top-level label.
func Label(name string, confidence float32) types.Label {
	return types.Label{Name: aws.String(name), Confidence: aws.Float32(confidence)}
}

// Calls returns the number of requests received.
func (m *RekognitionClient) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

func (m *RekognitionClient) begin() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	return m.Err
}

// DetectLabels filters the configured labels by the request thresholds.
func (m *RekognitionClient) DetectLabels(ctx context.Context, params *rekognition.DetectLabelsInput, optFns ...func(*rekognition.Options)) (*rekognition.DetectLabelsOutput, error) {
	if err := m.begin(); err != nil {
		return nil, err
	}
	if params.Image == nil || len(params.Image.Bytes) == 0 {
		return nil, &smithy.GenericAPIError{Code: "InvalidParameterException", Message: "Request has invalid parameters"}
	}
	minConfidence := aws.ToFloat32(params.MinConfidence)
	maxLabels := int(aws.ToInt32(params.MaxLabels))

	out := &rekognition.DetectLabelsOutput{}
	for _, l := range m.Labels {
		if aws.ToFloat32(l.Confidence) < minConfidence {
			continue
		}
		if maxLabels > 0 && len(out.Labels) == maxLabels {
			break
		}
		out.Labels = append(out.Labels, l)
	}
	return out, nil
}

// DetectFaces reports no faces.
func (m *RekognitionClient) DetectFaces(ctx context.Context, params *rekognition.DetectFacesInput, optFns ...func(*rekognition.Options)) (*rekognition.DetectFacesOutput, error) {
	if err := m.begin(); err != nil {
		return nil, err
	}
	return &rekognition.DetectFacesOutput{}, nil
}

// DetectText reports no text.
func (m *RekognitionClient) DetectText(ctx context.Context, params *rekognition.DetectTextInput, optFns ...func(*rekognition.Options)) (*rekognition.DetectTextOutput, error) {
	if err := m.begin(); err != nil {
		return nil, err
	}
	return &rekognition.DetectTextOutput{}, nil
}
