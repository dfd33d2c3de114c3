package mock

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// S3Client is a mock implementation of aws.S3Client. Objects live in memory keyed by
// "bucket/key"; it also streams objects line by line for s3:// text inputs.
type S3Client struct {
	mu sync.RWMutex
	// Maps bucket/key to object content
	Files map[string][]byte
	// Maps bucket/key to content type
	ContentTypes map[string]string
	// Maps bucket/key to user metadata
	Metadata map[string]map[string]string
}

// NewS3Client creates a new mock S3 client
func NewS3Client() *S3Client {
	return &S3Client{
		Files:        make(map[string][]byte),
		ContentTypes: make(map[string]string),
		Metadata:     make(map[string]map[string]string),
	}
}

// AddFile stores content under bucket/key.
func (m *S3Client) AddFile(bucket, key string, content []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Files[bucket+"/"+key] = content
}

// LoadFile copies a local file into the bucket under key.
func (m *S3Client) LoadFile(bucket, key, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	m.AddFile(bucket, key, data)
	return nil
}

// LoadDir copies every regular file below dir into the bucket, keyed by its slash-separated
// path relative to dir.
func (m *S3Client) LoadDir(bucket, dir string) error {
	return filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		return m.LoadFile(bucket, filepath.ToSlash(rel), path)
	})
}

// File returns the content stored under bucket/key.
func (m *S3Client) File(bucket, key string) ([]byte, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	b, ok := m.Files[bucket+"/"+key]
	return b, ok
}

// GetObject implements the S3Client interface for reading objects
func (m *S3Client) GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	bucketKey := fmt.Sprintf("%s/%s", aws.ToString(params.Bucket), aws.ToString(params.Key))

	m.mu.RLock()
	content, ok := m.Files[bucketKey]
	contentType := m.ContentTypes[bucketKey]
	metadata := m.Metadata[bucketKey]
	m.mu.RUnlock()

	if !ok {
		return nil, &types.NoSuchKey{
			Message: aws.String(fmt.Sprintf("The specified key does not exist: %s", aws.ToString(params.Key))),
		}
	}
	if metadata == nil {
		metadata = make(map[string]string)
	}

	contentLength := int64(len(content))
	return &s3.GetObjectOutput{
		Body:          io.NopCloser(bytes.NewReader(content)),
		ContentType:   aws.String(contentType),
		Metadata:      metadata,
		ETag:          aws.String(etag(content)),
		ContentLength: &contentLength,
	}, nil
}

// PutObject implements the S3Client interface for writing objects
func (m *S3Client) PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	bucketKey := fmt.Sprintf("%s/%s", aws.ToString(params.Bucket), aws.ToString(params.Key))

	data, err := io.ReadAll(params.Body)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.Files[bucketKey] = data
	m.ContentTypes[bucketKey] = aws.ToString(params.ContentType)
	if params.Metadata != nil {
		m.Metadata[bucketKey] = params.Metadata
	} else {
		m.Metadata[bucketKey] = make(map[string]string)
	}

	return &s3.PutObjectOutput{ETag: aws.String(etag(data))}, nil
}

// Keys returns every stored bucket/key, sorted.
func (m *S3Client) Keys() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	keys := make([]string, 0, len(m.Files))
	for k := range m.Files {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// etag is a simplified ETag based on content length.
func etag(content []byte) string {
	return fmt.Sprintf("\"%x\"", len(content))
}
