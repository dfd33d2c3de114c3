package sink

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"path"
	"strings"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/gurre/cloud-api-samples/apierr"
	"github.com/gurre/cloud-api-samples/aws"
)

// S3Sink stores artifacts as objects below a bucket prefix.
// Example:
//
//	client := aws.NewS3Client(s3.NewFromConfig(cfg))
//	s, err := sink.NewS3Sink(client, "s3://my-bucket/samples/run-1")
//	if err != nil {
//	    log.Fatal(err)
//	}
type S3Sink struct {
	client aws.S3Client
	bucket string
	prefix string
}

// NewS3Sink creates an S3Sink from an s3://bucket/prefix URI.
func NewS3Sink(client aws.S3Client, uri string) (*S3Sink, error) {
	const op = "sink.NewS3Sink"
	u, err := url.Parse(uri)
	if err != nil {
		return nil, apierr.Configf(op, "invalid S3 URI: %v", err)
	}
	if u.Scheme != "s3" {
		return nil, apierr.Configf(op, "invalid S3 URI scheme: %s", u.Scheme)
	}
	if u.Host == "" {
		return nil, apierr.Configf(op, "S3 URI %s has no bucket", uri)
	}

	return &S3Sink{
		client: client,
		bucket: u.Host,
		prefix: strings.Trim(u.Path, "/"),
	}, nil
}

// Key returns the object key an artifact name maps to.
func (s *S3Sink) Key(name string) string {
	if s.prefix == "" {
		return path.Clean(name)
	}
	return path.Join(s.prefix, name)
}

// Write puts one object per artifact, overwriting any previous version.
func (s *S3Sink) Write(ctx context.Context, a Artifact) error {
	const op = "sink.S3Sink.Write"
	if err := ValidateName(a.Name); err != nil {
		return apierr.New(apierr.KindLocalIO, op, err)
	}

	key := s.Key(a.Name)
	input := &s3.PutObjectInput{
		Bucket: &s.bucket,
		Key:    &key,
		Body:   bytes.NewReader(a.Body),
	}
	if a.ContentType != "" {
		input.ContentType = sdkaws.String(a.ContentType)
	}

	if _, err := s.client.PutObject(ctx, input); err != nil {
		return apierr.Classify(op, fmt.Errorf("failed to put s3://%s/%s: %w", s.bucket, key, err))
	}
	return nil
}
