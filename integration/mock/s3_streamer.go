package mock

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"strings"
)

// Stream provides a simplified implementation of s3streamer.Streamer for testing purposes.
// It reads directly from the Files map and reports the byte offset of each line.
func (m *S3Client) Stream(ctx context.Context, bucket, key string, offset int64, fn func([]byte, int64) error) error {
	// If key contains bucket in the beginning, strip it
	key = strings.TrimPrefix(key, bucket+"/")
	bucketKey := fmt.Sprintf("%s/%s", bucket, key)

	m.mu.RLock()
	content, ok := m.Files[bucketKey]
	m.mu.RUnlock()
	if !ok {
		return fmt.Errorf("mock S3: key not found: %s", bucketKey)
	}
	if offset > int64(len(content)) {
		return fmt.Errorf("mock S3: offset %d beyond object size %d", offset, len(content))
	}

	scanner := bufio.NewScanner(bytes.NewReader(content[offset:]))
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	pos := offset
	for scanner.Scan() {
		line := scanner.Bytes()
		if err := fn(line, pos); err != nil {
			return err
		}
		pos += int64(len(line)) + 1

		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("error scanning lines: %w", err)
	}
	return nil
}
