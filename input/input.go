// Package input reads the sample inputs: images, text files and line lists. Every failure is a
// local I/O error raised before any provider call.
package input

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gurre/s3streamer"

	"github.com/gurre/cloud-api-samples/apierr"
)

// MaxImageBytes is the largest image the image APIs accept as inline bytes.
const MaxImageBytes = 5 * 1024 * 1024

// ReadImage reads an image file, rejecting missing, empty and oversized files.
func ReadImage(path string) ([]byte, error) {
	const op = "input.ReadImage"
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, apierr.LocalIOf(op, "image file not found: %s", path)
		}
		return nil, apierr.New(apierr.KindLocalIO, op, err)
	}
	if info.IsDir() {
		return nil, apierr.LocalIOf(op, "%s is a directory", path)
	}
	if info.Size() == 0 {
		return nil, apierr.LocalIOf(op, "image file is empty: %s", path)
	}
	if info.Size() > MaxImageBytes {
		return nil, apierr.LocalIOf(op, "image file %s is %d bytes, larger than %d", path, info.Size(), MaxImageBytes)
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return nil, apierr.New(apierr.KindLocalIO, op, fmt.Errorf("failed to read %s: %w", path, err))
	}
	return b, nil
}

// ReadText reads a UTF-8 text file. Files that are empty or only whitespace are rejected.
func ReadText(path string) (string, error) {
	const op = "input.ReadText"
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", apierr.LocalIOf(op, "file not found: %s", path)
		}
		return "", apierr.New(apierr.KindLocalIO, op, err)
	}
	if strings.TrimSpace(string(b)) == "" {
		return "", apierr.LocalIOf(op, "file is empty: %s", path)
	}
	return string(b), nil
}

// Lines returns the lines of a local file or of an s3://bucket/key object. Line terminators are
// removed; blank lines are kept.
func Lines(ctx context.Context, src string, streamer s3streamer.Streamer) ([]string, error) {
	const op = "input.Lines"
	if !strings.HasPrefix(src, "s3://") {
		return localLines(src)
	}

	u, err := url.Parse(src)
	if err != nil {
		return nil, apierr.Configf(op, "invalid S3 URI: %v", err)
	}
	key := strings.TrimPrefix(u.Path, "/")
	if u.Host == "" || key == "" {
		return nil, apierr.Configf(op, "S3 URI %s needs a bucket and a key", src)
	}
	if streamer == nil {
		return nil, apierr.Configf(op, "no S3 streamer available for %s", src)
	}

	var lines []string
	err = streamer.Stream(ctx, u.Host, key, 0, func(line []byte, _ int64) error {
		// The streamer reuses its buffer between callbacks.
		lines = append(lines, string(bytes.TrimRight(line, "\r\n")))
		return nil
	})
	if err != nil {
		return nil, apierr.Classify(op, fmt.Errorf("failed to stream %s: %w", src, err))
	}
	return lines, nil
}

func localLines(path string) ([]string, error) {
	const op = "input.Lines"
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, apierr.LocalIOf(op, "file not found: %s", path)
		}
		return nil, apierr.New(apierr.KindLocalIO, op, err)
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		lines = append(lines, strings.TrimRight(scanner.Text(), "\r"))
	}
	if err := scanner.Err(); err != nil {
		return nil, apierr.New(apierr.KindLocalIO, op, fmt.Errorf("failed to read %s: %w", path, err))
	}
	return lines, nil
}

// Glob returns the files of dir matching pattern in name order. A missing directory is an error;
// a directory without matches is not.
func Glob(dir, pattern string) ([]string, error) {
	const op = "input.Glob"
	info, err := os.Stat(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, apierr.LocalIOf(op, "directory not found: %s", dir)
		}
		return nil, apierr.New(apierr.KindLocalIO, op, err)
	}
	if !info.IsDir() {
		return nil, apierr.LocalIOf(op, "%s is not a directory", dir)
	}

	matches, err := filepath.Glob(filepath.Join(dir, pattern))
	if err != nil {
		return nil, apierr.Configf(op, "invalid pattern %q: %v", pattern, err)
	}
	files := matches[:0]
	for _, m := range matches {
		if fi, err := os.Stat(m); err == nil && !fi.IsDir() {
			files = append(files, m)
		}
	}
	sort.Strings(files)
	return files, nil
}

// Stem returns the base name of path without its extension.
func Stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
