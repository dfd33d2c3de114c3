// Package sink writes normalized results. An Artifact is a named blob; a Sink persists each
// artifact exactly once, overwriting anything stored under the same name.
package sink

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"path"
	"strings"

	json "github.com/goccy/go-json"
)

// Content types used by the helpers.
const (
	ContentTypeJSON = "application/json"
	ContentTypeText = "text/plain; charset=utf-8"
	ContentTypeCSV  = "text/csv; charset=utf-8"
	ContentTypeHTML = "text/html; charset=utf-8"
	ContentTypeMP3  = "audio/mpeg"
)

// Artifact is one output of a sample, named relative to the sink root (for example
// "objects_labels.json" or "comprehend/sample1_sentiment.txt").
type Artifact struct {
	Name        string
	Body        []byte
	ContentType string
}

// IsText reports whether the artifact can be printed to a terminal.
func (a Artifact) IsText() bool {
	return strings.HasPrefix(a.ContentType, "text/") || a.ContentType == ContentTypeJSON
}

// JSON encodes v as indented UTF-8 JSON. Non-ASCII text and HTML characters are kept as is.
func JSON(name string, v any) (Artifact, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return Artifact{}, fmt.Errorf("failed to encode %s: %w", name, err)
	}
	return Artifact{Name: name, Body: buf.Bytes(), ContentType: ContentTypeJSON}, nil
}

// RawJSON wraps an already encoded JSON document.
func RawJSON(name string, body []byte) Artifact {
	return Artifact{Name: name, Body: body, ContentType: ContentTypeJSON}
}

// Text wraps a string, adding a trailing newline when it has none.
func Text(name, s string) Artifact {
	if s != "" && !strings.HasSuffix(s, "\n") {
		s += "\n"
	}
	return Artifact{Name: name, Body: []byte(s), ContentType: ContentTypeText}
}

// Lines joins lines with newlines.
func Lines(name string, lines []string) Artifact {
	return Text(name, strings.Join(lines, "\n"))
}

// HTML wraps an HTML document.
func HTML(name, s string) Artifact {
	return Artifact{Name: name, Body: []byte(s), ContentType: ContentTypeHTML}
}

// Bytes wraps a binary body.
func Bytes(name string, b []byte, contentType string) Artifact {
	return Artifact{Name: name, Body: b, ContentType: contentType}
}

// CSV encodes a header row followed by rows.
func CSV(name string, header []string, rows [][]string) (Artifact, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(header); err != nil {
		return Artifact{}, fmt.Errorf("failed to encode %s: %w", name, err)
	}
	if err := w.WriteAll(rows); err != nil {
		return Artifact{}, fmt.Errorf("failed to encode %s: %w", name, err)
	}
	return Artifact{Name: name, Body: buf.Bytes(), ContentType: ContentTypeCSV}, nil
}

// ValidateName rejects names that are empty or absolute, and names that escape the sink root.
func ValidateName(name string) error {
	if name == "" {
		return fmt.Errorf("artifact name is empty")
	}
	clean := path.Clean(strings.ReplaceAll(name, "\\", "/"))
	if strings.HasPrefix(clean, "/") || clean == ".." || strings.HasPrefix(clean, "../") || clean == "." {
		return fmt.Errorf("artifact name %q escapes the sink root", name)
	}
	return nil
}
