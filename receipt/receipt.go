// Package receipt extracts the registration number, store, total and tax of a receipt from its
// OCR text with a Gemini model.
package receipt

import (
	"bytes"
	"context"
	"strings"

	json "github.com/goccy/go-json"

	"github.com/gurre/cloud-api-samples/apierr"
	"github.com/gurre/cloud-api-samples/gcp"
)

// Temperature is the sampling temperature of the extraction model.
const Temperature float32 = 0.7

// Keys of the extraction result, as the model is asked to return them.
const (
	KeyRegistrationNumber = "登録番号"
	KeyStore              = "購入店"
	KeyTotal              = "総支払額"
	KeyTax                = "消費税額"
)

// Prompt asks the model for the four fields as one JSON object.
const Prompt = `
このレシートから以下の情報を抽出してください：
1. 登録番号（登録番号もしくは事業者登録番号）
2. 購入店名
3. 総支払額
4. 消費税額

以下の形式でJSON形式で返してください：
{
    "登録番号": "番号",
    "購入店": "店名",
    "総支払額": "金額",
    "消費税額": "金額"
}
`

// Summary is the extracted receipt data. Fields the model left out are empty.
type Summary struct {
	RegistrationNumber string
	Store              string
	Total              string
	Tax                string
}

// Row returns the summary as CSV cells in header order.
func (s Summary) Row() []string {
	return []string{s.RegistrationNumber, s.Store, s.Total, s.Tax}
}

// Header lists the CSV columns of a summary.
func Header() []string {
	return []string{KeyRegistrationNumber, KeyStore, KeyTotal, KeyTax}
}

// OCRText returns the text to send for an OCR result file: its "text" field, else its
// "full_text" field, else the whole document.
func OCRText(ocrJSON []byte) (string, error) {
	const op = "receipt.OCRText"
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(ocrJSON, &doc); err != nil {
		return "", apierr.LocalIOf(op, "OCR result is not a JSON object: %v", err)
	}
	for _, key := range []string{"text", "full_text"} {
		raw, ok := doc[key]
		if !ok {
			continue
		}
		var s string
		if err := json.Unmarshal(raw, &s); err == nil && s != "" {
			return s, nil
		}
	}
	return string(ocrJSON), nil
}

// BuildPrompt appends the OCR text to the extraction prompt.
func BuildPrompt(text string) string {
	return Prompt + "\n\nOCRのテキスト結果:\n" + text
}

// Summarizer runs the extraction against a generative model.
type Summarizer struct {
	client gcp.GenerativeClient
}

// NewSummarizer creates a Summarizer.
func NewSummarizer(client gcp.GenerativeClient) *Summarizer {
	return &Summarizer{client: client}
}

// Summarize extracts the receipt fields from one OCR result file. It also returns the model's
// JSON, re-indented.
func (s *Summarizer) Summarize(ctx context.Context, ocrJSON []byte) (Summary, []byte, error) {
	const op = "gemini.GenerateContent"
	text, err := OCRText(ocrJSON)
	if err != nil {
		return Summary{}, nil, err
	}
	out, err := s.client.Generate(ctx, BuildPrompt(text))
	if err != nil {
		return Summary{}, nil, apierr.Classify(op, err)
	}
	return ParseSummary(out)
}

// ParseSummary decodes the model output. Markdown code fences around the JSON are tolerated;
// anything that is not a JSON object is a shape error.
func ParseSummary(out string) (Summary, []byte, error) {
	const op = "receipt.ParseSummary"
	raw := []byte(stripFences(out))

	var doc map[string]json.RawMessage
	if err := json.Unmarshal(raw, &doc); err != nil {
		return Summary{}, nil, apierr.Shapef(op, "model output is not a JSON object: %v", err)
	}

	var indented bytes.Buffer
	if err := json.Indent(&indented, raw, "", "  "); err != nil {
		return Summary{}, nil, apierr.Shapef(op, "failed to indent model output: %v", err)
	}

	return Summary{
		RegistrationNumber: field(doc, KeyRegistrationNumber),
		Store:              field(doc, KeyStore),
		Total:              field(doc, KeyTotal),
		Tax:                field(doc, KeyTax),
	}, indented.Bytes(), nil
}

// field renders a string value as-is and any other value as its JSON text.
func field(doc map[string]json.RawMessage, key string) string {
	raw, ok := doc[key]
	if !ok {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	v := strings.TrimSpace(string(raw))
	if v == "null" {
		return ""
	}
	return v
}

func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[i+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
