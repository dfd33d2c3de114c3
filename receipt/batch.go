package receipt

import (
	"context"
	"os"
	"path"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/gurre/cloud-api-samples/apierr"
	"github.com/gurre/cloud-api-samples/input"
	"github.com/gurre/cloud-api-samples/pipeline"
	"github.com/gurre/cloud-api-samples/sink"
)

// SummaryDir is the artifact directory of the receipt summaries.
const SummaryDir = "summary"

// CSVName is the artifact name of the combined summary table.
var CSVName = path.Join(SummaryDir, "summary.csv")

// SummarizeFile summarizes one OCR result file and emits summary/<stem>.json.
func SummarizeFile(ctx context.Context, r *pipeline.Runner, s *Summarizer, file string) (Summary, bool, error) {
	data, ok, err := pipeline.Prepare(ctx, r, "receipt.ReadOCR", func() ([]byte, error) {
		b, err := os.ReadFile(file)
		if err != nil {
			return nil, apierr.New(apierr.KindLocalIO, "receipt.ReadOCR", err)
		}
		return b, nil
	})
	if err != nil || !ok {
		return Summary{}, false, err
	}

	type result struct {
		summary Summary
		raw     []byte
	}
	res, ok, err := pipeline.Invoke(ctx, r, "gemini.GenerateContent", func(ctx context.Context) (result, error) {
		summary, raw, err := s.Summarize(ctx, data)
		return result{summary, raw}, err
	})
	if err != nil || !ok {
		return Summary{}, false, err
	}

	r.Emit(ctx, sink.RawJSON(path.Join(SummaryDir, input.Stem(file)+".json"), append(res.raw, '\n')))
	return res.summary, true, nil
}

// SummarizeAll summarizes every *.json file of dir in name order and emits the combined
// summary/summary.csv. Files whose result is unusable are skipped. When no file yields a result
// no CSV is written. It returns the number of receipts summarized.
func SummarizeAll(ctx context.Context, r *pipeline.Runner, s *Summarizer, dir string) (int, error) {
	files, ok, err := pipeline.Prepare(ctx, r, "receipt.ListOCR", func() ([]string, error) {
		return input.Glob(dir, "*.json")
	})
	if err != nil || !ok {
		return 0, err
	}

	var rows [][]string
	for _, file := range files {
		summary, ok, err := SummarizeFile(ctx, r, s, file)
		if err != nil {
			return len(rows), err
		}
		if !ok {
			continue
		}
		rows = append(rows, append([]string{filepath.Base(file)}, summary.Row()...))
	}

	if len(rows) == 0 {
		r.Logger().Warn("no valid receipt summaries", zap.String("dir", dir), zap.Int("files", len(files)))
		return 0, nil
	}

	table, err := sink.CSV(CSVName, append([]string{"file"}, Header()...), rows)
	if err != nil {
		return len(rows), r.Check(ctx, "receipt.CSV", apierr.New(apierr.KindShape, "receipt.CSV", err))
	}
	r.Emit(ctx, table)
	return len(rows), nil
}
