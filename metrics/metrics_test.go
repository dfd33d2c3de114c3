package metrics

import (
	"strings"
	"testing"
	"time"

	json "github.com/goccy/go-json"

	"github.com/gurre/cloud-api-samples/apierr"
)

func TestMetricsHappyPath(t *testing.T) {
	m := NewMetrics()

	m.RecordCall(10 * time.Millisecond)
	m.RecordCall(20 * time.Millisecond)
	m.RecordSuccess()
	m.RecordFailure(apierr.KindProvider)
	m.RecordSkipped()
	m.RecordArtifact(100)
	m.RecordArtifact(23)

	report := m.GenerateReport("run-1", "aws rekognition labels")

	if report.Calls != 2 {
		t.Errorf("expected 2 calls, got %d", report.Calls)
	}
	if report.Succeeded != 1 {
		t.Errorf("expected 1 success, got %d", report.Succeeded)
	}
	if report.Skipped != 1 {
		t.Errorf("expected 1 skipped, got %d", report.Skipped)
	}
	if report.Failures["provider"] != 1 {
		t.Errorf("expected 1 provider failure, got %v", report.Failures)
	}
	if report.Artifacts != 2 || report.Bytes != 123 {
		t.Errorf("expected 2 artifacts of 123 bytes, got %d/%d", report.Artifacts, report.Bytes)
	}
	if report.CallTime != 30*time.Millisecond {
		t.Errorf("expected 30ms call time, got %v", report.CallTime)
	}
	if m.Failures(apierr.KindShape) != 0 {
		t.Errorf("expected no shape failures")
	}

	str := report.String()
	if !strings.Contains(str, "aws rekognition labels completed") {
		t.Errorf("unexpected summary: %s", str)
	}
	if !strings.Contains(str, "Failures: provider=1") {
		t.Errorf("expected failures in summary: %s", str)
	}
}

func TestReportJSON(t *testing.T) {
	r := Report{
		RunID:    "run-1",
		Command:  "gcp vision ocr",
		CallTime: 1500 * time.Millisecond,
		Duration: 2 * time.Second,
		Failures: map[string]int64{},
	}

	b, err := json.Marshal(r)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	var got map[string]any
	if err := json.Unmarshal(b, &got); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if got["duration"] != "2s" {
		t.Errorf("expected duration 2s, got %v", got["duration"])
	}
	if got["callTime"] != "1.5s" {
		t.Errorf("expected callTime 1.5s, got %v", got["callTime"])
	}
	if got["runId"] != "run-1" {
		t.Errorf("expected runId run-1, got %v", got["runId"])
	}
}

func TestReportStringWithoutFailures(t *testing.T) {
	r := NewMetrics().GenerateReport("run-1", "gcp translate")
	if strings.Contains(r.String(), "Failures") {
		t.Errorf("expected no failures line: %s", r.String())
	}
}
