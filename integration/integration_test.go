package integration

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/goccy/go-json"

	"github.com/gurre/cloud-api-samples/apierr"
	"github.com/gurre/cloud-api-samples/aws"
	"github.com/gurre/cloud-api-samples/calendar"
	"github.com/gurre/cloud-api-samples/config"
	"github.com/gurre/cloud-api-samples/creds"
	"github.com/gurre/cloud-api-samples/imaging"
	"github.com/gurre/cloud-api-samples/input"
	"github.com/gurre/cloud-api-samples/integration/mock"
	"github.com/gurre/cloud-api-samples/pipeline"
	"github.com/gurre/cloud-api-samples/sink"
)

// pngHeader is enough of an image for the local checks; the fake service never decodes it.
var pngHeader = []byte{0x89, 'P', 'N', 'G', 0x0d, 0x0a, 0x1a, 0x0a}

func writeImage(t *testing.T, dir, name string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, pngHeader, 0o644); err != nil {
		t.Fatalf("Failed to write %s: %v", name, err)
	}
	return p
}

func newRunner(s sink.Sink, runID string) (*pipeline.Runner, *bytes.Buffer) {
	out := &bytes.Buffer{}
	return pipeline.NewRunner(pipeline.Options{
		Sink:    s,
		Out:     out,
		Command: "integration",
		RunID:   runID,
	}), out
}

func TestLabelsToFileSink(t *testing.T) {
	ctx := context.Background()
	dataDir := t.TempDir()
	resultsDir := t.TempDir()
	objects := writeImage(t, dataDir, "objects.png")

	client := mock.NewRekognitionClient(
		mock.Label("Chair", 91.2),
		mock.Label("Table", 77.5),
		mock.Label("Shadow", 41.0),
	)
	r, out := newRunner(sink.NewFileSink(resultsDir), "")

	if err := imaging.DetectLabelsFiles(ctx, r, imaging.NewRekognition(client), imaging.LabelOptions{}, []string{objects}); err != nil {
		t.Fatalf("Labels failed: %v", err)
	}

	body, err := os.ReadFile(filepath.Join(resultsDir, "objects_labels.json"))
	if err != nil {
		t.Fatalf("Failed to read labels JSON: %v", err)
	}
	var records []imaging.LabelSummary
	if err := json.Unmarshal(body, &records); err != nil {
		t.Fatalf("Failed to decode labels JSON: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("Expected 2 labels above the confidence threshold, got %d: %+v", len(records), records)
	}
	if records[0].Name != "Chair" || records[1].Name != "Table" {
		t.Errorf("Unexpected labels: %+v", records)
	}

	text, err := os.ReadFile(filepath.Join(resultsDir, "objects_labels.txt"))
	if err != nil {
		t.Fatalf("Failed to read labels text: %v", err)
	}
	for _, want := range []string{"- Chair: 91.2%", "- Table: 77.5%"} {
		if !strings.Contains(string(text), want) {
			t.Errorf("Labels text missing %q:\n%s", want, text)
		}
	}

	if !strings.Contains(out.String(), "- Chair: 91.2%") || strings.Contains(out.String(), "Shadow") {
		t.Errorf("Unexpected console output:\n%s", out.String())
	}

	report := r.Finish(ctx, "")
	if report.Calls != 1 || report.Skipped != 0 || report.Artifacts != 2 {
		t.Errorf("Unexpected report: %+v", report)
	}
}

func TestLabelsWithPositionAndExplicitLimits(t *testing.T) {
	ctx := context.Background()
	resultsDir := t.TempDir()
	objects := writeImage(t, t.TempDir(), "objects.png")

	client := mock.NewRekognitionClient(
		mock.Label("Chair", 91.2),
		mock.Label("Table", 77.5),
		mock.Label("Shadow", 41.0),
	)
	r, out := newRunner(sink.NewFileSink(resultsDir), "")

	maxLabels := int32(3)
	minConfidence := float32(0)
	opts := imaging.LabelOptions{MaxLabels: &maxLabels, MinConfidence: &minConfidence, WithPosition: true}
	if err := imaging.DetectLabelsFiles(ctx, r, imaging.NewRekognition(client), opts, []string{objects}); err != nil {
		t.Fatalf("Labels failed: %v", err)
	}

	body, err := os.ReadFile(filepath.Join(resultsDir, "objects_labels_with_position.json"))
	if err != nil {
		t.Fatalf("Failed to read positioned labels: %v", err)
	}
	var labels []imaging.Label
	if err := json.Unmarshal(body, &labels); err != nil {
		t.Fatalf("Failed to decode positioned labels: %v", err)
	}
	if len(labels) != 3 {
		t.Fatalf("A zero minimum confidence must keep all 3 labels, got %+v", labels)
	}
	if _, err := os.Stat(filepath.Join(resultsDir, "objects_labels.json")); !os.IsNotExist(err) {
		t.Errorf("Plain label artifacts must not be written with positions: %v", err)
	}
	if !strings.Contains(out.String(), "- Label: Shadow") {
		t.Errorf("Console output missing the low-confidence label:\n%s", out.String())
	}
}

func TestLabelsRejectsZeroMaxLabels(t *testing.T) {
	ctx := context.Background()
	resultsDir := t.TempDir()
	objects := writeImage(t, t.TempDir(), "objects.png")
	client := mock.NewRekognitionClient(mock.Label("Chair", 91.2))
	r, _ := newRunner(sink.NewFileSink(resultsDir), "")

	maxLabels := int32(0)
	err := imaging.DetectLabelsFiles(ctx, r, imaging.NewRekognition(client), imaging.LabelOptions{MaxLabels: &maxLabels}, []string{objects})
	if !apierr.Is(err, apierr.KindConfiguration) {
		t.Fatalf("Expected a configuration error, got %v", err)
	}
	if client.Calls() != 0 {
		t.Errorf("Expected no provider calls, got %d", client.Calls())
	}
}

func TestMissingImageIsSkipped(t *testing.T) {
	ctx := context.Background()
	dataDir := t.TempDir()
	resultsDir := t.TempDir()
	faces := writeImage(t, dataDir, "faces.png")

	client := mock.NewRekognitionClient(mock.Label("Person", 99.1))
	r, _ := newRunner(sink.NewFileSink(resultsDir), "")

	paths := []string{filepath.Join(dataDir, "missing.png"), faces}
	err := imaging.DetectLabelsFiles(ctx, r, imaging.NewRekognition(client), imaging.LabelOptions{}, paths)
	if err != nil {
		t.Fatalf("A missing image must not stop the run: %v", err)
	}
	if client.Calls() != 1 {
		t.Errorf("Expected 1 call for the readable image, got %d", client.Calls())
	}
	if _, err := os.Stat(filepath.Join(resultsDir, "faces_labels.json")); err != nil {
		t.Errorf("Expected faces_labels.json: %v", err)
	}

	report := r.Finish(ctx, "")
	if report.Skipped != 1 || report.Failures[apierr.KindLocalIO.String()] != 1 {
		t.Errorf("Unexpected report: %+v", report)
	}
}

func TestMissingCredentialsMakeNoCalls(t *testing.T) {
	ctx := context.Background()
	resultsDir := t.TempDir()
	client := mock.NewRekognitionClient(mock.Label("Chair", 91.2))
	r, _ := newRunner(sink.NewFileSink(resultsDir), "")

	_, err := creds.ResolveAWS(&config.Config{AWSRegion: config.DefaultRegion})
	stop := r.Check(ctx, "creds.ResolveAWS", err)
	if stop == nil {
		t.Fatal("Missing credentials must stop the run")
	}
	if !apierr.Is(stop, apierr.KindConfiguration) {
		t.Errorf("Expected a configuration error, got %v", stop)
	}
	if !strings.Contains(stop.Error(), config.EnvAWSAccessKeyID) {
		t.Errorf("Error should name the missing variable: %v", stop)
	}

	if client.Calls() != 0 {
		t.Errorf("Expected no provider calls, got %d", client.Calls())
	}
	entries, err := os.ReadDir(resultsDir)
	if err != nil {
		t.Fatalf("Failed to list results: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("Expected no results, found %d entries", len(entries))
	}
}

func TestLabelsToS3Sink(t *testing.T) {
	ctx := context.Background()
	objects := writeImage(t, t.TempDir(), "objects.png")
	mockS3 := mock.NewS3Client()

	s, err := sink.Open(ctx, "s3://sample-results/runs/", sink.Deps{
		S3: func() (aws.S3Client, error) { return mockS3, nil },
	})
	if err != nil {
		t.Fatalf("Failed to open sink: %v", err)
	}
	r, _ := newRunner(s, "")

	client := mock.NewRekognitionClient(mock.Label("Chair", 91.2))
	if err := imaging.DetectLabelsFiles(ctx, r, imaging.NewRekognition(client), imaging.LabelOptions{}, []string{objects}); err != nil {
		t.Fatalf("Labels failed: %v", err)
	}

	body, ok := mockS3.File("sample-results", "runs/objects_labels.json")
	if !ok {
		t.Fatalf("Expected runs/objects_labels.json, have %v", mockS3.Keys())
	}
	if !strings.Contains(string(body), `"Chair"`) {
		t.Errorf("Unexpected object body: %s", body)
	}
	if ct := mockS3.ContentTypes["sample-results/runs/objects_labels.txt"]; ct != sink.ContentTypeText {
		t.Errorf("Unexpected content type %q", ct)
	}
}

func TestLabelsToDynamoDBSink(t *testing.T) {
	ctx := context.Background()
	objects := writeImage(t, t.TempDir(), "objects.png")
	mockDB := mock.NewDynamoDBClient()

	const runID = "run-0001"
	s, err := sink.Open(ctx, "dynamodb://sample-results", sink.Deps{
		RunID:    runID,
		DynamoDB: func() (aws.DynamoDBClient, error) { return mockDB, nil },
	})
	if err != nil {
		t.Fatalf("Failed to open sink: %v", err)
	}
	r, _ := newRunner(s, runID)

	// The first put fails; the run goes on and the second artifact is stored.
	mockDB.SetFailNextWrite(true)
	client := mock.NewRekognitionClient(mock.Label("Chair", 91.2))
	if err := imaging.DetectLabelsFiles(ctx, r, imaging.NewRekognition(client), imaging.LabelOptions{}, []string{objects}); err != nil {
		t.Fatalf("Labels failed: %v", err)
	}

	if len(mockDB.Puts()) != 2 {
		t.Errorf("Expected 2 put attempts, got %d", len(mockDB.Puts()))
	}
	if mockDB.Len("sample-results") != 1 {
		t.Fatalf("Expected 1 stored item, got %d", mockDB.Len("sample-results"))
	}
	item := mockDB.Item("sample-results", runID, "objects_labels.txt")
	if item == nil {
		t.Fatal("Expected objects_labels.txt to be stored")
	}
	body, ok := item["body"].(*types.AttributeValueMemberB)
	if !ok || !strings.Contains(string(body.Value), "- Chair: 91.2%") {
		t.Errorf("Unexpected body attribute: %#v", item["body"])
	}

	report := r.Finish(ctx, "")
	if report.Artifacts != 1 || report.Failures[apierr.KindProvider.String()] != 1 {
		t.Errorf("Unexpected report: %+v", report)
	}
}

func TestCalendarInsertedEventIsListed(t *testing.T) {
	ctx := context.Background()
	store := mock.NewCalendarClient()
	c := calendar.NewClient("team@group.calendar.google.com", store.Connect)

	start := time.Now().Add(24 * time.Hour).Truncate(time.Minute)
	ev, err := c.AddEvent(ctx, calendar.EventInput{
		Summary:  "自動追加テストイベント",
		Start:    start,
		End:      start.Add(time.Hour),
		TimeZone: calendar.DefaultTimeZone,
	})
	if err != nil {
		t.Fatalf("AddEvent failed: %v", err)
	}
	if ev.ID == "" {
		t.Fatal("Inserted event has no id")
	}

	events, err := c.ListEvents(ctx, calendar.DefaultMaxResults)
	if err != nil {
		t.Fatalf("ListEvents failed: %v", err)
	}
	found := false
	for _, e := range events {
		if e.ID == ev.ID {
			found = true
		}
	}
	if !found {
		t.Errorf("Event %s missing from listing %+v", ev.ID, events)
	}
	if len(store.Connects) != 2 || store.Connects[0] || !store.Connects[1] {
		t.Errorf("Expected a read-write then a read-only connection, got %v", store.Connects)
	}
}

func TestLinesFromS3(t *testing.T) {
	ctx := context.Background()
	dataDir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dataDir, "text"), 0o755); err != nil {
		t.Fatalf("Failed to create input dir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dataDir, "text", "ja.txt"), []byte("一行目\n\n三行目\r\n"), 0o644); err != nil {
		t.Fatalf("Failed to write input: %v", err)
	}

	mockS3 := mock.NewS3Client()
	if err := mockS3.LoadDir("sample-inputs", dataDir); err != nil {
		t.Fatalf("Failed to load inputs: %v", err)
	}
	if keys := mockS3.Keys(); len(keys) != 1 || keys[0] != "sample-inputs/text/ja.txt" {
		t.Fatalf("Unexpected keys after load: %v", keys)
	}

	lines, err := input.Lines(ctx, "s3://sample-inputs/text/ja.txt", mockS3)
	if err != nil {
		t.Fatalf("Lines failed: %v", err)
	}
	want := []string{"一行目", "", "三行目"}
	if strings.Join(lines, "|") != strings.Join(want, "|") {
		t.Errorf("Expected %q, got %q", want, lines)
	}

	_, err = input.Lines(ctx, "s3://sample-inputs/missing.txt", mockS3)
	if err == nil {
		t.Fatal("Expected an error for a missing object")
	}

	if err := mockS3.LoadFile("sample-inputs", "absent.txt", filepath.Join(dataDir, "absent.txt")); err == nil {
		t.Error("Expected an error loading a missing local file")
	}
}
