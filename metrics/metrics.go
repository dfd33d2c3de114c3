// Package metrics counts what a sample run did: provider calls, classified failures, skipped
// invocations and persisted artifacts. The counters feed the run report printed at the end
// of every command.
package metrics

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	json "github.com/goccy/go-json"

	"github.com/gurre/cloud-api-samples/apierr"
)

// Metrics collects counters for one run.
// It uses atomic operations for thread-safe counter updates.
type Metrics struct {
	mu sync.RWMutex

	calls     int64 // Provider invocations attempted
	succeeded int64 // Invocations that returned a usable result
	skipped   int64 // Invocations skipped after a non-fatal failure
	artifacts int64 // Artifacts persisted by the sink
	bytes     int64 // Total bytes persisted

	failures  map[apierr.Kind]int64
	callTime  time.Duration // Total time spent inside provider calls
	startTime time.Time
}

// NewMetrics creates a new Metrics instance with initialized counters
func NewMetrics() *Metrics {
	return &Metrics{
		failures:  make(map[apierr.Kind]int64),
		startTime: time.Now(),
	}
}

// RecordCall increments the call counter and adds the call latency.
func (m *Metrics) RecordCall(d time.Duration) {
	atomic.AddInt64(&m.calls, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.callTime += d
}

// RecordSuccess increments the succeeded counter
func (m *Metrics) RecordSuccess() {
	atomic.AddInt64(&m.succeeded, 1)
}

// RecordFailure counts a failure under its kind
func (m *Metrics) RecordFailure(kind apierr.Kind) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failures[kind]++
}

// RecordSkipped increments the skipped invocation counter
func (m *Metrics) RecordSkipped() {
	atomic.AddInt64(&m.skipped, 1)
}

// RecordArtifact counts one persisted artifact of size n
func (m *Metrics) RecordArtifact(n int) {
	atomic.AddInt64(&m.artifacts, 1)
	atomic.AddInt64(&m.bytes, int64(n))
}

// Failures returns the failure count for kind.
func (m *Metrics) Failures(kind apierr.Kind) int64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.failures[kind]
}

// Report is the summary of a run.
type Report struct {
	RunID     string           `json:"runId"`
	Command   string           `json:"command"`
	StartTime time.Time        `json:"startTime"`
	EndTime   time.Time        `json:"endTime"`
	Calls     int64            `json:"calls"`
	Succeeded int64            `json:"succeeded"`
	Skipped   int64            `json:"skipped"`
	Failures  map[string]int64 `json:"failures"`
	Artifacts int64            `json:"artifacts"`
	Bytes     int64            `json:"bytes"`
	CallTime  time.Duration    `json:"callTime"`
	Duration  time.Duration    `json:"duration"`
}

// GenerateReport snapshots the counters.
func (m *Metrics) GenerateReport(runID, command string) Report {
	endTime := time.Now()

	m.mu.RLock()
	failures := make(map[string]int64, len(m.failures))
	for k, n := range m.failures {
		failures[k.String()] = n
	}
	callTime := m.callTime
	m.mu.RUnlock()

	return Report{
		RunID:     runID,
		Command:   command,
		StartTime: m.startTime,
		EndTime:   endTime,
		Calls:     atomic.LoadInt64(&m.calls),
		Succeeded: atomic.LoadInt64(&m.succeeded),
		Skipped:   atomic.LoadInt64(&m.skipped),
		Failures:  failures,
		Artifacts: atomic.LoadInt64(&m.artifacts),
		Bytes:     atomic.LoadInt64(&m.bytes),
		CallTime:  callTime,
		Duration:  endTime.Sub(m.startTime),
	}
}

// MarshalJSON renders durations as strings.
func (r Report) MarshalJSON() ([]byte, error) {
	type Alias Report
	return json.Marshal(&struct {
		Alias
		CallTime string `json:"callTime"`
		Duration string `json:"duration"`
	}{
		Alias:    Alias(r),
		CallTime: r.CallTime.String(),
		Duration: r.Duration.String(),
	})
}

// String returns a human-readable summary for the console.
func (r Report) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s completed in %s\n", r.Command, r.Duration.Round(time.Millisecond))
	fmt.Fprintf(&b, "Calls: %d (succeeded %d, skipped %d)\n", r.Calls, r.Succeeded, r.Skipped)
	fmt.Fprintf(&b, "Artifacts: %d (%d bytes)", r.Artifacts, r.Bytes)

	if len(r.Failures) > 0 {
		kinds := make([]string, 0, len(r.Failures))
		for k := range r.Failures {
			kinds = append(kinds, k)
		}
		sort.Strings(kinds)
		parts := make([]string, 0, len(kinds))
		for _, k := range kinds {
			parts = append(parts, fmt.Sprintf("%s=%d", k, r.Failures[k]))
		}
		fmt.Fprintf(&b, "\nFailures: %s", strings.Join(parts, ", "))
	}
	return b.String()
}
