// Package sinktest provides an in-memory sink for tests of code that emits artifacts.
package sinktest

import (
	"context"
	"sync"

	"github.com/gurre/cloud-api-samples/sink"
)

// Memory keeps artifacts in memory, in write order. A later write with the same name replaces
// the earlier one in place.
type Memory struct {
	mu        sync.Mutex
	artifacts []sink.Artifact
}

var _ sink.Sink = (*Memory)(nil)

// NewMemory creates an empty Memory sink.
func NewMemory() *Memory {
	return &Memory{}
}

// Write stores a copy of a.
func (m *Memory) Write(ctx context.Context, a sink.Artifact) error {
	if err := sink.ValidateName(a.Name); err != nil {
		return err
	}
	a.Body = append([]byte(nil), a.Body...)

	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.artifacts {
		if m.artifacts[i].Name == a.Name {
			m.artifacts[i] = a
			return nil
		}
	}
	m.artifacts = append(m.artifacts, a)
	return nil
}

// Artifacts returns the stored artifacts.
func (m *Memory) Artifacts() []sink.Artifact {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]sink.Artifact(nil), m.artifacts...)
}

// Get returns the artifact stored under name.
func (m *Memory) Get(name string) (sink.Artifact, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.artifacts {
		if a.Name == name {
			return a, true
		}
	}
	return sink.Artifact{}, false
}
