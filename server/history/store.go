// Package history keeps recent sales activity invocations in memory.
package history

import (
	"sync"

	"github.com/nomis52/gocti/salesactivity"
)

const defaultSize = 50

// MemoryStore keeps the most recent invocations in memory only (no
// persistence). It implements salesactivity.Reporter.
type MemoryStore struct {
	mu   sync.Mutex
	size int
	runs []salesactivity.Invocation
}

// NewMemoryStore creates a store retaining at most size invocations.
func NewMemoryStore(size int) *MemoryStore {
	if size <= 0 {
		size = defaultSize
	}
	return &MemoryStore{
		size: size,
		runs: make([]salesactivity.Invocation, 0, size),
	}
}

// Report implements salesactivity.Reporter.
func (s *MemoryStore) Report(inv salesactivity.Invocation) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Prepend to keep most recent first
	s.runs = append([]salesactivity.Invocation{inv}, s.runs...)
	if len(s.runs) > s.size {
		s.runs = s.runs[:s.size]
	}
}

// History returns the retained invocations, most recent first.
func (s *MemoryStore) History() []salesactivity.Invocation {
	s.mu.Lock()
	defer s.mu.Unlock()

	result := make([]salesactivity.Invocation, len(s.runs))
	for i, run := range s.runs {
		result[i] = copyInvocation(run)
	}
	return result
}

// Get returns the invocation with the given id.
func (s *MemoryStore) Get(id string) (salesactivity.Invocation, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, run := range s.runs {
		if run.ID == id {
			return copyInvocation(run), true
		}
	}
	return salesactivity.Invocation{}, false
}

func copyInvocation(inv salesactivity.Invocation) salesactivity.Invocation {
	steps := make([]salesactivity.StepResult, len(inv.Steps))
	copy(steps, inv.Steps)
	inv.Steps = steps
	return inv
}
