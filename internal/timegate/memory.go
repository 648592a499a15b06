package timegate

import (
	"context"
	"sync"
)

// MemoryStore keeps guards for the current day only. Marking a task on a
// new day drops every entry from earlier days.
type MemoryStore struct {
	mu   sync.Mutex
	day  string
	runs map[string]struct{}
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{runs: make(map[string]struct{})}
}

// HasRun implements Store
func (s *MemoryStore) HasRun(_ context.Context, day, task string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if day != s.day {
		return false, nil
	}
	_, ok := s.runs[task]
	return ok, nil
}

// MarkRun implements Store
func (s *MemoryStore) MarkRun(_ context.Context, day, task string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.mark(day, task)
	return nil
}

// TryMark implements Store
func (s *MemoryStore) TryMark(_ context.Context, day, task string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if day == s.day {
		if _, ok := s.runs[task]; ok {
			return false, nil
		}
	}
	s.mark(day, task)
	return true, nil
}

func (s *MemoryStore) mark(day, task string) {
	if day != s.day {
		s.day = day
		s.runs = make(map[string]struct{})
	}
	s.runs[task] = struct{}{}
}
