package quota

import (
	"context"
	"sync"
)

// MemoryStore is the process-local fallback used when no persistent backend
// is configured. All state is lost on restart.
type MemoryStore struct {
	mu      sync.Mutex
	records map[string]Record
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]Record)}
}

func (s *MemoryStore) Read(_ context.Context, callerID string) (*Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[callerID]
	if !ok {
		return nil, nil
	}
	return &rec, nil
}

func (s *MemoryStore) Update(_ context.Context, callerID string, fn UpdateFn) (Decision, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var cur *Record
	if rec, ok := s.records[callerID]; ok {
		cp := rec
		cur = &cp
	}

	next, d := fn(cur)
	if next != nil {
		next.CallerID = callerID
		s.records[callerID] = *next
	}
	return d, nil
}
