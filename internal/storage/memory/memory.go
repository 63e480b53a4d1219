// Package memory is a process-local record store used for development and tests.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/voicebudget/voice-ledger/internal/ledger"
)

// Store keeps records in a map guarded by a mutex
type Store struct {
	mu      sync.RWMutex
	nextID  int64
	records map[int64]ledger.Record
}

// New returns an empty store
func New() *Store {
	return &Store{records: make(map[int64]ledger.Record)}
}

func (s *Store) Create(_ context.Context, record *ledger.Record) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	stored := *record
	stored.ID = s.nextID
	s.records[stored.ID] = stored
	return stored.ID, nil
}

func (s *Store) Get(_ context.Context, id int64) (*ledger.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.records[id]
	if !ok {
		return nil, ledger.ErrNotFound
	}
	return &record, nil
}

// List returns copies ordered by id
func (s *Store) List(_ context.Context) ([]*ledger.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*ledger.Record, 0, len(s.records))
	for _, r := range s.records {
		record := r
		out = append(out, &record)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) Update(_ context.Context, record *ledger.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.records[record.ID]; !ok {
		return ledger.ErrNotFound
	}
	s.records[record.ID] = *record
	return nil
}

// Delete ignores unknown ids and reports whether one was removed
func (s *Store) Delete(_ context.Context, id int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.records[id]; !ok {
		return false, nil
	}
	delete(s.records, id)
	return true, nil
}
