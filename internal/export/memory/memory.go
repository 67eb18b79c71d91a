// Package memory implements the statement export port in process, for tests
// and for running the worker without Google credentials.
package memory

import (
	"context"
	"fmt"
	"sync"

	"bolsillo/internal/core"
)

type Store struct {
	mu    sync.Mutex
	items []core.Record
}

func New() *Store {
	return &Store{}
}

// Append stores the record and returns a synthetic row reference.
func (s *Store) Append(_ context.Context, rec core.Record) (string, error) {
	if err := rec.Validate(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = append(s.items, rec)
	return fmt.Sprintf("mem:%d", len(s.items)), nil
}

// Items returns a copy of everything appended so far.
func (s *Store) Items() []core.Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Record(nil), s.items...)
}
