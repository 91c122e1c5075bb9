// Package memory provides an in-memory record store used for local
// development and tests.
package memory

import (
	"context"
	"strconv"
	"sync"

	"moneta/internal/core"
	ports "moneta/internal/sheets"
)

var _ ports.Store = (*Store)(nil)

type Store struct {
	mu     sync.Mutex
	nextID int64
	items  map[string]core.Record
	order  []string
}

func New() *Store {
	return &Store{
		nextID: 1,
		items:  make(map[string]core.Record),
	}
}

// Append stores the record and returns its ID, assigning the next
// sequential one when the record has none.
func (s *Store) Append(_ context.Context, rec core.Record) (string, error) {
	if err := rec.Validate(); err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id := rec.ID
	if id == "" {
		id = strconv.FormatInt(s.nextID, 10)
		s.nextID++
	}

	rec.ID = id
	if _, exists := s.items[id]; !exists {
		s.order = append(s.order, id)
	}
	s.items[id] = rec
	return id, nil
}

// List returns all records in insertion order.
func (s *Store) List(_ context.Context) ([]core.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]core.Record, 0, len(s.items))
	for _, id := range s.order {
		if rec, ok := s.items[id]; ok {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (s *Store) Get(_ context.Context, id string) (core.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.items[id]
	if !ok {
		return core.Record{}, core.ErrNotFound
	}
	return rec, nil
}

// Replace swaps the stored fields of id for those of rec, keeping the ID
// and original creation time.
func (s *Store) Replace(_ context.Context, id string, rec core.Record) (core.Record, error) {
	if err := rec.Validate(); err != nil {
		return core.Record{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	old, ok := s.items[id]
	if !ok {
		return core.Record{}, core.ErrNotFound
	}

	rec.ID = id
	rec.CreatedAt = old.CreatedAt
	s.items[id] = rec
	return rec, nil
}

func (s *Store) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.items[id]; !ok {
		return core.ErrNotFound
	}
	delete(s.items, id)
	return nil
}
