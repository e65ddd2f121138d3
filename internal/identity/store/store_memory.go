package store

import (
	"context"
	"sync"

	"ridelink/internal/identity/models"
	"ridelink/internal/sentinel"
	id "ridelink/pkg/domain"
)

// Error Contract:
// - Create returns sentinel.ErrConflict when the handle already exists
// - FindByHandle and Update return sentinel.ErrNotFound for unknown handles

// InMemoryStore keeps identity records in a map keyed by handle.
type InMemoryStore struct {
	mu      sync.RWMutex
	records map[id.Handle]*models.Record
}

func NewInMemory() *InMemoryStore {
	return &InMemoryStore{records: make(map[id.Handle]*models.Record)}
}

func (s *InMemoryStore) Create(_ context.Context, rec *models.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[rec.Handle]; ok {
		return sentinel.ErrConflict
	}
	s.records[rec.Handle] = rec.Clone()
	return nil
}

func (s *InMemoryStore) FindByHandle(_ context.Context, handle id.Handle) (*models.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[handle]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return rec.Clone(), nil
}

func (s *InMemoryStore) Update(_ context.Context, rec *models.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[rec.Handle]; !ok {
		return sentinel.ErrNotFound
	}
	s.records[rec.Handle] = rec.Clone()
	return nil
}
