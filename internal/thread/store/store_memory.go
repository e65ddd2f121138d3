package store

import (
	"context"
	"sync"

	"ridelink/internal/sentinel"
	"ridelink/internal/thread/models"
	id "ridelink/pkg/domain"
)

// InMemory keeps threads in a map with a secondary index of the active thread per ride.
type InMemory struct {
	mu      sync.RWMutex
	threads map[id.ThreadID]*models.Thread
	active  map[id.RideID]id.ThreadID
}

func NewInMemory() *InMemory {
	return &InMemory{
		threads: make(map[id.ThreadID]*models.Thread),
		active:  make(map[id.RideID]id.ThreadID),
	}
}

// Create returns sentinel.ErrConflict when the ride already has an active thread
// or the thread id is taken.
func (s *InMemory) Create(_ context.Context, t *models.Thread) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.threads[t.ID]; ok {
		return sentinel.ErrConflict
	}
	if t.Active {
		if _, ok := s.active[t.RideID]; ok {
			return sentinel.ErrConflict
		}
		s.active[t.RideID] = t.ID
	}
	s.threads[t.ID] = t.Clone()
	return nil
}

func (s *InMemory) FindByID(_ context.Context, threadID id.ThreadID) (*models.Thread, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.threads[threadID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return t.Clone(), nil
}

func (s *InMemory) FindActiveByRide(_ context.Context, rideID id.RideID) (*models.Thread, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	threadID, ok := s.active[rideID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return s.threads[threadID].Clone(), nil
}

// Update replaces a stored thread. Closing it frees the ride for a new thread.
func (s *InMemory) Update(_ context.Context, t *models.Thread) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.threads[t.ID]; !ok {
		return sentinel.ErrNotFound
	}
	if !t.Active && s.active[t.RideID] == t.ID {
		delete(s.active, t.RideID)
	}
	s.threads[t.ID] = t.Clone()
	return nil
}
