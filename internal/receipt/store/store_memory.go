package store

import (
	"context"
	"sync"

	"ridelink/internal/receipt/models"
	"ridelink/internal/sentinel"
	id "ridelink/pkg/domain"
)

type InMemory struct {
	mu        sync.RWMutex
	byMessage map[id.MessageID][]*models.Receipt
}

func NewInMemory() *InMemory {
	return &InMemory{byMessage: make(map[id.MessageID][]*models.Receipt)}
}

func (s *InMemory) Append(_ context.Context, r *models.Receipt) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := *r
	s.byMessage[r.MessageID] = append(s.byMessage[r.MessageID], &c)
	return nil
}

func (s *InMemory) ListByMessage(_ context.Context, messageID id.MessageID) ([]*models.Receipt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	src := s.byMessage[messageID]
	out := make([]*models.Receipt, 0, len(src))
	for _, r := range src {
		c := *r
		out = append(out, &c)
	}
	return out, nil
}

// Latest returns the most recently appended receipt by reader.
func (s *InMemory) Latest(_ context.Context, messageID id.MessageID, reader id.Handle) (*models.Receipt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	src := s.byMessage[messageID]
	for i := len(src) - 1; i >= 0; i-- {
		if src[i].Reader == reader {
			c := *src[i]
			return &c, nil
		}
	}
	return nil, sentinel.ErrNotFound
}
