package store

import (
	"context"
	"sync"

	"ridelink/internal/message/models"
	"ridelink/internal/sentinel"
	id "ridelink/pkg/domain"
)

// InMemory keeps messages in insertion order so listings are oldest first.
type InMemory struct {
	mu       sync.RWMutex
	messages map[id.MessageID]*models.Message
	order    []id.MessageID
}

func NewInMemory() *InMemory {
	return &InMemory{messages: make(map[id.MessageID]*models.Message)}
}

func (s *InMemory) Save(ctx context.Context, m *models.Message) error {
	return s.SaveAll(ctx, []*models.Message{m})
}

// SaveAll stores the batch or nothing: any duplicate id fails the whole call.
func (s *InMemory) SaveAll(_ context.Context, msgs []*models.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	seen := make(map[id.MessageID]struct{}, len(msgs))
	for _, m := range msgs {
		if _, ok := s.messages[m.ID]; ok {
			return sentinel.ErrConflict
		}
		if _, ok := seen[m.ID]; ok {
			return sentinel.ErrConflict
		}
		seen[m.ID] = struct{}{}
	}
	for _, m := range msgs {
		s.messages[m.ID] = m.Clone()
		s.order = append(s.order, m.ID)
	}
	return nil
}

func (s *InMemory) FindByID(_ context.Context, messageID id.MessageID) (*models.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	m, ok := s.messages[messageID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return m.Clone(), nil
}

func (s *InMemory) Delete(_ context.Context, messageID id.MessageID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.messages[messageID]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.messages, messageID)
	for i, mid := range s.order {
		if mid == messageID {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

func (s *InMemory) ListByRecipient(_ context.Context, recipient id.Handle) ([]*models.Message, error) {
	return s.filter(func(m *models.Message) bool { return m.Recipient == recipient }), nil
}

func (s *InMemory) ListByThread(_ context.Context, threadID id.ThreadID) ([]*models.Message, error) {
	return s.filter(func(m *models.Message) bool { return m.ThreadID == threadID }), nil
}

func (s *InMemory) filter(keep func(*models.Message) bool) []*models.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*models.Message, 0)
	for _, mid := range s.order {
		if m := s.messages[mid]; keep(m) {
			out = append(out, m.Clone())
		}
	}
	return out
}
