package store

import (
	"context"
	"sync"

	"ridelink/internal/message/models"
	id "ridelink/pkg/domain"
)

// PreferencesInMemory holds each passenger's quick-reply allow-list.
// Handles with no stored preference get the full catalogue.
type PreferencesInMemory struct {
	mu    sync.RWMutex
	byKey map[id.Handle]models.ReplySet
}

func NewPreferencesInMemory() *PreferencesInMemory {
	return &PreferencesInMemory{byKey: make(map[id.Handle]models.ReplySet)}
}

func (p *PreferencesInMemory) EnabledReplies(_ context.Context, handle id.Handle) (models.ReplySet, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	set, ok := p.byKey[handle]
	if !ok {
		return models.DefaultReplySet(), nil
	}
	return set, nil
}

func (p *PreferencesInMemory) SetEnabledReplies(_ context.Context, handle id.Handle, set models.ReplySet) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.byKey[handle] = set
	return nil
}
