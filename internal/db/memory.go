package db

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/webpro/backend/internal/model"
)

// MemoryStore keeps identities in process memory. Returned identities are
// copies; callers cannot mutate stored records.
type MemoryStore struct {
	mu         sync.RWMutex
	byID       map[string]*model.Identity
	byUsername map[string]string
	now        func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byID:       make(map[string]*model.Identity),
		byUsername: make(map[string]string),
		now:        time.Now,
	}
}

func (m *MemoryStore) FindByUsername(ctx context.Context, username string) (*model.Identity, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	id, ok := m.byUsername[username]
	if !ok {
		return nil, ErrNotFound
	}
	identity := *m.byID[id]
	return &identity, nil
}

func (m *MemoryStore) Save(ctx context.Context, identity *model.Identity) (*model.Identity, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	saved := *identity
	now := m.now()

	if saved.ID == "" {
		if _, taken := m.byUsername[saved.Username]; taken {
			return nil, ErrDuplicate
		}
		saved.ID = uuid.NewString()
		saved.CreatedAt = now
		saved.UpdatedAt = now
	} else {
		existing, ok := m.byID[saved.ID]
		if !ok {
			return nil, ErrNotFound
		}
		if ownerID, taken := m.byUsername[saved.Username]; taken && ownerID != saved.ID {
			return nil, ErrDuplicate
		}
		delete(m.byUsername, existing.Username)
		saved.CreatedAt = existing.CreatedAt
		saved.UpdatedAt = now
	}

	stored := saved
	m.byID[saved.ID] = &stored
	m.byUsername[saved.Username] = saved.ID
	return &saved, nil
}
