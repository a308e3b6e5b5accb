package db

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/webpro/backend/internal/model"
)

func TestMemoryStore_SaveAssignsIDAndFinds(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	saved, err := store.Save(ctx, &model.Identity{Username: "alice", PasswordHash: "hash", Enabled: true})
	require.NoError(t, err)
	assert.NotEmpty(t, saved.ID)
	assert.False(t, saved.CreatedAt.IsZero())

	found, err := store.FindByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, saved.ID, found.ID)
	assert.Equal(t, "hash", found.PasswordHash)
	assert.True(t, found.Enabled)
}

func TestMemoryStore_NotFound(t *testing.T) {
	_, err := NewMemoryStore().FindByUsername(context.Background(), "ghost")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStore_DuplicateUsername(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	_, err := store.Save(ctx, &model.Identity{Username: "alice"})
	require.NoError(t, err)

	_, err = store.Save(ctx, &model.Identity{Username: "alice"})
	assert.ErrorIs(t, err, ErrDuplicate)
}

func TestMemoryStore_UpdateByID(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	saved, err := store.Save(ctx, &model.Identity{Username: "alice", Enabled: true})
	require.NoError(t, err)

	saved.Locked = true
	updated, err := store.Save(ctx, saved)
	require.NoError(t, err)
	assert.Equal(t, saved.ID, updated.ID)

	found, err := store.FindByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.True(t, found.Locked)

	_, err = store.Save(ctx, &model.Identity{ID: "missing", Username: "bob"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStore_ReturnsCopies(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	_, err := store.Save(ctx, &model.Identity{Username: "alice", Enabled: true})
	require.NoError(t, err)

	found, err := store.FindByUsername(ctx, "alice")
	require.NoError(t, err)
	found.Enabled = false

	again, err := store.FindByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.True(t, again.Enabled)
}

func TestMemoryStore_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewMemoryStore().FindByUsername(ctx, "alice")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestMemoryStore_ConcurrentSaves(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		success int
	)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := store.Save(ctx, &model.Identity{Username: "race"}); err == nil {
				mu.Lock()
				success++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, success)
}
