package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) (*memoryStore, *time.Time) {
	t.Helper()
	now := time.Now()
	store := NewMemoryStore(DefaultIdleTTL).(*memoryStore)
	store.now = func() time.Time { return now }
	return store, &now
}

func TestCreateAndGet(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)

	s, err := store.Create(ctx, "jean.dupont@startup.io", "cli_1")
	require.NoError(t, err)
	require.NotEmpty(t, s.Token)

	got, err := store.Get(ctx, s.Token)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "jean.dupont@startup.io", got.Email)
	assert.Equal(t, "cli_1", got.ClientID)

	got, err = store.Get(ctx, "unknown-token")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestExpiryWindow(t *testing.T) {
	ctx := context.Background()
	store, now := newTestStore(t)

	s, err := store.Create(ctx, "jean.dupont@startup.io", "cli_1")
	require.NoError(t, err)

	// 29 minutes idle: still valid.
	*now = now.Add(29 * time.Minute)
	got, err := store.Get(ctx, s.Token)
	require.NoError(t, err)
	assert.NotNil(t, got)

	// 31 minutes idle: expired, and removed on read.
	*now = now.Add(2 * time.Minute)
	got, err = store.Get(ctx, s.Token)
	require.NoError(t, err)
	assert.Nil(t, got)

	store.mu.Lock()
	_, stillThere := store.sessions[s.Token]
	store.mu.Unlock()
	assert.False(t, stillThere, "expired session must be deleted")
}

func TestTouchExtendsSession(t *testing.T) {
	ctx := context.Background()
	store, now := newTestStore(t)

	s, err := store.Create(ctx, "jean.dupont@startup.io", "cli_1")
	require.NoError(t, err)

	*now = now.Add(29 * time.Minute)
	require.NoError(t, store.Touch(ctx, s.Token))

	// 29 + 29 minutes from creation, but only 29 since the touch.
	*now = now.Add(29 * time.Minute)
	got, err := store.Get(ctx, s.Token)
	require.NoError(t, err)
	assert.NotNil(t, got)

	// Touching an unknown token is a no-op, not an error.
	require.NoError(t, store.Touch(ctx, "unknown-token"))
	got, err = store.Get(ctx, "unknown-token")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)

	s, err := store.Create(ctx, "jean.dupont@startup.io", "cli_1")
	require.NoError(t, err)
	require.NoError(t, store.Delete(ctx, s.Token))

	got, err := store.Get(ctx, s.Token)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestSweepExpired(t *testing.T) {
	ctx := context.Background()
	store, now := newTestStore(t)

	stale, err := store.Create(ctx, "stale@startup.io", "cli_1")
	require.NoError(t, err)

	*now = now.Add(31 * time.Minute)
	fresh, err := store.Create(ctx, "fresh@startup.io", "cli_2")
	require.NoError(t, err)

	expired, err := store.SweepExpired(ctx)
	require.NoError(t, err)
	require.Len(t, expired, 1)
	assert.Equal(t, "stale@startup.io", expired[0].Email)

	got, err := store.Get(ctx, stale.Token)
	require.NoError(t, err)
	assert.Nil(t, got)

	got, err = store.Get(ctx, fresh.Token)
	require.NoError(t, err)
	assert.NotNil(t, got)
}
