package redis

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainauth "github.com/Hissaria17/alcrm-sub001/internal/domain/auth"
	"github.com/Hissaria17/alcrm-sub001/internal/testutil"
)

func setupTestRedis(t *testing.T) *redis.Client {
	t.Helper()
	return testutil.SetupTestRedis(t)
}

func TestSessionStoreSaveAndGet(t *testing.T) {
	client := setupTestRedis(t)
	defer client.Close()

	store := NewSessionStore(client)
	ctx := context.Background()

	sess := domainauth.Session{
		ID:        "sess-1",
		UserID:    "user-123",
		Email:     "user@example.com",
		Role:      domainauth.RoleUser,
		ExpiresAt: time.Now().Add(30 * time.Minute),
	}

	require.NoError(t, store.Save(ctx, sess))

	got, err := store.Get(ctx, "sess-1")
	require.NoError(t, err)
	assert.Equal(t, sess.ID, got.ID)
	assert.Equal(t, sess.UserID, got.UserID)
	assert.Equal(t, sess.Email, got.Email)
	assert.Equal(t, sess.Role, got.Role)
	assert.WithinDuration(t, sess.ExpiresAt, got.ExpiresAt, time.Second)
}

func TestSessionStoreGetMissing(t *testing.T) {
	client := setupTestRedis(t)
	defer client.Close()

	store := NewSessionStore(client)

	_, err := store.Get(context.Background(), "missing")
	assert.Equal(t, ErrNotFound, err)
}

func TestSessionStoreRejectsExpired(t *testing.T) {
	client := setupTestRedis(t)
	defer client.Close()

	store := NewSessionStore(client)
	ctx := context.Background()

	err := store.Save(ctx, domainauth.Session{
		ID:        "sess-expired",
		UserID:    "user-123",
		ExpiresAt: time.Now().Add(-time.Minute),
	})
	assert.Error(t, err)
}

func TestSessionStoreDelete(t *testing.T) {
	client := setupTestRedis(t)
	defer client.Close()

	store := NewSessionStore(client)
	ctx := context.Background()

	sess := domainauth.Session{
		ID:        "sess-del",
		UserID:    "user-9",
		Role:      domainauth.RoleAdmin,
		ExpiresAt: time.Now().Add(time.Hour),
	}
	require.NoError(t, store.Save(ctx, sess))
	require.NoError(t, store.Delete(ctx, sess.ID))

	_, err := store.Get(ctx, sess.ID)
	assert.Equal(t, ErrNotFound, err)

	// Deleting an absent session is a no-op.
	assert.NoError(t, store.Delete(ctx, "missing"))
	assert.NoError(t, store.Delete(ctx, ""))
}

func TestSessionStoreCustomPrefix(t *testing.T) {
	client := setupTestRedis(t)
	defer client.Close()

	ctx := context.Background()
	a := NewSessionStoreWithPrefix(client, "tenant-a:")
	b := NewSessionStoreWithPrefix(client, "tenant-b:")

	sess := domainauth.Session{
		ID:        "shared-id",
		UserID:    "user-1",
		Role:      domainauth.RoleUser,
		ExpiresAt: time.Now().Add(time.Hour),
	}
	require.NoError(t, a.Save(ctx, sess))

	_, err := b.Get(ctx, "shared-id")
	assert.Equal(t, ErrNotFound, err)
}
