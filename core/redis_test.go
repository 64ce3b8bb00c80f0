package core

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestStore starts an in-memory Redis and returns a store backed by it.
func setupTestStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return NewRedisStore(client), mr
}

func TestRedisStore_PutGetWithTTL(t *testing.T) {
	store, mr := setupTestStore(t)
	ctx := context.Background()

	created := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	sess := Session{UserID: "admin", Username: "admin", IPAddress: "203.0.113.7",
		CreatedAt: created, ExpiresAt: created.Add(SessionTTL)}
	require.NoError(t, store.Put(ctx, "session:abc", sess, time.Hour))

	assert.Equal(t, time.Hour, mr.TTL("session:abc"))

	var got Session
	found, err := store.Get(ctx, "session:abc", &got)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, sess.Username, got.Username)
	assert.Equal(t, sess.IPAddress, got.IPAddress)
	assert.True(t, sess.CreatedAt.Equal(got.CreatedAt))
	assert.True(t, sess.ExpiresAt.Equal(got.ExpiresAt))

	mr.FastForward(time.Hour)
	found, err = store.Get(ctx, "session:abc", &got)
	require.NoError(t, err)
	assert.False(t, found, "expired keys read as absent")
}

func TestRedisStore_GetMissing(t *testing.T) {
	store, _ := setupTestStore(t)

	var marker bool
	found, err := store.Get(context.Background(), "totp_pending:nope", &marker)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestRedisStore_GetUndecodableIsAbsent(t *testing.T) {
	store, mr := setupTestStore(t)
	require.NoError(t, mr.Set("session:garbled", "{not json"))

	var sess Session
	found, err := store.Get(context.Background(), "session:garbled", &sess)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestRedisStore_PutWithoutExpiry(t *testing.T) {
	store, mr := setupTestStore(t)
	require.NoError(t, store.Put(context.Background(), "k", true, 0))
	assert.Equal(t, time.Duration(0), mr.TTL("k"))
	assert.True(t, mr.Exists("k"))
}

func TestRedisStore_Delete(t *testing.T) {
	store, mr := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "totp_pending:t", true, PendingTokenTTL))
	require.NoError(t, store.Delete(ctx, "totp_pending:t"))
	assert.False(t, mr.Exists("totp_pending:t"))

	assert.NoError(t, store.Delete(ctx, "totp_pending:never-set"))
}

func TestRedisStore_ServerErrorsWrapUnavailable(t *testing.T) {
	store, mr := setupTestStore(t)
	ctx := context.Background()
	mr.SetError("ERR server down")

	err := store.Put(ctx, "k", true, time.Minute)
	assert.True(t, errors.Is(err, ErrStoreUnavailable), "put: %v", err)

	var v bool
	found, err := store.Get(ctx, "k", &v)
	assert.False(t, found)
	assert.True(t, errors.Is(err, ErrStoreUnavailable), "get: %v", err)

	err = store.Delete(ctx, "k")
	assert.True(t, errors.Is(err, ErrStoreUnavailable), "del: %v", err)
}

func TestKeyNamespaceHidesToken(t *testing.T) {
	assert.Equal(t, "session:…", keyNamespace("session:deadbeef"))
	assert.Equal(t, "plain", keyNamespace("plain"))
}
