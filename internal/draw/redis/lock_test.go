package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRedis(t *testing.T) (*Redis, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	return NewRedis(client), mr
}

func TestLockRaffle(t *testing.T) {
	r, _ := setupTestRedis(t)

	ok, err := r.LockRaffle("raffle-1", "token-a")
	require.NoError(t, err)
	assert.True(t, ok)

	// Second acquisition fails while the lock is held, even with another token.
	ok, err = r.LockRaffle("raffle-1", "token-b")
	require.NoError(t, err)
	assert.False(t, ok)

	// A different raffle is independent.
	ok, err = r.LockRaffle("raffle-2", "token-c")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestUnlockRaffle_TokenOwnership(t *testing.T) {
	r, _ := setupTestRedis(t)

	ok, err := r.LockRaffle("raffle-1", "token-a")
	require.NoError(t, err)
	require.True(t, ok)

	// A stranger's token must not release the lock.
	require.NoError(t, r.UnlockRaffle("raffle-1", "token-b"))
	ok, err = r.LockRaffle("raffle-1", "token-c")
	require.NoError(t, err)
	assert.False(t, ok)

	// The holder's token releases it.
	require.NoError(t, r.UnlockRaffle("raffle-1", "token-a"))
	ok, err = r.LockRaffle("raffle-1", "token-c")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestUnlockRaffle_AlreadyReleased(t *testing.T) {
	r, _ := setupTestRedis(t)

	// Unlocking a lock that never existed is not an error.
	assert.NoError(t, r.UnlockRaffle("raffle-1", "token-a"))
}

func TestLockRaffle_Expiry(t *testing.T) {
	r, mr := setupTestRedis(t)

	ok, err := r.LockRaffle("raffle-1", "token-a")
	require.NoError(t, err)
	require.True(t, ok)

	// After the TTL elapses the raffle can be locked again.
	mr.FastForward(3 * time.Minute)

	ok, err = r.LockRaffle("raffle-1", "token-b")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestLockRaffle_StoresHolderToken(t *testing.T) {
	r, mr := setupTestRedis(t)

	ok, err := r.LockRaffle("raffle-1", "token-a")
	require.NoError(t, err)
	require.True(t, ok)

	val, err := r.Client.Get(context.Background(), "draw_lock:raffle-1").Result()
	require.NoError(t, err)
	assert.Equal(t, "token-a", val)
	assert.True(t, mr.Exists("draw_lock:raffle-1"))
}
