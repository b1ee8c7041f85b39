package aiquiz

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func poolAt(keys []string, now *time.Time) *KeyPool {
	p := NewKeyPool(keys)
	p.now = func() time.Time { return *now }
	return p
}

func TestKeyPool_RotationFairness(t *testing.T) {
	now := time.Now()
	p := poolAt([]string{"key1", "key2", "key3"}, &now)

	var got []string
	for i := 0; i < 6; i++ {
		key, ok := p.NextAvailable("")
		require.True(t, ok)
		got = append(got, key)
	}
	assert.Equal(t, []string{"key1", "key2", "key3", "key1", "key2", "key3"}, got)
}

func TestKeyPool_OverrideBypassesPool(t *testing.T) {
	now := time.Now()
	p := poolAt(nil, &now)

	key, ok := p.NextAvailable("custom-key")
	require.True(t, ok)
	assert.Equal(t, "custom-key", key)
}

func TestKeyPool_EmptyPool(t *testing.T) {
	now := time.Now()
	p := poolAt(nil, &now)

	_, ok := p.NextAvailable("")
	assert.False(t, ok)
}

func TestKeyPool_FailedKeySkipped(t *testing.T) {
	now := time.Now()
	p := poolAt([]string{"key1", "key2", "key3"}, &now)
	p.MarkFailed("key2")

	for i := 0; i < 10; i++ {
		key, ok := p.NextAvailable("")
		require.True(t, ok)
		assert.NotEqual(t, "key2", key, "unexpired failed key must never be returned while fresh keys exist")
	}
}

func TestKeyPool_CooldownExpiryEvicts(t *testing.T) {
	now := time.Now()
	p := poolAt([]string{"key1", "key2"}, &now)
	p.MarkFailed("key1")

	st := p.Status()
	assert.Equal(t, 1, st.Available)
	require.Len(t, st.Cooling, 1)
	assert.Equal(t, "key1", st.Cooling[0].Suffix)

	now = now.Add(DefaultKeyCooldown + time.Minute)

	st = p.Status()
	assert.Equal(t, 2, st.Available)
	assert.Empty(t, st.Cooling)
}

func TestKeyPool_ForcedRetryOldestWins(t *testing.T) {
	now := time.Now()
	p := poolAt([]string{"key1", "key2", "key3"}, &now)

	p.MarkFailed("key2")
	now = now.Add(time.Minute)
	p.MarkFailed("key1")
	now = now.Add(time.Minute)
	p.MarkFailed("key3")

	// All keys cooling: the least-recently-failed one is evicted and reused.
	key, ok := p.NextAvailable("")
	require.True(t, ok)
	assert.Equal(t, "key2", key)

	// key2 is fresh again after the forced eviction.
	key, ok = p.NextAvailable("")
	require.True(t, ok)
	assert.Equal(t, "key2", key)
}

func TestKeyPool_MarkFailedIdempotent(t *testing.T) {
	now := time.Now()
	p := poolAt([]string{"key1"}, &now)

	p.MarkFailed("key1")
	now = now.Add(30 * time.Minute)
	p.MarkFailed("key1")

	// The second failure restarted the cooldown.
	now = now.Add(45 * time.Minute)
	st := p.Status()
	assert.Equal(t, 0, st.Available)
}

func TestKeyPool_MarkFailedIgnoresUnknownKey(t *testing.T) {
	now := time.Now()
	p := poolAt([]string{"key1"}, &now)

	p.MarkFailed("not-in-pool")
	assert.Equal(t, 1, p.Status().Available)
}

func TestKeyPool_ResetAll(t *testing.T) {
	now := time.Now()
	p := poolAt([]string{"key1", "key2"}, &now)

	p.MarkFailed("key1")
	p.MarkFailed("key2")
	p.ResetAll()

	st := p.Status()
	assert.Equal(t, 2, st.Available)

	key, ok := p.NextAvailable("")
	require.True(t, ok)
	assert.Equal(t, "key1", key, "rotation restarts from the first key after reset")
}
