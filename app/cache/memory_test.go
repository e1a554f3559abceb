package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(10 * time.Millisecond)
	key := NewKeyBuilder("test").Categories()

	_, err := store.GetIDs(ctx, key)
	assert.ErrorIs(t, err, ErrMiss)

	ids := []uint{1, 2}
	require.NoError(t, store.SetIDs(ctx, key, ids, time.Minute))
	ids[0] = 99

	got, err := store.GetIDs(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, []uint{1, 2}, got, "stored slice is a copy")
	got[1] = 42

	again, err := store.GetIDs(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, []uint{1, 2}, again, "returned slice is a copy")

	require.NoError(t, store.Delete(ctx, key))
	_, err = store.GetIDs(ctx, key)
	assert.ErrorIs(t, err, ErrMiss)
}

func TestMemoryStoreExpires(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(time.Minute)
	key := NewKeyBuilder("test").Products()

	require.NoError(t, store.SetIDs(ctx, key, []uint{1}, 20*time.Millisecond))
	_, err := store.GetIDs(ctx, key)
	require.NoError(t, err)

	assert.Eventually(t, func() bool {
		_, err := store.GetIDs(ctx, key)
		return err == ErrMiss
	}, time.Second, 5*time.Millisecond)
}
