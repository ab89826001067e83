package inmem

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/skillforge/gateway/storage/state"
)

func TestStore(t *testing.T) {
	ctx := context.Background()
	store := NewStore()

	_, err := store.Get(ctx, "missing")
	assert.Equal(t, state.ErrNotFound, err)

	assert.NoError(t, store.Set(ctx, "k", []byte("v"), 0))
	val, err := store.Get(ctx, "k")
	assert.NoError(t, err)
	assert.Equal(t, []byte("v"), val)

	// overwrite
	assert.NoError(t, store.Set(ctx, "k", []byte("v2"), 0))
	val, _ = store.Get(ctx, "k")
	assert.Equal(t, []byte("v2"), val)

	assert.NoError(t, store.Delete(ctx, "k"))
	_, err = store.Get(ctx, "k")
	assert.Equal(t, state.ErrNotFound, err)

	// deleting a missing key is not an error
	assert.NoError(t, store.Delete(ctx, "k"))
}

func TestStoreTTL(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	store := NewStore()
	store.NowFunc = func() time.Time { return now }
	assert.NoError(t, store.Set(ctx, "k", []byte("v"), time.Minute))

	now = now.Add(59 * time.Second)
	_, err := store.Get(ctx, "k")
	assert.NoError(t, err)

	now = now.Add(time.Second)
	_, err = store.Get(ctx, "k")
	assert.Equal(t, state.ErrNotFound, err)
}

func TestStoreCopiesValues(t *testing.T) {
	ctx := context.Background()
	store := NewStore()

	in := []byte("original")
	_ = store.Set(ctx, "k", in, 0)
	in[0] = 'X'

	out, err := store.Get(ctx, "k")
	assert.NoError(t, err)
	assert.Equal(t, []byte("original"), out)

	out[0] = 'Y'
	again, _ := store.Get(ctx, "k")
	assert.Equal(t, []byte("original"), again)
}

func TestKeyBuilders(t *testing.T) {
	assert.Equal(t, "tenants:u1", state.TenantListKey("u1"))
	assert.Equal(t, "tenants:u1:fetched_at", state.TenantFetchedAtKey("u1"))
	assert.Equal(t, "tenant:selected:u1", state.SelectedTenantKey("u1"))
	assert.Equal(t, "pref:language:u1", state.PrefKey("u1", "language"))
}
