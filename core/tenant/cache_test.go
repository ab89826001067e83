package tenant

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/skillforge/gateway/storage/state"
	"github.com/skillforge/gateway/storage/state/inmem"
)

var sampleTenants = []Tenant{
	{ID: "t1", Name: "Acme School", Slug: "acme", Currency: Currency{Code: "EUR", Symbol: "€"}, IsActive: true},
	{ID: "t2", Name: "Beta School", Slug: "beta", IsActive: true},
}

func TestCacheRoundTrip(t *testing.T) {
	ctx := context.Background()
	cache := NewCache(inmem.NewStore(), time.Hour)

	_, ok := cache.Get(ctx, "user-1")
	assert.False(t, ok)

	if err := cache.Put(ctx, "user-1", sampleTenants); err != nil {
		t.Fatalf("Put: %v", err)
	}
	got, ok := cache.Get(ctx, "user-1")
	assert.True(t, ok)
	assert.Equal(t, sampleTenants, got)

	// user isolation
	_, ok = cache.Get(ctx, "user-2")
	assert.False(t, ok)
}

func TestCacheExpiry(t *testing.T) {
	ctx := context.Background()
	fetchedAt := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		elapsed time.Duration
		wantOK  bool
	}{
		{"fresh", time.Minute, true},
		{"just under the ttl", time.Hour - time.Millisecond, true},
		{"exactly the ttl", time.Hour, false},
		{"just past the ttl", time.Hour + time.Millisecond, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cache := NewCache(inmem.NewStore(), time.Hour)
			cache.NowFunc = func() time.Time { return fetchedAt }
			if err := cache.Put(ctx, "user-1", sampleTenants); err != nil {
				t.Fatalf("Put: %v", err)
			}

			cache.NowFunc = func() time.Time { return fetchedAt.Add(tt.elapsed) }
			_, ok := cache.Get(ctx, "user-1")
			assert.Equal(t, tt.wantOK, ok)
		})
	}
}

func TestCacheCorruptEntriesMiss(t *testing.T) {
	ctx := context.Background()
	store := inmem.NewStore()
	cache := NewCache(store, time.Hour)

	stamp := strconv.FormatInt(time.Now().UnixMilli(), 10)

	// corrupt list payload
	_ = store.Set(ctx, state.TenantFetchedAtKey("user-1"), []byte(stamp), 0)
	_ = store.Set(ctx, state.TenantListKey("user-1"), []byte("{not json"), 0)
	_, ok := cache.Get(ctx, "user-1")
	assert.False(t, ok)

	// corrupt fetch stamp
	_ = store.Set(ctx, state.TenantFetchedAtKey("user-2"), []byte("yesterday"), 0)
	_, ok = cache.Get(ctx, "user-2")
	assert.False(t, ok)
}

func TestCacheSelectedID(t *testing.T) {
	ctx := context.Background()
	cache := NewCache(inmem.NewStore(), time.Hour)

	assert.Empty(t, cache.SelectedID(ctx, "user-1"))

	if err := cache.SetSelectedID(ctx, "user-1", "t2"); err != nil {
		t.Fatalf("SetSelectedID: %v", err)
	}
	assert.Equal(t, "t2", cache.SelectedID(ctx, "user-1"))
	assert.Empty(t, cache.SelectedID(ctx, "user-2"))
}
