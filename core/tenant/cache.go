package tenant

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/pkg/errors"

	"github.com/skillforge/gateway/storage/state"
)

// Cache is the time-boxed tenant-list cache plus the selected-tenant pointer,
// both kept in the shared state store. The whole list is replaced atomically
// on refresh; there is no partial invalidation. Any corrupt stored value is
// treated as a cache miss, never surfaced to the caller.
type Cache struct {
	store state.Store
	ttl   time.Duration

	NowFunc func() time.Time // mockable
}

func NewCache(store state.Store, ttl time.Duration) *Cache {
	return &Cache{store: store, ttl: ttl, NowFunc: time.Now}
}

// Get returns the cached tenant list for the user, or ok=false when the cache
// is absent, expired or unreadable (forcing the caller to refetch).
func (c *Cache) Get(ctx context.Context, userID string) ([]Tenant, bool) {
	raw, err := c.store.Get(ctx, state.TenantFetchedAtKey(userID))
	if err != nil {
		return nil, false
	}
	fetchedAt, err := strconv.ParseInt(string(raw), 10, 64)
	if err != nil {
		return nil, false
	}
	if c.NowFunc().UnixMilli()-fetchedAt >= c.ttl.Milliseconds() {
		return nil, false
	}

	raw, err = c.store.Get(ctx, state.TenantListKey(userID))
	if err != nil {
		return nil, false
	}
	var tenants []Tenant
	if err = json.Unmarshal(raw, &tenants); err != nil {
		return nil, false
	}
	return tenants, true
}

// Put replaces the cached tenant list and stamps the fetch time.
func (c *Cache) Put(ctx context.Context, userID string, tenants []Tenant) error {
	raw, err := json.Marshal(tenants)
	if err != nil {
		return errors.Wrap(err, "marshalling tenant list")
	}
	if err = c.store.Set(ctx, state.TenantListKey(userID), raw, 0); err != nil {
		return errors.Wrap(err, "caching tenant list")
	}
	stamp := strconv.FormatInt(c.NowFunc().UnixMilli(), 10)
	return errors.Wrap(
		c.store.Set(ctx, state.TenantFetchedAtKey(userID), []byte(stamp), 0),
		"stamping tenant list fetch time",
	)
}

// SelectedID returns the persisted selected-tenant pointer, or "".
func (c *Cache) SelectedID(ctx context.Context, userID string) string {
	raw, err := c.store.Get(ctx, state.SelectedTenantKey(userID))
	if err != nil {
		return ""
	}
	return string(raw)
}

func (c *Cache) SetSelectedID(ctx context.Context, userID, id string) error {
	return errors.Wrap(
		c.store.Set(ctx, state.SelectedTenantKey(userID), []byte(id), 0),
		"persisting selected tenant",
	)
}
