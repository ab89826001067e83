package tenant

import (
	"time"

	lru "github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/skillforge/gateway/core"
)

// Registry hands out one Provider per user, evicting idle ones. Eviction only
// drops in-memory state; the cache and selection pointer live in the state
// store and survive.
type Registry struct {
	cache     *Cache
	logger    core.Logger
	providers *lru.LRU[string, *Provider]
}

func NewRegistry(cache *Cache, logger core.Logger, size int, idleTTL time.Duration) *Registry {
	if size <= 0 {
		size = 1024
	}
	return &Registry{
		cache:     cache,
		logger:    logger,
		providers: lru.NewLRU[string, *Provider](size, nil, idleTTL),
	}
}

func (r *Registry) For(userID string) *Provider {
	if p, ok := r.providers.Get(userID); ok {
		return p
	}
	p := NewProvider(userID, r.cache, r.logger)
	r.providers.Add(userID, p)
	return p
}
