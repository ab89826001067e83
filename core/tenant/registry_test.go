package tenant

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/skillforge/gateway/storage/state/inmem"
	testutil "github.com/skillforge/gateway/tests"
)

func TestRegistryFor(t *testing.T) {
	cache := NewCache(inmem.NewStore(), time.Hour)
	reg := NewRegistry(cache, testutil.NewLogger(), 8, time.Minute)

	p1 := reg.For("user-1")
	assert.Same(t, p1, reg.For("user-1"))
	assert.NotSame(t, p1, reg.For("user-2"))
}

func TestRegistrySelectionSurvivesEviction(t *testing.T) {
	ctx := context.Background()
	cache := NewCache(inmem.NewStore(), time.Hour)
	reg := NewRegistry(cache, testutil.NewLogger(), 1, time.Minute)

	p1 := reg.For("user-1")
	p1.Load(ctx, staticSource(sampleTenants...), "")
	p1.Select(ctx, "t2")

	// user-2 evicts user-1 from the single-slot registry
	reg.For("user-2")

	fresh := reg.For("user-1")
	assert.NotSame(t, p1, fresh)
	snap := fresh.Load(ctx, staticSource(sampleTenants...), "")
	if assert.NotNil(t, snap.Selected) {
		assert.Equal(t, "t2", snap.Selected.ID)
	}
}
