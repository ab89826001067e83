package tenant

import (
	"context"
	"sync"

	"github.com/pkg/errors"

	"github.com/skillforge/gateway/core"
)

// State of a Provider. INIT → LOADING → READY on success, LOADING → ERROR on
// fetch failure, READY → READY on selection changes.
type State int

const (
	StateInit State = iota
	StateLoading
	StateReady
	StateError
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	case StateError:
		return "error"
	}
	return "init"
}

// Source fetches the tenant list a user may access from the upstream backend.
type Source interface {
	Tenants(ctx context.Context) ([]Tenant, error)
}

// SourceFunc adapts a function to the Source interface.
type SourceFunc func(ctx context.Context) ([]Tenant, error)

func (f SourceFunc) Tenants(ctx context.Context) ([]Tenant, error) { return f(ctx) }

// Snapshot is a point-in-time copy of a Provider's state. When Tenants is
// empty, Selected is nil and dependent UI must render an empty state rather
// than guessing.
type Snapshot struct {
	State    State
	Tenants  []Tenant
	Selected *Tenant
	Err      error
}

// Provider holds one user's tenant list and selected-tenant pointer.
// Selection calls apply in the order invoked, last write wins; concurrent
// clients of the same user may diverge until either refetches.
type Provider struct {
	mu     sync.Mutex
	userID string
	cache  *Cache
	logger core.Logger

	state    State
	tenants  []Tenant
	selected *Tenant
	err      error
}

func NewProvider(userID string, cache *Cache, logger core.Logger) *Provider {
	return &Provider{
		userID: userID,
		cache:  cache,
		logger: logger,
		state:  StateInit,
	}
}

// Load brings the provider to READY from cache or via src, then resolves the
// selection. preferredID is the backend-preferred tenant id from the session
// payload, if any; when present and valid it overwrites any cached selection.
func (p *Provider) Load(ctx context.Context, src Source, preferredID string) Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.state = StateLoading
	tenants, ok := p.cache.Get(ctx, p.userID)
	if !ok {
		var err error
		tenants, err = src.Tenants(ctx)
		if err != nil {
			p.state = StateError
			p.err = errors.Wrap(err, "fetching tenant list")
			return p.snapshot()
		}
		if err = p.cache.Put(ctx, p.userID, tenants); err != nil {
			p.logger.Warn("caching tenant list", err)
		}
	}
	p.tenants = tenants
	p.resolveSelection(ctx, preferredID)
	p.state = StateReady
	p.err = nil
	return p.snapshot()
}

// Refresh forces a refetch and re-runs selection resolution.
func (p *Provider) Refresh(ctx context.Context, src Source) Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.state = StateLoading
	tenants, err := src.Tenants(ctx)
	if err != nil {
		p.state = StateError
		p.err = errors.Wrap(err, "refreshing tenant list")
		return p.snapshot()
	}
	if err = p.cache.Put(ctx, p.userID, tenants); err != nil {
		p.logger.Warn("caching tenant list", err)
	}
	p.tenants = tenants
	p.resolveSelection(ctx, "")
	p.state = StateReady
	p.err = nil
	return p.snapshot()
}

// Select commits the given tenant id. Ids not present in the current list are
// ignored; valid selections are persisted.
func (p *Provider) Select(ctx context.Context, id string) Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()

	if t := findByID(p.tenants, id); t != nil {
		p.setSelected(ctx, t, true)
	}
	return p.snapshot()
}

func (p *Provider) Snapshot() Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.snapshot()
}

// resolveSelection applies the deterministic auto-selection policy:
//  1. a valid backend-preferred id wins and overwrites any cached selection;
//  2. else a still-valid cached selection is kept;
//  3. else the first tenant in list order is selected and persisted.
//
// An empty tenant list resolves to no selection.
func (p *Provider) resolveSelection(ctx context.Context, preferredID string) {
	if t := findByID(p.tenants, preferredID); t != nil {
		p.setSelected(ctx, t, true)
		return
	}
	if t := findByID(p.tenants, p.cache.SelectedID(ctx, p.userID)); t != nil {
		p.setSelected(ctx, t, false)
		return
	}
	if len(p.tenants) > 0 {
		p.setSelected(ctx, &p.tenants[0], true)
		return
	}
	p.selected = nil
}

func (p *Provider) setSelected(ctx context.Context, t *Tenant, persist bool) {
	p.selected = t
	if persist {
		if err := p.cache.SetSelectedID(ctx, p.userID, t.ID); err != nil {
			p.logger.Warn("persisting selected tenant", err)
		}
	}
	if _, ok := t.CurrencyOrDefault(); !ok {
		p.logger.Warn("tenant has no currency configuration; falling back to USD; tenant=" + t.ID)
	}
}

func (p *Provider) snapshot() Snapshot {
	snap := Snapshot{State: p.state, Err: p.err}
	snap.Tenants = make([]Tenant, len(p.tenants))
	copy(snap.Tenants, p.tenants)
	if p.selected != nil {
		sel := *p.selected
		snap.Selected = &sel
	}
	return snap
}
