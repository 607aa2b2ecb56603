package layout

import (
	"context"
	"encoding/json"
	"time"

	"github.com/matzehuels/soundchunk/pkg/cache"
	"github.com/matzehuels/soundchunk/pkg/observability"
)

// keyOptioner is implemented by solvers whose settings affect their output.
type keyOptioner interface {
	CacheKeyOpts() cache.LayoutKeyOpts
}

// Cached is a [Solver] that memoizes another solver's centers by graph
// content. Cache failures fall through to the inner solver.
type Cached struct {
	inner Solver
	store cache.Cache
	keyer cache.Keyer
	ttl   time.Duration
}

// CachedOption configures a [Cached] solver.
type CachedOption func(*Cached)

// WithKeyer overrides the default cache keyer.
func WithKeyer(k cache.Keyer) CachedOption {
	return func(c *Cached) {
		if k != nil {
			c.keyer = k
		}
	}
}

// WithTTL sets the entry lifetime. Zero keeps entries forever.
func WithTTL(ttl time.Duration) CachedOption {
	return func(c *Cached) { c.ttl = ttl }
}

// NewCached wraps inner with store.
func NewCached(inner Solver, store cache.Cache, opts ...CachedOption) *Cached {
	c := &Cached{
		inner: inner,
		store: store,
		keyer: cache.NewDefaultKeyer(),
		ttl:   24 * time.Hour,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Layout serves centers from the cache when the graph has been solved
// before, and otherwise runs the inner solver and stores its result.
func (c *Cached) Layout(ctx context.Context, g *Graph) error {
	var opts cache.LayoutKeyOpts
	if ko, ok := c.inner.(keyOptioner); ok {
		opts = ko.CacheKeyOpts()
	}
	key := c.keyer.LayoutKey(g.Key(), opts)

	if data, hit, err := c.store.Get(ctx, key); err == nil && hit {
		var centers map[string]Point
		if json.Unmarshal(data, &centers) == nil {
			observability.Cache().OnCacheHit(ctx, "layout")
			for id, p := range centers {
				if g.HasNode(id) {
					g.SetCenter(id, p)
				}
			}
			return nil
		}
	}
	observability.Cache().OnCacheMiss(ctx, "layout")

	if err := c.inner.Layout(ctx, g); err != nil {
		return err
	}

	data, err := json.Marshal(g.Centers())
	if err != nil {
		return nil
	}
	if err := c.store.Set(ctx, key, data, c.ttl); err == nil {
		observability.Cache().OnCacheSet(ctx, "layout", len(data))
	}
	return nil
}

var _ Solver = (*Cached)(nil)
