package mapping

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"

	"github.com/pulseboard/pulseboard/internal/model"
)

// Lister is the slice of the identifier store the cache depends on.
type Lister interface {
	List(ctx context.Context) ([]*model.Identifier, error)
}

// Cache memoizes the mapping index for the process. It builds lazily on
// first snapshot and rebuilds after Invalidate; readers always see either
// the previous fully-built index or the new one, via atomic pointer swap.
//
// Member mutations must invalidate through a single owner (the member
// service); handlers never call Invalidate directly.
type Cache struct {
	lister Lister
	log    zerolog.Logger

	cur atomic.Pointer[Index]
	gen atomic.Uint64 // bumped by Invalidate; guards against memoizing a stale build
	mu  sync.Mutex    // serializes builds, not reads
}

func NewCache(lister Lister, log zerolog.Logger) *Cache {
	return &Cache{lister: lister, log: log}
}

// Snapshot returns the current index, building it if needed. A failed store
// scan degrades to an empty index and is logged; the failure is not memoized,
// so the next snapshot retries the build.
func (c *Cache) Snapshot(ctx context.Context) *Index {
	if ix := c.cur.Load(); ix != nil {
		return ix
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	// Another request may have finished the build while we waited.
	if ix := c.cur.Load(); ix != nil {
		return ix
	}

	gen := c.gen.Load()
	ids, err := c.lister.List(ctx)
	if err != nil {
		c.log.Error().Stack().Err(err).Msg("identifier scan failed; serving empty mapping index")
		return NewIndex()
	}
	ix := BuildIndex(ids)
	// An Invalidate that landed after the scan started makes this build
	// stale: serve it to the current caller but do not memoize, so the next
	// snapshot rebuilds from the post-mutation rows.
	if c.gen.Load() == gen {
		c.cur.Store(ix)
		c.log.Debug().Int("entries", ix.Len()).Msg("mapping index built")
	}
	return ix
}

// Invalidate drops the memoized index. The next snapshot rebuilds from the
// store. Safe to call concurrently with in-flight reads and builds.
func (c *Cache) Invalidate() {
	c.gen.Add(1)
	c.cur.Store(nil)
}
