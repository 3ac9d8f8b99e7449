// Package cache implements the per-mount metadata cache.
//
// Each mount owns one Cache with two independent sub-caches keyed by
// absolute remote path: a listing cache (directory path → ordered child
// metadata, filled by directory reads) and an entry cache (path → metadata
// from a direct stat). Presence in a sub-cache is map membership; there is
// no TTL and no I/O — mutations evict, nothing refreshes in the background.
//
// Thread Safety:
// Safe for concurrent use. A single RWMutex guards both sub-caches; all
// operations are synchronous and lock-scoped, so no operation ever blocks
// on the network.
package cache

import (
	"path"
	"sync"

	"github.com/marmos91/davmount/pkg/remote"
)

// Result is the outcome of a cache lookup.
//
// ListingPresent is true when the parent directory's listing is cached and
// contains the path's base name. EntryPresent is true when a direct stat of
// the path is cached. Entry carries the best-known metadata: the direct
// stat when present, otherwise the parent listing's copy.
type Result struct {
	ListingPresent bool
	EntryPresent   bool
	Entry          remote.Metadata
}

// Cache is the metadata cache for a single mount.
type Cache struct {
	mu       sync.RWMutex
	listings map[string][]remote.Metadata
	entries  map[string]remote.Metadata
	metrics  CacheMetrics // optional, nil disables collection
}

// New creates an empty cache. Metrics may be nil.
func New(m CacheMetrics) *Cache {
	return &Cache{
		listings: make(map[string][]remote.Metadata),
		entries:  make(map[string]remote.Metadata),
		metrics:  m,
	}
}

// PutListing stores the full ordered child list of a directory, replacing
// any previous listing. The slice is copied; callers keep ownership of
// their argument.
func (c *Cache) PutListing(dirPath string, entries []remote.Metadata) {
	dirPath = normalize(dirPath)

	children := make([]remote.Metadata, len(entries))
	copy(children, entries)

	c.mu.Lock()
	c.listings[dirPath] = children
	c.recordSizesLocked()
	c.mu.Unlock()
}

// PutEntry stores a direct-stat result for a path, replacing any previous
// entry.
func (c *Cache) PutEntry(p string, md remote.Metadata) {
	p = normalize(p)

	c.mu.Lock()
	c.entries[p] = md
	c.recordSizesLocked()
	c.mu.Unlock()
}

// Get looks up a path in both sub-caches. The root path never reports
// ListingPresent: it has no parent whose listing could contain it.
func (c *Cache) Get(p string) Result {
	p = normalize(p)

	c.mu.RLock()
	defer c.mu.RUnlock()

	var res Result

	if md, ok := c.entries[p]; ok {
		res.EntryPresent = true
		res.Entry = md
	}

	if p != "/" {
		if children, ok := c.listings[path.Dir(p)]; ok {
			base := path.Base(p)
			for _, child := range children {
				if child.Name == base {
					res.ListingPresent = true
					if !res.EntryPresent {
						res.Entry = child
					}
					break
				}
			}
		}
	}

	if c.metrics != nil {
		c.metrics.RecordLookup(res.ListingPresent && res.EntryPresent)
	}
	return res
}

// Remove evicts a path from both sub-caches: its direct-stat entry and, if
// the path is a directory, its own cached listing. The parent's listing is
// untouched; mutation paths want Invalidate instead.
func (c *Cache) Remove(p string) {
	p = normalize(p)

	c.mu.Lock()
	delete(c.entries, p)
	delete(c.listings, p)
	c.recordSizesLocked()
	c.mu.Unlock()
}

// Invalidate evicts a path from both sub-caches and additionally drops the
// parent directory's cached listing, so a stale child list can never
// satisfy a lookup after a mutation.
func (c *Cache) Invalidate(p string) {
	p = normalize(p)

	c.mu.Lock()
	delete(c.entries, p)
	delete(c.listings, p)
	if p != "/" {
		delete(c.listings, path.Dir(p))
	}
	c.recordSizesLocked()
	c.mu.Unlock()
}

// Len returns the number of cached listings and entries.
func (c *Cache) Len() (listings, entries int) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.listings), len(c.entries)
}

// recordSizesLocked publishes sub-cache sizes. Caller holds c.mu.
func (c *Cache) recordSizesLocked() {
	if c.metrics != nil {
		c.metrics.RecordSizes(len(c.listings), len(c.entries))
	}
}

// normalize cleans a remote path into its canonical slash-leading form.
func normalize(p string) string {
	if p == "" {
		return "/"
	}
	if p[0] != '/' {
		p = "/" + p
	}
	return path.Clean(p)
}
