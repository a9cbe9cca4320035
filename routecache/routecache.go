// Package routecache stores, per known source, the first relay route learned
// to reach it; the routing engine records one when an RREQ or RREP reaches
// its destination.
//
// This corresponds to the teacher's core/contact ContactManager, reworked
// from a firmware-style bounded slot table with LRU eviction into an
// unbounded first-writer-wins table: the data model calls for a cache
// entry that is never silently replaced once learned, since overwriting a
// working route with an equally-plausible later one would contradict the
// simulator's "first learned route wins" rule.
package routecache

import (
	"sync"

	"github.com/wsnsim/floodrouting/wire"
)

// Cache is a thread-safe source-route cache.
//
// Entries are keyed by the source address the route leads to. Insert
// follows first-writer-wins: once a source has a cached route, later
// Insert calls for the same source are ignored.
type Cache struct {
	mu     sync.RWMutex
	routes map[wire.Address][]wire.Address

	onInsert func(source wire.Address, route []wire.Address)
}

// New creates an empty route cache.
func New() *Cache {
	return &Cache{routes: make(map[wire.Address][]wire.Address)}
}

// SetOnInsert sets a callback invoked whenever a new route is actually
// recorded (never on an ignored duplicate insert).
func (c *Cache) SetOnInsert(fn func(source wire.Address, route []wire.Address)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onInsert = fn
}

// Insert records route as the way to reach source, unless a route for
// source is already cached, in which case the call is a no-op. Returns true
// if the route was recorded.
//
// route is copied, so the caller may reuse it after the call.
func (c *Cache) Insert(source wire.Address, route []wire.Address) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.routes[source]; exists {
		return false
	}
	stored := make([]wire.Address, len(route))
	copy(stored, route)
	c.routes[source] = stored

	if c.onInsert != nil {
		c.onInsert(source, stored)
	}
	return true
}

// Lookup returns the cached route to source and whether one is present.
// The returned slice is a copy and safe for the caller to mutate.
func (c *Cache) Lookup(source wire.Address) ([]wire.Address, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	route, ok := c.routes[source]
	if !ok {
		return nil, false
	}
	out := make([]wire.Address, len(route))
	copy(out, route)
	return out, true
}

// Count returns the number of sources with a cached route.
func (c *Cache) Count() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.routes)
}

// ForEach calls fn for each cached (source, route) pair. Return false from
// fn to stop iteration early. Holds a read lock for the duration.
func (c *Cache) ForEach(fn func(source wire.Address, route []wire.Address) bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for src, route := range c.routes {
		if !fn(src, route) {
			return
		}
	}
}
