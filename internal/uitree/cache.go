// Package uitree builds addressable snapshots of the accessibility tree and
// remembers where each addressed node was on screen.
package uitree

import (
	"sync/atomic"

	"github.com/clawd-xsl/android-remote/internal/model"
)

// AddressCache maps node addresses from the latest snapshot to their screen
// rectangles. Each snapshot publishes a complete new mapping with a single
// atomic store, so readers see either the old mapping or the new one, never
// a mix. Only Builder writes to it.
type AddressCache struct {
	current atomic.Pointer[addressMap]
}

type addressMap struct {
	generation uint64
	rects      map[string]model.Rect
}

// NewAddressCache returns an empty cache.
func NewAddressCache() *AddressCache {
	c := &AddressCache{}
	c.current.Store(&addressMap{rects: map[string]model.Rect{}})
	return c
}

// Resolve returns the rectangle cached for address by the latest snapshot.
// Addresses from earlier snapshots miss unless the latest snapshot produced
// the same address again.
func (c *AddressCache) Resolve(address string) (model.Rect, bool) {
	r, ok := c.current.Load().rects[address]
	return r, ok
}

// Len returns the number of addresses in the latest snapshot.
func (c *AddressCache) Len() int {
	return len(c.current.Load().rects)
}

// Generation identifies the snapshot currently published. It increases by
// one with every rebuild, including rebuilds that found no window.
func (c *AddressCache) Generation() uint64 {
	return c.current.Load().generation
}

// Each calls fn for every cached address. Iteration order is unspecified.
func (c *AddressCache) Each(fn func(address string, r model.Rect)) {
	for addr, r := range c.current.Load().rects {
		fn(addr, r)
	}
}

// publish replaces the whole mapping.
func (c *AddressCache) publish(rects map[string]model.Rect) {
	for {
		old := c.current.Load()
		next := &addressMap{generation: old.generation + 1, rects: rects}
		if c.current.CompareAndSwap(old, next) {
			return
		}
	}
}
