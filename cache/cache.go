// Copyright (c) 2024 The illium developers
// Use of this source code is governed by an MIT
// license that can be found in the LICENSE file.

package cache

import (
	"sync"
	"time"

	"github.com/benbjohnson/clock"
)

type entry[V any] struct {
	value   V
	expires time.Time
}

// TTLCache is a map whose entries expire a fixed duration after they
// were written. Expired entries are never returned. They are removed
// lazily on lookup or eagerly by Sweep.
//
// If maxEntries is non-zero and adding a new entry would exceed it, a
// random entry is evicted first.
type TTLCache[K comparable, V any] struct {
	mtx        sync.RWMutex
	entries    map[K]entry[V]
	ttl        time.Duration
	maxEntries int
	clock      clock.Clock
}

// New returns a TTLCache. A nil clock uses the wall clock.
func New[K comparable, V any](ttl time.Duration, maxEntries int, clk clock.Clock) *TTLCache[K, V] {
	if clk == nil {
		clk = clock.New()
	}
	return &TTLCache[K, V]{
		entries:    make(map[K]entry[V]),
		ttl:        ttl,
		maxEntries: maxEntries,
		clock:      clk,
	}
}

// Get returns the value for key if it exists and has not expired.
func (c *TTLCache[K, V]) Get(key K) (V, bool) {
	c.mtx.RLock()
	e, ok := c.entries[key]
	c.mtx.RUnlock()

	if !ok {
		var zero V
		return zero, false
	}
	if !c.clock.Now().Before(e.expires) {
		c.mtx.Lock()
		// Recheck in case the entry was refreshed in between.
		if e2, ok := c.entries[key]; ok && !c.clock.Now().Before(e2.expires) {
			delete(c.entries, key)
		}
		c.mtx.Unlock()
		var zero V
		return zero, false
	}
	return e.value, true
}

// Put stores value under key, replacing any previous entry and
// resetting its expiry.
func (c *TTLCache[K, V]) Put(key K, value V) {
	c.mtx.Lock()
	defer c.mtx.Unlock()

	if _, exists := c.entries[key]; !exists && c.maxEntries > 0 && len(c.entries)+1 > c.maxEntries {
		for k := range c.entries {
			delete(c.entries, k)
			break
		}
	}
	c.entries[key] = entry[V]{
		value:   value,
		expires: c.clock.Now().Add(c.ttl),
	}
}

// Delete removes key from the cache.
func (c *TTLCache[K, V]) Delete(key K) {
	c.mtx.Lock()
	delete(c.entries, key)
	c.mtx.Unlock()
}

// Clear removes every entry.
func (c *TTLCache[K, V]) Clear() {
	c.mtx.Lock()
	c.entries = make(map[K]entry[V])
	c.mtx.Unlock()
}

// Sweep deletes all expired entries and returns how many were removed.
func (c *TTLCache[K, V]) Sweep() int {
	c.mtx.Lock()
	defer c.mtx.Unlock()

	now := c.clock.Now()
	n := 0
	for k, e := range c.entries {
		if !now.Before(e.expires) {
			delete(c.entries, k)
			n++
		}
	}
	return n
}

// Len returns the number of stored entries, including any that have
// expired but not yet been swept.
func (c *TTLCache[K, V]) Len() int {
	c.mtx.RLock()
	defer c.mtx.RUnlock()
	return len(c.entries)
}
