// Copyright 2025 The sheetclip Authors. All rights reserved. Use of this
// source code is governed by a BSD-style license that can be found in the
// LICENSE file.

package sheetclip

import (
	"container/list"
	"sync"
)

// lruCache implements a thread-safe LRU (Least Recently Used) cache
// with a maximum size limit. When the cache is full, the least recently
// used item is evicted to make room for new items.
type lruCache[K comparable, V any] struct {
	mu       sync.Mutex
	capacity int
	cache    map[K]*list.Element
	lruList  *list.List
	onEvict  func(key K, value V)
}

// lruEntry represents a key-value pair in the LRU cache
type lruEntry[K comparable, V any] struct {
	key   K
	value V
}

// newLRUCache creates a new LRU cache with the specified capacity. A
// capacity below one is raised to one.
func newLRUCache[K comparable, V any](capacity int) *lruCache[K, V] {
	if capacity < 1 {
		capacity = 1
	}
	return &lruCache[K, V]{
		capacity: capacity,
		cache:    make(map[K]*list.Element),
		lruList:  list.New(),
	}
}

// Load retrieves a value from the cache. Returns (value, true) if found,
// (zero, false) if not found. Moves the accessed item to the front (most
// recent).
func (c *lruCache[K, V]) Load(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.cache[key]; ok {
		c.lruList.MoveToFront(elem)
		return elem.Value.(*lruEntry[K, V]).value, true
	}
	var zero V
	return zero, false
}

// Store adds or updates a value in the cache. If the cache is at capacity,
// the least recently used item is evicted. Returns true if an item was evicted.
func (c *lruCache[K, V]) Store(key K, value V) bool {
	c.mu.Lock()

	if elem, ok := c.cache[key]; ok {
		c.lruList.MoveToFront(elem)
		elem.Value.(*lruEntry[K, V]).value = value
		c.mu.Unlock()
		return false
	}

	var evicted *lruEntry[K, V]
	if c.lruList.Len() >= c.capacity {
		// Remove least recently used (back of list)
		if oldest := c.lruList.Back(); oldest != nil {
			c.lruList.Remove(oldest)
			evicted = oldest.Value.(*lruEntry[K, V])
			delete(c.cache, evicted.key)
		}
	}

	c.cache[key] = c.lruList.PushFront(&lruEntry[K, V]{key: key, value: value})
	onEvict := c.onEvict
	c.mu.Unlock()

	if evicted != nil && onEvict != nil {
		onEvict(evicted.key, evicted.value)
	}
	return evicted != nil
}

// Delete removes a key from the cache. Returns true if the key was present.
func (c *lruCache[K, V]) Delete(key K) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.cache[key]; ok {
		c.lruList.Remove(elem)
		delete(c.cache, key)
		return true
	}
	return false
}

// DeleteFunc removes every entry for which match returns true and reports
// how many were removed.
func (c *lruCache[K, V]) DeleteFunc(match func(key K, value V) bool) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for elem := c.lruList.Front(); elem != nil; {
		next := elem.Next()
		entry := elem.Value.(*lruEntry[K, V])
		if match(entry.key, entry.value) {
			c.lruList.Remove(elem)
			delete(c.cache, entry.key)
			removed++
		}
		elem = next
	}
	return removed
}

// Clear removes all items from the cache
func (c *lruCache[K, V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.cache = make(map[K]*list.Element)
	c.lruList = list.New()
}

// Len returns the current number of items in the cache
func (c *lruCache[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.lruList.Len()
}
