// Copyright 2024 Google, LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package pipeline orchestrates the topic-to-video run. This file holds
// the topic-keyed manifest cache: a second request for a topic whose run
// already succeeded gets the finished manifest back without spending a
// single provider call. Only successful runs enter the cache; entries
// expire after a TTL and the least recently used entry is evicted when
// the capacity bound is hit.
package pipeline

import (
	"container/list"
	"sync"
	"time"

	"github.com/jaycherian/gcp-go-slideshow-maker/internal/core/model"
)

type cacheEntry struct {
	topic    string
	manifest *model.Manifest
	storedAt time.Time
}

// RunCache is a bounded, TTL-expiring, LRU-evicting manifest cache keyed
// by topic. It is the only state shared across requests besides the rate
// limiters, and it is safe for concurrent use.
type RunCache struct {
	mu       sync.Mutex
	capacity int
	ttl      time.Duration
	order    *list.List               // front = most recently used
	entries  map[string]*list.Element // topic -> element holding *cacheEntry
	now      func() time.Time         // injectable clock for tests
}

// NewRunCache constructs a cache with the given bounds. A capacity below
// one disables storage entirely; a non-positive TTL means entries never
// expire.
func NewRunCache(capacity int, ttl time.Duration) *RunCache {
	return &RunCache{
		capacity: capacity,
		ttl:      ttl,
		order:    list.New(),
		entries:  make(map[string]*list.Element),
		now:      time.Now,
	}
}

// Get returns the cached manifest for a topic, or nil. A hit refreshes
// the entry's recency; an expired entry is removed and reported as a miss.
func (c *RunCache) Get(topic string) *model.Manifest {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.entries[topic]
	if !ok {
		return nil
	}
	entry := elem.Value.(*cacheEntry)
	if c.ttl > 0 && c.now().Sub(entry.storedAt) > c.ttl {
		c.order.Remove(elem)
		delete(c.entries, topic)
		return nil
	}
	c.order.MoveToFront(elem)
	return entry.manifest
}

// Put stores the manifest for a topic, evicting the least recently used
// entry when the cache is full. Storing an existing topic refreshes both
// the manifest and the TTL clock.
func (c *RunCache) Put(topic string, manifest *model.Manifest) {
	if c.capacity < 1 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.entries[topic]; ok {
		entry := elem.Value.(*cacheEntry)
		entry.manifest = manifest
		entry.storedAt = c.now()
		c.order.MoveToFront(elem)
		return
	}

	if c.order.Len() >= c.capacity {
		oldest := c.order.Back()
		if oldest != nil {
			c.order.Remove(oldest)
			delete(c.entries, oldest.Value.(*cacheEntry).topic)
		}
	}
	c.entries[topic] = c.order.PushFront(&cacheEntry{
		topic:    topic,
		manifest: manifest,
		storedAt: c.now(),
	})
}

// Len reports the number of live entries, counting expired entries that
// have not been touched since expiry.
func (c *RunCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}
