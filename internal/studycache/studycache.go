// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package studycache holds recently seen studies so detail views can be
// served without another backend call.
package studycache

import (
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/pdiddy/bioexplorer/pkg/types"
)

// DefaultCapacity bounds the cache when no capacity is configured.
const DefaultCapacity = types.DefaultCacheCapacity

// Cache is a bounded, least-recently-used map from study id to Study. It
// is safe for concurrent use; a later write for an id replaces the
// earlier one.
type Cache struct {
	lru *lru.Cache[string, types.Study]
}

// New returns a cache holding at most capacity studies. Non-positive
// capacities use DefaultCapacity.
func New(capacity int) *Cache {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	c, err := lru.New[string, types.Study](capacity)
	if err != nil {
		// lru.New only fails for non-positive sizes.
		panic(err)
	}
	return &Cache{lru: c}
}

// Put stores s under s.ID. Studies without an id are ignored.
func (c *Cache) Put(s types.Study) {
	if s.ID == "" {
		return
	}
	c.lru.Add(s.ID, s)
}

// PutAll stores every study in order, so the last duplicate wins.
func (c *Cache) PutAll(studies []types.Study) {
	for _, s := range studies {
		c.Put(s)
	}
}

// Get returns the study for id and marks it recently used.
func (c *Cache) Get(id string) (types.Study, bool) {
	return c.lru.Get(id)
}

// Contains reports whether id is cached without touching recency.
func (c *Cache) Contains(id string) bool {
	return c.lru.Contains(id)
}

// Len returns the number of cached studies.
func (c *Cache) Len() int {
	return c.lru.Len()
}

// Recent returns up to n cached studies, most recently used first,
// skipping exclude. It does not touch recency.
func (c *Cache) Recent(n int, exclude string) []types.Study {
	if n <= 0 {
		return nil
	}
	keys := c.lru.Keys()
	out := make([]types.Study, 0, min(n, len(keys)))
	for i := len(keys) - 1; i >= 0 && len(out) < n; i-- {
		if keys[i] == exclude {
			continue
		}
		if st, ok := c.lru.Peek(keys[i]); ok {
			out = append(out, st)
		}
	}
	return out
}
