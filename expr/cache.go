// Copyright 2026 The SDB Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package expr

import (
	lru "github.com/hashicorp/golang-lru"

	"github.com/sdb-project/sdb/symbol"
)

// CachingDataProvider wraps another DataProvider with an LRU cache over
// memory reads. Snapshot and replay debugging re-reads the same memory
// constantly; caching turns repeat fetches into synchronous inline
// completions. Writes purge the cache.
type CachingDataProvider struct {
	symbol.DataProvider
	cache *lru.Cache
}

type memoryKey struct {
	address uint64
	size    uint32
}

// NewCachingDataProvider wraps p with a cache of the given entry count.
func NewCachingDataProvider(p symbol.DataProvider, entries int) (*CachingDataProvider, error) {
	c, err := lru.New(entries)
	if err != nil {
		return nil, err
	}
	return &CachingDataProvider{DataProvider: p, cache: c}, nil
}

// GetMemoryAsync serves repeated reads from cache; cache hits complete
// inline. Failed reads are not cached.
func (c *CachingDataProvider) GetMemoryAsync(address uint64, size uint32,
	cb func(err error, data []byte)) {
	key := memoryKey{address, size}
	if data, ok := c.cache.Get(key); ok {
		cb(nil, data.([]byte))
		return
	}
	c.DataProvider.GetMemoryAsync(address, size, func(err error, data []byte) {
		if err == nil {
			c.cache.Add(key, data)
		}
		cb(err, data)
	})
}

// WriteMemory invalidates all cached reads before delegating. Cached
// blocks may overlap any write, so everything goes.
func (c *CachingDataProvider) WriteMemory(address uint64, data []byte, cb func(err error)) {
	c.cache.Purge()
	c.DataProvider.WriteMemory(address, data, cb)
}
