/*
Copyright 2026 The quartzfs Authors

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

     http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Package block implements the in-memory "disk": a fixed-size block
// allocator with a bounded free-block cache, backing every regular file's
// content. It plays the role perkeep's pkg/blobserver/memory plays for
// blobs -- a mutex-guarded in-memory byte store -- generalized to
// fixed-size, reusable blocks rather than immutable whole blobs, and
// composed with a bounded free-block cache modeled loosely on perkeep's
// pkg/lru. Unlike an LRU, the cache never evicts: blocks freed while it
// is full are dropped.
package block

import (
	"sync"

	"github.com/quartzfs/quartzfs/pkg/qferr"
)

// ID identifies a single block within a Pool.
type ID int64

// Pool is a fixed-block-size in-memory disk. It is safe for concurrent use.
type Pool struct {
	blockSize int64
	maxBlocks int64 // maxTotalBytes rounded down to a block multiple
	maxCached int64 // -1 means unbounded

	mu       sync.Mutex
	storage  map[ID][]byte
	cache    []ID // freed blocks available for reuse, most-recently-freed last
	nextID   ID
	live     int64 // blocks currently owned by some file
	cachedN  int64 // blocks sitting in the free-list cache
}

// New creates a Pool. maxTotalBytes is rounded down to a multiple of
// blockSize. maxCachedBlocks of -1 means the free-list cache is unbounded.
func New(blockSize int, maxTotalBytes int64, maxCachedBlocks int) *Pool {
	if blockSize <= 0 {
		blockSize = 1
	}
	maxBlocks := maxTotalBytes / int64(blockSize)
	return &Pool{
		blockSize: int64(blockSize),
		maxBlocks: maxBlocks,
		maxCached: int64(maxCachedBlocks),
		storage:   make(map[ID][]byte),
	}
}

// BlockSize returns the fixed size, in bytes, of every block in the pool.
func (p *Pool) BlockSize() int { return int(p.blockSize) }

// TotalSpace returns the total capacity of the disk, in bytes, rounded
// down to a multiple of the block size.
func (p *Pool) TotalSpace() int64 { return p.maxBlocks * p.blockSize }

// UnallocatedSpace returns the number of bytes neither live nor cached.
func (p *Pool) UnallocatedSpace() int64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.unallocatedLocked()
}

func (p *Pool) unallocatedLocked() int64 {
	return (p.maxBlocks - p.live - p.cachedN) * p.blockSize
}

// Allocate reserves n blocks, atomically with respect to the pool. It
// returns qferr.ErrNoSpace if there isn't enough free capacity; on failure
// no blocks are reserved or transferred. Blocks are drawn from the free-list
// cache first and freshly allocated (zero-filled) second.
func (p *Pool) Allocate(n int) ([]ID, error) {
	if n < 0 {
		return nil, qferr.ErrIllegalArgument
	}
	if n == 0 {
		return nil, nil
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.live+p.cachedN+int64(n) > p.maxBlocks {
		return nil, qferr.ErrNoSpace
	}

	ids := make([]ID, 0, n)
	for len(ids) < n && len(p.cache) > 0 {
		last := len(p.cache) - 1
		id := p.cache[last]
		p.cache = p.cache[:last]
		p.cachedN--
		ids = append(ids, id)
	}
	for len(ids) < n {
		id := p.nextID
		p.nextID++
		p.storage[id] = make([]byte, p.blockSize)
		ids = append(ids, id)
	}
	p.live += int64(n)
	return ids, nil
}

// Free returns blocks to the pool. Freed blocks are zeroed and placed in
// the free-list cache until the cache is full; excess blocks are dropped
// (their storage released).
func (p *Pool) Free(ids []ID) {
	if len(ids) == 0 {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, id := range ids {
		if b, ok := p.storage[id]; ok {
			for i := range b {
				b[i] = 0
			}
		}
		p.live--
		if p.maxCached < 0 || p.cachedN < p.maxCached {
			p.cache = append(p.cache, id)
			p.cachedN++
		} else {
			delete(p.storage, id)
		}
	}
}

// Block returns the mutable backing slice for a block. The caller (the
// content package) is responsible for synchronizing access to it -- block
// mutation is guarded by the owning file's content lock, not by the pool.
func (p *Pool) Block(id ID) []byte {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.storage[id]
}

// LiveBlocks and CachedBlocks report current accounting state; they exist
// primarily so tests can assert the pool's space-accounting invariant.
func (p *Pool) LiveBlocks() int64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.live
}

func (p *Pool) CachedBlocks() int64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cachedN
}
