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

package tree

import (
	"container/list"
	"sync"

	"github.com/quartzfs/quartzfs/pkg/inode"
)

// dirCache is a bounded recency cache of resolved parent directories,
// keyed by canonical path text, adapted directly from perkeep's
// pkg/lru.Cache (container/list plus a lookup map) and retyped from
// interface{} blob-cache values to *inode.Directory. A size of 0
// disables caching entirely (every lookup is a fresh walk).
type dirCache struct {
	max int

	mu    sync.Mutex
	order *list.List
	index map[string]*list.Element
}

type cacheEntry struct {
	key   string
	value *inode.Directory
}

func newDirCache(max int) *dirCache {
	if max <= 0 {
		return &dirCache{max: max}
	}
	return &dirCache{max: max, order: list.New(), index: make(map[string]*list.Element)}
}

func (c *dirCache) get(key string) (*inode.Directory, bool) {
	if c.max <= 0 {
		return nil, false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if el, ok := c.index[key]; ok {
		c.order.MoveToFront(el)
		return el.Value.(*cacheEntry).value, true
	}
	return nil, false
}

func (c *dirCache) add(key string, dir *inode.Directory) {
	if c.max <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if el, ok := c.index[key]; ok {
		c.order.MoveToFront(el)
		el.Value.(*cacheEntry).value = dir
		return
	}
	el := c.order.PushFront(&cacheEntry{key: key, value: dir})
	c.index[key] = el
	if c.order.Len() > c.max {
		oldest := c.order.Back()
		if oldest != nil {
			c.order.Remove(oldest)
			delete(c.index, oldest.Value.(*cacheEntry).key)
		}
	}
}

// invalidate drops key, used when a cached directory is removed from the
// tree (unlinked) so a stale entry can't be served after deletion.
func (c *dirCache) invalidate(key string) {
	if c.max <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if el, ok := c.index[key]; ok {
		c.order.Remove(el)
		delete(c.index, key)
	}
}
