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

package channel

import (
	"sync"

	"github.com/quartzfs/quartzfs/pkg/inode"
	"github.com/quartzfs/quartzfs/pkg/qferr"
)

// FileLock is a simulated advisory lock over a byte range of a file,
// held for the lifetime of the Channel that acquired it: a simulated
// whole-file or range lock whose lifetime is tied to its channel.
// It is advisory: quartzfs has no concept of external processes, so a
// FileLock only ever conflicts with another FileLock requested through
// the same filesystem.
type FileLock struct {
	table  *lockTable
	owner  *Channel
	pos    int64
	length int64 // 0 means "to end of file"
	shared bool
}

// Release drops the lock. Closing the owning channel releases any locks
// it still holds, so Release is optional but idempotent.
func (l *FileLock) Release() {
	l.table.release(l)
}

func (l *FileLock) overlaps(o *FileLock) bool {
	aEnd := l.pos + l.length
	bEnd := o.pos + o.length
	if l.length == 0 {
		aEnd = 1<<63 - 1
	}
	if o.length == 0 {
		bEnd = 1<<63 - 1
	}
	return l.pos < bEnd && o.pos < aEnd
}

type lockTable struct {
	mu    sync.Mutex
	locks []*FileLock
}

var (
	tablesMu sync.Mutex
	tables   = map[*inode.File]*lockTable{}
)

// fileLockTable returns the shared lock table for a file, creating one
// on first use. Tables are keyed by the file entity itself, so files of
// different filesystems that happen to share an id never share a table.
// Tables are never removed: the map grows with the number of distinct
// files ever opened through a Channel, not with lock churn.
func fileLockTable(f *inode.File) *lockTable {
	tablesMu.Lock()
	defer tablesMu.Unlock()
	t, ok := tables[f]
	if !ok {
		t = &lockTable{}
		tables[f] = t
	}
	return t
}

func (t *lockTable) tryAcquire(owner *Channel, pos, length int64, shared bool) (*FileLock, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	cand := &FileLock{table: t, owner: owner, pos: pos, length: length, shared: shared}
	for _, existing := range t.locks {
		if !existing.overlaps(cand) {
			continue
		}
		if shared && existing.shared {
			continue
		}
		return nil, qferr.ErrIllegalArgument
	}
	t.locks = append(t.locks, cand)
	return cand, nil
}

func (t *lockTable) release(l *FileLock) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for i, existing := range t.locks {
		if existing == l {
			t.locks = append(t.locks[:i], t.locks[i+1:]...)
			return
		}
	}
}

func (t *lockTable) releaseAll(owner *Channel) {
	t.mu.Lock()
	defer t.mu.Unlock()
	kept := t.locks[:0]
	for _, l := range t.locks {
		if l.owner != owner {
			kept = append(kept, l)
		}
	}
	t.locks = kept
}

// Lock blocks (within the given context) until it can acquire a lock on
// the byte range [pos, pos+length), or the whole file if length is 0.
// Because locks in this package only ever contend with other FileLocks
// from the same process, acquisition either succeeds immediately or
// fails outright -- there is no real external holder to wait out -- so
// Lock and TryLock share an implementation.
func (c *Channel) Lock(pos, length int64, shared bool) (*FileLock, error) {
	if pos < 0 || length < 0 {
		return nil, qferr.ErrIllegalArgument
	}
	if err := c.checkOpen(); err != nil {
		return nil, err
	}
	if shared && !c.mode.has(Read) {
		return nil, qferr.ErrNonReadable
	}
	if !shared && !c.mode.has(Write) {
		return nil, qferr.ErrNonWritable
	}
	return c.locks.tryAcquire(c, pos, length, shared)
}

// TryLock is Lock by another name: quartzfs locks never block on a real
// external holder, so there is no separate non-blocking variant to
// implement.
func (c *Channel) TryLock(pos, length int64, shared bool) (*FileLock, error) {
	return c.Lock(pos, length, shared)
}
