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

// Package channel implements positioned and position-independent I/O
// over a regular file's content, plus the input/output streams built on
// top of it and a simulated whole-file/range lock -- a synchronous file
// channel. It plays the role perkeep's pkg/iohelp.NamedSectionReader
// plays for read-only, offset-bound access to a blob, generalized to a
// mutable, position-tracking, lockable channel over a growable file.
//
// Channel interruption is expressed through context.Context rather than
// a synthetic interrupt flag: every blocking call takes a context, and
// cancelling it aborts the call with closed-by-interrupt while
// concurrent calls on other goroutines observe asynchronous-close, the
// same way cancelling one goroutine's work shouldn't silently corrupt
// another's. The choice is documented in DESIGN.md.
package channel

import (
	"context"
	"sync"

	"github.com/quartzfs/quartzfs/pkg/inode"
	"github.com/quartzfs/quartzfs/pkg/qferr"
)

// Mode is the set of options a Channel was opened with.
type Mode uint8

const (
	Read Mode = 1 << iota
	Write
	Append
)

func (m Mode) has(f Mode) bool { return m&f != 0 }

// Channel is a synchronous, position-tracking view onto a regular
// file's content.
type Channel struct {
	file *inode.File
	mode Mode

	mu       sync.Mutex
	pos      int64
	closed   bool
	closeErr error
	closing  chan struct{}
	onClose  func()

	locks *lockTable
}

// Open returns a Channel over file with the given mode. file must be a
// regular file; the caller is expected to have checked its Kind.
func Open(file *inode.File, mode Mode) *Channel {
	file.Open()
	return &Channel{
		file:    file,
		mode:    mode,
		closing: make(chan struct{}),
		locks:   fileLockTable(file),
	}
}

// File returns the channel's underlying file entity.
func (c *Channel) File() *inode.File { return c.file }

// OnClose registers a hook invoked exactly once, after the channel's own
// teardown completes, the first time Close (or an interrupted operation)
// closes the channel. It lets a caller like memfs's DELETE_ON_CLOSE
// attach cleanup to whichever Close call actually happens, without
// wrapping the Channel in another type.
func (c *Channel) OnClose(hook func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onClose = hook
}

func (c *Channel) checkOpen() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return qferr.ErrClosedChannel
	}
	return nil
}

// Position returns the channel's current position.
func (c *Channel) Position() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pos
}

// Seek sets the channel's current position. Negative positions are
// rejected.
func (c *Channel) Seek(pos int64) error {
	if pos < 0 {
		return qferr.ErrIllegalArgument
	}
	if err := c.checkOpen(); err != nil {
		return err
	}
	c.mu.Lock()
	c.pos = pos
	c.mu.Unlock()
	return nil
}

// Size returns the file's current byte size.
func (c *Channel) Size() int64 { return c.file.Content().Size() }

// acquire takes the file's content lock, honoring ctx cancellation and
// concurrent Close calls: a cancelled ctx reports closed-by-interrupt
// and closes the channel; a lock-wait racing an already in-flight Close
// reports asynchronous-close.
func (c *Channel) acquire(ctx context.Context, write bool) (release func(), err error) {
	if err := c.checkOpen(); err != nil {
		return nil, err
	}
	done := make(chan struct{})
	aborted := make(chan struct{})
	go func() {
		if write {
			c.file.Lock()
		} else {
			c.file.RLock()
		}
		select {
		case <-aborted:
			if write {
				c.file.Unlock()
			} else {
				c.file.RUnlock()
			}
		default:
			close(done)
		}
	}()
	select {
	case <-done:
		if write {
			return c.file.Unlock, nil
		}
		return c.file.RUnlock, nil
	case <-ctx.Done():
		close(aborted)
		c.closeWith(qferr.ErrClosedByInterrupt)
		return nil, qferr.ErrClosedByInterrupt
	case <-c.closing:
		close(aborted)
		return nil, qferr.ErrAsynchronousClose
	}
}

// ReadAt reads into p starting at off without moving the channel's
// position: positioned reads never mutate it.
func (c *Channel) ReadAt(ctx context.Context, p []byte, off int64) (int, error) {
	if off < 0 {
		return 0, qferr.ErrIllegalArgument
	}
	if !c.mode.has(Read) {
		return 0, qferr.ErrNonReadable
	}
	release, err := c.acquire(ctx, false)
	if err != nil {
		return 0, err
	}
	defer release()
	n, err := c.file.Content().ReadAt(p, off)
	if n > 0 {
		c.file.TouchAccess()
	}
	return n, err
}

// Read reads into p at the channel's current position, advancing it by
// the number of bytes transferred.
func (c *Channel) Read(ctx context.Context, p []byte) (int, error) {
	pos := c.Position()
	n, err := c.ReadAt(ctx, p, pos)
	if n > 0 {
		c.mu.Lock()
		c.pos = pos + int64(n)
		c.mu.Unlock()
	}
	return n, err
}

// WriteAt writes p at off without moving the channel's position.
func (c *Channel) WriteAt(ctx context.Context, p []byte, off int64) (int, error) {
	if off < 0 {
		return 0, qferr.ErrIllegalArgument
	}
	if !c.mode.has(Write) {
		return 0, qferr.ErrNonWritable
	}
	release, err := c.acquire(ctx, true)
	if err != nil {
		return 0, err
	}
	defer release()
	n, werr := c.file.Content().WriteAt(p, off)
	if n > 0 {
		c.file.TouchModified()
	}
	return n, werr
}

// Write writes p at the channel's current position, advancing it by the
// number of bytes transferred. In Append mode, every write first seeks
// to the file's current size, read under the same content lock as the
// write itself, so concurrent appenders never overwrite each other's
// bytes.
func (c *Channel) Write(ctx context.Context, p []byte) (int, error) {
	pos := c.Position()
	var n int
	var err error
	if c.mode.has(Append) && c.mode.has(Write) {
		release, aerr := c.acquire(ctx, true)
		if aerr != nil {
			return 0, aerr
		}
		pos = c.Size()
		if n, err = c.file.Content().WriteAt(p, pos); n > 0 {
			c.file.TouchModified()
		}
		release()
	} else {
		n, err = c.WriteAt(ctx, p, pos)
	}
	if n > 0 {
		c.mu.Lock()
		c.pos = pos + int64(n)
		c.mu.Unlock()
	}
	return n, err
}

// Truncate shrinks the file to size if it is currently larger; a size at
// or above the current size leaves the file's size unchanged. The
// channel's position is clamped down to size if it currently exceeds it.
func (c *Channel) Truncate(ctx context.Context, size int64) error {
	if size < 0 {
		return qferr.ErrIllegalArgument
	}
	if !c.mode.has(Write) {
		return qferr.ErrNonWritable
	}
	release, err := c.acquire(ctx, true)
	if err != nil {
		return err
	}
	defer release()
	if err := c.file.Content().Truncate(size); err != nil {
		return err
	}
	c.file.TouchModified()
	c.mu.Lock()
	if c.pos > size {
		c.pos = size
	}
	c.mu.Unlock()
	return nil
}

func (c *Channel) closeWith(err error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	c.closeErr = err
	hook := c.onClose
	c.mu.Unlock()
	close(c.closing)
	c.locks.releaseAll(c)
	c.file.Close()
	if hook != nil {
		hook()
	}
}

// Close closes the channel. Any operation blocked on the content lock at
// the time of Close observes asynchronous-close.
func (c *Channel) Close() error {
	c.closeWith(nil)
	return nil
}

// Closed reports whether the channel has been closed, and if the close
// was triggered by an interrupted operation, the error that triggered
// it.
func (c *Channel) Closed() (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed, c.closeErr
}
