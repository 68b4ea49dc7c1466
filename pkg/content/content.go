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

// Package content implements random-access byte storage for a regular
// file's bytes, backed by a block.Pool. It plays the role perkeep's
// pkg/blob.SizedRef and io.SectionReader-based blob reads play for
// immutable blobs, generalized to a mutable, growable, block-list-backed
// byte range. Callers (pkg/channel) are responsible for the read/write
// locking around content access, through the owning file's
// non-reentrant content lock; Content itself performs no locking of its
// own.
package content

import (
	"io"

	"github.com/quartzfs/quartzfs/pkg/block"
	"github.com/quartzfs/quartzfs/pkg/qferr"
)

// Content is the ordered block list and size for one regular file.
type Content struct {
	pool   *block.Pool
	blocks []block.ID
	size   int64
}

// New returns an empty Content backed by pool.
func New(pool *block.Pool) *Content {
	return &Content{pool: pool}
}

// Size returns the file's current size in bytes.
func (c *Content) Size() int64 { return c.size }

func (c *Content) blockSize() int64 { return int64(c.pool.BlockSize()) }

// ReadAt implements io.ReaderAt semantics over the file's bytes: it reads
// up to len(p) bytes starting at off, returning io.EOF once off reaches or
// exceeds the current size. Repeated reads past size keep returning
// io.EOF without error.
func (c *Content) ReadAt(p []byte, off int64) (int, error) {
	if off < 0 {
		return 0, qferr.ErrIllegalArgument
	}
	if off >= c.size {
		return 0, io.EOF
	}
	n := len(p)
	if avail := c.size - off; int64(n) > avail {
		n = int(avail)
	}
	bs := c.blockSize()
	read := 0
	for read < n {
		pos := off + int64(read)
		idx := pos / bs
		within := pos % bs
		b := c.pool.Block(c.blocks[idx])
		take := n - read
		if rem := int(bs - within); take > rem {
			take = rem
		}
		copy(p[read:read+take], b[within:within+int64(take)])
		read += take
	}
	var err error
	if read < len(p) {
		err = io.EOF
	}
	return read, err
}

// WriteAt writes len(p) bytes at off, extending the file's size and
// zero-filling any gap between the old size and off. If block allocation
// fails partway through, the bytes successfully written are kept, the
// size reflects them, and a no-space error is returned.
func (c *Content) WriteAt(p []byte, off int64) (int, error) {
	if off < 0 {
		return 0, qferr.ErrIllegalArgument
	}
	if len(p) == 0 {
		if off > c.size {
			if err := c.growTo(off); err != nil {
				return 0, err
			}
		}
		return 0, nil
	}
	end := off + int64(len(p))
	if err := c.ensureCapacity(end); err != nil {
		// ensureCapacity may have partially grown; size/blocks reflect
		// what succeeded. Figure out how many bytes of p we can still
		// place in the space that was actually allocated.
		have := int64(len(c.blocks)) * c.blockSize()
		writable := have - off
		if writable <= 0 {
			return 0, err
		}
		if writable > int64(len(p)) {
			writable = int64(len(p))
		}
		n := c.writeWithinCapacity(p[:writable], off)
		if off+int64(n) > c.size {
			c.size = off + int64(n)
		}
		return n, err
	}
	n := c.writeWithinCapacity(p, off)
	if end > c.size {
		c.size = end
	}
	return n, nil
}

// writeWithinCapacity writes p at off assuming sufficient blocks are
// already allocated; any gap between the prior size and off within that
// capacity is zero already (blocks start zeroed).
func (c *Content) writeWithinCapacity(p []byte, off int64) int {
	bs := c.blockSize()
	written := 0
	for written < len(p) {
		pos := off + int64(written)
		idx := pos / bs
		within := pos % bs
		b := c.pool.Block(c.blocks[idx])
		take := len(p) - written
		if rem := int(bs - within); take > rem {
			take = rem
		}
		copy(b[within:within+int64(take)], p[written:written+take])
		written += take
	}
	return written
}

// ensureCapacity grows the block list so that byte offset end-1 is
// addressable, allocating new blocks as needed. On allocation failure it
// returns the error after keeping whatever blocks were obtained.
func (c *Content) ensureCapacity(end int64) error {
	bs := c.blockSize()
	needBlocks := (end + bs - 1) / bs
	if needBlocks <= int64(len(c.blocks)) {
		return nil
	}
	n := int(needBlocks - int64(len(c.blocks)))
	ids, err := c.pool.Allocate(n)
	c.blocks = append(c.blocks, ids...)
	if err != nil {
		return err
	}
	return nil
}

// growTo extends size to at least newSize, allocating zero-filled blocks
// as needed but not writing any bytes -- used when a write's length is
// zero but its offset is past the current size.
func (c *Content) growTo(newSize int64) error {
	if err := c.ensureCapacity(newSize); err != nil {
		return err
	}
	c.size = newSize
	return nil
}

// Truncate shrinks the file to newSize, freeing trailing blocks back to
// the pool. A newSize at or above the current size leaves the size
// unchanged: there is no zero-extension.
func (c *Content) Truncate(newSize int64) error {
	if newSize < 0 {
		return qferr.ErrIllegalArgument
	}
	if newSize >= c.size {
		return nil
	}
	bs := c.blockSize()
	keepBlocks := (newSize + bs - 1) / bs
	if keepBlocks < int64(len(c.blocks)) {
		freed := c.blocks[keepBlocks:]
		c.pool.Free(append([]block.ID(nil), freed...))
		c.blocks = c.blocks[:keepBlocks]
	}
	// Zero the tail of the last retained block so a later write past
	// newSize leaves zeros, not old bytes, in the gap.
	if keepBlocks > 0 && newSize%bs != 0 {
		b := c.pool.Block(c.blocks[keepBlocks-1])
		for i := newSize % bs; i < bs; i++ {
			b[i] = 0
		}
	}
	c.size = newSize
	return nil
}

// TransferFrom reads from src and writes the bytes at pos, stopping at
// count bytes or when src returns io.EOF, whichever comes first. It never
// leaves an allocated trailing empty block when src ends exactly on a
// block boundary or when zero bytes are transferred.
func (c *Content) TransferFrom(src io.Reader, pos int64, count int64) (int64, error) {
	if pos < 0 || count < 0 {
		return 0, qferr.ErrIllegalArgument
	}
	if count == 0 {
		return 0, nil
	}
	buf := make([]byte, minInt64(c.blockSize(), count))
	var total int64
	for total < count {
		want := count - total
		if int64(len(buf)) > want {
			buf = buf[:want]
		}
		n, rerr := src.Read(buf)
		if n > 0 {
			if _, werr := c.WriteAt(buf[:n], pos+total); werr != nil {
				return total + int64(n), werr
			}
			total += int64(n)
		}
		if rerr == io.EOF {
			break
		}
		if rerr != nil {
			return total, rerr
		}
	}
	return total, nil
}

// TransferTo writes up to count bytes starting at pos to dst, returning
// the number of bytes actually transferred.
func (c *Content) TransferTo(pos int64, count int64, dst io.Writer) (int64, error) {
	if pos < 0 || count < 0 {
		return 0, qferr.ErrIllegalArgument
	}
	buf := make([]byte, minInt64(c.blockSize(), count))
	var total int64
	for total < count {
		if pos+total >= c.size {
			break
		}
		want := count - total
		if int64(len(buf)) > want {
			buf = buf[:want]
		}
		n, rerr := c.ReadAt(buf, pos+total)
		if n > 0 {
			if _, werr := dst.Write(buf[:n]); werr != nil {
				return total, werr
			}
			total += int64(n)
		}
		if rerr == io.EOF {
			break
		}
		if rerr != nil {
			return total, rerr
		}
	}
	return total, nil
}

// CopyContentTo copies this content's bytes into target, which starts from
// an independent, freshly-allocated block list -- no blocks are shared
// between the two.
func (c *Content) CopyContentTo(target *Content) error {
	target.Truncate(0)
	bs := c.blockSize()
	buf := make([]byte, bs)
	var off int64
	for off < c.size {
		n, err := c.ReadAt(buf, off)
		if n > 0 {
			if _, werr := target.WriteAt(buf[:n], off); werr != nil {
				return werr
			}
			off += int64(n)
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func minInt64(a, b int64) int64 {
	if a < b {
		return a
	}
	return b
}
