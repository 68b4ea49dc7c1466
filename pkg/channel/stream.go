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
	"context"
	"io"
	"sync"

	"github.com/quartzfs/quartzfs/pkg/inode"
)

// InputStream is a byte-stream reader over a regular file, independent
// of any Channel's position.
type InputStream struct {
	ch     *Channel
	mu     sync.Mutex
	pos    int64
	closed bool
}

// NewInputStream opens a read-only stream over file.
func NewInputStream(file *inode.File) *InputStream {
	return &InputStream{ch: Open(file, Read)}
}

// Read implements io.Reader, advancing the stream's own position.
func (s *InputStream) Read(p []byte) (int, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return 0, io.ErrClosedPipe
	}
	pos := s.pos
	s.mu.Unlock()

	n, err := s.ch.ReadAt(context.Background(), p, pos)
	if n > 0 {
		s.mu.Lock()
		s.pos += int64(n)
		s.mu.Unlock()
	}
	return n, err
}

// Close closes the stream. Repeated calls are tolerated and return nil.
func (s *InputStream) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()
	return s.ch.Close()
}

// OutputStream is a byte-stream writer over a regular file. In append
// mode every Write targets the file's current end, regardless of how
// much has been written through this stream so far.
type OutputStream struct {
	ch     *Channel
	append bool
	mu     sync.Mutex
	pos    int64
	closed bool
}

// NewOutputStream opens a write-only stream over file. If append is
// true, every Write is positioned at the file's current size rather
// than at the stream's own running position.
func NewOutputStream(file *inode.File, append bool) *OutputStream {
	mode := Write
	if append {
		mode |= Append
	}
	return &OutputStream{ch: Open(file, mode), append: append}
}

// Write implements io.Writer.
func (s *OutputStream) Write(p []byte) (int, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return 0, io.ErrClosedPipe
	}
	s.mu.Unlock()

	if s.append {
		n, err := s.ch.Write(context.Background(), p)
		return n, err
	}

	s.mu.Lock()
	pos := s.pos
	s.mu.Unlock()
	n, err := s.ch.WriteAt(context.Background(), p, pos)
	if n > 0 {
		s.mu.Lock()
		s.pos += int64(n)
		s.mu.Unlock()
	}
	return n, err
}

// Flush is a no-op: every Write is already applied directly to the
// file's content. It tolerates being called on a closed stream.
func (s *OutputStream) Flush() error { return nil }

// Close closes the stream. Repeated calls are tolerated and return nil.
func (s *OutputStream) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()
	return s.ch.Close()
}
