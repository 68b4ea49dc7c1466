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

// Package inode holds the filesystem's shared File entity and its
// per-directory entry table, an arena-of-records design in place of a
// garbage-collected object graph with parent pointers: a File is a plain
// struct keyed by integer id, directories hold entries
// by reference rather than by owning pointer, and removal is driven by
// link-count plus open-handle bookkeeping instead of reachability.
//
// It plays the role perkeep's pkg/fs mutFile/mutDir pair plays for
// FUSE's in-memory mutable tree (pkg/fs/mut.go), generalized from a
// fixed two-kind (file/dir) model to three kinds (regular, directory,
// symlink) and POSIX-style link-count bookkeeping.
package inode

import (
	"sync"
	"time"

	"github.com/quartzfs/quartzfs/pkg/attr"
	"github.com/quartzfs/quartzfs/pkg/content"
	"github.com/quartzfs/quartzfs/pkg/qfclock"
)

// File is the filesystem's shared, reference-counted entity: a
// directory, a regular file, or a symbolic link. Exactly one of
// dir/content/target is populated, matching its Kind.
//
// File's content lock (Lock/RLock) stands in for a reentrant read/write
// lock: Go's sync.RWMutex is not reentrant, so channel code
// that needs several content steps under one hold (e.g. an append-mode
// write that reads the size and then writes) takes the lock once at the
// outermost call and works on the content directly, rather than relying
// on the lock itself to tolerate re-acquisition.
type File struct {
	id    int64
	kind  attr.Kind
	clock qfclock.Clock

	attrs *attr.Store

	createdTime time.Time

	timeMu       sync.Mutex
	accessTime   time.Time
	modifiedTime time.Time

	linkMu    sync.Mutex
	linkCount int

	contentMu sync.RWMutex

	// regular
	content   *content.Content
	openMu    sync.Mutex
	openCount int
	deleted   bool

	// directory
	dir *Directory

	// symlink
	target string

	// parentDir is set when this file is linked as a named child of a
	// directory; it is read under parentMu so ".." resolution and
	// unlink-time bookkeeping can run concurrently with lookups.
	parentMu  sync.RWMutex
	parentDir *Directory
}

// ID returns the file's stable, filesystem-unique id.
func (f *File) ID() int64 { return f.id }

// Kind reports whether f is a directory, regular file, or symlink.
func (f *File) Kind() attr.Kind { return f.kind }

// Attrs returns the file's attribute store.
func (f *File) Attrs() *attr.Store { return f.attrs }

// CreatedTime returns the time the file was created. It never changes.
func (f *File) CreatedTime() time.Time { return f.createdTime }

// AccessTime returns the last-access timestamp.
func (f *File) AccessTime() time.Time {
	f.timeMu.Lock()
	defer f.timeMu.Unlock()
	return f.accessTime
}

// ModifiedTime returns the last-modified timestamp.
func (f *File) ModifiedTime() time.Time {
	f.timeMu.Lock()
	defer f.timeMu.Unlock()
	return f.modifiedTime
}

// TouchAccess records now (from f's clock) as the access time, called by
// the channel layer after every successful read.
func (f *File) TouchAccess() {
	f.timeMu.Lock()
	defer f.timeMu.Unlock()
	f.accessTime = f.clock.Now()
}

// TouchModified records now as both the modified and access time, called
// after every successful write, truncate, or transfer.
func (f *File) TouchModified() {
	now := f.clock.Now()
	f.timeMu.Lock()
	defer f.timeMu.Unlock()
	f.modifiedTime = now
	f.accessTime = now
}

// Size returns the file's current size: content length for regulars,
// zero for directories and symlinks.
func (f *File) Size() int64 {
	if f.kind != attr.KindRegular {
		return 0
	}
	return f.content.Size()
}

// LinkCount returns the number of directory entries currently pointing
// at this file.
func (f *File) LinkCount() int {
	f.linkMu.Lock()
	defer f.linkMu.Unlock()
	return f.linkCount
}

func (f *File) incLink() {
	f.linkMu.Lock()
	f.linkCount++
	f.linkMu.Unlock()
}

func (f *File) decLink() int {
	f.linkMu.Lock()
	f.linkCount--
	n := f.linkCount
	f.linkMu.Unlock()
	return n
}

// Lock/Unlock/RLock/RUnlock expose the file's content lock to callers
// (pkg/channel, the watch service's polling scan) that must serialize
// reads and writes against a regular file's bytes.
func (f *File) Lock()    { f.contentMu.Lock() }
func (f *File) Unlock()  { f.contentMu.Unlock() }
func (f *File) RLock()   { f.contentMu.RLock() }
func (f *File) RUnlock() { f.contentMu.RUnlock() }

// CopyAttrsFrom replaces f's attribute values with a copy of src's, the
// attribute half of a copy that leaves content untouched; f's own id,
// kind, and timestamps are unaffected.
func (f *File) CopyAttrsFrom(src *File) {
	src.attrs.CopyTo(f.attrs)
}

// Content returns the regular file's block-backed byte storage. It
// panics if f is not a regular file; callers are expected to have
// checked Kind() first, as with a type assertion.
func (f *File) Content() *content.Content {
	if f.kind != attr.KindRegular {
		panic("inode: Content called on non-regular file")
	}
	return f.content
}

// Directory returns the directory's entry table. It panics if f is not
// a directory.
func (f *File) Directory() *Directory {
	if f.kind != attr.KindDirectory {
		panic("inode: Directory called on non-directory file")
	}
	return f.dir
}

// Target returns a symlink's stored target text. It panics if f is not
// a symlink.
func (f *File) Target() string {
	if f.kind != attr.KindSymlink {
		panic("inode: Target called on non-symlink file")
	}
	return f.target
}

// Open records a new open handle against this file, keeping it usable
// even if its link count later drops to zero.
func (f *File) Open() {
	f.openMu.Lock()
	f.openCount++
	f.openMu.Unlock()
}

// Close releases one open handle. It reports whether the file is now
// both unlinked and handle-free, i.e. eligible for destruction.
func (f *File) Close() bool {
	f.openMu.Lock()
	f.openCount--
	n := f.openCount
	f.openMu.Unlock()
	return n == 0 && f.LinkCount() == 0
}

// MarkDeleted records that the file has been unlinked while still open.
func (f *File) MarkDeleted() {
	f.openMu.Lock()
	f.deleted = true
	f.openMu.Unlock()
}

// Deleted reports whether the file has been unlinked while still open.
func (f *File) Deleted() bool {
	f.openMu.Lock()
	defer f.openMu.Unlock()
	return f.deleted
}

// ParentDirectory returns the directory this file is currently linked
// into under some name, or nil if it is unlinked (or is the filesystem
// root, whose parent is itself).
func (f *File) ParentDirectory() *Directory {
	f.parentMu.RLock()
	defer f.parentMu.RUnlock()
	return f.parentDir
}

func (f *File) setParentDirectory(d *Directory) {
	f.parentMu.Lock()
	f.parentDir = d
	f.parentMu.Unlock()
}
