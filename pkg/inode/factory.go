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

package inode

import (
	"sync/atomic"

	"github.com/quartzfs/quartzfs/pkg/attr"
	"github.com/quartzfs/quartzfs/pkg/block"
	"github.com/quartzfs/quartzfs/pkg/content"
	"github.com/quartzfs/quartzfs/pkg/qfclock"
)

// Factory assigns ids and seeds attribute defaults for every file the
// filesystem creates: it is the single path through which File records
// come into existence.
type Factory struct {
	clock     qfclock.Clock
	pool      *block.Pool
	attrs     *attr.Service
	overrides map[string]interface{}

	nextID int64
}

// NewFactory returns a Factory. overrides holds "view:attr" default
// value overrides applied to every new file's attribute store.
func NewFactory(clock qfclock.Clock, pool *block.Pool, attrs *attr.Service, overrides map[string]interface{}) *Factory {
	return &Factory{clock: clock, pool: pool, attrs: attrs, overrides: overrides}
}

func (f *Factory) newBase(kind attr.Kind) *File {
	now := f.clock.Now()
	file := &File{
		id:           atomic.AddInt64(&f.nextID, 1),
		kind:         kind,
		clock:        f.clock,
		attrs:        attr.NewStore(),
		createdTime:  now,
		accessTime:   now,
		modifiedTime: now,
	}
	f.attrs.InitStore(file.attrs, f.overrides)
	return file
}

// NewRegularFile returns a new, unlinked regular file with empty content.
func (f *Factory) NewRegularFile() *File {
	file := f.newBase(attr.KindRegular)
	file.content = content.New(f.pool)
	return file
}

// NewSymlink returns a new, unlinked symbolic link whose stored target
// is target (rendered path text, not yet resolved).
func (f *Factory) NewSymlink(target string) *File {
	file := f.newBase(attr.KindSymlink)
	file.target = target
	return file
}

// NewDirectory returns a new, unlinked directory with a link count of 1
// (its own self entry). Directory.Link raises this to 2 once the
// directory is linked into a parent.
func (f *Factory) NewDirectory() *File {
	file := f.newBase(attr.KindDirectory)
	file.dir = newDirectory()
	file.dir.self = file
	file.linkCount = 1
	return file
}

// NewRoot returns a directory that is its own parent, the way a
// filesystem root conventionally has no containing directory: link
// count 2 (self plus its own self-referential "parent's entry").
func (f *Factory) NewRoot() *File {
	file := f.NewDirectory()
	file.dir.parent = file
	file.linkCount = 2
	return file
}
