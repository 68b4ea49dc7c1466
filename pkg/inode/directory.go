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
	"sort"
	"sync"

	"github.com/quartzfs/quartzfs/pkg/attr"
	"github.com/quartzfs/quartzfs/pkg/qferr"
	"github.com/quartzfs/quartzfs/pkg/vfname"
)

// DirEntry names one directory entry: the name under which a file is
// reachable from its parent, and the file it resolves to.
type DirEntry struct {
	Name vfname.Name
	File *File
}

// Directory is one directory's name-to-file table. The self (".") and
// parent ("..") entries are held directly rather than through the
// table, since they are never linked or unlinked as ordinary entries;
// everything else lives in a canonical-name-keyed map, which is Go's
// native open-addressed hash table and needs no hand-rolled
// resize/rehash logic to scale to tens of thousands of entries.
type Directory struct {
	mu      sync.RWMutex
	entries map[string]*DirEntry
	self    *File
	parent  *File
}

func newDirectory() *Directory {
	return &Directory{entries: make(map[string]*DirEntry)}
}

// Get returns the entry named name, handling "." and ".." directly.
func (d *Directory) Get(name vfname.Name) (DirEntry, bool) {
	if name.IsSelf() {
		return DirEntry{Name: name, File: d.self}, true
	}
	d.mu.RLock()
	defer d.mu.RUnlock()
	if name.IsParent() {
		if d.parent == nil {
			return DirEntry{}, false
		}
		return DirEntry{Name: name, File: d.parent}, true
	}
	e, ok := d.entries[name.Canonical]
	if !ok {
		return DirEntry{}, false
	}
	return *e, true
}

// Link adds a new entry, rejecting reserved names and duplicates. It
// maintains link counts: the linked file gains one link, and if it is
// itself a directory, this directory gains one link too (its new
// child's ".." now points back at it).
func (d *Directory) Link(name vfname.Name, file *File) error {
	if name.IsReserved() {
		return qferr.ErrIllegalArgument
	}
	d.mu.Lock()
	if _, exists := d.entries[name.Canonical]; exists {
		d.mu.Unlock()
		return qferr.ErrFileAlreadyExists
	}
	d.entries[name.Canonical] = &DirEntry{Name: name, File: file}
	d.mu.Unlock()

	file.incLink()
	if file.Kind() == attr.KindDirectory {
		file.Directory().setParent(d.self)
		file.setParentDirectory(d)
		d.self.incLink()
	}
	return nil
}

// Unlink removes the entry named name, rejecting reserved and missing
// names, and reverses the link-count bookkeeping Link performed. The
// removed file's own self entry (if it is a directory) persists and
// stays usable through any reference already held by a caller.
func (d *Directory) Unlink(name vfname.Name) (*File, error) {
	if name.IsReserved() {
		return nil, qferr.ErrIllegalArgument
	}
	d.mu.Lock()
	e, ok := d.entries[name.Canonical]
	if !ok {
		d.mu.Unlock()
		return nil, qferr.ErrNoSuchFile
	}
	delete(d.entries, name.Canonical)
	d.mu.Unlock()

	e.File.decLink()
	if e.File.Kind() == attr.KindDirectory {
		e.File.Directory().clearParent()
		e.File.setParentDirectory(nil)
		d.self.decLink()
	}
	return e.File, nil
}

// Snapshot returns every non-self, non-parent entry sorted
// lexicographically by display name.
func (d *Directory) Snapshot() []DirEntry {
	d.mu.RLock()
	out := make([]DirEntry, 0, len(d.entries))
	for _, e := range d.entries {
		out = append(out, *e)
	}
	d.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].Name.Display < out[j].Name.Display })
	return out
}

// Len reports the number of non-self, non-parent entries.
func (d *Directory) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.entries)
}

func (d *Directory) setParent(parent *File) {
	d.mu.Lock()
	d.parent = parent
	d.mu.Unlock()
}

func (d *Directory) clearParent() {
	d.mu.Lock()
	d.parent = nil
	d.mu.Unlock()
}
