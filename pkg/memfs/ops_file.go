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

package memfs

import (
	"errors"

	"github.com/quartzfs/quartzfs/pkg/attr"
	"github.com/quartzfs/quartzfs/pkg/channel"
	"github.com/quartzfs/quartzfs/pkg/inode"
	"github.com/quartzfs/quartzfs/pkg/qferr"
)

// OpenOption is the bitmask of channel-open options.
type OpenOption uint16

const (
	Read OpenOption = 1 << iota
	Write
	Append
	Create
	CreateNew
	TruncateExisting
	DeleteOnClose
)

func (o OpenOption) has(f OpenOption) bool { return o&f != 0 }

// Open resolves path and opens a channel onto it per opts, creating the
// file first if CREATE/CREATE_NEW is set and it does not yet exist.
func (fs *Filesystem) Open(rawPath string, opts OpenOption) (*channel.Channel, error) {
	if err := fs.checkOpen(); err != nil {
		return nil, err
	}
	p, err := fs.pathSvc.Parse(rawPath)
	if err != nil {
		return nil, qferr.Wrap("open", rawPath, err)
	}

	res, lookupErr := fs.resolver.Lookup(p, true)
	var file *inode.File
	switch {
	case lookupErr == nil && res.File != nil:
		if opts.has(CreateNew) {
			return nil, qferr.Wrap("open", rawPath, qferr.ErrFileAlreadyExists)
		}
		file = res.File
		if opts.has(TruncateExisting) && file.Kind() == attr.KindRegular {
			if err := file.Content().Truncate(0); err != nil {
				return nil, err
			}
		}
	case errors.Is(lookupErr, qferr.ErrNoSuchFile) && (opts.has(Create) || opts.has(CreateNew)):
		dir, name, err := fs.resolver.ResolveParent(p)
		if err != nil {
			return nil, qferr.Wrap("open", rawPath, err)
		}
		file = fs.factory.NewRegularFile()
		if err := dir.Link(name, file); err != nil {
			return nil, qferr.Wrap("open", rawPath, err)
		}
		fs.resolver.InvalidateParent(p)
	default:
		if lookupErr != nil {
			return nil, qferr.Wrap("open", rawPath, lookupErr)
		}
		return nil, qferr.Wrap("open", rawPath, qferr.ErrNoSuchFile)
	}

	if file.Kind() != attr.KindRegular {
		return nil, qferr.Wrap("open", rawPath, qferr.ErrIllegalArgument)
	}

	mode := channel.Mode(0)
	if opts.has(Read) {
		mode |= channel.Read
	}
	if opts.has(Write) || opts.has(Create) || opts.has(CreateNew) {
		mode |= channel.Write
	}
	if opts.has(Append) {
		mode |= channel.Append
	}

	ch := channel.Open(file, mode)
	fs.register(ch)
	ch.OnClose(func() { fs.unregister(ch) })

	if opts.has(DeleteOnClose) {
		parentDir, name, perr := fs.resolver.ResolveParent(p)
		if perr == nil {
			ch.OnClose(func() {
				fs.unregister(ch)
				_, _ = parentDir.Unlink(name)
			})
		}
	}

	return ch, nil
}

// CreateFile creates a new, empty regular file at path, failing with
// file-already-exists if an entry is already there.
func (fs *Filesystem) CreateFile(rawPath string) error {
	ch, err := fs.Open(rawPath, Write|CreateNew)
	if err != nil {
		return err
	}
	return ch.Close()
}

// Delete unlinks the entry named by path. Deleting a non-empty
// directory fails with illegal-argument; deleting an open regular file
// marks it deleted, leaving it usable through any handle still held.
func (fs *Filesystem) Delete(rawPath string) error {
	if err := fs.checkOpen(); err != nil {
		return err
	}
	p, err := fs.pathSvc.Parse(rawPath)
	if err != nil {
		return qferr.Wrap("delete", rawPath, err)
	}
	dir, name, err := fs.resolver.ResolveParent(p)
	if err != nil {
		return qferr.Wrap("delete", rawPath, err)
	}
	entry, ok := dir.Get(name)
	if !ok {
		return qferr.Wrap("delete", rawPath, qferr.ErrNoSuchFile)
	}
	if entry.File.Kind() == attr.KindDirectory && entry.File.Directory().Len() > 0 {
		return qferr.Wrap("delete", rawPath, qferr.ErrIllegalArgument)
	}
	file, err := dir.Unlink(name)
	if err != nil {
		return qferr.Wrap("delete", rawPath, err)
	}
	fs.resolver.InvalidateParent(p)
	if file.LinkCount() == 0 {
		file.MarkDeleted()
	}
	return nil
}
