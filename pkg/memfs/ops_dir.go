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
	"strings"

	"github.com/quartzfs/quartzfs/pkg/attr"
	"github.com/quartzfs/quartzfs/pkg/inode"
	"github.com/quartzfs/quartzfs/pkg/qferr"
	"github.com/quartzfs/quartzfs/pkg/watch"
)

// DirEntry is one entry of a directory listing: its display name and the
// file it resolves to.
type DirEntry struct {
	Name string
	File *inode.File
}

// Mkdir creates a new, empty directory at path, failing with
// file-already-exists if an entry is already there and no-such-file if
// the parent does not exist.
func (fs *Filesystem) Mkdir(rawPath string) error {
	if err := fs.checkOpen(); err != nil {
		return err
	}
	p, err := fs.pathSvc.Parse(rawPath)
	if err != nil {
		return qferr.Wrap("mkdir", rawPath, err)
	}
	dir, name, err := fs.resolver.ResolveParent(p)
	if err != nil {
		return qferr.Wrap("mkdir", rawPath, err)
	}
	d := fs.factory.NewDirectory()
	if err := dir.Link(name, d); err != nil {
		return qferr.Wrap("mkdir", rawPath, err)
	}
	fs.resolver.InvalidateParent(p)
	return nil
}

// ReadDir resolves path to a directory and returns its entries sorted by
// display name, excluding "." and "..".
func (fs *Filesystem) ReadDir(rawPath string) ([]DirEntry, error) {
	if err := fs.checkOpen(); err != nil {
		return nil, err
	}
	p, err := fs.pathSvc.Parse(rawPath)
	if err != nil {
		return nil, qferr.Wrap("readdir", rawPath, err)
	}
	res, err := fs.resolver.Lookup(p, false)
	if err != nil {
		return nil, qferr.Wrap("readdir", rawPath, err)
	}
	if res.File.Kind() != attr.KindDirectory {
		return nil, qferr.Wrap("readdir", rawPath, qferr.ErrNotADirectory)
	}
	snap := res.File.Directory().Snapshot()
	out := make([]DirEntry, len(snap))
	for i, e := range snap {
		out[i] = DirEntry{Name: e.Name.Display, File: e.File}
	}
	return out, nil
}

// Walk visits path and every entry beneath it, depth-first, calling fn
// with each entry's rendered path and file. It stops and returns fn's
// error the first time fn returns one.
func (fs *Filesystem) Walk(rawPath string, fn func(path string, file *inode.File) error) error {
	if err := fs.checkOpen(); err != nil {
		return err
	}
	p, err := fs.pathSvc.Parse(rawPath)
	if err != nil {
		return qferr.Wrap("walk", rawPath, err)
	}
	res, err := fs.resolver.Lookup(p, false)
	if err != nil {
		return qferr.Wrap("walk", rawPath, err)
	}
	return fs.walk(fs.pathSvc.String(p), res.File, fn)
}

func (fs *Filesystem) walk(rendered string, file *inode.File, fn func(string, *inode.File) error) error {
	if err := fn(rendered, file); err != nil {
		return err
	}
	if file.Kind() != attr.KindDirectory {
		return nil
	}
	sep := string(fs.pathSvc.Flavor().Separator())
	for _, e := range file.Directory().Snapshot() {
		child := rendered + sep + e.Name.Display
		if rendered == "" {
			child = e.Name.Display
		} else if strings.HasSuffix(rendered, sep) {
			child = rendered + e.Name.Display
		}
		if err := fs.walk(child, e.File, fn); err != nil {
			return err
		}
	}
	return nil
}

// Watch registers dir (resolved from path) with the filesystem's watch
// service for the given event kinds, returning the key the caller polls.
func (fs *Filesystem) Watch(rawPath string, kinds ...watch.Kind) (*watch.Key, error) {
	if err := fs.checkOpen(); err != nil {
		return nil, err
	}
	p, err := fs.pathSvc.Parse(rawPath)
	if err != nil {
		return nil, qferr.Wrap("watch", rawPath, err)
	}
	res, err := fs.resolver.Lookup(p, false)
	if err != nil {
		return nil, qferr.Wrap("watch", rawPath, err)
	}
	if res.File.Kind() != attr.KindDirectory {
		return nil, qferr.Wrap("watch", rawPath, qferr.ErrNotADirectory)
	}
	return fs.watchSvc.Register(res.File.Directory(), kinds...)
}
