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

// Package fuseadapt exposes a *memfs.Filesystem as a bazil.org/fuse node
// tree: every filesystem operation the kernel's FUSE client can issue is
// translated into one or more of memfs's path-based operations. It plays
// the role
// perkeep's pkg/fs.CamliFileSystem/mutDir/mutFile trio plays for FUSE,
// generalized from a permanode-addressed, mostly-read-only tree to a
// fully mutable one backed by memfs. Where mutDir.fullPath reconstructs
// a node's absolute path by walking parent pointers, nodes here carry
// their rendered path directly.
package fuseadapt

import (
	"context"
	"errors"
	"io"
	"os"
	"time"

	"bazil.org/fuse"
	fusefs "bazil.org/fuse/fs"

	"github.com/quartzfs/quartzfs/pkg/attr"
	"github.com/quartzfs/quartzfs/pkg/memfs"
	"github.com/quartzfs/quartzfs/pkg/qferr"
)

// FS adapts a memfs.Filesystem to bazil.org/fuse's fs.FS interface.
type FS struct {
	mem *memfs.Filesystem
}

// New returns an FS serving mem's root.
func New(mem *memfs.Filesystem) *FS { return &FS{mem: mem} }

// Root returns the node for mem's root path.
func (f *FS) Root() (fusefs.Node, error) {
	return &node{fs: f.mem, path: "/"}, nil
}

// node is one FUSE entry: the filesystem it belongs to and its rendered
// absolute path. Unlike mutDir/mutFile, a node holds no cached reference
// to its underlying *inode.File -- every call re-resolves through memfs,
// trading a lookup per call for never going stale across Rename/Delete.
type node struct {
	fs   *memfs.Filesystem
	path string
}

func join(dir, name string) string {
	if dir == "/" {
		return "/" + name
	}
	return dir + "/" + name
}

// translate maps qferr's sentinel errors to the fuse.Errno the kernel
// expects, the way mutDir/mutFile map camlistore errors to fuse errors.
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case qferr.Is(err, qferr.ErrNoSuchFile):
		return fuse.ENOENT
	case qferr.Is(err, qferr.ErrFileAlreadyExists):
		return fuse.EEXIST
	case qferr.Is(err, qferr.ErrNotADirectory):
		return fuse.Errno(fuse.ENOTDIR)
	case qferr.Is(err, qferr.ErrAccessDenied):
		return fuse.EPERM
	case qferr.Is(err, qferr.ErrIllegalArgument):
		return fuse.Errno(fuse.EINVAL)
	case qferr.Is(err, qferr.ErrNoSpace):
		return fuse.Errno(fuse.ENOSPC)
	default:
		return fuse.EIO
	}
}

// Attr fills out from the node's basic attribute view. readAttributes
// always resolves through a symlink (ops_attr.go), so a symlink node is
// detected first via Readlink and reported with its own size and mode
// rather than its target's, the way a FUSE client expects to see S_IFLNK
// entries without the kernel silently following them.
func (n *node) Attr(ctx context.Context, out *fuse.Attr) error {
	if target, err := n.fs.Readlink(n.path); err == nil {
		out.Mode = os.ModeSymlink | 0777
		out.Size = uint64(len(target))
		out.Nlink = 1
		return nil
	}

	a, err := n.fs.ReadAttributes(n.path, "basic:*")
	if err != nil {
		return translate(err)
	}
	out.Size = uint64(a["size"].(int64))
	out.Mtime = a["lastModifiedTime"].(time.Time)
	out.Ctime = a["lastModifiedTime"].(time.Time)
	out.Crtime = a["creationTime"].(time.Time)
	out.Atime = a["lastAccessTime"].(time.Time)
	out.Nlink = 1
	if a["isDirectory"].(bool) {
		out.Mode = os.ModeDir | 0755
		out.Nlink = 2
	} else {
		out.Mode = 0644
	}
	return nil
}

// Lookup resolves name within the directory node n. It probes via
// Readlink first, the way Attr does, so a dangling symlink still
// resolves to a node instead of ENOENT from following a broken target.
func (n *node) Lookup(ctx context.Context, name string) (fusefs.Node, error) {
	child := join(n.path, name)
	if _, err := n.fs.Readlink(child); err == nil {
		return &node{fs: n.fs, path: child}, nil
	}
	if _, err := n.fs.ReadAttributes(child, "basic:isDirectory"); err != nil {
		return nil, translate(err)
	}
	return &node{fs: n.fs, path: child}, nil
}

// ReadDirAll lists n's entries for the kernel's readdir.
func (n *node) ReadDirAll(ctx context.Context) ([]fuse.Dirent, error) {
	entries, err := n.fs.ReadDir(n.path)
	if err != nil {
		return nil, translate(err)
	}
	out := make([]fuse.Dirent, 0, len(entries))
	for _, e := range entries {
		out = append(out, fuse.Dirent{Name: e.Name, Type: direntType(e)})
	}
	return out, nil
}

func direntType(e memfs.DirEntry) fuse.DirentType {
	switch e.File.Kind() {
	case attr.KindDirectory:
		return fuse.DT_Dir
	case attr.KindSymlink:
		return fuse.DT_Link
	default:
		return fuse.DT_File
	}
}

// Open resolves the kernel's open flags into memfs.OpenOption and opens
// a channel onto n.
func (n *node) Open(ctx context.Context, req *fuse.OpenRequest, resp *fuse.OpenResponse) (fusefs.Handle, error) {
	opts := memfs.OpenOption(0)
	switch {
	case req.Flags.IsReadOnly():
		opts |= memfs.Read
	case req.Flags.IsWriteOnly():
		opts |= memfs.Write
	default:
		opts |= memfs.Read | memfs.Write
	}
	ch, err := n.fs.Open(n.path, opts)
	if err != nil {
		return nil, translate(err)
	}
	return &handle{ch: ch}, nil
}

// Create creates req.Name under n and opens a handle onto it.
func (n *node) Create(ctx context.Context, req *fuse.CreateRequest, resp *fuse.CreateResponse) (fusefs.Node, fusefs.Handle, error) {
	child := join(n.path, req.Name)
	ch, err := n.fs.Open(child, memfs.Read|memfs.Write|memfs.CreateNew)
	if err != nil {
		return nil, nil, translate(err)
	}
	return &node{fs: n.fs, path: child}, &handle{ch: ch}, nil
}

// Mkdir creates req.Name as a new directory under n.
func (n *node) Mkdir(ctx context.Context, req *fuse.MkdirRequest) (fusefs.Node, error) {
	child := join(n.path, req.Name)
	if err := n.fs.Mkdir(child); err != nil {
		return nil, translate(err)
	}
	return &node{fs: n.fs, path: child}, nil
}

// Remove unlinks req.Name from n.
func (n *node) Remove(ctx context.Context, req *fuse.RemoveRequest) error {
	return translate(n.fs.Delete(join(n.path, req.Name)))
}

// Symlink creates a new symlink named req.NewName under n, pointing at
// req.Target.
func (n *node) Symlink(ctx context.Context, req *fuse.SymlinkRequest) (fusefs.Node, error) {
	child := join(n.path, req.NewName)
	if err := n.fs.Symlink(child, req.Target); err != nil {
		return nil, translate(err)
	}
	return &node{fs: n.fs, path: child}, nil
}

// Readlink returns n's stored symlink target.
func (n *node) Readlink(ctx context.Context, req *fuse.ReadlinkRequest) (string, error) {
	target, err := n.fs.Readlink(n.path)
	if err != nil {
		return "", translate(err)
	}
	return target, nil
}

// Link creates req.NewName under n as a hard link to old.
func (n *node) Link(ctx context.Context, req *fuse.LinkRequest, old fusefs.Node) (fusefs.Node, error) {
	oldNode, ok := old.(*node)
	if !ok {
		return nil, fuse.EIO
	}
	child := join(n.path, req.NewName)
	if err := n.fs.Link(child, oldNode.path); err != nil {
		return nil, translate(err)
	}
	return &node{fs: n.fs, path: child}, nil
}

// Rename moves req.OldName under n to req.NewName under newDir.
func (n *node) Rename(ctx context.Context, req *fuse.RenameRequest, newDir fusefs.Node) error {
	dst, ok := newDir.(*node)
	if !ok {
		return fuse.EIO
	}
	src := join(n.path, req.OldName)
	target := join(dst.path, req.NewName)
	return translate(n.fs.Move(src, target, memfs.ReplaceExisting))
}

// Setattr applies the kernel's requested attribute changes, presently
// only truncation: memfs derives every other basic attribute from the
// channel/content layer rather than accepting direct writes.
func (n *node) Setattr(ctx context.Context, req *fuse.SetattrRequest, resp *fuse.SetattrResponse) error {
	if !req.Valid.Size() {
		return nil
	}
	ch, err := n.fs.Open(n.path, memfs.Write)
	if err != nil {
		return translate(err)
	}
	defer ch.Close()
	return translate(ch.Truncate(ctx, int64(req.Size)))
}

// handle is an open file's FUSE handle, backed by a memfs channel.
type handle struct {
	ch interface {
		ReadAt(ctx context.Context, p []byte, off int64) (int, error)
		WriteAt(ctx context.Context, p []byte, off int64) (int, error)
		Truncate(ctx context.Context, size int64) error
		Close() error
	}
}

// Read services the kernel's pread.
func (h *handle) Read(ctx context.Context, req *fuse.ReadRequest, resp *fuse.ReadResponse) error {
	buf := make([]byte, req.Size)
	n, err := h.ch.ReadAt(ctx, buf, req.Offset)
	if err != nil && !errors.Is(err, io.EOF) {
		return translate(err)
	}
	resp.Data = buf[:n]
	return nil
}

// Write services the kernel's pwrite.
func (h *handle) Write(ctx context.Context, req *fuse.WriteRequest, resp *fuse.WriteResponse) error {
	n, err := h.ch.WriteAt(ctx, req.Data, req.Offset)
	if err != nil {
		return translate(err)
	}
	resp.Size = n
	return nil
}

// Release closes the underlying channel when the kernel is done with
// the handle.
func (h *handle) Release(ctx context.Context, req *fuse.ReleaseRequest) error {
	return translate(h.ch.Close())
}

var (
	_ fusefs.FS                 = (*FS)(nil)
	_ fusefs.Node               = (*node)(nil)
	_ fusefs.NodeStringLookuper = (*node)(nil)
	_ fusefs.HandleReadDirAller = (*node)(nil)
	_ fusefs.NodeOpener         = (*node)(nil)
	_ fusefs.NodeCreater        = (*node)(nil)
	_ fusefs.NodeMkdirer        = (*node)(nil)
	_ fusefs.NodeRemover        = (*node)(nil)
	_ fusefs.NodeSymlinker      = (*node)(nil)
	_ fusefs.NodeReadlinker     = (*node)(nil)
	_ fusefs.NodeLinker         = (*node)(nil)
	_ fusefs.NodeRenamer        = (*node)(nil)
	_ fusefs.NodeSetattrer      = (*node)(nil)
	_ fusefs.HandleReader       = (*handle)(nil)
	_ fusefs.HandleWriter       = (*handle)(nil)
	_ fusefs.HandleReleaser     = (*handle)(nil)
)
