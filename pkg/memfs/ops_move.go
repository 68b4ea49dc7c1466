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
	"github.com/quartzfs/quartzfs/pkg/attr"
	"github.com/quartzfs/quartzfs/pkg/inode"
	"github.com/quartzfs/quartzfs/pkg/qferr"
	"github.com/quartzfs/quartzfs/pkg/vfname"
)

// CopyOption is the bitmask of move/copy options.
type CopyOption uint8

const (
	ReplaceExisting CopyOption = 1 << iota
	CopyAttributes
	AtomicMove
)

func (o CopyOption) has(f CopyOption) bool { return o&f != 0 }

// prepareDestination resolves dstPath's containing directory and final
// name, rejecting an existing entry there unless REPLACE_EXISTING is set,
// in which case a pre-existing non-directory entry is unlinked first so
// the caller can link the new one in its place.
func (fs *Filesystem) prepareDestination(dstPath string, opts CopyOption) (*inode.Directory, vfname.Name, error) {
	p, err := fs.pathSvc.Parse(dstPath)
	if err != nil {
		return nil, vfname.Name{}, err
	}
	dir, name, err := fs.resolver.ResolveParent(p)
	if err != nil {
		return nil, vfname.Name{}, err
	}
	if existing, ok := dir.Get(name); ok {
		if !opts.has(ReplaceExisting) {
			return nil, vfname.Name{}, qferr.ErrFileAlreadyExists
		}
		if existing.File.Kind() == attr.KindDirectory && existing.File.Directory().Len() > 0 {
			return nil, vfname.Name{}, qferr.ErrIllegalArgument
		}
		if _, err := dir.Unlink(name); err != nil {
			return nil, vfname.Name{}, err
		}
	}
	fs.resolver.InvalidateParent(p)
	return dir, name, nil
}

// Move relinks the entry at srcPath under dstPath's parent and name,
// without duplicating content: the same *inode.File is linked at the new
// location and unlinked from the old one. ATOMIC_MOVE carries no
// additional effect beyond REPLACE_EXISTING/COPY_ATTRIBUTES in a
// single-process, in-memory filesystem with no concurrent external
// observers of a partial rename; it is accepted purely for interface
// compatibility.
func (fs *Filesystem) Move(srcPath, dstPath string, opts CopyOption) error {
	if err := fs.checkOpen(); err != nil {
		return err
	}
	sp, err := fs.pathSvc.Parse(srcPath)
	if err != nil {
		return qferr.Wrap("move", srcPath, err)
	}
	srcDir, srcName, err := fs.resolver.ResolveParent(sp)
	if err != nil {
		return qferr.Wrap("move", srcPath, err)
	}
	srcEntry, ok := srcDir.Get(srcName)
	if !ok {
		return qferr.Wrap("move", srcPath, qferr.ErrNoSuchFile)
	}

	dstDir, dstName, err := fs.prepareDestination(dstPath, opts)
	if err != nil {
		return qferr.Wrap("move", dstPath, err)
	}

	if err := dstDir.Link(dstName, srcEntry.File); err != nil {
		return qferr.Wrap("move", dstPath, err)
	}
	if _, err := srcDir.Unlink(srcName); err != nil {
		return qferr.Wrap("move", srcPath, err)
	}
	fs.resolver.InvalidateParent(sp)
	return nil
}

// Copy creates an independent regular-file copy of srcPath at dstPath:
// a new file with its own block list and bytes, optionally carrying
// over srcPath's attribute values when COPY_ATTRIBUTES is set. Only
// regular files may be copied; copying a directory or symlink fails with
// illegal-argument.
func (fs *Filesystem) Copy(srcPath, dstPath string, opts CopyOption) error {
	if err := fs.checkOpen(); err != nil {
		return err
	}
	sp, err := fs.pathSvc.Parse(srcPath)
	if err != nil {
		return qferr.Wrap("copy", srcPath, err)
	}
	res, err := fs.resolver.Lookup(sp, true)
	if err != nil {
		return qferr.Wrap("copy", srcPath, err)
	}
	if res.File.Kind() != attr.KindRegular {
		return qferr.Wrap("copy", srcPath, qferr.ErrIllegalArgument)
	}

	dstDir, dstName, err := fs.prepareDestination(dstPath, opts)
	if err != nil {
		return qferr.Wrap("copy", dstPath, err)
	}

	target := fs.factory.NewRegularFile()
	if err := res.File.Content().CopyContentTo(target.Content()); err != nil {
		return qferr.Wrap("copy", dstPath, err)
	}
	if opts.has(CopyAttributes) {
		target.CopyAttrsFrom(res.File)
	}
	if err := dstDir.Link(dstName, target); err != nil {
		return qferr.Wrap("copy", dstPath, err)
	}
	return nil
}
