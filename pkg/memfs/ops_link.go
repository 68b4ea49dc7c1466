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
	"github.com/quartzfs/quartzfs/pkg/qferr"
)

// Symlink creates a new symbolic link at linkPath whose stored target is
// the raw text target (not resolved at creation time).
func (fs *Filesystem) Symlink(linkPath, target string) error {
	if err := fs.checkOpen(); err != nil {
		return err
	}
	p, err := fs.pathSvc.Parse(linkPath)
	if err != nil {
		return qferr.Wrap("symlink", linkPath, err)
	}
	dir, name, err := fs.resolver.ResolveParent(p)
	if err != nil {
		return qferr.Wrap("symlink", linkPath, err)
	}
	link := fs.factory.NewSymlink(target)
	if err := dir.Link(name, link); err != nil {
		return qferr.Wrap("symlink", linkPath, err)
	}
	fs.resolver.InvalidateParent(p)
	return nil
}

// Readlink resolves linkPath without following its final component and
// returns the symlink's stored target text.
func (fs *Filesystem) Readlink(linkPath string) (string, error) {
	if err := fs.checkOpen(); err != nil {
		return "", err
	}
	p, err := fs.pathSvc.Parse(linkPath)
	if err != nil {
		return "", qferr.Wrap("readlink", linkPath, err)
	}
	res, err := fs.resolver.Lookup(p, true)
	if err != nil {
		return "", qferr.Wrap("readlink", linkPath, err)
	}
	if res.File.Kind() != attr.KindSymlink {
		return "", qferr.Wrap("readlink", linkPath, qferr.ErrIllegalArgument)
	}
	return res.File.Target(), nil
}

// Link creates a new hard link named linkPath pointing at the existing,
// non-directory file named by existingPath, rejecting directory targets
// the way POSIX link(2) does.
func (fs *Filesystem) Link(linkPath, existingPath string) error {
	if err := fs.checkOpen(); err != nil {
		return err
	}
	ep, err := fs.pathSvc.Parse(existingPath)
	if err != nil {
		return qferr.Wrap("link", existingPath, err)
	}
	res, err := fs.resolver.Lookup(ep, true)
	if err != nil {
		return qferr.Wrap("link", existingPath, err)
	}
	if res.File.Kind() == attr.KindDirectory {
		return qferr.Wrap("link", linkPath, qferr.ErrIllegalArgument)
	}

	lp, err := fs.pathSvc.Parse(linkPath)
	if err != nil {
		return qferr.Wrap("link", linkPath, err)
	}
	dir, name, err := fs.resolver.ResolveParent(lp)
	if err != nil {
		return qferr.Wrap("link", linkPath, err)
	}
	if err := dir.Link(name, res.File); err != nil {
		return qferr.Wrap("link", linkPath, err)
	}
	fs.resolver.InvalidateParent(lp)
	return nil
}
