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

// Package tree resolves vpath.Path values against a set of named root
// directories, chasing symbolic links as it walks and bounding the
// number of hops it will follow. It plays the role perkeep's
// pkg/fs/roots.go plays for a FUSE tree rooted at several named,
// independently-mounted subtrees, generalized with the symlink-aware
// walk a POSIX-faithful filesystem requires.
package tree

import (
	"github.com/quartzfs/quartzfs/pkg/attr"
	"github.com/quartzfs/quartzfs/pkg/inode"
	"github.com/quartzfs/quartzfs/pkg/qferr"
	"github.com/quartzfs/quartzfs/pkg/vfname"
	"github.com/quartzfs/quartzfs/pkg/vpath"
)

// DefaultMaxHops is the default bound on symbolic-link hops during a
// single lookup, loosely matching the bound most POSIX resolvers enforce.
const DefaultMaxHops = 40

// Result is what a Lookup resolves a path to: the file it names, the
// directory that directly contains it, and the name under which it was
// found there. Dir and Name remain valid (for a subsequent create)
// even when File is nil because the final component doesn't exist.
type Result struct {
	File *inode.File
	Dir  *inode.Directory
	Name vfname.Name
}

// Resolver walks vpath.Path values to inode.File entries across a set of
// named roots and a default working directory.
type Resolver struct {
	svc     *vpath.Service
	roots   map[string]*inode.File
	workDir *inode.File
	maxHops int
	cache   *dirCache
}

// Config configures a Resolver.
type Config struct {
	Service    *vpath.Service
	Roots      map[string]*inode.File
	WorkingDir *inode.File
	MaxHops    int // 0 means DefaultMaxHops
	CacheSize  int // 0 disables the recency cache
}

// NewResolver builds a Resolver from cfg.
func NewResolver(cfg Config) *Resolver {
	maxHops := cfg.MaxHops
	if maxHops <= 0 {
		maxHops = DefaultMaxHops
	}
	roots := make(map[string]*inode.File, len(cfg.Roots))
	for k, v := range cfg.Roots {
		roots[k] = v
	}
	return &Resolver{
		svc:     cfg.Service,
		roots:   roots,
		workDir: cfg.WorkingDir,
		maxHops: maxHops,
		cache:   newDirCache(cfg.CacheSize),
	}
}

// Roots returns the configured root tokens.
func (r *Resolver) Roots() []string {
	out := make([]string, 0, len(r.roots))
	for k := range r.roots {
		out = append(out, k)
	}
	return out
}

func selfName() vfname.Name {
	return vfname.Name{Display: vfname.Self, Canonical: vfname.Self}
}

func (r *Resolver) baseDir(p vpath.Path) (*inode.Directory, error) {
	if p.IsAbsolute() {
		root, ok := r.roots[p.Root()]
		if !ok {
			return nil, qferr.ErrNoSuchFile
		}
		return root.Directory(), nil
	}
	if r.workDir == nil {
		return nil, qferr.ErrNoSuchFile
	}
	return r.workDir.Directory(), nil
}

// Lookup resolves p to the file it names. If nofollowFinal is true and
// the final path component is itself a symbolic link, the link is
// returned unresolved rather than followed; every intermediate
// component (and the final one when nofollowFinal is false) is followed
// through symlinks, up to the Resolver's hop bound.
func (r *Resolver) Lookup(p vpath.Path, nofollowFinal bool) (Result, error) {
	dir, err := r.baseDir(p)
	if err != nil {
		return Result{}, err
	}
	return r.resolve(dir, p.RawNames(), nofollowFinal, 0)
}

func (r *Resolver) resolve(dir *inode.Directory, names []vfname.Name, nofollowFinal bool, hops int) (Result, error) {
	if len(names) == 0 {
		self, ok := dir.Get(selfName())
		if !ok {
			return Result{}, qferr.ErrNoSuchFile
		}
		return Result{File: self.File, Dir: dir, Name: self.Name}, nil
	}

	cur := dir
	for i, n := range names {
		last := i == len(names)-1
		entry, ok := cur.Get(n)
		if !ok {
			return Result{Dir: cur, Name: n}, qferr.ErrNoSuchFile
		}
		file := entry.File

		if file.Kind() == attr.KindSymlink && (!last || !nofollowFinal) {
			hops++
			if hops > r.maxHops {
				return Result{}, qferr.ErrLoop
			}
			targetPath, err := r.svc.Parse(file.Target())
			if err != nil {
				return Result{}, err
			}
			nextDir := cur
			if targetPath.IsAbsolute() {
				root, ok := r.roots[targetPath.Root()]
				if !ok {
					return Result{}, qferr.ErrNoSuchFile
				}
				nextDir = root.Directory()
			}
			remaining := append(append([]vfname.Name(nil), targetPath.RawNames()...), names[i+1:]...)
			return r.resolve(nextDir, remaining, nofollowFinal, hops)
		}

		if last {
			return Result{File: file, Dir: cur, Name: n}, nil
		}
		if file.Kind() != attr.KindDirectory {
			return Result{Dir: cur, Name: n}, qferr.ErrNotADirectory
		}
		cur = file.Directory()
	}
	return Result{}, qferr.ErrNoSuchFile
}

// ResolveParent resolves every component of p except the last, returning
// the directory that would contain (or already contains) the final name,
// and that final name itself unresolved. It is the entry point for
// create/link/unlink operations, which need the containing directory
// regardless of whether the final name currently exists.
func (r *Resolver) ResolveParent(p vpath.Path) (*inode.Directory, vfname.Name, error) {
	names := p.RawNames()
	if len(names) == 0 {
		return nil, vfname.Name{}, qferr.ErrIllegalArgument
	}
	dir, err := r.baseDir(p)
	if err != nil {
		return nil, vfname.Name{}, err
	}
	if len(names) == 1 {
		return dir, names[0], nil
	}

	cacheKey := ""
	if parent, ok := p.Parent(); ok {
		cacheKey = r.svc.String(parent)
		if cached, hit := r.cache.get(cacheKey); hit {
			return cached, names[len(names)-1], nil
		}
	}

	res, err := r.resolve(dir, names[:len(names)-1], false, 0)
	if err != nil {
		return nil, vfname.Name{}, err
	}
	if res.File.Kind() != attr.KindDirectory {
		return nil, vfname.Name{}, qferr.ErrNotADirectory
	}
	parentDir := res.File.Directory()
	if cacheKey != "" {
		r.cache.add(cacheKey, parentDir)
	}
	return parentDir, names[len(names)-1], nil
}

// InvalidateParent drops any cached parent-directory entry for p's
// parent path, called after an unlink so a subsequent create under the
// same path doesn't serve a directory that's since been removed and
// replaced. It also drops p's own cache key: if p was itself a
// directory, a prior lookup of one of its children may have cached it
// under its own path, and that entry would otherwise survive p's
// removal.
func (r *Resolver) InvalidateParent(p vpath.Path) {
	if parent, ok := p.Parent(); ok {
		r.cache.invalidate(r.svc.String(parent))
	}
	r.cache.invalidate(r.svc.String(p))
}
