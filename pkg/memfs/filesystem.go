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

// Package memfs assembles every other package into a single in-memory
// filesystem, with a Config builder and a top-level programmatic
// interface. It plays the role
// perkeep's pkg/fs.CamliFileSystem plays as the facade FUSE talks to,
// generalized from a read-only blob-backed tree to a fully mutable,
// block-backed one, and composed from quartzfs's own lower packages
// instead of perkeep's blobref/schema/lru stack.
package memfs

import (
	"fmt"
	"io"
	"log"
	"math"
	"sync"

	"github.com/quartzfs/quartzfs/pkg/attr"
	"github.com/quartzfs/quartzfs/pkg/block"
	"github.com/quartzfs/quartzfs/pkg/inode"
	"github.com/quartzfs/quartzfs/pkg/qfclock"
	"github.com/quartzfs/quartzfs/pkg/qferr"
	"github.com/quartzfs/quartzfs/pkg/tree"
	"github.com/quartzfs/quartzfs/pkg/vpath"
	"github.com/quartzfs/quartzfs/pkg/watch"

	"github.com/google/uuid"
)

// Filesystem is the top-level, in-memory filesystem: a disk, an
// attribute service, a named-root directory tree, a path service, a
// watch service, and an open-resource registry with close-once
// semantics.
type Filesystem struct {
	cfg *Config

	pathSvc  *vpath.Service
	pool     *block.Pool
	attrSvc  *attr.Service
	factory  *inode.Factory
	resolver *tree.Resolver
	watchSvc *watch.Service

	roots   map[string]*inode.File
	workDir *inode.File

	fileKey string // opaque per-filesystem device identifier (basic:fileKey)

	mu        sync.Mutex
	closed    bool
	resources map[io.Closer]struct{}
	onClose   func()
}

// closable is anything the registry can close: channels, streams, and
// the watch service all satisfy io.Closer already.
type closable = io.Closer

// New builds a Filesystem from cfg.
func New(cfg *Config) (*Filesystem, error) {
	attrSvc, err := attr.NewService(cfg.AttrProviders)
	if err != nil {
		return nil, err
	}

	maxSize := cfg.MaxSize
	if maxSize == 0 {
		maxSize = math.MaxInt64 // zero means unbounded
	}
	pool := block.New(cfg.BlockSize, maxSize, cfg.MaxCacheSize)
	factory := inode.NewFactory(cfg.Clock, pool, attrSvc, cfg.AttrDefaults)

	pathSvc := vpath.NewService(cfg.Flavor, cfg.CanonicalNormalization, cfg.DisplayNormalization, cfg.PathEqualityUsesCanon)

	roots := make(map[string]*inode.File, len(cfg.Roots))
	for _, r := range cfg.Roots {
		root := factory.NewRoot()
		roots[pathSvc.Flavor().RenderRoot(r)] = root
	}

	fs := &Filesystem{
		cfg:       cfg,
		pathSvc:   pathSvc,
		pool:      pool,
		attrSvc:   attrSvc,
		factory:   factory,
		roots:     roots,
		resources: make(map[io.Closer]struct{}),
		fileKey:   uuid.NewString(),
	}

	wdPath, err := pathSvc.Parse(cfg.WorkingDirectory)
	if err != nil {
		return nil, err
	}
	wdRoot, ok := roots[wdPath.Root()]
	if !ok {
		return nil, fmt.Errorf("memfs: %w: working directory root %q not configured", qferr.ErrIllegalArgument, wdPath.Root())
	}
	wdDir := wdRoot
	for _, n := range wdPath.RawNames() {
		entry, ok := wdDir.Directory().Get(n)
		if !ok {
			d := factory.NewDirectory()
			if err := wdDir.Directory().Link(n, d); err != nil {
				return nil, err
			}
			wdDir = d
			continue
		}
		if entry.File.Kind() != attr.KindDirectory {
			return nil, fmt.Errorf("memfs: %w: working directory component is not a directory", qferr.ErrIllegalArgument)
		}
		wdDir = entry.File
	}
	fs.workDir = wdDir

	fs.resolver = tree.NewResolver(tree.Config{
		Service:    pathSvc,
		Roots:      roots,
		WorkingDir: wdDir,
		CacheSize:  256,
	})

	fs.watchSvc = watch.New(watch.Config{Interval: cfg.WatchInterval, Logger: cfg.Logger})

	return fs, nil
}

// Clock returns the filesystem's time source.
func (fs *Filesystem) Clock() qfclock.Clock { return fs.cfg.Clock }

// PathService returns the filesystem's path service, for callers that
// need to parse or render paths outside of a programmatic operation.
func (fs *Filesystem) PathService() *vpath.Service { return fs.pathSvc }

// AttrService returns the filesystem's attribute service.
func (fs *Filesystem) AttrService() *attr.Service { return fs.attrSvc }

// BlockPool returns the filesystem's block pool, mainly for tests and
// diagnostics asserting disk accounting invariants.
func (fs *Filesystem) BlockPool() *block.Pool { return fs.pool }

// WatchService returns the filesystem's watch service.
func (fs *Filesystem) WatchService() *watch.Service { return fs.watchSvc }

// FileKey returns the opaque per-filesystem device identifier exposed
// through the basic:fileKey attribute.
func (fs *Filesystem) FileKey() string { return fs.fileKey }

// Roots returns the configured root tokens, mirroring perkeep's
// pkg/fs/roots.go at-mount-time root listing.
func (fs *Filesystem) Roots() []string {
	out := make([]string, 0, len(fs.roots))
	for r := range fs.roots {
		out = append(out, r)
	}
	return out
}

func (fs *Filesystem) logDebug(format string, args ...interface{}) {
	if fs.cfg.Debug {
		fs.cfg.Logger.Printf(format, args...)
	}
}

func (fs *Filesystem) logger() *log.Logger { return fs.cfg.Logger }

// checkOpen reports closed-filesystem if the filesystem has already been
// closed.
func (fs *Filesystem) checkOpen() error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	if fs.closed {
		return qferr.ErrClosedFilesystem
	}
	return nil
}

// register adds r to the open-resource registry, so Close reaches it.
func (fs *Filesystem) register(r closable) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	if fs.closed {
		return
	}
	fs.resources[r] = struct{}{}
}

func (fs *Filesystem) unregister(r closable) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	delete(fs.resources, r)
}

// OnClose registers a hook invoked exactly once when the filesystem is
// closed, after every registered resource has been closed.
func (fs *Filesystem) OnClose(hook func()) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	fs.onClose = hook
}

// closeError aggregates the errors from closing every registered
// resource: the first becomes the primary error, the rest are attached
// as suppressed.
type closeError struct {
	primary    error
	suppressed []error
}

func (e *closeError) Error() string {
	s := e.primary.Error()
	for _, sup := range e.suppressed {
		s += "; suppressed: " + sup.Error()
	}
	return s
}

func (e *closeError) Unwrap() error { return e.primary }

// Close closes every registered resource (channels, streams, the watch
// service), invokes the on-close hook exactly once, and flips the
// filesystem to closed. Subsequent calls are no-ops.
func (fs *Filesystem) Close() error {
	fs.mu.Lock()
	if fs.closed {
		fs.mu.Unlock()
		return nil
	}
	fs.closed = true
	resources := make([]closable, 0, len(fs.resources))
	for r := range fs.resources {
		resources = append(resources, r)
	}
	fs.resources = nil
	hook := fs.onClose
	fs.mu.Unlock()

	var ce *closeError
	for _, r := range resources {
		if err := r.Close(); err != nil {
			if ce == nil {
				ce = &closeError{primary: err}
			} else {
				ce.suppressed = append(ce.suppressed, err)
			}
		}
	}
	if err := fs.watchSvc.Close(); err != nil {
		if ce == nil {
			ce = &closeError{primary: err}
		} else {
			ce.suppressed = append(ce.suppressed, err)
		}
	}
	if hook != nil {
		hook()
	}
	if ce != nil {
		return ce
	}
	return nil
}
