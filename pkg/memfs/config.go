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
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/quartzfs/quartzfs/pkg/attr"
	"github.com/quartzfs/quartzfs/pkg/qfclock"
	"github.com/quartzfs/quartzfs/pkg/qferr"
	"github.com/quartzfs/quartzfs/pkg/vfname"
	"github.com/quartzfs/quartzfs/pkg/vpath"
	"github.com/quartzfs/quartzfs/pkg/watch"
)

// DefaultViews are the attribute views built in when Builder.AttributeViews
// is never called.
var DefaultViews = []string{"basic", "owner", "posix", "unix", "dos", "acl", "user"}

func providerFor(view string) attr.Provider {
	switch view {
	case "basic":
		return attr.BasicProvider{}
	case "owner":
		return attr.OwnerProvider{}
	case "posix":
		return attr.PosixProvider{}
	case "unix":
		return attr.UnixProvider{}
	case "dos":
		return attr.DosProvider{}
	case "acl":
		return attr.AclProvider{}
	case "user":
		return attr.UserProvider{}
	default:
		return nil
	}
}

// Config is a fully validated, immutable filesystem configuration,
// produced by Builder.Build.
type Config struct {
	Flavor           vpath.Flavor
	Roots            []string
	WorkingDirectory string

	CanonicalNormalization vfname.Normalization
	DisplayNormalization   vfname.Normalization
	PathEqualityUsesCanon  bool

	BlockSize     int
	MaxSize       int64
	MaxCacheSize  int
	AttrProviders []attr.Provider
	AttrDefaults  map[string]interface{}

	WatchInterval time.Duration
	Clock         qfclock.Clock
	Logger        *log.Logger
	Debug         bool
}

// Builder accumulates configuration the way pkg/jsonconfig.Obj
// accumulates and validates a JSON config tree: every setter can be
// called in any order, and validation errors are collected and the
// first of them is reported from Build, rather than panicking or
// failing at the bad call.
type Builder struct {
	cfg  Config
	errs []error
}

// NewBuilder returns a Builder seeded with defaults: POSIX flavor, a
// single "/" root, no normalization, canonical-form equality, a 4 KiB
// block size, an unbounded max size, an unbounded cache, every built-in
// attribute view, a 5-second watch interval, and the real system clock.
func NewBuilder() *Builder {
	return &Builder{cfg: Config{
		Flavor:                vpath.POSIX,
		Roots:                 []string{"/"},
		WorkingDirectory:      "/",
		PathEqualityUsesCanon: true,
		BlockSize:             4096,
		MaxSize:               0,
		MaxCacheSize:          -1,
		WatchInterval:         watch.DefaultInterval,
		Clock:                 qfclock.System{},
		Logger:                log.Default(),
	}}
}

func (b *Builder) fail(err error) { b.errs = append(b.errs, err) }

// PathType sets the OS path flavor.
func (b *Builder) PathType(f vpath.Flavor) *Builder { b.cfg.Flavor = f; return b }

// Roots sets the filesystem's root tokens. Each must validate against
// the configured path flavor.
func (b *Builder) Roots(roots ...string) *Builder { b.cfg.Roots = roots; return b }

// WorkingDirectory sets the absolute path, under one of the configured
// roots, used to resolve relative paths.
func (b *Builder) WorkingDirectory(path string) *Builder { b.cfg.WorkingDirectory = path; return b }

// NameCanonicalNormalization sets the normalization used to derive each
// name's canonical (comparison) form.
func (b *Builder) NameCanonicalNormalization(n vfname.Normalization) *Builder {
	b.cfg.CanonicalNormalization = n
	return b
}

// NameDisplayNormalization sets the normalization used to derive each
// name's display (rendering/sorting) form.
func (b *Builder) NameDisplayNormalization(n vfname.Normalization) *Builder {
	b.cfg.DisplayNormalization = n
	return b
}

// PathEqualityUsesCanonicalForm selects whether Path comparison uses
// canonical or display form.
func (b *Builder) PathEqualityUsesCanonicalForm(v bool) *Builder {
	b.cfg.PathEqualityUsesCanon = v
	return b
}

// BlockSize sets the disk's fixed block size in bytes.
func (b *Builder) BlockSize(n int) *Builder { b.cfg.BlockSize = n; return b }

// MaxSize sets the disk's total capacity in bytes (rounded down to a
// block multiple when the filesystem creates its disk). Zero means
// unbounded.
func (b *Builder) MaxSize(n int64) *Builder { b.cfg.MaxSize = n; return b }

// MaxCacheSize bounds the number of freed blocks the disk keeps in its
// reuse cache; -1 means unbounded.
func (b *Builder) MaxCacheSize(n int) *Builder { b.cfg.MaxCacheSize = n; return b }

// AttributeViews selects the built-in attribute views to enable.
func (b *Builder) AttributeViews(views ...string) *Builder {
	b.cfg.AttrProviders = nil
	for _, v := range views {
		p := providerFor(v)
		if p == nil {
			b.fail(fmt.Errorf("memfs: %w: unknown attribute view %q", qferr.ErrIllegalArgument, v))
			continue
		}
		b.cfg.AttrProviders = append(b.cfg.AttrProviders, p)
	}
	return b
}

// AttributeProviders adds user-supplied providers alongside the
// built-in views.
func (b *Builder) AttributeProviders(providers ...attr.Provider) *Builder {
	b.cfg.AttrProviders = append(b.cfg.AttrProviders, providers...)
	return b
}

// DefaultAttributeValues sets "view:attr" overrides applied to every
// newly created file.
func (b *Builder) DefaultAttributeValues(values map[string]interface{}) *Builder {
	b.cfg.AttrDefaults = values
	return b
}

// WatchServiceConfiguration sets the watch service's polling interval.
func (b *Builder) WatchServiceConfiguration(interval time.Duration) *Builder {
	b.cfg.WatchInterval = interval
	return b
}

// FileTimeSource overrides the clock used to stamp file times.
func (b *Builder) FileTimeSource(clock qfclock.Clock) *Builder {
	b.cfg.Clock = clock
	return b
}

// Logger sets the *log.Logger the background watch poller reports
// diagnostics to.
func (b *Builder) Logger(l *log.Logger) *Builder { b.cfg.Logger = l; return b }

// Debug sets Config.Debug, a switch mirroring CamliFileSystem's debug
// flag. No filesystem operation logs through it, so setting it produces
// no output.
func (b *Builder) Debug(v bool) *Builder { b.cfg.Debug = v; return b }

// Build validates the accumulated configuration and returns it, or the
// first validation error encountered -- root/flavor mismatches, a
// relative or out-of-root working directory, or a malformed default
// attribute key all fail here rather than at first use.
func (b *Builder) Build() (*Config, error) {
	if len(b.errs) > 0 {
		return nil, b.errs[0]
	}
	cfg := b.cfg

	if len(cfg.Roots) == 0 {
		return nil, fmt.Errorf("memfs: %w: at least one root is required", qferr.ErrIllegalArgument)
	}
	for _, r := range cfg.Roots {
		if err := cfg.Flavor.ValidateRoot(r); err != nil {
			return nil, fmt.Errorf("memfs: %w: root %q invalid for %s", qferr.ErrIllegalArgument, r, cfg.Flavor.Name())
		}
	}

	if cfg.WorkingDirectory == "" {
		return nil, fmt.Errorf("memfs: %w: empty working directory", qferr.ErrIllegalArgument)
	}
	if _, _, hasRoot := cfg.Flavor.SplitRoot(cfg.WorkingDirectory); !hasRoot {
		return nil, fmt.Errorf("memfs: %w: working directory %q must be absolute", qferr.ErrIllegalArgument, cfg.WorkingDirectory)
	}
	wdRoot, _, _ := cfg.Flavor.SplitRoot(cfg.WorkingDirectory)
	found := false
	for _, r := range cfg.Roots {
		if cfg.Flavor.RenderRoot(r) == cfg.Flavor.RenderRoot(wdRoot) {
			found = true
			break
		}
	}
	if !found {
		return nil, fmt.Errorf("memfs: %w: working directory %q is outside any configured root", qferr.ErrIllegalArgument, cfg.WorkingDirectory)
	}

	if cfg.BlockSize <= 0 {
		return nil, fmt.Errorf("memfs: %w: blockSize must be positive", qferr.ErrIllegalArgument)
	}

	if cfg.AttrProviders == nil {
		for _, v := range DefaultViews {
			cfg.AttrProviders = append(cfg.AttrProviders, providerFor(v))
		}
	}

	for k := range cfg.AttrDefaults {
		if !strings.Contains(k, ":") {
			return nil, fmt.Errorf("memfs: %w: default attribute key %q must be \"view:attr\"", qferr.ErrIllegalArgument, k)
		}
	}

	return &cfg, nil
}
