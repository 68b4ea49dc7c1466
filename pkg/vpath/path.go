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

package vpath

import (
	"strings"

	"github.com/quartzfs/quartzfs/pkg/qferr"
	"github.com/quartzfs/quartzfs/pkg/vfname"
)

// Path is an immutable root (if any) plus an ordered list of names. A
// Path is absolute iff Root is non-empty. Rendering, parsing, and
// comparison are delegated to the Service that produced it.
type Path struct {
	root  string
	names []vfname.Name
	svc   *Service
}

// IsAbsolute reports whether the path carries a root.
func (p Path) IsAbsolute() bool { return p.root != "" }

// Root returns the path's root token, or "" if the path is relative.
func (p Path) Root() string { return p.root }

// Names returns the path's components in display form.
func (p Path) Names() []string {
	out := make([]string, len(p.names))
	for i, n := range p.names {
		out[i] = n.Display
	}
	return out
}

// NameCount reports the number of name components.
func (p Path) NameCount() int { return len(p.names) }

// RawNames returns the path's components as vfname.Name values, display
// and canonical forms both intact, for callers (pkg/tree) that need to
// key directory-entry lookups on canonical form rather than render text.
func (p Path) RawNames() []vfname.Name {
	out := make([]vfname.Name, len(p.names))
	copy(out, p.names)
	return out
}

// Service returns the path service that produced this path.
func (p Path) Service() *Service { return p.svc }

// Service binds a Flavor to a configured pair of name normalizations and
// an equality policy, and produces/compares/renders Path values
// consistently with them.
type Service struct {
	flavor         Flavor
	canonNorm      vfname.Normalization
	dispNorm       vfname.Normalization
	equalUsesCanon bool
}

// NewService builds a path Service for the given flavor and
// normalizations. equalUsesCanonicalForm selects whether Path equality
// and ordering use the canonical or the display form of each name.
func NewService(flavor Flavor, canonNorm, dispNorm vfname.Normalization, equalUsesCanonicalForm bool) *Service {
	return &Service{
		flavor:         flavor,
		canonNorm:      canonNorm,
		dispNorm:       dispNorm,
		equalUsesCanon: equalUsesCanonicalForm,
	}
}

// Flavor returns the OS flavor this service parses/renders for.
func (s *Service) Flavor() Flavor { return s.flavor }

func (s *Service) makeName(raw string) vfname.Name {
	return vfname.New(raw, s.canonNorm, s.dispNorm)
}

// Root builds an absolute, empty (no name components) Path for the given
// root token, validating it against the flavor's rules.
func (s *Service) Root(root string) (Path, error) {
	if err := s.flavor.ValidateRoot(root); err != nil {
		return Path{}, err
	}
	return Path{root: s.flavor.RenderRoot(root), svc: s}, nil
}

// Parse parses a raw path string into a Path.
func (s *Service) Parse(raw string) (Path, error) {
	if raw == "" {
		return Path{}, qferr.ErrIllegalArgument
	}
	if r, ok := s.flavor.(interface{ RejectedPrefix(string) bool }); ok && r.RejectedPrefix(raw) {
		return Path{}, qferr.ErrIllegalArgument
	}
	root, rest, hasRoot := s.flavor.SplitRoot(raw)
	rawNames := splitNames(rest, s.flavor.Separator(), s.flavor.AltSeparator())
	names := make([]vfname.Name, 0, len(rawNames))
	for _, rn := range rawNames {
		if rn == "." {
			continue
		}
		if err := s.flavor.ValidateName(rn); err != nil && rn != ".." {
			return Path{}, err
		}
		names = append(names, s.makeName(rn))
	}
	p := Path{svc: s, names: names}
	if hasRoot {
		p.root = root
	}
	return p, nil
}

// String renders p back into its flavor's textual form; Parse(String(p))
// yields a Path equal to p.
func (s *Service) String(p Path) string {
	var b strings.Builder
	if p.root != "" {
		b.WriteString(s.flavor.RenderRoot(p.root))
	}
	for i, n := range p.names {
		if i > 0 {
			b.WriteRune(s.flavor.Separator())
		}
		b.WriteString(n.Display)
	}
	return b.String()
}

// Join appends a single raw name component to dir, producing a new Path.
func (s *Service) Join(dir Path, rawName string) (Path, error) {
	if rawName == ".." {
		names := append(append([]vfname.Name{}, dir.names...), s.makeName(".."))
		return Path{root: dir.root, names: names, svc: s}, nil
	}
	if err := s.flavor.ValidateName(rawName); err != nil {
		return Path{}, err
	}
	names := append(append([]vfname.Name{}, dir.names...), s.makeName(rawName))
	return Path{root: dir.root, names: names, svc: s}, nil
}

// Parent returns p's parent path and true, or a zero Path and false if p
// has no name components to remove (it is already a root, or empty and
// relative).
func (p Path) Parent() (Path, bool) {
	if len(p.names) == 0 {
		return Path{}, false
	}
	return Path{root: p.root, names: p.names[:len(p.names)-1], svc: p.svc}, true
}

// compareKey returns the per-name key (display or canonical, per the
// service's equality policy) used for equality and ordering.
func (s *Service) compareKey(n vfname.Name) string {
	if s.equalUsesCanon {
		return n.Canonical
	}
	return n.Display
}

// Equal reports whether a and b denote the same path under their
// service's equality policy. Paths from different services are never
// equal.
func Equal(a, b Path) bool {
	if a.svc != b.svc {
		return false
	}
	if a.root != b.root || len(a.names) != len(b.names) {
		return false
	}
	for i := range a.names {
		if a.svc.compareKey(a.names[i]) != a.svc.compareKey(b.names[i]) {
			return false
		}
	}
	return true
}
