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

package attr

import (
	"fmt"
	"strings"

	"github.com/quartzfs/quartzfs/pkg/qferr"
)

// Service composes a set of Providers, replacing the deep attribute-view
// inheritance of a class-based design with plain composition: each
// provider declares the views it depends on and receives their already-
// built snapshots, while the Service performs a one-time topological
// ordering so dependencies are always resolved before dependents.
type Service struct {
	providers map[string]Provider
	order     []string // topologically sorted view names, dependencies first
}

// NewService builds a Service from providers, validating that every
// inherited view name is itself provided and that there is no dependency
// cycle.
func NewService(providers []Provider) (*Service, error) {
	byName := make(map[string]Provider, len(providers))
	for _, p := range providers {
		byName[p.View()] = p
	}
	for _, p := range providers {
		for _, dep := range p.Inherits() {
			if _, ok := byName[dep]; !ok {
				return nil, fmt.Errorf("attr: view %q inherits unknown view %q", p.View(), dep)
			}
		}
	}
	order, err := topoSort(byName)
	if err != nil {
		return nil, err
	}
	return &Service{providers: byName, order: order}, nil
}

func topoSort(byName map[string]Provider) ([]string, error) {
	const (
		unvisited = iota
		visiting
		done
	)
	state := make(map[string]int, len(byName))
	var order []string
	var visit func(name string) error
	visit = func(name string) error {
		switch state[name] {
		case done:
			return nil
		case visiting:
			return fmt.Errorf("attr: cyclic view inheritance at %q", name)
		}
		state[name] = visiting
		for _, dep := range byName[name].Inherits() {
			if err := visit(dep); err != nil {
				return err
			}
		}
		state[name] = done
		order = append(order, name)
		return nil
	}
	for name := range byName {
		if err := visit(name); err != nil {
			return nil, err
		}
	}
	return order, nil
}

// Views returns the configured view names.
func (s *Service) Views() []string {
	views := make([]string, len(s.order))
	copy(views, s.order)
	return views
}

// HasView reports whether view is configured.
func (s *Service) HasView(view string) bool {
	_, ok := s.providers[view]
	return ok
}

// InitStore seeds default attribute values for a newly created file,
// honoring "view:attr" overrides from filesystem configuration.
func (s *Service) InitStore(st *Store, overrides map[string]interface{}) {
	for _, view := range s.order {
		p := s.providers[view]
		for attr, v := range p.DefaultValues(perView(overrides, view)) {
			st.Set(view+":"+attr, v)
		}
	}
}

func perView(overrides map[string]interface{}, view string) map[string]interface{} {
	prefix := view + ":"
	out := make(map[string]interface{})
	for k, v := range overrides {
		if strings.HasPrefix(k, prefix) {
			out[strings.TrimPrefix(k, prefix)] = v
		}
	}
	return out
}

func (s *Service) buildViewSnapshot(view string, st *Store, fi FileInfo) (map[string]interface{}, error) {
	p, ok := s.providers[view]
	if !ok {
		return nil, qferr.ErrIllegalArgument
	}
	views := make(map[string]map[string]interface{}, len(p.Inherits()))
	for _, dep := range p.Inherits() {
		sub, err := s.buildViewSnapshot(dep, st, fi)
		if err != nil {
			return nil, err
		}
		views[dep] = sub
	}
	ctx := &Context{Store: st, File: fi, Views: views}
	out := make(map[string]interface{})
	for k, v := range views {
		for ak, av := range v {
			out[k+":"+ak] = av
		}
	}
	for _, a := range p.ListAttributes(ctx) {
		v, ok, err := p.Get(ctx, a)
		if err != nil {
			return nil, err
		}
		if ok {
			out[a] = v
		}
	}
	return out, nil
}

// ReadAttributes implements readAttributes("view:*") or
// readAttributes("view:a,b,c"). spec must name exactly one view; an
// invalid, duplicate, or "*"-mixed attribute list fails with
// ErrIllegalArgument.
func (s *Service) ReadAttributes(st *Store, fi FileInfo, spec string) (map[string]interface{}, error) {
	view, rest, ok := strings.Cut(spec, ":")
	if !ok {
		return nil, qferr.ErrIllegalArgument
	}
	if _, ok := s.providers[view]; !ok {
		return nil, qferr.ErrIllegalArgument
	}

	snap, err := s.buildViewSnapshot(view, st, fi)
	if err != nil {
		return nil, err
	}
	if rest == "*" {
		return snap, nil
	}

	names := strings.Split(rest, ",")
	if len(names) == 0 {
		return nil, qferr.ErrIllegalArgument
	}
	seen := make(map[string]bool, len(names))
	out := make(map[string]interface{}, len(names))
	for _, n := range names {
		if n == "" || n == "*" || seen[n] {
			return nil, qferr.ErrIllegalArgument
		}
		seen[n] = true
		v, ok := snap[n]
		if !ok {
			// Not an attribute this view exposes.
			return nil, qferr.ErrIllegalArgument
		}
		out[n] = v
	}
	return out, nil
}

// SetAttribute implements setAttribute("view:attr", value, onCreate).
func (s *Service) SetAttribute(st *Store, fi FileInfo, key string, value interface{}, onCreate bool) error {
	view, attr, ok := strings.Cut(key, ":")
	if !ok {
		return qferr.ErrIllegalArgument
	}
	p, ok := s.providers[view]
	if !ok {
		return qferr.ErrUnsupported
	}
	if !p.Owns(attr) {
		if onCreate {
			return qferr.ErrUnsupported
		}
		return qferr.ErrIllegalArgument
	}
	views := make(map[string]map[string]interface{}, len(p.Inherits()))
	for _, dep := range p.Inherits() {
		sub, err := s.buildViewSnapshot(dep, st, fi)
		if err != nil {
			return err
		}
		views[dep] = sub
	}
	ctx := &Context{Store: st, File: fi, Views: views}
	return p.Set(ctx, attr, value, onCreate)
}
