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

import "github.com/quartzfs/quartzfs/pkg/qferr"

// DosProvider implements the "dos" view: the four legacy FAT attribute
// flags. It inherits no other view; the flags are read from and written
// to the Store alone.
type DosProvider struct{}

func (DosProvider) View() string       { return "dos" }
func (DosProvider) Inherits() []string { return nil }

var dosAttrs = []string{"archive", "hidden", "readonly", "system"}

func (DosProvider) Owns(attr string) bool {
	for _, a := range dosAttrs {
		if a == attr {
			return true
		}
	}
	return false
}

func (DosProvider) ListAttributes(ctx *Context) []string { return dosAttrs }

func (DosProvider) DefaultValues(overrides map[string]interface{}) map[string]interface{} {
	out := map[string]interface{}{
		"archive":  false,
		"hidden":   false,
		"readonly": false,
		"system":   false,
	}
	for k, v := range overrides {
		out[k] = v
	}
	return out
}

func (d DosProvider) Get(ctx *Context, attr string) (interface{}, bool, error) {
	if !d.Owns(attr) {
		return nil, false, nil
	}
	if v, ok := ctx.Store.Get("dos:" + attr); ok {
		return v, true, nil
	}
	return false, true, nil
}

func (d DosProvider) Set(ctx *Context, attr string, value interface{}, onCreate bool) error {
	if !d.Owns(attr) {
		return qferr.ErrIllegalArgument
	}
	b, ok := value.(bool)
	if !ok {
		return qferr.ErrIllegalArgument
	}
	ctx.Store.Set("dos:"+attr, b)
	return nil
}
