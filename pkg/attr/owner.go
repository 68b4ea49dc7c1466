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

// OwnerProvider implements the "owner" view: a single principal name
// identifying the file's owner.
type OwnerProvider struct{}

func (OwnerProvider) View() string       { return "owner" }
func (OwnerProvider) Inherits() []string { return nil }

func (OwnerProvider) Owns(attr string) bool { return attr == "owner" }

func (OwnerProvider) ListAttributes(ctx *Context) []string { return []string{"owner"} }

func (OwnerProvider) DefaultValues(overrides map[string]interface{}) map[string]interface{} {
	out := map[string]interface{}{"owner": "nobody"}
	if v, ok := overrides["owner"]; ok {
		out["owner"] = v
	}
	return out
}

func (OwnerProvider) Get(ctx *Context, attr string) (interface{}, bool, error) {
	if attr != "owner" {
		return nil, false, nil
	}
	v, ok := ctx.Store.Get("owner:owner")
	if !ok {
		return "nobody", true, nil
	}
	return v, true, nil
}

func (OwnerProvider) Set(ctx *Context, attr string, value interface{}, onCreate bool) error {
	if attr != "owner" {
		return qferr.ErrIllegalArgument
	}
	principal, ok := value.(string)
	if !ok || principal == "" {
		return qferr.ErrIllegalArgument
	}
	ctx.Store.Set("owner:owner", principal)
	return nil
}
