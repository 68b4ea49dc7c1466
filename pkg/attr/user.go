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
	"strings"

	"github.com/quartzfs/quartzfs/pkg/qferr"
)

// UserProvider implements the "user" view: arbitrary, caller-defined
// byte-array attributes with no fixed schema. Unlike every other view,
// it owns any attribute name and enumerates whatever has actually been
// stored for the file rather than a static list.
type UserProvider struct{}

const userPrefix = "user:"

func (UserProvider) View() string       { return "user" }
func (UserProvider) Inherits() []string { return nil }

func (UserProvider) Owns(attr string) bool { return true }

func (UserProvider) ListAttributes(ctx *Context) []string {
	keys := ctx.Store.Keys(userPrefix)
	names := make([]string, len(keys))
	for i, k := range keys {
		names[i] = strings.TrimPrefix(k, userPrefix)
	}
	return names
}

func (UserProvider) DefaultValues(overrides map[string]interface{}) map[string]interface{} {
	return overrides
}

func (UserProvider) Get(ctx *Context, attr string) (interface{}, bool, error) {
	v, ok := ctx.Store.Get(userPrefix + attr)
	return v, ok, nil
}

func (UserProvider) Set(ctx *Context, attr string, value interface{}, onCreate bool) error {
	b, ok := value.([]byte)
	if !ok {
		return qferr.ErrIllegalArgument
	}
	ctx.Store.Set(userPrefix+attr, b)
	return nil
}
