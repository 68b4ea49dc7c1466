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

	"github.com/quartzfs/quartzfs/pkg/qferr"
)

// BasicProvider implements the "basic" view: timestamps, size, kind
// flags, and a stable per-file key. No other provider lists it in
// Inherits; views that need a file's kind or timestamps read them from
// FileInfo directly.
type BasicProvider struct{}

func (BasicProvider) View() string       { return "basic" }
func (BasicProvider) Inherits() []string { return nil }

var basicAttrs = []string{
	"creationTime", "lastAccessTime", "lastModifiedTime", "size",
	"isDirectory", "isRegularFile", "isSymbolicLink", "isOther", "fileKey",
}

func (BasicProvider) Owns(attr string) bool {
	for _, a := range basicAttrs {
		if a == attr {
			return true
		}
	}
	return false
}

func (BasicProvider) ListAttributes(ctx *Context) []string {
	return basicAttrs
}

func (BasicProvider) DefaultValues(overrides map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{})
	if v, ok := overrides["fileKey"]; ok {
		out["fileKey"] = v
	}
	return out
}

func (BasicProvider) Get(ctx *Context, attr string) (interface{}, bool, error) {
	switch attr {
	case "creationTime":
		return ctx.File.CreatedTime(), true, nil
	case "lastAccessTime":
		return ctx.File.AccessTime(), true, nil
	case "lastModifiedTime":
		return ctx.File.ModifiedTime(), true, nil
	case "size":
		return ctx.File.Size(), true, nil
	case "isDirectory":
		return ctx.File.Kind() == KindDirectory, true, nil
	case "isRegularFile":
		return ctx.File.Kind() == KindRegular, true, nil
	case "isSymbolicLink":
		return ctx.File.Kind() == KindSymlink, true, nil
	case "isOther":
		return false, true, nil
	case "fileKey":
		if v, ok := ctx.Store.Get("basic:fileKey"); ok {
			return v, true, nil
		}
		return fmt.Sprintf("%d", ctx.File.ID()), true, nil
	}
	return nil, false, nil
}

func (BasicProvider) Set(ctx *Context, attr string, value interface{}, onCreate bool) error {
	switch attr {
	case "lastModifiedTime", "lastAccessTime", "creationTime":
		// Timestamps are maintained by the channel/content layer on
		// every successful operation, not set directly by users.
		if !onCreate {
			return qferr.ErrUnsupported
		}
		return nil
	case "fileKey":
		if !onCreate {
			return qferr.ErrUnsupported
		}
		ctx.Store.Set("basic:fileKey", value)
		return nil
	case "size", "isDirectory", "isRegularFile", "isSymbolicLink", "isOther":
		return qferr.ErrUnsupported
	}
	return qferr.ErrIllegalArgument
}
