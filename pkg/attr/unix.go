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

// UnixProvider implements the "unix" view: it owns no storage of its
// own and instead derives every attribute from "posix" (permissions),
// "owner" and FileInfo, the way a real stat(2) result is itself
// synthesized from inode fields that other views also expose.
type UnixProvider struct {
	// UID/GID resolve a principal name to a numeric id. Both default to
	// a synthetic owner of 0 when unset.
	UID func(principal string) uint32
	GID func(principal string) uint32
}

func (UnixProvider) View() string       { return "unix" }
func (UnixProvider) Inherits() []string { return []string{"posix"} }

var unixAttrs = []string{"uid", "gid", "mode", "ctime", "ino", "dev", "rdev", "nlink"}

func (UnixProvider) Owns(attr string) bool {
	for _, a := range unixAttrs {
		if a == attr {
			return true
		}
	}
	return false
}

func (UnixProvider) ListAttributes(ctx *Context) []string { return unixAttrs }

func (UnixProvider) DefaultValues(overrides map[string]interface{}) map[string]interface{} {
	return nil
}

func (u UnixProvider) resolveUID(principal string) uint32 {
	if u.UID != nil {
		return u.UID(principal)
	}
	return 0
}

func (u UnixProvider) resolveGID(principal string) uint32 {
	if u.GID != nil {
		return u.GID(principal)
	}
	return 0
}

func (u UnixProvider) Get(ctx *Context, attr string) (interface{}, bool, error) {
	posix := ctx.Views["posix"]
	switch attr {
	case "uid":
		owner, _ := posix["owner"].(string)
		return u.resolveUID(owner), true, nil
	case "gid":
		group, _ := posix["group"].(string)
		return u.resolveGID(group), true, nil
	case "mode":
		mode := modeForKind(ctx.File.Kind())
		if perms, ok := posix["permissions"].(map[Permission]bool); ok {
			mode |= PermissionsToMode(perms)
		}
		return mode, true, nil
	case "ctime":
		return ctx.File.CreatedTime(), true, nil
	case "ino":
		return uint64(ctx.File.ID()), true, nil
	case "dev":
		return uint64(1), true, nil
	case "rdev":
		return uint64(0), true, nil
	case "nlink":
		return ctx.File.LinkCount(), true, nil
	}
	return nil, false, nil
}

func modeForKind(k Kind) uint32 {
	switch k {
	case KindDirectory:
		return modeIFDIR
	case KindSymlink:
		return modeIFLNK
	default:
		return modeIFREG
	}
}

func (UnixProvider) Set(ctx *Context, attr string, value interface{}, onCreate bool) error {
	// Every "unix" attribute is derived; none is independently settable.
	return qferr.ErrUnsupported
}
