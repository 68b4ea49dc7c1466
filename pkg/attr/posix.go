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
	"sort"

	"github.com/quartzfs/quartzfs/pkg/qferr"
)

// Permission names one of the nine POSIX permission bits, mirroring
// java.nio.file.attribute.PosixFilePermission so a "posix:permissions"
// value round-trips as the familiar named set rather than a raw bitmask.
type Permission string

const (
	OwnerRead    Permission = "OWNER_READ"
	OwnerWrite   Permission = "OWNER_WRITE"
	OwnerExecute Permission = "OWNER_EXECUTE"
	GroupRead    Permission = "GROUP_READ"
	GroupWrite   Permission = "GROUP_WRITE"
	GroupExecute Permission = "GROUP_EXECUTE"
	OtherRead    Permission = "OTHERS_READ"
	OtherWrite   Permission = "OTHERS_WRITE"
	OtherExecute Permission = "OTHERS_EXECUTE"
)

// permBit pairs a Permission with the unix mode bit it corresponds to,
// so PermissionsToMode/ModeToPermissions stay consistent with the
// S_IRUSR-family constants the rest of the pack (perkeep, rclone) uses
// when synthesizing POSIX file modes.
var permBits = []struct {
	perm Permission
	bit  uint32
}{
	{OwnerRead, modeIRUSR},
	{OwnerWrite, modeIWUSR},
	{OwnerExecute, modeIXUSR},
	{GroupRead, modeIRGRP},
	{GroupWrite, modeIWGRP},
	{GroupExecute, modeIXGRP},
	{OtherRead, modeIROTH},
	{OtherWrite, modeIWOTH},
	{OtherExecute, modeIXOTH},
}

// PermissionsToMode packs a permission set into the low 9 bits of a
// POSIX mode word.
func PermissionsToMode(perms map[Permission]bool) uint32 {
	var mode uint32
	for _, pb := range permBits {
		if perms[pb.perm] {
			mode |= pb.bit
		}
	}
	return mode
}

// ModeToPermissions unpacks the low 9 bits of a POSIX mode word into a
// permission set.
func ModeToPermissions(mode uint32) map[Permission]bool {
	out := make(map[Permission]bool, 9)
	for _, pb := range permBits {
		if mode&pb.bit != 0 {
			out[pb.perm] = true
		}
	}
	return out
}

// PermissionsString renders a permission set in "rwxr-xr--" form.
func PermissionsString(perms map[Permission]bool) string {
	b := make([]byte, 9)
	for i, pb := range permBits {
		c := byte('-')
		switch {
		case pb.bit == modeIRUSR || pb.bit == modeIRGRP || pb.bit == modeIROTH:
			c = 'r'
		case pb.bit == modeIWUSR || pb.bit == modeIWGRP || pb.bit == modeIWOTH:
			c = 'w'
		default:
			c = 'x'
		}
		if perms[pb.perm] {
			b[i] = c
		} else {
			b[i] = '-'
		}
	}
	return string(b)
}

// PosixProvider implements the "posix" view: group and permission set.
// It inherits "owner" for the file owner attribute.
type PosixProvider struct {
	DefaultMode uint32
}

func (PosixProvider) View() string         { return "posix" }
func (PosixProvider) Inherits() []string   { return []string{"owner"} }

var posixAttrs = []string{"owner", "group", "permissions"}

func (PosixProvider) Owns(attr string) bool {
	return attr == "group" || attr == "permissions"
}

func (PosixProvider) ListAttributes(ctx *Context) []string {
	names := make([]string, len(posixAttrs))
	copy(names, posixAttrs)
	sort.Strings(names)
	return names
}

func (p PosixProvider) DefaultValues(overrides map[string]interface{}) map[string]interface{} {
	mode := p.DefaultMode
	if mode == 0 {
		mode = 0644
	}
	out := map[string]interface{}{
		"group":       "nobody",
		"permissions": ModeToPermissions(mode),
	}
	for k, v := range overrides {
		out[k] = v
	}
	return out
}

func (PosixProvider) Get(ctx *Context, attr string) (interface{}, bool, error) {
	switch attr {
	case "owner":
		if v, ok := ctx.Views["owner"]["owner"]; ok {
			return v, true, nil
		}
		return "nobody", true, nil
	case "group":
		if v, ok := ctx.Store.Get("posix:group"); ok {
			return v, true, nil
		}
		return "nobody", true, nil
	case "permissions":
		if v, ok := ctx.Store.Get("posix:permissions"); ok {
			return v, true, nil
		}
		return ModeToPermissions(0644), true, nil
	}
	return nil, false, nil
}

func (PosixProvider) Set(ctx *Context, attr string, value interface{}, onCreate bool) error {
	switch attr {
	case "group":
		g, ok := value.(string)
		if !ok || g == "" {
			return qferr.ErrIllegalArgument
		}
		ctx.Store.Set("posix:group", g)
		return nil
	case "permissions":
		switch v := value.(type) {
		case map[Permission]bool:
			ctx.Store.Set("posix:permissions", v)
			return nil
		case uint32:
			ctx.Store.Set("posix:permissions", ModeToPermissions(v))
			return nil
		}
		return qferr.ErrIllegalArgument
	}
	return qferr.ErrIllegalArgument
}
