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

// AclEntryType is the type of an ACL entry: allow or deny.
type AclEntryType string

const (
	AclAllow AclEntryType = "ALLOW"
	AclDeny  AclEntryType = "DENY"
)

// AclEntry mirrors java.nio.file.attribute.AclEntry: a principal, a
// type, a set of flags (inheritance), and a set of permissions.
type AclEntry struct {
	Type        AclEntryType
	Principal   string
	Permissions []string
	Flags       []string
}

// AclProvider implements the "acl" view: an ordered list of AclEntry
// plus the file owner, inherited from "owner".
type AclProvider struct{}

func (AclProvider) View() string       { return "acl" }
func (AclProvider) Inherits() []string { return []string{"owner"} }

var aclAttrs = []string{"acl", "owner"}

func (AclProvider) Owns(attr string) bool { return attr == "acl" }

func (AclProvider) ListAttributes(ctx *Context) []string {
	names := make([]string, len(aclAttrs))
	copy(names, aclAttrs)
	return names
}

func (AclProvider) DefaultValues(overrides map[string]interface{}) map[string]interface{} {
	out := map[string]interface{}{"acl": []AclEntry{}}
	if v, ok := overrides["acl"]; ok {
		out["acl"] = v
	}
	return out
}

func (AclProvider) Get(ctx *Context, attr string) (interface{}, bool, error) {
	switch attr {
	case "acl":
		if v, ok := ctx.Store.Get("acl:acl"); ok {
			return v, true, nil
		}
		return []AclEntry{}, true, nil
	case "owner":
		if v, ok := ctx.Views["owner"]["owner"]; ok {
			return v, true, nil
		}
		return "nobody", true, nil
	}
	return nil, false, nil
}

func (AclProvider) Set(ctx *Context, attr string, value interface{}, onCreate bool) error {
	if attr != "acl" {
		return qferr.ErrIllegalArgument
	}
	entries, ok := value.([]AclEntry)
	if !ok {
		return qferr.ErrIllegalArgument
	}
	ctx.Store.Set("acl:acl", entries)
	return nil
}
