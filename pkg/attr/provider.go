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

import "time"

// Kind identifies what sort of file an attribute view is describing.
type Kind int

const (
	KindRegular Kind = iota
	KindDirectory
	KindSymlink
)

// FileInfo is the subset of a file entity's identity that attribute
// providers need in order to compute values not held directly in the
// Store (size, timestamps, kind flags, link count, a stable key).
// pkg/inode's File implements this.
type FileInfo interface {
	ID() int64
	Kind() Kind
	LinkCount() int
	Size() int64
	CreatedTime() time.Time
	AccessTime() time.Time
	ModifiedTime() time.Time
}

// Context is passed to a Provider's Get/Set so it can read sibling views
// and file identity when computing or validating a value.
type Context struct {
	Store *Store
	File  FileInfo
	// Views holds the already-constructed view snapshots for every view
	// named in this provider's Inherits(), keyed by view name, letting a
	// provider (e.g. unix) derive values from another view (e.g. posix)
	// without re-deriving them itself.
	Views map[string]map[string]interface{}
}

// Provider implements one attribute view.
type Provider interface {
	// View is this provider's view name, e.g. "posix".
	View() string

	// Inherits lists views this provider's Get/Set may read from Context.Views.
	Inherits() []string

	// Owns reports whether attr is an attribute this provider (rather
	// than an inherited one) can get or set. Most providers check
	// against a fixed set; the "user" view owns any name.
	Owns(attr string) bool

	// ListAttributes enumerates this provider's currently addressable
	// attribute names for the file described by ctx -- a fixed list for
	// most views, or the currently-stored keys for a dynamic view like
	// "user".
	ListAttributes(ctx *Context) []string

	// DefaultValues seeds this view's attributes for a newly created
	// file, given any "view:attr" overrides configured for the
	// filesystem. Keys are unprefixed attribute names.
	DefaultValues(overrides map[string]interface{}) map[string]interface{}

	// Get computes the current value of attr for the file described by
	// ctx. ok is false if this provider does not own attr.
	Get(ctx *Context, attr string) (value interface{}, ok bool, err error)

	// Set validates and applies a new value for attr. onCreate is true
	// when called while a file is being created (some attributes are
	// only settable at creation; others never at runtime).
	Set(ctx *Context, attr string, value interface{}, onCreate bool) error
}
