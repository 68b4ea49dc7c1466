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

// Package vpath implements the path model: an immutable Path value
// (optional root plus a list of names), a Flavor describing how an OS
// parses and renders paths (POSIX or Windows), and a Service binding a
// Flavor to a configured set of name normalizations. It is grounded on
// the path-splitting and joining idioms perkeep's pkg/fs/util.go uses
// around path/filepath, generalized to support more than one OS's rules
// within a single process.
package vpath

import "github.com/quartzfs/quartzfs/pkg/qferr"

// Flavor describes one OS's path syntax: its separator(s), its root
// tokens, and its name validity rules.
type Flavor interface {
	// Name identifies the flavor, e.g. "posix" or "windows".
	Name() string

	// Separator is the primary path separator.
	Separator() rune

	// AltSeparator is an additional accepted separator, or 0 if none.
	AltSeparator() rune

	// ValidateRoot reports whether root is a well-formed root token for
	// this flavor (e.g. "/" for POSIX, "C:\" or "\\host\share\" for
	// Windows).
	ValidateRoot(root string) error

	// SplitRoot extracts a leading root token from s, returning the root,
	// the remainder, and whether a root was found at all.
	SplitRoot(s string) (root, rest string, ok bool)

	// ValidateName reports whether name is valid as a single path
	// component under this flavor.
	ValidateName(name string) error

	// RenderRoot renders a root token for display/parsing round-trips.
	RenderRoot(root string) string
}

// splitNames splits rest (with any leading root already removed) into
// individual path components, honoring both the primary and the
// alternate separator.
func splitNames(rest string, sep, alt rune) []string {
	if rest == "" {
		return nil
	}
	var names []string
	start := 0
	runes := []rune(rest)
	for i, r := range runes {
		if r == sep || (alt != 0 && r == alt) {
			if i > start {
				names = append(names, string(runes[start:i]))
			}
			start = i + 1
		}
	}
	if start < len(runes) {
		names = append(names, string(runes[start:]))
	}
	return names
}

func validateNoNUL(name string) error {
	for _, r := range name {
		if r == 0 {
			return qferr.ErrIllegalArgument
		}
	}
	return nil
}
