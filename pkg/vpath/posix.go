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

package vpath

import (
	"strings"

	"github.com/quartzfs/quartzfs/pkg/qferr"
)

type posixFlavor struct{}

// POSIX is the Flavor for "/"-separated paths with a single root token.
var POSIX Flavor = posixFlavor{}

func (posixFlavor) Name() string        { return "posix" }
func (posixFlavor) Separator() rune     { return '/' }
func (posixFlavor) AltSeparator() rune  { return 0 }

func (posixFlavor) ValidateRoot(root string) error {
	if root != "/" {
		return qferr.ErrIllegalArgument
	}
	return nil
}

func (posixFlavor) SplitRoot(s string) (root, rest string, ok bool) {
	if strings.HasPrefix(s, "/") {
		return "/", strings.TrimPrefix(s, "/"), true
	}
	return "", s, false
}

func (posixFlavor) ValidateName(name string) error {
	if name == "" {
		return qferr.ErrIllegalArgument
	}
	if strings.ContainsRune(name, '/') {
		return qferr.ErrIllegalArgument
	}
	return validateNoNUL(name)
}

func (posixFlavor) RenderRoot(root string) string { return root }
