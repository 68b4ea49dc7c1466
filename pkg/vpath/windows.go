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

type windowsFlavor struct{}

// Windows is the Flavor for drive-letter/UNC paths with "\" as the
// primary separator and "/" accepted as an alternate.
var Windows Flavor = windowsFlavor{}

func (windowsFlavor) Name() string       { return "windows" }
func (windowsFlavor) Separator() rune    { return '\\' }
func (windowsFlavor) AltSeparator() rune { return '/' }

func isSep(r rune) bool { return r == '\\' || r == '/' }

func isDriveLetter(r rune) bool {
	return (r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z')
}

func (windowsFlavor) ValidateRoot(root string) error {
	if len(root) >= 3 && isDriveLetter(rune(root[0])) && root[1] == ':' && isSep(rune(root[2])) && len(root) == 3 {
		return nil
	}
	if strings.HasPrefix(root, `\\`) && strings.HasSuffix(root, `\`) && strings.Count(root, `\`) >= 3 {
		return nil
	}
	return qferr.ErrIllegalArgument
}

// SplitRoot recognizes a drive-letter root ("C:\") or a UNC root
// ("\\host\share\"). Bare drive-relative ("C:foo") and
// current-drive-absolute ("\foo") prefixes are not roots at all -- the
// caller (Service.Parse) rejects them outright via RejectedPrefix.
func (windowsFlavor) SplitRoot(s string) (root, rest string, ok bool) {
	if len(s) >= 2 && isDriveLetter(rune(s[0])) && s[1] == ':' {
		if len(s) >= 3 && isSep(rune(s[2])) {
			drive := strings.ToUpper(s[:1]) + `:\`
			return drive, s[3:], true
		}
		return "", s, false
	}
	if len(s) >= 2 && isSep(rune(s[0])) && isSep(rune(s[1])) {
		// UNC: \\host\share\rest...
		body := s[2:]
		// body may use '/' as separator too; normalize first.
		body = strings.Map(func(r rune) rune {
			if r == '/' {
				return '\\'
			}
			return r
		}, body)
		parts := strings.SplitN(body, `\`, 3)
		if len(parts) >= 2 && parts[0] != "" && parts[1] != "" {
			root = `\\` + parts[0] + `\` + parts[1] + `\`
			if len(parts) == 3 {
				rest = parts[2]
			}
			return root, rest, true
		}
		return "", s, false
	}
	return "", s, false
}

// RejectedPrefix reports whether s begins with a form Windows paths
// explicitly reject: a bare drive-relative path ("C:foo", no separator
// after the drive) or a current-drive-absolute path ("\foo", a single
// leading separator with no drive or host).
func (windowsFlavor) RejectedPrefix(s string) bool {
	if len(s) >= 2 && isDriveLetter(rune(s[0])) && s[1] == ':' {
		if len(s) < 3 || !isSep(rune(s[2])) {
			return true
		}
		return false
	}
	if len(s) >= 1 && isSep(rune(s[0])) {
		if len(s) >= 2 && isSep(rune(s[1])) {
			return false // UNC, handled by SplitRoot
		}
		return true // "\foo" current-drive-absolute
	}
	return false
}

var invalidNameChars = `<>:"|?*`

func (windowsFlavor) ValidateName(name string) error {
	if name == "" {
		return qferr.ErrIllegalArgument
	}
	if strings.ContainsAny(name, invalidNameChars) {
		return qferr.ErrIllegalArgument
	}
	if strings.ContainsRune(name, '\\') || strings.ContainsRune(name, '/') {
		return qferr.ErrIllegalArgument
	}
	if strings.HasSuffix(name, " ") {
		return qferr.ErrIllegalArgument
	}
	return validateNoNUL(name)
}

func (windowsFlavor) RenderRoot(root string) string { return root }
