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

// Package glob translates POSIX glob syntax into a regular expression
// over a configured set of path separators, and wraps the result as a
// Matcher usable directly against path strings. Grounded on the
// regexp/syntax-based filter matching used pack-wide (e.g. rclone's
// filter package) for turning shell-style patterns into compiled
// regexps.
package glob

import (
	"regexp"
	"strings"

	"github.com/quartzfs/quartzfs/pkg/qferr"
)

// Matcher matches strings against a compiled glob pattern.
type Matcher struct {
	re *regexp.Regexp
}

// MatchString reports whether s matches the pattern.
func (m *Matcher) MatchString(s string) bool { return m.re.MatchString(s) }

// Compile translates a POSIX glob pattern into a Matcher. seps lists the
// separator runes the translated pattern should treat specially (`?` and
// `*` never match a separator; `**` matches across them).
func Compile(pattern string, seps []rune) (*Matcher, error) {
	re, err := Translate(pattern, seps)
	if err != nil {
		return nil, err
	}
	compiled, err := regexp.Compile("^" + re + "$")
	if err != nil {
		return nil, qferr.Wrap("glob.Compile", pattern, qferr.ErrPatternSyntax)
	}
	return &Matcher{re: compiled}, nil
}

// Translate converts a POSIX glob pattern to an equivalent regular
// expression (without anchors) over the given separators:
//
//	?        -> [^SEP]
//	*        -> [^SEP]*
//	**       -> .*
//	[...]    -> a character class, with leading "!" negation and "-"
//	            ranges preserved
//	{a,b,c}  -> (a|b|c), no nested braces
//
// All other regex metacharacters are escaped literally. Unterminated
// character classes or invalid brace nesting return ErrPatternSyntax.
func Translate(pattern string, seps []rune) (string, error) {
	notSep := notSepClass(seps)
	r := []rune(pattern)
	var out strings.Builder
	for i := 0; i < len(r); i++ {
		c := r[i]
		switch c {
		case '\\':
			if i+1 >= len(r) {
				return "", qferr.ErrPatternSyntax
			}
			i++
			out.WriteString(regexp.QuoteMeta(string(r[i])))
		case '*':
			if i+1 < len(r) && r[i+1] == '*' {
				out.WriteString(".*")
				i++
			} else {
				out.WriteString(notSep)
				out.WriteByte('*')
			}
		case '?':
			out.WriteString(notSep)
		case '[':
			end := findClassEnd(r, i+1)
			if end < 0 {
				return "", qferr.ErrPatternSyntax
			}
			body := r[i+1 : end]
			out.WriteByte('[')
			if len(body) > 0 && body[0] == '!' {
				out.WriteByte('^')
				body = body[1:]
			}
			out.WriteString(classBody(body))
			out.WriteByte(']')
			i = end
		case '{':
			end := findBraceEnd(r, i+1)
			if end < 0 {
				return "", qferr.ErrPatternSyntax
			}
			alts := strings.Split(string(r[i+1:end]), ",")
			out.WriteByte('(')
			for j, alt := range alts {
				if j > 0 {
					out.WriteByte('|')
				}
				out.WriteString(regexp.QuoteMeta(alt))
			}
			out.WriteByte(')')
			i = end
		default:
			out.WriteString(regexp.QuoteMeta(string(c)))
		}
	}
	return out.String(), nil
}

func notSepClass(seps []rune) string {
	var b strings.Builder
	b.WriteString("[^")
	for _, s := range seps {
		b.WriteString(regexp.QuoteMeta(string(s)))
	}
	b.WriteByte(']')
	return b.String()
}

// classBody re-escapes the interior of a glob character class for use
// inside a Go regexp class, leaving "-" range syntax intact.
func classBody(body []rune) string {
	var b strings.Builder
	for _, c := range body {
		switch c {
		case '-', '^':
			b.WriteRune(c)
		case '\\', ']':
			b.WriteByte('\\')
			b.WriteRune(c)
		default:
			b.WriteRune(c)
		}
	}
	return b.String()
}

func findClassEnd(r []rune, start int) int {
	for i := start; i < len(r); i++ {
		if r[i] == ']' && i > start {
			return i
		}
	}
	return -1
}

// findBraceEnd finds the matching "}" for a "{" starting at start,
// rejecting nested braces (the spec supports only one level of
// alternation).
func findBraceEnd(r []rune, start int) int {
	for i := start; i < len(r); i++ {
		switch r[i] {
		case '{':
			return -1
		case '}':
			return i
		}
	}
	return -1
}
