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
	"net/url"
	"strings"

	"github.com/quartzfs/quartzfs/pkg/qferr"
)

// ToURI renders an absolute Path as a "<scheme>://<authority>/<path>" URI,
// percent-escaping each name component and appending a trailing slash for
// directories.
func (s *Service) ToURI(scheme, authority string, p Path, isDirectory bool) (string, error) {
	if !p.IsAbsolute() {
		return "", qferr.ErrIllegalArgument
	}
	var segs []string
	if s.flavor.Name() == "windows" {
		root := p.root
		if len(root) >= 2 && root[1] == ':' {
			segs = append(segs, strings.ToUpper(root[:1])+":")
		} else {
			trimmed := strings.Trim(root, `\`)
			segs = append(segs, strings.Split(trimmed, `\`)...)
		}
	}
	for _, n := range p.names {
		segs = append(segs, n.Display)
	}

	var b strings.Builder
	b.WriteString(scheme)
	b.WriteString("://")
	b.WriteString(authority)
	if len(segs) == 0 {
		b.WriteByte('/')
	}
	for _, seg := range segs {
		b.WriteByte('/')
		b.WriteString(url.PathEscape(seg))
	}
	if isDirectory && !strings.HasSuffix(b.String(), "/") {
		b.WriteByte('/')
	}
	return b.String(), nil
}

// FromURI parses a URI produced by ToURI back into a Path. Only the
// absolute path is meaningful; scheme and authority are the caller's
// concern (matching them against a registered filesystem) and are not
// validated here.
func (s *Service) FromURI(raw string) (Path, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return Path{}, qferr.Wrap("FromURI", raw, qferr.ErrIllegalArgument)
	}
	segs := splitNames(u.Path, '/', 0)

	if s.flavor.Name() == "windows" {
		if len(segs) == 0 {
			return Path{}, qferr.ErrIllegalArgument
		}
		first := segs[0]
		var root string
		if len(first) == 2 && first[1] == ':' && isDriveLetter(rune(first[0])) {
			root = strings.ToUpper(first[:1]) + `:\`
			segs = segs[1:]
		} else if len(segs) >= 2 {
			root = `\\` + segs[0] + `\` + segs[1] + `\`
			segs = segs[2:]
		} else {
			return Path{}, qferr.ErrIllegalArgument
		}
		p := Path{root: root, svc: s}
		for _, seg := range segs {
			p.names = append(p.names, s.makeName(seg))
		}
		return p, nil
	}

	p := Path{root: "/", svc: s}
	for _, seg := range segs {
		p.names = append(p.names, s.makeName(seg))
	}
	return p, nil
}
