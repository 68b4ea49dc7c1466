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

package memfs

import "github.com/quartzfs/quartzfs/pkg/glob"

func (fs *Filesystem) separators() []rune {
	seps := []rune{fs.pathSvc.Flavor().Separator()}
	if alt := fs.pathSvc.Flavor().AltSeparator(); alt != 0 {
		seps = append(seps, alt)
	}
	return seps
}

// CompilePattern translates a POSIX glob pattern into a Matcher over
// this filesystem's configured path separators.
func (fs *Filesystem) CompilePattern(pattern string) (*glob.Matcher, error) {
	return glob.Compile(pattern, fs.separators())
}

// Glob lists the entries of dirPath whose display name matches pattern.
func (fs *Filesystem) Glob(dirPath, pattern string) ([]DirEntry, error) {
	m, err := fs.CompilePattern(pattern)
	if err != nil {
		return nil, err
	}
	entries, err := fs.ReadDir(dirPath)
	if err != nil {
		return nil, err
	}
	out := entries[:0]
	for _, e := range entries {
		if m.MatchString(e.Name) {
			out = append(out, e)
		}
	}
	return out, nil
}
