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

import (
	"fmt"
	"sync"

	"github.com/quartzfs/quartzfs/pkg/attr"
	"github.com/quartzfs/quartzfs/pkg/qferr"
)

// schemeRegistry is the process-wide "one registered scheme" table,
// deliberately modeled as global state: an explicit registry
// initialized once, rather than hidden in package-level
// variables scattered across the filesystem's own state. A Filesystem
// instance otherwise owns everything else about itself.
var (
	schemeMu sync.Mutex
	schemes  = make(map[string]*Filesystem)
)

// RegisterScheme associates scheme with fs. It fails if scheme is
// already taken.
func RegisterScheme(scheme string, fs *Filesystem) error {
	schemeMu.Lock()
	defer schemeMu.Unlock()
	if _, exists := schemes[scheme]; exists {
		return fmt.Errorf("memfs: %w: scheme %q already registered", qferr.ErrFileAlreadyExists, scheme)
	}
	schemes[scheme] = fs
	fs.OnClose(func() { UnregisterScheme(scheme) })
	return nil
}

// LookupScheme returns the filesystem registered under scheme, if any.
func LookupScheme(scheme string) (*Filesystem, bool) {
	schemeMu.Lock()
	defer schemeMu.Unlock()
	fs, ok := schemes[scheme]
	return fs, ok
}

// UnregisterScheme removes scheme's registration, if present. Safe to
// call more than once.
func UnregisterScheme(scheme string) {
	schemeMu.Lock()
	defer schemeMu.Unlock()
	delete(schemes, scheme)
}

// ToURI renders rawPath as a "<scheme>://<fileKey>/<encoded-path>" URI
// for this filesystem.
func (fs *Filesystem) ToURI(scheme, rawPath string) (string, error) {
	if err := fs.checkOpen(); err != nil {
		return "", err
	}
	p, err := fs.pathSvc.Parse(rawPath)
	if err != nil {
		return "", qferr.Wrap("toURI", rawPath, err)
	}
	res, lookupErr := fs.resolver.Lookup(p, false)
	isDir := lookupErr == nil && res.File.Kind() == attr.KindDirectory
	return fs.pathSvc.ToURI(scheme, fs.fileKey, p, isDir)
}

// ParseURI parses a URI previously produced by ToURI back into a raw
// path string usable with this filesystem's operations.
func (fs *Filesystem) ParseURI(uri string) (string, error) {
	p, err := fs.pathSvc.FromURI(uri)
	if err != nil {
		return "", err
	}
	return fs.pathSvc.String(p), nil
}
