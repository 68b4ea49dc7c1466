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

import "github.com/quartzfs/quartzfs/pkg/qferr"

// ReadAttributes resolves path and returns the requested view's
// attributes: spec is "view:*" for every attribute in the view, or
// "view:a,b,c" for a specific subset. NOFOLLOW_LINKS is never applied
// here; attribute reads always resolve through a symlink.
func (fs *Filesystem) ReadAttributes(rawPath, spec string) (map[string]interface{}, error) {
	if err := fs.checkOpen(); err != nil {
		return nil, err
	}
	p, err := fs.pathSvc.Parse(rawPath)
	if err != nil {
		return nil, qferr.Wrap("readAttributes", rawPath, err)
	}
	res, err := fs.resolver.Lookup(p, false)
	if err != nil {
		return nil, qferr.Wrap("readAttributes", rawPath, err)
	}
	out, err := fs.attrSvc.ReadAttributes(res.File.Attrs(), res.File, spec)
	if err != nil {
		return nil, qferr.Wrap("readAttributes", rawPath, err)
	}
	return out, nil
}

// SetAttribute resolves path and sets a single "view:attr" value on it.
func (fs *Filesystem) SetAttribute(rawPath, key string, value interface{}) error {
	if err := fs.checkOpen(); err != nil {
		return err
	}
	p, err := fs.pathSvc.Parse(rawPath)
	if err != nil {
		return qferr.Wrap("setAttribute", rawPath, err)
	}
	res, err := fs.resolver.Lookup(p, false)
	if err != nil {
		return qferr.Wrap("setAttribute", rawPath, err)
	}
	if err := fs.attrSvc.SetAttribute(res.File.Attrs(), res.File, key, value, false); err != nil {
		return qferr.Wrap("setAttribute", rawPath, err)
	}
	return nil
}
