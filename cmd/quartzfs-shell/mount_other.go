//go:build !linux && !darwin

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

package main

import (
	"fmt"

	"github.com/quartzfs/quartzfs/pkg/memfs"
)

// serveMount is unavailable outside linux/darwin, matching pk-mount's
// own FUSE platform restriction.
func serveMount(fs *memfs.Filesystem, dir string) (func(), error) {
	return nil, fmt.Errorf("quartzfs-shell: -mount is only supported on linux and darwin")
}
