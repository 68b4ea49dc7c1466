//go:build linux || darwin

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
	"log"
	"path/filepath"

	"bazil.org/fuse"
	fusefs "bazil.org/fuse/fs"

	"github.com/quartzfs/quartzfs/pkg/fuseadapt"
	"github.com/quartzfs/quartzfs/pkg/memfs"
)

// serveMount mounts fs at dir as a FUSE filesystem, serving it in a
// background goroutine, and returns a func that unmounts it. Mirrors
// pk-mount's fuse.Mount/fusefs.Serve pairing.
func serveMount(fs *memfs.Filesystem, dir string) (func(), error) {
	conn, err := fuse.Mount(dir, fuse.VolumeName(filepath.Base(dir)))
	if err != nil {
		return nil, err
	}
	go func() {
		if err := fusefs.Serve(conn, fuseadapt.New(fs)); err != nil {
			log.Printf("quartzfs-shell: fuse serve: %v", err)
		}
	}()
	return func() {
		if err := fuse.Unmount(dir); err != nil {
			log.Printf("quartzfs-shell: unmount %s: %v", dir, err)
		}
		conn.Close()
	}, nil
}
