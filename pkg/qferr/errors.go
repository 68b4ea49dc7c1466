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

// Package qferr defines the sentinel errors used throughout quartzfs to
// decide on how to deal with failure cases, and a PathError type that
// attaches operation and path context to them.
package qferr

import (
	"errors"
	"fmt"
)

// Sentinel errors, one per error kind named in the filesystem's error
// taxonomy. Callers match against these with errors.Is; wrapping via
// PathError preserves them.
var (
	ErrNoSuchFile         = errors.New("no such file or directory")
	ErrNotADirectory      = errors.New("not a directory")
	ErrFileAlreadyExists  = errors.New("file already exists")
	ErrLoop               = errors.New("too many levels of symbolic links")
	ErrAccessDenied       = errors.New("access denied")
	ErrReadOnly           = errors.New("read-only file system")
	ErrIllegalArgument    = errors.New("illegal argument")
	ErrUnsupported        = errors.New("unsupported operation")
	ErrClosedChannel      = errors.New("channel closed")
	ErrClosedFilesystem   = errors.New("filesystem closed")
	ErrClosedWatchService = errors.New("watch service closed")
	ErrNonReadable        = errors.New("channel not open for reading")
	ErrNonWritable        = errors.New("channel not open for writing")
	ErrClosedByInterrupt  = errors.New("closed by interrupt")
	ErrAsynchronousClose  = errors.New("asynchronous close")
	ErrNoSpace            = errors.New("no space left on device")
	ErrPatternSyntax      = errors.New("invalid glob or regex pattern")
)

// PathError records an error and the operation and path that caused it,
// the way os.PathError does for the standard library's filesystem calls.
type PathError struct {
	Op   string
	Path string
	Err  error
}

func (e *PathError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *PathError) Unwrap() error { return e.Err }

// Wrap attaches an operation and path to err, returning nil if err is nil.
func Wrap(op, path string, err error) error {
	if err == nil {
		return nil
	}
	return &PathError{Op: op, Path: path, Err: err}
}

// Is reports whether err wraps target somewhere in its chain.
func Is(err, target error) bool { return errors.Is(err, target) }
