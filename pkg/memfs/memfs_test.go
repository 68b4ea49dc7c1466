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
	"context"
	"testing"
	"time"

	"github.com/quartzfs/quartzfs/pkg/inode"
	"github.com/quartzfs/quartzfs/pkg/qfclock"
	"github.com/quartzfs/quartzfs/pkg/qferr"
	"github.com/quartzfs/quartzfs/pkg/watch"
)

func newTestFilesystem(t *testing.T) *Filesystem {
	t.Helper()
	cfg, err := NewBuilder().FileTimeSource(qfclock.NewFake(time.Unix(1700000000, 0))).Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	fs, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { fs.Close() })
	return fs
}

func writeAll(t *testing.T, fs *Filesystem, path string, data []byte) {
	t.Helper()
	ch, err := fs.Open(path, Write|CreateNew)
	if err != nil {
		t.Fatalf("Open(%s): %v", path, err)
	}
	if len(data) > 0 {
		if _, err := ch.Write(context.Background(), data); err != nil {
			t.Fatalf("Write: %v", err)
		}
	}
	if err := ch.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
}

func readAll(t *testing.T, fs *Filesystem, path string) []byte {
	t.Helper()
	ch, err := fs.Open(path, Read)
	if err != nil {
		t.Fatalf("Open(%s): %v", path, err)
	}
	defer ch.Close()
	buf := make([]byte, ch.Size())
	n, err := ch.ReadAt(context.Background(), buf, 0)
	if err != nil && n < len(buf) {
		t.Fatalf("ReadAt: %v", err)
	}
	return buf[:n]
}

func TestCreateWriteReadRoundTrip(t *testing.T) {
	fs := newTestFilesystem(t)
	writeAll(t, fs, "/hello.txt", []byte("hello world"))
	got := readAll(t, fs, "/hello.txt")
	if string(got) != "hello world" {
		t.Fatalf("got %q, want %q", got, "hello world")
	}
}

func TestCreateNewRejectsExisting(t *testing.T) {
	fs := newTestFilesystem(t)
	if err := fs.CreateFile("/a.txt"); err != nil {
		t.Fatalf("CreateFile: %v", err)
	}
	if err := fs.CreateFile("/a.txt"); !qferr.Is(err, qferr.ErrFileAlreadyExists) {
		t.Fatalf("got %v, want ErrFileAlreadyExists", err)
	}
}

func TestOpenMissingWithoutCreateFails(t *testing.T) {
	fs := newTestFilesystem(t)
	if _, err := fs.Open("/missing.txt", Read); !qferr.Is(err, qferr.ErrNoSuchFile) {
		t.Fatalf("got %v, want ErrNoSuchFile", err)
	}
}

func TestDeleteOnCloseUnlinksOnExplicitClose(t *testing.T) {
	fs := newTestFilesystem(t)
	ch, err := fs.Open("/temp.txt", Write|CreateNew|DeleteOnClose)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if _, err := fs.ReadDir("/"); err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if err := ch.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	entries, err := fs.ReadDir("/")
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	for _, e := range entries {
		if e.Name == "temp.txt" {
			t.Fatalf("temp.txt still present after DELETE_ON_CLOSE Close")
		}
	}
}

func TestDeleteRejectsNonEmptyDirectory(t *testing.T) {
	fs := newTestFilesystem(t)
	if err := fs.Mkdir("/dir"); err != nil {
		t.Fatalf("Mkdir: %v", err)
	}
	writeAll(t, fs, "/dir/a.txt", nil)
	if err := fs.Delete("/dir"); !qferr.Is(err, qferr.ErrIllegalArgument) {
		t.Fatalf("got %v, want ErrIllegalArgument", err)
	}
	if err := fs.Delete("/dir/a.txt"); err != nil {
		t.Fatalf("Delete(a.txt): %v", err)
	}
	if err := fs.Delete("/dir"); err != nil {
		t.Fatalf("Delete(dir): %v", err)
	}
}

func TestMkdirAndReadDirSorted(t *testing.T) {
	fs := newTestFilesystem(t)
	for _, n := range []string{"/b.txt", "/a.txt", "/c.txt"} {
		writeAll(t, fs, n, nil)
	}
	entries, err := fs.ReadDir("/")
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("got %d entries, want 3", len(entries))
	}
	for i, want := range []string{"a.txt", "b.txt", "c.txt"} {
		if entries[i].Name != want {
			t.Fatalf("entries[%d] = %q, want %q", i, entries[i].Name, want)
		}
	}
}

func TestWalkVisitsTree(t *testing.T) {
	fs := newTestFilesystem(t)
	if err := fs.Mkdir("/d1"); err != nil {
		t.Fatalf("Mkdir: %v", err)
	}
	writeAll(t, fs, "/d1/leaf.txt", []byte("x"))

	var visited []string
	if err := fs.Walk("/", func(path string, _ *inode.File) error {
		visited = append(visited, path)
		return nil
	}); err != nil {
		t.Fatalf("Walk: %v", err)
	}
	want := map[string]bool{"/": true, "/d1": true, "/d1/leaf.txt": true}
	if len(visited) != len(want) {
		t.Fatalf("visited %v, want keys of %v", visited, want)
	}
	for _, v := range visited {
		if !want[v] {
			t.Fatalf("unexpected visited path %q", v)
		}
	}
}

func TestSymlinkReadlinkAndOpenRejectsSymlinkItself(t *testing.T) {
	fs := newTestFilesystem(t)
	writeAll(t, fs, "/real.txt", []byte("data"))
	if err := fs.Symlink("/link.txt", "/real.txt"); err != nil {
		t.Fatalf("Symlink: %v", err)
	}
	target, err := fs.Readlink("/link.txt")
	if err != nil {
		t.Fatalf("Readlink: %v", err)
	}
	if target != "/real.txt" {
		t.Fatalf("got target %q, want %q", target, "/real.txt")
	}
	// Open resolves its final component without following a symlink, so
	// opening the link name itself (rather than what it points to) fails.
	if _, err := fs.Open("/link.txt", Read); !qferr.Is(err, qferr.ErrIllegalArgument) {
		t.Fatalf("got %v, want ErrIllegalArgument", err)
	}
}

func TestHardLinkSharesContentRejectsDirectory(t *testing.T) {
	fs := newTestFilesystem(t)
	writeAll(t, fs, "/orig.txt", []byte("shared"))
	if err := fs.Link("/alias.txt", "/orig.txt"); err != nil {
		t.Fatalf("Link: %v", err)
	}
	if got := readAll(t, fs, "/alias.txt"); string(got) != "shared" {
		t.Fatalf("got %q, want %q", got, "shared")
	}

	if err := fs.Mkdir("/adir"); err != nil {
		t.Fatalf("Mkdir: %v", err)
	}
	if err := fs.Link("/adir-alias", "/adir"); !qferr.Is(err, qferr.ErrIllegalArgument) {
		t.Fatalf("got %v, want ErrIllegalArgument", err)
	}
}

func TestMoveRelinksWithoutDuplicatingContent(t *testing.T) {
	fs := newTestFilesystem(t)
	writeAll(t, fs, "/src.txt", []byte("payload"))
	if err := fs.Move("/src.txt", "/dst.txt", 0); err != nil {
		t.Fatalf("Move: %v", err)
	}
	if _, err := fs.Open("/src.txt", Read); !qferr.Is(err, qferr.ErrNoSuchFile) {
		t.Fatalf("got %v, want ErrNoSuchFile for old name", err)
	}
	if got := readAll(t, fs, "/dst.txt"); string(got) != "payload" {
		t.Fatalf("got %q, want %q", got, "payload")
	}
}

func TestMoveWithoutReplaceExistingFails(t *testing.T) {
	fs := newTestFilesystem(t)
	writeAll(t, fs, "/src.txt", []byte("a"))
	writeAll(t, fs, "/dst.txt", []byte("b"))
	if err := fs.Move("/src.txt", "/dst.txt", 0); !qferr.Is(err, qferr.ErrFileAlreadyExists) {
		t.Fatalf("got %v, want ErrFileAlreadyExists", err)
	}
	if err := fs.Move("/src.txt", "/dst.txt", ReplaceExisting); err != nil {
		t.Fatalf("Move with ReplaceExisting: %v", err)
	}
	if got := readAll(t, fs, "/dst.txt"); string(got) != "a" {
		t.Fatalf("got %q, want %q", got, "a")
	}
}

// TestCopyProducesIndependentBlockList verifies that mutating the copy
// never affects the original's bytes.
func TestCopyProducesIndependentBlockList(t *testing.T) {
	fs := newTestFilesystem(t)
	writeAll(t, fs, "/src.txt", []byte("original"))
	if err := fs.Copy("/src.txt", "/dup.txt", 0); err != nil {
		t.Fatalf("Copy: %v", err)
	}

	ch, err := fs.Open("/dup.txt", Write)
	if err != nil {
		t.Fatalf("Open(dup.txt): %v", err)
	}
	if _, err := ch.WriteAt(context.Background(), []byte("CHANGED!"), 0); err != nil {
		t.Fatalf("WriteAt: %v", err)
	}
	ch.Close()

	if got := readAll(t, fs, "/src.txt"); string(got) != "original" {
		t.Fatalf("source mutated by copy's write: got %q", got)
	}
	if got := readAll(t, fs, "/dup.txt"); string(got) != "CHANGED!" {
		t.Fatalf("got %q, want %q", got, "CHANGED!")
	}
}

func TestCopyAttributesOption(t *testing.T) {
	fs := newTestFilesystem(t)
	writeAll(t, fs, "/src.txt", []byte("v"))
	if err := fs.SetAttribute("/src.txt", "user:tag", []byte("marked")); err != nil {
		t.Fatalf("SetAttribute: %v", err)
	}

	if err := fs.Copy("/src.txt", "/plain.txt", 0); err != nil {
		t.Fatalf("Copy: %v", err)
	}
	plainAttrs, err := fs.ReadAttributes("/plain.txt", "user:*")
	if err != nil {
		t.Fatalf("ReadAttributes: %v", err)
	}
	if _, ok := plainAttrs["tag"]; ok {
		t.Fatalf("plain copy unexpectedly carries user:tag")
	}

	if err := fs.Copy("/src.txt", "/tagged.txt", CopyAttributes); err != nil {
		t.Fatalf("Copy with CopyAttributes: %v", err)
	}
	taggedAttrs, err := fs.ReadAttributes("/tagged.txt", "user:*")
	if err != nil {
		t.Fatalf("ReadAttributes: %v", err)
	}
	if v, _ := taggedAttrs["tag"].([]byte); string(v) != "marked" {
		t.Fatalf("got %v, want tag=marked", taggedAttrs)
	}
}

func TestReadAttributesAndSetAttribute(t *testing.T) {
	fs := newTestFilesystem(t)
	writeAll(t, fs, "/f.txt", []byte("12345"))
	attrs, err := fs.ReadAttributes("/f.txt", "basic:size")
	if err != nil {
		t.Fatalf("ReadAttributes: %v", err)
	}
	if attrs["size"] != int64(5) {
		t.Fatalf("got size %v, want 5", attrs["size"])
	}
	if err := fs.SetAttribute("/f.txt", "user:note", []byte("hi")); err != nil {
		t.Fatalf("SetAttribute: %v", err)
	}
	attrs, err = fs.ReadAttributes("/f.txt", "user:note")
	if err != nil {
		t.Fatalf("ReadAttributes: %v", err)
	}
	if v, _ := attrs["note"].([]byte); string(v) != "hi" {
		t.Fatalf("got %v, want note=hi", attrs["note"])
	}
}

func TestGlobMatchesByPattern(t *testing.T) {
	fs := newTestFilesystem(t)
	for _, n := range []string{"/a.txt", "/b.txt", "/c.log"} {
		writeAll(t, fs, n, nil)
	}
	entries, err := fs.Glob("/", "*.txt")
	if err != nil {
		t.Fatalf("Glob: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2: %v", len(entries), entries)
	}
}

func TestWatchObservesCreateAndDelete(t *testing.T) {
	cfg, err := NewBuilder().WatchServiceConfiguration(20 * time.Millisecond).Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	fs, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer fs.Close()

	key, err := fs.Watch("/", watch.Create, watch.Delete)
	if err != nil {
		t.Fatalf("Watch: %v", err)
	}
	defer key.Cancel()

	writeAll(t, fs, "/seen.txt", nil)

	var events []watch.Event
	waitForEvents := func(min int) {
		deadline := time.Now().Add(2 * time.Second)
		for time.Now().Before(deadline) {
			events = append(events, key.Events()...)
			if len(events) >= min {
				return
			}
			time.Sleep(10 * time.Millisecond)
		}
		t.Fatalf("got %d events, want at least %d: %v", len(events), min, events)
	}

	waitForEvents(1)
	if events[0].Kind != watch.Create || events[0].Name != "seen.txt" {
		t.Fatalf("got event %v, want Create seen.txt", events[0])
	}

	if err := fs.Delete("/seen.txt"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	waitForEvents(2)
	if events[1].Kind != watch.Delete || events[1].Name != "seen.txt" {
		t.Fatalf("got event %v, want Delete seen.txt", events[1])
	}
}

func TestURISchemeRegistryRoundTripAndTeardown(t *testing.T) {
	fs := newTestFilesystem(t)
	scheme := "quartzfs-test-scheme"
	if err := RegisterScheme(scheme, fs); err != nil {
		t.Fatalf("RegisterScheme: %v", err)
	}
	if _, ok := LookupScheme(scheme); !ok {
		t.Fatalf("LookupScheme: scheme not found after registration")
	}
	if err := RegisterScheme(scheme, fs); !qferr.Is(err, qferr.ErrFileAlreadyExists) {
		t.Fatalf("got %v, want ErrFileAlreadyExists on re-registration", err)
	}

	writeAll(t, fs, "/f.txt", nil)
	uri, err := fs.ToURI(scheme, "/f.txt")
	if err != nil {
		t.Fatalf("ToURI: %v", err)
	}
	path, err := fs.ParseURI(uri)
	if err != nil {
		t.Fatalf("ParseURI: %v", err)
	}
	if path != "/f.txt" {
		t.Fatalf("got %q, want %q", path, "/f.txt")
	}

	if err := fs.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if _, ok := LookupScheme(scheme); ok {
		t.Fatalf("scheme still registered after filesystem Close")
	}
}

func TestCloseClosesRegisteredChannelsAndIsIdempotent(t *testing.T) {
	fs := newTestFilesystem(t)
	ch1, err := fs.Open("/one.txt", Write|CreateNew)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	ch2, err := fs.Open("/two.txt", Write|CreateNew)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	if err := fs.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if closed, _ := ch1.Closed(); !closed {
		t.Fatalf("ch1 not closed by Filesystem.Close")
	}
	if closed, _ := ch2.Closed(); !closed {
		t.Fatalf("ch2 not closed by Filesystem.Close")
	}
	if err := fs.Close(); err != nil {
		t.Fatalf("second Close: %v, want nil (no-op)", err)
	}
	if err := fs.CreateFile("/after-close.txt"); !qferr.Is(err, qferr.ErrClosedFilesystem) {
		t.Fatalf("got %v, want ErrClosedFilesystem after Close", err)
	}
}

func TestBuilderRejectsWorkingDirectoryOutsideRoots(t *testing.T) {
	_, err := NewBuilder().Roots("/a").WorkingDirectory("/b").Build()
	if !qferr.Is(err, qferr.ErrIllegalArgument) {
		t.Fatalf("got %v, want ErrIllegalArgument", err)
	}
}

func TestBuilderRejectsUnknownAttributeView(t *testing.T) {
	_, err := NewBuilder().AttributeViews("not-a-real-view").Build()
	if !qferr.Is(err, qferr.ErrIllegalArgument) {
		t.Fatalf("got %v, want ErrIllegalArgument", err)
	}
}

func TestDiskFullFailsLargeWrite(t *testing.T) {
	cfg, err := NewBuilder().BlockSize(16).MaxSize(64).Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	fs, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer fs.Close()

	ch, err := fs.Open("/big.bin", Write|CreateNew)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer ch.Close()
	_, err = ch.Write(context.Background(), make([]byte, 4096))
	if !qferr.Is(err, qferr.ErrNoSpace) {
		t.Fatalf("got %v, want ErrNoSpace", err)
	}
}
