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

// The quartzfs-shell command exercises an in-memory quartzfs filesystem
// interactively: a line-oriented shell for ls/cat/write/mkdir/rm/mv/cp/
// ln/stat/glob, with an optional FUSE mount so the same filesystem is
// also reachable from the host's regular file tools. It plays the role
// perkeep's cmd/pk-mount plays as the minimal external driver of a
// filesystem package, trimmed to what's needed to exercise quartzfs
// rather than talk to a remote blobserver.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/quartzfs/quartzfs/pkg/memfs"
	"github.com/quartzfs/quartzfs/pkg/watch"
)

var (
	mountPoint = flag.String("mount", "", "if set, also serve the filesystem as a FUSE mount at this path")
	blockSize  = flag.Int("blocksize", 4096, "disk block size in bytes")
	maxSize    = flag.Int64("maxsize", 0, "disk capacity in bytes; 0 means unbounded")
	verbose    = flag.Bool("verbose", false, "set the filesystem's Debug switch (no operation logs through it)")
)

func usage() {
	fmt.Fprintf(os.Stderr, "usage: quartzfs-shell [flags]\n")
	flag.PrintDefaults()
	os.Exit(2)
}

func main() {
	log.SetOutput(os.Stderr)
	flag.Usage = usage
	flag.Parse()
	if flag.NArg() != 0 {
		usage()
	}

	cfg, err := memfs.NewBuilder().
		BlockSize(*blockSize).
		MaxSize(*maxSize).
		Debug(*verbose).
		Build()
	if err != nil {
		log.Fatalf("quartzfs-shell: invalid configuration: %v", err)
	}
	fs, err := memfs.New(cfg)
	if err != nil {
		log.Fatalf("quartzfs-shell: %v", err)
	}
	defer fs.Close()

	if *mountPoint != "" {
		unmount, err := serveMount(fs, *mountPoint)
		if err != nil {
			log.Fatalf("quartzfs-shell: mount %s: %v", *mountPoint, err)
		}
		defer unmount()

		sigc := make(chan os.Signal, 1)
		signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
		go func() {
			<-sigc
			log.Printf("quartzfs-shell: signal received, unmounting %s", *mountPoint)
			unmount()
			os.Exit(0)
		}()
	}

	runShell(fs, os.Stdin, os.Stdout)
}

// runShell reads one command per line from in, dispatching to fs, until
// EOF or an "exit" command.
func runShell(fs *memfs.Filesystem, in io.Reader, out io.Writer) {
	scanner := bufio.NewScanner(in)
	fmt.Fprint(out, "quartzfs> ")
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" {
			if !dispatch(fs, out, line) {
				return
			}
		}
		fmt.Fprint(out, "quartzfs> ")
	}
}

func dispatch(fs *memfs.Filesystem, out io.Writer, line string) bool {
	fields := strings.Fields(line)
	cmd, args := fields[0], fields[1:]
	ctx := context.Background()

	var err error
	switch cmd {
	case "exit", "quit":
		return false
	case "help":
		printHelp(out)
	case "ls":
		err = cmdLs(fs, out, args)
	case "cat":
		err = cmdCat(fs, out, ctx, args)
	case "write":
		err = cmdWrite(fs, ctx, args)
	case "mkdir":
		err = cmdArgs1(args, fs.Mkdir)
	case "rm":
		err = cmdArgs1(args, fs.Delete)
	case "mv":
		err = cmdArgs2(args, func(a, b string) error { return fs.Move(a, b, memfs.ReplaceExisting) })
	case "cp":
		err = cmdArgs2(args, func(a, b string) error { return fs.Copy(a, b, memfs.ReplaceExisting|memfs.CopyAttributes) })
	case "ln":
		err = cmdArgs2(args, fs.Link)
	case "symlink":
		err = cmdArgs2(args, fs.Symlink)
	case "stat":
		err = cmdStat(fs, out, args)
	case "glob":
		err = cmdGlob(fs, out, args)
	case "watch":
		err = cmdWatch(fs, out, args)
	default:
		fmt.Fprintf(out, "unknown command %q; try \"help\"\n", cmd)
		return true
	}
	if err != nil {
		fmt.Fprintf(out, "%s: %v\n", cmd, err)
	}
	return true
}

func printHelp(out io.Writer) {
	fmt.Fprint(out, `commands:
  ls PATH              list a directory
  cat PATH             print a regular file's contents
  write PATH TEXT...   create or overwrite a regular file with TEXT
  mkdir PATH
  rm PATH
  mv SRC DST
  cp SRC DST
  ln NEWPATH EXISTING  hard link
  symlink LINKPATH TARGET
  stat PATH
  glob DIR PATTERN
  watch PATH           poll for one Create/Modify/Delete event
  exit
`)
}

func cmdArgs1(args []string, fn func(string) error) error {
	if len(args) != 1 {
		return fmt.Errorf("want 1 argument, got %d", len(args))
	}
	return fn(args[0])
}

func cmdArgs2(args []string, fn func(a, b string) error) error {
	if len(args) != 2 {
		return fmt.Errorf("want 2 arguments, got %d", len(args))
	}
	return fn(args[0], args[1])
}

func cmdLs(fs *memfs.Filesystem, out io.Writer, args []string) error {
	path := "/"
	if len(args) == 1 {
		path = args[0]
	}
	entries, err := fs.ReadDir(path)
	if err != nil {
		return err
	}
	for _, e := range entries {
		fmt.Fprintf(out, "%s\t%d bytes\n", e.Name, e.File.Size())
	}
	return nil
}

func cmdCat(fs *memfs.Filesystem, out io.Writer, ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("want 1 argument, got %d", len(args))
	}
	ch, err := fs.Open(args[0], memfs.Read)
	if err != nil {
		return err
	}
	defer ch.Close()
	buf := make([]byte, ch.Size())
	n, err := ch.ReadAt(ctx, buf, 0)
	if err != nil && n == 0 {
		return err
	}
	_, err = out.Write(buf[:n])
	if err == nil {
		fmt.Fprintln(out)
	}
	return err
}

func cmdWrite(fs *memfs.Filesystem, ctx context.Context, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("want a path and some text")
	}
	ch, err := fs.Open(args[0], memfs.Read|memfs.Write|memfs.Create|memfs.TruncateExisting)
	if err != nil {
		return err
	}
	defer ch.Close()
	text := strings.Join(args[1:], " ")
	_, err = ch.Write(ctx, []byte(text))
	return err
}

func cmdStat(fs *memfs.Filesystem, out io.Writer, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("want 1 argument, got %d", len(args))
	}
	a, err := fs.ReadAttributes(args[0], "basic:*")
	if err != nil {
		return err
	}
	for _, k := range []string{"size", "isDirectory", "isRegularFile", "isSymbolicLink", "creationTime", "lastModifiedTime", "lastAccessTime", "fileKey"} {
		fmt.Fprintf(out, "%s: %v\n", k, a[k])
	}
	return nil
}

func cmdGlob(fs *memfs.Filesystem, out io.Writer, args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("want 2 arguments, got %d", len(args))
	}
	entries, err := fs.Glob(args[0], args[1])
	if err != nil {
		return err
	}
	for _, e := range entries {
		fmt.Fprintln(out, e.Name)
	}
	return nil
}

func cmdWatch(fs *memfs.Filesystem, out io.Writer, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("want 1 argument, got %d", len(args))
	}
	key, err := fs.Watch(args[0], watch.Create, watch.Modify, watch.Delete)
	if err != nil {
		return err
	}
	defer key.Cancel()
	fmt.Fprintln(out, "watching; press Enter after making a change elsewhere in this session")
	for _, evt := range key.Events() {
		fmt.Fprintf(out, "%s %s (x%d)\n", evt.Kind, evt.Name, evt.Count)
	}
	return nil
}
