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

package channel

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/quartzfs/quartzfs/pkg/attr"
	"github.com/quartzfs/quartzfs/pkg/block"
	"github.com/quartzfs/quartzfs/pkg/inode"
	"github.com/quartzfs/quartzfs/pkg/qfclock"
	"github.com/quartzfs/quartzfs/pkg/qferr"
)

func newTestFile(t *testing.T) *inode.File {
	t.Helper()
	svc, err := attr.NewService([]attr.Provider{attr.BasicProvider{}, attr.OwnerProvider{}})
	if err != nil {
		t.Fatalf("attr.NewService: %v", err)
	}
	pool := block.New(64, 1<<20, -1)
	clock := qfclock.NewFake(time.Unix(1000, 0))
	f := inode.NewFactory(clock, pool, svc, nil)
	return f.NewRegularFile()
}

func TestReadWriteAtNoPositionMutation(t *testing.T) {
	file := newTestFile(t)
	ch := Open(file, Read|Write)
	defer ch.Close()
	ctx := context.Background()

	if _, err := ch.WriteAt(ctx, []byte("hello"), 0); err != nil {
		t.Fatalf("WriteAt: %v", err)
	}
	if ch.Position() != 0 {
		t.Errorf("position after WriteAt = %d, want 0", ch.Position())
	}

	buf := make([]byte, 5)
	n, err := ch.ReadAt(ctx, buf, 0)
	if err != nil {
		t.Fatalf("ReadAt: %v", err)
	}
	if string(buf[:n]) != "hello" {
		t.Errorf("ReadAt = %q, want hello", buf[:n])
	}
	if ch.Position() != 0 {
		t.Errorf("position after ReadAt = %d, want 0", ch.Position())
	}
}

func TestPositionedReadWriteAdvances(t *testing.T) {
	file := newTestFile(t)
	ch := Open(file, Read|Write)
	defer ch.Close()
	ctx := context.Background()

	n, err := ch.Write(ctx, []byte("AB"))
	if err != nil || n != 2 {
		t.Fatalf("Write = %d, %v", n, err)
	}
	if ch.Position() != 2 {
		t.Fatalf("position = %d, want 2", ch.Position())
	}

	if err := ch.Seek(0); err != nil {
		t.Fatalf("Seek: %v", err)
	}
	buf := make([]byte, 2)
	n, err = ch.Read(ctx, buf)
	if err != nil || string(buf[:n]) != "AB" {
		t.Fatalf("Read = %q, %v", buf[:n], err)
	}
	if ch.Position() != 2 {
		t.Errorf("position after Read = %d, want 2", ch.Position())
	}
}

// TestAppendAlwaysSeeksToEnd verifies that a write in append mode
// writes at the file's current size regardless of the channel's stored
// position.
func TestAppendAlwaysSeeksToEnd(t *testing.T) {
	file := newTestFile(t)
	ch := Open(file, Write|Append)
	defer ch.Close()
	ctx := context.Background()

	if _, err := ch.Write(ctx, []byte("AB")); err != nil {
		t.Fatalf("Write AB: %v", err)
	}
	if ch.Position() != 2 || ch.Size() != 2 {
		t.Fatalf("after AB: position=%d size=%d, want 2,2", ch.Position(), ch.Size())
	}

	if err := ch.Seek(0); err != nil {
		t.Fatalf("Seek: %v", err)
	}
	n, err := ch.Write(ctx, []byte("CD"))
	if err != nil || n != 2 {
		t.Fatalf("Write CD: %d, %v", n, err)
	}
	if ch.Position() != 4 {
		t.Errorf("position after append write = %d, want 4", ch.Position())
	}

	got := make([]byte, 4)
	if _, err := ch.ReadAt(ctx, got, 0); err != nil {
		t.Fatalf("ReadAt: %v", err)
	}
	if !bytes.Equal(got, []byte("ABCD")) {
		t.Errorf("content = %q, want ABCD", got)
	}
}

func TestModeValidation(t *testing.T) {
	file := newTestFile(t)
	ctx := context.Background()

	ro := Open(file, Read)
	defer ro.Close()
	if _, err := ro.Write(ctx, []byte("x")); err != qferr.ErrNonWritable {
		t.Errorf("write on read-only channel = %v, want ErrNonWritable", err)
	}

	wo := Open(file, Write)
	defer wo.Close()
	if _, err := wo.Read(ctx, make([]byte, 1)); err != qferr.ErrNonReadable {
		t.Errorf("read on write-only channel = %v, want ErrNonReadable", err)
	}
}

func TestNegativeArgumentsRejected(t *testing.T) {
	file := newTestFile(t)
	ch := Open(file, Read|Write)
	defer ch.Close()
	ctx := context.Background()

	if _, err := ch.ReadAt(ctx, make([]byte, 1), -1); err != qferr.ErrIllegalArgument {
		t.Errorf("ReadAt negative offset = %v, want ErrIllegalArgument", err)
	}
	if err := ch.Seek(-1); err != qferr.ErrIllegalArgument {
		t.Errorf("Seek negative = %v, want ErrIllegalArgument", err)
	}
	if err := ch.Truncate(ctx, -1); err != qferr.ErrIllegalArgument {
		t.Errorf("Truncate negative = %v, want ErrIllegalArgument", err)
	}
}

func TestTruncateClampsPosition(t *testing.T) {
	file := newTestFile(t)
	ch := Open(file, Read|Write)
	defer ch.Close()
	ctx := context.Background()

	if _, err := ch.Write(ctx, []byte("hello world")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := ch.Truncate(ctx, 3); err != nil {
		t.Fatalf("Truncate: %v", err)
	}
	if ch.Position() != 3 {
		t.Errorf("position after truncate = %d, want 3", ch.Position())
	}
	if ch.Size() != 3 {
		t.Errorf("size after truncate = %d, want 3", ch.Size())
	}
}

func TestClosedChannelRejectsOperations(t *testing.T) {
	file := newTestFile(t)
	ch := Open(file, Read|Write)
	ch.Close()
	ctx := context.Background()

	if _, err := ch.Read(ctx, make([]byte, 1)); err != qferr.ErrClosedChannel {
		t.Errorf("Read on closed channel = %v, want ErrClosedChannel", err)
	}
	if _, err := ch.Write(ctx, []byte("x")); err != qferr.ErrClosedChannel {
		t.Errorf("Write on closed channel = %v, want ErrClosedChannel", err)
	}
}

func TestLockRejectsOverlap(t *testing.T) {
	file := newTestFile(t)
	ch1 := Open(file, Read|Write)
	defer ch1.Close()
	ch2 := Open(file, Read|Write)
	defer ch2.Close()

	l1, err := ch1.Lock(0, 10, false)
	if err != nil {
		t.Fatalf("Lock: %v", err)
	}
	if _, err := ch2.TryLock(5, 10, false); err == nil {
		t.Error("overlapping exclusive lock should have failed")
	}
	l1.Release()
	if _, err := ch2.TryLock(5, 10, false); err != nil {
		t.Errorf("lock after release = %v, want nil", err)
	}
}

func TestSharedLocksCoexist(t *testing.T) {
	file := newTestFile(t)
	ch1 := Open(file, Read|Write)
	defer ch1.Close()
	ch2 := Open(file, Read|Write)
	defer ch2.Close()

	if _, err := ch1.Lock(0, 0, true); err != nil {
		t.Fatalf("Lock shared 1: %v", err)
	}
	if _, err := ch2.Lock(0, 0, true); err != nil {
		t.Errorf("Lock shared 2 = %v, want nil (shared locks coexist)", err)
	}
}

func TestCloseReleasesChannelLocks(t *testing.T) {
	file := newTestFile(t)
	ch1 := Open(file, Read|Write)
	ch2 := Open(file, Read|Write)
	defer ch2.Close()

	if _, err := ch1.Lock(0, 0, false); err != nil {
		t.Fatalf("Lock: %v", err)
	}
	ch1.Close()
	if _, err := ch2.Lock(0, 0, false); err != nil {
		t.Errorf("Lock after owner closed = %v, want nil", err)
	}
}

func TestContextCancellationClosesByInterrupt(t *testing.T) {
	file := newTestFile(t)
	ch := Open(file, Read|Write)
	defer ch.Close()

	// Hold the content lock here on the test goroutine so the channel's
	// acquire blocks, and use an already-cancelled context for that call.
	file.Lock()
	defer file.Unlock()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := ch.ReadAt(ctx, make([]byte, 1), 0); err != qferr.ErrClosedByInterrupt {
		t.Errorf("ReadAt with cancelled context = %v, want ErrClosedByInterrupt", err)
	}
	closed, _ := ch.Closed()
	if !closed {
		t.Error("channel should be closed after interrupt")
	}
}
