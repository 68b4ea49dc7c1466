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

package watch

import (
	"testing"
	"time"

	"github.com/quartzfs/quartzfs/pkg/attr"
	"github.com/quartzfs/quartzfs/pkg/block"
	"github.com/quartzfs/quartzfs/pkg/inode"
	"github.com/quartzfs/quartzfs/pkg/qfclock"
	"github.com/quartzfs/quartzfs/pkg/vfname"
)

func newTestDir(t *testing.T) (*inode.Factory, *inode.Directory) {
	t.Helper()
	svc, err := attr.NewService([]attr.Provider{attr.BasicProvider{}, attr.OwnerProvider{}})
	if err != nil {
		t.Fatalf("attr.NewService: %v", err)
	}
	pool := block.New(64, 1<<20, -1)
	clock := qfclock.NewFake(time.Unix(1000, 0))
	factory := inode.NewFactory(clock, pool, svc, nil)
	root := factory.NewRoot()
	return factory, root.Directory()
}

func nm(s string) vfname.Name {
	return vfname.New(s, vfname.Normalization{}, vfname.Normalization{})
}

// TestCreateThenDeleteInOrder verifies that a create followed by a
// delete within the same poll window is observed in order.
func TestCreateThenDeleteInOrder(t *testing.T) {
	factory, dir := newTestDir(t)
	svc := New(Config{Interval: 4 * time.Millisecond})
	defer svc.Close()

	key, err := svc.Register(dir, Create, Delete)
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	a := factory.NewRegularFile()
	if err := dir.Link(nm("a"), a); err != nil {
		t.Fatalf("Link: %v", err)
	}

	ready, err := svc.PollTimeout(500 * time.Millisecond)
	if err != nil {
		t.Fatalf("PollTimeout: %v", err)
	}
	if ready != key {
		t.Fatalf("PollTimeout returned %v, want the registered key", ready)
	}
	events := key.Events()
	if len(events) != 1 || events[0].Kind != Create || events[0].Name != "a" {
		t.Fatalf("events after create = %+v", events)
	}
	if !key.Reset() {
		t.Fatal("Reset after drain should return true")
	}

	if _, err := dir.Unlink(nm("a")); err != nil {
		t.Fatalf("Unlink: %v", err)
	}
	ready, err = svc.PollTimeout(500 * time.Millisecond)
	if err != nil {
		t.Fatalf("PollTimeout: %v", err)
	}
	if ready != key {
		t.Fatal("PollTimeout should return the key again after delete")
	}
	events = key.Events()
	if len(events) != 1 || events[0].Kind != Delete || events[0].Name != "a" {
		t.Fatalf("events after delete = %+v", events)
	}
}

// TestOverflow verifies that events past MaxQueueSize fold into a
// trailing Overflow event.
func TestOverflow(t *testing.T) {
	factory, dir := newTestDir(t)
	svc := New(Config{Interval: 4 * time.Millisecond})
	defer svc.Close()

	key, err := svc.Register(dir, Create)
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	total := MaxQueueSize + 10
	for i := 0; i < total; i++ {
		f := factory.NewRegularFile()
		name := nm(uniqueName(i))
		if err := dir.Link(name, f); err != nil {
			t.Fatalf("Link %d: %v", i, err)
		}
	}

	ready, err := svc.PollTimeout(2 * time.Second)
	if err != nil {
		t.Fatalf("PollTimeout: %v", err)
	}
	if ready != key {
		t.Fatal("expected the registered key to be ready")
	}
	events := key.Events()
	if len(events) != MaxQueueSize+1 {
		t.Fatalf("event queue length = %d, want %d", len(events), MaxQueueSize+1)
	}
	for i := 0; i < MaxQueueSize; i++ {
		if events[i].Kind != Create {
			t.Fatalf("event %d kind = %v, want Create", i, events[i].Kind)
		}
	}
	last := events[MaxQueueSize]
	if last.Kind != Overflow || last.Count != 10 {
		t.Fatalf("last event = %+v, want Overflow count 10", last)
	}
}

func TestCancelThenResetFails(t *testing.T) {
	_, dir := newTestDir(t)
	svc := New(Config{Interval: time.Hour})
	defer svc.Close()

	key, err := svc.Register(dir)
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	key.Cancel()
	if key.Reset() {
		t.Error("Reset after Cancel should return false")
	}
}

func TestCloseWakesWaiters(t *testing.T) {
	_, dir := newTestDir(t)
	svc := New(Config{Interval: time.Hour})

	if _, err := svc.Register(dir); err != nil {
		t.Fatalf("Register: %v", err)
	}

	done := make(chan error, 1)
	go func() {
		_, err := svc.Take()
		done <- err
	}()

	time.Sleep(10 * time.Millisecond)
	svc.Close()

	select {
	case err := <-done:
		if err == nil {
			t.Error("Take after Close should return an error")
		}
	case <-time.After(time.Second):
		t.Fatal("Take did not wake up after Close")
	}

	if _, err := svc.Register(dir); err == nil {
		t.Error("Register after Close should fail")
	}
}

func uniqueName(i int) string {
	const letters = "abcdefghijklmnopqrstuvwxyz"
	b := []byte{letters[i/676%26], letters[i/26%26], letters[i%26]}
	return string(b) + "-" + itoa(i)
}

func itoa(i int) string {
	if i == 0 {
		return "0"
	}
	var buf [20]byte
	pos := len(buf)
	for i > 0 {
		pos--
		buf[pos] = byte('0' + i%10)
		i /= 10
	}
	return string(buf[pos:])
}
