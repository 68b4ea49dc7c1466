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
	"sync"
	"time"

	"github.com/quartzfs/quartzfs/pkg/inode"
)

// State is a watch key's lifecycle state: created READY, posting an
// event transitions it to SIGNALLED, and cancellation is terminal.
type State int

const (
	StateReady State = iota
	StateSignalled
	StateCancelled
)

// MaxQueueSize bounds the number of events a single key holds before
// further events are folded into a synthetic Overflow event.
const MaxQueueSize = 512

type fingerprintEntry struct {
	display string
	modTime time.Time
}

// Key is one directory registration: its subscribed event kinds, its
// pending event queue, and its lifecycle state.
type Key struct {
	svc   *Service
	dir   *inode.Directory
	kinds map[Kind]bool

	mu          sync.Mutex
	state       State
	pending     []Event
	fingerprint map[string]fingerprintEntry
}

func kindSet(kinds []Kind) map[Kind]bool {
	m := make(map[Kind]bool, len(kinds))
	for _, k := range kinds {
		m[k] = true
	}
	return m
}

func snapshotFingerprint(dir *inode.Directory) map[string]fingerprintEntry {
	fp := make(map[string]fingerprintEntry)
	for _, e := range dir.Snapshot() {
		fp[e.Name.Canonical] = fingerprintEntry{display: e.Name.Display, modTime: e.File.ModifiedTime()}
	}
	return fp
}

// State reports the key's current lifecycle state.
func (k *Key) State() State {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.state
}

// Events drains and returns every event accumulated since the last
// drain. Callers are expected to call Reset afterward.
func (k *Key) Events() []Event {
	k.mu.Lock()
	defer k.mu.Unlock()
	out := k.pending
	k.pending = nil
	return out
}

// Reset returns a SIGNALLED key to READY. If events arrived while the
// caller was draining (pending is non-empty again), the key is
// re-enqueued instead and Reset still reports true. Reset on a
// cancelled key reports false.
func (k *Key) Reset() bool {
	k.mu.Lock()
	if k.state == StateCancelled {
		k.mu.Unlock()
		return false
	}
	if len(k.pending) > 0 {
		k.mu.Unlock()
		k.svc.enqueue(k)
		return true
	}
	k.state = StateReady
	k.mu.Unlock()
	return true
}

// Cancel invalidates the key permanently. A subsequent Reset reports
// false.
func (k *Key) Cancel() {
	k.mu.Lock()
	k.state = StateCancelled
	k.mu.Unlock()
}

// post appends evt to the key's pending queue, coalescing with the
// immediately preceding event if it is an identical (kind, name) pair,
// and folding anything past MaxQueueSize into a trailing synthetic
// Overflow event whose count is the number of events it has absorbed.
func (k *Key) post(evt Event) {
	k.mu.Lock()
	if n := len(k.pending); n > 0 && k.pending[n-1].Kind == evt.Kind && k.pending[n-1].Name == evt.Name {
		k.pending[n-1].Count++
	} else if len(k.pending) >= MaxQueueSize {
		if n := len(k.pending); n > 0 && k.pending[n-1].Kind == Overflow {
			k.pending[n-1].Count++
		} else {
			k.pending = append(k.pending, Event{Kind: Overflow, Count: 1})
		}
	} else {
		k.pending = append(k.pending, Event{Kind: evt.Kind, Name: evt.Name, Count: 1})
	}
	wasReady := k.state == StateReady
	k.state = StateSignalled
	k.mu.Unlock()
	if wasReady {
		k.svc.enqueue(k)
	}
}

func (k *Key) wants(kind Kind) bool {
	return k.kinds[kind]
}

// scan re-snapshots the key's directory and posts Create/Delete/Modify
// events for whatever changed since the last scan.
func (k *Key) scan() {
	k.mu.Lock()
	if k.state == StateCancelled {
		k.mu.Unlock()
		return
	}
	dir := k.dir
	oldFp := k.fingerprint
	k.mu.Unlock()

	entries := dir.Snapshot()
	newFp := make(map[string]fingerprintEntry, len(entries))
	for _, e := range entries {
		newFp[e.Name.Canonical] = fingerprintEntry{display: e.Name.Display, modTime: e.File.ModifiedTime()}
		old, existed := oldFp[e.Name.Canonical]
		switch {
		case !existed:
			if k.wants(Create) {
				k.post(Event{Kind: Create, Name: e.Name.Display})
			}
		case !old.modTime.Equal(e.File.ModifiedTime()):
			if k.wants(Modify) {
				k.post(Event{Kind: Modify, Name: e.Name.Display})
			}
		}
	}
	for canon, old := range oldFp {
		if _, still := newFp[canon]; !still && k.wants(Delete) {
			k.post(Event{Kind: Delete, Name: old.display})
		}
	}

	k.mu.Lock()
	k.fingerprint = newFp
	k.mu.Unlock()
}
