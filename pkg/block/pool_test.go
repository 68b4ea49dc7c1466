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

package block

import (
	"errors"
	"testing"

	"github.com/quartzfs/quartzfs/pkg/qferr"
)

// TestDiskFull verifies that with blockSize=4, maxSize=40,
// maxCacheSize=16, allocating 10 blocks fills the disk, and the 11th
// request fails without changing live/cached state.
func TestDiskFull(t *testing.T) {
	p := New(4, 40, 16)
	ids, err := p.Allocate(10)
	if err != nil {
		t.Fatalf("Allocate(10): %v", err)
	}
	if len(ids) != 10 {
		t.Fatalf("got %d ids; want 10", len(ids))
	}
	if got, want := p.UnallocatedSpace(), int64(0); got != want {
		t.Errorf("UnallocatedSpace = %d; want %d", got, want)
	}

	if _, err := p.Allocate(1); !errors.Is(err, qferr.ErrNoSpace) {
		t.Fatalf("Allocate(1) on full disk: got %v; want ErrNoSpace", err)
	}
	if got, want := p.LiveBlocks(), int64(10); got != want {
		t.Errorf("LiveBlocks after failed allocate = %d; want %d", got, want)
	}
	if got, want := p.UnallocatedSpace(), int64(0); got != want {
		t.Errorf("UnallocatedSpace after failed allocate = %d; want %d", got, want)
	}
}

// TestAccountingInvariant checks that unallocated + live*B + cached*B
// always equals the rounded-down total capacity.
func TestAccountingInvariant(t *testing.T) {
	p := New(8, 100, 4) // maxBlocks = 12, total = 96
	total := p.TotalSpace()
	if total != 96 {
		t.Fatalf("TotalSpace = %d; want 96", total)
	}

	ids, err := p.Allocate(6)
	if err != nil {
		t.Fatalf("Allocate(6): %v", err)
	}
	check := func() {
		t.Helper()
		got := p.UnallocatedSpace() + p.LiveBlocks()*8 + p.CachedBlocks()*8
		if got != total {
			t.Fatalf("unallocated+live*B+cached*B = %d; want %d", got, total)
		}
	}
	check()

	p.Free(ids[:3])
	check()
	if got, want := p.CachedBlocks(), int64(3); got != want {
		t.Errorf("CachedBlocks = %d; want %d", got, want)
	}

	// Cache is bounded to 4; free 3 more already-live blocks so the cache
	// overflows by 2 and those blocks are dropped rather than counted live
	// or cached.
	p.Free(ids[3:6])
	check()
	if got, want := p.CachedBlocks(), int64(4); got != want {
		t.Errorf("CachedBlocks after overflow = %d; want %d", got, want)
	}
}

// TestAllocateReusesCache verifies freed blocks are handed back out again
// before any new block is minted, and that reused blocks come back zeroed.
func TestAllocateReusesCache(t *testing.T) {
	p := New(4, 400, -1)
	ids, err := p.Allocate(2)
	if err != nil {
		t.Fatal(err)
	}
	b := p.Block(ids[0])
	copy(b, []byte{1, 2, 3, 4})

	p.Free(ids)
	ids2, err := p.Allocate(2)
	if err != nil {
		t.Fatal(err)
	}
	found := false
	for _, id := range ids2 {
		if id == ids[0] {
			found = true
			for _, v := range p.Block(id) {
				if v != 0 {
					t.Fatalf("reused block not zeroed: %v", p.Block(id))
				}
			}
		}
	}
	if !found {
		t.Fatalf("expected a freed block id to be reused; got %v from freed %v", ids2, ids)
	}
}

// TestAllocateAllOrNothing ensures a failing allocation never partially
// reserves blocks.
func TestAllocateAllOrNothing(t *testing.T) {
	p := New(1, 5, -1)
	if _, err := p.Allocate(10); !errors.Is(err, qferr.ErrNoSpace) {
		t.Fatalf("Allocate(10) on 5-byte disk: got %v; want ErrNoSpace", err)
	}
	if got, want := p.LiveBlocks(), int64(0); got != want {
		t.Errorf("LiveBlocks after failed allocate = %d; want %d", got, want)
	}
}
