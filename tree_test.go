// Copyright 2024 The pmtree Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package pmtree_test

import (
	"testing"

	"github.com/rln-tools/pmtree"
	"github.com/rln-tools/pmtree/hashers/keccak"
	"github.com/rln-tools/pmtree/storage/memory"
)

func newTree(t *testing.T, name string, depth int) *pmtree.MerkleTree[[32]byte] {
	t.Helper()
	db, err := memory.New(memory.Config{Name: name})
	if err != nil {
		t.Fatalf("memory.New: %v", err)
	}
	tr, err := pmtree.New[[32]byte](depth, db, keccak.New())
	if err != nil {
		t.Fatalf("pmtree.New: %v", err)
	}
	return tr
}

func leaf(n byte) [32]byte {
	var f [32]byte
	f[31] = n
	return f
}

func TestCapacityAndDepth(t *testing.T) {
	tr := newTree(t, "TestCapacityAndDepth", 4)
	if tr.Depth() != 4 {
		t.Fatalf("Depth() = %d, want 4", tr.Depth())
	}
	if tr.Capacity() != 16 {
		t.Fatalf("Capacity() = %d, want 16", tr.Capacity())
	}
}

func TestSetOutOfBounds(t *testing.T) {
	tr := newTree(t, "TestSetOutOfBounds", 2)
	if err := tr.Set(-1, leaf(1)); err != pmtree.ErrIndexOutOfBounds {
		t.Fatalf("Set(-1): got %v, want ErrIndexOutOfBounds", err)
	}
	if err := tr.Set(4, leaf(1)); err != pmtree.ErrIndexOutOfBounds {
		t.Fatalf("Set(4): got %v, want ErrIndexOutOfBounds", err)
	}
}

func TestGetOutOfBounds(t *testing.T) {
	tr := newTree(t, "TestGetOutOfBounds", 2)
	if _, err := tr.Get(4); err != pmtree.ErrIndexOutOfBounds {
		t.Fatalf("Get(4): got %v, want ErrIndexOutOfBounds", err)
	}
}

func TestUpdateNextAdvancesLeavesSet(t *testing.T) {
	tr := newTree(t, "TestUpdateNextAdvancesLeavesSet", 2)
	if tr.LeavesSet() != 0 {
		t.Fatalf("LeavesSet() = %d, want 0", tr.LeavesSet())
	}
	for i := 0; i < 4; i++ {
		if err := tr.UpdateNext(leaf(byte(i + 1))); err != nil {
			t.Fatalf("UpdateNext: %v", err)
		}
		if tr.LeavesSet() != i+1 {
			t.Fatalf("LeavesSet() = %d, want %d", tr.LeavesSet(), i+1)
		}
	}
	if err := tr.UpdateNext(leaf(5)); err != pmtree.ErrMerkleTreeIsFull {
		t.Fatalf("UpdateNext on full tree: got %v, want ErrMerkleTreeIsFull", err)
	}
}

func TestDeleteRejectsUnwrittenIndex(t *testing.T) {
	tr := newTree(t, "TestDeleteRejectsUnwrittenIndex", 2)
	if err := tr.Delete(0); err != pmtree.ErrInvalidKey {
		t.Fatalf("Delete(0) before any Set: got %v, want ErrInvalidKey", err)
	}
	if err := tr.UpdateNext(leaf(1)); err != nil {
		t.Fatalf("UpdateNext: %v", err)
	}
	if err := tr.Delete(1); err != pmtree.ErrInvalidKey {
		t.Fatalf("Delete(1) beyond next_index: got %v, want ErrInvalidKey", err)
	}
	if err := tr.Delete(0); err != nil {
		t.Fatalf("Delete(0): %v", err)
	}
}

func TestSetThenGetRoundTrips(t *testing.T) {
	tr := newTree(t, "TestSetThenGetRoundTrips", 3)
	want := leaf(42)
	if err := tr.Set(5, want); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, err := tr.Get(5)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got != want {
		t.Fatalf("Get(5) = %x, want %x", got, want)
	}
}

func TestLoadRecoversPersistedTree(t *testing.T) {
	db, err := memory.New(memory.Config{Name: "TestLoadRecoversPersistedTree"})
	if err != nil {
		t.Fatalf("memory.New: %v", err)
	}
	h := keccak.New()
	tr, err := pmtree.New[[32]byte](3, db, h)
	if err != nil {
		t.Fatalf("pmtree.New: %v", err)
	}
	if err := tr.Set(2, leaf(7)); err != nil {
		t.Fatalf("Set: %v", err)
	}
	wantRoot := tr.Root()

	loaded, err := pmtree.Load[[32]byte](db, h)
	if err != nil {
		t.Fatalf("pmtree.Load: %v", err)
	}
	if loaded.Root() != wantRoot {
		t.Fatalf("Load root = %x, want %x", loaded.Root(), wantRoot)
	}
	if loaded.Depth() != 3 {
		t.Fatalf("Load depth = %d, want 3", loaded.Depth())
	}
	if loaded.LeavesSet() != 3 {
		t.Fatalf("Load next_index = %d, want 3", loaded.LeavesSet())
	}
	got, err := loaded.Get(2)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got != leaf(7) {
		t.Fatalf("Get(2) = %x, want %x", got, leaf(7))
	}
}
