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

func TestBatchInsertRejectsOverflow(t *testing.T) {
	tr := newTree(t, "TestBatchInsertRejectsOverflow", 2)
	leaves := make([][32]byte, 5)
	if err := tr.BatchInsert(0, leaves); err != pmtree.ErrMerkleTreeIsFull {
		t.Fatalf("BatchInsert overflow: got %v, want ErrMerkleTreeIsFull", err)
	}
}

func TestBatchInsertEmptyIsNoop(t *testing.T) {
	tr := newTree(t, "TestBatchInsertEmptyIsNoop", 2)
	root := tr.Root()
	if err := tr.BatchInsert(0, nil); err != nil {
		t.Fatalf("BatchInsert(nil): %v", err)
	}
	if tr.Root() != root {
		t.Fatalf("root changed after empty BatchInsert")
	}
}

// BatchInsert of 9 leaves from index 0 into a depth-4 tree must match the
// root produced by setting the same leaves one at a time via Set.
func TestBatchInsertMatchesSequentialSet(t *testing.T) {
	const depth = 4
	leaves := make([][32]byte, 9)
	for i := range leaves {
		leaves[i] = leaf(byte(i + 1))
	}

	sequential := newTree(t, "TestBatchInsertMatchesSequentialSet/sequential", depth)
	for i, l := range leaves {
		if err := sequential.Set(i, l); err != nil {
			t.Fatalf("Set(%d): %v", i, err)
		}
	}

	batched := newTree(t, "TestBatchInsertMatchesSequentialSet/batched", depth)
	if err := batched.BatchInsert(0, leaves); err != nil {
		t.Fatalf("BatchInsert: %v", err)
	}

	if sequential.Root() != batched.Root() {
		t.Fatalf("sequential root %x != batch root %x", sequential.Root(), batched.Root())
	}
}

func TestSetRangeOverwritesWindow(t *testing.T) {
	const depth = 4
	sequential := newTree(t, "TestSetRangeOverwritesWindow/sequential", depth)
	for i := 0; i < 6; i++ {
		if err := sequential.Set(i, leaf(byte(i+1))); err != nil {
			t.Fatalf("Set(%d): %v", i, err)
		}
	}
	if err := sequential.Set(3, leaf(100)); err != nil {
		t.Fatalf("Set(3): %v", err)
	}
	if err := sequential.Set(4, leaf(101)); err != nil {
		t.Fatalf("Set(4): %v", err)
	}

	ranged := newTree(t, "TestSetRangeOverwritesWindow/ranged", depth)
	for i := 0; i < 6; i++ {
		if err := ranged.Set(i, leaf(byte(i+1))); err != nil {
			t.Fatalf("Set(%d): %v", i, err)
		}
	}
	if err := ranged.SetRange(3, [][32]byte{leaf(100), leaf(101)}); err != nil {
		t.Fatalf("SetRange: %v", err)
	}

	if sequential.Root() != ranged.Root() {
		t.Fatalf("sequential root %x != SetRange root %x", sequential.Root(), ranged.Root())
	}
}

func TestBatchInsertAdvancesNextIndex(t *testing.T) {
	tr := newTree(t, "TestBatchInsertAdvancesNextIndex", 3)
	leaves := [][32]byte{leaf(1), leaf(2), leaf(3)}
	if err := tr.BatchInsert(2, leaves); err != nil {
		t.Fatalf("BatchInsert: %v", err)
	}
	if tr.LeavesSet() != 5 {
		t.Fatalf("LeavesSet() = %d, want 5", tr.LeavesSet())
	}
}

func TestBatchInsertWithMetrics(t *testing.T) {
	db, err := memory.New(memory.Config{Name: "TestBatchInsertWithMetrics"})
	if err != nil {
		t.Fatalf("memory.New: %v", err)
	}
	reg := newTestRegistry(t)
	m, err := pmtree.NewMetrics(reg)
	if err != nil {
		t.Fatalf("NewMetrics: %v", err)
	}
	tr, err := pmtree.New[[32]byte](3, db, keccak.New(), pmtree.WithMetrics[[32]byte](m))
	if err != nil {
		t.Fatalf("pmtree.New: %v", err)
	}
	if err := tr.BatchInsert(0, [][32]byte{leaf(1), leaf(2)}); err != nil {
		t.Fatalf("BatchInsert: %v", err)
	}
}
