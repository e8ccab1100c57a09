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

package poseidon_test

import (
	"math/big"
	"testing"

	"github.com/rln-tools/pmtree"
	"github.com/rln-tools/pmtree/hashers/poseidon"
	"github.com/rln-tools/pmtree/storage/memory"
)

func TestDepth16ProofSideBits(t *testing.T) {
	db, err := memory.New(memory.Config{Name: "poseidon/TestDepth16ProofSideBits"})
	if err != nil {
		t.Fatalf("memory.New: %v", err)
	}
	tr, err := pmtree.New[*big.Int](16, db, poseidon.New())
	if err != nil {
		t.Fatalf("pmtree.New: %v", err)
	}

	leaf := big.NewInt(12345)
	if err := tr.Set(3, leaf); err != nil {
		t.Fatalf("Set(3): %v", err)
	}

	proof, err := tr.Proof(3)
	if err != nil {
		t.Fatalf("Proof(3): %v", err)
	}
	if proof.LeafIndex() != 3 {
		t.Fatalf("LeafIndex() = %d, want 3", proof.LeafIndex())
	}
	if proof.Length() != 16 {
		t.Fatalf("Length() = %d, want 16", proof.Length())
	}

	want := []int{1, 1}
	sides := proof.PathIndex()
	for i, w := range want {
		if sides[i] != w {
			t.Fatalf("side bit %d = %d, want %d", i, sides[i], w)
		}
	}
	for i := 2; i < len(sides); i++ {
		if sides[i] != 0 {
			t.Fatalf("side bit %d = %d, want 0", i, sides[i])
		}
	}

	if !tr.Verify(leaf, proof) {
		t.Fatalf("Verify failed for the leaf just set")
	}
}

func TestSerializeDeserializeRoundTrip(t *testing.T) {
	h := poseidon.New()
	values := []*big.Int{big.NewInt(0), big.NewInt(1), big.NewInt(1 << 40)}
	for _, v := range values {
		got, err := h.Deserialize(h.Serialize(v))
		if err != nil {
			t.Fatalf("Deserialize: %v", err)
		}
		if got.Cmp(v) != 0 {
			t.Fatalf("got %s, want %s", got, v)
		}
	}
}

func TestHashDeterministic(t *testing.T) {
	h := poseidon.New()
	a, b := big.NewInt(1), big.NewInt(2)
	first := h.Hash([]*big.Int{a, b})
	second := h.Hash([]*big.Int{a, b})
	if first.Cmp(second) != 0 {
		t.Fatalf("Hash is not deterministic: %s != %s", first, second)
	}
	swapped := h.Hash([]*big.Int{b, a})
	if first.Cmp(swapped) == 0 {
		t.Fatalf("Hash(a,b) should differ from Hash(b,a)")
	}
}
