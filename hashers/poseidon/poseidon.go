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

// Package poseidon implements pmtree.Hasher[*big.Int] using the Poseidon
// permutation over the BN254 scalar field
// (github.com/iden3/go-iden3-crypto/poseidon), the hash used by
// circom/snarkjs-style circuits where Keccak's bit-twiddling is
// expensive to express arithmetically.
package poseidon

import (
	"fmt"
	"math/big"

	iden3poseidon "github.com/iden3/go-iden3-crypto/poseidon"
)

// Hasher hashes pairs of field elements already reduced mod the BN254
// scalar field. Values returned from DefaultLeaf, Deserialize and Hash
// are fresh *big.Int instances; callers must not mutate a value they
// didn't themselves allocate through one of those.
type Hasher struct{}

// New returns a Hasher. It holds no state and is safe for concurrent use.
func New() Hasher { return Hasher{} }

func (Hasher) DefaultLeaf() *big.Int {
	return big.NewInt(0)
}

// Serialize encodes value as a 32-byte big-endian integer, matching the
// fixed-width Database key/value convention used throughout pmtree.
func (Hasher) Serialize(value *big.Int) []byte {
	b := value.Bytes()
	out := make([]byte, 32)
	copy(out[32-len(b):], b)
	return out
}

func (Hasher) Deserialize(value []byte) (*big.Int, error) {
	if len(value) != 32 {
		return nil, fmt.Errorf("pmtree/hashers/poseidon: deserialize: want 32 bytes, got %d", len(value))
	}
	return new(big.Int).SetBytes(value), nil
}

// Hash applies the Poseidon permutation to inputs (always length 2 when
// called by the engine) and returns the field-reduced digest.
func (Hasher) Hash(inputs []*big.Int) *big.Int {
	out, err := iden3poseidon.Hash(inputs)
	if err != nil {
		// The engine only ever calls Hash with arity 2 on already
		// field-reduced inputs; an error here means a caller outside
		// the engine passed malformed data.
		panic(fmt.Sprintf("pmtree/hashers/poseidon: hash: %v", err))
	}
	return out
}
