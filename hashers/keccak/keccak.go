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

// Package keccak implements pmtree.Hasher[[32]byte] using Keccak-256,
// the pre-standardization variant of SHA-3 used throughout Ethereum
// tooling (golang.org/x/crypto/sha3's NewLegacyKeccak256).
package keccak

import (
	"fmt"

	"golang.org/x/crypto/sha3"
)

// Hasher hashes pairs of 32-byte values by concatenating them and
// applying Keccak-256: Hash(a, b) = Keccak256(a || b). The default leaf
// is the all-zero 32-byte value.
type Hasher struct{}

// New returns a Hasher. It holds no state and is safe for concurrent use.
func New() Hasher { return Hasher{} }

func (Hasher) DefaultLeaf() [32]byte {
	return [32]byte{}
}

func (Hasher) Serialize(value [32]byte) []byte {
	out := make([]byte, 32)
	copy(out, value[:])
	return out
}

func (Hasher) Deserialize(value []byte) ([32]byte, error) {
	var out [32]byte
	if len(value) != 32 {
		return out, fmt.Errorf("pmtree/hashers/keccak: deserialize: want 32 bytes, got %d", len(value))
	}
	copy(out[:], value)
	return out, nil
}

func (h Hasher) Hash(inputs [][32]byte) [32]byte {
	sponge := sha3.NewLegacyKeccak256()
	for _, in := range inputs {
		sponge.Write(in[:])
	}
	var out [32]byte
	copy(out[:], sponge.Sum(nil))
	return out
}
