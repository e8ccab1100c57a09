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

package pmtree

// Hasher supplies the leaf element type F and the pure hash function the
// tree uses to combine children. Implementations must be safe for
// concurrent use: the batch recomputer calls Hash from multiple
// goroutines at once.
//
// F must be copyable and comparable with ==, and must have a well-defined
// zero value usable as the default leaf unless DefaultLeaf overrides it.
type Hasher[F any] interface {
	// DefaultLeaf returns the canonical default leaf value, i.e. the
	// value of a leaf that has never been set.
	DefaultLeaf() F

	// Serialize converts a field element to its canonical byte
	// representation, as persisted in the Database.
	Serialize(value F) []byte

	// Deserialize is the inverse of Serialize. Implementations must
	// round-trip: Deserialize(Serialize(x)) == x for every x produced
	// by this Hasher.
	Deserialize(value []byte) (F, error)

	// Hash combines child values into a parent value. The engine only
	// ever calls this with exactly two elements.
	Hash(inputs []F) F
}
