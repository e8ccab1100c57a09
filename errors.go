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

import "errors"

var (
	// ErrMerkleTreeIsFull is returned by UpdateNext and BatchInsert when
	// there is no room left for the requested number of new leaves.
	ErrMerkleTreeIsFull = errors.New("pmtree: merkle tree is full")

	// ErrInvalidKey is returned by Delete when the requested index is
	// negative or not below the tree's next_index.
	ErrInvalidKey = errors.New("pmtree: invalid key")

	// ErrIndexOutOfBounds is returned by Set, Get and Proof when the
	// requested index is not less than the tree's capacity.
	ErrIndexOutOfBounds = errors.New("pmtree: index out of bounds")
)
