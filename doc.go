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

// Package pmtree implements a persistent, fixed-depth binary Merkle tree.
//
// Leaves may be set, updated and deleted; internal nodes are kept
// consistent with the hash of their children. Every node that has ever
// diverged from its level's default value is stored durably through a
// pluggable Database; nodes that have never diverged are synthesized on
// demand from a small per-level cache instead of being written out.
//
// The tree is parameterized over the leaf element type F through the
// Hasher[F] contract, and over the storage backend through the Database
// contract. Concrete hashers and storage backends live in the hashers/
// and storage/ subdirectories; this package only depends on the two
// contracts.
package pmtree
