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

// buildDefaultCache returns, for each level 0..depth, the hash of a
// perfect subtree of height (depth - level) whose leaves are all the
// hasher's default leaf. cache[depth] is the default leaf itself;
// cache[level] is hash(cache[level+1], cache[level+1]).
//
// This is a pure function of depth and the hasher, recomputed at New and
// Load rather than persisted, per invariant 5 in spec.md.
func buildDefaultCache[F any](depth int, h Hasher[F]) []F {
	cache := make([]F, depth+1)
	cache[depth] = h.DefaultLeaf()
	for level := depth - 1; level >= 0; level-- {
		cache[level] = h.Hash([]F{cache[level+1], cache[level+1]})
	}
	return cache
}
