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

import (
	"fmt"
	"testing"
)

// intHasher is a minimal Hasher[int] for exercising pure tree-engine
// logic without pulling in a real hash function: Hash(a, b) = a + b*31,
// an arbitrary but deterministic combiner.
type intHasher struct{}

func (intHasher) DefaultLeaf() int { return 0 }

func (intHasher) Serialize(v int) []byte {
	return []byte(fmt.Sprintf("%d", v))
}

func (intHasher) Deserialize(b []byte) (int, error) {
	var v int
	_, err := fmt.Sscanf(string(b), "%d", &v)
	return v, err
}

func (intHasher) Hash(inputs []int) int {
	return inputs[0] + inputs[1]*31
}

func TestBuildDefaultCacheLevels(t *testing.T) {
	h := intHasher{}
	cache := buildDefaultCache(3, h)
	if len(cache) != 4 {
		t.Fatalf("len(cache) = %d, want 4", len(cache))
	}
	if cache[3] != h.DefaultLeaf() {
		t.Fatalf("cache[depth] = %d, want default leaf %d", cache[3], h.DefaultLeaf())
	}
	for level := 2; level >= 0; level-- {
		want := h.Hash([]int{cache[level+1], cache[level+1]})
		if cache[level] != want {
			t.Fatalf("cache[%d] = %d, want %d", level, cache[level], want)
		}
	}
}

func TestBuildDefaultCacheDepthZero(t *testing.T) {
	h := intHasher{}
	cache := buildDefaultCache(0, h)
	if len(cache) != 1 || cache[0] != h.DefaultLeaf() {
		t.Fatalf("buildDefaultCache(0, h) = %v, want [0]", cache)
	}
}
