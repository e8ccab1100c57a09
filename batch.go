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
	"context"
	"sync"

	"github.com/golang/glog"
	"golang.org/x/sync/errgroup"
)

// nodePos identifies a node by (depth, index) within the in-progress
// subtree map used by BatchInsert.
type nodePos struct {
	depth, index int
}

// subtreeMap is the shared, mutable map S described in spec.md §4.3: a
// single-writer/multi-reader table of not-yet-flushed node values. It is
// safe for concurrent Get/Set from the fork-join recomputation.
type subtreeMap[F any] struct {
	mu sync.Mutex
	m  map[nodePos]F
}

func newSubtreeMap[F any]() *subtreeMap[F] {
	return &subtreeMap[F]{m: make(map[nodePos]F)}
}

func (s *subtreeMap[F]) set(depth, index int, v F) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[nodePos{depth, index}] = v
}

func (s *subtreeMap[F]) get(depth, index int) (F, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.m[nodePos{depth, index}]
	return v, ok
}

func (s *subtreeMap[F]) forEach(fn func(depth, index int, v F)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for pos, v := range s.m {
		fn(pos.depth, pos.index, v)
	}
}

func (s *subtreeMap[F]) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.m)
}

// SetRange is an alias for BatchInsert, named after the rewrite it
// performs on the leaf window [start, start+len(leaves)).
func (t *MerkleTree[F]) SetRange(start int, leaves []F) error {
	return t.BatchInsert(start, leaves)
}

// BatchInsert rewrites the contiguous leaf window [start, start+len(leaves))
// and recomputes only the smallest sub-DAG covering it, using parallel
// fork-join recomputation. Starting from the same tree state, BatchInsert
// produces the same root, next_index and persisted node values as calling
// Set once per leaf in order.
func (t *MerkleTree[F]) BatchInsert(start int, leaves []F) error {
	end := start + len(leaves)
	if end > t.Capacity() {
		return ErrMerkleTreeIsFull
	}
	if len(leaves) == 0 {
		return nil
	}

	s := newSubtreeMap[F]()
	s.set(0, 0, t.root)

	if err := t.fillNodes(s, 0, 0, start, leaves); err != nil {
		return err
	}

	root, err := t.batchRecalculate(context.Background(), s, 0, 0)
	if err != nil {
		return err
	}

	entries := make(map[Key][]byte, s.len())
	s.forEach(func(depth, index int, v F) {
		entries[encode(depth, index)] = t.hasher.Serialize(v)
	})
	if err := t.db.PutBatch(entries); err != nil {
		return err
	}

	if end > t.nextIndex {
		t.nextIndex = end
		if err := t.persistNextIndex(); err != nil {
			return err
		}
	}
	t.root = root
	t.metrics.observeBatchInsert(len(leaves))
	glog.V(2).Infof("pmtree: batch_insert start=%d count=%d next_index=%d", start, len(leaves), t.nextIndex)
	return nil
}

// fillNodes descends from (depth, index) seeding S with the old value of
// every sibling subtree it passes, and the new leaf values at the bottom,
// recursing only into the halves that actually overlap [start, start+len(leaves)).
func (t *MerkleTree[F]) fillNodes(s *subtreeMap[F], depth, index, start int, leaves []F) error {
	end := start + len(leaves)

	if depth == t.depth {
		if index >= start && index < end {
			s.set(depth, index, leaves[index-start])
		}
		return nil
	}

	left, right := 2*index, 2*index+1
	leftVal, err := t.getElem(depth+1, left)
	if err != nil {
		return err
	}
	rightVal, err := t.getElem(depth+1, right)
	if err != nil {
		return err
	}
	s.set(depth+1, left, leftVal)
	s.set(depth+1, right, rightVal)

	span := 1 << uint(t.depth-depth)
	leafLo := index * span
	mid := leafLo + span/2
	leafHi := leafLo + span

	if start < mid && end > leafLo {
		if err := t.fillNodes(s, depth+1, left, start, leaves); err != nil {
			return err
		}
	}
	if end > mid && start < leafHi {
		if err := t.fillNodes(s, depth+1, right, start, leaves); err != nil {
			return err
		}
	}
	return nil
}

// batchRecalculate is the divide-and-conquer recomputation: a node whose
// left child was never seeded in S (because neither of its descendants
// overlapped the update window) is returned unchanged; otherwise both
// children are recomputed in parallel via errgroup and the parent is
// rehashed and written back into S.
func (t *MerkleTree[F]) batchRecalculate(ctx context.Context, s *subtreeMap[F], depth, index int) (F, error) {
	if depth == t.depth {
		v, _ := s.get(depth, index)
		return v, nil
	}
	if _, ok := s.get(depth+1, 2*index); !ok {
		v, _ := s.get(depth, index)
		return v, nil
	}

	var left, right F
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		v, err := t.batchRecalculate(gctx, s, depth+1, 2*index)
		if err != nil {
			return err
		}
		left = v
		return nil
	})
	g.Go(func() error {
		v, err := t.batchRecalculate(gctx, s, depth+1, 2*index+1)
		if err != nil {
			return err
		}
		right = v
		return nil
	})
	if err := g.Wait(); err != nil {
		var zero F
		return zero, err
	}

	result := t.hasher.Hash([]F{left, right})
	s.set(depth, index, result)
	return result, nil
}
