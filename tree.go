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
	"encoding/binary"

	"github.com/golang/glog"
)

// defaultDepth and defaultNextIndex are the values Load falls back to
// when the respective metadata key is absent from the database, per
// spec.md's lifecycle section.
const (
	defaultDepth     = 20
	defaultNextIndex = 0
)

// MerkleTree is a persistent, fixed-depth binary Merkle tree over leaf
// elements of type F. A single handle is the unit of mutation: mutating
// methods (Set, Delete, UpdateNext, SetRange, BatchInsert) must not be
// called concurrently with each other or with themselves on the same
// tree, though Get, Root and Proof may run concurrently with each other
// if the underlying Database's Get is safe for concurrent reads.
type MerkleTree[F any] struct {
	db     Database
	hasher Hasher[F]

	depth     int
	nextIndex int
	cache     []F
	root      F

	metrics *Metrics
}

// Option configures optional, non-functional behavior of a MerkleTree
// (observability hooks). It never changes tree semantics.
type Option[F any] func(*MerkleTree[F])

// WithMetrics attaches a Metrics instance that New and the mutating
// methods report to; Load reports nothing. A nil Metrics (the default) disables
// reporting entirely.
func WithMetrics[F any](m *Metrics) Option[F] {
	return func(t *MerkleTree[F]) { t.metrics = m }
}

// New creates a new MerkleTree of the given depth over db, which must
// already have been constructed fresh via a backend's own New(cfg)
// (Go has no associated New/Load on interfaces, so existence-checking
// lives in the backend, not here). It writes the depth and next-index
// metadata, the left spine of the default path, and sets the root to the
// empty-tree root.
func New[F any](depth int, db Database, h Hasher[F], opts ...Option[F]) (*MerkleTree[F], error) {
	cache := buildDefaultCache(depth, h)

	depthBytes := make([]byte, 8)
	binary.BigEndian.PutUint64(depthBytes, uint64(depth))
	if err := db.Put(depthKey, depthBytes); err != nil {
		return nil, err
	}
	if err := db.Put(nextIndexKey, make([]byte, 8)); err != nil {
		return nil, err
	}
	for d := 0; d <= depth; d++ {
		if err := db.Put(encode(d, 0), h.Serialize(cache[d])); err != nil {
			return nil, err
		}
	}

	t := &MerkleTree[F]{
		db:        db,
		hasher:    h,
		depth:     depth,
		nextIndex: defaultNextIndex,
		cache:     cache,
		root:      cache[0],
	}
	for _, opt := range opts {
		opt(t)
	}
	t.metrics.observeNew()
	glog.V(2).Infof("pmtree: new tree depth=%d capacity=%d", depth, t.Capacity())
	return t, nil
}

// Load reopens a MerkleTree over an already-opened db, reading depth and
// next_index (defaulting to 20 and 0 if absent), rebuilding the default
// cache, and reading the root from node (0,0) — falling back to the
// default leaf's level-0 hash if that node has never been written.
func Load[F any](db Database, h Hasher[F], opts ...Option[F]) (*MerkleTree[F], error) {
	depth := defaultDepth
	if b, ok, err := db.Get(depthKey); err != nil {
		return nil, err
	} else if ok {
		depth = int(binary.BigEndian.Uint64(b))
	}

	nextIndex := defaultNextIndex
	if b, ok, err := db.Get(nextIndexKey); err != nil {
		return nil, err
	} else if ok {
		nextIndex = int(binary.BigEndian.Uint64(b))
	}

	cache := buildDefaultCache(depth, h)
	root := cache[0]
	if b, ok, err := db.Get(encode(0, 0)); err != nil {
		return nil, err
	} else if ok {
		v, err := h.Deserialize(b)
		if err != nil {
			return nil, err
		}
		root = v
	}

	t := &MerkleTree[F]{
		db:        db,
		hasher:    h,
		depth:     depth,
		nextIndex: nextIndex,
		cache:     cache,
		root:      root,
	}
	for _, opt := range opts {
		opt(t)
	}
	glog.V(2).Infof("pmtree: loaded tree depth=%d next_index=%d", depth, nextIndex)
	return t, nil
}

// getElem returns the node value at (d, i), synthesizing it from the
// default-path cache when it has never been persisted.
func (t *MerkleTree[F]) getElem(d, i int) (F, error) {
	b, ok, err := t.db.Get(encode(d, i))
	if err != nil {
		var zero F
		return zero, err
	}
	if !ok {
		return t.cache[d], nil
	}
	return t.hasher.Deserialize(b)
}

// Set writes leaf at index k, recomputes the path to the root, and
// advances next_index to max(next_index, k+1).
func (t *MerkleTree[F]) Set(k int, leaf F) error {
	if k < 0 || k >= t.Capacity() {
		return ErrIndexOutOfBounds
	}
	if err := t.db.Put(encode(t.depth, k), t.hasher.Serialize(leaf)); err != nil {
		return err
	}
	if err := t.recalculateFrom(k); err != nil {
		return err
	}
	if k+1 > t.nextIndex {
		t.nextIndex = k + 1
		if err := t.persistNextIndex(); err != nil {
			return err
		}
	}
	t.metrics.observeSet()
	glog.V(2).Infof("pmtree: set(%d) next_index=%d", k, t.nextIndex)
	return nil
}

// recalculateFrom walks from leaf level D up to the root, recomputing
// and persisting exactly D nodes: each ancestor of leaf k, up to and
// including the root (the leaf itself is written by the caller). It
// reads at most one sibling per level, synthesized from the default
// cache when absent.
func (t *MerkleTree[F]) recalculateFrom(k int) error {
	d, i := t.depth, k
	for {
		b := i &^ 1
		left, err := t.getElem(d, b)
		if err != nil {
			return err
		}
		right, err := t.getElem(d, b+1)
		if err != nil {
			return err
		}
		v := t.hasher.Hash([]F{left, right})

		i >>= 1
		d--
		if err := t.db.Put(encode(d, i), t.hasher.Serialize(v)); err != nil {
			return err
		}
		glog.V(4).Infof("pmtree: recalculate_from level=%d index=%d", d, i)
		if d == 0 {
			t.root = v
			return nil
		}
	}
}

// Delete sets the leaf at k back to the hasher's default leaf. k must be
// below next_index (see LeavesSet); whether that leaf was itself ever
// written is not checked.
func (t *MerkleTree[F]) Delete(k int) error {
	if k < 0 || k >= t.nextIndex {
		return ErrInvalidKey
	}
	if err := t.Set(k, t.hasher.DefaultLeaf()); err != nil {
		return err
	}
	t.metrics.observeDelete()
	return nil
}

// UpdateNext writes leaf at the current next_index.
func (t *MerkleTree[F]) UpdateNext(leaf F) error {
	if t.nextIndex == t.Capacity() {
		return ErrMerkleTreeIsFull
	}
	return t.Set(t.nextIndex, leaf)
}

// Get returns the leaf hash stored at index k.
func (t *MerkleTree[F]) Get(k int) (F, error) {
	if k < 0 || k >= t.Capacity() {
		var zero F
		return zero, ErrIndexOutOfBounds
	}
	return t.getElem(t.depth, k)
}

// Root returns the current root hash.
func (t *MerkleTree[F]) Root() F { return t.root }

// Depth returns the tree's configured depth.
func (t *MerkleTree[F]) Depth() int { return t.depth }

// Capacity returns 2^depth, the maximum number of distinct leaf
// positions.
func (t *MerkleTree[F]) Capacity() int { return 1 << t.depth }

// LeavesSet returns next_index: one past the highest leaf index written
// so far by Set, UpdateNext, Delete or BatchInsert.
func (t *MerkleTree[F]) LeavesSet() int { return t.nextIndex }

// Close flushes and releases the underlying database handle.
func (t *MerkleTree[F]) Close() error { return t.db.Close() }

func (t *MerkleTree[F]) persistNextIndex() error {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, uint64(t.nextIndex))
	return t.db.Put(nextIndexKey, b)
}
