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

// Package btreestore implements pmtree.Database over an in-memory
// github.com/google/btree, keeping entries ordered by key. It exists for
// callers that want to range over persisted nodes in key order (e.g. to
// dump or export a tree), which a plain map backend cannot do cheaply.
package btreestore

import (
	"bytes"
	"sync"

	"github.com/google/btree"

	"github.com/rln-tools/pmtree"
)

// Config names the database within the process-wide registry, and
// optionally overrides the B-tree's branching degree.
type Config struct {
	Name   string
	Degree int // 0 defaults to 32.
}

type entry struct {
	key   pmtree.Key
	value []byte
}

func (e *entry) Less(than btree.Item) bool {
	return bytes.Compare(e.key[:], than.(*entry).key[:]) < 0
}

var (
	registryMu sync.Mutex
	registry   = make(map[string]*Database)
)

// Database is an ordered in-memory pmtree.Database.
type Database struct {
	mu   sync.RWMutex
	tree *btree.BTree
	name string
}

// New creates an empty Database registered under cfg.Name.
func New(cfg Config) (*Database, error) {
	registryMu.Lock()
	defer registryMu.Unlock()
	if _, exists := registry[cfg.Name]; exists {
		return nil, pmtree.ErrDatabaseExists
	}
	degree := cfg.Degree
	if degree == 0 {
		degree = 32
	}
	db := &Database{tree: btree.New(degree), name: cfg.Name}
	registry[cfg.Name] = db
	return db, nil
}

// Load returns the Database previously created under cfg.Name.
func Load(cfg Config) (*Database, error) {
	registryMu.Lock()
	defer registryMu.Unlock()
	db, ok := registry[cfg.Name]
	if !ok {
		return nil, pmtree.ErrCannotLoadDatabase
	}
	return db, nil
}

func (d *Database) Get(key pmtree.Key) ([]byte, bool, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	item := d.tree.Get(&entry{key: key})
	if item == nil {
		return nil, false, nil
	}
	v := item.(*entry).value
	out := make([]byte, len(v))
	copy(out, v)
	return out, true, nil
}

func (d *Database) Put(key pmtree.Key, value []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	cp := make([]byte, len(value))
	copy(cp, value)
	d.tree.ReplaceOrInsert(&entry{key: key, value: cp})
	return nil
}

func (d *Database) PutBatch(entries map[pmtree.Key][]byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	for k, v := range entries {
		cp := make([]byte, len(v))
		copy(cp, v)
		d.tree.ReplaceOrInsert(&entry{key: k, value: cp})
	}
	return nil
}

// Ascend calls fn for every stored (key, value) pair in ascending key
// order, stopping early if fn returns false.
func (d *Database) Ascend(fn func(key pmtree.Key, value []byte) bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	d.tree.Ascend(func(i btree.Item) bool {
		e := i.(*entry)
		return fn(e.key, e.value)
	})
}

func (d *Database) Close() error {
	registryMu.Lock()
	defer registryMu.Unlock()
	delete(registry, d.name)
	return nil
}
