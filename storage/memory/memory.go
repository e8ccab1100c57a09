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

// Package memory implements pmtree.Database over a process-local map. It is
// the reference backend: no external dependency, used by the root
// package's own tests and by anything that wants a tree without a real
// store behind it.
package memory

import (
	"sync"

	"github.com/rln-tools/pmtree"
)

// Config names the database within the process-wide registry that backs
// New's existence check. Two calls to New with the same Name fail the
// second with pmtree.ErrDatabaseExists, mirroring a backend that persists
// across process restarts.
type Config struct {
	Name string
}

var (
	registryMu sync.Mutex
	registry   = make(map[string]*Database)
)

// Database is a sync.RWMutex-guarded map[pmtree.Key][]byte.
type Database struct {
	mu   sync.RWMutex
	data map[pmtree.Key][]byte
	name string
}

// New creates an empty Database registered under cfg.Name.
func New(cfg Config) (*Database, error) {
	registryMu.Lock()
	defer registryMu.Unlock()
	if _, exists := registry[cfg.Name]; exists {
		return nil, pmtree.ErrDatabaseExists
	}
	db := &Database{data: make(map[pmtree.Key][]byte), name: cfg.Name}
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
	v, ok := d.data[key]
	if !ok {
		return nil, false, nil
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, true, nil
}

func (d *Database) Put(key pmtree.Key, value []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	cp := make([]byte, len(value))
	copy(cp, value)
	d.data[key] = cp
	return nil
}

func (d *Database) PutBatch(entries map[pmtree.Key][]byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	for k, v := range entries {
		cp := make([]byte, len(v))
		copy(cp, v)
		d.data[k] = cp
	}
	return nil
}

// Close removes the database from the registry so a later New with the
// same Name succeeds again.
func (d *Database) Close() error {
	registryMu.Lock()
	defer registryMu.Unlock()
	delete(registry, d.name)
	return nil
}
