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

// KeySize is the fixed width, in bytes, of every Database key. It must be
// wide enough to hold the Cantor pairing of (depth, index) for the
// largest depth any tree in this process will use, plus the two reserved
// metadata keys; 8 bytes (a uint64) covers trees of depth up to 31.
const KeySize = 8

// Key is a fixed-width database key, produced by encode (see key.go).
type Key [KeySize]byte

// Database is a persistent mapping from fixed-width keys to arbitrary
// byte values. The tree engine is the only writer of a given handle at a
// time (see the package-level concurrency note in tree.go); Get may be
// called concurrently with other Gets.
//
// Construction is deliberately outside this interface: Go has no
// associated functions on interfaces, so each concrete backend exports
// its own New(cfg) and Load(cfg) package-level functions instead of a
// generic Database.New/Load. New must fail with ErrDatabaseExists if a
// prior store is already present at the configured location; Load must
// fail with ErrCannotLoadDatabase if none is.
type Database interface {
	// Get returns the value stored at key, or ok == false if no value
	// has ever been stored there.
	Get(key Key) (value []byte, ok bool, err error)

	// Put stores value at key, overwriting any previous value.
	Put(key Key, value []byte) error

	// PutBatch stores every (key, value) pair in entries. Implementations
	// must make this atomic, or at least safe to retry in full on
	// failure; the engine never attempts partial rollback.
	PutBatch(entries map[Key][]byte) error

	// Close flushes and releases the underlying handle. After Close, no
	// other method may be called.
	Close() error
}

var (
	// ErrDatabaseExists is returned by a backend's New when a store
	// already exists at the configured location.
	ErrDatabaseExists = errors.New("pmtree: database already exists")

	// ErrCannotLoadDatabase is returned by a backend's Load when no
	// store exists at the configured location, or it cannot be read.
	ErrCannotLoadDatabase = errors.New("pmtree: cannot load database")
)
