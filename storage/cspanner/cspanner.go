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

// Package cspanner implements pmtree.Database over cloud.google.com/go/spanner.
// It assumes the (k, v) table already exists in the target database —
// Spanner schema changes go through its DDL admin API out of band, not
// through this package — and uses a reserved marker row to answer
// New/Load's existence check.
package cspanner

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/spanner"
	"google.golang.org/grpc/codes"

	"github.com/rln-tools/pmtree"
)

var markerKey = []byte("__pmtree_exists__")

// Config identifies the Spanner database and table to use.
type Config struct {
	// Database is a fully qualified path of the form
	// "projects/P/instances/I/databases/D".
	Database string
	Table    string
}

// Database is a pmtree.Database backed by a Spanner table with columns
// K (BYTES, primary key) and V (BYTES).
type Database struct {
	client *spanner.Client
	table  string
}

func dial(ctx context.Context, cfg Config) (*spanner.Client, error) {
	client, err := spanner.NewClient(ctx, cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("pmtree/storage/cspanner: dial: %w", err)
	}
	return client, nil
}

// New opens a fresh Database against cfg's table, failing with
// pmtree.ErrDatabaseExists if the marker row is already present.
func New(cfg Config) (*Database, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := dial(ctx, cfg)
	if err != nil {
		return nil, err
	}

	_, err = client.Single().ReadRow(ctx, cfg.Table, spanner.Key{markerKey}, []string{"V"})
	switch {
	case err == nil:
		return nil, pmtree.ErrDatabaseExists
	case spanner.ErrCode(err) != codes.NotFound:
		return nil, fmt.Errorf("pmtree/storage/cspanner: check marker: %w", err)
	}

	_, err = client.Apply(ctx, []*spanner.Mutation{
		spanner.InsertOrUpdate(cfg.Table, []string{"K", "V"}, []interface{}{markerKey, []byte{1}}),
	})
	if err != nil {
		return nil, fmt.Errorf("pmtree/storage/cspanner: set marker: %w", err)
	}
	return &Database{client: client, table: cfg.Table}, nil
}

// Load reopens a Database previously created with New.
func Load(cfg Config) (*Database, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := dial(ctx, cfg)
	if err != nil {
		return nil, err
	}

	_, err = client.Single().ReadRow(ctx, cfg.Table, spanner.Key{markerKey}, []string{"V"})
	switch {
	case spanner.ErrCode(err) == codes.NotFound:
		return nil, pmtree.ErrCannotLoadDatabase
	case err != nil:
		return nil, fmt.Errorf("pmtree/storage/cspanner: check marker: %w", err)
	}
	return &Database{client: client, table: cfg.Table}, nil
}

func (d *Database) Get(key pmtree.Key) ([]byte, bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	row, err := d.client.Single().ReadRow(ctx, d.table, spanner.Key{[]byte(key[:])}, []string{"V"})
	if err != nil {
		if spanner.ErrCode(err) == codes.NotFound {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("pmtree/storage/cspanner: get: %w", err)
	}
	var v []byte
	if err := row.Column(0, &v); err != nil {
		return nil, false, fmt.Errorf("pmtree/storage/cspanner: decode: %w", err)
	}
	return v, true, nil
}

func (d *Database) Put(key pmtree.Key, value []byte) error {
	return d.PutBatch(map[pmtree.Key][]byte{key: value})
}

func (d *Database) PutBatch(entries map[pmtree.Key][]byte) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	muts := make([]*spanner.Mutation, 0, len(entries))
	for k, v := range entries {
		muts = append(muts, spanner.InsertOrUpdate(d.table, []string{"K", "V"}, []interface{}{[]byte(k[:]), v}))
	}
	if _, err := d.client.Apply(ctx, muts); err != nil {
		return fmt.Errorf("pmtree/storage/cspanner: put_batch: %w", err)
	}
	return nil
}

func (d *Database) Close() error {
	d.client.Close()
	return nil
}
