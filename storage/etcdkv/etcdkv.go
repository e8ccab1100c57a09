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

// Package etcdkv implements pmtree.Database over go.etcd.io/etcd/client/v3,
// using a single Txn per PutBatch so a batch flush is atomic.
package etcdkv

import (
	"context"
	"encoding/hex"
	"fmt"
	"time"

	clientv3 "go.etcd.io/etcd/client/v3"

	"github.com/rln-tools/pmtree"
)

// Config holds connection parameters for an etcd cluster.
type Config struct {
	Endpoints   []string
	Prefix      string
	DialTimeout time.Duration
	RPCTimeout  time.Duration
}

func (c Config) rpcTimeout() time.Duration {
	if c.RPCTimeout > 0 {
		return c.RPCTimeout
	}
	return 5 * time.Second
}

func (c Config) existsMarker() string { return c.Prefix + "pmtree/exists" }

// Database is a pmtree.Database backed by an etcd client.
type Database struct {
	client  *clientv3.Client
	prefix  string
	timeout time.Duration
}

func dial(cfg Config) (*clientv3.Client, error) {
	timeout := cfg.DialTimeout
	if timeout == 0 {
		timeout = 5 * time.Second
	}
	client, err := clientv3.New(clientv3.Config{Endpoints: cfg.Endpoints, DialTimeout: timeout})
	if err != nil {
		return nil, fmt.Errorf("pmtree/storage/etcdkv: dial: %w", err)
	}
	return client, nil
}

// New opens a fresh Database against cfg, failing with
// pmtree.ErrDatabaseExists if cfg.Prefix is already in use.
func New(cfg Config) (*Database, error) {
	client, err := dial(cfg)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(context.Background(), cfg.rpcTimeout())
	defer cancel()

	resp, err := client.Get(ctx, cfg.existsMarker())
	if err != nil {
		return nil, fmt.Errorf("pmtree/storage/etcdkv: check marker: %w", err)
	}
	if len(resp.Kvs) > 0 {
		return nil, pmtree.ErrDatabaseExists
	}
	if _, err := client.Put(ctx, cfg.existsMarker(), "1"); err != nil {
		return nil, fmt.Errorf("pmtree/storage/etcdkv: set marker: %w", err)
	}
	return &Database{client: client, prefix: cfg.Prefix, timeout: cfg.rpcTimeout()}, nil
}

// Load reopens a Database previously created with New.
func Load(cfg Config) (*Database, error) {
	client, err := dial(cfg)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(context.Background(), cfg.rpcTimeout())
	defer cancel()

	resp, err := client.Get(ctx, cfg.existsMarker())
	if err != nil {
		return nil, fmt.Errorf("pmtree/storage/etcdkv: check marker: %w", err)
	}
	if len(resp.Kvs) == 0 {
		return nil, pmtree.ErrCannotLoadDatabase
	}
	return &Database{client: client, prefix: cfg.Prefix, timeout: cfg.rpcTimeout()}, nil
}

func (d *Database) etcdKey(key pmtree.Key) string {
	return d.prefix + hex.EncodeToString(key[:])
}

func (d *Database) Get(key pmtree.Key) ([]byte, bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()
	resp, err := d.client.Get(ctx, d.etcdKey(key))
	if err != nil {
		return nil, false, fmt.Errorf("pmtree/storage/etcdkv: get: %w", err)
	}
	if len(resp.Kvs) == 0 {
		return nil, false, nil
	}
	return resp.Kvs[0].Value, true, nil
}

func (d *Database) Put(key pmtree.Key, value []byte) error {
	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()
	if _, err := d.client.Put(ctx, d.etcdKey(key), string(value)); err != nil {
		return fmt.Errorf("pmtree/storage/etcdkv: put: %w", err)
	}
	return nil
}

func (d *Database) PutBatch(entries map[pmtree.Key][]byte) error {
	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()

	ops := make([]clientv3.Op, 0, len(entries))
	for k, v := range entries {
		ops = append(ops, clientv3.OpPut(d.etcdKey(k), string(v)))
	}
	if _, err := d.client.Txn(ctx).Then(ops...).Commit(); err != nil {
		return fmt.Errorf("pmtree/storage/etcdkv: put_batch: %w", err)
	}
	return nil
}

func (d *Database) Close() error {
	if err := d.client.Close(); err != nil {
		return fmt.Errorf("pmtree/storage/etcdkv: close: %w", err)
	}
	return nil
}
