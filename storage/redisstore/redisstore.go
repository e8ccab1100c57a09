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

// Package redisstore implements pmtree.Database over github.com/go-redis/redis,
// keying every node under a configurable prefix so a tree can share a
// Redis instance with other data.
package redisstore

import (
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/go-redis/redis"

	"github.com/rln-tools/pmtree"
)

// Config holds connection parameters for a single Redis database.
type Config struct {
	Addr      string
	Password  string
	DB        int
	KeyPrefix string
}

// existsMarker is a reserved key used only to answer New/Load's
// existence check; it is never touched by Get/Put/PutBatch.
func (c Config) existsMarker() string { return c.KeyPrefix + "pmtree:exists" }

// Database is a pmtree.Database backed by a Redis client.
type Database struct {
	client *redis.Client
	prefix string
}

// New opens a fresh Database against cfg, failing with
// pmtree.ErrDatabaseExists if the prefix is already in use.
func New(cfg Config) (*Database, error) {
	client, err := dial(cfg)
	if err != nil {
		return nil, err
	}
	exists, err := client.Exists(cfg.existsMarker()).Result()
	if err != nil {
		return nil, fmt.Errorf("pmtree/storage/redisstore: check marker: %w", err)
	}
	if exists > 0 {
		return nil, pmtree.ErrDatabaseExists
	}
	if err := client.Set(cfg.existsMarker(), []byte{1}, 0).Err(); err != nil {
		return nil, fmt.Errorf("pmtree/storage/redisstore: set marker: %w", err)
	}
	return &Database{client: client, prefix: cfg.KeyPrefix}, nil
}

// Load reopens a Database previously created with New.
func Load(cfg Config) (*Database, error) {
	client, err := dial(cfg)
	if err != nil {
		return nil, err
	}
	exists, err := client.Exists(cfg.existsMarker()).Result()
	if err != nil {
		return nil, fmt.Errorf("pmtree/storage/redisstore: check marker: %w", err)
	}
	if exists == 0 {
		return nil, pmtree.ErrCannotLoadDatabase
	}
	return &Database{client: client, prefix: cfg.KeyPrefix}, nil
}

func dial(cfg Config) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB})
	if err := client.Ping().Err(); err != nil {
		return nil, fmt.Errorf("pmtree/storage/redisstore: ping: %w", err)
	}
	return client, nil
}

func (d *Database) redisKey(key pmtree.Key) string {
	return d.prefix + hex.EncodeToString(key[:])
}

func (d *Database) Get(key pmtree.Key) ([]byte, bool, error) {
	v, err := d.client.Get(d.redisKey(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("pmtree/storage/redisstore: get: %w", err)
	}
	return v, true, nil
}

func (d *Database) Put(key pmtree.Key, value []byte) error {
	if err := d.client.Set(d.redisKey(key), value, 0).Err(); err != nil {
		return fmt.Errorf("pmtree/storage/redisstore: put: %w", err)
	}
	return nil
}

func (d *Database) PutBatch(entries map[pmtree.Key][]byte) error {
	pipe := d.client.Pipeline()
	for k, v := range entries {
		pipe.Set(d.redisKey(k), v, 0)
	}
	if _, err := pipe.Exec(); err != nil {
		return fmt.Errorf("pmtree/storage/redisstore: put_batch: %w", err)
	}
	return nil
}

func (d *Database) Close() error {
	if err := d.client.Close(); err != nil {
		return fmt.Errorf("pmtree/storage/redisstore: close: %w", err)
	}
	return nil
}
