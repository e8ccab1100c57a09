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

// Package sqlstore implements pmtree.Database over a two-column SQL
// table (k, v), reachable through either MySQL (github.com/go-sql-driver/mysql)
// or Postgres (github.com/lib/pq).
package sqlstore

import (
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"

	"github.com/rln-tools/pmtree"
)

const (
	dialectMySQL    = "mysql"
	dialectPostgres = "postgres"
)

// Database is a pmtree.Database backed by a SQL table.
type Database struct {
	db      *sql.DB
	dialect string
	table   string
}

// OpenMySQL opens a pmtree.Database backed by a MySQL table named table,
// reached via dsn (see github.com/go-sql-driver/mysql for the DSN
// format). If fresh is true the table must not already exist; otherwise
// it must.
func OpenMySQL(dsn, table string, fresh bool) (*Database, error) {
	return open(dialectMySQL, dsn, table, fresh)
}

// OpenPostgres opens a pmtree.Database backed by a Postgres table named
// table, reached via dsn (see github.com/lib/pq for the DSN format).
func OpenPostgres(dsn, table string, fresh bool) (*Database, error) {
	return open(dialectPostgres, dsn, table, fresh)
}

func open(dialect, dsn, table string, fresh bool) (*Database, error) {
	conn, err := sql.Open(dialect, dsn)
	if err != nil {
		return nil, fmt.Errorf("pmtree/storage/sqlstore: open: %w", err)
	}
	if err := conn.Ping(); err != nil {
		return nil, fmt.Errorf("pmtree/storage/sqlstore: ping: %w", err)
	}

	exists, err := tableExists(conn, dialect, table)
	if err != nil {
		return nil, err
	}

	if fresh {
		if exists {
			return nil, pmtree.ErrDatabaseExists
		}
		if _, err := conn.Exec(createTableStmt(dialect, table)); err != nil {
			return nil, fmt.Errorf("pmtree/storage/sqlstore: create table: %w", err)
		}
	} else if !exists {
		return nil, pmtree.ErrCannotLoadDatabase
	}

	return &Database{db: conn, dialect: dialect, table: table}, nil
}

func tableExists(conn *sql.DB, dialect, table string) (bool, error) {
	switch dialect {
	case dialectMySQL:
		row := conn.QueryRow(`SELECT COUNT(*) FROM information_schema.tables WHERE table_name = ?`, table)
		var count int
		if err := row.Scan(&count); err != nil {
			return false, fmt.Errorf("pmtree/storage/sqlstore: check existing table: %w", err)
		}
		return count > 0, nil
	default:
		row := conn.QueryRow(`SELECT to_regclass($1) IS NOT NULL`, table)
		var exists bool
		if err := row.Scan(&exists); err != nil {
			return false, fmt.Errorf("pmtree/storage/sqlstore: check existing table: %w", err)
		}
		return exists, nil
	}
}

func createTableStmt(dialect, table string) string {
	if dialect == dialectMySQL {
		return fmt.Sprintf(`CREATE TABLE %s (k BINARY(8) PRIMARY KEY, v LONGBLOB NOT NULL)`, table)
	}
	return fmt.Sprintf(`CREATE TABLE %s (k BYTEA PRIMARY KEY, v BYTEA NOT NULL)`, table)
}

func (d *Database) selectStmt() string {
	if d.dialect == dialectMySQL {
		return fmt.Sprintf(`SELECT v FROM %s WHERE k = ?`, d.table)
	}
	return fmt.Sprintf(`SELECT v FROM %s WHERE k = $1`, d.table)
}

func (d *Database) upsertStmt() string {
	if d.dialect == dialectMySQL {
		return fmt.Sprintf(`INSERT INTO %s (k, v) VALUES (?, ?) ON DUPLICATE KEY UPDATE v = VALUES(v)`, d.table)
	}
	return fmt.Sprintf(`INSERT INTO %s (k, v) VALUES ($1, $2) ON CONFLICT (k) DO UPDATE SET v = EXCLUDED.v`, d.table)
}

func (d *Database) Get(key pmtree.Key) ([]byte, bool, error) {
	row := d.db.QueryRow(d.selectStmt(), key[:])
	var v []byte
	if err := row.Scan(&v); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("pmtree/storage/sqlstore: get: %w", err)
	}
	return v, true, nil
}

func (d *Database) Put(key pmtree.Key, value []byte) error {
	if _, err := d.db.Exec(d.upsertStmt(), key[:], value); err != nil {
		return fmt.Errorf("pmtree/storage/sqlstore: put: %w", err)
	}
	return nil
}

func (d *Database) PutBatch(entries map[pmtree.Key][]byte) error {
	tx, err := d.db.Begin()
	if err != nil {
		return fmt.Errorf("pmtree/storage/sqlstore: begin: %w", err)
	}
	stmt := d.upsertStmt()
	for k, v := range entries {
		if _, err := tx.Exec(stmt, k[:], v); err != nil {
			tx.Rollback()
			return fmt.Errorf("pmtree/storage/sqlstore: put_batch: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("pmtree/storage/sqlstore: commit: %w", err)
	}
	return nil
}

func (d *Database) Close() error {
	if err := d.db.Close(); err != nil {
		return fmt.Errorf("pmtree/storage/sqlstore: close: %w", err)
	}
	return nil
}
