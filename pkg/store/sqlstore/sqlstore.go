// Package sqlstore holds the checkpoint schema shared by the embedded SQL
// backends.
package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"

	"github.com/spf13/cast"

	"github.com/kisy/appmole/model"
	"github.com/kisy/appmole/pkg/store"
)

// Counts are stored as text: both engines cap integers at signed 64 bits.
// No key constraints: Save rewrites both tables inside one transaction,
// which DuckDB rejects for indexed keys.
var ddl = []string{`
CREATE TABLE IF NOT EXISTS app_totals (
	name  VARCHAR NOT NULL,
	bytes VARCHAR NOT NULL
)`, `
CREATE TABLE IF NOT EXISTS meta (
	key   VARCHAR NOT NULL,
	value VARCHAR NOT NULL
)`}

const (
	keyUpload     = "networkTotalUpload"
	keyDownload   = "networkTotalDownload"
	keyLastUpdate = "lastUpdate"
)

type Store struct {
	db *sql.DB
}

// Open opens dsn with driver and creates the schema.
func Open(driver, dsn string) (*Store, error) {
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}
	// one connection serialises writers
	db.SetMaxOpenConns(1)

	for _, stmt := range ddl {
		if _, err := db.Exec(stmt); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("create tables: %w", err)
		}
	}
	return &Store{db: db}, nil
}

func (s *Store) Load(ctx context.Context) (model.Checkpoint, error) {
	totals, err := s.totals(ctx)
	if err != nil {
		return model.Checkpoint{}, err
	}
	meta, err := s.meta(ctx)
	if err != nil {
		return model.Checkpoint{}, err
	}

	up, _ := store.ParseCount(meta[keyUpload])
	down, _ := store.ParseCount(meta[keyDownload])
	return model.Checkpoint{
		TotalBytes:    totals,
		TotalUpload:   up,
		TotalDownload: down,
		LastUpdate:    store.ParseTimestamp(meta[keyLastUpdate]),
	}, nil
}

func (s *Store) totals(ctx context.Context) (map[string]uint64, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name, bytes FROM app_totals`)
	if err != nil {
		return nil, fmt.Errorf("query app_totals: %w", err)
	}
	defer rows.Close()

	out := make(map[string]uint64)
	for rows.Next() {
		var name, bytes string
		if err := rows.Scan(&name, &bytes); err != nil {
			return nil, fmt.Errorf("scan app_totals: %w", err)
		}
		n, err := store.ParseCount(bytes)
		if err != nil {
			continue
		}
		out[name] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate app_totals: %w", err)
	}
	return out, nil
}

func (s *Store) meta(ctx context.Context) (map[string]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT key, value FROM meta`)
	if err != nil {
		return nil, fmt.Errorf("query meta: %w", err)
	}
	defer rows.Close()

	out := make(map[string]string)
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, fmt.Errorf("scan meta: %w", err)
		}
		out[k] = v
	}
	return out, rows.Err()
}

// Save replaces the stored checkpoint in one transaction.
func (s *Store) Save(ctx context.Context, cp model.Checkpoint) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM app_totals`); err != nil {
		return fmt.Errorf("clear app_totals: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM meta`); err != nil {
		return fmt.Errorf("clear meta: %w", err)
	}

	ins, err := tx.PrepareContext(ctx, `INSERT INTO app_totals (name, bytes) VALUES (?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer ins.Close()

	for name, n := range cp.TotalBytes {
		if _, err := ins.ExecContext(ctx, name, strconv.FormatUint(n, 10)); err != nil {
			return fmt.Errorf("insert %q: %w", name, err)
		}
	}

	meta := map[string]string{
		keyUpload:     strconv.FormatUint(cp.TotalUpload, 10),
		keyDownload:   strconv.FormatUint(cp.TotalDownload, 10),
		keyLastUpdate: cast.ToString(store.FormatTimestamp(cp.LastUpdate)),
	}
	for k, v := range meta {
		if _, err := tx.ExecContext(ctx, `INSERT INTO meta (key, value) VALUES (?, ?)`, k, v); err != nil {
			return fmt.Errorf("insert meta %s: %w", k, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func (s *Store) Close() error {
	return s.db.Close()
}
