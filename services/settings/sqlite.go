//go:build !rp2040 && !rp2350

package settings

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"habitat-go/errcode"
	"habitat-go/types"
)

const sqliteDriverName = "sqlite"

const (
	schemaSettings = `
CREATE TABLE IF NOT EXISTS settings (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL
);
`
	upsertSettingSQL = `
		INSERT INTO settings (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value=excluded.value
	`
	selectSettingsSQL = `SELECT key, value FROM settings`
)

// SQLiteStore keeps one row per setting key.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(db *sql.DB) *SQLiteStore { return &SQLiteStore{db: db} }

// OpenSQLite opens/creates the database file and ensures the table exists.
func OpenSQLite(ctx context.Context, path string) (*SQLiteStore, error) {
	db, err := sql.Open(sqliteDriverName, path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite at %q: %w", path, err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	for _, pragma := range []string{"PRAGMA journal_mode = WAL;", "PRAGMA busy_timeout = 5000;"} {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("set %s: %w", pragma, err)
		}
	}
	s := NewSQLiteStore(db)
	if err := s.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schemaSettings); err != nil {
		return fmt.Errorf("apply settings schema: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Load(ctx context.Context) (types.SystemSettings, error) {
	rows, err := s.db.QueryContext(ctx, selectSettingsSQL)
	if err != nil {
		return types.SystemSettings{}, fmt.Errorf("select settings: %w", err)
	}
	defer rows.Close()

	var kvs []KV
	for rows.Next() {
		var kv KV
		if err := rows.Scan(&kv.Key, &kv.Value); err != nil {
			return types.SystemSettings{}, fmt.Errorf("scan setting: %w", err)
		}
		kvs = append(kvs, kv)
	}
	if err := rows.Err(); err != nil {
		return types.SystemSettings{}, fmt.Errorf("iterate settings: %w", err)
	}
	if len(kvs) == 0 {
		return types.SystemSettings{}, errcode.NotFound
	}
	return Decode(kvs, types.DefaultSettings())
}

// Save writes every key in one transaction.
func (s *SQLiteStore) Save(ctx context.Context, set types.SystemSettings) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin settings transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, kv := range Encode(set) {
		if _, err := tx.ExecContext(ctx, upsertSettingSQL, kv.Key, kv.Value); err != nil {
			return fmt.Errorf("save setting %q: %w", kv.Key, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit settings: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Close() error { return s.db.Close() }
