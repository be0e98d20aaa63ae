// Package policystore persists per-lobby automation settings in a local
// sqlite file so a reconnecting player gets their toggles back. Settings are
// stored one row per setting name, which keeps the file greppable with the
// sqlite shell when debugging.
package policystore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"tycoon.gg/internal/auto"
)

type Store struct {
	db *sql.DB
}

func Open(path string) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("empty db path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := initPragmas(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

func initPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
		"PRAGMA temp_store=MEMORY;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return err
		}
	}
	return nil
}

func initSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS meta (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS settings (
			lobby_id TEXT NOT NULL,
			player TEXT NOT NULL,
			name TEXT NOT NULL,
			value TEXT NOT NULL,
			updated_at TEXT NOT NULL,
			PRIMARY KEY (lobby_id, player, name)
		);`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	_, err := db.Exec(`INSERT OR IGNORE INTO meta(key, value) VALUES ('schema_version', '1');`)
	return err
}

func (s *Store) Close() error {
	if s == nil {
		return nil
	}
	return s.db.Close()
}

// Save writes the whole policy in one transaction, one row per setting.
func (s *Store) Save(ctx context.Context, lobbyID, player string, p auto.Policy) error {
	rows, err := settingRows(p)
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	now := time.Now().UTC().Format(time.RFC3339Nano)
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO settings(lobby_id, player, name, value, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(lobby_id, player, name) DO UPDATE SET value=excluded.value, updated_at=excluded.updated_at;`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for name, value := range rows {
		if _, err := stmt.ExecContext(ctx, lobbyID, player, name, value, now); err != nil {
			return fmt.Errorf("save setting %s: %w", name, err)
		}
	}
	return tx.Commit()
}

// Load reconstructs the stored policy. Absent rows get the default value, so
// a schema that grows a new setting still loads old files cleanly.
func (s *Store) Load(ctx context.Context, lobbyID, player string) (auto.Policy, error) {
	p := auto.DefaultPolicy()

	rows, err := s.db.QueryContext(ctx,
		`SELECT name, value FROM settings WHERE lobby_id = ? AND player = ?;`, lobbyID, player)
	if err != nil {
		return p, err
	}
	defer rows.Close()

	found := map[string]string{}
	for rows.Next() {
		var name, value string
		if err := rows.Scan(&name, &value); err != nil {
			return p, err
		}
		found[name] = value
	}
	if err := rows.Err(); err != nil {
		return p, err
	}
	if len(found) == 0 {
		return p, nil
	}
	if err := applySettings(&p, found); err != nil {
		return p, err
	}
	return p, nil
}

// Clear drops a player's settings for one lobby, used when a game ends and
// the policy resets to defaults.
func (s *Store) Clear(ctx context.Context, lobbyID, player string) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM settings WHERE lobby_id = ? AND player = ?;`, lobbyID, player)
	return err
}

// settingRows flattens the policy through its json form so the row names stay
// in lockstep with the wire names.
func settingRows(p auto.Policy) (map[string]string, error) {
	b, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	var flat map[string]json.RawMessage
	if err := json.Unmarshal(b, &flat); err != nil {
		return nil, err
	}
	out := make(map[string]string, len(flat))
	for name, raw := range flat {
		out[name] = string(raw)
	}
	return out, nil
}

func applySettings(p *auto.Policy, rows map[string]string) error {
	obj := make(map[string]json.RawMessage, len(rows))
	for name, value := range rows {
		obj[name] = json.RawMessage(value)
	}
	b, err := json.Marshal(obj)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, p)
}
