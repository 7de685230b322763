package credentials

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/starford/brewstock/internal/apperr"
)

// Setting keys, shared with the browser dashboard's local storage names.
const (
	keyUserID = "brewfatherUserId"
	keyAPIKey = "brewfatherApiKey"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS settings (
	key        TEXT PRIMARY KEY,
	value      TEXT NOT NULL DEFAULT '',
	updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

// SQLiteStore keeps the credentials in a flat key-value table.
type SQLiteStore struct {
	conn *sql.DB
}

// OpenSQLite opens (or creates) the database at dsn and applies the schema.
func OpenSQLite(dsn string) (*SQLiteStore, error) {
	conn, err := sql.Open("sqlite3", dsn+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("credentials: open db: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("credentials: ping: %w", err)
	}
	if _, err := conn.Exec(schemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("credentials: apply schema: %w", err)
	}
	return &SQLiteStore{conn: conn}, nil
}

// Load reads both keys.
func (s *SQLiteStore) Load(ctx context.Context) (Credentials, error) {
	rows, err := s.conn.QueryContext(ctx,
		`SELECT key, value FROM settings WHERE key IN (?, ?)`, keyUserID, keyAPIKey)
	if err != nil {
		return Credentials{}, fmt.Errorf("credentials: query: %w", err)
	}
	defer rows.Close()

	var c Credentials
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return Credentials{}, fmt.Errorf("credentials: scan: %w", err)
		}
		switch k {
		case keyUserID:
			c.UserID = v
		case keyAPIKey:
			c.APIKey = v
		}
	}
	if err := rows.Err(); err != nil {
		return Credentials{}, fmt.Errorf("credentials: rows: %w", err)
	}
	if c.Validate() != nil {
		return Credentials{}, apperr.ErrNoCredentials
	}
	return c, nil
}

// Save writes both keys in one transaction.
func (s *SQLiteStore) Save(ctx context.Context, c Credentials) error {
	if err := c.Validate(); err != nil {
		return err
	}
	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("credentials: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO settings (key, value, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET
			value      = excluded.value,
			updated_at = excluded.updated_at
	`)
	if err != nil {
		return fmt.Errorf("credentials: prepare upsert: %w", err)
	}
	defer stmt.Close()

	for _, kv := range [][2]string{{keyUserID, c.UserID}, {keyAPIKey, c.APIKey}} {
		if _, err := stmt.ExecContext(ctx, kv[0], kv[1]); err != nil {
			return fmt.Errorf("credentials: upsert %s: %w", kv[0], err)
		}
	}
	return tx.Commit()
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.conn.Close()
}
