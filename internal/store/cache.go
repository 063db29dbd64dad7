package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/glebarez/go-sqlite"
)

// ToolCache persists tool results in SQLite with a per-entry expiry.
type ToolCache struct {
	DB  *sql.DB
	now func() time.Time
}

func NewToolCache(dbPath string) (*ToolCache, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}
	// a single connection keeps ":memory:" databases coherent
	db.SetMaxOpenConns(1)

	queries := []string{
		`CREATE TABLE IF NOT EXISTS tool_results (
			cache_key TEXT PRIMARY KEY,
			value TEXT NOT NULL,
			expires_at INTEGER NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);`,
		`CREATE INDEX IF NOT EXISTS idx_tool_results_expires ON tool_results (expires_at);`,
	}
	for _, q := range queries {
		if _, err := db.Exec(q); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to initialize cache schema: %w", err)
		}
	}

	return &ToolCache{DB: db, now: time.Now}, nil
}

func (c *ToolCache) Get(ctx context.Context, key string) (string, bool, error) {
	query := `SELECT value FROM tool_results WHERE cache_key = ? AND expires_at > ?`
	var value string
	err := c.DB.QueryRowContext(ctx, query, key, c.now().UnixNano()).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

// Put stores value until ttl elapses. A non-positive ttl is a no-op.
func (c *ToolCache) Put(ctx context.Context, key, value string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	query := `INSERT INTO tool_results (cache_key, value, expires_at) VALUES (?, ?, ?)
		ON CONFLICT(cache_key) DO UPDATE SET value = excluded.value, expires_at = excluded.expires_at`
	_, err := c.DB.ExecContext(ctx, query, key, value, c.now().Add(ttl).UnixNano())
	return err
}

// Prune removes expired entries and reports how many were deleted.
func (c *ToolCache) Prune(ctx context.Context) (int64, error) {
	res, err := c.DB.ExecContext(ctx, `DELETE FROM tool_results WHERE expires_at <= ?`, c.now().UnixNano())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (c *ToolCache) Close() error {
	return c.DB.Close()
}
