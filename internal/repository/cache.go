package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/set-night/surveypay/internal/config"
	"github.com/set-night/surveypay/internal/domain"
	_ "modernc.org/sqlite"
)

// OpenCache opens (or creates) the local SQLite key/value cache. Pass
// ":memory:" for an in-memory database.
func OpenCache(dsn string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open cache: %w", err)
	}
	// A single connection keeps ":memory:" databases shared.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set wal mode: %w", err)
	}

	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS kv (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL,
		updated_at DATETIME NOT NULL
	)`); err != nil {
		db.Close()
		return nil, fmt.Errorf("create kv table: %w", err)
	}

	return db, nil
}

// ProgressCache stores per-user progress under surveyData_<userId> as
// {"userProgress": {...}}.
type ProgressCache struct {
	db *sql.DB
}

func NewProgressCache(db *sql.DB) *ProgressCache {
	return &ProgressCache{db: db}
}

type cachedSurveyData struct {
	UserProgress domain.UserProgress `json:"userProgress"`
}

func CacheKey(userID string) string {
	return config.ProgressCacheKeyPrefix + userID
}

func (c *ProgressCache) LoadProgress(ctx context.Context, userID string) (domain.UserProgress, error) {
	var raw string
	err := c.db.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, CacheKey(userID)).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.UserProgress{}, domain.ErrCacheMiss
	}
	if err != nil {
		return domain.UserProgress{}, fmt.Errorf("load progress: %w", err)
	}

	var data cachedSurveyData
	if err := json.Unmarshal([]byte(raw), &data); err != nil {
		return domain.UserProgress{}, fmt.Errorf("unmarshal progress: %w", err)
	}
	return data.UserProgress, nil
}

func (c *ProgressCache) SaveProgress(ctx context.Context, userID string, p domain.UserProgress) error {
	raw, err := json.Marshal(cachedSurveyData{UserProgress: p})
	if err != nil {
		return fmt.Errorf("marshal progress: %w", err)
	}

	_, err = c.db.ExecContext(ctx,
		`INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		CacheKey(userID), string(raw), time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("save progress: %w", err)
	}
	return nil
}
