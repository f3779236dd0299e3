// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// header_cache.go is the database headers cache engine. It keeps the page
// head snapshots written by themes with a content cache lifetime, for
// deployments that run without Valkey.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"
)

// HeaderCacheStore stores JSON values in the theme_header_cache table.
type HeaderCacheStore struct {
	db  *sql.DB
	now func() time.Time
}

// NewHeaderCacheStore creates a new HeaderCacheStore.
func NewHeaderCacheStore(db *sql.DB) *HeaderCacheStore {
	return &HeaderCacheStore{db: db, now: time.Now}
}

// Read decodes the unexpired value stored under id into dest.
func (s *HeaderCacheStore) Read(ctx context.Context, id string, dest any) (bool, error) {
	var data []byte
	err := s.db.QueryRowContext(ctx, `
		SELECT data FROM theme_header_cache
		WHERE cache_id = $1 AND (expires_at IS NULL OR expires_at > $2)
	`, id, s.now()).Scan(&data)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("header cache read %s: %w", id, err)
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return false, fmt.Errorf("header cache decode %s: %w", id, err)
	}
	return true, nil
}

// Write upserts value under id. A zero ttl stores it without expiry.
func (s *HeaderCacheStore) Write(ctx context.Context, id string, value any, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("header cache encode %s: %w", id, err)
	}

	var expires *time.Time
	if ttl > 0 {
		t := s.now().Add(ttl)
		expires = &t
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO theme_header_cache (cache_id, data, expires_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (cache_id)
		DO UPDATE SET data = EXCLUDED.data, expires_at = EXCLUDED.expires_at, created_at = NOW()
	`, id, string(data), expires)
	if err != nil {
		return fmt.Errorf("header cache write %s: %w", id, err)
	}
	return nil
}

// Delete removes id.
func (s *HeaderCacheStore) Delete(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM theme_header_cache WHERE cache_id = $1`, id); err != nil {
		return fmt.Errorf("header cache delete %s: %w", id, err)
	}
	return nil
}

// PurgeExpired removes expired rows and returns how many were deleted.
func (s *HeaderCacheStore) PurgeExpired(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
		DELETE FROM theme_header_cache WHERE expires_at IS NOT NULL AND expires_at <= $1
	`, s.now())
	if err != nil {
		return 0, fmt.Errorf("header cache purge: %w", err)
	}
	n, _ := res.RowsAffected()
	if n > 0 {
		slog.Info("header cache purged", "deleted", n)
	}
	return n, nil
}

// Flush removes every cached head and returns how many rows were deleted.
func (s *HeaderCacheStore) Flush(ctx context.Context) (int, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM theme_header_cache`)
	if err != nil {
		return 0, fmt.Errorf("header cache flush: %w", err)
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}
