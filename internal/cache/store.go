// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"xotheme/internal/meta"
)

// Store is a key/value store holding JSON-encodable values.
type Store interface {
	// Read decodes the value stored under id into dest. It reports false
	// on a miss.
	Read(ctx context.Context, id string, dest any) (bool, error)
	// Write stores value under id. A zero ttl means no expiry.
	Write(ctx context.Context, id string, value any, ttl time.Duration) error
	// Delete removes id. Missing ids are not an error.
	Delete(ctx context.Context, id string) error
}

// Entry is the headers cache value saved for a page rendered with a
// content cache lifetime. It lets a later cache-hit render restore the
// page meta-information that the cached content template no longer emits.
type Entry struct {
	HeadStrings []string      `json:"htmlHeadStrings"`
	Metas       meta.Snapshot `json:"metas"`
	PageTitle   string        `json:"xoops_pagetitle"`
	Header      string        `json:"header"`
}

// ValkeyStore is a Store backed by Valkey. Keys are namespaced by prefix.
type ValkeyStore struct {
	client *redis.Client
	prefix string
}

// NewValkeyStore creates a store writing keys under prefix.
func NewValkeyStore(client *redis.Client, prefix string) *ValkeyStore {
	return &ValkeyStore{client: client, prefix: prefix}
}

// Read implements Store.
func (s *ValkeyStore) Read(ctx context.Context, id string, dest any) (bool, error) {
	val, err := s.client.Get(ctx, s.prefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("valkey read %s: %w", id, err)
	}
	if err := json.Unmarshal(val, dest); err != nil {
		return false, fmt.Errorf("valkey decode %s: %w", id, err)
	}
	slog.Debug("cache hit", "key", s.prefix+id)
	return true, nil
}

// Write implements Store.
func (s *ValkeyStore) Write(ctx context.Context, id string, value any, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("valkey encode %s: %w", id, err)
	}
	if err := s.client.Set(ctx, s.prefix+id, data, ttl).Err(); err != nil {
		return fmt.Errorf("valkey write %s: %w", id, err)
	}
	return nil
}

// Delete implements Store.
func (s *ValkeyStore) Delete(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, s.prefix+id).Err(); err != nil {
		return fmt.Errorf("valkey delete %s: %w", id, err)
	}
	return nil
}

// Flush removes every key under the store prefix and returns how many
// were deleted.
func (s *ValkeyStore) Flush(ctx context.Context) (int, error) {
	var cursor uint64
	var deleted int
	for {
		keys, next, err := s.client.Scan(ctx, cursor, s.prefix+"*", 100).Result()
		if err != nil {
			return deleted, fmt.Errorf("valkey scan: %w", err)
		}
		if len(keys) > 0 {
			if err := s.client.Del(ctx, keys...).Err(); err != nil {
				return deleted, fmt.Errorf("valkey bulk delete: %w", err)
			}
			deleted += len(keys)
		}
		cursor = next
		if cursor == 0 {
			break
		}
	}
	if deleted > 0 {
		slog.Info("cache flushed", "prefix", s.prefix, "deleted", deleted)
	}
	return deleted, nil
}
