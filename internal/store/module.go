// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"database/sql"
	"fmt"

	"xotheme/internal/models"
)

// ModuleStore reads installed modules.
type ModuleStore struct {
	db *sql.DB
}

// NewModuleStore creates a new ModuleStore.
func NewModuleStore(db *sql.DB) *ModuleStore {
	return &ModuleStore{db: db}
}

// FindByDirname returns the active module installed under dirname, or nil.
func (s *ModuleStore) FindByDirname(dirname string) (*models.Module, error) {
	m := &models.Module{}
	err := s.db.QueryRow(`
		SELECT id, dirname, name, is_active, weight, created_at
		FROM modules WHERE dirname = $1 AND is_active
	`, dirname).Scan(&m.ID, &m.Dirname, &m.Name, &m.IsActive, &m.Weight, &m.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find module %s: %w", dirname, err)
	}
	return m, nil
}

// ListActive returns active modules ordered by weight.
func (s *ModuleStore) ListActive() ([]models.Module, error) {
	rows, err := s.db.Query(`
		SELECT id, dirname, name, is_active, weight, created_at
		FROM modules WHERE is_active ORDER BY weight, dirname
	`)
	if err != nil {
		return nil, fmt.Errorf("list modules: %w", err)
	}
	defer rows.Close()

	var mods []models.Module
	for rows.Next() {
		var m models.Module
		if err := rows.Scan(&m.ID, &m.Dirname, &m.Name, &m.IsActive, &m.Weight, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan module: %w", err)
		}
		mods = append(mods, m)
	}
	return mods, rows.Err()
}
