// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package store provides database access methods for site entities. Each
// store struct wraps a *sql.DB and exposes typed query methods.
package store

import (
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"xotheme/internal/models"
)

// UserStore handles all user-related database operations.
type UserStore struct {
	db *sql.DB
}

// NewUserStore creates a new UserStore with the given database connection.
func NewUserStore(db *sql.DB) *UserStore {
	return &UserStore{db: db}
}

const userColumns = `u.id, u.uname, u.name, u.email, u.password_hash, u.avatar, u.created_at, u.updated_at,
	COALESCE((SELECT string_agg(g.group_id::text, ',' ORDER BY g.group_id)
	          FROM user_groups g WHERE g.user_id = u.id), '')`

func scanUser(row interface{ Scan(...any) error }) (*models.User, error) {
	u := &models.User{}
	var groups string
	if err := row.Scan(
		&u.ID, &u.Uname, &u.Name, &u.Email, &u.PasswordHash, &u.Avatar,
		&u.CreatedAt, &u.UpdatedAt, &groups,
	); err != nil {
		return nil, err
	}
	u.Groups = parseIntList(groups)
	return u, nil
}

// FindByUname retrieves a user by login name. Returns nil if not found.
func (s *UserStore) FindByUname(uname string) (*models.User, error) {
	u, err := scanUser(s.db.QueryRow(`SELECT `+userColumns+` FROM users u WHERE u.uname = $1`, uname))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find user by uname: %w", err)
	}
	return u, nil
}

// FindByID retrieves a user by their UUID. Returns nil if not found.
func (s *UserStore) FindByID(id uuid.UUID) (*models.User, error) {
	u, err := scanUser(s.db.QueryRow(`SELECT `+userColumns+` FROM users u WHERE u.id = $1`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find user by id: %w", err)
	}
	return u, nil
}

// Create inserts a new user with a bcrypt-hashed password and the given
// group memberships.
func (s *UserStore) Create(uname, name, email, password string, groups []int) (*models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("create user begin: %w", err)
	}
	defer tx.Rollback()

	var id uuid.UUID
	err = tx.QueryRow(`
		INSERT INTO users (uname, name, email, password_hash)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`, uname, name, email, string(hash)).Scan(&id)
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	for _, g := range groups {
		if _, err := tx.Exec(`
			INSERT INTO user_groups (user_id, group_id) VALUES ($1, $2)
			ON CONFLICT DO NOTHING
		`, id, g); err != nil {
			return nil, fmt.Errorf("create user group %d: %w", g, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("create user commit: %w", err)
	}
	return s.FindByID(id)
}

// SetAvatar stores the avatar storage key for a user.
func (s *UserStore) SetAvatar(userID uuid.UUID, key string) error {
	_, err := s.db.Exec(`
		UPDATE users SET avatar = $1, updated_at = NOW() WHERE id = $2
	`, key, userID)
	if err != nil {
		return fmt.Errorf("set avatar: %w", err)
	}
	return nil
}

// Delete removes a user by ID. Group memberships cascade.
func (s *UserStore) Delete(userID uuid.UUID) error {
	_, err := s.db.Exec(`DELETE FROM users WHERE id = $1`, userID)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	return nil
}

// CheckPassword verifies a plaintext password against the user's stored hash.
func (s *UserStore) CheckPassword(user *models.User, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) == nil
}

// parseIntList parses a comma separated list of ints, skipping bad items.
func parseIntList(s string) []int {
	if s == "" {
		return nil
	}
	var out []int
	for _, part := range strings.Split(s, ",") {
		if n, err := strconv.Atoi(strings.TrimSpace(part)); err == nil {
			out = append(out, n)
		}
	}
	return out
}

// joinInts is the inverse of parseIntList.
func joinInts(ns []int) string {
	parts := make([]string, len(ns))
	for i, n := range ns {
		parts[i] = strconv.Itoa(n)
	}
	return strings.Join(parts, ",")
}
