// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package database

import (
	"database/sql"
	"fmt"
	"log/slog"

	"golang.org/x/crypto/bcrypt"
)

// defaultSettings are the site texts a fresh install starts with.
var defaultSettings = map[string]string{
	"sitename":         "XOOPS Site",
	"slogan":           "Just use it!",
	"footer":           "Powered by XOOPS",
	"jquery_theme":     "base",
	"startpage":        "",
	"meta_description": "XOOPS is a dynamic object oriented based open source portal script written in PHP.",
	"meta_keywords":    "xoops, web applications, web 2.0, sns, news, technology",
	"meta_robots":      "index,follow",
	"meta_rating":      "general",
	"meta_author":      "XOOPS",
	"meta_copyright":   "Copyright @ 2001-2026",
}

// Seed populates the database with initial development data.
// It creates a default admin user, the default site settings and a
// sample block if none exist.
func Seed(db *sql.DB) error {
	if err := seedSettings(db); err != nil {
		return err
	}

	// Check if any users exist already.
	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM users").Scan(&count); err != nil {
		return fmt.Errorf("seed check users: %w", err)
	}

	if count > 0 {
		slog.Info("database already seeded, skipping")
		return nil
	}

	// Hash the default admin password.
	hash, err := bcrypt.GenerateFromPassword([]byte("admin"), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("seed bcrypt: %w", err)
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("seed begin: %w", err)
	}
	defer tx.Rollback()

	var userID string
	err = tx.QueryRow(`
		INSERT INTO users (uname, name, email, password_hash)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`, "admin", "Administrator", "admin@xotheme.local", string(hash)).Scan(&userID)
	if err != nil {
		return fmt.Errorf("seed insert admin: %w", err)
	}

	// Admins are also regular users.
	if _, err := tx.Exec(`
		INSERT INTO user_groups (user_id, group_id) VALUES ($1, 1), ($1, 2)
	`, userID); err != nil {
		return fmt.Errorf("seed admin groups: %w", err)
	}

	if _, err := tx.Exec(`
		INSERT INTO modules (dirname, name, weight) VALUES
			('system', 'System', 0),
			('news', 'News', 1)
		ON CONFLICT (dirname) DO NOTHING
	`); err != nil {
		return fmt.Errorf("seed modules: %w", err)
	}

	if _, err := tx.Exec(`
		INSERT INTO blocks (name, title, content, content_type, side, weight)
		VALUES ($1, $2, $3, 'markdown', 'left', 0)
		ON CONFLICT (name) DO NOTHING
	`, "welcome", "Welcome", "Welcome to **XOOPS**. Log in as `admin` to manage the site."); err != nil {
		return fmt.Errorf("seed blocks: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("seed commit: %w", err)
	}

	slog.Info("database seeded with default admin user",
		"uname", "admin",
		"password", "admin",
	)

	return nil
}

// seedSettings inserts the default settings that are not set yet.
func seedSettings(db *sql.DB) error {
	for k, v := range defaultSettings {
		if _, err := db.Exec(`
			INSERT INTO site_settings (key, value) VALUES ($1, $2)
			ON CONFLICT (key) DO NOTHING
		`, k, v); err != nil {
			return fmt.Errorf("seed setting %s: %w", k, err)
		}
	}
	return nil
}
