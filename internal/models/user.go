// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package models defines the data structures that map to database tables
// and provides the core types used throughout the application.
package models

import (
	"time"

	"github.com/google/uuid"
)

// Well-known group ids. Every authenticated user belongs to GroupUsers;
// visitors without a session are treated as members of GroupAnonymous.
const (
	GroupAdmins    = 1
	GroupUsers     = 2
	GroupAnonymous = 3
)

// User represents a registered site member.
type User struct {
	ID           uuid.UUID `json:"id"`
	Uname        string    `json:"uname"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // Never serialize the hash
	Avatar       string    `json:"avatar"` // storage key or empty
	Groups       []int     `json:"groups"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// IsAdmin returns true if the user belongs to the admins group.
func (u *User) IsAdmin() bool {
	return u.InGroup(GroupAdmins)
}

// InGroup reports whether the user is a member of group.
func (u *User) InGroup(group int) bool {
	for _, g := range u.Groups {
		if g == group {
			return true
		}
	}
	return false
}

// DisplayName returns the real name when set, else the login name.
func (u *User) DisplayName() string {
	if u.Name != "" {
		return u.Name
	}
	return u.Uname
}
