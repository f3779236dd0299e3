// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package avatar resolves the avatar image URL of a user.
package avatar

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"net/url"
	"strings"

	"xotheme/internal/models"
)

// Resolver returns the avatar URL for a user, or an empty string when the
// user has none.
type Resolver interface {
	URL(ctx context.Context, u *models.User) (string, error)
}

// FileURLer builds a public URL for a stored object key.
type FileURLer interface {
	FileURL(key string) string
}

// Service resolves avatars from object storage and falls back to Gravatar.
type Service struct {
	files    FileURLer // nil disables stored avatars
	gravatar bool
	size     int
}

// New creates an avatar service. files may be nil.
func New(files FileURLer, gravatar bool) *Service {
	return &Service{files: files, gravatar: gravatar, size: 80}
}

// URL implements Resolver. Absolute avatar URLs are returned as is.
func (s *Service) URL(_ context.Context, u *models.User) (string, error) {
	if u == nil {
		return "", nil
	}
	if a := u.Avatar; a != "" {
		if strings.HasPrefix(a, "http://") || strings.HasPrefix(a, "https://") {
			return a, nil
		}
		if s.files == nil {
			return "", fmt.Errorf("avatar %q: storage not configured", a)
		}
		return s.files.FileURL(a), nil
	}
	if s.gravatar && u.Email != "" {
		return GravatarURL(u.Email, s.size), nil
	}
	return "", nil
}

// GravatarURL returns the Gravatar image URL for email.
func GravatarURL(email string, size int) string {
	sum := md5.Sum([]byte(strings.ToLower(strings.TrimSpace(email))))
	q := url.Values{}
	q.Set("s", fmt.Sprint(size))
	q.Set("d", "mm")
	return "https://www.gravatar.com/avatar/" + hex.EncodeToString(sum[:]) + "?" + q.Encode()
}
