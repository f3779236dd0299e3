// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"net/url"
	"regexp"
	"strings"
	"unicode/utf8"
)

// Validation limits for request inputs.
const (
	maxNameLen     = 64
	maxUnameLen    = 64
	maxPasswordLen = 256
)

// namePattern matches module directory names and page names.
var namePattern = regexp.MustCompile(`^[a-z0-9_]+$`)

// validName reports whether s is usable as a module dirname or page name.
// Names map onto template paths, so separators and dots are rejected.
func validName(s string) bool {
	return len(s) <= maxNameLen && namePattern.MatchString(s)
}

// validateLogin checks login form inputs and returns the first error found.
func validateLogin(uname, password string) string {
	uname = strings.TrimSpace(uname)
	if uname == "" || password == "" {
		return "Username and password are required."
	}
	if utf8.RuneCountInString(uname) > maxUnameLen {
		return "Username is too long (max 64 characters)."
	}
	if len(password) > maxPasswordLen {
		return "Password is too long."
	}
	return ""
}

// safeRedirect returns target when it is a local path, else "/".
func safeRedirect(target string) string {
	if target == "" || !strings.HasPrefix(target, "/") || strings.HasPrefix(target, "//") || strings.Contains(target, `\`) {
		return "/"
	}
	u, err := url.Parse(target)
	if err != nil || u.Host != "" || u.Scheme != "" {
		return "/"
	}
	return target
}
