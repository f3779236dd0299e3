// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package site carries the per-request application state the theme layer
// reads: settings, the visitor, the active module and locale, and the theme
// selected for the page. A Context is built once per request by middleware
// and passed explicitly to the theme factory and handlers.
package site

import (
	"context"
	"slices"

	"xotheme/internal/cacheid"
	"xotheme/internal/models"
	"xotheme/internal/tpl"
)

// Session persists per-visitor choices between requests.
type Session interface {
	// ThemeSelection returns the remembered theme, or "" when none.
	ThemeSelection() string
	// RememberTheme stores name for later requests.
	RememberTheme(ctx context.Context, name string) error
}

// ActiveTheme is the view of the selected theme handlers need.
type ActiveTheme interface {
	Name() string
}

// Context is the request-scoped application context. It is not safe for
// concurrent use.
type Context struct {
	Settings models.SiteSettings
	// User is nil for anonymous visitors.
	User *models.User
	// Module is nil outside a module page.
	Module *models.Module
	Locale string

	Method     string
	RequestURI string
	SiteURL    string
	// ThemeSelect is the xoops_theme_select request parameter.
	ThemeSelect string

	Session       Session
	SessionIDName string
	SessionID     string

	// Page options set by modules before rendering.
	PageTitle    string
	ModuleHeader string

	// Keyer generates cache ids for this request's visitor.
	Keyer *cacheid.Keyer
	// Banner is the rendered banner markup, empty when none.
	Banner string

	// ThemeSet is the theme chosen for this request.
	ThemeSet string

	theme    ActiveTheme
	template *tpl.Context
}

// SetTheme records the active theme and its template context.
func (c *Context) SetTheme(t ActiveTheme, tc *tpl.Context) {
	c.theme = t
	c.template = tc
}

// Theme returns the active theme, or nil before one is initialized.
func (c *Context) Theme() ActiveTheme { return c.theme }

// Template returns the active template context.
func (c *Context) Template() *tpl.Context { return c.template }

// IsUser reports whether the visitor is logged in.
func (c *Context) IsUser() bool { return c.User != nil }

// IsAdmin reports whether the visitor belongs to the admins group.
func (c *Context) IsAdmin() bool { return c.User != nil && c.User.IsAdmin() }

// Groups returns the visitor's group ids. Anonymous visitors are in the
// anonymous group only.
func (c *Context) Groups() []int {
	if c.User == nil || len(c.User.Groups) == 0 {
		return []int{models.GroupAnonymous}
	}
	return slices.Clone(c.User.Groups)
}

// Setting returns a site setting or fallback.
func (c *Context) Setting(key, fallback string) string {
	return c.Settings.Get(key, fallback)
}

// Identity returns the cache identity of the visitor.
func (c *Context) Identity() cacheid.Identity {
	id := cacheid.Identity{Locale: c.Locale, Authenticated: c.User != nil}
	if c.User != nil {
		id.Groups = slices.Clone(c.User.Groups)
	}
	return id
}

type contextKey string

const siteKey contextKey = "site"

// WithContext stores sc in ctx.
func WithContext(ctx context.Context, sc *Context) context.Context {
	return context.WithValue(ctx, siteKey, sc)
}

// FromContext returns the site context stored by WithContext, or nil.
func FromContext(ctx context.Context) *Context {
	sc, _ := ctx.Value(siteKey).(*Context)
	return sc
}
