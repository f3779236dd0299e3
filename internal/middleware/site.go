// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package middleware

import (
	"log/slog"
	"net/http"

	"xotheme/internal/cacheid"
	"xotheme/internal/locale"
	"xotheme/internal/models"
	"xotheme/internal/session"
	"xotheme/internal/site"
)

// ThemeSelectParam is the request parameter a visitor picks a theme with.
const ThemeSelectParam = "xoops_theme_select"

// LangParam is the request parameter overriding the negotiated locale.
const LangParam = "lang"

// SettingsSource loads the site settings.
type SettingsSource interface {
	All() (models.SiteSettings, error)
}

// SiteConfig holds the shared services used to build each request's
// site context.
type SiteConfig struct {
	Settings SettingsSource
	Locales  *locale.Negotiator
	CacheIDs *cacheid.Generator
	// Sessions may be nil, in which case theme choices are not remembered.
	Sessions *session.Store
	SiteURL  string
}

// SiteContext builds the site.Context of the request and stores it in the
// request context. It must run after LoadSession.
func SiteContext(cfg SiteConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sc := NewSiteContext(cfg, w, r)
			next.ServeHTTP(w, r.WithContext(site.WithContext(r.Context(), sc)))
		})
	}
}

// NewSiteContext builds the site context for one request.
func NewSiteContext(cfg SiteConfig, w http.ResponseWriter, r *http.Request) *site.Context {
	settings := models.SiteSettings{}
	if cfg.Settings != nil {
		s, err := cfg.Settings.All()
		if err != nil {
			slog.Error("failed to load site settings", "error", err)
		} else {
			settings = s
		}
	}

	sess := SessionFromCtx(r.Context())

	sc := &site.Context{
		Settings:    settings,
		User:        userFromSession(sess),
		Method:      r.Method,
		RequestURI:  r.URL.RequestURI(),
		SiteURL:     cfg.SiteURL,
		ThemeSelect: r.FormValue(ThemeSelectParam),
		Banner:      settings.Get(models.SettingBanner, ""),
	}

	sc.Locale = "en"
	if cfg.Locales != nil {
		sc.Locale = cfg.Locales.Negotiate(r.URL.Query().Get(LangParam), r.Header.Get("Accept-Language"))
	}

	if cfg.Sessions != nil {
		sc.Session = cfg.Sessions.ForRequest(w, r, sess)
		sc.SessionIDName = cfg.Sessions.CookieName()
		sc.SessionID = cfg.Sessions.ID(r)
	}

	if cfg.CacheIDs != nil {
		sc.Keyer = cfg.CacheIDs.NewKeyer(sc.Identity())
	}
	return sc
}

// userFromSession rebuilds the visitor from an authenticated session.
func userFromSession(sess *session.Data) *models.User {
	if !sess.Authenticated() {
		return nil
	}
	groups := sess.Groups
	if len(groups) == 0 {
		groups = []int{models.GroupUsers}
	}
	return &models.User{
		ID:     sess.UserID,
		Uname:  sess.Uname,
		Name:   sess.DisplayName,
		Email:  sess.Email,
		Groups: append([]int(nil), groups...),
	}
}
