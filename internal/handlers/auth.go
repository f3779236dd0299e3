// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"log/slog"
	"net/http"
	"strings"

	"xotheme/internal/middleware"
	"xotheme/internal/models"
	"xotheme/internal/session"
	"xotheme/internal/site"
	"xotheme/internal/theme"
)

// UserFinder looks up and authenticates members.
type UserFinder interface {
	FindByUname(uname string) (*models.User, error)
	CheckPassword(user *models.User, password string) bool
}

// Auth groups the login and logout handlers.
type Auth struct {
	themes   Themes
	sessions *session.Store
	users    UserFinder
}

// NewAuth creates a new Auth handler group.
func NewAuth(themes Themes, sessions *session.Store, users UserFinder) *Auth {
	return &Auth{themes: themes, sessions: sessions, users: users}
}

// LoginPage renders the login form inside the visitor's theme.
func (a *Auth) LoginPage(w http.ResponseWriter, r *http.Request) {
	if middleware.SessionFromCtx(r.Context()).Authenticated() {
		http.Redirect(w, r, safeRedirect(r.URL.Query().Get("redirect")), http.StatusSeeOther)
		return
	}
	a.form(w, r, "", http.StatusOK)
}

// LoginSubmit checks the credentials and starts an authenticated session.
// The theme chosen while anonymous carries over to the new session.
func (a *Auth) LoginSubmit(w http.ResponseWriter, r *http.Request) {
	uname := strings.TrimSpace(r.FormValue("uname"))
	password := r.FormValue("pass")

	if msg := validateLogin(uname, password); msg != "" {
		a.form(w, r, msg, http.StatusBadRequest)
		return
	}

	user, err := a.users.FindByUname(uname)
	if err != nil {
		slog.Error("login lookup failed", "error", err)
		a.form(w, r, "An unexpected error occurred.", http.StatusInternalServerError)
		return
	}
	if user == nil || !a.users.CheckPassword(user, password) {
		slog.Info("login failed", "uname", uname)
		a.form(w, r, "Invalid username or password.", http.StatusUnauthorized)
		return
	}

	data := &session.Data{
		UserID:      user.ID,
		Uname:       user.Uname,
		DisplayName: user.DisplayName(),
		Email:       user.Email,
		Groups:      user.Groups,
		IsAdmin:     user.IsAdmin(),
	}
	if prev := middleware.SessionFromCtx(r.Context()); prev != nil {
		data.Theme = prev.Theme
		// Never reuse a session id issued before authentication.
		if err := a.sessions.Destroy(r.Context(), w, r); err != nil {
			slog.Warn("anonymous session destroy failed", "error", err)
		}
	}

	if _, err := a.sessions.Create(r.Context(), w, data); err != nil {
		slog.Error("session create failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	slog.Info("user logged in", "uname", user.Uname, "admin", data.IsAdmin)
	http.Redirect(w, r, safeRedirect(r.FormValue("redirect")), http.StatusSeeOther)
}

// Logout destroys the session and redirects to the homepage.
func (a *Auth) Logout(w http.ResponseWriter, r *http.Request) {
	if err := a.sessions.Destroy(r.Context(), w, r); err != nil {
		slog.Error("session destroy failed", "error", err)
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (a *Auth) form(w http.ResponseWriter, r *http.Request, errMsg string, status int) {
	sc := site.FromContext(r.Context())
	if sc == nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	sc.PageTitle = "User login"
	renderPage(w, r, a.themes, sc, theme.Options{
		ContentTemplate:      LoginTemplate,
		ContentCacheLifetime: -1,
	}, map[string]any{
		"login_error":    errMsg,
		"login_redirect": safeRedirect(r.FormValue("redirect")),
		"csrf_field":     middleware.CSRFFormField,
	}, status)
}
