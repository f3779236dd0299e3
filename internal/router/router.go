// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package router sets up all HTTP routes and middleware chains of the
// site. Every themed route runs behind LoadSession and SiteContext so the
// handlers find the request's site context ready.
package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"xotheme/internal/handlers"
	"xotheme/internal/middleware"
	"xotheme/internal/session"
)

// Login attempts allowed per client IP and window.
const (
	loginLimit  = 10
	loginWindow = time.Minute
)

// Deps are the handlers and services the router wires together.
type Deps struct {
	Sessions *session.Store
	Site     middleware.SiteConfig

	Pages *handlers.Pages
	Auth  *handlers.Auth
	Admin *handlers.Admin

	// Metrics serves /metrics when set.
	Metrics http.Handler
	// Static maps URL prefixes such as "/themes/" to file servers.
	Static map[string]http.Handler
}

// New creates and returns the configured Chi router with all middleware
// and route groups wired up.
func New(d Deps) chi.Router {
	r := chi.NewRouter()

	// Global middleware, applied to every request.
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(middleware.SecureHeaders)

	// Probes, no session.
	r.Get("/health", healthHandler)
	if d.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", d.Metrics)
	}

	for prefix, h := range d.Static {
		r.Handle(prefix+"*", http.StripPrefix(prefix, h))
	}

	r.Group(func(r chi.Router) {
		r.Use(middleware.LoadSession(d.Sessions))
		r.Use(middleware.CSRF)
		r.Use(middleware.SiteContext(d.Site))

		r.Get("/", d.Pages.Homepage)
		r.Get("/modules/{dirname}", d.Pages.Module)
		r.Get("/modules/{dirname}/{page}", d.Pages.Module)
		r.NotFound(d.Pages.NotFound)

		limiter := middleware.NewRateLimiter(loginLimit, loginWindow)
		r.Route("/user", func(r chi.Router) {
			r.Use(middleware.NoStore)
			r.Get("/login", d.Auth.LoginPage)
			r.With(limiter.Middleware).Post("/login", d.Auth.LoginSubmit)
			r.Post("/logout", d.Auth.Logout)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(middleware.NoStore)
			r.Use(middleware.RequireAuth)
			r.Use(middleware.RequireAdmin)
			r.Get("/", d.Admin.Dashboard)
			r.Post("/cache/flush", d.Admin.FlushCaches)
		})
	})

	return r
}

// healthHandler returns a simple JSON health check response.
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}
