// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"sort"
	"strconv"

	"xotheme/internal/site"
	"xotheme/internal/theme"
	"xotheme/internal/tpl"
)

// CacheFlusher empties one cache engine.
type CacheFlusher interface {
	Flush(ctx context.Context) (int, error)
}

// Admin serves the administration area with the admin themes.
type Admin struct {
	themes  Themes
	engine  *tpl.Engine
	caches  map[string]CacheFlusher
	onFlush []func()
}

// NewAdmin creates the admin handlers. caches maps engine names to the
// stores the flush action empties; onFlush hooks run after a flush.
func NewAdmin(themes Themes, engine *tpl.Engine, caches map[string]CacheFlusher, onFlush ...func()) *Admin {
	return &Admin{themes: themes, engine: engine, caches: caches, onFlush: onFlush}
}

// Dashboard renders the admin start page.
func (a *Admin) Dashboard(w http.ResponseWriter, r *http.Request) {
	sc := site.FromContext(r.Context())
	if sc == nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	sc.PageTitle = "Administration"

	names := make([]string, 0, len(a.caches))
	for name := range a.caches {
		names = append(names, name)
	}
	sort.Strings(names)

	renderPage(w, r, a.themes, sc, theme.Options{
		ContentTemplate:      AdminTemplate,
		ContentCacheLifetime: -1,
	}, map[string]any{
		"cache_engines": names,
		"flushed":       r.URL.Query().Get("flushed"),
	}, http.StatusOK)
}

// FlushCaches empties every registered cache engine and the compiled
// template cache, then redirects back to the dashboard.
func (a *Admin) FlushCaches(w http.ResponseWriter, r *http.Request) {
	total := 0
	for name, c := range a.caches {
		n, err := c.Flush(r.Context())
		if err != nil {
			slog.Error("cache flush failed", "engine", name, "error", err)
			continue
		}
		total += n
	}
	if a.engine != nil {
		a.engine.InvalidateAll()
	}
	for _, fn := range a.onFlush {
		fn()
	}

	slog.Info("caches flushed", "entries", total)
	http.Redirect(w, r, "/admin/?flushed="+strconv.Itoa(total), http.StatusSeeOther)
}
