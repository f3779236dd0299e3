// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package handlers implements the HTTP handlers of the site. Every HTML
// page goes through a theme: the handler creates the theme instance for
// the request, lets it serve the page from the content cache when it can,
// and renders it otherwise.
package handlers

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"xotheme/internal/models"
	"xotheme/internal/site"
	"xotheme/internal/theme"
	"xotheme/internal/tpl"
)

// Templates rendered by the system module.
const (
	HomepageTemplate  = "module:system/system_homepage.html"
	LoginTemplate     = "module:system/system_userform.html"
	AdminTemplate     = "module:system/system_admin.html"
	NotFoundTemplate  = "module:system/system_notfound.html"
	moduleTemplateExt = ".html"
)

// Themes creates the theme instance of a request. Both theme.Factory and
// theme.AdminFactory implement it.
type Themes interface {
	CreateInstance(ctx context.Context, sc *site.Context, opts theme.Options) (*theme.Theme, error)
}

// ModuleFinder looks up installed modules.
type ModuleFinder interface {
	FindByDirname(dirname string) (*models.Module, error)
}

// Pages serves the public site.
type Pages struct {
	themes  Themes
	modules ModuleFinder
	engine  *tpl.Engine
}

// NewPages creates the public page handlers.
func NewPages(themes Themes, modules ModuleFinder, engine *tpl.Engine) *Pages {
	return &Pages{themes: themes, modules: modules, engine: engine}
}

// Homepage renders the start page. When the startpage setting names an
// active module, its index page is shown instead.
func (p *Pages) Homepage(w http.ResponseWriter, r *http.Request) {
	sc := site.FromContext(r.Context())
	if sc == nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	if start := sc.Setting(models.SettingStartPage, ""); validName(start) && start != "system" {
		mod, err := p.modules.FindByDirname(start)
		if err != nil {
			slog.Error("find start module failed", "module", start, "error", err)
		}
		if mod != nil && mod.IsActive {
			p.module(w, r, sc, mod, "index")
			return
		}
	}

	renderPage(w, r, p.themes, sc, theme.Options{ContentTemplate: HomepageTemplate}, nil, http.StatusOK)
}

// Module renders /modules/{dirname}/{page} with the module's template for
// page.
func (p *Pages) Module(w http.ResponseWriter, r *http.Request) {
	sc := site.FromContext(r.Context())
	if sc == nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	dirname, page := chi.URLParam(r, "dirname"), chi.URLParam(r, "page")
	if page == "" {
		page = "index"
	}
	if !validName(dirname) || !validName(page) {
		p.notFound(w, r, sc)
		return
	}

	mod, err := p.modules.FindByDirname(dirname)
	if err != nil {
		slog.Error("find module failed", "module", dirname, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if mod == nil || !mod.IsActive {
		p.notFound(w, r, sc)
		return
	}
	p.module(w, r, sc, mod, page)
}

func (p *Pages) module(w http.ResponseWriter, r *http.Request, sc *site.Context, mod *models.Module, page string) {
	name := tpl.ModulePrefix + mod.Dirname + "/" + page + moduleTemplateExt
	if p.engine != nil && !p.engine.Exists(name) {
		p.notFound(w, r, sc)
		return
	}

	sc.Module = mod
	if sc.PageTitle == "" {
		sc.PageTitle = mod.Name
	}
	renderPage(w, r, p.themes, sc, theme.Options{ContentTemplate: name}, map[string]any{
		"xoops_page": page,
	}, http.StatusOK)
}

// NotFound renders the themed 404 page.
func (p *Pages) NotFound(w http.ResponseWriter, r *http.Request) {
	sc := site.FromContext(r.Context())
	if sc == nil {
		http.NotFound(w, r)
		return
	}
	p.notFound(w, r, sc)
}

func (p *Pages) notFound(w http.ResponseWriter, r *http.Request, sc *site.Context) {
	if p.engine != nil && !p.engine.Exists(NotFoundTemplate) {
		http.NotFound(w, r)
		return
	}
	sc.PageTitle = "Page not found"
	renderPage(w, r, p.themes, sc, theme.Options{
		ContentTemplate:      NotFoundTemplate,
		ContentCacheLifetime: -1,
	}, nil, http.StatusNotFound)
}

// renderPage runs the theme life cycle for one page and writes the result.
// The page is composed in memory so a template error still yields a clean
// 500 response.
func renderPage(w http.ResponseWriter, r *http.Request, themes Themes, sc *site.Context, opts theme.Options, vars map[string]any, status int) {
	ctx := r.Context()
	t, err := themes.CreateInstance(ctx, sc, opts)
	if err != nil {
		slog.Error("create theme failed", "error", err, "uri", sc.RequestURI)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	served, err := t.CheckCache(ctx, &buf)
	if err != nil {
		// The failed instance has fired and holds restored head state;
		// start over on a new one that bypasses the content cache.
		slog.Warn("cached page render failed, rendering afresh", "theme", t.Name(), "error", err)
		buf.Reset()
		fresh := opts
		fresh.ContentCacheLifetime = -1
		if t, err = themes.CreateInstance(ctx, sc, fresh); err != nil {
			slog.Error("create theme failed", "error", err, "uri", sc.RequestURI)
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}
		served = false
	}
	if !served {
		if _, err := t.Render(ctx, &buf, theme.RenderOptions{Vars: vars}); err != nil {
			slog.Error("render page failed", "theme", t.Name(), "uri", sc.RequestURI, "error", err)
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	w.Write(buf.Bytes())
}
