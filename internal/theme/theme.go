// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package theme selects the visual theme of a page, prepares its template
// context and composes the final document from a canvas template and a
// content template. A Theme lives for one request: the Factory creates it,
// modules and plugins add meta-information and assets, and Render emits the
// page exactly once.
package theme

import (
	"bytes"
	"io"
	"time"

	"xotheme/internal/assets"
	"xotheme/internal/avatar"
	"xotheme/internal/cache"
	"xotheme/internal/meta"
	"xotheme/internal/metrics"
	"xotheme/internal/site"
	"xotheme/internal/tpl"
)

// Services are the shared collaborators every theme instance uses.
type Services struct {
	Engine   *tpl.Engine
	Assets   assets.Bundler
	Headers  *cache.Registry
	Avatars  avatar.Resolver
	Plugins  *PluginRegistry
	OnLoad   *OnLoadRegistry
	Recorder metrics.Recorder
}

func (s Services) recorder() metrics.Recorder {
	if s.Recorder == nil {
		return metrics.NoopRecorder{}
	}
	return s.Recorder
}

// BaseAssets are the files bundled into the single page script and
// stylesheet at render time. Entries starting with "@" name a reference.
type BaseAssets struct {
	CSS []string
	JS  []string
}

// Theme is one page being built with a theme folder. It is not safe for
// concurrent use.
type Theme struct {
	FolderName string
	Path       string
	URL        string
	ThemesDir  string

	Template *tpl.Context
	Metas    *meta.Registry

	BaseAssets BaseAssets

	ContentCacheLifetime time.Duration
	ContentCacheID       string
	HeadersCacheEngine   string

	CanvasTemplate  string
	ContentTemplate string
	// Content is the body markup, set from ContentTemplate at render.
	Content string

	BufferOutput    bool
	RenderBanner    bool
	UseExtraCacheID bool
	TemplateVars    map[string]any
	PluginIDs       []string

	site     *site.Context
	svc      Services
	rootPath string

	plugins     []Plugin
	renderCount int
	output      *bytes.Buffer
	elementIDs  map[string]int
	lang        map[string]string
}

// Name returns the theme folder name.
func (t *Theme) Name() string { return t.FolderName }

// Site returns the request context the theme was created for.
func (t *Theme) Site() *site.Context { return t.site }

// RenderCount returns how many times the page has been emitted (0 or 1).
func (t *Theme) RenderCount() int { return t.renderCount }

// Output returns the writer collecting directly emitted markup. Its
// content is appended to the page body at render. Without BufferOutput
// the writer discards everything.
func (t *Theme) Output() io.Writer {
	if t.output == nil {
		return io.Discard
	}
	return t.output
}

// Lang returns the theme locale strings loaded for the active locale.
func (t *Theme) Lang() map[string]string { return t.lang }

// CacheID extends raw with the visitor's locale and group section.
func (t *Theme) CacheID(raw string) string {
	if !t.UseExtraCacheID || t.site == nil {
		return raw
	}
	return t.site.Keyer.CacheID(raw, "")
}
