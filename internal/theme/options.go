// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package theme

import (
	"maps"
	"time"
)

// DefaultCanvasTemplate is the canvas file looked up in the theme folder.
const DefaultCanvasTemplate = "theme.html"

// Options configures a theme instance. Zero values mean "use the factory
// default"; pointer fields distinguish an explicit false from unset.
type Options struct {
	// FolderName forces a theme, bypassing request and session selection.
	FolderName string
	// Path and URL override the folder location. Normally derived from
	// the factory themes path.
	Path string
	URL  string
	// ThemesDir is the directory, relative to the site root, searched
	// first by ResourcePath.
	ThemesDir string

	CanvasTemplate  string
	ContentTemplate string

	// ContentCacheLifetime enables content caching when positive. A
	// negative value disables caching even if the factory default is on.
	ContentCacheLifetime time.Duration
	HeadersCacheEngine   string

	BufferOutput    *bool
	RenderBanner    *bool
	UseExtraCacheID *bool

	// Plugins lists plugin identifiers. Nil uses the factory default, an
	// empty slice loads none.
	Plugins []string

	// TemplateVars are assigned on every render.
	TemplateVars map[string]any
}

// Bool returns a pointer to b, for the optional Options fields.
func Bool(b bool) *bool { return &b }

// merge returns opts with unset fields taken from def.
func (def Options) merge(opts Options) Options {
	out := opts
	if out.Path == "" {
		out.Path = def.Path
	}
	if out.URL == "" {
		out.URL = def.URL
	}
	if out.ThemesDir == "" {
		out.ThemesDir = def.ThemesDir
	}
	if out.CanvasTemplate == "" {
		out.CanvasTemplate = def.CanvasTemplate
	}
	if out.ContentTemplate == "" {
		out.ContentTemplate = def.ContentTemplate
	}
	if out.ContentCacheLifetime == 0 {
		out.ContentCacheLifetime = def.ContentCacheLifetime
	}
	if out.ContentCacheLifetime < 0 {
		out.ContentCacheLifetime = 0
	}
	if out.HeadersCacheEngine == "" {
		out.HeadersCacheEngine = def.HeadersCacheEngine
	}
	if out.BufferOutput == nil {
		out.BufferOutput = def.BufferOutput
	}
	if out.RenderBanner == nil {
		out.RenderBanner = def.RenderBanner
	}
	if out.UseExtraCacheID == nil {
		out.UseExtraCacheID = def.UseExtraCacheID
	}
	if out.Plugins == nil {
		out.Plugins = def.Plugins
	}

	vars := maps.Clone(def.TemplateVars)
	if vars == nil {
		vars = make(map[string]any)
	}
	maps.Copy(vars, opts.TemplateVars)
	out.TemplateVars = vars
	return out
}

func boolOr(p *bool, fallback bool) bool {
	if p == nil {
		return fallback
	}
	return *p
}
