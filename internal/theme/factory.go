// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package theme

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"

	"xotheme/internal/config"
	"xotheme/internal/site"
)

// Theme selection sources, reported to metrics.
const (
	SourceOption  = "option"
	SourceRequest = "request"
	SourceSession = "session"
	SourceDefault = "default"
)

// Factory creates the theme instance of each request.
type Factory struct {
	// AllowedThemes restricts selection. Empty allows every theme.
	AllowedThemes      []string
	DefaultTheme       string
	AllowUserSelection bool

	RootPath   string
	ThemesPath string
	ThemesURL  string

	// Defaults fills the option fields callers leave unset.
	Defaults Options
	Services Services
}

// NewFactory builds a factory from the application configuration.
func NewFactory(cfg *config.Config, svc Services) *Factory {
	plugins := cfg.ThemePlugins
	if plugins == nil {
		plugins = []string{}
	}
	return &Factory{
		AllowedThemes:      cfg.ThemeAllowed,
		DefaultTheme:       cfg.ThemeDefault,
		AllowUserSelection: cfg.ThemeAllowUserSelect,
		RootPath:           cfg.RootPath,
		ThemesPath:         cfg.ThemesPath,
		ThemesURL:          cfg.ThemesURL,
		Defaults: Options{
			ThemesDir:            "themes",
			CanvasTemplate:       DefaultCanvasTemplate,
			ContentCacheLifetime: cfg.ContentCacheLifetime,
			HeadersCacheEngine:   cfg.HeadersCacheEngine,
			BufferOutput:         Bool(cfg.BufferOutput),
			RenderBanner:         Bool(true),
			UseExtraCacheID:      Bool(cfg.ExtraCacheID),
			Plugins:              plugins,
		},
		Services: svc,
	}
}

// folderPattern is the shape of a selectable theme folder name: a single
// path element.
var folderPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_-]{0,63}$`)

// IsThemeAllowed reports whether name may be selected. Names that are not
// a single folder name are never allowed.
func (f *Factory) IsThemeAllowed(name string) bool {
	if !folderPattern.MatchString(name) {
		return false
	}
	return len(f.AllowedThemes) == 0 || slices.Contains(f.AllowedThemes, name)
}

// selectable reports whether a visitor supplied name is allowed and, when
// the factory knows its themes directory, present on disk.
func (f *Factory) selectable(name string) bool {
	if !f.IsThemeAllowed(name) {
		return false
	}
	if f.ThemesPath == "" {
		return true
	}
	fi, err := os.Stat(filepath.Join(f.ThemesPath, name))
	return err == nil && fi.IsDir()
}

// SelectFolder resolves the theme folder for a request: an explicit
// option, then an allowed request parameter, then an allowed session
// choice, then the default. It records a request choice in the session
// when user selection is on.
func (f *Factory) SelectFolder(ctx context.Context, sc *site.Context, explicit string) (folder, source string) {
	if explicit != "" {
		return explicit, SourceOption
	}

	switch req := sc.ThemeSelect; {
	case req != "" && f.selectable(req):
		folder, source = req, SourceRequest
		if sc.Session != nil && f.AllowUserSelection {
			if err := sc.Session.RememberTheme(ctx, req); err != nil {
				slog.Warn("failed to remember theme", "theme", req, "error", err)
			}
		}
	default:
		if req != "" {
			slog.Debug("requested theme not allowed", "theme", req)
		}
		folder, source = f.DefaultTheme, SourceDefault
		if sc.Session != nil {
			if s := sc.Session.ThemeSelection(); s != "" && f.selectable(s) {
				folder, source = s, SourceSession
			}
		}
	}

	sc.ThemeSet = folder
	return folder, source
}

// CreateInstance selects, builds and initializes the theme for sc.
func (f *Factory) CreateInstance(ctx context.Context, sc *site.Context, opts Options) (*Theme, error) {
	if sc == nil {
		return nil, fmt.Errorf("create theme: nil site context")
	}
	folder, source := f.SelectFolder(ctx, sc, opts.FolderName)

	o := f.Defaults.merge(opts)
	t := &Theme{
		FolderName:           folder,
		Path:                 o.Path,
		URL:                  o.URL,
		ThemesDir:            o.ThemesDir,
		CanvasTemplate:       o.CanvasTemplate,
		ContentTemplate:      o.ContentTemplate,
		ContentCacheLifetime: o.ContentCacheLifetime,
		HeadersCacheEngine:   o.HeadersCacheEngine,
		BufferOutput:         boolOr(o.BufferOutput, false),
		RenderBanner:         boolOr(o.RenderBanner, true),
		UseExtraCacheID:      boolOr(o.UseExtraCacheID, true),
		TemplateVars:         o.TemplateVars,
		PluginIDs:            o.Plugins,
		site:                 sc,
		svc:                  f.Services,
		rootPath:             f.RootPath,
	}
	if t.CanvasTemplate == "" {
		t.CanvasTemplate = DefaultCanvasTemplate
	}

	if err := t.init(ctx, f.ThemesPath, f.ThemesURL); err != nil {
		return nil, fmt.Errorf("init theme %s: %w", folder, err)
	}
	f.Services.recorder().IncThemeSelected(folder, source)
	slog.Debug("theme created", "theme", folder, "source", source)
	return t, nil
}

// AdminFactory creates themes for the administration area. Admin themes
// live in their own tree, never load plugins and never show the banner.
type AdminFactory struct {
	*Factory
	AdminThemesPath string
	AdminThemesURL  string
}

// NewAdminFactory derives an admin factory from the public one.
func NewAdminFactory(base *Factory, cfg *config.Config) *AdminFactory {
	return &AdminFactory{
		Factory:         base,
		AdminThemesPath: cfg.AdminThemesPath,
		AdminThemesURL:  cfg.AdminThemesURL,
	}
}

// CreateInstance implements admin theme creation.
func (f *AdminFactory) CreateInstance(ctx context.Context, sc *site.Context, opts Options) (*Theme, error) {
	opts.Plugins = []string{}
	opts.RenderBanner = Bool(false)
	if opts.ThemesDir == "" {
		if rel, err := filepath.Rel(f.RootPath, f.AdminThemesPath); err == nil && !strings.HasPrefix(rel, "..") {
			opts.ThemesDir = filepath.ToSlash(rel)
		}
	}

	t, err := f.Factory.CreateInstance(ctx, sc, opts)
	if err != nil {
		return nil, err
	}
	t.Path = f.AdminThemesPath + "/" + t.FolderName
	t.URL = f.AdminThemesURL + "/" + t.FolderName
	t.assignPathVars()
	return t, nil
}
