// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package theme

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"gopkg.in/yaml.v3"

	"xotheme/internal/meta"
)

// OnLoadFile is the optional per-theme customization file.
const OnLoadFile = "theme_onload.yaml"

// OnLoadFunc customizes a theme after its defaults are in place and
// before plugins run.
type OnLoadFunc func(ctx context.Context, t *Theme) error

// OnLoadRegistry holds Go customization hooks per theme folder.
type OnLoadRegistry struct {
	mu    sync.RWMutex
	hooks map[string][]OnLoadFunc
}

// NewOnLoadRegistry creates an empty registry.
func NewOnLoadRegistry() *OnLoadRegistry {
	return &OnLoadRegistry{hooks: make(map[string][]OnLoadFunc)}
}

// Register adds fn for themes named folder. "*" matches every theme.
func (r *OnLoadRegistry) Register(folder string, fn OnLoadFunc) {
	r.mu.Lock()
	r.hooks[folder] = append(r.hooks[folder], fn)
	r.mu.Unlock()
}

func (r *OnLoadRegistry) lookup(folder string) []OnLoadFunc {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := append([]OnLoadFunc{}, r.hooks["*"]...)
	return append(out, r.hooks[folder]...)
}

// onLoadTag is a script or stylesheet declared in theme_onload.yaml.
type onLoadTag struct {
	Src   string            `yaml:"src"`
	Attrs map[string]string `yaml:"attrs"`
	Body  string            `yaml:"body"`
}

type onLoadLink struct {
	Rel   string            `yaml:"rel"`
	Href  string            `yaml:"href"`
	Attrs map[string]string `yaml:"attrs"`
}

type onLoadNamedAsset struct {
	Name    string   `yaml:"name"`
	Paths   []string `yaml:"paths"`
	Filters []string `yaml:"filters"`
}

// OnLoadConfig is the content of theme_onload.yaml.
type OnLoadConfig struct {
	NamedAssets []onLoadNamedAsset `yaml:"named_assets"`
	BaseAssets  struct {
		CSS []string `yaml:"css"`
		JS  []string `yaml:"js"`
	} `yaml:"base_assets"`
	Scripts     []onLoadTag       `yaml:"scripts"`
	Stylesheets []onLoadTag       `yaml:"stylesheets"`
	Links       []onLoadLink      `yaml:"links"`
	Metas       map[string]string `yaml:"metas"`
	HTTPMetas   map[string]string `yaml:"http_metas"`
	Vars        map[string]any    `yaml:"vars"`
}

// LoadOnLoadConfig reads the customization file of a theme folder. It
// returns nil when the file does not exist.
func LoadOnLoadConfig(themePath string) (*OnLoadConfig, error) {
	data, err := os.ReadFile(filepath.Join(themePath, OnLoadFile))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", OnLoadFile, err)
	}
	var decl OnLoadConfig
	if err := yaml.Unmarshal(data, &decl); err != nil {
		return nil, fmt.Errorf("parse %s: %w", OnLoadFile, err)
	}
	return &decl, nil
}

// runOnLoad applies registered hooks, then the theme's on-load file.
// Failures are logged and do not stop initialization.
func (t *Theme) runOnLoad(ctx context.Context) {
	for _, fn := range t.svc.OnLoad.lookup(t.FolderName) {
		if err := fn(ctx, t); err != nil {
			slog.Warn("theme on-load hook failed", "theme", t.FolderName, "error", err)
		}
	}

	decl, err := LoadOnLoadConfig(t.Path)
	if err != nil {
		slog.Warn("theme on-load file ignored", "theme", t.FolderName, "error", err)
		return
	}
	if decl != nil {
		t.applyOnLoad(decl)
	}
}

func (t *Theme) applyOnLoad(decl *OnLoadConfig) {
	for _, na := range decl.NamedAssets {
		if t.svc.Assets == nil {
			break
		}
		if err := t.SetNamedAsset(na.Name, na.Paths, na.Filters); err != nil {
			slog.Warn("on-load named asset rejected", "theme", t.FolderName, "name", na.Name, "error", err)
		}
	}
	t.AddBaseStylesheetAssets(decl.BaseAssets.CSS...)
	t.AddBaseScriptAssets(decl.BaseAssets.JS...)

	for _, s := range decl.Scripts {
		t.AddScript(s.Src, sortedAttrs(s.Attrs), s.Body)
	}
	for _, s := range decl.Stylesheets {
		t.AddStylesheet(s.Src, sortedAttrs(s.Attrs), s.Body)
	}
	for _, l := range decl.Links {
		t.AddLink(l.Rel, l.Href, sortedAttrs(l.Attrs))
	}
	for _, name := range sortedKeys(decl.Metas) {
		t.AddMeta(meta.CategoryMeta, name, decl.Metas[name])
	}
	for _, name := range sortedKeys(decl.HTTPMetas) {
		t.AddHTTPMeta(name, decl.HTTPMetas[name])
	}
	t.Template.AssignAll(decl.Vars)
}

// sortedAttrs converts a YAML attribute map to a list in name order, since
// YAML mappings carry no order.
func sortedAttrs(m map[string]string) meta.Attributes {
	var a meta.Attributes
	for _, k := range sortedKeys(m) {
		a = a.With(k, m[k])
	}
	return a
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
