// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package theme

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"xotheme/internal/assets"
	"xotheme/internal/meta"
	"xotheme/internal/slug"
)

// AddScript registers a script tag. A non-empty src is resolved through
// the theme override lookup and becomes the entry key; body is emitted as
// inline code.
func (t *Theme) AddScript(src string, attrs meta.Attributes, body string) {
	if src != "" {
		src = t.absURL(t.ResourcePath(src))
		attrs = attrs.With("src", src)
	}
	if !attrs.Has("type") {
		attrs = attrs.With("type", "text/javascript")
	}
	t.Metas.Add(meta.CategoryScript, src, meta.Item{Attrs: attrs, Body: body})
}

// AddStylesheet registers a stylesheet link, or an inline style block
// when body is set.
func (t *Theme) AddStylesheet(src string, attrs meta.Attributes, body string) {
	if src != "" {
		src = t.absURL(t.ResourcePath(src))
		attrs = attrs.With("href", src)
	}
	if !attrs.Has("type") {
		attrs = attrs.With("type", "text/css")
	}
	t.Metas.Add(meta.CategoryStylesheet, src, meta.Item{Attrs: attrs, Body: body})
}

// AddLink registers a link tag. Links are keyed by content, so identical
// links collapse.
func (t *Theme) AddLink(rel, href string, attrs meta.Attributes) {
	if href != "" {
		attrs = attrs.With("href", href)
	}
	attrs = attrs.With("rel", rel)
	t.Metas.Add(meta.CategoryLink, "", meta.Item{Attrs: attrs})
}

// AddHTTPMeta sets an http-equiv meta value.
func (t *Theme) AddHTTPMeta(name, value string) string {
	return t.Metas.AddMeta(meta.CategoryHTTP, name, value)
}

// RemoveHTTPMeta drops an http-equiv meta value.
func (t *Theme) RemoveHTTPMeta(name string) {
	t.Metas.Remove(meta.CategoryHTTP, name)
}

// AddMeta sets a value in category. An empty name keys it by content.
func (t *Theme) AddMeta(category, name, value string) string {
	return t.Metas.AddMeta(category, name, value)
}

// AddHeadString appends raw markup to the document head.
func (t *Theme) AddHeadString(s string) {
	t.Metas.AddHeadString(s)
}

// AddScriptAssets bundles files now and adds the bundle as a script.
func (t *Theme) AddScriptAssets(ctx context.Context, files, filters []string, target string) error {
	url, err := t.svc.Assets.URLToAssets(ctx, assets.KindJS, files, filters, target)
	if err != nil {
		return err
	}
	if url != "" {
		t.AddScript(url, nil, "")
	}
	return nil
}

// AddStylesheetAssets bundles files now and adds the bundle as a
// stylesheet.
func (t *Theme) AddStylesheetAssets(ctx context.Context, files, filters []string, target string) error {
	url, err := t.svc.Assets.URLToAssets(ctx, assets.KindCSS, files, filters, target)
	if err != nil {
		return err
	}
	if url != "" {
		t.AddStylesheet(url, nil, "")
	}
	return nil
}

// AddBaseAssets appends files to the base bundle of kind.
func (t *Theme) AddBaseAssets(kind string, files ...string) {
	switch kind {
	case assets.KindCSS:
		t.BaseAssets.CSS = append(t.BaseAssets.CSS, files...)
	case assets.KindJS:
		t.BaseAssets.JS = append(t.BaseAssets.JS, files...)
	default:
		slog.Warn("unknown base asset kind", "kind", kind)
	}
}

// AddBaseScriptAssets appends files to the base script bundle.
func (t *Theme) AddBaseScriptAssets(files ...string) {
	t.AddBaseAssets(assets.KindJS, files...)
}

// AddBaseStylesheetAssets appends files to the base stylesheet bundle.
func (t *Theme) AddBaseStylesheetAssets(files ...string) {
	t.AddBaseAssets(assets.KindCSS, files...)
}

// SetNamedAsset registers paths under name, usable as "@name".
func (t *Theme) SetNamedAsset(name string, paths, filters []string) error {
	return t.svc.Assets.RegisterReference(name, paths, filters)
}

// ResourcePath returns the root-relative location of path, preferring the
// copy in ThemesDir, then the public themes folder, then path itself.
func (t *Theme) ResourcePath(path string) string {
	if isAbsURL(path) {
		return path
	}
	path = strings.TrimPrefix(path, "/")

	for _, dir := range []string{t.ThemesDir, "themes"} {
		if dir == "" {
			continue
		}
		rel := dir + "/" + t.FolderName + "/" + path
		if fileExists(filepath.Join(t.rootPath, filepath.FromSlash(rel))) {
			return rel
		}
	}
	return path
}

// ElementID returns a page-unique id for tag: "tag-1", "tag-2", ...
// The tag is slugged first so template supplied labels stay valid ids.
func (t *Theme) ElementID(tag string) string {
	tag = slug.Generate(tag)
	if tag == "" {
		tag = "xos"
	}
	if t.elementIDs == nil {
		t.elementIDs = make(map[string]int)
	}
	t.elementIDs[tag]++
	return tag + "-" + strconv.Itoa(t.elementIDs[tag])
}

// RenderMetas returns the head markup with the base bundles built.
func (t *Theme) RenderMetas(ctx context.Context) string {
	return t.Metas.Render(t.baseURL(ctx, assets.KindJS, t.BaseAssets.JS), t.baseURL(ctx, assets.KindCSS, t.BaseAssets.CSS))
}

// RenderMetasByType returns the markup of a single category.
func (t *Theme) RenderMetasByType(category string) string {
	return t.Metas.RenderByType(category)
}

func (t *Theme) baseURL(ctx context.Context, kind string, files []string) string {
	if len(files) == 0 || t.svc.Assets == nil {
		return ""
	}
	url, err := t.svc.Assets.URLToAssets(ctx, kind, files, nil, "")
	if err != nil {
		slog.Warn("base asset bundle failed", "theme", t.FolderName, "kind", kind, "error", err)
		return ""
	}
	return url
}

// absURL turns a root-relative path into a site URL.
func (t *Theme) absURL(p string) string {
	if isAbsURL(p) || t.site == nil || t.site.SiteURL == "" {
		return p
	}
	return strings.TrimRight(t.site.SiteURL, "/") + "/" + strings.TrimPrefix(p, "/")
}

func isAbsURL(p string) bool {
	return strings.Contains(p, "://") || strings.HasPrefix(p, "//")
}

func fileExists(path string) bool {
	st, err := os.Stat(path)
	return err == nil && !st.IsDir()
}
