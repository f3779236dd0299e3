// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package theme

import (
	"context"
	"fmt"
	"html/template"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"xotheme/internal/cache"
	"xotheme/internal/cacheid"
	"xotheme/internal/metrics"
)

// DummyContentTemplate stands in for the content template when a cached
// page is checked without one.
const DummyContentTemplate = "module:system/system_dummy.html"

// RenderOptions override the theme templates for a single render.
type RenderOptions struct {
	CanvasTemplate  string
	ContentTemplate string
	Vars            map[string]any
}

// isWrite reports whether method may change state. Such requests never
// use the content cache.
func isWrite(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	}
	return false
}

// CheckCache serves the page from the content cache when possible. It
// reports true when the page was handled (or had already been emitted by
// an earlier hit), in which case the caller must not render again.
func (t *Theme) CheckCache(ctx context.Context, w io.Writer) (bool, error) {
	rec := t.svc.recorder()
	sc := t.site
	if isWrite(sc.Method) || t.ContentCacheLifetime <= 0 {
		rec.IncCacheCheck(metrics.CacheSkipped)
		return false, nil
	}

	name := t.ContentTemplate
	if name == "" {
		name = DummyContentTemplate
	}
	t.Template.SetCaching(true, t.ContentCacheLifetime)

	uri := sc.RequestURI
	if sc.SiteURL != "" {
		uri = strings.ReplaceAll(uri, sc.SiteURL, "")
	}
	uri = cacheid.StripSessionID(uri, sc.SessionIDName, sc.SessionID)
	t.ContentCacheID = t.CacheID(cacheid.PageKey(uri))

	if !t.Template.IsCached(ctx, name, t.ContentCacheID) {
		rec.IncCacheCheck(metrics.CacheMiss)
		return false, nil
	}

	rec.IncCacheCheck(metrics.CacheHit)
	slog.Debug("content cache hit", "theme", t.FolderName, "cache_id", t.ContentCacheID)
	if _, err := t.Render(ctx, w, RenderOptions{ContentTemplate: name}); err != nil {
		return false, err
	}
	return true, nil
}

// Render composes and writes the page. It fires once per theme: later
// calls do nothing and return false.
func (t *Theme) Render(ctx context.Context, w io.Writer, opts RenderOptions) (bool, error) {
	if t.renderCount > 0 {
		return false, nil
	}
	start := time.Now()
	sc := t.site
	tc := t.Template

	store := t.headersStore()
	cacheable := t.ContentCacheLifetime > 0 && t.ContentCacheID != "" && store != nil

	// Restore the head of a cached page before anything reads it.
	if cacheable {
		var entry cache.Entry
		ok, err := store.Read(ctx, t.ContentCacheID, &entry)
		if err != nil {
			slog.Warn("headers cache read failed", "theme", t.FolderName, "cache_id", t.ContentCacheID, "error", err)
		}
		t.svc.recorder().IncHeadersCache(t.engineName(), ok)
		if ok {
			t.Metas.MergeHeadStrings(entry.HeadStrings)
			t.Metas.Merge(entry.Metas)
			if entry.PageTitle != "" {
				tc.Assign("xoops_pagetitle", template.HTML(entry.PageTitle))
			}
			sc.ModuleHeader = entry.Header
		}
	}

	if sc.PageTitle != "" {
		tc.Assign("xoops_pagetitle", escaped(sc.PageTitle))
	}
	header := sc.ModuleHeader
	if header == "" {
		header = tc.StringVar("xoops_module_header")
	}

	if cacheable && opts.ContentTemplate == "" {
		entry := cache.Entry{
			HeadStrings: t.Metas.HeadStrings(),
			Metas:       t.Metas.Snapshot(),
			PageTitle:   tc.StringVar("xoops_pagetitle"),
			Header:      header,
		}
		if err := store.Write(ctx, t.ContentCacheID, entry, t.ContentCacheLifetime); err != nil {
			slog.Warn("headers cache write failed", "theme", t.FolderName, "cache_id", t.ContentCacheID, "error", err)
		}
	}

	// Site-wide metas are printed by dedicated template variables.
	for name, value := range t.Metas.Promote(StandardMetas...) {
		tc.Assign("xoops_meta_"+name, escaped(value))
	}

	tc.Assign("xoops_module_header", template.HTML(t.RenderMetas(ctx)+"\n"+header))

	if opts.CanvasTemplate != "" {
		t.CanvasTemplate = opts.CanvasTemplate
	}
	if opts.ContentTemplate != "" {
		t.ContentTemplate = opts.ContentTemplate
	}
	tc.AssignAll(t.TemplateVars)
	tc.AssignAll(opts.Vars)

	if t.ContentTemplate != "" {
		content, err := tc.Fetch(ctx, t.ContentTemplate, t.ContentCacheID)
		if err != nil {
			return false, fmt.Errorf("render content: %w", err)
		}
		t.Content = content
	}
	if t.output != nil {
		t.Content += t.output.String()
		t.output = nil
	}

	tc.Assign("xoops_contents", template.HTML(t.Content))

	tc.SetCaching(false, 0)
	if err := tc.Display(ctx, w, filepath.Join(t.Path, t.CanvasTemplate)); err != nil {
		return false, fmt.Errorf("render canvas: %w", err)
	}
	t.renderCount++

	t.svc.recorder().ObserveRender(t.FolderName, time.Since(start))
	return true, nil
}

func (t *Theme) engineName() string {
	if t.HeadersCacheEngine == "" {
		return cache.EngineDefault
	}
	return t.HeadersCacheEngine
}

func (t *Theme) headersStore() cache.Store {
	if t.svc.Headers == nil {
		return nil
	}
	return t.svc.Headers.Get(t.engineName())
}
