// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package assets combines CSS and JS source files into single published
// bundles. Sources are read from an ordered list of file systems; the first
// one holding a file wins. Bundles are named after a hash of their content,
// so a published URL never changes meaning.
package assets

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path"
	"strings"
	"sync"

	"github.com/cespare/xxhash/v2"

	"xotheme/internal/metrics"
)

// Asset kinds.
const (
	KindCSS = "css"
	KindJS  = "js"
)

// RefPrefix marks a named asset reference in a file list.
const RefPrefix = "@"

var (
	// ErrUnknownReference is returned for an @name that was never registered.
	ErrUnknownReference = errors.New("assets: unknown reference")
	// ErrInvalidReference is returned when registering an empty reference.
	ErrInvalidReference = errors.New("assets: invalid reference")
)

// Bundler turns a list of asset files into the URL of a combined bundle.
type Bundler interface {
	// URLToAssets bundles files of kind through the named filters and
	// returns the bundle URL. target is a sub path for the published file.
	// An empty result means there was nothing to bundle.
	URLToAssets(ctx context.Context, kind string, files, filters []string, target string) (string, error)
	// RegisterReference names a set of paths (globs allowed) so file lists
	// can include them as "@name".
	RegisterReference(name string, paths, filters []string) error
}

type reference struct {
	paths   []string
	filters []string
}

// Options configures a Manager.
type Options struct {
	// Sources are searched in order for each file.
	Sources []fs.FS
	// RootPath and SiteURL prefixes are stripped from file references so
	// physical paths and site URLs resolve against Sources.
	RootPath string
	SiteURL  string
	// Publisher stores built bundles.
	Publisher Publisher
	Recorder  metrics.Recorder
}

// Manager is the Bundler used by themes. It is safe for concurrent use and
// shared across requests.
type Manager struct {
	sources  []fs.FS
	rootPath string
	siteURL  string
	pub      Publisher
	rec      metrics.Recorder

	mu      sync.RWMutex
	refs    map[string]reference
	filters map[string]Filter
	built   map[string]string
}

// NewManager creates a Manager with the built-in filters registered.
func NewManager(opts Options) *Manager {
	rec := opts.Recorder
	if rec == nil {
		rec = metrics.NoopRecorder{}
	}
	m := &Manager{
		sources:  opts.Sources,
		rootPath: strings.TrimRight(opts.RootPath, "/"),
		siteURL:  strings.TrimRight(opts.SiteURL, "/"),
		pub:      opts.Publisher,
		rec:      rec,
		refs:     make(map[string]reference),
		filters:  make(map[string]Filter),
		built:    make(map[string]string),
	}
	for name, f := range builtinFilters {
		m.filters[name] = f
	}
	return m
}

// RegisterReference implements Bundler.
func (m *Manager) RegisterReference(name string, paths, filters []string) error {
	name = strings.TrimPrefix(name, RefPrefix)
	if name == "" || len(paths) == 0 {
		return fmt.Errorf("%w: %q", ErrInvalidReference, name)
	}
	m.mu.Lock()
	m.refs[name] = reference{
		paths:   append([]string(nil), paths...),
		filters: append([]string(nil), filters...),
	}
	m.mu.Unlock()
	return nil
}

// Reference returns the paths registered under name.
func (m *Manager) Reference(name string) ([]string, error) {
	m.mu.RLock()
	ref, ok := m.refs[strings.TrimPrefix(name, RefPrefix)]
	m.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownReference, name)
	}
	return append([]string(nil), ref.paths...), nil
}

// RegisterFilter adds or replaces a named filter.
func (m *Manager) RegisterFilter(name string, f Filter) {
	m.mu.Lock()
	m.filters[name] = f
	m.mu.Unlock()
}

// Reset drops every memoised bundle URL, forcing the next request for each
// bundle to re-read its sources.
func (m *Manager) Reset() {
	m.mu.Lock()
	m.built = make(map[string]string)
	m.mu.Unlock()
}

type sourceFile struct {
	path    string
	filters []string
}

// URLToAssets implements Bundler.
func (m *Manager) URLToAssets(ctx context.Context, kind string, files, filters []string, target string) (string, error) {
	if kind != KindCSS && kind != KindJS {
		return "", fmt.Errorf("assets: unsupported kind %q", kind)
	}
	if len(filters) == 0 {
		filters = []string{"default"}
	}

	srcs := m.resolve(files)
	if len(srcs) == 0 {
		return "", nil
	}

	memoKey := bundleKey(kind, target, filters, srcs)
	m.mu.RLock()
	url, ok := m.built[memoKey]
	m.mu.RUnlock()
	if ok {
		m.rec.IncBundle(kind, false)
		return url, nil
	}

	var buf bytes.Buffer
	for _, src := range srcs {
		data, err := m.read(src.path)
		if err != nil {
			slog.Warn("asset not readable, skipping", "file", src.path, "error", err)
			continue
		}
		for _, name := range src.filters {
			data = m.filter(name)(kind, data)
		}
		for _, name := range filters {
			data = m.filter(name)(kind, data)
		}
		buf.Write(bytes.TrimRight(data, "\n"))
		if kind == KindJS {
			buf.WriteString(";\n")
		} else {
			buf.WriteString("\n")
		}
	}
	if buf.Len() == 0 {
		return "", nil
	}

	if m.pub == nil {
		return "", fmt.Errorf("assets: no publisher configured")
	}
	name := path.Join(target, fmt.Sprintf("%016x.%s", xxhash.Sum64(buf.Bytes()), kind))
	url, err := m.pub.Publish(ctx, name, contentType(kind), buf.Bytes())
	if err != nil {
		return "", fmt.Errorf("assets publish %s: %w", name, err)
	}

	m.mu.Lock()
	m.built[memoKey] = url
	m.mu.Unlock()
	m.rec.IncBundle(kind, true)
	slog.Debug("asset bundle built", "kind", kind, "files", len(srcs), "url", url)
	return url, nil
}

// resolve expands references and globs into an ordered, duplicate free
// list of source paths relative to the sources.
func (m *Manager) resolve(files []string) []sourceFile {
	var out []sourceFile
	seen := make(map[string]bool)

	add := func(p string, filters []string) {
		for _, match := range m.expand(m.relative(p)) {
			if !seen[match] {
				seen[match] = true
				out = append(out, sourceFile{path: match, filters: filters})
			}
		}
	}

	for _, f := range files {
		if !strings.HasPrefix(f, RefPrefix) {
			add(f, nil)
			continue
		}
		m.mu.RLock()
		ref, ok := m.refs[strings.TrimPrefix(f, RefPrefix)]
		m.mu.RUnlock()
		if !ok {
			slog.Warn("skipping asset reference", "error", fmt.Errorf("%w: %s", ErrUnknownReference, f))
			continue
		}
		for _, p := range ref.paths {
			add(p, ref.filters)
		}
	}
	return out
}

// relative strips the site URL or root path so p is a slash separated
// path valid for fs.FS.
func (m *Manager) relative(p string) string {
	switch {
	case m.siteURL != "" && strings.HasPrefix(p, m.siteURL+"/"):
		p = p[len(m.siteURL)+1:]
	case m.rootPath != "" && strings.HasPrefix(p, m.rootPath+"/"):
		p = p[len(m.rootPath)+1:]
	}
	p = path.Clean(strings.TrimLeft(p, "/"))
	return p
}

// expand returns the matches of a glob pattern, or p itself.
func (m *Manager) expand(p string) []string {
	if !strings.ContainsAny(p, "*?[") {
		return []string{p}
	}
	for _, src := range m.sources {
		matches, err := fs.Glob(src, p)
		if err == nil && len(matches) > 0 {
			return matches
		}
	}
	slog.Warn("asset pattern matched nothing", "pattern", p)
	return nil
}

func (m *Manager) read(p string) ([]byte, error) {
	if !fs.ValidPath(p) {
		return nil, fmt.Errorf("invalid path %q", p)
	}
	var lastErr error = fs.ErrNotExist
	for _, src := range m.sources {
		data, err := fs.ReadFile(src, p)
		if err == nil {
			return data, nil
		}
		lastErr = err
	}
	return nil, lastErr
}

func (m *Manager) filter(name string) Filter {
	m.mu.RLock()
	f, ok := m.filters[name]
	m.mu.RUnlock()
	if !ok {
		slog.Warn("unknown asset filter, ignoring", "filter", name)
		return identity
	}
	return f
}

func bundleKey(kind, target string, filters []string, srcs []sourceFile) string {
	var b strings.Builder
	b.WriteString(kind)
	b.WriteByte('|')
	b.WriteString(target)
	b.WriteByte('|')
	b.WriteString(strings.Join(filters, ","))
	for _, s := range srcs {
		b.WriteByte('|')
		b.WriteString(s.path)
		b.WriteByte('#')
		b.WriteString(strings.Join(s.filters, ","))
	}
	return b.String()
}

func contentType(kind string) string {
	if kind == KindCSS {
		return "text/css; charset=utf-8"
	}
	return "application/javascript; charset=utf-8"
}
