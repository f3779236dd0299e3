// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// cache.go provides an in-memory cache for compiled Go templates.
// This is the L1 cache: it avoids re-parsing template files on every
// request. Templates are keyed by their path and modification time, so
// editing a file automatically produces a cache miss.
package tpl

import (
	"html/template"
	"log/slog"
	"sync"
)

// cacheKey uniquely identifies a compiled template version.
type cacheKey struct {
	path    string
	version int64 // modification time in nanoseconds
}

// templateCache is a concurrency-safe in-memory cache of compiled templates.
type templateCache struct {
	mu      sync.RWMutex
	entries map[cacheKey]*template.Template
}

// newTemplateCache creates an empty template cache.
func newTemplateCache() *templateCache {
	return &templateCache{
		entries: make(map[cacheKey]*template.Template),
	}
}

// get retrieves a compiled template from cache. Returns nil on miss.
func (c *templateCache) get(path string, version int64) *template.Template {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.entries[cacheKey{path: path, version: version}]
}

// put stores a compiled template, replacing older versions of the same path.
func (c *templateCache) put(path string, version int64, tmpl *template.Template) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for k := range c.entries {
		if k.path == path {
			delete(c.entries, k)
		}
	}
	c.entries[cacheKey{path: path, version: version}] = tmpl
	slog.Debug("template cached", "path", path, "size", len(c.entries))
}

// invalidate removes all cached versions for a given path.
func (c *templateCache) invalidate(path string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for k := range c.entries {
		if k.path == path {
			delete(c.entries, k)
		}
	}
	slog.Debug("template cache invalidated", "path", path)
}

// invalidateAll clears the entire cache.
func (c *templateCache) invalidateAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[cacheKey]*template.Template)
	slog.Debug("template cache fully cleared")
}

func (c *templateCache) len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
