// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package tpl provides the template engine used by themes. Templates are
// Go html/template files on disk. The Engine is shared and keeps compiled
// templates; a Context holds the variables of one request and optionally
// caches rendered output.
package tpl

import (
	"bytes"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"xotheme/internal/cache"
	"xotheme/internal/markdown"
)

// ModulePrefix introduces a module template name: "module:news/index.html"
// resolves to RootPath/modules/news/templates/index.html.
const ModulePrefix = "module:"

// Options configures an Engine.
type Options struct {
	RootPath string
	// Output caches rendered templates for contexts with caching on.
	// Nil disables output caching.
	Output cache.Store
	// Funcs are added to the built-in template functions.
	Funcs template.FuncMap
}

// Engine compiles and renders template files. It maintains an in-memory
// cache (L1) of compiled templates keyed by path and modification time,
// so repeated renders skip the template.Parse step.
type Engine struct {
	rootPath string
	output   cache.Store
	cache    *templateCache
	funcs    template.FuncMap

	mu       sync.Mutex
	onChange []func(path string)
}

// NewEngine creates a template engine with an empty L1 cache.
func NewEngine(opts Options) *Engine {
	e := &Engine{
		rootPath: opts.RootPath,
		output:   opts.Output,
		cache:    newTemplateCache(),
	}
	e.funcs = template.FuncMap{
		"safe": func(s string) template.HTML { return template.HTML(s) },
		"markdown": func(s string) template.HTML {
			out, err := markdown.ToHTML(s)
			if err != nil {
				return template.HTML(template.HTMLEscapeString(s))
			}
			return template.HTML(out)
		},
		"include": e.include,
	}
	for name, fn := range opts.Funcs {
		e.funcs[name] = fn
	}
	return e
}

// RootPath returns the site root templates are resolved against.
func (e *Engine) RootPath() string { return e.rootPath }

// Resolve maps a template name to a file path.
func (e *Engine) Resolve(name string) string {
	if rest, ok := strings.CutPrefix(name, ModulePrefix); ok {
		dir, file, found := strings.Cut(rest, "/")
		if !found {
			return filepath.Join(e.rootPath, "modules", dir, "templates")
		}
		return filepath.Join(e.rootPath, "modules", dir, "templates", filepath.FromSlash(file))
	}
	if filepath.IsAbs(name) {
		return filepath.Clean(name)
	}
	return filepath.Join(e.rootPath, filepath.FromSlash(name))
}

// Exists reports whether the named template file is present.
func (e *Engine) Exists(name string) bool {
	st, err := os.Stat(e.Resolve(name))
	return err == nil && !st.IsDir()
}

// Lookup returns the compiled template for name, parsing it on a miss.
func (e *Engine) Lookup(name string) (*template.Template, error) {
	path := e.Resolve(name)
	st, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("template %s: %w", name, err)
	}
	version := st.ModTime().UnixNano()

	if t := e.cache.get(path, version); t != nil {
		return t, nil
	}

	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read template %s: %w", name, err)
	}
	compiled, err := template.New(filepath.Base(path)).Funcs(e.funcs).Parse(string(src))
	if err != nil {
		return nil, fmt.Errorf("compile template %s: %w", name, err)
	}
	e.cache.put(path, version, compiled)
	return compiled, nil
}

// Invalidate drops the compiled template at path from the L1 cache and
// notifies change listeners.
func (e *Engine) Invalidate(path string) {
	e.cache.invalidate(path)
	e.mu.Lock()
	fns := append([]func(string){}, e.onChange...)
	e.mu.Unlock()
	for _, fn := range fns {
		fn(path)
	}
}

// InvalidateAll clears the L1 cache.
func (e *Engine) InvalidateAll() {
	e.cache.invalidateAll()
}

// OnChange registers fn to run whenever a template path is invalidated.
func (e *Engine) OnChange(fn func(path string)) {
	e.mu.Lock()
	e.onChange = append(e.onChange, fn)
	e.mu.Unlock()
}

// NewContext creates an empty per-request context.
func (e *Engine) NewContext() *Context {
	return &Context{engine: e, vars: make(map[string]any)}
}

// ValidateTemplate attempts to compile a template string and returns an
// error if the Go template syntax is invalid.
func (e *Engine) ValidateTemplate(src string) error {
	if _, err := template.New("validate").Funcs(e.funcs).Parse(src); err != nil {
		return fmt.Errorf("invalid template syntax: %w", err)
	}
	return nil
}

func (e *Engine) execute(name string, data any) ([]byte, error) {
	compiled, err := e.Lookup(name)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := compiled.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("execute template %s: %w", name, err)
	}
	return buf.Bytes(), nil
}

// include renders another template with data, for use as
// {{include "module:system/blocks.html" .}}.
func (e *Engine) include(name string, data any) (template.HTML, error) {
	out, err := e.execute(name, data)
	if err != nil {
		return "", err
	}
	return template.HTML(out), nil
}

func outputKey(path, cacheID string) string {
	return "tpl:" + path + ":" + cacheID
}

// cachedOutput is the value kept in the output store.
type cachedOutput struct {
	HTML    string    `json:"html"`
	Created time.Time `json:"created"`
}
