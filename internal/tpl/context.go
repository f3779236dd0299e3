// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package tpl

import (
	"context"
	"fmt"
	"html/template"
	"io"
	"log/slog"
	"maps"
	"time"
)

// Context holds the template variables and caching mode of one request.
// It is not safe for concurrent use.
type Context struct {
	engine   *Engine
	vars     map[string]any
	caching  bool
	lifetime time.Duration
}

// Engine returns the engine the context renders with.
func (c *Context) Engine() *Engine { return c.engine }

// Assign sets a template variable.
func (c *Context) Assign(name string, value any) {
	c.vars[name] = value
}

// AssignAll sets every variable in vars.
func (c *Context) AssignAll(vars map[string]any) {
	maps.Copy(c.vars, vars)
}

// Var returns a variable, or nil when unset.
func (c *Context) Var(name string) any {
	return c.vars[name]
}

// StringVar returns a variable as a string, or "" when unset or not
// textual.
func (c *Context) StringVar(name string) string {
	switch v := c.vars[name].(type) {
	case string:
		return v
	case template.HTML:
		return string(v)
	case fmt.Stringer:
		return v.String()
	}
	return ""
}

// Vars returns a copy of all variables.
func (c *Context) Vars() map[string]any {
	return maps.Clone(c.vars)
}

// SetCaching turns output caching on or off. lifetime applies to writes.
func (c *Context) SetCaching(on bool, lifetime time.Duration) {
	c.caching = on
	c.lifetime = lifetime
}

// Caching reports the current caching mode.
func (c *Context) Caching() (bool, time.Duration) {
	return c.caching, c.lifetime
}

func (c *Context) cacheable(cacheID string) bool {
	return c.caching && cacheID != "" && c.engine.output != nil
}

// IsCached reports whether output for name and cacheID is in the cache.
// It is always false while caching is off.
func (c *Context) IsCached(ctx context.Context, name, cacheID string) bool {
	if !c.cacheable(cacheID) {
		return false
	}
	var out cachedOutput
	ok, err := c.engine.output.Read(ctx, outputKey(c.engine.Resolve(name), cacheID), &out)
	if err != nil {
		slog.Warn("template output cache read failed", "template", name, "error", err)
		return false
	}
	return ok
}

// Fetch renders name and returns the output. With caching on and a
// non-empty cacheID, cached output is returned when present and fresh
// output is stored.
func (c *Context) Fetch(ctx context.Context, name, cacheID string) (string, error) {
	key := outputKey(c.engine.Resolve(name), cacheID)
	if c.cacheable(cacheID) {
		var out cachedOutput
		ok, err := c.engine.output.Read(ctx, key, &out)
		if err != nil {
			slog.Warn("template output cache read failed", "template", name, "error", err)
		}
		if ok {
			return out.HTML, nil
		}
	}

	data, err := c.engine.execute(name, c.vars)
	if err != nil {
		return "", err
	}

	if c.cacheable(cacheID) {
		out := cachedOutput{HTML: string(data), Created: time.Now()}
		if err := c.engine.output.Write(ctx, key, out, c.lifetime); err != nil {
			slog.Warn("template output cache write failed", "template", name, "error", err)
		}
	}
	return string(data), nil
}

// Display renders name to w, bypassing the output cache.
func (c *Context) Display(_ context.Context, w io.Writer, name string) error {
	data, err := c.engine.execute(name, c.vars)
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("write template %s: %w", name, err)
	}
	return nil
}
