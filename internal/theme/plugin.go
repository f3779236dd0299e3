// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package theme

import (
	"context"
	"log/slog"
	"sort"
	"sync"
)

// Plugin contributes to a page when its theme initializes, typically by
// assigning template variables and registering assets.
type Plugin interface {
	Init(ctx context.Context, t *Theme) error
}

// PluginFunc adapts a function to Plugin.
type PluginFunc func(ctx context.Context, t *Theme) error

// Init implements Plugin.
func (f PluginFunc) Init(ctx context.Context, t *Theme) error { return f(ctx, t) }

// PluginRegistry maps plugin identifiers to constructors. It is shared by
// all requests and safe for concurrent use.
type PluginRegistry struct {
	mu        sync.RWMutex
	factories map[string]func() Plugin
}

// NewPluginRegistry creates an empty registry.
func NewPluginRegistry() *PluginRegistry {
	return &PluginRegistry{factories: make(map[string]func() Plugin)}
}

// Register adds or replaces the constructor for id.
func (r *PluginRegistry) Register(id string, factory func() Plugin) {
	r.mu.Lock()
	r.factories[id] = factory
	r.mu.Unlock()
}

// New instantiates the plugin registered as id.
func (r *PluginRegistry) New(id string) (Plugin, bool) {
	if r == nil {
		return nil, false
	}
	r.mu.RLock()
	factory, ok := r.factories[id]
	r.mu.RUnlock()
	if !ok {
		return nil, false
	}
	return factory(), true
}

// IDs returns the registered identifiers, sorted.
func (r *PluginRegistry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.factories))
	for id := range r.factories {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// loadPlugins instantiates each configured plugin once, in order, and runs
// its Init. Unknown identifiers and failing plugins are logged and skipped.
func (t *Theme) loadPlugins(ctx context.Context) {
	seen := make(map[string]bool, len(t.PluginIDs))
	for _, id := range t.PluginIDs {
		if seen[id] {
			continue
		}
		seen[id] = true

		p, ok := t.svc.Plugins.New(id)
		if !ok {
			slog.Warn("unknown theme plugin, skipping", "theme", t.FolderName, "plugin", id)
			continue
		}
		if err := p.Init(ctx, t); err != nil {
			slog.Warn("theme plugin init failed", "theme", t.FolderName, "plugin", id, "error", err)
			continue
		}
		t.plugins = append(t.plugins, p)
	}
}

// Plugins returns the plugins initialized for this theme.
func (t *Theme) Plugins() []Plugin {
	out := make([]Plugin, len(t.plugins))
	copy(out, t.plugins)
	return out
}
