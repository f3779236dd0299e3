// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package cache

import (
	"log/slog"
	"sort"
	"sync"
)

// Engine names understood by the registry.
const (
	EngineDefault = "default"
	EngineMemory  = "memory"
	EngineModel   = "model"
)

// Registry maps engine names to stores. A theme picks its headers cache
// engine by name; unknown names fall back to the default engine.
type Registry struct {
	mu     sync.RWMutex
	stores map[string]Store
}

// NewRegistry creates a registry whose default engine is def.
func NewRegistry(def Store) *Registry {
	r := &Registry{stores: make(map[string]Store)}
	if def != nil {
		r.stores[EngineDefault] = def
	}
	return r
}

// Register adds or replaces the store for name.
func (r *Registry) Register(name string, s Store) {
	r.mu.Lock()
	r.stores[name] = s
	r.mu.Unlock()
}

// Get returns the store for name, or the default store when name is not
// registered. It returns nil only if no default is configured either.
func (r *Registry) Get(name string) Store {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if s, ok := r.stores[name]; ok {
		return s
	}
	if name != "" && name != EngineDefault {
		slog.Warn("unknown cache engine, using default", "engine", name)
	}
	return r.stores[EngineDefault]
}

// Names returns the registered engine names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.stores))
	for name := range r.stores {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
