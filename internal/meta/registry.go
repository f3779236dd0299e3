// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package meta holds the head-injectable items of a page (scripts,
// stylesheets, links, http-equiv and generic meta tags) and renders them to
// markup. Items are grouped by category and keyed by name, so adding the
// same name twice overwrites the earlier value instead of duplicating it.
package meta

import (
	"encoding/json"
	"strconv"

	"github.com/cespare/xxhash/v2"
)

// Well-known categories. Any other category name renders as generic
// name/content meta tags.
const (
	CategoryMeta       = "meta"
	CategoryLink       = "link"
	CategoryScript     = "script"
	CategoryStylesheet = "stylesheet"
	CategoryHTTP       = "http"
)

// Item is a single registry entry. Meta and http categories only use Value;
// script, link and stylesheet entries use Attrs and an optional inline Body.
type Item struct {
	Value string     `json:"value,omitempty"`
	Attrs Attributes `json:"attrs,omitempty"`
	Body  string     `json:"body,omitempty"`
}

// entries is an insertion-ordered map of key to item. Overwriting a key
// keeps its original position.
type entries struct {
	keys  []string
	items map[string]Item
}

func newEntries() *entries {
	return &entries{items: make(map[string]Item)}
}

func (e *entries) set(key string, item Item) {
	if _, ok := e.items[key]; !ok {
		e.keys = append(e.keys, key)
	}
	e.items[key] = item
}

func (e *entries) get(key string) (Item, bool) {
	item, ok := e.items[key]
	return item, ok
}

func (e *entries) remove(key string) {
	if _, ok := e.items[key]; !ok {
		return
	}
	delete(e.items, key)
	for i, k := range e.keys {
		if k == key {
			e.keys = append(e.keys[:i], e.keys[i+1:]...)
			break
		}
	}
}

// Registry is the per-page meta registry. It is not safe for concurrent use;
// each rendered page owns its own registry.
type Registry struct {
	order       []string
	categories  map[string]*entries
	headStrings []string
}

// NewRegistry returns a registry with the meta, link and script categories
// already present, so they render in that order.
func NewRegistry() *Registry {
	r := &Registry{categories: make(map[string]*entries)}
	for _, c := range []string{CategoryMeta, CategoryLink, CategoryScript} {
		r.category(c)
	}
	return r
}

// category returns the entries for name, creating the category on first use.
func (r *Registry) category(name string) *entries {
	if e, ok := r.categories[name]; ok {
		return e
	}
	e := newEntries()
	r.categories[name] = e
	r.order = append(r.order, name)
	return e
}

// Categories returns category names in render order.
func (r *Registry) Categories() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Add stores item under name in category. An empty name keys the item by a
// hash of its content, so identical anonymous items collapse into one while
// distinct anonymous snippets are all kept.
func (r *Registry) Add(category, name string, item Item) string {
	key := name
	if key == "" {
		key = HashKey(item)
	}
	r.category(category).set(key, item)
	return key
}

// AddMeta stores a plain value (the common case for meta and http tags)
// and returns it.
func (r *Registry) AddMeta(category, name, value string) string {
	r.Add(category, name, Item{Value: value})
	return value
}

// Get returns the item stored under name in category.
func (r *Registry) Get(category, name string) (Item, bool) {
	e, ok := r.categories[category]
	if !ok {
		return Item{}, false
	}
	return e.get(name)
}

// Remove deletes name from category. Missing entries are ignored.
func (r *Registry) Remove(category, name string) {
	if e, ok := r.categories[category]; ok {
		e.remove(name)
	}
}

// Len returns the number of items in category.
func (r *Registry) Len(category string) int {
	if e, ok := r.categories[category]; ok {
		return len(e.keys)
	}
	return 0
}

// Each calls fn for every item of category in order.
func (r *Registry) Each(category string, fn func(key string, item Item)) {
	e, ok := r.categories[category]
	if !ok {
		return
	}
	for _, k := range e.keys {
		fn(k, e.items[k])
	}
}

// AddHeadString appends a raw string that is emitted verbatim after all
// categorized items.
func (r *Registry) AddHeadString(s string) {
	r.headStrings = append(r.headStrings, s)
}

// HeadStrings returns the raw head strings in insertion order.
func (r *Registry) HeadStrings() []string {
	out := make([]string, len(r.headStrings))
	copy(out, r.headStrings)
	return out
}

// Promote removes the given names from the meta category and returns the
// values that were present.
func (r *Registry) Promote(names ...string) map[string]string {
	out := make(map[string]string)
	e, ok := r.categories[CategoryMeta]
	if !ok {
		return out
	}
	for _, name := range names {
		if item, ok := e.get(name); ok {
			out[name] = item.Value
			e.remove(name)
		}
	}
	return out
}

// HashKey derives the key used for unnamed items.
func HashKey(item Item) string {
	data, err := json.Marshal(item)
	if err != nil {
		data = []byte(item.Value + item.Body)
	}
	return strconv.FormatUint(xxhash.Sum64(data), 16)
}
