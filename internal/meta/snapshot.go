// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package meta

// Entry is a keyed item inside a snapshot category.
type Entry struct {
	Key  string `json:"key"`
	Item Item   `json:"item"`
}

// CategorySnapshot is the ordered content of one category.
type CategorySnapshot struct {
	Name    string  `json:"name"`
	Entries []Entry `json:"entries"`
}

// Snapshot is a serializable copy of the categorized items. It keeps
// category and entry order so a restored registry renders identically.
type Snapshot []CategorySnapshot

// Snapshot copies the categorized items of the registry.
func (r *Registry) Snapshot() Snapshot {
	snap := make(Snapshot, 0, len(r.order))
	for _, name := range r.order {
		e := r.categories[name]
		cs := CategorySnapshot{Name: name, Entries: make([]Entry, 0, len(e.keys))}
		for _, k := range e.keys {
			cs.Entries = append(cs.Entries, Entry{Key: k, Item: e.items[k]})
		}
		snap = append(snap, cs)
	}
	return snap
}

// Merge adds the snapshot to the registry. Keys already present are
// overwritten by the snapshot value in place; new keys are appended.
func (r *Registry) Merge(snap Snapshot) {
	for _, cs := range snap {
		e := r.category(cs.Name)
		for _, entry := range cs.Entries {
			e.set(entry.Key, entry.Item)
		}
	}
}

// MergeHeadStrings appends head strings that are not already present.
func (r *Registry) MergeHeadStrings(strs []string) {
	seen := make(map[string]struct{}, len(r.headStrings))
	for _, s := range r.headStrings {
		seen[s] = struct{}{}
	}
	for _, s := range strs {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		r.headStrings = append(r.headStrings, s)
	}
}
