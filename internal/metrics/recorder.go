// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package metrics defines the observability hooks of the rendering layer and
// a Prometheus implementation of them.
package metrics

import "time"

// CacheOutcome labels a content cache check.
type CacheOutcome string

const (
	CacheHit     CacheOutcome = "hit"
	CacheMiss    CacheOutcome = "miss"
	CacheSkipped CacheOutcome = "skipped"
)

// Recorder receives theme rendering events. Implementations must be safe
// for concurrent use.
type Recorder interface {
	ObserveRender(theme string, d time.Duration)
	IncCacheCheck(outcome CacheOutcome)
	IncHeadersCache(engine string, hit bool)
	IncBundle(kind string, built bool)
	IncThemeSelected(theme, source string)
}

// NoopRecorder is a Recorder that does nothing (default when metrics not configured).
type NoopRecorder struct{}

func (NoopRecorder) ObserveRender(string, time.Duration) {}
func (NoopRecorder) IncCacheCheck(CacheOutcome)          {}
func (NoopRecorder) IncHeadersCache(string, bool)        {}
func (NoopRecorder) IncBundle(string, bool)              {}
func (NoopRecorder) IncThemeSelected(string, string)     {}
