// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package metrics

import (
	"net/http"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	renderDuration *prom.HistogramVec
	cacheChecks    *prom.CounterVec
	headersCache   *prom.CounterVec
	bundles        *prom.CounterVec
	themeSelected  *prom.CounterVec
}

// NewPrometheusRecorder constructs the collectors and registers them on reg.
// A nil reg gets a fresh registry.
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{
		renderDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: "xotheme",
			Name:      "render_duration_seconds",
			Help:      "Duration of full page renders by theme",
			Buckets:   prom.DefBuckets,
		}, []string{"theme"}),
		cacheChecks: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "xotheme",
			Name:      "content_cache_checks_total",
			Help:      "Content cache checks by outcome",
		}, []string{"outcome"}),
		headersCache: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "xotheme",
			Name:      "headers_cache_reads_total",
			Help:      "Headers cache reads by engine and result",
		}, []string{"engine", "result"}),
		bundles: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "xotheme",
			Name:      "asset_bundles_total",
			Help:      "Asset bundle requests by kind, built or served from memory",
		}, []string{"kind", "result"}),
		themeSelected: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "xotheme",
			Name:      "theme_selected_total",
			Help:      "Theme instances created by theme and selection source",
		}, []string{"theme", "source"}),
	}
	reg.MustRegister(pr.renderDuration, pr.cacheChecks, pr.headersCache, pr.bundles, pr.themeSelected)
	return pr
}

func (p *PrometheusRecorder) ObserveRender(theme string, d time.Duration) {
	if p == nil {
		return
	}
	p.renderDuration.WithLabelValues(theme).Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncCacheCheck(outcome CacheOutcome) {
	if p == nil {
		return
	}
	p.cacheChecks.WithLabelValues(string(outcome)).Inc()
}

func (p *PrometheusRecorder) IncHeadersCache(engine string, hit bool) {
	if p == nil {
		return
	}
	res := "miss"
	if hit {
		res = "hit"
	}
	p.headersCache.WithLabelValues(engine, res).Inc()
}

func (p *PrometheusRecorder) IncBundle(kind string, built bool) {
	if p == nil {
		return
	}
	res := "memo"
	if built {
		res = "built"
	}
	p.bundles.WithLabelValues(kind, res).Inc()
}

func (p *PrometheusRecorder) IncThemeSelected(theme, source string) {
	if p == nil {
		return
	}
	p.themeSelected.WithLabelValues(theme, source).Inc()
}

// HTTPHandler returns an http.Handler that serves Prometheus metrics for the provided registry.
func HTTPHandler(reg *prom.Registry) http.Handler {
	if reg == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{EnableOpenMetrics: true})
}
