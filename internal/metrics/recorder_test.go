// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

func TestNoopRecorder(t *testing.T) {
	var r Recorder = NoopRecorder{}
	r.ObserveRender("default", time.Second)
	r.IncCacheCheck(CacheHit)
	r.IncHeadersCache("default", true)
	r.IncBundle("js", true)
	r.IncThemeSelected("default", "default")
}

func TestPrometheusRecorder(t *testing.T) {
	reg := prom.NewRegistry()
	pr := NewPrometheusRecorder(reg)
	pr.ObserveRender("default", 150*time.Millisecond)
	pr.IncCacheCheck(CacheMiss)
	pr.IncHeadersCache("memory", false)
	pr.IncBundle("css", false)
	pr.IncThemeSelected("default", "request")

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	if len(mfs) != 5 {
		t.Fatalf("expected 5 metric families, got %d", len(mfs))
	}
}

func TestPrometheusRecorderNilSafe(t *testing.T) {
	var pr *PrometheusRecorder
	pr.ObserveRender("default", time.Second)
	pr.IncCacheCheck(CacheSkipped)
}

func TestHTTPHandler(t *testing.T) {
	reg := prom.NewRegistry()
	NewPrometheusRecorder(reg).IncCacheCheck(CacheHit)

	rec := httptest.NewRecorder()
	HTTPHandler(reg).ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, _ := io.ReadAll(rec.Body)
	if !strings.Contains(string(body), `xotheme_content_cache_checks_total{outcome="hit"} 1`) {
		t.Errorf("metrics output missing cache check counter:\n%s", body)
	}
}
