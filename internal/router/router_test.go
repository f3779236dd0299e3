// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package router tests verify the HTTP routing configuration, middleware
// chains, and the health endpoint.
package router

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"

	"xotheme/internal/handlers"
	"xotheme/internal/middleware"
	"xotheme/internal/models"
	"xotheme/internal/session"
	"xotheme/internal/theme"
	"xotheme/internal/tpl"
)

type stubModules map[string]*models.Module

func (m stubModules) FindByDirname(d string) (*models.Module, error) { return m[d], nil }

type noUsers struct{}

func (noUsers) FindByUname(string) (*models.User, error) { return nil, nil }
func (noUsers) CheckPassword(*models.User, string) bool  { return false }

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	root := t.TempDir()
	files := map[string]string{
		"themes/default/theme.html":                     `<main>{{.xoops_contents}}</main>`,
		"modules/system/templates/system_homepage.html": `home`,
		"modules/system/templates/system_notfound.html": `missing`,
		"modules/system/templates/system_userform.html": `login form`,
		"modules/news/templates/index.html":             `news`,
	}
	for name, body := range files {
		full := filepath.Join(root, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(full, []byte(body), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	engine := tpl.NewEngine(tpl.Options{RootPath: root})
	factory := &theme.Factory{
		DefaultTheme: "default",
		RootPath:     root,
		ThemesPath:   root + "/themes",
		ThemesURL:    "http://example.test/themes",
		Defaults:     theme.Options{Plugins: []string{}},
		Services:     theme.Services{Engine: engine},
	}
	sessions := session.NewStore(nil, "", false)

	return New(Deps{
		Sessions: sessions,
		Site:     middleware.SiteConfig{SiteURL: "http://example.test"},
		Pages:    handlers.NewPages(factory, stubModules{"news": {Dirname: "news", Name: "News", IsActive: true}}, engine),
		Auth:     handlers.NewAuth(factory, sessions, noUsers{}),
		Admin:    handlers.NewAdmin(factory, engine, nil),
		Metrics: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("# metrics"))
		}),
		Static: map[string]http.Handler{
			"/static/": http.FileServerFS(fstest.MapFS{"include/xoops.js": {Data: []byte("// xoops")}}),
		},
	})
}

func TestHealthHandler(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest("GET", "/health", nil)

	healthHandler(w, r)

	resp := w.Result()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status: got %d, want 200", resp.StatusCode)
	}

	ct := resp.Header.Get("Content-Type")
	if ct != "application/json" {
		t.Errorf("content-type: got %q, want %q", ct, "application/json")
	}

	var body map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("status field: got %q, want %q", body["status"], "ok")
	}
}

func TestRoutes(t *testing.T) {
	h := newTestRouter(t)

	tests := []struct {
		name     string
		method   string
		path     string
		wantCode int
		wantBody string
		wantLoc  string
	}{
		{"health", "GET", "/health", http.StatusOK, `"ok"`, ""},
		{"metrics", "GET", "/metrics", http.StatusOK, "# metrics", ""},
		{"static", "GET", "/static/include/xoops.js", http.StatusOK, "// xoops", ""},
		{"homepage", "GET", "/", http.StatusOK, "<main>home</main>", ""},
		{"module index", "GET", "/modules/news", http.StatusOK, "<main>news</main>", ""},
		{"module page", "GET", "/modules/news/index", http.StatusOK, "<main>news</main>", ""},
		{"themed 404", "GET", "/nowhere", http.StatusNotFound, "<main>missing</main>", ""},
		{"login form", "GET", "/user/login", http.StatusOK, "login form", ""},
		{"admin needs login", "GET", "/admin/", http.StatusSeeOther, "", middleware.LoginPath},
		{"post without csrf", "POST", "/user/login", http.StatusForbidden, "CSRF", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, httptest.NewRequest(tt.method, tt.path, nil))

			if rr.Code != tt.wantCode {
				t.Errorf("status: got %d, want %d", rr.Code, tt.wantCode)
			}
			if !strings.Contains(rr.Body.String(), tt.wantBody) {
				t.Errorf("body %q does not contain %q", rr.Body.String(), tt.wantBody)
			}
			if tt.wantLoc != "" && rr.Header().Get("Location") != tt.wantLoc {
				t.Errorf("Location: got %q, want %q", rr.Header().Get("Location"), tt.wantLoc)
			}
		})
	}
}

func TestUserRoutesAreNotCached(t *testing.T) {
	h := newTestRouter(t)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest("GET", "/user/login", nil))

	if got := rr.Header().Get("Cache-Control"); got != "no-store, private" {
		t.Errorf("Cache-Control: got %q", got)
	}
}

