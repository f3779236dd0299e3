// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// handler_test.go provides shared test infrastructure for handler tests.
// Pages are rendered through a real theme factory over a temporary site
// tree. Tests needing sessions are skipped when Valkey is unavailable.
package handlers

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"

	"xotheme/internal/cache"
	"xotheme/internal/cacheid"
	"xotheme/internal/middleware"
	"xotheme/internal/models"
	"xotheme/internal/session"
	"xotheme/internal/site"
	"xotheme/internal/theme"
	"xotheme/internal/tpl"
)

const testSiteURL = "http://example.test"

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// testValkeyClient returns a Redis client for handler tests on DB 15.
func testValkeyClient(t *testing.T) *redis.Client {
	t.Helper()

	client := redis.NewClient(&redis.Options{
		Addr:     envOr("VALKEY_HOST", "localhost") + ":" + envOr("VALKEY_PORT", "6379"),
		Password: os.Getenv("VALKEY_PASSWORD"),
		DB:       15,
	})

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		t.Skipf("skipping: Valkey not reachable: %v", err)
	}

	t.Cleanup(func() {
		keys, _ := client.Keys(ctx, "session:*").Result()
		if len(keys) > 0 {
			client.Del(ctx, keys...)
		}
		client.Close()
	})
	return client
}

func writeFile(t *testing.T, root, path, body string) {
	t.Helper()
	full := filepath.Join(root, filepath.FromSlash(path))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(full, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
}

// stubModules is an in-memory ModuleFinder.
type stubModules map[string]*models.Module

func (m stubModules) FindByDirname(dirname string) (*models.Module, error) {
	return m[dirname], nil
}

// countingFlusher records Flush calls.
type countingFlusher struct {
	n     int
	calls int
}

func (c *countingFlusher) Flush(context.Context) (int, error) {
	c.calls++
	return c.n, nil
}

type testEnv struct {
	root    string
	engine  *tpl.Engine
	public  *theme.Factory
	admin   *theme.AdminFactory
	modules stubModules
	gen     *cacheid.Generator
	headers *cache.MemoryStore
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	root := t.TempDir()
	writeFile(t, root, "themes/default/theme.html", `<title>{{.xoops_pagetitle}}</title><main>{{.xoops_contents}}</main>`)
	writeFile(t, root, "themes/zen/theme.html", `zen:{{.xoops_contents}}`)
	writeFile(t, root, "modules/system/themes/default/theme.html", `admin:{{.xoops_contents}}`)
	writeFile(t, root, "modules/system/templates/system_dummy.html", ``)
	writeFile(t, root, "modules/system/templates/system_homepage.html", `home {{.xoops_sitename}}`)
	writeFile(t, root, "modules/system/templates/system_notfound.html", `missing`)
	writeFile(t, root, "modules/system/templates/system_userform.html", `form:{{.login_error}}:{{.login_redirect}}:{{.csrf_field}}`)
	writeFile(t, root, "modules/system/templates/system_admin.html", `engines:{{range .cache_engines}}{{.}},{{end}}flushed={{.flushed}}`)
	writeFile(t, root, "modules/news/templates/index.html", `news {{.xoops_page}} {{.xoops_dirname}}`)
	writeFile(t, root, "modules/news/templates/archive.html", `archive`)

	headers := cache.NewMemoryStore()
	engine := tpl.NewEngine(tpl.Options{RootPath: root, Output: cache.NewMemoryStore()})
	public := &theme.Factory{
		DefaultTheme:       "default",
		AllowUserSelection: true,
		RootPath:           root,
		ThemesPath:         root + "/themes",
		ThemesURL:          testSiteURL + "/themes",
		Defaults: theme.Options{
			ThemesDir:      "themes",
			CanvasTemplate: theme.DefaultCanvasTemplate,
			Plugins:        []string{},
		},
		Services: theme.Services{
			Engine:  engine,
			Headers: cache.NewRegistry(headers),
		},
	}
	return &testEnv{
		root:   root,
		engine: engine,
		public: public,
		admin: &theme.AdminFactory{
			Factory:         public,
			AdminThemesPath: root + "/modules/system/themes",
			AdminThemesURL:  testSiteURL + "/modules/system/themes",
		},
		modules: stubModules{
			"news":   {ID: 2, Dirname: "news", Name: "News", IsActive: true},
			"legacy": {ID: 3, Dirname: "legacy", Name: "Legacy", IsActive: false},
		},
		gen:     cacheid.NewGenerator(true, "pw", "db", "user"),
		headers: headers,
	}
}

// newSite returns an anonymous site context for a request.
func (e *testEnv) newSite(r *http.Request) *site.Context {
	sc := &site.Context{
		Settings:    models.SiteSettings{"sitename": "Demo"},
		Locale:      "en",
		Method:      r.Method,
		RequestURI:  r.URL.RequestURI(),
		SiteURL:     testSiteURL,
		ThemeSelect: r.URL.Query().Get(middleware.ThemeSelectParam),
	}
	sc.Keyer = e.gen.NewKeyer(sc.Identity())
	return sc
}

// withSite stores sc in the request context.
func withSite(r *http.Request, sc *site.Context) *http.Request {
	return r.WithContext(site.WithContext(r.Context(), sc))
}

// withChiURLParams adds chi URL parameters to a request.
func withChiURLParams(r *http.Request, kv ...string) *http.Request {
	rctx := chi.NewRouteContext()
	for i := 0; i+1 < len(kv); i += 2 {
		rctx.URLParams.Add(kv[i], kv[i+1])
	}
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// ctxWithSession adds session data to a context using the middleware key.
func ctxWithSession(ctx context.Context, data *session.Data) context.Context {
	return context.WithValue(ctx, middleware.SessionKey, data)
}
