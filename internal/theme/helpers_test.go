// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package theme

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"xotheme/internal/cache"
	"xotheme/internal/cacheid"
	"xotheme/internal/models"
	"xotheme/internal/site"
	"xotheme/internal/tpl"
)

const testSiteURL = "http://example.test"

// fakeBundler records bundle requests and returns predictable URLs.
type fakeBundler struct {
	calls map[string][][]string
	refs  map[string][]string
}

func newFakeBundler() *fakeBundler {
	return &fakeBundler{calls: make(map[string][][]string), refs: make(map[string][]string)}
}

func (b *fakeBundler) URLToAssets(_ context.Context, kind string, files, _ []string, _ string) (string, error) {
	b.calls[kind] = append(b.calls[kind], files)
	if len(files) == 0 {
		return "", nil
	}
	return testSiteURL + "/assets/bundle." + kind, nil
}

func (b *fakeBundler) RegisterReference(name string, paths, _ []string) error {
	if name == "" {
		return errors.New("empty name")
	}
	b.refs[name] = paths
	return nil
}

// memSession is an in-memory site.Session.
type memSession struct {
	theme      string
	remembered []string
}

func (s *memSession) ThemeSelection() string { return s.theme }

func (s *memSession) RememberTheme(_ context.Context, name string) error {
	s.theme = name
	s.remembered = append(s.remembered, name)
	return nil
}

type fakeAvatars struct {
	url string
	err error
}

func (a fakeAvatars) URL(context.Context, *models.User) (string, error) { return a.url, a.err }

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

// newTestSite lays out a site root with a public theme, an admin theme and
// a news module.
func newTestSite(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	canvas := `<title>{{.xoops_pagetitle}}</title>[{{.xoops_meta_description}}]{{.xoops_module_header}}<main>{{.xoops_contents}}</main>`
	writeFile(t, root, "themes/default/theme.html", canvas)
	writeFile(t, root, "themes/default/style.css", "body{}")
	writeFile(t, root, "themes/zen/theme.html", "zen:{{.xoops_contents}}")
	writeFile(t, root, "modules/system/themes/admin/theme.html", "admin:{{.theme_url}}:{{.xoops_banner}}")
	writeFile(t, root, "modules/system/templates/system_dummy.html", "")
	writeFile(t, root, "modules/news/templates/index.html", "news {{.n}}")
	return root
}

type testEnv struct {
	root    string
	factory *Factory
	headers *cache.MemoryStore
	output  *cache.MemoryStore
	bundler *fakeBundler
	gen     *cacheid.Generator
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	root := newTestSite(t)
	headers := cache.NewMemoryStore()
	output := cache.NewMemoryStore()
	bundler := newFakeBundler()

	f := &Factory{
		DefaultTheme:       "default",
		AllowUserSelection: true,
		RootPath:           root,
		ThemesPath:         root + "/themes",
		ThemesURL:          testSiteURL + "/themes",
		Defaults: Options{
			ThemesDir:      "themes",
			CanvasTemplate: DefaultCanvasTemplate,
			RenderBanner:   Bool(true),
			Plugins:        []string{},
		},
		Services: Services{
			Engine:  tpl.NewEngine(tpl.Options{RootPath: root, Output: output}),
			Assets:  bundler,
			Headers: cache.NewRegistry(headers),
			Plugins: NewPluginRegistry(),
			OnLoad:  NewOnLoadRegistry(),
		},
	}
	return &testEnv{
		root:    root,
		factory: f,
		headers: headers,
		output:  output,
		bundler: bundler,
		gen:     cacheid.NewGenerator(true, "secret", "xotheme", "xotheme"),
	}
}

// newSite returns an anonymous GET request context.
func (e *testEnv) newSite(uri string) *site.Context {
	sc := &site.Context{
		Settings: models.SiteSettings{
			"sitename":         "A & B",
			"slogan":           "Just <b>news</b>",
			"footer":           `<p>Footer<script>alert(1)</script></p>`,
			"meta_description": "Site description",
			"meta_keywords":    "news,go",
		},
		Locale:     "en",
		Method:     "GET",
		RequestURI: uri,
		SiteURL:    testSiteURL,
		Session:    &memSession{},
	}
	sc.Keyer = e.gen.NewKeyer(sc.Identity())
	return sc
}
