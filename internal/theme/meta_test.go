// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package theme

import (
	"context"
	"strings"
	"testing"

	"xotheme/internal/meta"
)

func TestResourcePath(t *testing.T) {
	env := newTestEnv(t)
	writeFile(t, env.root, "themes/default/modules/news/news.css", "x")
	writeFile(t, env.root, "custom/default/img/logo.png", "x")
	th := newTheme(t, env, "/", Options{})

	tests := []struct {
		name      string
		themesDir string
		path      string
		want      string
	}{
		{"theme override", "themes", "modules/news/news.css", "themes/default/modules/news/news.css"},
		{"leading slash", "themes", "/modules/news/news.css", "themes/default/modules/news/news.css"},
		{"no override", "themes", "modules/news/other.css", "modules/news/other.css"},
		{"custom themes dir first", "custom", "img/logo.png", "custom/default/img/logo.png"},
		{"custom dir falls back to themes", "custom", "modules/news/news.css", "themes/default/modules/news/news.css"},
		{"absolute url", "themes", "https://cdn.test/x.js", "https://cdn.test/x.js"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			th.ThemesDir = tt.themesDir
			if got := th.ResourcePath(tt.path); got != tt.want {
				t.Errorf("ResourcePath(%q) = %q, want %q", tt.path, got, tt.want)
			}
		})
	}
}

func TestAddScriptAndStylesheet(t *testing.T) {
	env := newTestEnv(t)
	th := newTheme(t, env, "/", Options{})

	th.AddScript("js/a.js", meta.Attrs("defer", "defer"), "")
	th.AddScript("js/a.js", nil, "")
	th.AddScript("", meta.Attrs("type", "module"), "run()")
	th.AddStylesheet("", nil, "p{margin:0}")
	th.AddStylesheet("css/x.css", meta.Attrs("media", "print"), "")

	scripts := th.RenderMetasByType(meta.CategoryScript)
	if strings.Count(scripts, "js/a.js") != 1 {
		t.Errorf("script added twice:\n%s", scripts)
	}
	if strings.Contains(scripts, "defer") {
		t.Error("second AddScript should overwrite the first")
	}
	if !strings.Contains(scripts, "<script type=\"module\">\n//<![CDATA[\nrun()\n//]]></script>") {
		t.Errorf("inline script:\n%s", scripts)
	}

	styles := th.RenderMetasByType(meta.CategoryStylesheet)
	if !strings.Contains(styles, "<style type=\"text/css\">\n/* <![CDATA[ */\np{margin:0}\n/* //]]> */\n</style>\n") {
		t.Errorf("inline style:\n%s", styles)
	}
	want := `<link rel="stylesheet" media="print" href="` + testSiteURL + `/css/x.css" type="text/css" />`
	if !strings.Contains(styles, want) {
		t.Errorf("stylesheet link:\n%s\nwant %s", styles, want)
	}
}

func TestAddLinkAndHTTPMeta(t *testing.T) {
	env := newTestEnv(t)
	th := newTheme(t, env, "/", Options{})

	th.AddLink("alternate", "/rss", meta.Attrs("type", "application/rss+xml"))
	th.AddLink("alternate", "/rss", meta.Attrs("type", "application/rss+xml"))
	th.AddLink("icon", "/favicon.ico", nil)
	links := th.RenderMetasByType(meta.CategoryLink)
	if strings.Count(links, `<link rel="alternate"`) != 1 || !strings.Contains(links, `<link rel="icon" href="/favicon.ico" />`) {
		t.Errorf("links:\n%s", links)
	}

	th.AddHTTPMeta("X-UA-Compatible", "IE=edge")
	if got := th.RenderMetasByType(meta.CategoryHTTP); got != `<meta http-equiv="X-UA-Compatible" content="IE=edge" />`+"\n" {
		t.Errorf("http meta = %q", got)
	}
	th.RemoveHTTPMeta("X-UA-Compatible")
	if th.RenderMetasByType(meta.CategoryHTTP) != "" {
		t.Error("http meta not removed")
	}
}

func TestAssetHelpers(t *testing.T) {
	env := newTestEnv(t)
	th := newTheme(t, env, "/", Options{})
	ctx := context.Background()

	if err := th.SetNamedAsset("newscss", []string{"modules/news/css/*.css"}, nil); err != nil {
		t.Fatal(err)
	}
	if len(env.bundler.refs["newscss"]) != 1 {
		t.Error("reference not registered")
	}

	th.AddBaseStylesheetAssets("@newscss")
	th.AddBaseAssets("css", "themes/default/style.css")
	th.AddBaseAssets("swf", "ignored.swf")
	if strings.Join(th.BaseAssets.CSS, ",") != "@newscss,themes/default/style.css" {
		t.Errorf("base css = %v", th.BaseAssets.CSS)
	}

	if err := th.AddScriptAssets(ctx, []string{"a.js", "b.js"}, []string{"trim"}, "news"); err != nil {
		t.Fatal(err)
	}
	if err := th.AddStylesheetAssets(ctx, nil, nil, ""); err != nil {
		t.Fatal(err)
	}
	if _, ok := th.Metas.Get(meta.CategoryScript, testSiteURL+"/assets/bundle.js"); !ok {
		t.Error("bundled script not registered")
	}
	if th.Metas.Len(meta.CategoryStylesheet) != 0 {
		t.Error("empty bundle must not add a stylesheet")
	}

	head := th.RenderMetas(ctx)
	if !strings.HasPrefix(head, `<script src="`+testSiteURL+`/assets/bundle.js" type="text/javascript"></script>`+"\n"+
		`<link rel="stylesheet" href="`+testSiteURL+`/assets/bundle.css" type="text/css" />`) {
		t.Errorf("base bundles should come first:\n%s", head)
	}
}

func TestElementID(t *testing.T) {
	env := newTestEnv(t)
	th := newTheme(t, env, "/", Options{})
	got := []string{th.ElementID("div"), th.ElementID("div"), th.ElementID(""), th.ElementID("Main Menu"), th.ElementID("main menu"), th.ElementID("!!")}
	want := []string{"div-1", "div-2", "xos-1", "main-menu-1", "main-menu-2", "xos-2"}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("ElementID #%d = %q, want %q", i, got[i], want[i])
		}
	}
	if other := newTheme(t, env, "/", Options{}); other.ElementID("div") != "div-1" {
		t.Error("element ids are per page")
	}
}
