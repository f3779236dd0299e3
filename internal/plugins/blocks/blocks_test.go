// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package blocks

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"xotheme/internal/meta"
	"xotheme/internal/models"
	"xotheme/internal/site"
	"xotheme/internal/theme"
	"xotheme/internal/tpl"
)

type fakeSource struct {
	blocks []models.Block
	err    error
	asked  string
}

func (s *fakeSource) ListForModule(_ context.Context, dirname string) ([]models.Block, error) {
	s.asked = dirname
	return s.blocks, s.err
}

func newFactory(t *testing.T, src Source) *theme.Factory {
	t.Helper()
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "themes", "default"), 0o755); err != nil {
		t.Fatal(err)
	}
	reg := theme.NewPluginRegistry()
	Register(reg, src)
	return &theme.Factory{
		DefaultTheme: "default",
		RootPath:     root,
		ThemesPath:   root + "/themes",
		ThemesURL:    "http://example.test/themes",
		Defaults:     theme.Options{Plugins: []string{ID}},
		Services: theme.Services{
			Engine:  tpl.NewEngine(tpl.Options{RootPath: root}),
			Plugins: reg,
		},
	}
}

func TestBlocksBySideAndGroup(t *testing.T) {
	src := &fakeSource{blocks: []models.Block{
		{Name: "menu", Title: "Menu", Content: "<ul></ul>", ContentType: models.BlockContentHTML, Side: models.BlockSideLeft, Visible: true,
			Stylesheets: []string{"css/blocks.css"}},
		{Name: "welcome", Title: "Welcome", Content: "# Hi", ContentType: models.BlockContentMarkdown, Side: models.BlockSideCenter, Visible: true,
			Stylesheets: []string{"css/blocks.css"}, Scripts: []string{"js/welcome.js"}},
		{Name: "admin", Content: "secret", Side: models.BlockSideRight, Visible: true, Groups: []int{models.GroupAdmins}},
		{Name: "hidden", Content: "x", Side: models.BlockSideLeft, Visible: false},
		{Name: "other-module", Content: "x", Side: models.BlockSideLeft, Visible: true, Module: "forum"},
	}}

	f := newFactory(t, src)
	sc := &site.Context{Locale: "en", SiteURL: "http://example.test", Module: &models.Module{Dirname: "news", Name: "News"}}
	th, err := f.CreateInstance(context.Background(), sc, theme.Options{})
	if err != nil {
		t.Fatal(err)
	}
	if src.asked != "news" {
		t.Errorf("asked for module %q", src.asked)
	}

	xoBlocks, _ := th.Template.Var("xoBlocks").(map[string][]Rendered)
	if len(xoBlocks["left"]) != 1 || xoBlocks["left"][0].Name != "menu" {
		t.Errorf("left = %+v", xoBlocks["left"])
	}
	if len(xoBlocks["right"]) != 0 {
		t.Error("admin-only block shown to anonymous visitor")
	}
	if len(xoBlocks["center"]) != 1 || !strings.Contains(string(xoBlocks["center"][0].Content), "<h1") {
		t.Errorf("center = %+v", xoBlocks["center"])
	}
	if xoBlocks["footer"] == nil {
		t.Error("every side should be present")
	}
	if xoBlocks["left"][0].ID == xoBlocks["center"][0].ID {
		t.Error("block element ids must be unique")
	}
	if th.Template.Var("xoops_showlblock") != true || th.Template.Var("xoops_showrblock") != false {
		t.Error("side flags wrong")
	}

	styles := th.RenderMetasByType(meta.CategoryStylesheet)
	if strings.Count(styles, "css/blocks.css") != 1 {
		t.Errorf("shared stylesheet should be added once:\n%s", styles)
	}
	if !strings.Contains(th.RenderMetasByType(meta.CategoryScript), "js/welcome.js") {
		t.Error("block script missing")
	}
}

func TestBlocksForAdmin(t *testing.T) {
	src := &fakeSource{blocks: []models.Block{
		{Name: "admin", Content: "secret", Side: models.BlockSideRight, Visible: true, Groups: []int{models.GroupAdmins}},
	}}
	f := newFactory(t, src)
	sc := &site.Context{User: &models.User{Uname: "root", Groups: []int{models.GroupAdmins}}}
	th, err := f.CreateInstance(context.Background(), sc, theme.Options{})
	if err != nil {
		t.Fatal(err)
	}
	if src.asked != "system" {
		t.Errorf("pages outside a module should ask for system blocks, got %q", src.asked)
	}
	xoBlocks, _ := th.Template.Var("xoBlocks").(map[string][]Rendered)
	if len(xoBlocks["right"]) != 1 {
		t.Errorf("admin should see the admin block: %+v", xoBlocks)
	}
}

func TestBlocksSourceErrorIsNotFatal(t *testing.T) {
	f := newFactory(t, &fakeSource{err: errors.New("db down")})
	th, err := f.CreateInstance(context.Background(), &site.Context{}, theme.Options{})
	if err != nil {
		t.Fatalf("theme creation must survive plugin errors: %v", err)
	}
	if th.Template.Var("xoBlocks") != nil {
		t.Error("failed plugin should assign nothing")
	}
	if len(th.Plugins()) != 0 {
		t.Error("failed plugin should not be kept")
	}
}
