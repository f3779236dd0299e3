// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package theme

import (
	"bytes"
	"context"
	"errors"
	"html"
	"html/template"
	"log/slog"
	"path/filepath"

	"github.com/microcosm-cc/bluemonday"

	"xotheme/internal/meta"
	"xotheme/internal/models"
)

// StandardMetas are the meta tags filled from site settings at init and
// exposed to templates as xoops_meta_<name> at render.
var StandardMetas = []string{"description", "keywords", "robots", "rating", "author", "copyright"}

// footerPolicy sanitizes the site footer setting. bluemonday policies are
// safe for concurrent use once built.
var footerPolicy = bluemonday.UGCPolicy()

// escaped returns s HTML-escaped and marked safe, so templates print it
// exactly once escaped.
func escaped(s string) template.HTML {
	return template.HTML(html.EscapeString(s))
}

// init prepares the template context: paths, core and user variables,
// standard metas, base assets, output buffer, on-load customization and
// plugins, in that order.
func (t *Theme) init(ctx context.Context, themesPath, themesURL string) error {
	if t.svc.Engine == nil {
		return errors.New("no template engine")
	}
	sc := t.site

	if t.Path == "" {
		t.Path = themesPath + "/" + t.FolderName
	}
	if t.URL == "" {
		t.URL = themesURL + "/" + t.FolderName
	}

	t.Template = t.svc.Engine.NewContext()
	t.Metas = meta.NewRegistry()
	t.Template.Assign("xoTheme", t)

	themeSet := sc.ThemeSet
	if themeSet == "" {
		themeSet = t.FolderName
	}
	themeCSS := ""
	if fileExists(filepath.Join(themesPath, themeSet, "style.css")) {
		themeCSS = themesURL + "/" + themeSet + "/style.css"
	}
	banner := template.HTML("&nbsp;")
	if t.RenderBanner {
		banner = template.HTML(sc.Banner)
	}
	slogan := sc.Setting(models.SettingSlogan, "")
	pageTitle := escaped(slogan)
	dirname := "system"
	if sc.Module != nil {
		pageTitle = escaped(sc.Module.Name)
		dirname = sc.Module.Dirname
	}
	t.Template.AssignAll(map[string]any{
		"xoops_theme":      themeSet,
		"xoops_imageurl":   themesURL + "/" + themeSet + "/",
		"xoops_themecss":   themeCSS,
		"xoops_requesturi": escaped(sc.RequestURI),
		"xoops_sitename":   escaped(sc.Setting(models.SettingSiteName, "")),
		"xoops_slogan":     escaped(slogan),
		"xoops_dirname":    dirname,
		"xoops_banner":     banner,
		"xoops_pagetitle":  pageTitle,
	})

	t.assignPathVars()
	t.assignUser(ctx)

	for _, name := range StandardMetas {
		t.AddMeta(meta.CategoryMeta, name, sc.Setting("meta_"+name, ""))
	}

	t.Template.AssignAll(map[string]any{
		"xoops_title":        sc.Setting("title", sc.Setting(models.SettingSiteName, "")),
		"xoops_slogan":       slogan,
		"xoops_locale":       sc.Locale,
		"xoops_footer":       template.HTML(footerPolicy.Sanitize(sc.Setting(models.SettingFooter, ""))),
		"xoops_jquery_theme": sc.Setting(models.SettingJQueryTheme, ""),
		"xoops_startpage":    sc.Setting(models.SettingStartPage, ""),
	})

	css, js := t.LocalizationAssets()
	t.AddBaseStylesheetAssets(css...)
	t.AddBaseScriptAssets("include/xoops.js", "@jquery")
	t.AddBaseScriptAssets(js...)
	t.loadLocale()

	if t.BufferOutput {
		t.output = new(bytes.Buffer)
	}

	sc.SetTheme(t, t.Template)

	t.runOnLoad(ctx)
	t.loadPlugins(ctx)
	return nil
}

// assignPathVars exposes the theme folder layout to templates.
func (t *Theme) assignPathVars() {
	t.Template.AssignAll(map[string]any{
		"theme_path":  t.Path,
		"theme_tpl":   t.Path + "/xotpl",
		"theme_url":   t.URL,
		"theme_img":   t.URL + "/img",
		"theme_icons": t.URL + "/icons",
		"theme_css":   t.URL + "/css",
		"theme_js":    t.URL + "/js",
		"theme_lang":  t.URL + "/language",
	})
}

// assignUser sets the visitor variables. A failing avatar lookup leaves
// the avatar empty.
func (t *Theme) assignUser(ctx context.Context) {
	sc := t.site
	if sc.User == nil {
		t.Template.AssignAll(map[string]any{
			"xoops_isuser":     false,
			"xoops_isadmin":    false,
			"xoops_usergroups": []int{models.GroupAnonymous},
		})
		return
	}

	u := sc.User
	avatarURL := ""
	if t.svc.Avatars != nil {
		url, err := t.svc.Avatars.URL(ctx, u)
		if err != nil {
			slog.Warn("avatar lookup failed", "user", u.Uname, "error", err)
		} else {
			avatarURL = url
		}
	}
	t.Template.AssignAll(map[string]any{
		"xoops_isuser":     true,
		"xoops_avatar":     avatarURL,
		"xoops_userid":     u.ID.String(),
		"xoops_uname":      u.Uname,
		"xoops_name":       u.Name,
		"xoops_isadmin":    sc.IsAdmin(),
		"xoops_usergroups": sc.Groups(),
	})
}
