// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package theme

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// fallbackLocale provides theme strings missing from the active locale.
const fallbackLocale = "en"

// LocalizationAssets returns the locale stylesheets and scripts present on
// disk for the active locale: the global locale stylesheet, then the
// theme locale script and stylesheet. Missing files are skipped.
func (t *Theme) LocalizationAssets() (css, js []string) {
	loc := t.site.Locale
	if loc == "" {
		return nil, nil
	}

	if p := filepath.Join(t.rootPath, "locale", loc, "style.css"); fileExists(p) {
		css = append(css, p)
	}
	if fileExists(filepath.Join(t.Path, "locale", loc, "script.js")) {
		js = append(js, t.URL+"/locale/"+loc+"/script.js")
	}
	if p := filepath.Join(t.Path, "locale", loc, "style.css"); fileExists(p) {
		css = append(css, p)
	}
	return css, js
}

// loadLocale reads the theme strings of locale/<locale>/main.yaml into the
// lang template variable, completing them from the fallback locale.
func (t *Theme) loadLocale() {
	lang := make(map[string]string)

	locales := []string{fallbackLocale}
	if t.site.Locale != "" && t.site.Locale != fallbackLocale {
		locales = append(locales, t.site.Locale)
	}
	for _, loc := range locales {
		strs, err := readLocaleFile(filepath.Join(t.Path, "locale", loc, "main.yaml"))
		if err != nil {
			slog.Warn("theme locale unreadable", "theme", t.FolderName, "locale", loc, "error", err)
			continue
		}
		for k, v := range strs {
			lang[k] = v
		}
	}

	t.lang = lang
	t.Template.Assign("lang", lang)
}

// readLocaleFile parses a flat key/value YAML file. A missing file yields
// no strings and no error.
func readLocaleFile(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var strs map[string]string
	if err := yaml.Unmarshal(data, &strs); err != nil {
		return nil, err
	}
	return strs, nil
}
