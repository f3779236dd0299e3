// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package assets

import (
	"bytes"
	"log/slog"

	"github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/css"
	"github.com/tdewolff/minify/v2/js"
)

// Filter transforms the content of one source file of kind.
type Filter func(kind string, src []byte) []byte

var builtinFilters = map[string]Filter{
	"default": identity,
	"trim":    trim,
	"cssmin":  minifier(KindCSS),
	"jsmin":   minifier(KindJS),
}

var minifyTypes = map[string]string{
	KindCSS: "text/css",
	KindJS:  "application/javascript",
}

var minifiers = func() *minify.M {
	m := minify.New()
	m.AddFunc(minifyTypes[KindCSS], css.Minify)
	m.AddFunc(minifyTypes[KindJS], js.Minify)
	return m
}()

func identity(_ string, src []byte) []byte { return src }

// trim strips surrounding whitespace from every line and drops blank lines.
func trim(_ string, src []byte) []byte {
	lines := bytes.Split(src, []byte("\n"))
	out := lines[:0]
	for _, l := range lines {
		if l = bytes.TrimSpace(l); len(l) > 0 {
			out = append(out, l)
		}
	}
	return bytes.Join(out, []byte("\n"))
}

// minifier returns a filter minifying files of kind only. Sources that
// fail to parse are passed through unchanged.
func minifier(kind string) Filter {
	return func(k string, src []byte) []byte {
		if k != kind {
			return src
		}
		out, err := minifiers.Bytes(minifyTypes[kind], src)
		if err != nil {
			slog.Warn("asset minify failed, keeping source", "kind", kind, "error", err)
			return src
		}
		return out
	}
}
