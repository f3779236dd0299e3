// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package meta

import (
	"html"
	"strings"
)

// Render returns the complete head markup: the bundled base script and
// stylesheet (when their URLs are non-empty), every category in registry
// order, then the raw head strings joined by newlines.
func (r *Registry) Render(baseJSURL, baseCSSURL string) string {
	var b strings.Builder

	if baseJSURL != "" {
		b.WriteString(`<script src="` + html.EscapeString(baseJSURL) + `" type="text/javascript"></script>` + "\n")
	}
	if baseCSSURL != "" {
		b.WriteString(`<link rel="stylesheet" href="` + html.EscapeString(baseCSSURL) + `" type="text/css" />` + "\n")
	}

	for _, category := range r.order {
		b.WriteString(r.RenderByType(category))
	}

	b.WriteString(strings.Join(r.headStrings, "\n"))
	return b.String()
}

// RenderByType renders a single category. Attribute and content values are
// escaped; inline script and style bodies are emitted verbatim.
func (r *Registry) RenderByType(category string) string {
	e, ok := r.categories[category]
	if !ok {
		return ""
	}

	var b strings.Builder
	for _, key := range e.keys {
		item := e.items[key]

		switch category {
		case CategoryScript:
			b.WriteString("<script" + item.Attrs.String() + ">")
			if item.Body != "" {
				b.WriteString("\n//<![CDATA[\n" + item.Body + "\n//]]>")
			}
			b.WriteString("</script>\n")

		case CategoryLink:
			rel, _ := item.Attrs.Get("rel")
			b.WriteString(`<link rel="` + html.EscapeString(rel) + `"` + item.Attrs.Without("rel").String() + " />\n")

		case CategoryStylesheet:
			if item.Body != "" {
				b.WriteString("<style" + item.Attrs.String() + ">\n/* <![CDATA[ */\n" + item.Body + "\n/* //]]> */\n</style>\n")
			} else {
				b.WriteString(`<link rel="stylesheet"` + item.Attrs.String() + " />\n")
			}

		case CategoryHTTP:
			b.WriteString(`<meta http-equiv="` + html.EscapeString(key) + `" content="` + html.EscapeString(item.Value) + `" />` + "\n")

		default:
			b.WriteString(`<meta name="` + html.EscapeString(key) + `" content="` + html.EscapeString(item.Value) + `" />` + "\n")
		}
	}

	return b.String()
}
