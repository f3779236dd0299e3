// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package locale picks the active locale of a request from the locales the
// site supports.
package locale

import (
	"strings"

	"golang.org/x/text/language"
)

// Negotiator matches requested languages against the supported locales.
type Negotiator struct {
	names   []string
	matcher language.Matcher
	def     string
}

// NewNegotiator builds a negotiator for supported locale names such as
// "en" or "pt_BR". def is returned when nothing matches; it is added to the
// supported set when missing.
func NewNegotiator(supported []string, def string) *Negotiator {
	def = Normalize(def)
	names := []string{def}
	for _, s := range supported {
		if s = Normalize(s); s != "" && s != def {
			names = append(names, s)
		}
	}

	tags := make([]language.Tag, len(names))
	for i, n := range names {
		tags[i] = language.Make(strings.ReplaceAll(n, "_", "-"))
	}

	return &Negotiator{
		names:   names,
		matcher: language.NewMatcher(tags),
		def:     def,
	}
}

// Default returns the fallback locale.
func (n *Negotiator) Default() string { return n.def }

// Supported returns the supported locale names, default first.
func (n *Negotiator) Supported() []string {
	return append([]string(nil), n.names...)
}

// IsSupported reports whether name is one of the supported locales.
func (n *Negotiator) IsSupported(name string) bool {
	name = Normalize(name)
	for _, s := range n.names {
		if s == name {
			return true
		}
	}
	return false
}

// Negotiate returns the locale for a request. An explicitly requested
// supported locale wins; otherwise the Accept-Language header is matched.
func (n *Negotiator) Negotiate(requested, acceptLanguage string) string {
	if requested != "" && n.IsSupported(requested) {
		return Normalize(requested)
	}
	if acceptLanguage == "" {
		return n.def
	}

	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return n.def
	}
	_, idx, conf := n.matcher.Match(tags...)
	if conf == language.No {
		return n.def
	}
	return n.names[idx]
}

// Normalize turns "en-us", "EN_US" and similar into "en_US". A bare
// language is lowercased.
func Normalize(name string) string {
	name = strings.TrimSpace(strings.ReplaceAll(name, "-", "_"))
	lang, region, found := strings.Cut(name, "_")
	lang = strings.ToLower(lang)
	if !found || region == "" {
		return lang
	}
	return lang + "_" + strings.ToUpper(region)
}
