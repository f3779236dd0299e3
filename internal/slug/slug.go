// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package slug turns arbitrary labels into fragments safe for HTML id
// attributes and URL paths.
package slug

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	// invalid matches anything that isn't a letter, digit, hyphen or space.
	invalid = regexp.MustCompile(`[^a-z0-9\s_-]`)
	// separators collapses runs of spaces and hyphens into one hyphen.
	separators = regexp.MustCompile(`[\s-]+`)
)

// Generate lowercases s, folds accented letters to ASCII and joins words
// with hyphens. Example: "Bloc Récent 2" → "bloc-recent-2".
func Generate(s string) string {
	result := strings.ToLower(strings.TrimSpace(fold(s)))
	result = invalid.ReplaceAllString(result, "")
	result = separators.ReplaceAllString(result, "-")
	return strings.Trim(result, "-")
}

// fold removes combining marks after canonical decomposition.
func fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}
