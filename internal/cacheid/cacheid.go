// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package cacheid derives page cache identifiers that vary by locale and
// by the visitor's group memberships, so a page rendered for one set of
// groups is never served from cache to a visitor in a different set.
package cacheid

import (
	"crypto/md5"
	"encoding/hex"
	"net/url"
	"sort"
	"strconv"
	"strings"
)

// Anonymous is the group section used for visitors that are not logged in.
const Anonymous = "anonymous"

// Generator holds the process-wide settings for cache id generation. It
// keeps no per-request state and is safe to share.
type Generator struct {
	// Enabled turns the locale/group suffix on. When false CacheID returns
	// the raw id unchanged.
	Enabled bool

	saltFP string
}

// NewGenerator creates a Generator. The database credentials only serve as
// a hard-to-guess salt for the group fingerprint.
func NewGenerator(enabled bool, dbPassword, dbName, dbUser string) *Generator {
	return &Generator{
		Enabled: enabled,
		saltFP:  Fingerprint(dbPassword + dbName + dbUser),
	}
}

// Identity describes the visitor a cache id is generated for.
type Identity struct {
	Locale        string
	Authenticated bool
	Groups        []int
}

// Keyer generates cache ids for a single request. The extra string is
// memoised on the Keyer, so a Keyer must never outlive its request.
type Keyer struct {
	gen      *Generator
	identity Identity

	extra string
}

// NewKeyer returns a Keyer bound to one request's visitor.
func (g *Generator) NewKeyer(identity Identity) *Keyer {
	return &Keyer{gen: g, identity: identity}
}

// CacheID appends the extra string to raw. An explicit extra overrides the
// computed locale/group section.
func (k *Keyer) CacheID(raw, extra string) string {
	if k == nil || k.gen == nil || !k.gen.Enabled {
		return raw
	}
	if extra == "" {
		extra = k.Extra()
	}
	return raw + "-" + extra
}

// Extra returns the locale/group section for the bound visitor, computing
// it on first use.
func (k *Keyer) Extra() string {
	if k.extra != "" {
		return k.extra
	}

	extra := k.identity.Locale
	if !k.identity.Authenticated {
		extra += "-" + Anonymous
	} else {
		extra += "-" + GroupFingerprint(k.identity.Groups) + "-" + k.gen.saltFP
	}

	k.extra = extra
	return extra
}

// GroupFingerprint returns a stable fingerprint of a group set. The order of
// groups does not matter.
func GroupFingerprint(groups []int) string {
	sorted := make([]int, len(groups))
	copy(sorted, groups)
	sort.Ints(sorted)

	parts := make([]string, len(sorted))
	for i, g := range sorted {
		parts[i] = strconv.Itoa(g)
	}
	return Fingerprint(strings.Join(parts, "-"))
}

// Fingerprint returns the first 8 hex characters of the md5 digest of s.
func Fingerprint(s string) string {
	sum := md5.Sum([]byte(s))
	return hex.EncodeToString(sum[:])[:8]
}

// PageKey returns the raw cache id for a request URI.
func PageKey(uri string) string {
	return "page_" + Fingerprint(uri)
}

// StripSessionID removes a name=id session parameter from the query string
// of uri. The rest of the URI is left untouched.
func StripSessionID(uri, name, id string) string {
	if name == "" || id == "" {
		return uri
	}
	sid := name + "=" + id

	hashIdx := strings.IndexByte(uri, '#')
	fragment := ""
	if hashIdx >= 0 {
		uri, fragment = uri[:hashIdx], uri[hashIdx:]
	}

	q := strings.IndexByte(uri, '?')
	if q < 0 {
		return uri + fragment
	}

	path, query := uri[:q], uri[q+1:]
	params := strings.Split(query, "&")
	kept := params[:0]
	for _, p := range params {
		if p == sid || p == url.QueryEscape(name)+"="+url.QueryEscape(id) {
			continue
		}
		kept = append(kept, p)
	}

	return path + "?" + strings.Join(kept, "&") + fragment
}
