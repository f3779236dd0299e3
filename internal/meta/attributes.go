// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package meta

import (
	"html"
	"strings"
)

// Attr is a single HTML attribute.
type Attr struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Attributes is an ordered attribute list. Attributes render in the order
// they were first set.
type Attributes []Attr

// Attrs builds an attribute list from name/value pairs. A trailing name
// without a value is dropped.
func Attrs(pairs ...string) Attributes {
	var a Attributes
	for i := 0; i+1 < len(pairs); i += 2 {
		a = a.With(pairs[i], pairs[i+1])
	}
	return a
}

// Get returns the value of name.
func (a Attributes) Get(name string) (string, bool) {
	for _, attr := range a {
		if attr.Name == name {
			return attr.Value, true
		}
	}
	return "", false
}

// Has reports whether name is set.
func (a Attributes) Has(name string) bool {
	_, ok := a.Get(name)
	return ok
}

// With returns a copy of a with name set to value. An existing attribute
// keeps its position.
func (a Attributes) With(name, value string) Attributes {
	out := make(Attributes, len(a), len(a)+1)
	copy(out, a)
	for i := range out {
		if out[i].Name == name {
			out[i].Value = value
			return out
		}
	}
	return append(out, Attr{Name: name, Value: value})
}

// Without returns a copy of a without name.
func (a Attributes) Without(name string) Attributes {
	out := make(Attributes, 0, len(a))
	for _, attr := range a {
		if attr.Name != name {
			out = append(out, attr)
		}
	}
	return out
}

// String renders the list as ` name="value"` pairs with escaped values.
func (a Attributes) String() string {
	var b strings.Builder
	for _, attr := range a {
		b.WriteByte(' ')
		b.WriteString(attr.Name)
		b.WriteString(`="`)
		b.WriteString(html.EscapeString(attr.Value))
		b.WriteByte('"')
	}
	return b.String()
}
