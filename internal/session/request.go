// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package session

import (
	"context"
	"net/http"
)

// Request binds the store to one request and response so the theme layer
// can remember a visitor's theme choice.
type Request struct {
	store *Store
	w     http.ResponseWriter
	r     *http.Request
	data  *Data
}

// ForRequest wraps the session loaded for r. data may be nil.
func (s *Store) ForRequest(w http.ResponseWriter, r *http.Request, data *Data) *Request {
	return &Request{store: s, w: w, r: r, data: data}
}

// Data returns the current session payload, or nil.
func (q *Request) Data() *Data { return q.data }

// ThemeSelection returns the remembered theme.
func (q *Request) ThemeSelection() string {
	if q.data == nil {
		return ""
	}
	return q.data.Theme
}

// RememberTheme stores the theme in the session, starting an anonymous
// session when the visitor has none.
func (q *Request) RememberTheme(ctx context.Context, name string) error {
	if q.data == nil {
		q.data = &Data{Theme: name}
		_, err := q.store.Create(ctx, q.w, q.data)
		return err
	}
	if q.data.Theme == name {
		return nil
	}
	q.data.Theme = name
	return q.store.Update(ctx, q.r, q.data)
}
