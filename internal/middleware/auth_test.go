// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"xotheme/internal/session"
)

// newTestSession creates an authenticated session.Data value for tests.
func newTestSession(admin bool) *session.Data {
	groups := []int{2}
	if admin {
		groups = []int{1, 2}
	}
	return &session.Data{
		UserID:      uuid.New(),
		Uname:       "tester",
		Email:       "test@xotheme.local",
		DisplayName: "Test User",
		Groups:      groups,
		IsAdmin:     admin,
	}
}

// ctxWithSession returns a context carrying the given session data using
// the same context key the middleware uses.
func ctxWithSession(ctx context.Context, data *session.Data) context.Context {
	return context.WithValue(ctx, SessionKey, data)
}

// okHandler is a simple handler that records whether it was invoked.
func okHandler() (http.Handler, *bool) {
	var called bool
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusOK)
	})
	return h, &called
}

func TestSessionFromCtx(t *testing.T) {
	t.Run("returns session when present", func(t *testing.T) {
		sess := newTestSession(true)
		got := SessionFromCtx(ctxWithSession(context.Background(), sess))
		if got == nil {
			t.Fatal("expected non-nil session, got nil")
		}
		if got.Email != sess.Email || !got.IsAdmin {
			t.Errorf("got %+v", got)
		}
	})

	t.Run("returns nil when not present", func(t *testing.T) {
		if got := SessionFromCtx(context.Background()); got != nil {
			t.Errorf("expected nil session, got %+v", got)
		}
	})

	t.Run("returns nil for wrong type in context", func(t *testing.T) {
		ctx := context.WithValue(context.Background(), SessionKey, "not-a-session")
		if got := SessionFromCtx(ctx); got != nil {
			t.Errorf("expected nil for wrong type, got %+v", got)
		}
	})
}

func TestRequireAuth(t *testing.T) {
	tests := []struct {
		name       string
		session    *session.Data
		wantCode   int
		wantCalled bool
	}{
		{"no session", nil, http.StatusSeeOther, false},
		{"anonymous theme session", &session.Data{Theme: "zen"}, http.StatusSeeOther, false},
		{"authenticated", newTestSession(false), http.StatusOK, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inner, called := okHandler()
			req := httptest.NewRequest(http.MethodGet, "/admin/", nil)
			if tt.session != nil {
				req = req.WithContext(ctxWithSession(req.Context(), tt.session))
			}
			rr := httptest.NewRecorder()
			RequireAuth(inner).ServeHTTP(rr, req)

			if *called != tt.wantCalled {
				t.Errorf("next handler called: got %v, want %v", *called, tt.wantCalled)
			}
			if rr.Code != tt.wantCode {
				t.Errorf("status: got %d, want %d", rr.Code, tt.wantCode)
			}
			if tt.wantCode == http.StatusSeeOther && rr.Header().Get("Location") != LoginPath {
				t.Errorf("redirect location: got %q", rr.Header().Get("Location"))
			}
		})
	}
}

func TestRequireAdmin(t *testing.T) {
	tests := []struct {
		name       string
		session    *session.Data
		wantCode   int
		wantCalled bool
	}{
		{"nil session", nil, http.StatusForbidden, false},
		{"regular user", newTestSession(false), http.StatusForbidden, false},
		{"anonymous flagged admin", &session.Data{IsAdmin: true}, http.StatusForbidden, false},
		{"admin", newTestSession(true), http.StatusOK, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inner, called := okHandler()
			req := httptest.NewRequest(http.MethodGet, "/admin/", nil)
			if tt.session != nil {
				req = req.WithContext(ctxWithSession(req.Context(), tt.session))
			}
			rr := httptest.NewRecorder()
			RequireAdmin(inner).ServeHTTP(rr, req)

			if *called != tt.wantCalled {
				t.Errorf("next handler called: got %v, want %v", *called, tt.wantCalled)
			}
			if rr.Code != tt.wantCode {
				t.Errorf("status: got %d, want %d", rr.Code, tt.wantCode)
			}
		})
	}
}
