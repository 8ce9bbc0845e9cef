package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/atjeh-times/news-api/internal/core/domain"
)

type stubAuthenticator struct {
	fn func(ctx context.Context, token string) (*domain.User, error)
}

func (s *stubAuthenticator) Authenticate(ctx context.Context, token string) (*domain.User, error) {
	return s.fn(ctx, token)
}

var alice = &domain.User{ID: "user-a", Username: "alice", Role: domain.RoleAuthor, IsActive: true}

func tokenAuthenticator() *stubAuthenticator {
	return &stubAuthenticator{fn: func(_ context.Context, token string) (*domain.User, error) {
		switch token {
		case "good":
			return alice, nil
		case "deactivated":
			return nil, domain.ErrAccountDeactivated
		}
		return nil, domain.ErrInvalidToken
	}}
}

func newContext(authHeader string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if authHeader != "" {
		req.Header.Set(echo.HeaderAuthorization, authHeader)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestAuthenticate_ValidToken(t *testing.T) {
	c, rec := newContext("Bearer good")

	called := false
	handler := Authenticate(tokenAuthenticator())(func(c echo.Context) error {
		called = true
		actor := AuthContext(c)
		if actor.UserID != "user-a" || actor.Username != "alice" || actor.Role != domain.RoleAuthor {
			t.Fatalf("unexpected auth context %+v", actor)
		}
		return c.NoContent(http.StatusOK)
	})

	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !called {
		t.Fatalf("next not called")
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestAuthenticate_Rejections(t *testing.T) {
	cases := []struct {
		name    string
		header  string
		wantErr error
	}{
		{"missing header", "", domain.ErrAuthRequired},
		{"wrong scheme", "Token good", domain.ErrAuthRequired},
		{"empty bearer", "Bearer ", domain.ErrAuthRequired},
		{"bad token", "Bearer forged", domain.ErrInvalidToken},
		{"deactivated account", "Bearer deactivated", domain.ErrAccountDeactivated},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c, _ := newContext(tc.header)
			handler := Authenticate(tokenAuthenticator())(func(c echo.Context) error {
				t.Fatalf("should not reach next")
				return nil
			})

			if err := handler(c); !errors.Is(err, tc.wantErr) {
				t.Fatalf("expected %v, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestOptionalAuth(t *testing.T) {
	cases := []struct {
		name     string
		header   string
		wantUser string
	}{
		{"no token", "", ""},
		{"valid token", "Bearer good", "user-a"},
		{"bad token falls back to anonymous", "Bearer forged", ""},
		{"deactivated falls back to anonymous", "Bearer deactivated", ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c, _ := newContext(tc.header)
			called := false
			handler := OptionalAuth(tokenAuthenticator())(func(c echo.Context) error {
				called = true
				if got := AuthContext(c).UserID; got != tc.wantUser {
					t.Fatalf("expected user %q, got %q", tc.wantUser, got)
				}
				return nil
			})

			if err := handler(c); err != nil {
				t.Fatalf("handler error: %v", err)
			}
			if !called {
				t.Fatalf("next not called")
			}
		})
	}
}
