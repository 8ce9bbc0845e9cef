package middleware

import (
	"errors"
	"net/http"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/atjeh-times/news-api/internal/core/domain"
)

func TestRequireRoles_Allows(t *testing.T) {
	c, rec := newContext("")
	SetAuthContext(c, domain.AuthContext{UserID: "user-z", Role: domain.RoleAdmin})

	called := false
	handler := RequireRoles(domain.RoleAuthor, domain.RoleAdmin)(func(c echo.Context) error {
		called = true
		return c.NoContent(http.StatusOK)
	})

	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !called {
		t.Fatalf("next handler not called")
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestRequireRoles_Forbids(t *testing.T) {
	c, _ := newContext("")
	SetAuthContext(c, domain.AuthContext{UserID: "user-r", Role: domain.RoleUser})

	handler := RequireRoles(domain.RoleAuthor, domain.RoleAdmin)(func(c echo.Context) error {
		t.Fatalf("should not reach next")
		return nil
	})

	if err := handler(c); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestRequireRoles_AdminOnly(t *testing.T) {
	c, _ := newContext("")
	SetAuthContext(c, domain.AuthContext{UserID: "user-a", Role: domain.RoleAuthor})

	handler := RequireRoles(domain.RoleAdmin)(func(c echo.Context) error {
		t.Fatalf("author must not pass an admin gate")
		return nil
	})

	if err := handler(c); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestRequireRoles_Anonymous(t *testing.T) {
	c, _ := newContext("")

	handler := RequireRoles(domain.RoleAdmin)(func(c echo.Context) error {
		t.Fatalf("should not reach next")
		return nil
	})

	if err := handler(c); !errors.Is(err, domain.ErrAuthRequired) {
		t.Fatalf("expected ErrAuthRequired, got %v", err)
	}
}
