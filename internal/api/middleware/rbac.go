package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/atjeh-times/news-api/internal/core/domain"
)

// RequireRoles admits authenticated requesters holding one of allowedRoles.
// It must run after Authenticate.
func RequireRoles(allowedRoles ...string) echo.MiddlewareFunc {
	allowed := make(map[string]struct{}, len(allowedRoles))
	for _, r := range allowedRoles {
		allowed[r] = struct{}{}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			actor := AuthContext(c)
			if !actor.IsAuthenticated() {
				return domain.ErrAuthRequired
			}
			if _, ok := allowed[actor.Role]; !ok {
				return domain.ErrForbidden
			}
			return next(c)
		}
	}
}
