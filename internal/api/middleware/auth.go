package middleware

import (
	"context"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/atjeh-times/news-api/internal/core/domain"
)

const authContextKey = "auth"

// Authenticator resolves a bearer token to an active account.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*domain.User, error)
}

// Authenticate requires a valid bearer token and stores the requester's
// domain.AuthContext on the echo context.
func Authenticate(auth Authenticator) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, ok := bearerToken(c)
			if !ok {
				return domain.ErrAuthRequired
			}

			user, err := auth.Authenticate(c.Request().Context(), token)
			if err != nil {
				return err
			}

			c.Set(authContextKey, user.AuthContext())
			return next(c)
		}
	}
}

// OptionalAuth attaches the requester when a valid token is present and
// otherwise lets the request through anonymously.
func OptionalAuth(auth Authenticator) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if token, ok := bearerToken(c); ok {
				if user, err := auth.Authenticate(c.Request().Context(), token); err == nil {
					c.Set(authContextKey, user.AuthContext())
				}
			}
			return next(c)
		}
	}
}

// AuthContext returns the requester attached by Authenticate or OptionalAuth,
// or the anonymous zero value.
func AuthContext(c echo.Context) domain.AuthContext {
	actor, _ := c.Get(authContextKey).(domain.AuthContext)
	return actor
}

// SetAuthContext attaches actor to c.
func SetAuthContext(c echo.Context, actor domain.AuthContext) {
	c.Set(authContextKey, actor)
}

func bearerToken(c echo.Context) (string, bool) {
	header := c.Request().Header.Get(echo.HeaderAuthorization)
	if header == "" {
		return "", false
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	return token, token != ""
}
