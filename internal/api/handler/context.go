package handler

import (
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/atjeh-times/news-api/internal/api/middleware"
	"github.com/atjeh-times/news-api/internal/core/domain"
)

// actor returns the requester resolved by the auth middleware. Anonymous
// requests yield the zero AuthContext.
func actor(c echo.Context) domain.AuthContext {
	return middleware.AuthContext(c)
}

// queryInt parses an integer query parameter. Missing or malformed values
// return 0 so the service defaults apply.
func queryInt(c echo.Context, name string) int {
	n, err := strconv.Atoi(strings.TrimSpace(c.QueryParam(name)))
	if err != nil {
		return 0
	}
	return n
}

// bindAndValidate decodes the request body into req and runs the struct
// validator on it.
func bindAndValidate(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return domain.NewValidationError("body", "invalid request payload")
	}
	return c.Validate(req)
}
