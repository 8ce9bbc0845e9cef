package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/atjeh-times/news-api/internal/api/handler"
	"github.com/atjeh-times/news-api/internal/core/domain"
)

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps known domain errors to their appropriate HTTP status codes.
//   - Logs unexpected errors internally and only exposes their detail when verbose is set.
//   - Renders a consistent JSON envelope: {"error": "<message>"}.
func NewHTTPErrorHandler(log zerolog.Logger, verbose bool) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, body := resolveError(err, log, c, verbose)
		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(code)
			return
		}
		_ = c.JSON(code, body)
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context, verbose bool) (int, handler.ErrorResponse) {
	// Echo's own errors (bind failures, 404 from router, rate limiting, etc.)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		msg := fmt.Sprintf("%v", he.Message)
		if he.Code == http.StatusNotFound && he.Message == http.StatusText(http.StatusNotFound) {
			msg = "Route not found"
		}
		return he.Code, handler.ErrorResponse{Error: msg}
	}

	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		return http.StatusBadRequest, handler.ErrorResponse{Error: "Validation failed", Errors: verr.Fields}
	}

	var hasArticles *domain.UserHasArticlesError
	if errors.As(err, &hasArticles) {
		count := hasArticles.Count
		return http.StatusBadRequest, handler.ErrorResponse{Error: hasArticles.Error(), ArticleCount: &count}
	}

	// Known domain errors → deterministic HTTP codes.
	switch {
	case errors.Is(err, domain.ErrAccountDeactivated):
		return http.StatusUnauthorized, handler.ErrorResponse{Error: "Account is deactivated"}
	case errors.Is(err, domain.ErrAuthRequired),
		errors.Is(err, domain.ErrInvalidToken),
		errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized, handler.ErrorResponse{Error: err.Error()}
	case errors.Is(err, domain.ErrForbidden),
		errors.Is(err, domain.ErrArticleNotPublished):
		return http.StatusForbidden, handler.ErrorResponse{Error: err.Error()}
	case errors.Is(err, domain.ErrArticleNotFound),
		errors.Is(err, domain.ErrUserNotFound),
		errors.Is(err, domain.ErrImageNotFound):
		return http.StatusNotFound, handler.ErrorResponse{Error: err.Error()}
	case errors.Is(err, domain.ErrSlugTaken):
		return http.StatusConflict, handler.ErrorResponse{Error: err.Error()}
	case errors.Is(err, domain.ErrUserExists),
		errors.Is(err, domain.ErrUsernameTaken),
		errors.Is(err, domain.ErrSelfDeactivation),
		errors.Is(err, domain.ErrSelfDeletion),
		errors.Is(err, domain.ErrUnsupportedImage),
		errors.Is(err, domain.ErrImageTooLarge):
		return http.StatusBadRequest, handler.ErrorResponse{Error: err.Error()}
	}

	// Unexpected error: log the real cause, return a generic message.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	resp := handler.ErrorResponse{Error: "Internal server error"}
	if verbose {
		resp.Detail = err.Error()
	}
	return http.StatusInternalServerError, resp
}
