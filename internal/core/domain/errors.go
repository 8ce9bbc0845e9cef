package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrArticleNotFound     = errors.New("article not found")
	ErrArticleNotPublished = errors.New("article is not published")
	ErrSlugTaken           = errors.New("slug already in use")

	ErrUserNotFound       = errors.New("user not found")
	ErrUserExists         = errors.New("user already exists with this email or username")
	ErrUsernameTaken      = errors.New("username is already taken")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountDeactivated = errors.New("account is deactivated")
	ErrSelfDeactivation   = errors.New("you cannot deactivate your own account")
	ErrSelfDeletion       = errors.New("you cannot delete your own account")
	ErrUserHasArticles    = errors.New("user still owns articles")

	ErrAuthRequired = errors.New("authentication required")
	ErrInvalidToken = errors.New("invalid or expired token")
	ErrForbidden    = errors.New("access forbidden")

	ErrImageNotFound    = errors.New("image not found")
	ErrUnsupportedImage = errors.New("only jpeg, png, gif and webp images are allowed")
	ErrImageTooLarge    = errors.New("image exceeds the maximum upload size")
)

// FieldError is a single failed validation rule.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError collects field-level failures detected by a service or the
// request validator. It renders as a 400.
type ValidationError struct {
	Fields []FieldError
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Fields: []FieldError{{Field: field, Message: message}}}
}

func (e *ValidationError) Add(field, message string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Message: message})
}

// OrNil returns nil when no field failed, so callers can return it directly.
func (e *ValidationError) OrNil() error {
	if e == nil || len(e.Fields) == 0 {
		return nil
	}
	return e
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		msgs = append(msgs, f.Message)
	}
	return strings.Join(msgs, "; ")
}

// UserHasArticlesError blocks deleting a user that still owns articles.
type UserHasArticlesError struct {
	Count int64
}

func (e *UserHasArticlesError) Error() string {
	return fmt.Sprintf("cannot delete user: they have %d articles, reassign or delete them first", e.Count)
}

func (e *UserHasArticlesError) Is(target error) bool {
	return target == ErrUserHasArticles
}
