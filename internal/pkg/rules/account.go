// Package rules holds the account field rules shared by request validation
// and the services.
package rules

import (
	"regexp"
	"unicode"

	"github.com/go-playground/validator/v10"
)

const (
	MinUsernameLength = 3
	MaxUsernameLength = 30
	MinPasswordLength = 6
)

var (
	usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_-]{3,30}$`)

	validate = validator.New(validator.WithRequiredStructEnabled())
)

// Username reports whether s is 3-30 letters, digits, underscores or hyphens.
func Username(s string) bool {
	return usernamePattern.MatchString(s)
}

// StrongPassword requires MinPasswordLength characters with at least one
// lowercase letter, one uppercase letter and one digit.
func StrongPassword(s string) bool {
	if len(s) < MinPasswordLength {
		return false
	}
	var lower, upper, digit bool
	for _, r := range s {
		switch {
		case unicode.IsLower(r):
			lower = true
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	return lower && upper && digit
}

// Email applies validator's email rule.
func Email(s string) bool {
	return validate.Var(s, "required,email") == nil
}

// Register adds the username and password tags to v.
func Register(v *validator.Validate) error {
	if err := v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		return Username(fl.Field().String())
	}); err != nil {
		return err
	}
	return v.RegisterValidation("password", func(fl validator.FieldLevel) bool {
		return StrongPassword(fl.Field().String())
	})
}
