package service

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/atjeh-times/news-api/internal/core/domain"
	"github.com/atjeh-times/news-api/internal/pkg/rules"
)

const (
	maxNameLength = 50
	maxBioLength  = 500
)

func checkUsername(verr *domain.ValidationError, username string) {
	n := utf8.RuneCountInString(username)
	switch {
	case n < rules.MinUsernameLength || n > rules.MaxUsernameLength:
		verr.Add("username", fmt.Sprintf("username must be between %d and %d characters", rules.MinUsernameLength, rules.MaxUsernameLength))
	case !rules.Username(username):
		verr.Add("username", "username can only contain letters, numbers, underscores, and hyphens")
	}
}

func checkEmail(verr *domain.ValidationError, email string) {
	if !rules.Email(email) {
		verr.Add("email", "please provide a valid email")
	}
}

func checkPassword(verr *domain.ValidationError, password string) {
	switch {
	case len(password) < rules.MinPasswordLength:
		verr.Add("password", fmt.Sprintf("password must be at least %d characters long", rules.MinPasswordLength))
	case !rules.StrongPassword(password):
		verr.Add("password", "password must contain at least one lowercase letter, one uppercase letter, and one number")
	}
}

func checkName(verr *domain.ValidationError, field, value string) {
	switch {
	case strings.TrimSpace(value) == "":
		verr.Add(field, field+" is required")
	case utf8.RuneCountInString(value) > maxNameLength:
		verr.Add(field, fmt.Sprintf("%s cannot exceed %d characters", field, maxNameLength))
	}
}

func checkBio(verr *domain.ValidationError, bio string) {
	if utf8.RuneCountInString(bio) > maxBioLength {
		verr.Add("bio", fmt.Sprintf("bio cannot exceed %d characters", maxBioLength))
	}
}
