package domain

import (
	"strings"
	"time"
)

const (
	RoleUser   = "user"
	RoleAuthor = "author"
	RoleAdmin  = "admin"
)

func IsValidRole(role string) bool {
	switch role {
	case RoleUser, RoleAuthor, RoleAdmin:
		return true
	}
	return false
}

// User models an account on the site.
type User struct {
	ID           string
	Username     string
	Email        string
	PasswordHash string
	FirstName    string
	LastName     string
	Bio          string
	Avatar       string
	Role         string
	IsActive     bool
	LastLogin    *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// AuthContext returns the requester identity derived from this account.
func (u *User) AuthContext() AuthContext {
	return AuthContext{UserID: u.ID, Username: u.Username, Role: u.Role}
}
