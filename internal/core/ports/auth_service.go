package ports

import (
	"context"

	"github.com/atjeh-times/news-api/internal/core/domain"
)

// RegisterInput carries a self-registration request.
type RegisterInput struct {
	Username  string
	Email     string
	Password  string
	FirstName string
	LastName  string
	Bio       string
	Role      string
}

// ProfileInput is a partial profile update; nil fields are left untouched.
type ProfileInput struct {
	Username  *string
	FirstName *string
	LastName  *string
	Bio       *string
	Avatar    *string
}

// AuthResult is returned by register and login.
type AuthResult struct {
	Token string
	User  *domain.User
}

type AuthService interface {
	Register(ctx context.Context, input RegisterInput) (*AuthResult, error)
	Login(ctx context.Context, email, password string) (*AuthResult, error)
	// Authenticate resolves a bearer token to an active user.
	Authenticate(ctx context.Context, token string) (*domain.User, error)
	Me(ctx context.Context, actor domain.AuthContext) (*domain.User, error)
	UpdateProfile(ctx context.Context, actor domain.AuthContext, input ProfileInput) (*domain.User, error)
	// ProvisionAdmin creates an admin account, or promotes and reactivates the
	// account already registered with that email. created reports which.
	ProvisionAdmin(ctx context.Context, input RegisterInput) (user *domain.User, created bool, err error)
}

// EmailVerdict is the outcome of a deliverability check.
type EmailVerdict struct {
	Valid    bool
	Reason   string
	Provider string
}

// EmailVerifier checks that an address can receive mail. Implementations are
// permissive: upstream failures produce a valid verdict rather than an error.
type EmailVerifier interface {
	Verify(ctx context.Context, email string) EmailVerdict
}
