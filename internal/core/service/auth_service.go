package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/atjeh-times/news-api/internal/core/domain"
	"github.com/atjeh-times/news-api/internal/core/ports"
	"github.com/atjeh-times/news-api/internal/pkg/metrics"
	"github.com/atjeh-times/news-api/internal/pkg/rules"
)

const defaultTokenTTL = 7 * 24 * time.Hour

// AuthService implements registration, login, token resolution and profile
// management.
type AuthService struct {
	users     ports.UserRepository
	verifier  ports.EmailVerifier
	jwtSecret string
	tokenTTL  time.Duration
	logger    zerolog.Logger
	now       func() time.Time
}

// NewAuthService builds the service. Registration always screens addresses
// offline; a nil verifier only disables the upstream deliverability checks.
func NewAuthService(users ports.UserRepository, verifier ports.EmailVerifier, jwtSecret string, tokenTTL time.Duration, logger zerolog.Logger) *AuthService {
	if tokenTTL <= 0 {
		tokenTTL = defaultTokenTTL
	}
	return &AuthService{
		users:     users,
		verifier:  verifier,
		jwtSecret: jwtSecret,
		tokenTTL:  tokenTTL,
		logger:    logger,
		now:       time.Now,
	}
}

// Register creates an account and signs the caller in. Self-registration can
// only grant the user or author role; it defaults to author.
func (s *AuthService) Register(ctx context.Context, input ports.RegisterInput) (*ports.AuthResult, error) {
	input = normalizeRegistration(input)
	if input.Role == "" {
		input.Role = domain.RoleAuthor
	}

	verr := validateRegistration(input)
	if input.Role != domain.RoleUser && input.Role != domain.RoleAuthor {
		verr.Add("role", "role must be one of: user, author")
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}
	if reason := rules.ScreenEmail(input.Email); reason != "" {
		s.logger.Info().Str("reason", reason).Msg("registration rejected by email screening")
		return nil, domain.NewValidationError("email", reason)
	}

	exists, err := s.users.ExistsByEmailOrUsername(ctx, input.Email, input.Username)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, domain.ErrUserExists
	}

	if s.verifier != nil {
		if v := s.verifier.Verify(ctx, input.Email); !v.Valid {
			s.logger.Info().Str("provider", v.Provider).Str("reason", v.Reason).Msg("registration rejected by email verification")
			return nil, domain.NewValidationError("email", v.Reason)
		}
	}

	user, err := s.createUser(ctx, input)
	if err != nil {
		return nil, err
	}

	token, err := s.generateToken(user)
	if err != nil {
		return nil, err
	}

	metrics.RegistrationsTotal.WithLabelValues(user.Role).Inc()
	s.logger.Info().Str("user_id", user.ID).Str("role", user.Role).Msg("user registered")

	return &ports.AuthResult{Token: token, User: user}, nil
}

// Login checks credentials and records the login time.
func (s *AuthService) Login(ctx context.Context, email, password string) (*ports.AuthResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		metrics.LoginAttemptsTotal.WithLabelValues("invalid_credentials").Inc()
		return nil, domain.ErrInvalidCredentials
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			metrics.LoginAttemptsTotal.WithLabelValues("invalid_credentials").Inc()
			return nil, domain.ErrInvalidCredentials
		}
		metrics.LoginAttemptsTotal.WithLabelValues("error").Inc()
		return nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		metrics.LoginAttemptsTotal.WithLabelValues("invalid_credentials").Inc()
		return nil, domain.ErrInvalidCredentials
	}
	if !user.IsActive {
		metrics.LoginAttemptsTotal.WithLabelValues("deactivated").Inc()
		return nil, domain.ErrAccountDeactivated
	}

	now := s.now().UTC()
	if err := s.users.UpdateLastLogin(ctx, user.ID, now); err != nil {
		s.logger.Warn().Err(err).Str("user_id", user.ID).Msg("failed to record last login")
	} else {
		user.LastLogin = &now
	}

	token, err := s.generateToken(user)
	if err != nil {
		metrics.LoginAttemptsTotal.WithLabelValues("error").Inc()
		return nil, err
	}

	metrics.LoginAttemptsTotal.WithLabelValues("ok").Inc()
	return &ports.AuthResult{Token: token, User: user}, nil
}

// Authenticate resolves a bearer token to an active account.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*domain.User, error) {
	claims := jwt.MapClaims{}
	tkn, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return []byte(s.jwtSecret), nil
	})
	if err != nil || !tkn.Valid {
		return nil, domain.ErrInvalidToken
	}

	id, _ := claims["id"].(string)
	if id == "" {
		return nil, domain.ErrInvalidToken
	}

	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrInvalidToken
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, domain.ErrAccountDeactivated
	}
	return user, nil
}

func (s *AuthService) Me(ctx context.Context, actor domain.AuthContext) (*domain.User, error) {
	if !actor.IsAuthenticated() {
		return nil, domain.ErrAuthRequired
	}
	return s.users.FindByID(ctx, actor.UserID)
}

// UpdateProfile edits the requester's own profile fields.
func (s *AuthService) UpdateProfile(ctx context.Context, actor domain.AuthContext, input ports.ProfileInput) (*domain.User, error) {
	if !actor.IsAuthenticated() {
		return nil, domain.ErrAuthRequired
	}

	user, err := s.users.FindByID(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}

	verr := &domain.ValidationError{}
	if input.FirstName != nil {
		user.FirstName = strings.TrimSpace(*input.FirstName)
		checkName(verr, "firstName", user.FirstName)
	}
	if input.LastName != nil {
		user.LastName = strings.TrimSpace(*input.LastName)
		checkName(verr, "lastName", user.LastName)
	}
	if input.Bio != nil {
		user.Bio = strings.TrimSpace(*input.Bio)
		checkBio(verr, user.Bio)
	}
	if input.Avatar != nil {
		user.Avatar = strings.TrimSpace(*input.Avatar)
	}

	usernameChanged := false
	if input.Username != nil {
		username := strings.TrimSpace(*input.Username)
		if username != user.Username {
			checkUsername(verr, username)
			user.Username = username
			usernameChanged = true
		}
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	if usernameChanged {
		existing, err := s.users.FindByUsername(ctx, user.Username)
		switch {
		case err == nil && existing.ID != user.ID:
			return nil, domain.ErrUsernameTaken
		case err != nil && !errors.Is(err, domain.ErrUserNotFound):
			return nil, err
		}
	}

	user.UpdatedAt = s.now().UTC()
	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// ProvisionAdmin creates an admin account, or promotes and reactivates an
// existing account with the same email.
func (s *AuthService) ProvisionAdmin(ctx context.Context, input ports.RegisterInput) (*domain.User, bool, error) {
	input = normalizeRegistration(input)
	input.Role = domain.RoleAdmin

	existing, err := s.users.FindByEmail(ctx, input.Email)
	switch {
	case err == nil:
		existing.Role = domain.RoleAdmin
		existing.IsActive = true
		existing.UpdatedAt = s.now().UTC()
		if err := s.users.Update(ctx, existing); err != nil {
			return nil, false, err
		}
		s.logger.Info().Str("user_id", existing.ID).Msg("existing user promoted to admin")
		return existing, false, nil
	case !errors.Is(err, domain.ErrUserNotFound):
		return nil, false, err
	}

	if err := validateRegistration(input).OrNil(); err != nil {
		return nil, false, err
	}

	user, err := s.createUser(ctx, input)
	if err != nil {
		return nil, false, err
	}
	s.logger.Info().Str("user_id", user.ID).Msg("admin user created")
	return user, true, nil
}

func (s *AuthService) createUser(ctx context.Context, input ports.RegisterInput) (*domain.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	user := &domain.User{
		Username:     input.Username,
		Email:        input.Email,
		PasswordHash: string(hash),
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		Bio:          input.Bio,
		Role:         input.Role,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *AuthService) generateToken(user *domain.User) (string, error) {
	claims := jwt.MapClaims{
		"id":  user.ID,
		"iat": s.now().Unix(),
		"exp": s.now().Add(s.tokenTTL).Unix(),
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString([]byte(s.jwtSecret))
}

func normalizeRegistration(input ports.RegisterInput) ports.RegisterInput {
	input.Username = strings.TrimSpace(input.Username)
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))
	input.FirstName = strings.TrimSpace(input.FirstName)
	input.LastName = strings.TrimSpace(input.LastName)
	input.Bio = strings.TrimSpace(input.Bio)
	input.Role = strings.ToLower(strings.TrimSpace(input.Role))
	return input
}

func validateRegistration(input ports.RegisterInput) *domain.ValidationError {
	verr := &domain.ValidationError{}
	checkUsername(verr, input.Username)
	checkEmail(verr, input.Email)
	checkPassword(verr, input.Password)
	checkName(verr, "firstName", input.FirstName)
	checkName(verr, "lastName", input.LastName)
	checkBio(verr, input.Bio)
	return verr
}
