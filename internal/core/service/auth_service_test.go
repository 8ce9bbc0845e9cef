package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/atjeh-times/news-api/internal/core/domain"
	"github.com/atjeh-times/news-api/internal/core/ports"
)

const testSecret = "secret"

func newTestAuthService(repo *stubUserRepo, verifier ports.EmailVerifier) *AuthService {
	return NewAuthService(repo, verifier, testSecret, time.Hour, zerolog.Nop())
}

func registration() ports.RegisterInput {
	return ports.RegisterInput{
		Username:  "alice",
		Email:     "Alice@News.io",
		Password:  "Passw0rd",
		FirstName: "Alice",
		LastName:  "Anders",
	}
}

func TestAuthService_Register_Success(t *testing.T) {
	repo := newStubUserRepo()
	svc := newTestAuthService(repo, nil)

	res, err := svc.Register(context.Background(), registration())
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	if res.Token == "" {
		t.Fatalf("expected token")
	}

	user := res.User
	if user.Email != "alice@news.io" {
		t.Fatalf("expected lowercased email, got %q", user.Email)
	}
	if user.Role != domain.RoleAuthor || !user.IsActive {
		t.Fatalf("expected active author, got %s/%v", user.Role, user.IsActive)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("Passw0rd")); err != nil {
		t.Fatalf("stored hash does not match password: %v", err)
	}
}

func TestAuthService_Register_RoleRules(t *testing.T) {
	svc := newTestAuthService(newStubUserRepo(), nil)

	in := registration()
	in.Role = "user"
	res, err := svc.Register(context.Background(), in)
	if err != nil {
		t.Fatalf("Register as user: %v", err)
	}
	if res.User.Role != domain.RoleUser {
		t.Fatalf("unexpected role %s", res.User.Role)
	}

	in = registration()
	in.Username, in.Email, in.Role = "mallory", "mallory@news.io", "admin"
	_, err = svc.Register(context.Background(), in)
	var verr *domain.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError for admin self-registration, got %v", err)
	}
}

func TestAuthService_Register_Validation(t *testing.T) {
	cases := map[string]func(*ports.RegisterInput){
		"short username":   func(in *ports.RegisterInput) { in.Username = "al" },
		"bad username":     func(in *ports.RegisterInput) { in.Username = "al ice" },
		"bad email":        func(in *ports.RegisterInput) { in.Email = "not-an-email" },
		"short password":   func(in *ports.RegisterInput) { in.Password = "Pa1" },
		"weak password":    func(in *ports.RegisterInput) { in.Password = "password" },
		"missing lastName": func(in *ports.RegisterInput) { in.LastName = "" },
	}

	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			repo := newStubUserRepo()
			svc := newTestAuthService(repo, nil)
			in := registration()
			mutate(&in)

			_, err := svc.Register(context.Background(), in)
			var verr *domain.ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if len(repo.byID) != 0 {
				t.Fatalf("no user should be stored")
			}
		})
	}
}

func TestAuthService_Register_Duplicate(t *testing.T) {
	repo := newStubUserRepo()
	svc := newTestAuthService(repo, nil)

	if _, err := svc.Register(context.Background(), registration()); err != nil {
		t.Fatalf("first Register: %v", err)
	}

	in := registration()
	in.Username = "alice2"
	if _, err := svc.Register(context.Background(), in); !errors.Is(err, domain.ErrUserExists) {
		t.Fatalf("expected ErrUserExists for same email, got %v", err)
	}

	in = registration()
	in.Email = "other@news.io"
	if _, err := svc.Register(context.Background(), in); !errors.Is(err, domain.ErrUserExists) {
		t.Fatalf("expected ErrUserExists for same username, got %v", err)
	}
}

func TestAuthService_Register_EmailVerifierRejects(t *testing.T) {
	repo := newStubUserRepo()
	verifier := &stubVerifier{verdict: ports.EmailVerdict{Valid: false, Reason: "Disposable emails are not allowed", Provider: "static"}}
	svc := newTestAuthService(repo, verifier)

	_, err := svc.Register(context.Background(), registration())

	var verr *domain.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if verr.Fields[0].Field != "email" || verr.Fields[0].Message != "Disposable emails are not allowed" {
		t.Fatalf("unexpected field error %+v", verr.Fields[0])
	}
	if verifier.calls != 1 || len(repo.byID) != 0 {
		t.Fatalf("expected one verifier call and nothing stored")
	}
}

func TestAuthService_Register_ScreensEmailWithoutVerifier(t *testing.T) {
	cases := map[string]string{
		"someone@mailinator.com": "Disposable emails are not allowed",
		"alice@example.com":      "Email domain appears to be invalid",
		"test.reader@gmail.com":  "This email appears to be invalid or suspicious",
	}

	for email, reason := range cases {
		t.Run(email, func(t *testing.T) {
			repo := newStubUserRepo()
			svc := newTestAuthService(repo, nil)
			in := registration()
			in.Email = email

			_, err := svc.Register(context.Background(), in)
			var verr *domain.ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if verr.Fields[0].Field != "email" || verr.Fields[0].Message != reason {
				t.Fatalf("unexpected field error %+v", verr.Fields[0])
			}
			if len(repo.byID) != 0 {
				t.Fatalf("no user should be stored")
			}
		})
	}
}

func TestAuthService_Login_Success(t *testing.T) {
	repo := newStubUserRepo()
	svc := newTestAuthService(repo, nil)
	reg, err := svc.Register(context.Background(), registration())
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	res, err := svc.Login(context.Background(), " ALICE@news.io ", "Passw0rd")
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
	if res.User.LastLogin == nil || repo.byID[reg.User.ID].LastLogin == nil {
		t.Fatalf("expected last login to be recorded")
	}

	claims := jwt.MapClaims{}
	parsed, err := jwt.ParseWithClaims(res.Token, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte(testSecret), nil
	})
	if err != nil || !parsed.Valid {
		t.Fatalf("token should be valid: %v", err)
	}
	if claims["id"] != reg.User.ID {
		t.Fatalf("unexpected id claim %v", claims["id"])
	}
}

func TestAuthService_Login_InvalidPassword(t *testing.T) {
	svc := newTestAuthService(newStubUserRepo(), nil)
	if _, err := svc.Register(context.Background(), registration()); err != nil {
		t.Fatalf("Register: %v", err)
	}

	if _, err := svc.Login(context.Background(), "alice@news.io", "wrong"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthService_Login_UserNotFound(t *testing.T) {
	svc := newTestAuthService(newStubUserRepo(), nil)

	if _, err := svc.Login(context.Background(), "ghost@news.io", "Passw0rd"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthService_Login_Deactivated(t *testing.T) {
	repo := newStubUserRepo()
	svc := newTestAuthService(repo, nil)
	reg, err := svc.Register(context.Background(), registration())
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	repo.byID[reg.User.ID].IsActive = false

	if _, err := svc.Login(context.Background(), "alice@news.io", "Passw0rd"); !errors.Is(err, domain.ErrAccountDeactivated) {
		t.Fatalf("expected ErrAccountDeactivated, got %v", err)
	}
	if repo.byID[reg.User.ID].LastLogin != nil {
		t.Fatalf("deactivated login must not record last login")
	}
}

func TestAuthService_Authenticate(t *testing.T) {
	repo := newStubUserRepo()
	svc := newTestAuthService(repo, nil)
	reg, err := svc.Register(context.Background(), registration())
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	user, err := svc.Authenticate(context.Background(), reg.Token)
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if user.ID != reg.User.ID {
		t.Fatalf("unexpected user %s", user.ID)
	}

	if _, err := svc.Authenticate(context.Background(), "garbage"); !errors.Is(err, domain.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}

	other := NewAuthService(repo, nil, "another-secret", time.Hour, zerolog.Nop())
	if _, err := other.Authenticate(context.Background(), reg.Token); !errors.Is(err, domain.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for foreign signature, got %v", err)
	}

	repo.byID[reg.User.ID].IsActive = false
	if _, err := svc.Authenticate(context.Background(), reg.Token); !errors.Is(err, domain.ErrAccountDeactivated) {
		t.Fatalf("expected ErrAccountDeactivated, got %v", err)
	}
}

func TestAuthService_Authenticate_Expired(t *testing.T) {
	repo := newStubUserRepo()
	svc := newTestAuthService(repo, nil)
	reg, err := svc.Register(context.Background(), registration())
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	svc.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	stale, err := svc.generateToken(reg.User)
	if err != nil {
		t.Fatalf("generateToken: %v", err)
	}

	if _, err := svc.Authenticate(context.Background(), stale); !errors.Is(err, domain.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for expired token, got %v", err)
	}
}

func TestAuthService_Authenticate_DeletedUser(t *testing.T) {
	repo := newStubUserRepo()
	svc := newTestAuthService(repo, nil)
	reg, err := svc.Register(context.Background(), registration())
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	delete(repo.byID, reg.User.ID)

	if _, err := svc.Authenticate(context.Background(), reg.Token); !errors.Is(err, domain.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestAuthService_UpdateProfile(t *testing.T) {
	repo := newStubUserRepo(&domain.User{ID: "taken", Username: "bob", Email: "bob@news.io", IsActive: true})
	svc := newTestAuthService(repo, nil)
	reg, err := svc.Register(context.Background(), registration())
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	actor := reg.User.AuthContext()

	bio, avatar := "Covers city hall.", "https://cdn.test/a.jpg"
	user, err := svc.UpdateProfile(context.Background(), actor, ports.ProfileInput{Bio: &bio, Avatar: &avatar})
	if err != nil {
		t.Fatalf("UpdateProfile: %v", err)
	}
	if user.Bio != bio || user.Avatar != avatar || repo.byID[user.ID].Bio != bio {
		t.Fatalf("profile not updated: %+v", user)
	}

	taken := "bob"
	if _, err := svc.UpdateProfile(context.Background(), actor, ports.ProfileInput{Username: &taken}); !errors.Is(err, domain.ErrUsernameTaken) {
		t.Fatalf("expected ErrUsernameTaken, got %v", err)
	}

	empty := ""
	var verr *domain.ValidationError
	if _, err := svc.UpdateProfile(context.Background(), actor, ports.ProfileInput{FirstName: &empty}); !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}

	if _, err := svc.UpdateProfile(context.Background(), domain.AuthContext{}, ports.ProfileInput{Bio: &bio}); !errors.Is(err, domain.ErrAuthRequired) {
		t.Fatalf("expected ErrAuthRequired, got %v", err)
	}
}

func TestAuthService_Me(t *testing.T) {
	svc := newTestAuthService(newStubUserRepo(authorA), nil)

	user, err := svc.Me(context.Background(), authorA.AuthContext())
	if err != nil {
		t.Fatalf("Me: %v", err)
	}
	if user.Username != "alice" {
		t.Fatalf("unexpected user %s", user.Username)
	}
	if _, err := svc.Me(context.Background(), domain.AuthContext{}); !errors.Is(err, domain.ErrAuthRequired) {
		t.Fatalf("expected ErrAuthRequired, got %v", err)
	}
}

func TestAuthService_ProvisionAdmin(t *testing.T) {
	repo := newStubUserRepo()
	svc := newTestAuthService(repo, nil)

	in := registration()
	in.Role = "user"
	reg, err := svc.Register(context.Background(), in)
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	repo.byID[reg.User.ID].IsActive = false

	promoted, created, err := svc.ProvisionAdmin(context.Background(), registration())
	if err != nil {
		t.Fatalf("ProvisionAdmin existing: %v", err)
	}
	if created || promoted.ID != reg.User.ID || promoted.Role != domain.RoleAdmin || !promoted.IsActive {
		t.Fatalf("expected existing user promoted, got %+v created=%v", promoted, created)
	}

	in = registration()
	in.Username, in.Email = "root", "root@news.io"
	fresh, created, err := svc.ProvisionAdmin(context.Background(), in)
	if err != nil {
		t.Fatalf("ProvisionAdmin new: %v", err)
	}
	if !created || fresh.Role != domain.RoleAdmin {
		t.Fatalf("expected new admin, got %+v created=%v", fresh, created)
	}
}
