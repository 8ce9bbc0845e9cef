package config

import (
	"os"
	"testing"
	"time"
)

// unsetEnv clears keys for the duration of the test.
func unsetEnv(t *testing.T, keys ...string) {
	t.Helper()
	for _, k := range keys {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}

func TestLoad_Defaults(t *testing.T) {
	unsetEnv(t, "ENV", "PORT", "JWT_EXPIRE", "MAX_IMAGE_BYTES", "UPLOAD_FOLDER", "VERIFY_EMAIL_EXISTENCE")
	t.Setenv("JWT_SECRET", "s3cret")

	cfg := Load()

	if cfg.Port != "5000" || cfg.Env != "development" {
		t.Fatalf("unexpected server defaults: %+v", cfg)
	}
	if cfg.Auth.JWTExpire != 7*24*time.Hour {
		t.Fatalf("expected 7 day token expiry, got %s", cfg.Auth.JWTExpire)
	}
	if cfg.Media.MaxImageBytes != 10<<20 || cfg.Media.Folder != "news-site/articles" {
		t.Fatalf("unexpected media defaults: %+v", cfg.Media)
	}
	if cfg.VerifyEmails() {
		t.Fatalf("email verification should be off in development")
	}
}

func TestLoad_EmailVerificationSwitch(t *testing.T) {
	unsetEnv(t, "VERIFY_EMAIL_EXISTENCE")
	t.Setenv("JWT_SECRET", "s3cret")

	t.Setenv("ENV", "production")
	if !Load().VerifyEmails() {
		t.Fatalf("production must verify emails")
	}

	t.Setenv("ENV", "staging")
	t.Setenv("VERIFY_EMAIL_EXISTENCE", "true")
	cfg := Load()
	if !cfg.VerifyEmails() || cfg.IsDevelopment() {
		t.Fatalf("explicit switch must enable verification")
	}
}

func TestLoad_MissingSecretPanics(t *testing.T) {
	unsetEnv(t, "JWT_SECRET")

	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic without JWT_SECRET")
		}
	}()
	Load()
}

func TestLoadMongo_WithoutSecret(t *testing.T) {
	unsetEnv(t, "JWT_SECRET", "MONGO_URI")
	t.Setenv("MONGO_DB", "newsroom-test")

	cfg := LoadMongo()
	if cfg.URI != "mongodb://localhost:27017" || cfg.Database != "newsroom-test" {
		t.Fatalf("unexpected mongo config %+v", cfg)
	}
}
