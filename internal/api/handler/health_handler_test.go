package handler

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/atjeh-times/news-api/internal/core/domain"
)

func TestHealthHandler_Liveness(t *testing.T) {
	c, rec := newContext(http.MethodGet, "/api/health", nil, domain.AuthContext{})

	if err := NewHealthHandler().Liveness(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK || decode(t, rec)["status"] != "ok" {
		t.Fatalf("unexpected liveness %d %s", rec.Code, rec.Body.String())
	}
}

func TestHealthHandler_Readiness(t *testing.T) {
	ok := DependencyCheck{Name: "mongodb", Ping: func(context.Context) error { return nil }}
	down := DependencyCheck{Name: "redis", Ping: func(context.Context) error { return errors.New("connection refused") }}

	c, rec := newContext(http.MethodGet, "/api/health/ready", nil, domain.AuthContext{})
	if err := NewHealthHandler(ok).Readiness(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	c, rec = newContext(http.MethodGet, "/api/health/ready", nil, domain.AuthContext{})
	if err := NewHealthHandler(ok, down).Readiness(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
	resp := decode(t, rec)
	deps := resp["dependencies"].(map[string]any)
	if resp["status"] != "degraded" || deps["redis"].(map[string]any)["error"] != "connection refused" {
		t.Fatalf("unexpected readiness %v", resp)
	}
}
