package handler

import (
	"errors"
	"testing"

	"github.com/atjeh-times/news-api/internal/core/domain"
)

func TestValidator_UsesJSONFieldNames(t *testing.T) {
	err := NewValidator().Validate(&loginRequest{Email: "not-an-email"})

	var verr *domain.ValidationError
	if !errors.As(err, &verr) || len(verr.Fields) != 2 {
		t.Fatalf("expected two field errors, got %v", err)
	}
	if verr.Fields[0].Field != "email" || verr.Fields[0].Message != "please provide a valid email" {
		t.Fatalf("unexpected first error %+v", verr.Fields[0])
	}
	if verr.Fields[1].Field != "password" || verr.Fields[1].Message != "password is required" {
		t.Fatalf("unexpected second error %+v", verr.Fields[1])
	}
}

func TestValidator_CustomRules(t *testing.T) {
	v := NewValidator()
	base := registerRequest{Email: "a@news.io", FirstName: "A", LastName: "B"}

	cases := []struct {
		username, password string
		ok                 bool
	}{
		{"alice_01", "Passw0rd", true},
		{"al", "Passw0rd", false},
		{"alice smith", "Passw0rd", false},
		{"alice", "password1", false},
		{"alice", "PASSWORD1", false},
		{"alice", "Pass1", false},
	}
	for _, tc := range cases {
		req := base
		req.Username, req.Password = tc.username, tc.password
		if err := v.Validate(&req); (err == nil) != tc.ok {
			t.Fatalf("%q/%q: expected ok=%v, got %v", tc.username, tc.password, tc.ok, err)
		}
	}
}
