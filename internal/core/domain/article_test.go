package domain

import (
	"slices"
	"testing"
	"time"
)

func mustTime(t *testing.T, s string) time.Time {
	t.Helper()
	ts, err := time.Parse(time.RFC3339, s)
	if err != nil {
		t.Fatalf("parse time: %v", err)
	}
	return ts
}

func TestIsValidCategory(t *testing.T) {
	for _, c := range []string{"sports", "Technology", "OPINION"} {
		if !IsValidCategory(c) {
			t.Fatalf("expected %q to be valid", c)
		}
	}
	for _, c := range []string{"", "lifestyle", "sport"} {
		if IsValidCategory(c) {
			t.Fatalf("expected %q to be invalid", c)
		}
	}
}

func TestNormalizeTags(t *testing.T) {
	got := NormalizeTags([]string{" Go ", "go", "", "Elections", "  "})
	want := []string{"go", "elections"}
	if !slices.Equal(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestArticleLikes(t *testing.T) {
	a := &Article{Likes: []string{"u1", "u2"}}
	if !a.HasLiked("u1") || a.HasLiked("u3") {
		t.Fatal("unexpected HasLiked result")
	}
	if a.LikeCount() != 2 {
		t.Fatalf("expected 2 likes, got %d", a.LikeCount())
	}
}
