package domain

import (
	"errors"
	"testing"
)

var (
	anon   = AuthContext{}
	owner  = AuthContext{UserID: "u-owner", Role: RoleAuthor}
	other  = AuthContext{UserID: "u-other", Role: RoleAuthor}
	reader = AuthContext{UserID: "u-reader", Role: RoleUser}
	admin  = AuthContext{UserID: "u-admin", Role: RoleAdmin}
)

func articleWithStatus(s ArticleStatus) *Article {
	return &Article{ID: "a1", AuthorID: "u-owner", Status: s}
}

func TestCanRead(t *testing.T) {
	cases := []struct {
		name    string
		actor   AuthContext
		status  ArticleStatus
		wantErr error
	}{
		{"published anonymous", anon, StatusPublished, nil},
		{"published reader", reader, StatusPublished, nil},
		{"draft anonymous", anon, StatusDraft, ErrAuthRequired},
		{"archived anonymous", anon, StatusArchived, ErrAuthRequired},
		{"draft owner", owner, StatusDraft, nil},
		{"draft admin", admin, StatusDraft, nil},
		{"draft other author", other, StatusDraft, ErrForbidden},
		{"archived reader", reader, StatusArchived, ErrForbidden},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.actor.CanRead(articleWithStatus(tc.status))
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("expected %v, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestCanMutate(t *testing.T) {
	a := articleWithStatus(StatusPublished)

	if err := owner.CanMutate(a); err != nil {
		t.Fatalf("owner should mutate, got %v", err)
	}
	if err := admin.CanMutate(a); err != nil {
		t.Fatalf("admin should mutate, got %v", err)
	}
	if err := other.CanMutate(a); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if err := anon.CanMutate(a); !errors.Is(err, ErrAuthRequired) {
		t.Fatalf("expected ErrAuthRequired, got %v", err)
	}
}

func TestCountsView(t *testing.T) {
	if !anon.CountsView(articleWithStatus(StatusPublished)) {
		t.Fatal("anonymous read of published article should count")
	}
	if owner.CountsView(articleWithStatus(StatusPublished)) {
		t.Fatal("owner read should not count")
	}
	if admin.CountsView(articleWithStatus(StatusDraft)) {
		t.Fatal("draft read should never count")
	}
}

func TestListStatus(t *testing.T) {
	cases := []struct {
		name      string
		actor     AuthContext
		author    string
		requested ArticleStatus
		want      ArticleStatus
	}{
		{"anonymous ignores status", anon, "", StatusDraft, StatusPublished},
		{"anonymous with author filter", anon, "u-owner", StatusDraft, StatusPublished},
		{"reader ignores status", reader, "", StatusArchived, StatusPublished},
		{"reader filtering someone else", reader, "u-owner", StatusDraft, StatusPublished},
		{"reader own filter", reader, "u-reader", StatusDraft, ""},
		{"author own filter lifts status", owner, "u-owner", StatusDraft, ""},
		{"author requests draft", other, "", StatusDraft, StatusDraft},
		{"author default", other, "", "", StatusPublished},
		{"admin requests archived of other", admin, "u-owner", StatusArchived, StatusArchived},
		{"admin default", admin, "", "", StatusPublished},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.actor.ListStatus(tc.author, tc.requested); got != tc.want {
				t.Fatalf("expected %q, got %q", tc.want, got)
			}
		})
	}
}

func TestSetStatus_PublishedAtStampedOnce(t *testing.T) {
	a := articleWithStatus(StatusDraft)
	first := mustTime(t, "2024-01-01T10:00:00Z")
	later := mustTime(t, "2024-02-01T10:00:00Z")

	a.SetStatus(StatusPublished, first)
	a.SetStatus(StatusArchived, later)
	a.SetStatus(StatusPublished, later)

	if a.PublishedAt == nil || !a.PublishedAt.Equal(first) {
		t.Fatalf("expected publishedAt %v, got %v", first, a.PublishedAt)
	}
}

func TestUserHasArticlesError(t *testing.T) {
	var err error = &UserHasArticlesError{Count: 3}
	if !errors.Is(err, ErrUserHasArticles) {
		t.Fatal("expected errors.Is match")
	}
	var typed *UserHasArticlesError
	if !errors.As(err, &typed) || typed.Count != 3 {
		t.Fatalf("expected count 3, got %+v", typed)
	}
}
