package domain

import (
	"slices"
	"strings"
	"time"
)

// ArticleStatus represents the editorial state of an article.
type ArticleStatus string

const (
	StatusDraft     ArticleStatus = "draft"
	StatusPublished ArticleStatus = "published"
	StatusArchived  ArticleStatus = "archived"
)

const (
	MaxTitleLength          = 200
	MaxExcerptLength        = 300
	MaxCommentLength        = 1000
	MaxSEOTitleLength       = 60
	MaxSEODescriptionLength = 160
)

func (s ArticleStatus) IsValid() bool {
	switch s {
	case StatusDraft, StatusPublished, StatusArchived:
		return true
	}
	return false
}

// Category is one entry of the fixed section list.
type Category struct {
	Slug        string
	Name        string
	Description string
}

var Categories = []Category{
	{Slug: "politics", Name: "Politics", Description: "Government, elections and public policy"},
	{Slug: "business", Name: "Business", Description: "Markets, companies and the economy"},
	{Slug: "technology", Name: "Technology", Description: "Gadgets, software and the tech industry"},
	{Slug: "sports", Name: "Sports", Description: "Matches, athletes and competitions"},
	{Slug: "entertainment", Name: "Entertainment", Description: "Film, music, television and culture"},
	{Slug: "health", Name: "Health", Description: "Medicine, wellbeing and public health"},
	{Slug: "science", Name: "Science", Description: "Research, discoveries and the natural world"},
	{Slug: "world", Name: "World", Description: "International news and affairs"},
	{Slug: "local", Name: "Local", Description: "News from our own communities"},
	{Slug: "opinion", Name: "Opinion", Description: "Columns, editorials and analysis"},
}

// IsValidCategory reports whether c (case-insensitive) is one of Categories.
func IsValidCategory(c string) bool {
	c = strings.ToLower(c)
	return slices.ContainsFunc(Categories, func(cat Category) bool { return cat.Slug == c })
}

// Comment is a reader comment embedded in its article.
type Comment struct {
	ID        string
	UserID    string
	Text      string
	CreatedAt time.Time
}

// Article is a news story and its engagement counters.
type Article struct {
	ID             string
	Title          string
	Slug           string
	Content        string
	Excerpt        string
	FeaturedImage  string
	Category       string
	Tags           []string
	AuthorID       string
	Status         ArticleStatus
	PublishedAt    *time.Time
	Views          int64
	ReadTime       int
	Likes          []string
	Comments       []Comment
	Featured       bool
	SEOTitle       string
	SEODescription string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (a *Article) IsPublished() bool {
	return a.Status == StatusPublished
}

func (a *Article) IsOwnedBy(userID string) bool {
	return userID != "" && a.AuthorID == userID
}

func (a *Article) LikeCount() int {
	return len(a.Likes)
}

func (a *Article) CommentCount() int {
	return len(a.Comments)
}

func (a *Article) HasLiked(userID string) bool {
	return slices.Contains(a.Likes, userID)
}

// SetStatus applies a status change. PublishedAt is stamped the first time the
// article becomes published and is never overwritten afterwards.
func (a *Article) SetStatus(status ArticleStatus, now time.Time) {
	a.Status = status
	if status == StatusPublished && a.PublishedAt == nil {
		t := now
		a.PublishedAt = &t
	}
}

// NormalizeTags lowercases and trims tags, dropping empty entries and duplicates.
func NormalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" || slices.Contains(out, t) {
			continue
		}
		out = append(out, t)
	}
	return out
}
