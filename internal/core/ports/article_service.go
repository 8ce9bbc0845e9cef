package ports

import (
	"context"

	"github.com/atjeh-times/news-api/internal/core/domain"
)

// ListArticlesInput carries the raw listing parameters of GET /articles.
type ListArticlesInput struct {
	Page      int
	Limit     int
	Category  string
	AuthorID  string
	Status    string
	Search    string
	Tags      string // comma separated
	Featured  *bool
	SortBy    string
	SortOrder string // asc | desc
}

// CreateArticleInput carries the fields of a new article.
type CreateArticleInput struct {
	Title          string
	Content        string
	Excerpt        string
	FeaturedImage  string
	Category       string
	Tags           []string
	Status         string
	Featured       bool
	SEOTitle       string
	SEODescription string
}

// UpdateArticleInput is a partial update; nil fields are left untouched.
type UpdateArticleInput struct {
	Title          *string
	Content        *string
	Excerpt        *string
	FeaturedImage  *string
	Category       *string
	Tags           []string
	Status         *string
	Featured       *bool
	SEOTitle       *string
	SEODescription *string
}

// ArticleSummary pairs an article with its resolved author.
type ArticleSummary struct {
	Article *domain.Article
	Author  *domain.User
}

// ArticlePage is one page of a listing.
type ArticlePage struct {
	Items      []ArticleSummary
	Pagination Pagination
}

// ArticleDetail is the full single-article view.
type ArticleDetail struct {
	Article     *domain.Article
	Author      *domain.User
	Commenters  map[string]*domain.User
	ContentHTML string
}

// CommentView is a freshly added comment with its author.
type CommentView struct {
	Comment domain.Comment
	User    *domain.User
}

// LikeResult is the outcome of a like toggle.
type LikeResult struct {
	LikeCount int
	Liked     bool
}

// CategoryCount is a category with its number of published articles.
type CategoryCount struct {
	Category domain.Category
	Count    int64
}

// ArticleService defines the article use cases. Every call receives the
// requester explicitly.
type ArticleService interface {
	List(ctx context.Context, actor domain.AuthContext, input ListArticlesInput) (*ArticlePage, error)
	ListByAuthor(ctx context.Context, authorID string, page, limit int) (*ArticlePage, error)
	GetBySlug(ctx context.Context, actor domain.AuthContext, slug string) (*ArticleDetail, error)
	GetByID(ctx context.Context, actor domain.AuthContext, id string) (*ArticleDetail, error)
	Create(ctx context.Context, actor domain.AuthContext, input CreateArticleInput) (*ArticleDetail, error)
	Update(ctx context.Context, actor domain.AuthContext, id string, input UpdateArticleInput) (*ArticleDetail, error)
	Delete(ctx context.Context, actor domain.AuthContext, id string) error
	AddComment(ctx context.Context, actor domain.AuthContext, id, text string) (*CommentView, error)
	ToggleLike(ctx context.Context, actor domain.AuthContext, id string) (*LikeResult, error)
	Categories(ctx context.Context) ([]CategoryCount, error)
}
