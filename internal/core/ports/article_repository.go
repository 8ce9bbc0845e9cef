package ports

import (
	"context"

	"github.com/atjeh-times/news-api/internal/core/domain"
)

// Sortable article fields accepted by ArticleQuery.SortBy.
const (
	SortPublishedAt = "publishedAt"
	SortCreatedAt   = "createdAt"
	SortUpdatedAt   = "updatedAt"
	SortViews       = "views"
	SortTitle       = "title"
	SortReadTime    = "readTime"
)

// ArticleQuery is the storage-agnostic form of a listing request, after the
// access rules have been applied. Zero values mean "no filter".
type ArticleQuery struct {
	Status   domain.ArticleStatus
	Category string
	AuthorID string
	Tags     []string
	Search   string
	Featured *bool
	SortBy   string
	SortDesc bool
	Skip     int64
	Limit    int64
}

// ArticleRepository defines persistence operations for articles.
type ArticleRepository interface {
	// Create inserts the article and assigns its ID. Returns domain.ErrSlugTaken
	// when the slug collides with an existing article.
	Create(ctx context.Context, a *domain.Article) error
	FindByID(ctx context.Context, id string) (*domain.Article, error)
	FindBySlug(ctx context.Context, slug string) (*domain.Article, error)
	// List returns a page of articles matching q and the total match count.
	List(ctx context.Context, q ArticleQuery) ([]*domain.Article, int64, error)
	// Update overwrites the editable fields of an existing article.
	Update(ctx context.Context, a *domain.Article) error
	Delete(ctx context.Context, id string) error

	// IncrementViews atomically adds one to the view counter.
	IncrementViews(ctx context.Context, id string) error
	AddComment(ctx context.Context, articleID string, c domain.Comment) error
	// SetLike adds or removes userID from the likes set and returns the new count.
	SetLike(ctx context.Context, articleID, userID string, liked bool) (int, error)

	// CountByAuthor counts an author's articles; an empty status counts all.
	CountByAuthor(ctx context.Context, authorID string, status domain.ArticleStatus) (int64, error)
	// CountByStatus counts all articles; an empty status counts all.
	CountByStatus(ctx context.Context, status domain.ArticleStatus) (int64, error)
	CountPublishedByCategory(ctx context.Context) (map[string]int64, error)
	// TotalViews sums views across an author's articles, or all articles when authorID is empty.
	TotalViews(ctx context.Context, authorID string) (int64, error)
}
