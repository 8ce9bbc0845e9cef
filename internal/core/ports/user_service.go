package ports

import (
	"context"

	"github.com/atjeh-times/news-api/internal/core/domain"
)

// ListUsersInput carries the admin user listing parameters.
type ListUsersInput struct {
	Page      int
	Limit     int
	Role      string
	Search    string
	SortBy    string
	SortOrder string
}

// UpdateUserInput is an admin edit; nil fields are left untouched.
type UpdateUserInput struct {
	Role      *string
	IsActive  *bool
	FirstName *string
	LastName  *string
	Bio       *string
}

// UserStats counts a user's articles.
type UserStats struct {
	TotalArticles     int64
	PublishedArticles int64
}

type UserWithStats struct {
	User  *domain.User
	Stats UserStats
}

type UserPage struct {
	Items      []UserWithStats
	Pagination Pagination
}

// UserDetail is the self-or-admin view of an account.
type UserDetail struct {
	User           *domain.User
	Stats          UserStats
	RecentArticles []*domain.Article
}

// PublicProfile is what anyone may see about an author.
type PublicProfile struct {
	User              *domain.User
	PublishedArticles int64
}

// AuthorSummary is a public author entry with its published article count.
type AuthorSummary struct {
	User         *domain.User
	ArticleCount int64
}

// DashboardStats holds site-wide counts for admins and personal counts for
// everyone else. Users is only filled for admins.
type DashboardStats struct {
	TotalArticles     int64
	PublishedArticles int64
	DraftArticles     int64
	ArchivedArticles  int64
	TotalViews        int64
	Users             *UserCounts
}

type UserCounts struct {
	Total   int64
	Authors int64
	Admins  int64
	Readers int64
}

type UserService interface {
	List(ctx context.Context, actor domain.AuthContext, input ListUsersInput) (*UserPage, error)
	Get(ctx context.Context, actor domain.AuthContext, id string) (*UserDetail, error)
	GetByUsername(ctx context.Context, username string) (*PublicProfile, error)
	Update(ctx context.Context, actor domain.AuthContext, id string, input UpdateUserInput) (*domain.User, error)
	Delete(ctx context.Context, actor domain.AuthContext, id string) error
	Authors(ctx context.Context) ([]AuthorSummary, error)
	DashboardStats(ctx context.Context, actor domain.AuthContext) (*DashboardStats, error)
}
