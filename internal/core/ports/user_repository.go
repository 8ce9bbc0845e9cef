package ports

import (
	"context"
	"time"

	"github.com/atjeh-times/news-api/internal/core/domain"
)

// UserQuery carries the admin listing filters for users.
type UserQuery struct {
	Role     string
	Search   string
	SortBy   string
	SortDesc bool
	Skip     int64
	Limit    int64
}

// UserRepository defines persistence operations for user accounts.
type UserRepository interface {
	// Create inserts the user and assigns its ID. Returns domain.ErrUserExists on
	// a duplicate email or username.
	Create(ctx context.Context, u *domain.User) error
	FindByID(ctx context.Context, id string) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	// FindByIDs returns the users found, keyed by ID. Missing IDs are skipped.
	FindByIDs(ctx context.Context, ids []string) (map[string]*domain.User, error)
	ExistsByEmailOrUsername(ctx context.Context, email, username string) (bool, error)
	// Update overwrites the profile, role and activation fields. Returns
	// domain.ErrUsernameTaken when the new username collides.
	Update(ctx context.Context, u *domain.User) error
	UpdateLastLogin(ctx context.Context, id string, at time.Time) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, q UserQuery) ([]*domain.User, int64, error)
	// ListAuthors returns active users holding the author or admin role.
	ListAuthors(ctx context.Context) ([]*domain.User, error)
	// Count counts users; an empty role counts all.
	Count(ctx context.Context, role string) (int64, error)
}
