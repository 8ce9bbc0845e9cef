package service

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/atjeh-times/news-api/internal/core/domain"
	"github.com/atjeh-times/news-api/internal/core/ports"
)

const recentArticlesLimit = 5

var userSortFields = map[string]bool{
	"createdAt": true,
	"username":  true,
	"email":     true,
	"lastLogin": true,
	"role":      true,
}

// UserService implements account administration and public profiles.
type UserService struct {
	users    ports.UserRepository
	articles ports.ArticleRepository
	logger   zerolog.Logger
	now      func() time.Time
}

func NewUserService(users ports.UserRepository, articles ports.ArticleRepository, logger zerolog.Logger) *UserService {
	return &UserService{users: users, articles: articles, logger: logger, now: time.Now}
}

// List returns a page of accounts with article counts. Admin only.
func (s *UserService) List(ctx context.Context, actor domain.AuthContext, input ports.ListUsersInput) (*ports.UserPage, error) {
	if !actor.IsAdmin() {
		return nil, domain.ErrForbidden
	}

	verr := &domain.ValidationError{}
	role := strings.ToLower(strings.TrimSpace(input.Role))
	if role != "" && !domain.IsValidRole(role) {
		verr.Add("role", "role must be one of: user, author, admin")
	}
	sortBy := strings.TrimSpace(input.SortBy)
	if sortBy == "" {
		sortBy = "createdAt"
	} else if !userSortFields[sortBy] {
		verr.Add("sortBy", "sortBy must be one of: createdAt, username, email, lastLogin, role")
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	page, limit := ports.NormalizePage(input.Page, input.Limit)
	users, total, err := s.users.List(ctx, ports.UserQuery{
		Role:     role,
		Search:   strings.TrimSpace(input.Search),
		SortBy:   sortBy,
		SortDesc: !strings.EqualFold(input.SortOrder, "asc"),
		Skip:     ports.Skip(page, limit),
		Limit:    int64(limit),
	})
	if err != nil {
		return nil, err
	}

	items := make([]ports.UserWithStats, 0, len(users))
	for _, u := range users {
		stats, err := s.stats(ctx, u.ID)
		if err != nil {
			return nil, err
		}
		items = append(items, ports.UserWithStats{User: u, Stats: stats})
	}

	return &ports.UserPage{Items: items, Pagination: ports.NewPagination(page, limit, total)}, nil
}

// Get returns an account with stats and recent articles. Self or admin.
func (s *UserService) Get(ctx context.Context, actor domain.AuthContext, id string) (*ports.UserDetail, error) {
	if !actor.IsAuthenticated() {
		return nil, domain.ErrAuthRequired
	}
	if !actor.IsAdmin() && actor.UserID != id {
		return nil, domain.ErrForbidden
	}

	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	stats, err := s.stats(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	recent, _, err := s.articles.List(ctx, ports.ArticleQuery{
		AuthorID: user.ID,
		SortBy:   ports.SortCreatedAt,
		SortDesc: true,
		Limit:    recentArticlesLimit,
	})
	if err != nil {
		return nil, err
	}

	return &ports.UserDetail{User: user, Stats: stats, RecentArticles: recent}, nil
}

// GetByUsername returns the public profile of an active account.
func (s *UserService) GetByUsername(ctx context.Context, username string) (*ports.PublicProfile, error) {
	user, err := s.users.FindByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		return nil, err
	}
	if !user.IsActive {
		return nil, domain.ErrUserNotFound
	}

	published, err := s.articles.CountByAuthor(ctx, user.ID, domain.StatusPublished)
	if err != nil {
		return nil, err
	}
	return &ports.PublicProfile{User: user, PublishedArticles: published}, nil
}

// Update changes role, activation or profile fields of any account. Admin
// only; admins cannot deactivate themselves.
func (s *UserService) Update(ctx context.Context, actor domain.AuthContext, id string, input ports.UpdateUserInput) (*domain.User, error) {
	if !actor.IsAdmin() {
		return nil, domain.ErrForbidden
	}
	if input.IsActive != nil && !*input.IsActive && id == actor.UserID {
		return nil, domain.ErrSelfDeactivation
	}

	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	verr := &domain.ValidationError{}
	if input.Role != nil {
		role := strings.ToLower(strings.TrimSpace(*input.Role))
		if domain.IsValidRole(role) {
			user.Role = role
		} else {
			verr.Add("role", "role must be one of: user, author, admin")
		}
	}
	if input.IsActive != nil {
		user.IsActive = *input.IsActive
	}
	if input.FirstName != nil {
		user.FirstName = strings.TrimSpace(*input.FirstName)
		checkName(verr, "firstName", user.FirstName)
	}
	if input.LastName != nil {
		user.LastName = strings.TrimSpace(*input.LastName)
		checkName(verr, "lastName", user.LastName)
	}
	if input.Bio != nil {
		user.Bio = strings.TrimSpace(*input.Bio)
		checkBio(verr, user.Bio)
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	user.UpdatedAt = s.now().UTC()
	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info().Str("user_id", user.ID).Str("role", user.Role).Bool("active", user.IsActive).Str("actor_id", actor.UserID).Msg("user updated")
	return user, nil
}

// Delete removes an account that owns no articles. Admin only; admins cannot
// delete themselves.
func (s *UserService) Delete(ctx context.Context, actor domain.AuthContext, id string) error {
	if !actor.IsAdmin() {
		return domain.ErrForbidden
	}
	if id == actor.UserID {
		return domain.ErrSelfDeletion
	}

	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return err
	}

	owned, err := s.articles.CountByAuthor(ctx, user.ID, "")
	if err != nil {
		return err
	}
	if owned > 0 {
		return &domain.UserHasArticlesError{Count: owned}
	}

	if err := s.users.Delete(ctx, user.ID); err != nil {
		return err
	}

	s.logger.Info().Str("user_id", user.ID).Str("actor_id", actor.UserID).Msg("user deleted")
	return nil
}

// Authors lists active authors and admins with their published article counts.
func (s *UserService) Authors(ctx context.Context) ([]ports.AuthorSummary, error) {
	users, err := s.users.ListAuthors(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]ports.AuthorSummary, 0, len(users))
	for _, u := range users {
		n, err := s.articles.CountByAuthor(ctx, u.ID, domain.StatusPublished)
		if err != nil {
			return nil, err
		}
		out = append(out, ports.AuthorSummary{User: u, ArticleCount: n})
	}
	return out, nil
}

// DashboardStats returns site-wide counts for admins and the requester's own
// counts for everyone else.
func (s *UserService) DashboardStats(ctx context.Context, actor domain.AuthContext) (*ports.DashboardStats, error) {
	if !actor.IsAuthenticated() {
		return nil, domain.ErrAuthRequired
	}

	authorID := actor.UserID
	if actor.IsAdmin() {
		authorID = ""
	}

	count := func(status domain.ArticleStatus) (int64, error) {
		if authorID == "" {
			return s.articles.CountByStatus(ctx, status)
		}
		return s.articles.CountByAuthor(ctx, authorID, status)
	}

	var (
		stats ports.DashboardStats
		err   error
	)
	if stats.TotalArticles, err = count(""); err != nil {
		return nil, err
	}
	if stats.PublishedArticles, err = count(domain.StatusPublished); err != nil {
		return nil, err
	}
	if stats.DraftArticles, err = count(domain.StatusDraft); err != nil {
		return nil, err
	}
	if stats.ArchivedArticles, err = count(domain.StatusArchived); err != nil {
		return nil, err
	}
	if stats.TotalViews, err = s.articles.TotalViews(ctx, authorID); err != nil {
		return nil, err
	}

	if actor.IsAdmin() {
		uc := &ports.UserCounts{}
		if uc.Total, err = s.users.Count(ctx, ""); err != nil {
			return nil, err
		}
		if uc.Authors, err = s.users.Count(ctx, domain.RoleAuthor); err != nil {
			return nil, err
		}
		if uc.Admins, err = s.users.Count(ctx, domain.RoleAdmin); err != nil {
			return nil, err
		}
		if uc.Readers, err = s.users.Count(ctx, domain.RoleUser); err != nil {
			return nil, err
		}
		stats.Users = uc
	}

	return &stats, nil
}

func (s *UserService) stats(ctx context.Context, userID string) (ports.UserStats, error) {
	total, err := s.articles.CountByAuthor(ctx, userID, "")
	if err != nil {
		return ports.UserStats{}, err
	}
	published, err := s.articles.CountByAuthor(ctx, userID, domain.StatusPublished)
	if err != nil {
		return ports.UserStats{}, err
	}
	return ports.UserStats{TotalArticles: total, PublishedArticles: published}, nil
}
