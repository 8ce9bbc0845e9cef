package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/atjeh-times/news-api/internal/core/domain"
	"github.com/atjeh-times/news-api/internal/core/ports"
	"github.com/atjeh-times/news-api/internal/pkg/content"
	"github.com/atjeh-times/news-api/internal/pkg/metrics"
)

// slugAttempts bounds how many millisecond suffixes Create tries before
// giving up on a colliding slug.
const slugAttempts = 5

var objectIDPattern = regexp.MustCompile(`^[0-9a-fA-F]{24}$`)

var sortableFields = map[string]bool{
	ports.SortPublishedAt: true,
	ports.SortCreatedAt:   true,
	ports.SortUpdatedAt:   true,
	ports.SortViews:       true,
	ports.SortTitle:       true,
	ports.SortReadTime:    true,
}

type ArticleService struct {
	articles ports.ArticleRepository
	users    ports.UserRepository
	media    ports.MediaStore
	logger   zerolog.Logger
	now      func() time.Time
}

func NewArticleService(articles ports.ArticleRepository, users ports.UserRepository, media ports.MediaStore, logger zerolog.Logger) *ArticleService {
	return &ArticleService{
		articles: articles,
		users:    users,
		media:    media,
		logger:   logger,
		now:      time.Now,
	}
}

// List returns one page of articles visible to actor.
func (s *ArticleService) List(ctx context.Context, actor domain.AuthContext, input ports.ListArticlesInput) (*ports.ArticlePage, error) {
	q, page, limit, err := buildListQuery(actor, input)
	if err != nil {
		return nil, err
	}
	return s.page(ctx, q, page, limit)
}

// ListByAuthor returns an author's published articles, newest first.
func (s *ArticleService) ListByAuthor(ctx context.Context, authorID string, page, limit int) (*ports.ArticlePage, error) {
	page, limit = ports.NormalizePage(page, limit)
	q := ports.ArticleQuery{
		Status:   domain.StatusPublished,
		AuthorID: authorID,
		SortBy:   ports.SortPublishedAt,
		SortDesc: true,
		Skip:     ports.Skip(page, limit),
		Limit:    int64(limit),
	}
	return s.page(ctx, q, page, limit)
}

func (s *ArticleService) page(ctx context.Context, q ports.ArticleQuery, page, limit int) (*ports.ArticlePage, error) {
	items, total, err := s.articles.List(ctx, q)
	if err != nil {
		return nil, err
	}

	authors, err := s.users.FindByIDs(ctx, authorIDs(items))
	if err != nil {
		return nil, err
	}

	summaries := make([]ports.ArticleSummary, 0, len(items))
	for _, a := range items {
		summaries = append(summaries, ports.ArticleSummary{Article: a, Author: authors[a.AuthorID]})
	}

	return &ports.ArticlePage{
		Items:      summaries,
		Pagination: ports.NewPagination(page, limit, total),
	}, nil
}

// buildListQuery validates the raw listing parameters and applies the
// visibility rules of actor to produce the repository query.
func buildListQuery(actor domain.AuthContext, input ports.ListArticlesInput) (ports.ArticleQuery, int, int, error) {
	verr := &domain.ValidationError{}

	requested := domain.ArticleStatus(strings.ToLower(strings.TrimSpace(input.Status)))
	if requested != "" && !requested.IsValid() {
		verr.Add("status", "status must be one of: draft, published, archived")
	}

	sortBy := strings.TrimSpace(input.SortBy)
	if sortBy == "" {
		sortBy = ports.SortPublishedAt
	} else if !sortableFields[sortBy] {
		verr.Add("sortBy", "sortBy must be one of: publishedAt, createdAt, updatedAt, views, title, readTime")
	}

	order := strings.ToLower(strings.TrimSpace(input.SortOrder))
	if order != "" && order != "asc" && order != "desc" {
		verr.Add("sortOrder", "sortOrder must be asc or desc")
	}

	if err := verr.OrNil(); err != nil {
		return ports.ArticleQuery{}, 0, 0, err
	}

	page, limit := ports.NormalizePage(input.Page, input.Limit)
	authorID := strings.TrimSpace(input.AuthorID)

	var tags []string
	if input.Tags != "" {
		tags = domain.NormalizeTags(strings.Split(input.Tags, ","))
	}

	q := ports.ArticleQuery{
		Status:   actor.ListStatus(authorID, requested),
		Category: strings.ToLower(strings.TrimSpace(input.Category)),
		AuthorID: authorID,
		Tags:     tags,
		Search:   strings.TrimSpace(input.Search),
		Featured: input.Featured,
		SortBy:   sortBy,
		SortDesc: order != "asc",
		Skip:     ports.Skip(page, limit),
		Limit:    int64(limit),
	}
	return q, page, limit, nil
}

// GetBySlug resolves an article by slug, or by ID when the value has the shape
// of a document ID, and applies the visibility rules.
func (s *ArticleService) GetBySlug(ctx context.Context, actor domain.AuthContext, slug string) (*ports.ArticleDetail, error) {
	var (
		a   *domain.Article
		err error
	)
	if objectIDPattern.MatchString(slug) {
		a, err = s.articles.FindByID(ctx, slug)
	}
	if a == nil && (err == nil || errors.Is(err, domain.ErrArticleNotFound)) {
		a, err = s.articles.FindBySlug(ctx, slug)
	}
	if err != nil {
		return nil, err
	}
	return s.read(ctx, actor, a)
}

func (s *ArticleService) GetByID(ctx context.Context, actor domain.AuthContext, id string) (*ports.ArticleDetail, error) {
	a, err := s.articles.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.read(ctx, actor, a)
}

func (s *ArticleService) read(ctx context.Context, actor domain.AuthContext, a *domain.Article) (*ports.ArticleDetail, error) {
	if err := actor.CanRead(a); err != nil {
		return nil, err
	}

	if actor.CountsView(a) {
		if err := s.articles.IncrementViews(ctx, a.ID); err != nil {
			s.logger.Warn().Err(err).Str("article_id", a.ID).Msg("failed to increment views")
		} else {
			a.Views++
			metrics.ArticleViewsTotal.WithLabelValues(a.Category).Inc()
		}
	}

	return s.detail(ctx, a)
}

// Create stores a new article owned by actor.
func (s *ArticleService) Create(ctx context.Context, actor domain.AuthContext, input ports.CreateArticleInput) (*ports.ArticleDetail, error) {
	if !actor.CanAuthor() {
		return nil, domain.ErrForbidden
	}

	a := &domain.Article{
		Title:          strings.TrimSpace(input.Title),
		Content:        input.Content,
		Excerpt:        strings.TrimSpace(input.Excerpt),
		FeaturedImage:  strings.TrimSpace(input.FeaturedImage),
		Category:       strings.ToLower(strings.TrimSpace(input.Category)),
		Tags:           domain.NormalizeTags(input.Tags),
		AuthorID:       actor.UserID,
		Featured:       input.Featured,
		SEOTitle:       strings.TrimSpace(input.SEOTitle),
		SEODescription: strings.TrimSpace(input.SEODescription),
	}

	status := domain.ArticleStatus(strings.ToLower(strings.TrimSpace(input.Status)))
	if status == "" {
		status = domain.StatusDraft
	}

	verr := validateArticle(a)
	if strings.TrimSpace(a.Content) == "" {
		verr.Add("content", "content is required")
	}
	if !status.IsValid() {
		verr.Add("status", "status must be one of: draft, published, archived")
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	a.CreatedAt = now
	a.UpdatedAt = now
	a.ReadTime = content.ReadTime(a.Content)
	if a.Excerpt == "" {
		a.Excerpt = content.Excerpt(a.Content)
	}
	a.SetStatus(status, now)

	var err error
	for attempt := range slugAttempts {
		a.Slug = content.UniqueSlug(a.Title, now.Add(time.Duration(attempt)*time.Millisecond))
		if err = s.articles.Create(ctx, a); !errors.Is(err, domain.ErrSlugTaken) {
			break
		}
	}
	if err != nil {
		s.logger.Error().Err(err).Str("author_id", actor.UserID).Msg("failed to create article")
		return nil, err
	}

	metrics.ArticlesCreatedTotal.WithLabelValues(a.Category, string(a.Status)).Inc()
	s.logger.Info().Str("article_id", a.ID).Str("slug", a.Slug).Str("author_id", actor.UserID).Msg("article created")

	return s.detail(ctx, a)
}

// Update applies a partial edit. Only the owner or an admin may update; the
// slug and author never change.
func (s *ArticleService) Update(ctx context.Context, actor domain.AuthContext, id string, input ports.UpdateArticleInput) (*ports.ArticleDetail, error) {
	a, err := s.articles.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := actor.CanMutate(a); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	previousImage := a.FeaturedImage
	contentChanged := false
	verr := &domain.ValidationError{}

	if input.Title != nil {
		a.Title = strings.TrimSpace(*input.Title)
	}
	if input.Content != nil {
		if strings.TrimSpace(*input.Content) == "" {
			verr.Add("content", "content cannot be empty")
		} else if *input.Content != a.Content {
			a.Content = *input.Content
			a.ReadTime = content.ReadTime(a.Content)
			contentChanged = true
		}
	}
	if input.Excerpt != nil {
		a.Excerpt = strings.TrimSpace(*input.Excerpt)
	}
	if input.FeaturedImage != nil && strings.TrimSpace(*input.FeaturedImage) != "" {
		a.FeaturedImage = strings.TrimSpace(*input.FeaturedImage)
	}
	if input.Category != nil {
		a.Category = strings.ToLower(strings.TrimSpace(*input.Category))
	}
	if input.Tags != nil {
		a.Tags = domain.NormalizeTags(input.Tags)
	}
	if input.Featured != nil {
		a.Featured = *input.Featured
	}
	if input.SEOTitle != nil {
		a.SEOTitle = strings.TrimSpace(*input.SEOTitle)
	}
	if input.SEODescription != nil {
		a.SEODescription = strings.TrimSpace(*input.SEODescription)
	}
	if input.Status != nil {
		status := domain.ArticleStatus(strings.ToLower(strings.TrimSpace(*input.Status)))
		if status.IsValid() {
			a.SetStatus(status, now)
		} else {
			verr.Add("status", "status must be one of: draft, published, archived")
		}
	}

	verr.Fields = append(verr.Fields, validateArticle(a).Fields...)
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	if contentChanged && a.Excerpt == "" {
		a.Excerpt = content.Excerpt(a.Content)
	}
	a.UpdatedAt = now

	if err := s.articles.Update(ctx, a); err != nil {
		s.logger.Error().Err(err).Str("article_id", a.ID).Msg("failed to update article")
		return nil, err
	}

	if previousImage != a.FeaturedImage {
		s.discardImage(ctx, previousImage)
	}

	s.logger.Info().Str("article_id", a.ID).Str("actor_id", actor.UserID).Msg("article updated")
	return s.detail(ctx, a)
}

// Delete removes the article and, best effort, its hosted image.
func (s *ArticleService) Delete(ctx context.Context, actor domain.AuthContext, id string) error {
	a, err := s.articles.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := actor.CanMutate(a); err != nil {
		return err
	}

	if err := s.articles.Delete(ctx, a.ID); err != nil {
		s.logger.Error().Err(err).Str("article_id", a.ID).Msg("failed to delete article")
		return err
	}

	s.discardImage(ctx, a.FeaturedImage)
	s.logger.Info().Str("article_id", a.ID).Str("actor_id", actor.UserID).Msg("article deleted")
	return nil
}

// AddComment appends a comment to a published article.
func (s *ArticleService) AddComment(ctx context.Context, actor domain.AuthContext, id, text string) (*ports.CommentView, error) {
	if !actor.IsAuthenticated() {
		return nil, domain.ErrAuthRequired
	}

	text = strings.TrimSpace(text)
	switch {
	case text == "":
		return nil, domain.NewValidationError("comment", "comment is required")
	case utf8.RuneCountInString(text) > domain.MaxCommentLength:
		return nil, domain.NewValidationError("comment", fmt.Sprintf("comment must be at most %d characters", domain.MaxCommentLength))
	}

	a, err := s.articles.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !a.IsPublished() {
		return nil, domain.ErrArticleNotPublished
	}

	c := domain.Comment{
		ID:        uuid.NewString(),
		UserID:    actor.UserID,
		Text:      text,
		CreatedAt: s.now().UTC(),
	}
	if err := s.articles.AddComment(ctx, a.ID, c); err != nil {
		return nil, err
	}
	metrics.ArticleEngagementTotal.WithLabelValues("comment").Inc()

	user, err := s.users.FindByID(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}
	return &ports.CommentView{Comment: c, User: user}, nil
}

// ToggleLike flips actor's like on a published article.
func (s *ArticleService) ToggleLike(ctx context.Context, actor domain.AuthContext, id string) (*ports.LikeResult, error) {
	if !actor.IsAuthenticated() {
		return nil, domain.ErrAuthRequired
	}

	a, err := s.articles.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !a.IsPublished() {
		return nil, domain.ErrArticleNotPublished
	}

	liked := !a.HasLiked(actor.UserID)
	count, err := s.articles.SetLike(ctx, a.ID, actor.UserID, liked)
	if err != nil {
		return nil, err
	}

	action := "unlike"
	if liked {
		action = "like"
	}
	metrics.ArticleEngagementTotal.WithLabelValues(action).Inc()

	return &ports.LikeResult{LikeCount: count, Liked: liked}, nil
}

// Categories lists the fixed sections with their published article counts.
func (s *ArticleService) Categories(ctx context.Context) ([]ports.CategoryCount, error) {
	counts, err := s.articles.CountPublishedByCategory(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]ports.CategoryCount, 0, len(domain.Categories))
	for _, c := range domain.Categories {
		out = append(out, ports.CategoryCount{Category: c, Count: counts[c.Slug]})
	}
	return out, nil
}

func (s *ArticleService) detail(ctx context.Context, a *domain.Article) (*ports.ArticleDetail, error) {
	ids := []string{a.AuthorID}
	for _, c := range a.Comments {
		ids = append(ids, c.UserID)
	}

	users, err := s.users.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	html, err := content.RenderHTML(a.Content)
	if err != nil {
		s.logger.Warn().Err(err).Str("article_id", a.ID).Msg("failed to render content")
	}

	return &ports.ArticleDetail{
		Article:     a,
		Author:      users[a.AuthorID],
		Commenters:  users,
		ContentHTML: html,
	}, nil
}

// discardImage deletes an image that is no longer referenced. Failures are
// logged and swallowed.
func (s *ArticleService) discardImage(ctx context.Context, imageURL string) {
	if s.media == nil || imageURL == "" {
		return
	}

	publicID, ok := s.media.PublicIDFromURL(imageURL)
	if !ok {
		s.logger.Debug().Str("image_url", imageURL).Msg("image not hosted by media store, skipping cleanup")
		return
	}

	if err := s.media.Delete(ctx, publicID); err != nil && !errors.Is(err, domain.ErrImageNotFound) {
		metrics.ImageCleanupFailuresTotal.Inc()
		s.logger.Warn().Err(err).Str("public_id", publicID).Msg("failed to delete image")
	}
}

// validateArticle checks the field rules shared by create and update.
func validateArticle(a *domain.Article) *domain.ValidationError {
	verr := &domain.ValidationError{}

	switch {
	case a.Title == "":
		verr.Add("title", "title is required")
	case utf8.RuneCountInString(a.Title) > domain.MaxTitleLength:
		verr.Add("title", fmt.Sprintf("title must be at most %d characters", domain.MaxTitleLength))
	}

	switch {
	case a.Category == "":
		verr.Add("category", "category is required")
	case !domain.IsValidCategory(a.Category):
		verr.Add("category", "category is not a valid section")
	}

	if a.FeaturedImage == "" {
		verr.Add("featuredImage", "featured image is required")
	}
	if utf8.RuneCountInString(a.Excerpt) > domain.MaxExcerptLength {
		verr.Add("excerpt", fmt.Sprintf("excerpt must be at most %d characters", domain.MaxExcerptLength))
	}
	if utf8.RuneCountInString(a.SEOTitle) > domain.MaxSEOTitleLength {
		verr.Add("seoTitle", fmt.Sprintf("seo title must be at most %d characters", domain.MaxSEOTitleLength))
	}
	if utf8.RuneCountInString(a.SEODescription) > domain.MaxSEODescriptionLength {
		verr.Add("seoDescription", fmt.Sprintf("seo description must be at most %d characters", domain.MaxSEODescriptionLength))
	}
	return verr
}

func authorIDs(items []*domain.Article) []string {
	seen := make(map[string]struct{}, len(items))
	ids := make([]string, 0, len(items))
	for _, a := range items {
		if _, ok := seen[a.AuthorID]; ok {
			continue
		}
		seen[a.AuthorID] = struct{}{}
		ids = append(ids, a.AuthorID)
	}
	return ids
}
