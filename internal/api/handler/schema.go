package handler

import (
	"time"

	"github.com/atjeh-times/news-api/internal/core/domain"
	"github.com/atjeh-times/news-api/internal/core/ports"
)

// --- Shared response types ---

type messageResponse struct {
	Message string `json:"message"`
}

type articlePaginationResponse struct {
	CurrentPage   int   `json:"currentPage"`
	TotalPages    int   `json:"totalPages"`
	TotalArticles int64 `json:"totalArticles"`
	HasNextPage   bool  `json:"hasNextPage"`
	HasPrevPage   bool  `json:"hasPrevPage"`
	Limit         int   `json:"limit"`
}

type userPaginationResponse struct {
	CurrentPage int   `json:"currentPage"`
	TotalPages  int   `json:"totalPages"`
	TotalUsers  int64 `json:"totalUsers"`
	HasNextPage bool  `json:"hasNextPage"`
	HasPrevPage bool  `json:"hasPrevPage"`
	Limit       int   `json:"limit"`
}

// userResponse is the private account view; the password hash never leaves
// the service.
type userResponse struct {
	ID        string     `json:"id"`
	Username  string     `json:"username"`
	Email     string     `json:"email"`
	FirstName string     `json:"firstName"`
	LastName  string     `json:"lastName"`
	FullName  string     `json:"fullName"`
	Bio       string     `json:"bio,omitempty"`
	Avatar    string     `json:"avatar,omitempty"`
	Role      string     `json:"role"`
	IsActive  bool       `json:"isActive"`
	LastLogin *time.Time `json:"lastLogin,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

// authorResponse is the public view of a user embedded in articles and comments.
type authorResponse struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	FullName  string `json:"fullName"`
	Avatar    string `json:"avatar,omitempty"`
	Bio       string `json:"bio,omitempty"`
}

type commentResponse struct {
	ID        string          `json:"id"`
	User      *authorResponse `json:"user"`
	Comment   string          `json:"comment"`
	CreatedAt time.Time       `json:"createdAt"`
}

type articleResponse struct {
	ID             string            `json:"id"`
	Title          string            `json:"title"`
	Slug           string            `json:"slug"`
	Content        string            `json:"content"`
	ContentHTML    string            `json:"contentHtml,omitempty"`
	Excerpt        string            `json:"excerpt"`
	FeaturedImage  string            `json:"featuredImage"`
	Category       string            `json:"category"`
	Tags           []string          `json:"tags"`
	Author         *authorResponse   `json:"author"`
	Status         string            `json:"status"`
	PublishedAt    *time.Time        `json:"publishedAt,omitempty"`
	Views          int64             `json:"views"`
	ReadTime       int               `json:"readTime"`
	Likes          []string          `json:"likes"`
	LikeCount      int               `json:"likeCount"`
	Comments       []commentResponse `json:"comments,omitempty"`
	CommentCount   int               `json:"commentCount"`
	Featured       bool              `json:"featured"`
	SEOTitle       string            `json:"seoTitle,omitempty"`
	SEODescription string            `json:"seoDescription,omitempty"`
	CreatedAt      time.Time         `json:"createdAt"`
	UpdatedAt      time.Time         `json:"updatedAt"`
}

// articleBrief is the short form used in user detail pages.
type articleBrief struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Slug        string     `json:"slug"`
	Status      string     `json:"status"`
	Views       int64      `json:"views"`
	CreatedAt   time.Time  `json:"createdAt"`
	PublishedAt *time.Time `json:"publishedAt,omitempty"`
}

// --- Mappers ---

func toUserResponse(u *domain.User) *userResponse {
	if u == nil {
		return nil
	}
	return &userResponse{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		FullName:  u.FullName(),
		Bio:       u.Bio,
		Avatar:    u.Avatar,
		Role:      u.Role,
		IsActive:  u.IsActive,
		LastLogin: u.LastLogin,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

func toAuthorResponse(u *domain.User) *authorResponse {
	if u == nil {
		return nil
	}
	return &authorResponse{
		ID:        u.ID,
		Username:  u.Username,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		FullName:  u.FullName(),
		Avatar:    u.Avatar,
		Bio:       u.Bio,
	}
}

func toCommentResponse(c domain.Comment, user *domain.User) commentResponse {
	return commentResponse{
		ID:        c.ID,
		User:      toAuthorResponse(user),
		Comment:   c.Text,
		CreatedAt: c.CreatedAt,
	}
}

func toArticleResponse(a *domain.Article, author *domain.User) *articleResponse {
	likes := a.Likes
	if likes == nil {
		likes = []string{}
	}
	tags := a.Tags
	if tags == nil {
		tags = []string{}
	}
	return &articleResponse{
		ID:             a.ID,
		Title:          a.Title,
		Slug:           a.Slug,
		Content:        a.Content,
		Excerpt:        a.Excerpt,
		FeaturedImage:  a.FeaturedImage,
		Category:       a.Category,
		Tags:           tags,
		Author:         toAuthorResponse(author),
		Status:         string(a.Status),
		PublishedAt:    a.PublishedAt,
		Views:          a.Views,
		ReadTime:       a.ReadTime,
		Likes:          likes,
		LikeCount:      a.LikeCount(),
		CommentCount:   a.CommentCount(),
		Featured:       a.Featured,
		SEOTitle:       a.SEOTitle,
		SEODescription: a.SEODescription,
		CreatedAt:      a.CreatedAt,
		UpdatedAt:      a.UpdatedAt,
	}
}

// toArticleDetailResponse adds the rendered body and the populated comments.
func toArticleDetailResponse(d *ports.ArticleDetail) *articleResponse {
	resp := toArticleResponse(d.Article, d.Author)
	resp.ContentHTML = d.ContentHTML
	resp.Comments = make([]commentResponse, 0, len(d.Article.Comments))
	for _, c := range d.Article.Comments {
		resp.Comments = append(resp.Comments, toCommentResponse(c, d.Commenters[c.UserID]))
	}
	return resp
}

func toArticleList(items []ports.ArticleSummary) []*articleResponse {
	out := make([]*articleResponse, 0, len(items))
	for _, it := range items {
		out = append(out, toArticleResponse(it.Article, it.Author))
	}
	return out
}

func toArticleBriefs(articles []*domain.Article) []articleBrief {
	out := make([]articleBrief, 0, len(articles))
	for _, a := range articles {
		out = append(out, articleBrief{
			ID:          a.ID,
			Title:       a.Title,
			Slug:        a.Slug,
			Status:      string(a.Status),
			Views:       a.Views,
			CreatedAt:   a.CreatedAt,
			PublishedAt: a.PublishedAt,
		})
	}
	return out
}

func toArticlePagination(p ports.Pagination) articlePaginationResponse {
	return articlePaginationResponse{
		CurrentPage:   p.CurrentPage,
		TotalPages:    p.TotalPages,
		TotalArticles: p.Total,
		HasNextPage:   p.HasNextPage,
		HasPrevPage:   p.HasPrevPage,
		Limit:         p.Limit,
	}
}

func toUserPagination(p ports.Pagination) userPaginationResponse {
	return userPaginationResponse{
		CurrentPage: p.CurrentPage,
		TotalPages:  p.TotalPages,
		TotalUsers:  p.Total,
		HasNextPage: p.HasNextPage,
		HasPrevPage: p.HasPrevPage,
		Limit:       p.Limit,
	}
}

// ErrorResponse is the envelope every failed request renders.
type ErrorResponse struct {
	Error        string              `json:"error"`
	Errors       []domain.FieldError `json:"errors,omitempty"`
	ArticleCount *int64              `json:"articleCount,omitempty"`
	Detail       string              `json:"detail,omitempty"`
}
