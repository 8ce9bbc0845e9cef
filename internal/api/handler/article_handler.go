package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/atjeh-times/news-api/internal/core/ports"
)

// ArticleHandler handles HTTP requests for articles, comments and likes.
type ArticleHandler struct {
	service ports.ArticleService
}

func NewArticleHandler(service ports.ArticleService) *ArticleHandler {
	return &ArticleHandler{service: service}
}

// --- Request / Response types ---

type createArticleRequest struct {
	Title          string   `json:"title" validate:"required,max=200"`
	Content        string   `json:"content" validate:"required"`
	Excerpt        string   `json:"excerpt" validate:"max=300"`
	FeaturedImage  string   `json:"featuredImage" validate:"required"`
	Category       string   `json:"category" validate:"required"`
	Tags           []string `json:"tags"`
	Status         string   `json:"status"`
	Featured       bool     `json:"featured"`
	SEOTitle       string   `json:"seoTitle" validate:"max=60"`
	SEODescription string   `json:"seoDescription" validate:"max=160"`
}

type updateArticleRequest struct {
	Title          *string  `json:"title" validate:"omitempty,max=200"`
	Content        *string  `json:"content"`
	Excerpt        *string  `json:"excerpt" validate:"omitempty,max=300"`
	FeaturedImage  *string  `json:"featuredImage"`
	Category       *string  `json:"category"`
	Tags           []string `json:"tags"`
	Status         *string  `json:"status"`
	Featured       *bool    `json:"featured"`
	SEOTitle       *string  `json:"seoTitle" validate:"omitempty,max=60"`
	SEODescription *string  `json:"seoDescription" validate:"omitempty,max=160"`
}

type commentRequest struct {
	Comment string `json:"comment" validate:"required,max=1000"`
}

type articleListResponse struct {
	Articles   []*articleResponse        `json:"articles"`
	Pagination articlePaginationResponse `json:"pagination"`
}

type articleMutationResponse struct {
	Message string           `json:"message"`
	Article *articleResponse `json:"article"`
}

type commentCreatedResponse struct {
	Message string          `json:"message"`
	Comment commentResponse `json:"comment"`
}

type likeResponse struct {
	Message   string `json:"message"`
	LikeCount int    `json:"likeCount"`
	IsLiked   bool   `json:"isLiked"`
}

// List handles GET /api/articles.
//
// @Summary      List articles
// @Description  Anonymous callers and readers only ever see published articles.
// @Tags         articles
// @Produce      json
// @Param        page       query     int     false  "Page number (default 1)"
// @Param        limit      query     int     false  "Page size, 1-100 (default 10)"
// @Param        category   query     string  false  "Category slug"
// @Param        author     query     string  false  "Author id"
// @Param        status     query     string  false  "draft, published or archived"
// @Param        search     query     string  false  "Case-insensitive text search"
// @Param        tags       query     string  false  "Comma separated tags"
// @Param        featured   query     bool    false  "Only featured articles"
// @Param        sortBy     query     string  false  "publishedAt, createdAt, updatedAt, views, title or readTime"
// @Param        sortOrder  query     string  false  "asc or desc"
// @Success      200        {object}  articleListResponse
// @Failure      400        {object}  ErrorResponse
// @Router       /articles [get]
func (h *ArticleHandler) List(c echo.Context) error {
	input := ports.ListArticlesInput{
		Page:      queryInt(c, "page"),
		Limit:     queryInt(c, "limit"),
		Category:  c.QueryParam("category"),
		AuthorID:  c.QueryParam("author"),
		Status:    c.QueryParam("status"),
		Search:    c.QueryParam("search"),
		Tags:      c.QueryParam("tags"),
		SortBy:    c.QueryParam("sortBy"),
		SortOrder: c.QueryParam("sortOrder"),
	}
	if c.QueryParams().Has("featured") {
		featured := c.QueryParam("featured") == "true"
		input.Featured = &featured
	}

	page, err := h.service.List(c.Request().Context(), actor(c), input)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, articleListResponse{
		Articles:   toArticleList(page.Items),
		Pagination: toArticlePagination(page.Pagination),
	})
}

// ListByAuthor handles GET /api/articles/author/:authorId.
//
// @Summary      Published articles of one author
// @Tags         articles
// @Produce      json
// @Param        authorId  path      string  true   "Author id"
// @Param        page      query     int     false  "Page number"
// @Param        limit     query     int     false  "Page size"
// @Success      200       {object}  articleListResponse
// @Router       /articles/author/{authorId} [get]
func (h *ArticleHandler) ListByAuthor(c echo.Context) error {
	page, err := h.service.ListByAuthor(c.Request().Context(), c.Param("authorId"), queryInt(c, "page"), queryInt(c, "limit"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, articleListResponse{
		Articles:   toArticleList(page.Items),
		Pagination: toArticlePagination(page.Pagination),
	})
}

// GetBySlug handles GET /api/articles/:slug. A 24-character hex value is
// looked up as an id.
//
// @Summary      Get an article by slug
// @Tags         articles
// @Produce      json
// @Param        slug  path      string  true  "Article slug or id"
// @Success      200   {object}  articleResponse
// @Failure      401   {object}  ErrorResponse
// @Failure      403   {object}  ErrorResponse
// @Failure      404   {object}  ErrorResponse
// @Router       /articles/{slug} [get]
func (h *ArticleHandler) GetBySlug(c echo.Context) error {
	detail, err := h.service.GetBySlug(c.Request().Context(), actor(c), c.Param("slug"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toArticleDetailResponse(detail))
}

// GetByID handles GET /api/articles/id/:id.
//
// @Summary      Get an article by id
// @Tags         articles
// @Produce      json
// @Param        id   path      string  true  "Article id"
// @Success      200  {object}  articleResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      403  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /articles/id/{id} [get]
func (h *ArticleHandler) GetByID(c echo.Context) error {
	detail, err := h.service.GetByID(c.Request().Context(), actor(c), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toArticleDetailResponse(detail))
}

// Create handles POST /api/articles.
//
// @Summary      Create an article
// @Tags         articles
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createArticleRequest  true  "Article"
// @Success      201   {object}  articleMutationResponse
// @Failure      400   {object}  ErrorResponse
// @Failure      401   {object}  ErrorResponse
// @Failure      403   {object}  ErrorResponse
// @Router       /articles [post]
func (h *ArticleHandler) Create(c echo.Context) error {
	var req createArticleRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	detail, err := h.service.Create(c.Request().Context(), actor(c), ports.CreateArticleInput{
		Title:          req.Title,
		Content:        req.Content,
		Excerpt:        req.Excerpt,
		FeaturedImage:  req.FeaturedImage,
		Category:       req.Category,
		Tags:           req.Tags,
		Status:         req.Status,
		Featured:       req.Featured,
		SEOTitle:       req.SEOTitle,
		SEODescription: req.SEODescription,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, articleMutationResponse{
		Message: "Article created successfully",
		Article: toArticleDetailResponse(detail),
	})
}

// Update handles PUT /api/articles/:id.
//
// @Summary      Update an article
// @Description  Owner or admin only. An empty featuredImage keeps the current image.
// @Tags         articles
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string                true  "Article id"
// @Param        body  body      updateArticleRequest  true  "Fields to change"
// @Success      200   {object}  articleMutationResponse
// @Failure      400   {object}  ErrorResponse
// @Failure      403   {object}  ErrorResponse
// @Failure      404   {object}  ErrorResponse
// @Router       /articles/{id} [put]
func (h *ArticleHandler) Update(c echo.Context) error {
	var req updateArticleRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	detail, err := h.service.Update(c.Request().Context(), actor(c), c.Param("id"), ports.UpdateArticleInput{
		Title:          req.Title,
		Content:        req.Content,
		Excerpt:        req.Excerpt,
		FeaturedImage:  req.FeaturedImage,
		Category:       req.Category,
		Tags:           req.Tags,
		Status:         req.Status,
		Featured:       req.Featured,
		SEOTitle:       req.SEOTitle,
		SEODescription: req.SEODescription,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, articleMutationResponse{
		Message: "Article updated successfully",
		Article: toArticleDetailResponse(detail),
	})
}

// Delete handles DELETE /api/articles/:id.
//
// @Summary      Delete an article
// @Tags         articles
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Article id"
// @Success      200  {object}  messageResponse
// @Failure      403  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /articles/{id} [delete]
func (h *ArticleHandler) Delete(c echo.Context) error {
	if err := h.service.Delete(c.Request().Context(), actor(c), c.Param("id")); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "Article deleted successfully"})
}

// AddComment handles POST /api/articles/:id/comments.
//
// @Summary      Comment on a published article
// @Tags         articles
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string          true  "Article id"
// @Param        body  body      commentRequest  true  "Comment"
// @Success      201   {object}  commentCreatedResponse
// @Failure      400   {object}  ErrorResponse
// @Failure      403   {object}  ErrorResponse
// @Failure      404   {object}  ErrorResponse
// @Router       /articles/{id}/comments [post]
func (h *ArticleHandler) AddComment(c echo.Context) error {
	var req commentRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	view, err := h.service.AddComment(c.Request().Context(), actor(c), c.Param("id"), req.Comment)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, commentCreatedResponse{
		Message: "Comment added successfully",
		Comment: toCommentResponse(view.Comment, view.User),
	})
}

// ToggleLike handles POST /api/articles/:id/like.
//
// @Summary      Like or unlike a published article
// @Tags         articles
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Article id"
// @Success      200  {object}  likeResponse
// @Failure      403  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /articles/{id}/like [post]
func (h *ArticleHandler) ToggleLike(c echo.Context) error {
	res, err := h.service.ToggleLike(c.Request().Context(), actor(c), c.Param("id"))
	if err != nil {
		return err
	}

	msg := "Article unliked"
	if res.Liked {
		msg = "Article liked"
	}
	return c.JSON(http.StatusOK, likeResponse{Message: msg, LikeCount: res.LikeCount, IsLiked: res.Liked})
}
