package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/atjeh-times/news-api/internal/core/ports"
)

// UserHandler serves the admin console and public author pages.
type UserHandler struct {
	service ports.UserService
}

func NewUserHandler(service ports.UserService) *UserHandler {
	return &UserHandler{service: service}
}

// --- Request / Response types ---

type updateUserRequest struct {
	Role      *string `json:"role" validate:"omitempty,oneof=user author admin"`
	IsActive  *bool   `json:"isActive"`
	FirstName *string `json:"firstName" validate:"omitempty,max=50"`
	LastName  *string `json:"lastName" validate:"omitempty,max=50"`
	Bio       *string `json:"bio" validate:"omitempty,max=500"`
}

type userStatsResponse struct {
	TotalArticles     int64 `json:"totalArticles"`
	PublishedArticles int64 `json:"publishedArticles"`
}

type userWithStatsResponse struct {
	*userResponse
	Stats userStatsResponse `json:"stats"`
}

type userListResponse struct {
	Users      []userWithStatsResponse `json:"users"`
	Pagination userPaginationResponse  `json:"pagination"`
}

type userDetailResponse struct {
	User struct {
		*userResponse
		Stats          userStatsResponse `json:"stats"`
		RecentArticles []articleBrief    `json:"recentArticles"`
	} `json:"user"`
}

type publicUserResponse struct {
	*authorResponse
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
	ArticleCount int64     `json:"articleCount"`
}

type publicProfileResponse struct {
	User publicUserResponse `json:"user"`
}

type authorListResponse struct {
	Authors []publicUserResponse `json:"authors"`
}

type articleCountsResponse struct {
	Total     int64 `json:"total"`
	Published int64 `json:"published"`
	Drafts    int64 `json:"drafts"`
	Archived  int64 `json:"archived"`
}

type userCountsResponse struct {
	Total   int64 `json:"total"`
	Authors int64 `json:"authors"`
	Admins  int64 `json:"admins"`
	Readers int64 `json:"readers"`
}

type dashboardResponse struct {
	Stats struct {
		Articles   articleCountsResponse `json:"articles"`
		TotalViews int64                 `json:"totalViews"`
		Users      *userCountsResponse   `json:"users,omitempty"`
	} `json:"stats"`
}

type userUpdatedResponse struct {
	Message string        `json:"message"`
	User    *userResponse `json:"user"`
}

func toUserStats(s ports.UserStats) userStatsResponse {
	return userStatsResponse{TotalArticles: s.TotalArticles, PublishedArticles: s.PublishedArticles}
}

// List handles GET /api/users.
//
// @Summary      List users
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        page       query     int     false  "Page number"
// @Param        limit      query     int     false  "Page size"
// @Param        role       query     string  false  "user, author or admin"
// @Param        search     query     string  false  "Matches username, email and names"
// @Param        sortBy     query     string  false  "Sort field"
// @Param        sortOrder  query     string  false  "asc or desc"
// @Success      200        {object}  userListResponse
// @Failure      403        {object}  ErrorResponse
// @Router       /users [get]
func (h *UserHandler) List(c echo.Context) error {
	page, err := h.service.List(c.Request().Context(), actor(c), ports.ListUsersInput{
		Page:      queryInt(c, "page"),
		Limit:     queryInt(c, "limit"),
		Role:      c.QueryParam("role"),
		Search:    c.QueryParam("search"),
		SortBy:    c.QueryParam("sortBy"),
		SortOrder: c.QueryParam("sortOrder"),
	})
	if err != nil {
		return err
	}

	users := make([]userWithStatsResponse, 0, len(page.Items))
	for _, it := range page.Items {
		users = append(users, userWithStatsResponse{userResponse: toUserResponse(it.User), Stats: toUserStats(it.Stats)})
	}
	return c.JSON(http.StatusOK, userListResponse{Users: users, Pagination: toUserPagination(page.Pagination)})
}

// Get handles GET /api/users/:id.
//
// @Summary      Get a user with stats and recent articles
// @Description  Self or admin only.
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "User id"
// @Success      200  {object}  userDetailResponse
// @Failure      403  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /users/{id} [get]
func (h *UserHandler) Get(c echo.Context) error {
	detail, err := h.service.Get(c.Request().Context(), actor(c), c.Param("id"))
	if err != nil {
		return err
	}

	var resp userDetailResponse
	resp.User.userResponse = toUserResponse(detail.User)
	resp.User.Stats = toUserStats(detail.Stats)
	resp.User.RecentArticles = toArticleBriefs(detail.RecentArticles)
	return c.JSON(http.StatusOK, resp)
}

// GetByUsername handles GET /api/users/username/:username.
//
// @Summary      Public profile of an active user
// @Tags         users
// @Produce      json
// @Param        username  path      string  true  "Username"
// @Success      200       {object}  publicProfileResponse
// @Failure      404       {object}  ErrorResponse
// @Router       /users/username/{username} [get]
func (h *UserHandler) GetByUsername(c echo.Context) error {
	profile, err := h.service.GetByUsername(c.Request().Context(), c.Param("username"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, publicProfileResponse{User: publicUserResponse{
		authorResponse: toAuthorResponse(profile.User),
		Role:           profile.User.Role,
		CreatedAt:      profile.User.CreatedAt,
		ArticleCount:   profile.PublishedArticles,
	}})
}

// Authors handles GET /api/users/authors.
//
// @Summary      Active authors with published article counts
// @Tags         users
// @Produce      json
// @Success      200  {object}  authorListResponse
// @Router       /users/authors [get]
func (h *UserHandler) Authors(c echo.Context) error {
	authors, err := h.service.Authors(c.Request().Context())
	if err != nil {
		return err
	}

	out := make([]publicUserResponse, 0, len(authors))
	for _, a := range authors {
		out = append(out, publicUserResponse{
			authorResponse: toAuthorResponse(a.User),
			Role:           a.User.Role,
			CreatedAt:      a.User.CreatedAt,
			ArticleCount:   a.ArticleCount,
		})
	}
	return c.JSON(http.StatusOK, authorListResponse{Authors: out})
}

// DashboardStats handles GET /api/users/dashboard/stats.
//
// @Summary      Dashboard counters
// @Description  Admins get site-wide counts; everyone else gets their own.
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  dashboardResponse
// @Failure      401  {object}  ErrorResponse
// @Router       /users/dashboard/stats [get]
func (h *UserHandler) DashboardStats(c echo.Context) error {
	stats, err := h.service.DashboardStats(c.Request().Context(), actor(c))
	if err != nil {
		return err
	}

	var resp dashboardResponse
	resp.Stats.Articles = articleCountsResponse{
		Total:     stats.TotalArticles,
		Published: stats.PublishedArticles,
		Drafts:    stats.DraftArticles,
		Archived:  stats.ArchivedArticles,
	}
	resp.Stats.TotalViews = stats.TotalViews
	if u := stats.Users; u != nil {
		resp.Stats.Users = &userCountsResponse{Total: u.Total, Authors: u.Authors, Admins: u.Admins, Readers: u.Readers}
	}
	return c.JSON(http.StatusOK, resp)
}

// Update handles PUT /api/users/:id.
//
// @Summary      Change a user's role, activation or profile
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string             true  "User id"
// @Param        body  body      updateUserRequest  true  "Fields to change"
// @Success      200   {object}  userUpdatedResponse
// @Failure      400   {object}  ErrorResponse
// @Failure      404   {object}  ErrorResponse
// @Router       /users/{id} [put]
func (h *UserHandler) Update(c echo.Context) error {
	var req updateUserRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	user, err := h.service.Update(c.Request().Context(), actor(c), c.Param("id"), ports.UpdateUserInput{
		Role:      req.Role,
		IsActive:  req.IsActive,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Bio:       req.Bio,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, userUpdatedResponse{Message: "User updated successfully", User: toUserResponse(user)})
}

// Delete handles DELETE /api/users/:id.
//
// @Summary      Delete a user without articles
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "User id"
// @Success      200  {object}  messageResponse
// @Failure      400  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /users/{id} [delete]
func (h *UserHandler) Delete(c echo.Context) error {
	if err := h.service.Delete(c.Request().Context(), actor(c), c.Param("id")); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "User deleted successfully"})
}
