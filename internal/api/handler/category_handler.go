package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/atjeh-times/news-api/internal/core/ports"
)

type CategoryHandler struct {
	service ports.ArticleService
}

func NewCategoryHandler(service ports.ArticleService) *CategoryHandler {
	return &CategoryHandler{service: service}
}

type categoryResponse struct {
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Description string `json:"description"`
	Count       int64  `json:"count"`
}

type categoryListResponse struct {
	Categories []categoryResponse `json:"categories"`
}

// List handles GET /api/categories.
//
// @Summary      List categories with published article counts
// @Tags         categories
// @Produce      json
// @Success      200  {object}  categoryListResponse
// @Router       /categories [get]
func (h *CategoryHandler) List(c echo.Context) error {
	counts, err := h.service.Categories(c.Request().Context())
	if err != nil {
		return err
	}

	out := make([]categoryResponse, 0, len(counts))
	for _, cc := range counts {
		out = append(out, categoryResponse{
			Name:        cc.Category.Name,
			Slug:        cc.Category.Slug,
			Description: cc.Category.Description,
			Count:       cc.Count,
		})
	}
	return c.JSON(http.StatusOK, categoryListResponse{Categories: out})
}
