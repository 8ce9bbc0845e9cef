package handler

import (
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/atjeh-times/news-api/internal/api/middleware"
	"github.com/atjeh-times/news-api/internal/core/domain"
	"github.com/atjeh-times/news-api/internal/core/ports"
)

var (
	authorActor = domain.AuthContext{UserID: "user-a", Username: "alice", Role: domain.RoleAuthor}
	adminActor  = domain.AuthContext{UserID: "user-z", Username: "zed", Role: domain.RoleAdmin}
)

// newContext builds an echo context with the request validator installed and
// the requester attached.
func newContext(method, target string, body io.Reader, actor domain.AuthContext) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	e.Validator = NewValidator()
	req := httptest.NewRequest(method, target, body)
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	middleware.SetAuthContext(c, actor)
	return c, rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json %q: %v", rec.Body.String(), err)
	}
	return resp
}

// --- auth ---

type stubAuthService struct {
	registerFn func(ctx context.Context, input ports.RegisterInput) (*ports.AuthResult, error)
	loginFn    func(ctx context.Context, email, password string) (*ports.AuthResult, error)
	meFn       func(ctx context.Context, actor domain.AuthContext) (*domain.User, error)
	profileFn  func(ctx context.Context, actor domain.AuthContext, input ports.ProfileInput) (*domain.User, error)
}

func (s *stubAuthService) Register(ctx context.Context, input ports.RegisterInput) (*ports.AuthResult, error) {
	return s.registerFn(ctx, input)
}

func (s *stubAuthService) Login(ctx context.Context, email, password string) (*ports.AuthResult, error) {
	return s.loginFn(ctx, email, password)
}

func (s *stubAuthService) Authenticate(context.Context, string) (*domain.User, error) {
	return nil, domain.ErrInvalidToken
}

func (s *stubAuthService) Me(ctx context.Context, actor domain.AuthContext) (*domain.User, error) {
	return s.meFn(ctx, actor)
}

func (s *stubAuthService) UpdateProfile(ctx context.Context, actor domain.AuthContext, input ports.ProfileInput) (*domain.User, error) {
	return s.profileFn(ctx, actor, input)
}

func (s *stubAuthService) ProvisionAdmin(context.Context, ports.RegisterInput) (*domain.User, bool, error) {
	return nil, false, nil
}

// --- articles ---

type stubArticleService struct {
	listFn         func(ctx context.Context, actor domain.AuthContext, input ports.ListArticlesInput) (*ports.ArticlePage, error)
	listByAuthorFn func(ctx context.Context, authorID string, page, limit int) (*ports.ArticlePage, error)
	getBySlugFn    func(ctx context.Context, actor domain.AuthContext, slug string) (*ports.ArticleDetail, error)
	getByIDFn      func(ctx context.Context, actor domain.AuthContext, id string) (*ports.ArticleDetail, error)
	createFn       func(ctx context.Context, actor domain.AuthContext, input ports.CreateArticleInput) (*ports.ArticleDetail, error)
	updateFn       func(ctx context.Context, actor domain.AuthContext, id string, input ports.UpdateArticleInput) (*ports.ArticleDetail, error)
	deleteFn       func(ctx context.Context, actor domain.AuthContext, id string) error
	commentFn      func(ctx context.Context, actor domain.AuthContext, id, text string) (*ports.CommentView, error)
	likeFn         func(ctx context.Context, actor domain.AuthContext, id string) (*ports.LikeResult, error)
	categoriesFn   func(ctx context.Context) ([]ports.CategoryCount, error)
}

func (s *stubArticleService) List(ctx context.Context, actor domain.AuthContext, input ports.ListArticlesInput) (*ports.ArticlePage, error) {
	return s.listFn(ctx, actor, input)
}

func (s *stubArticleService) ListByAuthor(ctx context.Context, authorID string, page, limit int) (*ports.ArticlePage, error) {
	return s.listByAuthorFn(ctx, authorID, page, limit)
}

func (s *stubArticleService) GetBySlug(ctx context.Context, actor domain.AuthContext, slug string) (*ports.ArticleDetail, error) {
	return s.getBySlugFn(ctx, actor, slug)
}

func (s *stubArticleService) GetByID(ctx context.Context, actor domain.AuthContext, id string) (*ports.ArticleDetail, error) {
	return s.getByIDFn(ctx, actor, id)
}

func (s *stubArticleService) Create(ctx context.Context, actor domain.AuthContext, input ports.CreateArticleInput) (*ports.ArticleDetail, error) {
	return s.createFn(ctx, actor, input)
}

func (s *stubArticleService) Update(ctx context.Context, actor domain.AuthContext, id string, input ports.UpdateArticleInput) (*ports.ArticleDetail, error) {
	return s.updateFn(ctx, actor, id, input)
}

func (s *stubArticleService) Delete(ctx context.Context, actor domain.AuthContext, id string) error {
	return s.deleteFn(ctx, actor, id)
}

func (s *stubArticleService) AddComment(ctx context.Context, actor domain.AuthContext, id, text string) (*ports.CommentView, error) {
	return s.commentFn(ctx, actor, id, text)
}

func (s *stubArticleService) ToggleLike(ctx context.Context, actor domain.AuthContext, id string) (*ports.LikeResult, error) {
	return s.likeFn(ctx, actor, id)
}

func (s *stubArticleService) Categories(ctx context.Context) ([]ports.CategoryCount, error) {
	return s.categoriesFn(ctx)
}

// --- users ---

type stubUserService struct {
	listFn          func(ctx context.Context, actor domain.AuthContext, input ports.ListUsersInput) (*ports.UserPage, error)
	getFn           func(ctx context.Context, actor domain.AuthContext, id string) (*ports.UserDetail, error)
	getByUsernameFn func(ctx context.Context, username string) (*ports.PublicProfile, error)
	updateFn        func(ctx context.Context, actor domain.AuthContext, id string, input ports.UpdateUserInput) (*domain.User, error)
	deleteFn        func(ctx context.Context, actor domain.AuthContext, id string) error
	authorsFn       func(ctx context.Context) ([]ports.AuthorSummary, error)
	dashboardFn     func(ctx context.Context, actor domain.AuthContext) (*ports.DashboardStats, error)
}

func (s *stubUserService) List(ctx context.Context, actor domain.AuthContext, input ports.ListUsersInput) (*ports.UserPage, error) {
	return s.listFn(ctx, actor, input)
}

func (s *stubUserService) Get(ctx context.Context, actor domain.AuthContext, id string) (*ports.UserDetail, error) {
	return s.getFn(ctx, actor, id)
}

func (s *stubUserService) GetByUsername(ctx context.Context, username string) (*ports.PublicProfile, error) {
	return s.getByUsernameFn(ctx, username)
}

func (s *stubUserService) Update(ctx context.Context, actor domain.AuthContext, id string, input ports.UpdateUserInput) (*domain.User, error) {
	return s.updateFn(ctx, actor, id, input)
}

func (s *stubUserService) Delete(ctx context.Context, actor domain.AuthContext, id string) error {
	return s.deleteFn(ctx, actor, id)
}

func (s *stubUserService) Authors(ctx context.Context) ([]ports.AuthorSummary, error) {
	return s.authorsFn(ctx)
}

func (s *stubUserService) DashboardStats(ctx context.Context, actor domain.AuthContext) (*ports.DashboardStats, error) {
	return s.dashboardFn(ctx, actor)
}

// --- uploads ---

type stubUploadService struct {
	uploadFn  func(ctx context.Context, actor domain.AuthContext, file ports.ImageFile) (*ports.UploadedImage, error)
	manyFn    func(ctx context.Context, actor domain.AuthContext, files []ports.ImageFile) ([]*ports.UploadedImage, error)
	fromURLFn func(ctx context.Context, actor domain.AuthContext, rawURL string) (*ports.UploadedImage, error)
	deleteFn  func(ctx context.Context, actor domain.AuthContext, publicID string) error
}

func (s *stubUploadService) Upload(ctx context.Context, actor domain.AuthContext, file ports.ImageFile) (*ports.UploadedImage, error) {
	return s.uploadFn(ctx, actor, file)
}

func (s *stubUploadService) UploadMany(ctx context.Context, actor domain.AuthContext, files []ports.ImageFile) ([]*ports.UploadedImage, error) {
	return s.manyFn(ctx, actor, files)
}

func (s *stubUploadService) UploadFromURL(ctx context.Context, actor domain.AuthContext, rawURL string) (*ports.UploadedImage, error) {
	return s.fromURLFn(ctx, actor, rawURL)
}

func (s *stubUploadService) Delete(ctx context.Context, actor domain.AuthContext, publicID string) error {
	return s.deleteFn(ctx, actor, publicID)
}
