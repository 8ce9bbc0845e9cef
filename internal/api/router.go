package api

import (
	"strconv"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	"github.com/atjeh-times/news-api/internal/api/handler"
	"github.com/atjeh-times/news-api/internal/api/middleware"
	"github.com/atjeh-times/news-api/internal/core/domain"
	"github.com/atjeh-times/news-api/internal/core/ports"
)

// Services are the use cases the HTTP layer exposes.
type Services struct {
	Auth     ports.AuthService
	Articles ports.ArticleService
	Users    ports.UserService
	Uploads  ports.UploadService
}

// Options tune the router.
type Options struct {
	Logger zerolog.Logger
	// Development adds local origins to CORS and exposes error details.
	Development   bool
	ClientURL     string
	BodyLimit     string
	MaxImageBytes int64
	AuthRateRPS   float64
	AuthRateBurst int
	HealthChecks  []handler.DependencyCheck
	// Registry receives the HTTP metrics and serves /metrics. Defaults to the
	// global prometheus registry.
	Registry MetricsRegistry
}

type MetricsRegistry interface {
	prometheus.Registerer
	prometheus.Gatherer
}

type defaultRegistry struct {
	prometheus.Registerer
	prometheus.Gatherer
}

// multipartOverhead covers part headers and boundaries on upload requests.
const multipartOverhead = 1 << 20

var devOrigins = []string{"http://localhost:3000", "http://localhost:5173", "http://127.0.0.1:3000"}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(svc Services, opts Options) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(opts.Logger, opts.Development)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(opts.Logger))
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins:     allowedOrigins(opts.ClientURL, opts.Development),
		AllowCredentials: true,
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))
	if opts.BodyLimit != "" {
		e.Use(echomiddleware.BodyLimitWithConfig(echomiddleware.BodyLimitConfig{
			Limit:   opts.BodyLimit,
			Skipper: isFileUpload,
		}))
	}
	registry := opts.Registry
	if registry == nil {
		registry = defaultRegistry{prometheus.DefaultRegisterer, prometheus.DefaultGatherer}
	}
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  "newsroom",
		Registerer: registry,
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/metrics"
		},
	}))

	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: registry}))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	// --- Gates ---
	authenticate := middleware.Authenticate(svc.Auth)
	optionalAuth := middleware.OptionalAuth(svc.Auth)
	authors := middleware.RequireRoles(domain.RoleAuthor, domain.RoleAdmin)
	admins := middleware.RequireRoles(domain.RoleAdmin)
	authLimit := middleware.RateLimit(opts.AuthRateRPS, opts.AuthRateBurst)

	api := e.Group("/api")

	// --- Health checks (no auth required) ---
	health := handler.NewHealthHandler(opts.HealthChecks...)
	api.GET("/health", health.Liveness)
	api.GET("/health/ready", health.Readiness)

	// --- Auth ---
	authHandler := handler.NewAuthHandler(svc.Auth)
	auth := api.Group("/auth")
	auth.POST("/register", authHandler.Register, authLimit)
	auth.POST("/login", authHandler.Login, authLimit)
	auth.GET("/me", authHandler.Me, authenticate)
	auth.PUT("/profile", authHandler.UpdateProfile, authenticate)
	auth.GET("/verify", authHandler.Verify, authenticate)

	// --- Articles ---
	articleHandler := handler.NewArticleHandler(svc.Articles)
	articles := api.Group("/articles")
	articles.GET("", articleHandler.List, optionalAuth)
	articles.GET("/author/:authorId", articleHandler.ListByAuthor)
	articles.GET("/id/:id", articleHandler.GetByID, optionalAuth)
	articles.GET("/:slug", articleHandler.GetBySlug, optionalAuth)
	articles.POST("", articleHandler.Create, authenticate, authors)
	articles.PUT("/:id", articleHandler.Update, authenticate, authors)
	articles.DELETE("/:id", articleHandler.Delete, authenticate, authors)
	articles.POST("/:id/comments", articleHandler.AddComment, authenticate)
	articles.POST("/:id/like", articleHandler.ToggleLike, authenticate)

	api.GET("/categories", handler.NewCategoryHandler(svc.Articles).List)

	// --- Users ---
	userHandler := handler.NewUserHandler(svc.Users)
	users := api.Group("/users")
	users.GET("", userHandler.List, authenticate, admins)
	users.GET("/authors", userHandler.Authors)
	users.GET("/username/:username", userHandler.GetByUsername)
	users.GET("/dashboard/stats", userHandler.DashboardStats, authenticate)
	users.GET("/:id", userHandler.Get, authenticate)
	users.PUT("/:id", userHandler.Update, authenticate, admins)
	users.DELETE("/:id", userHandler.Delete, authenticate, admins)

	// --- Uploads ---
	uploadHandler := handler.NewUploadHandler(svc.Uploads, opts.MaxImageBytes)
	upload := api.Group("/upload", authenticate, authors)
	uploadLimit := echomiddleware.BodyLimit(uploadBodyLimit(opts.MaxImageBytes))
	upload.POST("/image", uploadHandler.UploadImage, uploadLimit)
	upload.POST("/images", uploadHandler.UploadImages, uploadLimit)
	upload.POST("/from-url", uploadHandler.UploadFromURL)
	upload.DELETE("/image/:publicId", uploadHandler.DeleteImage)

	return e
}

// isFileUpload reports whether the matched route takes multipart image
// uploads. Those routes carry their own body limit.
func isFileUpload(c echo.Context) bool {
	switch c.Path() {
	case "/api/upload/image", "/api/upload/images":
		return true
	}
	return false
}

// uploadBodyLimit allows a full batch of maximum-size images. Each file is
// still capped by the handler.
func uploadBodyLimit(maxImageBytes int64) string {
	if maxImageBytes <= 0 {
		maxImageBytes = ports.DefaultMaxImageBytes
	}
	return strconv.FormatInt(maxImageBytes*ports.MaxImagesPerRequest+multipartOverhead, 10) + "B"
}

func allowedOrigins(clientURL string, development bool) []string {
	var origins []string
	if clientURL != "" {
		origins = append(origins, clientURL)
	}
	if development || len(origins) == 0 {
		origins = append(origins, devOrigins...)
	}
	return origins
}

// requestLogger writes one zerolog entry per request.
func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRemoteIP:  true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			ev := log.Info()
			if v.Error != nil {
				ev = log.Warn().Err(v.Error)
			}
			ev.Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("remote_ip", v.RemoteIP).
				Str("request_id", v.RequestID).
				Msg("request")
			return nil
		},
	})
}
