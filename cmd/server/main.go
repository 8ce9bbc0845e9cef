// @title                       Atjeh Times News API
// @version                     1.0
// @description                 Articles, authors and media for the Atjeh Times newsroom.
// @BasePath                    /api
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/atjeh-times/news-api/docs"
	"github.com/atjeh-times/news-api/internal/api"
	"github.com/atjeh-times/news-api/internal/api/handler"
	"github.com/atjeh-times/news-api/internal/core/ports"
	"github.com/atjeh-times/news-api/internal/core/service"
	mongostore "github.com/atjeh-times/news-api/internal/infrastructure/db/mongo"
	redisstore "github.com/atjeh-times/news-api/internal/infrastructure/db/redis"
	"github.com/atjeh-times/news-api/internal/infrastructure/emailverify"
	"github.com/atjeh-times/news-api/internal/infrastructure/imageproc"
	"github.com/atjeh-times/news-api/internal/infrastructure/mediahost"
	"github.com/atjeh-times/news-api/internal/pkg/config"
	"github.com/atjeh-times/news-api/pkg/logger"
)

const shutdownTimeout = 15 * time.Second

func main() {
	cfg := config.Load()
	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: "news-api",
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	mongoClient, db, err := mongostore.Connect(ctx, mongostore.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to mongodb")
	}
	defer func() {
		if err := mongoClient.Disconnect(context.Background()); err != nil {
			log.Error().Err(err).Msg("failed to disconnect mongodb")
		}
	}()

	rdb, err := redisstore.Connect(ctx, redisstore.Config{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer rdb.Close()

	// --- Repositories ---
	users := mongostore.NewUserRepository(db)
	articles := mongostore.NewArticleRepository(db)
	if err := users.EnsureIndexes(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to create user indexes")
	}
	if err := articles.EnsureIndexes(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to create article indexes")
	}

	// --- Media ---
	media, err := mediahost.NewS3Store(ctx, mediahost.Config{
		Bucket:    cfg.Media.Bucket,
		Region:    cfg.Media.Region,
		Endpoint:  cfg.Media.Endpoint,
		AccessKey: cfg.Media.AccessKey,
		SecretKey: cfg.Media.SecretKey,
		PublicURL: cfg.Media.PublicURL,
		Folder:    cfg.Media.Folder,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to configure media host")
	}

	// --- Services ---
	var verifier ports.EmailVerifier
	if cfg.VerifyEmails() {
		verifier = emailverify.New(emailverify.Config{
			AbstractAPIKey: cfg.EmailVerify.AbstractAPIKey,
			Timeout:        cfg.EmailVerify.Timeout,
		}, redisstore.NewVerdictCache(rdb), log)
		log.Info().Msg("email verification enabled")
	}

	services := api.Services{
		Auth:     service.NewAuthService(users, verifier, cfg.Auth.JWTSecret, cfg.Auth.JWTExpire, log),
		Articles: service.NewArticleService(articles, users, media, log),
		Users:    service.NewUserService(users, articles, log),
		Uploads:  service.NewUploadService(media, imageproc.NewProcessor(), cfg.Media.MaxImageBytes, log),
	}

	e := api.NewRouter(services, api.Options{
		Logger:        log,
		Development:   cfg.IsDevelopment(),
		ClientURL:     cfg.ClientURL,
		BodyLimit:     cfg.BodyLimit,
		MaxImageBytes: cfg.Media.MaxImageBytes,
		AuthRateRPS:   cfg.RateLimit.RPS,
		AuthRateBurst: cfg.RateLimit.Burst,
		HealthChecks:  []handler.DependencyCheck{handler.MongoCheck(db), handler.RedisCheck(rdb)},
	})

	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("server listening")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}
	log.Info().Msg("server exited")
}
