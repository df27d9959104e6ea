package main

import (
	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/openshelf/review-platform/internal/config"
	"github.com/openshelf/review-platform/internal/database"
	"github.com/openshelf/review-platform/internal/handler"
	"github.com/openshelf/review-platform/internal/logger"
	"github.com/openshelf/review-platform/internal/middleware"
	"github.com/openshelf/review-platform/internal/queue"
	"github.com/openshelf/review-platform/internal/repository"
	"github.com/openshelf/review-platform/internal/router"
)

func main() {
	_ = godotenv.Load() // .env is optional; real env wins

	logger.Init()
	log := logger.Get()

	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}

	users := repository.NewUserRepo(db)
	titles := repository.NewTitleRepo(db)
	genres := repository.NewGenreRepo(db)
	categories := repository.NewCategoryRepo(db)
	reviews := repository.NewReviewRepo(db)
	comments := repository.NewCommentRepo(db)

	authH := handler.NewAuthHandler(cfg, users)
	userH := handler.NewUserHandler(cfg, users)
	titleH := handler.NewTitleHandler(titles, genres, categories, reviews)
	tagH := handler.NewTagHandler(genres, categories)
	reviewH := handler.NewReviewHandler(titles, reviews)
	commentH := handler.NewCommentHandler(titles, reviews, comments)

	e := echo.New()
	e.HideBanner = true

	// Redis backs the limiter and the public-read cache; both degrade to
	// pass-through when the client is nil.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Warn("redis unavailable; rate limiting and response cache disabled")
	}
	// OptionalJWT runs ahead of the limiter so user-keyed rate limiting sees
	// the authenticated principal; anonymous requests pass through untouched.
	e.Use(middleware.OptionalJWT(cfg.JWTSecret))
	e.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))
	cacheMW := middleware.NewRedisCache(config.LoadCacheConfig(), rdb)

	router.RegisterRoutes(e)
	router.RegisterAuth(e, authH)
	router.RegisterUsers(e, userH, cfg.JWTSecret)
	router.RegisterCatalogue(e, titleH, tagH, cfg.JWTSecret, cacheMW)
	router.RegisterReviews(e, reviewH, commentH, cfg.JWTSecret)

	// Confirmation-code deliveries drain in the background; the consumer
	// reconnects on broker failure and never stops the server.
	go func() {
		if err := queue.StartCodeConsumer(); err != nil {
			log.Warnf("code consumer stopped: %v", err)
		}
	}()

	addr := ":" + cfg.Port
	log.WithField("env", cfg.Env).Infof("listening on %s", addr)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
