package main // Entry point package

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/moviegoer/rottenpotatoes/internal/config"
	"github.com/moviegoer/rottenpotatoes/internal/database"
	"github.com/moviegoer/rottenpotatoes/internal/gate"
	"github.com/moviegoer/rottenpotatoes/internal/handler"
	"github.com/moviegoer/rottenpotatoes/internal/identity"
	"github.com/moviegoer/rottenpotatoes/internal/middleware"
	"github.com/moviegoer/rottenpotatoes/internal/queue"
	"github.com/moviegoer/rottenpotatoes/internal/repository"
	"github.com/moviegoer/rottenpotatoes/internal/router"
	queue_publisher "github.com/moviegoer/rottenpotatoes/internal/service"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := database.Open(cfg)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	// Redis is optional: caching and rate limiting shut off when nil.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Print("redis unavailable; response cache and rate limiting disabled")
	}

	moviegoers := repository.NewMoviegoerRepo(db)
	movies := repository.NewMovieRepo(db)
	reviews := repository.NewReviewRepo(db)
	tokens := repository.NewTokenRepo(db)

	resolver := identity.NewResolver(moviegoers)
	reviewGate := gate.New(movies, reviews)

	authH := handler.NewAuthHandler(cfg, resolver, moviegoers, tokens)
	movieH := handler.NewMovieHandler(movies, reviews)
	reviewH := handler.NewReviewHandler(reviewGate, reviews, queue_publisher.PublishReviewPosted)

	e := echo.New()
	e.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))

	router.RegisterRoutes(e)
	router.RegisterAuth(e, authH, cfg.JWTSecret)
	router.RegisterMovies(e, movieH, config.LoadCacheConfig(), rdb)
	router.RegisterReviews(e, reviewH, cfg.JWTSecret)

	// Background consumer writes review events to logs/review.log and
	// reconnects on broker failures.
	go func() {
		if err := queue.StartReviewConsumer(); err != nil {
			log.Printf("review consumer stopped: %v", err)
		}
	}()

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
