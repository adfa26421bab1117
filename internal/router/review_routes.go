package router

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/moviegoer/rottenpotatoes/internal/config"
	"github.com/moviegoer/rottenpotatoes/internal/handler"
	"github.com/moviegoer/rottenpotatoes/internal/middleware"
)

// RegisterMovies registers the public browse endpoints. These are
// read-only and guest-visible, so they sit behind the Redis response
// cache when one is configured.
func RegisterMovies(e *echo.Echo, m *handler.MovieHandler, cacheCfg config.CacheConfig, rdb *redis.Client) {
	cache := middleware.NewRedisCache(cacheCfg, rdb)
	e.GET("/v1/movies", m.ListMovies, cache)
	e.GET("/v1/movies/:id", m.GetMovie, cache)
	e.GET("/v1/movies/:movie_id/reviews", m.ListMovieReviews, cache)
}

// RegisterReviews registers the review mutation endpoints under /v1.
// The JWT middleware enforces the session precondition before any
// handler runs; the access gate inside the handlers enforces the rest.
func RegisterReviews(e *echo.Echo, r *handler.ReviewHandler, jwtSecret string) {
	g := e.Group("/v1", middleware.JWTAuth(jwtSecret))

	g.GET("/movies/:movie_id/reviews/new", r.NewReview)
	g.POST("/movies/:movie_id/reviews", r.CreateReview)
	g.GET("/movies/:movie_id/reviews/:id/edit", r.EditReview)
	g.PUT("/movies/:movie_id/reviews/:id", r.UpdateReview)
	g.PATCH("/movies/:movie_id/reviews/:id", r.UpdateReview)

	g.GET("/my/reviews", r.MyReviews)
}
