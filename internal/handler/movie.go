package handler

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/moviegoer/rottenpotatoes/internal/model"
)

// MovieCatalog is the read surface of the movie catalog consumed by the
// browse endpoints.
type MovieCatalog interface {
	List(ctx context.Context) ([]model.Movie, error)
	GetByID(ctx context.Context, id uint64) (model.Movie, error)
}

// MovieReviewLister lists reviews for the movie detail endpoint.
type MovieReviewLister interface {
	ListByMovie(ctx context.Context, movieID uint64) ([]model.Review, error)
}

// MovieHandler serves the public, cacheable browse endpoints.
type MovieHandler struct {
	Movies  MovieCatalog
	Reviews MovieReviewLister
}

func NewMovieHandler(movies MovieCatalog, reviews MovieReviewLister) *MovieHandler {
	return &MovieHandler{Movies: movies, Reviews: reviews}
}

// ----- response shapes -----

type movieJSON struct {
	ID          uint64 `json:"id"`
	Title       string `json:"title"`
	ReleaseDate string `json:"release_date"`
	Rating      string `json:"rating,omitempty"`
	Description string `json:"description,omitempty"`
}

type reviewJSON struct {
	ID          uint64    `json:"id"`
	MovieID     uint64    `json:"movie_id"`
	MoviegoerID uint64    `json:"moviegoer_id"`
	Potatoes    int       `json:"potatoes"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func toMovieJSON(m model.Movie) movieJSON {
	return movieJSON{
		ID:          m.ID,
		Title:       m.Title,
		ReleaseDate: m.ReleaseDate.UTC().Format("2006-01-02"),
		Rating:      m.Rating,
		Description: m.Description,
	}
}

func toReviewJSON(rv model.Review) reviewJSON {
	return reviewJSON{
		ID:          rv.ID,
		MovieID:     rv.MovieID,
		MoviegoerID: rv.MoviegoerID,
		Potatoes:    rv.Potatoes,
		CreatedAt:   rv.CreatedAt,
		UpdatedAt:   rv.UpdatedAt,
	}
}

func toReviewJSONList(reviews []model.Review) []reviewJSON {
	out := make([]reviewJSON, 0, len(reviews))
	for _, rv := range reviews {
		out = append(out, toReviewJSON(rv))
	}
	return out
}

// ListMovies handles GET /v1/movies.
func (h *MovieHandler) ListMovies(c echo.Context) error {
	movies, err := h.Movies.List(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not list movies"})
	}
	out := make([]movieJSON, 0, len(movies))
	for _, m := range movies {
		out = append(out, toMovieJSON(m))
	}
	return c.JSON(http.StatusOK, echo.Map{"movies": out})
}

// GetMovie handles GET /v1/movies/:id and includes the movie's reviews.
func (h *MovieHandler) GetMovie(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	ctx := c.Request().Context()

	m, err := h.Movies.GetByID(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "movie not found"})
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not load movie"})
	}

	reviews, err := h.Reviews.ListByMovie(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not load reviews"})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"movie":   toMovieJSON(m),
		"reviews": toReviewJSONList(reviews),
	})
}

// ListMovieReviews handles GET /v1/movies/:movie_id/reviews, the public
// review listing for one movie.
func (h *MovieHandler) ListMovieReviews(c echo.Context) error {
	movieID, err := strconv.ParseUint(c.Param("movie_id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid movie id"})
	}
	ctx := c.Request().Context()

	if _, err := h.Movies.GetByID(ctx, movieID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "movie not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not load movie"})
	}

	reviews, err := h.Reviews.ListByMovie(ctx, movieID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not load reviews"})
	}
	return c.JSON(http.StatusOK, echo.Map{"reviews": toReviewJSONList(reviews)})
}
