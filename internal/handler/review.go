package handler

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/moviegoer/rottenpotatoes/internal/gate"
	"github.com/moviegoer/rottenpotatoes/internal/model"
	"github.com/moviegoer/rottenpotatoes/internal/queue"
)

// ReviewStore is the ownership store surface the handlers mutate
// through. Creation demands a gate.VerifiedMovie, so these handlers
// cannot write a review without the gate having checked the movie.
type ReviewStore interface {
	Create(ctx context.Context, movie gate.VerifiedMovie, moviegoerID uint64, potatoes int) (*model.Review, error)
	UpdatePotatoes(ctx context.Context, reviewID uint64, potatoes int) (*model.Review, error)
	ListByMoviegoer(ctx context.Context, moviegoerID uint64) ([]model.Review, error)
}

// ReviewHandler serves the review mutation endpoints. Every mutation
// passes the access gate first; a denial resolves at that boundary and
// never reaches the store. Publish is called after successful writes
// and may be nil (events disabled); publish failures are ignored so the
// broker cannot fail a request that already committed.
type ReviewHandler struct {
	Gate    *gate.Gate
	Store   ReviewStore
	Publish func(ctx context.Context, event queue.ReviewPostedEvent) error
}

func NewReviewHandler(g *gate.Gate, store ReviewStore, publish func(context.Context, queue.ReviewPostedEvent) error) *ReviewHandler {
	return &ReviewHandler{Gate: g, Store: store, Publish: publish}
}

// reviewBody mirrors the wire format review[potatoes].
type reviewBody struct {
	Review struct {
		Potatoes int `json:"potatoes"`
	} `json:"review"`
}

func parseMovieID(c echo.Context) (uint64, error) {
	return strconv.ParseUint(c.Param("movie_id"), 10, 64)
}

// NewReview handles GET /v1/movies/:movie_id/reviews/new. It runs the
// create preconditions and returns the payload an edit form needs.
func (h *ReviewHandler) NewReview(c echo.Context) error {
	moviegoerID, _ := getMoviegoerID(c)
	movieID, err := parseMovieID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid movie id"})
	}
	vm, err := h.Gate.AuthorizeCreate(c.Request().Context(), moviegoerID, movieID)
	if err != nil {
		return denied(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"movie": toMovieJSON(vm.Movie()),
		"review": echo.Map{
			"movie_id": vm.ID(),
			"potatoes": 0,
		},
	})
}

// CreateReview handles POST /v1/movies/:movie_id/reviews.
func (h *ReviewHandler) CreateReview(c echo.Context) error {
	moviegoerID, _ := getMoviegoerID(c)
	movieID, err := parseMovieID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid movie id"})
	}
	var body reviewBody
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	vm, err := h.Gate.AuthorizeCreate(ctx, moviegoerID, movieID)
	if err != nil {
		return denied(c, err)
	}

	rv, err := h.Store.Create(ctx, vm, moviegoerID, body.Review.Potatoes)
	if err != nil {
		// The FK safety net fired: the movie vanished after the check.
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "could not create review"})
	}

	h.publishEvent(c, vm, rv, "created")
	return c.JSON(http.StatusCreated, echo.Map{"review": toReviewJSON(*rv)})
}

// EditReview handles GET /v1/movies/:movie_id/reviews/:id/edit. It runs
// the full gate (session, target, ownership) and returns the current
// review for editing; nothing is mutated.
func (h *ReviewHandler) EditReview(c echo.Context) error {
	moviegoerID, _ := getMoviegoerID(c)
	movieID, err := parseMovieID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid movie id"})
	}
	reviewID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid review id"})
	}

	vm, rv, err := h.Gate.AuthorizeEdit(c.Request().Context(), moviegoerID, movieID, reviewID)
	if err != nil {
		return denied(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"movie":  toMovieJSON(vm.Movie()),
		"review": toReviewJSON(rv),
	})
}

// UpdateReview handles PUT/PATCH /v1/movies/:movie_id/reviews/:id. Only
// the potatoes value changes; movie and author bindings are immutable.
func (h *ReviewHandler) UpdateReview(c echo.Context) error {
	moviegoerID, _ := getMoviegoerID(c)
	movieID, err := parseMovieID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid movie id"})
	}
	reviewID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid review id"})
	}
	var body reviewBody
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	vm, _, err := h.Gate.AuthorizeEdit(ctx, moviegoerID, movieID, reviewID)
	if err != nil {
		return denied(c, err)
	}

	rv, err := h.Store.UpdatePotatoes(ctx, reviewID, body.Review.Potatoes)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return denied(c, gate.ErrReviewNotFound)
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not update review"})
	}

	h.publishEvent(c, vm, rv, "updated")
	return c.JSON(http.StatusOK, echo.Map{"review": toReviewJSON(*rv)})
}

// MyReviews handles GET /v1/my/reviews, the caller's own reviews.
func (h *ReviewHandler) MyReviews(c echo.Context) error {
	moviegoerID, err := getMoviegoerID(c)
	if err != nil || moviegoerID == 0 {
		return denied(c, gate.ErrLoginRequired)
	}
	reviews, err := h.Store.ListByMoviegoer(c.Request().Context(), moviegoerID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not load reviews"})
	}
	return c.JSON(http.StatusOK, echo.Map{"reviews": toReviewJSONList(reviews)})
}

func (h *ReviewHandler) publishEvent(c echo.Context, vm gate.VerifiedMovie, rv *model.Review, action string) {
	if h.Publish == nil {
		return
	}
	_ = h.Publish(c.Request().Context(), queue.ReviewPostedEvent{
		ReviewID:      rv.ID,
		MovieID:       rv.MovieID,
		MovieTitle:    vm.Movie().Title,
		MoviegoerID:   rv.MoviegoerID,
		MoviegoerName: getMoviegoerName(c),
		Potatoes:      rv.Potatoes,
		Action:        action,
		PostedAt:      time.Now().UTC().Format(time.RFC3339),
	})
}
