package handler

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moviegoer/rottenpotatoes/internal/gate"
	"github.com/moviegoer/rottenpotatoes/internal/model"
	"github.com/moviegoer/rottenpotatoes/internal/queue"
)

type fakeMovies map[uint64]model.Movie

func (f fakeMovies) GetByID(_ context.Context, id uint64) (model.Movie, error) {
	m, ok := f[id]
	if !ok {
		return model.Movie{}, sql.ErrNoRows
	}
	return m, nil
}

// fakeReviewStore backs both the gate's review lookups and the
// handler's mutations, so edits see what creates wrote.
type fakeReviewStore struct {
	nextID  uint64
	reviews map[uint64]model.Review
}

func newFakeReviewStore() *fakeReviewStore {
	return &fakeReviewStore{nextID: 1, reviews: map[uint64]model.Review{}}
}

func (f *fakeReviewStore) GetByID(_ context.Context, id uint64) (model.Review, error) {
	rv, ok := f.reviews[id]
	if !ok {
		return model.Review{}, sql.ErrNoRows
	}
	return rv, nil
}

func (f *fakeReviewStore) Create(_ context.Context, movie gate.VerifiedMovie, moviegoerID uint64, potatoes int) (*model.Review, error) {
	rv := model.Review{ID: f.nextID, MovieID: movie.ID(), MoviegoerID: moviegoerID, Potatoes: potatoes}
	f.nextID++
	f.reviews[rv.ID] = rv
	return &rv, nil
}

func (f *fakeReviewStore) UpdatePotatoes(_ context.Context, reviewID uint64, potatoes int) (*model.Review, error) {
	rv, ok := f.reviews[reviewID]
	if !ok {
		return nil, sql.ErrNoRows
	}
	rv.Potatoes = potatoes
	f.reviews[reviewID] = rv
	return &rv, nil
}

func (f *fakeReviewStore) ListByMoviegoer(_ context.Context, moviegoerID uint64) ([]model.Review, error) {
	var out []model.Review
	for _, rv := range f.reviews {
		if rv.MoviegoerID == moviegoerID {
			out = append(out, rv)
		}
	}
	return out, nil
}

type reviewFixture struct {
	handler *ReviewHandler
	store   *fakeReviewStore
	events  []queue.ReviewPostedEvent
}

func newReviewFixture() *reviewFixture {
	f := &reviewFixture{store: newFakeReviewStore()}
	movies := fakeMovies{7: {ID: 7, Title: "Alien"}}
	g := gate.New(movies, f.store)
	f.handler = NewReviewHandler(g, f.store, func(_ context.Context, ev queue.ReviewPostedEvent) error {
		f.events = append(f.events, ev)
		return nil
	})
	return f
}

func newReviewContext(method, target, body string, params ...string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	names := make([]string, 0, len(params)/2)
	values := make([]string, 0, len(params)/2)
	for i := 0; i+1 < len(params); i += 2 {
		names = append(names, params[i])
		values = append(values, params[i+1])
	}
	c.SetParamNames(names...)
	c.SetParamValues(values...)
	return c, rec
}

func loginAs(c echo.Context, id uint64, name string) {
	// JWT numeric claims arrive as float64; tests mimic that.
	c.Set("moviegoer_id", float64(id))
	c.Set("moviegoer_name", name)
}

func TestCreateReview(t *testing.T) {
	f := newReviewFixture()
	c, rec := newReviewContext(http.MethodPost, "/v1/movies/7/reviews", `{"review":{"potatoes":5}}`, "movie_id", "7")
	loginAs(c, 1, "Armando")

	require.NoError(t, f.handler.CreateReview(c))
	assert.Equal(t, http.StatusCreated, rec.Code)

	rv, ok := f.store.reviews[1]
	require.True(t, ok)
	assert.Equal(t, uint64(7), rv.MovieID)
	assert.Equal(t, uint64(1), rv.MoviegoerID)
	assert.Equal(t, 5, rv.Potatoes)

	require.Len(t, f.events, 1)
	assert.Equal(t, "created", f.events[0].Action)
	assert.Equal(t, "Alien", f.events[0].MovieTitle)
	assert.Equal(t, "Armando", f.events[0].MoviegoerName)
}

func TestCreateReviewAnonymous(t *testing.T) {
	f := newReviewFixture()
	c, rec := newReviewContext(http.MethodPost, "/v1/movies/7/reviews", `{"review":{"potatoes":5}}`, "movie_id", "7")

	require.NoError(t, f.handler.CreateReview(c))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Empty(t, f.store.reviews, "a denied request must not write")
	assert.Empty(t, f.events)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "You must be logged in to create a review.", body["warning"])
}

func TestCreateReviewMissingMovie(t *testing.T) {
	f := newReviewFixture()
	c, rec := newReviewContext(http.MethodPost, "/v1/movies/999/reviews", `{"review":{"potatoes":5}}`, "movie_id", "999")
	loginAs(c, 1, "Armando")

	require.NoError(t, f.handler.CreateReview(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Empty(t, f.store.reviews)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Review must be for an existing movie.", body["warning"])
}

func TestUpdateReview(t *testing.T) {
	f := newReviewFixture()
	f.store.reviews[1] = model.Review{ID: 1, MovieID: 7, MoviegoerID: 1, Potatoes: 2}
	f.store.nextID = 2

	c, rec := newReviewContext(http.MethodPut, "/v1/movies/7/reviews/1", `{"review":{"potatoes":4}}`, "movie_id", "7", "id", "1")
	loginAs(c, 1, "Armando")

	require.NoError(t, f.handler.UpdateReview(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	rv := f.store.reviews[1]
	assert.Equal(t, 4, rv.Potatoes)
	assert.Equal(t, uint64(7), rv.MovieID, "movie binding must not change")
	assert.Equal(t, uint64(1), rv.MoviegoerID, "author binding must not change")

	require.Len(t, f.events, 1)
	assert.Equal(t, "updated", f.events[0].Action)
}

// Repeating the same update leaves the review in the same state.
func TestUpdateReviewIdempotent(t *testing.T) {
	f := newReviewFixture()
	f.store.reviews[1] = model.Review{ID: 1, MovieID: 7, MoviegoerID: 1, Potatoes: 2}
	f.store.nextID = 2

	for i := 0; i < 2; i++ {
		c, rec := newReviewContext(http.MethodPut, "/v1/movies/7/reviews/1", `{"review":{"potatoes":4}}`, "movie_id", "7", "id", "1")
		loginAs(c, 1, "Armando")
		require.NoError(t, f.handler.UpdateReview(c))
		assert.Equal(t, http.StatusOK, rec.Code)
	}
	assert.Equal(t, 4, f.store.reviews[1].Potatoes)
}

func TestUpdateReviewNotOwner(t *testing.T) {
	f := newReviewFixture()
	f.store.reviews[1] = model.Review{ID: 1, MovieID: 7, MoviegoerID: 2, Potatoes: 5}
	f.store.nextID = 2

	c, rec := newReviewContext(http.MethodPut, "/v1/movies/7/reviews/1", `{"review":{"potatoes":1}}`, "movie_id", "7", "id", "1")
	loginAs(c, 1, "Armando")

	require.NoError(t, f.handler.UpdateReview(c))
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, 5, f.store.reviews[1].Potatoes, "denied update must not mutate")
	assert.Empty(t, f.events)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "You are not authorized to edit this review.", body["warning"])
}

// A review reached through another movie's path reads as not found,
// before ownership is ever considered.
func TestUpdateReviewWrongMoviePath(t *testing.T) {
	f := newReviewFixture()
	f.store.reviews[1] = model.Review{ID: 1, MovieID: 8, MoviegoerID: 1, Potatoes: 5}
	f.store.nextID = 2

	c, rec := newReviewContext(http.MethodPut, "/v1/movies/7/reviews/1", `{"review":{"potatoes":1}}`, "movie_id", "7", "id", "1")
	loginAs(c, 1, "Armando")

	require.NoError(t, f.handler.UpdateReview(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, 5, f.store.reviews[1].Potatoes)
}

func TestNewReview(t *testing.T) {
	f := newReviewFixture()
	c, rec := newReviewContext(http.MethodGet, "/v1/movies/7/reviews/new", "", "movie_id", "7")
	loginAs(c, 1, "Armando")

	require.NoError(t, f.handler.NewReview(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, f.store.reviews, "the form endpoint must not write")
}

func TestEditReviewOwner(t *testing.T) {
	f := newReviewFixture()
	f.store.reviews[1] = model.Review{ID: 1, MovieID: 7, MoviegoerID: 1, Potatoes: 3}
	f.store.nextID = 2

	c, rec := newReviewContext(http.MethodGet, "/v1/movies/7/reviews/1/edit", "", "movie_id", "7", "id", "1")
	loginAs(c, 1, "Armando")

	require.NoError(t, f.handler.EditReview(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Review struct {
			Potatoes int `json:"potatoes"`
		} `json:"review"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 3, body.Review.Potatoes)
}

func TestMyReviews(t *testing.T) {
	f := newReviewFixture()
	f.store.reviews[1] = model.Review{ID: 1, MovieID: 7, MoviegoerID: 1, Potatoes: 3}
	f.store.reviews[2] = model.Review{ID: 2, MovieID: 7, MoviegoerID: 2, Potatoes: 5}
	f.store.nextID = 3

	c, rec := newReviewContext(http.MethodGet, "/v1/my/reviews", "")
	loginAs(c, 1, "Armando")

	require.NoError(t, f.handler.MyReviews(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Reviews []struct {
			ID uint64 `json:"id"`
		} `json:"reviews"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Reviews, 1)
	assert.Equal(t, uint64(1), body.Reviews[0].ID)
}

func TestMyReviewsAnonymous(t *testing.T) {
	f := newReviewFixture()
	c, rec := newReviewContext(http.MethodGet, "/v1/my/reviews", "")

	require.NoError(t, f.handler.MyReviews(c))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
