package gate

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moviegoer/rottenpotatoes/internal/model"
)

type fakeMovies map[uint64]model.Movie

func (f fakeMovies) GetByID(_ context.Context, id uint64) (model.Movie, error) {
	m, ok := f[id]
	if !ok {
		return model.Movie{}, sql.ErrNoRows
	}
	return m, nil
}

type fakeReviews map[uint64]model.Review

func (f fakeReviews) GetByID(_ context.Context, id uint64) (model.Review, error) {
	rv, ok := f[id]
	if !ok {
		return model.Review{}, sql.ErrNoRows
	}
	return rv, nil
}

func newTestGate() *Gate {
	movies := fakeMovies{
		7: {ID: 7, Title: "Alien"},
	}
	reviews := fakeReviews{
		10: {ID: 10, MovieID: 7, MoviegoerID: 1, Potatoes: 4},
		11: {ID: 11, MovieID: 7, MoviegoerID: 2, Potatoes: 5},
	}
	return New(movies, reviews)
}

func TestAuthorizeCreateGranted(t *testing.T) {
	g := newTestGate()
	vm, err := g.AuthorizeCreate(context.Background(), 1, 7)
	require.NoError(t, err)
	assert.Equal(t, uint64(7), vm.ID())
	assert.Equal(t, "Alien", vm.Movie().Title)
}

func TestAuthorizeCreateAnonymous(t *testing.T) {
	g := newTestGate()
	_, err := g.AuthorizeCreate(context.Background(), 0, 7)
	assert.ErrorIs(t, err, ErrLoginRequired)
}

func TestAuthorizeCreateMissingMovie(t *testing.T) {
	g := newTestGate()
	_, err := g.AuthorizeCreate(context.Background(), 1, 999)
	assert.ErrorIs(t, err, ErrMovieNotFound)
}

// The session check runs first: an anonymous request for a nonexistent
// movie reports the login denial, not the missing movie.
func TestAuthorizeCreateShortCircuitOrder(t *testing.T) {
	g := newTestGate()
	_, err := g.AuthorizeCreate(context.Background(), 0, 999)
	assert.ErrorIs(t, err, ErrLoginRequired)
}

func TestAuthorizeEditGranted(t *testing.T) {
	g := newTestGate()
	vm, rv, err := g.AuthorizeEdit(context.Background(), 1, 7, 10)
	require.NoError(t, err)
	assert.Equal(t, uint64(7), vm.ID())
	assert.Equal(t, uint64(10), rv.ID)
	assert.Equal(t, uint64(1), rv.MoviegoerID)
}

func TestAuthorizeEditNotOwner(t *testing.T) {
	g := newTestGate()
	_, _, err := g.AuthorizeEdit(context.Background(), 1, 7, 11)
	assert.ErrorIs(t, err, ErrNotReviewOwner)
}

func TestAuthorizeEditMissingReview(t *testing.T) {
	g := newTestGate()
	_, _, err := g.AuthorizeEdit(context.Background(), 1, 7, 999)
	assert.ErrorIs(t, err, ErrReviewNotFound)
}

// A review addressed through a different movie's path must not resolve,
// even when the review id exists.
func TestAuthorizeEditReviewFromOtherMovie(t *testing.T) {
	movies := fakeMovies{
		7: {ID: 7, Title: "Alien"},
		8: {ID: 8, Title: "Aliens"},
	}
	reviews := fakeReviews{
		10: {ID: 10, MovieID: 7, MoviegoerID: 1},
	}
	g := New(movies, reviews)
	_, _, err := g.AuthorizeEdit(context.Background(), 1, 8, 10)
	assert.ErrorIs(t, err, ErrReviewNotFound)
}

func TestAuthorizeEditMissingMovieBeforeOwnership(t *testing.T) {
	g := newTestGate()
	_, _, err := g.AuthorizeEdit(context.Background(), 1, 999, 11)
	assert.ErrorIs(t, err, ErrMovieNotFound)
}
