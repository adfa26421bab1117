// Package gate implements the authorization pipeline evaluated before
// any review mutation. Checks run in a fixed order and short-circuit on
// the first failure: session, then target movie, then (for edits)
// review ownership. A denial is final for the request; no mutation
// happens after one.
package gate

import (
	"context"
	"database/sql"
	"errors"

	"github.com/moviegoer/rottenpotatoes/internal/model"
)

// Denial reasons. Handlers translate these into HTTP statuses and the
// user-facing warning messages.
var (
	ErrLoginRequired  = errors.New("login required")
	ErrMovieNotFound  = errors.New("movie not found")
	ErrReviewNotFound = errors.New("review not found")
	ErrNotReviewOwner = errors.New("not review owner")
)

// MovieFinder looks up movies for the target precondition.
type MovieFinder interface {
	GetByID(ctx context.Context, id uint64) (model.Movie, error)
}

// ReviewFinder looks up reviews for the ownership precondition.
type ReviewFinder interface {
	GetByID(ctx context.Context, id uint64) (model.Review, error)
}

// VerifiedMovie is proof that a movie existed when the gate checked it.
// The field is unexported so only this package can construct one; review
// creation takes a VerifiedMovie, which makes skipping the existence
// check a compile error rather than a call-order convention.
type VerifiedMovie struct {
	movie model.Movie
}

// ID returns the verified movie's identifier.
func (v VerifiedMovie) ID() uint64 { return v.movie.ID }

// Movie returns the movie as loaded at verification time.
func (v VerifiedMovie) Movie() model.Movie { return v.movie }

// Gate evaluates mutation preconditions against the stores.
type Gate struct {
	movies  MovieFinder
	reviews ReviewFinder
}

func New(movies MovieFinder, reviews ReviewFinder) *Gate {
	return &Gate{movies: movies, reviews: reviews}
}

// AuthorizeCreate grants the new/create actions: the caller must be
// authenticated and the target movie must exist. On success it returns
// the VerifiedMovie capability for the ownership store.
func (g *Gate) AuthorizeCreate(ctx context.Context, moviegoerID, movieID uint64) (VerifiedMovie, error) {
	if moviegoerID == 0 {
		return VerifiedMovie{}, ErrLoginRequired
	}
	m, err := g.movies.GetByID(ctx, movieID)
	if errors.Is(err, sql.ErrNoRows) {
		return VerifiedMovie{}, ErrMovieNotFound
	}
	if err != nil {
		return VerifiedMovie{}, err
	}
	return VerifiedMovie{movie: m}, nil
}

// AuthorizeEdit grants the edit/update actions. On top of the create
// preconditions, the addressed review must exist within the movie's
// collection and belong to the caller. Ownership compares moviegoer
// IDs, never display names.
func (g *Gate) AuthorizeEdit(ctx context.Context, moviegoerID, movieID, reviewID uint64) (VerifiedMovie, model.Review, error) {
	vm, err := g.AuthorizeCreate(ctx, moviegoerID, movieID)
	if err != nil {
		return VerifiedMovie{}, model.Review{}, err
	}
	rv, err := g.reviews.GetByID(ctx, reviewID)
	if errors.Is(err, sql.ErrNoRows) {
		return VerifiedMovie{}, model.Review{}, ErrReviewNotFound
	}
	if err != nil {
		return VerifiedMovie{}, model.Review{}, err
	}
	// A review addressed through another movie's path does not exist as
	// far as that movie is concerned.
	if rv.MovieID != movieID {
		return VerifiedMovie{}, model.Review{}, ErrReviewNotFound
	}
	if rv.MoviegoerID != moviegoerID {
		return VerifiedMovie{}, model.Review{}, ErrNotReviewOwner
	}
	return vm, rv, nil
}
