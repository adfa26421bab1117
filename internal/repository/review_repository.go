package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/moviegoer/rottenpotatoes/internal/gate"
	"github.com/moviegoer/rottenpotatoes/internal/model"
)

// ReviewRepo persists reviews. Creation requires a gate.VerifiedMovie,
// which only the access gate can construct, so a review cannot be
// attached to a movie that was never checked for existence. There is no
// delete operation.
type ReviewRepo struct{ DB *sql.DB }

func NewReviewRepo(db *sql.DB) *ReviewRepo { return &ReviewRepo{DB: db} }

const reviewCols = "id,movie_id,moviegoer_id,potatoes,created_at,updated_at"

// Create inserts a review for the verified movie with the given author
// and rating, then reads the row back to populate timestamps. A foreign
// key failure (movie deleted between check and write) maps the MySQL
// 1452 error to ErrMovieGone.
func (r *ReviewRepo) Create(ctx context.Context, movie gate.VerifiedMovie, moviegoerID uint64, potatoes int) (*model.Review, error) {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO reviews (movie_id, moviegoer_id, potatoes) VALUES (?,?,?)",
		movie.ID(), moviegoerID, potatoes)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1452") {
			return nil, ErrMovieGone
		}
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	rv, err := r.GetByID(ctx, uint64(id))
	if err != nil {
		return nil, err
	}
	return &rv, nil
}

// GetByID fetches a review by primary key. Returns sql.ErrNoRows when
// no such review exists.
func (r *ReviewRepo) GetByID(ctx context.Context, id uint64) (model.Review, error) {
	var rv model.Review
	err := r.DB.QueryRowContext(ctx,
		"SELECT "+reviewCols+" FROM reviews WHERE id=? LIMIT 1", id).
		Scan(&rv.ID, &rv.MovieID, &rv.MoviegoerID, &rv.Potatoes, &rv.CreatedAt, &rv.UpdatedAt)
	return rv, err
}

// UpdatePotatoes loads the review, overwrites only the potatoes value
// and persists it. Returns sql.ErrNoRows when the review is absent.
// Writing the same value twice leaves the row unchanged apart from
// updated_at, so the operation is idempotent for equal inputs.
func (r *ReviewRepo) UpdatePotatoes(ctx context.Context, id uint64, potatoes int) (*model.Review, error) {
	rv, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := r.DB.ExecContext(ctx,
		"UPDATE reviews SET potatoes=?, updated_at=NOW() WHERE id=?",
		potatoes, id); err != nil {
		return nil, err
	}
	rv.Potatoes = potatoes
	return &rv, nil
}

// ListByMovie returns all reviews for a movie, newest first.
func (r *ReviewRepo) ListByMovie(ctx context.Context, movieID uint64) ([]model.Review, error) {
	return r.list(ctx,
		"SELECT "+reviewCols+" FROM reviews WHERE movie_id=? ORDER BY created_at DESC, id DESC",
		movieID)
}

// ListByMoviegoer returns all reviews authored by a moviegoer, newest first.
func (r *ReviewRepo) ListByMoviegoer(ctx context.Context, moviegoerID uint64) ([]model.Review, error) {
	return r.list(ctx,
		"SELECT "+reviewCols+" FROM reviews WHERE moviegoer_id=? ORDER BY created_at DESC, id DESC",
		moviegoerID)
}

func (r *ReviewRepo) list(ctx context.Context, query string, arg uint64) ([]model.Review, error) {
	rows, err := r.DB.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	reviews := make([]model.Review, 0)
	for rows.Next() {
		var rv model.Review
		if err := rows.Scan(&rv.ID, &rv.MovieID, &rv.MoviegoerID, &rv.Potatoes, &rv.CreatedAt, &rv.UpdatedAt); err != nil {
			return nil, err
		}
		reviews = append(reviews, rv)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return reviews, nil
}
