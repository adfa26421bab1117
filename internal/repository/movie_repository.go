package repository

import (
	"context"
	"database/sql"

	"github.com/moviegoer/rottenpotatoes/internal/model"
)

// MovieRepo reads the movie catalog. The catalog is seeded outside this
// service; the API never writes to it, so only lookups are exposed.
type MovieRepo struct{ DB *sql.DB }

func NewMovieRepo(db *sql.DB) *MovieRepo { return &MovieRepo{DB: db} }

const movieCols = "id,title,release_date,rating,description,created_at,updated_at"

// GetByID fetches a movie by primary key. Returns sql.ErrNoRows when
// the movie does not exist; the access gate treats that as a denial.
func (r *MovieRepo) GetByID(ctx context.Context, id uint64) (model.Movie, error) {
	var m model.Movie
	err := r.DB.QueryRowContext(ctx,
		"SELECT "+movieCols+" FROM movies WHERE id=? LIMIT 1", id).
		Scan(&m.ID, &m.Title, &m.ReleaseDate, &m.Rating, &m.Description, &m.CreatedAt, &m.UpdatedAt)
	return m, err
}

// List returns the full catalog ordered by release date, newest first.
func (r *MovieRepo) List(ctx context.Context) ([]model.Movie, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+movieCols+" FROM movies ORDER BY release_date DESC, id DESC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	movies := make([]model.Movie, 0)
	for rows.Next() {
		var m model.Movie
		if err := rows.Scan(&m.ID, &m.Title, &m.ReleaseDate, &m.Rating, &m.Description, &m.CreatedAt, &m.UpdatedAt); err != nil {
			return nil, err
		}
		movies = append(movies, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return movies, nil
}
