package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/moviegoer/rottenpotatoes/internal/model"
)

// MoviegoerRepo provides persistence for moviegoer identities.
type MoviegoerRepo struct{ DB *sql.DB }

func NewMoviegoerRepo(db *sql.DB) *MoviegoerRepo { return &MoviegoerRepo{DB: db} }

const moviegoerCols = "id,provider,uid,name,password_hash,created_at,updated_at"

// FindByProviderUID fetches a moviegoer by its external identity pair.
// Returns sql.ErrNoRows when the identity has never been seen.
func (r *MoviegoerRepo) FindByProviderUID(ctx context.Context, provider, uid string) (model.Moviegoer, error) {
	var m model.Moviegoer
	err := r.DB.QueryRowContext(ctx,
		"SELECT "+moviegoerCols+" FROM moviegoers WHERE provider=? AND uid=? LIMIT 1",
		provider, uid).
		Scan(&m.ID, &m.Provider, &m.UID, &m.Name, &m.PasswordHash, &m.CreatedAt, &m.UpdatedAt)
	return m, err
}

// GetByID fetches a moviegoer by primary key.
func (r *MoviegoerRepo) GetByID(ctx context.Context, id uint64) (model.Moviegoer, error) {
	var m model.Moviegoer
	err := r.DB.QueryRowContext(ctx,
		"SELECT "+moviegoerCols+" FROM moviegoers WHERE id=? LIMIT 1", id).
		Scan(&m.ID, &m.Provider, &m.UID, &m.Name, &m.PasswordHash, &m.CreatedAt, &m.UpdatedAt)
	return m, err
}

// Create inserts a new moviegoer and populates the generated ID and
// timestamps on the given record. A duplicate (provider, uid) pair maps
// the MySQL 1062 error to ErrIdentityExists so callers can tell a lost
// identity race from other failures.
func (r *MoviegoerRepo) Create(ctx context.Context, m *model.Moviegoer) error {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO moviegoers (provider, uid, name, password_hash) VALUES (?,?,?,?)",
		m.Provider, m.UID, m.Name, m.PasswordHash)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return ErrIdentityExists
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	m.ID = uint64(id)
	// Read the row back so the caller sees database-assigned timestamps.
	return r.DB.QueryRowContext(ctx,
		"SELECT created_at, updated_at FROM moviegoers WHERE id=?", m.ID).
		Scan(&m.CreatedAt, &m.UpdatedAt)
}
