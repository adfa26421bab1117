// Package identity maps external authentication assertions onto local
// moviegoer records. It is the only place where identity-to-moviegoer
// mapping logic lives.
package identity

import (
	"context"
	"database/sql"
	"errors"

	"github.com/moviegoer/rottenpotatoes/internal/model"
)

// ErrInvalidAssertion is returned when an assertion arrives without a
// provider or subject identifier.
var ErrInvalidAssertion = errors.New("provider and uid are required")

// Store is the persistence surface the resolver needs. Implemented by
// repository.MoviegoerRepo; tests substitute an in-memory fake.
type Store interface {
	FindByProviderUID(ctx context.Context, provider, uid string) (model.Moviegoer, error)
	Create(ctx context.Context, m *model.Moviegoer) error
}

// Resolver resolves (provider, uid, name) triples to moviegoers,
// creating a record on first sight.
type Resolver struct {
	store Store
}

func NewResolver(store Store) *Resolver { return &Resolver{store: store} }

// Resolve returns the moviegoer for the given assertion. A known
// (provider, uid) pair returns the existing record unchanged; an unseen
// pair creates one with the given display name. At most one record ever
// exists per pair: when two first logins race, the unique index makes
// the losing insert fail and that error surfaces unretried
// (repository.ErrIdentityExists from the canonical store).
func (r *Resolver) Resolve(ctx context.Context, provider, uid, name string) (model.Moviegoer, error) {
	if provider == "" || uid == "" {
		return model.Moviegoer{}, ErrInvalidAssertion
	}
	m, err := r.store.FindByProviderUID(ctx, provider, uid)
	if err == nil {
		return m, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return model.Moviegoer{}, err
	}
	m = model.Moviegoer{Provider: provider, UID: uid, Name: name}
	if err := r.store.Create(ctx, &m); err != nil {
		return model.Moviegoer{}, err
	}
	return m, nil
}
