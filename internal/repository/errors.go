package repository

import "errors"

// ErrIdentityExists is returned when inserting a moviegoer whose
// (provider, uid) pair already exists. Under concurrent first logins for
// the same identity it surfaces on the losing writer; the unique index
// guarantees at most one row per identity.
var ErrIdentityExists = errors.New("identity already exists")

// ErrMovieGone is returned when a review insert fails its foreign key
// check because the referenced movie disappeared between the gate's
// existence check and the write. The constraint is the second safety
// net behind the gate.
var ErrMovieGone = errors.New("movie no longer exists")
