package model

import "time"

// Moviegoer represents a row in the `moviegoers` table. A moviegoer is
// the local identity behind a review author. The pair (Provider, UID)
// is unique: it identifies at most one moviegoer, regardless of how
// many times the same person authenticates.
//
// Fields:
//  ID           – primary key identifier.
//  Provider     – identity source tag (e.g. "google", "github", "local").
//  UID          – opaque subject identifier, unique within the provider.
//  Name         – display name reported by the provider; may be empty.
//  PasswordHash – bcrypt hash, set only for the "local" provider (nullable).
//  CreatedAt    – timestamp of first authentication.
//  UpdatedAt    – timestamp of last update.
type Moviegoer struct {
	ID           uint64     // moviegoers.id
	Provider     string     // moviegoers.provider
	UID          string     // moviegoers.uid
	Name         string     // moviegoers.name
	PasswordHash *string    // moviegoers.password_hash (nullable)
	CreatedAt    time.Time  // moviegoers.created_at
	UpdatedAt    time.Time  // moviegoers.updated_at
}
