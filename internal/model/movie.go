package model

import "time"

// Movie represents a row in the `movies` table. The catalog itself is
// maintained outside this service (seeded by migrations); the API only
// reads it and validates that reviews attach to movies that exist.
//
// Fields:
//  ID          – primary key identifier.
//  Title       – movie title.
//  ReleaseDate – theatrical release date (date only, UTC).
//  Rating      – MPAA rating string such as "PG-13"; may be empty.
//  Description – free-form synopsis; may be empty.
//  CreatedAt   – timestamp of creation.
//  UpdatedAt   – timestamp of last update.
type Movie struct {
	ID          uint64    // movies.id
	Title       string    // movies.title
	ReleaseDate time.Time // movies.release_date
	Rating      string    // movies.rating
	Description string    // movies.description
	CreatedAt   time.Time // movies.created_at
	UpdatedAt   time.Time // movies.updated_at
}
