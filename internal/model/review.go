package model

import "time"

// Review records a single moviegoer's numeric "potatoes" rating for one
// movie. A review belongs to exactly one movie and one moviegoer. The
// schema does not restrict the potatoes value or enforce one review per
// (movie, moviegoer) pair; repeated posts create independent rows.
//
// Fields:
//  ID          – primary key identifier.
//  MovieID     – movie being reviewed (FK to movies.id).
//  MoviegoerID – author of the review (FK to moviegoers.id).
//  Potatoes    – integer rating value.
//  CreatedAt   – creation timestamp.
//  UpdatedAt   – last update timestamp.
type Review struct {
	ID          uint64    // reviews.id
	MovieID     uint64    // reviews.movie_id
	MoviegoerID uint64    // reviews.moviegoer_id
	Potatoes    int       // reviews.potatoes
	CreatedAt   time.Time // reviews.created_at
	UpdatedAt   time.Time // reviews.updated_at
}
