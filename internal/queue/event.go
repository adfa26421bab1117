// Package queue defines message payloads exchanged over the message broker.
package queue

// ReviewPostedEvent is published whenever a review is created or its
// rating updated. It carries enough context for downstream consumers to
// log or notify without querying the primary database.
type ReviewPostedEvent struct {
	ReviewID      uint64 `json:"review_id"`
	MovieID       uint64 `json:"movie_id"`
	MovieTitle    string `json:"movie_title"`
	MoviegoerID   uint64 `json:"moviegoer_id"`
	MoviegoerName string `json:"moviegoer_name"`
	Potatoes      int    `json:"potatoes"`
	Action        string `json:"action"` // "created" or "updated"
	PostedAt      string `json:"posted_at"`
}
