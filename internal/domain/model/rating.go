package model

import "time"

// RatingKind selects which of the two rating tables a record lives in.
type RatingKind string

const (
	RatingDifficulty RatingKind = "difficulty"
	RatingQuality    RatingKind = "quality"
)

func (k RatingKind) Valid() bool {
	return k == RatingDifficulty || k == RatingQuality
}

// Rating is a single 1-5 vote by one user on one crackme. At most one
// non-deleted rating of each kind exists per (author, crackme) pair.
type Rating struct {
	ID           string     `json:"id"`
	Kind         RatingKind `json:"kind"`
	Author       string     `json:"author" validate:"required"`
	CrackmeHexID string     `json:"crackme_hexid" validate:"required"`
	Rating       int        `json:"rating" validate:"gte=1,lte=5"`
	Status       Status     `json:"status"`
	CreatedAt    time.Time  `json:"created_at"`
}

// RatingSummary is the aggregate the crackme record caches. Average is 0.0
// when Count is 0; it is never NaN.
type RatingSummary struct {
	Average float64 `json:"average"`
	Count   int     `json:"count"`
}
