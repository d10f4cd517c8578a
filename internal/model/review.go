package model

import "time"

// Review mirrors a row of the `reviews` table joined with the author's
// username. MovieID is the TMDB movie identifier.
type Review struct {
	ID        string     `json:"id"`
	MovieID   int64      `json:"movieId"`
	Rating    int        `json:"rating"`
	Comment   string     `json:"comment"`
	Author    ReviewUser `json:"user"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

// ReviewUser is the author projection embedded in a review.
type ReviewUser struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// Review constraints.
const (
	MinRating        = 1
	MaxRating        = 5
	MaxCommentLength = 1000
)
