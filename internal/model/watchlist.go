package model

// Watchlist is a named list of TMDB movie ids owned by one user. Rows live
// in the `watchlists` table; MovieIDs is stored as a JSON array column.
type Watchlist struct {
	ID          string  `json:"id"`
	UserID      string  `json:"-"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	MovieIDs    []int64 `json:"movieIds"`
}
