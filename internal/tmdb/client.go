// Package tmdb is a small client for The Movie Database v3 API. Responses
// are decoded into trimmed structs so that only the fields the front end
// uses are passed on.
package tmdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// ErrNotFound is returned when TMDB has no movie with the requested id.
var ErrNotFound = errors.New("tmdb: not found")

// ErrUpstream wraps any other non-2xx answer or transport failure.
var ErrUpstream = errors.New("tmdb: upstream error")

// Client calls the TMDB API with an API key.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

// New returns a client whose requests are bounded by timeout.
func New(baseURL, apiKey string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		http:    &http.Client{Timeout: timeout},
	}
}

// SearchParams selects between title search (Query set) and discovery.
type SearchParams struct {
	Query string
	Genre string
	Year  string
	Sort  string
	Page  int
}

// MovieSummary is one search hit.
type MovieSummary struct {
	ID          int64   `json:"id"`
	Title       string  `json:"title"`
	PosterPath  *string `json:"poster_path"`
	ReleaseDate string  `json:"release_date"`
	Overview    string  `json:"overview"`
	VoteAverage float64 `json:"vote_average"`
	GenreIDs    []int   `json:"genre_ids"`
}

// SearchResult is one page of hits.
type SearchResult struct {
	Page       int            `json:"page"`
	TotalPages int            `json:"total_pages"`
	Results    []MovieSummary `json:"results"`
}

// Genre is a TMDB genre.
type Genre struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// MovieDetails is a movie with its credits and videos. Credits and videos
// are forwarded unchanged.
type MovieDetails struct {
	ID            int64           `json:"id"`
	Title         string          `json:"title"`
	OriginalTitle string          `json:"original_title"`
	ReleaseDate   string          `json:"release_date"`
	Genres        []Genre         `json:"genres"`
	Overview      string          `json:"overview"`
	PosterPath    *string         `json:"poster_path"`
	VoteAverage   float64         `json:"vote_average"`
	Credits       json.RawMessage `json:"credits,omitempty"`
	Videos        json.RawMessage `json:"videos,omitempty"`
}

// Search runs /search/movie when p.Query is set and /discover/movie
// otherwise.
func (c *Client) Search(ctx context.Context, p SearchParams) (SearchResult, error) {
	if p.Page < 1 {
		p.Page = 1
	}
	q := url.Values{"page": {strconv.Itoa(p.Page)}}
	endpoint := "/search/movie"
	if strings.TrimSpace(p.Query) != "" {
		q.Set("query", p.Query)
	} else {
		endpoint = "/discover/movie"
		setIf(q, "with_genres", p.Genre)
		setIf(q, "primary_release_year", p.Year)
		setIf(q, "sort_by", p.Sort)
	}

	var out SearchResult
	if err := c.get(ctx, endpoint, q, &out); err != nil {
		return SearchResult{}, err
	}
	if out.Results == nil {
		out.Results = []MovieSummary{}
	}
	return out, nil
}

// Movie fetches details for id including credits and videos.
func (c *Client) Movie(ctx context.Context, id int64) (MovieDetails, error) {
	var out MovieDetails
	q := url.Values{"append_to_response": {"credits,videos"}}
	if err := c.get(ctx, "/movie/"+strconv.FormatInt(id, 10), q, &out); err != nil {
		return MovieDetails{}, err
	}
	return out, nil
}

func (c *Client) get(ctx context.Context, endpoint string, q url.Values, dst any) error {
	q.Set("api_key", c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+endpoint+"?"+q.Encode(), nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrUpstream, endpoint, redact(err, c.apiKey))
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		_, _ = io.Copy(io.Discard, resp.Body)
		return ErrNotFound
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		_, _ = io.Copy(io.Discard, resp.Body)
		return fmt.Errorf("%w: %s: status %d", ErrUpstream, endpoint, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return fmt.Errorf("%w: %s: decode: %v", ErrUpstream, endpoint, err)
	}
	return nil
}

func setIf(q url.Values, key, val string) {
	if val = strings.TrimSpace(val); val != "" {
		q.Set(key, val)
	}
}

// redact removes the API key from transport errors, which embed the URL.
func redact(err error, key string) string {
	if key == "" {
		return err.Error()
	}
	return strings.ReplaceAll(err.Error(), key, "REDACTED")
}
