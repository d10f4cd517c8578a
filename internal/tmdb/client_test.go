package tmdb

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearch_UsesSearchEndpointWithQuery(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search/movie", r.URL.Path)
		assert.Equal(t, "fight club", r.URL.Query().Get("query"))
		assert.Equal(t, "k", r.URL.Query().Get("api_key"))
		assert.Equal(t, "2", r.URL.Query().Get("page"))
		_, _ = w.Write([]byte(`{"page":2,"total_pages":3,"total_results":50,"results":[
			{"id":550,"title":"Fight Club","poster_path":"/p.jpg","release_date":"1999-10-15","overview":"o","vote_average":8.4,"genre_ids":[18],"popularity":99.1}
		]}`))
	}))
	defer srv.Close()

	res, err := New(srv.URL, "k", time.Second).Search(context.Background(), SearchParams{Query: "fight club", Page: 2})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Page)
	assert.Equal(t, 3, res.TotalPages)
	require.Len(t, res.Results, 1)
	assert.Equal(t, int64(550), res.Results[0].ID)
	assert.Equal(t, []int{18}, res.Results[0].GenreIDs)

	// unknown upstream fields are dropped
	raw, err := json.Marshal(res)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "popularity")
	assert.NotContains(t, string(raw), "total_results")
}

func TestSearch_DiscoverWithoutQuery(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/discover/movie", r.URL.Path)
		assert.Equal(t, "28", r.URL.Query().Get("with_genres"))
		assert.Equal(t, "2020", r.URL.Query().Get("primary_release_year"))
		assert.Equal(t, "popularity.desc", r.URL.Query().Get("sort_by"))
		assert.Equal(t, "1", r.URL.Query().Get("page"))
		_, _ = w.Write([]byte(`{"page":1,"total_pages":1}`))
	}))
	defer srv.Close()

	res, err := New(srv.URL, "k", time.Second).Search(context.Background(),
		SearchParams{Genre: "28", Year: "2020", Sort: "popularity.desc"})
	require.NoError(t, err)
	assert.NotNil(t, res.Results)
	assert.Empty(t, res.Results)
}

func TestMovie(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/movie/550" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		assert.Equal(t, "credits,videos", r.URL.Query().Get("append_to_response"))
		_, _ = w.Write([]byte(`{"id":550,"title":"Fight Club","original_title":"Fight Club","genres":[{"id":18,"name":"Drama"}],
			"credits":{"cast":[{"name":"Brad Pitt"}]},"videos":{"results":[]},"budget":63000000}`))
	}))
	defer srv.Close()
	c := New(srv.URL+"/", "k", time.Second)

	m, err := c.Movie(context.Background(), 550)
	require.NoError(t, err)
	assert.Equal(t, "Fight Club", m.Title)
	assert.Equal(t, []Genre{{ID: 18, Name: "Drama"}}, m.Genres)
	assert.JSONEq(t, `{"cast":[{"name":"Brad Pitt"}]}`, string(m.Credits))

	_, err = c.Movie(context.Background(), 1)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpstreamFailures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	_, err := New(srv.URL, "secret-key", time.Second).Search(context.Background(), SearchParams{Query: "x"})
	assert.ErrorIs(t, err, ErrUpstream)

	slow := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer slow.Close()

	_, err = New(slow.URL, "secret-key", 20*time.Millisecond).Movie(context.Background(), 1)
	require.ErrorIs(t, err, ErrUpstream)
	assert.NotContains(t, err.Error(), "secret-key")
}
