package tmdb

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearch_APIKey(t *testing.T) {
	var got *http.Request
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r
		_, _ = w.Write([]byte(`{"page":1,"results":[{"id":329865,"title":"Arrival"}]}`))
	}))
	t.Cleanup(srv.Close)

	c := New("v3key", WithBaseURL(srv.URL))
	body, err := c.Search(context.Background(), "movie", "arrival 2016")
	require.NoError(t, err)

	assert.JSONEq(t, `{"page":1,"results":[{"id":329865,"title":"Arrival"}]}`, string(body))
	assert.Equal(t, "/search/movie", got.URL.Path)
	assert.Equal(t, "v3key", got.URL.Query().Get("api_key"))
	assert.Equal(t, "arrival 2016", got.URL.Query().Get("query"))
	assert.Empty(t, got.Header.Get("Authorization"))
}

func TestSearch_ReadToken(t *testing.T) {
	token := "eyJhbGciOiJIUzI1NiJ9." + strings.Repeat("a", 80) + ".signature"
	var got *http.Request
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r
		_, _ = w.Write([]byte(`{}`))
	}))
	t.Cleanup(srv.Close)

	_, err := New(token, WithBaseURL(srv.URL)).Search(context.Background(), "tv", "severance")
	require.NoError(t, err)
	assert.Equal(t, "/search/tv", got.URL.Path)
	assert.Equal(t, "Bearer "+token, got.Header.Get("Authorization"))
	assert.False(t, got.URL.Query().Has("api_key"))
}

func TestSearch_Errors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	t.Cleanup(srv.Close)
	c := New("bad", WithBaseURL(srv.URL))

	_, err := c.Search(context.Background(), "movie", "x")
	assert.ErrorContains(t, err, "401")

	_, err = c.Search(context.Background(), "person", "x")
	assert.ErrorContains(t, err, "invalid media type")
}

func TestSearch_TransportErrorHidesKey(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()

	_, err := New("secretkey", WithBaseURL(srv.URL)).Search(context.Background(), "movie", "x")
	require.Error(t, err)
	assert.NotContains(t, err.Error(), "secretkey")
}
