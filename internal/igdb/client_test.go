package igdb_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/handsomefox/website-catalogue/internal/igdb"
	"github.com/handsomefox/website-catalogue/internal/upstream"
)

type fakeIGDB struct {
	tokenCalls atomic.Int32
	lastBody   atomic.Value
	lastAuth   atomic.Value
	lastClient atomic.Value
}

func (f *fakeIGDB) handler(t *testing.T) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /oauth2/token", func(w http.ResponseWriter, r *http.Request) {
		f.tokenCalls.Add(1)
		require.NoError(t, r.ParseForm())
		if r.PostForm.Get("client_id") != "client" || r.PostForm.Get("client_secret") != "secret" ||
			r.PostForm.Get("grant_type") != "client_credentials" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"tok-1","expires_in":5000000,"token_type":"bearer"}`))
	})
	mux.HandleFunc("POST /v4/games", func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		f.lastBody.Store(string(b))
		f.lastAuth.Store(r.Header.Get("Authorization"))
		f.lastClient.Store(r.Header.Get("Client-ID"))
		if strings.Contains(string(b), "everything") {
			_, _ = w.Write([]byte("[" + strings.Repeat(`{"id":1},`, 1<<19) + "{}]"))
			return
		}
		_, _ = w.Write([]byte(`[{"id":26226,"name":"Celeste"}]`))
	})
	return mux
}

func newClient(t *testing.T, secret string) (*igdb.Client, *fakeIGDB) {
	t.Helper()
	fake := &fakeIGDB{}
	srv := httptest.NewServer(fake.handler(t))
	t.Cleanup(srv.Close)

	c, err := igdb.New(igdb.Config{
		ClientID:          "client",
		ClientSecret:      secret,
		BaseURL:           srv.URL + "/v4",
		TokenURL:          srv.URL + "/oauth2/token",
		RequestsPerSecond: 1000,
	})
	require.NoError(t, err)
	return c, fake
}

func TestSearch(t *testing.T) {
	c, fake := newClient(t, "secret")

	body, err := c.Search(context.Background(), `celeste "farewell"`)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id":26226,"name":"Celeste"}]`, string(body))
	assert.Equal(t, `fields name,cover.url,id; search "celeste \"farewell\"";`, fake.lastBody.Load())
	assert.Equal(t, "Bearer tok-1", fake.lastAuth.Load())
	assert.Equal(t, "client", fake.lastClient.Load())

	_, err = c.Search(context.Background(), "hades")
	require.NoError(t, err)
	assert.Equal(t, int32(1), fake.tokenCalls.Load(), "token is reused until it expires")
}

func TestSearch_TokenRejected(t *testing.T) {
	c, _ := newClient(t, "wrong")
	_, err := c.Search(context.Background(), "hades")
	assert.ErrorContains(t, err, "igdb token")
}

func TestSearch_OversizedBodyFails(t *testing.T) {
	c, _ := newClient(t, "secret")
	_, err := c.Search(context.Background(), "everything")
	assert.ErrorIs(t, err, upstream.ErrBodyTooLarge)
}

func TestSearch_CallerCancelsSlowTokenFetch(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	t.Cleanup(srv.Close)
	t.Cleanup(func() { close(release) })

	c, err := igdb.New(igdb.Config{
		ClientID:          "client",
		ClientSecret:      "secret",
		BaseURL:           srv.URL + "/v4",
		TokenURL:          srv.URL + "/oauth2/token",
		Timeout:           time.Minute,
		RequestsPerSecond: 1000,
	})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	start := time.Now()
	_, err = c.Search(ctx, "hades")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestNew_RequiresCredentials(t *testing.T) {
	_, err := igdb.New(igdb.Config{ClientID: "client"})
	assert.Error(t, err)
}
