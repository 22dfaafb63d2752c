// Package tmdb searches TMDB for movies and shows.
package tmdb

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/handsomefox/website-catalogue/internal/upstream"
)

const (
	defaultBaseURL = "https://api.themoviedb.org/3"
	maxBody        = 4 << 20
)

type Client struct {
	apiKey    string
	readToken string
	baseURL   string
	http      *http.Client
}

type Option func(*Client)

func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(u, "/") }
}

func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.Timeout = d }
}

// New accepts either a v3 API key or a v4 read access token.
func New(apiKey string, opts ...Option) *Client {
	c := &Client{
		apiKey:  strings.TrimSpace(apiKey),
		baseURL: defaultBaseURL,
		http: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
	if looksLikeJWT(c.apiKey) {
		c.readToken = c.apiKey
		c.apiKey = ""
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Search runs /search/{mediaType} and returns the response body untouched.
// mediaType is "movie" or "tv".
func (c *Client) Search(ctx context.Context, mediaType, query string) ([]byte, error) {
	if mediaType != "movie" && mediaType != "tv" {
		return nil, fmt.Errorf("tmdb: invalid media type %q", mediaType)
	}
	values := url.Values{}
	if c.apiKey != "" {
		values.Set("api_key", c.apiKey)
	}
	values.Set("query", query)
	endpoint := c.baseURL + "/search/" + mediaType + "?" + values.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, http.NoBody)
	if err != nil {
		return nil, err
	}
	c.applyAuth(req)
	req.Header.Set("Accept", "application/json")
	resp, err := c.http.Do(req)
	if err != nil {
		// The URL carries the API key; keep it out of logs and responses.
		var uerr *url.Error
		if errors.As(err, &uerr) {
			return nil, fmt.Errorf("tmdb search: %w", uerr.Err)
		}
		return nil, err
	}
	if resp.StatusCode >= 400 {
		statusErr := fmt.Errorf("tmdb search failed: %s", resp.Status)
		if cerr := resp.Body.Close(); cerr != nil {
			return nil, errors.Join(statusErr, cerr)
		}
		return nil, statusErr
	}

	body, err := upstream.ReadBody(resp.Body, maxBody)
	if err != nil {
		if cerr := resp.Body.Close(); cerr != nil {
			return nil, errors.Join(err, cerr)
		}
		return nil, err
	}
	if err := resp.Body.Close(); err != nil {
		return nil, err
	}
	return body, nil
}

func (c *Client) applyAuth(req *http.Request) {
	if strings.TrimSpace(c.readToken) == "" {
		return
	}
	req.Header.Set("Authorization", "Bearer "+strings.TrimSpace(c.readToken))
}

func looksLikeJWT(token string) bool {
	parts := strings.Split(strings.TrimSpace(token), ".")
	return len(parts) == 3 && len(token) > 80
}
