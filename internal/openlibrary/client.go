// Package openlibrary searches the Open Library catalogue for books.
package openlibrary

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
	defaultBaseURL = "https://openlibrary.org"
	searchFields   = "key,title,isbn,cover_i,editions,editions.isbn"
	maxBody        = 8 << 20
)

type Client struct {
	baseURL string
	http    *http.Client
}

func New(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// Search finds books by title and returns the response body untouched.
func (c *Client) Search(ctx context.Context, query string) ([]byte, error) {
	// url.Values encodes spaces as '+', which is what the search API expects.
	values := url.Values{}
	values.Set("title", query)
	values.Set("fields", searchFields)
	endpoint := c.baseURL + "/search.json?" + values.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, http.NoBody)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 400 {
		statusErr := fmt.Errorf("openlibrary search failed: %s", resp.Status)
		if cerr := resp.Body.Close(); cerr != nil {
			return nil, errors.Join(statusErr, cerr)
		}
		return nil, statusErr
	}
	body, err := upstream.ReadBody(resp.Body, maxBody)
	if cerr := resp.Body.Close(); cerr != nil {
		return nil, errors.Join(err, cerr)
	}
	if err != nil {
		return nil, err
	}
	return body, nil
}
