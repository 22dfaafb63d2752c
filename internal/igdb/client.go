// Package igdb searches IGDB for games. Requests are authenticated with a
// Twitch app token obtained through the client-credentials grant.
package igdb

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"

	"github.com/handsomefox/website-catalogue/internal/upstream"
)

const (
	defaultBaseURL  = "https://api.igdb.com/v4"
	defaultTokenURL = "https://id.twitch.tv/oauth2/token"
	maxBody         = 4 << 20
)

type Config struct {
	ClientID     string
	ClientSecret string
	BaseURL      string
	TokenURL     string
	Timeout      time.Duration
	// RequestsPerSecond defaults to 4, the IGDB limit.
	RequestsPerSecond float64
}

type Client struct {
	clientID string
	baseURL  string
	http     *http.Client
	creds    *clientcredentials.Config
	limiter  *rate.Limiter

	mu      sync.Mutex
	token   *oauth2.Token
	refresh singleflight.Group
}

func New(cfg Config) (*Client, error) {
	if cfg.ClientID == "" || cfg.ClientSecret == "" {
		return nil, errors.New("igdb: client id and secret are required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.TokenURL == "" {
		cfg.TokenURL = defaultTokenURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.RequestsPerSecond <= 0 {
		cfg.RequestsPerSecond = 4
	}

	httpClient := &http.Client{Timeout: cfg.Timeout}
	cc := &clientcredentials.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		TokenURL:     cfg.TokenURL,
		AuthStyle:    oauth2.AuthStyleInParams,
	}

	return &Client{
		clientID: cfg.ClientID,
		baseURL:  strings.TrimRight(cfg.BaseURL, "/"),
		http:     httpClient,
		creds:    cc,
		limiter:  rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1),
	}, nil
}

// Search looks games up by name and returns the response body untouched.
func (c *Client) Search(ctx context.Context, query string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	tok, err := c.appToken(ctx)
	if err != nil {
		return nil, fmt.Errorf("igdb token: %w", err)
	}

	body := fmt.Sprintf("fields name,cover.url,id; search %s;", quote(query))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/games", bytes.NewBufferString(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Client-ID", c.clientID)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "text/plain")
	tok.SetAuthHeader(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	out, err := upstream.ReadBody(resp.Body, maxBody)
	if cerr := resp.Body.Close(); cerr != nil {
		err = errors.Join(err, cerr)
	}
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("igdb search failed: %s", resp.Status)
	}
	if err != nil {
		return nil, err
	}
	return out, nil
}

// appToken returns the cached app token, fetching a new one once it expires.
// Concurrent callers share a single fetch, and each may give up on it when
// its own context ends.
func (c *Client) appToken(ctx context.Context) (*oauth2.Token, error) {
	c.mu.Lock()
	tok := c.token
	c.mu.Unlock()
	if tok.Valid() {
		return tok, nil
	}

	ch := c.refresh.DoChan("token", func() (any, error) {
		fetchCtx := context.WithValue(context.WithoutCancel(ctx), oauth2.HTTPClient, c.http)
		tok, err := c.creds.Token(fetchCtx)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		c.token = tok
		c.mu.Unlock()
		return tok, nil
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*oauth2.Token), nil
	}
}

// quote renders s as an Apicalypse string literal.
func quote(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", " ", "\r", " ")
	return `"` + r.Replace(s) + `"`
}
