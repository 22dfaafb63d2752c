// Package github talks to the GitHub Contents API of the content repository.
package github

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	defaultAPIBase = "https://api.github.com"
	defaultTimeout = 10 * time.Second
	userAgent      = "website-catalogue"

	// maxBody caps how much of a response is kept for diagnostics.
	maxBody = 1 << 20
)

type Committer struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

type Config struct {
	Token string
	// Repo is owner/name.
	Repo      string
	Branch    string
	APIBase   string
	Committer Committer
	Timeout   time.Duration
	// DryRun skips writes and reports the repository URL as the commit.
	DryRun bool
}

// Client is an authenticated client scoped to one repository.
type Client struct {
	token     string
	apiBase   string
	owner     string
	repo      string
	branch    string
	committer Committer
	dryRun    bool
	http      *http.Client
}

func New(cfg Config) (*Client, error) {
	owner, repo, ok := strings.Cut(strings.TrimSpace(cfg.Repo), "/")
	if !ok || owner == "" || repo == "" || strings.Contains(repo, "/") {
		return nil, fmt.Errorf("github: repo must be owner/name, got %q", cfg.Repo)
	}
	if strings.TrimSpace(cfg.Token) == "" {
		return nil, errors.New("github: token is required")
	}

	apiBase := cfg.APIBase
	if apiBase == "" {
		apiBase = defaultAPIBase
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return &Client{
		token:     cfg.Token,
		apiBase:   strings.TrimRight(apiBase, "/"),
		owner:     owner,
		repo:      repo,
		branch:    cfg.Branch,
		committer: cfg.Committer,
		dryRun:    cfg.DryRun,
		http:      &http.Client{Timeout: timeout},
	}, nil
}

// do executes the request with standard GitHub headers.
func (c *Client) do(req *http.Request) (*http.Response, error) {
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("X-GitHub-Api-Version", "2022-11-28")
	req.Header.Set("User-Agent", userAgent)
	if req.Header.Get("Content-Type") == "" && req.Body != nil && req.Body != http.NoBody {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.http.Do(req)
}

// contentsURL builds the Contents API URL of a repository path.
func (c *Client) contentsURL(path string) string {
	segments := strings.Split(strings.Trim(path, "/"), "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return c.apiBase + "/repos/" + url.PathEscape(c.owner) + "/" + url.PathEscape(c.repo) +
		"/contents/" + strings.Join(segments, "/")
}

// RepoURL is the web address of the repository.
func (c *Client) RepoURL() string {
	return "https://github.com/" + c.owner + "/" + c.repo
}

// checkStatus returns a typed error for non-2xx responses.
func checkStatus(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	switch resp.StatusCode {
	case http.StatusUnauthorized:
		return ErrUnauthorized
	case http.StatusForbidden:
		return ErrForbidden
	case http.StatusNotFound:
		return ErrNotFound
	case http.StatusConflict:
		return ErrConflict
	case http.StatusUnprocessableEntity:
		return ErrUnprocessable
	default:
		return fmt.Errorf("github API error %d", resp.StatusCode)
	}
}

func readBody(resp *http.Response) (string, error) {
	b, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if cerr := resp.Body.Close(); cerr != nil {
		return string(b), errors.Join(err, cerr)
	}
	return string(b), err
}
