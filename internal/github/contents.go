package github

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/url"
)

// Exists reports whether path is present on the configured branch.
func (c *Client) Exists(ctx context.Context, path string) (bool, error) {
	endpoint := c.contentsURL(path)
	if c.branch != "" {
		endpoint += "?" + url.Values{"ref": {c.branch}}.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, http.NoBody)
	if err != nil {
		return false, err
	}
	resp, err := c.do(req)
	if err != nil {
		return false, err
	}
	if _, err := io.Copy(io.Discard, io.LimitReader(resp.Body, maxBody)); err != nil {
		_ = resp.Body.Close()
		return false, err
	}
	if err := resp.Body.Close(); err != nil {
		return false, err
	}

	err = checkStatus(resp)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, ErrNotFound):
		return false, nil
	default:
		return false, err
	}
}

type createFileRequest struct {
	Message   string    `json:"message"`
	Content   string    `json:"content"`
	Committer Committer `json:"committer"`
	Branch    string    `json:"branch,omitempty"`
}

type createFileResponse struct {
	Commit struct {
		SHA     string `json:"sha"`
		HTMLURL string `json:"html_url"`
	} `json:"commit"`
}

// CreateFile commits content at path and returns the commit's web URL.
// Every failure is a *CommitError carrying whatever GitHub answered.
func (c *Client) CreateFile(ctx context.Context, path string, content []byte, message string) (string, error) {
	if c.dryRun {
		slog.InfoContext(ctx, "github dry run, skipping commit",
			slog.String("path", path), slog.String("message", message))
		return c.RepoURL(), nil
	}

	payload, err := json.Marshal(createFileRequest{
		Message:   message,
		Content:   base64.StdEncoding.EncodeToString(content),
		Committer: c.committer,
		Branch:    c.branch,
	})
	if err != nil {
		return "", &CommitError{Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, c.contentsURL(path), bytes.NewReader(payload))
	if err != nil {
		return "", &CommitError{Err: err}
	}
	resp, err := c.do(req)
	if err != nil {
		return "", &CommitError{Err: err}
	}
	body, err := readBody(resp)
	if err != nil {
		return "", &CommitError{StatusCode: resp.StatusCode, Body: body, Err: err}
	}
	if err := checkStatus(resp); err != nil {
		return "", &CommitError{StatusCode: resp.StatusCode, Body: body, Err: err}
	}

	var out createFileResponse
	if err := json.Unmarshal([]byte(body), &out); err != nil {
		return "", &CommitError{StatusCode: resp.StatusCode, Body: body, Err: err}
	}
	if out.Commit.HTMLURL == "" {
		return "", &CommitError{StatusCode: resp.StatusCode, Body: body, Err: ErrNoCommitURL}
	}
	return out.Commit.HTMLURL, nil
}
