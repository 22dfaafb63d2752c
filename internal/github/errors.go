package github

import (
	"errors"
	"fmt"
)

// Common GitHub API errors.
var (
	ErrNotFound      = errors.New("not found")
	ErrUnauthorized  = errors.New("unauthorized: check GITHUB_KEY")
	ErrForbidden     = errors.New("forbidden: token may lack contents write scope")
	ErrConflict      = errors.New("conflict: file changed or already exists")
	ErrUnprocessable = errors.New("unprocessable: file already exists or request is invalid")

	// ErrNoCommitURL is returned when a successful write response does not
	// carry commit.html_url.
	ErrNoCommitURL = errors.New("response has no commit.html_url")
)

// CommitError is a failed create-file call. Body is the raw response, kept
// so it can be shown to the operator.
type CommitError struct {
	StatusCode int
	Body       string
	Err        error
}

func (e *CommitError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("github commit failed: %v", e.Err)
	}
	return fmt.Sprintf("github commit failed (%d): %v", e.StatusCode, e.Err)
}

func (e *CommitError) Unwrap() error { return e.Err }
