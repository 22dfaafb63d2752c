// Package upstream holds helpers shared by the metadata provider clients.
package upstream

import (
	"errors"
	"fmt"
	"io"
)

var ErrBodyTooLarge = errors.New("upstream response too large")

// ReadBody reads at most limit bytes and fails rather than truncating a
// longer body.
func ReadBody(r io.Reader, limit int64) ([]byte, error) {
	b, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(b)) > limit {
		return nil, fmt.Errorf("%w: over %d bytes", ErrBodyTooLarge, limit)
	}
	return b, nil
}
