package upstream_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/handsomefox/website-catalogue/internal/upstream"
)

func TestReadBody(t *testing.T) {
	b, err := upstream.ReadBody(strings.NewReader(`{"ok":1}`), 8)
	require.NoError(t, err)
	assert.Equal(t, `{"ok":1}`, string(b))

	_, err = upstream.ReadBody(strings.NewReader(`{"ok":12}`), 8)
	assert.ErrorIs(t, err, upstream.ErrBodyTooLarge)

	b, err = upstream.ReadBody(strings.NewReader(""), 8)
	require.NoError(t, err)
	assert.Empty(t, b)
}
