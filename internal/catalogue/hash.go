package catalogue

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/zeebo/blake3"
)

// datasetFormat is bumped when the card shape changes.
const datasetFormat = 1

// Hash fingerprints the ordered card list. Reordering cards changes it.
func Hash(cards []Card) (string, error) {
	if cards == nil {
		cards = []Card{}
	}
	raw, err := json.Marshal([]any{datasetFormat, cards})
	if err != nil {
		return "", fmt.Errorf("encode dataset: %w", err)
	}
	sum := blake3.Sum256(raw)
	return hex.EncodeToString(sum[:]), nil
}

var ErrVersionSet = errors.New("catalogue version already set")

// Version holds the dataset hash. It can be set once; the zero value is
// unset and ready to use.
type Version struct {
	v atomic.Pointer[string]
}

// Set stores hash if unset. Setting the stored value again is a no-op,
// setting a different one returns ErrVersionSet and keeps the first.
func (v *Version) Set(hash string) error {
	if v.v.CompareAndSwap(nil, &hash) {
		return nil
	}
	if cur := v.v.Load(); cur != nil && *cur == hash {
		return nil
	}
	return ErrVersionSet
}

func (v *Version) Get() (string, bool) {
	p := v.v.Load()
	if p == nil {
		return "", false
	}
	return *p, true
}
