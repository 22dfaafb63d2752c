package catalogue

import (
	"context"
	"log/slog"
	"path"
	"strconv"

	"github.com/handsomefox/website-catalogue/internal/logger"
)

// Prober reports whether a file already exists in the content store.
type Prober interface {
	Exists(ctx context.Context, path string) (bool, error)
}

// Allocator picks the first free slug for a title by probing the content
// store for {type}/{slug}/{slug}.md, then {slug}-1, {slug}-2 and so on.
//
// Allocation is not atomic: two concurrent calls for the same title can both
// be handed the same slug.
type Allocator struct {
	prober Prober
	prefix string
}

func NewAllocator(prober Prober, prefix string) *Allocator {
	return &Allocator{prober: prober, prefix: prefix}
}

// EntryPath is the repository path of an entry document.
func EntryPath(prefix string, t Type, slug string) string {
	return path.Join(prefix, t.Plural(), slug, slug+".md")
}

// Allocate returns a slug that the store did not report as taken. A probe
// that fails is treated as "not taken" so that an unreachable store does not
// block new entries; only context cancellation aborts the loop.
func (a *Allocator) Allocate(ctx context.Context, t Type, title string) (string, error) {
	base := Slugify(title)
	for n := 0; ; n++ {
		candidate := base
		if n > 0 {
			candidate = base + "-" + strconv.Itoa(n)
		}
		p := EntryPath(a.prefix, t, candidate)

		exists, err := a.prober.Exists(ctx, p)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return "", ctxErr
			}
			slog.WarnContext(ctx, "slug probe failed, assuming available",
				slog.String("path", p), logger.Error(err))
			return candidate, nil
		}
		if !exists {
			return candidate, nil
		}
	}
}
