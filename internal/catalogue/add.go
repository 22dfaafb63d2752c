package catalogue

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

// ContentStore is the version-controlled repository new entries are
// committed to.
type ContentStore interface {
	Prober
	// CreateFile commits content at path and returns the commit's web URL.
	CreateFile(ctx context.Context, path string, content []byte, message string) (string, error)
}

type Published struct {
	Slug      string
	Path      string
	CommitURL string
}

type Publisher struct {
	store     ContentStore
	allocator *Allocator
	prefix    string
}

func NewPublisher(store ContentStore, prefix string) *Publisher {
	return &Publisher{
		store:     store,
		allocator: NewAllocator(store, prefix),
		prefix:    prefix,
	}
}

// CommitMessage is the message used for an entry commit. Skipping CI adds
// the marker that keeps the deploy pipeline from running.
func CommitMessage(name string, skipCI bool) string {
	marker := "[auto]"
	if skipCI {
		marker = "[skip ci]"
	}
	return fmt.Sprintf("content(catalogue): Add %s %s", name, marker)
}

// Publish allocates a slug, renders the document and commits it.
func (p *Publisher) Publish(ctx context.Context, s *Submission) (Published, error) {
	if s == nil {
		return Published{}, errors.New("publish: nil submission")
	}
	slug, err := p.allocator.Allocate(ctx, s.Type, s.Name)
	if err != nil {
		return Published{}, fmt.Errorf("allocate slug: %w", err)
	}
	path := EntryPath(p.prefix, s.Type, slug)
	doc := Synthesize(s)

	url, err := p.store.CreateFile(ctx, path, []byte(doc), CommitMessage(s.Name, s.SkipCI))
	if err != nil {
		return Published{Slug: slug, Path: path}, fmt.Errorf("commit %s: %w", path, err)
	}

	slog.InfoContext(ctx, "catalogue entry committed",
		slog.String("slug", slug), slog.String("path", path), slog.String("commit", url))
	return Published{Slug: slug, Path: path, CommitURL: url}, nil
}
