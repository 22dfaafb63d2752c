// Package proxy relays catalogue form lookups to the metadata providers so
// the browser never needs their credentials or CORS access.
package proxy

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"
)

type Source string

const (
	TMDB Source = "tmdb"
	IGDB Source = "igdb"
	ISBN Source = "isbn"
)

var (
	ErrUnknownSource = errors.New("unknown proxy source")
	ErrInvalidQuery  = errors.New("invalid proxy query")
)

func ParseSource(s string) (Source, error) {
	switch src := Source(strings.ToLower(strings.TrimSpace(s))); src {
	case TMDB, IGDB, ISBN:
		return src, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownSource, s)
}

// UpstreamError is a failure reported by, or on the way to, a provider.
type UpstreamError struct {
	Source Source
	Err    error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s upstream: %v", e.Source, e.Err)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// MediaSearcher searches movies or shows by media type.
type MediaSearcher interface {
	Search(ctx context.Context, mediaType, query string) ([]byte, error)
}

// TitleSearcher searches a single kind of media by title.
type TitleSearcher interface {
	Search(ctx context.Context, query string) ([]byte, error)
}

type Request struct {
	Source Source
	// Type is the media type for TMDB lookups: movie or tv.
	Type  string
	Query string
}

// Observer is told about every upstream call.
type Observer func(src Source, took time.Duration, err error)

type Option func(*Proxy)

func WithObserver(o Observer) Option {
	return func(p *Proxy) { p.observe = o }
}

type Proxy struct {
	movies  MediaSearcher
	games   TitleSearcher
	books   TitleSearcher
	observe Observer
	group   singleflight.Group
}

func New(movies MediaSearcher, games, books TitleSearcher, opts ...Option) *Proxy {
	p := &Proxy{
		movies:  movies,
		games:   games,
		books:   books,
		observe: func(Source, time.Duration, error) {},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Search forwards req to its provider and returns the provider's body.
// Identical concurrent requests share one upstream call.
func (p *Proxy) Search(ctx context.Context, req Request) ([]byte, error) {
	query := strings.TrimSpace(req.Query)
	if query == "" {
		return nil, fmt.Errorf("%w: query is required", ErrInvalidQuery)
	}

	var call func(context.Context) ([]byte, error)
	key := string(req.Source) + "\x00"
	switch req.Source {
	case TMDB:
		mediaType, err := tmdbType(req.Type)
		if err != nil {
			return nil, err
		}
		key += mediaType
		call = func(ctx context.Context) ([]byte, error) { return p.movies.Search(ctx, mediaType, query) }
	case IGDB:
		call = func(ctx context.Context) ([]byte, error) { return p.games.Search(ctx, query) }
	case ISBN:
		call = func(ctx context.Context) ([]byte, error) { return p.books.Search(ctx, query) }
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownSource, req.Source)
	}
	key += "\x00" + query

	// The shared call must outlive any single caller that gives up.
	shared := context.WithoutCancel(ctx)
	ch := p.group.DoChan(key, func() (any, error) {
		start := time.Now()
		body, err := call(shared)
		p.observe(req.Source, time.Since(start), err)
		if err != nil {
			return nil, &UpstreamError{Source: req.Source, Err: err}
		}
		return body, nil
	})

	select {
	case <-ctx.Done():
		return nil, &UpstreamError{Source: req.Source, Err: ctx.Err()}
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.([]byte), nil
	}
}

func tmdbType(t string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(t)) {
	case "movie", "movies":
		return "movie", nil
	case "tv", "show", "shows":
		return "tv", nil
	}
	return "", fmt.Errorf("%w: type must be movie or tv", ErrInvalidQuery)
}
