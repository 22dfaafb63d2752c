// Package catalogue holds the catalogue domain: entries, ratings, slugs,
// the add workflow and the read-side query engine.
package catalogue

import (
	"fmt"
	"strings"
)

type Type string

const (
	Movie Type = "movie"
	Show  Type = "show"
	Game  Type = "game"
	Book  Type = "book"
)

// Types lists every content type in dataset order.
var Types = []Type{Game, Movie, Show, Book}

// ParseType accepts the singular and plural names, plus "tv" for shows.
func ParseType(s string) (Type, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "movie", "movies":
		return Movie, nil
	case "show", "shows", "tv":
		return Show, nil
	case "game", "games":
		return Game, nil
	case "book", "books":
		return Book, nil
	}
	return "", fmt.Errorf("unknown content type %q", s)
}

func (t Type) Valid() bool {
	switch t {
	case Movie, Show, Game, Book:
		return true
	}
	return false
}

// Plural is the directory name entries of this type live under.
func (t Type) Plural() string {
	switch t {
	case Movie:
		return "movies"
	case Show:
		return "shows"
	case Game:
		return "games"
	case Book:
		return "books"
	}
	return ""
}

// SourceKey is the front-matter key holding the external identifier.
func (t Type) SourceKey() string {
	switch t {
	case Movie, Show:
		return "tmdb"
	case Game:
		return "igdb"
	case Book:
		return "isbn"
	}
	return ""
}
