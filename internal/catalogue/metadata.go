package catalogue

import (
	"encoding/json"
	"fmt"
	"strings"
)

const unknownAuthor = "Unknown"

// Metadata is the type-specific payload read from an entry's _data.json
// sidecar. It is implemented by BookData, MovieData, ShowData and GameData
// only.
type Metadata interface {
	// Author is the byline shown on catalogue cards, or "" when the sidecar
	// has nothing usable.
	Author() string
	isMetadata()
}

type BookData struct {
	Title       string   `json:"title"`
	Authors     []string `json:"authors"`
	Publishers  []string `json:"publishers"`
	Pages       *int     `json:"pages,omitempty"`
	PublishDate int64    `json:"publishDate"`
}

func (d *BookData) Author() string {
	if name := firstNonBlank(d.Authors); name != "" {
		return name
	}
	return firstNonBlank(d.Publishers)
}

type MovieData struct {
	Title       string   `json:"title"`
	Tagline     *string  `json:"tagline,omitempty"`
	ID          int64    `json:"id"`
	Overview    *string  `json:"overview,omitempty"`
	ReleaseDate string   `json:"releaseDate"`
	Runtime     *int     `json:"runtime,omitempty"`
	Companies   []string `json:"companies"`
	Genres      []string `json:"genres"`
}

func (d *MovieData) Author() string { return firstNonBlank(d.Companies) }

type ShowData struct {
	Tagline   *string  `json:"tagline,omitempty"`
	ID        int64    `json:"id"`
	Overview  *string  `json:"overview,omitempty"`
	Companies []string `json:"companies"`
	Genres    []string `json:"genres"`
}

func (d *ShowData) Author() string { return firstNonBlank(d.Companies) }

type GameData struct {
	FirstReleaseDate *int64         `json:"first_release_date,omitempty"`
	Genres           []GameGenre    `json:"genres"`
	Platforms        []GamePlatform `json:"platforms"`
	Companies        []GameCompany  `json:"companies"`
}

type GameGenre struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type GamePlatform struct {
	ID           int64  `json:"id"`
	Abbreviation string `json:"abbreviation"`
}

type GameCompany struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Role string `json:"role"`
}

// Author prefers the developer and falls back to the first listed company.
func (d *GameData) Author() string {
	for _, c := range d.Companies {
		if strings.EqualFold(c.Role, "developer") && strings.TrimSpace(c.Name) != "" {
			return c.Name
		}
	}
	for _, c := range d.Companies {
		if strings.TrimSpace(c.Name) != "" {
			return c.Name
		}
	}
	return ""
}

func (*BookData) isMetadata()  {}
func (*MovieData) isMetadata() {}
func (*ShowData) isMetadata()  {}
func (*GameData) isMetadata()  {}

// DecodeMetadata parses a sidecar document for the given type.
func DecodeMetadata(t Type, raw []byte) (Metadata, error) {
	var md Metadata
	switch t {
	case Book:
		md = &BookData{}
	case Movie:
		md = &MovieData{}
	case Show:
		md = &ShowData{}
	case Game:
		md = &GameData{}
	default:
		return nil, fmt.Errorf("decode metadata: unknown type %q", t)
	}
	if err := json.Unmarshal(raw, md); err != nil {
		return nil, fmt.Errorf("decode %s metadata: %w", t, err)
	}
	return md, nil
}

func firstNonBlank(values []string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
