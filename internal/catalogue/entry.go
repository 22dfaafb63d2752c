package catalogue

import (
	"time"
)

// DateLayout is the calendar date format used in front-matter and query
// parameters.
const DateLayout = "2006-01-02"

// NoDate marks an entry that was deliberately left undated.
const NoDate = "N/A"

type Cover struct {
	Src         string
	Placeholder string
	Width       int
	Height      int
}

// Entry is one catalogue item: the shared core every type carries plus the
// type-specific sidecar payload.
type Entry struct {
	Type   Type
	Slug   string
	Title  string
	Rating Rating
	// FinishedDate is zero for undated entries.
	FinishedDate time.Time
	Platform     string
	SourceID     string
	Comment      string
	Cover        Cover
	Metadata     Metadata
}

// ID is unique across the whole dataset.
func (e *Entry) ID() string {
	return e.Type.Plural() + "/" + e.Slug
}

func (e *Entry) Dated() bool { return !e.FinishedDate.IsZero() }

func (e *Entry) Author() string {
	if e.Metadata != nil {
		if name := e.Metadata.Author(); name != "" {
			return name
		}
	}
	return unknownAuthor
}

// Card is the projection of an entry used by listings, exports and the
// dataset hash.
type Card struct {
	ID           string `json:"id"`
	Cover        string `json:"cover"`
	Placeholder  string `json:"placeholder"`
	Type         Type   `json:"type"`
	Title        string `json:"title"`
	Rating       int    `json:"rating"`
	Author       string `json:"author"`
	FinishedDate *int64 `json:"finishedDate,omitempty"`
}

func (e *Entry) Card() Card {
	c := Card{
		ID:          e.ID(),
		Cover:       e.Cover.Src,
		Placeholder: e.Cover.Placeholder,
		Type:        e.Type,
		Title:       e.Title,
		Rating:      e.Rating.Number(),
		Author:      e.Author(),
	}
	if e.Dated() {
		ms := e.FinishedDate.UnixMilli()
		c.FinishedDate = &ms
	}
	return c
}

func Cards(entries []Entry) []Card {
	out := make([]Card, 0, len(entries))
	for i := range entries {
		out = append(out, entries[i].Card())
	}
	return out
}
