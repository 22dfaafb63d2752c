package catalogue

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// ItemsPerPage is the fixed page size of catalogue listings.
const ItemsPerPage = 30

type Sort string

const (
	SortDate         Sort = "date"
	SortAlphabetical Sort = "alphabetical"
	SortRating       Sort = "rating"
)

// ParseSort falls back to date order for anything unrecognised.
func ParseSort(s string) Sort {
	switch Sort(strings.ToLower(strings.TrimSpace(s))) {
	case SortAlphabetical:
		return SortAlphabetical
	case SortRating:
		return SortRating
	}
	return SortDate
}

var ErrInvalidQuery = errors.New("invalid query")

// Query is a parsed listing request.
type Query struct {
	Search string
	Sort   Sort
	// Scope restricts the listing to one type; empty lists all types.
	Scope  Type
	Type   string
	Rating string
	Before time.Time
	After  time.Time
	Page   int
}

// Filter is the part of a query evaluated by the entry source. Type and
// Rating are compared verbatim, so unknown values match nothing.
type Filter struct {
	Scope  Type
	Type   string
	Rating string
	Before time.Time
	After  time.Time
	Sort   Sort
}

// Source lists entries matching a filter in the filter's sort order.
type Source interface {
	List(ctx context.Context, f Filter) ([]Entry, error)
}

// ParseQuery reads listing parameters. Dates must be YYYY-MM-DD; a missing
// or non-positive page becomes 1.
func ParseQuery(values url.Values) (Query, error) {
	q := Query{
		Search: strings.TrimSpace(values.Get("search")),
		Sort:   ParseSort(values.Get("sort")),
		Rating: strings.ToLower(strings.TrimSpace(values.Get("rating"))),
		Page:   1,
	}
	if raw := strings.TrimSpace(values.Get("type")); raw != "" {
		if t, err := ParseType(raw); err == nil {
			q.Type = string(t)
		} else {
			q.Type = raw
		}
	}
	for _, bound := range []struct {
		key string
		dst *time.Time
	}{{"before", &q.Before}, {"after", &q.After}} {
		raw := strings.TrimSpace(values.Get(bound.key))
		if raw == "" {
			continue
		}
		d, err := time.Parse(DateLayout, raw)
		if err != nil {
			return Query{}, fmt.Errorf("%w: %s must be YYYY-MM-DD", ErrInvalidQuery, bound.key)
		}
		*bound.dst = d
	}
	if raw := strings.TrimSpace(values.Get("page")); raw != "" {
		if p, err := strconv.Atoi(raw); err == nil && p > 1 {
			q.Page = p
		}
	}
	return q, nil
}

func (q *Query) Filter() Filter {
	return Filter{
		Scope:  q.Scope,
		Type:   q.Type,
		Rating: q.Rating,
		Before: q.Before,
		After:  q.After,
		Sort:   q.Sort,
	}
}

type PageMeta struct {
	TotalItems    int `json:"totalItems"`
	ItemsPerPage  int `json:"itemsPerPage"`
	CurrentPage   int `json:"currentPage"`
	CurrentOffset int `json:"currentOffset"`
	TotalPages    int `json:"totalPages"`
}

// Paginate slices one page out of entries. Pages past the end are empty.
func Paginate(entries []Entry, page int) (PageMeta, []Entry) {
	page = max(page, 1)
	total := len(entries)
	meta := PageMeta{
		TotalItems:    total,
		ItemsPerPage:  ItemsPerPage,
		CurrentPage:   page,
		CurrentOffset: (page - 1) * ItemsPerPage,
		TotalPages:    (total + ItemsPerPage - 1) / ItemsPerPage,
	}
	if meta.CurrentOffset >= total {
		return meta, nil
	}
	end := min(meta.CurrentOffset+ItemsPerPage, total)
	return meta, entries[meta.CurrentOffset:end]
}

type Result struct {
	PageMeta
	Entries []Entry
}

// Engine runs listing queries: source filters and sort, then fuzzy search,
// then pagination.
type Engine struct {
	source Source
}

func NewEngine(source Source) *Engine {
	return &Engine{source: source}
}

func (e *Engine) Run(ctx context.Context, q Query) (Result, error) {
	entries, err := e.source.List(ctx, q.Filter())
	if err != nil {
		return Result{}, fmt.Errorf("list entries: %w", err)
	}
	if q.Search != "" {
		entries = Search(entries, q.Search)
	}
	meta, page := Paginate(entries, q.Page)
	return Result{PageMeta: meta, Entries: page}, nil
}

// Item is the listing projection of an entry.
type Item struct {
	ID           string `json:"id"`
	Type         Type   `json:"type"`
	Title        string `json:"title"`
	Author       string `json:"author"`
	Cover        string `json:"cover"`
	Placeholder  string `json:"placeholder"`
	Width        int    `json:"width,omitempty"`
	Height       int    `json:"height,omitempty"`
	Rating       Rating `json:"rating"`
	Glyph        string `json:"glyph"`
	FinishedDate string `json:"finishedDate,omitempty"`
}

func (e *Entry) Item() Item {
	it := Item{
		ID:          e.ID(),
		Type:        e.Type,
		Title:       e.Title,
		Author:      e.Author(),
		Cover:       e.Cover.Src,
		Placeholder: e.Cover.Placeholder,
		Width:       e.Cover.Width,
		Height:      e.Cover.Height,
		Rating:      e.Rating,
		Glyph:       e.Rating.Glyph(),
	}
	if e.Dated() {
		it.FinishedDate = e.FinishedDate.Format(DateLayout)
	}
	return it
}

func (r *Result) Items() []Item {
	out := make([]Item, 0, len(r.Entries))
	for i := range r.Entries {
		out = append(out, r.Entries[i].Item())
	}
	return out
}
