package store_test

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/handsomefox/website-catalogue/internal/catalogue"
	"github.com/handsomefox/website-catalogue/internal/store"
)

func openStore(t *testing.T) *store.Store {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "nested", "catalogue.db"))
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, st.Close()) })
	return st
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func entry(t catalogue.Type, title string, r catalogue.Rating, finished time.Time) catalogue.Entry {
	return catalogue.Entry{
		Type:         t,
		Slug:         catalogue.Slugify(title),
		Title:        title,
		Rating:       r,
		FinishedDate: finished,
	}
}

// fixture holds 3 books and 5 movies.
func fixture() []catalogue.Entry {
	return []catalogue.Entry{
		entry(catalogue.Movie, "Arrival", catalogue.Loved, day(2024, 3, 9)),
		entry(catalogue.Movie, "Dune", catalogue.Liked, day(2021, 10, 22)),
		entry(catalogue.Movie, "Cats", catalogue.Hated, day(2020, 1, 1)),
		entry(catalogue.Movie, "Before Sunrise", catalogue.Masterpiece, time.Time{}),
		entry(catalogue.Movie, "Blade Runner", catalogue.Masterpiece, day(2019, 6, 1)),
		entry(catalogue.Book, "Piranesi", catalogue.Masterpiece, day(2023, 12, 1)),
		entry(catalogue.Book, "Dune", catalogue.Loved, day(2022, 2, 2)),
		entry(catalogue.Book, "annihilation", catalogue.Okay, day(2018, 5, 5)),
	}
}

func titlesOf(entries []catalogue.Entry) []string {
	out := make([]string, 0, len(entries))
	for i := range entries {
		out = append(out, entries[i].Title)
	}
	return out
}

func TestList_Sorts(t *testing.T) {
	st := openStore(t)
	ctx := context.Background()
	require.NoError(t, st.ReplaceAll(ctx, fixture()))

	tests := []struct {
		name   string
		filter catalogue.Filter
		want   []string
	}{
		{
			name:   "date",
			filter: catalogue.Filter{Scope: catalogue.Book, Sort: catalogue.SortDate},
			want:   []string{"Piranesi", "Dune", "annihilation"},
		},
		{
			name:   "alphabetical",
			filter: catalogue.Filter{Scope: catalogue.Book, Sort: catalogue.SortAlphabetical},
			want:   []string{"annihilation", "Dune", "Piranesi"},
		},
		{
			name:   "rating",
			filter: catalogue.Filter{Scope: catalogue.Movie, Sort: catalogue.SortRating},
			want:   []string{"Blade Runner", "Before Sunrise", "Arrival", "Dune", "Cats"},
		},
		{
			name:   "undated_last",
			filter: catalogue.Filter{Scope: catalogue.Movie},
			want:   []string{"Arrival", "Dune", "Cats", "Blade Runner", "Before Sunrise"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := st.List(ctx, tt.filter)
			require.NoError(t, err)
			assert.Equal(t, tt.want, titlesOf(got))
		})
	}
}

func TestList_Filters(t *testing.T) {
	st := openStore(t)
	ctx := context.Background()
	require.NoError(t, st.ReplaceAll(ctx, fixture()))

	tests := []struct {
		name   string
		filter catalogue.Filter
		want   int
	}{
		{"all", catalogue.Filter{}, 8},
		{"type", catalogue.Filter{Type: "book"}, 3},
		{"unknown_type", catalogue.Filter{Type: "podcast"}, 0},
		{"scope_and_type_disagree", catalogue.Filter{Scope: catalogue.Movie, Type: "book"}, 0},
		{"rating", catalogue.Filter{Rating: "masterpiece"}, 3},
		{"unknown_rating", catalogue.Filter{Rating: "superb"}, 0},
		{"before", catalogue.Filter{Before: day(2021, 1, 1)}, 3},
		{"after", catalogue.Filter{After: day(2022, 2, 2)}, 2},
		{"range", catalogue.Filter{After: day(2019, 1, 1), Before: day(2022, 1, 1)}, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := st.List(ctx, tt.filter)
			require.NoError(t, err)
			assert.Len(t, got, tt.want)
		})
	}
}

func TestReplaceAll_RoundTripsEntries(t *testing.T) {
	st := openStore(t)
	ctx := context.Background()

	pages := 416
	in := catalogue.Entry{
		Type:         catalogue.Book,
		Slug:         "piranesi",
		Title:        "Piranesi",
		Rating:       catalogue.Masterpiece,
		FinishedDate: day(2023, 12, 1),
		Platform:     "ebook",
		SourceID:     "9781635575637",
		Comment:      "The Beauty of the House is immeasurable.",
		Cover:        catalogue.Cover{Src: "/catalogue/covers/books/piranesi", Placeholder: "data:,", Width: 300, Height: 430},
		Metadata:     &catalogue.BookData{Title: "Piranesi", Authors: []string{"Susanna Clarke"}, Pages: &pages},
	}
	require.NoError(t, st.ReplaceAll(ctx, []catalogue.Entry{in}))

	got, err := st.List(ctx, catalogue.Filter{})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, in, got[0])

	require.NoError(t, st.ReplaceAll(ctx, fixture()))
	got, err = st.List(ctx, catalogue.Filter{})
	require.NoError(t, err)
	assert.Len(t, got, 8)
	assert.Empty(t, got[0].Cover.Src)
}

func TestOpen_SeparateDatabasesEachKeepCovers(t *testing.T) {
	ctx := context.Background()
	in := catalogue.Entry{
		Type:   catalogue.Movie,
		Slug:   "arrival",
		Title:  "Arrival",
		Rating: catalogue.Loved,
		Cover:  catalogue.Cover{Src: "/catalogue/covers/movies/arrival", Placeholder: "data:,", Width: 200, Height: 300},
	}

	dir := t.TempDir()
	for _, name := range []string{"a.db", "b.db", "a.db"} {
		st, err := store.Open(filepath.Join(dir, name))
		require.NoError(t, err, name)

		require.NoError(t, st.ReplaceAll(ctx, []catalogue.Entry{in}), name)
		got, err := st.List(ctx, catalogue.Filter{})
		require.NoError(t, err, name)
		require.Len(t, got, 1, name)
		assert.Equal(t, in.Cover, got[0].Cover, name)

		require.NoError(t, st.Close(), name)
	}
}

func TestEngine_OverStore(t *testing.T) {
	st := openStore(t)
	ctx := context.Background()
	engine := catalogue.NewEngine(st)

	t.Run("type_filter", func(t *testing.T) {
		require.NoError(t, st.ReplaceAll(ctx, fixture()))
		res, err := engine.Run(ctx, catalogue.Query{Type: "book", Sort: catalogue.SortAlphabetical, Page: 1})
		require.NoError(t, err)
		assert.Equal(t, []string{"annihilation", "Dune", "Piranesi"}, titlesOf(res.Entries))
	})

	t.Run("search_overrides_sort", func(t *testing.T) {
		require.NoError(t, st.ReplaceAll(ctx, []catalogue.Entry{
			entry(catalogue.Game, "Half-Life", catalogue.Masterpiece, day(2020, 1, 1)),
			entry(catalogue.Game, "The Legend of Zelda: Tears of the Kingdom", catalogue.Liked, day(2023, 6, 1)),
			entry(catalogue.Game, "The Legend of Zelda: Breath of the Wild", catalogue.Masterpiece, day(2018, 1, 1)),
		}))
		res, err := engine.Run(ctx, catalogue.Query{Search: "zelda", Sort: catalogue.SortDate, Page: 1})
		require.NoError(t, err)
		assert.Equal(t, []string{
			"The Legend of Zelda: Breath of the Wild",
			"The Legend of Zelda: Tears of the Kingdom",
		}, titlesOf(res.Entries))
	})

	t.Run("pagination", func(t *testing.T) {
		var many []catalogue.Entry
		for i := range 35 {
			many = append(many, entry(catalogue.Show, fmt.Sprintf("Show %02d", i), catalogue.Okay, day(2000, 1, 1).AddDate(0, 0, i)))
		}
		require.NoError(t, st.ReplaceAll(ctx, many))

		res, err := engine.Run(ctx, catalogue.Query{Page: 2})
		require.NoError(t, err)
		assert.Len(t, res.Entries, 5)
		assert.Equal(t, 2, res.TotalPages)
		assert.Equal(t, 35, res.TotalItems)
		assert.Equal(t, 30, res.CurrentOffset)
		assert.Equal(t, "Show 04", res.Entries[0].Title)
	})
}
