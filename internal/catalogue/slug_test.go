package catalogue_test

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"

	"github.com/handsomefox/website-catalogue/internal/catalogue"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		title string
		want  string
	}{
		{"Arrival", "arrival"},
		{"The Legend of Zelda: Breath of the Wild", "the-legend-of-zelda-breath-of-the-wild"},
		{"Amélie", "amelie"},
		{"  Spider-Man: Into the Spider-Verse  ", "spider-man-into-the-spider-verse"},
		{"Pokémon Café ReMix", "pokemon-cafe-remix"},
		{"Straße", "strasse"},
		{"Ærøskøbing", "aeroskobing"},
		{"2001: A Space Odyssey", "2001-a-space-odyssey"},
		{"Ōkami", "okami"},
		{"Сталкер", "stalker"},
		{"!!!", "entry"},
		{"", "entry"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, catalogue.Slugify(tt.title))
		})
	}
}

func TestSlugify_NonLatinTitlesKeepDistinctSlugs(t *testing.T) {
	titles := []string{"千と千尋の神隠し", "もののけ姫", "Сталкер", "Зеркало"}
	seen := make(map[string]string, len(titles))
	for _, title := range titles {
		slug := catalogue.Slugify(title)
		assert.Regexp(t, slugShape, slug)
		assert.NotEqual(t, "entry", slug, title)
		if prev, ok := seen[slug]; ok {
			t.Errorf("%q and %q both slugify to %q", prev, title, slug)
		}
		seen[slug] = title
	}
}

var slugShape = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

func TestSlugify_AlwaysURLSafe(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		title := rapid.String().Draw(t, "title")
		slug := catalogue.Slugify(title)
		if !slugShape.MatchString(slug) {
			t.Fatalf("Slugify(%q) = %q", title, slug)
		}
		if again := catalogue.Slugify(slug); again != slug {
			t.Fatalf("not idempotent: %q -> %q", slug, again)
		}
	})
}
