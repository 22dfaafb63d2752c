package catalogue

import (
	"fmt"
	"strings"
)

type Rating string

const (
	Masterpiece Rating = "masterpiece"
	Loved       Rating = "loved"
	Liked       Rating = "liked"
	Okay        Rating = "okay"
	Disliked    Rating = "disliked"
	Hated       Rating = "hated"
)

// Ratings is ordered best first.
var Ratings = []Rating{Masterpiece, Loved, Liked, Okay, Disliked, Hated}

// unknownRank sorts after every known rating.
const unknownRank = 7

func ParseRating(s string) (Rating, error) {
	r := Rating(strings.ToLower(strings.TrimSpace(s)))
	if !r.Valid() {
		return "", fmt.Errorf("unknown rating %q", s)
	}
	return r, nil
}

func (r Rating) Valid() bool {
	return r.Rank() != unknownRank
}

// Number maps masterpiece..hated onto 5..0.
func (r Rating) Number() int {
	switch r {
	case Masterpiece:
		return 5
	case Loved:
		return 4
	case Liked:
		return 3
	case Okay:
		return 2
	case Disliked:
		return 1
	}
	return 0
}

func RatingFromNumber(n int) (Rating, error) {
	if n < 0 || n > 5 {
		return "", fmt.Errorf("rating number %d out of range", n)
	}
	return Ratings[5-n], nil
}

// Rank is the position used by the rating sort order, 1 for masterpiece and
// 7 for anything unrecognised.
func (r Rating) Rank() int {
	for i, known := range Ratings {
		if r == known {
			return i + 1
		}
	}
	return unknownRank
}

func (r Rating) Glyph() string {
	switch r {
	case Masterpiece:
		return "❤️"
	case Loved:
		return "🥰"
	case Liked:
		return "🙂"
	case Okay:
		return "😐"
	case Disliked:
		return "😕"
	case Hated:
		return "🙁"
	}
	return ""
}

func (r Rating) Label() string {
	if r == "" {
		return ""
	}
	return strings.ToUpper(string(r[:1])) + string(r[1:])
}
