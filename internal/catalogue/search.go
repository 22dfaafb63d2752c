package catalogue

import (
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/sahilm/fuzzy"
)

// Scoring weights for a fuzzy title match.
const (
	matchBonus       = 16
	wordStartBonus   = 24
	consecutiveBonus = 12
	maxGapPenalty    = 15
	maxLeadPenalty   = 9
	maxTailPenalty   = 10
)

type titleSource []Entry

func (s titleSource) String(i int) string { return s[i].Title }
func (s titleSource) Len() int            { return len(s) }

// Score rates how well query matches title as a subsequence. Zero means no
// match; any match scores at least 1.
func Score(query, title string) int {
	query = strings.TrimSpace(query)
	if query == "" {
		return 0
	}
	matches := fuzzy.Find(query, []string{title})
	if len(matches) == 0 {
		return 0
	}
	return scorePositions(title, matches[0].MatchedIndexes)
}

func scorePositions(title string, positions []int) int {
	if len(positions) == 0 {
		return 0
	}
	score := 0
	prev := -1
	gaps, lead, matched := 0, 0, 0
	for _, pos := range positions {
		if pos < 0 || pos >= len(title) || pos <= prev {
			continue
		}
		if prev < 0 {
			lead = utf8.RuneCountInString(title[:pos])
		}
		matched++
		score += matchBonus
		if pos == 0 || !isWordRune(lastRune(title[:pos])) {
			score += wordStartBonus
		}
		if prev >= 0 {
			if pos == prev+utf8.RuneLen(lastRune(title[:pos])) {
				score += consecutiveBonus
			} else {
				gaps += utf8.RuneCountInString(title[prev:pos]) - 1
			}
		}
		prev = pos
	}
	score -= min(gaps, maxGapPenalty)
	if matched == 0 {
		return 0
	}
	score -= min(lead, maxLeadPenalty)
	unmatched := utf8.RuneCountInString(title) - matched
	score -= min(max(unmatched, 0)/4, maxTailPenalty)
	return max(score, 1)
}

// Search keeps the entries whose title matches query and orders them by
// descending score. Equal scores keep their input order.
func Search(entries []Entry, query string) []Entry {
	query = strings.TrimSpace(query)
	if query == "" {
		return entries
	}
	matches := fuzzy.FindFrom(query, titleSource(entries))

	type scored struct {
		index int
		score int
	}
	hits := make([]scored, 0, len(matches))
	for _, m := range matches {
		if s := scorePositions(m.Str, m.MatchedIndexes); s > 0 {
			hits = append(hits, scored{index: m.Index, score: s})
		}
	}
	slices.SortFunc(hits, func(a, b scored) int { return a.index - b.index })
	slices.SortStableFunc(hits, func(a, b scored) int { return b.score - a.score })

	out := make([]Entry, 0, len(hits))
	for _, h := range hits {
		out = append(out, entries[h.index])
	}
	return out
}

func lastRune(s string) rune {
	r, _ := utf8.DecodeLastRuneInString(s)
	return r
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}
