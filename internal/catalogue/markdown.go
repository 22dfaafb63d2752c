package catalogue

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

const frontMatterFence = "---"

// Synthesize renders a submission as a catalogue document. The key order is
// fixed: title, platform (only when set), rating, finishedDate, source key.
func Synthesize(s *Submission) string {
	var b strings.Builder
	b.WriteString(frontMatterFence + "\n")
	fmt.Fprintf(&b, "title: %s\n", strconv.Quote(s.Name))
	if s.Platform != "" {
		fmt.Fprintf(&b, "platform: %s\n", strconv.Quote(s.Platform))
	}
	fmt.Fprintf(&b, "rating: %s\n", strconv.Quote(string(s.Rating)))
	date := NoDate
	if !s.Date.IsZero() {
		date = s.Date.Format(DateLayout)
	}
	fmt.Fprintf(&b, "finishedDate: %s\n", date)
	fmt.Fprintf(&b, "%s: %s\n", s.Type.SourceKey(), strconv.Quote(s.SourceID))
	b.WriteString(frontMatterFence + "\n\n")
	b.WriteString(s.Comment)
	b.WriteString("\n")
	return b.String()
}

// FrontMatter is the header block of a catalogue document. Scalars are read
// as strings whatever their YAML tag, so `igdb: 1942` and `igdb: "1942"`
// decode the same.
type FrontMatter struct {
	Title        string `yaml:"title"`
	Platform     string `yaml:"platform,omitempty"`
	Rating       string `yaml:"rating"`
	FinishedDate string `yaml:"finishedDate"`
	TMDB         string `yaml:"tmdb,omitempty"`
	IGDB         string `yaml:"igdb,omitempty"`
	ISBN         string `yaml:"isbn,omitempty"`
}

// SourceID returns the identifier stored under the type's source key.
func (fm *FrontMatter) SourceID(t Type) string {
	switch t.SourceKey() {
	case "tmdb":
		return fm.TMDB
	case "igdb":
		return fm.IGDB
	case "isbn":
		return fm.ISBN
	}
	return ""
}

var ErrNoFrontMatter = errors.New("document has no front-matter")

// ParseDocument splits a document into its front-matter and body. The blank
// line after the closing fence and the final newline are not part of the
// body.
func ParseDocument(doc []byte) (FrontMatter, string, error) {
	rest, ok := bytes.CutPrefix(doc, []byte(frontMatterFence+"\n"))
	if !ok {
		return FrontMatter{}, "", ErrNoFrontMatter
	}

	var header, body []byte
	if h, b, found := bytes.Cut(rest, []byte("\n"+frontMatterFence+"\n")); found {
		header, body = h, b
	} else if h, found := bytes.CutSuffix(rest, []byte("\n"+frontMatterFence)); found {
		header = h
	} else {
		return FrontMatter{}, "", fmt.Errorf("%w: missing closing fence", ErrNoFrontMatter)
	}

	var fm FrontMatter
	if err := yaml.Unmarshal(header, &fm); err != nil {
		return FrontMatter{}, "", fmt.Errorf("parse front-matter: %w", err)
	}

	text := string(body)
	text = strings.TrimPrefix(text, "\n")
	text = strings.TrimSuffix(text, "\n")
	return fm, text, nil
}
