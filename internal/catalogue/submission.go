package catalogue

import (
	"net/url"
	"strings"
	"time"
	"unicode/utf8"
)

// Submission is a validated add-form post.
type Submission struct {
	Type     Type
	Name     string
	Rating   Rating
	Date     time.Time // zero when the entry is undated
	SourceID string
	Platform string
	Comment  string
	SkipCI   bool
}

// ValidationError names the form field that failed validation.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

func invalid(field, msg string) error {
	return &ValidationError{Field: field, Message: msg}
}

// ParseSubmission validates the add form. The form password is checked by
// the caller before this runs.
func ParseSubmission(form url.Values) (*Submission, error) {
	for field, values := range form {
		for _, v := range values {
			if !utf8.ValidString(v) {
				return nil, invalid(field, "Invalid encoding")
			}
		}
	}

	t, err := ParseType(form.Get("type"))
	if err != nil {
		return nil, invalid("type", "Invalid type")
	}

	s := &Submission{
		Type:     t,
		Name:     strings.TrimSpace(form.Get("name")),
		SourceID: strings.TrimSpace(form.Get("source-id")),
		Platform: strings.TrimSpace(form.Get("platform")),
		Comment:  strings.TrimRight(form.Get("comment"), " \t\r\n"),
		SkipCI:   checked(form.Get("skip-ci")),
	}
	if s.Platform == "" {
		s.Platform = strings.TrimSpace(form.Get("platform-select"))
	}

	if s.Name == "" {
		return nil, invalid("name", "Name is required")
	}
	if s.SourceID == "" {
		return nil, invalid("source-id", "Source ID is required")
	}

	raw := form.Get("rating")
	if r := Rating(raw); r.Valid() {
		s.Rating = r
	} else {
		return nil, invalid("rating", "Invalid rating")
	}

	date := strings.TrimSpace(form.Get("date"))
	if !checked(form.Get("no-date")) && date != "" {
		d, err := time.Parse(DateLayout, date)
		if err != nil {
			return nil, invalid("date", "Invalid date")
		}
		s.Date = d
	}
	return s, nil
}

func checked(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "on", "true", "1", "yes":
		return true
	}
	return false
}
