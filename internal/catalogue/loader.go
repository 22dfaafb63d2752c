package catalogue

import (
	"encoding/json"
	"errors"
	"fmt"
	"image"
	_ "image/png"
	"io/fs"
	"path"
	"slices"
	"strings"
	"time"
)

const (
	sidecarName = "_data.json"
	coverName   = "cover.png"

	// CoverRoute is the URL prefix cover images are served under.
	CoverRoute = "/catalogue/covers"
)

var documentExts = []string{".md", ".mdoc"}

func CoverURL(t Type, slug string) string {
	return CoverRoute + "/" + t.Plural() + "/" + slug
}

// CoverPath is the location of an entry's cover inside the content tree.
func CoverPath(t Type, slug string) string {
	return path.Join(t.Plural(), slug, coverName)
}

// sidecarCover holds the fields of _data.json that are not type metadata.
type sidecarCover struct {
	Cover       string `json:"cover"`
	Placeholder string `json:"placeholder"`
}

// Load reads every entry under {plural}/{slug}/{slug}.md (or .mdoc), in type
// order and then slug order. A missing type directory holds no entries.
func Load(fsys fs.FS) ([]Entry, error) {
	var out []Entry
	for _, t := range Types {
		dirs, err := fs.ReadDir(fsys, t.Plural())
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", t.Plural(), err)
		}
		slices.SortFunc(dirs, func(a, b fs.DirEntry) int { return strings.Compare(a.Name(), b.Name()) })

		for _, d := range dirs {
			if !d.IsDir() || strings.HasPrefix(d.Name(), ".") {
				continue
			}
			e, ok, err := loadEntry(fsys, t, d.Name())
			if err != nil {
				return nil, err
			}
			if ok {
				out = append(out, e)
			}
		}
	}
	return out, nil
}

func loadEntry(fsys fs.FS, t Type, slug string) (Entry, bool, error) {
	dir := path.Join(t.Plural(), slug)

	var doc []byte
	var docPath string
	for _, ext := range documentExts {
		p := path.Join(dir, slug+ext)
		b, err := fs.ReadFile(fsys, p)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return Entry{}, false, fmt.Errorf("read %s: %w", p, err)
		}
		doc, docPath = b, p
		break
	}
	if doc == nil {
		return Entry{}, false, nil
	}

	fm, body, err := ParseDocument(doc)
	if err != nil {
		return Entry{}, false, fmt.Errorf("%s: %w", docPath, err)
	}
	rating, err := ParseRating(fm.Rating)
	if err != nil {
		return Entry{}, false, fmt.Errorf("%s: %w", docPath, err)
	}
	finished, err := parseFinishedDate(fm.FinishedDate)
	if err != nil {
		return Entry{}, false, fmt.Errorf("%s: %w", docPath, err)
	}

	e := Entry{
		Type:         t,
		Slug:         slug,
		Title:        fm.Title,
		Rating:       rating,
		FinishedDate: finished,
		Platform:     fm.Platform,
		SourceID:     fm.SourceID(t),
		Comment:      body,
	}

	sidecar, err := fs.ReadFile(fsys, path.Join(dir, sidecarName))
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return Entry{}, false, fmt.Errorf("read %s sidecar: %w", dir, err)
	default:
		md, err := DecodeMetadata(t, sidecar)
		if err != nil {
			return Entry{}, false, fmt.Errorf("%s: %w", dir, err)
		}
		e.Metadata = md
		var c sidecarCover
		if err := json.Unmarshal(sidecar, &c); err != nil {
			return Entry{}, false, fmt.Errorf("%s: decode cover: %w", dir, err)
		}
		e.Cover = Cover{Src: c.Cover, Placeholder: c.Placeholder}
	}

	if cfg, ok := coverConfig(fsys, path.Join(dir, coverName)); ok {
		e.Cover.Src = CoverURL(t, slug)
		e.Cover.Width = cfg.Width
		e.Cover.Height = cfg.Height
	}
	return e, true, nil
}

func coverConfig(fsys fs.FS, p string) (image.Config, bool) {
	f, err := fsys.Open(p)
	if err != nil {
		return image.Config{}, false
	}
	defer f.Close()
	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		// Present but unreadable covers are still served as-is.
		return image.Config{}, true
	}
	return cfg, true
}

func parseFinishedDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == NoDate {
		return time.Time{}, nil
	}
	if d, err := time.Parse(DateLayout, raw); err == nil {
		return d, nil
	}
	d, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("finishedDate %q: want YYYY-MM-DD or N/A", raw)
	}
	return d.UTC().Truncate(24 * time.Hour), nil
}
