package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"io/fs"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/handsomefox/website-catalogue/internal/catalogue"
	"github.com/handsomefox/website-catalogue/internal/logger"
)

const (
	listingCacheControl = "max-age=3600, s-maxage=604800"
	exportCacheControl  = "public, max-age=0, must-revalidate, stale-while-revalidate=3600"

	// metaSeparator splits the page metadata from the cards in HTML listings.
	metaSeparator = "!METAEND"
)

type listingResponse struct {
	catalogue.PageMeta
	Entries []catalogue.Item `json:"entries"`
}

type contentResponse struct {
	Version string           `json:"version,omitempty"`
	Content []catalogue.Card `json:"content"`
}

// scopeParam resolves the {kind} route segment. Only the plural directory
// names are routes; /entries lists every type.
func scopeParam(r *http.Request) (catalogue.Type, string, error) {
	kind := chi.URLParam(r, "kind")
	if kind == "" {
		return "", "entries", nil
	}
	t, err := catalogue.ParseType(kind)
	if err != nil || t.Plural() != kind {
		return "", "", notFound("not found")
	}
	return t, kind, nil
}

func wantsHTML(r *http.Request) bool {
	if f := r.URL.Query().Get("format"); f != "" {
		return f == "html"
	}
	return strings.Contains(r.Header.Get("Accept"), "text/html")
}

func (h *Handler) getCatalogue(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	scope, kind, err := scopeParam(r)
	if err != nil {
		return err
	}
	q, err := catalogue.ParseQuery(r.URL.Query())
	if err != nil {
		return badRequest(err.Error())
	}
	q.Scope = scope

	res, err := h.engine.Run(ctx, q)
	if err != nil {
		slog.WarnContext(ctx, "catalogue query failed", slog.String("kind", kind), logger.Error(err))
		return err
	}

	w.Header().Set("Cache-Control", listingCacheControl)
	if !wantsHTML(r) {
		h.metrics.ObserveQuery(kind, "json")
		writeJSON(w, http.StatusOK, &listingResponse{PageMeta: res.PageMeta, Entries: res.Items()})
		return nil
	}

	h.metrics.ObserveQuery(kind, "html")
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(res.PageMeta); err != nil {
		return err
	}
	buf.Truncate(buf.Len() - 1) // drop the encoder's newline
	buf.WriteString(metaSeparator)
	if err := h.templates.ExecuteTemplate(&buf, "cards.gohtml", res.Items()); err != nil {
		return err
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		slog.WarnContext(ctx, "write listing failed", logger.Error(err))
	}
	return nil
}

func (h *Handler) getContent(w http.ResponseWriter, _ *http.Request) error {
	version, _ := h.version.Get()
	w.Header().Set("Cache-Control", exportCacheControl)
	writeJSON(w, http.StatusOK, &contentResponse{Version: version, Content: h.cards})
	return nil
}

func (h *Handler) getVersion(w http.ResponseWriter, _ *http.Request) error {
	version, ok := h.version.Get()
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return nil
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Cache-Control", exportCacheControl)
	_, err := w.Write([]byte(version))
	return err
}

// getLLMs lists every entry as "<title> <rating>", grouped under its type.
func (h *Handler) getLLMs(w http.ResponseWriter, _ *http.Request) error {
	var b strings.Builder
	for _, t := range catalogue.Types {
		var lines []string
		for i := range h.entries {
			if e := &h.entries[i]; e.Type == t {
				lines = append(lines, e.Title+" "+string(e.Rating))
			}
		}
		if len(lines) == 0 {
			continue
		}
		if b.Len() > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(string(t))
		b.WriteByte('\n')
		b.WriteString(strings.Join(lines, "\n"))
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Cache-Control", exportCacheControl)
	_, err := w.Write([]byte(b.String()))
	return err
}

func (h *Handler) getCover(w http.ResponseWriter, r *http.Request) error {
	t, err := catalogue.ParseType(chi.URLParam(r, "kind"))
	if err != nil {
		return notFound("not found")
	}
	slug := chi.URLParam(r, "slug")
	if slug == "" || strings.HasPrefix(slug, ".") || strings.ContainsAny(slug, `/\`) {
		return notFound("not found")
	}
	p := catalogue.CoverPath(t, slug)
	if _, err := fs.Stat(h.content, p); err != nil {
		if errors.Is(err, fs.ErrNotExist) || errors.Is(err, fs.ErrInvalid) {
			return notFound("cover not found")
		}
		return err
	}
	w.Header().Set("Cache-Control", "public, max-age=604800")
	http.ServeFileFS(w, r, h.content, p)
	return nil
}
