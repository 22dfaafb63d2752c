package handlers

import (
	"crypto/subtle"
	"errors"
	"log/slog"
	"net/http"
	"slices"
	"strings"

	"github.com/go-chi/httplog/v3"

	"github.com/handsomefox/website-catalogue/internal/catalogue"
	"github.com/handsomefox/website-catalogue/internal/github"
	"github.com/handsomefox/website-catalogue/internal/logger"
)

type option struct {
	Value string
	Label string
	Glyph string
}

type formPage struct {
	Error   string
	Types   []option
	Ratings []option
}

type successPage struct {
	Title     string
	Path      string
	CommitURL string
}

type failurePage struct {
	Message string
	Detail  string
}

var formTypes = []option{
	{Value: "movie", Label: "Movie"},
	{Value: "tv", Label: "Show"},
	{Value: "game", Label: "Game"},
	{Value: "book", Label: "Book"},
}

// formRatings lists ratings worst first, the way the form lays them out.
var formRatings = func() []option {
	out := make([]option, 0, len(catalogue.Ratings))
	for _, r := range slices.Backward(catalogue.Ratings) {
		out = append(out, option{Value: string(r), Label: r.Label(), Glyph: r.Glyph()})
	}
	return out
}()

func newFormPage(errMsg string) formPage {
	return formPage{Error: errMsg, Types: formTypes, Ratings: formRatings}
}

// serveAdd is the single entry point of /catalogue/add. Unauthenticated
// requests go through the login flow, authenticated GETs carrying a proxy
// source header are search lookups.
func (h *Handler) serveAdd(w http.ResponseWriter, r *http.Request) {
	if !h.isAuthenticated(r) {
		h.login(w, r)
		return
	}
	if r.Method == http.MethodGet && r.Header.Get(proxySourceHeader) != "" {
		Adapt(h.getProxy).ServeHTTP(w, r)
		return
	}

	switch r.Method {
	case http.MethodGet, http.MethodHead:
		h.render(w, http.StatusOK, "form.gohtml", newFormPage(""))
	case http.MethodPost:
		h.AdaptHTML(h.postAdd).ServeHTTP(w, r)
	default:
		w.Header().Set("Allow", "GET, POST")
		h.render(w, http.StatusMethodNotAllowed, "failure.gohtml", failurePage{Message: "Method not allowed"})
	}
}

func (h *Handler) checkFormPassword(given string) bool {
	a := []byte(strings.ToLower(given))
	b := []byte(strings.ToLower(h.formPassword))
	return subtle.ConstantTimeCompare(a, b) == 1
}

func (h *Handler) postAdd(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
	if err := r.ParseForm(); err != nil {
		h.render(w, http.StatusBadRequest, "form.gohtml", newFormPage("Invalid form"))
		return nil
	}

	if !h.checkFormPassword(r.PostForm.Get("form_password")) {
		slog.WarnContext(ctx, "add: invalid form password", slog.String("remote", r.RemoteAddr))
		h.render(w, http.StatusUnauthorized, "form.gohtml", newFormPage("Invalid password"))
		return nil
	}

	sub, err := catalogue.ParseSubmission(r.PostForm)
	if err != nil {
		var verr *catalogue.ValidationError
		if errors.As(err, &verr) {
			h.render(w, http.StatusBadRequest, "form.gohtml", newFormPage(verr.Message))
			return nil
		}
		return badRequest(err.Error())
	}
	httplog.SetAttrs(ctx, slog.String("type", string(sub.Type)), slog.String("title", sub.Name))

	pub, err := h.publisher.Publish(ctx, sub)
	h.metrics.ObserveCommit(string(sub.Type), err)
	if err != nil {
		slog.WarnContext(ctx, "add: commit failed", slog.String("path", pub.Path), logger.Error(err))
		h.render(w, http.StatusBadGateway, "failure.gohtml", failurePage{
			Message: "An error occurred while adding your content:",
			Detail:  failureDetail(err),
		})
		return nil
	}

	httplog.SetAttrs(ctx, slog.String("slug", pub.Slug), slog.String("path", pub.Path))
	h.render(w, http.StatusOK, "success.gohtml", successPage{
		Title:     sub.Name,
		Path:      pub.Path,
		CommitURL: pub.CommitURL,
	})
	return nil
}

// failureDetail prefers the raw response of the content store, which is
// what the operator needs to diagnose a rejected commit.
func failureDetail(err error) string {
	var commitErr *github.CommitError
	if errors.As(err, &commitErr) && commitErr.Body != "" {
		return commitErr.Body
	}
	return err.Error()
}
