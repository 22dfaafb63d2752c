// Package handlers wires HTTP routing and the catalogue endpoints.
package handlers

import (
	"context"
	"errors"
	"html/template"
	"io/fs"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/handsomefox/website-catalogue/internal/catalogue"
	"github.com/handsomefox/website-catalogue/internal/metrics"
	"github.com/handsomefox/website-catalogue/internal/proxy"
)

const maxFormBytes = 1 << 20

// Publisher commits a validated submission to the content repository.
type Publisher interface {
	Publish(ctx context.Context, s *catalogue.Submission) (catalogue.Published, error)
}

type Searcher interface {
	Search(ctx context.Context, req proxy.Request) ([]byte, error)
}

type Querier interface {
	Run(ctx context.Context, q catalogue.Query) (catalogue.Result, error)
}

type Handler struct {
	templates    *template.Template
	publisher    Publisher
	proxy        Searcher
	engine       Querier
	metrics      *metrics.Metrics
	version      *catalogue.Version
	entries      []catalogue.Entry
	cards        []catalogue.Card
	content      fs.FS
	passHash     string
	formPassword string
	origins      []string
}

type Config struct {
	Templates *template.Template
	Publisher Publisher
	Proxy     Searcher
	Engine    Querier
	Metrics   *metrics.Metrics
	Version   *catalogue.Version
	// Entries is the loaded dataset in export order.
	Entries []catalogue.Entry
	// Content is the content checkout covers are served from.
	Content        fs.FS
	HashedPassword string
	FormPassword   string
	AllowedOrigins []string
}

func New(cfg *Config) (*Handler, error) {
	switch {
	case cfg.Templates == nil:
		return nil, errors.New("templates are required")
	case cfg.Publisher == nil:
		return nil, errors.New("publisher is required")
	case cfg.Proxy == nil:
		return nil, errors.New("proxy is required")
	case cfg.Engine == nil:
		return nil, errors.New("query engine is required")
	case cfg.Content == nil:
		return nil, errors.New("content filesystem is required")
	case strings.TrimSpace(cfg.HashedPassword) == "":
		return nil, errors.New("hashed password is required")
	case cfg.FormPassword == "":
		return nil, errors.New("form password is required")
	}

	m := cfg.Metrics
	if m == nil {
		m = metrics.New()
	}
	version := cfg.Version
	if version == nil {
		version = &catalogue.Version{}
	}
	origins := cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	return &Handler{
		templates:    cfg.Templates,
		publisher:    cfg.Publisher,
		proxy:        cfg.Proxy,
		engine:       cfg.Engine,
		metrics:      m,
		version:      version,
		entries:      cfg.Entries,
		cards:        catalogue.Cards(cfg.Entries),
		content:      cfg.Content,
		passHash:     strings.ToLower(strings.TrimSpace(cfg.HashedPassword)),
		formPassword: cfg.FormPassword,
		origins:      origins,
	}, nil
}

// RegisterRoutes mounts the catalogue endpoints; r is expected to be
// routed at /catalogue.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Handle("/add", http.HandlerFunc(h.serveAdd))
	r.Method(http.MethodPost, "/logout", Adapt(h.postLogout))

	r.Group(func(r chi.Router) {
		r.Use(h.MiddlewareRequireAuth)
		r.Method(http.MethodGet, "/proxy", Adapt(h.getProxy))
	})

	r.Group(func(r chi.Router) {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   h.origins,
			AllowedMethods:   []string{http.MethodGet, http.MethodHead, http.MethodOptions},
			AllowedHeaders:   []string{"Accept", "Content-Type"},
			AllowCredentials: false,
			MaxAge:           300,
		}))

		r.Method(http.MethodGet, "/content.json", Adapt(h.getContent))
		r.Method(http.MethodGet, "/version", Adapt(h.getVersion))
		r.Method(http.MethodGet, "/llms.txt", Adapt(h.getLLMs))
		r.Method(http.MethodGet, "/covers/{kind}/{slug}", Adapt(h.getCover))
		r.Method(http.MethodGet, "/entries", Adapt(h.getCatalogue))
		r.Method(http.MethodGet, "/{kind}", Adapt(h.getCatalogue))
	})
}
