package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httplog/v3"

	"github.com/handsomefox/website-catalogue/internal/catalogue"
	"github.com/handsomefox/website-catalogue/internal/config"
	"github.com/handsomefox/website-catalogue/internal/github"
	"github.com/handsomefox/website-catalogue/internal/handlers"
	"github.com/handsomefox/website-catalogue/internal/igdb"
	"github.com/handsomefox/website-catalogue/internal/logger"
	"github.com/handsomefox/website-catalogue/internal/metrics"
	"github.com/handsomefox/website-catalogue/internal/openlibrary"
	"github.com/handsomefox/website-catalogue/internal/proxy"
	"github.com/handsomefox/website-catalogue/internal/store"
	"github.com/handsomefox/website-catalogue/internal/tmdb"
	"github.com/handsomefox/website-catalogue/internal/web"

	_ "github.com/joho/godotenv/autoload"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.SetDefault(logger.New(slog.LevelInfo, false))
		slog.Log(context.Background(), logger.LevelFatal, "invalid configuration", logger.Error(err))
		return
	}
	slog.SetDefault(logger.New(cfg.LogLevel, cfg.Production()))

	if err := run(cfg); err != nil {
		slog.Log(context.Background(), logger.LevelFatal, "server stopped", logger.Error(err))
	}
}

func run(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	contentFS := os.DirFS(cfg.ContentDir)
	entries, err := catalogue.Load(contentFS)
	if err != nil {
		return fmt.Errorf("failed to load catalogue: %w", err)
	}

	st, err := store.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if err := st.Close(); err != nil {
			slog.Error("Failed to close DB", logger.Error(err))
		}
	}()
	if err := st.ReplaceAll(ctx, entries); err != nil {
		return fmt.Errorf("failed to index catalogue: %w", err)
	}

	var version catalogue.Version
	hash, err := catalogue.Hash(catalogue.Cards(entries))
	if err != nil {
		return fmt.Errorf("failed to hash catalogue: %w", err)
	}
	if err := version.Set(hash); err != nil {
		return err
	}

	m := metrics.New()
	for _, t := range catalogue.Types {
		n := 0
		for i := range entries {
			if entries[i].Type == t {
				n++
			}
		}
		m.Entries.WithLabelValues(string(t)).Set(float64(n))
	}
	slog.Info("catalogue loaded", slog.Int("entries", len(entries)), slog.String("version", hash))

	gh, err := github.New(github.Config{
		Token:     cfg.GitHubKey,
		Repo:      cfg.GitHubRepo,
		Branch:    cfg.GitHubBranch,
		APIBase:   cfg.GitHubAPIBase,
		Committer: github.Committer{Name: cfg.CommitterName, Email: cfg.CommitterEmail},
		Timeout:   cfg.OutboundTimeout,
		DryRun:    cfg.GitHubDryRun,
	})
	if err != nil {
		return err
	}
	games, err := igdb.New(igdb.Config{
		ClientID:          cfg.IGDBClient,
		ClientSecret:      cfg.IGDBKey,
		Timeout:           cfg.OutboundTimeout,
		RequestsPerSecond: cfg.IGDBRate,
	})
	if err != nil {
		return err
	}
	search := proxy.New(
		tmdb.New(cfg.TMDBKey, tmdb.WithTimeout(cfg.OutboundTimeout)),
		games,
		openlibrary.New("", cfg.OutboundTimeout),
		proxy.WithObserver(func(src proxy.Source, took time.Duration, err error) {
			m.ObserveProxy(string(src), took, err)
		}),
	)

	tmpl, err := web.Templates()
	if err != nil {
		return fmt.Errorf("failed to parse templates: %w", err)
	}
	static, err := web.Static()
	if err != nil {
		return err
	}

	app, err := handlers.New(&handlers.Config{
		Templates:      tmpl,
		Publisher:      catalogue.NewPublisher(gh, cfg.ContentPrefix),
		Proxy:          search,
		Engine:         catalogue.NewEngine(st),
		Metrics:        m,
		Version:        &version,
		Entries:        entries,
		Content:        contentFS,
		HashedPassword: cfg.HashedPassword,
		FormPassword:   cfg.FormPassword,
		AllowedOrigins: cfg.AllowedOrigins,
	})
	if err != nil {
		return fmt.Errorf("failed to init handlers: %w", err)
	}

	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(httplog.RequestLogger(slog.Default(), &httplog.Options{
		Level:         slog.LevelInfo,
		Schema:        httplog.SchemaECS.Concise(!cfg.Production()),
		RecoverPanics: true,
		Skip: func(req *http.Request, _ int) bool {
			return req.URL.Path == "/healthz" || req.URL.Path == "/metrics"
		},
	}))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if err := st.Ping(r.Context()); err != nil {
			http.Error(w, "unhealthy", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})
	r.Handle("/metrics", m.Handler())
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServerFS(static)))
	r.Route("/catalogue", app.RegisterRoutes)

	addr := ":" + cfg.Port
	server := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		// Adding an entry probes and commits against GitHub in sequence.
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("listening", slog.String("addr", addr), slog.String("env", string(cfg.Environment)))
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	slog.Info("shutting down")
	return server.Shutdown(shutdownCtx)
}
