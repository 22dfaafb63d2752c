package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/httplog/v3"

	"github.com/handsomefox/website-catalogue/internal/logger"
	"github.com/handsomefox/website-catalogue/internal/proxy"
)

const proxySourceHeader = "x-proxy-source"

func (h *Handler) getProxy(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	src, err := proxy.ParseSource(r.Header.Get(proxySourceHeader))
	if err != nil {
		return badRequest("Invalid source")
	}
	httplog.SetAttrs(ctx, slog.String("source", string(src)))

	q := r.URL.Query()
	body, err := h.proxy.Search(ctx, proxy.Request{
		Source: src,
		Type:   q.Get("type"),
		Query:  q.Get("query"),
	})
	if err != nil {
		var upstream *proxy.UpstreamError
		switch {
		case errors.Is(err, proxy.ErrInvalidQuery), errors.Is(err, proxy.ErrUnknownSource):
			return badRequest(err.Error())
		case errors.As(err, &upstream):
			slog.WarnContext(ctx, "proxy: upstream failed", slog.String("source", string(src)), logger.Error(err))
			return badGateway(upstream.Error())
		default:
			return err
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		slog.WarnContext(ctx, "proxy: write failed", logger.Error(err))
	}
	return nil
}
