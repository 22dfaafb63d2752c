package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/handsomefox/website-catalogue/internal/logger"
)

type HandlerWithErr func(w http.ResponseWriter, r *http.Request) error

type Error struct {
	Status  int
	Message string
}

func (e Error) Error() string {
	return e.Message + " code=" + strconv.FormatInt(int64(e.Status), 10)
}

type errorResponse struct {
	Error string `json:"error"`
}

// Adapt renders handler errors as {"error": msg}.
func Adapt(h HandlerWithErr) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := h(w, r); err != nil {
			statusErr := classify(r, err)
			writeJSON(w, statusErr.Status, &errorResponse{Error: statusErr.Message})
		}
	})
}

// AdaptHTML renders handler errors with the failure page.
func (h *Handler) AdaptHTML(fn HandlerWithErr) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := fn(w, r); err != nil {
			statusErr := classify(r, err)
			h.render(w, statusErr.Status, "failure.gohtml", failurePage{Message: statusErr.Message})
		}
	})
}

func classify(r *http.Request, err error) *Error {
	var statusErr *Error
	switch {
	case errors.As(err, &statusErr):
		return statusErr
	case errors.Is(err, context.DeadlineExceeded):
		slog.WarnContext(r.Context(), "request timed out", logger.Error(err))
		return &Error{Status: http.StatusBadGateway, Message: "upstream timed out"}
	default:
		slog.ErrorContext(r.Context(), "request failed", logger.Error(err))
		return &Error{Status: http.StatusInternalServerError, Message: "internal error"}
	}
}
