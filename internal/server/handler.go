package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/TimChild/papertrade-quotes/internal/apperror"
	"github.com/TimChild/papertrade-quotes/internal/quote"
)

// Resolver is the price resolution contract this boundary exposes over HTTP.
type Resolver interface {
	Resolve(ctx context.Context, raw string) (quote.PricePoint, error)
}

type handler struct {
	resolver Resolver
}

func (h *handler) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *handler) getQuote(w http.ResponseWriter, r *http.Request) {
	symbol := r.PathValue("symbol")

	p, err := h.resolver.Resolve(r.Context(), symbol)
	if err != nil {
		var ae *apperror.AppError
		if errors.As(err, &ae) {
			writeError(w, ae.HTTPStatus(), ae.Message())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, quoteResponse{
		Ticker:     string(p.Ticker),
		Price:      p.Price.String(),
		ObservedAt: p.ObservedAt,
		Source:     string(p.Source),
		Vendor:     p.Vendor,
	})
}
