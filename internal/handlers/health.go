package handlers

import (
	"context"
	"net/http"
	"time"

	apperr "github.com/Veysel440/go-auth-smoke/internal/errors"
	"github.com/Veysel440/go-auth-smoke/internal/repos"
)

type Health struct{ Store repos.Store }

func (h Health) Live(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNoContent) }

func (h Health) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if err := h.Store.Ping(ctx); err != nil {
		apperr.Write(w, r, apperr.E(http.StatusServiceUnavailable, "unavailable", "store unavailable", err, nil))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
