package rest

import (
	"errors"
	"net/http"
	"strconv"

	"hub3-slips/internal/hub3"

	"github.com/go-chi/chi/v5"
)

func (h *Handler) generateReference(w http.ResponseWriter, r *http.Request) {
	seed, err := strconv.ParseInt(chi.URLParam(r, "seed"), 10, 64)
	if err != nil {
		ErrorBadRequest(w, "seed must be an integer")
		return
	}

	ref, err := hub3.GenerateReference(seed)
	if errors.Is(err, hub3.ErrSeedOutOfRange) {
		ErrorBadRequest(w, err.Error())
		return
	}
	if err != nil {
		serviceError(w, "generate reference", err)
		return
	}

	Success(w, "", map[string]string{"reference": ref})
}

func (h *Handler) validateReference(w http.ResponseWriter, r *http.Request) {
	ref := chi.URLParam(r, "reference")

	Success(w, "", map[string]any{
		"reference": ref,
		"valid":     hub3.ValidateReference(ref),
	})
}
