package http

import (
	"net/http"

	"github.com/fjod/go_storefront/internal/notify"
	"github.com/go-chi/chi/v5"
)

type ToastsResponse struct {
	Toasts []notify.Toast `json:"toasts"`
}

// GET /api/v1/toasts
func ListToasts(w http.ResponseWriter, r *http.Request) {
	s := getSession(r.Context())
	respondJSON(w, http.StatusOK, ToastsResponse{Toasts: s.Toaster.Active()})
}

// DELETE /api/v1/toasts/{toast_id}
func DismissToast(w http.ResponseWriter, r *http.Request) {
	s := getSession(r.Context())
	if !s.Toaster.Dismiss(chi.URLParam(r, "toast_id")) {
		respondError(w, http.StatusNotFound, "not_found", "toast not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
