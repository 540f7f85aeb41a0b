package rates

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/noah-isme/backend-freight/internal/common"
)

// Handler exposes the rate lookup endpoint.
type Handler struct {
	Svc *Service
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/{currency}", h.Get)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	rate, err := h.Svc.Get(r.Context(), chi.URLParam(r, "currency"))
	if err != nil {
		common.RenderError(w, err)
		return
	}
	common.JSONData(w, http.StatusOK, rate)
}
