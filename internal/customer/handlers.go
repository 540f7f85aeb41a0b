package customer

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/noah-isme/backend-freight/internal/common"
)

// Handler exposes customer endpoints.
type Handler struct {
	Svc            *Service
	DefaultPerPage int
	MaxPerPage     int
}

// Routes mounts the customer endpoints on a chi router.
func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.Create)
	r.Get("/", h.List)
	r.Get("/{customerId}", h.Get)
	r.Put("/{customerId}", h.Update)
	r.Delete("/{customerId}", h.Delete)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var in Input
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid JSON body", nil)
		return
	}
	c, err := h.Svc.Create(r.Context(), in)
	if err != nil {
		common.RenderError(w, err)
		return
	}
	common.JSONData(w, http.StatusCreated, c)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := customerID(w, r)
	if !ok {
		return
	}
	var in Input
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid JSON body", nil)
		return
	}
	c, err := h.Svc.Update(r.Context(), id, in)
	if err != nil {
		common.RenderError(w, err)
		return
	}
	common.JSONData(w, http.StatusOK, c)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := customerID(w, r)
	if !ok {
		return
	}
	c, err := h.Svc.Get(r.Context(), id)
	if err != nil {
		common.RenderError(w, err)
		return
	}
	common.JSONData(w, http.StatusOK, c)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	page, perPage := common.ParsePagination(r, h.DefaultPerPage, h.MaxPerPage)
	items, total, err := h.Svc.List(r.Context(), ListParams{
		Search: r.URL.Query().Get("q"),
		Limit:  int32(perPage),
		Offset: common.Offset(page, perPage),
	})
	if err != nil {
		common.RenderError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{
		"data": items,
		"pagination": common.Pagination{
			Page:       page,
			PerPage:    perPage,
			TotalItems: int(total),
		},
	})
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := customerID(w, r)
	if !ok {
		return
	}
	if err := h.Svc.Delete(r.Context(), id); err != nil {
		common.RenderError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func customerID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "customerId"))
	if err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid customer id", nil)
		return uuid.Nil, false
	}
	return id, true
}
