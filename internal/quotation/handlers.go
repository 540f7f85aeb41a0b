package quotation

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/noah-isme/backend-freight/internal/common"
	"github.com/noah-isme/backend-freight/internal/pricing"
)

// Handler exposes quotation endpoints.
type Handler struct {
	Svc            *Service
	DefaultPerPage int
	MaxPerPage     int
}

// Routes mounts the quotation endpoints on a chi router.
func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.Create)
	r.Get("/", h.List)
	r.Get("/{quotationId}", h.Get)
	r.Put("/{quotationId}", h.Update)
	r.Post("/{quotationId}/status", h.Transition)
}

// Create prices and persists a new draft quotation.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var in Input
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid JSON body", nil)
		return
	}
	q, err := h.Svc.Create(r.Context(), in)
	if err != nil {
		common.RenderError(w, err)
		return
	}
	common.JSONData(w, http.StatusCreated, q)
}

// Update reprices an existing quotation from the full payload.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := quotationID(w, r)
	if !ok {
		return
	}
	var in Input
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid JSON body", nil)
		return
	}
	q, err := h.Svc.Update(r.Context(), id, in)
	if err != nil {
		common.RenderError(w, err)
		return
	}
	common.JSONData(w, http.StatusOK, q)
}

// Get loads one quotation with packages and charges.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := quotationID(w, r)
	if !ok {
		return
	}
	q, err := h.Svc.Get(r.Context(), id)
	if err != nil {
		common.RenderError(w, err)
		return
	}
	common.JSONData(w, http.StatusOK, q)
}

// List returns a filtered, paginated quotation listing.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	page, perPage := common.ParsePagination(r, h.DefaultPerPage, h.MaxPerPage)
	params := ListParams{
		Status: Status(r.URL.Query().Get("status")),
		Mode:   pricing.Mode(r.URL.Query().Get("mode")),
		Limit:  int32(perPage),
		Offset: common.Offset(page, perPage),
	}
	items, total, err := h.Svc.List(r.Context(), params)
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

// Transition moves a quotation through its lifecycle.
func (h *Handler) Transition(w http.ResponseWriter, r *http.Request) {
	id, ok := quotationID(w, r)
	if !ok {
		return
	}
	var body struct {
		Status Status `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid JSON body", nil)
		return
	}
	q, err := h.Svc.Transition(r.Context(), id, body.Status)
	if err != nil {
		common.RenderError(w, err)
		return
	}
	common.JSONData(w, http.StatusOK, q)
}

func quotationID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "quotationId"))
	if err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid quotation id", nil)
		return uuid.Nil, false
	}
	return id, true
}
