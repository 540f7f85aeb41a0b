package export

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	"github.com/noah-isme/backend-freight/internal/common"
)

// Enqueuer submits background tasks. *asynq.Client satisfies it.
type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// Handler exposes export shipment and register endpoints.
type Handler struct {
	Svc            *Service
	Queue          Enqueuer
	DefaultPerPage int
	MaxPerPage     int
}

// Routes mounts the export endpoints on a chi router.
func (h *Handler) Routes(r chi.Router) {
	r.Route("/shipments", func(r chi.Router) {
		r.Post("/", h.CreateShipment)
		r.Get("/", h.ListShipments)
		r.Get("/{shipmentId}", h.GetShipment)
		r.Put("/{shipmentId}", h.UpdateShipment)
		r.Delete("/{shipmentId}", h.DeleteShipment)
	})
	r.Post("/register", h.EnqueueRegister)
	r.Get("/register/{period}", h.GetRegister)
}

func (h *Handler) CreateShipment(w http.ResponseWriter, r *http.Request) {
	var in Input
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid JSON body", nil)
		return
	}
	sh, err := h.Svc.CreateShipment(r.Context(), in)
	if err != nil {
		common.RenderError(w, err)
		return
	}
	common.JSONData(w, http.StatusCreated, sh)
}

func (h *Handler) UpdateShipment(w http.ResponseWriter, r *http.Request) {
	id, ok := shipmentID(w, r)
	if !ok {
		return
	}
	var in Input
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid JSON body", nil)
		return
	}
	sh, err := h.Svc.UpdateShipment(r.Context(), id, in)
	if err != nil {
		common.RenderError(w, err)
		return
	}
	common.JSONData(w, http.StatusOK, sh)
}

func (h *Handler) GetShipment(w http.ResponseWriter, r *http.Request) {
	id, ok := shipmentID(w, r)
	if !ok {
		return
	}
	sh, err := h.Svc.GetShipment(r.Context(), id)
	if err != nil {
		common.RenderError(w, err)
		return
	}
	common.JSONData(w, http.StatusOK, sh)
}

func (h *Handler) ListShipments(w http.ResponseWriter, r *http.Request) {
	page, perPage := common.ParsePagination(r, h.DefaultPerPage, h.MaxPerPage)
	items, total, err := h.Svc.ListShipments(r.Context(), ListParams{
		Destination: r.URL.Query().Get("destination"),
		Period:      r.URL.Query().Get("period"),
		Limit:       int32(perPage),
		Offset:      common.Offset(page, perPage),
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

func (h *Handler) DeleteShipment(w http.ResponseWriter, r *http.Request) {
	id, ok := shipmentID(w, r)
	if !ok {
		return
	}
	if err := h.Svc.DeleteShipment(r.Context(), id); err != nil {
		common.RenderError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// EnqueueRegister schedules a register build for the requested period. The
// aggregation itself runs on the worker.
func (h *Handler) EnqueueRegister(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Period string `json:"period"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid JSON body", nil)
		return
	}
	task, err := NewRegisterTask(body.Period)
	if err != nil {
		common.JSONError(w, http.StatusBadRequest, "VALIDATION_ERROR", "period must be YYYY-MM", nil)
		return
	}
	info, err := h.Queue.EnqueueContext(r.Context(), task)
	if err != nil {
		common.RenderError(w, err)
		return
	}
	common.JSONData(w, http.StatusAccepted, map[string]string{
		"task_id": info.ID,
		"period":  body.Period,
	})
}

func (h *Handler) GetRegister(w http.ResponseWriter, r *http.Request) {
	rows, err := h.Svc.GetRegister(r.Context(), chi.URLParam(r, "period"))
	if err != nil {
		common.RenderError(w, err)
		return
	}
	common.JSONData(w, http.StatusOK, rows)
}

func shipmentID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "shipmentId"))
	if err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid shipment id", nil)
		return uuid.Nil, false
	}
	return id, true
}
