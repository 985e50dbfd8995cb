package handler

import (
	"net/http"

	"github.com/julienschmidt/httprouter"

	"onehotel/internal/reservations/service"
	httputil "onehotel/pkg/http"
	"onehotel/pkg/logger"
	"onehotel/pkg/model"
)

type ReservationHandler struct {
	service service.ReservationService
	log     *logger.Logger
}

func NewReservationHandler(service service.ReservationService, log *logger.Logger) *ReservationHandler {
	return &ReservationHandler{
		service: service,
		log:     log,
	}
}

func (h *ReservationHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var in model.ReservationInput
	if err := httputil.DecodeJSON(r, &in); err != nil {
		h.writeError(w, "Create", err)
		return
	}

	res, err := h.service.Add(r.Context(), &in)
	if err != nil {
		h.writeError(w, "Create", err)
		return
	}

	if err := httputil.WriteCreated(w, res); err != nil {
		h.log.Error("failed to write created response", "handler", "Create", "operation", "WriteCreated", "error", err)
	}
}

// GetAll lists reservations, optionally narrowed to one room with ?room_id=
// and to stays inside ?start_date=&end_date=.
func (h *ReservationHandler) GetAll(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	rng, err := httputil.ExtractDateRange(r)
	if err != nil {
		h.writeError(w, "GetAll", err)
		return
	}

	var reservations []*model.Reservation
	if roomID := r.URL.Query().Get("room_id"); roomID != "" {
		reservations, err = h.service.GetByRoomID(r.Context(), roomID, rng)
	} else {
		reservations, err = h.service.GetAll(r.Context(), rng)
	}
	if err != nil {
		h.writeError(w, "GetAll", err)
		return
	}

	h.writeList(w, "GetAll", reservations)
}

func (h *ReservationHandler) GetByRoomID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	rng, err := httputil.ExtractDateRange(r)
	if err != nil {
		h.writeError(w, "GetByRoomID", err)
		return
	}

	reservations, err := h.service.GetByRoomID(r.Context(), ps.ByName("id"), rng)
	if err != nil {
		h.writeError(w, "GetByRoomID", err)
		return
	}

	h.writeList(w, "GetByRoomID", reservations)
}

func (h *ReservationHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	res, err := h.service.GetByID(r.Context(), ps.ByName("id"))
	if err != nil {
		h.writeError(w, "GetByID", err)
		return
	}

	if err := httputil.WriteSuccess(w, res); err != nil {
		h.log.Error("failed to write success response", "handler", "GetByID", "operation", "WriteSuccess", "error", err)
	}
}

func (h *ReservationHandler) Update(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var in model.ReservationInput
	if err := httputil.DecodeJSON(r, &in); err != nil {
		h.writeError(w, "Update", err)
		return
	}

	res, err := h.service.Update(r.Context(), ps.ByName("id"), &in)
	if err != nil {
		h.writeError(w, "Update", err)
		return
	}

	if err := httputil.WriteSuccess(w, res); err != nil {
		h.log.Error("failed to write success response", "handler", "Update", "operation", "WriteSuccess", "error", err)
	}
}

func (h *ReservationHandler) Delete(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if err := h.service.Delete(r.Context(), ps.ByName("id")); err != nil {
		h.writeError(w, "Delete", err)
		return
	}

	httputil.WriteNoContent(w)
}

func (h *ReservationHandler) writeList(w http.ResponseWriter, handler string, reservations []*model.Reservation) {
	if reservations == nil {
		reservations = []*model.Reservation{}
	}
	if err := httputil.WriteSuccess(w, reservations); err != nil {
		h.log.Error("failed to write success response", "handler", handler, "operation", "WriteSuccess", "error", err)
	}
}

func (h *ReservationHandler) writeError(w http.ResponseWriter, handler string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handler, "operation", "WriteError", "error", writeErr)
	}
}

func (h *ReservationHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/reservations", h.Create)
	router.GET("/api/v1/reservations", h.GetAll)
	router.GET("/api/v1/reservations/id/:id", h.GetByID)
	router.PUT("/api/v1/reservations/id/:id", h.Update)
	router.DELETE("/api/v1/reservations/id/:id", h.Delete)
	router.GET("/api/v1/rooms/id/:id/reservations", h.GetByRoomID)
}
