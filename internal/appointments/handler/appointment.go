package handler

import (
	"encoding/json"
	"net/http"

	"agendo/internal/appointments/service"
	httputil "agendo/pkg/http"
	"agendo/pkg/logger"
	"agendo/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type AppointmentHandler struct {
	bookings service.BookingService
	slots    service.SlotService
	log      *logger.Logger
}

func NewAppointmentHandler(bookings service.BookingService, slots service.SlotService, log *logger.Logger) *AppointmentHandler {
	return &AppointmentHandler{
		bookings: bookings,
		slots:    slots,
		log:      log,
	}
}

func (h *AppointmentHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req model.BookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "Create", "operation", "WriteJSON", "error", writeErr)
		}
		return
	}

	appointment, err := h.bookings.Book(r.Context(), &req)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Create", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteCreated(w, appointment); err != nil {
		h.log.Error("failed to write created response", "handler", "Create", "operation", "WriteCreated", "error", err)
	}
}

func (h *AppointmentHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := ps.ByName("id")

	appointment, err := h.bookings.GetByID(r.Context(), id)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "GetByID", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, appointment); err != nil {
		h.log.Error("failed to write success response", "handler", "GetByID", "operation", "WriteSuccess", "error", err)
	}
}

func (h *AppointmentHandler) Cancel(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := ps.ByName("id")

	if err := h.bookings.Cancel(r.Context(), id); err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Cancel", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteNoContent(w); err != nil {
		h.log.Error("failed to write no-content response", "handler", "Cancel", "operation", "WriteNoContent", "error", err)
	}
}

func (h *AppointmentHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/api/v1/providers/:id/slots", h.ListSlots)
	router.POST("/api/v1/appointments", h.Create)
	router.GET("/api/v1/appointments/id/:id", h.GetByID)
	router.DELETE("/api/v1/appointments/id/:id", h.Cancel)
}
