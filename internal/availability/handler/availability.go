package handler

import (
	"net/http"

	"github.com/julienschmidt/httprouter"

	"slotbook/internal/availability/service"
	httputil "slotbook/pkg/http"
	"slotbook/pkg/logger"
)

type AvailabilityHandler struct {
	service service.AvailabilityService
	log     *logger.Logger
}

func NewAvailabilityHandler(service service.AvailabilityService, log *logger.Logger) *AvailabilityHandler {
	return &AvailabilityHandler{
		service: service,
		log:     log,
	}
}

// GetAvailability serves the bookable slots of a business:
// ?duration=<minutes>&start=<date|RFC3339|epoch ms>&end=<...>
func (h *AvailabilityHandler) GetAvailability(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	query := r.URL.Query()

	duration, err := httputil.ParsePositiveInt("duration", query.Get("duration"))
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "GetAvailability", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	availability, err := h.service.GetAvailability(r.Context(), ps.ByName("business_id"), service.Query{
		Duration: duration,
		Start:    query.Get("start"),
		End:      query.Get("end"),
	})
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "GetAvailability", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, availability); err != nil {
		h.log.Error("failed to write success response", "handler", "GetAvailability", "operation", "WriteSuccess", "error", err)
	}
}

func (h *AvailabilityHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/api/v1/businesses/:business_id/availability", h.GetAvailability)
}
