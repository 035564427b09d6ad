package handler

import (
	"net/http"
	"time"

	"lagoon/internal/availability/service"
	apperrors "lagoon/pkg/errors"
	httputil "lagoon/pkg/http"
	"lagoon/pkg/logger"

	"github.com/julienschmidt/httprouter"
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

type availabilityResponse struct {
	FacilityID string    `json:"facility_id"`
	StartDate  time.Time `json:"start_date"`
	EndDate    time.Time `json:"end_date"`
	Available  bool      `json:"available"`
}

func (h *AvailabilityHandler) Check(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	facilityID, start, end, ok := h.parseRange(w, r, "Check")
	if !ok {
		return
	}

	available, err := h.service.IsAvailable(r.Context(), facilityID, start, end)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Check", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, availabilityResponse{
		FacilityID: facilityID,
		StartDate:  start,
		EndDate:    end,
		Available:  available,
	}); err != nil {
		h.log.Error("failed to write success response", "handler", "Check", "operation", "WriteSuccess", "error", err)
	}
}

func (h *AvailabilityHandler) Calendar(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	facilityID, start, end, ok := h.parseRange(w, r, "Calendar")
	if !ok {
		return
	}

	days, err := h.service.Calendar(r.Context(), facilityID, start, end)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Calendar", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, days); err != nil {
		h.log.Error("failed to write success response", "handler", "Calendar", "operation", "WriteSuccess", "error", err)
	}
}

func (h *AvailabilityHandler) parseRange(w http.ResponseWriter, r *http.Request, handler string) (string, time.Time, time.Time, bool) {
	query := r.URL.Query()
	facilityID := query.Get("facility_id")

	if facilityID == "" {
		if writeErr := httputil.WriteError(w, apperrors.InvalidInput("'facility_id' query parameter is required")); writeErr != nil {
			h.log.Error("failed to write error response", "handler", handler, "operation", "WriteError", "error", writeErr)
		}
		return "", time.Time{}, time.Time{}, false
	}

	start, err := time.Parse(time.RFC3339, query.Get("start_date"))
	if err != nil {
		if writeErr := httputil.WriteError(w, apperrors.InvalidInput("invalid start_date format, must be RFC3339")); writeErr != nil {
			h.log.Error("failed to write error response", "handler", handler, "operation", "WriteError", "error", writeErr)
		}
		return "", time.Time{}, time.Time{}, false
	}

	end, err := time.Parse(time.RFC3339, query.Get("end_date"))
	if err != nil {
		if writeErr := httputil.WriteError(w, apperrors.InvalidInput("invalid end_date format, must be RFC3339")); writeErr != nil {
			h.log.Error("failed to write error response", "handler", handler, "operation", "WriteError", "error", writeErr)
		}
		return "", time.Time{}, time.Time{}, false
	}

	return facilityID, start, end, true
}

func (h *AvailabilityHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/api/v1/availability", h.Check)
	router.GET("/api/v1/availability/calendar", h.Calendar)
}
