package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"inspect-backend/application/inspections"
	"inspect-backend/domain/inspection"
	apperrors "inspect-backend/pkg/errors"
	"inspect-backend/pkg/utils"
)

// VenueHandler handles venue definition HTTP requests
type VenueHandler struct {
	service *inspections.VenueService
	logger  *zap.Logger
}

// NewVenueHandler creates a new venue handler
func NewVenueHandler(service *inspections.VenueService, logger *zap.Logger) *VenueHandler {
	return &VenueHandler{
		service: service,
		logger:  logger,
	}
}

// putVenueRequest represents the request body for storing a venue
// definition
type putVenueRequest struct {
	VenueID   string            `json:"venueId" validate:"required,min=1,max=128"`
	VenueName string            `json:"venueName,omitempty" validate:"omitempty,max=256"`
	Rooms     []inspection.Room `json:"rooms"`
}

// PutVenue handles POST /venues
func (h *VenueHandler) PutVenue(w http.ResponseWriter, r *http.Request) {
	var req putVenueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	if err := utils.ValidateStruct(req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	venue, err := h.service.PutVenue(r.Context(), &inspection.Venue{
		VenueID:   req.VenueID,
		VenueName: req.VenueName,
		Rooms:     req.Rooms,
	})
	if err != nil {
		h.respondAppError(w, err, "Failed to store venue")
		return
	}

	h.respondJSON(w, http.StatusCreated, venue)
}

// GetVenue handles GET /venues/{venueID}
func (h *VenueHandler) GetVenue(w http.ResponseWriter, r *http.Request) {
	venueID := chi.URLParam(r, "venueID")

	venue, err := h.service.GetVenue(r.Context(), venueID)
	if err != nil {
		h.respondAppError(w, err, "Failed to get venue")
		return
	}

	h.respondJSON(w, http.StatusOK, venue)
}

// ListVenues handles GET /venues
func (h *VenueHandler) ListVenues(w http.ResponseWriter, r *http.Request) {
	venues, err := h.service.ListVenues(r.Context())
	if err != nil {
		h.respondAppError(w, err, "Failed to list venues")
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"venues": venues,
		"count":  len(venues),
	})
}

func (h *VenueHandler) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("Failed to encode response", zap.Error(err))
	}
}

func (h *VenueHandler) respondError(w http.ResponseWriter, status int, message string) {
	h.respondJSON(w, status, map[string]interface{}{
		"error":   true,
		"message": message,
		"code":    status,
	})
}

func (h *VenueHandler) respondAppError(w http.ResponseWriter, err error, fallback string) {
	if appErr := apperrors.GetAppError(err); appErr != nil {
		if appErr.HTTPStatus >= http.StatusInternalServerError {
			h.logger.Error(fallback, zap.Error(err))
			h.respondError(w, appErr.HTTPStatus, fallback)
			return
		}

		h.respondError(w, appErr.HTTPStatus, appErr.Message)
		return
	}

	h.logger.Error(fallback, zap.Error(err))
	h.respondError(w, http.StatusInternalServerError, fallback)
}
