package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"inspect-backend/application/inspections"
	apperrors "inspect-backend/pkg/errors"
)

// InspectionHandler handles inspection-related HTTP requests
type InspectionHandler struct {
	service *inspections.Service
	logger  *zap.Logger
}

// NewInspectionHandler creates a new inspection handler
func NewInspectionHandler(service *inspections.Service, logger *zap.Logger) *InspectionHandler {
	return &InspectionHandler{
		service: service,
		logger:  logger,
	}
}

// venueRef is the nested venue object some clients send instead of flat
// venueId/venueName fields
type venueRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// saveItemRequest accepts the field aliases in circulation for one
// checklist item. itemId/id and comments/notes are folded before the
// payload reaches the service.
type saveItemRequest struct {
	ItemID   string `json:"itemId"`
	ID       string `json:"id"`
	ItemName string `json:"itemName"`
	Name     string `json:"name"`
	Status   string `json:"status"`
	Comments string `json:"comments"`
	Notes    string `json:"notes"`
}

func (r saveItemRequest) canonical() inspections.SaveItemInput {
	itemID := r.ItemID
	if itemID == "" {
		itemID = r.ID
	}

	itemName := r.ItemName
	if itemName == "" {
		itemName = r.Name
	}

	comments := r.Comments
	if comments == "" {
		comments = r.Notes
	}

	return inspections.SaveItemInput{
		ItemID:   itemID,
		ItemName: itemName,
		Status:   r.Status,
		Comments: comments,
	}
}

// saveInspectionRequest represents the save payload. Clients disagree on
// field names, so every known alias is accepted here and folded into one
// canonical shape; the service never sees aliases.
type saveInspectionRequest struct {
	InspectionID   string            `json:"inspection_id"`
	ID             string            `json:"id"`
	RoomID         string            `json:"roomId"`
	RoomIDSnake    string            `json:"room_id"`
	RoomName       string            `json:"roomName"`
	VenueID        *string           `json:"venueId"`
	VenueIDSnake   *string           `json:"venue_id"`
	VenueName      *string           `json:"venueName"`
	VenueNameSnake *string           `json:"venue_name"`
	Venue          *venueRef         `json:"venue"`
	Status         *string           `json:"status"`
	CreatedBy      string            `json:"createdBy"`
	UpdatedBy      string            `json:"updatedBy"`
	Items          []saveItemRequest `json:"items"`
}

func (r saveInspectionRequest) canonical() inspections.SaveInput {
	in := inspections.SaveInput{
		InspectionID: r.InspectionID,
		RoomID:       r.RoomID,
		RoomName:     r.RoomName,
		VenueID:      r.VenueID,
		VenueName:    r.VenueName,
		Status:       r.Status,
		CreatedBy:    r.CreatedBy,
		UpdatedBy:    r.UpdatedBy,
	}

	if in.InspectionID == "" {
		in.InspectionID = r.ID
	}

	if in.RoomID == "" {
		in.RoomID = r.RoomIDSnake
	}

	if in.VenueID == nil {
		in.VenueID = r.VenueIDSnake
	}

	if in.VenueName == nil {
		in.VenueName = r.VenueNameSnake
	}

	if r.Venue != nil {
		if in.VenueID == nil && r.Venue.ID != "" {
			in.VenueID = &r.Venue.ID
		}
		if in.VenueName == nil && r.Venue.Name != "" {
			in.VenueName = &r.Venue.Name
		}
	}

	for _, item := range r.Items {
		in.Items = append(in.Items, item.canonical())
	}

	return in
}

// createInspectionRequest represents the request body for creating an
// inspection shell
type createInspectionRequest struct {
	InspectionID   string    `json:"inspection_id"`
	ID             string    `json:"id"`
	VenueID        *string   `json:"venueId"`
	VenueIDSnake   *string   `json:"venue_id"`
	VenueName      *string   `json:"venueName"`
	VenueNameSnake *string   `json:"venue_name"`
	Venue          *venueRef `json:"venue"`
	CreatedBy      string    `json:"createdBy"`
}

// SaveInspection handles POST /inspections/save
func (h *InspectionHandler) SaveInspection(w http.ResponseWriter, r *http.Request) {
	var req saveInspectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	result, err := h.service.SaveInspection(r.Context(), req.canonical())
	if err != nil {
		h.respondAppError(w, err, "Failed to save inspection")
		return
	}

	h.respondJSON(w, http.StatusOK, result)
}

// CreateInspection handles POST /inspections
func (h *InspectionHandler) CreateInspection(w http.ResponseWriter, r *http.Request) {
	var req createInspectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	in := inspections.CreateInput{
		InspectionID: req.InspectionID,
		VenueID:      req.VenueID,
		VenueName:    req.VenueName,
		CreatedBy:    req.CreatedBy,
	}

	if in.InspectionID == "" {
		in.InspectionID = req.ID
	}

	if in.VenueID == nil {
		in.VenueID = req.VenueIDSnake
	}

	if in.VenueName == nil {
		in.VenueName = req.VenueNameSnake
	}

	if req.Venue != nil {
		if in.VenueID == nil && req.Venue.ID != "" {
			in.VenueID = &req.Venue.ID
		}
		if in.VenueName == nil && req.Venue.Name != "" {
			in.VenueName = &req.Venue.Name
		}
	}

	meta, err := h.service.CreateInspection(r.Context(), in)
	if err != nil {
		h.respondAppError(w, err, "Failed to create inspection")
		return
	}

	h.respondJSON(w, http.StatusCreated, meta)
}

// ListInspections handles GET /inspections
func (h *InspectionHandler) ListInspections(w http.ResponseWriter, r *http.Request) {
	var completedLimit *int

	if raw := r.URL.Query().Get("completed_limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			h.respondError(w, http.StatusBadRequest, "completed_limit must be an integer")
			return
		}
		completedLimit = &limit
	}

	lists, err := h.service.ListInspections(r.Context(), completedLimit)
	if err != nil {
		h.respondAppError(w, err, "Failed to list inspections")
		return
	}

	h.respondJSON(w, http.StatusOK, lists)
}

// GetItems handles GET /inspections/{inspectionID}/items
func (h *InspectionHandler) GetItems(w http.ResponseWriter, r *http.Request) {
	inspectionID := chi.URLParam(r, "inspectionID")
	roomID := r.URL.Query().Get("room_id")
	if roomID == "" {
		roomID = r.URL.Query().Get("roomId")
	}

	items, err := h.service.GetItems(r.Context(), inspectionID, roomID)
	if err != nil {
		h.respondAppError(w, err, "Failed to get inspection items")
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"inspection_id": inspectionID,
		"items":         items,
		"count":         len(items),
	})
}

// GetSummary handles GET /inspections/{inspectionID}/summary
func (h *InspectionHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	inspectionID := chi.URLParam(r, "inspectionID")

	summary, err := h.service.GetSummary(r.Context(), inspectionID)
	if err != nil {
		h.respondAppError(w, err, "Failed to compute summary")
		return
	}

	h.respondJSON(w, http.StatusOK, summary)
}

// CheckComplete handles GET /inspections/{inspectionID}/complete
func (h *InspectionHandler) CheckComplete(w http.ResponseWriter, r *http.Request) {
	inspectionID := chi.URLParam(r, "inspectionID")

	venueID := r.URL.Query().Get("venue_id")
	if venueID == "" {
		venueID = r.URL.Query().Get("venueId")
	}

	result, err := h.service.CheckComplete(r.Context(), inspectionID, venueID)
	if err != nil {
		h.respondAppError(w, err, "Failed to check completeness")
		return
	}

	h.respondJSON(w, http.StatusOK, result)
}

// ReopenInspection handles POST /inspections/{inspectionID}/reopen
func (h *InspectionHandler) ReopenInspection(w http.ResponseWriter, r *http.Request) {
	inspectionID := chi.URLParam(r, "inspectionID")

	var req struct {
		UpdatedBy string `json:"updatedBy"`
	}
	// Body is optional; reopen without an author is allowed.
	_ = json.NewDecoder(r.Body).Decode(&req)

	meta, err := h.service.ReopenInspection(r.Context(), inspectionID, req.UpdatedBy)
	if err != nil {
		h.respondAppError(w, err, "Failed to reopen inspection")
		return
	}

	h.respondJSON(w, http.StatusOK, meta)
}

// DeleteInspection handles DELETE /inspections/{inspectionID}
func (h *InspectionHandler) DeleteInspection(w http.ResponseWriter, r *http.Request) {
	inspectionID := chi.URLParam(r, "inspectionID")

	deleted, err := h.service.DeleteInspection(r.Context(), inspectionID)
	if err != nil {
		h.respondAppError(w, err, "Failed to delete inspection")
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"inspection_id": inspectionID,
		"items_deleted": deleted,
	})
}

// Helper methods

func (h *InspectionHandler) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("Failed to encode response", zap.Error(err))
	}
}

func (h *InspectionHandler) respondError(w http.ResponseWriter, status int, message string) {
	h.respondJSON(w, status, map[string]interface{}{
		"error":   true,
		"message": message,
		"code":    status,
	})
}

// respondAppError maps service errors onto HTTP statuses. Typed errors
// carry their own status and a client-safe message; anything untyped is a
// 500 with the fallback message so internals never leak.
func (h *InspectionHandler) respondAppError(w http.ResponseWriter, err error, fallback string) {
	if appErr := apperrors.GetAppError(err); appErr != nil {
		if appErr.HTTPStatus >= http.StatusInternalServerError {
			h.logger.Error(fallback, zap.Error(err))
			h.respondError(w, appErr.HTTPStatus, fallback)
			return
		}

		h.respondJSON(w, appErr.HTTPStatus, map[string]interface{}{
			"error":   true,
			"message": appErr.Message,
			"code":    appErr.HTTPStatus,
			"details": appErr.Details,
		})
		return
	}

	h.logger.Error(fallback, zap.Error(err))
	h.respondError(w, http.StatusInternalServerError, fallback)
}
