package handler

import (
	"encoding/json"
	"net/http"

	"github.com/ashveil/progression-engine/internal/award"
	"github.com/ashveil/progression-engine/internal/domain"
	"github.com/ashveil/progression-engine/internal/logger"
)

// AdminHandler serves operator-only endpoints
type AdminHandler struct {
	awards award.Service
}

// NewAdminHandler creates a new AdminHandler
func NewAdminHandler(awards award.Service) *AdminHandler {
	return &AdminHandler{awards: awards}
}

// ResetRateLimitRequest is the request body for clearing admission state
type ResetRateLimitRequest struct {
	EntityID  string `json:"entity_id" validate:"required,max=64"`
	TrackName string `json:"track_name" validate:"required,max=64"`
}

// HandleResetRateLimit clears cooldown and sliding-window state for one
// track so an operator can unblock a player after a false positive
func (h *AdminHandler) HandleResetRateLimit(w http.ResponseWriter, r *http.Request) {
	var req ResetRateLimitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, ErrMsgInvalidRequest)
		return
	}

	if err := GetValidator().ValidateStruct(req); err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]interface{}{
			"errors": FormatValidationError(err),
		})
		return
	}

	ref := domain.TrackRef{EntityID: req.EntityID, TrackName: req.TrackName}
	if err := h.awards.ResetRateLimit(r.Context(), ref); err != nil {
		logger.FromContext(r.Context()).Error("Failed to reset rate limit",
			"error", err, "entity_id", ref.EntityID, "track", ref.TrackName)
		respondError(w, http.StatusInternalServerError, ErrMsgResetFailed)
		return
	}

	respondJSON(w, http.StatusOK, SuccessResponse{Message: "rate limit reset"})
}
