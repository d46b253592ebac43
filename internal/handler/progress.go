package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"math/big"
	"net/http"
	"strconv"
	"time"

	"github.com/ashveil/progression-engine/internal/award"
	"github.com/ashveil/progression-engine/internal/domain"
	"github.com/ashveil/progression-engine/internal/logger"
	"github.com/ashveil/progression-engine/internal/repository"
	"github.com/ashveil/progression-engine/internal/summary"
)

// DefaultHistoryLimit caps history page size when the client omits it
const DefaultHistoryLimit = 20

// MaxHistoryLimit is the hard upper bound for one history page
const MaxHistoryLimit = 100

// ProgressHandler serves the progression award and read endpoints
type ProgressHandler struct {
	awards    award.Service
	summaries summary.Service
	ledger    repository.Ledger
}

// NewProgressHandler creates a new ProgressHandler
func NewProgressHandler(awards award.Service, summaries summary.Service, ledger repository.Ledger) *ProgressHandler {
	return &ProgressHandler{
		awards:    awards,
		summaries: summaries,
		ledger:    ledger,
	}
}

// AwardRequest is the request body for granting experience.
// Amount crosses the wire as a decimal string: values exceed 64-bit
// range and must never pass through a float.
type AwardRequest struct {
	EntityID          string                 `json:"entity_id" validate:"required,max=64"`
	TrackName         string                 `json:"track_name" validate:"required,max=64"`
	Amount            string                 `json:"amount" validate:"required"`
	Source            string                 `json:"source" validate:"required,source"`
	SourceDetails     map[string]interface{} `json:"source_details,omitempty"`
	MultiplierPercent int                    `json:"multiplier_percent,omitempty" validate:"omitempty,min=0"`
}

// AwardResponse is the boundary shape of an award outcome
type AwardResponse struct {
	Accepted          bool            `json:"accepted"`
	EntityID          string          `json:"entity_id"`
	TrackName         string          `json:"track_name"`
	LevelBefore       int             `json:"level_before,omitempty"`
	LevelAfter        int             `json:"level_after,omitempty"`
	ExperienceBefore  string          `json:"experience_before,omitempty"`
	ExperienceAfter   string          `json:"experience_after,omitempty"`
	AmountGranted     string          `json:"amount_granted,omitempty"`
	BonusPercent      int             `json:"bonus_percent,omitempty"`
	LeveledUp         bool            `json:"leveled_up"`
	Rewards           []domain.Reward `json:"rewards,omitempty"`
	NewTitle          string          `json:"new_title,omitempty"`
	RejectionReason   string          `json:"rejection_reason,omitempty"`
	RetryAfterSeconds float64         `json:"retry_after_seconds,omitempty"`
}

// HandleAward grants experience to one track
func (h *ProgressHandler) HandleAward(w http.ResponseWriter, r *http.Request) {
	var req AwardRequest
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

	amount, ok := new(big.Int).SetString(req.Amount, 10)
	if !ok || amount.Sign() < 0 {
		respondError(w, http.StatusBadRequest, ErrMsgInvalidAmount)
		return
	}

	result, err := h.awards.Award(r.Context(), award.Request{
		EntityID:          req.EntityID,
		TrackName:         req.TrackName,
		Amount:            amount,
		Source:            domain.Source(req.Source),
		SourceDetails:     req.SourceDetails,
		MultiplierPercent: req.MultiplierPercent,
	})
	if err != nil {
		logger.FromContext(r.Context()).Error("Failed to process award",
			"error", err, "entity_id", req.EntityID, "track", req.TrackName)
		if errors.Is(err, domain.ErrStoreUnavailable) {
			respondError(w, http.StatusServiceUnavailable, ErrMsgUnavailable)
			return
		}
		respondError(w, http.StatusInternalServerError, ErrMsgAwardFailed)
		return
	}

	respondJSON(w, awardStatus(result, w), toAwardResponse(result))
}

// awardStatus maps an award outcome onto an HTTP status and sets the
// Retry-After header for time-bound rejections
func awardStatus(result *domain.AwardResult, w http.ResponseWriter) int {
	if result.Accepted {
		return http.StatusOK
	}
	switch result.RejectionReason {
	case domain.RejectionCooldownActive, domain.RejectionRateLimited:
		if result.RetryAfter > 0 {
			seconds := int(math.Ceil(result.RetryAfter.Seconds()))
			w.Header().Set("Retry-After", strconv.Itoa(seconds))
		}
		return http.StatusTooManyRequests
	default:
		return http.StatusBadRequest
	}
}

func toAwardResponse(result *domain.AwardResult) AwardResponse {
	resp := AwardResponse{
		Accepted:        result.Accepted,
		EntityID:        result.EntityID,
		TrackName:       result.TrackName,
		LevelBefore:     result.LevelBefore,
		LevelAfter:      result.LevelAfter,
		BonusPercent:    result.BonusPercent,
		LeveledUp:       result.LeveledUp,
		Rewards:         result.Rewards,
		NewTitle:        result.NewTitle,
		RejectionReason: string(result.RejectionReason),
	}
	if result.ExperienceBefore != nil {
		resp.ExperienceBefore = result.ExperienceBefore.String()
	}
	if result.ExperienceAfter != nil {
		resp.ExperienceAfter = result.ExperienceAfter.String()
	}
	if result.AmountGranted != nil {
		resp.AmountGranted = result.AmountGranted.String()
	}
	if result.RetryAfter > 0 {
		resp.RetryAfterSeconds = result.RetryAfter.Seconds()
	}
	return resp
}

// SummaryResponse is the boundary shape of a progress summary
type SummaryResponse struct {
	EntityID             string   `json:"entity_id"`
	TrackName            string   `json:"track_name"`
	Level                int      `json:"level"`
	CumulativeExperience string   `json:"cumulative_experience"`
	ExperienceToNext     string   `json:"experience_to_next"`
	BonusPercent         int      `json:"bonus_percent"`
	PhaseTitle           string   `json:"phase_title,omitempty"`
	UnlockedTitles       []string `json:"unlocked_titles,omitempty"`
	AtMaxLevel           bool     `json:"at_max_level"`
}

// HandleGetSummary returns the cached progression summary for one track
func (h *ProgressHandler) HandleGetSummary(w http.ResponseWriter, r *http.Request) {
	ref, ok := trackRefFromQuery(w, r)
	if !ok {
		return
	}

	s, err := h.summaries.GetSummary(r.Context(), ref)
	if err != nil {
		logger.FromContext(r.Context()).Error("Failed to get progress summary",
			"error", err, "entity_id", ref.EntityID, "track", ref.TrackName)
		respondError(w, http.StatusInternalServerError, ErrMsgGetSummaryFailed)
		return
	}

	resp := SummaryResponse{
		EntityID:       s.EntityID,
		TrackName:      s.TrackName,
		Level:          s.Level,
		BonusPercent:   s.BonusPercent,
		PhaseTitle:     s.PhaseTitle,
		UnlockedTitles: s.UnlockedTitles,
		AtMaxLevel:     s.AtMaxLevel,
	}
	if s.CumulativeExperience != nil {
		resp.CumulativeExperience = s.CumulativeExperience.String()
	}
	if s.ExperienceToNext != nil {
		resp.ExperienceToNext = s.ExperienceToNext.String()
	}
	respondJSON(w, http.StatusOK, resp)
}

// HistoryRecord is the boundary shape of one award audit entry
type HistoryRecord struct {
	ID               int64                  `json:"id"`
	Amount           string                 `json:"amount"`
	Source           string                 `json:"source"`
	SourceDetails    map[string]interface{} `json:"source_details,omitempty"`
	LevelBefore      int                    `json:"level_before"`
	LevelAfter       int                    `json:"level_after"`
	ExperienceBefore string                 `json:"experience_before"`
	ExperienceAfter  string                 `json:"experience_after"`
	CreatedAt        time.Time              `json:"created_at"`
}

// HandleGetHistory returns a page of award records, newest first
func (h *ProgressHandler) HandleGetHistory(w http.ResponseWriter, r *http.Request) {
	ref, ok := trackRefFromQuery(w, r)
	if !ok {
		return
	}

	limit := DefaultHistoryLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			respondError(w, http.StatusBadRequest, ErrMsgInvalidLimit)
			return
		}
		limit = parsed
	}
	if limit > MaxHistoryLimit {
		limit = MaxHistoryLimit
	}

	var before time.Time
	if raw := r.URL.Query().Get("before"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			respondError(w, http.StatusBadRequest, ErrMsgInvalidBefore)
			return
		}
		before = parsed
	}

	records, err := h.ledger.ListAwards(r.Context(), ref, limit, before)
	if err != nil {
		logger.FromContext(r.Context()).Error("Failed to get award history",
			"error", err, "entity_id", ref.EntityID, "track", ref.TrackName)
		respondError(w, http.StatusInternalServerError, ErrMsgGetHistoryFailed)
		return
	}

	out := make([]HistoryRecord, 0, len(records))
	for _, rec := range records {
		hr := HistoryRecord{
			ID:            rec.ID,
			Source:        string(rec.Source),
			SourceDetails: rec.SourceDetails,
			LevelBefore:   rec.LevelBefore,
			LevelAfter:    rec.LevelAfter,
			CreatedAt:     rec.CreatedAt,
		}
		if rec.Amount != nil {
			hr.Amount = rec.Amount.String()
		}
		if rec.ExperienceBefore != nil {
			hr.ExperienceBefore = rec.ExperienceBefore.String()
		}
		if rec.ExperienceAfter != nil {
			hr.ExperienceAfter = rec.ExperienceAfter.String()
		}
		out = append(out, hr)
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"entity_id":  ref.EntityID,
		"track_name": ref.TrackName,
		"records":    out,
	})
}

// trackRefFromQuery extracts the entity_id and track query parameters,
// responding with 400 when either is missing
func trackRefFromQuery(w http.ResponseWriter, r *http.Request) (domain.TrackRef, bool) {
	entityID := r.URL.Query().Get("entity_id")
	if entityID == "" {
		respondError(w, http.StatusBadRequest, fmt.Sprintf(ErrMsgMissingQueryParam, "entity_id"))
		return domain.TrackRef{}, false
	}
	trackName := r.URL.Query().Get("track")
	if trackName == "" {
		trackName = domain.TrackCharacter
	}
	return domain.TrackRef{EntityID: entityID, TrackName: trackName}, true
}
