package domain

import (
	"math/big"
	"time"
)

// TrackCharacter is the reserved track name for overall character level.
// All other track names are affinity tracks (weapon/magic skills).
const TrackCharacter = "character"

// Source identifies where an experience award originated
type Source string

const (
	SourceCombat Source = "combat"
	SourceQuest  Source = "quest"
	SourceItem   Source = "item"
	SourceAdmin  Source = "admin"
	SourceSystem Source = "system"
)

// KnownSource reports whether s is one of the recognized award sources
func KnownSource(s Source) bool {
	switch s {
	case SourceCombat, SourceQuest, SourceItem, SourceAdmin, SourceSystem:
		return true
	}
	return false
}

// TrackRef identifies a progression track: one entity plus one track name
type TrackRef struct {
	EntityID  string
	TrackName string
}

// Key returns the canonical cache/lock key for this track
func (t TrackRef) Key() string {
	return t.EntityID + ":" + t.TrackName
}

// ProgressTrack is the durable progression state for one entity+track.
// CumulativeExperience is append-only and CurrentLevel is always derived
// from it, never incremented directly.
type ProgressTrack struct {
	EntityID             string     `json:"entity_id"`
	TrackName            string     `json:"track_name"`
	CumulativeExperience *big.Int   `json:"cumulative_experience"`
	CurrentLevel         int        `json:"current_level"`
	LastAwardAt          *time.Time `json:"last_award_at,omitempty"`
	CreatedAt            time.Time  `json:"created_at"`
	UpdatedAt            time.Time  `json:"updated_at"`
}

// AwardRecord is an immutable audit entry for one accepted award
type AwardRecord struct {
	ID               int64                  `json:"id"`
	EntityID         string                 `json:"entity_id"`
	TrackName        string                 `json:"track_name"`
	Amount           *big.Int               `json:"amount"`
	Source           Source                 `json:"source"`
	SourceDetails    map[string]interface{} `json:"source_details,omitempty"`
	LevelBefore      int                    `json:"level_before"`
	LevelAfter       int                    `json:"level_after"`
	ExperienceBefore *big.Int               `json:"experience_before"`
	ExperienceAfter  *big.Int               `json:"experience_after"`
	CreatedAt        time.Time              `json:"created_at"`
}

// RewardType enumerates one-time milestone reward kinds
type RewardType string

const (
	RewardStatPoints RewardType = "stat_points"
	RewardCurrency   RewardType = "currency"
	RewardTitle      RewardType = "title"
	RewardItem       RewardType = "item"
)

// Reward is a single reward surfaced by a successful award
type Reward struct {
	Type        RewardType `json:"type"`
	Amount      int64      `json:"amount,omitempty"`
	Title       string     `json:"title,omitempty"`
	ItemKey     string     `json:"item_key,omitempty"`
	MilestoneID string     `json:"milestone_id,omitempty"`
}

// RejectionReason is a machine-readable, stable reason for a refused award
type RejectionReason string

const (
	RejectionAmountTooLarge RejectionReason = "amount_too_large"
	RejectionCooldownActive RejectionReason = "cooldown_active"
	RejectionRateLimited    RejectionReason = "rate_limited"
	RejectionInvalidAmount  RejectionReason = "invalid_amount"
	RejectionUnknownSource  RejectionReason = "unknown_source"
	RejectionInvalidTrack   RejectionReason = "invalid_track"
)

// AwardResult is the outcome of a single award attempt.
// Exactly one of the two shapes is populated: accepted results carry
// before/after state and rewards, rejections carry a reason and an
// optional retry hint. Big integers cross the API boundary as decimal
// strings, never as floats.
type AwardResult struct {
	Accepted         bool            `json:"accepted"`
	EntityID         string          `json:"entity_id"`
	TrackName        string          `json:"track_name"`
	LevelBefore      int             `json:"level_before,omitempty"`
	LevelAfter       int             `json:"level_after,omitempty"`
	ExperienceBefore *big.Int        `json:"-"`
	ExperienceAfter  *big.Int        `json:"-"`
	AmountGranted    *big.Int        `json:"-"`
	BonusPercent     int             `json:"bonus_percent,omitempty"`
	LeveledUp        bool            `json:"leveled_up"`
	Rewards          []Reward        `json:"rewards,omitempty"`
	NewTitle         string          `json:"new_title,omitempty"`
	RejectionReason  RejectionReason `json:"rejection_reason,omitempty"`
	RetryAfter       time.Duration   `json:"-"`
}

// ProgressSummary is the read-model served from the cache projection
type ProgressSummary struct {
	EntityID             string   `json:"entity_id"`
	TrackName            string   `json:"track_name"`
	Level                int      `json:"level"`
	CumulativeExperience *big.Int `json:"-"`
	ExperienceToNext     *big.Int `json:"-"`
	BonusPercent         int      `json:"bonus_percent"`
	PhaseTitle           string   `json:"phase_title,omitempty"`
	UnlockedTitles       []string `json:"unlocked_titles,omitempty"`
	AtMaxLevel           bool     `json:"at_max_level"`
}
