package repository

import (
	"context"
	"math/big"
	"time"

	"github.com/ashveil/progression-engine/internal/domain"
	"github.com/ashveil/progression-engine/internal/milestone"
)

// ApplyAwardRequest carries one validated, admitted award into the ledger
type ApplyAwardRequest struct {
	Ref           domain.TrackRef
	Amount        *big.Int
	Source        domain.Source
	SourceDetails map[string]interface{}
}

// AppliedAward is the outcome of a committed award: the post-commit track
// state, the audit record, and the milestone resolution for the transition
type AppliedAward struct {
	Track      *domain.ProgressTrack
	Record     *domain.AwardRecord
	Resolution milestone.Resolution
	// BonusPercent is the phase bonus that was in effect when the award
	// was applied; Record.Amount is already scaled by it
	BonusPercent int
}

// Ledger defines the data access interface for progression state.
// ApplyAward is the only mutation path for cumulative experience.
type Ledger interface {
	// ApplyAward atomically adds experience to a track, recomputes the
	// level, resolves milestones and phase rewards, and records the audit
	// entry, all in one transaction. Creates the track at level 1 with
	// zero experience if it does not exist yet.
	ApplyAward(ctx context.Context, req ApplyAwardRequest) (*AppliedAward, error)

	// GetTrack returns the current state of a track.
	// Returns domain.ErrTrackNotFound if no award was ever applied to it.
	GetTrack(ctx context.Context, ref domain.TrackRef) (*domain.ProgressTrack, error)

	// ListAwards returns award records for a track, newest first.
	// A zero before time means no upper bound.
	ListAwards(ctx context.Context, ref domain.TrackRef, limit int, before time.Time) ([]domain.AwardRecord, error)

	// GetUnlockedTitles returns the titles earned on a track, oldest first
	GetUnlockedTitles(ctx context.Context, ref domain.TrackRef) ([]string, error)
}
