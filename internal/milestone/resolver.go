package milestone

import (
	"github.com/ashveil/progression-engine/internal/domain"
)

// Resolution is a pure description of everything a level change earns.
// Persisting it is the caller's job: the ledger commits NewlyUnlocked and
// NewTitle in the same transaction as the experience change so a reward
// can never outlive a rolled-back award.
type Resolution struct {
	Rewards       []domain.Reward
	NewlyUnlocked []string
	StatPoints    int64
	PhaseChanged  bool
	NewPhase      string
	NewTitle      string
	BonusPercent  int
}

// Resolver decides which one-time rewards and which phase apply to a
// level transition. Pure: no I/O, safe inside a ledger transaction.
type Resolver struct {
	defs *Definitions
}

// NewResolver creates a resolver over static reward definitions
func NewResolver(defs *Definitions) *Resolver {
	return &Resolver{defs: defs}
}

// BonusPercentForLevel exposes the phase bonus covering a level
func (r *Resolver) BonusPercentForLevel(level int) int {
	return r.defs.BonusPercentForLevel(level)
}

// Resolve walks every level crossed in (levelBefore, levelAfter], in
// ascending order, accumulating stat points and any milestone not already
// in unlocked. Replaying an overlapping range never double-grants: a
// milestone present in unlocked is skipped, and each resolution lists the
// ids it newly unlocked so the caller can persist them atomically.
func (r *Resolver) Resolve(levelBefore, levelAfter int, unlocked map[string]bool) Resolution {
	res := Resolution{
		BonusPercent: r.defs.BonusPercentForLevel(levelAfter),
	}

	for level := levelBefore + 1; level <= levelAfter; level++ {
		res.StatPoints += r.defs.StatPointsPerLevel

		for _, m := range r.defs.MilestonesAtLevel(level) {
			if unlocked[m.ID] {
				continue
			}
			res.NewlyUnlocked = append(res.NewlyUnlocked, m.ID)
			for _, reward := range m.Rewards {
				reward.MilestoneID = m.ID
				res.Rewards = append(res.Rewards, reward)
			}
		}
	}

	if res.StatPoints > 0 {
		res.Rewards = append([]domain.Reward{{
			Type:   domain.RewardStatPoints,
			Amount: res.StatPoints,
		}}, res.Rewards...)
	}

	before := r.defs.PhaseForLevel(levelBefore)
	after := r.defs.PhaseForLevel(levelAfter)
	if after != nil && (before == nil || before.Name != after.Name) {
		res.PhaseChanged = true
		res.NewPhase = after.Name
		res.NewTitle = after.Title
	}

	return res
}
