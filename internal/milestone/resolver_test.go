package milestone

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ashveil/progression-engine/internal/domain"
)

func testDefinitions(t *testing.T) *Definitions {
	t.Helper()
	defs, err := NewDefinitions("test-1", 5,
		[]domain.PhaseDefinition{
			{Name: "novice", Title: "Novice", MinLevel: 1, MaxLevel: 9, BonusPercent: 0},
			{Name: "adept", Title: "Adept", MinLevel: 10, MaxLevel: 49, BonusPercent: 10},
			{Name: "master", Title: "Master", MinLevel: 50, MaxLevel: 9999, BonusPercent: 25},
		},
		[]domain.MilestoneDefinition{
			{ID: "level-10-title", Level: 10, Rewards: []domain.Reward{
				{Type: domain.RewardTitle, Title: "Initiate"},
			}},
			{ID: "level-25-gold", Level: 25, Rewards: []domain.Reward{
				{Type: domain.RewardCurrency, Amount: 500},
			}},
			{ID: "level-50-blade", Level: 50, Rewards: []domain.Reward{
				{Type: domain.RewardItem, ItemKey: "ancient_blade"},
				{Type: domain.RewardCurrency, Amount: 2000},
			}},
		},
	)
	require.NoError(t, err)
	return defs
}

func TestResolve_NoLevelChange(t *testing.T) {
	r := NewResolver(testDefinitions(t))

	res := r.Resolve(5, 5, nil)

	assert.Empty(t, res.Rewards)
	assert.Empty(t, res.NewlyUnlocked)
	assert.False(t, res.PhaseChanged)
	assert.Zero(t, res.StatPoints)
	assert.Equal(t, 0, res.BonusPercent)
}

func TestResolve_SingleLevelWithMilestone(t *testing.T) {
	r := NewResolver(testDefinitions(t))

	res := r.Resolve(9, 10, map[string]bool{})

	assert.Equal(t, int64(5), res.StatPoints)
	assert.Equal(t, []string{"level-10-title"}, res.NewlyUnlocked)
	require.Len(t, res.Rewards, 2)
	assert.Equal(t, domain.RewardStatPoints, res.Rewards[0].Type)
	assert.Equal(t, int64(5), res.Rewards[0].Amount)
	assert.Equal(t, domain.RewardTitle, res.Rewards[1].Type)
	assert.Equal(t, "level-10-title", res.Rewards[1].MilestoneID)
}

func TestResolve_MultiLevelJumpCollectsEverything(t *testing.T) {
	r := NewResolver(testDefinitions(t))

	// 1 -> 50 crosses 49 levels and three milestones
	res := r.Resolve(1, 50, map[string]bool{})

	assert.Equal(t, int64(49*5), res.StatPoints)
	assert.Equal(t, []string{"level-10-title", "level-25-gold", "level-50-blade"}, res.NewlyUnlocked)
	// stat points + 1 title + 1 currency + 2 level-50 rewards
	assert.Len(t, res.Rewards, 5)
	assert.True(t, res.PhaseChanged)
	assert.Equal(t, "master", res.NewPhase)
	assert.Equal(t, "Master", res.NewTitle)
	assert.Equal(t, 25, res.BonusPercent)
}

func TestResolve_AlreadyUnlockedIsIdempotent(t *testing.T) {
	r := NewResolver(testDefinitions(t))

	unlocked := map[string]bool{"level-10-title": true, "level-25-gold": true}
	res := r.Resolve(1, 30, unlocked)

	assert.Empty(t, res.NewlyUnlocked)
	// Only the per-level stat points remain
	require.Len(t, res.Rewards, 1)
	assert.Equal(t, domain.RewardStatPoints, res.Rewards[0].Type)
}

func TestResolve_ReprocessingOverlappingRange(t *testing.T) {
	r := NewResolver(testDefinitions(t))

	first := r.Resolve(1, 30, map[string]bool{})
	unlocked := map[string]bool{}
	for _, id := range first.NewlyUnlocked {
		unlocked[id] = true
	}

	// Replaying a range that covers the same milestones grants nothing new
	second := r.Resolve(5, 30, unlocked)
	assert.Empty(t, second.NewlyUnlocked)
}

func TestResolve_ExclusiveOfBefore(t *testing.T) {
	r := NewResolver(testDefinitions(t))

	// Already at 10: the level-10 milestone belongs to a past transition
	res := r.Resolve(10, 12, map[string]bool{})

	assert.Empty(t, res.NewlyUnlocked)
	assert.Equal(t, int64(10), res.StatPoints)
}

func TestResolve_PhaseChangeWithoutMilestone(t *testing.T) {
	r := NewResolver(testDefinitions(t))

	res := r.Resolve(48, 51, map[string]bool{"level-50-blade": true})

	assert.True(t, res.PhaseChanged)
	assert.Equal(t, "Master", res.NewTitle)
	assert.Empty(t, res.NewlyUnlocked)
}

func TestResolve_SamePhaseNoSignal(t *testing.T) {
	r := NewResolver(testDefinitions(t))

	res := r.Resolve(11, 12, nil)

	assert.False(t, res.PhaseChanged)
	assert.Empty(t, res.NewTitle)
	assert.Equal(t, 10, res.BonusPercent)
}

func TestNewDefinitions_RejectsOverlappingPhases(t *testing.T) {
	_, err := NewDefinitions("v", 0,
		[]domain.PhaseDefinition{
			{Name: "a", MinLevel: 1, MaxLevel: 10},
			{Name: "b", MinLevel: 10, MaxLevel: 20},
		}, nil)

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrBadPhaseConfig)
}

func TestNewDefinitions_RejectsDuplicateMilestones(t *testing.T) {
	_, err := NewDefinitions("v", 0, nil,
		[]domain.MilestoneDefinition{
			{ID: "dup", Level: 5},
			{ID: "dup", Level: 9},
		})

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrBadMilestoneConfig)
}

func TestBonusPercentForLevel_OutsideBrackets(t *testing.T) {
	defs, err := NewDefinitions("v", 0,
		[]domain.PhaseDefinition{{Name: "mid", MinLevel: 10, MaxLevel: 20, BonusPercent: 15}}, nil)
	require.NoError(t, err)

	assert.Equal(t, 0, defs.BonusPercentForLevel(5))
	assert.Equal(t, 15, defs.BonusPercentForLevel(12))
	assert.Equal(t, 0, defs.BonusPercentForLevel(21))
}
