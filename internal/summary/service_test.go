package summary

import (
	"context"
	"math/big"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ashveil/progression-engine/internal/curve"
	"github.com/ashveil/progression-engine/internal/domain"
	"github.com/ashveil/progression-engine/internal/milestone"
	"github.com/ashveil/progression-engine/internal/repository"
)

type mockLedger struct {
	mock.Mock
}

func (m *mockLedger) ApplyAward(ctx context.Context, req repository.ApplyAwardRequest) (*repository.AppliedAward, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.AppliedAward), args.Error(1)
}

func (m *mockLedger) GetTrack(ctx context.Context, ref domain.TrackRef) (*domain.ProgressTrack, error) {
	args := m.Called(ctx, ref)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ProgressTrack), args.Error(1)
}

func (m *mockLedger) ListAwards(ctx context.Context, ref domain.TrackRef, limit int, before time.Time) ([]domain.AwardRecord, error) {
	args := m.Called(ctx, ref, limit, before)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.AwardRecord), args.Error(1)
}

func (m *mockLedger) GetUnlockedTitles(ctx context.Context, ref domain.TrackRef) ([]string, error) {
	args := m.Called(ctx, ref)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func testDefs(t *testing.T) *milestone.Definitions {
	t.Helper()
	defs, err := milestone.NewDefinitions("test-1", 5,
		[]domain.PhaseDefinition{
			{Name: "novice", Title: "Novice", MinLevel: 1, MaxLevel: 9, BonusPercent: 0},
			{Name: "adept", Title: "Adept", MinLevel: 10, MaxLevel: 9999, BonusPercent: 10},
		},
		nil,
	)
	require.NoError(t, err)
	return defs
}

func trackWith(ref domain.TrackRef, exp int64) *domain.ProgressTrack {
	return &domain.ProgressTrack{
		EntityID:             ref.EntityID,
		TrackName:            ref.TrackName,
		CumulativeExperience: big.NewInt(exp),
	}
}

func TestGetSummary_CacheMissThenHit(t *testing.T) {
	ctx := context.Background()
	ref := domain.TrackRef{EntityID: "e1", TrackName: domain.TrackCharacter}

	ledger := new(mockLedger)
	ledger.On("GetTrack", ctx, ref).Return(trackWith(ref, 150), nil).Once()
	ledger.On("GetUnlockedTitles", ctx, ref).Return([]string{"Initiate"}, nil).Once()

	svc := NewService(ledger, curve.NewDefaultCatalog(), testDefs(t), 16, time.Minute)

	first, err := svc.GetSummary(ctx, ref)
	require.NoError(t, err)
	assert.Equal(t, 2, first.Level)
	assert.Equal(t, "150", first.CumulativeExperience.String())
	assert.Equal(t, []string{"Initiate"}, first.UnlockedTitles)
	assert.Equal(t, "Novice", first.PhaseTitle)

	// Second read is served from cache; the ledger is not consulted again
	second, err := svc.GetSummary(ctx, ref)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	ledger.AssertExpectations(t)
}

func TestGetSummary_UnknownTrackReadsAsLevelOne(t *testing.T) {
	ctx := context.Background()
	ref := domain.TrackRef{EntityID: "e1", TrackName: domain.TrackCharacter}

	ledger := new(mockLedger)
	ledger.On("GetTrack", ctx, ref).Return(nil, domain.ErrTrackNotFound).Once()
	ledger.On("GetUnlockedTitles", ctx, ref).Return([]string(nil), nil).Once()

	svc := NewService(ledger, curve.NewDefaultCatalog(), testDefs(t), 16, time.Minute)

	got, err := svc.GetSummary(ctx, ref)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Level)
	assert.Equal(t, "0", got.CumulativeExperience.String())
	assert.False(t, got.AtMaxLevel)
	ledger.AssertExpectations(t)
}

func TestInvalidate_IsNarrow(t *testing.T) {
	ctx := context.Background()
	sword := domain.TrackRef{EntityID: "e1", TrackName: "sword"}
	bow := domain.TrackRef{EntityID: "e1", TrackName: "bow"}

	ledger := new(mockLedger)
	// sword is rebuilt twice (initial load + after invalidation),
	// bow exactly once
	ledger.On("GetTrack", ctx, sword).Return(trackWith(sword, 100), nil).Twice()
	ledger.On("GetUnlockedTitles", ctx, sword).Return([]string(nil), nil).Twice()
	ledger.On("GetTrack", ctx, bow).Return(trackWith(bow, 200), nil).Once()
	ledger.On("GetUnlockedTitles", ctx, bow).Return([]string(nil), nil).Once()

	svc := NewService(ledger, curve.NewDefaultCatalog(), testDefs(t), 16, time.Minute)

	_, err := svc.GetSummary(ctx, sword)
	require.NoError(t, err)
	_, err = svc.GetSummary(ctx, bow)
	require.NoError(t, err)

	svc.Invalidate(sword)

	_, err = svc.GetSummary(ctx, sword)
	require.NoError(t, err)
	_, err = svc.GetSummary(ctx, bow)
	require.NoError(t, err)

	ledger.AssertExpectations(t)
}

func TestGetSummary_TierTrackBonusAndMax(t *testing.T) {
	ctx := context.Background()
	ref := domain.TrackRef{EntityID: "e1", TrackName: "sword_affinity"}

	// Cumulative for tier 7 (the max) on the default tier curve
	maxExp := curve.NewDefaultCatalog().ForTrack(ref.TrackName).TotalExperienceForLevel(7)

	ledger := new(mockLedger)
	ledger.On("GetTrack", ctx, ref).Return(&domain.ProgressTrack{
		EntityID:             ref.EntityID,
		TrackName:            ref.TrackName,
		CumulativeExperience: maxExp,
	}, nil).Once()
	ledger.On("GetUnlockedTitles", ctx, ref).Return([]string(nil), nil).Once()

	svc := NewService(ledger, curve.NewDefaultCatalog(), testDefs(t), 16, time.Minute)

	got, err := svc.GetSummary(ctx, ref)
	require.NoError(t, err)
	assert.Equal(t, 7, got.Level)
	assert.True(t, got.AtMaxLevel)
	assert.Equal(t, "0", got.ExperienceToNext.String())
}
