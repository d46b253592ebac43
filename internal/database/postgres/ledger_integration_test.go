package postgres

import (
	"context"
	"math/big"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/ashveil/progression-engine/internal/curve"
	"github.com/ashveil/progression-engine/internal/database"
	"github.com/ashveil/progression-engine/internal/domain"
	"github.com/ashveil/progression-engine/internal/milestone"
	"github.com/ashveil/progression-engine/internal/repository"
)

func testResolver(t *testing.T) *milestone.Resolver {
	t.Helper()
	defs, err := milestone.NewDefinitions("test-1", 5,
		[]domain.PhaseDefinition{
			{Name: "novice", Title: "Novice", MinLevel: 1, MaxLevel: 9, BonusPercent: 0},
			{Name: "adept", Title: "Adept", MinLevel: 10, MaxLevel: 9999, BonusPercent: 10},
		},
		[]domain.MilestoneDefinition{
			{ID: "level-2-gold", Level: 2, Rewards: []domain.Reward{
				{Type: domain.RewardCurrency, Amount: 100},
			}},
			{ID: "level-3-title", Level: 3, Rewards: []domain.Reward{
				{Type: domain.RewardTitle, Title: "Initiate"},
			}},
		},
	)
	require.NoError(t, err)
	return milestone.NewResolver(defs)
}

func TestLedgerRepository_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ctx := context.Background()

	var pgContainer *postgres.PostgresContainer
	var err error

	func() {
		defer func() {
			if r := recover(); r != nil {
				t.Skipf("Skipping integration test due to panic (likely Docker issue): %v", r)
			}
		}()
		pgContainer, err = postgres.Run(ctx,
			"postgres:15-alpine",
			postgres.WithDatabase("testdb"),
			postgres.WithUsername("testuser"),
			postgres.WithPassword("testpass"),
			testcontainers.WithWaitStrategy(
				wait.ForLog("database system is ready to accept connections").
					WithOccurrence(2).
					WithStartupTimeout(5*time.Second)),
		)
	}()

	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}
	if pgContainer == nil {
		return
	}
	defer func() {
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Fatalf("failed to terminate container: %v", err)
		}
	}()

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("failed to get connection string: %v", err)
	}

	pool, err := database.NewPool(connStr, 5, time.Minute, time.Hour)
	if err != nil {
		t.Fatalf("failed to connect to database: %v", err)
	}
	defer pool.Close()

	if err := database.Migrate(ctx, pool); err != nil {
		t.Fatalf("failed to apply migrations: %v", err)
	}

	repo := NewLedgerRepository(pool, curve.NewDefaultCatalog(), testResolver(t), big.NewInt(10_000))

	t.Run("CreatesTrackOnFirstAward", func(t *testing.T) {
		ref := domain.TrackRef{EntityID: "ent-first", TrackName: domain.TrackCharacter}

		applied, err := repo.ApplyAward(ctx, repository.ApplyAwardRequest{
			Ref:    ref,
			Amount: big.NewInt(50),
			Source: domain.SourceQuest,
		})
		require.NoError(t, err)

		assert.Equal(t, 1, applied.Record.LevelBefore)
		assert.Equal(t, 1, applied.Record.LevelAfter)
		assert.Equal(t, "0", applied.Record.ExperienceBefore.String())
		assert.Equal(t, "50", applied.Record.ExperienceAfter.String())
		assert.Equal(t, 1, applied.Track.CurrentLevel)
	})

	t.Run("GetTrackUnknownReturnsNotFound", func(t *testing.T) {
		_, err := repo.GetTrack(ctx, domain.TrackRef{EntityID: "nobody", TrackName: domain.TrackCharacter})
		assert.ErrorIs(t, err, domain.ErrTrackNotFound)
	})

	t.Run("LevelUpResolvesMilestonesInSameTransaction", func(t *testing.T) {
		ref := domain.TrackRef{EntityID: "ent-levelup", TrackName: domain.TrackCharacter}

		// 110 cumulative is exactly the level 2 threshold, 231 reaches level 3
		applied, err := repo.ApplyAward(ctx, repository.ApplyAwardRequest{
			Ref:    ref,
			Amount: big.NewInt(231),
			Source: domain.SourceCombat,
		})
		require.NoError(t, err)

		assert.Equal(t, 1, applied.Record.LevelBefore)
		assert.Equal(t, 3, applied.Record.LevelAfter)
		assert.ElementsMatch(t, []string{"level-2-gold", "level-3-title"}, applied.Resolution.NewlyUnlocked)
		assert.Equal(t, int64(10), applied.Resolution.StatPoints)

		titles, err := repo.GetUnlockedTitles(ctx, ref)
		require.NoError(t, err)
		assert.Equal(t, []string{"Initiate"}, titles)
	})

	t.Run("MilestonesNotReplayedOnLaterAwards", func(t *testing.T) {
		ref := domain.TrackRef{EntityID: "ent-replay", TrackName: domain.TrackCharacter}

		// Reach level 3, then fall back is impossible (append-only), so
		// cross level 3 again via a larger award and expect no replay
		_, err := repo.ApplyAward(ctx, repository.ApplyAwardRequest{
			Ref:    ref,
			Amount: big.NewInt(231),
			Source: domain.SourceCombat,
		})
		require.NoError(t, err)

		applied, err := repo.ApplyAward(ctx, repository.ApplyAwardRequest{
			Ref:    ref,
			Amount: big.NewInt(5000),
			Source: domain.SourceCombat,
		})
		require.NoError(t, err)

		assert.Equal(t, 3, applied.Record.LevelBefore)
		assert.Greater(t, applied.Record.LevelAfter, 3)
		assert.NotContains(t, applied.Resolution.NewlyUnlocked, "level-2-gold")
		assert.NotContains(t, applied.Resolution.NewlyUnlocked, "level-3-title")
	})

	t.Run("TierTrackUsesTierCurve", func(t *testing.T) {
		ref := domain.TrackRef{EntityID: "ent-tier", TrackName: "sword_affinity"}

		// Tier curve: 1500 cumulative is the tier 2 threshold
		applied, err := repo.ApplyAward(ctx, repository.ApplyAwardRequest{
			Ref:    ref,
			Amount: big.NewInt(1500),
			Source: domain.SourceCombat,
		})
		require.NoError(t, err)
		assert.Equal(t, 2, applied.Record.LevelAfter)
	})

	t.Run("PhaseBonusScalesGrantedAmount", func(t *testing.T) {
		ref := domain.TrackRef{EntityID: "ent-bonus", TrackName: domain.TrackCharacter}

		// Lift the track into the adept phase (level >= 10, 10% bonus)
		exp10 := curve.NewDefaultCatalog().ForTrack(ref.TrackName).TotalExperienceForLevel(10)
		_, err := repo.ApplyAward(ctx, repository.ApplyAwardRequest{
			Ref:    ref,
			Amount: exp10,
			Source: domain.SourceAdmin,
		})
		require.NoError(t, err)

		applied, err := repo.ApplyAward(ctx, repository.ApplyAwardRequest{
			Ref:    ref,
			Amount: big.NewInt(100),
			Source: domain.SourceCombat,
		})
		require.NoError(t, err)

		assert.Equal(t, 10, applied.BonusPercent)
		assert.Equal(t, "110", applied.Record.Amount.String())
	})

	t.Run("GrantedAmountNeverExceedsCap", func(t *testing.T) {
		ref := domain.TrackRef{EntityID: "ent-capped", TrackName: domain.TrackCharacter}

		// Adept phase (10% bonus), then award exactly the cap: the
		// bonus cannot push the stored granted amount past it
		exp10 := curve.NewDefaultCatalog().ForTrack(ref.TrackName).TotalExperienceForLevel(10)
		_, err := repo.ApplyAward(ctx, repository.ApplyAwardRequest{
			Ref:    ref,
			Amount: exp10,
			Source: domain.SourceAdmin,
		})
		require.NoError(t, err)

		applied, err := repo.ApplyAward(ctx, repository.ApplyAwardRequest{
			Ref:    ref,
			Amount: big.NewInt(10_000),
			Source: domain.SourceCombat,
		})
		require.NoError(t, err)

		assert.Equal(t, 10, applied.BonusPercent)
		assert.Equal(t, "10000", applied.Record.Amount.String())

		wantExp := new(big.Int).Add(exp10, big.NewInt(10_000))
		assert.Equal(t, wantExp.String(), applied.Record.ExperienceAfter.String())
	})

	t.Run("ListAwardsNewestFirstWithPaging", func(t *testing.T) {
		ref := domain.TrackRef{EntityID: "ent-history", TrackName: domain.TrackCharacter}

		for i := 1; i <= 3; i++ {
			_, err := repo.ApplyAward(ctx, repository.ApplyAwardRequest{
				Ref:    ref,
				Amount: big.NewInt(int64(i)),
				Source: domain.SourceSystem,
			})
			require.NoError(t, err)
		}

		records, err := repo.ListAwards(ctx, ref, 2, time.Time{})
		require.NoError(t, err)
		require.Len(t, records, 2)
		assert.Equal(t, "3", records[0].Amount.String())
		assert.Equal(t, "2", records[1].Amount.String())

		older, err := repo.ListAwards(ctx, ref, 10, records[1].CreatedAt)
		require.NoError(t, err)
		require.NotEmpty(t, older)
		assert.Equal(t, "1", older[0].Amount.String())
	})

	t.Run("SourceDetailsRoundTrip", func(t *testing.T) {
		ref := domain.TrackRef{EntityID: "ent-details", TrackName: domain.TrackCharacter}

		_, err := repo.ApplyAward(ctx, repository.ApplyAwardRequest{
			Ref:    ref,
			Amount: big.NewInt(10),
			Source: domain.SourceQuest,
			SourceDetails: map[string]interface{}{
				"quest_id": "dragon-hunt",
				"dedup":    "abc-123",
			},
		})
		require.NoError(t, err)

		records, err := repo.ListAwards(ctx, ref, 1, time.Time{})
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Equal(t, "dragon-hunt", records[0].SourceDetails["quest_id"])
	})

	t.Run("ConcurrentAwardsLoseNoExperience", func(t *testing.T) {
		ref := domain.TrackRef{EntityID: "ent-race", TrackName: domain.TrackCharacter}

		const workers = 8
		const perWorker = 5

		var wg sync.WaitGroup
		errs := make(chan error, workers*perWorker)
		for w := 0; w < workers; w++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for i := 0; i < perWorker; i++ {
					_, err := repo.ApplyAward(ctx, repository.ApplyAwardRequest{
						Ref:    ref,
						Amount: big.NewInt(7),
						Source: domain.SourceSystem,
					})
					errs <- err
				}
			}()
		}
		wg.Wait()
		close(errs)
		for err := range errs {
			require.NoError(t, err)
		}

		track, err := repo.GetTrack(ctx, ref)
		require.NoError(t, err)
		assert.Equal(t, "280", track.CumulativeExperience.String())
	})
}
