package postgres

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ashveil/progression-engine/internal/curve"
	"github.com/ashveil/progression-engine/internal/domain"
	"github.com/ashveil/progression-engine/internal/milestone"
	"github.com/ashveil/progression-engine/internal/repository"
)

// LedgerRepository implements the progression ledger for PostgreSQL.
// Every award runs as one transaction: the track row is locked, the
// level is recomputed from cumulative experience, milestone rewards are
// resolved, and the audit record is written before commit.
type LedgerRepository struct {
	db         *pgxpool.Pool
	catalog    *curve.Catalog
	resolver   *milestone.Resolver
	maxGranted *big.Int
}

// NewLedgerRepository creates a new LedgerRepository. maxGranted caps the
// post-bonus granted amount; nil disables the clamp.
func NewLedgerRepository(db *pgxpool.Pool, catalog *curve.Catalog, resolver *milestone.Resolver, maxGranted *big.Int) *LedgerRepository {
	return &LedgerRepository{db: db, catalog: catalog, resolver: resolver, maxGranted: maxGranted}
}

// ApplyAward atomically applies one admitted award to a track
func (r *LedgerRepository) ApplyAward(ctx context.Context, req repository.ApplyAwardRequest) (*repository.AppliedAward, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	track, err := r.lockTrack(ctx, tx, req.Ref)
	if err != nil {
		return nil, err
	}

	trackCurve := r.catalog.ForTrack(req.Ref.TrackName)

	// Level is always derived from cumulative experience, never read
	// back from the stored column
	expBefore := new(big.Int).Set(track.CumulativeExperience)
	levelBefore := trackCurve.LevelForExperience(expBefore)

	// The phase bonus in effect before the award scales the granted
	// amount, so the stored record is post-bonus
	bonusPercent := r.resolver.BonusPercentForLevel(levelBefore)
	granted := new(big.Int).Set(req.Amount)
	if bonusPercent > 0 {
		granted.Mul(granted, big.NewInt(int64(100+bonusPercent)))
		granted.Quo(granted, big.NewInt(100))
	}
	// Admission capped the pre-bonus amount; the stored granted amount
	// honors the same ceiling
	if r.maxGranted != nil && granted.Cmp(r.maxGranted) > 0 {
		granted.Set(r.maxGranted)
	}

	expAfter := new(big.Int).Add(expBefore, granted)
	levelAfter := trackCurve.LevelForExperience(expAfter)

	var resolution milestone.Resolution
	if levelAfter > levelBefore {
		unlocked, err := r.loadUnlocked(ctx, tx, req.Ref)
		if err != nil {
			return nil, err
		}
		resolution = r.resolver.Resolve(levelBefore, levelAfter, unlocked)

		if err := r.persistResolution(ctx, tx, req.Ref, resolution); err != nil {
			return nil, err
		}
	}

	now := time.Now().UTC()
	updateQuery := `
		UPDATE progress_tracks
		SET cumulative_experience = $3::numeric,
		    current_level = $4,
		    last_award_at = $5,
		    updated_at = $5
		WHERE entity_id = $1 AND track_name = $2
	`
	if _, err := tx.Exec(ctx, updateQuery,
		req.Ref.EntityID, req.Ref.TrackName, expAfter.String(), levelAfter, now); err != nil {
		return nil, fmt.Errorf("failed to update progress track: %w", err)
	}

	record := &domain.AwardRecord{
		EntityID:         req.Ref.EntityID,
		TrackName:        req.Ref.TrackName,
		Amount:           granted,
		Source:           req.Source,
		SourceDetails:    req.SourceDetails,
		LevelBefore:      levelBefore,
		LevelAfter:       levelAfter,
		ExperienceBefore: expBefore,
		ExperienceAfter:  expAfter,
	}

	insertQuery := `
		INSERT INTO award_records
			(entity_id, track_name, amount, source, source_details,
			 level_before, level_after, experience_before, experience_after)
		VALUES ($1, $2, $3::numeric, $4, $5, $6, $7, $8::numeric, $9::numeric)
		RETURNING id, created_at
	`
	err = tx.QueryRow(ctx, insertQuery,
		record.EntityID, record.TrackName, record.Amount.String(), record.Source,
		record.SourceDetails, record.LevelBefore, record.LevelAfter,
		record.ExperienceBefore.String(), record.ExperienceAfter.String(),
	).Scan(&record.ID, &record.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert award record: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}

	track.CumulativeExperience = expAfter
	track.CurrentLevel = levelAfter
	track.LastAwardAt = &now
	track.UpdatedAt = now

	return &repository.AppliedAward{
		Track:        track,
		Record:       record,
		Resolution:   resolution,
		BonusPercent: bonusPercent,
	}, nil
}

// lockTrack creates the track at level 1 if needed and locks its row
// for the rest of the transaction
func (r *LedgerRepository) lockTrack(ctx context.Context, tx pgx.Tx, ref domain.TrackRef) (*domain.ProgressTrack, error) {
	insertQuery := `
		INSERT INTO progress_tracks (entity_id, track_name)
		VALUES ($1, $2)
		ON CONFLICT (entity_id, track_name) DO NOTHING
	`
	if _, err := tx.Exec(ctx, insertQuery, ref.EntityID, ref.TrackName); err != nil {
		return nil, fmt.Errorf("failed to ensure progress track: %w", err)
	}

	selectQuery := `
		SELECT cumulative_experience::text, current_level, last_award_at, created_at, updated_at
		FROM progress_tracks
		WHERE entity_id = $1 AND track_name = $2
		FOR UPDATE
	`
	track := &domain.ProgressTrack{
		EntityID:  ref.EntityID,
		TrackName: ref.TrackName,
	}
	var expText string
	err := tx.QueryRow(ctx, selectQuery, ref.EntityID, ref.TrackName).Scan(
		&expText,
		&track.CurrentLevel,
		&track.LastAwardAt,
		&track.CreatedAt,
		&track.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to lock progress track: %w", err)
	}

	exp, ok := new(big.Int).SetString(expText, 10)
	if !ok {
		return nil, fmt.Errorf("corrupt cumulative experience for %s/%s: %q",
			ref.EntityID, ref.TrackName, expText)
	}
	track.CumulativeExperience = exp
	return track, nil
}

// loadUnlocked returns the milestone IDs already unlocked on a track
func (r *LedgerRepository) loadUnlocked(ctx context.Context, tx pgx.Tx, ref domain.TrackRef) (map[string]bool, error) {
	query := `
		SELECT milestone_id
		FROM milestone_unlocks
		WHERE entity_id = $1 AND track_name = $2
	`
	rows, err := tx.Query(ctx, query, ref.EntityID, ref.TrackName)
	if err != nil {
		return nil, fmt.Errorf("failed to query milestone unlocks: %w", err)
	}
	defer rows.Close()

	unlocked := make(map[string]bool)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan milestone unlock: %w", err)
		}
		unlocked[id] = true
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return unlocked, nil
}

// persistResolution records milestone unlocks and earned titles in the
// same transaction as the award itself
func (r *LedgerRepository) persistResolution(ctx context.Context, tx pgx.Tx, ref domain.TrackRef, res milestone.Resolution) error {
	unlockQuery := `
		INSERT INTO milestone_unlocks (entity_id, track_name, milestone_id)
		VALUES ($1, $2, $3)
		ON CONFLICT (entity_id, track_name, milestone_id) DO NOTHING
	`
	for _, id := range res.NewlyUnlocked {
		if _, err := tx.Exec(ctx, unlockQuery, ref.EntityID, ref.TrackName, id); err != nil {
			return fmt.Errorf("failed to record milestone unlock: %w", err)
		}
	}

	titleQuery := `
		INSERT INTO track_titles (entity_id, track_name, title)
		VALUES ($1, $2, $3)
		ON CONFLICT (entity_id, track_name, title) DO NOTHING
	`
	for _, reward := range res.Rewards {
		if reward.Type == domain.RewardTitle && reward.Title != "" {
			if _, err := tx.Exec(ctx, titleQuery, ref.EntityID, ref.TrackName, reward.Title); err != nil {
				return fmt.Errorf("failed to record title: %w", err)
			}
		}
	}
	if res.NewTitle != "" {
		if _, err := tx.Exec(ctx, titleQuery, ref.EntityID, ref.TrackName, res.NewTitle); err != nil {
			return fmt.Errorf("failed to record phase title: %w", err)
		}
	}
	return nil
}

// GetTrack retrieves the current state of a track
func (r *LedgerRepository) GetTrack(ctx context.Context, ref domain.TrackRef) (*domain.ProgressTrack, error) {
	query := `
		SELECT cumulative_experience::text, current_level, last_award_at, created_at, updated_at
		FROM progress_tracks
		WHERE entity_id = $1 AND track_name = $2
	`
	track := &domain.ProgressTrack{
		EntityID:  ref.EntityID,
		TrackName: ref.TrackName,
	}
	var expText string
	err := r.db.QueryRow(ctx, query, ref.EntityID, ref.TrackName).Scan(
		&expText,
		&track.CurrentLevel,
		&track.LastAwardAt,
		&track.CreatedAt,
		&track.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrTrackNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get progress track: %w", err)
	}

	exp, ok := new(big.Int).SetString(expText, 10)
	if !ok {
		return nil, fmt.Errorf("corrupt cumulative experience for %s/%s: %q",
			ref.EntityID, ref.TrackName, expText)
	}
	track.CumulativeExperience = exp
	return track, nil
}

// ListAwards returns award records for a track, newest first
func (r *LedgerRepository) ListAwards(ctx context.Context, ref domain.TrackRef, limit int, before time.Time) ([]domain.AwardRecord, error) {
	query := `
		SELECT id, amount::text, source, source_details,
		       level_before, level_after,
		       experience_before::text, experience_after::text, created_at
		FROM award_records
		WHERE entity_id = $1 AND track_name = $2
		  AND ($3::timestamptz IS NULL OR created_at < $3)
		ORDER BY created_at DESC, id DESC
		LIMIT $4
	`
	var beforeArg *time.Time
	if !before.IsZero() {
		beforeArg = &before
	}

	rows, err := r.db.Query(ctx, query, ref.EntityID, ref.TrackName, beforeArg, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query award records: %w", err)
	}
	defer rows.Close()

	var records []domain.AwardRecord
	for rows.Next() {
		rec := domain.AwardRecord{
			EntityID:  ref.EntityID,
			TrackName: ref.TrackName,
		}
		var amountText, expBeforeText, expAfterText string
		err := rows.Scan(
			&rec.ID,
			&amountText,
			&rec.Source,
			&rec.SourceDetails,
			&rec.LevelBefore,
			&rec.LevelAfter,
			&expBeforeText,
			&expAfterText,
			&rec.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan award record: %w", err)
		}

		rec.Amount, _ = new(big.Int).SetString(amountText, 10)
		rec.ExperienceBefore, _ = new(big.Int).SetString(expBeforeText, 10)
		rec.ExperienceAfter, _ = new(big.Int).SetString(expAfterText, 10)
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return records, nil
}

// GetUnlockedTitles returns the titles earned on a track, oldest first
func (r *LedgerRepository) GetUnlockedTitles(ctx context.Context, ref domain.TrackRef) ([]string, error) {
	query := `
		SELECT title
		FROM track_titles
		WHERE entity_id = $1 AND track_name = $2
		ORDER BY earned_at
	`
	rows, err := r.db.Query(ctx, query, ref.EntityID, ref.TrackName)
	if err != nil {
		return nil, fmt.Errorf("failed to query titles: %w", err)
	}
	defer rows.Close()

	var titles []string
	for rows.Next() {
		var title string
		if err := rows.Scan(&title); err != nil {
			return nil, fmt.Errorf("failed to scan title: %w", err)
		}
		titles = append(titles, title)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return titles, nil
}
