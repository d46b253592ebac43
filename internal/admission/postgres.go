package admission

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ashveil/progression-engine/internal/domain"
	"github.com/ashveil/progression-engine/internal/logger"
)

// postgresGuard implements Guard on the shared award_rate_limits table.
// An advisory transaction lock keyed on entity+track serializes admission
// for one track even before a row exists, so the check and the record
// land in the same round trip.
type postgresGuard struct {
	db     *pgxpool.Pool
	config Config
	now    func() time.Time
}

// NewPostgresGuard creates an admission guard backed by Postgres
func NewPostgresGuard(db *pgxpool.Pool, config Config) Guard {
	return &postgresGuard{
		db:     db,
		config: config,
		now:    time.Now,
	}
}

// Admit checks and records admission in one transaction
func (g *postgresGuard) Admit(ctx context.Context, ref domain.TrackRef, amount *big.Int) error {
	if rej := checkAmount(g.config, amount); rej != nil {
		return rej
	}

	tx, err := g.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, fmt.Errorf(ErrMsgBeginTxFailed, err))
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	lockKey := hashTrack(ref)
	if _, err := tx.Exec(ctx, SQLAdvisoryLock, lockKey); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, fmt.Errorf(ErrMsgAcquireLockFailed, err))
	}

	st, err := g.loadState(ctx, tx, ref)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, fmt.Errorf(ErrMsgLoadStateFailed, err))
	}

	next, rej := decide(g.config, st, g.now())
	if rej != nil {
		logger.FromContext(ctx).Debug("award admission rejected",
			"entity_id", ref.EntityID, "track", ref.TrackName,
			"reason", rej.Reason, "retry_after", rej.RetryAfter)
		return rej
	}

	if _, err := tx.Exec(ctx, SQLUpsertRateLimit,
		ref.EntityID, ref.TrackName, next.LastAwardAt, next.WindowStart, next.WindowCount); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, fmt.Errorf(ErrMsgPersistStateFailed, err))
	}

	// Commit releases the advisory lock; admission is recorded before the
	// caller is told "admitted"
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, fmt.Errorf(ErrMsgCommitTxFailed, err))
	}
	return nil
}

// Reset clears rate-limit state for one track (admin/testing)
func (g *postgresGuard) Reset(ctx context.Context, ref domain.TrackRef) error {
	if _, err := g.db.Exec(ctx, SQLDeleteRateLimit, ref.EntityID, ref.TrackName); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, fmt.Errorf(ErrMsgResetFailed, err))
	}
	return nil
}

func (g *postgresGuard) loadState(ctx context.Context, tx pgx.Tx, ref domain.TrackRef) (state, error) {
	var st state
	err := tx.QueryRow(ctx, SQLSelectRateLimit, ref.EntityID, ref.TrackName).
		Scan(&st.LastAwardAt, &st.WindowStart, &st.WindowCount)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return state{}, nil
		}
		return state{}, err
	}
	return st, nil
}

// hashTrack creates a consistent int64 advisory lock key from a track ref
func hashTrack(ref domain.TrackRef) int64 {
	h := sha256.Sum256([]byte(ref.EntityID + HashSeparator + ref.TrackName))
	return int64(binary.BigEndian.Uint64(h[:8]) & HashMaskPositiveInt64)
}
