package award

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/ashveil/progression-engine/internal/admission"
	"github.com/ashveil/progression-engine/internal/domain"
	"github.com/ashveil/progression-engine/internal/event"
	"github.com/ashveil/progression-engine/internal/logger"
	"github.com/ashveil/progression-engine/internal/metrics"
	"github.com/ashveil/progression-engine/internal/repository"
	"github.com/ashveil/progression-engine/internal/summary"
)

// Request carries one award attempt into the orchestrator
type Request struct {
	EntityID      string
	TrackName     string
	Amount        *big.Int
	Source        domain.Source
	SourceDetails map[string]interface{}

	// MultiplierPercent scales combat-sourced awards (150 = 1.5x).
	// Applied before the admission cap so callers cannot bypass it.
	// Zero means unscaled; ignored for non-combat sources.
	MultiplierPercent int
}

// Service is the only entry point external collaborators call to grant
// experience. Everything else in the engine is reached through it.
type Service interface {
	// Award validates, admits, applies, and announces one award.
	// Rejections come back as a non-accepted AwardResult with a nil
	// error; only store failures return an error.
	Award(ctx context.Context, req Request) (*domain.AwardResult, error)

	// ResetRateLimit clears admission state for one track (admin)
	ResetRateLimit(ctx context.Context, ref domain.TrackRef) error

	// Shutdown drains in-flight event retries
	Shutdown(ctx context.Context) error
}

type service struct {
	guard     admission.Guard
	ledger    repository.Ledger
	summaries summary.Service
	publisher *event.ResilientPublisher
}

// NewService creates a new award service
func NewService(guard admission.Guard, ledger repository.Ledger, summaries summary.Service, publisher *event.ResilientPublisher) Service {
	return &service{
		guard:     guard,
		ledger:    ledger,
		summaries: summaries,
		publisher: publisher,
	}
}

// Award runs the full sequence: validate, admit, apply, invalidate the
// one cache key, emit exactly one event
func (s *service) Award(ctx context.Context, req Request) (*domain.AwardResult, error) {
	log := logger.FromContext(ctx)
	start := time.Now()

	if result := s.validate(ctx, &req); result != nil {
		metrics.AwardsRejected.WithLabelValues(string(result.RejectionReason)).Inc()
		return result, nil
	}

	ref := domain.TrackRef{EntityID: req.EntityID, TrackName: req.TrackName}
	amount := s.scaledAmount(ctx, req)

	if err := s.guard.Admit(ctx, ref, amount); err != nil {
		var rej *admission.RejectionError
		if errors.As(err, &rej) {
			metrics.AwardsRejected.WithLabelValues(string(rej.Reason)).Inc()
			log.Info(LogMsgAwardRejected,
				"entity_id", ref.EntityID, "track", ref.TrackName,
				"reason", rej.Reason, "retry_after", rej.RetryAfter)
			return rejectedResult(ref, rej), nil
		}
		return nil, fmt.Errorf("admission check failed: %w", err)
	}

	applied, err := s.ledger.ApplyAward(ctx, repository.ApplyAwardRequest{
		Ref:           ref,
		Amount:        amount,
		Source:        req.Source,
		SourceDetails: req.SourceDetails,
	})
	if err != nil {
		log.Error(LogMsgAwardApplyFailed,
			"entity_id", ref.EntityID, "track", ref.TrackName, "error", err)
		return nil, err
	}

	record := applied.Record
	leveledUp := record.LevelAfter > record.LevelBefore

	metrics.AwardsAccepted.WithLabelValues(string(req.Source), ref.TrackName).Inc()
	metrics.AwardDuration.Observe(time.Since(start).Seconds())
	if leveledUp {
		metrics.LevelUps.WithLabelValues(ref.TrackName).Inc()
	}
	if n := len(applied.Resolution.NewlyUnlocked); n > 0 {
		metrics.MilestonesUnlocked.Add(float64(n))
	}

	// Only this track's key is dropped, never a broad flush
	s.summaries.Invalidate(ref)

	s.announce(ctx, ref, applied, leveledUp)

	log.Info(LogMsgAwardAccepted,
		"entity_id", ref.EntityID, "track", ref.TrackName,
		"source", req.Source, "amount", record.Amount.String(),
		"level_before", record.LevelBefore, "level_after", record.LevelAfter)

	return &domain.AwardResult{
		Accepted:         true,
		EntityID:         ref.EntityID,
		TrackName:        ref.TrackName,
		LevelBefore:      record.LevelBefore,
		LevelAfter:       record.LevelAfter,
		ExperienceBefore: record.ExperienceBefore,
		ExperienceAfter:  record.ExperienceAfter,
		AmountGranted:    record.Amount,
		BonusPercent:     applied.BonusPercent,
		LeveledUp:        leveledUp,
		Rewards:          applied.Resolution.Rewards,
		NewTitle:         applied.Resolution.NewTitle,
	}, nil
}

// validate rejects malformed requests before any store is touched.
// Returns nil when the request is well-formed.
func (s *service) validate(ctx context.Context, req *Request) *domain.AwardResult {
	reject := func(reason domain.RejectionReason) *domain.AwardResult {
		logger.FromContext(ctx).Info(LogMsgAwardRejected,
			"entity_id", req.EntityID, "track", req.TrackName, "reason", reason)
		return &domain.AwardResult{
			Accepted:        false,
			EntityID:        req.EntityID,
			TrackName:       req.TrackName,
			RejectionReason: reason,
		}
	}

	if req.EntityID == "" || req.TrackName == "" {
		return reject(domain.RejectionInvalidTrack)
	}
	if req.Amount == nil || req.Amount.Sign() < 0 {
		return reject(domain.RejectionInvalidAmount)
	}
	if !domain.KnownSource(req.Source) {
		return reject(domain.RejectionUnknownSource)
	}
	if req.MultiplierPercent < 0 {
		return reject(domain.RejectionInvalidAmount)
	}
	return nil
}

// scaledAmount applies the caller multiplier for combat awards. This runs
// before admission so the cap check sees the final requested amount.
func (s *service) scaledAmount(ctx context.Context, req Request) *big.Int {
	amount := new(big.Int).Set(req.Amount)
	if req.MultiplierPercent == 0 || req.MultiplierPercent == MultiplierDenominator {
		return amount
	}
	if req.Source != domain.SourceCombat {
		logger.FromContext(ctx).Debug(LogMsgMultiplierIgnored,
			"source", req.Source, "multiplier_percent", req.MultiplierPercent)
		return amount
	}
	amount.Mul(amount, big.NewInt(int64(req.MultiplierPercent)))
	amount.Quo(amount, big.NewInt(MultiplierDenominator))
	return amount
}

// announce emits exactly one event per accepted award: a level-up when a
// boundary was crossed, otherwise an experience gain. Failures never
// propagate to the caller.
func (s *service) announce(ctx context.Context, ref domain.TrackRef, applied *repository.AppliedAward, leveledUp bool) {
	if s.publisher == nil {
		return
	}

	// bonusPercentage means the same thing on every surface: the phase
	// bonus that scaled this award's amount
	var evt event.Event
	if leveledUp {
		evt = event.NewLevelUpEvent(ref.EntityID, ref.TrackName,
			applied.Record.LevelBefore, applied.Record.LevelAfter,
			applied.BonusPercent, applied.Resolution.NewTitle)
	} else {
		evt = event.NewExperienceGainEvent(ref.EntityID, ref.TrackName,
			applied.Record.Amount.String(), applied.BonusPercent)
	}
	_ = s.publisher.Publish(ctx, evt)
}

// rejectedResult maps an admission refusal onto the result shape
func rejectedResult(ref domain.TrackRef, rej *admission.RejectionError) *domain.AwardResult {
	return &domain.AwardResult{
		Accepted:        false,
		EntityID:        ref.EntityID,
		TrackName:       ref.TrackName,
		RejectionReason: rej.Reason,
		RetryAfter:      rej.RetryAfter,
	}
}

// ResetRateLimit clears admission state for one track
func (s *service) ResetRateLimit(ctx context.Context, ref domain.TrackRef) error {
	if err := s.guard.Reset(ctx, ref); err != nil {
		return err
	}
	logger.FromContext(ctx).Info(LogMsgRateLimitReset,
		"entity_id", ref.EntityID, "track", ref.TrackName)
	return nil
}

// Shutdown drains in-flight event retries
func (s *service) Shutdown(ctx context.Context) error {
	log := logger.FromContext(ctx)
	log.Info(LogMsgServiceShutdown)

	if s.publisher != nil {
		s.publisher.Wait()
	}

	log.Info(LogMsgShutdownComplete)
	return nil
}
