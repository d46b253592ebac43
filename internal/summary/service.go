package summary

import (
	"context"
	"errors"
	"math/big"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/ashveil/progression-engine/internal/curve"
	"github.com/ashveil/progression-engine/internal/domain"
	"github.com/ashveil/progression-engine/internal/metrics"
	"github.com/ashveil/progression-engine/internal/milestone"
	"github.com/ashveil/progression-engine/internal/repository"
)

// CacheSchemaVersion is the current version of the cached summary shape.
// Increment when ProgressSummary changes to auto-invalidate old entries.
const CacheSchemaVersion = "1.0"

// Service serves the read-optimized progression summary
type Service interface {
	// GetSummary returns the current summary for a track, from cache when
	// fresh, otherwise rebuilt from the ledger. A track that never
	// received an award reads as level 1 with zero experience.
	GetSummary(ctx context.Context, ref domain.TrackRef) (*domain.ProgressSummary, error)

	// Invalidate drops the cached summary for exactly one track
	Invalidate(ref domain.TrackRef)
}

// cachedEntry wraps a summary with version metadata for cache invalidation
type cachedEntry struct {
	Version string
	Summary *domain.ProgressSummary
}

type service struct {
	ledger  repository.Ledger
	catalog *curve.Catalog
	defs    *milestone.Definitions
	cache   *expirable.LRU[string, *cachedEntry]
}

// NewService creates a summary service with an expiring LRU projection
// cache in front of the ledger
func NewService(ledger repository.Ledger, catalog *curve.Catalog, defs *milestone.Definitions, size int, ttl time.Duration) Service {
	return &service{
		ledger:  ledger,
		catalog: catalog,
		defs:    defs,
		cache:   expirable.NewLRU[string, *cachedEntry](size, nil, ttl),
	}
}

func (s *service) GetSummary(ctx context.Context, ref domain.TrackRef) (*domain.ProgressSummary, error) {
	key := ref.Key()
	if entry, found := s.cache.Get(key); found {
		if entry.Version == CacheSchemaVersion {
			metrics.SummaryCacheHits.Inc()
			return entry.Summary, nil
		}
		s.cache.Remove(key)
	}
	metrics.SummaryCacheMisses.Inc()

	summary, err := s.build(ctx, ref)
	if err != nil {
		return nil, err
	}

	s.cache.Add(key, &cachedEntry{Version: CacheSchemaVersion, Summary: summary})
	return summary, nil
}

func (s *service) Invalidate(ref domain.TrackRef) {
	s.cache.Remove(ref.Key())
}

// build assembles a summary from ledger state and the pure curve/phase
// definitions
func (s *service) build(ctx context.Context, ref domain.TrackRef) (*domain.ProgressSummary, error) {
	track, err := s.ledger.GetTrack(ctx, ref)
	if errors.Is(err, domain.ErrTrackNotFound) {
		track = &domain.ProgressTrack{
			EntityID:             ref.EntityID,
			TrackName:            ref.TrackName,
			CumulativeExperience: big.NewInt(0),
			CurrentLevel:         1,
		}
	} else if err != nil {
		return nil, err
	}

	trackCurve := s.catalog.ForTrack(ref.TrackName)
	level := trackCurve.LevelForExperience(track.CumulativeExperience)

	summary := &domain.ProgressSummary{
		EntityID:             ref.EntityID,
		TrackName:            ref.TrackName,
		Level:                level,
		CumulativeExperience: track.CumulativeExperience,
		ExperienceToNext:     trackCurve.ExperienceToNext(track.CumulativeExperience),
		BonusPercent:         s.defs.BonusPercentForLevel(level),
		AtMaxLevel:           level >= trackCurve.MaxLevel(),
	}

	if phase := s.defs.PhaseForLevel(level); phase != nil {
		summary.PhaseTitle = phase.Title
	}

	titles, err := s.ledger.GetUnlockedTitles(ctx, ref)
	if err != nil {
		return nil, err
	}
	summary.UnlockedTitles = titles

	return summary, nil
}
