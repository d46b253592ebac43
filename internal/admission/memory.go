package admission

import (
	"context"
	"math/big"
	"sync"
	"time"

	"github.com/ashveil/progression-engine/internal/concurrency"
	"github.com/ashveil/progression-engine/internal/domain"
)

// MemoryGuard is an in-process Guard. Used in tests and as the store for
// single-instance deployments that don't need cross-process limiting.
// Admission state is locked per track, so awards to unrelated tracks
// never contend.
type MemoryGuard struct {
	config Config
	locks  *concurrency.LockManager
	states sync.Map // track key -> state
	now    func() time.Time
}

// NewMemoryGuard creates an in-memory admission guard
func NewMemoryGuard(config Config) *MemoryGuard {
	return &MemoryGuard{
		config: config,
		locks:  concurrency.NewLockManager(),
		now:    time.Now,
	}
}

// WithClock substitutes the time source (testing)
func (g *MemoryGuard) WithClock(now func() time.Time) *MemoryGuard {
	g.now = now
	return g
}

// Admit checks and records admission under the track's lock
func (g *MemoryGuard) Admit(_ context.Context, ref domain.TrackRef, amount *big.Int) error {
	if rej := checkAmount(g.config, amount); rej != nil {
		return rej
	}

	key := ref.Key()
	lock := g.locks.GetLock(key)
	lock.Lock()
	defer lock.Unlock()

	var current state
	if v, ok := g.states.Load(key); ok {
		current = v.(state)
	}

	next, rej := decide(g.config, current, g.now())
	if rej != nil {
		return rej
	}
	g.states.Store(key, next)
	return nil
}

// Reset clears rate-limit state for one track
func (g *MemoryGuard) Reset(_ context.Context, ref domain.TrackRef) error {
	key := ref.Key()
	lock := g.locks.GetLock(key)
	lock.Lock()
	defer lock.Unlock()
	g.states.Delete(key)
	return nil
}
