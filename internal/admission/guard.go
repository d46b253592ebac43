package admission

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/ashveil/progression-engine/internal/domain"
)

// Guard decides whether a specific award attempt is allowed right now.
// A nil return from Admit means the attempt was admitted AND its
// rate-limit side effects were recorded atomically - two concurrent
// admissions for the same track can never both pass the cooldown check.
// Guards never touch progression state, only the rate-limit store.
type Guard interface {
	// Admit runs the checks in order (amount cap, cooldown, sliding
	// window), short-circuiting on the first failure. Rejections are
	// returned as *RejectionError; anything else is a store failure.
	Admit(ctx context.Context, ref domain.TrackRef, amount *big.Int) error

	// Reset clears rate-limit state for one track (admin/testing)
	Reset(ctx context.Context, ref domain.TrackRef) error
}

// Config holds admission policy knobs. The rate-limit state these
// protect is ephemeral: losing it only relaxes abuse protection
// temporarily, it never corrupts durable progression.
type Config struct {
	MaxAmount   *big.Int
	Cooldown    time.Duration
	Window      time.Duration
	WindowLimit int
}

// DefaultConfig returns the standard admission policy
func DefaultConfig() Config {
	return Config{
		MaxAmount:   big.NewInt(DefaultMaxAmount),
		Cooldown:    DefaultCooldown,
		Window:      DefaultWindow,
		WindowLimit: DefaultWindowLimit,
	}
}

// RejectionError is a deterministic, expected admission refusal. It is
// never logged as a fault and always carries enough for the caller to
// build a retry hint.
type RejectionError struct {
	Reason     domain.RejectionReason
	RetryAfter time.Duration
}

func (e *RejectionError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("award rejected (%s): retry in %s", e.Reason, e.RetryAfter.Round(time.Millisecond))
	}
	return fmt.Sprintf("award rejected (%s)", e.Reason)
}

// Is allows errors.Is() to match any RejectionError
func (e *RejectionError) Is(target error) bool {
	_, ok := target.(*RejectionError)
	return ok
}

// checkAmount is the shared, store-free first check
func checkAmount(cfg Config, amount *big.Int) *RejectionError {
	if cfg.MaxAmount != nil && amount.Cmp(cfg.MaxAmount) > 0 {
		return &RejectionError{Reason: domain.RejectionAmountTooLarge}
	}
	return nil
}

// decide applies the cooldown and window checks against loaded state and,
// on admission, returns the updated state to be written back. Shared by
// the memory and postgres backends so the policy cannot drift between them.
func decide(cfg Config, st state, now time.Time) (state, *RejectionError) {
	if !st.LastAwardAt.IsZero() {
		elapsed := now.Sub(st.LastAwardAt)
		if elapsed < cfg.Cooldown {
			return st, &RejectionError{
				Reason:     domain.RejectionCooldownActive,
				RetryAfter: cfg.Cooldown - elapsed,
			}
		}
	}

	if st.WindowStart.IsZero() || now.Sub(st.WindowStart) >= cfg.Window {
		st.WindowStart = now
		st.WindowCount = 0
	}
	if st.WindowCount >= cfg.WindowLimit {
		return st, &RejectionError{
			Reason:     domain.RejectionRateLimited,
			RetryAfter: st.WindowStart.Add(cfg.Window).Sub(now),
		}
	}

	st.WindowCount++
	st.LastAwardAt = now
	return st, nil
}

// state is the per-track rate-limit record: a cooldown timestamp plus a
// counter with its window start (equivalent to a sliding window of
// timestamps, far cheaper to store).
type state struct {
	LastAwardAt time.Time
	WindowStart time.Time
	WindowCount int
}
