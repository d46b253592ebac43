package admission

import "time"

// Default admission policy values
const (
	DefaultMaxAmount   = 10_000
	DefaultCooldown    = 1500 * time.Millisecond
	DefaultWindow      = 60 * time.Second
	DefaultWindowLimit = 10
)

// HashSeparator joins entity and track when deriving advisory lock keys
const HashSeparator = "|"

// HashMaskPositiveInt64 clears the sign bit so lock keys stay positive
const HashMaskPositiveInt64 = uint64(1<<63 - 1)

// SQL statements for the postgres backend. award_rate_limits is an
// UNLOGGED table: losing it on a crash only relaxes rate limiting.
const (
	SQLAdvisoryLock = `SELECT pg_advisory_xact_lock($1)`

	SQLSelectRateLimit = `
		SELECT last_award_at, window_start, window_count
		FROM award_rate_limits
		WHERE entity_id = $1 AND track_name = $2`

	SQLUpsertRateLimit = `
		INSERT INTO award_rate_limits (entity_id, track_name, last_award_at, window_start, window_count)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (entity_id, track_name)
		DO UPDATE SET last_award_at = $3, window_start = $4, window_count = $5`

	SQLDeleteRateLimit = `
		DELETE FROM award_rate_limits
		WHERE entity_id = $1 AND track_name = $2`
)

// Error message formats
const (
	ErrMsgBeginTxFailed      = "failed to begin admission transaction: %w"
	ErrMsgAcquireLockFailed  = "failed to acquire admission lock: %w"
	ErrMsgLoadStateFailed    = "failed to load rate limit state: %w"
	ErrMsgPersistStateFailed = "failed to persist rate limit state: %w"
	ErrMsgCommitTxFailed     = "failed to commit admission transaction: %w"
	ErrMsgResetFailed        = "failed to reset rate limit state: %w"
)
