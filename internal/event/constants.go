package event

import "time"

// Event schema versioning
const (
	// EventSchemaVersion is the current event schema version
	EventSchemaVersion = "1.0"
)

// Retry configuration constants
const (
	// RetryMaxAttempts is the default maximum number of retry attempts
	RetryMaxAttempts = 5

	// RetryBaseDelay is the default base delay between attempts; the
	// retry loop multiplies it by the attempt number
	RetryBaseDelay = 2 * time.Second

	// DeadLetterFilePermissions is the file permission mode for dead-letter files
	DeadLetterFilePermissions = 0644
)

// Log message constants
const (
	LogMsgEventPublishFailed    = "Event publish failed, initiating async retry"
	LogMsgEventRetrySucceeded   = "Event retry succeeded"
	LogMsgEventRetryFailed      = "Event retry failed"
	LogMsgEventRetryExhausted   = "Event retry exhausted, writing to dead-letter"
	LogMsgDeadLetterWriteFailed = "Failed to write to dead letter file"
	LogMsgDeadLetterWritten     = "Event written to dead letter queue"

	LogMsgHandlerErrorFormat = "encountered %d errors while handling event %s: %v"
)
