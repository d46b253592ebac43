package handler

// Client-facing error messages. These intentionally do not expose
// internal error details; handlers and tests share them so wording
// stays consistent.
const (
	ErrMsgInvalidRequest    = "Invalid request body"
	ErrMsgMissingQueryParam = "Missing %s query parameter"
	ErrMsgInvalidAmount     = "amount must be a non-negative integer (decimal string)"
	ErrMsgInvalidLimit      = "limit must be a positive integer"
	ErrMsgInvalidBefore     = "before must be an RFC 3339 timestamp"

	ErrMsgAwardFailed      = "Failed to process award"
	ErrMsgGetSummaryFailed = "Failed to retrieve progress summary"
	ErrMsgGetHistoryFailed = "Failed to retrieve award history"
	ErrMsgResetFailed      = "Failed to reset rate limit"
	ErrMsgUnavailable      = "Server is temporarily unavailable. Please try again later."
)
