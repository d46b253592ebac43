package domain

import "errors"

// Error message string constants - single source of truth for error messages
// Use these in assert.Contains() checks when testing error messages
const (
	// Input errors
	ErrMsgInvalidAmount = "invalid award amount"
	ErrMsgUnknownSource = "unknown award source"
	ErrMsgInvalidTrack  = "invalid track reference"

	// Store errors
	ErrMsgStoreUnavailable = "progression store unavailable"
	ErrMsgTrackNotFound    = "progress track not found"

	// Admission errors
	ErrMsgAmountTooLarge = "award amount exceeds maximum"
	ErrMsgCooldownActive = "award cooldown active"
	ErrMsgRateLimited    = "award rate limit exceeded"

	// Configuration errors
	ErrMsgBadPhaseConfig     = "invalid phase configuration"
	ErrMsgBadMilestoneConfig = "invalid milestone configuration"
)

// Common domain errors
// Wrap these with fmt.Errorf("%w: %s", domain.ErrXxx, details) for context.
var (
	// Input errors - rejected synchronously, no state touched
	ErrInvalidAmount = errors.New(ErrMsgInvalidAmount)
	ErrUnknownSource = errors.New(ErrMsgUnknownSource)
	ErrInvalidTrack  = errors.New(ErrMsgInvalidTrack)

	// Store errors - retryable; distinct from policy rejections so callers
	// can tell "rejected" apart from "unknown whether the award landed"
	ErrStoreUnavailable = errors.New(ErrMsgStoreUnavailable)
	ErrTrackNotFound    = errors.New(ErrMsgTrackNotFound)

	// Configuration errors
	ErrBadPhaseConfig     = errors.New(ErrMsgBadPhaseConfig)
	ErrBadMilestoneConfig = errors.New(ErrMsgBadMilestoneConfig)
)
