package award

// MultiplierDenominator expresses caller multipliers as integer percent
// (150 = 1.5x); zero means unscaled
const MultiplierDenominator = 100

// Log messages
const (
	LogMsgAwardAccepted     = "Award accepted"
	LogMsgAwardRejected     = "Award rejected"
	LogMsgAwardApplyFailed  = "Failed to apply award"
	LogMsgMultiplierIgnored = "Multiplier ignored for non-combat source"
	LogMsgRateLimitReset    = "Rate limit state reset"
	LogMsgServiceShutdown   = "Award service shutting down..."
	LogMsgShutdownComplete  = "Award service shutdown complete"
)
