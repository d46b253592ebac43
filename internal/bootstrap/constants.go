package bootstrap

// =============================================================================
// File System Permissions
// =============================================================================

const (
	// DirPermission is the standard permission for creating directories
	DirPermission = 0755
)

// =============================================================================
// Error Messages
// =============================================================================

const (
	ErrMsgFailedLoadDefinitions     = "failed to load reward definitions"
	ErrMsgFailedBuildCurves         = "failed to build experience curves"
	ErrMsgFailedRegisterMetrics     = "failed to register metrics collector"
	ErrMsgFailedCreateDeadLetterDir = "failed to create dead-letter directory"
)

// =============================================================================
// Log Messages
// =============================================================================

const (
	LogMsgEventSystemInitialized     = "Event system initialized"
	LogMsgMetricsCollectorRegistered = "Metrics collector registered"
	LogMsgSSESubscriberRegistered    = "SSE subscriber registered"
	LogMsgDefinitionsLoaded          = "Reward definitions loaded"
	LogMsgShuttingDownServer         = "Shutting down server..."
	LogMsgServerForcedShutdown       = "Server forced to shutdown"
	LogMsgShuttingDownEventPublisher = "Shutting down event publisher..."
	LogMsgAwardServiceShutdownFailed = "Award service shutdown failed"
	LogMsgShutdownComplete           = "Shutdown complete"
)
