package sse

import "time"

const (
	// ClientEventBuffer is how many events a slow client may lag behind
	// before the hub starts dropping deliveries to it
	ClientEventBuffer = 50

	// KeepaliveInterval is how often idle connections receive a ping
	KeepaliveInterval = 30 * time.Second
)

// Event types for SSE
const (
	// EventTypeLevelUp is sent when a track crosses one or more level thresholds
	EventTypeLevelUp = "progress.levelUp"

	// EventTypeExperienceGain is sent when an award is applied without a level change
	EventTypeExperienceGain = "progress.experienceGain"

	// EventTypeKeepalive is the keepalive ping event type
	EventTypeKeepalive = "keepalive"
)

// Log messages
const (
	LogMsgClientConnected    = "SSE client connected"
	LogMsgClientDisconnected = "SSE client disconnected"
	LogMsgEventBroadcast     = "Broadcasting SSE event"
	LogMsgWriteError         = "Failed to write SSE event"
	LogMsgBadPayload         = "Unexpected event payload type"
)
