package sse

// LevelUpPayload is the SSE payload for level-up events
type LevelUpPayload struct {
	EntityID     string `json:"entity_id"`
	TrackName    string `json:"track_name"`
	OldLevel     int    `json:"old_level"`
	NewLevel     int    `json:"new_level"`
	BonusPercent int    `json:"bonus_percent"`
	NewTitle     string `json:"new_title,omitempty"`
}

// ExperienceGainPayload is the SSE payload for awards that did not change the level.
// Amount is a decimal string since experience values exceed 64-bit range.
type ExperienceGainPayload struct {
	EntityID  string `json:"entity_id"`
	TrackName string `json:"track_name"`
	Amount    string `json:"amount"`
}
