package domain

// PhaseDefinition maps an inclusive level range to a bonus multiplier
// bracket and a display title. Definitions are static, versioned config:
// read-only at award time, non-overlapping, ordered by MinLevel.
type PhaseDefinition struct {
	Name         string `json:"name"`
	Title        string `json:"title"`
	MinLevel     int    `json:"min_level"`
	MaxLevel     int    `json:"max_level"`
	BonusPercent int    `json:"bonus_percent"`
}

// Covers reports whether level falls inside this phase's range
func (p PhaseDefinition) Covers(level int) bool {
	return level >= p.MinLevel && level <= p.MaxLevel
}

// MilestoneDefinition ties a one-time reward bundle to reaching a
// specific level or tier on a track.
type MilestoneDefinition struct {
	ID      string   `json:"id"`
	Level   int      `json:"level"`
	Rewards []Reward `json:"rewards"`
}
