package milestone

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/ashveil/progression-engine/internal/domain"
	"github.com/ashveil/progression-engine/internal/validation"
)

// Definitions is the static, versioned progression reward configuration:
// ordered non-overlapping phase brackets plus one-time milestones keyed by
// level. Loaded once at startup, read-only at award time - changing it
// never requires replaying history.
type Definitions struct {
	Version            string
	StatPointsPerLevel int64

	phases     []domain.PhaseDefinition
	milestones map[int][]domain.MilestoneDefinition
}

// definitionsFile is the JSON shape under configs/
type definitionsFile struct {
	Version            string                       `json:"version"`
	StatPointsPerLevel int64                        `json:"stat_points_per_level"`
	Phases             []domain.PhaseDefinition     `json:"phases"`
	Milestones         []domain.MilestoneDefinition `json:"milestones"`
}

// DefinitionsSchemaPath is resolved relative to the project root
const DefinitionsSchemaPath = "configs/schemas/progression.schema.json"

// LoadDefinitions reads and validates a definitions JSON file
func LoadDefinitions(path string) (*Definitions, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read definitions file: %w", err)
	}

	// Validate against schema first
	if err := validation.NewSchemaValidator().ValidateBytes(data, DefinitionsSchemaPath); err != nil {
		return nil, fmt.Errorf("schema validation failed for %s: %w", path, err)
	}

	var file definitionsFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse definitions file: %w", err)
	}

	return NewDefinitions(file.Version, file.StatPointsPerLevel, file.Phases, file.Milestones)
}

// NewDefinitions validates and indexes phase and milestone configuration
func NewDefinitions(version string, statPointsPerLevel int64, phases []domain.PhaseDefinition, milestones []domain.MilestoneDefinition) (*Definitions, error) {
	if statPointsPerLevel < 0 {
		return nil, fmt.Errorf("%w: negative stat points per level", domain.ErrBadMilestoneConfig)
	}

	sorted := make([]domain.PhaseDefinition, len(phases))
	copy(sorted, phases)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].MinLevel < sorted[j].MinLevel })

	for i, p := range sorted {
		if p.Name == "" {
			return nil, fmt.Errorf("%w: phase %d has no name", domain.ErrBadPhaseConfig, i)
		}
		if p.MinLevel < 1 || p.MaxLevel < p.MinLevel {
			return nil, fmt.Errorf("%w: phase %q range [%d,%d]", domain.ErrBadPhaseConfig, p.Name, p.MinLevel, p.MaxLevel)
		}
		if p.BonusPercent < 0 {
			return nil, fmt.Errorf("%w: phase %q negative bonus", domain.ErrBadPhaseConfig, p.Name)
		}
		if i > 0 && p.MinLevel <= sorted[i-1].MaxLevel {
			return nil, fmt.Errorf("%w: phase %q overlaps %q", domain.ErrBadPhaseConfig, p.Name, sorted[i-1].Name)
		}
	}

	byLevel := make(map[int][]domain.MilestoneDefinition, len(milestones))
	seen := make(map[string]bool, len(milestones))
	for _, m := range milestones {
		if m.ID == "" {
			return nil, fmt.Errorf("%w: milestone with empty id", domain.ErrBadMilestoneConfig)
		}
		if seen[m.ID] {
			return nil, fmt.Errorf("%w: duplicate milestone id %q", domain.ErrBadMilestoneConfig, m.ID)
		}
		seen[m.ID] = true
		if m.Level < 1 {
			return nil, fmt.Errorf("%w: milestone %q at level %d", domain.ErrBadMilestoneConfig, m.ID, m.Level)
		}
		byLevel[m.Level] = append(byLevel[m.Level], m)
	}

	return &Definitions{
		Version:            version,
		StatPointsPerLevel: statPointsPerLevel,
		phases:             sorted,
		milestones:         byLevel,
	}, nil
}

// PhaseForLevel returns the phase bracket covering the given level,
// or nil when no bracket covers it.
func (d *Definitions) PhaseForLevel(level int) *domain.PhaseDefinition {
	for i := range d.phases {
		if d.phases[i].Covers(level) {
			p := d.phases[i]
			return &p
		}
	}
	return nil
}

// BonusPercentForLevel returns the phase bonus for a level, zero when
// the level falls outside every bracket.
func (d *Definitions) BonusPercentForLevel(level int) int {
	if p := d.PhaseForLevel(level); p != nil {
		return p.BonusPercent
	}
	return 0
}

// MilestonesAtLevel returns the one-time milestones tied to a level
func (d *Definitions) MilestonesAtLevel(level int) []domain.MilestoneDefinition {
	return d.milestones[level]
}
