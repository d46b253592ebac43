package bootstrap

import (
	"fmt"
	"log/slog"

	"github.com/ashveil/progression-engine/internal/config"
	"github.com/ashveil/progression-engine/internal/curve"
	"github.com/ashveil/progression-engine/internal/milestone"
)

// LoadRewardDefinitions loads and validates the versioned phase and
// milestone configuration from disk. Definitions are read once at
// startup; award-time code only ever sees the validated result.
func LoadRewardDefinitions(cfg *config.Config) (*milestone.Definitions, error) {
	defs, err := milestone.LoadDefinitions(cfg.DefinitionsPath)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedLoadDefinitions, err)
	}

	slog.Info(LogMsgDefinitionsLoaded,
		"path", cfg.DefinitionsPath,
		"version", defs.Version,
		"stat_points_per_level", defs.StatPointsPerLevel)

	return defs, nil
}

// BuildCurves constructs the experience curve catalog shared by the
// ledger, the summary projection, and the HTTP surface.
func BuildCurves() (*curve.Catalog, error) {
	catalog, err := curve.NewCatalog(curve.DefaultLevelParams, curve.DefaultTierParams)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedBuildCurves, err)
	}
	return catalog, nil
}
