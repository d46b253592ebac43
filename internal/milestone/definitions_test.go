package milestone

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefinitions_FromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "progression.json")
	content := `{
		"version": "2024-06",
		"stat_points_per_level": 3,
		"phases": [
			{"name": "novice", "title": "Novice", "min_level": 1, "max_level": 19, "bonus_percent": 0},
			{"name": "veteran", "title": "Veteran", "min_level": 20, "max_level": 9999, "bonus_percent": 20}
		],
		"milestones": [
			{"id": "first-steps", "level": 2, "rewards": [{"type": "currency", "amount": 100}]}
		]
	}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	defs, err := LoadDefinitions(path)
	require.NoError(t, err)

	assert.Equal(t, "2024-06", defs.Version)
	assert.Equal(t, int64(3), defs.StatPointsPerLevel)
	assert.Equal(t, 20, defs.BonusPercentForLevel(25))
	assert.Len(t, defs.MilestonesAtLevel(2), 1)
}

func TestLoadDefinitions_MissingFile(t *testing.T) {
	_, err := LoadDefinitions(filepath.Join(t.TempDir(), "nope.json"))
	assert.Error(t, err)
}

func TestLoadDefinitions_MalformedJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))

	_, err := LoadDefinitions(path)
	assert.Error(t, err)
}
