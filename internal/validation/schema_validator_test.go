package validation

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const progressionSchemaPath = "configs/schemas/progression.schema.json"

func TestValidateBytes_AcceptsValidDefinitions(t *testing.T) {
	doc := `{
		"version": "1.0",
		"stat_points_per_level": 5,
		"phases": [
			{"name": "novice", "title": "Novice", "min_level": 1, "max_level": 9, "bonus_percent": 0}
		],
		"milestones": [
			{"id": "first-steps", "level": 5, "rewards": [{"type": "title", "title": "Initiate"}]}
		]
	}`

	v := NewSchemaValidator()
	assert.NoError(t, v.ValidateBytes([]byte(doc), progressionSchemaPath))
}

func TestValidateBytes_RejectsUnknownRewardType(t *testing.T) {
	doc := `{
		"version": "1.0",
		"phases": [
			{"name": "novice", "title": "Novice", "min_level": 1, "max_level": 9}
		],
		"milestones": [
			{"id": "bad", "level": 5, "rewards": [{"type": "xp_doubler"}]}
		]
	}`

	v := NewSchemaValidator()
	err := v.ValidateBytes([]byte(doc), progressionSchemaPath)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "schema validation failed")
}

func TestValidateBytes_RejectsMissingRequiredField(t *testing.T) {
	doc := `{"phases": [{"name": "novice", "title": "Novice", "min_level": 1, "max_level": 9}]}`

	v := NewSchemaValidator()
	err := v.ValidateBytes([]byte(doc), progressionSchemaPath)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "schema validation failed")
}

func TestValidateBytes_MalformedJSON(t *testing.T) {
	v := NewSchemaValidator()
	err := v.ValidateBytes([]byte("{not json"), progressionSchemaPath)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse JSON data")
}

func TestValidateFile_AbsoluteSchemaPath(t *testing.T) {
	dir := t.TempDir()

	schemaPath := filepath.Join(dir, "thing.schema.json")
	schema := `{
		"$schema": "https://json-schema.org/draft/2020-12/schema",
		"type": "object",
		"required": ["name"],
		"properties": {"name": {"type": "string"}}
	}`
	require.NoError(t, os.WriteFile(schemaPath, []byte(schema), 0644))

	dataPath := filepath.Join(dir, "thing.json")
	require.NoError(t, os.WriteFile(dataPath, []byte(`{"name": "ok"}`), 0644))

	v := NewSchemaValidator()
	assert.NoError(t, v.ValidateFile(dataPath, schemaPath))

	badPath := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(badPath, []byte(`{"name": 7}`), 0644))
	assert.Error(t, v.ValidateFile(badPath, schemaPath))
}

func TestValidateBytes_SchemaNotFound(t *testing.T) {
	v := NewSchemaValidator()
	err := v.ValidateBytes([]byte(`{}`), "configs/schemas/does_not_exist.schema.json")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "schema file not found")
}
