package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScorePayload_DecodesBothHistoricalShapes(t *testing.T) {
	// Older shape: three dimensions only.
	var old ScorePayload
	require.NoError(t, json.Unmarshal([]byte(`{
		"grounding_score": 4,
		"consistency_score": 5,
		"depth_score": 3,
		"revision_required": false,
		"feedback": [],
		"citations_used": ["a.md"]
	}`), &old))

	require.NotNil(t, old.GroundingScore)
	assert.Equal(t, 4.0, *old.GroundingScore)
	assert.Nil(t, old.SpecificityScore, "older payloads have no specificity")
	assert.Equal(t, []string{"a.md"}, old.CitationsUsed)

	// Newer shape: four dimensions plus extended fields the client tolerates.
	var extended ScorePayload
	require.NoError(t, json.Unmarshal([]byte(`{
		"grounding_score": 8,
		"consistency_score": 9,
		"depth_score": 7,
		"specificity_score": 6,
		"revision_required": true,
		"feedback": ["tighten the intro"],
		"citations_used": [],
		"strengths": ["well sourced"],
		"average_score": 7,
		"reject": false
	}`), &extended))

	require.NotNil(t, extended.SpecificityScore)
	assert.Equal(t, 6.0, *extended.SpecificityScore)
	assert.True(t, extended.RevisionRequired)
	assert.Equal(t, []string{"well sourced"}, extended.Strengths)
}

func TestScorePayload_MalformedFieldsBecomeAbsent(t *testing.T) {
	var p ScorePayload
	require.NoError(t, json.Unmarshal([]byte(`{
		"grounding_score": "high",
		"consistency_score": null,
		"depth_score": 6,
		"feedback": "not a list",
		"revision_required": "maybe"
	}`), &p))

	assert.Nil(t, p.GroundingScore, "string score must be treated as absent")
	assert.Nil(t, p.ConsistencyScore, "null score must be treated as absent")
	require.NotNil(t, p.DepthScore)
	assert.Equal(t, 6.0, *p.DepthScore)
	assert.Nil(t, p.Feedback)
	assert.False(t, p.RevisionRequired)
}

func TestScorePayload_NonObjectFailsDecode(t *testing.T) {
	var p ScorePayload
	assert.Error(t, json.Unmarshal([]byte(`[1,2,3]`), &p))
}

func TestValidMode(t *testing.T) {
	assert.True(t, ValidMode(ModeRecruiter))
	assert.True(t, ValidMode(ModeEngineer))
	assert.True(t, ValidMode(ModeAMA))
	assert.False(t, ValidMode("pirate"))
	assert.False(t, ValidMode(""))
}
