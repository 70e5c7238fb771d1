package models

import (
	"encoding/json"
)

// UnmarshalJSON decodes a judge score leniently. A dimension that is absent
// or not a number is left nil rather than failing the whole chat response;
// list fields that fail to decode are dropped the same way.
func (p *ScorePayload) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	p.GroundingScore = numberField(raw, "grounding_score")
	p.ConsistencyScore = numberField(raw, "consistency_score")
	p.DepthScore = numberField(raw, "depth_score")
	p.SpecificityScore = numberField(raw, "specificity_score")

	if v, ok := raw["revision_required"]; ok {
		var b bool
		if err := json.Unmarshal(v, &b); err == nil {
			p.RevisionRequired = b
		}
	}

	p.Feedback = stringListField(raw, "feedback")
	p.CitationsUsed = stringListField(raw, "citations_used")
	p.Strengths = stringListField(raw, "strengths")

	return nil
}

func numberField(raw map[string]json.RawMessage, key string) *float64 {
	v, ok := raw[key]
	if !ok {
		return nil
	}
	var f float64
	if err := json.Unmarshal(v, &f); err != nil {
		return nil
	}
	return &f
}

func stringListField(raw map[string]json.RawMessage, key string) []string {
	v, ok := raw[key]
	if !ok {
		return nil
	}
	var list []string
	if err := json.Unmarshal(v, &list); err != nil {
		return nil
	}
	return list
}
