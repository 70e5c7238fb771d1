package models

import (
	"time"
)

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

type InteractionMode string

const (
	ModeRecruiter InteractionMode = "recruiter"
	ModeEngineer  InteractionMode = "engineer"
	ModeAMA       InteractionMode = "ama"
)

// ValidMode reports whether m is one of the three defined interaction modes.
func ValidMode(m InteractionMode) bool {
	switch m {
	case ModeRecruiter, ModeEngineer, ModeAMA:
		return true
	}
	return false
}

// Message is one turn in the conversation. The log is append-only: messages
// are never reordered or edited after insertion, only cleared wholesale.
type Message struct {
	ID        string          `json:"id"`
	Role      Role            `json:"role"`
	Content   string          `json:"content"`
	Mode      InteractionMode `json:"mode,omitempty"`
	Score     *CanonicalScore `json:"score,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
}

type Dimension string

const (
	DimGrounding   Dimension = "grounding"
	DimConsistency Dimension = "consistency"
	DimDepth       Dimension = "depth"
	DimSpecificity Dimension = "specificity"
)

// Dimensions lists the fixed dimension set in presentation order.
var Dimensions = []Dimension{DimGrounding, DimConsistency, DimDepth, DimSpecificity}

// CanonicalScore is the normalized judge output for one assistant message.
// Dimension values are on the canonical 0-10 scale; absent dimensions are
// missing from the map, never stored as zero.
type CanonicalScore struct {
	Dimensions    map[Dimension]float64 `json:"dimensions"`
	Aggregate     float64               `json:"aggregate"`
	Label         string                `json:"label"`
	QualityFlag   string                `json:"quality_flag"`
	Feedback      []string              `json:"feedback,omitempty"`
	CitationsUsed []string              `json:"citations_used,omitempty"`
}

// Wire types for the portfolio assistant API.

type ChatRequest struct {
	Message   string `json:"message"`
	Mode      string `json:"mode,omitempty"`
	SessionID string `json:"session_id,omitempty"`
}

type ChatResponse struct {
	Response   string        `json:"response"`
	Mode       string        `json:"mode"`
	JudgeScore *ScorePayload `json:"judge_score,omitempty"`
	Sources    []string      `json:"sources"`
}

// ScorePayload is the raw judge score as sent by the service. The payload
// shape evolved over time: older responses carry three dimensions on a 0-5
// scale, newer ones four dimensions on 0-10, and any field may be missing.
// Fields are pointers so absence survives decoding.
type ScorePayload struct {
	GroundingScore   *float64 `json:"grounding_score,omitempty"`
	ConsistencyScore *float64 `json:"consistency_score,omitempty"`
	DepthScore       *float64 `json:"depth_score,omitempty"`
	SpecificityScore *float64 `json:"specificity_score,omitempty"`
	RevisionRequired bool     `json:"revision_required,omitempty"`
	Feedback         []string `json:"feedback,omitempty"`
	CitationsUsed    []string `json:"citations_used,omitempty"`
	Strengths        []string `json:"strengths,omitempty"`
}

type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}
