package score

import (
	"math"

	"github.com/rs/zerolog"

	"portfolio-chat/internal/models"
)

// Quality labels derived from the 0-10 aggregate.
const (
	LabelExcellent  = "Excellent"
	LabelGood       = "Good"
	LabelAcceptable = "Acceptable"
	LabelPoor       = "Poor"
	LabelVeryPoor   = "Very Poor"
)

// Coarse three-way flag for summary display.
const (
	FlagProfessional  = "professional quality"
	FlagCouldImprove  = "could be improved"
	FlagNeedsRevision = "needs revision"
)

// Per-dimension severity buckets used for bar rendering.
type Severity string

const (
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
	SeverityLow      Severity = "low"
	SeverityCritical Severity = "critical"
)

// Normalizer converts raw judge payloads into canonical scores. Dimension
// values are trusted as already being on the 0-10 scale; the service gives
// no scale indicator, so no magnitude-based rescaling is attempted (older
// 0-5 payloads are a known data-contract gap, not something we guess at).
type Normalizer struct {
	logger *zerolog.Logger
}

func NewNormalizer(logger *zerolog.Logger) *Normalizer {
	return &Normalizer{logger: logger}
}

// Normalize builds a canonical score from a raw payload. It never fails:
// missing dimensions are excluded from the aggregate, never counted as zero.
// Returns nil only for a nil payload.
func (n *Normalizer) Normalize(payload *models.ScorePayload) *models.CanonicalScore {
	if payload == nil {
		return nil
	}

	dims := make(map[models.Dimension]float64, len(models.Dimensions))
	sum := 0.0
	for dim, value := range map[models.Dimension]*float64{
		models.DimGrounding:   payload.GroundingScore,
		models.DimConsistency: payload.ConsistencyScore,
		models.DimDepth:       payload.DepthScore,
		models.DimSpecificity: payload.SpecificityScore,
	} {
		if value == nil {
			continue
		}
		dims[dim] = *value
		sum += *value
	}

	aggregate := 0.0
	if len(dims) > 0 {
		aggregate = sum / float64(len(dims))
	}

	feedback := payload.Feedback
	if len(payload.Strengths) > 0 {
		feedback = append(append([]string{}, feedback...), payload.Strengths...)
	}

	result := &models.CanonicalScore{
		Dimensions:    dims,
		Aggregate:     aggregate,
		Label:         Label(aggregate),
		QualityFlag:   QualityFlag(aggregate),
		Feedback:      feedback,
		CitationsUsed: payload.CitationsUsed,
	}

	n.logger.Debug().
		Int("dimensions", len(dims)).
		Float64("aggregate", aggregate).
		Str("label", result.Label).
		Msg("score normalized")

	return result
}

// Label buckets a 0-10 aggregate into a qualitative label. Thresholds are
// closed-open except the top bucket.
func Label(aggregate float64) string {
	switch {
	case aggregate >= 9:
		return LabelExcellent
	case aggregate >= 7:
		return LabelGood
	case aggregate >= 5:
		return LabelAcceptable
	case aggregate >= 3:
		return LabelPoor
	default:
		return LabelVeryPoor
	}
}

// QualityFlag gives the coarse three-way verdict used in the summary line.
func QualityFlag(aggregate float64) string {
	switch {
	case aggregate >= 7:
		return FlagProfessional
	case aggregate >= 5:
		return FlagCouldImprove
	default:
		return FlagNeedsRevision
	}
}

// DimensionSeverity buckets a single dimension value for bar coloring.
// Independent of the aggregate label thresholds.
func DimensionSeverity(value float64) Severity {
	switch {
	case value >= 8:
		return SeverityHigh
	case value >= 6:
		return SeverityMedium
	case value >= 4:
		return SeverityLow
	default:
		return SeverityCritical
	}
}

// DisplayAggregate rounds an aggregate to one decimal place for rendering.
// The canonical score keeps the unrounded value.
func DisplayAggregate(aggregate float64) float64 {
	return math.Round(aggregate*10) / 10
}
