package analysis

import (
	"math"

	"github.com/DandaAkhilReddy/reddy/constants"
	"github.com/DandaAkhilReddy/reddy/internal/common"
)

// AestheticScore is the 0-100 physique score with its components.
type AestheticScore struct {
	GoldenRatio float64 `json:"golden_ratio"`
	Symmetry    float64 `json:"symmetry"`
	Composition float64 `json:"composition"`
	Posture     float64 `json:"posture"`
	Total       float64 `json:"total"`
}

// AestheticScorer combines proportion, symmetry, body composition and posture
// into one weighted score.
type AestheticScorer struct {
	cfg common.AnalysisConfig
}

func NewAestheticScorer(cfg common.AnalysisConfig) *AestheticScorer {
	return &AestheticScorer{cfg: cfg}
}

func (s *AestheticScorer) Score(r Ratios, fields map[constants.Field]float64) AestheticScore {
	a := AestheticScore{
		GoldenRatio: r.GoldenRatioScore,
		Symmetry:    symmetryScore(fields),
		Composition: compositionScore(fields),
		Posture:     postureScore(fields),
	}
	a.Total = round1(s.cfg.WeightGoldenRatio*a.GoldenRatio +
		s.cfg.WeightSymmetry*a.Symmetry +
		s.cfg.WeightComposition*a.Composition +
		s.cfg.WeightPosture*a.Posture)
	return a
}

// symmetryScore rewards balanced arm and calf development. A bicep/calf ratio
// of 1.0 is the classical ideal; half a unit of deviation zeroes the score.
func symmetryScore(fields map[constants.Field]float64) float64 {
	bicep, hasBicep := fields[constants.FieldBicep]
	calf, hasCalf := fields[constants.FieldCalf]
	if !hasBicep || !hasCalf || calf == 0 {
		return 50
	}
	dev := math.Abs(bicep/calf - 1.0)
	if dev >= 0.5 {
		return 0
	}
	return round1(100 * (1 - dev/0.5))
}

// compositionScore maps body fat onto 0-100. Anything at or under 12% scores
// full marks, sliding linearly to zero at 45%.
func compositionScore(fields map[constants.Field]float64) float64 {
	bf, ok := fields[constants.FieldBodyFat]
	if !ok {
		return 50
	}
	switch {
	case bf <= 12:
		return 100
	case bf >= 45:
		return 0
	default:
		return round1(100 * (45 - bf) / 33)
	}
}

func postureScore(fields map[constants.Field]float64) float64 {
	p, ok := fields[constants.FieldPosture]
	if !ok {
		return 50
	}
	return round1(p * 10)
}
