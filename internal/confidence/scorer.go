package confidence

import (
	"log/slog"

	"github.com/DandaAkhilReddy/reddy/constants"
	"github.com/DandaAkhilReddy/reddy/internal/common"
	"github.com/DandaAkhilReddy/reddy/internal/extraction"
	"github.com/DandaAkhilReddy/reddy/internal/validation"
)

// Inputs carries everything the scorer weighs for one scan.
type Inputs struct {
	Validation       *validation.Result
	Extraction       *extraction.Result
	AngleConfidences map[constants.Angle]float64
}

// Breakdown is the per-component scoring result. Components are 0-1; Total is
// their weighted sum. Accepted reflects the configured threshold.
type Breakdown struct {
	Completeness float64 `json:"completeness"`
	Range        float64 `json:"range"`
	Strategy     float64 `json:"strategy"`
	Angle        float64 `json:"angle"`
	Consistency  float64 `json:"consistency"`
	Total        float64 `json:"total"`
	Accepted     bool    `json:"accepted"`
}

// Scorer computes the weighted confidence score that gates scan acceptance.
type Scorer struct {
	cfg      common.ConfidenceConfig
	minAngle float64
	logger   *slog.Logger
}

func NewScorer(cfg common.ConfidenceConfig, minAngleConfidence float64, logger *slog.Logger) *Scorer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scorer{cfg: cfg, minAngle: minAngleConfidence, logger: logger}
}

func (s *Scorer) Score(in Inputs) *Breakdown {
	b := &Breakdown{}
	if in.Validation != nil {
		b.Completeness = in.Validation.Completeness
		b.Range = rangeScore(in.Validation)
		b.Consistency = consistencyScore(in.Validation)
	}
	if in.Extraction != nil {
		b.Strategy = in.Extraction.Reliability
	}
	b.Angle = s.angleScore(in.AngleConfidences)

	b.Total = s.cfg.WeightCompleteness*b.Completeness +
		s.cfg.WeightRange*b.Range +
		s.cfg.WeightStrategy*b.Strategy +
		s.cfg.WeightAngle*b.Angle +
		s.cfg.WeightConsistency*b.Consistency
	b.Accepted = b.Total >= s.cfg.MinScore

	s.logger.Debug("confidence.scored",
		"total", b.Total,
		"accepted", b.Accepted,
		"completeness", b.Completeness,
		"range", b.Range,
		"strategy", b.Strategy,
		"angle", b.Angle,
		"consistency", b.Consistency)
	return b
}

// rangeScore is the share of extracted numeric values that passed range
// checks. A document with nothing numeric scores zero.
func rangeScore(v *validation.Result) float64 {
	total := len(v.Fields) + len(v.RequiringReview)
	if total == 0 {
		return 0
	}
	return float64(len(v.Fields)) / float64(total)
}

// angleScore averages per-photo angle confidences over the required set. If
// any required angle falls below the floor, the whole component is halved:
// one misclassified photo taints every measurement.
func (s *Scorer) angleScore(confs map[constants.Angle]float64) float64 {
	if len(confs) == 0 {
		return 0
	}
	sum := 0.0
	n := 0
	belowFloor := false
	for _, angle := range constants.RequiredAngles {
		c, ok := confs[angle]
		if !ok {
			belowFloor = true
			continue
		}
		if c < s.minAngle {
			belowFloor = true
		}
		sum += c
		n++
	}
	if n == 0 {
		return 0
	}
	score := sum / float64(n)
	if belowFloor {
		score *= 0.5
	}
	return score
}

// consistencyScore runs cross-field plausibility checks and returns the pass
// ratio. Checks only apply when both fields are present, so a sparse document
// is not penalized twice for missing data.
func consistencyScore(v *validation.Result) float64 {
	f := v.Fields
	type check struct {
		applicable bool
		ok         bool
	}
	ratio := func(num, den constants.Field, lo, hi float64) check {
		a, aok := f[num]
		b, bok := f[den]
		if !aok || !bok || b == 0 {
			return check{}
		}
		r := a / b
		return check{applicable: true, ok: r >= lo && r <= hi}
	}

	checks := []check{
		ratio(constants.FieldWaist, constants.FieldChest, 0.55, 1.25),
		ratio(constants.FieldHip, constants.FieldChest, 0.60, 1.40),
		ratio(constants.FieldCalf, constants.FieldThigh, 0.45, 0.90),
		ratio(constants.FieldBicep, constants.FieldThigh, 0.40, 0.90),
	}

	if bf, ok := f[constants.FieldBodyFat]; ok {
		coherent := true
		switch v.MuscleDefinition {
		case constants.MuscleHigh:
			coherent = bf <= 30
		case constants.MuscleLow:
			coherent = bf >= 10
		}
		checks = append(checks, check{applicable: true, ok: coherent})
	}

	applicable, passed := 0, 0
	for _, c := range checks {
		if !c.applicable {
			continue
		}
		applicable++
		if c.ok {
			passed++
		}
	}
	if applicable == 0 {
		return 1.0
	}
	return float64(passed) / float64(applicable)
}
