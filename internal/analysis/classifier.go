package analysis

import (
	"math"

	"github.com/DandaAkhilReddy/reddy/constants"
	"github.com/DandaAkhilReddy/reddy/internal/common"
)

// Classification is a body type plus how firmly the rules matched.
type Classification struct {
	BodyType   constants.BodyType `json:"body_type"`
	Confidence float64            `json:"confidence"`
	Rule       string             `json:"rule"`
}

// Classifier assigns a body type from ratios and measurements using ordered
// deterministic rules. The first rule that fires wins; Rectangular is the
// fallback when nothing else matches.
type Classifier struct {
	cfg common.AnalysisConfig
}

func NewClassifier(cfg common.AnalysisConfig) *Classifier {
	return &Classifier{cfg: cfg}
}

func (c *Classifier) Classify(r Ratios, fields map[constants.Field]float64) Classification {
	bodyFat, hasBF := fields[constants.FieldBodyFat]
	chest, hasChest := fields[constants.FieldChest]
	hip, hasHip := fields[constants.FieldHip]

	switch {
	case r.ShoulderToWaist >= c.cfg.VTaperMinShoulderWaist && r.ChestToWaist >= 1.3:
		return Classification{constants.VTaper, 0.85, "shoulder_waist+chest_waist"}
	case r.WaistToHip > c.cfg.AppleMinWaistHip && hasBF && bodyFat > 20:
		return Classification{constants.Apple, 0.80, "waist_hip+body_fat"}
	case r.WaistToHip > 0 && r.WaistToHip < c.cfg.PearMaxWaistHip && hasHip && hasChest && hip > chest:
		return Classification{constants.Pear, 0.80, "waist_hip+hip_chest"}
	case r.ShoulderToWaist >= 1.3 && r.ChestToWaist >= 1.2:
		return Classification{constants.Classic, 0.75, "shoulder_waist+chest_waist"}
	case r.ShoulderToWaist > 0 && math.Abs(r.ShoulderToWaist-c.cfg.GoldenRatio) <= 0.15:
		return Classification{constants.Balanced, 0.70, "near_golden"}
	default:
		return Classification{constants.Rectangular, 0.60, "fallback"}
	}
}
