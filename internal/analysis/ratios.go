package analysis

import (
	"math"

	"github.com/DandaAkhilReddy/reddy/constants"
)

// Ratios are the derived proportions used for classification and scoring.
// A ratio is zero when either of its inputs was not measured.
type Ratios struct {
	ShoulderToWaist float64 `json:"shoulder_to_waist"`
	ChestToWaist    float64 `json:"chest_to_waist"`
	WaistToHip      float64 `json:"waist_to_hip"`
	ThighToCalf     float64 `json:"thigh_to_calf"`

	GoldenRatioDeviation float64 `json:"golden_ratio_deviation"`
	GoldenRatioScore     float64 `json:"golden_ratio_score"`
}

// ComputeRatios derives proportions from validated measurements. Shoulder
// width is a frontal linear measure while waist is a circumference, so the
// waist is reduced to an approximate width (circumference over pi) before the
// shoulder-to-waist ratio is taken.
func ComputeRatios(fields map[constants.Field]float64, goldenRatio float64) Ratios {
	var r Ratios

	waist := fields[constants.FieldWaist]
	if shoulder, ok := fields[constants.FieldShoulder]; ok && waist > 0 {
		r.ShoulderToWaist = round2(shoulder / (waist / math.Pi))
	}
	if chest, ok := fields[constants.FieldChest]; ok && waist > 0 {
		r.ChestToWaist = round2(chest / waist)
	}
	if hip, ok := fields[constants.FieldHip]; ok && hip > 0 && waist > 0 {
		r.WaistToHip = round2(waist / hip)
	}
	if thigh, ok := fields[constants.FieldThigh]; ok {
		if calf, ok := fields[constants.FieldCalf]; ok && calf > 0 {
			r.ThighToCalf = round2(thigh / calf)
		}
	}

	if r.ShoulderToWaist > 0 {
		r.GoldenRatioDeviation = round2(math.Abs(r.ShoulderToWaist - goldenRatio))
		r.GoldenRatioScore = deviationScore(r.GoldenRatioDeviation)
	}
	return r
}

// deviationScore maps a golden ratio deviation to 0-100. Deviations of 0.5 or
// more score zero.
func deviationScore(dev float64) float64 {
	if dev >= 0.5 {
		return 0
	}
	return round1(100 * (1 - dev/0.5))
}

func round1(v float64) float64 { return math.Round(v*10) / 10 }
func round2(v float64) float64 { return math.Round(v*100) / 100 }
