package recommend

import (
	"strings"

	"github.com/DandaAkhilReddy/reddy/constants"
	"github.com/DandaAkhilReddy/reddy/internal/pipeline"
)

// Recommendation is one piece of training or nutrition guidance derived from
// a scan.
type Recommendation struct {
	Category string `json:"category"` // "training", "nutrition", "posture", "rescan"
	Priority int    `json:"priority"` // 1 is highest
	Text     string `json:"text"`
}

// ForReport derives recommendations from a completed scan with ordered,
// deterministic rules. The output is advisory copy for the report UI, not
// medical guidance.
func ForReport(report *pipeline.Report) []Recommendation {
	var out []Recommendation

	if report.LowConfidence {
		out = append(out, Recommendation{
			Category: "rescan",
			Priority: 1,
			Text:     "Measurement confidence was low. Retake the photos in even lighting, fitted clothing, and a neutral stance for a more reliable reading.",
		})
	}

	bf, hasBF := report.Measurements[constants.FieldBodyFat]
	switch {
	case hasBF && bf >= 25:
		out = append(out, Recommendation{
			Category: "nutrition",
			Priority: 1,
			Text:     "Body fat is elevated. A moderate calorie deficit with high protein intake will preserve muscle while reducing fat.",
		})
	case hasBF && bf < 10:
		out = append(out, Recommendation{
			Category: "nutrition",
			Priority: 2,
			Text:     "Body fat is very low. Ensure adequate energy intake to support recovery and hormonal health.",
		})
	}

	switch report.BodyType {
	case constants.Apple:
		out = append(out, Recommendation{
			Category: "training",
			Priority: 1,
			Text:     "Waist-dominant proportions respond well to combining resistance training with regular low-intensity cardio.",
		})
	case constants.Pear:
		out = append(out, Recommendation{
			Category: "training",
			Priority: 2,
			Text:     "Prioritize upper-body pulling and pressing volume to balance lower-body dominance.",
		})
	case constants.Rectangular:
		out = append(out, Recommendation{
			Category: "training",
			Priority: 2,
			Text:     "Build shoulder width with overhead pressing and lateral raises to create taper.",
		})
	case constants.VTaper, constants.Classic:
		out = append(out, Recommendation{
			Category: "training",
			Priority: 3,
			Text:     "Proportions are strong. Maintain balanced programming and progressive overload.",
		})
	}

	if report.Ratios.GoldenRatioDeviation > 0.3 && report.Ratios.ShoulderToWaist > 0 &&
		report.Ratios.ShoulderToWaist < 1.618 {
		out = append(out, Recommendation{
			Category: "training",
			Priority: 2,
			Text:     "Shoulder-to-waist ratio is below the aesthetic target. Emphasize deltoid and lat development while keeping the waist tight.",
		})
	}

	if posture, ok := report.Measurements[constants.FieldPosture]; ok && posture < 6 {
		out = append(out, Recommendation{
			Category: "posture",
			Priority: 2,
			Text:     "Posture rating is below average. Add thoracic mobility work and rear-delt rows to your warmups.",
		})
	}

	if goal := strings.ToLower(report.UserGoal); strings.Contains(goal, "cut") && hasBF && bf < 15 {
		out = append(out, Recommendation{
			Category: "nutrition",
			Priority: 3,
			Text:     "You are already lean for a cutting phase. Consider a slower deficit to protect training performance.",
		})
	}

	return out
}
