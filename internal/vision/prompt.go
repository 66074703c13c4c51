package vision

import (
	"fmt"
	"strings"
)

// BuildSystemPrompt composes the system message: role, measurement fields with
// exact key names and units, and strict output formatting rules.
func BuildSystemPrompt() string {
	parts := []string{
		"You are an expert body composition analyst reviewing fitness progress photos.",
		"Estimate body measurements from the three photos (front, side, back views of the same person).",
		"Return ONLY a JSON object with these exact keys, no markdown, no commentary:",
		`{"chest_circumference_cm": number, "waist_circumference_cm": number, "hip_circumference_cm": number,` +
			` "bicep_circumference_cm": number, "thigh_circumference_cm": number, "calf_circumference_cm": number,` +
			` "shoulder_width_cm": number, "body_fat_percent": number, "estimated_weight_kg": number,` +
			` "posture_rating": number, "muscle_definition": "low"|"moderate"|"high"}`,
		"All circumferences and widths in centimeters. body_fat_percent is 3-60. posture_rating is 0-10.",
		"Use the subject's height as the scale reference. If a value cannot be estimated, use null.",
	}
	return strings.Join(parts, "\n")
}

// BuildUserPrompt describes the subject so the model can anchor its estimates.
func BuildUserPrompt(user UserContext) string {
	var sb strings.Builder
	sb.WriteString("Analyze the attached photos.")
	if user.HeightCm > 0 {
		fmt.Fprintf(&sb, " Subject height: %.1f cm.", user.HeightCm)
	}
	if user.WeightKg > 0 {
		fmt.Fprintf(&sb, " Reported weight: %.1f kg.", user.WeightKg)
	}
	if user.AgeYears > 0 {
		fmt.Fprintf(&sb, " Age: %d.", user.AgeYears)
	}
	if g := strings.TrimSpace(user.Gender); g != "" {
		fmt.Fprintf(&sb, " Gender: %s.", g)
	}
	if goal := strings.TrimSpace(user.Goal); goal != "" {
		fmt.Fprintf(&sb, " Training goal: %s.", goal)
	}
	sb.WriteString("\n\nReturn ONLY the JSON object.")
	return sb.String()
}
