package constants

import "strings"

// BodyType is the classification assigned from body ratios.
type BodyType string

const (
	VTaper      BodyType = "V-Taper"
	Classic     BodyType = "Classic"
	Rectangular BodyType = "Rectangular"
	Apple       BodyType = "Apple"
	Pear        BodyType = "Pear"
	Balanced    BodyType = "Balanced"
)

var allBodyTypes = []BodyType{VTaper, Classic, Rectangular, Apple, Pear, Balanced}

// BodyTypesAsStrings returns all body type labels.
func BodyTypesAsStrings() []string {
	out := make([]string, len(allBodyTypes))
	for i, bt := range allBodyTypes {
		out[i] = string(bt)
	}
	return out
}

// CompactBodyType strips spaces and dashes for use inside signature IDs,
// e.g. "V-Taper" -> "VTaper".
func CompactBodyType(bt BodyType) string {
	s := strings.ReplaceAll(string(bt), " ", "")
	return strings.ReplaceAll(s, "-", "")
}

// ParseBodyType resolves a compact or spelled-out label back to a BodyType.
func ParseBodyType(input string) (BodyType, bool) {
	norm := strings.ToLower(strings.TrimSpace(input))
	for _, bt := range allBodyTypes {
		if norm == strings.ToLower(string(bt)) || norm == strings.ToLower(CompactBodyType(bt)) {
			return bt, true
		}
	}
	return Rectangular, false
}

// MuscleDefinition is the qualitative muscle visibility label.
type MuscleDefinition string

const (
	MuscleLow      MuscleDefinition = "low"
	MuscleModerate MuscleDefinition = "moderate"
	MuscleHigh     MuscleDefinition = "high"
)

// CanonicalMuscleDefinition normalizes model output to a known label.
// Unrecognized values fall back to moderate and report ok=false.
func CanonicalMuscleDefinition(input string) (MuscleDefinition, bool) {
	switch strings.ToLower(strings.TrimSpace(input)) {
	case "low", "minimal", "soft":
		return MuscleLow, true
	case "moderate", "medium", "average":
		return MuscleModerate, true
	case "high", "defined", "shredded", "visible":
		return MuscleHigh, true
	default:
		return MuscleModerate, false
	}
}
