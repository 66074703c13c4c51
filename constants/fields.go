package constants

import "strings"

// Field is the canonical name of a measurement field produced by vision analysis.
type Field string

const (
	FieldChest        Field = "chest_circumference_cm"
	FieldWaist        Field = "waist_circumference_cm"
	FieldHip          Field = "hip_circumference_cm"
	FieldBicep        Field = "bicep_circumference_cm"
	FieldThigh        Field = "thigh_circumference_cm"
	FieldCalf         Field = "calf_circumference_cm"
	FieldShoulder     Field = "shoulder_width_cm"
	FieldBodyFat      Field = "body_fat_percent"
	FieldWeight       Field = "estimated_weight_kg"
	FieldPosture      Field = "posture_rating"
	FieldMuscleDef    Field = "muscle_definition"
)

// Unit conversion factors applied when a value carries a non-metric suffix.
const (
	InchesToCm = 2.54
	LbsToKg    = 0.453592
)

// FieldRange is the anatomically plausible window for a numeric field.
// Values outside the window are flagged for review, never silently accepted.
type FieldRange struct {
	Min float64
	Max float64
}

// MeasurementRanges maps each numeric field to its plausible range
// (circumferences and widths in cm, body fat in percent, weight in kg).
var MeasurementRanges = map[Field]FieldRange{
	FieldChest:    {Min: 50, Max: 200},
	FieldWaist:    {Min: 50, Max: 200},
	FieldHip:      {Min: 50, Max: 200},
	FieldBicep:    {Min: 15, Max: 70},
	FieldThigh:    {Min: 30, Max: 100},
	FieldCalf:     {Min: 20, Max: 70},
	FieldShoulder: {Min: 30, Max: 80},
	FieldBodyFat:  {Min: 3, Max: 60},
	FieldWeight:   {Min: 30, Max: 300},
	FieldPosture:  {Min: 0, Max: 10},
}

// RequiredFields drive the completeness score. Weight and posture are
// optional: their absence is not a diagnostic.
var RequiredFields = []Field{
	FieldChest,
	FieldWaist,
	FieldHip,
	FieldBicep,
	FieldThigh,
	FieldCalf,
	FieldShoulder,
	FieldBodyFat,
	FieldMuscleDef,
}

// fieldSynonyms maps normalized alternate spellings the model tends to emit
// onto canonical field names. Keys are already snake_case lowercase.
var fieldSynonyms = map[string]Field{
	"chest":               FieldChest,
	"chest_cm":            FieldChest,
	"chest_circumference": FieldChest,
	"waist":               FieldWaist,
	"waist_cm":            FieldWaist,
	"waist_circumference": FieldWaist,
	"hip":                 FieldHip,
	"hips":                FieldHip,
	"hip_cm":              FieldHip,
	"hip_circumference":   FieldHip,
	"bicep":               FieldBicep,
	"bicep_cm":            FieldBicep,
	"arm":                 FieldBicep,
	"thigh":               FieldThigh,
	"thigh_cm":            FieldThigh,
	"calf":                FieldCalf,
	"calf_cm":             FieldCalf,
	"shoulder":            FieldShoulder,
	"shoulders":           FieldShoulder,
	"shoulder_width":      FieldShoulder,
	"bodyfat":             FieldBodyFat,
	"body_fat":            FieldBodyFat,
	"bf_percent":          FieldBodyFat,
	"body_fat_percentage": FieldBodyFat,
	"weight":              FieldWeight,
	"weight_kg":           FieldWeight,
	"estimated_weight":    FieldWeight,
	"posture":             FieldPosture,
	"posture_score":       FieldPosture,
	"muscle_def":          FieldMuscleDef,
	"muscle":              FieldMuscleDef,
	"definition":          FieldMuscleDef,
}

// CanonicalField resolves an extracted key to its canonical field name.
// Matching is case-, whitespace- and underscore-insensitive and accepts the
// known synonym set. Returns false if the key is not a recognized field.
func CanonicalField(key string) (Field, bool) {
	norm := normalizeKey(key)
	if f, ok := fieldSynonyms[norm]; ok {
		return f, true
	}
	for f := range MeasurementRanges {
		if norm == string(f) {
			return f, true
		}
	}
	if norm == string(FieldMuscleDef) {
		return FieldMuscleDef, true
	}
	return "", false
}

// normalizeKey lowercases, trims, converts camelCase to snake_case and
// collapses spaces/dashes into underscores.
func normalizeKey(key string) string {
	key = strings.TrimSpace(key)
	var b strings.Builder
	for i, r := range key {
		switch {
		case r >= 'A' && r <= 'Z':
			if i > 0 {
				prev := rune(key[i-1])
				if prev >= 'a' && prev <= 'z' || prev >= '0' && prev <= '9' {
					b.WriteByte('_')
				}
			}
			b.WriteRune(r + ('a' - 'A'))
		case r == ' ' || r == '-':
			b.WriteByte('_')
		default:
			b.WriteRune(r)
		}
	}
	out := b.String()
	for strings.Contains(out, "__") {
		out = strings.ReplaceAll(out, "__", "_")
	}
	return strings.Trim(out, "_")
}
