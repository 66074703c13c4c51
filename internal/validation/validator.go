package validation

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cast"

	"github.com/DandaAkhilReddy/reddy/constants"
)

// FieldIssue records a value that mapped to a known field but failed range
// checks. The raw value is kept for review; it never enters the report.
type FieldIssue struct {
	Field  constants.Field `json:"field"`
	Raw    any             `json:"raw"`
	Reason string          `json:"reason"`
}

// Result is the outcome of normalizing one extracted document. Validation
// never hard-fails: a document with nothing usable simply yields zero fields
// and completeness 0.
type Result struct {
	Fields           map[constants.Field]float64 `json:"fields"`
	MuscleDefinition constants.MuscleDefinition  `json:"muscle_definition"`
	RequiringReview  []FieldIssue                `json:"fields_requiring_review,omitempty"`
	Dropped          []string                    `json:"dropped,omitempty"`
	ConvertedUnits   []string                    `json:"converted_units,omitempty"`
	Completeness     float64                     `json:"completeness"`
	SchemaOK         bool                        `json:"schema_ok"`
}

// Validator normalizes raw extracted documents into canonical metric fields.
type Validator struct {
	logger *slog.Logger
	schema map[string]any
}

func NewValidator(logger *slog.Logger) *Validator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Validator{
		logger: logger,
		schema: BuildMeasurementJSONSchema(),
	}
}

// Validate maps keys to canonical fields, coerces values to float64, converts
// imperial units, and flags out-of-range values for review.
func (v *Validator) Validate(data map[string]any) *Result {
	res := &Result{
		Fields:           make(map[constants.Field]float64),
		MuscleDefinition: constants.MuscleModerate,
	}
	muscleKnown := false

	if raw, err := json.Marshal(data); err == nil {
		res.SchemaOK = ValidateAgainstSchema(v.schema, raw) == nil
	}

	for key, value := range data {
		field, ok := constants.CanonicalField(key)
		if !ok {
			res.Dropped = append(res.Dropped, key+"(unknown)")
			continue
		}
		if field == constants.FieldMuscleDef {
			s, isStr := value.(string)
			if !isStr {
				res.Dropped = append(res.Dropped, key+"(type)")
				continue
			}
			md, known := constants.CanonicalMuscleDefinition(s)
			res.MuscleDefinition = md
			muscleKnown = known
			if !known {
				res.Dropped = append(res.Dropped, key+"(unrecognized)")
			}
			continue
		}
		if _, dup := res.Fields[field]; dup {
			res.Dropped = append(res.Dropped, key+"(duplicate)")
			continue
		}

		f, unit, err := coerceNumeric(value)
		if err != nil {
			res.Dropped = append(res.Dropped, key+"(non-numeric)")
			continue
		}
		converted, didConvert := convertUnits(field, f, unit)
		if didConvert {
			res.ConvertedUnits = append(res.ConvertedUnits, string(field))
		}

		rng, bounded := constants.MeasurementRanges[field]
		if bounded && (converted < rng.Min || converted > rng.Max) {
			res.RequiringReview = append(res.RequiringReview, FieldIssue{
				Field:  field,
				Raw:    value,
				Reason: fmt.Sprintf("value %.1f outside plausible range [%.0f, %.0f]", converted, rng.Min, rng.Max),
			})
			continue
		}
		res.Fields[field] = converted
	}

	res.Completeness = v.completeness(res.Fields, muscleKnown)
	if len(res.Dropped) > 0 || len(res.RequiringReview) > 0 {
		v.logger.Debug("validate.normalized",
			"fields", len(res.Fields),
			"dropped", len(res.Dropped),
			"review", len(res.RequiringReview))
	}
	return res
}

func (v *Validator) completeness(fields map[constants.Field]float64, muscleKnown bool) float64 {
	if len(constants.RequiredFields) == 0 {
		return 0
	}
	present := 0
	for _, f := range constants.RequiredFields {
		if f == constants.FieldMuscleDef {
			if muscleKnown {
				present++
			}
			continue
		}
		if _, ok := fields[f]; ok {
			present++
		}
	}
	return float64(present) / float64(len(constants.RequiredFields))
}

type unit string

const (
	unitNone    unit = ""
	unitInches  unit = "in"
	unitCm      unit = "cm"
	unitLbs     unit = "lbs"
	unitKg      unit = "kg"
	unitPercent unit = "%"
)

// coerceNumeric accepts numbers, json.Number, and strings with an optional
// trailing unit suffix.
func coerceNumeric(value any) (float64, unit, error) {
	switch t := value.(type) {
	case string:
		s, u := splitUnit(strings.TrimSpace(t))
		f, err := cast.ToFloat64E(s)
		return f, u, err
	default:
		f, err := cast.ToFloat64E(value)
		return f, unitNone, err
	}
}

func splitUnit(s string) (string, unit) {
	lower := strings.ToLower(s)
	switch {
	case strings.HasSuffix(lower, `"`):
		return strings.TrimSpace(s[:len(s)-1]), unitInches
	case strings.HasSuffix(lower, "inches"):
		return strings.TrimSpace(s[:len(s)-6]), unitInches
	case strings.HasSuffix(lower, "inch"):
		return strings.TrimSpace(s[:len(s)-4]), unitInches
	case strings.HasSuffix(lower, "in"):
		return strings.TrimSpace(s[:len(s)-2]), unitInches
	case strings.HasSuffix(lower, "cm"):
		return strings.TrimSpace(s[:len(s)-2]), unitCm
	case strings.HasSuffix(lower, "lbs"):
		return strings.TrimSpace(s[:len(s)-3]), unitLbs
	case strings.HasSuffix(lower, "lb"):
		return strings.TrimSpace(s[:len(s)-2]), unitLbs
	case strings.HasSuffix(lower, "kg"):
		return strings.TrimSpace(s[:len(s)-2]), unitKg
	case strings.HasSuffix(lower, "%"):
		return strings.TrimSpace(s[:len(s)-1]), unitPercent
	default:
		return s, unitNone
	}
}

// convertUnits brings a value into the field's canonical unit. An explicit
// suffix always wins. Without one, a torso circumference below 50 is read as
// inches because 50cm is below the plausible floor for those fields; smaller
// limbs overlap real cm values, so they convert only on an explicit suffix.
func convertUnits(field constants.Field, f float64, u unit) (float64, bool) {
	switch u {
	case unitInches:
		if isLengthField(field) {
			return f * constants.InchesToCm, true
		}
		return f, false
	case unitLbs:
		if field == constants.FieldWeight {
			return f * constants.LbsToKg, true
		}
		return f, false
	case unitCm, unitKg, unitPercent:
		return f, false
	}
	if isTorsoField(field) && f > 0 && f < 50 {
		return f * constants.InchesToCm, true
	}
	return f, false
}

func isLengthField(field constants.Field) bool {
	switch field {
	case constants.FieldChest, constants.FieldWaist, constants.FieldHip,
		constants.FieldBicep, constants.FieldThigh, constants.FieldCalf,
		constants.FieldShoulder:
		return true
	}
	return false
}

func isTorsoField(field constants.Field) bool {
	switch field {
	case constants.FieldChest, constants.FieldWaist, constants.FieldHip:
		return true
	}
	return false
}
