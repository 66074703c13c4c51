package validation

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// BuildMeasurementJSONSchema returns a JSON-Schema (draft 2020-12 subset) as a
// generic map. It is deliberately loose: values may arrive as numbers or as
// strings carrying unit suffixes ("32 in"), and extra keys are tolerated. The
// field-level validator does the strict work; this pass only rejects documents
// that are structurally not a measurement report.
func BuildMeasurementJSONSchema() map[string]any {
	numeric := map[string]any{
		"anyOf": []any{
			map[string]any{"type": "number"},
			map[string]any{"type": "string", "minLength": 1},
			map[string]any{"type": "null"},
		},
	}
	props := map[string]any{
		"chest_circumference_cm": numeric,
		"waist_circumference_cm": numeric,
		"hip_circumference_cm":   numeric,
		"bicep_circumference_cm": numeric,
		"thigh_circumference_cm": numeric,
		"calf_circumference_cm":  numeric,
		"shoulder_width_cm":      numeric,
		"body_fat_percent":       numeric,
		"estimated_weight_kg":    numeric,
		"posture_rating":         numeric,
		"muscle_definition":      map[string]any{"type": "string"},
	}

	return map[string]any{
		"type":                 "object",
		"additionalProperties": true,
		"properties":           props,
		"minProperties":        1,
	}
}

// ValidateAgainstSchema validates "data" against "schemaMap".
func ValidateAgainstSchema(schemaMap map[string]any, data []byte) error {
	b, err := json.Marshal(schemaMap)
	if err != nil {
		return fmt.Errorf("marshal schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("schema.json", bytes.NewReader(b)); err != nil {
		return fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile("schema.json")
	if err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("unmarshal data: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("json does not match schema: %w", err)
	}
	return nil
}
