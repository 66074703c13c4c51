package analysis

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/DandaAkhilReddy/reddy/constants"
)

// ContentHash produces a deterministic 6-character uppercase hex digest of the
// measurements and ratios. Values are rounded to one decimal before hashing so
// float noise below 0.05 cm cannot change the hash, and JSON map marshaling
// sorts keys, so key order cannot either.
func ContentHash(fields map[constants.Field]float64, r Ratios) (string, error) {
	doc := make(map[string]float64, len(fields)+4)
	for f, v := range fields {
		doc[string(f)] = round1(v)
	}
	doc["shoulder_to_waist"] = round1(r.ShoulderToWaist)
	doc["chest_to_waist"] = round1(r.ChestToWaist)
	doc["waist_to_hip"] = round1(r.WaistToHip)
	doc["thigh_to_calf"] = round1(r.ThighToCalf)

	b, err := json.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("marshal hash document: %w", err)
	}
	sum := sha256.Sum256(b)
	return strings.ToUpper(fmt.Sprintf("%x", sum[:3])), nil
}
