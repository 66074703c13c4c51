package confidence

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/DandaAkhilReddy/reddy/constants"
	"github.com/DandaAkhilReddy/reddy/internal/common"
	"github.com/DandaAkhilReddy/reddy/internal/extraction"
	"github.com/DandaAkhilReddy/reddy/internal/validation"
)

func testConfig() common.ConfidenceConfig {
	return common.ConfidenceConfig{
		MinScore:           0.70,
		WeightCompleteness: 0.30,
		WeightRange:        0.20,
		WeightStrategy:     0.20,
		WeightAngle:        0.15,
		WeightConsistency:  0.15,
	}
}

func cleanValidation() *validation.Result {
	return &validation.Result{
		Fields: map[constants.Field]float64{
			constants.FieldChest:    104,
			constants.FieldWaist:    82.5,
			constants.FieldHip:      96,
			constants.FieldBicep:    36,
			constants.FieldThigh:    58,
			constants.FieldCalf:     38,
			constants.FieldShoulder: 48,
			constants.FieldBodyFat:  18.2,
		},
		MuscleDefinition: constants.MuscleModerate,
		Completeness:     1.0,
	}
}

func allAngles(c float64) map[constants.Angle]float64 {
	return map[constants.Angle]float64{
		constants.AngleFront: c,
		constants.AngleSide:  c,
		constants.AngleBack:  c,
	}
}

func TestScoreCleanScanAccepted(t *testing.T) {
	s := NewScorer(testConfig(), 0.5, nil)

	b := s.Score(Inputs{
		Validation:       cleanValidation(),
		Extraction:       &extraction.Result{Strategy: extraction.StrategyDirect, Reliability: 1.0},
		AngleConfidences: allAngles(0.95),
	})

	assert.Equal(t, 1.0, b.Completeness)
	assert.Equal(t, 1.0, b.Range)
	assert.Equal(t, 1.0, b.Strategy)
	assert.InDelta(t, 0.95, b.Angle, 0.001)
	assert.Equal(t, 1.0, b.Consistency)
	assert.InDelta(t, 0.9925, b.Total, 0.001)
	assert.True(t, b.Accepted)
}

func TestScoreAngleFloorHalvesComponent(t *testing.T) {
	s := NewScorer(testConfig(), 0.5, nil)

	confs := allAngles(0.9)
	confs[constants.AngleBack] = 0.3
	b := s.Score(Inputs{
		Validation:       cleanValidation(),
		Extraction:       &extraction.Result{Reliability: 1.0},
		AngleConfidences: confs,
	})

	// mean 0.7, halved for the weak back photo
	assert.InDelta(t, 0.35, b.Angle, 0.001)
}

func TestScoreMissingAngleHalvesComponent(t *testing.T) {
	s := NewScorer(testConfig(), 0.5, nil)

	confs := map[constants.Angle]float64{
		constants.AngleFront: 0.9,
		constants.AngleSide:  0.9,
	}
	b := s.Score(Inputs{Validation: cleanValidation(), AngleConfidences: confs})
	assert.InDelta(t, 0.45, b.Angle, 0.001)
}

func TestScoreRepairedStrategyDragsTotal(t *testing.T) {
	s := NewScorer(testConfig(), 0.5, nil)

	b := s.Score(Inputs{
		Validation:       cleanValidation(),
		Extraction:       &extraction.Result{Strategy: extraction.StrategyRepaired, Reliability: 0.65},
		AngleConfidences: allAngles(0.95),
	})
	assert.InDelta(t, 0.9225, b.Total, 0.001)
}

func TestScoreEmptyScanRejected(t *testing.T) {
	s := NewScorer(testConfig(), 0.5, nil)

	b := s.Score(Inputs{
		Validation: &validation.Result{Fields: map[constants.Field]float64{}},
	})
	assert.Equal(t, 0.0, b.Completeness)
	assert.Equal(t, 0.0, b.Range)
	assert.Equal(t, 0.0, b.Angle)
	// no applicable cross-checks on an empty document
	assert.Equal(t, 1.0, b.Consistency)
	assert.False(t, b.Accepted)
}

func TestScoreRangeRatio(t *testing.T) {
	s := NewScorer(testConfig(), 0.5, nil)

	v := cleanValidation()
	v.RequiringReview = []validation.FieldIssue{
		{Field: constants.FieldPosture, Raw: 42.0, Reason: "out of range"},
		{Field: constants.FieldWeight, Raw: 900.0, Reason: "out of range"},
	}
	b := s.Score(Inputs{Validation: v})
	assert.InDelta(t, 0.8, b.Range, 0.001)
}

func TestConsistencyIncoherentBodyFat(t *testing.T) {
	v := cleanValidation()
	v.MuscleDefinition = constants.MuscleHigh
	v.Fields[constants.FieldBodyFat] = 45

	// four ratio checks pass, the body fat coherence check fails
	assert.InDelta(t, 0.8, consistencyScore(v), 0.001)
}
