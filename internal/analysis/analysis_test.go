package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DandaAkhilReddy/reddy/constants"
	"github.com/DandaAkhilReddy/reddy/internal/common"
)

func testAnalysisConfig() common.AnalysisConfig {
	return common.AnalysisConfig{
		GoldenRatio:            1.618,
		WeightGoldenRatio:      0.40,
		WeightSymmetry:         0.30,
		WeightComposition:      0.20,
		WeightPosture:          0.10,
		VTaperMinShoulderWaist: 1.4,
		AppleMinWaistHip:       0.95,
		PearMaxWaistHip:        0.85,
	}
}

func athleticFields() map[constants.Field]float64 {
	return map[constants.Field]float64{
		constants.FieldChest:    110,
		constants.FieldWaist:    80,
		constants.FieldHip:      95,
		constants.FieldBicep:    38,
		constants.FieldThigh:    60,
		constants.FieldCalf:     38,
		constants.FieldShoulder: 50,
		constants.FieldBodyFat:  12,
		constants.FieldPosture:  8,
	}
}

func TestComputeRatios(t *testing.T) {
	r := ComputeRatios(athleticFields(), 1.618)

	// 50 / (80/pi) = 1.96
	assert.InDelta(t, 1.96, r.ShoulderToWaist, 0.001)
	assert.InDelta(t, 1.38, r.ChestToWaist, 0.001)
	assert.InDelta(t, 0.84, r.WaistToHip, 0.001)
	assert.InDelta(t, 1.58, r.ThighToCalf, 0.001)
	assert.InDelta(t, 0.34, r.GoldenRatioDeviation, 0.011)
	assert.Greater(t, r.GoldenRatioScore, 0.0)
}

func TestComputeRatiosMissingFields(t *testing.T) {
	r := ComputeRatios(map[constants.Field]float64{constants.FieldWaist: 80}, 1.618)
	assert.Zero(t, r.ShoulderToWaist)
	assert.Zero(t, r.ChestToWaist)
	assert.Zero(t, r.WaistToHip)
	assert.Zero(t, r.GoldenRatioScore)
}

func TestDeviationScore(t *testing.T) {
	assert.Equal(t, 100.0, deviationScore(0))
	assert.Equal(t, 50.0, deviationScore(0.25))
	assert.Equal(t, 0.0, deviationScore(0.5))
	assert.Equal(t, 0.0, deviationScore(0.9))
}

func TestClassifyVTaper(t *testing.T) {
	c := NewClassifier(testAnalysisConfig())

	got := c.Classify(Ratios{ShoulderToWaist: 1.75, ChestToWaist: 1.38, WaistToHip: 0.84}, athleticFields())
	assert.Equal(t, constants.VTaper, got.BodyType)
	assert.Equal(t, 0.85, got.Confidence)
}

func TestClassifyApple(t *testing.T) {
	c := NewClassifier(testAnalysisConfig())

	fields := map[constants.Field]float64{constants.FieldBodyFat: 28}
	got := c.Classify(Ratios{ShoulderToWaist: 1.1, ChestToWaist: 1.0, WaistToHip: 1.02}, fields)
	assert.Equal(t, constants.Apple, got.BodyType)
}

func TestClassifyPear(t *testing.T) {
	c := NewClassifier(testAnalysisConfig())

	fields := map[constants.Field]float64{
		constants.FieldChest: 92,
		constants.FieldHip:   108,
	}
	got := c.Classify(Ratios{ShoulderToWaist: 1.1, ChestToWaist: 1.05, WaistToHip: 0.78}, fields)
	assert.Equal(t, constants.Pear, got.BodyType)
}

func TestClassifyBalancedNearGolden(t *testing.T) {
	c := NewClassifier(testAnalysisConfig())

	got := c.Classify(Ratios{ShoulderToWaist: 1.62, ChestToWaist: 1.1, WaistToHip: 0.88}, nil)
	assert.Equal(t, constants.Balanced, got.BodyType)
}

func TestClassifyFallbackRectangular(t *testing.T) {
	c := NewClassifier(testAnalysisConfig())

	got := c.Classify(Ratios{ShoulderToWaist: 1.1, ChestToWaist: 1.05, WaistToHip: 0.90}, nil)
	assert.Equal(t, constants.Rectangular, got.BodyType)
	assert.Equal(t, 0.60, got.Confidence)
	assert.Equal(t, "fallback", got.Rule)
}

func TestAestheticScore(t *testing.T) {
	s := NewAestheticScorer(testAnalysisConfig())
	fields := athleticFields()
	r := ComputeRatios(fields, 1.618)

	a := s.Score(r, fields)
	assert.Equal(t, 100.0, a.Symmetry)
	assert.Equal(t, 100.0, a.Composition)
	assert.Equal(t, 80.0, a.Posture)
	assert.Greater(t, a.Total, 50.0)
	assert.LessOrEqual(t, a.Total, 100.0)
}

func TestAestheticScoreMissingFieldsNeutral(t *testing.T) {
	s := NewAestheticScorer(testAnalysisConfig())

	a := s.Score(Ratios{}, map[constants.Field]float64{})
	assert.Equal(t, 50.0, a.Symmetry)
	assert.Equal(t, 50.0, a.Composition)
	assert.Equal(t, 50.0, a.Posture)
	assert.Equal(t, 0.0, a.GoldenRatio)
}

func TestContentHashDeterministic(t *testing.T) {
	fields := athleticFields()
	r := ComputeRatios(fields, 1.618)

	h1, err := ContentHash(fields, r)
	require.NoError(t, err)
	h2, err := ContentHash(fields, r)
	require.NoError(t, err)
	assert.Equal(t, h1, h2)
	assert.Regexp(t, `^[A-F0-9]{6}$`, h1)
}

func TestContentHashIgnoresSubRoundingNoise(t *testing.T) {
	fields := athleticFields()
	r := ComputeRatios(fields, 1.618)
	h1, err := ContentHash(fields, r)
	require.NoError(t, err)

	noisy := athleticFields()
	noisy[constants.FieldChest] = 110.04
	h2, err := ContentHash(noisy, r)
	require.NoError(t, err)
	assert.Equal(t, h1, h2)
}

func TestContentHashChangesWithMeasurements(t *testing.T) {
	fields := athleticFields()
	r := ComputeRatios(fields, 1.618)
	h1, err := ContentHash(fields, r)
	require.NoError(t, err)

	changed := athleticFields()
	changed[constants.FieldWaist] = 95
	h2, err := ContentHash(changed, r)
	require.NoError(t, err)
	assert.NotEqual(t, h1, h2)
}

func TestSignatureRoundTrip(t *testing.T) {
	sig := NewSignature(constants.VTaper, 18.24, "A3F2C1", 0.8671)
	id := sig.String()
	assert.Equal(t, "VTaper-BF18.2-A3F2C1-AI0.87", id)

	parsed, err := ParseSignature(id)
	require.NoError(t, err)
	assert.Equal(t, constants.VTaper, parsed.BodyType)
	assert.Equal(t, 18.2, parsed.BodyFat)
	assert.Equal(t, "A3F2C1", parsed.Hash)
	assert.Equal(t, 0.87, parsed.Confidence)
}

func TestParseSignatureRejectsGarbage(t *testing.T) {
	for _, id := range []string{
		"",
		"VTaper-BF18.2-XYZPDQ-AI0.87",
		"VTaper-18.2-A3F2C1-0.87",
		"Blob-BF18.2-A3F2C1-AI0.87",
	} {
		_, err := ParseSignature(id)
		assert.Error(t, err, "id=%q", id)
	}
}
