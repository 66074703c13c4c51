package pipeline

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DandaAkhilReddy/reddy/constants"
	"github.com/DandaAkhilReddy/reddy/internal/common"
	"github.com/DandaAkhilReddy/reddy/internal/confidence"
	"github.com/DandaAkhilReddy/reddy/internal/extraction"
	"github.com/DandaAkhilReddy/reddy/internal/quality"
	"github.com/DandaAkhilReddy/reddy/internal/validation"
	"github.com/DandaAkhilReddy/reddy/internal/vision"
)

type stubChecker struct{ err error }

func (s *stubChecker) CheckImage(p vision.Photo) (*quality.ImageReport, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &quality.ImageReport{Filename: p.Filename, Format: "jpeg", Width: 1080, Height: 1920, Score: 85}, nil
}

type stubDetector struct{ err error }

func (s *stubDetector) DetectAngles(photos []vision.Photo) (map[constants.Angle]float64, error) {
	if s.err != nil {
		return nil, s.err
	}
	return map[constants.Angle]float64{
		constants.AngleFront: 0.9,
		constants.AngleSide:  0.9,
		constants.AngleBack:  0.9,
	}, nil
}

type stubCaller struct {
	content string
	err     error
}

func (s *stubCaller) Call(ctx context.Context, photos []vision.Photo, user vision.UserContext) (*vision.RawResponse, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &vision.RawResponse{Content: s.content, Model: "gpt-4o", FinishReason: "stop"}, nil
}

func testOrchestrator(caller VisionCaller, checker ImageChecker, detector AngleDetector) *Orchestrator {
	cfg := common.PipelineConfig{ScanTimeout: time.Minute}
	analysisCfg := common.AnalysisConfig{
		GoldenRatio:            1.618,
		WeightGoldenRatio:      0.40,
		WeightSymmetry:         0.30,
		WeightComposition:      0.20,
		WeightPosture:          0.10,
		VTaperMinShoulderWaist: 1.4,
		AppleMinWaistHip:       0.95,
		PearMaxWaistHip:        0.85,
	}
	confCfg := common.ConfidenceConfig{
		MinScore:           0.70,
		WeightCompleteness: 0.30,
		WeightRange:        0.20,
		WeightStrategy:     0.20,
		WeightAngle:        0.15,
		WeightConsistency:  0.15,
	}
	return NewOrchestrator(nil, cfg, analysisCfg,
		checker, detector, caller,
		extraction.NewExtractor(nil),
		validation.NewValidator(nil),
		confidence.NewScorer(confCfg, 0.5, nil),
	)
}

func testRequest() *ScanRequest {
	return &ScanRequest{
		UserID: uuid.New().String(),
		Photos: []vision.Photo{
			{Filename: "front.jpg", Angle: constants.AngleFront, Data: []byte{0xFF, 0xD8, 0xFF}},
			{Filename: "side.jpg", Angle: constants.AngleSide, Data: []byte{0xFF, 0xD8, 0xFF}},
			{Filename: "back.jpg", Angle: constants.AngleBack, Data: []byte{0xFF, 0xD8, 0xFF}},
		},
		User: vision.UserContext{HeightCm: 180, WeightKg: 82, AgeYears: 30, Gender: "male"},
	}
}

const goodResponse = `{
	"chest_circumference_cm": 110,
	"waist_circumference_cm": 80,
	"hip_circumference_cm": 95,
	"bicep_circumference_cm": 38,
	"thigh_circumference_cm": 60,
	"calf_circumference_cm": 38,
	"shoulder_width_cm": 50,
	"body_fat_percent": 12,
	"posture_rating": 8,
	"muscle_definition": "high"
}`

func TestRunCompletesCleanScan(t *testing.T) {
	o := testOrchestrator(&stubCaller{content: goodResponse}, &stubChecker{}, &stubDetector{})

	report, err := o.Run(context.Background(), testRequest())
	require.NoError(t, err)
	assert.Equal(t, constants.StageCompleted, report.Status)
	assert.Equal(t, constants.VTaper, report.BodyType)
	assert.False(t, report.LowConfidence)
	assert.NotEmpty(t, report.Signature)
	assert.Regexp(t, `^VTaper-BF12\.0-[A-F0-9]{6}-AI\d\.\d\d$`, report.Signature)
	assert.Len(t, report.ImageReports, 3)
	assert.Equal(t, "direct", report.ExtractionStrategy)

	// every stage ran exactly once, in canonical order, with no errors
	stages := make([]constants.Stage, 0, len(report.Stages))
	for _, rec := range report.Stages {
		assert.Empty(t, rec.Error)
		stages = append(stages, rec.Stage)
	}
	assert.Equal(t, constants.StageOrder, stages)
}

func TestRunRejectsBadRequest(t *testing.T) {
	o := testOrchestrator(&stubCaller{content: goodResponse}, &stubChecker{}, &stubDetector{})

	req := testRequest()
	req.UserID = "not-a-uuid"
	report, err := o.Run(context.Background(), req)
	require.Error(t, err)
	assert.Equal(t, constants.StageFailed, report.Status)
	assert.Empty(t, report.Stages)
}

func TestRunFailsOnImageQuality(t *testing.T) {
	qualityErr := common.NewImageQualityError("too blurry", nil)
	o := testOrchestrator(&stubCaller{content: goodResponse}, &stubChecker{err: qualityErr}, &stubDetector{})

	report, err := o.Run(context.Background(), testRequest())
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrImageQuality))
	assert.Equal(t, constants.StageFailed, report.Status)
}

func TestRunFailsOnAngleDetection(t *testing.T) {
	angleErr := common.NewAngleDetectionError("duplicate angle", nil)
	o := testOrchestrator(&stubCaller{content: goodResponse}, &stubChecker{}, &stubDetector{err: angleErr})

	report, err := o.Run(context.Background(), testRequest())
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrAngleDetection))
	assert.Equal(t, constants.StageFailed, report.Status)
}

func TestRunFailsOnVisionError(t *testing.T) {
	visionErr := common.NewVisionAPIError(common.VisionExhausted, 3, errors.New("rate limited"))
	o := testOrchestrator(&stubCaller{err: visionErr}, &stubChecker{}, &stubDetector{})

	report, err := o.Run(context.Background(), testRequest())
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrVisionAPI))
	assert.Equal(t, constants.StageFailed, report.Status)

	last := report.Stages[len(report.Stages)-1]
	assert.Equal(t, constants.StageCallingVisionAPI, last.Stage)
	assert.NotEmpty(t, last.Error)
}

func TestRunFailsOnUnparseableResponse(t *testing.T) {
	o := testOrchestrator(&stubCaller{content: "I cannot analyze these photos."}, &stubChecker{}, &stubDetector{})

	report, err := o.Run(context.Background(), testRequest())
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrExtraction))
	assert.Equal(t, constants.StageFailed, report.Status)
}

// cancellingCaller cancels the scan's context mid-call and still returns a
// usable response, as a provider whose reply lands after the caller gave up.
type cancellingCaller struct {
	cancel  context.CancelFunc
	content string
}

func (c *cancellingCaller) Call(ctx context.Context, photos []vision.Photo, user vision.UserContext) (*vision.RawResponse, error) {
	c.cancel()
	return &vision.RawResponse{Content: c.content, Model: "gpt-4o", FinishReason: "stop"}, nil
}

func TestRunStopsAtStageBoundaryAfterCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	o := testOrchestrator(&cancellingCaller{cancel: cancel, content: goodResponse}, &stubChecker{}, &stubDetector{})
	o.cfg.ScanTimeout = 0

	report, err := o.Run(ctx, testRequest())
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Equal(t, constants.StageFailed, report.Status)
	assert.Empty(t, report.Signature)

	// the in-flight vision call completed, but nothing ran past its boundary
	last := report.Stages[len(report.Stages)-1]
	assert.Equal(t, constants.StageExtractingJSON, last.Stage)
	assert.NotEmpty(t, last.Error)
}

func TestRunLowConfidenceIsReturnedNotFailed(t *testing.T) {
	// sparse response with an implausible body fat: parse succeeds but the
	// score lands below the acceptance threshold
	o := testOrchestrator(&stubCaller{content: `{"waist_circumference_cm": 80, "body_fat_percent": 95}`}, &stubChecker{}, &stubDetector{})

	report, err := o.Run(context.Background(), testRequest())
	require.NoError(t, err)
	assert.Equal(t, constants.StageCompleted, report.Status)
	assert.True(t, report.LowConfidence)
	assert.NotEmpty(t, report.Signature)
}

func TestRunMarkdownWrappedResponse(t *testing.T) {
	o := testOrchestrator(&stubCaller{content: "```json\n" + goodResponse + "\n```"}, &stubChecker{}, &stubDetector{})

	report, err := o.Run(context.Background(), testRequest())
	require.NoError(t, err)
	assert.Equal(t, "markdown", report.ExtractionStrategy)
}

func TestRunDeterministicSignature(t *testing.T) {
	o := testOrchestrator(&stubCaller{content: goodResponse}, &stubChecker{}, &stubDetector{})

	r1, err := o.Run(context.Background(), testRequest())
	require.NoError(t, err)
	r2, err := o.Run(context.Background(), testRequest())
	require.NoError(t, err)

	assert.NotEqual(t, r1.ScanID, r2.ScanID)
	assert.Equal(t, r1.Signature, r2.Signature)
	assert.Equal(t, r1.ContentHash, r2.ContentHash)
}
