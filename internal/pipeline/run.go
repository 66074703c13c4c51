package pipeline

import (
	"time"

	"github.com/DandaAkhilReddy/reddy/constants"
	"github.com/DandaAkhilReddy/reddy/internal/analysis"
	"github.com/DandaAkhilReddy/reddy/internal/common"
	"github.com/DandaAkhilReddy/reddy/internal/confidence"
	"github.com/DandaAkhilReddy/reddy/internal/quality"
	"github.com/DandaAkhilReddy/reddy/internal/validation"
	"github.com/DandaAkhilReddy/reddy/internal/vision"
)

// ScanRequest is one body scan: exactly three photos of the same subject.
type ScanRequest struct {
	UserID string
	Photos []vision.Photo
	User   vision.UserContext
}

// Validate rejects requests the pipeline cannot possibly serve.
func (r *ScanRequest) Validate() error {
	v := common.NewValidator()
	v.Field("user_id", r.UserID, common.Required, common.UUID)
	if r.User.HeightCm != 0 {
		v.Field("height_cm", r.User.HeightCm, common.InRange(100, 250))
	}
	if r.User.WeightKg != 0 {
		v.Field("weight_kg", r.User.WeightKg, common.InRange(30, 300))
	}
	if len(r.Photos) != len(constants.RequiredAngles) {
		v.Field("photos", len(r.Photos), common.InRange(3, 3))
	}
	return common.ValidateAndReturnError(v)
}

// StageRecord is one entry of the scan's stage trace.
type StageRecord struct {
	Stage     constants.Stage `json:"stage"`
	StartedAt time.Time       `json:"started_at"`
	ElapsedMs int64           `json:"elapsed_ms"`
	Error     string          `json:"error,omitempty"`
}

// ModelMetadata records which model produced the raw response and how.
type ModelMetadata struct {
	Provider     string `json:"provider"`
	Model        string `json:"model"`
	FinishReason string `json:"finish_reason"`
	PromptTokens int    `json:"prompt_tokens"`
	OutputTokens int    `json:"output_tokens"`
	LatencyMs    int64  `json:"latency_ms"`
}

// Report is the assembled outcome of one scan run. A low-confidence scan is
// still a Report: it is returned and labeled, never discarded.
type Report struct {
	ScanID    string          `json:"scan_id"`
	UserID    string          `json:"user_id"`
	UserGoal  string          `json:"user_goal,omitempty"`
	Signature string          `json:"signature"`
	Status    constants.Stage `json:"status"`

	BodyType           constants.BodyType          `json:"body_type"`
	BodyTypeConfidence float64                     `json:"body_type_confidence"`
	Measurements       map[constants.Field]float64 `json:"measurements"`
	MuscleDefinition   constants.MuscleDefinition  `json:"muscle_definition"`
	Ratios             analysis.Ratios             `json:"ratios"`
	Aesthetic          analysis.AestheticScore     `json:"aesthetic"`
	ContentHash        string                      `json:"content_hash"`

	Confidence            *confidence.Breakdown       `json:"confidence"`
	LowConfidence         bool                        `json:"low_confidence"`
	FieldsRequiringReview []validation.FieldIssue     `json:"fields_requiring_review,omitempty"`
	ExtractionStrategy    string                      `json:"extraction_strategy"`
	ExtractionTags        []string                    `json:"extraction_tags,omitempty"`
	AngleConfidences      map[constants.Angle]float64 `json:"angle_confidences"`
	ImageReports          []quality.ImageReport       `json:"image_reports"`

	Model  ModelMetadata `json:"model"`
	Stages []StageRecord `json:"stages"`

	CreatedAt time.Time `json:"created_at"`
}
