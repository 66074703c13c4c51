package constants

// Stage is one discrete step of the scan pipeline state machine.
type Stage string

// Stable values (store these exact strings in DB).
const (
	StageValidatingImages  Stage = "VALIDATING_IMAGES"
	StageDetectingAngles   Stage = "DETECTING_ANGLES"
	StageCallingVisionAPI  Stage = "CALLING_VISION_API"
	StageExtractingJSON    Stage = "EXTRACTING_JSON"
	StageValidatingSchema  Stage = "VALIDATING_SCHEMA"
	StageScoringConfidence Stage = "SCORING_CONFIDENCE"
	StageComputingRatios   Stage = "COMPUTING_RATIOS"
	StageAssemblingResult  Stage = "ASSEMBLING_RESULT"
	StageCompleted         Stage = "COMPLETED"
	StageFailed            Stage = "FAILED"
)

// StageOrder is the strict sequential order of non-terminal stages.
var StageOrder = []Stage{
	StageValidatingImages,
	StageDetectingAngles,
	StageCallingVisionAPI,
	StageExtractingJSON,
	StageValidatingSchema,
	StageScoringConfidence,
	StageComputingRatios,
	StageAssemblingResult,
}

// Terminal reports whether s is a terminal stage.
func (s Stage) Terminal() bool {
	return s == StageCompleted || s == StageFailed
}

// Angle labels a body photo by its facing direction.
type Angle string

const (
	AngleFront   Angle = "front"
	AngleSide    Angle = "side"
	AngleBack    Angle = "back"
	AngleUnknown Angle = "unknown"
)

// RequiredAngles is the set a scan must cover exactly once each.
var RequiredAngles = []Angle{AngleFront, AngleSide, AngleBack}
