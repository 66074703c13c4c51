package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/DandaAkhilReddy/reddy/constants"
	"github.com/DandaAkhilReddy/reddy/internal/analysis"
	"github.com/DandaAkhilReddy/reddy/internal/common"
	"github.com/DandaAkhilReddy/reddy/internal/confidence"
	"github.com/DandaAkhilReddy/reddy/internal/extraction"
	"github.com/DandaAkhilReddy/reddy/internal/quality"
	"github.com/DandaAkhilReddy/reddy/internal/validation"
)

// Orchestrator drives one scan through the stage machine. Stages run strictly
// in order except image and angle checks, which are independent of each other
// and run concurrently.
type Orchestrator struct {
	logger     *slog.Logger
	cfg        common.PipelineConfig
	analysis   common.AnalysisConfig
	checker    ImageChecker
	detector   AngleDetector
	caller     VisionCaller
	extractor  Extractor
	validator  Validator
	scorer     Scorer
	classifier *analysis.Classifier
	aesthetic  *analysis.AestheticScorer
}

func NewOrchestrator(
	logger *slog.Logger,
	cfg common.PipelineConfig,
	analysisCfg common.AnalysisConfig,
	checker ImageChecker,
	detector AngleDetector,
	caller VisionCaller,
	extractor Extractor,
	validator Validator,
	scorer Scorer,
) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{
		logger:     logger,
		cfg:        cfg,
		analysis:   analysisCfg,
		checker:    checker,
		detector:   detector,
		caller:     caller,
		extractor:  extractor,
		validator:  validator,
		scorer:     scorer,
		classifier: analysis.NewClassifier(analysisCfg),
		aesthetic:  analysis.NewAestheticScorer(analysisCfg),
	}
}

// run tracks the stage trace for one scan.
type run struct {
	report *Report
	logger *slog.Logger
}

// stage runs fn as the named stage. A context already cancelled at the stage
// boundary fails the stage without running fn: results of in-flight work from
// a previous stage are kept in the trace but the scan does not advance.
func (r *run) stage(ctx context.Context, s constants.Stage, fn func() error) error {
	if err := ctx.Err(); err != nil {
		r.record(StageRecord{Stage: s, StartedAt: time.Now()}, err)
		return err
	}
	rec, err := timeStage(s, fn)
	r.record(rec, err)
	return err
}

// timeStage executes fn and returns its stage record without touching the
// shared trace, so concurrent branches can measure independently.
func timeStage(s constants.Stage, fn func() error) (StageRecord, error) {
	started := time.Now()
	err := fn()
	rec := StageRecord{Stage: s, StartedAt: started, ElapsedMs: time.Since(started).Milliseconds()}
	return rec, err
}

func (r *run) record(rec StageRecord, err error) {
	if err != nil {
		rec.Error = err.Error()
		r.logger.Error("scan.stage.failed", "stage", string(rec.Stage), "elapsed_ms", rec.ElapsedMs, "err", err)
	} else {
		r.logger.Info("scan.stage.ok", "stage", string(rec.Stage), "elapsed_ms", rec.ElapsedMs)
	}
	r.report.Stages = append(r.report.Stages, rec)
	if err != nil {
		r.report.Status = constants.StageFailed
	}
}

// Run executes the scan. On failure the returned Report carries the stage
// trace up to and including the failed stage, with Status FAILED.
func (o *Orchestrator) Run(ctx context.Context, req *ScanRequest) (*Report, error) {
	scanID := uuid.New().String()
	ctx = common.WithScanID(ctx, scanID)
	if o.cfg.ScanTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.cfg.ScanTimeout)
		defer cancel()
	}

	start := time.Now()
	report := &Report{
		ScanID:    scanID,
		UserID:    req.UserID,
		UserGoal:  req.User.Goal,
		CreatedAt: start.UTC(),
	}
	logger := o.logger.With("scan_id", scanID)
	r := &run{report: report, logger: logger}

	logger.Info("scan.start", "user_id", req.UserID, "photos", len(req.Photos))

	if err := req.Validate(); err != nil {
		report.Status = constants.StageFailed
		return report, err
	}

	if err := o.checkInputs(ctx, r, req); err != nil {
		return report, err
	}

	var raw string
	if err := r.stage(ctx, constants.StageCallingVisionAPI, func() error {
		resp, err := o.caller.Call(ctx, req.Photos, req.User)
		if err != nil {
			return err
		}
		raw = resp.Content
		report.Model = ModelMetadata{
			Model:        resp.Model,
			FinishReason: resp.FinishReason,
			PromptTokens: resp.PromptTokens,
			OutputTokens: resp.OutputTokens,
			LatencyMs:    resp.Latency.Milliseconds(),
		}
		return nil
	}); err != nil {
		return report, err
	}

	var extracted *extraction.Result
	if err := r.stage(ctx, constants.StageExtractingJSON, func() error {
		res, err := o.extractor.Extract(raw)
		if err != nil {
			return err
		}
		extracted = res
		report.ExtractionStrategy = string(res.Strategy)
		report.ExtractionTags = res.Tags
		return nil
	}); err != nil {
		return report, err
	}

	// validation never hard-fails on content: a hopeless document just scores
	// zero. The only way these stages error is a cancelled context.
	var validated *validation.Result
	if err := r.stage(ctx, constants.StageValidatingSchema, func() error {
		validated = o.validator.Validate(extracted.Data)
		report.Measurements = validated.Fields
		report.MuscleDefinition = validated.MuscleDefinition
		report.FieldsRequiringReview = validated.RequiringReview
		return nil
	}); err != nil {
		return report, err
	}

	if err := r.stage(ctx, constants.StageScoringConfidence, func() error {
		report.Confidence = o.scorer.Score(confidence.Inputs{
			Validation:       validated,
			Extraction:       extracted,
			AngleConfidences: report.AngleConfidences,
		})
		report.LowConfidence = !report.Confidence.Accepted
		return nil
	}); err != nil {
		return report, err
	}

	if err := r.stage(ctx, constants.StageComputingRatios, func() error {
		report.Ratios = analysis.ComputeRatios(report.Measurements, o.analysis.GoldenRatio)
		cls := o.classifier.Classify(report.Ratios, report.Measurements)
		report.BodyType = cls.BodyType
		report.BodyTypeConfidence = cls.Confidence
		report.Aesthetic = o.aesthetic.Score(report.Ratios, report.Measurements)
		return nil
	}); err != nil {
		return report, err
	}

	if err := r.stage(ctx, constants.StageAssemblingResult, func() error {
		return o.assemble(report)
	}); err != nil {
		return report, err
	}

	report.Status = constants.StageCompleted
	logger.Info("scan.completed",
		"signature", report.Signature,
		"body_type", string(report.BodyType),
		"confidence", report.Confidence.Total,
		"low_confidence", report.LowConfidence,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return report, nil
}

// checkInputs runs image quality checks and angle detection concurrently.
// Each branch measures its own elapsed time; the records land in the trace in
// canonical stage order after the join, regardless of which finished first.
func (o *Orchestrator) checkInputs(ctx context.Context, r *run, req *ScanRequest) error {
	g, _ := errgroup.WithContext(ctx)

	var (
		imageRec, angleRec StageRecord
		imageErr, angleErr error
	)
	g.Go(func() error {
		imageRec, imageErr = timeStage(constants.StageValidatingImages, func() error {
			reports := make([]quality.ImageReport, 0, len(req.Photos))
			for _, p := range req.Photos {
				rep, err := o.checker.CheckImage(p)
				if err != nil {
					return err
				}
				reports = append(reports, *rep)
			}
			r.report.ImageReports = reports
			return nil
		})
		return nil
	})
	g.Go(func() error {
		angleRec, angleErr = timeStage(constants.StageDetectingAngles, func() error {
			confs, err := o.detector.DetectAngles(req.Photos)
			if err != nil {
				return err
			}
			r.report.AngleConfidences = confs
			return nil
		})
		return nil
	})
	_ = g.Wait()

	r.record(imageRec, imageErr)
	r.record(angleRec, angleErr)

	if imageErr != nil {
		return imageErr
	}
	return angleErr
}
