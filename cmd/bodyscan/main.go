package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"

	"github.com/DandaAkhilReddy/reddy/constants"
	"github.com/DandaAkhilReddy/reddy/internal/common"
	"github.com/DandaAkhilReddy/reddy/internal/confidence"
	"github.com/DandaAkhilReddy/reddy/internal/extraction"
	"github.com/DandaAkhilReddy/reddy/internal/pipeline"
	"github.com/DandaAkhilReddy/reddy/internal/quality"
	"github.com/DandaAkhilReddy/reddy/internal/recommend"
	"github.com/DandaAkhilReddy/reddy/internal/store"
	"github.com/DandaAkhilReddy/reddy/internal/validation"
	"github.com/DandaAkhilReddy/reddy/internal/vision"
	"github.com/DandaAkhilReddy/reddy/internal/vision/gemini"
	"github.com/DandaAkhilReddy/reddy/internal/vision/openai"
)

// scanOutput is what the CLI prints: the full report plus derived advice and,
// when persistence is on, the stored record's identity.
type scanOutput struct {
	Report          *pipeline.Report           `json:"report"`
	Recommendations []recommend.Recommendation `json:"recommendations"`
	StoredID        string                     `json:"stored_id,omitempty"`
	StoredSignature string                     `json:"stored_signature,omitempty"`
}

func main() {
	var (
		front  = flag.String("front", "", "path to front photo (required)")
		side   = flag.String("side", "", "path to side photo (required)")
		back   = flag.String("back", "", "path to back photo (required)")
		userID = flag.String("user", "", "user id UUID (required)")
		height = flag.Float64("height", 0, "height in cm")
		weight = flag.Float64("weight", 0, "weight in kg")
		age    = flag.Int("age", 0, "age in years")
		gender = flag.String("gender", "", "gender")
		goal   = flag.String("goal", "", "fitness goal, e.g. cut, bulk")
		out    = flag.String("out", "", "write report JSON to this path instead of stdout")
		save   = flag.Bool("save", false, "persist the scan to the configured database")
	)
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if err := godotenv.Load(); err != nil {
		logger.Debug("no .env file loaded", "error", err)
	}

	if *front == "" || *side == "" || *back == "" || *userID == "" {
		logger.Error("usage", "cmd", "bodyscan --front F --side S --back B --user UUID [--height CM --weight KG]")
		os.Exit(2)
	}

	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()

	photos, err := loadPhotos(*front, *side, *back)
	if err != nil {
		logger.Error("reading photos", "error", err)
		os.Exit(1)
	}

	client, closeClient, err := buildVisionClient(ctx, cfg, logger)
	if err != nil {
		logger.Error("building vision client", "provider", cfg.Vision.Provider, "error", err)
		os.Exit(1)
	}
	defer closeClient()

	orch := pipeline.NewOrchestrator(
		logger,
		cfg.Pipeline,
		cfg.Analysis,
		quality.NewChecker(cfg.Quality, logger),
		quality.NewDetector(logger),
		vision.NewCaller(client, cfg.Vision, logger),
		extraction.NewExtractor(logger),
		validation.NewValidator(logger),
		confidence.NewScorer(cfg.Confidence, cfg.Quality.MinAngleConfidence, logger),
	)

	req := &pipeline.ScanRequest{
		UserID: *userID,
		Photos: photos,
		User: vision.UserContext{
			HeightCm: *height,
			WeightKg: *weight,
			AgeYears: *age,
			Gender:   *gender,
			Goal:     *goal,
		},
	}

	report, err := orch.Run(ctx, req)
	if err != nil {
		logger.Error("scan failed", "error", err)
		os.Exit(1)
	}

	output := scanOutput{
		Report:          report,
		Recommendations: recommend.ForReport(report),
	}

	if *save {
		scans, err := openStore(ctx, cfg, logger)
		if err != nil {
			logger.Error("opening scan store", "driver", cfg.Database.Driver, "error", err)
			os.Exit(1)
		}
		defer scans.Close()

		rec, err := scans.SaveScan(ctx, report)
		if err != nil {
			logger.Error("saving scan", "scan_id", report.ScanID, "error", err)
			os.Exit(1)
		}
		output.StoredID = rec.ID
		output.StoredSignature = rec.Signature
		logger.Info("scan.saved", "id", rec.ID, "signature", rec.Signature)
	}

	data, err := json.MarshalIndent(output, "", "  ")
	if err != nil {
		logger.Error("encoding report", "error", err)
		os.Exit(1)
	}

	if *out != "" {
		if err := os.WriteFile(*out, data, 0o644); err != nil {
			logger.Error("writing report file", "path", *out, "error", err)
			os.Exit(1)
		}
		logger.Info("report written", "path", *out, "signature", report.Signature)
		return
	}
	fmt.Println(string(data))
}

func loadPhotos(front, side, back string) ([]vision.Photo, error) {
	paths := []struct {
		path  string
		angle constants.Angle
	}{
		{front, constants.AngleFront},
		{side, constants.AngleSide},
		{back, constants.AngleBack},
	}

	photos := make([]vision.Photo, 0, len(paths))
	for _, p := range paths {
		data, err := os.ReadFile(p.path)
		if err != nil {
			return nil, fmt.Errorf("reading %s photo: %w", p.angle, err)
		}
		photos = append(photos, vision.Photo{
			Filename: filepath.Base(p.path),
			Data:     data,
			Angle:    p.angle,
		})
	}
	return photos, nil
}

func buildVisionClient(ctx context.Context, cfg *common.Config, logger *slog.Logger) (vision.Client, func(), error) {
	switch cfg.Vision.Provider {
	case "gemini":
		client, err := gemini.NewClient(ctx, gemini.Config{
			APIKey:      cfg.Vision.APIKey,
			Model:       cfg.Vision.Model,
			Temperature: cfg.Vision.Temperature,
			MaxTokens:   cfg.Vision.MaxTokens,
		}, logger)
		if err != nil {
			return nil, nil, err
		}
		return client, func() {
			if cerr := client.Close(); cerr != nil {
				logger.Error("closing gemini client", "error", cerr)
			}
		}, nil
	case "openai":
		client := openai.NewClient(openai.Config{
			APIKey:      cfg.Vision.APIKey,
			BaseURL:     cfg.Vision.BaseURL,
			Model:       cfg.Vision.Model,
			Temperature: cfg.Vision.Temperature,
			MaxTokens:   cfg.Vision.MaxTokens,
			Timeout:     cfg.Vision.Timeout,
		}, logger)
		return client, func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unknown vision provider %q", cfg.Vision.Provider)
	}
}

func openStore(ctx context.Context, cfg *common.Config, logger *slog.Logger) (store.ScanStore, error) {
	switch cfg.Database.Driver {
	case "sqlite":
		return store.OpenSQLite(ctx, cfg.Database.DSN, logger)
	default:
		return store.OpenPostgres(ctx, cfg.Database, logger)
	}
}
