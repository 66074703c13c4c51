package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/DandaAkhilReddy/reddy/constants"
	"github.com/DandaAkhilReddy/reddy/internal/async"
	"github.com/DandaAkhilReddy/reddy/internal/common"
	"github.com/DandaAkhilReddy/reddy/internal/confidence"
	"github.com/DandaAkhilReddy/reddy/internal/extraction"
	"github.com/DandaAkhilReddy/reddy/internal/pipeline"
	"github.com/DandaAkhilReddy/reddy/internal/quality"
	"github.com/DandaAkhilReddy/reddy/internal/store"
	"github.com/DandaAkhilReddy/reddy/internal/validation"
	"github.com/DandaAkhilReddy/reddy/internal/vision"
	"github.com/DandaAkhilReddy/reddy/internal/vision/gemini"
	"github.com/DandaAkhilReddy/reddy/internal/vision/openai"
)

// scanbatch walks a directory of scan folders and runs each through the
// pipeline on a worker pool. Every immediate subdirectory is one scan: it must
// contain exactly three photos, named so the facing direction is recognizable
// (front/side/back in the filename). Subdirectory names that parse as UUIDs
// are taken as the user id; otherwise --user applies.
func main() {
	var (
		dir    = flag.String("dir", "", "directory of scan folders (required)")
		userID = flag.String("user", "", "default user id UUID for folders not named by UUID")
		height = flag.Float64("height", 0, "height in cm, applied to every scan")
		weight = flag.Float64("weight", 0, "weight in kg, applied to every scan")
		goal   = flag.String("goal", "", "fitness goal, applied to every scan")
		save   = flag.Bool("save", true, "persist completed scans to the configured database")
	)
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if err := godotenv.Load(); err != nil {
		logger.Debug("no .env file loaded", "error", err)
	}

	if *dir == "" {
		logger.Error("usage", "cmd", "scanbatch --dir DIR [--user UUID] [--save=false]")
		os.Exit(2)
	}

	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()

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

	var saver async.Saver
	if *save {
		scans, err := openStore(ctx, cfg, logger)
		if err != nil {
			logger.Error("opening scan store", "driver", cfg.Database.Driver, "error", err)
			os.Exit(1)
		}
		defer scans.Close()
		saver = scans
	}

	queue := async.NewScanQueue(orch, saver, logger,
		async.WithWorkers(cfg.Pipeline.Workers),
		async.WithQueueSize(cfg.Pipeline.QueueSize),
		async.WithScanTimeout(cfg.Pipeline.ScanTimeout),
	)

	requests, err := collectRequests(*dir, *userID, vision.UserContext{
		HeightCm: *height,
		WeightKg: *weight,
		Goal:     *goal,
	})
	if err != nil {
		logger.Error("collecting scan folders", "dir", *dir, "error", err)
		os.Exit(1)
	}
	if len(requests) == 0 {
		logger.Error("no scan folders found", "dir", *dir)
		os.Exit(1)
	}

	logger.Info("batch.start", "dir", *dir, "scans", len(requests), "workers", cfg.Pipeline.Workers)

	enqueued := 0
	for _, req := range requests {
		job := async.Job{JobID: uuid.New().String(), Request: req}
		if err := queue.Enqueue(ctx, job); err != nil {
			logger.Error("enqueue failed", "job_id", job.JobID, "error", err)
			continue
		}
		enqueued++
	}

	queue.Shutdown(ctx)
	logger.Info("batch.done", "enqueued", enqueued, "skipped", len(requests)-enqueued)
}

// collectRequests builds one ScanRequest per subdirectory of dir.
func collectRequests(dir, defaultUser string, user vision.UserContext) ([]*pipeline.ScanRequest, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var requests []*pipeline.ScanRequest
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		uid := defaultUser
		if _, perr := uuid.Parse(entry.Name()); perr == nil {
			uid = entry.Name()
		}
		if uid == "" {
			return nil, fmt.Errorf("folder %q is not a UUID and no --user given", entry.Name())
		}

		photos, err := loadFolder(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("folder %q: %w", entry.Name(), err)
		}
		requests = append(requests, &pipeline.ScanRequest{
			UserID: uid,
			Photos: photos,
			User:   user,
		})
	}
	return requests, nil
}

func loadFolder(path string) ([]vision.Photo, error) {
	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, err
	}

	var photos []vision.Photo
	for _, entry := range entries {
		if entry.IsDir() || !isImage(entry.Name()) {
			continue
		}
		data, err := os.ReadFile(filepath.Join(path, entry.Name()))
		if err != nil {
			return nil, err
		}
		photos = append(photos, vision.Photo{
			Filename: entry.Name(),
			Data:     data,
			Angle:    constants.AngleUnknown,
		})
	}
	return photos, nil
}

func isImage(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".jpg", ".jpeg", ".png":
		return true
	}
	return false
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
