package main

import (
	"context"
	"flag"
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"github.com/DandaAkhilReddy/reddy/internal/common"
	"github.com/DandaAkhilReddy/reddy/internal/export"
	"github.com/DandaAkhilReddy/reddy/internal/store"
)

func main() {
	var (
		userID = flag.String("user", "", "user id UUID (required)")
		out    = flag.String("out", "scans.xlsx", "output XLSX file path")
		limit  = flag.Int("limit", 100, "maximum number of scans to export")
	)
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if err := godotenv.Load(); err != nil {
		logger.Debug("no .env file loaded", "error", err)
	}

	if *userID == "" {
		logger.Error("usage", "cmd", "scanexport --user UUID [--out scans.xlsx] [--limit N]")
		os.Exit(2)
	}

	cfg := common.LoadConfig()
	if cfg.Database.DSN == "" {
		logger.Error("DB_URL is required")
		os.Exit(1)
	}

	ctx := context.Background()

	scans, err := openStore(ctx, cfg, logger)
	if err != nil {
		logger.Error("opening scan store", "driver", cfg.Database.Driver, "error", err)
		os.Exit(1)
	}
	defer scans.Close()

	svc := export.NewService(scans, logger)
	data, err := svc.ExportHistoryXLSX(ctx, *userID, *limit)
	if err != nil {
		logger.Error("export failed", "user_id", *userID, "error", err)
		os.Exit(1)
	}

	if err := os.WriteFile(*out, data, 0o644); err != nil {
		logger.Error("writing export file", "path", *out, "error", err)
		os.Exit(1)
	}
	logger.Info("export.written", "path", *out, "bytes", len(data))
}

func openStore(ctx context.Context, cfg *common.Config, logger *slog.Logger) (store.ScanStore, error) {
	switch cfg.Database.Driver {
	case "sqlite":
		return store.OpenSQLite(ctx, cfg.Database.DSN, logger)
	default:
		return store.OpenPostgres(ctx, cfg.Database, logger)
	}
}
