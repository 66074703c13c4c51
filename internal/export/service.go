package export

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/DandaAkhilReddy/reddy/constants"
	"github.com/DandaAkhilReddy/reddy/internal/pipeline"
	"github.com/DandaAkhilReddy/reddy/internal/store"
)

// Lister is the slice of the scan store the exporter needs.
type Lister interface {
	ListScans(ctx context.Context, userID string, limit int) ([]*store.ScanRecord, error)
}

// Service produces XLSX bytes from a user's scan history.
type Service struct {
	scans  Lister
	logger *slog.Logger
}

func NewService(scans Lister, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{scans: scans, logger: logger}
}

// ExportHistoryXLSX returns an XLSX workbook (as bytes) with one row per scan,
// newest first.
func (s *Service) ExportHistoryXLSX(ctx context.Context, userID string, limit int) ([]byte, error) {
	start := time.Now()

	recs, err := s.scans.ListScans(ctx, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("query scans: %w", err)
	}

	f := excelize.NewFile()
	const sheet = "Scans"
	if index, _ := f.GetSheetIndex(sheet); index == -1 {
		if _, err := f.NewSheet(sheet); err != nil {
			return nil, err
		}
	}
	activeIndex, _ := f.GetSheetIndex(sheet)
	f.SetActiveSheet(activeIndex)

	headers := []string{
		"Date",
		"Signature",
		"Body Type",
		"Body Fat %",
		"Waist (cm)",
		"Chest (cm)",
		"Hip (cm)",
		"Shoulder/Waist",
		"Aesthetic Score",
		"Confidence",
		"Low Confidence",
	}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	row := 2
	for _, rec := range recs {
		var report pipeline.Report
		if err := json.Unmarshal(rec.Report, &report); err != nil {
			s.logger.Warn("export.bad_report_json", "scan_id", rec.ID, "error", err)
			continue
		}

		write := func(col int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			_ = f.SetCellValue(sheet, cell, v)
		}

		write(1, rec.CreatedAt.UTC().Format("2006-01-02"))
		write(2, rec.Signature)
		write(3, rec.BodyType)
		write(4, rec.BodyFat)
		write(5, report.Measurements[constants.FieldWaist])
		write(6, report.Measurements[constants.FieldChest])
		write(7, report.Measurements[constants.FieldHip])
		write(8, report.Ratios.ShoulderToWaist)
		write(9, report.Aesthetic.Total)
		write(10, rec.Confidence)
		write(11, rec.LowConfidence)

		row++
	}

	// Widen a few columns
	_ = f.SetColWidth(sheet, "A", "A", 12) // date
	_ = f.SetColWidth(sheet, "B", "B", 32) // signature
	_ = f.SetColWidth(sheet, "C", "C", 14) // body type
	_ = f.SetColWidth(sheet, "D", "J", 14) // numbers
	_ = f.SetColWidth(sheet, "K", "K", 14) // flag

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	s.logger.Info("export.xlsx.ok",
		"user_id", userID,
		"rows", len(recs),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}
