package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/DandaAkhilReddy/reddy/constants"
	"github.com/DandaAkhilReddy/reddy/internal/pipeline"
)

// ScanRecord is one persisted scan. The full report is kept as a JSON
// document; the flattened columns exist for querying and export.
type ScanRecord struct {
	ID            string    `json:"id"`
	UserID        string    `json:"user_id"`
	Signature     string    `json:"signature"`
	ContentHash   string    `json:"content_hash"`
	BodyType      string    `json:"body_type"`
	BodyFat       float64   `json:"body_fat"`
	Confidence    float64   `json:"confidence"`
	LowConfidence bool      `json:"low_confidence"`
	Status        string    `json:"status"`
	Report        []byte    `json:"report"`
	CreatedAt     time.Time `json:"created_at"`
}

// ScanStore persists completed scans. SaveScan is idempotent on
// (user_id, content_hash): re-submitting photos that produce identical
// measurements returns the already stored record.
type ScanStore interface {
	SaveScan(ctx context.Context, report *pipeline.Report) (*ScanRecord, error)
	GetScan(ctx context.Context, id string) (*ScanRecord, error)
	ListScans(ctx context.Context, userID string, limit int) ([]*ScanRecord, error)
	Latest(ctx context.Context, userID string) (*ScanRecord, error)
	FindBySignature(ctx context.Context, signature string) (*ScanRecord, error)
	Close()
}

// FromReport flattens a pipeline report into a storable record.
func FromReport(report *pipeline.Report) (*ScanRecord, error) {
	raw, err := json.Marshal(report)
	if err != nil {
		return nil, fmt.Errorf("marshal report: %w", err)
	}
	rec := &ScanRecord{
		ID:            report.ScanID,
		UserID:        report.UserID,
		Signature:     report.Signature,
		ContentHash:   report.ContentHash,
		BodyType:      string(report.BodyType),
		Status:        string(report.Status),
		LowConfidence: report.LowConfidence,
		Report:        raw,
		CreatedAt:     report.CreatedAt,
	}
	if report.Confidence != nil {
		rec.Confidence = report.Confidence.Total
	}
	if bf, ok := report.Measurements[constants.FieldBodyFat]; ok {
		rec.BodyFat = bf
	}
	return rec, nil
}
