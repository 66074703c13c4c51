package export

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/DandaAkhilReddy/reddy/constants"
	"github.com/DandaAkhilReddy/reddy/internal/analysis"
	"github.com/DandaAkhilReddy/reddy/internal/pipeline"
	"github.com/DandaAkhilReddy/reddy/internal/store"
)

type fakeLister struct{ recs []*store.ScanRecord }

func (f *fakeLister) ListScans(ctx context.Context, userID string, limit int) ([]*store.ScanRecord, error) {
	return f.recs, nil
}

func record(t *testing.T, signature string, waist float64) *store.ScanRecord {
	t.Helper()
	report := pipeline.Report{
		Signature: signature,
		Measurements: map[constants.Field]float64{
			constants.FieldWaist: waist,
			constants.FieldChest: 104,
			constants.FieldHip:   96,
		},
		Ratios:    analysis.Ratios{ShoulderToWaist: 1.62},
		Aesthetic: analysis.AestheticScore{Total: 71.5},
	}
	raw, err := json.Marshal(report)
	require.NoError(t, err)
	return &store.ScanRecord{
		ID:         "id-" + signature,
		Signature:  signature,
		BodyType:   "V-Taper",
		BodyFat:    14.5,
		Confidence: 0.91,
		Report:     raw,
		CreatedAt:  time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestExportHistoryXLSX(t *testing.T) {
	lister := &fakeLister{recs: []*store.ScanRecord{
		record(t, "VTaper-BF14.5-A1B2C3-AI0.91", 82.5),
		record(t, "VTaper-BF14.5-D4E5F6-AI0.88", 84.0),
	}}
	svc := NewService(lister, nil)

	out, err := svc.ExportHistoryXLSX(context.Background(), "user", 10)
	require.NoError(t, err)
	require.NotEmpty(t, out)

	f, err := excelize.OpenReader(bytes.NewReader(out))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Scans")
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, "Signature", rows[0][1])
	assert.Equal(t, "VTaper-BF14.5-A1B2C3-AI0.91", rows[1][1])
	assert.Equal(t, "2026-08-01", rows[1][0])
	assert.Equal(t, "82.5", rows[1][4])
	assert.Equal(t, "84", rows[2][4])
}

func TestExportHistoryXLSXEmpty(t *testing.T) {
	svc := NewService(&fakeLister{}, nil)

	out, err := svc.ExportHistoryXLSX(context.Background(), "user", 10)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(out))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Scans")
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}
