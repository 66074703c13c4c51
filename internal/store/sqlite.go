package store

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	_ "modernc.org/sqlite"

	"github.com/DandaAkhilReddy/reddy/internal/common"
	"github.com/DandaAkhilReddy/reddy/internal/pipeline"
)

// SQLiteStore is the embedded alternative to Postgres for single-node and
// test deployments. Timestamps are stored as RFC 3339 text.
type SQLiteStore struct {
	db     *sql.DB
	logger *slog.Logger
}

// OpenSQLite opens (or creates) the database file and runs migrations.
// Use ":memory:" for an ephemeral store.
func OpenSQLite(ctx context.Context, dsn string, logger *slog.Logger) (*SQLiteStore, error) {
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("connecting to database", "driver", "sqlite")

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, common.WrapError(err, "open sqlite")
	}
	// modernc sqlite serializes writes; one connection avoids lock churn
	db.SetMaxOpenConns(1)

	s := &SQLiteStore{db: db, logger: logger}
	if _, err := db.ExecContext(ctx, sqliteDDL); err != nil {
		_ = db.Close()
		return nil, common.WrapError(err, "migrate scans table")
	}
	return s, nil
}

func (s *SQLiteStore) Close() {
	if err := s.db.Close(); err != nil {
		s.logger.Error("failed to close sqlite", "error", err)
	}
}

// HealthCheck pings the database.
func (s *SQLiteStore) HealthCheck(ctx context.Context, timeout time.Duration) error {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	return s.db.PingContext(ctx)
}

// SaveScan implements ScanStore with the same idempotency contract as the
// Postgres store.
func (s *SQLiteStore) SaveScan(ctx context.Context, report *pipeline.Report) (*ScanRecord, error) {
	rec, err := FromReport(report)
	if err != nil {
		return nil, err
	}

	const q = `
INSERT INTO scans (id, user_id, signature, content_hash, body_type, body_fat,
                   confidence, low_confidence, status, report, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (user_id, content_hash) DO UPDATE SET content_hash = excluded.content_hash
RETURNING id, signature, created_at`

	var createdAt string
	row := s.db.QueryRowContext(ctx, q,
		rec.ID, rec.UserID, rec.Signature, rec.ContentHash, rec.BodyType, rec.BodyFat,
		rec.Confidence, rec.LowConfidence, rec.Status, string(rec.Report),
		rec.CreatedAt.UTC().Format(time.RFC3339Nano))
	if err := row.Scan(&rec.ID, &rec.Signature, &createdAt); err != nil {
		return nil, common.WrapError(err, "save scan")
	}
	if ts, perr := time.Parse(time.RFC3339Nano, createdAt); perr == nil {
		rec.CreatedAt = ts
	}
	s.logger.Info("store.scan.saved", "scan_id", rec.ID, "signature", rec.Signature)
	return rec, nil
}

// GetScan implements ScanStore.
func (s *SQLiteStore) GetScan(ctx context.Context, id string) (*ScanRecord, error) {
	const q = `
SELECT id, user_id, signature, content_hash, body_type, body_fat,
       confidence, low_confidence, status, report, created_at
FROM scans WHERE id = ?`

	rec, err := scanRow(s.db.QueryRowContext(ctx, q, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.NewAppError("SCAN_NOT_FOUND", "no scan with id "+id, common.ErrNotFound)
	}
	return rec, err
}

// ListScans implements ScanStore, newest first.
func (s *SQLiteStore) ListScans(ctx context.Context, userID string, limit int) ([]*ScanRecord, error) {
	if limit <= 0 {
		limit = 100
	}
	const q = `
SELECT id, user_id, signature, content_hash, body_type, body_fat,
       confidence, low_confidence, status, report, created_at
FROM scans WHERE user_id = ? ORDER BY created_at DESC LIMIT ?`

	rows, err := s.db.QueryContext(ctx, q, userID, limit)
	if err != nil {
		return nil, common.WrapError(err, "list scans")
	}
	defer rows.Close()

	var out []*ScanRecord
	for rows.Next() {
		rec, err := scanRow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// Latest implements ScanStore.
func (s *SQLiteStore) Latest(ctx context.Context, userID string) (*ScanRecord, error) {
	const q = `
SELECT id, user_id, signature, content_hash, body_type, body_fat,
       confidence, low_confidence, status, report, created_at
FROM scans WHERE user_id = ? ORDER BY created_at DESC LIMIT 1`

	rec, err := scanRow(s.db.QueryRowContext(ctx, q, userID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.NewAppError("SCAN_NOT_FOUND", "no scans for user "+userID, common.ErrNotFound)
	}
	return rec, err
}

// FindBySignature implements ScanStore.
func (s *SQLiteStore) FindBySignature(ctx context.Context, signature string) (*ScanRecord, error) {
	const q = `
SELECT id, user_id, signature, content_hash, body_type, body_fat,
       confidence, low_confidence, status, report, created_at
FROM scans WHERE signature = ? ORDER BY created_at DESC LIMIT 1`

	rec, err := scanRow(s.db.QueryRowContext(ctx, q, signature))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.NewAppError("SCAN_NOT_FOUND", "no scan with signature "+signature, common.ErrNotFound)
	}
	return rec, err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRow(row rowScanner) (*ScanRecord, error) {
	rec := &ScanRecord{}
	var report, createdAt string
	if err := row.Scan(
		&rec.ID, &rec.UserID, &rec.Signature, &rec.ContentHash, &rec.BodyType, &rec.BodyFat,
		&rec.Confidence, &rec.LowConfidence, &rec.Status, &report, &createdAt); err != nil {
		return nil, err
	}
	rec.Report = []byte(report)
	if ts, err := time.Parse(time.RFC3339Nano, createdAt); err == nil {
		rec.CreatedAt = ts
	}
	return rec, nil
}

const sqliteDDL = `
CREATE TABLE IF NOT EXISTS scans (
    id             TEXT PRIMARY KEY,
    user_id        TEXT NOT NULL,
    signature      TEXT NOT NULL,
    content_hash   TEXT NOT NULL,
    body_type      TEXT NOT NULL,
    body_fat       REAL NOT NULL DEFAULT 0,
    confidence     REAL NOT NULL DEFAULT 0,
    low_confidence INTEGER NOT NULL DEFAULT 0,
    status         TEXT NOT NULL,
    report         TEXT NOT NULL,
    created_at     TEXT NOT NULL,
    UNIQUE (user_id, content_hash)
);
CREATE INDEX IF NOT EXISTS scans_user_created_idx ON scans (user_id, created_at DESC);
`
