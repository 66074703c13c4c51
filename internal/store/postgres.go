package store

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/DandaAkhilReddy/reddy/internal/common"
	"github.com/DandaAkhilReddy/reddy/internal/pipeline"
)

// PostgresStore persists scans in a scans table with the full report as jsonb.
type PostgresStore struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// OpenPostgres creates a pgx pool and runs migrations.
func OpenPostgres(ctx context.Context, cfg common.DatabaseConfig, logger *slog.Logger) (*PostgresStore, error) {
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("connecting to database", "driver", "postgres")

	pc, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		logger.Error("failed to parse database config", "error", err)
		return nil, err
	}
	pc.MaxConns = cfg.MaxConns
	pc.MinConns = cfg.MinConns
	pc.MaxConnLifetime = cfg.MaxConnLifetime
	pc.MaxConnIdleTime = cfg.MaxConnIdleTime
	pc.ConnConfig.RuntimeParams["application_name"] = "bodyscan"
	if cfg.StatementTimeout > 0 {
		pc.ConnConfig.RuntimeParams["statement_timeout"] = cfg.StatementTimeout.String()
	}

	dialCtx := ctx
	if cfg.DialTimeout > 0 {
		var cancel context.CancelFunc
		dialCtx, cancel = context.WithTimeout(ctx, cfg.DialTimeout)
		defer cancel()
	}
	pool, err := pgxpool.NewWithConfig(dialCtx, pc)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		return nil, err
	}

	s := &PostgresStore{pool: pool, logger: logger}
	if err := s.migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	logger.Info("successfully connected to database")
	return s, nil
}

func (s *PostgresStore) Close() {
	s.logger.Info("closing database connections")
	s.pool.Close()
}

// HealthCheck pings the pool to catch DSN issues early.
func (s *PostgresStore) HealthCheck(ctx context.Context, timeout time.Duration) error {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	return s.pool.Ping(ctx)
}

func (s *PostgresStore) migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresDDL)
	return common.WrapError(err, "migrate scans table")
}

// SaveScan implements ScanStore. The conflict target makes a duplicate
// submission return the first stored row untouched.
func (s *PostgresStore) SaveScan(ctx context.Context, report *pipeline.Report) (*ScanRecord, error) {
	rec, err := FromReport(report)
	if err != nil {
		return nil, err
	}

	const q = `
INSERT INTO scans (id, user_id, signature, content_hash, body_type, body_fat,
                   confidence, low_confidence, status, report, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
ON CONFLICT (user_id, content_hash) DO UPDATE SET content_hash = EXCLUDED.content_hash
RETURNING id, signature, created_at`

	row := s.pool.QueryRow(ctx, q,
		rec.ID, rec.UserID, rec.Signature, rec.ContentHash, rec.BodyType, rec.BodyFat,
		rec.Confidence, rec.LowConfidence, rec.Status, rec.Report, rec.CreatedAt)
	if err := row.Scan(&rec.ID, &rec.Signature, &rec.CreatedAt); err != nil {
		return nil, common.WrapError(err, "save scan")
	}
	s.logger.Info("store.scan.saved", "scan_id", rec.ID, "signature", rec.Signature)
	return rec, nil
}

// GetScan implements ScanStore.
func (s *PostgresStore) GetScan(ctx context.Context, id string) (*ScanRecord, error) {
	const q = `
SELECT id, user_id, signature, content_hash, body_type, body_fat,
       confidence, low_confidence, status, report, created_at
FROM scans WHERE id = $1`

	rec := &ScanRecord{}
	err := s.pool.QueryRow(ctx, q, id).Scan(
		&rec.ID, &rec.UserID, &rec.Signature, &rec.ContentHash, &rec.BodyType, &rec.BodyFat,
		&rec.Confidence, &rec.LowConfidence, &rec.Status, &rec.Report, &rec.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, common.NewAppError("SCAN_NOT_FOUND", "no scan with id "+id, common.ErrNotFound)
	}
	if err != nil {
		return nil, common.WrapError(err, "get scan")
	}
	return rec, nil
}

// ListScans implements ScanStore, newest first.
func (s *PostgresStore) ListScans(ctx context.Context, userID string, limit int) ([]*ScanRecord, error) {
	if limit <= 0 {
		limit = 100
	}
	const q = `
SELECT id, user_id, signature, content_hash, body_type, body_fat,
       confidence, low_confidence, status, report, created_at
FROM scans WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2`

	rows, err := s.pool.Query(ctx, q, userID, limit)
	if err != nil {
		return nil, common.WrapError(err, "list scans")
	}
	defer rows.Close()

	var out []*ScanRecord
	for rows.Next() {
		rec := &ScanRecord{}
		if err := rows.Scan(
			&rec.ID, &rec.UserID, &rec.Signature, &rec.ContentHash, &rec.BodyType, &rec.BodyFat,
			&rec.Confidence, &rec.LowConfidence, &rec.Status, &rec.Report, &rec.CreatedAt); err != nil {
			return nil, common.WrapError(err, "scan row")
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// Latest implements ScanStore.
func (s *PostgresStore) Latest(ctx context.Context, userID string) (*ScanRecord, error) {
	const q = `
SELECT id, user_id, signature, content_hash, body_type, body_fat,
       confidence, low_confidence, status, report, created_at
FROM scans WHERE user_id = $1 ORDER BY created_at DESC LIMIT 1`

	rec := &ScanRecord{}
	err := s.pool.QueryRow(ctx, q, userID).Scan(
		&rec.ID, &rec.UserID, &rec.Signature, &rec.ContentHash, &rec.BodyType, &rec.BodyFat,
		&rec.Confidence, &rec.LowConfidence, &rec.Status, &rec.Report, &rec.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, common.NewAppError("SCAN_NOT_FOUND", "no scans for user "+userID, common.ErrNotFound)
	}
	if err != nil {
		return nil, common.WrapError(err, "latest scan")
	}
	return rec, nil
}

// FindBySignature implements ScanStore.
func (s *PostgresStore) FindBySignature(ctx context.Context, signature string) (*ScanRecord, error) {
	const q = `
SELECT id, user_id, signature, content_hash, body_type, body_fat,
       confidence, low_confidence, status, report, created_at
FROM scans WHERE signature = $1 ORDER BY created_at DESC LIMIT 1`

	rec := &ScanRecord{}
	err := s.pool.QueryRow(ctx, q, signature).Scan(
		&rec.ID, &rec.UserID, &rec.Signature, &rec.ContentHash, &rec.BodyType, &rec.BodyFat,
		&rec.Confidence, &rec.LowConfidence, &rec.Status, &rec.Report, &rec.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, common.NewAppError("SCAN_NOT_FOUND", "no scan with signature "+signature, common.ErrNotFound)
	}
	if err != nil {
		return nil, common.WrapError(err, "find by signature")
	}
	return rec, nil
}

const postgresDDL = `
CREATE TABLE IF NOT EXISTS scans (
    id             UUID PRIMARY KEY,
    user_id        UUID NOT NULL,
    signature      TEXT NOT NULL,
    content_hash   TEXT NOT NULL,
    body_type      TEXT NOT NULL,
    body_fat       DOUBLE PRECISION NOT NULL DEFAULT 0,
    confidence     DOUBLE PRECISION NOT NULL DEFAULT 0,
    low_confidence BOOLEAN NOT NULL DEFAULT FALSE,
    status         TEXT NOT NULL,
    report         JSONB NOT NULL,
    created_at     TIMESTAMPTZ NOT NULL DEFAULT now(),
    UNIQUE (user_id, content_hash)
);
CREATE INDEX IF NOT EXISTS scans_user_created_idx ON scans (user_id, created_at DESC);
`
