package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/agbru/hedgesweep/internal/logging"
	"github.com/agbru/hedgesweep/internal/orchestration"
)

const createResultsTable = `
CREATE TABLE IF NOT EXISTS hedge_results (
	id             BIGSERIAL PRIMARY KEY,
	run_id         UUID             NOT NULL,
	strategy       TEXT             NOT NULL,
	dataset        TEXT             NOT NULL,
	portfolio_size INT              NOT NULL,
	schedule       INT              NOT NULL,
	days           INT              NOT NULL,
	rebalances     INT              NOT NULL,
	mean_error     DOUBLE PRECISION NOT NULL,
	mse            DOUBLE PRECISION NOT NULL,
	max_abs_error  DOUBLE PRECISION NOT NULL,
	pnl            NUMERIC(20, 4)   NOT NULL,
	duration_ms    DOUBLE PRECISION NOT NULL,
	error          TEXT,
	created_at     TIMESTAMPTZ      NOT NULL DEFAULT now()
)`

const insertResult = `
INSERT INTO hedge_results (
	run_id, strategy, dataset, portfolio_size, schedule, days, rebalances,
	mean_error, mse, max_abs_error, pnl, duration_ms, error
) VALUES ($1::uuid, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11::numeric, $12, NULLIF($13, ''))`

// PostgresSink stores one hedge_results row per task result.
type PostgresSink struct {
	pool   *pgxpool.Pool
	logger logging.Logger
}

// NewPostgresSink connects to dsn, checks the connection and creates the
// results table if needed.
func NewPostgresSink(ctx context.Context, dsn string, logger logging.Logger) (*PostgresSink, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}
	cfg.MaxConns = 4
	cfg.HealthCheckPeriod = 30 * time.Second

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("new pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}
	if _, err := pool.Exec(ctx, createResultsTable); err != nil {
		pool.Close()
		return nil, fmt.Errorf("create hedge_results: %w", err)
	}
	return &PostgresSink{pool: pool, logger: logger}, nil
}

// Write inserts every result in a single batch.
func (s *PostgresSink) Write(ctx context.Context, runID uuid.UUID, results orchestration.ResultSet) error {
	records := NewRecords(runID, results)
	if len(records) == 0 {
		return nil
	}
	br := s.pool.SendBatch(ctx, buildBatch(records))
	for i := range records {
		if _, err := br.Exec(); err != nil {
			br.Close()
			return fmt.Errorf("insert result %d of %d: %w", i+1, len(records), err)
		}
	}
	if err := br.Close(); err != nil {
		return fmt.Errorf("close batch: %w", err)
	}
	s.logger.Info("results stored", logging.String("run_id", runID.String()), logging.Int("rows", len(records)))
	return nil
}

// Close releases the connection pool.
func (s *PostgresSink) Close() error {
	s.pool.Close()
	return nil
}

func buildBatch(records []Record) *pgx.Batch {
	batch := &pgx.Batch{}
	for _, rec := range records {
		batch.Queue(insertResult, insertArgs(rec)...)
	}
	return batch
}

func insertArgs(rec Record) []any {
	return []any{
		rec.RunID.String(), rec.Strategy, rec.Dataset, rec.PortfolioSize, rec.Schedule,
		rec.Days, rec.Rebalances, rec.MeanError, rec.MSE, rec.MaxAbsError,
		rec.PnL.String(), rec.DurationMS, rec.Error,
	}
}
