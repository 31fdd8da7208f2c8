// Package sink persists fraud check and narrative analysis results to a
// relational claims store, keyed by transaction id.
package sink

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
)

const schemaStatement = `
CREATE TABLE IF NOT EXISTS claim_results (
	transaction_id   TEXT PRIMARY KEY,
	fraud_data       JSONB,
	graph_ingest_ms  DOUBLE PRECISION,
	llm_analysis     JSONB,
	recommendation   TEXT,
	updated_at       TIMESTAMPTZ NOT NULL DEFAULT now()
)`

const upsertFraudCheck = `
INSERT INTO claim_results (transaction_id, fraud_data, graph_ingest_ms, recommendation, updated_at)
VALUES ($1, $2, $3, $4, now())
ON CONFLICT (transaction_id) DO UPDATE
SET fraud_data = EXCLUDED.fraud_data,
    graph_ingest_ms = EXCLUDED.graph_ingest_ms,
    recommendation = EXCLUDED.recommendation,
    updated_at = now()`

const upsertAnalysis = `
INSERT INTO claim_results (transaction_id, llm_analysis, recommendation, updated_at)
VALUES ($1, $2, $3, now())
ON CONFLICT (transaction_id) DO UPDATE
SET llm_analysis = EXCLUDED.llm_analysis,
    recommendation = EXCLUDED.recommendation,
    updated_at = now()`

// PostgresSink writes results into the claim_results table.
type PostgresSink struct {
	db *sql.DB
}

// Open connects to dsn with the postgres driver and verifies the connection.
func Open(ctx context.Context, dsn string) (*PostgresSink, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open claims store: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping claims store: %w", err)
	}
	return NewPostgresSink(db), nil
}

func NewPostgresSink(db *sql.DB) *PostgresSink {
	return &PostgresSink{db: db}
}

// EnsureSchema creates the results table when missing.
func (s *PostgresSink) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schemaStatement); err != nil {
		return fmt.Errorf("failed to create claim_results: %w", err)
	}
	return nil
}

// RecordFraudCheck stores the serialized check result and the time spent
// merging and checking the claim.
func (s *PostgresSink) RecordFraudCheck(ctx context.Context, transactionID string, fraudData []byte, recommendation string, graphIngestMs float64) error {
	if _, err := s.db.ExecContext(ctx, upsertFraudCheck, transactionID, string(fraudData), graphIngestMs, recommendation); err != nil {
		return fmt.Errorf("failed to record fraud check for %s: %w", transactionID, err)
	}
	return nil
}

// RecordAnalysis stores the narrative analysis for a claim.
func (s *PostgresSink) RecordAnalysis(ctx context.Context, transactionID string, analysis []byte, recommendation string) error {
	if _, err := s.db.ExecContext(ctx, upsertAnalysis, transactionID, string(analysis), recommendation); err != nil {
		return fmt.Errorf("failed to record analysis for %s: %w", transactionID, err)
	}
	return nil
}

func (s *PostgresSink) Close() error {
	return s.db.Close()
}
