// Package fraud orchestrates claim ingestion, real-time checks, batch scans
// and narrative analysis over the claims graph.
package fraud

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/mkd-neo4j/neo4j-claims-fraud/internal/analytics"
	"github.com/mkd-neo4j/neo4j-claims-fraud/internal/claims"
	"github.com/mkd-neo4j/neo4j-claims-fraud/internal/database"
	"github.com/mkd-neo4j/neo4j-claims-fraud/internal/fraud/patterns"
	"github.com/mkd-neo4j/neo4j-claims-fraud/internal/fraud/scoring"
	"github.com/mkd-neo4j/neo4j-claims-fraud/internal/fraud/visualization"
	"github.com/mkd-neo4j/neo4j-claims-fraud/internal/graph/ingest"
	"github.com/mkd-neo4j/neo4j-claims-fraud/internal/metrics"
	"github.com/mkd-neo4j/neo4j-claims-fraud/internal/narrative"
)

var (
	// ErrClaimNotFound is returned when a transaction id has no claim in the graph.
	ErrClaimNotFound = errors.New("claim not found")
	// ErrAnalyzerUnavailable is returned by Analyze when no analyzer is configured.
	ErrAnalyzerUnavailable = errors.New("narrative analyzer is not configured")
	// ErrUnknownPattern is returned by DetectPattern for a name no detector reports.
	ErrUnknownPattern = errors.New("unknown fraud pattern")
)

// ResultSink persists check and analysis results outside the graph.
type ResultSink interface {
	RecordFraudCheck(ctx context.Context, transactionID string, fraudData []byte, recommendation string, graphIngestMs float64) error
	RecordAnalysis(ctx context.Context, transactionID string, analysis []byte, recommendation string) error
}

type Option func(*Service)

func WithAnalytics(a analytics.Service) Option {
	return func(s *Service) { s.analytics = a }
}

func WithMetrics(r metrics.Recorder) Option {
	return func(s *Service) { s.metrics = r }
}

func WithSink(sink ResultSink) Option {
	return func(s *Service) { s.sink = sink }
}

func WithAnalyzer(a narrative.Analyzer) Option {
	return func(s *Service) { s.analyzer = a }
}

func WithThresholds(t patterns.Thresholds) Option {
	return func(s *Service) { s.thresholds = t }
}

// WithScanConcurrency bounds how many batch detectors query at once.
func WithScanConcurrency(n int) Option {
	return func(s *Service) { s.scanConcurrency = n }
}

// Service is the entry point for every fraud operation.
type Service struct {
	db        database.Service
	ingestor  *ingest.Ingestor
	checker   *patterns.Checker
	scanner   *patterns.Scanner
	extractor *visualization.Extractor

	thresholds      patterns.Thresholds
	scanConcurrency int
	analytics       analytics.Service
	metrics         metrics.Recorder
	sink            ResultSink
	analyzer        narrative.Analyzer
}

func NewService(db database.Service, opts ...Option) (*Service, error) {
	if db == nil {
		return nil, errors.New("database service cannot be nil")
	}

	s := &Service{
		db:              db,
		thresholds:      patterns.DefaultThresholds(),
		scanConcurrency: -1,
		metrics:         metrics.Noop{},
	}
	for _, opt := range opts {
		opt(s)
	}

	var err error
	if s.ingestor, err = ingest.NewIngestor(db); err != nil {
		return nil, err
	}
	if s.checker, err = patterns.NewChecker(db, s.thresholds); err != nil {
		return nil, err
	}
	if s.extractor, err = visualization.NewExtractor(db); err != nil {
		return nil, err
	}
	s.scanner = patterns.NewScanner(patterns.DefaultDetectors(db, s.thresholds)...)
	if s.scanConcurrency >= 0 {
		s.scanner.WithConcurrency(s.scanConcurrency)
	}
	return s, nil
}

// HasAnalyzer reports whether Analyze can be used.
func (s *Service) HasAnalyzer() bool {
	return s.analyzer != nil
}

// Bootstrap creates the graph constraints and indexes.
func (s *Service) Bootstrap(ctx context.Context) error {
	return s.ingestor.Bootstrap(ctx)
}

// Ingest merges one claim into the graph.
func (s *Service) Ingest(ctx context.Context, rec claims.Record) error {
	start := time.Now()
	err := s.ingestor.Ingest(ctx, rec)
	s.metrics.ObserveIngest(time.Since(start), err)
	if err != nil {
		return err
	}
	s.emit(func(a analytics.Service) analytics.TrackEvent { return a.NewClaimIngestedEvent(rec.InsuranceType) })
	return nil
}

// IngestBatch merges records in order and reports per-record failures.
func (s *Service) IngestBatch(ctx context.Context, recs []claims.Record) *ingest.BatchResult {
	start := time.Now()
	result := s.ingestor.IngestBatch(ctx, recs)
	var err error
	if len(result.Failed) > 0 {
		err = fmt.Errorf("%d of %d claims failed", len(result.Failed), len(recs))
	}
	s.metrics.ObserveIngest(time.Since(start), err)
	return result
}

// Check runs the real-time rules against rec and scores the flags.
// The claim is expected to be in the graph already.
func (s *Service) Check(ctx context.Context, rec claims.Record) (*CheckResult, error) {
	start := time.Now()
	eval, err := s.checker.Check(ctx, rec)
	if err != nil {
		s.metrics.ObserveCheck(time.Since(start), "", err)
		return nil, err
	}

	result := newCheckResult(eval, time.Since(start))
	s.metrics.ObserveCheck(time.Since(start), string(result.Recommendation), nil)
	for _, f := range result.Flags {
		s.metrics.IncFlag(string(f.Rule))
	}
	s.emit(func(a analytics.Service) analytics.TrackEvent {
		return a.NewFraudCheckEvent(string(result.Recommendation), result.FraudScore)
	})

	slog.Info("fraud check completed",
		"transactionId", rec.TransactionID,
		"score", result.FraudScore,
		"recommendation", result.Recommendation,
		"rules", result.RulesTriggered)
	return result, nil
}

// CheckByID loads a stored claim and checks it.
func (s *Service) CheckByID(ctx context.Context, transactionID string) (*CheckResult, error) {
	rec, err := s.LoadClaim(ctx, transactionID)
	if err != nil {
		return nil, err
	}
	return s.Check(ctx, rec)
}

// LoadClaim rebuilds the checkable fields of a stored claim.
func (s *Service) LoadClaim(ctx context.Context, transactionID string) (claims.Record, error) {
	records, err := s.db.ExecuteReadQuery(ctx, claimRecordQuery, map[string]any{"transaction_id": transactionID})
	if err != nil {
		return claims.Record{}, fmt.Errorf("failed to load claim %s: %w", transactionID, err)
	}
	if len(records) == 0 {
		return claims.Record{}, fmt.Errorf("%w: %s", ErrClaimNotFound, transactionID)
	}

	row := records[0].AsMap()
	rec, err := claims.FromMap(row)
	if err != nil {
		return claims.Record{}, fmt.Errorf("stored claim %s is invalid: %w", transactionID, err)
	}
	if asset, ok := row["asset_value"].(string); ok && asset != "" {
		rec.SetAsset(asset)
	}
	return rec, nil
}

// IngestAndCheck merges the claim, checks it and extracts its neighborhood.
func (s *Service) IngestAndCheck(ctx context.Context, rec claims.Record) (*IngestResult, error) {
	start := time.Now()
	if err := s.Ingest(ctx, rec); err != nil {
		return nil, err
	}

	check, err := s.Check(ctx, rec)
	if err != nil {
		return nil, err
	}

	graph, err := s.extractor.Extract(ctx, rec.TransactionID)
	if err != nil {
		return nil, err
	}
	elapsed := millis(time.Since(start))

	s.recordCheck(ctx, rec.TransactionID, check, elapsed)

	return &IngestResult{
		Success:              true,
		ClaimID:              rec.TransactionID,
		NodesCreated:         len(check.GraphVisualization.Nodes),
		RelationshipsCreated: len(check.GraphVisualization.Edges),
		IsFraudulent:         check.IsFraudulent,
		FraudScore:           check.FraudScore,
		DetectedPatterns:     detectedPatterns(check.Flags),
		Check:                check,
		Graph:                graph,
		GraphIngestMs:        elapsed,
	}, nil
}

// Scan runs every batch detector over the whole graph.
func (s *Service) Scan(ctx context.Context) (*ScanResult, error) {
	scanID := uuid.NewString()
	start := time.Now()

	report, err := s.scanner.Scan(ctx)
	if err != nil {
		s.metrics.ObserveScan(time.Since(start), 0, 0, err)
		return nil, err
	}
	s.metrics.ObserveScan(time.Since(start), len(report.Patterns), len(report.Failures), nil)
	s.emit(func(a analytics.Service) analytics.TrackEvent {
		return a.NewPatternScanEvent(len(report.Patterns), len(report.Failures))
	})

	slog.Info("pattern scan finished", "scanId", scanID, "patterns", len(report.Patterns), "failed", len(report.Failures))
	return &ScanResult{
		ScanID:         scanID,
		Patterns:       report.Patterns,
		FailedPatterns: report.Failures,
		DurationMs:     millis(time.Since(start)),
	}, nil
}

// DetectPattern runs the single batch detector with the given pattern name.
// A pattern without matches gives a result with no cases.
func (s *Service) DetectPattern(ctx context.Context, name string) (*patterns.PatternResult, error) {
	for _, d := range s.scanner.Detectors() {
		if d.Name() != name {
			continue
		}
		res, err := d.Detect(ctx)
		if err != nil {
			return nil, err
		}
		if res == nil {
			res = &patterns.PatternResult{PatternName: d.Name(), RiskLevel: d.Risk(), Description: d.Description(), Cases: []any{}}
		}
		return res, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownPattern, name)
}

// PatternNames lists the batch detectors in reporting order.
func (s *Service) PatternNames() []string {
	names := make([]string, 0, len(s.scanner.Detectors()))
	for _, d := range s.scanner.Detectors() {
		names = append(names, d.Name())
	}
	return names
}

// Graph returns the neighborhood of a claim. Unknown claims give an empty graph.
func (s *Service) Graph(ctx context.Context, transactionID string) (*visualization.Graph, error) {
	return s.extractor.Extract(ctx, transactionID)
}

// Stats counts every entity label in the graph.
func (s *Service) Stats(ctx context.Context) (*GraphStats, error) {
	records, err := s.db.ExecuteReadQuery(ctx, statsQuery, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to read graph stats: %w", err)
	}
	if len(records) == 0 {
		return &GraphStats{}, nil
	}

	r := database.NewRowReader(records[0])
	stats := &GraphStats{
		TotalPersons:   r.Int("total_persons"),
		TotalClaims:    r.Int("total_claims"),
		TotalPolicies:  r.Int("total_policies"),
		TotalAddresses: r.Int("total_addresses"),
		TotalAgents:    r.Int("total_agents"),
		TotalVendors:   r.Int("total_vendors"),
		TotalSSNs:      r.Int("total_ssns"),
		TotalAssets:    r.Int("total_assets"),
	}
	if r.Err() != nil {
		return nil, fmt.Errorf("failed to read graph stats: %w", r.Err())
	}
	return stats, nil
}

// Dashboard summarises suspicious claims across the graph.
func (s *Service) Dashboard(ctx context.Context) (*DashboardStats, error) {
	records, err := s.db.ExecuteReadQuery(ctx, dashboardQuery, map[string]any{"high_value": s.thresholds.HighValueAmount})
	if err != nil {
		return nil, fmt.Errorf("failed to read dashboard stats: %w", err)
	}
	if len(records) == 0 {
		return &DashboardStats{}, nil
	}

	r := database.NewRowReader(records[0])
	stats := &DashboardStats{
		TotalClaims:         r.Int("total_claims"),
		FraudDetected:       r.Int("fraud_detected"),
		EstimatedFraudValue: r.Float("estimated_fraud_value"),
	}
	if r.Err() != nil {
		return nil, fmt.Errorf("failed to read dashboard stats: %w", r.Err())
	}
	return stats, nil
}

// Analyze checks the claim and asks the narrative analyzer for an assessment.
// The recommendation follows the scoring tiers applied to the analyzer's risk score.
func (s *Service) Analyze(ctx context.Context, rec claims.Record) (*AnalysisResult, error) {
	if s.analyzer == nil {
		return nil, ErrAnalyzerUnavailable
	}

	check, err := s.Check(ctx, rec)
	if err != nil {
		return nil, err
	}

	analysis, err := s.analyzer.Analyze(ctx, narrative.AnalysisRequest{
		Claim:          rec,
		IsFraudulent:   check.IsFraudulent,
		FraudScore:     check.FraudScore,
		Recommendation: string(check.Recommendation),
		Patterns:       patternEvidence(detectedPatterns(check.Flags)),
	})
	if err != nil {
		return nil, err
	}

	result := &AnalysisResult{
		Check:          check,
		Analysis:       analysis,
		Recommendation: scoring.RecommendationFor(int(analysis.RiskScore)),
	}
	s.recordAnalysis(ctx, rec.TransactionID, result)
	return result, nil
}

func (s *Service) recordCheck(ctx context.Context, transactionID string, check *CheckResult, graphIngestMs float64) {
	if s.sink == nil {
		return
	}
	data, err := json.Marshal(check)
	if err != nil {
		slog.Warn("failed to encode fraud check", "transactionId", transactionID, "error", err)
		return
	}
	if err := s.sink.RecordFraudCheck(ctx, transactionID, data, string(check.Recommendation), graphIngestMs); err != nil {
		slog.Warn("failed to persist fraud check", "transactionId", transactionID, "error", err)
	}
}

func (s *Service) recordAnalysis(ctx context.Context, transactionID string, result *AnalysisResult) {
	if s.sink == nil {
		return
	}
	data, err := json.Marshal(result)
	if err != nil {
		slog.Warn("failed to encode analysis", "transactionId", transactionID, "error", err)
		return
	}
	if err := s.sink.RecordAnalysis(ctx, transactionID, data, string(result.Recommendation)); err != nil {
		slog.Warn("failed to persist analysis", "transactionId", transactionID, "error", err)
	}
}

func (s *Service) emit(build func(analytics.Service) analytics.TrackEvent) {
	if s.analytics == nil {
		return
	}
	s.analytics.EmitEvent(build(s.analytics))
}
