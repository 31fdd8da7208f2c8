package fraud

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"math"
	"slices"
	"time"

	"github.com/mkd-neo4j/neo4j-claims-fraud/internal/database"
	"github.com/mkd-neo4j/neo4j-claims-fraud/internal/fraud/patterns"
	"github.com/mkd-neo4j/neo4j-claims-fraud/internal/fraud/scoring"
)

const (
	DefaultEvaluationSample = 500
	MaxEvaluationSample     = 1000

	topRiskClaimLimit = 20
)

// Score buckets and risk levels reported by Evaluate.
const (
	bucket0to20   = "0-20"
	bucket20to40  = "20-40"
	bucket40to60  = "40-60"
	bucket60to80  = "60-80"
	bucket80to100 = "80-100"

	RiskLow    = "Low"
	RiskMedium = "Medium"
	RiskHigh   = "High"
)

// EvaluationResult summarises real-time checks over a sample of stored claims
// together with the batch pattern scan.
type EvaluationResult struct {
	SampleSize            int                        `json:"sample_size"`
	TotalClaimsEvaluated  int                        `json:"total_claims_evaluated"`
	FailedClaims          int                        `json:"failed_claims"`
	FraudDetected         int                        `json:"fraud_detected"`
	FraudRate             float64                    `json:"fraud_rate"`
	AvgFraudScore         float64                    `json:"avg_fraud_score"`
	ScoreDistribution     map[string]int             `json:"score_distribution"`
	RiskLevelDistribution map[string]int             `json:"risk_level_distribution"`
	PatternSummary        []PatternSummary           `json:"pattern_summary"`
	FailedPatterns        []patterns.DetectorFailure `json:"failed_patterns,omitempty"`
	TopRiskClaims         []EvaluatedClaim           `json:"top_risk_claims"`
	DurationMs            float64                    `json:"duration_ms"`
}

// PatternSummary is a batch pattern reduced to its case count.
type PatternSummary struct {
	PatternName string            `json:"pattern_name"`
	RiskLevel   patterns.Severity `json:"risk_level"`
	Description string            `json:"description"`
	CasesFound  int               `json:"cases_found"`
}

// EvaluatedClaim is one sampled claim and its check outcome.
type EvaluatedClaim struct {
	ClaimID        string                 `json:"claim_id"`
	CustomerName   string                 `json:"customer_name,omitempty"`
	Amount         float64                `json:"amount"`
	FraudScore     int                    `json:"fraud_score"`
	IsFraudulent   bool                   `json:"is_fraudulent"`
	Patterns       []patterns.Rule        `json:"patterns"`
	Recommendation scoring.Recommendation `json:"recommendation"`
}

// ClampSampleSize applies the evaluation default and upper bound.
func ClampSampleSize(n int) int {
	switch {
	case n <= 0:
		return DefaultEvaluationSample
	case n > MaxEvaluationSample:
		return MaxEvaluationSample
	default:
		return n
	}
}

// Evaluate checks a random sample of stored claims and aggregates the outcomes.
// A claim whose check fails is counted in FailedClaims and skipped.
func (s *Service) Evaluate(ctx context.Context, sampleSize int) (*EvaluationResult, error) {
	start := time.Now()
	sampleSize = ClampSampleSize(sampleSize)
	slog.Info("evaluation started", "sampleSize", sampleSize)

	ids, err := s.sampleClaims(ctx, sampleSize)
	if err != nil {
		return nil, err
	}

	result := &EvaluationResult{
		SampleSize: sampleSize,
		ScoreDistribution: map[string]int{
			bucket0to20: 0, bucket20to40: 0, bucket40to60: 0, bucket60to80: 0, bucket80to100: 0,
		},
		RiskLevelDistribution: map[string]int{RiskLow: 0, RiskMedium: 0, RiskHigh: 0},
		PatternSummary:        []PatternSummary{},
		TopRiskClaims:         []EvaluatedClaim{},
	}

	evaluated := make([]EvaluatedClaim, 0, len(ids))
	totalScore := 0
	for _, id := range ids {
		claim, err := s.evaluateClaim(ctx, id)
		if err != nil {
			if ctx.Err() != nil {
				return nil, fmt.Errorf("evaluation interrupted: %w", ctx.Err())
			}
			slog.Warn("evaluation skipped claim", "transactionId", id, "error", err)
			result.FailedClaims++
			continue
		}

		if claim.IsFraudulent {
			result.FraudDetected++
		}
		totalScore += claim.FraudScore
		bucket, risk := scoreBucket(claim.FraudScore)
		result.ScoreDistribution[bucket]++
		result.RiskLevelDistribution[risk]++
		evaluated = append(evaluated, claim)
	}

	result.TotalClaimsEvaluated = len(evaluated)
	if n := len(evaluated); n > 0 {
		result.AvgFraudScore = round2(float64(totalScore) / float64(n))
		result.FraudRate = round2(float64(result.FraudDetected) / float64(n) * 100)
	}

	slices.SortStableFunc(evaluated, func(a, b EvaluatedClaim) int {
		return cmp.Compare(b.FraudScore, a.FraudScore)
	})
	result.TopRiskClaims = evaluated[:min(len(evaluated), topRiskClaimLimit)]

	scan, err := s.Scan(ctx)
	if err != nil {
		return nil, err
	}
	for _, p := range scan.Patterns {
		result.PatternSummary = append(result.PatternSummary, PatternSummary{
			PatternName: p.PatternName,
			RiskLevel:   p.RiskLevel,
			Description: p.Description,
			CasesFound:  len(p.Cases),
		})
	}
	result.FailedPatterns = scan.FailedPatterns
	result.DurationMs = millis(time.Since(start))

	slog.Info("evaluation complete",
		"evaluated", result.TotalClaimsEvaluated,
		"failed", result.FailedClaims,
		"fraudDetected", result.FraudDetected,
		"fraudRate", result.FraudRate)
	return result, nil
}

func (s *Service) sampleClaims(ctx context.Context, limit int) ([]string, error) {
	records, err := s.db.ExecuteReadQuery(ctx, evaluationSampleQuery, map[string]any{"limit": limit})
	if err != nil {
		return nil, fmt.Errorf("failed to sample claims: %w", err)
	}
	ids := make([]string, 0, len(records))
	for _, record := range records {
		r := database.NewRowReader(record)
		id := r.Str("transaction_id")
		if err := r.Err(); err != nil {
			return nil, fmt.Errorf("failed to sample claims: %w", err)
		}
		if id != "" {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (s *Service) evaluateClaim(ctx context.Context, transactionID string) (EvaluatedClaim, error) {
	rec, err := s.LoadClaim(ctx, transactionID)
	if err != nil {
		return EvaluatedClaim{}, err
	}
	check, err := s.Check(ctx, rec)
	if err != nil {
		return EvaluatedClaim{}, err
	}
	return EvaluatedClaim{
		ClaimID:        rec.TransactionID,
		CustomerName:   rec.CustomerName,
		Amount:         rec.ClaimAmount,
		FraudScore:     check.FraudScore,
		IsFraudulent:   check.IsFraudulent,
		Patterns:       check.RulesTriggered,
		Recommendation: check.Recommendation,
	}, nil
}

func scoreBucket(score int) (bucket, risk string) {
	switch {
	case score < 20:
		return bucket0to20, RiskLow
	case score < 40:
		return bucket20to40, RiskLow
	case score < 60:
		return bucket40to60, RiskMedium
	case score < 80:
		return bucket60to80, RiskMedium
	default:
		return bucket80to100, RiskHigh
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
