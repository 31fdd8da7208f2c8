package fraud

import (
	"time"

	"github.com/mkd-neo4j/neo4j-claims-fraud/internal/fraud/patterns"
	"github.com/mkd-neo4j/neo4j-claims-fraud/internal/fraud/scoring"
	"github.com/mkd-neo4j/neo4j-claims-fraud/internal/fraud/visualization"
	"github.com/mkd-neo4j/neo4j-claims-fraud/internal/narrative"
)

// CheckResult is the outcome of a real-time fraud check.
type CheckResult struct {
	IsFraudulent       bool                   `json:"is_fraudulent"`
	FraudScore         int                    `json:"fraud_score"`
	Flags              []patterns.Flag        `json:"flags"`
	RulesTriggered     []patterns.Rule        `json:"rules_triggered"`
	Messages           []string               `json:"messages"`
	Recommendation     scoring.Recommendation `json:"recommendation"`
	GraphVisualization *visualization.Graph   `json:"graph_visualization"`
	CheckDurationMs    float64                `json:"check_duration_ms"`
}

func newCheckResult(eval *patterns.Evaluation, elapsed time.Duration) *CheckResult {
	a := scoring.Assess(eval.Flags)
	flags := eval.Flags
	if flags == nil {
		flags = []patterns.Flag{}
	}
	return &CheckResult{
		IsFraudulent:       a.IsFraudulent,
		FraudScore:         a.Score,
		Flags:              flags,
		RulesTriggered:     a.RulesTriggered,
		Messages:           a.Messages,
		Recommendation:     a.Recommendation,
		GraphVisualization: eval.Evidence,
		CheckDurationMs:    millis(elapsed),
	}
}

// DetectedPattern is a triggered rule presented as a pattern finding.
type DetectedPattern struct {
	PatternType string   `json:"pattern_type"`
	Confidence  string   `json:"confidence"`
	Evidence    []string `json:"evidence"`
}

func detectedPatterns(flags []patterns.Flag) []DetectedPattern {
	out := make([]DetectedPattern, 0, len(flags))
	for _, f := range flags {
		out = append(out, DetectedPattern{
			PatternType: string(f.Rule),
			Confidence:  string(f.Severity),
			Evidence:    []string{f.Message},
		})
	}
	return out
}

func patternEvidence(found []DetectedPattern) []narrative.PatternEvidence {
	out := make([]narrative.PatternEvidence, 0, len(found))
	for _, p := range found {
		out = append(out, narrative.PatternEvidence{Type: p.PatternType, Confidence: p.Confidence, Evidence: p.Evidence})
	}
	return out
}

// IngestResult is the outcome of ingesting and checking one claim.
type IngestResult struct {
	Success              bool                 `json:"success"`
	ClaimID              string               `json:"claim_id"`
	NodesCreated         int                  `json:"nodes_created"`
	RelationshipsCreated int                  `json:"relationships_created"`
	IsFraudulent         bool                 `json:"is_fraudulent"`
	FraudScore           int                  `json:"fraud_score"`
	DetectedPatterns     []DetectedPattern    `json:"detected_patterns"`
	Check                *CheckResult         `json:"fraud_check"`
	Graph                *visualization.Graph `json:"fraud_graph_output"`
	GraphIngestMs        float64              `json:"graph_ingest_ms"`
}

// ScanResult is the outcome of a batch pattern scan.
type ScanResult struct {
	ScanID         string                     `json:"scan_id"`
	Patterns       []patterns.PatternResult   `json:"patterns"`
	FailedPatterns []patterns.DetectorFailure `json:"failed_patterns,omitempty"`
	DurationMs     float64                    `json:"duration_ms"`
}

// AnalysisResult pairs the graph check with the narrative assessment.
type AnalysisResult struct {
	Check          *CheckResult           `json:"graph_analysis"`
	Analysis       *narrative.Analysis    `json:"llm_analysis"`
	Recommendation scoring.Recommendation `json:"recommendation"`
}

// GraphStats counts the entities in the graph.
type GraphStats struct {
	TotalPersons   int64 `json:"total_persons"`
	TotalClaims    int64 `json:"total_claims"`
	TotalPolicies  int64 `json:"total_policies"`
	TotalAddresses int64 `json:"total_addresses"`
	TotalAgents    int64 `json:"total_agents"`
	TotalVendors   int64 `json:"total_vendors"`
	TotalSSNs      int64 `json:"total_ssns"`
	TotalAssets    int64 `json:"total_assets"`
}

// DashboardStats summarises suspicious activity across all claims.
type DashboardStats struct {
	TotalClaims         int64   `json:"total_claims"`
	FraudDetected       int64   `json:"fraud_detected"`
	EstimatedFraudValue float64 `json:"estimated_fraud_value"`
}

func millis(d time.Duration) float64 {
	return float64(d.Microseconds()) / 1000
}
