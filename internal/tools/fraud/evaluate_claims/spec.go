package evaluate_claims

import (
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mkd-neo4j/neo4j-claims-fraud/internal/fraud"
)

type EvaluateClaimsInput struct {
	SampleSize int `json:"sample_size,omitempty" jsonschema:"description=Number of stored claims to check. Defaults to 500 and is capped at 1000."`
}

// Spec returns the MCP tool specification for evaluate-fraud-detection
func Spec() mcp.Tool {
	return mcp.NewTool("evaluate-fraud-detection",
		mcp.WithDescription(fmt.Sprintf(`Runs the real-time fraud check over a random sample of stored claims
(default %d, max %d) and reports how the rules behave across the portfolio:
- fraud_detected and fraud_rate (percent of evaluated claims scoring 40 or more)
- avg_fraud_score and a score_distribution over 0-20, 20-40, 40-60, 60-80 and 80-100
- risk_level_distribution: Low (<40), Medium (40-79), High (80+)
- pattern_summary: the number of cases each batch pattern currently finds
- top_risk_claims: the 20 highest scoring sampled claims

Claims whose check fails are skipped and counted under failed_claims.`, fraud.DefaultEvaluationSample, fraud.MaxEvaluationSample)),
		mcp.WithInputSchema[EvaluateClaimsInput](),
		mcp.WithTitleAnnotation("Evaluate Fraud Detection"),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithIdempotentHintAnnotation(false),
		mcp.WithOpenWorldHintAnnotation(true),
	)
}
