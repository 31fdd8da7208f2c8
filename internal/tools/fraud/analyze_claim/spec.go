package analyze_claim

import "github.com/mark3labs/mcp-go/mcp"

type AnalyzeClaimInput struct {
	TransactionId string         `json:"transactionId,omitempty" jsonschema:"description=Transaction ID of a claim already in the graph. Provide this or claim, not both."`
	Claim         map[string]any `json:"claim,omitempty" jsonschema:"description=A claim record to analyze. It should already have been ingested."`
}

// Spec returns the MCP tool specification for analyze-claim
func Spec() mcp.Tool {
	return mcp.NewTool("analyze-claim",
		mcp.WithDescription(`Checks a claim against the graph rules and asks the language model for a written fraud assessment.

Returns graph_analysis (the rule-based check), llm_analysis (is_fraudulent, confidence_level,
risk_score 0-100, summary, detailed_reasoning, recommendations, red_flags, mitigating_factors)
and a recommendation derived from the model's risk_score with the same tiers as the rule score.

Only available when a language model is configured.`),
		mcp.WithInputSchema[AnalyzeClaimInput](),
		mcp.WithTitleAnnotation("Analyze Claim"),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithIdempotentHintAnnotation(false),
		mcp.WithOpenWorldHintAnnotation(true),
	)
}
