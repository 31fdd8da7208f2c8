package check_claim

import "github.com/mark3labs/mcp-go/mcp"

type CheckClaimInput struct {
	TransactionId string         `json:"transactionId,omitempty" jsonschema:"description=Transaction ID of a claim already in the graph. Provide this or claim, not both."`
	Claim         map[string]any `json:"claim,omitempty" jsonschema:"description=A claim record to check as-is. The claim must already have been ingested for graph-based rules to see it."`
}

// Spec returns the MCP tool specification for check-claim-fraud
func Spec() mcp.Tool {
	return mcp.NewTool("check-claim-fraud",
		mcp.WithDescription(`Runs the real-time fraud rules against one claim and scores it.

Rules and points:
- VELOCITY_FRAUD (25): the claimant has more than 2 claims
- SHARED_PII (40): the claimant's SSN is used by more than one person
- COLLUSION (25): the handling agent and repair vendor share more than 10 claims
- HIGH_VALUE (15): the amount exceeds $50,000
- ASSET_RECYCLING (30): the VIN, IMEI or property address appears on another claim
- DOUBLE_DIPPING (45): another claim has the same amount, loss date and insurance type

The score is the sum of the distinct triggered rules capped at 100.
A score of 40 or more is fraudulent. Recommendation: APPROVE (< 40), MANUAL_REVIEW (40-74), REJECT (75+).

Returns the score, flags, messages, recommendation and the evidence graph.
A failed check is reported as an error, never as an approval.`),
		mcp.WithInputSchema[CheckClaimInput](),
		mcp.WithTitleAnnotation("Check Claim Fraud"),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithIdempotentHintAnnotation(true),
		mcp.WithOpenWorldHintAnnotation(true),
	)
}
