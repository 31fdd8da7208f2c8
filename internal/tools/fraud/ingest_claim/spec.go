package ingest_claim

import "github.com/mark3labs/mcp-go/mcp"

type IngestClaimInput struct {
	Claim map[string]any `json:"claim" jsonschema:"description=The claim record. Flat snake_case keys (customer_id, transaction_id, claim_amount, loss_date, insurance_type, ssn, agent_id, vendor_id, vin, imei, property_address, ...), upper-case CSV keys or a document extraction payload with nested policyholder_info / claim_summary / vehicle_details sections are all accepted."`
}

// Spec returns the MCP tool specification for ingest-claim
func Spec() mcp.Tool {
	return mcp.NewTool("ingest-claim",
		mcp.WithDescription(`Merges an insurance claim into the fraud graph and immediately checks it.

The claim is normalized, then the claimant, SSN, address, policy, agent, vendor and insured asset are upserted and linked.
Re-ingesting a claim with the same transaction_id updates it in place.

Returns:
- success and claim_id
- fraud_score (0-100), is_fraudulent and the triggered rules with messages
- recommendation: APPROVE (score < 40), MANUAL_REVIEW (40-74) or REJECT (75+)
- detected_patterns with their confidence and evidence
- the evidence graph and the claim's full neighborhood for visualization

customer_id and transaction_id are required.`),
		mcp.WithInputSchema[IngestClaimInput](),
		mcp.WithTitleAnnotation("Ingest Claim"),
		mcp.WithReadOnlyHintAnnotation(false),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithIdempotentHintAnnotation(false),
		mcp.WithOpenWorldHintAnnotation(true),
	)
}
