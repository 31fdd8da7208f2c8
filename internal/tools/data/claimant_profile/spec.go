package claimant_profile

import "github.com/mark3labs/mcp-go/mcp"

// GetClaimantProfileInput defines the input parameters for the get-claimant-profile tool
type GetClaimantProfileInput struct {
	CustomerId string `json:"customerId" jsonschema:"description=customer_id of the claimant (required)"`
}

// Spec returns the MCP tool specification for get-claimant-profile
func Spec() mcp.Tool {
	return mcp.NewTool("get-claimant-profile",
		mcp.WithDescription(`Returns everything the graph knows about one claimant (a Person node keyed by customer_id).

The profile contains:
- **person**: the stored demographic properties
- **ssns**: each SSN with the other claimants using it
- **addresses**: each address with the other claimants living there
- **policies**: the policies the claimant owns
- **claims**: every claim the claimant filed, with amount, loss date, type and status

Shared SSNs and addresses are the entry points of identity rings. Follow up with check-claim-fraud
on the listed claims or get-claim-graph to see their neighborhood.`),
		mcp.WithInputSchema[GetClaimantProfileInput](),
		mcp.WithTitleAnnotation("Get Claimant Profile"),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithIdempotentHintAnnotation(true),
		mcp.WithOpenWorldHintAnnotation(true),
	)
}
