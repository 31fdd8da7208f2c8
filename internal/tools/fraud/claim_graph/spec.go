package claim_graph

import "github.com/mark3labs/mcp-go/mcp"

type ClaimGraphInput struct {
	TransactionId string `json:"transactionId" jsonschema:"description=Transaction ID of the claim (required)"`
}

// Spec returns the MCP tool specification for get-claim-graph
func Spec() mcp.Tool {
	return mcp.NewTool("get-claim-graph",
		mcp.WithDescription(`Returns the neighborhood of a claim for visualization: the claimant, their other claims, SSN,
address, policy, the handling agent and repair vendor, the insured asset and every other claim
involving that asset.

Output: {"nodes": [{"id", "label", "data"}], "edges": [{"source", "target", "label", "data"}]}.
An unknown transactionId returns an empty graph.`),
		mcp.WithInputSchema[ClaimGraphInput](),
		mcp.WithTitleAnnotation("Get Claim Graph"),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithIdempotentHintAnnotation(true),
		mcp.WithOpenWorldHintAnnotation(true),
	)
}
