package graph_stats

import "github.com/mark3labs/mcp-go/mcp"

type GraphStatsInput struct {
	IncludeDashboard bool `json:"includeDashboard,omitempty" jsonschema:"default=false,description=Also return total claims, fraud detected and estimated fraud value"`
}

// Spec returns the MCP tool specification for get-graph-stats
func Spec() mcp.Tool {
	return mcp.NewTool("get-graph-stats",
		mcp.WithDescription(`Counts the entities in the claims graph: persons, claims, policies, addresses, agents,
vendors, SSNs and assets.

With includeDashboard the response also carries dashboard figures: total claims, the number
of claims touching a shared SSN, a recycled asset, a frequent filer or a high value amount,
and the summed amount of those claims.`),
		mcp.WithInputSchema[GraphStatsInput](),
		mcp.WithTitleAnnotation("Get Graph Stats"),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithIdempotentHintAnnotation(true),
		mcp.WithOpenWorldHintAnnotation(true),
	)
}
