package detect_patterns

import (
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mkd-neo4j/neo4j-claims-fraud/internal/fraud/patterns"
)

type DetectPatternsInput struct {
	Pattern string `json:"pattern,omitempty" jsonschema:"description=Optional: run only this detector. One of the pattern names listed in the tool description. Omit to scan for every pattern."`
}

// Spec returns the MCP tool specification for detect-fraud-patterns
func Spec() mcp.Tool {
	return mcp.NewTool("detect-fraud-patterns",
		mcp.WithDescription(`Scans the whole claims graph for organised fraud topologies.

Patterns (risk level):
- "`+patterns.SharedPIIPattern+`" (CRITICAL): persons sharing one SSN
- "`+patterns.CollusionPattern+`" (HIGH): agent/vendor pairs sharing more than 5 claims
- "`+patterns.AssetRecyclingPattern+`" (HIGH): one VIN, IMEI or property claimed more than once
- "`+patterns.VelocityPattern+`" (MEDIUM): customers with 3 or more claims
- "`+patterns.DoubleDippingPattern+`" (HIGH): claim pairs with the same amount, loss date and type
- "`+patterns.SharedAddressPattern+`" (MEDIUM): addresses with several claimants and more than 2 claims

Only patterns with matches are returned. Detectors that fail are listed under failed_patterns
and the rest of the scan still completes.`),
		mcp.WithInputSchema[DetectPatternsInput](),
		mcp.WithTitleAnnotation("Detect Fraud Patterns"),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithIdempotentHintAnnotation(true),
		mcp.WithOpenWorldHintAnnotation(true),
	)
}
