package cypher

import (
	"github.com/mark3labs/mcp-go/mcp"
)

func GetSchemaSpec() mcp.Tool {
	return mcp.NewTool("get-schema",
		mcp.WithDescription(`
		Retrieve the schema of the claims fraud graph.

		Returns:
		- Node labels (Person, Claim, Policy, Address, Agent, Vendor, SSN, Asset) with property types
		- Relationship patterns such as (Person)-[:FILED]->(Claim) and (Agent)-[:WORKS_WITH]->(Vendor)
		- Relationship property types, e.g. the WORKS_WITH count

		Call this before writing read-cypher queries.

		If the database contains no data, no schema information is returned.`),
		mcp.WithTitleAnnotation("Get Claims Graph Schema"),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithIdempotentHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithOpenWorldHintAnnotation(true),
	)
}
