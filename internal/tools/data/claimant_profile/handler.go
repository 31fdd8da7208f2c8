package claimant_profile

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mkd-neo4j/neo4j-claims-fraud/internal/tools"
)

// claimantProfileQuery collects the claimant's identity elements and claims in one row.
// Other claimants sharing an SSN or address are listed alongside each element.
const claimantProfileQuery = `
MATCH (p:Person {customer_id: $customer_id})
RETURN properties(p) AS person,
       [(p)-[:HAS_SSN]->(s:SSN) | {
           value: s.value,
           shared_with: [(s)<-[:HAS_SSN]-(o:Person) WHERE o <> p | o.customer_id]
       }] AS ssns,
       [(p)-[:LIVES_AT]->(a:Address) | {
           address: a.line1, city: a.city, state: a.state, postal_code: a.postal_code,
           residents: [(a)<-[:LIVES_AT]-(o:Person) WHERE o <> p | o.customer_id]
       }] AS addresses,
       [(p)-[:OWNS_POLICY]->(pol:Policy) | properties(pol)] AS policies,
       [(p)-[:FILED]->(c:Claim) | {
           transaction_id: c.transaction_id, amount: c.amount, loss_date: c.loss_date,
           type: c.type, status: c.status
       }] AS claims
`

// Handler returns the tool handler function for get-claimant-profile
func Handler(deps *tools.ToolDependencies) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleGetClaimantProfile(ctx, request, deps)
	}
}

func handleGetClaimantProfile(ctx context.Context, request mcp.CallToolRequest, deps *tools.ToolDependencies) (*mcp.CallToolResult, error) {
	if deps.AnalyticsService == nil {
		errMessage := "Analytics service is not initialized"
		slog.Error(errMessage)
		return mcp.NewToolResultError(errMessage), nil
	}

	if deps.DBService == nil {
		errMessage := "Database service is not initialized"
		slog.Error(errMessage)
		return mcp.NewToolResultError(errMessage), nil
	}

	deps.AnalyticsService.EmitEvent(
		deps.AnalyticsService.NewToolsEvent("get-claimant-profile"),
	)

	var args GetClaimantProfileInput
	if err := request.BindArguments(&args); err != nil {
		slog.Error("error binding arguments", "error", err)
		return mcp.NewToolResultError(err.Error()), nil
	}

	if args.CustomerId == "" {
		errMessage := "customerId parameter is required"
		slog.Error(errMessage)
		return mcp.NewToolResultError(errMessage), nil
	}

	slog.Info("retrieving claimant profile", "customerId", args.CustomerId)

	records, err := deps.DBService.ExecuteReadQuery(ctx, claimantProfileQuery, map[string]any{
		"customer_id": args.CustomerId,
	})
	if err != nil {
		slog.Error("error executing claimant profile query", "error", err)
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(records) == 0 {
		return mcp.NewToolResultError(fmt.Sprintf("claimant %s not found", args.CustomerId)), nil
	}

	response, err := deps.DBService.Neo4jRecordsToJSON(records)
	if err != nil {
		slog.Error("error formatting query results", "error", err)
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(response), nil
}
