package claim_graph

import (
	"context"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mkd-neo4j/neo4j-claims-fraud/internal/tools"
)

// Handler returns the tool handler function for get-claim-graph
func Handler(deps *tools.ToolDependencies) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleClaimGraph(ctx, request, deps)
	}
}

func handleClaimGraph(ctx context.Context, request mcp.CallToolRequest, deps *tools.ToolDependencies) (*mcp.CallToolResult, error) {
	if deps.AnalyticsService == nil {
		errMessage := "Analytics service is not initialized"
		slog.Error(errMessage)
		return mcp.NewToolResultError(errMessage), nil
	}

	if deps.FraudService == nil {
		errMessage := "Fraud service is not initialized"
		slog.Error(errMessage)
		return mcp.NewToolResultError(errMessage), nil
	}

	deps.AnalyticsService.EmitEvent(
		deps.AnalyticsService.NewToolsEvent("get-claim-graph"),
	)

	var args ClaimGraphInput
	if err := request.BindArguments(&args); err != nil {
		slog.Error("error binding arguments", "error", err)
		return mcp.NewToolResultError(err.Error()), nil
	}

	if args.TransactionId == "" {
		errMessage := "transactionId parameter is required"
		slog.Error(errMessage)
		return mcp.NewToolResultError(errMessage), nil
	}

	graph, err := deps.FraudService.Graph(ctx, args.TransactionId)
	if err != nil {
		slog.Error("error extracting claim graph", "transactionId", args.TransactionId, "error", err)
		return mcp.NewToolResultError(err.Error()), nil
	}

	slog.Info("returning claim graph", "transactionId", args.TransactionId, "nodes", len(graph.Nodes), "edges", len(graph.Edges))
	return tools.JSONResult(graph), nil
}
