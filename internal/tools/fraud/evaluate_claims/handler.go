package evaluate_claims

import (
	"context"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mkd-neo4j/neo4j-claims-fraud/internal/tools"
)

// Handler returns the tool handler function for evaluate-fraud-detection
func Handler(deps *tools.ToolDependencies) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleEvaluateClaims(ctx, request, deps)
	}
}

func handleEvaluateClaims(ctx context.Context, request mcp.CallToolRequest, deps *tools.ToolDependencies) (*mcp.CallToolResult, error) {
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
		deps.AnalyticsService.NewToolsEvent("evaluate-fraud-detection"),
	)

	var args EvaluateClaimsInput
	if err := request.BindArguments(&args); err != nil {
		slog.Error("error binding arguments", "error", err)
		return mcp.NewToolResultError(err.Error()), nil
	}

	result, err := deps.FraudService.Evaluate(ctx, args.SampleSize)
	if err != nil {
		slog.Error("error evaluating claims", "sampleSize", args.SampleSize, "error", err)
		return mcp.NewToolResultError(err.Error()), nil
	}
	return tools.JSONResult(result), nil
}
