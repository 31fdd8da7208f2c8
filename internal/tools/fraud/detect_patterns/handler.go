package detect_patterns

import (
	"context"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mkd-neo4j/neo4j-claims-fraud/internal/tools"
)

// Handler returns the tool handler function for detect-fraud-patterns
func Handler(deps *tools.ToolDependencies) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleDetectPatterns(ctx, request, deps)
	}
}

func handleDetectPatterns(ctx context.Context, request mcp.CallToolRequest, deps *tools.ToolDependencies) (*mcp.CallToolResult, error) {
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
		deps.AnalyticsService.NewToolsEvent("detect-fraud-patterns"),
	)

	var args DetectPatternsInput
	if err := request.BindArguments(&args); err != nil {
		slog.Error("error binding arguments", "error", err)
		return mcp.NewToolResultError(err.Error()), nil
	}

	if args.Pattern != "" {
		result, err := deps.FraudService.DetectPattern(ctx, args.Pattern)
		if err != nil {
			slog.Error("error running detector", "pattern", args.Pattern, "error", err)
			return mcp.NewToolResultError(err.Error()), nil
		}
		return tools.JSONResult(result), nil
	}

	result, err := deps.FraudService.Scan(ctx)
	if err != nil {
		slog.Error("error scanning for fraud patterns", "error", err)
		return mcp.NewToolResultError(err.Error()), nil
	}
	return tools.JSONResult(result), nil
}
