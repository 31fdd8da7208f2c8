package graph_stats

import (
	"context"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mkd-neo4j/neo4j-claims-fraud/internal/fraud"
	"github.com/mkd-neo4j/neo4j-claims-fraud/internal/tools"
)

// Response is the get-graph-stats payload.
type Response struct {
	Stats     *fraud.GraphStats     `json:"stats"`
	Dashboard *fraud.DashboardStats `json:"dashboard,omitempty"`
}

// Handler returns the tool handler function for get-graph-stats
func Handler(deps *tools.ToolDependencies) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleGraphStats(ctx, request, deps)
	}
}

func handleGraphStats(ctx context.Context, request mcp.CallToolRequest, deps *tools.ToolDependencies) (*mcp.CallToolResult, error) {
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
		deps.AnalyticsService.NewToolsEvent("get-graph-stats"),
	)

	var args GraphStatsInput
	if err := request.BindArguments(&args); err != nil {
		slog.Error("error binding arguments", "error", err)
		return mcp.NewToolResultError(err.Error()), nil
	}

	stats, err := deps.FraudService.Stats(ctx)
	if err != nil {
		slog.Error("error reading graph stats", "error", err)
		return mcp.NewToolResultError(err.Error()), nil
	}
	resp := Response{Stats: stats}

	if args.IncludeDashboard {
		resp.Dashboard, err = deps.FraudService.Dashboard(ctx)
		if err != nil {
			slog.Error("error reading dashboard stats", "error", err)
			return mcp.NewToolResultError(err.Error()), nil
		}
	}

	return tools.JSONResult(resp), nil
}
