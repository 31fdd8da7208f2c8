package ingest_claim

import (
	"context"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mkd-neo4j/neo4j-claims-fraud/internal/claims"
	"github.com/mkd-neo4j/neo4j-claims-fraud/internal/tools"
)

// Handler returns the tool handler function for ingest-claim
func Handler(deps *tools.ToolDependencies) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleIngestClaim(ctx, request, deps)
	}
}

func handleIngestClaim(ctx context.Context, request mcp.CallToolRequest, deps *tools.ToolDependencies) (*mcp.CallToolResult, error) {
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
		deps.AnalyticsService.NewToolsEvent("ingest-claim"),
	)

	var args IngestClaimInput
	if err := request.BindArguments(&args); err != nil {
		slog.Error("error binding arguments", "error", err)
		return mcp.NewToolResultError(err.Error()), nil
	}

	if len(args.Claim) == 0 {
		errMessage := "claim parameter is required and cannot be empty"
		slog.Error(errMessage)
		return mcp.NewToolResultError(errMessage), nil
	}

	rec, err := claims.FromMap(args.Claim)
	if err != nil {
		slog.Error("invalid claim", "error", err)
		return mcp.NewToolResultError(err.Error()), nil
	}

	slog.Info("ingesting claim", "transactionId", rec.TransactionID, "insuranceType", rec.InsuranceType)

	result, err := deps.FraudService.IngestAndCheck(ctx, rec)
	if err != nil {
		slog.Error("error ingesting claim", "transactionId", rec.TransactionID, "error", err)
		return mcp.NewToolResultError(err.Error()), nil
	}

	return tools.JSONResult(result), nil
}
