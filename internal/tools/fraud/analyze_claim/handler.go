package analyze_claim

import (
	"context"
	"errors"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mkd-neo4j/neo4j-claims-fraud/internal/claims"
	"github.com/mkd-neo4j/neo4j-claims-fraud/internal/tools"
)

// Handler returns the tool handler function for analyze-claim
func Handler(deps *tools.ToolDependencies) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleAnalyzeClaim(ctx, request, deps)
	}
}

func handleAnalyzeClaim(ctx context.Context, request mcp.CallToolRequest, deps *tools.ToolDependencies) (*mcp.CallToolResult, error) {
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
		deps.AnalyticsService.NewToolsEvent("analyze-claim"),
	)

	var args AnalyzeClaimInput
	if err := request.BindArguments(&args); err != nil {
		slog.Error("error binding arguments", "error", err)
		return mcp.NewToolResultError(err.Error()), nil
	}

	var (
		rec claims.Record
		err error
	)
	switch {
	case args.TransactionId != "" && len(args.Claim) > 0:
		err = errors.New("provide transactionId or claim, not both")
	case args.TransactionId != "":
		rec, err = deps.FraudService.LoadClaim(ctx, args.TransactionId)
	case len(args.Claim) > 0:
		rec, err = claims.FromMap(args.Claim)
	default:
		err = errors.New("either transactionId or claim is required")
	}
	if err != nil {
		slog.Error("invalid analyze-claim input", "error", err)
		return mcp.NewToolResultError(err.Error()), nil
	}

	result, err := deps.FraudService.Analyze(ctx, rec)
	if err != nil {
		slog.Error("error analyzing claim", "transactionId", rec.TransactionID, "error", err)
		return mcp.NewToolResultError(err.Error()), nil
	}

	return tools.JSONResult(result), nil
}
