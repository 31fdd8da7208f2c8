package check_claim

import (
	"context"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mkd-neo4j/neo4j-claims-fraud/internal/claims"
	"github.com/mkd-neo4j/neo4j-claims-fraud/internal/fraud"
	"github.com/mkd-neo4j/neo4j-claims-fraud/internal/tools"
)

// Handler returns the tool handler function for check-claim-fraud
func Handler(deps *tools.ToolDependencies) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleCheckClaim(ctx, request, deps)
	}
}

func handleCheckClaim(ctx context.Context, request mcp.CallToolRequest, deps *tools.ToolDependencies) (*mcp.CallToolResult, error) {
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
		deps.AnalyticsService.NewToolsEvent("check-claim-fraud"),
	)

	var args CheckClaimInput
	if err := request.BindArguments(&args); err != nil {
		slog.Error("error binding arguments", "error", err)
		return mcp.NewToolResultError(err.Error()), nil
	}

	result, err := check(ctx, deps.FraudService, args)
	if err != nil {
		slog.Error("error checking claim", "transactionId", args.TransactionId, "error", err)
		return mcp.NewToolResultError(err.Error()), nil
	}

	return tools.JSONResult(result), nil
}

func check(ctx context.Context, svc *fraud.Service, args CheckClaimInput) (*fraud.CheckResult, error) {
	switch {
	case args.TransactionId != "" && len(args.Claim) > 0:
		return nil, errBothInputs
	case args.TransactionId != "":
		return svc.CheckByID(ctx, args.TransactionId)
	case len(args.Claim) > 0:
		rec, err := claims.FromMap(args.Claim)
		if err != nil {
			return nil, err
		}
		return svc.Check(ctx, rec)
	default:
		return nil, errNoInput
	}
}
