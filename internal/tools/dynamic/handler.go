package dynamic

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mkd-neo4j/neo4j-claims-fraud/internal/fraud/patterns"
	"github.com/mkd-neo4j/neo4j-claims-fraud/internal/fraud/scoring"
	"github.com/mkd-neo4j/neo4j-claims-fraud/internal/tools"
)

// GuideInput is the optional argument of a guide that is bound to a detector.
type GuideInput struct {
	IncludeMatches bool `json:"includeMatches"`
}

// NewGuideHandler returns the guidance for a guide, followed by the live
// detector matches when the caller asks for them.
func NewGuideHandler(guide *GuideConfig, deps *tools.ToolDependencies) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleGuide(ctx, request, guide, deps)
	}
}

func handleGuide(ctx context.Context, request mcp.CallToolRequest, guide *GuideConfig, deps *tools.ToolDependencies) (*mcp.CallToolResult, error) {
	if deps.AnalyticsService != nil {
		deps.AnalyticsService.EmitEvent(deps.AnalyticsService.NewToolsEvent(guide.Name))
	}

	var args GuideInput
	if err := request.BindArguments(&args); err != nil {
		slog.Error("error binding arguments", "tool", guide.Name, "error", err)
		return mcp.NewToolResultError(err.Error()), nil
	}

	slog.Info("guidance tool called", "tool", guide.Name, "category", guide.Category, "includeMatches", args.IncludeMatches)

	text := buildEnrichedDescription(guide)
	if !args.IncludeMatches || guide.Pattern == "" {
		return mcp.NewToolResultText(text), nil
	}

	if deps.FraudService == nil {
		errMessage := "fraud service is not initialized"
		slog.Error(errMessage)
		return mcp.NewToolResultError(errMessage), nil
	}

	result, err := deps.FraudService.DetectPattern(ctx, guide.Pattern)
	if err != nil {
		slog.Error("error running detector", "pattern", guide.Pattern, "error", err)
		return mcp.NewToolResultError(err.Error()), nil
	}

	matches, err := json.Marshal(result)
	if err != nil {
		slog.Error("error formatting detector matches", "error", err)
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(text + "\n\n## Live Matches\n```json\n" + string(matches) + "\n```\n"), nil
}

// buildEnrichedDescription renders every semantic field of a guide as markdown.
func buildEnrichedDescription(guide *GuideConfig) string {
	var sb strings.Builder

	sb.WriteString(guide.Description)

	if guide.Intent != "" {
		sb.WriteString("\n\n## Intent\n")
		sb.WriteString(guide.Intent)
	}

	if guide.Rule != "" || guide.Severity != "" {
		sb.WriteString("\n\n## Scoring\n")
		if guide.Rule != "" {
			fmt.Fprintf(&sb, "- Real-time rule `%s` adds %d points to the fraud score\n", guide.Rule, scoring.Weights[patterns.Rule(guide.Rule)])
		}
		if guide.Severity != "" {
			fmt.Fprintf(&sb, "- Batch risk level: %s\n", guide.Severity)
		}
	}

	if len(guide.Indicators) > 0 {
		sb.WriteString("\n\n## Indicators\n")
		for _, ind := range guide.Indicators {
			fmt.Fprintf(&sb, "- **%s**: %s\n", ind.Entity, ind.Anomaly)
			if len(ind.SharedElements) > 0 {
				fmt.Fprintf(&sb, "  Shared elements: %s\n", strings.Join(ind.SharedElements, ", "))
			}
		}
	}

	if guide.ReferenceCypher != "" {
		sb.WriteString("\n\n## Reference Cypher\n```cypher\n")
		sb.WriteString(strings.TrimSpace(guide.ReferenceCypher))
		sb.WriteString("\n```\n")
	}

	if guide.ReferenceSchema != nil {
		sb.WriteString("\n\n## Reference Schema\n")
		if len(guide.ReferenceSchema.Labels) > 0 {
			fmt.Fprintf(&sb, "- Labels: %s\n", strings.Join(guide.ReferenceSchema.Labels, ", "))
		}
		if len(guide.ReferenceSchema.Relationships) > 0 {
			fmt.Fprintf(&sb, "- Relationships: %s\n", strings.Join(guide.ReferenceSchema.Relationships, ", "))
		}
	}

	if len(guide.Parameters) > 0 {
		sb.WriteString("\n\n## Parameters\n")
		for _, p := range guide.Parameters {
			fmt.Fprintf(&sb, "- `$%s` (%s)", p.Name, p.Type)
			if p.Default != nil {
				fmt.Fprintf(&sb, " [default: %v]", p.Default)
			}
			if p.Description != "" {
				fmt.Fprintf(&sb, ": %s", p.Description)
			}
			sb.WriteString("\n")
		}
	}

	return sb.String()
}
