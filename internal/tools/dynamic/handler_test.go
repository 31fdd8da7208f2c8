package dynamic

import (
	"context"
	"errors"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	analytics "github.com/mkd-neo4j/neo4j-claims-fraud/internal/analytics/mocks"
	db "github.com/mkd-neo4j/neo4j-claims-fraud/internal/database/mocks"
	"github.com/mkd-neo4j/neo4j-claims-fraud/internal/fraud"
	"github.com/mkd-neo4j/neo4j-claims-fraud/internal/fraud/patterns"
	"github.com/mkd-neo4j/neo4j-claims-fraud/internal/tools"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

var velocityGuide = &GuideConfig{
	Name:        "explain-velocity-fraud",
	Description: "Customers filing many claims.",
	Intent:      "Use for frequent filers.",
	Rule:        string(patterns.RuleVelocity),
	Pattern:     patterns.VelocityPattern,
	Severity:    string(patterns.SeverityMedium),
	Indicators: []IndicatorConfig{
		{Entity: "Person", SharedElements: []string{"Claim"}, Anomaly: "Too many claims"},
	},
	ReferenceCypher: "MATCH (p:Person)-[:FILED]->(c:Claim) RETURN p\n",
	Parameters: []ParameterConfig{
		{Name: "threshold", Type: "integer", Default: 3, Description: "Minimum claims"},
	},
	Category: "fraud",
}

func TestBuildEnrichedDescription(t *testing.T) {
	out := buildEnrichedDescription(velocityGuide)

	assert.Contains(t, out, "Customers filing many claims.")
	assert.Contains(t, out, "## Intent\nUse for frequent filers.")
	assert.Contains(t, out, "Real-time rule `VELOCITY_FRAUD` adds 25 points")
	assert.Contains(t, out, "Batch risk level: MEDIUM")
	assert.Contains(t, out, "- **Person**: Too many claims\n  Shared elements: Claim")
	assert.Contains(t, out, "```cypher\nMATCH (p:Person)-[:FILED]->(c:Claim) RETURN p\n```")
	assert.Contains(t, out, "- `$threshold` (integer) [default: 3]: Minimum claims")
	assert.NotContains(t, out, "## Reference Schema")
}

func guideRequest(args map[string]any) mcp.CallToolRequest {
	return mcp.CallToolRequest{Params: mcp.CallToolParams{Name: velocityGuide.Name, Arguments: args}}
}

func TestGuideHandler(t *testing.T) {
	ctrl := gomock.NewController(t)
	analyticsService := analytics.NewMockService(ctrl)
	analyticsService.EXPECT().NewToolsEvent(velocityGuide.Name).AnyTimes()
	analyticsService.EXPECT().EmitEvent(gomock.Any()).AnyTimes()

	t.Run("guidance only", func(t *testing.T) {
		deps := &tools.ToolDependencies{AnalyticsService: analyticsService}
		result, err := NewGuideHandler(velocityGuide, deps)(context.Background(), guideRequest(nil))
		require.NoError(t, err)
		require.False(t, result.IsError)

		text := result.Content[0].(mcp.TextContent).Text
		assert.Equal(t, buildEnrichedDescription(velocityGuide), text)
	})

	t.Run("with live matches", func(t *testing.T) {
		mockDB := db.NewMockService(ctrl)
		mockDB.EXPECT().
			ExecuteReadQuery(gomock.Any(), gomock.Any(), gomock.Any()).
			Return([]*neo4j.Record{{
				Keys:   []string{"customer_id", "customer_name", "claim_count", "total_claimed", "claims"},
				Values: []any{"C-1", "Jane", int64(4), 8000.0, []any{"T1", "T2", "T3", "T4"}},
			}}, nil)
		svc, err := fraud.NewService(mockDB)
		require.NoError(t, err)

		deps := &tools.ToolDependencies{AnalyticsService: analyticsService, FraudService: svc}
		result, err := NewGuideHandler(velocityGuide, deps)(context.Background(), guideRequest(map[string]any{"includeMatches": true}))
		require.NoError(t, err)
		require.False(t, result.IsError)

		text := result.Content[0].(mcp.TextContent).Text
		assert.Contains(t, text, "## Live Matches")
		assert.Contains(t, text, `"pattern_name":"Velocity Fraud"`)
		assert.Contains(t, text, `"customer_id":"C-1"`)
	})

	t.Run("live matches without fraud service", func(t *testing.T) {
		deps := &tools.ToolDependencies{AnalyticsService: analyticsService}
		result, err := NewGuideHandler(velocityGuide, deps)(context.Background(), guideRequest(map[string]any{"includeMatches": true}))
		require.NoError(t, err)
		assert.True(t, result.IsError)
	})

	t.Run("detector failure", func(t *testing.T) {
		mockDB := db.NewMockService(ctrl)
		mockDB.EXPECT().ExecuteReadQuery(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, errors.New("timeout"))
		svc, err := fraud.NewService(mockDB)
		require.NoError(t, err)

		deps := &tools.ToolDependencies{AnalyticsService: analyticsService, FraudService: svc}
		result, err := NewGuideHandler(velocityGuide, deps)(context.Background(), guideRequest(map[string]any{"includeMatches": true}))
		require.NoError(t, err)
		assert.True(t, result.IsError)
	})

	t.Run("includeMatches ignored for unbound guides", func(t *testing.T) {
		workflow := &GuideConfig{Name: velocityGuide.Name, Description: "Investigation steps."}
		deps := &tools.ToolDependencies{AnalyticsService: analyticsService}
		result, err := NewGuideHandler(workflow, deps)(context.Background(), guideRequest(map[string]any{"includeMatches": true}))
		require.NoError(t, err)
		require.False(t, result.IsError)
		assert.Equal(t, "Investigation steps.", result.Content[0].(mcp.TextContent).Text)
	})
}

func TestGuideRegistry(t *testing.T) {
	r := NewGuideRegistry("unused")
	r.guides = []*GuideConfig{
		velocityGuide,
		{Name: "claim-investigation-workflow", Description: "Steps.", Category: "workflow"},
	}

	serverTools := r.GetServerTools(&tools.ToolDependencies{})
	require.Len(t, serverTools, 2)

	velocity := serverTools[0].Tool
	assert.Equal(t, "explain-velocity-fraud", velocity.Name)
	require.NotNil(t, velocity.Annotations.ReadOnlyHint)
	assert.True(t, *velocity.Annotations.ReadOnlyHint)
	assert.Contains(t, velocity.InputSchema.Properties, "includeMatches")

	workflow := serverTools[1].Tool
	assert.NotContains(t, workflow.InputSchema.Properties, "includeMatches")

	assert.Equal(t, "workflow", r.GetCategory("claim-investigation-workflow"))
	assert.Equal(t, "unknown", r.GetCategory("nope"))
	assert.Equal(t, []string{"fraud", "workflow"}, r.ListCategories())
	assert.Len(t, r.GetGuidesByCategory("fraud"), 1)
}
