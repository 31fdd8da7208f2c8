package claimant_profile_test

import (
	"context"
	"errors"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	analytics "github.com/mkd-neo4j/neo4j-claims-fraud/internal/analytics/mocks"
	db "github.com/mkd-neo4j/neo4j-claims-fraud/internal/database/mocks"
	"github.com/mkd-neo4j/neo4j-claims-fraud/internal/tools"
	"github.com/mkd-neo4j/neo4j-claims-fraud/internal/tools/data/claimant_profile"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func request(args map[string]any) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      "get-claimant-profile",
			Arguments: args,
		},
	}
}

func TestClaimantProfileHandler(t *testing.T) {
	ctrl := gomock.NewController(t)
	analyticsService := analytics.NewMockService(ctrl)
	analyticsService.EXPECT().NewToolsEvent("get-claimant-profile").AnyTimes()
	analyticsService.EXPECT().EmitEvent(gomock.Any()).AnyTimes()

	t.Run("returns the profile row", func(t *testing.T) {
		mockDB := db.NewMockService(ctrl)
		records := []*neo4j.Record{{
			Keys:   []string{"person", "ssns", "addresses", "policies", "claims"},
			Values: []any{map[string]any{"customer_id": "C-1"}, []any{}, []any{}, []any{}, []any{}},
		}}
		mockDB.EXPECT().
			ExecuteReadQuery(gomock.Any(), gomock.Any(), map[string]any{"customer_id": "C-1"}).
			Return(records, nil)
		mockDB.EXPECT().Neo4jRecordsToJSON(records).Return(`[{"person":{"customer_id":"C-1"}}]`, nil)

		deps := &tools.ToolDependencies{DBService: mockDB, AnalyticsService: analyticsService}
		result, err := claimant_profile.Handler(deps)(context.Background(), request(map[string]any{"customerId": "C-1"}))
		require.NoError(t, err)
		require.False(t, result.IsError)
		assert.Contains(t, result.Content[0].(mcp.TextContent).Text, `"customer_id":"C-1"`)
	})

	t.Run("unknown claimant", func(t *testing.T) {
		mockDB := db.NewMockService(ctrl)
		mockDB.EXPECT().ExecuteReadQuery(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, nil)

		deps := &tools.ToolDependencies{DBService: mockDB, AnalyticsService: analyticsService}
		result, err := claimant_profile.Handler(deps)(context.Background(), request(map[string]any{"customerId": "C-404"}))
		require.NoError(t, err)
		assert.True(t, result.IsError)
		assert.Contains(t, result.Content[0].(mcp.TextContent).Text, "claimant C-404 not found")
	})

	t.Run("query failure", func(t *testing.T) {
		mockDB := db.NewMockService(ctrl)
		mockDB.EXPECT().ExecuteReadQuery(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, errors.New("boom"))

		deps := &tools.ToolDependencies{DBService: mockDB, AnalyticsService: analyticsService}
		result, err := claimant_profile.Handler(deps)(context.Background(), request(map[string]any{"customerId": "C-1"}))
		require.NoError(t, err)
		assert.True(t, result.IsError)
	})

	t.Run("missing customerId", func(t *testing.T) {
		deps := &tools.ToolDependencies{DBService: db.NewMockService(ctrl), AnalyticsService: analyticsService}
		result, err := claimant_profile.Handler(deps)(context.Background(), request(map[string]any{}))
		require.NoError(t, err)
		assert.True(t, result.IsError)
		assert.Contains(t, result.Content[0].(mcp.TextContent).Text, "customerId parameter is required")
	})

	t.Run("nil database service", func(t *testing.T) {
		deps := &tools.ToolDependencies{AnalyticsService: analyticsService}
		result, err := claimant_profile.Handler(deps)(context.Background(), request(map[string]any{"customerId": "C-1"}))
		require.NoError(t, err)
		assert.True(t, result.IsError)
		assert.Contains(t, result.Content[0].(mcp.TextContent).Text, "Database service is not initialized")
	})
}
