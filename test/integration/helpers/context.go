package helpers

import (
	"context"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mkd-neo4j/neo4j-claims-fraud/internal/analytics"
	"github.com/mkd-neo4j/neo4j-claims-fraud/internal/database"
	"github.com/mkd-neo4j/neo4j-claims-fraud/internal/fraud"
	"github.com/mkd-neo4j/neo4j-claims-fraud/internal/tools"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/stretchr/testify/require"
)

// ToolHandler is the function every tool package returns from Handler.
type ToolHandler func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error)

// TestContext bundles the services a test needs against an empty graph.
type TestContext struct {
	Ctx   context.Context
	T     *testing.T
	DB    *database.Neo4jService
	Fraud *fraud.Service
	Deps  *tools.ToolDependencies
}

// NewTestContext wipes the graph, creates the constraints and wires a fraud service.
// The detectors read fixed labels, so tests sharing a TestContext must not run in parallel.
func NewTestContext(t *testing.T, driver neo4j.DriverWithContext) *TestContext {
	t.Helper()
	ctx := context.Background()

	db, err := database.NewNeo4jService(driver, "neo4j")
	require.NoError(t, err)

	_, err = db.ExecuteWriteQuery(ctx, "MATCH (n) DETACH DELETE n", nil)
	require.NoError(t, err)

	an := analytics.NewAnalytics("", nil)
	svc, err := fraud.NewService(db, fraud.WithAnalytics(an))
	require.NoError(t, err)
	require.NoError(t, svc.Bootstrap(ctx))

	return &TestContext{
		Ctx:   ctx,
		T:     t,
		DB:    db,
		Fraud: svc,
		Deps: &tools.ToolDependencies{
			DBService:        db,
			AnalyticsService: an,
			FraudService:     svc,
		},
	}
}

// CallTool invokes a handler and fails the test on a protocol or tool error.
func (tc *TestContext) CallTool(handler ToolHandler, args map[string]any) *mcp.CallToolResult {
	tc.T.Helper()
	result, err := handler(tc.Ctx, mcp.CallToolRequest{
		Params: mcp.CallToolParams{Arguments: args},
	})
	require.NoError(tc.T, err)
	require.NotNil(tc.T, result)
	require.False(tc.T, result.IsError, "tool returned an error: %v", result.Content)
	return result
}

// Count runs a query returning a single "n" column.
func (tc *TestContext) Count(query string, params map[string]any) int64 {
	tc.T.Helper()
	records, err := tc.DB.ExecuteReadQuery(tc.Ctx, query, params)
	require.NoError(tc.T, err)
	require.Len(tc.T, records, 1)

	n, ok := records[0].Get("n")
	require.True(tc.T, ok, "query must return a column named n")
	count, ok := n.(int64)
	require.True(tc.T, ok, "n is %T", n)
	return count
}
