package cypher

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	analytics "github.com/mkd-neo4j/neo4j-claims-fraud/internal/analytics/mocks"
	db "github.com/mkd-neo4j/neo4j-claims-fraud/internal/database/mocks"
	"github.com/mkd-neo4j/neo4j-claims-fraud/internal/tools"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func propRow(keys []string, values ...any) *neo4j.Record {
	return &neo4j.Record{Keys: keys, Values: values}
}

var (
	nodeKeys    = []string{"nodeLabels", "propertyName", "propertyTypes"}
	relKeys     = []string{"relType", "propertyName", "propertyTypes"}
	patternKeys = []string{"from", "rel", "to"}
)

func claimsSchemaRecords() (nodes, rels, patterns []*neo4j.Record) {
	nodes = []*neo4j.Record{
		propRow(nodeKeys, []any{"Person"}, "customer_id", []any{"String"}),
		propRow(nodeKeys, []any{"Claim"}, "transaction_id", []any{"String"}),
		propRow(nodeKeys, []any{"Claim"}, "amount", []any{"Double"}),
		propRow(nodeKeys, []any{"Agent"}, "agent_id", []any{"String"}),
		propRow(nodeKeys, []any{"Vendor"}, "vendor_id", []any{"String"}),
	}
	rels = []*neo4j.Record{
		propRow(relKeys, ":`WORKS_WITH`", "count", []any{"Long"}),
		propRow(relKeys, ":`FILED`", nil, nil),
	}
	patterns = []*neo4j.Record{
		propRow(patternKeys, "Person", "FILED", "Claim"),
		propRow(patternKeys, "Agent", "WORKS_WITH", "Vendor"),
	}
	return nodes, rels, patterns
}

func TestGetSchemaHandler(t *testing.T) {
	ctrl := gomock.NewController(t)
	analyticsService := analytics.NewMockService(ctrl)
	analyticsService.EXPECT().NewToolsEvent("get-schema").AnyTimes()
	analyticsService.EXPECT().EmitEvent(gomock.Any()).AnyTimes()

	t.Run("successful schema retrieval", func(t *testing.T) {
		nodes, rels, patterns := claimsSchemaRecords()
		mockDB := db.NewMockService(ctrl)
		mockDB.EXPECT().GetDatabaseName().Return("neo4j").AnyTimes()
		mockDB.EXPECT().ExecuteReadQuery(gomock.Any(), nodePropertiesQuery, gomock.Nil()).Return(nodes, nil)
		mockDB.EXPECT().ExecuteReadQuery(gomock.Any(), relPropertiesQuery, gomock.Nil()).Return(rels, nil)
		mockDB.EXPECT().
			ExecuteReadQuery(gomock.Any(), relationshipPatternsQuery, map[string]any{"sample": int64(100)}).
			Return(patterns, nil)

		deps := &tools.ToolDependencies{DBService: mockDB, AnalyticsService: analyticsService}
		result, err := GetSchemaHandler(deps, 100)(context.Background(), mcp.CallToolRequest{})
		require.NoError(t, err)
		require.NotNil(t, result)
		require.False(t, result.IsError)

		text := result.Content[0].(mcp.TextContent).Text
		assert.True(t, strings.HasPrefix(text, "# Claims Fraud Graph Schema"))
		assert.Contains(t, text, "### Claim\n- `amount`: Double\n- `transaction_id`: String\n")
		assert.Contains(t, text, "- (:Person)-[:FILED]->(:Claim)")
		assert.Contains(t, text, "- (:Agent)-[:WORKS_WITH]->(:Vendor)")
		assert.Contains(t, text, "### WORKS_WITH\n- `count`: Long")
		assert.NotContains(t, text, "### FILED")
	})

	t.Run("database query failure", func(t *testing.T) {
		mockDB := db.NewMockService(ctrl)
		mockDB.EXPECT().GetDatabaseName().Return("neo4j").AnyTimes()
		mockDB.EXPECT().
			ExecuteReadQuery(gomock.Any(), gomock.Any(), gomock.Any()).
			Return(nil, errors.New("connection failed"))

		deps := &tools.ToolDependencies{DBService: mockDB, AnalyticsService: analyticsService}
		result, err := GetSchemaHandler(deps, 100)(context.Background(), mcp.CallToolRequest{})
		require.NoError(t, err)
		assert.True(t, result.IsError)
	})

	t.Run("nil database service", func(t *testing.T) {
		deps := &tools.ToolDependencies{AnalyticsService: analyticsService}
		result, err := GetSchemaHandler(deps, 100)(context.Background(), mcp.CallToolRequest{})
		require.NoError(t, err)
		assert.True(t, result.IsError)
	})

	t.Run("nil analytics service", func(t *testing.T) {
		deps := &tools.ToolDependencies{DBService: db.NewMockService(ctrl)}
		result, err := GetSchemaHandler(deps, 100)(context.Background(), mcp.CallToolRequest{})
		require.NoError(t, err)
		assert.True(t, result.IsError)
	})

	t.Run("empty database", func(t *testing.T) {
		mockDB := db.NewMockService(ctrl)
		mockDB.EXPECT().GetDatabaseName().Return("neo4j").AnyTimes()
		mockDB.EXPECT().ExecuteReadQuery(gomock.Any(), nodePropertiesQuery, gomock.Nil()).Return([]*neo4j.Record{}, nil)
		mockDB.EXPECT().
			ExecuteReadQuery(gomock.Any(), nodeCountQuery, gomock.Nil()).
			Return([]*neo4j.Record{{Keys: []string{"nodeCount"}, Values: []any{int64(0)}}}, nil)

		deps := &tools.ToolDependencies{DBService: mockDB, AnalyticsService: analyticsService}
		result, err := GetSchemaHandler(deps, 100)(context.Background(), mcp.CallToolRequest{})
		require.NoError(t, err)
		require.False(t, result.IsError)
		assert.Equal(t,
			"The get-schema tool executed successfully; however, since the Neo4j database 'neo4j' contains no data, no schema information was returned.",
			result.Content[0].(mcp.TextContent).Text)
	})

	t.Run("populated database with empty introspection", func(t *testing.T) {
		mockDB := db.NewMockService(ctrl)
		mockDB.EXPECT().GetDatabaseName().Return("neo4j").AnyTimes()
		mockDB.EXPECT().ExecuteReadQuery(gomock.Any(), nodePropertiesQuery, gomock.Nil()).Return(nil, nil)
		mockDB.EXPECT().
			ExecuteReadQuery(gomock.Any(), nodeCountQuery, gomock.Nil()).
			Return([]*neo4j.Record{{Keys: []string{"nodeCount"}, Values: []any{int64(12)}}}, nil)

		deps := &tools.ToolDependencies{DBService: mockDB, AnalyticsService: analyticsService}
		result, err := GetSchemaHandler(deps, 100)(context.Background(), mcp.CallToolRequest{})
		require.NoError(t, err)
		assert.True(t, result.IsError)
		assert.Contains(t, result.Content[0].(mcp.TextContent).Text, "contains 12 nodes")
	})
}

func TestBuildSchema_SkipsMalformedRows(t *testing.T) {
	nodes := []*neo4j.Record{
		propRow(nodeKeys, []any{}, "x", []any{"String"}),
		propRow(nodeKeys, []any{"SSN"}, nil, nil),
		propRow(nodeKeys, []any{"Asset"}, "value", []any{}),
	}
	patterns := []*neo4j.Record{
		propRow(patternKeys, nil, "FILED", "Claim"),
	}

	schema := BuildSchema(nodes, nil, patterns)

	assert.Len(t, schema.Nodes, 2)
	assert.Empty(t, schema.Nodes["SSN"])
	assert.Equal(t, "ANY", schema.Nodes["Asset"]["value"])
	assert.Empty(t, schema.Patterns)
}

func TestFormatSchemaAsMarkdown_LabelWithoutProperties(t *testing.T) {
	schema := &Schema{
		Nodes:         map[string]map[string]string{"SSN": {}},
		Relationships: map[string]map[string]string{},
	}

	out := FormatSchemaAsMarkdown(schema)

	assert.Contains(t, out, "### SSN\n- (no properties)\n")
	assert.NotContains(t, out, "## Relationship Patterns")
	assert.NotContains(t, out, "## Relationship Properties")
}
