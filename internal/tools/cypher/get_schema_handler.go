package cypher

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mkd-neo4j/neo4j-claims-fraud/internal/tools"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

const (
	nodePropertiesQuery = `
		CALL db.schema.nodeTypeProperties()
		YIELD nodeLabels, propertyName, propertyTypes
		RETURN nodeLabels, propertyName, propertyTypes
	`

	relPropertiesQuery = `
		CALL db.schema.relTypeProperties()
		YIELD relType, propertyName, propertyTypes
		RETURN relType, propertyName, propertyTypes
	`

	// relationshipPatternsQuery samples relationships to find which labels they connect.
	relationshipPatternsQuery = `
		MATCH (a)-[r]->(b)
		WITH a, r, b LIMIT $sample
		RETURN DISTINCT labels(a)[0] AS from, type(r) AS rel, labels(b)[0] AS to
		ORDER BY from, rel, to
	`

	nodeCountQuery = "MATCH (n) RETURN count(n) AS nodeCount"
)

const claimsGraphContext = `# Claims Fraud Graph Schema

Every ingested claim is merged into this graph. People file claims, hold policies
and live at addresses. Agents handle claims and vendors repair them; WORKS_WITH
counts how often an agent and a vendor share a claim. SSN and Asset nodes are
shared by every person or claim that references them, which is what makes
shared identities and recycled assets visible.

---

`

// Schema is the label and relationship layout of the graph.
type Schema struct {
	Nodes         map[string]map[string]string
	Relationships map[string]map[string]string
	Patterns      []Pattern
}

// Pattern is one (from)-[rel]->(to) combination seen in the data.
type Pattern struct {
	From string
	Rel  string
	To   string
}

// GetSchemaHandler returns a handler function for the get-schema tool
func GetSchemaHandler(deps *tools.ToolDependencies, schemaSampleSize int32) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleGetSchema(ctx, deps, schemaSampleSize)
	}
}

func handleGetSchema(ctx context.Context, deps *tools.ToolDependencies, schemaSampleSize int32) (*mcp.CallToolResult, error) {
	if deps.DBService == nil {
		errMessage := "database service is not initialized"
		slog.Error(errMessage)
		return mcp.NewToolResultError(errMessage), nil
	}
	if deps.AnalyticsService == nil {
		errMessage := "analytics service is not initialized"
		slog.Error(errMessage)
		return mcp.NewToolResultError(errMessage), nil
	}

	deps.AnalyticsService.EmitEvent(deps.AnalyticsService.NewToolsEvent("get-schema"))
	slog.Info("retrieving schema from the database", "database", deps.DBService.GetDatabaseName())

	nodeProps, err := deps.DBService.ExecuteReadQuery(ctx, nodePropertiesQuery, nil)
	if err != nil {
		slog.Error("failed to execute node properties query", "error", err)
		return mcp.NewToolResultError(err.Error()), nil
	}

	if len(nodeProps) == 0 {
		// the procedure can come back empty on a populated store; confirm before reporting no data
		countRecords, err := deps.DBService.ExecuteReadQuery(ctx, nodeCountQuery, nil)
		if err != nil {
			slog.Error("failed to execute node count verification query", "error", err)
			return mcp.NewToolResultError(fmt.Sprintf("schema introspection returned no records and verification failed: %v", err)), nil
		}
		if n := nodeCount(countRecords); n > 0 {
			slog.Error("database contains nodes but schema introspection returned nothing", "nodeCount", n)
			return mcp.NewToolResultError(fmt.Sprintf("database '%s' contains %d nodes but schema introspection returned nothing", deps.DBService.GetDatabaseName(), n)), nil
		}

		slog.Info("database is empty, no schema to return", "database", deps.DBService.GetDatabaseName())
		return mcp.NewToolResultText(fmt.Sprintf("The get-schema tool executed successfully; however, since the Neo4j database '%s' contains no data, no schema information was returned.", deps.DBService.GetDatabaseName())), nil
	}

	relProps, err := deps.DBService.ExecuteReadQuery(ctx, relPropertiesQuery, nil)
	if err != nil {
		slog.Error("failed to execute relationship properties query", "error", err)
		return mcp.NewToolResultError(err.Error()), nil
	}

	patterns, err := deps.DBService.ExecuteReadQuery(ctx, relationshipPatternsQuery, map[string]any{"sample": int64(schemaSampleSize)})
	if err != nil {
		slog.Error("failed to execute relationship patterns query", "error", err)
		return mcp.NewToolResultError(err.Error()), nil
	}

	schema := BuildSchema(nodeProps, relProps, patterns)
	markdown := claimsGraphContext + FormatSchemaAsMarkdown(schema)

	slog.Info("returning schema", "labels", len(schema.Nodes), "patterns", len(schema.Patterns))
	return mcp.NewToolResultText(markdown), nil
}

func nodeCount(records []*neo4j.Record) int64 {
	if len(records) == 0 {
		return 0
	}
	v, _ := records[0].Get("nodeCount")
	n, _ := v.(int64)
	return n
}

// BuildSchema folds the three introspection results into one Schema.
// Only the first label and first property type of each row are kept.
func BuildSchema(nodeProps, relProps, patterns []*neo4j.Record) *Schema {
	schema := &Schema{
		Nodes:         make(map[string]map[string]string),
		Relationships: make(map[string]map[string]string),
	}

	for _, record := range nodeProps {
		labelsRaw, _ := record.Get("nodeLabels")
		labels, _ := labelsRaw.([]any)
		if len(labels) == 0 {
			continue
		}
		label, ok := labels[0].(string)
		if !ok {
			continue
		}
		if schema.Nodes[label] == nil {
			schema.Nodes[label] = make(map[string]string)
		}
		if name, typ, ok := propertyRow(record); ok {
			schema.Nodes[label][name] = typ
		}
	}

	for _, record := range relProps {
		relRaw, _ := record.Get("relType")
		rel, ok := relRaw.(string)
		if !ok {
			continue
		}
		// relType comes back as ":`WORKS_WITH`"
		rel = strings.Trim(strings.TrimPrefix(rel, ":"), "`")
		if schema.Relationships[rel] == nil {
			schema.Relationships[rel] = make(map[string]string)
		}
		if name, typ, ok := propertyRow(record); ok {
			schema.Relationships[rel][name] = typ
		}
	}

	for _, record := range patterns {
		from, _ := record.Get("from")
		rel, _ := record.Get("rel")
		to, _ := record.Get("to")
		p := Pattern{}
		p.From, _ = from.(string)
		p.Rel, _ = rel.(string)
		p.To, _ = to.(string)
		if p.From == "" || p.Rel == "" || p.To == "" {
			continue
		}
		schema.Patterns = append(schema.Patterns, p)
	}

	return schema
}

func propertyRow(record *neo4j.Record) (string, string, bool) {
	nameRaw, _ := record.Get("propertyName")
	name, ok := nameRaw.(string)
	if !ok || name == "" {
		return "", "", false
	}
	typesRaw, _ := record.Get("propertyTypes")
	types, _ := typesRaw.([]any)
	if len(types) == 0 {
		return name, "ANY", true
	}
	typ, ok := types[0].(string)
	if !ok {
		return name, "ANY", true
	}
	return name, typ, true
}

// FormatSchemaAsMarkdown renders labels and relationships in sorted order.
func FormatSchemaAsMarkdown(schema *Schema) string {
	var sb strings.Builder

	sb.WriteString("## Node Labels\n\n")
	for _, label := range sortedKeys(schema.Nodes) {
		fmt.Fprintf(&sb, "### %s\n", label)
		props := schema.Nodes[label]
		if len(props) == 0 {
			sb.WriteString("- (no properties)\n")
		}
		for _, name := range sortedKeys(props) {
			fmt.Fprintf(&sb, "- `%s`: %s\n", name, props[name])
		}
		sb.WriteString("\n")
	}

	if len(schema.Patterns) > 0 {
		sb.WriteString("## Relationship Patterns\n\n")
		for _, p := range schema.Patterns {
			fmt.Fprintf(&sb, "- (:%s)-[:%s]->(:%s)\n", p.From, p.Rel, p.To)
		}
		sb.WriteString("\n")
	}

	var withProps []string
	for _, rel := range sortedKeys(schema.Relationships) {
		if len(schema.Relationships[rel]) > 0 {
			withProps = append(withProps, rel)
		}
	}
	if len(withProps) > 0 {
		sb.WriteString("## Relationship Properties\n\n")
		for _, rel := range withProps {
			fmt.Fprintf(&sb, "### %s\n", rel)
			props := schema.Relationships[rel]
			for _, name := range sortedKeys(props) {
				fmt.Fprintf(&sb, "- `%s`: %s\n", name, props[name])
			}
			sb.WriteString("\n")
		}
	}

	return sb.String()
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
