package server

import (
	"log/slog"

	"github.com/mark3labs/mcp-go/server"
	"github.com/mkd-neo4j/neo4j-claims-fraud/internal/config"
	"github.com/mkd-neo4j/neo4j-claims-fraud/internal/tools"
	"github.com/mkd-neo4j/neo4j-claims-fraud/internal/tools/cypher"
	"github.com/mkd-neo4j/neo4j-claims-fraud/internal/tools/data/claimant_profile"
	"github.com/mkd-neo4j/neo4j-claims-fraud/internal/tools/data/graph_stats"
	"github.com/mkd-neo4j/neo4j-claims-fraud/internal/tools/dynamic"
	"github.com/mkd-neo4j/neo4j-claims-fraud/internal/tools/fraud/analyze_claim"
	"github.com/mkd-neo4j/neo4j-claims-fraud/internal/tools/fraud/check_claim"
	"github.com/mkd-neo4j/neo4j-claims-fraud/internal/tools/fraud/claim_graph"
	"github.com/mkd-neo4j/neo4j-claims-fraud/internal/tools/fraud/detect_patterns"
	"github.com/mkd-neo4j/neo4j-claims-fraud/internal/tools/fraud/evaluate_claims"
	"github.com/mkd-neo4j/neo4j-claims-fraud/internal/tools/fraud/ingest_claim"
)

// guideConfigDir is read when the binary carries no embedded guides.
const guideConfigDir = "tools/config"

// registerTools adds every enabled tool to the MCP server and returns how many were added.
// In read-only mode (NEO4J_READ_ONLY) only tools marked readonly are kept, so ingest-claim is hidden.
// analyze-claim is only offered when a language model is configured.
func (s *Neo4jMCPServer) registerTools() (int, error) {
	enabled := s.getEnabledTools()
	s.MCPServer.AddTools(enabled...)
	return len(enabled), nil
}

type toolFilter func(tools []ToolDefinition) []ToolDefinition

type toolCategory int

const (
	schemaCategory    toolCategory = 0
	cypherCategory    toolCategory = 1
	fraudCategory     toolCategory = 2
	dataCategory      toolCategory = 3
	narrativeCategory toolCategory = 4 // needs a configured analyzer
	dynamicCategory   toolCategory = 5 // YAML guidance tools
)

type ToolDefinition struct {
	category   toolCategory
	definition server.ServerTool
	readonly   bool
}

func (s *Neo4jMCPServer) getEnabledTools() []server.ServerTool {
	filters := make([]toolFilter, 0)

	if s.config != nil && s.config.ReadOnly {
		filters = append(filters, filterWriteTools)
	}
	if s.fraudService == nil || !s.fraudService.HasAnalyzer() {
		filters = append(filters, filterNarrativeTools)
	}

	deps := &tools.ToolDependencies{
		DBService:        s.dbService,
		AnalyticsService: s.anService,
		FraudService:     s.fraudService,
	}
	toolDefs := s.getAllToolsDefs(deps)

	for _, filter := range filters {
		toolDefs = filter(toolDefs)
	}
	enabledTools := make([]server.ServerTool, 0, len(toolDefs))
	for _, toolDef := range toolDefs {
		enabledTools = append(enabledTools, toolDef.definition)
	}
	return enabledTools
}

func filterWriteTools(tools []ToolDefinition) []ToolDefinition {
	readOnlyTools := make([]ToolDefinition, 0, len(tools))
	for _, t := range tools {
		if t.readonly {
			readOnlyTools = append(readOnlyTools, t)
		}
	}
	return readOnlyTools
}

func filterNarrativeTools(tools []ToolDefinition) []ToolDefinition {
	kept := make([]ToolDefinition, 0, len(tools))
	for _, t := range tools {
		if t.category != narrativeCategory {
			kept = append(kept, t)
		}
	}
	return kept
}

// getAllToolsDefs returns all available tools with their specs and handlers
func (s *Neo4jMCPServer) getAllToolsDefs(deps *tools.ToolDependencies) []ToolDefinition {
	sampleSize := config.DefaultSchemaSampleSize
	if s.config != nil && s.config.SchemaSampleSize > 0 {
		sampleSize = s.config.SchemaSampleSize
	}

	toolDefs := []ToolDefinition{
		{
			category: schemaCategory,
			definition: server.ServerTool{
				Tool:    cypher.GetSchemaSpec(),
				Handler: cypher.GetSchemaHandler(deps, sampleSize),
			},
			readonly: true,
		},
		{
			category: cypherCategory,
			definition: server.ServerTool{
				Tool:    cypher.ReadCypherSpec(),
				Handler: cypher.ReadCypherHandler(deps),
			},
			readonly: true,
		},
		// Fraud Category/Section
		{
			category: fraudCategory,
			definition: server.ServerTool{
				Tool:    ingest_claim.Spec(),
				Handler: ingest_claim.Handler(deps),
			},
			readonly: false,
		},
		{
			category: fraudCategory,
			definition: server.ServerTool{
				Tool:    check_claim.Spec(),
				Handler: check_claim.Handler(deps),
			},
			readonly: true,
		},
		{
			category: fraudCategory,
			definition: server.ServerTool{
				Tool:    detect_patterns.Spec(),
				Handler: detect_patterns.Handler(deps),
			},
			readonly: true,
		},
		{
			category: fraudCategory,
			definition: server.ServerTool{
				Tool:    evaluate_claims.Spec(),
				Handler: evaluate_claims.Handler(deps),
			},
			readonly: true,
		},
		{
			category: fraudCategory,
			definition: server.ServerTool{
				Tool:    claim_graph.Spec(),
				Handler: claim_graph.Handler(deps),
			},
			readonly: true,
		},
		{
			category: narrativeCategory,
			definition: server.ServerTool{
				Tool:    analyze_claim.Spec(),
				Handler: analyze_claim.Handler(deps),
			},
			readonly: true,
		},
		// Data Category/Section
		{
			category: dataCategory,
			definition: server.ServerTool{
				Tool:    graph_stats.Spec(),
				Handler: graph_stats.Handler(deps),
			},
			readonly: true,
		},
		{
			category: dataCategory,
			definition: server.ServerTool{
				Tool:    claimant_profile.Spec(),
				Handler: claimant_profile.Handler(deps),
			},
			readonly: true,
		},
	}

	toolDefs = append(toolDefs, s.loadGuideTools(deps)...)
	return toolDefs
}

// loadGuideTools turns the YAML guides into read-only tools.
func (s *Neo4jMCPServer) loadGuideTools(deps *tools.ToolDependencies) []ToolDefinition {
	registry := dynamic.NewGuideRegistry(guideConfigDir)

	if err := registry.LoadGuides(); err != nil {
		slog.Error("failed to load guidance tools", "error", err)
		return []ToolDefinition{}
	}

	if registry.GetToolCount() == 0 {
		slog.Info("no guidance tools found in config directory")
		return []ToolDefinition{}
	}

	serverTools := registry.GetServerTools(deps)
	toolDefs := make([]ToolDefinition, 0, len(serverTools))
	for _, serverTool := range serverTools {
		toolDefs = append(toolDefs, ToolDefinition{
			category:   dynamicCategory,
			definition: serverTool,
			readonly:   true,
		})
	}
	return toolDefs
}
