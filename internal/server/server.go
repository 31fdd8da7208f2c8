package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/mark3labs/mcp-go/server"
	"github.com/mkd-neo4j/neo4j-claims-fraud/internal/analytics"
	"github.com/mkd-neo4j/neo4j-claims-fraud/internal/config"
	"github.com/mkd-neo4j/neo4j-claims-fraud/internal/database"
	"github.com/mkd-neo4j/neo4j-claims-fraud/internal/fraud"
)

const serverInstructions = `This server investigates insurance claims fraud in a Neo4j graph.
Start with claim-investigation-workflow. Use check-claim-fraud for one claim,
detect-fraud-patterns for the whole book, evaluate-fraud-detection to see how the
rules score a sample of stored claims, and the explain-* guides to interpret a rule.`

// Neo4jMCPServer exposes the claims fraud engine as MCP tools over stdio.
type Neo4jMCPServer struct {
	MCPServer    *server.MCPServer
	config       *config.Config
	dbService    database.Service
	anService    analytics.Service
	fraudService *fraud.Service
	version      string
}

// NewNeo4jMCPServer wires the services into an MCP server. Tools are registered on Start.
func NewNeo4jMCPServer(version string, cfg *config.Config, dbService database.Service, anService analytics.Service, fraudService *fraud.Service) *Neo4jMCPServer {
	mcpServer := server.NewMCPServer(
		"neo4j-claims-fraud",
		version,
		server.WithToolCapabilities(true),
		server.WithInstructions(serverInstructions),
	)

	return &Neo4jMCPServer{
		MCPServer:    mcpServer,
		config:       cfg,
		dbService:    dbService,
		anService:    anService,
		fraudService: fraudService,
		version:      version,
	}
}

// Start verifies the database, registers the tools and serves stdio until the client disconnects.
func (s *Neo4jMCPServer) Start(ctx context.Context) error {
	if err := s.verifyRequirements(ctx); err != nil {
		return err
	}

	count, err := s.registerTools()
	if err != nil {
		return fmt.Errorf("failed to register tools: %w", err)
	}

	s.anService.EmitEvent(s.anService.NewStartupEvent(analytics.StartupEventInfo{
		ReadOnly:     s.config.ReadOnly,
		ToolCount:    count,
		Database:     s.dbService.GetDatabaseName(),
		LLMAvailable: s.fraudService.HasAnalyzer(),
	}))

	slog.Info("starting MCP server on stdio", "version", s.version, "tools", count, "readOnly", s.config.ReadOnly)
	return server.ServeStdio(s.MCPServer)
}

func (s *Neo4jMCPServer) verifyRequirements(ctx context.Context) error {
	switch {
	case s.config == nil:
		return errors.New("server config is not initialized")
	case s.dbService == nil:
		return errors.New("database service is not initialized")
	case s.anService == nil:
		return errors.New("analytics service is not initialized")
	case s.fraudService == nil:
		return errors.New("fraud service is not initialized")
	}

	if err := s.dbService.VerifyConnectivity(ctx); err != nil {
		return fmt.Errorf("impossible to verify connectivity with the Neo4j instance: %w", err)
	}
	return nil
}
