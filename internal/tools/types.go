package tools

import (
	"github.com/mkd-neo4j/neo4j-claims-fraud/internal/analytics"
	"github.com/mkd-neo4j/neo4j-claims-fraud/internal/database"
	"github.com/mkd-neo4j/neo4j-claims-fraud/internal/fraud"
)

// ToolDependencies contains all dependencies needed by tools
type ToolDependencies struct {
	DBService        database.Service
	AnalyticsService analytics.Service
	FraudService     *fraud.Service
}
