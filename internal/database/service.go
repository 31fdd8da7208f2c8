package database

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// Neo4jService executes parameterized Cypher through a shared driver.
// The driver is owned by the caller, which closes it at shutdown.
type Neo4jService struct {
	driver   neo4j.DriverWithContext
	database string
}

// NewNeo4jService wraps an open driver bound to one database.
func NewNeo4jService(driver neo4j.DriverWithContext, database string) (*Neo4jService, error) {
	if driver == nil {
		return nil, errors.New("driver cannot be nil")
	}
	return &Neo4jService{driver: driver, database: database}, nil
}

// NewDriver opens a driver with basic auth, or no auth when username is empty.
func NewDriver(uri, username, password string) (neo4j.DriverWithContext, error) {
	auth := neo4j.NoAuth()
	if username != "" {
		auth = neo4j.BasicAuth(username, password, "")
	}
	driver, err := neo4j.NewDriverWithContext(uri, auth)
	if err != nil {
		return nil, fmt.Errorf("failed to create neo4j driver: %w", err)
	}
	return driver, nil
}

func (s *Neo4jService) VerifyConnectivity(ctx context.Context) error {
	if err := s.driver.VerifyConnectivity(ctx); err != nil {
		slog.Error("failed to verify database connectivity", "error", err)
		return &StoreConnectionError{Err: err}
	}
	return nil
}

// ExecuteReadQuery runs a query routed to readers.
func (s *Neo4jService) ExecuteReadQuery(ctx context.Context, cypher string, params map[string]any) ([]*neo4j.Record, error) {
	res, err := neo4j.ExecuteQuery(ctx, s.driver, cypher, params, neo4j.EagerResultTransformer,
		neo4j.ExecuteQueryWithDatabase(s.database),
		neo4j.ExecuteQueryWithReadersRouting())
	if err != nil {
		wrapped := classifyError(cypher, err)
		slog.Error("error executing read query", "database", s.database, "error", err)
		return nil, wrapped
	}
	return res.Records, nil
}

// ExecuteWriteQuery runs a query in one managed write transaction routed to the leader.
func (s *Neo4jService) ExecuteWriteQuery(ctx context.Context, cypher string, params map[string]any) ([]*neo4j.Record, error) {
	res, err := neo4j.ExecuteQuery(ctx, s.driver, cypher, params, neo4j.EagerResultTransformer,
		neo4j.ExecuteQueryWithDatabase(s.database),
		neo4j.ExecuteQueryWithWritersRouting())
	if err != nil {
		wrapped := classifyError(cypher, err)
		slog.Error("error executing write query", "database", s.database, "error", err)
		return nil, wrapped
	}
	return res.Records, nil
}

func (s *Neo4jService) GetDatabaseName() string {
	return s.database
}
