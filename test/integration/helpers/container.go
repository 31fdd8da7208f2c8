package helpers

import (
	"context"
	"fmt"

	"github.com/mkd-neo4j/neo4j-claims-fraud/internal/database"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

const neo4jImage = "neo4j:5"

// DBServer is a throwaway Neo4j instance shared by the integration tests.
type DBServer struct {
	container testcontainers.Container
	driver    neo4j.DriverWithContext
	URI       string
}

// StartNeo4j runs an unauthenticated Neo4j container and connects to it.
func StartNeo4j(ctx context.Context) (*DBServer, error) {
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        neo4jImage,
			ExposedPorts: []string{"7687/tcp"},
			Env: map[string]string{
				"NEO4J_AUTH": "none",
			},
			WaitingFor: wait.ForLog("Started."),
		},
		Started: true,
	})
	if err != nil {
		return nil, err
	}

	host, err := container.Host(ctx)
	if err != nil {
		_ = testcontainers.TerminateContainer(container)
		return nil, err
	}
	port, err := container.MappedPort(ctx, "7687/tcp")
	if err != nil {
		_ = testcontainers.TerminateContainer(container)
		return nil, err
	}

	uri := fmt.Sprintf("bolt://%s:%s", host, port.Port())
	driver, err := database.NewDriver(uri, "", "")
	if err != nil {
		_ = testcontainers.TerminateContainer(container)
		return nil, err
	}
	if err := driver.VerifyConnectivity(ctx); err != nil {
		_ = driver.Close(ctx)
		_ = testcontainers.TerminateContainer(container)
		return nil, err
	}

	return &DBServer{container: container, driver: driver, URI: uri}, nil
}

func (s *DBServer) GetDriver() neo4j.DriverWithContext {
	return s.driver
}

// Stop closes the driver and removes the container.
func (s *DBServer) Stop(ctx context.Context) error {
	if err := s.driver.Close(ctx); err != nil {
		return err
	}
	return testcontainers.TerminateContainer(s.container)
}
