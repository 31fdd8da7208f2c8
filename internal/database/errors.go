package database

import (
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// StoreConnectionError reports that the graph store could not be reached.
type StoreConnectionError struct {
	Err error
}

func (e *StoreConnectionError) Error() string {
	return fmt.Sprintf("graph store unreachable: %v", e.Err)
}

func (e *StoreConnectionError) Unwrap() error {
	return e.Err
}

// QueryExecutionError reports a failed statement against a reachable store.
type QueryExecutionError struct {
	Query string
	Err   error
}

func (e *QueryExecutionError) Error() string {
	return fmt.Sprintf("query execution failed: %v", e.Err)
}

func (e *QueryExecutionError) Unwrap() error {
	return e.Err
}

// classifyError wraps a driver error in the matching typed error.
// Exhausted retries only happen against an unavailable cluster, so they count as connectivity failures.
func classifyError(query string, err error) error {
	if neo4j.IsConnectivityError(err) || neo4j.IsTransactionExecutionLimit(err) {
		return &StoreConnectionError{Err: err}
	}
	return &QueryExecutionError{Query: query, Err: err}
}
