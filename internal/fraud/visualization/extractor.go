package visualization

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/mkd-neo4j/neo4j-claims-fraud/internal/database"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j/dbtype"
)

// neighborhoodQuery collects the claim, its direct neighbors, the claimant's address and SSN,
// persons sharing that SSN, the claimant's other claims, the agent-vendor link and other claims
// involving the same assets. Every relationship endpoint is also returned as a node.
const neighborhoodQuery = `
MATCH (c:Claim {transaction_id: $transaction_id})
OPTIONAL MATCH (c)-[r1]-(n)
WITH c, collect(DISTINCT n) AS neighbors, collect(DISTINCT r1) AS r1s
OPTIONAL MATCH (p:Person)-[r2:LIVES_AT|HAS_SSN]->(d)
WHERE p IN neighbors
WITH c, neighbors, r1s, collect(DISTINCT d) AS details, collect(DISTINCT r2) AS r2s
OPTIONAL MATCH (p:Person)-[:HAS_SSN]->(:SSN)<-[r3:HAS_SSN]-(other:Person)
WHERE p IN neighbors AND other <> p
WITH c, neighbors, r1s, details, r2s, collect(DISTINCT other) AS ring, collect(DISTINCT r3) AS r3s
OPTIONAL MATCH (p:Person)-[r4:FILED]->(c2:Claim)
WHERE p IN neighbors AND c2 <> c
WITH c, neighbors, r1s, details, r2s, ring, r3s, collect(DISTINCT c2) AS otherClaims, collect(DISTINCT r4) AS r4s
OPTIONAL MATCH (a:Agent)-[r5:WORKS_WITH]->(v:Vendor)
WHERE a IN neighbors AND v IN neighbors
WITH c, neighbors, r1s, details, r2s, ring, r3s, otherClaims, r4s, collect(DISTINCT r5) AS r5s
OPTIONAL MATCH (asset:Asset)<-[r6:INVOLVES]-(c3:Claim)
WHERE asset IN neighbors AND c3 <> c
WITH c, neighbors, r1s, details, r2s, ring, r3s, otherClaims, r4s, r5s, collect(DISTINCT c3) AS assetClaims, collect(DISTINCT r6) AS r6s
RETURN [c] + neighbors + details + ring + otherClaims + assetClaims AS nodes,
       r1s + r2s + r3s + r4s + r5s + r6s AS relationships
`

// Extractor reads the bounded neighborhood of a claim.
type Extractor struct {
	db database.Service
}

func NewExtractor(db database.Service) (*Extractor, error) {
	if db == nil {
		return nil, errors.New("database service cannot be nil")
	}
	return &Extractor{db: db}, nil
}

// Extract returns the claim's neighborhood. An unknown claim yields an empty graph.
func (e *Extractor) Extract(ctx context.Context, transactionID string) (*Graph, error) {
	records, err := e.db.ExecuteReadQuery(ctx, neighborhoodQuery, map[string]any{"transaction_id": transactionID})
	if err != nil {
		return nil, fmt.Errorf("failed to extract graph for claim %s: %w", transactionID, err)
	}

	b := NewBuilder()
	for _, record := range records {
		rawNodes, _ := record.Get("nodes")
		rawRels, _ := record.Get("relationships")

		ids := make(map[string]string)
		for _, item := range asList(rawNodes) {
			node, ok := item.(dbtype.Node)
			if !ok {
				continue
			}
			ids[node.ElementId] = b.AddDBNode(node)
		}

		for _, item := range asList(rawRels) {
			rel, ok := item.(dbtype.Relationship)
			if !ok {
				continue
			}
			source, ok := ids[rel.StartElementId]
			if !ok {
				source = rel.StartElementId
			}
			target, ok := ids[rel.EndElementId]
			if !ok {
				target = rel.EndElementId
			}
			var data map[string]any
			if len(rel.Props) > 0 {
				data = database.SanitizeProps(rel.Props)
			}
			b.AddEdge(source, target, rel.Type, data)
		}
	}

	g := b.Graph()
	slog.Debug("claim graph extracted", "transactionId", transactionID, "nodes", len(g.Nodes), "edges", len(g.Edges))
	return g, nil
}

func asList(v any) []any {
	list, _ := v.([]any)
	return list
}
