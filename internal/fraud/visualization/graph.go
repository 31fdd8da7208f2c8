package visualization

import (
	"github.com/mkd-neo4j/neo4j-claims-fraud/internal/database"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j/dbtype"
)

// Node is a graph vertex as the UI renders it.
type Node struct {
	ID    string         `json:"id"`
	Label string         `json:"label"`
	Data  map[string]any `json:"data"`
}

// Edge is a directed graph edge as the UI renders it.
type Edge struct {
	Source string         `json:"source"`
	Target string         `json:"target"`
	Label  string         `json:"label"`
	Data   map[string]any `json:"data,omitempty"`
}

// Graph is a deduplicated node/edge set.
type Graph struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

// naturalKeys are tried in order when deriving a node id.
var naturalKeys = []string{
	"transaction_id",
	"customer_id",
	"agent_id",
	"vendor_id",
	"value",
	"address_key",
	"policy_number",
}

// NodeID returns the first present natural key of props, else fallback.
func NodeID(props map[string]any, fallback string) string {
	for _, key := range naturalKeys {
		if v, ok := props[key]; ok && v != nil {
			if s, ok := database.SanitizeValue(v).(string); ok && s != "" {
				return s
			}
		}
	}
	return fallback
}

// Builder accumulates nodes and edges, dropping duplicates.
// Nodes are keyed by label and natural key; edges by source, label and target.
// A node keeps its bare natural key as id unless a node with another label
// already holds it, in which case its id is prefixed with its label.
type Builder struct {
	nodes     []Node
	edges     []Edge
	nodeIndex map[nodeKey]int
	idTaken   map[string]struct{}
	edgeSeen  map[string]struct{}
}

type nodeKey struct {
	label string
	key   string
}

func NewBuilder() *Builder {
	return &Builder{
		nodeIndex: make(map[nodeKey]int),
		idTaken:   make(map[string]struct{}),
		edgeSeen:  make(map[string]struct{}),
	}
}

// AddNode adds a node and returns its id in the graph.
// Data from a later duplicate fills keys the first one lacked.
func (b *Builder) AddNode(key, label string, data map[string]any) string {
	if key == "" {
		return ""
	}
	k := nodeKey{label: label, key: key}
	if idx, ok := b.nodeIndex[k]; ok {
		existing := b.nodes[idx].Data
		for dk, v := range data {
			if _, present := existing[dk]; !present {
				existing[dk] = v
			}
		}
		return b.nodes[idx].ID
	}
	if data == nil {
		data = map[string]any{}
	}

	id := key
	if _, taken := b.idTaken[id]; taken {
		id = label + ":" + key
	}
	b.idTaken[id] = struct{}{}
	b.nodeIndex[k] = len(b.nodes)
	b.nodes = append(b.nodes, Node{ID: id, Label: label, Data: data})
	return id
}

// ID returns the graph id of the node with the given label and natural key.
// Nodes not added yet resolve to the bare key.
func (b *Builder) ID(label, key string) string {
	if idx, ok := b.nodeIndex[nodeKey{label: label, key: key}]; ok {
		return b.nodes[idx].ID
	}
	return key
}

func (b *Builder) AddEdge(source, target, label string, data map[string]any) {
	if source == "" || target == "" {
		return
	}
	key := source + "\x00" + label + "\x00" + target
	if _, ok := b.edgeSeen[key]; ok {
		return
	}
	b.edgeSeen[key] = struct{}{}
	b.edges = append(b.edges, Edge{Source: source, Target: target, Label: label, Data: data})
}

// AddDBNode adds a driver node using its natural key and first label.
// It returns the id used.
func (b *Builder) AddDBNode(n dbtype.Node) string {
	label := ""
	if len(n.Labels) > 0 {
		label = n.Labels[0]
	}
	return b.AddNode(NodeID(n.Props, n.ElementId), label, database.SanitizeProps(n.Props))
}

// Graph returns the accumulated graph. Nodes and Edges are never nil.
func (b *Builder) Graph() *Graph {
	g := &Graph{Nodes: make([]Node, len(b.nodes)), Edges: make([]Edge, len(b.edges))}
	copy(g.Nodes, b.nodes)
	copy(g.Edges, b.edges)
	return g
}
