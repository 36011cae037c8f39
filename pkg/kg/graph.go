package kg

import (
	"fmt"
	"slices"

	"github.com/FaiyazAwsaf/space-biology-engine/pkg/extractor"
)

// Node is an entity in the knowledge graph. Papers records every document the
// entity was observed in, append-only and duplicate-free.
type Node struct {
	Label  string               `json:"label"`
	Type   extractor.EntityType `json:"type"`
	Papers []string             `json:"papers"`
}

// Edge is an undirected co-occurrence relation between two entities. Weight
// counts repeat co-occurrences across chunks and documents; SourceDoc is the
// document where the pair was first observed.
type Edge struct {
	Label     string `json:"label"`
	Weight    int    `json:"weight"`
	SourceDoc string `json:"source_doc"`
}

// Store is the read-only view consumed by the query router. Reads require no
// locking: the graph is built batch-side and never mutated while serving.
type Store interface {
	HasNode(key string) bool
	NodeAttrs(key string) (Node, bool)
	Neighbors(key string) []string
}

// Graph holds entity nodes and co-occurrence edges keyed by normalized entity
// keys. At most one edge exists per unordered pair. docEdges records each
// document's weight contributions so RemoveDocument can revert them; it covers
// only folds performed by this process, a graph restored from a snapshot
// carries no per-document record.
type Graph struct {
	nodes     map[string]*Node
	edges     map[pairKey]*Edge
	adjacency map[string]map[string]struct{}
	docEdges  map[string]map[pairKey]int
}

type pairKey struct {
	a, b string
}

func newPairKey(x, y string) pairKey {
	if x > y {
		x, y = y, x
	}
	return pairKey{a: x, b: y}
}

// NewGraph creates an empty knowledge graph.
func NewGraph() *Graph {
	return &Graph{
		nodes:     make(map[string]*Node),
		edges:     make(map[pairKey]*Edge),
		adjacency: make(map[string]map[string]struct{}),
		docEdges:  make(map[string]map[pairKey]int),
	}
}

// AddChunkEntities folds one chunk's extracted mentions into the graph:
// nodes are created on first observation and extended with the document on
// later ones; every unordered pair of distinct entities in the chunk creates
// or strengthens exactly one edge, labeled from the two types in first-seen
// source order.
func (g *Graph) AddChunkEntities(documentID string, mentions []extractor.Mention) {
	for _, m := range mentions {
		node, ok := g.nodes[m.Key]
		if !ok {
			g.nodes[m.Key] = &Node{
				Label:  m.DisplayName,
				Type:   m.Type,
				Papers: []string{documentID},
			}
			continue
		}
		if !slices.Contains(node.Papers, documentID) {
			node.Papers = append(node.Papers, documentID)
		}
	}

	for i := 0; i < len(mentions); i++ {
		for j := i + 1; j < len(mentions); j++ {
			source := mentions[i]
			target := mentions[j]
			if source.Key == target.Key {
				continue
			}

			key := newPairKey(source.Key, target.Key)
			if edge, ok := g.edges[key]; ok {
				edge.Weight++
				g.recordContribution(documentID, key)
				continue
			}

			g.edges[key] = &Edge{
				Label:     fmt.Sprintf("%s_links_%s", source.Type, target.Type),
				Weight:    1,
				SourceDoc: documentID,
			}
			g.recordContribution(documentID, key)
			g.connect(source.Key, target.Key)
			g.connect(target.Key, source.Key)
		}
	}
}

// RemoveDocument reverts a document's tracked contributions: its weight
// increments are subtracted, edges that reach zero weight disappear, the
// document leaves every paper list, and nodes left without papers are removed.
// Refolding a document after RemoveDocument therefore yields the same weights
// as folding it once.
func (g *Graph) RemoveDocument(documentID string) {
	for key, contributed := range g.docEdges[documentID] {
		edge, ok := g.edges[key]
		if !ok {
			continue
		}
		edge.Weight -= contributed
		if edge.Weight <= 0 {
			delete(g.edges, key)
			g.disconnect(key.a, key.b)
			g.disconnect(key.b, key.a)
		}
	}
	delete(g.docEdges, documentID)

	for key, node := range g.nodes {
		if i := slices.Index(node.Papers, documentID); i != -1 {
			node.Papers = slices.Delete(node.Papers, i, i+1)
		}
		if len(node.Papers) == 0 {
			delete(g.nodes, key)
		}
	}
}

func (g *Graph) recordContribution(documentID string, key pairKey) {
	if g.docEdges[documentID] == nil {
		g.docEdges[documentID] = make(map[pairKey]int)
	}
	g.docEdges[documentID][key]++
}

func (g *Graph) connect(from, to string) {
	if g.adjacency[from] == nil {
		g.adjacency[from] = make(map[string]struct{})
	}
	g.adjacency[from][to] = struct{}{}
}

func (g *Graph) disconnect(from, to string) {
	delete(g.adjacency[from], to)
	if len(g.adjacency[from]) == 0 {
		delete(g.adjacency, from)
	}
}

// HasNode reports whether the entity key exists in the graph.
func (g *Graph) HasNode(key string) bool {
	_, ok := g.nodes[key]
	return ok
}

// NodeAttrs returns a copy of the node's attributes.
func (g *Graph) NodeAttrs(key string) (Node, bool) {
	node, ok := g.nodes[key]
	if !ok {
		return Node{}, false
	}
	papers := make([]string, len(node.Papers))
	copy(papers, node.Papers)
	return Node{Label: node.Label, Type: node.Type, Papers: papers}, true
}

// Neighbors returns the keys adjacent to the given entity, sorted for
// deterministic output.
func (g *Graph) Neighbors(key string) []string {
	adj, ok := g.adjacency[key]
	if !ok {
		return nil
	}
	neighbors := make([]string, 0, len(adj))
	for n := range adj {
		neighbors = append(neighbors, n)
	}
	slices.Sort(neighbors)
	return neighbors
}

// NodeCount returns the number of nodes in the graph.
func (g *Graph) NodeCount() int {
	return len(g.nodes)
}

// EdgeCount returns the number of edges in the graph.
func (g *Graph) EdgeCount() int {
	return len(g.edges)
}

// EdgeBetween returns the edge between two entity keys, if any.
func (g *Graph) EdgeBetween(x, y string) (Edge, bool) {
	edge, ok := g.edges[newPairKey(x, y)]
	if !ok {
		return Edge{}, false
	}
	return *edge, true
}

var _ Store = (*Graph)(nil)
