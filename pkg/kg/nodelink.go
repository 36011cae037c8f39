package kg

import (
	"encoding/json"
	"fmt"
	"os"
	"slices"

	"github.com/FaiyazAwsaf/space-biology-engine/pkg/extractor"
)

// The snapshot format follows the node-link JSON convention, so the same
// artifact can be loaded by graph tooling outside this service.

type nodeLinkNode struct {
	ID     string   `json:"id"`
	Label  string   `json:"label"`
	Type   string   `json:"type"`
	Papers []string `json:"papers"`
}

type nodeLinkEdge struct {
	Source    string `json:"source"`
	Target    string `json:"target"`
	Label     string `json:"label"`
	Weight    int    `json:"weight"`
	SourceDoc string `json:"source_doc"`
}

type nodeLinkDocument struct {
	Directed   bool           `json:"directed"`
	Multigraph bool           `json:"multigraph"`
	Graph      map[string]any `json:"graph"`
	Nodes      []nodeLinkNode `json:"nodes"`
	Links      []nodeLinkEdge `json:"links"`
}

// MarshalNodeLink serializes the graph as a node-link JSON document with
// deterministic node and link ordering.
func (g *Graph) MarshalNodeLink() ([]byte, error) {
	doc := nodeLinkDocument{
		Graph: map[string]any{},
		Nodes: make([]nodeLinkNode, 0, len(g.nodes)),
		Links: make([]nodeLinkEdge, 0, len(g.edges)),
	}

	keys := make([]string, 0, len(g.nodes))
	for key := range g.nodes {
		keys = append(keys, key)
	}
	slices.Sort(keys)
	for _, key := range keys {
		node := g.nodes[key]
		doc.Nodes = append(doc.Nodes, nodeLinkNode{
			ID:     key,
			Label:  node.Label,
			Type:   string(node.Type),
			Papers: node.Papers,
		})
	}

	pairs := make([]pairKey, 0, len(g.edges))
	for pair := range g.edges {
		pairs = append(pairs, pair)
	}
	slices.SortFunc(pairs, func(x, y pairKey) int {
		if x.a != y.a {
			if x.a < y.a {
				return -1
			}
			return 1
		}
		if x.b < y.b {
			return -1
		}
		if x.b > y.b {
			return 1
		}
		return 0
	})
	for _, pair := range pairs {
		edge := g.edges[pair]
		doc.Links = append(doc.Links, nodeLinkEdge{
			Source:    pair.a,
			Target:    pair.b,
			Label:     edge.Label,
			Weight:    edge.Weight,
			SourceDoc: edge.SourceDoc,
		})
	}

	return json.MarshalIndent(doc, "", "  ")
}

// UnmarshalNodeLink parses a node-link JSON document into a graph.
func UnmarshalNodeLink(data []byte) (*Graph, error) {
	var doc nodeLinkDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse node-link document: %w", err)
	}
	if doc.Directed {
		return nil, fmt.Errorf("directed graphs are not supported")
	}

	g := NewGraph()
	for _, n := range doc.Nodes {
		g.nodes[n.ID] = &Node{
			Label:  n.Label,
			Type:   extractor.EntityType(n.Type),
			Papers: n.Papers,
		}
	}
	for _, l := range doc.Links {
		if _, ok := g.nodes[l.Source]; !ok {
			return nil, fmt.Errorf("link references unknown node %q", l.Source)
		}
		if _, ok := g.nodes[l.Target]; !ok {
			return nil, fmt.Errorf("link references unknown node %q", l.Target)
		}
		g.edges[newPairKey(l.Source, l.Target)] = &Edge{
			Label:     l.Label,
			Weight:    l.Weight,
			SourceDoc: l.SourceDoc,
		}
		g.connect(l.Source, l.Target)
		g.connect(l.Target, l.Source)
	}
	return g, nil
}

// SaveNodeLinkFile writes the graph snapshot to path.
func (g *Graph) SaveNodeLinkFile(path string) error {
	data, err := g.MarshalNodeLink()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write graph snapshot: %w", err)
	}
	return nil
}

// LoadNodeLinkFile reads a graph snapshot from path.
func LoadNodeLinkFile(path string) (*Graph, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read graph snapshot: %w", err)
	}
	return UnmarshalNodeLink(data)
}
