package kg

import (
	"path/filepath"
	"reflect"
	"testing"

	"github.com/FaiyazAwsaf/space-biology-engine/pkg/extractor"
)

func TestGraphRepeatedCoOccurrenceStrengthensEdge(t *testing.T) {
	g := NewGraph()
	mentions := []extractor.Mention{
		{Key: "rna-seq", DisplayName: "RNA-Seq", Type: extractor.TypeMethodology},
		{Key: "genelab", DisplayName: "GeneLab", Type: extractor.TypeDataset},
	}

	g.AddChunkEntities("doc-1", mentions)
	g.AddChunkEntities("doc-1", mentions)

	if got := g.EdgeCount(); got != 1 {
		t.Fatalf("expected exactly one edge, got %d", got)
	}
	edge, ok := g.EdgeBetween("rna-seq", "genelab")
	if !ok {
		t.Fatalf("expected edge between rna-seq and genelab")
	}
	if edge.Weight != 2 {
		t.Fatalf("expected weight 2, got %d", edge.Weight)
	}
	if edge.Label != "Methodology_links_Dataset" {
		t.Fatalf("unexpected edge label %q", edge.Label)
	}
	if edge.SourceDoc != "doc-1" {
		t.Fatalf("unexpected source doc %q", edge.SourceDoc)
	}
}

func TestGraphEdgeLabelKeepsSourceOrder(t *testing.T) {
	g := NewGraph()
	g.AddChunkEntities("doc-1", []extractor.Mention{
		{Key: "zebrafish", DisplayName: "zebrafish", Type: extractor.TypeDataset},
		{Key: "bone-density", DisplayName: "bone density", Type: extractor.TypeKeyFinding},
	})

	edge, ok := g.EdgeBetween("bone-density", "zebrafish")
	if !ok {
		t.Fatalf("expected edge regardless of lookup order")
	}
	if edge.Label != "Dataset_links_Key_Finding" {
		t.Fatalf("label should follow first-seen order, got %q", edge.Label)
	}
}

func TestGraphNodePapersAppendIfAbsent(t *testing.T) {
	g := NewGraph()
	mention := []extractor.Mention{
		{Key: "scanpy", DisplayName: "Scanpy", Type: extractor.TypeToolLibrary},
	}

	g.AddChunkEntities("doc-1", mention)
	g.AddChunkEntities("doc-1", mention)
	g.AddChunkEntities("doc-2", mention)

	node, ok := g.NodeAttrs("scanpy")
	if !ok {
		t.Fatalf("expected node scanpy")
	}
	if want := []string{"doc-1", "doc-2"}; !reflect.DeepEqual(node.Papers, want) {
		t.Fatalf("expected papers %v, got %v", want, node.Papers)
	}
	if node.Label != "Scanpy" {
		t.Fatalf("first surface form should be kept, got %q", node.Label)
	}
}

func TestGraphNeighborsSorted(t *testing.T) {
	g := NewGraph()
	g.AddChunkEntities("doc-1", []extractor.Mention{
		{Key: "microgravity", DisplayName: "microgravity", Type: extractor.TypeKeyFinding},
		{Key: "zebrafish", DisplayName: "zebrafish", Type: extractor.TypeDataset},
		{Key: "crispr", DisplayName: "CRISPR", Type: extractor.TypeMethodology},
	})

	want := []string{"crispr", "zebrafish"}
	if got := g.Neighbors("microgravity"); !reflect.DeepEqual(got, want) {
		t.Fatalf("expected neighbors %v, got %v", want, got)
	}
	if got := g.Neighbors("missing"); got != nil {
		t.Fatalf("expected nil neighbors for unknown key, got %v", got)
	}
}

func TestGraphRemoveDocumentRevertsContributions(t *testing.T) {
	g := NewGraph()
	mentions := []extractor.Mention{
		{Key: "rna-seq", DisplayName: "RNA-Seq", Type: extractor.TypeMethodology},
		{Key: "genelab", DisplayName: "GeneLab", Type: extractor.TypeDataset},
	}

	g.AddChunkEntities("doc-1", mentions)
	g.AddChunkEntities("doc-2", mentions)

	g.RemoveDocument("doc-1")

	edge, ok := g.EdgeBetween("rna-seq", "genelab")
	if !ok {
		t.Fatalf("expected edge to survive while doc-2 still contributes")
	}
	if edge.Weight != 1 {
		t.Fatalf("expected weight 1 after removing doc-1, got %d", edge.Weight)
	}
	node, ok := g.NodeAttrs("rna-seq")
	if !ok {
		t.Fatalf("expected node rna-seq to survive")
	}
	if want := []string{"doc-2"}; !reflect.DeepEqual(node.Papers, want) {
		t.Fatalf("expected papers %v, got %v", want, node.Papers)
	}

	g.RemoveDocument("doc-2")

	if g.NodeCount() != 0 || g.EdgeCount() != 0 {
		t.Fatalf("expected empty graph, got %d nodes and %d edges", g.NodeCount(), g.EdgeCount())
	}
	if got := g.Neighbors("rna-seq"); got != nil {
		t.Fatalf("expected no neighbors after removal, got %v", got)
	}
}

func TestGraphRefoldingDocumentKeepsWeights(t *testing.T) {
	g := NewGraph()
	mentions := []extractor.Mention{
		{Key: "rna-seq", DisplayName: "RNA-Seq", Type: extractor.TypeMethodology},
		{Key: "genelab", DisplayName: "GeneLab", Type: extractor.TypeDataset},
	}

	for i := 0; i < 3; i++ {
		g.RemoveDocument("doc-1")
		g.AddChunkEntities("doc-1", mentions)
		g.AddChunkEntities("doc-1", mentions)
	}

	edge, ok := g.EdgeBetween("rna-seq", "genelab")
	if !ok {
		t.Fatalf("expected edge between rna-seq and genelab")
	}
	if edge.Weight != 2 {
		t.Fatalf("refolding must not inflate weights, want 2, got %d", edge.Weight)
	}
	node, ok := g.NodeAttrs("rna-seq")
	if !ok {
		t.Fatalf("expected node rna-seq")
	}
	if want := []string{"doc-1"}; !reflect.DeepEqual(node.Papers, want) {
		t.Fatalf("expected papers %v, got %v", want, node.Papers)
	}
}

func TestNodeLinkRoundTrip(t *testing.T) {
	g := NewGraph()
	g.AddChunkEntities("doc-1", []extractor.Mention{
		{Key: "rna-seq", DisplayName: "RNA-Seq", Type: extractor.TypeMethodology},
		{Key: "genelab", DisplayName: "GeneLab", Type: extractor.TypeDataset},
	})
	g.AddChunkEntities("doc-2", []extractor.Mention{
		{Key: "rna-seq", DisplayName: "RNA-Seq", Type: extractor.TypeMethodology},
		{Key: "scanpy", DisplayName: "Scanpy", Type: extractor.TypeToolLibrary},
	})

	path := filepath.Join(t.TempDir(), "graph.json")
	if err := g.SaveNodeLinkFile(path); err != nil {
		t.Fatalf("failed to save snapshot: %v", err)
	}

	loaded, err := LoadNodeLinkFile(path)
	if err != nil {
		t.Fatalf("failed to load snapshot: %v", err)
	}

	if loaded.NodeCount() != g.NodeCount() {
		t.Fatalf("expected %d nodes, got %d", g.NodeCount(), loaded.NodeCount())
	}
	if loaded.EdgeCount() != g.EdgeCount() {
		t.Fatalf("expected %d edges, got %d", g.EdgeCount(), loaded.EdgeCount())
	}

	node, ok := loaded.NodeAttrs("rna-seq")
	if !ok {
		t.Fatalf("expected node rna-seq after reload")
	}
	if want := []string{"doc-1", "doc-2"}; !reflect.DeepEqual(node.Papers, want) {
		t.Fatalf("expected papers %v, got %v", want, node.Papers)
	}
	if node.Type != extractor.TypeMethodology {
		t.Fatalf("unexpected node type %q", node.Type)
	}

	edge, ok := loaded.EdgeBetween("genelab", "rna-seq")
	if !ok {
		t.Fatalf("expected edge after reload")
	}
	if edge.Label != "Methodology_links_Dataset" {
		t.Fatalf("unexpected edge label %q", edge.Label)
	}

	if got := loaded.Neighbors("rna-seq"); !reflect.DeepEqual(got, []string{"genelab", "scanpy"}) {
		t.Fatalf("unexpected neighbors after reload: %v", got)
	}
}

func TestUnmarshalNodeLinkRejectsBadDocuments(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{name: "directed graph", data: `{"directed": true, "nodes": [], "links": []}`},
		{name: "dangling link", data: `{"nodes": [{"id": "a"}], "links": [{"source": "a", "target": "b"}]}`},
		{name: "malformed json", data: `{"nodes": [`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := UnmarshalNodeLink([]byte(tt.data)); err == nil {
				t.Fatalf("expected error for %s", tt.name)
			}
		})
	}
}
