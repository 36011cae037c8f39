package queue

import (
	"context"
	"errors"
	"testing"

	"github.com/FaiyazAwsaf/space-biology-engine/pkg/extractor"
	"github.com/FaiyazAwsaf/space-biology-engine/pkg/kg"
)

type stubIndexer struct {
	parts []string
	calls int
}

func (s *stubIndexer) IndexDocument(ctx context.Context, documentID string, text string) ([]string, error) {
	s.calls++
	return s.parts, nil
}

type stubExtractor struct {
	rows   map[string][]extractor.TokenEntity
	failOn string
}

func (s *stubExtractor) Extract(ctx context.Context, text string) ([]extractor.TokenEntity, error) {
	if s.failOn != "" && text == s.failOn {
		return nil, errors.New("extractor unavailable")
	}
	return s.rows[text], nil
}

type memoryArtifacts struct {
	files map[string][]byte
}

func newMemoryArtifacts() *memoryArtifacts {
	return &memoryArtifacts{files: make(map[string][]byte)}
}

func (m *memoryArtifacts) Get(ctx context.Context, key string) ([]byte, error) {
	data, ok := m.files[key]
	if !ok {
		return nil, errors.New("not found")
	}
	return data, nil
}

func (m *memoryArtifacts) Put(ctx context.Context, key string, data []byte) error {
	m.files[key] = data
	return nil
}

var coMentionRows = []extractor.TokenEntity{
	{Word: "RNA-Seq", Entity: "B-Methodology"},
	{Word: "GeneLab", Entity: "B-Dataset"},
}

func TestProcessIndexMessageRedeliveryKeepsEdgeWeights(t *testing.T) {
	graph := kg.NewGraph()
	processor := NewIndexProcessor(IndexProcessorParams{
		Indexer:   &stubIndexer{parts: []string{"chunk one"}},
		Extractor: &stubExtractor{rows: map[string][]extractor.TokenEntity{"chunk one": coMentionRows}},
		Graph:     graph,
		Artifacts: newMemoryArtifacts(),
	})

	msg := `{"correlation_id": "c1", "document_id": "paper-1", "text": "irrelevant"}`
	for i := 0; i < 2; i++ {
		if err := processor.ProcessIndexMessage(context.Background(), msg); err != nil {
			t.Fatalf("attempt %d failed: %v", i+1, err)
		}
	}

	edge, ok := graph.EdgeBetween("rna-seq", "genelab")
	if !ok {
		t.Fatalf("expected edge between rna-seq and genelab")
	}
	if edge.Weight != 1 {
		t.Fatalf("redelivery must not inflate weights, want 1, got %d", edge.Weight)
	}
	node, ok := graph.NodeAttrs("rna-seq")
	if !ok {
		t.Fatalf("expected node rna-seq")
	}
	if len(node.Papers) != 1 || node.Papers[0] != "paper-1" {
		t.Fatalf("unexpected papers %v", node.Papers)
	}
}

func TestProcessIndexMessagePartialFailureLeavesGraphUntouched(t *testing.T) {
	graph := kg.NewGraph()
	ext := &stubExtractor{
		rows: map[string][]extractor.TokenEntity{
			"chunk one": coMentionRows,
			"chunk two": coMentionRows,
		},
		failOn: "chunk two",
	}
	artifacts := newMemoryArtifacts()
	processor := NewIndexProcessor(IndexProcessorParams{
		Indexer:   &stubIndexer{parts: []string{"chunk one", "chunk two"}},
		Extractor: ext,
		Graph:     graph,
		Artifacts: artifacts,
	})

	msg := `{"correlation_id": "c1", "document_id": "paper-1", "text": "irrelevant"}`
	if err := processor.ProcessIndexMessage(context.Background(), msg); err == nil {
		t.Fatalf("expected extraction failure to fail the job")
	}
	if graph.NodeCount() != 0 || graph.EdgeCount() != 0 {
		t.Fatalf("failed job must not fold partial results, got %d nodes and %d edges", graph.NodeCount(), graph.EdgeCount())
	}
	if len(artifacts.files) != 0 {
		t.Fatalf("failed job must not persist a snapshot")
	}

	// Redelivery after the extractor recovers.
	ext.failOn = ""
	if err := processor.ProcessIndexMessage(context.Background(), msg); err != nil {
		t.Fatalf("retry failed: %v", err)
	}

	edge, ok := graph.EdgeBetween("rna-seq", "genelab")
	if !ok {
		t.Fatalf("expected edge between rna-seq and genelab after retry")
	}
	if edge.Weight != 2 {
		t.Fatalf("expected weight 2 for two co-mentioning chunks, got %d", edge.Weight)
	}
}

func TestProcessIndexMessageRejectsMissingDocumentID(t *testing.T) {
	processor := NewIndexProcessor(IndexProcessorParams{
		Indexer:   &stubIndexer{},
		Extractor: &stubExtractor{},
		Graph:     kg.NewGraph(),
		Artifacts: newMemoryArtifacts(),
	})

	if err := processor.ProcessIndexMessage(context.Background(), `{"text": "orphan"}`); err == nil {
		t.Fatalf("expected error for job without document id")
	}
}
