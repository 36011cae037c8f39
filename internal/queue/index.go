package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/FaiyazAwsaf/space-biology-engine/internal/storage"
	"github.com/FaiyazAwsaf/space-biology-engine/pkg/extractor"
	"github.com/FaiyazAwsaf/space-biology-engine/pkg/kg"
	"github.com/FaiyazAwsaf/space-biology-engine/pkg/logger"
	"github.com/FaiyazAwsaf/space-biology-engine/pkg/retriever"
)

// IndexDocumentMsg is one index_queue job: a full document to chunk, embed,
// and fold into the knowledge graph.
type IndexDocumentMsg struct {
	CorrelationID string `json:"correlation_id"`
	DocumentID    string `json:"document_id"`
	Text          string `json:"text"`
}

// DocumentIndexer stores a document's chunks for retrieval and returns the
// chunk texts in index order.
type DocumentIndexer interface {
	IndexDocument(ctx context.Context, documentID string, text string) ([]string, error)
}

// IndexProcessor handles index_queue jobs. The graph is shared across jobs
// and guarded by a mutex. Extraction runs for every chunk before anything is
// folded, so a failed document leaves the graph untouched; folding replaces
// the document's earlier contributions, keeping redelivered jobs idempotent.
// The snapshot is persisted after every document so the serving process can
// pick up a consistent view.
type IndexProcessor struct {
	indexer   DocumentIndexer
	extractor extractor.Client
	graph     *kg.Graph
	artifacts storage.ArtifactStore

	graphLock sync.Mutex
}

type IndexProcessorParams struct {
	Indexer   DocumentIndexer
	Extractor extractor.Client
	Graph     *kg.Graph
	Artifacts storage.ArtifactStore
}

func NewIndexProcessor(params IndexProcessorParams) *IndexProcessor {
	return &IndexProcessor{
		indexer:   params.Indexer,
		extractor: params.Extractor,
		graph:     params.Graph,
		artifacts: params.Artifacts,
	}
}

// ProcessIndexMessage indexes the document's chunks for retrieval, extracts
// entities per chunk, folds them into the knowledge graph, and persists the
// node-link snapshot.
func (p *IndexProcessor) ProcessIndexMessage(ctx context.Context, msg string) error {
	data := new(IndexDocumentMsg)
	if err := json.Unmarshal([]byte(msg), data); err != nil {
		return err
	}
	if data.DocumentID == "" {
		return fmt.Errorf("index job is missing a document id")
	}

	parts, err := p.indexer.IndexDocument(ctx, data.DocumentID, data.Text)
	if err != nil {
		return err
	}

	entityChunks := 0
	chunkMentions := make([][]extractor.Mention, 0, len(parts))
	for _, part := range parts {
		tokens, err := p.extractor.Extract(ctx, part)
		if err != nil {
			return fmt.Errorf("failed to extract entities for document %s: %w", data.DocumentID, err)
		}
		mentions := extractor.Mentions(tokens)
		if len(mentions) > 0 {
			entityChunks++
		}
		chunkMentions = append(chunkMentions, mentions)
	}

	p.graphLock.Lock()
	p.graph.RemoveDocument(data.DocumentID)
	for _, mentions := range chunkMentions {
		if len(mentions) == 0 {
			continue
		}
		p.graph.AddChunkEntities(data.DocumentID, mentions)
	}
	p.graphLock.Unlock()

	if err := p.persistSnapshot(ctx); err != nil {
		return err
	}

	logger.Info("[Queue] Indexed document",
		"correlation_id", data.CorrelationID,
		"document_id", data.DocumentID,
		"chunks", len(parts),
		"entity_chunks", entityChunks,
	)
	return nil
}

func (p *IndexProcessor) persistSnapshot(ctx context.Context) error {
	p.graphLock.Lock()
	snapshot, err := p.graph.MarshalNodeLink()
	p.graphLock.Unlock()
	if err != nil {
		return fmt.Errorf("failed to serialize graph snapshot: %w", err)
	}

	if err := p.artifacts.Put(ctx, storage.GraphSnapshotKey, snapshot); err != nil {
		return err
	}
	return nil
}

var _ DocumentIndexer = (*retriever.Indexer)(nil)
