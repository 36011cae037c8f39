package retriever

import (
	"context"
	"fmt"
	"strings"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/pkoukk/tiktoken-go"

	"github.com/FaiyazAwsaf/space-biology-engine/internal/util"
	"github.com/FaiyazAwsaf/space-biology-engine/pkg/ai"
	"github.com/FaiyazAwsaf/space-biology-engine/pkg/logger"
)

const (
	DefaultChunkTokens  = 512
	DefaultChunkOverlap = 64
)

// Indexer splits document text into token-bounded chunks, embeds them, and
// stores them for retrieval.
type Indexer struct {
	store       *PGStore
	aiClient    ai.GenerationClient
	chunkTokens int
	overlap     int
}

type IndexerParams struct {
	Store       *PGStore
	AIClient    ai.GenerationClient
	ChunkTokens int
	Overlap     int
}

func NewIndexer(params IndexerParams) *Indexer {
	chunkTokens := params.ChunkTokens
	if chunkTokens <= 0 {
		chunkTokens = DefaultChunkTokens
	}
	overlap := params.Overlap
	if overlap < 0 || overlap >= chunkTokens {
		overlap = DefaultChunkOverlap
	}
	return &Indexer{
		store:       params.Store,
		aiClient:    params.AIClient,
		chunkTokens: chunkTokens,
		overlap:     overlap,
	}
}

// SplitText breaks text into overlapping windows of at most chunkTokens
// tokens using the o200k_base encoding.
func (i *Indexer) SplitText(text string) ([]string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, nil
	}

	enc, err := tiktoken.GetEncoding("o200k_base")
	if err != nil {
		return nil, err
	}

	tokens := enc.Encode(text, nil, nil)
	if len(tokens) <= i.chunkTokens {
		return []string{text}, nil
	}

	step := i.chunkTokens - i.overlap
	chunks := make([]string, 0, (len(tokens)+step-1)/step)
	for start := 0; start < len(tokens); start += step {
		end := min(start+i.chunkTokens, len(tokens))
		chunk := strings.TrimSpace(enc.Decode(tokens[start:end]))
		if chunk != "" {
			chunks = append(chunks, chunk)
		}
		if end == len(tokens) {
			break
		}
	}

	return chunks, nil
}

// IndexDocument replaces a document's stored chunks with freshly split and
// embedded ones, returning the chunk texts in index order. Embedding requests
// are retried with backoff before the document is reported as failed.
func (i *Indexer) IndexDocument(ctx context.Context, documentID string, text string) ([]string, error) {
	parts, err := i.SplitText(text)
	if err != nil {
		return nil, fmt.Errorf("failed to split document %s: %w", documentID, err)
	}
	if len(parts) == 0 {
		logger.Warn("Skipping empty document", "document_id", documentID)
		return nil, nil
	}

	if err := i.store.DeleteDocument(ctx, documentID); err != nil {
		return nil, err
	}

	for idx, part := range parts {
		embedding, err := util.RetryWithBackoff(ctx, 3, 500*time.Millisecond, func(ctx context.Context) ([]float32, error) {
			return i.aiClient.GenerateEmbedding(ctx, []byte(part))
		})
		if err != nil {
			return nil, fmt.Errorf("failed to embed chunk %d of document %s: %w", idx, documentID, err)
		}

		id, err := gonanoid.New()
		if err != nil {
			return nil, err
		}

		chunk := Chunk{
			ID:         id,
			DocumentID: documentID,
			ChunkIndex: idx,
			Text:       part,
		}
		if err := i.store.InsertChunk(ctx, chunk, embedding); err != nil {
			return nil, err
		}
	}

	logger.Debug("Indexed document", "document_id", documentID, "chunks", len(parts))
	return parts, nil
}
