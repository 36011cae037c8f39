package retriever

import (
	"context"
	"fmt"

	pgxv5 "github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pgvector/pgvector-go"

	"github.com/FaiyazAwsaf/space-biology-engine/pkg/ai"
)

// Chunk is one retrieved document passage with its cosine similarity score
// against the question embedding.
type Chunk struct {
	ID         string
	DocumentID string
	ChunkIndex int
	Text       string
	Score      float64
}

// Client retrieves the passages most similar to a question. Implementations
// must return results ordered by descending similarity.
type Client interface {
	Retrieve(ctx context.Context, question string, limit int) ([]Chunk, error)
}

type pgxIConn interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, optionsAndArgs ...any) (pgxv5.Rows, error)
	QueryRow(ctx context.Context, sql string, optionsAndArgs ...any) pgxv5.Row
}

// PGStore implements Client on PostgreSQL with pgvector. The question is
// embedded through the AI client and matched against stored chunk embeddings
// by cosine distance.
type PGStore struct {
	conn     pgxIConn
	aiClient ai.GenerationClient
}

type PGStoreParams struct {
	Conn     pgxIConn
	AIClient ai.GenerationClient
}

func NewPGStore(params PGStoreParams) *PGStore {
	return &PGStore{
		conn:     params.Conn,
		aiClient: params.AIClient,
	}
}

// Retrieve embeds the question and returns the limit nearest chunks by cosine
// distance, most similar first.
func (s *PGStore) Retrieve(ctx context.Context, question string, limit int) ([]Chunk, error) {
	embedding, err := s.aiClient.GenerateEmbedding(ctx, []byte(question))
	if err != nil {
		return nil, fmt.Errorf("failed to embed question: %w", err)
	}

	rows, err := s.conn.Query(ctx, `
		SELECT id, document_id, chunk_index, content, 1 - (embedding <=> $1) AS score
		FROM document_chunks
		ORDER BY embedding <=> $1
		LIMIT $2
	`, pgvector.NewVector(embedding), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query chunks: %w", err)
	}
	defer rows.Close()

	chunks := make([]Chunk, 0, limit)
	for rows.Next() {
		var chunk Chunk
		if err := rows.Scan(&chunk.ID, &chunk.DocumentID, &chunk.ChunkIndex, &chunk.Text, &chunk.Score); err != nil {
			return nil, fmt.Errorf("failed to scan chunk row: %w", err)
		}
		chunks = append(chunks, chunk)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return chunks, nil
}

// InsertChunk stores a chunk with its embedding.
func (s *PGStore) InsertChunk(ctx context.Context, chunk Chunk, embedding []float32) error {
	_, err := s.conn.Exec(ctx, `
		INSERT INTO document_chunks (id, document_id, chunk_index, content, embedding)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (document_id, chunk_index)
		DO UPDATE SET id = EXCLUDED.id, content = EXCLUDED.content, embedding = EXCLUDED.embedding
	`, chunk.ID, chunk.DocumentID, chunk.ChunkIndex, chunk.Text, pgvector.NewVector(embedding))
	if err != nil {
		return fmt.Errorf("failed to insert chunk: %w", err)
	}
	return nil
}

// DeleteDocument removes all chunks belonging to a document.
func (s *PGStore) DeleteDocument(ctx context.Context, documentID string) error {
	_, err := s.conn.Exec(ctx, `DELETE FROM document_chunks WHERE document_id = $1`, documentID)
	if err != nil {
		return fmt.Errorf("failed to delete document chunks: %w", err)
	}
	return nil
}

// CountChunks returns the number of stored chunks.
func (s *PGStore) CountChunks(ctx context.Context) (int64, error) {
	var count int64
	if err := s.conn.QueryRow(ctx, `SELECT COUNT(*) FROM document_chunks`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count chunks: %w", err)
	}
	return count, nil
}

var _ Client = (*PGStore)(nil)
