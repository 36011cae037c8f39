package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
)

// Batch-side artifact keys. The worker writes them after every processed
// document; the server reads them once at startup.
const (
	GraphSnapshotKey = "artifacts/knowledge_graph.json"
	LabelMapKey      = "artifacts/label_map.json"
)

// ArtifactStore persists batch artifacts (graph snapshot, label map). Backed
// by S3 when configured, by a local directory otherwise.
type ArtifactStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, data []byte) error
}

type S3ArtifactStore struct {
	client *awss3.Client
}

func NewS3ArtifactStore(client *awss3.Client) *S3ArtifactStore {
	return &S3ArtifactStore{client: client}
}

func (s *S3ArtifactStore) Get(ctx context.Context, key string) ([]byte, error) {
	return GetFile(ctx, s.client, key)
}

func (s *S3ArtifactStore) Put(ctx context.Context, key string, data []byte) error {
	return PutFile(ctx, s.client, key, data, "application/json")
}

// LocalArtifactStore keeps artifacts under a base directory, mirroring the
// object keys as relative paths.
type LocalArtifactStore struct {
	baseDir string
}

func NewLocalArtifactStore(baseDir string) *LocalArtifactStore {
	return &LocalArtifactStore{baseDir: baseDir}
}

func (s *LocalArtifactStore) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, filepath.FromSlash(key)))
	if err != nil {
		return nil, fmt.Errorf("failed to read artifact %s: %w", key, err)
	}
	return data, nil
}

func (s *LocalArtifactStore) Put(ctx context.Context, key string, data []byte) error {
	path := filepath.Join(s.baseDir, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create artifact directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write artifact %s: %w", key, err)
	}
	return nil
}

var (
	_ ArtifactStore = (*S3ArtifactStore)(nil)
	_ ArtifactStore = (*LocalArtifactStore)(nil)
)
