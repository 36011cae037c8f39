package extractor

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/FaiyazAwsaf/space-biology-engine/pkg/ai"
)

// LLMClient extracts entities through a generation backend with structured
// JSON output. It is the fallback adapter for deployments without a hosted
// NER model; results follow the same row shape as the HTTP adapter.
type LLMClient struct {
	gen ai.GenerationClient
}

// NewLLMClient creates an extractor backed by the given generation client.
func NewLLMClient(gen ai.GenerationClient) *LLMClient {
	return &LLMClient{gen: gen}
}

type llmExtraction struct {
	Entities []TokenEntity `json:"entities"`
}

// Extract prompts the model for token-classification rows over text.
func (c *LLMClient) Extract(ctx context.Context, text string) ([]TokenEntity, error) {
	schema, err := json.Marshal(ai.GenerateSchema(llmExtraction{}))
	if err != nil {
		return nil, err
	}

	prompt := fmt.Sprintf(ai.ExtractEntitiesPrompt, text)
	prompt += fmt.Sprintf("\nThe output must conform to this JSON schema:\n%s\n", schema)

	res, err := c.gen.GenerateCompletion(ctx, prompt, ai.WithTemperature(0.1))
	if err != nil {
		return nil, err
	}

	var out llmExtraction
	if err := ai.UnmarshalFlexible(res, &out); err != nil {
		return nil, fmt.Errorf("failed to parse extraction output: %w", err)
	}
	return out.Entities, nil
}

var _ Client = (*LLMClient)(nil)
