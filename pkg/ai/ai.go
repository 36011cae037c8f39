package ai

import (
	"context"
)

// GenerateOptions holds configuration for generation requests.
type GenerateOptions struct {
	Model           string   // Model identifier to use for generation
	SystemPrompts   []string // System prompts prepended to the request
	Temperature     float64  // Sampling temperature (0.0-2.0)
	SearchGrounding bool     // Ask the backend to augment with external search, if supported
}

// GenerateOption is a functional option for configuring generation requests.
type GenerateOption func(*GenerateOptions)

// WithModel returns a GenerateOption that sets the model to use for generation.
func WithModel(model string) GenerateOption {
	return func(o *GenerateOptions) {
		o.Model = model
	}
}

// WithSystemPrompts returns a GenerateOption that sets the system prompts
// to prepend to the generation request.
func WithSystemPrompts(prompts ...string) GenerateOption {
	return func(o *GenerateOptions) {
		o.SystemPrompts = prompts
	}
}

// WithTemperature returns a GenerateOption that sets the sampling temperature.
func WithTemperature(temp float64) GenerateOption {
	return func(o *GenerateOptions) {
		o.Temperature = temp
	}
}

// WithSearchGrounding returns a GenerateOption that requests external search
// augmentation from the backend. Backends without search support ignore it.
func WithSearchGrounding() GenerateOption {
	return func(o *GenerateOptions) {
		o.SearchGrounding = true
	}
}

// GenerationClient defines the interface for the remote generation backend
// consumed by the query router and the batch indexer. Implementations handle
// text generation and embeddings; a well-formed but empty completion is
// returned as an empty string with a nil error.
type GenerationClient interface {
	GenerateCompletion(
		ctx context.Context,
		prompt string,
		opts ...GenerateOption,
	) (string, error)
	GenerateEmbedding(ctx context.Context, input []byte) ([]float32, error)
}
