package gemini

import (
	"net/http"
	"strings"
	"time"

	"github.com/FaiyazAwsaf/space-biology-engine/pkg/ai"
)

const defaultBaseURL = "https://generativelanguage.googleapis.com"

// Client implements ai.GenerationClient against the Gemini REST API.
// Requests authenticate with the x-goog-api-key header; generation supports
// the google_search grounding tool for general-knowledge answers.
type Client struct {
	model          string
	embeddingModel string

	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewClientParams contains configuration for creating a Gemini client.
type NewClientParams struct {
	Model          string
	EmbeddingModel string

	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// NewClient creates a Gemini client configured with the provided parameters.
func NewClient(params NewClientParams) *Client {
	baseURL := params.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	timeout := params.Timeout
	if timeout == 0 {
		timeout = 60 * time.Second
	}

	return &Client{
		model:          params.Model,
		embeddingModel: params.EmbeddingModel,
		baseURL:        strings.TrimRight(baseURL, "/"),
		apiKey:         params.APIKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

var _ ai.GenerationClient = (*Client)(nil)
