package extractor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// HTTPClient extracts entities through a hosted token-classification
// endpoint speaking the inference-API convention: POST {"inputs": text},
// response is a flat list of {word, entity} rows.
type HTTPClient struct {
	endpoint   string
	token      string
	httpClient *http.Client
}

// NewHTTPClientParams contains configuration for creating an HTTPClient.
type NewHTTPClientParams struct {
	Endpoint string
	Token    string
	Timeout  time.Duration
}

// NewHTTPClient creates a client for a remote NER inference service.
func NewHTTPClient(params NewHTTPClientParams) *HTTPClient {
	timeout := params.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &HTTPClient{
		endpoint: params.Endpoint,
		token:    params.Token,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

type inferenceRequest struct {
	Inputs string `json:"inputs"`
}

// Extract runs the remote model over text and returns raw tag rows.
func (c *HTTPClient) Extract(ctx context.Context, text string) ([]TokenEntity, error) {
	payload, err := json.Marshal(inferenceRequest{Inputs: text})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("ner inference failed: status=%d body=%s", resp.StatusCode, raw)
	}

	var rows []TokenEntity
	if err := json.Unmarshal(raw, &rows); err != nil {
		return nil, fmt.Errorf("failed to decode ner response: %w", err)
	}
	return rows, nil
}

var _ Client = (*HTTPClient)(nil)
