package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/FaiyazAwsaf/space-biology-engine/pkg/ai"
)

type geminiPart struct {
	Text string `json:"text,omitempty"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"` // user, model
	Parts []geminiPart `json:"parts"`
}

type geminiGoogleSearch struct{}

type geminiTool struct {
	GoogleSearch *geminiGoogleSearch `json:"google_search,omitempty"`
}

type geminiGenerationConfig struct {
	Temperature float64 `json:"temperature,omitempty"`
}

type geminiRequest struct {
	Contents          []geminiContent         `json:"contents"`
	Tools             []geminiTool            `json:"tools,omitempty"`
	GenerationConfig  *geminiGenerationConfig `json:"generationConfig,omitempty"`
	SystemInstruction *geminiContent          `json:"systemInstruction,omitempty"`
}

type geminiCandidate struct {
	Content      geminiContent `json:"content"`
	FinishReason string        `json:"finishReason,omitempty"`
}

type geminiResponse struct {
	Candidates []geminiCandidate `json:"candidates"`
}

type geminiErrorResponse struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

// GenerateCompletion sends a single-turn prompt to the Gemini generateContent
// endpoint and returns the first candidate's text. An empty candidate list is
// returned as an empty string without error; the caller decides how to degrade.
func (c *Client) GenerateCompletion(
	ctx context.Context,
	prompt string,
	opts ...ai.GenerateOption,
) (string, error) {
	options := ai.GenerateOptions{
		Model: c.model,
	}
	for _, o := range opts {
		o(&options)
	}

	req := geminiRequest{
		Contents: []geminiContent{
			{Role: "user", Parts: []geminiPart{{Text: prompt}}},
		},
	}
	if len(options.SystemPrompts) > 0 {
		parts := make([]geminiPart, 0, len(options.SystemPrompts))
		for _, sp := range options.SystemPrompts {
			parts = append(parts, geminiPart{Text: sp})
		}
		req.SystemInstruction = &geminiContent{Parts: parts}
	}
	if options.SearchGrounding {
		req.Tools = []geminiTool{{GoogleSearch: &geminiGoogleSearch{}}}
	}
	if options.Temperature > 0 {
		req.GenerationConfig = &geminiGenerationConfig{Temperature: options.Temperature}
	}

	endpoint := fmt.Sprintf("%s/v1beta/models/%s:generateContent", c.baseURL, options.Model)
	var res geminiResponse
	if err := c.post(ctx, endpoint, req, &res); err != nil {
		return "", err
	}

	if len(res.Candidates) == 0 || len(res.Candidates[0].Content.Parts) == 0 {
		return "", nil
	}
	return res.Candidates[0].Content.Parts[0].Text, nil
}

type geminiEmbedRequest struct {
	Content geminiContent `json:"content"`
}

type geminiEmbedResponse struct {
	Embedding struct {
		Values []float32 `json:"values"`
	} `json:"embedding"`
}

// GenerateEmbedding creates a vector embedding for the given input using the
// configured embedding model.
func (c *Client) GenerateEmbedding(ctx context.Context, input []byte) ([]float32, error) {
	req := geminiEmbedRequest{
		Content: geminiContent{Parts: []geminiPart{{Text: string(input)}}},
	}

	endpoint := fmt.Sprintf("%s/v1beta/models/%s:embedContent", c.baseURL, c.embeddingModel)
	var res geminiEmbedResponse
	if err := c.post(ctx, endpoint, req, &res); err != nil {
		return nil, err
	}
	return res.Embedding.Values, nil
}

func (c *Client) post(ctx context.Context, endpoint string, body any, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("gemini request failed: status=%d msg=%s", resp.StatusCode, readErrMsg(raw))
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func readErrMsg(raw []byte) string {
	var errRes geminiErrorResponse
	if err := json.Unmarshal(raw, &errRes); err == nil && errRes.Error.Message != "" {
		return errRes.Error.Message
	}
	return string(raw)
}
