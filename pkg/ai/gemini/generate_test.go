package gemini

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/FaiyazAwsaf/space-biology-engine/pkg/ai"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	client := NewClient(NewClientParams{
		Model:          "gemini-1.5-flash-latest",
		EmbeddingModel: "text-embedding-004",
		BaseURL:        srv.URL,
		APIKey:         "test-key",
	})
	return client, srv
}

func TestGenerateCompletion(t *testing.T) {
	var gotReq geminiRequest
	var gotKey string
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("x-goog-api-key")
		body, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(body, &gotReq); err != nil {
			t.Errorf("failed to decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"candidates":[{"content":{"role":"model","parts":[{"text":"Bone loss accelerates in microgravity."}]}}]}`)
	})

	got, err := client.GenerateCompletion(context.Background(), "What happens to bone in space?",
		ai.WithSystemPrompts("You are a NASA Research Analyst."),
		ai.WithSearchGrounding(),
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "Bone loss accelerates in microgravity." {
		t.Fatalf("unexpected completion: %q", got)
	}
	if gotKey != "test-key" {
		t.Fatalf("expected api key header, got %q", gotKey)
	}
	if gotReq.SystemInstruction == nil || len(gotReq.SystemInstruction.Parts) != 1 {
		t.Fatal("expected system instruction with one part")
	}
	if len(gotReq.Tools) != 1 || gotReq.Tools[0].GoogleSearch == nil {
		t.Fatal("expected google_search tool in request")
	}
	if len(gotReq.Contents) != 1 || gotReq.Contents[0].Parts[0].Text != "What happens to bone in space?" {
		t.Fatalf("unexpected contents: %+v", gotReq.Contents)
	}
}

func TestGenerateCompletion_NoSearchToolByDefault(t *testing.T) {
	var gotReq geminiRequest
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		json.Unmarshal(body, &gotReq)
		io.WriteString(w, `{"candidates":[{"content":{"parts":[{"text":"ok"}]}}]}`)
	})

	if _, err := client.GenerateCompletion(context.Background(), "q"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(gotReq.Tools) != 0 {
		t.Fatalf("expected no tools, got %+v", gotReq.Tools)
	}
}

func TestGenerateCompletion_EmptyCandidates(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"candidates":[]}`)
	})

	got, err := client.GenerateCompletion(context.Background(), "q")
	if err != nil {
		t.Fatalf("expected empty response without error, got %v", err)
	}
	if got != "" {
		t.Fatalf("expected empty string, got %q", got)
	}
}

func TestGenerateCompletion_ServerError(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		io.WriteString(w, `{"error":{"code":429,"message":"quota exceeded","status":"RESOURCE_EXHAUSTED"}}`)
	})

	_, err := client.GenerateCompletion(context.Background(), "q")
	if err == nil {
		t.Fatal("expected error for non-2xx status")
	}
	if !strings.Contains(err.Error(), "quota exceeded") {
		t.Fatalf("expected error message from body, got %v", err)
	}
}

func TestGenerateEmbedding(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.URL.Path, "text-embedding-004:embedContent") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		io.WriteString(w, `{"embedding":{"values":[0.1,0.2,0.3]}}`)
	})

	got, err := client.GenerateEmbedding(context.Background(), []byte("microgravity"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 values, got %d", len(got))
	}
}
