package query

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/FaiyazAwsaf/space-biology-engine/pkg/ai"
	"github.com/FaiyazAwsaf/space-biology-engine/pkg/extractor"
	"github.com/FaiyazAwsaf/space-biology-engine/pkg/kg"
	"github.com/FaiyazAwsaf/space-biology-engine/pkg/logger"
	"github.com/FaiyazAwsaf/space-biology-engine/pkg/retriever"
)

const retrievalLimit = 5

// Engine routes a question through retrieval-augmented or general-knowledge
// answering. Collaborators are injected once at startup and treated as
// read-only; a nil collaborator disables its step without failing requests.
type Engine struct {
	extractor extractor.Client
	retriever retriever.Client
	graph     kg.Store
	generator ai.GenerationClient
}

type EngineParams struct {
	Extractor extractor.Client
	Retriever retriever.Client
	Graph     kg.Store
	Generator ai.GenerationClient
}

func NewEngine(params EngineParams) *Engine {
	return &Engine{
		extractor: params.Extractor,
		retriever: params.Retriever,
		graph:     params.Graph,
		generator: params.Generator,
	}
}

// genResult tags the generation outcome instead of threading errors through
// the response path. Degraded results still produce a well-formed answer
// body; callers must not turn them into transport failures.
type genResult struct {
	answer   string
	degraded bool
	detail   string
}

// Answer routes the question, builds the grounding prompt, invokes the
// generator, and assembles citations plus graph metadata. It never returns an
// error: downstream failures surface as degraded response fields.
func (e *Engine) Answer(ctx context.Context, q Query) ApiResponse {
	resp := ApiResponse{
		SourceType:         SourceTypeGeneral,
		Citations:          []Citation{},
		KnowledgeGraphData: map[string]NodeSummary{},
	}

	// Extraction and retrieval are independent of each other; run both up
	// front and discard the chunks if the question routes general.
	var mentions []extractor.Mention
	var chunks []retriever.Chunk
	retrievalAttempted := false

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if e.extractor == nil {
			return nil
		}
		tokens, err := e.extractor.Extract(gctx, q.Question)
		if err != nil {
			logger.Warn("Entity extraction failed", "err", err)
			return nil
		}
		mentions = extractor.Mentions(tokens)
		return nil
	})
	g.Go(func() error {
		if e.retriever == nil {
			return nil
		}
		retrievalAttempted = true
		result, err := e.retriever.Retrieve(gctx, q.Question, retrievalLimit)
		if err != nil {
			logger.Warn("Chunk retrieval failed", "err", err)
			return nil
		}
		chunks = result
		return nil
	})
	_ = g.Wait()

	isDomainQuery := len(mentions) > 0 || len(q.Filters) > 0

	ragContext := ""
	if isDomainQuery && retrievalAttempted {
		resp.SourceType = SourceTypeRAG

		contextParts := make([]string, 0, len(chunks))
		for i, chunk := range chunks {
			contextParts = append(contextParts, fmt.Sprintf("Document Chunk [ID %d]: %s", i+1, chunk.Text))
			resp.Citations = append(resp.Citations, Citation{
				Source:     fmt.Sprintf("Citation %d", i+1),
				Filename:   chunk.DocumentID,
				ChunkIndex: chunk.ChunkIndex,
				Text:       chunk.Text,
			})
		}
		ragContext = strings.Join(contextParts, "\n---\n")

		if ragContext == "" {
			// Retrieval was attempted but found nothing relevant.
			isDomainQuery = false
			resp.ConfidenceWarning = true
			resp.SourceType = SourceTypeRAGFailed
		}
	}

	var result genResult
	if isDomainQuery && ragContext != "" {
		result = e.generate(ctx,
			fmt.Sprintf("Question: %s\n\nContext:\n%s", q.Question, ragContext),
			ai.WithSystemPrompts(ai.RAGSystemPrompt),
		)
	} else {
		resp.ConfidenceWarning = true
		result = e.generate(ctx,
			q.Question,
			ai.WithSystemPrompts(ai.GeneralSystemPrompt),
			ai.WithSearchGrounding(),
		)
	}

	resp.Answer = result.answer
	if result.degraded {
		resp.Answer = fmt.Sprintf("API Error: %s", result.detail)
		resp.ConfidenceWarning = true
		resp.SourceType = SourceTypeLLMFailure
	}

	e.enrich(&resp, mentions)
	return resp
}

func (e *Engine) generate(ctx context.Context, prompt string, opts ...ai.GenerateOption) genResult {
	if e.generator == nil {
		return genResult{degraded: true, detail: "no generation backend configured"}
	}

	answer, err := e.generator.GenerateCompletion(ctx, prompt, opts...)
	if err != nil {
		logger.Error("Generation failed", "err", err)
		return genResult{degraded: true, detail: err.Error()}
	}
	if answer == "" {
		answer = "Error: No response from LLM."
	}
	return genResult{answer: answer}
}

// enrich attaches graph lookups for each extracted entity, iterating in
// extraction order so output is deterministic. Keys absent from the graph are
// omitted.
func (e *Engine) enrich(resp *ApiResponse, mentions []extractor.Mention) {
	if e.graph == nil {
		return
	}
	for _, m := range mentions {
		node, ok := e.graph.NodeAttrs(m.Key)
		if !ok {
			continue
		}
		resp.KnowledgeGraphData[m.Key] = NodeSummary{
			Type:           string(node.Type),
			Papers:         node.Papers,
			NeighborsCount: len(e.graph.Neighbors(m.Key)),
		}
	}
}
