package query

// Source types reported in ApiResponse.SourceType.
const (
	SourceTypeRAG        = "Internal Research Papers RAG"
	SourceTypeGeneral    = "General Knowledge Model"
	SourceTypeRAGFailed  = "General Knowledge Model (RAG Failed)"
	SourceTypeLLMFailure = "LLM API Failure"
)

// Query is a user question with optional filters. Filters are accepted but
// not yet applied to retrieval; the schema stays an open string-keyed mapping
// reserved for graph-based filter predicates.
type Query struct {
	Question string              `json:"question"`
	Filters  map[string][]string `json:"filters"`
}

// Citation is one evidence card, numbered in retrieval order starting at 1.
type Citation struct {
	Source     string `json:"source"`
	Filename   string `json:"filename"`
	ChunkIndex int    `json:"chunk_index"`
	Text       string `json:"text"`
}

// NodeSummary is the per-entity graph lookup attached to a response.
type NodeSummary struct {
	Type           string   `json:"type"`
	Papers         []string `json:"papers"`
	NeighborsCount int      `json:"neighbors_count"`
}

// ApiResponse is the complete structured answer for one question.
type ApiResponse struct {
	Answer             string                 `json:"answer"`
	SourceType         string                 `json:"source_type"`
	ConfidenceWarning  bool                   `json:"confidence_warning"`
	Citations          []Citation             `json:"citations"`
	KnowledgeGraphData map[string]NodeSummary `json:"knowledge_graph_data"`
}
