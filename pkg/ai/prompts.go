package ai

// RAGSystemPrompt constrains the generator to answer only from the supplied
// document chunks and to cite every evidence-bearing sentence.
const RAGSystemPrompt = "You are a NASA Research Analyst. Answer the user's question using ONLY the context provided in the 'Document Chunks'. " +
	"For every sentence you generate that uses a piece of evidence, you MUST append the corresponding citation marker (e.g., [ID 1], [ID 3]) to the end of the sentence. " +
	"If the context does not contain the answer, state that clearly."

// GeneralSystemPrompt asks for a best-effort general-knowledge answer when no
// local grounding exists.
const GeneralSystemPrompt = "You are a helpful assistant. Answer the user's question. " +
	"Since you are using general knowledge, your answer should be treated with low confidence regarding specific research data."

// ExtractEntitiesPrompt instructs the model to emit token-classification rows
// for research-paper entities. Used by the LLM-based extractor fallback; the
// single %s is the input text.
const ExtractEntitiesPrompt = `# Task Context
You are a named-entity recognizer for space biology research text.

# Detailed Task Description & Rules
- Identify every mention of one of these entity types: Methodology, Dataset, Key_Finding, Tool_Library.
- Emit one row per mention with the surface form and an IOB tag combining position and type (e.g. "B-Methodology").
- Do not invent mentions that are not present in the text.
- Ignore anything that does not fit one of the four types.

# Input Text
%s

# Output Formatting
Return a JSON object with this structure:
{
  "entities": [
    {"word": "<surface form>", "entity": "B-<Type>"}
  ]
}
Output must be valid JSON only (no commentary, no extra text).
`
