package types

// AnswerSource tags how the final answer of a query was produced. It is set
// exactly once by the router and never changed afterwards.
type AnswerSource string

const (
	AnswerSourceKnowledgeBase AnswerSource = "knowledge_base"
	AnswerSourceWebSearch     AnswerSource = "web_search"
	AnswerSourceHybrid        AnswerSource = "hybrid"
	AnswerSourceLLMOnly       AnswerSource = "llm_only"
)

// Query represents a single user question with its tuning options. A Query is
// immutable for the duration of the request that carries it.
type Query struct {
	Text           string  `json:"text"`
	Collection     string  `json:"collection"`
	TopK           int     `json:"top_k,omitempty"`
	ScoreThreshold float64 `json:"score_threshold,omitempty"`
	UseRAG         bool    `json:"use_rag"`
	UseWebSearch   bool    `json:"use_web_search"`
}

// RetrievedPassage is a scored snippet returned by the retriever. Scores are
// normalized to [0,1]; downstream components treat passages as read-only.
type RetrievedPassage struct {
	Text   string  `json:"text"`
	Title  string  `json:"title,omitempty"`
	Origin string  `json:"origin,omitempty"`
	Score  float64 `json:"score"`
}

// WebSource is a single web search hit used as grounding evidence.
type WebSource struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"snippet,omitempty"`
}

// QueryResult is the final outcome of a routed query. All fields are derived
// from what happened during the single call that produced it; none are
// back-filled later.
type QueryResult struct {
	Answer     string             `json:"answer"`
	Source     AnswerSource       `json:"source"`
	KBSources  []RetrievedPassage `json:"kb_sources,omitempty"`
	WebSources []WebSource        `json:"web_sources,omitempty"`
	Metadata   ResultMetadata     `json:"metadata"`
}

// ResultMetadata carries provenance flags for a QueryResult.
type ResultMetadata struct {
	UsedRAG    bool    `json:"used_rag"`
	UsedWeb    bool    `json:"used_web"`
	Confidence float64 `json:"confidence"`
}
