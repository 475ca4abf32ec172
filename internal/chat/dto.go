package chat

// Wire types for the public chat/ingest surface and the reasoning
// backend. The backend is an opaque peer; these mirror its JSON API.

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type SamplingOptions struct {
	Temperature *float64 `json:"temperature,omitempty"`
	TopP        *float64 `json:"top_p,omitempty"`
	MaxTokens   *int     `json:"max_tokens,omitempty"`
	Seed        *int64   `json:"seed,omitempty"`
}

type RAGOptions struct {
	Enabled    bool     `json:"enabled"`
	TopK       int      `json:"top_k,omitempty"`
	Collection string   `json:"collection,omitempty"`
	Tags       []string `json:"tags,omitempty"`
}

type ChatRequest struct {
	TenantID        int64             `json:"tenant_id"`
	SiteKey         string            `json:"site_key"`
	PromptProfileID int64             `json:"prompt_profile_id,omitempty"`
	WidgetConfigID  int64             `json:"widget_config_id,omitempty"`
	ConversationID  string            `json:"conversation_id,omitempty"`
	UserID          string            `json:"user_id,omitempty"`
	Messages        []Message         `json:"messages"`
	Sampling        *SamplingOptions  `json:"sampling,omitempty"`
	Policies        map[string]string `json:"policies,omitempty"`
	RAG             *RAGOptions       `json:"rag,omitempty"`
	LogMeta         map[string]string `json:"log_meta,omitempty"`
}

type Usage struct {
	PromptTokens     int64 `json:"prompt_tokens"`
	CompletionTokens int64 `json:"completion_tokens"`
	TotalTokens      int64 `json:"total_tokens"`
}

type RAGResult struct {
	Matched   bool     `json:"matched"`
	Sources   []string `json:"sources,omitempty"`
	TopScore  float64  `json:"top_score,omitempty"`
	ChunkIDs  []string `json:"chunk_ids,omitempty"`
	Collected int      `json:"collected,omitempty"`
}

type ToolCallResult struct {
	Name   string `json:"name"`
	Input  string `json:"input,omitempty"`
	Output string `json:"output,omitempty"`
	Error  string `json:"error,omitempty"`
}

type SafetyVerdict struct {
	Flagged    bool     `json:"flagged"`
	Categories []string `json:"categories,omitempty"`
}

type ChatResponse struct {
	ConversationID string           `json:"conversation_id"`
	Answer         string           `json:"answer"`
	RichAnswer     map[string]any   `json:"rich_answer,omitempty"`
	Usage          Usage            `json:"usage"`
	RAG            *RAGResult       `json:"rag,omitempty"`
	ToolCalls      []ToolCallResult `json:"tool_calls,omitempty"`
	Safety         *SafetyVerdict   `json:"safety,omitempty"`
}

type IngestRequest struct {
	JobID      string `json:"job_id,omitempty"`
	DocumentID string `json:"document_id,omitempty"`
	SourceID   string `json:"source_id,omitempty"`
	FilePath   string `json:"file_path,omitempty"`
	SourceURL  string `json:"source_url,omitempty"`
	DocType    string `json:"doc_type"`
	Category   string `json:"category,omitempty"`
}

type IngestResponse struct {
	Success       bool     `json:"success"`
	Message       string   `json:"message,omitempty"`
	IngestID      string   `json:"ingest_id,omitempty"`
	VectorStoreID string   `json:"vector_store_id,omitempty"`
	FileID        string   `json:"file_id,omitempty"`
	Summary       string   `json:"summary,omitempty"`
	Tags          []string `json:"tags,omitempty"`
}
