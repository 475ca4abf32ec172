package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/devhive/ai-chat-gateway/internal/models"
)

// BackendChatRequest is the outbound call: the caller's conversation
// combined with the resolved profile's model and template parameters.
type BackendChatRequest struct {
	ConversationID string            `json:"conversation_id"`
	Model          string            `json:"model"`
	SystemPrompt   string            `json:"system_prompt,omitempty"`
	Guardrail      string            `json:"guardrail,omitempty"`
	Messages       []Message         `json:"messages"`
	Temperature    float64           `json:"temperature"`
	TopP           float64           `json:"top_p"`
	MaxTokens      int               `json:"max_tokens"`
	Seed           *int64            `json:"seed,omitempty"`
	FreqPenalty    float64           `json:"frequency_penalty,omitempty"`
	PresPenalty    float64           `json:"presence_penalty,omitempty"`
	Stops          []string          `json:"stop,omitempty"`
	Tools          []models.ToolSpec `json:"tools,omitempty"`
	Policies       map[string]string `json:"policies,omitempty"`
	RAG            *RAGOptions       `json:"rag,omitempty"`
}

type BackendChatResponse struct {
	Answer        string           `json:"answer"`
	RichAnswer    map[string]any   `json:"rich_answer,omitempty"`
	Usage         Usage            `json:"usage"`
	RAG           *RAGResult       `json:"rag,omitempty"`
	ToolCalls     []ToolCallResult `json:"tool_calls,omitempty"`
	Safety        *SafetyVerdict   `json:"safety,omitempty"`
	PolicyBlocked bool             `json:"policy_blocked,omitempty"`
}

type BackendClient struct {
	baseURL string
	client  *http.Client
	timeout time.Duration
}

func NewBackendClient(baseURL string, timeout time.Duration) *BackendClient {
	return &BackendClient{
		baseURL: baseURL,
		client: &http.Client{
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		timeout: timeout,
	}
}

func (c *BackendClient) Timeout() time.Duration {
	return c.timeout
}

type backendError struct {
	StatusCode int
	Body       string
}

func (e *backendError) Error() string {
	return fmt.Sprintf("backend returned %d: %s", e.StatusCode, e.Body)
}

func (c *BackendClient) Chat(ctx context.Context, req *BackendChatRequest) (*BackendChatResponse, error) {
	var resp BackendChatResponse
	if err := c.post(ctx, "/v1/chat", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *BackendClient) Ingest(ctx context.Context, req *IngestRequest) (*IngestResponse, error) {
	var resp IngestResponse
	if err := c.post(ctx, "/v1/ingest", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *BackendClient) post(ctx context.Context, path string, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	httpResp, err := c.client.Do(httpReq)
	if err != nil {
		return err
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(httpResp.Body, 10<<20))
	if err != nil {
		return err
	}

	if httpResp.StatusCode != http.StatusOK {
		return &backendError{StatusCode: httpResp.StatusCode, Body: string(respBody)}
	}
	return json.Unmarshal(respBody, out)
}
