package chat

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/devhive/ai-chat-gateway/internal/gwerr"
	"github.com/devhive/ai-chat-gateway/internal/models"
)

type fakeBackend struct {
	resp    *BackendChatResponse
	err     error
	lastReq *BackendChatRequest
}

func (f *fakeBackend) Chat(_ context.Context, req *BackendChatRequest) (*BackendChatResponse, error) {
	f.lastReq = req
	if f.err != nil {
		return nil, f.err
	}
	return f.resp, nil
}

func (f *fakeBackend) Timeout() time.Duration { return time.Second }

type fakeRecorder struct {
	records []*models.UsageRecord
}

func (f *fakeRecorder) Record(rec *models.UsageRecord) {
	f.records = append(f.records, rec)
}

func testSiteKey() *models.SiteKey {
	return &models.SiteKey{TenantID: 1, Key: "sk_test", Status: models.KeyActive}
}

func testProfile() *models.PromptProfile {
	return &models.PromptProfile{
		ID: 5, TenantID: 1, Model: "reasoner-1",
		Temperature: 0.4, TopP: 0.9, MaxTokens: 512,
		Status: models.ProfileActive,
	}
}

func TestHandle_Success(t *testing.T) {
	backend := &fakeBackend{resp: &BackendChatResponse{
		Answer: "hello",
		Usage:  Usage{PromptTokens: 10, CompletionTokens: 4, TotalTokens: 14},
	}}
	rec := &fakeRecorder{}
	o := NewOrchestrator(backend, rec)

	resp, err := o.Handle(context.Background(), testSiteKey(), testProfile(), &ChatRequest{
		Messages: []Message{{Role: "user", Content: "hi"}},
	})
	if err != nil {
		t.Fatal(err)
	}

	if resp.Answer != "hello" {
		t.Errorf("answer = %s", resp.Answer)
	}
	if resp.ConversationID == "" {
		t.Error("conversation id not generated")
	}
	if backend.lastReq.Model != "reasoner-1" {
		t.Errorf("model = %s", backend.lastReq.Model)
	}

	if len(rec.records) != 1 {
		t.Fatalf("records = %d, want exactly 1", len(rec.records))
	}
	r := rec.records[0]
	if !r.Success || r.PromptTokens != 10 || r.CompletionTokens != 4 {
		t.Errorf("record = %+v", r)
	}
	if r.LatencyMs == nil {
		t.Error("successful call has no latency")
	}
}

func TestHandle_TimeoutMapsAndRecordsFailure(t *testing.T) {
	backend := &fakeBackend{err: fmt.Errorf("post: %w", context.DeadlineExceeded)}
	rec := &fakeRecorder{}
	o := NewOrchestrator(backend, rec)

	_, err := o.Handle(context.Background(), testSiteKey(), testProfile(), &ChatRequest{
		Messages: []Message{{Role: "user", Content: "hi"}},
	})

	var ge *gwerr.Error
	if !errors.As(err, &ge) || ge.Code != gwerr.CodeUpstreamTimeout {
		t.Fatalf("err = %v, want UPSTREAM_TIMEOUT", err)
	}

	if len(rec.records) != 1 {
		t.Fatalf("records = %d, want exactly 1", len(rec.records))
	}
	r := rec.records[0]
	if r.Success {
		t.Error("failed call recorded as success")
	}
	if r.PromptTokens != 0 || r.CompletionTokens != 0 {
		t.Errorf("failed call recorded tokens: %+v", r)
	}
	if r.LatencyMs != nil {
		t.Error("failed call recorded a latency")
	}
}

func TestHandle_ContentPolicyBlock(t *testing.T) {
	tests := []struct {
		name    string
		backend *fakeBackend
	}{
		{"flagged response", &fakeBackend{resp: &BackendChatResponse{PolicyBlocked: true}}},
		{"422 status", &fakeBackend{err: &backendError{StatusCode: 422, Body: "blocked"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &fakeRecorder{}
			o := NewOrchestrator(tt.backend, rec)

			_, err := o.Handle(context.Background(), testSiteKey(), testProfile(), &ChatRequest{
				Messages: []Message{{Role: "user", Content: "hi"}},
			})

			var ge *gwerr.Error
			if !errors.As(err, &ge) || ge.Code != gwerr.CodeContentPolicyBlock {
				t.Fatalf("err = %v, want CONTENT_POLICY_BLOCK", err)
			}
			if len(rec.records) != 1 || rec.records[0].Success {
				t.Errorf("records = %+v", rec.records)
			}
		})
	}
}

func TestHandle_GenericUpstreamError(t *testing.T) {
	backend := &fakeBackend{err: errors.New("connection refused")}
	rec := &fakeRecorder{}
	o := NewOrchestrator(backend, rec)

	_, err := o.Handle(context.Background(), testSiteKey(), testProfile(), &ChatRequest{
		Messages: []Message{{Role: "user", Content: "hi"}},
	})

	var ge *gwerr.Error
	if !errors.As(err, &ge) || ge.Code != gwerr.CodeUpstreamError {
		t.Fatalf("err = %v, want UPSTREAM_ERROR", err)
	}
}

func TestHandle_KeepsSuppliedConversationID(t *testing.T) {
	backend := &fakeBackend{resp: &BackendChatResponse{Answer: "ok"}}
	o := NewOrchestrator(backend, &fakeRecorder{})

	resp, err := o.Handle(context.Background(), testSiteKey(), testProfile(), &ChatRequest{
		ConversationID: "conv-77",
		Messages:       []Message{{Role: "user", Content: "hi"}},
	})
	if err != nil {
		t.Fatal(err)
	}
	if resp.ConversationID != "conv-77" {
		t.Errorf("conversation id = %s, want conv-77", resp.ConversationID)
	}
	if backend.lastReq.ConversationID != "conv-77" {
		t.Errorf("outbound conversation id = %s", backend.lastReq.ConversationID)
	}
}

func TestBuildBackendRequest_SamplingOverrides(t *testing.T) {
	prof := testProfile()
	prof.Policies = models.PolicyMap{"pii": "mask", "tone": "formal"}

	temp := 0.9
	maxTok := 64
	req := &ChatRequest{
		Messages: []Message{{Role: "user", Content: "hi"}},
		Sampling: &SamplingOptions{Temperature: &temp, MaxTokens: &maxTok},
		Policies: map[string]string{"tone": "casual"},
	}

	out := buildBackendRequest("c1", prof, req)

	if out.Temperature != 0.9 {
		t.Errorf("temperature = %v, want request override 0.9", out.Temperature)
	}
	if out.MaxTokens != 64 {
		t.Errorf("max tokens = %d, want 64", out.MaxTokens)
	}
	if out.TopP != 0.9 {
		t.Errorf("top_p = %v, want profile value", out.TopP)
	}
	if out.Policies["tone"] != "casual" || out.Policies["pii"] != "mask" {
		t.Errorf("policies = %v, request should win per key", out.Policies)
	}
}
