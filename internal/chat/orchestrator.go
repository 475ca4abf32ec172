package chat

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/devhive/ai-chat-gateway/internal/gwerr"
	"github.com/devhive/ai-chat-gateway/internal/metrics"
	"github.com/devhive/ai-chat-gateway/internal/models"
	"github.com/google/uuid"
)

type Backend interface {
	Chat(ctx context.Context, req *BackendChatRequest) (*BackendChatResponse, error)
	Timeout() time.Duration
}

type Recorder interface {
	Record(rec *models.UsageRecord)
}

// Orchestrator forwards one chat turn to the reasoning backend and maps
// its reply. Every handled call emits exactly one usage record, success
// or not.
type Orchestrator struct {
	backend  Backend
	recorder Recorder
}

func NewOrchestrator(backend Backend, recorder Recorder) *Orchestrator {
	return &Orchestrator{backend: backend, recorder: recorder}
}

func (o *Orchestrator) Handle(ctx context.Context, sk *models.SiteKey, prof *models.PromptProfile, req *ChatRequest) (*ChatResponse, error) {
	convID := req.ConversationID
	if convID == "" {
		convID = uuid.NewString()
	}

	outbound := buildBackendRequest(convID, prof, req)

	callCtx, cancel := context.WithTimeout(ctx, o.backend.Timeout())
	defer cancel()

	start := time.Now()
	resp, err := o.backend.Chat(callCtx, outbound)
	elapsed := time.Since(start)
	metrics.ChatDuration.Observe(elapsed.Seconds())

	if err == nil && resp.PolicyBlocked {
		err = gwerr.New(gwerr.CodeContentPolicyBlock, "answer blocked by content policy")
	}
	if err != nil {
		ge := mapBackendError(err)
		slog.Warn("backend call failed",
			"conversation_id", convID,
			"code", ge.Code,
			"err", err)
		metrics.UpstreamFailuresTotal.WithLabelValues(string(ge.Code)).Inc()
		o.recorder.Record(&models.UsageRecord{
			TenantID:        sk.TenantID,
			SiteKey:         sk.Key,
			PromptProfileID: prof.ID,
			Timestamp:       time.Now(),
			Success:         false,
		})
		return nil, ge
	}

	latencyMs := elapsed.Milliseconds()
	o.recorder.Record(&models.UsageRecord{
		TenantID:         sk.TenantID,
		SiteKey:          sk.Key,
		PromptProfileID:  prof.ID,
		Timestamp:        time.Now(),
		Success:          true,
		PromptTokens:     resp.Usage.PromptTokens,
		CompletionTokens: resp.Usage.CompletionTokens,
		LatencyMs:        &latencyMs,
	})

	return &ChatResponse{
		ConversationID: convID,
		Answer:         resp.Answer,
		RichAnswer:     resp.RichAnswer,
		Usage:          resp.Usage,
		RAG:            resp.RAG,
		ToolCalls:      resp.ToolCalls,
		Safety:         resp.Safety,
	}, nil
}

// buildBackendRequest merges the resolved profile with per-request
// sampling overrides and policies; request values win over the profile.
func buildBackendRequest(convID string, prof *models.PromptProfile, req *ChatRequest) *BackendChatRequest {
	out := &BackendChatRequest{
		ConversationID: convID,
		Model:          prof.Model,
		SystemPrompt:   prof.SystemPrompt,
		Guardrail:      prof.Guardrail,
		Messages:       req.Messages,
		Temperature:    prof.Temperature,
		TopP:           prof.TopP,
		MaxTokens:      prof.MaxTokens,
		Seed:           prof.Seed,
		FreqPenalty:    prof.FreqPenalty,
		PresPenalty:    prof.PresPenalty,
		Stops:          prof.Stops,
		Tools:          prof.Tools,
		RAG:            req.RAG,
	}

	if s := req.Sampling; s != nil {
		if s.Temperature != nil {
			out.Temperature = *s.Temperature
		}
		if s.TopP != nil {
			out.TopP = *s.TopP
		}
		if s.MaxTokens != nil {
			out.MaxTokens = *s.MaxTokens
		}
		if s.Seed != nil {
			out.Seed = s.Seed
		}
	}

	if len(prof.Policies) > 0 || len(req.Policies) > 0 {
		out.Policies = make(map[string]string, len(prof.Policies)+len(req.Policies))
		for k, v := range prof.Policies {
			out.Policies[k] = v
		}
		for k, v := range req.Policies {
			out.Policies[k] = v
		}
	}
	return out
}

func mapBackendError(err error) *gwerr.Error {
	var ge *gwerr.Error
	if errors.As(err, &ge) {
		return ge
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return gwerr.New(gwerr.CodeUpstreamTimeout, "reasoning backend timed out")
	}
	var be *backendError
	if errors.As(err, &be) && be.StatusCode == 422 {
		return gwerr.New(gwerr.CodeContentPolicyBlock, "request blocked by content policy")
	}
	return gwerr.New(gwerr.CodeUpstreamError, err.Error())
}
