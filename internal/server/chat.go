package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/devhive/ai-chat-gateway/internal/chat"
	"github.com/devhive/ai-chat-gateway/internal/gate"
	"github.com/devhive/ai-chat-gateway/internal/gwerr"
	"github.com/devhive/ai-chat-gateway/internal/metrics"
	"github.com/devhive/ai-chat-gateway/internal/models"
	"github.com/devhive/ai-chat-gateway/internal/profile"
	"github.com/devhive/ai-chat-gateway/internal/quota"
	"github.com/devhive/ai-chat-gateway/internal/ratelimit"
	"github.com/gorilla/mux"
)

type Handler struct {
	gate         *gate.AccessGate
	limiter      *ratelimit.RateLimiter
	planQuota    *quota.PlanQuota
	anonQuota    *quota.AnonQuota
	resolver     *profile.Resolver
	orchestrator *chat.Orchestrator
	backend      *chat.BackendClient
}

func NewHandler(
	g *gate.AccessGate,
	limiter *ratelimit.RateLimiter,
	planQuota *quota.PlanQuota,
	anonQuota *quota.AnonQuota,
	resolver *profile.Resolver,
	orchestrator *chat.Orchestrator,
	backend *chat.BackendClient,
) *Handler {
	return &Handler{
		gate:         g,
		limiter:      limiter,
		planQuota:    planQuota,
		anonQuota:    anonQuota,
		resolver:     resolver,
		orchestrator: orchestrator,
		backend:      backend,
	}
}

func (h *Handler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/api/chat", h.Chat).Methods("POST")
	router.HandleFunc("/api/ingest", h.Ingest).Methods("POST")
}

func (h *Handler) Chat(w http.ResponseWriter, r *http.Request) {
	var req chat.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondGatewayError(w, gwerr.New(gwerr.CodeValidationError, "malformed request body"))
		return
	}
	if req.SiteKey == "" {
		req.SiteKey = r.Header.Get("X-Site-Key")
	}
	if req.SiteKey == "" || len(req.Messages) == 0 {
		respondGatewayError(w, gwerr.New(gwerr.CodeValidationError, "site key and at least one message are required"))
		return
	}

	sk, err := h.admit(r.Context(), w, &req, originHost(r))
	if err != nil {
		respondGatewayError(w, err)
		return
	}
	metrics.AdmissionsTotal.WithLabelValues("allowed").Inc()

	prof, err := h.resolver.Resolve(r.Context(), profile.ResolveRequest{
		TenantID:        sk.TenantID,
		SiteKey:         sk,
		PromptProfileID: req.PromptProfileID,
		WidgetConfigID:  req.WidgetConfigID,
	})
	if err != nil {
		respondGatewayError(w, err)
		return
	}

	resp, err := h.orchestrator.Handle(r.Context(), sk, prof, &req)
	if err != nil {
		respondGatewayError(w, err)
		return
	}

	// Token sums gate the next call, not this one.
	tokens := resp.Usage.PromptTokens + resp.Usage.CompletionTokens
	if err := h.planQuota.AddTokens(r.Context(), sk.Key, tokens); err != nil {
		slog.Warn("token accounting failed", "site_key", sk.Key, "err", err)
	}

	respondJSON(w, http.StatusOK, resp)
}

// admit runs the admission chain: credential and origin, then rate,
// then the anonymous per-user ceiling, then plan quota. Failures are
// terminal and never reach the backend. The plan counter moves last so
// a request denied on any other check costs the tenant nothing; once a
// call is admitted it stays counted even if resolution or the backend
// fails afterwards.
func (h *Handler) admit(ctx context.Context, w http.ResponseWriter, req *chat.ChatRequest, origin string) (*models.SiteKey, error) {
	sk, err := h.gate.Validate(ctx, req.SiteKey, origin)
	if err != nil {
		metrics.AdmissionsTotal.WithLabelValues("access_denied").Inc()
		return nil, err
	}

	if !h.limiter.TryAcquire(sk.Key, sk.RateLimitRPS) {
		metrics.AdmissionsTotal.WithLabelValues("rate_limited").Inc()
		return nil, gwerr.New(gwerr.CodeRateLimited, "request rate ceiling reached")
	}

	if req.UserID != "" {
		if !h.anonQuota.TryConsume(req.UserID) {
			metrics.AdmissionsTotal.WithLabelValues("quota_exceeded").Inc()
			return nil, gwerr.New(gwerr.CodeQuotaExceeded, "daily per-user ceiling reached")
		}
		w.Header().Set("X-User-Quota-Remaining", strconv.Itoa(h.anonQuota.Remaining(req.UserID)))
	}

	ok, err := h.planQuota.TryConsumeCall(ctx, sk)
	if err != nil {
		return nil, err
	}
	if !ok {
		metrics.AdmissionsTotal.WithLabelValues("quota_exceeded").Inc()
		return nil, gwerr.New(gwerr.CodeQuotaExceeded, "daily plan ceiling reached")
	}

	return sk, nil
}
