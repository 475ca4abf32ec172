package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/devhive/ai-chat-gateway/internal/chat"
	"github.com/devhive/ai-chat-gateway/internal/gwerr"
	"github.com/google/uuid"
)

// Ingest forwards a document intake request to the reasoning backend's
// retrieval store. Only the access gate applies; ingest volume is an
// administrative concern, not end-user traffic.
func (h *Handler) Ingest(w http.ResponseWriter, r *http.Request) {
	var req chat.IngestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondGatewayError(w, gwerr.New(gwerr.CodeValidationError, "malformed request body"))
		return
	}
	if req.FilePath == "" && req.SourceURL == "" {
		respondGatewayError(w, gwerr.New(gwerr.CodeValidationError, "file path or source url is required"))
		return
	}
	if req.DocType == "" {
		respondGatewayError(w, gwerr.New(gwerr.CodeValidationError, "doc type is required"))
		return
	}

	if _, err := h.gate.Validate(r.Context(), r.Header.Get("X-Site-Key"), originHost(r)); err != nil {
		respondGatewayError(w, err)
		return
	}

	if req.JobID == "" {
		req.JobID = uuid.NewString()
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.backend.Timeout())
	defer cancel()

	resp, err := h.backend.Ingest(ctx, &req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			err = gwerr.New(gwerr.CodeUpstreamTimeout, "reasoning backend timed out")
		}
		respondGatewayError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, resp)
}
