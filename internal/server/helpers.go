// Package server exposes the public gateway surface: chat calls through
// the full admission chain and document ingest forwarding.
package server

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strings"

	"github.com/devhive/ai-chat-gateway/internal/gwerr"
)

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondGatewayError(w http.ResponseWriter, err error) {
	ge := gwerr.As(err)
	respondJSON(w, ge.HTTPStatus(), map[string]any{"error": ge})
}

// originHost reduces an Origin header value to a bare lowercase host.
// The X-Origin-Domain header, used by non-browser callers, is taken
// as-is when Origin is absent.
func originHost(r *http.Request) string {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return strings.ToLower(r.Header.Get("X-Origin-Domain"))
	}
	if u, err := url.Parse(origin); err == nil && u.Host != "" {
		return strings.ToLower(u.Hostname())
	}
	return strings.ToLower(origin)
}
