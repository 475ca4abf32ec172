package maintenance

import (
	"encoding/json"
	"net/http"
)

type noticeBody struct {
	Kind        string `json:"kind"`
	Title       string `json:"title"`
	Message     string `json:"message"`
	ExpectedEnd string `json:"expected_end,omitempty"`
}

// Middleware answers matched paths with a 503 notice before any other
// handler runs.
func (r *Router) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		rule := r.Match(req.URL.Path)
		if rule == nil {
			next.ServeHTTP(w, req)
			return
		}

		body := noticeBody{
			Kind:    string(rule.Kind),
			Title:   rule.Title,
			Message: rule.Message,
		}
		if rule.ExpectedEnd != nil {
			body.ExpectedEnd = rule.ExpectedEnd.Format("2006-01-02T15:04:05Z07:00")
		}

		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Retry-After", "600")
		w.WriteHeader(http.StatusServiceUnavailable)
		json.NewEncoder(w).Encode(body)
	})
}
