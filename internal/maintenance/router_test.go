package maintenance

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/devhive/ai-chat-gateway/internal/models"
)

func eventConfig(enabled bool) *models.MaintenanceConfig {
	return &models.MaintenanceConfig{
		Enabled: enabled,
		Rules: []models.MaintenanceRule{
			{ID: 1, Enabled: true, MatchType: models.MatchPrefix, Path: "/event", Kind: models.KindNotice, Priority: 1},
			{ID: 2, Enabled: true, MatchType: models.MatchExact, Path: "/event/42", Kind: models.KindMaintenance, Priority: 5},
		},
	}
}

func TestMatch_PriorityBeatsGenerality(t *testing.T) {
	r := NewRouter()
	r.SetConfig(eventConfig(true))

	// The higher-priority EXACT rule wins over the broader PREFIX rule.
	rule := r.Match("/event/42")
	if rule == nil || rule.ID != 2 {
		t.Fatalf("Match(/event/42) = %+v, want rule 2", rule)
	}

	rule = r.Match("/event/99")
	if rule == nil || rule.ID != 1 {
		t.Fatalf("Match(/event/99) = %+v, want rule 1", rule)
	}

	if rule := r.Match("/other"); rule != nil {
		t.Errorf("Match(/other) = %+v, want none", rule)
	}
}

func TestMatch_DisabledFlagIsInert(t *testing.T) {
	r := NewRouter()
	r.SetConfig(eventConfig(false))

	if rule := r.Match("/event/42"); rule != nil {
		t.Errorf("disabled router matched %+v", rule)
	}
	if rule := r.Match("/event/99"); rule != nil {
		t.Errorf("disabled router matched %+v", rule)
	}
}

func TestMatch_DisabledRuleSkipped(t *testing.T) {
	r := NewRouter()
	cfg := eventConfig(true)
	cfg.Rules[1].Enabled = false
	r.SetConfig(cfg)

	rule := r.Match("/event/42")
	if rule == nil || rule.ID != 1 {
		t.Fatalf("Match = %+v, want fallthrough to rule 1", rule)
	}
}

func TestMatch_RegexWholePath(t *testing.T) {
	r := NewRouter()
	r.SetConfig(&models.MaintenanceConfig{
		Enabled: true,
		Rules: []models.MaintenanceRule{
			{ID: 1, Enabled: true, MatchType: models.MatchRegex, Path: `/api/v[0-9]+/chat`, Priority: 1},
		},
	})

	if r.Match("/api/v2/chat") == nil {
		t.Error("regex did not match whole path")
	}
	// REGEX requires the pattern to match the whole path, not a substring.
	if r.Match("/api/v2/chat/extra") != nil {
		t.Error("regex matched a longer path")
	}
	if r.Match("/prefix/api/v2/chat") != nil {
		t.Error("regex matched an embedded path")
	}
}

func TestMatch_TieBrokenByDeclarationOrder(t *testing.T) {
	r := NewRouter()
	r.SetConfig(&models.MaintenanceConfig{
		Enabled: true,
		Rules: []models.MaintenanceRule{
			{ID: 1, Enabled: true, MatchType: models.MatchPrefix, Path: "/x", Priority: 3},
			{ID: 2, Enabled: true, MatchType: models.MatchPrefix, Path: "/x", Priority: 3},
		},
	})

	rule := r.Match("/x/anything")
	if rule == nil || rule.ID != 1 {
		t.Fatalf("Match = %+v, want first-declared rule 1", rule)
	}
}

func TestMatch_AdminBypassPrefix(t *testing.T) {
	r := NewRouter()
	cfg := eventConfig(true)
	cfg.AdminBypassPrefix = "/admin"
	cfg.Rules = append(cfg.Rules, models.MaintenanceRule{
		ID: 3, Enabled: true, MatchType: models.MatchPrefix, Path: "/", Priority: 100,
	})
	r.SetConfig(cfg)

	if rule := r.Match("/admin/maintenance"); rule != nil {
		t.Errorf("bypass path matched %+v", rule)
	}
	if r.Match("/anything") == nil {
		t.Error("catch-all rule did not match outside the bypass prefix")
	}
}

func TestSetConfig_InvalidRegexSkippedNotFatal(t *testing.T) {
	r := NewRouter()
	r.SetConfig(&models.MaintenanceConfig{
		Enabled: true,
		Rules: []models.MaintenanceRule{
			{ID: 1, Enabled: true, MatchType: models.MatchRegex, Path: `([`, Priority: 5},
			{ID: 2, Enabled: true, MatchType: models.MatchPrefix, Path: "/ok", Priority: 1},
		},
	})

	rule := r.Match("/ok/path")
	if rule == nil || rule.ID != 2 {
		t.Fatalf("valid rule lost when sibling pattern was invalid: %+v", rule)
	}
}

func TestMiddleware_RespondsWithNotice(t *testing.T) {
	r := NewRouter()
	r.SetConfig(&models.MaintenanceConfig{
		Enabled: true,
		Rules: []models.MaintenanceRule{
			{ID: 1, Enabled: true, MatchType: models.MatchPrefix, Path: "/api", Kind: models.KindMaintenance, Title: "Down", Message: "back soon", Priority: 1},
		},
	})

	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	handler := r.Middleware(next)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("POST", "/api/chat", nil))

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rec.Code)
	}
	var body struct {
		Kind    string `json:"kind"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body.Kind != "MAINTENANCE" || body.Message != "back soon" {
		t.Errorf("body = %+v", body)
	}

	// Unmatched paths pass through.
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/health", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("pass-through status = %d, want 200", rec.Code)
	}
}
