package models

import "time"

type KeyStatus string

const (
	KeyActive    KeyStatus = "ACTIVE"
	KeySuspended KeyStatus = "SUSPENDED"
	KeyRevoked   KeyStatus = "REVOKED"
)

// ParseKeyStatusOr returns the parsed status, or def when the raw value
// is not a known status. Callers decide whether that counts as an error.
func ParseKeyStatusOr(raw string, def KeyStatus) KeyStatus {
	switch KeyStatus(raw) {
	case KeyActive, KeySuspended, KeyRevoked:
		return KeyStatus(raw)
	}
	return def
}

type ProfileStatus string

const (
	ProfileDraft    ProfileStatus = "DRAFT"
	ProfileActive   ProfileStatus = "ACTIVE"
	ProfileArchived ProfileStatus = "ARCHIVED"
)

func ParseProfileStatusOr(raw string, def ProfileStatus) ProfileStatus {
	switch ProfileStatus(raw) {
	case ProfileDraft, ProfileActive, ProfileArchived:
		return ProfileStatus(raw)
	}
	return def
}

type SiteKey struct {
	ID                int64     `json:"id"`
	TenantID          int64     `json:"tenant_id"`
	Key               string    `json:"key"`
	Status            KeyStatus `json:"status"`
	PlanCode          string    `json:"plan_code"`
	DailyCallLimit    int64     `json:"daily_call_limit"`
	DailyTokenLimit   int64     `json:"daily_token_limit"`
	MonthlyTokenLimit int64     `json:"monthly_token_limit"`
	RateLimitRPS      int       `json:"rate_limit_rps"`
	AllowedDomains    []string  `json:"allowed_domains"`
	WidgetConfigID    *int64    `json:"widget_config_id,omitempty"`
	PromptProfileID   *int64    `json:"prompt_profile_id,omitempty"`
	Notes             string    `json:"notes,omitempty"`
	CreatedBy         string    `json:"created_by"`
	UpdatedBy         string    `json:"updated_by"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
	Deleted           bool      `json:"-"`
}

// PromptProfile is a named, versioned model configuration. The Raw*
// fields hold JSON-encoded text exactly as stored; the typed fields are
// populated by profile.Parse and are nil until then.
type PromptProfile struct {
	ID           int64         `json:"id"`
	TenantID     int64         `json:"tenant_id"`
	Name         string        `json:"name"`
	Purpose      string        `json:"purpose"`
	Model        string        `json:"model"`
	Temperature  float64       `json:"temperature"`
	TopP         float64       `json:"top_p"`
	MaxTokens    int           `json:"max_tokens"`
	Seed         *int64        `json:"seed,omitempty"`
	FreqPenalty  float64       `json:"frequency_penalty"`
	PresPenalty  float64       `json:"presence_penalty"`
	SystemPrompt string        `json:"system_prompt"`
	Guardrail    string        `json:"guardrail"`
	RawStops     string        `json:"-"`
	RawTools     string        `json:"-"`
	RawPolicies  string        `json:"-"`
	Stops        []string      `json:"stop_sequences,omitempty"`
	Tools        []ToolSpec    `json:"tools,omitempty"`
	Policies     PolicyMap     `json:"policies,omitempty"`
	Status       ProfileStatus `json:"status"`
	Version      int           `json:"version"`
	Deleted      bool          `json:"-"`
}

type ToolSpec struct {
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	Parameters  map[string]any `json:"parameters,omitempty"`
}

type PolicyMap map[string]string

type UsageRecord struct {
	ID               int64     `json:"id"`
	TenantID         int64     `json:"tenant_id"`
	SiteKey          string    `json:"site_key"`
	PromptProfileID  int64     `json:"prompt_profile_id"`
	Timestamp        time.Time `json:"timestamp"`
	Success          bool      `json:"success"`
	PromptTokens     int64     `json:"prompt_tokens"`
	CompletionTokens int64     `json:"completion_tokens"`
	LatencyMs        *int64    `json:"latency_ms,omitempty"`
}

type UsageStatsItem struct {
	Label            string    `json:"label"`
	StartDate        time.Time `json:"start_date"`
	EndDate          time.Time `json:"end_date"`
	TotalCalls       int64     `json:"total_calls"`
	SuccessCalls     int64     `json:"success_calls"`
	FailCalls        int64     `json:"fail_calls"`
	PromptTokens     int64     `json:"prompt_tokens"`
	CompletionTokens int64     `json:"completion_tokens"`
	AvgLatencyMs     float64   `json:"avg_latency_ms"`
}

type MatchType string

const (
	MatchExact  MatchType = "EXACT"
	MatchPrefix MatchType = "PREFIX"
	MatchRegex  MatchType = "REGEX"
)

func ParseMatchTypeOr(raw string, def MatchType) MatchType {
	switch MatchType(raw) {
	case MatchExact, MatchPrefix, MatchRegex:
		return MatchType(raw)
	}
	return def
}

type MaintenanceKind string

const (
	KindMaintenance MaintenanceKind = "MAINTENANCE"
	KindComingSoon  MaintenanceKind = "COMING_SOON"
	KindNotice      MaintenanceKind = "NOTICE"
)

type MaintenanceRule struct {
	ID          int64           `json:"id"`
	Enabled     bool            `json:"enabled"`
	MatchType   MatchType       `json:"match_type"`
	Path        string          `json:"path"`
	Kind        MaintenanceKind `json:"kind"`
	Title       string          `json:"title"`
	Message     string          `json:"message"`
	ExpectedEnd *time.Time      `json:"expected_end,omitempty"`
	Priority    int             `json:"priority"`
}

// MaintenanceConfig is replaced wholesale; partial updates are never
// visible to the router.
type MaintenanceConfig struct {
	Enabled           bool              `json:"enabled"`
	PollIntervalSecs  int               `json:"poll_interval_secs"`
	AdminBypassPrefix string            `json:"admin_bypass_prefix"`
	Rules             []MaintenanceRule `json:"rules"`
}

type StatsPeriod string

const (
	PeriodDay   StatsPeriod = "DAY"
	PeriodWeek  StatsPeriod = "WEEK"
	PeriodMonth StatsPeriod = "MONTH"
)

func ParseStatsPeriodOr(raw string, def StatsPeriod) StatsPeriod {
	switch StatsPeriod(raw) {
	case PeriodDay, PeriodWeek, PeriodMonth:
		return StatsPeriod(raw)
	}
	return def
}
