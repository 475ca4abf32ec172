// Package maintenance redirects traffic during maintenance windows by
// evaluating priority-ordered path rules at the edge.
package maintenance

import (
	"log/slog"
	"regexp"
	"sort"
	"strings"
	"sync/atomic"

	"github.com/devhive/ai-chat-gateway/internal/models"
)

type compiledRule struct {
	rule models.MaintenanceRule
	re   *regexp.Regexp // non-nil only for REGEX rules
}

type snapshot struct {
	enabled      bool
	bypassPrefix string
	rules        []compiledRule
}

// Router matches request paths against the current rule snapshot. The
// snapshot is swapped atomically; readers never see a partial update.
type Router struct {
	current atomic.Pointer[snapshot]
}

func NewRouter() *Router {
	r := &Router{}
	r.current.Store(&snapshot{})
	return r
}

// SetConfig replaces the whole rule set. Disabled rules are dropped,
// rules are ordered by descending priority with declaration order
// breaking ties, and regex patterns compile once here. A rule whose
// pattern does not compile is skipped with a warning; the rest of the
// set still applies.
func (r *Router) SetConfig(cfg *models.MaintenanceConfig) {
	snap := &snapshot{
		enabled:      cfg.Enabled,
		bypassPrefix: cfg.AdminBypassPrefix,
	}

	for _, rule := range cfg.Rules {
		if !rule.Enabled {
			continue
		}
		cr := compiledRule{rule: rule}
		if rule.MatchType == models.MatchRegex {
			re, err := regexp.Compile("^(?:" + rule.Path + ")$")
			if err != nil {
				slog.Warn("skipping maintenance rule with invalid pattern",
					"rule_id", rule.ID,
					"pattern", rule.Path,
					"err", err)
				continue
			}
			cr.re = re
		}
		snap.rules = append(snap.rules, cr)
	}

	sort.SliceStable(snap.rules, func(i, j int) bool {
		return snap.rules[i].rule.Priority > snap.rules[j].rule.Priority
	})

	r.current.Store(snap)
}

// Match returns the first matching rule in priority order, or nil when
// the mechanism is disabled, the path is under the admin bypass prefix,
// or nothing matches.
func (r *Router) Match(path string) *models.MaintenanceRule {
	snap := r.current.Load()
	if !snap.enabled {
		return nil
	}
	if snap.bypassPrefix != "" && strings.HasPrefix(path, snap.bypassPrefix) {
		return nil
	}

	for i := range snap.rules {
		cr := &snap.rules[i]
		switch cr.rule.MatchType {
		case models.MatchExact:
			if path == cr.rule.Path {
				return &cr.rule
			}
		case models.MatchPrefix:
			if strings.HasPrefix(path, cr.rule.Path) {
				return &cr.rule
			}
		case models.MatchRegex:
			if cr.re.MatchString(path) {
				return &cr.rule
			}
		}
	}
	return nil
}
