// Package gate validates site credentials and caller origins before any
// quota or rate decisions are made.
package gate

import (
	"context"
	"errors"
	"strings"

	"github.com/devhive/ai-chat-gateway/internal/db"
	"github.com/devhive/ai-chat-gateway/internal/gwerr"
	"github.com/devhive/ai-chat-gateway/internal/models"
)

const (
	ReasonNotFound         = "NOT_FOUND"
	ReasonRevoked          = "REVOKED"
	ReasonSuspended        = "SUSPENDED"
	ReasonDomainNotAllowed = "DOMAIN_NOT_ALLOWED"
)

type KeyStore interface {
	GetSiteKey(ctx context.Context, key string) (*models.SiteKey, error)
}

type AccessGate struct {
	keys KeyStore
}

func NewAccessGate(keys KeyStore) *AccessGate {
	return &AccessGate{keys: keys}
}

// Validate looks up the credential and checks status and origin. It has
// no side effects; on success the looked-up record is returned so the
// caller does not hit the store twice.
func (g *AccessGate) Validate(ctx context.Context, keyString, originDomain string) (*models.SiteKey, error) {
	sk, err := g.keys.GetSiteKey(ctx, keyString)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, gwerr.WithReason(gwerr.CodeAccessDenied, ReasonNotFound, "unknown site key")
		}
		return nil, err
	}

	switch sk.Status {
	case models.KeyActive:
	case models.KeyRevoked:
		return nil, gwerr.WithReason(gwerr.CodeAccessDenied, ReasonRevoked, "site key revoked")
	default:
		return nil, gwerr.WithReason(gwerr.CodeAccessDenied, ReasonSuspended, "site key suspended")
	}

	if !originAllowed(sk.AllowedDomains, originDomain) {
		return nil, gwerr.WithReason(gwerr.CodeAccessDenied, ReasonDomainNotAllowed, "origin not allowed for this key")
	}

	return sk, nil
}

// originAllowed matches case-insensitively. An empty allow-list admits
// any origin. Entries are either exact hosts or wildcard-subdomain
// patterns like *.example.com, which match any subdomain depth but not
// the apex itself.
func originAllowed(allowed []string, origin string) bool {
	if len(allowed) == 0 {
		return true
	}
	origin = strings.ToLower(strings.TrimSpace(origin))
	for _, entry := range allowed {
		entry = strings.ToLower(strings.TrimSpace(entry))
		if entry == "" {
			continue
		}
		if rest, ok := strings.CutPrefix(entry, "*."); ok {
			if strings.HasSuffix(origin, "."+rest) {
				return true
			}
			continue
		}
		if origin == entry {
			return true
		}
	}
	return false
}
