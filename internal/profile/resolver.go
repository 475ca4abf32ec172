// Package profile resolves which prompt/model configuration applies to
// a call and parses its JSON-encoded template fields.
package profile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/devhive/ai-chat-gateway/internal/db"
	"github.com/devhive/ai-chat-gateway/internal/gwerr"
	"github.com/devhive/ai-chat-gateway/internal/models"
)

type Store interface {
	FindActiveProfile(ctx context.Context, id int64) (*models.PromptProfile, error)
	FindProfile(ctx context.Context, id int64) (*models.PromptProfile, error)
	GetWidgetDefaultProfileID(ctx context.Context, widgetConfigID int64) (int64, error)
}

type Resolver struct {
	store Store
}

func NewResolver(store Store) *Resolver {
	return &Resolver{store: store}
}

type ResolveRequest struct {
	TenantID        int64
	SiteKey         *models.SiteKey
	PromptProfileID int64
	WidgetConfigID  int64
	// AdminOverride lets an explicit id bypass the ACTIVE requirement.
	AdminOverride bool
}

// Resolve applies the precedence chain: explicit profile id, then the
// widget configuration's default, then the site key's default. A parse
// failure on the chosen profile fails the request; it never falls back
// to the next candidate.
func (r *Resolver) Resolve(ctx context.Context, req ResolveRequest) (*models.PromptProfile, error) {
	id, err := r.pickID(ctx, req)
	if err != nil {
		return nil, err
	}

	var p *models.PromptProfile
	if req.AdminOverride {
		p, err = r.store.FindProfile(ctx, id)
	} else {
		p, err = r.store.FindActiveProfile(ctx, id)
	}
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, gwerr.New(gwerr.CodeConfigNotFound, fmt.Sprintf("prompt profile %d not found or not active", id))
		}
		return nil, err
	}

	if req.TenantID != 0 && p.TenantID != req.TenantID {
		return nil, gwerr.New(gwerr.CodeConfigNotFound, fmt.Sprintf("prompt profile %d not found or not active", id))
	}

	if err := Parse(p); err != nil {
		return nil, err
	}
	return p, nil
}

func (r *Resolver) pickID(ctx context.Context, req ResolveRequest) (int64, error) {
	if req.PromptProfileID != 0 {
		return req.PromptProfileID, nil
	}
	if req.WidgetConfigID != 0 {
		id, err := r.store.GetWidgetDefaultProfileID(ctx, req.WidgetConfigID)
		if err == nil {
			return id, nil
		}
		if !errors.Is(err, db.ErrNotFound) {
			return 0, err
		}
	}
	if req.SiteKey != nil && req.SiteKey.PromptProfileID != nil {
		return *req.SiteKey.PromptProfileID, nil
	}
	return 0, gwerr.New(gwerr.CodeConfigNotFound, "no prompt profile configured for this call")
}

// Parse decodes the profile's JSON-encoded text columns into their
// typed fields. Malformed text fails closed; defaults are never
// substituted for a field that was present but unparsable.
func Parse(p *models.PromptProfile) error {
	if p.RawStops != "" {
		if err := json.Unmarshal([]byte(p.RawStops), &p.Stops); err != nil {
			return gwerr.New(gwerr.CodeConfigParseError, fmt.Sprintf("stop sequences of profile %d: %v", p.ID, err))
		}
	}
	if p.RawTools != "" {
		if err := json.Unmarshal([]byte(p.RawTools), &p.Tools); err != nil {
			return gwerr.New(gwerr.CodeConfigParseError, fmt.Sprintf("tool specs of profile %d: %v", p.ID, err))
		}
	}
	if p.RawPolicies != "" {
		if err := json.Unmarshal([]byte(p.RawPolicies), &p.Policies); err != nil {
			return gwerr.New(gwerr.CodeConfigParseError, fmt.Sprintf("policies of profile %d: %v", p.ID, err))
		}
	}
	return nil
}
