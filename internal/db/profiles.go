package db

import (
	"context"
	"errors"

	"github.com/devhive/ai-chat-gateway/internal/models"
	"github.com/jackc/pgx/v5"
)

const profileColumns = `
        id, tenant_id, name, purpose, model,
        temperature, top_p, max_tokens, seed, frequency_penalty, presence_penalty,
        system_prompt, guardrail, stop_sequences, tool_specs, policies,
        status, version
`

func scanProfile(row pgx.Row) (*models.PromptProfile, error) {
	var p models.PromptProfile
	var status string
	err := row.Scan(
		&p.ID,
		&p.TenantID,
		&p.Name,
		&p.Purpose,
		&p.Model,
		&p.Temperature,
		&p.TopP,
		&p.MaxTokens,
		&p.Seed,
		&p.FreqPenalty,
		&p.PresPenalty,
		&p.SystemPrompt,
		&p.Guardrail,
		&p.RawStops,
		&p.RawTools,
		&p.RawPolicies,
		&status,
		&p.Version,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	p.Status = models.ParseProfileStatusOr(status, models.ProfileDraft)
	return &p, nil
}

// FindActiveProfile returns the profile only when it is ACTIVE and not
// soft-deleted. Used on the live resolution path.
func (db *DB) FindActiveProfile(ctx context.Context, id int64) (*models.PromptProfile, error) {
	query := `
        SELECT ` + profileColumns + `
        FROM prompt_profiles
        WHERE id = $1 AND status = 'ACTIVE' AND NOT deleted
    `
	return scanProfile(db.Pool.QueryRow(ctx, query, id))
}

// FindProfile returns the profile regardless of status, for the
// administrative override path. Soft-deleted rows stay hidden.
func (db *DB) FindProfile(ctx context.Context, id int64) (*models.PromptProfile, error) {
	query := `
        SELECT ` + profileColumns + `
        FROM prompt_profiles
        WHERE id = $1 AND NOT deleted
    `
	return scanProfile(db.Pool.QueryRow(ctx, query, id))
}

// GetWidgetDefaultProfileID returns the prompt profile referenced by a
// widget configuration, or ErrNotFound when the widget has none.
func (db *DB) GetWidgetDefaultProfileID(ctx context.Context, widgetConfigID int64) (int64, error) {
	query := `
        SELECT prompt_profile_id
        FROM widget_configs
        WHERE id = $1 AND NOT deleted
    `
	var profileID *int64
	err := db.Pool.QueryRow(ctx, query, widgetConfigID).Scan(&profileID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, ErrNotFound
		}
		return 0, err
	}
	if profileID == nil {
		return 0, ErrNotFound
	}
	return *profileID, nil
}

// SearchProfiles pages through a tenant's non-deleted profiles matching
// the keyword against name and purpose.
func (db *DB) SearchProfiles(ctx context.Context, tenantID int64, keyword string, limit, offset int) ([]*models.PromptProfile, error) {
	query := `
        SELECT ` + profileColumns + `
        FROM prompt_profiles
        WHERE tenant_id = $1 AND NOT deleted
          AND ($2 = '' OR name ILIKE '%' || $2 || '%' OR purpose ILIKE '%' || $2 || '%')
        ORDER BY id
        LIMIT $3 OFFSET $4
    `
	rows, err := db.Pool.Query(ctx, query, tenantID, keyword, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var profiles []*models.PromptProfile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, p)
	}
	return profiles, rows.Err()
}
