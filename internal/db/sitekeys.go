package db

import (
	"context"
	"errors"

	"github.com/devhive/ai-chat-gateway/internal/models"
	"github.com/jackc/pgx/v5"
)

var ErrNotFound = errors.New("not found")

const siteKeyColumns = `
        id, tenant_id, key, status, plan_code,
        daily_call_limit, daily_token_limit, monthly_token_limit, rate_limit_rps,
        allowed_domains, widget_config_id, prompt_profile_id, notes,
        created_by, updated_by, created_at, updated_at
`

func scanSiteKey(row pgx.Row) (*models.SiteKey, error) {
	var sk models.SiteKey
	var status string
	err := row.Scan(
		&sk.ID,
		&sk.TenantID,
		&sk.Key,
		&status,
		&sk.PlanCode,
		&sk.DailyCallLimit,
		&sk.DailyTokenLimit,
		&sk.MonthlyTokenLimit,
		&sk.RateLimitRPS,
		&sk.AllowedDomains,
		&sk.WidgetConfigID,
		&sk.PromptProfileID,
		&sk.Notes,
		&sk.CreatedBy,
		&sk.UpdatedBy,
		&sk.CreatedAt,
		&sk.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	sk.Status = models.ParseKeyStatusOr(status, models.KeySuspended)
	return &sk, nil
}

// GetSiteKey looks up a credential by its key string. Soft-deleted rows
// are invisible to the gateway.
func (db *DB) GetSiteKey(ctx context.Context, key string) (*models.SiteKey, error) {
	query := `
        SELECT ` + siteKeyColumns + `
        FROM site_keys
        WHERE key = $1 AND NOT deleted
    `
	return scanSiteKey(db.Pool.QueryRow(ctx, query, key))
}

func (db *DB) GetSiteKeyByID(ctx context.Context, id int64) (*models.SiteKey, error) {
	query := `
        SELECT ` + siteKeyColumns + `
        FROM site_keys
        WHERE id = $1 AND NOT deleted
    `
	return scanSiteKey(db.Pool.QueryRow(ctx, query, id))
}

func (db *DB) ListSiteKeys(ctx context.Context, tenantID int64) ([]*models.SiteKey, error) {
	query := `
        SELECT ` + siteKeyColumns + `
        FROM site_keys
        WHERE ($1 = 0 OR tenant_id = $1) AND NOT deleted
        ORDER BY id
    `
	rows, err := db.Pool.Query(ctx, query, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var keys []*models.SiteKey
	for rows.Next() {
		sk, err := scanSiteKey(rows)
		if err != nil {
			return nil, err
		}
		keys = append(keys, sk)
	}
	return keys, rows.Err()
}

func (db *DB) RotateSiteKey(ctx context.Context, id int64, newKey, updatedBy string) error {
	query := `
        UPDATE site_keys
        SET key = $2, updated_by = $3, updated_at = NOW()
        WHERE id = $1 AND NOT deleted
    `
	tag, err := db.Pool.Exec(ctx, query, id, newKey, updatedBy)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
