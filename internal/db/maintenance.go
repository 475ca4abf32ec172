package db

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/devhive/ai-chat-gateway/internal/models"
	"github.com/jackc/pgx/v5"
)

// The maintenance configuration is one JSON document in a single-row
// table, replaced wholesale on every update.

func (db *DB) GetMaintenanceConfig(ctx context.Context) (*models.MaintenanceConfig, error) {
	var raw []byte
	err := db.Pool.QueryRow(ctx,
		`SELECT config FROM maintenance_config WHERE id = 1`).Scan(&raw)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	var cfg models.MaintenanceConfig
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (db *DB) PutMaintenanceConfig(ctx context.Context, cfg *models.MaintenanceConfig) error {
	raw, err := json.Marshal(cfg)
	if err != nil {
		return err
	}
	_, err = db.Pool.Exec(ctx, `
        INSERT INTO maintenance_config (id, config, updated_at)
        VALUES (1, $1, NOW())
        ON CONFLICT (id) DO UPDATE
        SET config = EXCLUDED.config, updated_at = NOW()
    `, raw)
	return err
}
