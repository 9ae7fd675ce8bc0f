package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"schwarzesbrett/domain"
)

func (r *PgRepository) GetSetting(ctx context.Context, key string) (domain.SiteSetting, error) {
	var s domain.SiteSetting
	err := r.db.GetContext(ctx, &s, `SELECT * FROM site_settings WHERE key = $1`, key)
	if errors.Is(err, sql.ErrNoRows) {
		return s, fmt.Errorf("setting %q: %w", key, ErrNotFound)
	}
	return s, err
}

func (r *PgRepository) GetSettings(ctx context.Context) ([]domain.SiteSetting, error) {
	settings := make([]domain.SiteSetting, 0)
	if err := r.db.SelectContext(ctx, &settings, `SELECT * FROM site_settings ORDER BY key`); err != nil {
		return nil, err
	}
	return settings, nil
}

func (r *PgRepository) PutSetting(ctx context.Context, key, value string) (domain.SiteSetting, error) {
	var s domain.SiteSetting
	query := `
		INSERT INTO site_settings (key, value) VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()
		RETURNING *`

	err := r.db.GetContext(ctx, &s, query, key, value)
	return s, err
}
