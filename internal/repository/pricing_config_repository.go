package repository

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/seltra-ai/be-cpq-quotes/internal/database"
	"github.com/seltra-ai/be-cpq-quotes/internal/domain"
	"github.com/seltra-ai/be-cpq-quotes/internal/errors"
)

// PricingConfigRepository reads the active pricing engine configuration.
// The config is mutated by the administrative service, not here — the quotes
// service only ever reads it.
type PricingConfigRepository struct {
	db *database.DB
}

// NewPricingConfigRepository creates a new PricingConfigRepository.
func NewPricingConfigRepository(db *database.DB) *PricingConfigRepository {
	return &PricingConfigRepository{db: db}
}

// GetActive returns the single active config, falling back to the hardcoded
// default when none is persisted.
func (r *PricingConfigRepository) GetActive(ctx context.Context) (domain.PricingEngineConfig, error) {
	query := `
		SELECT id, default_markup_region_a, default_markup_region_b,
		       margin_green_threshold, margin_yellow_threshold, margin_orange_threshold,
		       margin_authorized_threshold, minimum_price_margin_target, is_active
		FROM pricing_engine_configs
		WHERE is_active = TRUE
		ORDER BY updated_at DESC
		LIMIT 1
	`

	var cfg domain.PricingEngineConfig
	err := r.db.QueryRow(ctx, query).Scan(
		&cfg.ID,
		&cfg.DefaultMarkupRegionA,
		&cfg.DefaultMarkupRegionB,
		&cfg.MarginGreenThreshold,
		&cfg.MarginYellowThreshold,
		&cfg.MarginOrangeThreshold,
		&cfg.MarginAuthorizedThreshold,
		&cfg.MinimumPriceMarginTarget,
		&cfg.IsActive,
	)
	if err == pgx.ErrNoRows {
		return domain.DefaultPricingEngineConfig(), nil
	}
	if err != nil {
		return domain.PricingEngineConfig{}, errors.Wrap(err, errors.ErrCodeInternal, "failed to get pricing config")
	}
	return cfg, nil
}
