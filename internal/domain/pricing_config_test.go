package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSuggestedUnitPrice(t *testing.T) {
	cfg := DefaultPricingEngineConfig()

	assert.Equal(t, int64(13000), SuggestedUnitPrice(10000, RegionA, cfg))
	assert.Equal(t, int64(14000), SuggestedUnitPrice(10000, RegionB, cfg))

	// 999 * 1.30 = 1298.7 rounds to 1299
	assert.Equal(t, int64(1299), SuggestedUnitPrice(999, RegionA, cfg))

	// Unknown regions fall back to region A markup.
	assert.Equal(t, int64(13000), SuggestedUnitPrice(10000, "C", cfg))
}

func TestMinimumUnitPrice(t *testing.T) {
	cfg := DefaultPricingEngineConfig()

	// 9500 / (1 - 0.05) = 10000
	assert.Equal(t, int64(10000), MinimumUnitPrice(9500, cfg))

	cfg.MinimumPriceMarginTarget = 0
	assert.Equal(t, int64(9500), MinimumUnitPrice(9500, cfg))
}

func TestMinimumUnitPriceDegenerateTarget(t *testing.T) {
	cfg := DefaultPricingEngineConfig()

	cfg.MinimumPriceMarginTarget = 100
	assert.Equal(t, int64(9500), MinimumUnitPrice(9500, cfg))

	cfg.MinimumPriceMarginTarget = 150
	assert.Equal(t, int64(9500), MinimumUnitPrice(9500, cfg))
}

func TestDefaultPricingEngineConfig(t *testing.T) {
	cfg := DefaultPricingEngineConfig()
	assert.True(t, cfg.IsActive)
	assert.Equal(t, 10.0, cfg.MarginGreenThreshold)
	assert.Equal(t, 0.0, cfg.MarginYellowThreshold)
	assert.Equal(t, 5.0, cfg.MarginAuthorizedThreshold)
}
