package domain

import "github.com/shopspring/decimal"

// PricingEngineConfig is the active set of pricing thresholds. Exactly one
// config is active at a time; the hardcoded default below is used when none
// is persisted. The core only reads it — mutation is an administrative
// concern handled elsewhere.
type PricingEngineConfig struct {
	ID                        string
	DefaultMarkupRegionA      float64 // percent applied over cost for region A
	DefaultMarkupRegionB      float64 // percent applied over cost for region B
	MarginGreenThreshold      float64
	MarginYellowThreshold     float64
	MarginOrangeThreshold     float64
	MarginAuthorizedThreshold float64
	MinimumPriceMarginTarget  float64
	IsActive                  bool
}

// DefaultPricingEngineConfig returns the fallback thresholds used when no
// config row is active.
func DefaultPricingEngineConfig() PricingEngineConfig {
	return PricingEngineConfig{
		DefaultMarkupRegionA:      30,
		DefaultMarkupRegionB:      40,
		MarginGreenThreshold:      10,
		MarginYellowThreshold:     0,
		MarginOrangeThreshold:     -5,
		MarginAuthorizedThreshold: 5,
		MinimumPriceMarginTarget:  5,
		IsActive:                  true,
	}
}

// SuggestedUnitPrice applies the region's default markup over cost.
// Amounts are in cents; the result is rounded to a whole cent.
func SuggestedUnitPrice(unitCost int64, region string, cfg PricingEngineConfig) int64 {
	markup := cfg.DefaultMarkupRegionA
	if region == RegionB {
		markup = cfg.DefaultMarkupRegionB
	}
	factor := decimal.NewFromInt(1).Add(decimal.NewFromFloat(markup).Div(decimal.NewFromInt(100)))
	return decimal.NewFromInt(unitCost).Mul(factor).Round(0).IntPart()
}

// MinimumUnitPrice is the lowest price that still hits the minimum margin
// target: cost / (1 - target/100). A target at or above 100% degenerates to
// the cost itself.
func MinimumUnitPrice(unitCost int64, cfg PricingEngineConfig) int64 {
	if cfg.MinimumPriceMarginTarget >= 100 {
		return unitCost
	}
	divisor := decimal.NewFromInt(1).Sub(
		decimal.NewFromFloat(cfg.MinimumPriceMarginTarget).Div(decimal.NewFromInt(100)))
	return decimal.NewFromInt(unitCost).Div(divisor).Round(0).IntPart()
}
