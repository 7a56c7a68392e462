package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyMarginTiers(t *testing.T) {
	cfg := PricingEngineConfig{
		MarginGreenThreshold:      10,
		MarginYellowThreshold:     0,
		MarginAuthorizedThreshold: 5,
	}

	tests := []struct {
		name       string
		margin     float64
		tier       MarginTier
		authorized bool
	}{
		{"well above green", 15, TierGreen, true},
		{"exactly green threshold", 10, TierGreen, true},
		{"between yellow and green", 5, TierYellow, true},
		{"just below authorized", 4.99, TierYellow, false},
		{"exactly yellow threshold", 0, TierYellow, false},
		{"below yellow", -2, TierRed, false},
		{"deeply negative", -50, TierRed, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ClassifyMargin(tt.margin, cfg)
			assert.Equal(t, tt.tier, got.Tier)
			assert.Equal(t, tt.authorized, got.IsAuthorized)
		})
	}
}

func TestClassifyMarginAuthorizedIsIndependentOfTier(t *testing.T) {
	// Authorized threshold above green: a green margin can still need approval.
	cfg := PricingEngineConfig{
		MarginGreenThreshold:      10,
		MarginYellowThreshold:     0,
		MarginAuthorizedThreshold: 20,
	}
	got := ClassifyMargin(12, cfg)
	assert.Equal(t, TierGreen, got.Tier)
	assert.False(t, got.IsAuthorized)

	// Authorized threshold below yellow: a yellow margin can be auto-authorized.
	cfg.MarginAuthorizedThreshold = -10
	got = ClassifyMargin(-5, cfg)
	assert.Equal(t, TierRed, got.Tier)
	assert.True(t, got.IsAuthorized)
}

func TestClassifyMarginAuthorizedThresholdInclusive(t *testing.T) {
	cfg := PricingEngineConfig{
		MarginGreenThreshold:      10,
		MarginYellowThreshold:     0,
		MarginAuthorizedThreshold: 5,
	}
	assert.True(t, ClassifyMargin(5, cfg).IsAuthorized)
	assert.False(t, ClassifyMargin(4.999, cfg).IsAuthorized)
}

func TestFormatPercent(t *testing.T) {
	assert.Equal(t, "12.3%", FormatPercent(12.345))
	assert.Equal(t, "0.0%", FormatPercent(0))
	assert.Equal(t, "-5.0%", FormatPercent(-5))
	assert.Equal(t, "100.0%", FormatPercent(100))
}

func TestFormatCurrency(t *testing.T) {
	assert.Equal(t, "1234.56", FormatCurrency(123456))
	assert.Equal(t, "0.00", FormatCurrency(0))
	assert.Equal(t, "0.05", FormatCurrency(5))
	assert.Equal(t, "-10.00", FormatCurrency(-1000))
}
