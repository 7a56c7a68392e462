package domain

import "github.com/shopspring/decimal"

// MarginTier is the coarse risk classification of a margin.
type MarginTier string

const (
	TierGreen  MarginTier = "green"
	TierYellow MarginTier = "yellow"
	TierRed    MarginTier = "red"
)

// MarginAssessment is the result of classifying a quote's margin.
// Tier is a display/risk classification; IsAuthorized is an independent axis
// that decides whether the margin is automatically acceptable without
// escalation. Depending on where the authorized threshold sits, a yellow
// margin can be auto-authorized and a green one can require approval.
type MarginAssessment struct {
	Tier         MarginTier `json:"tier"`
	IsAuthorized bool       `json:"is_authorized"`
}

// ClassifyMargin maps a margin percentage to its tier and authorization
// decision. Pure: thresholds are always passed in, never read from ambient
// state, so concurrent callers never share anything mutable.
func ClassifyMargin(marginPercent float64, cfg PricingEngineConfig) MarginAssessment {
	var tier MarginTier
	switch {
	case marginPercent >= cfg.MarginGreenThreshold:
		tier = TierGreen
	case marginPercent >= cfg.MarginYellowThreshold:
		tier = TierYellow
	default:
		tier = TierRed
	}

	return MarginAssessment{
		Tier:         tier,
		IsAuthorized: marginPercent >= cfg.MarginAuthorizedThreshold,
	}
}

// FormatPercent renders a percentage with exactly one decimal place.
func FormatPercent(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(1) + "%"
}

// FormatCurrency renders an amount in cents with exactly two decimal places.
func FormatCurrency(cents int64) string {
	return decimal.NewFromInt(cents).Div(decimal.NewFromInt(100)).StringFixed(2)
}
