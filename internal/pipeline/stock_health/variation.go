package stock_health

// Scales for the dashboard variation indicators. Each indicator approaches
// its scale as the KPI grows.
const (
	RiskVariationScale        = 12.5
	ExcessVariationScale      = 8.0
	SuggestionVariationScale  = 15.0
	OpportunityVariationScale = 5.0
	ExpiryVariationScale      = 10.0
)

// Variation is a synthetic, saturating indicator of a KPI's own magnitude:
// round(x/(x+1) * scale, 1). It is 0 at x <= 0 and never reaches scale.
// No previous period is consulted, so it is not a real delta.
func Variation(x, scale float64) float64 {
	if x <= 0 {
		return 0
	}
	return roundFloat(x/(x+1)*scale, 1)
}
