package models

import "github.com/shopspring/decimal"

// Dashboard insight strings.
const (
	DashboardEmptyInsight    = "You haven't made any investments yet. Explore our products to get started!"
	DashboardFallbackInsight = "Your portfolio is looking good! Keep an eye on market trends for new opportunities."
)

// DashboardSummary is the home-page view. TotalValue is book value.
type DashboardSummary struct {
	TotalValue        decimal.Decimal     `json:"total_value"`
	ValueChange       decimal.Decimal     `json:"value_change"`
	AssetDistribution []DistributionSlice `json:"asset_distribution"`
	AIInsight         string              `json:"ai_insight"`
	RecentActivity    []ActivityItem      `json:"recent_activity"`
}

// DistributionSlice is one investment type's share of book value.
type DistributionSlice struct {
	Name  string          `json:"name"`
	Value decimal.Decimal `json:"value"` // percentage, 2 dp
	Color string          `json:"color"`
}

// ActivityItem is a single recent investment on the dashboard.
type ActivityItem struct {
	ID      string           `json:"id"`
	Product string           `json:"product"`
	Type    string           `json:"type"`
	Status  InvestmentStatus `json:"status"`
	Amount  decimal.Decimal  `json:"amount"`
}

// DistributionColor returns the fixed chart colour for an investment type.
func DistributionColor(t InvestmentType) string {
	switch t {
	case InvestmentTypeBond:
		return "#3b82f6"
	case InvestmentTypeETF:
		return "#14b8a6"
	default:
		return "#f97316"
	}
}
