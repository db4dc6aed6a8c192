// Package models defines data structures for gripinvest
package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ProjectedReturnPlaceholder is reported until a forecasting model exists.
var ProjectedReturnPlaceholder = decimal.RequireFromString("8.5")

// PortfolioSnapshot is the read-time aggregation over a user's active investments.
// It is recomputed on every request and never persisted.
type PortfolioSnapshot struct {
	KPIs            PortfolioKPIs         `json:"kpis"`
	PerformanceData PerformanceWindows    `json:"performance_data"`
	AssetAllocation []AllocationSlice     `json:"asset_allocation"`
	InvestmentList  []PortfolioInvestment `json:"investment_list"`
}

// PortfolioKPIs are the headline figures, rounded to 2 dp.
type PortfolioKPIs struct {
	TotalValue      decimal.Decimal `json:"total_value"`
	TotalInvested   decimal.Decimal `json:"total_invested"`
	OverallGain     decimal.Decimal `json:"overall_gain"`
	ProjectedReturn decimal.Decimal `json:"projected_return"`
}

// PerformancePoint is one month of the synthesized performance history.
type PerformancePoint struct {
	Date          string          `json:"date"` // "Jan 06"
	Month         time.Time       `json:"-"`
	Value         decimal.Decimal `json:"value"`
	Contributions decimal.Decimal `json:"contributions"`
	Earnings      decimal.Decimal `json:"earnings"`
}

// PerformanceWindows exposes overlapping tails of the 12-month series.
type PerformanceWindows struct {
	OneMonth  []PerformancePoint `json:"1M"`
	SixMonth  []PerformancePoint `json:"6M"`
	OneYear   []PerformancePoint `json:"1Y"`
	AllPoints []PerformancePoint `json:"All"`
}

// AllocationSlice is the simulated value held in one investment type.
type AllocationSlice struct {
	Type  string          `json:"type"`
	Value decimal.Decimal `json:"value"`
}

// PortfolioInvestment is an investment annotated with its simulated current value.
type PortfolioInvestment struct {
	ID           string           `json:"id"`
	Amount       decimal.Decimal  `json:"amount"`
	CurrentValue decimal.Decimal  `json:"current_value"`
	InvestedAt   time.Time        `json:"invested_at"`
	Status       InvestmentStatus `json:"status"`
	ProductName  string           `json:"product_name"`
	ProductType  InvestmentType   `json:"product_type"`
}
