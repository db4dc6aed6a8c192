// Package portfolio values a user's active investments and synthesizes their
// performance history.
package portfolio

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/bobmcallan/gripinvest/internal/common"
	"github.com/bobmcallan/gripinvest/internal/interfaces"
	"github.com/bobmcallan/gripinvest/internal/models"
	"github.com/bobmcallan/gripinvest/internal/services/valuation"
)

// Compile-time interface check
var _ interfaces.PortfolioService = (*Service)(nil)

// HistoryMonths is the length of the trailing performance series.
const HistoryMonths = 12

// Service implements PortfolioService
type Service struct {
	storage interfaces.StorageManager
	model   valuation.Model
	now     func() time.Time
	logger  *common.Logger
}

// NewService creates a new portfolio service. A nil clock uses time.Now.
func NewService(storage interfaces.StorageManager, model valuation.Model, clock func() time.Time, logger *common.Logger) *Service {
	if clock == nil {
		clock = time.Now
	}
	return &Service{
		storage: storage,
		model:   model,
		now:     clock,
		logger:  logger,
	}
}

// valued pairs an investment with its marked value.
type valued struct {
	inv   *models.Investment
	value decimal.Decimal
}

// GetPortfolioDetails builds the KPI, allocation, holdings and performance view.
// Current values come from the valuation model, so two calls may disagree on
// value while always agreeing on totals invested and allocation keys.
func (s *Service) GetPortfolioDetails(ctx context.Context, userID string) (*models.PortfolioSnapshot, error) {
	investments, err := s.storage.InvestmentStore().ListByUser(ctx, userID, models.InvestmentStatusActive)
	if err != nil {
		return nil, fmt.Errorf("failed to list investments: %w", err)
	}

	holdings := s.markToModel(investments)

	totalInvested := decimal.Zero
	totalValue := decimal.Zero
	for _, h := range holdings {
		totalInvested = totalInvested.Add(h.inv.Amount)
		totalValue = totalValue.Add(h.value)
	}

	history := s.performanceHistory(investments, totalValue)

	snapshot := &models.PortfolioSnapshot{
		KPIs: models.PortfolioKPIs{
			TotalValue:      totalValue.Round(2),
			TotalInvested:   totalInvested.Round(2),
			OverallGain:     totalValue.Sub(totalInvested).Round(2),
			ProjectedReturn: models.ProjectedReturnPlaceholder,
		},
		PerformanceData: Windows(history),
		AssetAllocation: allocate(holdings),
		InvestmentList:  list(holdings),
	}

	s.logger.Debug().
		Str("user_id", userID).
		Int("investments", len(investments)).
		Str("total_value", snapshot.KPIs.TotalValue.String()).
		Msg("Portfolio valued")

	return snapshot, nil
}

// markToModel applies the valuation model to each investment, rounding each
// current value to currency precision.
func (s *Service) markToModel(investments []*models.Investment) []valued {
	out := make([]valued, 0, len(investments))
	for _, inv := range investments {
		factor := s.model.PriceAdjustment(inv)
		out = append(out, valued{inv: inv, value: inv.Amount.Mul(factor).Round(2)})
	}
	return out
}

// allocate groups current value by uppercase investment type, in first-seen order.
func allocate(holdings []valued) []models.AllocationSlice {
	index := make(map[string]int)
	slices := []models.AllocationSlice{}
	for _, h := range holdings {
		label := productType(h.inv).Label()
		i, ok := index[label]
		if !ok {
			i = len(slices)
			index[label] = i
			slices = append(slices, models.AllocationSlice{Type: label, Value: decimal.Zero})
		}
		slices[i].Value = slices[i].Value.Add(h.value)
	}
	for i := range slices {
		slices[i].Value = slices[i].Value.Round(2)
	}
	return slices
}

func list(holdings []valued) []models.PortfolioInvestment {
	out := make([]models.PortfolioInvestment, 0, len(holdings))
	for _, h := range holdings {
		item := models.PortfolioInvestment{
			ID:           h.inv.ID,
			Amount:       h.inv.Amount,
			CurrentValue: h.value,
			InvestedAt:   h.inv.InvestedAt,
			Status:       h.inv.Status,
			ProductType:  productType(h.inv),
		}
		if h.inv.Product != nil {
			item.ProductName = h.inv.Product.Name
		}
		out = append(out, item)
	}
	return out
}

func productType(inv *models.Investment) models.InvestmentType {
	if inv.Product == nil || inv.Product.InvestmentType == "" {
		return models.InvestmentTypeOther
	}
	return inv.Product.InvestmentType
}

// performanceHistory walks the trailing HistoryMonths calendar months oldest
// first. Each month adds that month's contributions to the running value and
// applies the model's market fluctuation; the current month is pinned to
// totalValue. A month covers [first day, first day of next month).
func (s *Service) performanceHistory(investments []*models.Investment, totalValue decimal.Decimal) []models.PerformancePoint {
	now := s.now()
	current := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	one := decimal.NewFromInt(1)

	points := make([]models.PerformancePoint, 0, HistoryMonths)
	cumulative := decimal.Zero
	running := decimal.Zero

	for i := HistoryMonths - 1; i >= 0; i-- {
		start := current.AddDate(0, -i, 0)
		end := start.AddDate(0, 1, 0)

		contributions := decimal.Zero
		for _, inv := range investments {
			if !inv.InvestedAt.Before(start) && inv.InvestedAt.Before(end) {
				contributions = contributions.Add(inv.Amount)
			}
		}
		cumulative = cumulative.Add(contributions)

		running = running.Add(contributions).Mul(one.Add(s.model.MarketFluctuation(start)))
		if i == 0 {
			running = totalValue
		}

		value := running.Round(2)
		if value.IsNegative() {
			value = decimal.Zero
		}

		points = append(points, models.PerformancePoint{
			Date:          start.Format("Jan 06"),
			Month:         start,
			Value:         value,
			Contributions: cumulative.Round(2),
			Earnings:      running.Sub(cumulative).Round(2),
		})
	}
	return points
}

// Windows exposes the trailing 2, 7 and 12 points of a series as 1M, 6M, 1Y
// and All.
func Windows(history []models.PerformancePoint) models.PerformanceWindows {
	return models.PerformanceWindows{
		OneMonth:  tail(history, 2),
		SixMonth:  tail(history, 7),
		OneYear:   history,
		AllPoints: history,
	}
}

func tail(points []models.PerformancePoint, n int) []models.PerformancePoint {
	if len(points) <= n {
		return points
	}
	return points[len(points)-n:]
}
