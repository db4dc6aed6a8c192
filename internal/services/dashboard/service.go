// Package dashboard builds the home page summary: book value, distribution by
// type, recent activity and a generated insight.
package dashboard

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/bobmcallan/gripinvest/internal/common"
	"github.com/bobmcallan/gripinvest/internal/interfaces"
	"github.com/bobmcallan/gripinvest/internal/models"
	"github.com/bobmcallan/gripinvest/internal/services/insight"
	"github.com/bobmcallan/gripinvest/internal/services/valuation"
)

// Compile-time interface check
var _ interfaces.DashboardService = (*Service)(nil)

// RecentActivityLimit caps the activity feed.
const RecentActivityLimit = 5

const insightComponent = "dashboard"

// Service implements DashboardService
type Service struct {
	storage  interfaces.StorageManager
	model    valuation.Model
	insights *insight.Delegator
	logger   *common.Logger
}

// NewService creates a new dashboard service
func NewService(storage interfaces.StorageManager, model valuation.Model, insights *insight.Delegator, logger *common.Logger) *Service {
	return &Service{
		storage:  storage,
		model:    model,
		insights: insights,
		logger:   logger,
	}
}

// FetchDashboardSummary summarizes the user's active investments at book value.
// Users with nothing active get the fixed empty state and no generation call.
func (s *Service) FetchDashboardSummary(ctx context.Context, userID string) (*models.DashboardSummary, error) {
	investments, err := s.storage.InvestmentStore().ListByUser(ctx, userID, models.InvestmentStatusActive)
	if err != nil {
		return nil, fmt.Errorf("failed to list investments: %w", err)
	}

	totalValue := decimal.Zero
	for _, inv := range investments {
		totalValue = totalValue.Add(inv.Amount)
	}

	if len(investments) == 0 || totalValue.IsZero() {
		return emptySummary(), nil
	}

	distribution := distribute(investments, totalValue)

	summary := &models.DashboardSummary{
		TotalValue:        totalValue,
		ValueChange:       clampUnit(s.model.DailyChange()).Round(2),
		AssetDistribution: distribution,
		RecentActivity:    recentActivity(investments),
	}
	summary.AIInsight = s.insights.Generate(ctx, insightComponent, insightPrompt(distribution), models.DashboardFallbackInsight)

	return summary, nil
}

func emptySummary() *models.DashboardSummary {
	return &models.DashboardSummary{
		TotalValue:        decimal.Zero,
		ValueChange:       decimal.Zero,
		AssetDistribution: []models.DistributionSlice{},
		AIInsight:         models.DashboardEmptyInsight,
		RecentActivity:    []models.ActivityItem{},
	}
}

// distribute groups book value by type as a percentage of total, first-seen order.
func distribute(investments []*models.Investment, total decimal.Decimal) []models.DistributionSlice {
	type bucket struct {
		typ models.InvestmentType
		sum decimal.Decimal
	}
	var buckets []*bucket
	index := make(map[models.InvestmentType]*bucket)

	for _, inv := range investments {
		typ := investmentType(inv)
		b, ok := index[typ]
		if !ok {
			b = &bucket{typ: typ, sum: decimal.Zero}
			index[typ] = b
			buckets = append(buckets, b)
		}
		b.sum = b.sum.Add(inv.Amount)
	}

	hundred := decimal.NewFromInt(100)
	out := make([]models.DistributionSlice, 0, len(buckets))
	for _, b := range buckets {
		out = append(out, models.DistributionSlice{
			Name:  b.typ.Label(),
			Value: b.sum.Mul(hundred).Div(total).Round(2),
			Color: models.DistributionColor(b.typ),
		})
	}
	return out
}

// recentActivity returns the newest RecentActivityLimit investments.
func recentActivity(investments []*models.Investment) []models.ActivityItem {
	sorted := make([]*models.Investment, len(investments))
	copy(sorted, investments)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].InvestedAt.After(sorted[j].InvestedAt)
	})
	if len(sorted) > RecentActivityLimit {
		sorted = sorted[:RecentActivityLimit]
	}

	out := make([]models.ActivityItem, 0, len(sorted))
	for _, inv := range sorted {
		item := models.ActivityItem{
			ID:     inv.ID,
			Type:   investmentType(inv).Label(),
			Status: inv.Status,
			Amount: inv.Amount,
		}
		if inv.Product != nil {
			item.Product = inv.Product.Name
		}
		out = append(out, item)
	}
	return out
}

func insightPrompt(distribution []models.DistributionSlice) string {
	parts := make([]string, 0, len(distribution))
	for _, d := range distribution {
		parts = append(parts, fmt.Sprintf("%s%% in %s", d.Value.String(), d.Name))
	}

	return fmt.Sprintf(`Analyze the following investment portfolio distribution for a user on an investment platform.
The user's portfolio consists of: %s.
Provide a concise, encouraging, and actionable insight in 1-2 sentences.
Focus on diversification, risk, or potential opportunities for growth.
Do not use markdown or formatting.`, strings.Join(parts, ", "))
}

func investmentType(inv *models.Investment) models.InvestmentType {
	if inv.Product == nil || inv.Product.InvestmentType == "" {
		return models.InvestmentTypeOther
	}
	return inv.Product.InvestmentType
}

// clampUnit keeps a model's daily change inside [-1, 1].
func clampUnit(d decimal.Decimal) decimal.Decimal {
	one := decimal.NewFromInt(1)
	if d.GreaterThan(one) {
		return one
	}
	if d.LessThan(one.Neg()) {
		return one.Neg()
	}
	return d
}
