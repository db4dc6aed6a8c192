package catalog

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/bobmcallan/gripinvest/internal/models"
)

// DefaultProducts is the starter catalog.
func DefaultProducts() []models.Product {
	return []models.Product{
		{
			Name:           "Corporate Bonds Series A",
			InvestmentType: models.InvestmentTypeBond,
			TenureMonths:   24,
			AnnualYield:    decimal.RequireFromString("8.5"),
			RiskLevel:      models.RiskLow,
			MinInvestment:  decimal.NewFromInt(5000),
			Description:    "Stable corporate bonds with a fixed return. Ideal for conservative investors.",
		},
		{
			Name:           "High-Growth Tech ETF",
			InvestmentType: models.InvestmentTypeETF,
			TenureMonths:   60,
			AnnualYield:    decimal.RequireFromString("14.2"),
			RiskLevel:      models.RiskHigh,
			MinInvestment:  decimal.NewFromInt(1000),
			Description:    "An exchange-traded fund focused on high-growth technology sector stocks.",
		},
		{
			Name:           "Secure Fixed Deposit",
			InvestmentType: models.InvestmentTypeFD,
			TenureMonths:   36,
			AnnualYield:    decimal.RequireFromString("7.1"),
			RiskLevel:      models.RiskLow,
			MinInvestment:  decimal.NewFromInt(10000),
			Description:    "A secure fixed deposit with a guaranteed interest rate.",
		},
	}
}

// SeedDefaults inserts DefaultProducts when the catalog is empty and returns
// how many were created.
func (s *Service) SeedDefaults(ctx context.Context) (int, error) {
	existing, err := s.storage.ProductStore().List(ctx, models.ProductFilter{})
	if err != nil {
		return 0, fmt.Errorf("failed to check catalog: %w", err)
	}
	if len(existing) > 0 {
		return 0, nil
	}

	created := 0
	for _, p := range DefaultProducts() {
		product := p
		if err := s.storage.ProductStore().Create(ctx, &product); err != nil {
			return created, fmt.Errorf("failed to seed product %s: %w", p.Name, err)
		}
		created++
	}

	s.logger.Info().Int("count", created).Msg("Catalog seeded")
	return created, nil
}
