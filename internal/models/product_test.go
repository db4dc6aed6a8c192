package models

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validProduct() Product {
	ceiling := decimal.NewFromInt(10000)
	return Product{
		Name:           "Corporate Bonds Series A",
		InvestmentType: InvestmentTypeBond,
		TenureMonths:   24,
		AnnualYield:    decimal.RequireFromString("8.5"),
		RiskLevel:      RiskLow,
		MinInvestment:  decimal.NewFromInt(1000),
		MaxInvestment:  &ceiling,
	}
}

func TestProductValidate(t *testing.T) {
	p := validProduct()
	require.NoError(t, p.Validate())

	tests := []struct {
		name   string
		mutate func(*Product)
	}{
		{"short name", func(p *Product) { p.Name = "ab" }},
		{"bad type", func(p *Product) { p.InvestmentType = "crypto" }},
		{"bad risk", func(p *Product) { p.RiskLevel = "extreme" }},
		{"zero tenure", func(p *Product) { p.TenureMonths = 0 }},
		{"negative yield", func(p *Product) { p.AnnualYield = decimal.NewFromInt(-1) }},
		{"yield over cap", func(p *Product) { p.AnnualYield = decimal.NewFromInt(101) }},
		{"zero min", func(p *Product) { p.MinInvestment = decimal.Zero }},
		{"max below min", func(p *Product) { v := decimal.NewFromInt(999); p.MaxInvestment = &v }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := validProduct()
			tt.mutate(&p)
			err := p.Validate()
			require.Error(t, err)
			assert.True(t, IsKind(err, ErrorKindInvalidInput))
		})
	}
}

func TestProductValidate_MaxEqualsMin(t *testing.T) {
	p := validProduct()
	v := p.MinInvestment
	p.MaxInvestment = &v
	assert.NoError(t, p.Validate())
}

func TestProductPatch(t *testing.T) {
	name := "Renamed Bond"
	desc := "new words"
	descriptive := ProductPatch{Name: &name, Description: &desc}
	assert.False(t, descriptive.TouchesFinancialTerms())

	got := descriptive.Apply(validProduct())
	assert.Equal(t, "Renamed Bond", got.Name)
	assert.Equal(t, "new words", got.Description)
	assert.Equal(t, 24, got.TenureMonths)

	assert.True(t, ProductPatch{ClearMax: true}.TouchesFinancialTerms())
	assert.Nil(t, ProductPatch{ClearMax: true}.Apply(validProduct()).MaxInvestment)

	tenure := 6
	assert.True(t, ProductPatch{TenureMonths: &tenure}.TouchesFinancialTerms())
}

func TestInvestmentTypeLabel(t *testing.T) {
	assert.Equal(t, "BOND", InvestmentTypeBond.Label())
	assert.Equal(t, "ETF", InvestmentTypeETF.Label())
	assert.Equal(t, "#3b82f6", DistributionColor(InvestmentTypeBond))
	assert.Equal(t, "#14b8a6", DistributionColor(InvestmentTypeETF))
	assert.Equal(t, "#f97316", DistributionColor(InvestmentTypeMF))
}

func TestErrorKindOf(t *testing.T) {
	err := NotFound("Product not found")
	assert.Equal(t, ErrorKindNotFound, ErrorKindOf(err))
	assert.Equal(t, "Product not found", err.Error())
	assert.Equal(t, ErrorKind(""), ErrorKindOf(assert.AnError))
	assert.False(t, IsKind(nil, ErrorKindNotFound))
}
