package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// InvestmentType classifies a product.
type InvestmentType string

const (
	InvestmentTypeBond  InvestmentType = "bond"
	InvestmentTypeETF   InvestmentType = "etf"
	InvestmentTypeFD    InvestmentType = "fd"
	InvestmentTypeMF    InvestmentType = "mf"
	InvestmentTypeOther InvestmentType = "other"
)

// Valid reports whether t is a known investment type.
func (t InvestmentType) Valid() bool {
	switch t {
	case InvestmentTypeBond, InvestmentTypeETF, InvestmentTypeFD, InvestmentTypeMF, InvestmentTypeOther:
		return true
	}
	return false
}

// Label returns the uppercase display label used in allocation breakdowns.
func (t InvestmentType) Label() string {
	return strings.ToUpper(string(t))
}

// RiskLevel is shared by products (risk) and users (risk appetite).
type RiskLevel string

const (
	RiskLow      RiskLevel = "low"
	RiskModerate RiskLevel = "moderate"
	RiskHigh     RiskLevel = "high"
)

// Valid reports whether r is a known risk level.
func (r RiskLevel) Valid() bool {
	switch r {
	case RiskLow, RiskModerate, RiskHigh:
		return true
	}
	return false
}

// MaxAnnualYield caps the yield an administrator may configure.
var MaxAnnualYield = decimal.NewFromInt(100)

// Product is an investment product definition in the catalog.
type Product struct {
	ID             string           `json:"id"`
	Name           string           `json:"name"`
	InvestmentType InvestmentType   `json:"investment_type"`
	TenureMonths   int              `json:"tenure_months"`
	AnnualYield    decimal.Decimal  `json:"annual_yield"`
	RiskLevel      RiskLevel        `json:"risk_level"`
	MinInvestment  decimal.Decimal  `json:"min_investment"`
	MaxInvestment  *decimal.Decimal `json:"max_investment"`
	Description    string           `json:"description,omitempty"`
	CreatedAt      time.Time        `json:"created_at"`
	UpdatedAt      time.Time        `json:"updated_at"`
}

// Validate checks the product invariants.
func (p *Product) Validate() error {
	if len(strings.TrimSpace(p.Name)) < 3 {
		return InvalidInput("Name must be at least 3 characters long")
	}
	if !p.InvestmentType.Valid() {
		return InvalidInput(fmt.Sprintf("Unknown investment type %q", p.InvestmentType))
	}
	if !p.RiskLevel.Valid() {
		return InvalidInput(fmt.Sprintf("Unknown risk level %q", p.RiskLevel))
	}
	if p.TenureMonths <= 0 {
		return InvalidInput("Tenure must be a positive number of months")
	}
	if p.AnnualYield.IsNegative() || p.AnnualYield.GreaterThan(MaxAnnualYield) {
		return InvalidInput("Annual yield must be between 0 and 100")
	}
	if !p.MinInvestment.IsPositive() {
		return InvalidInput("Minimum investment must be positive")
	}
	if p.MaxInvestment != nil {
		if !p.MaxInvestment.IsPositive() {
			return InvalidInput("Maximum investment must be positive")
		}
		if p.MaxInvestment.LessThan(p.MinInvestment) {
			return InvalidInput("Maximum investment must not be less than the minimum investment")
		}
	}
	return nil
}

// ProductFilter narrows a catalog listing. Zero values match everything.
type ProductFilter struct {
	InvestmentType InvestmentType
	RiskLevels     []RiskLevel
}

// ProductPatch carries a partial product update; nil fields are left unchanged.
type ProductPatch struct {
	Name           *string
	InvestmentType *InvestmentType
	TenureMonths   *int
	AnnualYield    *decimal.Decimal
	RiskLevel      *RiskLevel
	MinInvestment  *decimal.Decimal
	MaxInvestment  *decimal.Decimal
	ClearMax       bool
	Description    *string
}

// TouchesFinancialTerms reports whether the patch changes anything besides name and description.
func (p ProductPatch) TouchesFinancialTerms() bool {
	return p.InvestmentType != nil || p.TenureMonths != nil || p.AnnualYield != nil ||
		p.RiskLevel != nil || p.MinInvestment != nil || p.MaxInvestment != nil || p.ClearMax
}

// Apply returns a copy of product with the patch applied.
func (p ProductPatch) Apply(product Product) Product {
	if p.Name != nil {
		product.Name = *p.Name
	}
	if p.InvestmentType != nil {
		product.InvestmentType = *p.InvestmentType
	}
	if p.TenureMonths != nil {
		product.TenureMonths = *p.TenureMonths
	}
	if p.AnnualYield != nil {
		product.AnnualYield = *p.AnnualYield
	}
	if p.RiskLevel != nil {
		product.RiskLevel = *p.RiskLevel
	}
	if p.MinInvestment != nil {
		product.MinInvestment = *p.MinInvestment
	}
	if p.ClearMax {
		product.MaxInvestment = nil
	} else if p.MaxInvestment != nil {
		v := *p.MaxInvestment
		product.MaxInvestment = &v
	}
	if p.Description != nil {
		product.Description = *p.Description
	}
	return product
}

// ProductAnalysis is the generated pros/cons view of a product.
type ProductAnalysis struct {
	Pros []string `json:"pros"`
	Cons []string `json:"cons"`
}
