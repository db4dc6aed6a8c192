package server

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/bobmcallan/gripinvest/internal/models"
)

// createInvestmentRequest is the body of POST /api/investments.
type createInvestmentRequest struct {
	ProductID string          `json:"product_id"`
	Amount    decimal.Decimal `json:"amount"`
}

func (r *createInvestmentRequest) Validate() error {
	r.ProductID = strings.TrimSpace(r.ProductID)
	if r.ProductID == "" {
		return models.InvalidInput("product_id is required")
	}
	if !r.Amount.IsPositive() {
		return models.InvalidInput("amount must be a positive number")
	}
	return nil
}

// productRequest is the body of POST /api/products and of description generation.
type productRequest struct {
	Name           string                `json:"name"`
	InvestmentType models.InvestmentType `json:"investment_type"`
	TenureMonths   int                   `json:"tenure_months"`
	AnnualYield    decimal.Decimal       `json:"annual_yield"`
	RiskLevel      models.RiskLevel      `json:"risk_level"`
	MinInvestment  decimal.Decimal       `json:"min_investment"`
	MaxInvestment  *decimal.Decimal      `json:"max_investment"`
	Description    string                `json:"description"`
}

func (r *productRequest) Validate() error {
	r.Name = strings.TrimSpace(r.Name)
	if r.Name == "" {
		return models.InvalidInput("name is required")
	}
	if r.InvestmentType == "" {
		return models.InvalidInput("investment_type is required")
	}
	if r.RiskLevel == "" {
		return models.InvalidInput("risk_level is required")
	}
	return nil
}

func (r *productRequest) toProduct() models.Product {
	return models.Product{
		Name:           r.Name,
		InvestmentType: r.InvestmentType,
		TenureMonths:   r.TenureMonths,
		AnnualYield:    r.AnnualYield,
		RiskLevel:      r.RiskLevel,
		MinInvestment:  r.MinInvestment,
		MaxInvestment:  r.MaxInvestment,
		Description:    strings.TrimSpace(r.Description),
	}
}

// productPatchRequest is the body of PUT/PATCH /api/products/{id}.
type productPatchRequest struct {
	Name               *string                `json:"name"`
	InvestmentType     *models.InvestmentType `json:"investment_type"`
	TenureMonths       *int                   `json:"tenure_months"`
	AnnualYield        *decimal.Decimal       `json:"annual_yield"`
	RiskLevel          *models.RiskLevel      `json:"risk_level"`
	MinInvestment      *decimal.Decimal       `json:"min_investment"`
	MaxInvestment      *decimal.Decimal       `json:"max_investment"`
	ClearMaxInvestment bool                   `json:"clear_max_investment"`
	Description        *string                `json:"description"`
}

func (r *productPatchRequest) Validate() error {
	if r.Name == nil && r.InvestmentType == nil && r.TenureMonths == nil && r.AnnualYield == nil &&
		r.RiskLevel == nil && r.MinInvestment == nil && r.MaxInvestment == nil &&
		!r.ClearMaxInvestment && r.Description == nil {
		return models.InvalidInput("No fields to update")
	}
	if r.ClearMaxInvestment && r.MaxInvestment != nil {
		return models.InvalidInput("max_investment and clear_max_investment are mutually exclusive")
	}
	return nil
}

func (r *productPatchRequest) toPatch() models.ProductPatch {
	patch := models.ProductPatch{
		InvestmentType: r.InvestmentType,
		TenureMonths:   r.TenureMonths,
		AnnualYield:    r.AnnualYield,
		RiskLevel:      r.RiskLevel,
		MinInvestment:  r.MinInvestment,
		MaxInvestment:  r.MaxInvestment,
		ClearMax:       r.ClearMaxInvestment,
		Description:    r.Description,
	}
	if r.Name != nil {
		name := strings.TrimSpace(*r.Name)
		patch.Name = &name
	}
	return patch
}

// profileCreateRequest is the body of POST /api/profile.
type profileCreateRequest struct {
	FirstName    string           `json:"first_name"`
	LastName     string           `json:"last_name"`
	Email        string           `json:"email"`
	RiskAppetite models.RiskLevel `json:"risk_appetite"`
}

func (r *profileCreateRequest) Validate() error {
	if strings.TrimSpace(r.FirstName) == "" {
		return models.InvalidInput("first_name is required")
	}
	if strings.TrimSpace(r.Email) == "" {
		return models.InvalidInput("email is required")
	}
	return nil
}

// profilePatchRequest is the body of PUT/PATCH /api/profile.
type profilePatchRequest struct {
	FirstName    *string           `json:"first_name"`
	LastName     *string           `json:"last_name"`
	RiskAppetite *models.RiskLevel `json:"risk_appetite"`
}

func (r *profilePatchRequest) Validate() error {
	if r.FirstName == nil && r.LastName == nil && r.RiskAppetite == nil {
		return models.InvalidInput("No fields to update")
	}
	return nil
}

func (r *profilePatchRequest) toPatch() models.UserPatch {
	return models.UserPatch{
		FirstName:    r.FirstName,
		LastName:     r.LastName,
		RiskAppetite: r.RiskAppetite,
	}
}

// chatRequest is the body of POST /api/ai/chat.
type chatRequest struct {
	History []models.ChatMessage `json:"history"`
	Message string               `json:"message"`
	Path    string               `json:"path"`
}

func (r *chatRequest) Validate() error {
	if strings.TrimSpace(r.Message) == "" {
		return models.InvalidInput("Message is required")
	}
	for _, m := range r.History {
		if m.Role != models.ChatRoleUser && m.Role != models.ChatRoleModel {
			return models.InvalidInput("history roles must be user or model")
		}
	}
	return nil
}
