// Package interfaces defines service contracts for gripinvest
package interfaces

import (
	"context"

	"github.com/bobmcallan/gripinvest/internal/models"
	"github.com/shopspring/decimal"
)

// CatalogService manages investment product definitions
type CatalogService interface {
	ListProducts(ctx context.Context, filter models.ProductFilter) ([]*models.Product, error)
	GetProduct(ctx context.Context, id string) (*models.Product, error)

	// CreateProduct validates and stores a product, generating a description when none is given
	CreateProduct(ctx context.Context, product models.Product) (*models.Product, error)

	// UpdateProduct applies a partial update; referenced products accept descriptive changes only
	UpdateProduct(ctx context.Context, id string, patch models.ProductPatch) (*models.Product, error)

	// DeleteProduct removes an unreferenced product
	DeleteProduct(ctx context.Context, id string) error

	GenerateDescription(ctx context.Context, product models.Product) string
	GetProductAnalysis(ctx context.Context, id string) (*models.ProductAnalysis, error)
}

// InvestmentService owns the investment lifecycle
type InvestmentService interface {
	CreateInvestment(ctx context.Context, userID, productID string, amount decimal.Decimal) (*models.Investment, error)
	CancelInvestment(ctx context.Context, investmentID, userID string) (*models.Investment, error)
	GetInvestment(ctx context.Context, investmentID, userID string) (*models.Investment, error)
	ListInvestments(ctx context.Context, userID string, status models.InvestmentStatus) ([]*models.Investment, error)

	// MatureDue moves every active investment past its maturity date to matured
	MatureDue(ctx context.Context) (int, error)
}

// PortfolioService builds the valued portfolio view
type PortfolioService interface {
	GetPortfolioDetails(ctx context.Context, userID string) (*models.PortfolioSnapshot, error)

	// GetPerformanceChart renders the 1Y performance series as PNG
	GetPerformanceChart(ctx context.Context, userID string) ([]byte, error)
}

// DashboardService builds the home page summary
type DashboardService interface {
	FetchDashboardSummary(ctx context.Context, userID string) (*models.DashboardSummary, error)
}

// TransactionLogService records and reports the request audit trail
type TransactionLogService interface {
	Record(ctx context.Context, entry *models.TransactionLog)
	GetTransactionLogs(ctx context.Context, userID string) (*models.TransactionLogReport, error)
}

// AdvisorService answers investor questions and suggests products
type AdvisorService interface {
	Chat(ctx context.Context, userID string, history []models.ChatMessage, message, path string) (*models.ChatReply, error)
	Recommendations(ctx context.Context, riskAppetite models.RiskLevel) (*models.Recommendation, error)
}

// ProfileService manages investor profiles
type ProfileService interface {
	GetProfile(ctx context.Context, userID string) (*models.User, error)

	// CreateProfile provisions a profile for an identity that has none yet
	CreateProfile(ctx context.Context, user models.User) (*models.User, error)
	UpdateProfile(ctx context.Context, userID string, patch models.UserPatch) (*models.User, error)
}
