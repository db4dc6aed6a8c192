// Package catalog manages investment product definitions
package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/bobmcallan/gripinvest/internal/common"
	"github.com/bobmcallan/gripinvest/internal/interfaces"
	"github.com/bobmcallan/gripinvest/internal/models"
	"github.com/bobmcallan/gripinvest/internal/services/insight"
)

// Compile-time interface check
var _ interfaces.CatalogService = (*Service)(nil)

const (
	msgProductNotFound = "Product not found"
	msgReferencedEdit  = "Product is referenced by investments; only descriptive fields can be changed."
	msgReferencedDrop  = "Product is referenced by investments and cannot be deleted."

	descriptionComponent = "catalog.description"
	analysisComponent    = "catalog.analysis"
)

// Fallback analysis used when generation fails or returns something unparseable.
var (
	FallbackPros = []string{"Matches market standards", "Offers steady returns"}
	FallbackCons = []string{"Market volatility can affect performance", "Consider long-term goals"}
)

// Service implements CatalogService
type Service struct {
	storage  interfaces.StorageManager
	insights *insight.Delegator
	logger   *common.Logger
}

// NewService creates a new catalog service
func NewService(storage interfaces.StorageManager, insights *insight.Delegator, logger *common.Logger) *Service {
	return &Service{
		storage:  storage,
		insights: insights,
		logger:   logger,
	}
}

// ListProducts returns products matching filter, newest first.
func (s *Service) ListProducts(ctx context.Context, filter models.ProductFilter) ([]*models.Product, error) {
	if filter.InvestmentType != "" && !filter.InvestmentType.Valid() {
		return nil, models.InvalidInput(fmt.Sprintf("Unknown investment type %q", filter.InvestmentType))
	}
	for _, r := range filter.RiskLevels {
		if !r.Valid() {
			return nil, models.InvalidInput(fmt.Sprintf("Unknown risk level %q", r))
		}
	}

	products, err := s.storage.ProductStore().List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	return products, nil
}

// GetProduct returns a single product.
func (s *Service) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	p, err := s.storage.ProductStore().Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	if p == nil {
		return nil, models.NotFound(msgProductNotFound)
	}
	return p, nil
}

// CreateProduct validates and stores a new product. An empty description is
// generated, falling back to a templated sentence.
func (s *Service) CreateProduct(ctx context.Context, product models.Product) (*models.Product, error) {
	product.ID = ""
	product.Name = strings.TrimSpace(product.Name)
	if err := product.Validate(); err != nil {
		return nil, err
	}

	if strings.TrimSpace(product.Description) == "" {
		product.Description = s.GenerateDescription(ctx, product)
	}

	if err := s.storage.ProductStore().Create(ctx, &product); err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	s.logger.Info().
		Str("product_id", product.ID).
		Str("name", product.Name).
		Str("type", string(product.InvestmentType)).
		Msg("Product created")

	return &product, nil
}

// UpdateProduct applies patch to an existing product. Once any investment
// references the product only its name and description may change.
func (s *Service) UpdateProduct(ctx context.Context, id string, patch models.ProductPatch) (*models.Product, error) {
	existing, err := s.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}

	if patch.TouchesFinancialTerms() {
		referenced, err := s.referenced(ctx, id)
		if err != nil {
			return nil, err
		}
		if referenced {
			return nil, models.InvalidState(msgReferencedEdit)
		}
	}

	updated := patch.Apply(*existing)
	updated.Name = strings.TrimSpace(updated.Name)
	if err := updated.Validate(); err != nil {
		return nil, err
	}

	if err := s.storage.ProductStore().Update(ctx, &updated); err != nil {
		return nil, fmt.Errorf("failed to update product: %w", err)
	}

	s.logger.Info().Str("product_id", id).Msg("Product updated")
	return &updated, nil
}

// DeleteProduct removes a product no investment references.
func (s *Service) DeleteProduct(ctx context.Context, id string) error {
	if _, err := s.GetProduct(ctx, id); err != nil {
		return err
	}

	referenced, err := s.referenced(ctx, id)
	if err != nil {
		return err
	}
	if referenced {
		return models.InvalidState(msgReferencedDrop)
	}

	if err := s.storage.ProductStore().Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}

	s.logger.Info().Str("product_id", id).Msg("Product deleted")
	return nil
}

func (s *Service) referenced(ctx context.Context, id string) (bool, error) {
	n, err := s.storage.InvestmentStore().CountByProduct(ctx, id)
	if err != nil {
		return false, fmt.Errorf("failed to count investments for product: %w", err)
	}
	return n > 0, nil
}

// GenerateDescription writes marketing copy for a product.
func (s *Service) GenerateDescription(ctx context.Context, product models.Product) string {
	prompt := fmt.Sprintf(`Write a short, professional description (2-3 sentences) for an investment product on a retail investment platform.
Name: %s
Type: %s
Annual yield: %s%%
Tenure: %d months
Risk level: %s
Do not use markdown or formatting.`,
		product.Name, product.InvestmentType.Label(), product.AnnualYield.String(), product.TenureMonths, product.RiskLevel)

	return s.insights.Generate(ctx, descriptionComponent, prompt, FallbackDescription(product))
}

// FallbackDescription is the templated description used without generation.
func FallbackDescription(p models.Product) string {
	return fmt.Sprintf("This is a %s named %q with a risk level of %s. It offers an annual yield of %s%% over a period of %d months.",
		p.InvestmentType, p.Name, p.RiskLevel, p.AnnualYield.String(), p.TenureMonths)
}

// GetProductAnalysis returns generated pros and cons for a product.
func (s *Service) GetProductAnalysis(ctx context.Context, id string) (*models.ProductAnalysis, error) {
	p, err := s.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}

	prompt := fmt.Sprintf(`Analyze the following investment product for a retail investor.
Name: %s
Type: %s
Annual yield: %s%%
Tenure: %d months
Risk level: %s
Minimum investment: %s
Description: %s

Respond with a JSON object with two keys: "pros" (array of 2-3 short strings) and "cons" (array of 2-3 short strings).`,
		p.Name, p.InvestmentType.Label(), p.AnnualYield.String(), p.TenureMonths, p.RiskLevel, p.MinInvestment.String(), p.Description)

	fallback := &models.ProductAnalysis{
		Pros: append([]string(nil), FallbackPros...),
		Cons: append([]string(nil), FallbackCons...),
	}

	text, ok := s.insights.TryGenerate(ctx, analysisComponent, prompt)
	if !ok {
		return fallback, nil
	}

	var analysis models.ProductAnalysis
	if err := json.Unmarshal([]byte(insight.StripCodeFence(text)), &analysis); err != nil || (len(analysis.Pros) == 0 && len(analysis.Cons) == 0) {
		s.logger.Warn().Err(err).Str("product_id", id).Msg("Unparseable product analysis, using fallback")
		return fallback, nil
	}
	return &analysis, nil
}
