package surrealdb

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/bobmcallan/gripinvest/internal/common"
	"github.com/bobmcallan/gripinvest/internal/interfaces"
	"github.com/bobmcallan/gripinvest/internal/models"
	"github.com/surrealdb/surrealdb.go"
	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"
)

// productSelectFields aliases product_id to id for struct mapping.
const productSelectFields = `product_id as id, name, investment_type, tenure_months, annual_yield,
	risk_level, min_investment, max_investment, description, created_at, updated_at`

// productRecord is the stored shape of a product. Currency is kept as
// decimal strings so no precision is lost on the wire.
type productRecord struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	InvestmentType string    `json:"investment_type"`
	TenureMonths   int       `json:"tenure_months"`
	AnnualYield    string    `json:"annual_yield"`
	RiskLevel      string    `json:"risk_level"`
	MinInvestment  string    `json:"min_investment"`
	MaxInvestment  *string   `json:"max_investment"`
	Description    string    `json:"description"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func (r productRecord) toModel() (*models.Product, error) {
	yield, err := decimal.NewFromString(r.AnnualYield)
	if err != nil {
		return nil, fmt.Errorf("product %s: bad annual_yield %q: %w", r.ID, r.AnnualYield, err)
	}
	minimum, err := decimal.NewFromString(r.MinInvestment)
	if err != nil {
		return nil, fmt.Errorf("product %s: bad min_investment %q: %w", r.ID, r.MinInvestment, err)
	}
	p := &models.Product{
		ID:             r.ID,
		Name:           r.Name,
		InvestmentType: models.InvestmentType(r.InvestmentType),
		TenureMonths:   r.TenureMonths,
		AnnualYield:    yield,
		RiskLevel:      models.RiskLevel(r.RiskLevel),
		MinInvestment:  minimum,
		Description:    r.Description,
		CreatedAt:      r.CreatedAt,
		UpdatedAt:      r.UpdatedAt,
	}
	if r.MaxInvestment != nil && *r.MaxInvestment != "" {
		ceiling, err := decimal.NewFromString(*r.MaxInvestment)
		if err != nil {
			return nil, fmt.Errorf("product %s: bad max_investment %q: %w", r.ID, *r.MaxInvestment, err)
		}
		p.MaxInvestment = &ceiling
	}
	return p, nil
}

func productVars(p *models.Product) map[string]any {
	var ceiling *string
	if p.MaxInvestment != nil {
		s := p.MaxInvestment.String()
		ceiling = &s
	}
	return map[string]any{
		"rid":             surrealmodels.NewRecordID(tableProduct, p.ID),
		"product_id":      p.ID,
		"name":            p.Name,
		"investment_type": string(p.InvestmentType),
		"tenure_months":   p.TenureMonths,
		"annual_yield":    p.AnnualYield.String(),
		"risk_level":      string(p.RiskLevel),
		"min_investment":  p.MinInvestment.String(),
		"max_investment":  ceiling,
		"description":     p.Description,
		"created_at":      p.CreatedAt,
		"updated_at":      p.UpdatedAt,
	}
}

const productUpsert = `UPSERT $rid SET
	product_id = $product_id, name = $name, investment_type = $investment_type,
	tenure_months = $tenure_months, annual_yield = $annual_yield, risk_level = $risk_level,
	min_investment = $min_investment, max_investment = $max_investment,
	description = $description, created_at = $created_at, updated_at = $updated_at`

// ProductStore implements interfaces.ProductStore using SurrealDB.
type ProductStore struct {
	db     *surrealdb.DB
	logger *common.Logger
}

// NewProductStore creates a new ProductStore.
func NewProductStore(db *surrealdb.DB, logger *common.Logger) *ProductStore {
	return &ProductStore{db: db, logger: logger}
}

func (s *ProductStore) Create(ctx context.Context, product *models.Product) error {
	if product.ID == "" {
		product.ID = uuid.New().String()
	}
	now := time.Now()
	if product.CreatedAt.IsZero() {
		product.CreatedAt = now
	}
	product.UpdatedAt = now

	if _, err := surrealdb.Query[any](ctx, s.db, productUpsert, productVars(product)); err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}
	return nil
}

func (s *ProductStore) Get(ctx context.Context, id string) (*models.Product, error) {
	sql := "SELECT " + productSelectFields + " FROM $rid"
	vars := map[string]any{"rid": surrealmodels.NewRecordID(tableProduct, id)}

	results, err := surrealdb.Query[[]productRecord](ctx, s.db, sql, vars)
	if err != nil {
		if isNotFoundError(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get product: %w", err)
	}

	rows := firstResult(results)
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0].toModel()
}

func (s *ProductStore) List(ctx context.Context, filter models.ProductFilter) ([]*models.Product, error) {
	where := ""
	vars := map[string]any{}

	if filter.InvestmentType != "" {
		where += " AND investment_type = $investment_type"
		vars["investment_type"] = string(filter.InvestmentType)
	}
	if len(filter.RiskLevels) > 0 {
		risks := make([]string, len(filter.RiskLevels))
		for i, r := range filter.RiskLevels {
			risks[i] = string(r)
		}
		where += " AND risk_level IN $risk_levels"
		vars["risk_levels"] = risks
	}

	sql := "SELECT " + productSelectFields + " FROM product"
	if where != "" {
		sql += " WHERE" + where[len(" AND"):]
	}
	sql += " ORDER BY created_at DESC"

	results, err := surrealdb.Query[[]productRecord](ctx, s.db, sql, vars)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}

	rows := firstResult(results)
	products := make([]*models.Product, 0, len(rows))
	for _, r := range rows {
		p, err := r.toModel()
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, nil
}

func (s *ProductStore) Update(ctx context.Context, product *models.Product) error {
	existing, err := s.Get(ctx, product.ID)
	if err != nil {
		return err
	}
	if existing == nil {
		return fmt.Errorf("product %s not found", product.ID)
	}
	product.CreatedAt = existing.CreatedAt
	product.UpdatedAt = time.Now()

	if _, err := surrealdb.Query[any](ctx, s.db, productUpsert, productVars(product)); err != nil {
		return fmt.Errorf("failed to update product: %w", err)
	}
	return nil
}

func (s *ProductStore) Delete(ctx context.Context, id string) error {
	_, err := surrealdb.Delete[productRecord](ctx, s.db, surrealmodels.NewRecordID(tableProduct, id))
	if err != nil && !isNotFoundError(err) {
		return fmt.Errorf("failed to delete product: %w", err)
	}
	return nil
}

// productsByID loads the given products keyed by id.
func (s *ProductStore) productsByID(ctx context.Context, ids []string) (map[string]*models.Product, error) {
	out := make(map[string]*models.Product, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	sql := "SELECT " + productSelectFields + " FROM product WHERE product_id IN $ids"
	results, err := surrealdb.Query[[]productRecord](ctx, s.db, sql, map[string]any{"ids": ids})
	if err != nil {
		return nil, fmt.Errorf("failed to load products: %w", err)
	}
	for _, r := range firstResult(results) {
		p, err := r.toModel()
		if err != nil {
			return nil, err
		}
		out[p.ID] = p
	}
	return out, nil
}

// Compile-time check
var _ interfaces.ProductStore = (*ProductStore)(nil)
