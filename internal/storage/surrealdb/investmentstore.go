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

// investmentSelectFields aliases investment_id to id for struct mapping.
const investmentSelectFields = `investment_id as id, user_id, product_id, amount, invested_at,
	maturity_date, expected_return, status`

type investmentRecord struct {
	ID             string    `json:"id"`
	UserID         string    `json:"user_id"`
	ProductID      string    `json:"product_id"`
	Amount         string    `json:"amount"`
	InvestedAt     time.Time `json:"invested_at"`
	MaturityDate   time.Time `json:"maturity_date"`
	ExpectedReturn string    `json:"expected_return"`
	Status         string    `json:"status"`
}

func (r investmentRecord) toModel() (*models.Investment, error) {
	amount, err := decimal.NewFromString(r.Amount)
	if err != nil {
		return nil, fmt.Errorf("investment %s: bad amount %q: %w", r.ID, r.Amount, err)
	}
	expected, err := decimal.NewFromString(r.ExpectedReturn)
	if err != nil {
		return nil, fmt.Errorf("investment %s: bad expected_return %q: %w", r.ID, r.ExpectedReturn, err)
	}
	return &models.Investment{
		ID:             r.ID,
		UserID:         r.UserID,
		ProductID:      r.ProductID,
		Amount:         amount,
		InvestedAt:     r.InvestedAt,
		MaturityDate:   r.MaturityDate,
		ExpectedReturn: expected,
		Status:         models.InvestmentStatus(r.Status),
	}, nil
}

// InvestmentStore implements interfaces.InvestmentStore using SurrealDB.
type InvestmentStore struct {
	db       *surrealdb.DB
	products *ProductStore
	logger   *common.Logger
}

// NewInvestmentStore creates a new InvestmentStore. products is used to
// attach product details to listings.
func NewInvestmentStore(db *surrealdb.DB, products *ProductStore, logger *common.Logger) *InvestmentStore {
	return &InvestmentStore{db: db, products: products, logger: logger}
}

func (s *InvestmentStore) Create(ctx context.Context, inv *models.Investment) error {
	if inv.ID == "" {
		inv.ID = uuid.New().String()
	}

	sql := `CREATE $rid SET
		investment_id = $investment_id, user_id = $user_id, product_id = $product_id,
		amount = $amount, invested_at = $invested_at, maturity_date = $maturity_date,
		expected_return = $expected_return, status = $status, updated_at = $updated_at`
	vars := map[string]any{
		"rid":             surrealmodels.NewRecordID(tableInvestment, inv.ID),
		"investment_id":   inv.ID,
		"user_id":         inv.UserID,
		"product_id":      inv.ProductID,
		"amount":          inv.Amount.String(),
		"invested_at":     inv.InvestedAt,
		"maturity_date":   inv.MaturityDate,
		"expected_return": inv.ExpectedReturn.String(),
		"status":          string(inv.Status),
		"updated_at":      time.Now(),
	}

	if _, err := surrealdb.Query[any](ctx, s.db, sql, vars); err != nil {
		return fmt.Errorf("failed to create investment: %w", err)
	}
	return nil
}

func (s *InvestmentStore) GetForUser(ctx context.Context, id, userID string) (*models.Investment, error) {
	inv, err := s.Get(ctx, id)
	if err != nil || inv == nil {
		return nil, err
	}
	if inv.UserID != userID {
		return nil, nil
	}
	return inv, nil
}

func (s *InvestmentStore) Get(ctx context.Context, id string) (*models.Investment, error) {
	sql := "SELECT " + investmentSelectFields + " FROM $rid"
	vars := map[string]any{"rid": surrealmodels.NewRecordID(tableInvestment, id)}

	results, err := surrealdb.Query[[]investmentRecord](ctx, s.db, sql, vars)
	if err != nil {
		if isNotFoundError(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get investment: %w", err)
	}

	rows := firstResult(results)
	if len(rows) == 0 {
		return nil, nil
	}
	list, err := s.withProducts(ctx, rows[:1])
	if err != nil {
		return nil, err
	}
	return list[0], nil
}

func (s *InvestmentStore) ListByUser(ctx context.Context, userID string, status models.InvestmentStatus) ([]*models.Investment, error) {
	sql := "SELECT " + investmentSelectFields + " FROM investment WHERE user_id = $user_id"
	vars := map[string]any{"user_id": userID}
	if status != "" {
		sql += " AND status = $status"
		vars["status"] = string(status)
	}
	sql += " ORDER BY invested_at DESC"

	results, err := surrealdb.Query[[]investmentRecord](ctx, s.db, sql, vars)
	if err != nil {
		return nil, fmt.Errorf("failed to list investments: %w", err)
	}
	return s.withProducts(ctx, firstResult(results))
}

func (s *InvestmentStore) CountByProduct(ctx context.Context, productID string) (int, error) {
	sql := "SELECT count() AS count FROM investment WHERE product_id = $product_id GROUP ALL"
	vars := map[string]any{"product_id": productID}

	type countRow struct {
		Count int `json:"count"`
	}
	results, err := surrealdb.Query[[]countRow](ctx, s.db, sql, vars)
	if err != nil {
		return 0, fmt.Errorf("failed to count investments: %w", err)
	}
	rows := firstResult(results)
	if len(rows) == 0 {
		return 0, nil
	}
	return rows[0].Count, nil
}

// TransitionStatus is a single conditional UPDATE, so only one of several
// concurrent callers observes the from status and wins.
func (s *InvestmentStore) TransitionStatus(ctx context.Context, id string, from, to models.InvestmentStatus) (bool, error) {
	sql := "UPDATE $rid SET status = $to, updated_at = $now WHERE status = $from RETURN AFTER"
	vars := map[string]any{
		"rid":  surrealmodels.NewRecordID(tableInvestment, id),
		"from": string(from),
		"to":   string(to),
		"now":  time.Now(),
	}

	var lastErr error
	for attempt := 1; attempt <= 3; attempt++ {
		results, err := surrealdb.Query[[]map[string]any](ctx, s.db, sql, vars)
		if err == nil {
			return len(firstResult(results)) == 1, nil
		}
		if isNotFoundError(err) {
			return false, nil
		}
		lastErr = err
		if !isConflictError(err) {
			break
		}
	}
	return false, fmt.Errorf("failed to transition investment %s: %w", id, lastErr)
}

func (s *InvestmentStore) ListDue(ctx context.Context, asOf time.Time) ([]*models.Investment, error) {
	sql := "SELECT " + investmentSelectFields + " FROM investment WHERE status = $status AND maturity_date <= $as_of ORDER BY maturity_date ASC"
	vars := map[string]any{
		"status": string(models.InvestmentStatusActive),
		"as_of":  asOf,
	}

	results, err := surrealdb.Query[[]investmentRecord](ctx, s.db, sql, vars)
	if err != nil {
		return nil, fmt.Errorf("failed to list due investments: %w", err)
	}
	return s.withProducts(ctx, firstResult(results))
}

// withProducts converts rows and attaches each referenced product.
func (s *InvestmentStore) withProducts(ctx context.Context, rows []investmentRecord) ([]*models.Investment, error) {
	out := make([]*models.Investment, 0, len(rows))
	seen := make(map[string]bool)
	var ids []string
	for _, r := range rows {
		inv, err := r.toModel()
		if err != nil {
			return nil, err
		}
		out = append(out, inv)
		if !seen[inv.ProductID] {
			seen[inv.ProductID] = true
			ids = append(ids, inv.ProductID)
		}
	}

	products, err := s.products.productsByID(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, inv := range out {
		inv.Product = products[inv.ProductID]
	}
	return out, nil
}

// Compile-time check
var _ interfaces.InvestmentStore = (*InvestmentStore)(nil)
