// Package investment implements the investment lifecycle: creation against
// product bounds, cancellation inside the cool-off window, and maturation.
package investment

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/bobmcallan/gripinvest/internal/common"
	"github.com/bobmcallan/gripinvest/internal/interfaces"
	"github.com/bobmcallan/gripinvest/internal/models"
)

// Compile-time interface check
var _ interfaces.InvestmentService = (*Service)(nil)

// DefaultCancellationWindow is the cool-off period after investing.
const DefaultCancellationWindow = 24 * time.Hour

// Error messages surfaced verbatim to callers.
const (
	msgProductNotFound    = "Product not found"
	msgInvestmentNotFound = "Investment not found"
	msgCancelNotFound     = "Investment not found or you do not have permission to cancel it."
	msgOnlyActive         = "Only active investments can be cancelled."
)

// Rules are the lifecycle constants a deployment may tune.
type Rules struct {
	CancellationWindow time.Duration
}

// Service implements InvestmentService
type Service struct {
	storage interfaces.StorageManager
	now     func() time.Time
	rules   Rules
	logger  *common.Logger
}

// NewService creates a new investment service. A nil clock uses time.Now.
func NewService(storage interfaces.StorageManager, clock func() time.Time, rules Rules, logger *common.Logger) *Service {
	if clock == nil {
		clock = time.Now
	}
	if rules.CancellationWindow <= 0 {
		rules.CancellationWindow = DefaultCancellationWindow
	}
	return &Service{
		storage: storage,
		now:     clock,
		rules:   rules,
		logger:  logger,
	}
}

// CreateInvestment places amount into productID for userID.
func (s *Service) CreateInvestment(ctx context.Context, userID, productID string, amount decimal.Decimal) (*models.Investment, error) {
	product, err := s.storage.ProductStore().Get(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to load product: %w", err)
	}
	if product == nil {
		return nil, models.NotFound(msgProductNotFound)
	}

	if err := checkBounds(product, amount); err != nil {
		return nil, err
	}

	investedAt := s.now()
	inv := &models.Investment{
		UserID:         userID,
		ProductID:      product.ID,
		Amount:         amount,
		InvestedAt:     investedAt,
		MaturityDate:   models.AddMonths(investedAt, product.TenureMonths),
		ExpectedReturn: models.ExpectedReturn(amount, product.AnnualYield, product.TenureMonths),
		Status:         models.InvestmentStatusActive,
	}

	if err := s.storage.InvestmentStore().Create(ctx, inv); err != nil {
		return nil, fmt.Errorf("failed to save investment: %w", err)
	}

	s.logger.Info().
		Str("investment_id", inv.ID).
		Str("user_id", userID).
		Str("product_id", product.ID).
		Str("amount", amount.String()).
		Msg("Investment created")

	inv.Product = product
	return inv, nil
}

func checkBounds(product *models.Product, amount decimal.Decimal) error {
	if amount.LessThan(product.MinInvestment) {
		return models.InvalidAmount(fmt.Sprintf("Investment amount is less than the minimum of %s", product.MinInvestment.String()))
	}
	if product.MaxInvestment != nil && amount.GreaterThan(*product.MaxInvestment) {
		return models.InvalidAmount(fmt.Sprintf("Investment amount exceeds the maximum of %s", product.MaxInvestment.String()))
	}
	return nil
}

// CancelInvestment reverses an active investment inside the cool-off window.
// Only the status changes; maturity date and expected return are kept.
func (s *Service) CancelInvestment(ctx context.Context, investmentID, userID string) (*models.Investment, error) {
	store := s.storage.InvestmentStore()

	inv, err := store.GetForUser(ctx, investmentID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load investment: %w", err)
	}
	if inv == nil {
		return nil, models.NotFound(msgCancelNotFound)
	}

	if inv.Status != models.InvestmentStatusActive {
		return nil, models.InvalidState(msgOnlyActive)
	}

	if elapsed := s.now().Sub(inv.InvestedAt); elapsed > s.rules.CancellationWindow {
		return nil, models.WindowExpired(fmt.Sprintf("Cancellation period has expired (%s).", windowLabel(s.rules.CancellationWindow)))
	}

	ok, err := store.TransitionStatus(ctx, inv.ID, models.InvestmentStatusActive, models.InvestmentStatusCancelled)
	if err != nil {
		return nil, fmt.Errorf("failed to cancel investment: %w", err)
	}
	if !ok {
		// Matured or cancelled between the read and the write
		return nil, models.InvalidState(msgOnlyActive)
	}

	inv.Status = models.InvestmentStatusCancelled

	s.logger.Info().
		Str("investment_id", inv.ID).
		Str("user_id", userID).
		Msg("Investment cancelled")

	return inv, nil
}

// windowLabel renders a window as "24 hours", "90 minutes" or a Go duration.
func windowLabel(d time.Duration) string {
	switch {
	case d%time.Hour == 0:
		if d == time.Hour {
			return "1 hour"
		}
		return fmt.Sprintf("%d hours", d/time.Hour)
	case d%time.Minute == 0:
		return fmt.Sprintf("%d minutes", d/time.Minute)
	default:
		return d.String()
	}
}

// GetInvestment returns one of the user's investments with its product.
func (s *Service) GetInvestment(ctx context.Context, investmentID, userID string) (*models.Investment, error) {
	inv, err := s.storage.InvestmentStore().GetForUser(ctx, investmentID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load investment: %w", err)
	}
	if inv == nil {
		return nil, models.NotFound(msgInvestmentNotFound)
	}
	return inv, nil
}

// ListInvestments returns the user's investments newest first. An empty
// status lists every status.
func (s *Service) ListInvestments(ctx context.Context, userID string, status models.InvestmentStatus) ([]*models.Investment, error) {
	if status != "" && !status.Valid() {
		return nil, models.InvalidInput(fmt.Sprintf("Unknown investment status %q", status))
	}
	list, err := s.storage.InvestmentStore().ListByUser(ctx, userID, status)
	if err != nil {
		return nil, fmt.Errorf("failed to list investments: %w", err)
	}
	return list, nil
}

// MatureDue moves every active investment whose maturity date has passed to
// matured. Investments cancelled concurrently are skipped.
func (s *Service) MatureDue(ctx context.Context) (int, error) {
	store := s.storage.InvestmentStore()

	due, err := store.ListDue(ctx, s.now())
	if err != nil {
		return 0, fmt.Errorf("failed to list due investments: %w", err)
	}

	matured := 0
	for _, inv := range due {
		if err := ctx.Err(); err != nil {
			return matured, err
		}
		ok, err := store.TransitionStatus(ctx, inv.ID, models.InvestmentStatusActive, models.InvestmentStatusMatured)
		if err != nil {
			s.logger.Warn().Err(err).Str("investment_id", inv.ID).Msg("Failed to mature investment")
			continue
		}
		if ok {
			matured++
		}
	}

	if matured > 0 {
		s.logger.Info().Int("matured", matured).Int("due", len(due)).Msg("Investments matured")
	}
	return matured, nil
}
