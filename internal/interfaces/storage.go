// Package interfaces defines service contracts for gripinvest
package interfaces

import (
	"context"
	"time"

	"github.com/bobmcallan/gripinvest/internal/models"
)

// StorageManager coordinates all stores
type StorageManager interface {
	ProductStore() ProductStore
	InvestmentStore() InvestmentStore
	UserStore() UserStore
	TransactionLogStore() TransactionLogStore

	// Lifecycle
	Close() error
}

// ProductStore persists catalog products. Get returns (nil, nil) when absent.
type ProductStore interface {
	Create(ctx context.Context, product *models.Product) error
	Get(ctx context.Context, id string) (*models.Product, error)
	List(ctx context.Context, filter models.ProductFilter) ([]*models.Product, error)
	Update(ctx context.Context, product *models.Product) error
	Delete(ctx context.Context, id string) error
}

// InvestmentStore persists investments. Investments are never deleted.
type InvestmentStore interface {
	Create(ctx context.Context, inv *models.Investment) error

	// GetForUser looks up by id and owner in one predicate; (nil, nil) when
	// the investment does not exist or belongs to someone else.
	GetForUser(ctx context.Context, id, userID string) (*models.Investment, error)

	// Get looks up by id regardless of owner; (nil, nil) when absent.
	Get(ctx context.Context, id string) (*models.Investment, error)

	// ListByUser returns the user's investments newest first with Product
	// attached. An empty status matches every status.
	ListByUser(ctx context.Context, userID string, status models.InvestmentStatus) ([]*models.Investment, error)

	// CountByProduct returns how many investments reference the product.
	CountByProduct(ctx context.Context, productID string) (int, error)

	// TransitionStatus sets status to `to` only if it is currently `from`.
	// Returns false when the precondition did not hold.
	TransitionStatus(ctx context.Context, id string, from, to models.InvestmentStatus) (bool, error)

	// ListDue returns active investments whose maturity date is at or before asOf.
	ListDue(ctx context.Context, asOf time.Time) ([]*models.Investment, error)
}

// UserStore persists investor profiles. Get returns (nil, nil) when absent.
type UserStore interface {
	Get(ctx context.Context, id string) (*models.User, error)
	Save(ctx context.Context, user *models.User) error
}

// TransactionLogStore is the append-only request audit trail.
type TransactionLogStore interface {
	Append(ctx context.Context, entry *models.TransactionLog) error

	// ListByUser returns up to limit entries newest first.
	ListByUser(ctx context.Context, userID string, limit int) ([]*models.TransactionLog, error)
}
