package surrealdb

import (
	"context"
	"fmt"
	"strings"

	"github.com/bobmcallan/gripinvest/internal/common"
	"github.com/bobmcallan/gripinvest/internal/interfaces"
	"github.com/surrealdb/surrealdb.go"
)

// Table names.
const (
	tableProduct        = "product"
	tableInvestment     = "investment"
	tableUser           = "app_user"
	tableTransactionLog = "transaction_log"
)

// Manager implements interfaces.StorageManager using SurrealDB.
type Manager struct {
	db     *surrealdb.DB
	logger *common.Logger

	productStore    *ProductStore
	investmentStore *InvestmentStore
	userStore       *UserStore
	logStore        *TransactionLogStore
}

// NewManager creates a new StorageManager connected to SurrealDB.
func NewManager(logger *common.Logger, config *common.Config) (*Manager, error) {
	ctx := context.Background()

	// Connect to SurrealDB
	db, err := surrealdb.New(config.Storage.Address)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to SurrealDB: %w", err)
	}

	// Sign in
	if _, err := db.SignIn(ctx, map[string]interface{}{
		"user": config.Storage.Username,
		"pass": config.Storage.Password,
	}); err != nil {
		db.Close(ctx)
		return nil, fmt.Errorf("failed to sign in to SurrealDB: %w", err)
	}

	// Select namespace and database
	if err := db.Use(ctx, config.Storage.Namespace, config.Storage.Database); err != nil {
		db.Close(ctx)
		return nil, fmt.Errorf("failed to select namespace/database: %w", err)
	}

	if err := defineSchema(ctx, db); err != nil {
		db.Close(ctx)
		return nil, err
	}

	m := newManager(db, logger)

	logger.Info().
		Str("address", config.Storage.Address).
		Str("namespace", config.Storage.Namespace).
		Str("database", config.Storage.Database).
		Msg("SurrealDB storage manager initialized")

	return m, nil
}

func newManager(db *surrealdb.DB, logger *common.Logger) *Manager {
	products := NewProductStore(db, logger)
	return &Manager{
		db:              db,
		logger:          logger,
		productStore:    products,
		investmentStore: NewInvestmentStore(db, products, logger),
		userStore:       NewUserStore(db, logger),
		logStore:        NewTransactionLogStore(db, logger),
	}
}

// defineSchema ensures tables exist (SurrealDB v3 errors on querying
// non-existent tables) and indexes the hot lookups.
func defineSchema(ctx context.Context, db *surrealdb.DB) error {
	tables := []string{tableProduct, tableInvestment, tableUser, tableTransactionLog}
	for _, table := range tables {
		sql := fmt.Sprintf("DEFINE TABLE IF NOT EXISTS %s SCHEMALESS", table)
		if _, err := surrealdb.Query[any](ctx, db, sql, nil); err != nil {
			return fmt.Errorf("failed to define table %s: %w", table, err)
		}
	}

	indexes := []string{
		"DEFINE INDEX IF NOT EXISTS investment_user ON TABLE investment FIELDS user_id",
		"DEFINE INDEX IF NOT EXISTS investment_product ON TABLE investment FIELDS product_id",
		"DEFINE INDEX IF NOT EXISTS transaction_log_user ON TABLE transaction_log FIELDS user_id, created_at",
	}
	for _, sql := range indexes {
		if _, err := surrealdb.Query[any](ctx, db, sql, nil); err != nil {
			return fmt.Errorf("failed to define index: %w", err)
		}
	}
	return nil
}

func (m *Manager) ProductStore() interfaces.ProductStore {
	return m.productStore
}

func (m *Manager) InvestmentStore() interfaces.InvestmentStore {
	return m.investmentStore
}

func (m *Manager) UserStore() interfaces.UserStore {
	return m.userStore
}

func (m *Manager) TransactionLogStore() interfaces.TransactionLogStore {
	return m.logStore
}

func (m *Manager) Close() error {
	m.db.Close(context.Background())
	return nil
}

// isNotFoundError reports whether a driver error means the record is absent.
func isNotFoundError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "not found") || strings.Contains(msg, "does not exist")
}

// isConflictError reports a write-write conflict that is safe to retry.
func isConflictError(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "conflict") || strings.Contains(msg, "can be retried")
}

// firstResult unwraps the rows of the first statement of a query response.
func firstResult[T any](results *[]surrealdb.QueryResult[[]T]) []T {
	if results == nil || len(*results) == 0 {
		return nil
	}
	return (*results)[0].Result
}

// Compile-time check
var _ interfaces.StorageManager = (*Manager)(nil)
