package surrealdb

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/bobmcallan/gripinvest/internal/common"
	"github.com/bobmcallan/gripinvest/internal/interfaces"
	"github.com/bobmcallan/gripinvest/internal/models"
	"github.com/surrealdb/surrealdb.go"
	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"
)

// logSelectFields aliases log_id to id for struct mapping.
const logSelectFields = `log_id as id, user_id, http_method, endpoint, status_code, error_message, created_at`

// TransactionLogStore implements interfaces.TransactionLogStore using SurrealDB.
type TransactionLogStore struct {
	db     *surrealdb.DB
	logger *common.Logger
}

// NewTransactionLogStore creates a new TransactionLogStore.
func NewTransactionLogStore(db *surrealdb.DB, logger *common.Logger) *TransactionLogStore {
	return &TransactionLogStore{db: db, logger: logger}
}

func (s *TransactionLogStore) Append(ctx context.Context, entry *models.TransactionLog) error {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}

	sql := `CREATE $rid SET
		log_id = $log_id, user_id = $user_id, http_method = $http_method,
		endpoint = $endpoint, status_code = $status_code,
		error_message = $error_message, created_at = $created_at`
	vars := map[string]any{
		"rid":           surrealmodels.NewRecordID(tableTransactionLog, entry.ID),
		"log_id":        entry.ID,
		"user_id":       entry.UserID,
		"http_method":   entry.Method,
		"endpoint":      entry.Endpoint,
		"status_code":   entry.StatusCode,
		"error_message": entry.ErrorMessage,
		"created_at":    entry.CreatedAt,
	}

	if _, err := surrealdb.Query[any](ctx, s.db, sql, vars); err != nil {
		return fmt.Errorf("failed to append transaction log: %w", err)
	}
	return nil
}

func (s *TransactionLogStore) ListByUser(ctx context.Context, userID string, limit int) ([]*models.TransactionLog, error) {
	sql := "SELECT " + logSelectFields + " FROM transaction_log WHERE user_id = $user_id ORDER BY created_at DESC"
	if limit > 0 {
		sql += fmt.Sprintf(" LIMIT %d", limit)
	}
	vars := map[string]any{"user_id": userID}

	results, err := surrealdb.Query[[]models.TransactionLog](ctx, s.db, sql, vars)
	if err != nil {
		return nil, fmt.Errorf("failed to list transaction logs: %w", err)
	}

	rows := firstResult(results)
	logs := make([]*models.TransactionLog, 0, len(rows))
	for i := range rows {
		logs = append(logs, &rows[i])
	}
	return logs, nil
}

// Compile-time check
var _ interfaces.TransactionLogStore = (*TransactionLogStore)(nil)
