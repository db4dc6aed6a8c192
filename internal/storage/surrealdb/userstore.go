package surrealdb

import (
	"context"
	"fmt"
	"time"

	"github.com/bobmcallan/gripinvest/internal/common"
	"github.com/bobmcallan/gripinvest/internal/interfaces"
	"github.com/bobmcallan/gripinvest/internal/models"
	"github.com/surrealdb/surrealdb.go"
	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"
)

// userSelectFields aliases user_id to id for struct mapping.
const userSelectFields = `user_id as id, first_name, last_name, email, role, risk_appetite, created_at, updated_at`

// UserStore implements interfaces.UserStore using SurrealDB.
type UserStore struct {
	db     *surrealdb.DB
	logger *common.Logger
}

// NewUserStore creates a new UserStore.
func NewUserStore(db *surrealdb.DB, logger *common.Logger) *UserStore {
	return &UserStore{
		db:     db,
		logger: logger,
	}
}

func (s *UserStore) Get(ctx context.Context, id string) (*models.User, error) {
	sql := "SELECT " + userSelectFields + " FROM $rid"
	vars := map[string]any{"rid": surrealmodels.NewRecordID(tableUser, id)}

	results, err := surrealdb.Query[[]models.User](ctx, s.db, sql, vars)
	if err != nil {
		if isNotFoundError(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	rows := firstResult(results)
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

func (s *UserStore) Save(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		return fmt.Errorf("user id is required")
	}
	now := time.Now()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now

	sql := `UPSERT $rid SET
		user_id = $user_id, first_name = $first_name, last_name = $last_name,
		email = $email, role = $role, risk_appetite = $risk_appetite,
		created_at = $created_at, updated_at = $updated_at`
	vars := map[string]any{
		"rid":           surrealmodels.NewRecordID(tableUser, user.ID),
		"user_id":       user.ID,
		"first_name":    user.FirstName,
		"last_name":     user.LastName,
		"email":         user.Email,
		"role":          user.Role,
		"risk_appetite": string(user.RiskAppetite),
		"created_at":    user.CreatedAt,
		"updated_at":    user.UpdatedAt,
	}

	var lastErr error
	for attempt := 1; attempt <= 3; attempt++ {
		_, err := surrealdb.Query[any](ctx, s.db, sql, vars)
		if err == nil {
			return nil
		}
		lastErr = err
	}
	return fmt.Errorf("failed to save user after retries: %w", lastErr)
}

// Compile-time check
var _ interfaces.UserStore = (*UserStore)(nil)
