// Package storagetest holds behaviour checks shared by every StorageManager
// implementation.
package storagetest

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/gripinvest/internal/interfaces"
	"github.com/bobmcallan/gripinvest/internal/models"
)

// Factory returns a fresh, empty manager for one subtest.
type Factory func(t *testing.T) interfaces.StorageManager

// Run exercises the full store contract against managers built by factory.
func Run(t *testing.T, factory Factory) {
	t.Run("ProductCRUD", func(t *testing.T) { productCRUD(t, factory(t)) })
	t.Run("ProductFilter", func(t *testing.T) { productFilter(t, factory(t)) })
	t.Run("InvestmentOwnership", func(t *testing.T) { investmentOwnership(t, factory(t)) })
	t.Run("InvestmentListing", func(t *testing.T) { investmentListing(t, factory(t)) })
	t.Run("TransitionStatus", func(t *testing.T) { transitionStatus(t, factory(t)) })
	t.Run("TransitionStatusConcurrent", func(t *testing.T) { transitionStatusConcurrent(t, factory(t)) })
	t.Run("ListDue", func(t *testing.T) { listDue(t, factory(t)) })
	t.Run("Users", func(t *testing.T) { users(t, factory(t)) })
	t.Run("TransactionLogs", func(t *testing.T) { transactionLogs(t, factory(t)) })
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func product(name string, typ models.InvestmentType, risk models.RiskLevel) *models.Product {
	return &models.Product{
		Name:           name,
		InvestmentType: typ,
		TenureMonths:   12,
		AnnualYield:    dec("7.25"),
		RiskLevel:      risk,
		MinInvestment:  dec("1000"),
		Description:    name + " description",
	}
}

func investment(userID, productID, amount string, at time.Time) *models.Investment {
	return &models.Investment{
		UserID:         userID,
		ProductID:      productID,
		Amount:         dec(amount),
		InvestedAt:     at,
		MaturityDate:   models.AddMonths(at, 12),
		ExpectedReturn: models.ExpectedReturn(dec(amount), dec("7.25"), 12),
		Status:         models.InvestmentStatusActive,
	}
}

func productCRUD(t *testing.T, m interfaces.StorageManager) {
	ctx := context.Background()
	store := m.ProductStore()

	ceiling := dec("50000.50")
	p := product("Corporate Bond", models.InvestmentTypeBond, models.RiskLow)
	p.MaxInvestment = &ceiling
	require.NoError(t, store.Create(ctx, p))
	require.NotEmpty(t, p.ID)

	got, err := store.Get(ctx, p.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Corporate Bond", got.Name)
	assert.True(t, got.AnnualYield.Equal(dec("7.25")))
	assert.True(t, got.MinInvestment.Equal(dec("1000")))
	require.NotNil(t, got.MaxInvestment)
	assert.True(t, got.MaxInvestment.Equal(ceiling))

	got.Description = "Updated"
	got.MaxInvestment = nil
	require.NoError(t, store.Update(ctx, got))

	again, err := store.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Updated", again.Description)
	assert.Nil(t, again.MaxInvestment)

	require.NoError(t, store.Delete(ctx, p.ID))
	gone, err := store.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Nil(t, gone)

	missing, err := store.Get(ctx, "does-not-exist")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func productFilter(t *testing.T, m interfaces.StorageManager) {
	ctx := context.Background()
	store := m.ProductStore()
	require.NoError(t, store.Create(ctx, product("Bond Low", models.InvestmentTypeBond, models.RiskLow)))
	require.NoError(t, store.Create(ctx, product("ETF High", models.InvestmentTypeETF, models.RiskHigh)))
	require.NoError(t, store.Create(ctx, product("Fund Moderate", models.InvestmentTypeMF, models.RiskModerate)))

	all, err := store.List(ctx, models.ProductFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	bonds, err := store.List(ctx, models.ProductFilter{InvestmentType: models.InvestmentTypeBond})
	require.NoError(t, err)
	require.Len(t, bonds, 1)
	assert.Equal(t, "Bond Low", bonds[0].Name)

	risky, err := store.List(ctx, models.ProductFilter{RiskLevels: []models.RiskLevel{models.RiskHigh, models.RiskModerate}})
	require.NoError(t, err)
	assert.Len(t, risky, 2)

	none, err := store.List(ctx, models.ProductFilter{InvestmentType: models.InvestmentTypeETF, RiskLevels: []models.RiskLevel{models.RiskLow}})
	require.NoError(t, err)
	assert.Empty(t, none)
}

func investmentOwnership(t *testing.T, m interfaces.StorageManager) {
	ctx := context.Background()
	p := product("Owned Bond", models.InvestmentTypeBond, models.RiskLow)
	require.NoError(t, m.ProductStore().Create(ctx, p))

	inv := investment("alice", p.ID, "2500.75", time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC))
	require.NoError(t, m.InvestmentStore().Create(ctx, inv))
	require.NotEmpty(t, inv.ID)

	mine, err := m.InvestmentStore().GetForUser(ctx, inv.ID, "alice")
	require.NoError(t, err)
	require.NotNil(t, mine)
	assert.True(t, mine.Amount.Equal(dec("2500.75")))
	assert.True(t, mine.ExpectedReturn.Equal(inv.ExpectedReturn))
	assert.True(t, mine.MaturityDate.Equal(inv.MaturityDate))
	assert.Equal(t, models.InvestmentStatusActive, mine.Status)

	theirs, err := m.InvestmentStore().GetForUser(ctx, inv.ID, "bob")
	require.NoError(t, err)
	assert.Nil(t, theirs)

	fetched, err := m.InvestmentStore().Get(ctx, inv.ID)
	require.NoError(t, err)
	require.NotNil(t, fetched)
	assert.Equal(t, "alice", fetched.UserID)

	count, err := m.InvestmentStore().CountByProduct(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func investmentListing(t *testing.T, m interfaces.StorageManager) {
	ctx := context.Background()
	p := product("Listed Fund", models.InvestmentTypeMF, models.RiskModerate)
	require.NoError(t, m.ProductStore().Create(ctx, p))

	base := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	older := investment("alice", p.ID, "1000", base)
	newer := investment("alice", p.ID, "2000", base.Add(48*time.Hour))
	other := investment("bob", p.ID, "3000", base)
	for _, inv := range []*models.Investment{older, newer, other} {
		require.NoError(t, m.InvestmentStore().Create(ctx, inv))
	}
	ok, err := m.InvestmentStore().TransitionStatus(ctx, older.ID, models.InvestmentStatusActive, models.InvestmentStatusCancelled)
	require.NoError(t, err)
	require.True(t, ok)

	list, err := m.InvestmentStore().ListByUser(ctx, "alice", "")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, newer.ID, list[0].ID)
	assert.Equal(t, older.ID, list[1].ID)
	require.NotNil(t, list[0].Product)
	assert.Equal(t, "Listed Fund", list[0].Product.Name)

	active, err := m.InvestmentStore().ListByUser(ctx, "alice", models.InvestmentStatusActive)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, newer.ID, active[0].ID)

	empty, err := m.InvestmentStore().ListByUser(ctx, "carol", "")
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func transitionStatus(t *testing.T, m interfaces.StorageManager) {
	ctx := context.Background()
	p := product("Transition Bond", models.InvestmentTypeBond, models.RiskLow)
	require.NoError(t, m.ProductStore().Create(ctx, p))
	inv := investment("alice", p.ID, "1000", time.Now().UTC())
	require.NoError(t, m.InvestmentStore().Create(ctx, inv))

	ok, err := m.InvestmentStore().TransitionStatus(ctx, inv.ID, models.InvestmentStatusActive, models.InvestmentStatusCancelled)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = m.InvestmentStore().TransitionStatus(ctx, inv.ID, models.InvestmentStatusActive, models.InvestmentStatusMatured)
	require.NoError(t, err)
	assert.False(t, ok)

	got, err := m.InvestmentStore().Get(ctx, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, models.InvestmentStatusCancelled, got.Status)

	ok, err = m.InvestmentStore().TransitionStatus(ctx, "missing", models.InvestmentStatusActive, models.InvestmentStatusCancelled)
	require.NoError(t, err)
	assert.False(t, ok)
}

func transitionStatusConcurrent(t *testing.T, m interfaces.StorageManager) {
	ctx := context.Background()
	p := product("Race Bond", models.InvestmentTypeBond, models.RiskLow)
	require.NoError(t, m.ProductStore().Create(ctx, p))
	inv := investment("alice", p.ID, "1000", time.Now().UTC())
	require.NoError(t, m.InvestmentStore().Create(ctx, inv))

	const workers = 8
	var wg sync.WaitGroup
	wins := make(chan bool, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			to := models.InvestmentStatusCancelled
			if i%2 == 0 {
				to = models.InvestmentStatusMatured
			}
			ok, err := m.InvestmentStore().TransitionStatus(ctx, inv.ID, models.InvestmentStatusActive, to)
			assert.NoError(t, err)
			wins <- ok
		}(i)
	}
	wg.Wait()
	close(wins)

	won := 0
	for ok := range wins {
		if ok {
			won++
		}
	}
	assert.Equal(t, 1, won)

	got, err := m.InvestmentStore().Get(ctx, inv.ID)
	require.NoError(t, err)
	assert.True(t, got.Status.Terminal())
}

func listDue(t *testing.T, m interfaces.StorageManager) {
	ctx := context.Background()
	p := product("Due Bond", models.InvestmentTypeBond, models.RiskLow)
	require.NoError(t, m.ProductStore().Create(ctx, p))

	asOf := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	due := investment("alice", p.ID, "1000", time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC))
	exact := investment("bob", p.ID, "1000", time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC))
	future := investment("alice", p.ID, "1000", time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC))
	cancelled := investment("alice", p.ID, "1000", time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
	for _, inv := range []*models.Investment{due, exact, future, cancelled} {
		require.NoError(t, m.InvestmentStore().Create(ctx, inv))
	}
	_, err := m.InvestmentStore().TransitionStatus(ctx, cancelled.ID, models.InvestmentStatusActive, models.InvestmentStatusCancelled)
	require.NoError(t, err)

	list, err := m.InvestmentStore().ListDue(ctx, asOf)
	require.NoError(t, err)
	ids := make([]string, 0, len(list))
	for _, inv := range list {
		ids = append(ids, inv.ID)
	}
	assert.ElementsMatch(t, []string{due.ID, exact.ID}, ids)
}

func users(t *testing.T, m interfaces.StorageManager) {
	ctx := context.Background()
	store := m.UserStore()

	missing, err := store.Get(ctx, "nobody")
	require.NoError(t, err)
	assert.Nil(t, missing)

	u := &models.User{ID: "alice", FirstName: "Alice", Email: "alice@example.com", Role: models.RoleUser, RiskAppetite: models.RiskLow}
	require.NoError(t, store.Save(ctx, u))

	got, err := store.Get(ctx, "alice")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Alice", got.FirstName)
	assert.Equal(t, models.RiskLow, got.RiskAppetite)
	assert.False(t, got.CreatedAt.IsZero())

	got.RiskAppetite = models.RiskHigh
	require.NoError(t, store.Save(ctx, got))
	again, err := store.Get(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, models.RiskHigh, again.RiskAppetite)
	assert.Equal(t, "alice@example.com", again.Email)
}

func transactionLogs(t *testing.T, m interfaces.StorageManager) {
	ctx := context.Background()
	store := m.TransactionLogStore()

	base := time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		require.NoError(t, store.Append(ctx, &models.TransactionLog{
			UserID:     "alice",
			Method:     "GET",
			Endpoint:   fmt.Sprintf("/api/products/%d", i),
			StatusCode: 200,
			CreatedAt:  base.Add(time.Duration(i) * time.Minute),
		}))
	}
	require.NoError(t, store.Append(ctx, &models.TransactionLog{
		UserID:       "bob",
		Method:       "POST",
		Endpoint:     "/api/investments",
		StatusCode:   400,
		ErrorMessage: "Minimum investment is 1000",
		CreatedAt:    base,
	}))

	logs, err := store.ListByUser(ctx, "alice", 3)
	require.NoError(t, err)
	require.Len(t, logs, 3)
	assert.Equal(t, "/api/products/4", logs[0].Endpoint)
	assert.Equal(t, "/api/products/2", logs[2].Endpoint)

	bob, err := store.ListByUser(ctx, "bob", 0)
	require.NoError(t, err)
	require.Len(t, bob, 1)
	assert.Equal(t, "Minimum investment is 1000", bob[0].ErrorMessage)
	assert.True(t, bob[0].IsError())
}
