package investment

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/gripinvest/internal/common"
	"github.com/bobmcallan/gripinvest/internal/interfaces"
	"github.com/bobmcallan/gripinvest/internal/models"
	"github.com/bobmcallan/gripinvest/internal/storage/memory"
)

// --- helpers ---

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func seedProduct(t *testing.T, store *memory.Manager, ceiling *decimal.Decimal) *models.Product {
	t.Helper()
	p := &models.Product{
		Name:           "Corporate Bonds Series A",
		InvestmentType: models.InvestmentTypeBond,
		TenureMonths:   12,
		AnnualYield:    dec("8.5"),
		RiskLevel:      models.RiskLow,
		MinInvestment:  dec("1000"),
		MaxInvestment:  ceiling,
	}
	require.NoError(t, store.ProductStore().Create(context.Background(), p))
	return p
}

func newTestService(t *testing.T) (*Service, *memory.Manager, *fakeClock) {
	t.Helper()
	store := memory.NewManager()
	clock := &fakeClock{t: time.Date(2024, 1, 31, 10, 0, 0, 0, time.UTC)}
	svc := NewService(store, clock.Now, Rules{CancellationWindow: 24 * time.Hour}, common.NewSilentLogger())
	return svc, store, clock
}

// --- CreateInvestment ---

func TestCreateInvestment_Scenario(t *testing.T) {
	svc, store, clock := newTestService(t)
	ceiling := dec("10000")
	product := seedProduct(t, store, &ceiling)
	ctx := context.Background()

	inv, err := svc.CreateInvestment(ctx, "user-1", product.ID, dec("5000"))
	require.NoError(t, err)
	assert.NotEmpty(t, inv.ID)
	assert.Equal(t, models.InvestmentStatusActive, inv.Status)
	assert.True(t, dec("425.00").Equal(inv.ExpectedReturn), "expected return %s", inv.ExpectedReturn)
	assert.True(t, clock.t.Equal(inv.InvestedAt))
	assert.True(t, time.Date(2025, 1, 31, 10, 0, 0, 0, time.UTC).Equal(inv.MaturityDate))
	require.NotNil(t, inv.Product)
	assert.Equal(t, product.Name, inv.Product.Name)

	_, err = svc.CreateInvestment(ctx, "user-1", product.ID, dec("500"))
	require.Error(t, err)
	assert.True(t, models.IsKind(err, models.ErrorKindInvalidAmount))
	assert.Equal(t, "Investment amount is less than the minimum of 1000", err.Error())

	_, err = svc.CreateInvestment(ctx, "user-1", product.ID, dec("15000"))
	require.Error(t, err)
	assert.True(t, models.IsKind(err, models.ErrorKindInvalidAmount))
	assert.Equal(t, "Investment amount exceeds the maximum of 10000", err.Error())
}

func TestCreateInvestment_Boundaries(t *testing.T) {
	svc, store, _ := newTestService(t)
	ceiling := dec("10000")
	product := seedProduct(t, store, &ceiling)
	ctx := context.Background()

	tests := []struct {
		amount string
		ok     bool
	}{
		{"1000", true},
		{"1000.00", true},
		{"999.99", false},
		{"10000", true},
		{"10000.00", true},
		{"10000.01", false},
		{"0.1", false},
	}
	for _, tt := range tests {
		_, err := svc.CreateInvestment(ctx, "user-1", product.ID, dec(tt.amount))
		if tt.ok {
			assert.NoError(t, err, "amount %s", tt.amount)
		} else {
			assert.True(t, models.IsKind(err, models.ErrorKindInvalidAmount), "amount %s: %v", tt.amount, err)
		}
	}
}

func TestCreateInvestment_NoMaximum(t *testing.T) {
	svc, store, _ := newTestService(t)
	product := seedProduct(t, store, nil)

	_, err := svc.CreateInvestment(context.Background(), "user-1", product.ID, dec("1000000000"))
	assert.NoError(t, err)
}

func TestCreateInvestment_UnknownProduct(t *testing.T) {
	svc, _, _ := newTestService(t)

	for _, amount := range []string{"0", "5000", "-1"} {
		_, err := svc.CreateInvestment(context.Background(), "user-1", "missing", dec(amount))
		require.Error(t, err)
		assert.True(t, models.IsKind(err, models.ErrorKindNotFound))
		assert.Equal(t, "Product not found", err.Error())
	}
}

func TestCreateInvestment_MonthEndMaturity(t *testing.T) {
	svc, store, clock := newTestService(t)
	product := seedProduct(t, store, nil)
	one := 1
	product = ptr(models.ProductPatch{TenureMonths: &one}.Apply(*product))
	require.NoError(t, store.ProductStore().Update(context.Background(), product))

	inv, err := svc.CreateInvestment(context.Background(), "user-1", product.ID, dec("1000"))
	require.NoError(t, err)
	assert.Equal(t, 2024, clock.t.Year())
	assert.True(t, time.Date(2024, 2, 29, 10, 0, 0, 0, time.UTC).Equal(inv.MaturityDate), "maturity %s", inv.MaturityDate)
}

func ptr[T any](v T) *T { return &v }

// --- CancelInvestment ---

func TestCancelInvestment_WindowBoundary(t *testing.T) {
	tests := []struct {
		name    string
		elapsed time.Duration
		wantErr models.ErrorKind
	}{
		{"immediately", 0, ""},
		{"within window", 23 * time.Hour, ""},
		{"exactly 24h", 24 * time.Hour, ""},
		{"24h plus 1ms", 24*time.Hour + time.Millisecond, models.ErrorKindWindowExpired},
		{"two days", 48 * time.Hour, models.ErrorKindWindowExpired},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, store, clock := newTestService(t)
			product := seedProduct(t, store, nil)
			inv, err := svc.CreateInvestment(context.Background(), "user-1", product.ID, dec("2000"))
			require.NoError(t, err)

			clock.Advance(tt.elapsed)
			got, err := svc.CancelInvestment(context.Background(), inv.ID, "user-1")
			if tt.wantErr == "" {
				require.NoError(t, err)
				assert.Equal(t, models.InvestmentStatusCancelled, got.Status)
				return
			}
			require.Error(t, err)
			assert.True(t, models.IsKind(err, tt.wantErr))
			assert.Equal(t, "Cancellation period has expired (24 hours).", err.Error())

			stored, _ := store.InvestmentStore().Get(context.Background(), inv.ID)
			assert.Equal(t, models.InvestmentStatusActive, stored.Status)
		})
	}
}

func TestCancelInvestment_OnlyStatusChanges(t *testing.T) {
	svc, store, clock := newTestService(t)
	product := seedProduct(t, store, nil)
	inv, err := svc.CreateInvestment(context.Background(), "user-1", product.ID, dec("5000"))
	require.NoError(t, err)

	clock.Advance(time.Hour)
	_, err = svc.CancelInvestment(context.Background(), inv.ID, "user-1")
	require.NoError(t, err)

	stored, err := store.InvestmentStore().Get(context.Background(), inv.ID)
	require.NoError(t, err)
	assert.Equal(t, models.InvestmentStatusCancelled, stored.Status)
	assert.True(t, inv.ExpectedReturn.Equal(stored.ExpectedReturn))
	assert.True(t, inv.MaturityDate.Equal(stored.MaturityDate))
	assert.True(t, inv.Amount.Equal(stored.Amount))
	assert.True(t, inv.InvestedAt.Equal(stored.InvestedAt))
}

func TestCancelInvestment_TerminalStates(t *testing.T) {
	for _, status := range []models.InvestmentStatus{models.InvestmentStatusCancelled, models.InvestmentStatusMatured} {
		t.Run(string(status), func(t *testing.T) {
			svc, store, _ := newTestService(t)
			product := seedProduct(t, store, nil)
			inv, err := svc.CreateInvestment(context.Background(), "user-1", product.ID, dec("2000"))
			require.NoError(t, err)

			ok, err := store.InvestmentStore().TransitionStatus(context.Background(), inv.ID, models.InvestmentStatusActive, status)
			require.NoError(t, err)
			require.True(t, ok)

			_, err = svc.CancelInvestment(context.Background(), inv.ID, "user-1")
			require.Error(t, err)
			assert.True(t, models.IsKind(err, models.ErrorKindInvalidState))
			assert.Equal(t, "Only active investments can be cancelled.", err.Error())
		})
	}
}

func TestCancelInvestment_TerminalBeatsExpiredWindow(t *testing.T) {
	svc, store, clock := newTestService(t)
	product := seedProduct(t, store, nil)
	inv, err := svc.CreateInvestment(context.Background(), "user-1", product.ID, dec("2000"))
	require.NoError(t, err)
	_, err = svc.CancelInvestment(context.Background(), inv.ID, "user-1")
	require.NoError(t, err)

	clock.Advance(72 * time.Hour)
	_, err = svc.CancelInvestment(context.Background(), inv.ID, "user-1")
	assert.True(t, models.IsKind(err, models.ErrorKindInvalidState))
}

func TestCancelInvestment_OtherUser(t *testing.T) {
	svc, store, _ := newTestService(t)
	product := seedProduct(t, store, nil)
	inv, err := svc.CreateInvestment(context.Background(), "owner", product.ID, dec("2000"))
	require.NoError(t, err)

	_, err = svc.CancelInvestment(context.Background(), inv.ID, "intruder")
	require.Error(t, err)
	assert.True(t, models.IsKind(err, models.ErrorKindNotFound))
	assert.Equal(t, "Investment not found or you do not have permission to cancel it.", err.Error())

	_, err = svc.CancelInvestment(context.Background(), "missing", "owner")
	assert.True(t, models.IsKind(err, models.ErrorKindNotFound))
}

// racingManager matures the investment between the service's read and its write.
type racingManager struct {
	*memory.Manager
}

type racingInvestments struct {
	interfaces.InvestmentStore
}

func (m racingManager) InvestmentStore() interfaces.InvestmentStore {
	return racingInvestments{m.Manager.InvestmentStore()}
}

func (r racingInvestments) GetForUser(ctx context.Context, id, userID string) (*models.Investment, error) {
	inv, err := r.InvestmentStore.GetForUser(ctx, id, userID)
	if err == nil && inv != nil {
		_, _ = r.InvestmentStore.TransitionStatus(ctx, id, models.InvestmentStatusActive, models.InvestmentStatusMatured)
	}
	return inv, err
}

func TestCancelInvestment_LosesRaceToMaturation(t *testing.T) {
	store := memory.NewManager()
	product := seedProduct(t, store, nil)
	now := time.Now()
	plain := NewService(store, func() time.Time { return now }, Rules{}, common.NewSilentLogger())
	inv, err := plain.CreateInvestment(context.Background(), "user-1", product.ID, dec("2000"))
	require.NoError(t, err)

	racing := NewService(racingManager{store}, func() time.Time { return now }, Rules{}, common.NewSilentLogger())
	_, err = racing.CancelInvestment(context.Background(), inv.ID, "user-1")
	assert.True(t, models.IsKind(err, models.ErrorKindInvalidState))

	stored, _ := store.InvestmentStore().Get(context.Background(), inv.ID)
	assert.Equal(t, models.InvestmentStatusMatured, stored.Status)
}

func TestCancelInvestment_ConfiguredWindow(t *testing.T) {
	store := memory.NewManager()
	product := seedProduct(t, store, nil)
	clock := &fakeClock{t: time.Now()}
	svc := NewService(store, clock.Now, Rules{CancellationWindow: 90 * time.Minute}, common.NewSilentLogger())

	inv, err := svc.CreateInvestment(context.Background(), "user-1", product.ID, dec("2000"))
	require.NoError(t, err)

	clock.Advance(91 * time.Minute)
	_, err = svc.CancelInvestment(context.Background(), inv.ID, "user-1")
	require.Error(t, err)
	assert.Equal(t, "Cancellation period has expired (90 minutes).", err.Error())
}

// --- MatureDue / listing ---

func TestMatureDue(t *testing.T) {
	svc, store, clock := newTestService(t)
	product := seedProduct(t, store, nil)
	ctx := context.Background()

	first, err := svc.CreateInvestment(ctx, "user-1", product.ID, dec("1000"))
	require.NoError(t, err)
	clock.Advance(2 * time.Hour)
	cancelled, err := svc.CreateInvestment(ctx, "user-1", product.ID, dec("1000"))
	require.NoError(t, err)
	_, err = svc.CancelInvestment(ctx, cancelled.ID, "user-1")
	require.NoError(t, err)

	n, err := svc.MatureDue(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	clock.t = first.MaturityDate
	n, err = svc.MatureDue(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	got, err := svc.GetInvestment(ctx, first.ID, "user-1")
	require.NoError(t, err)
	assert.Equal(t, models.InvestmentStatusMatured, got.Status)

	got, err = svc.GetInvestment(ctx, cancelled.ID, "user-1")
	require.NoError(t, err)
	assert.Equal(t, models.InvestmentStatusCancelled, got.Status)

	n, err = svc.MatureDue(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestListInvestments(t *testing.T) {
	svc, store, clock := newTestService(t)
	product := seedProduct(t, store, nil)
	ctx := context.Background()

	older, err := svc.CreateInvestment(ctx, "user-1", product.ID, dec("1000"))
	require.NoError(t, err)
	clock.Advance(time.Minute)
	newer, err := svc.CreateInvestment(ctx, "user-1", product.ID, dec("2000"))
	require.NoError(t, err)
	_, err = svc.CreateInvestment(ctx, "user-2", product.ID, dec("3000"))
	require.NoError(t, err)
	_, err = svc.CancelInvestment(ctx, older.ID, "user-1")
	require.NoError(t, err)

	all, err := svc.ListInvestments(ctx, "user-1", "")
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, newer.ID, all[0].ID)
	assert.NotNil(t, all[0].Product)

	active, err := svc.ListInvestments(ctx, "user-1", models.InvestmentStatusActive)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, newer.ID, active[0].ID)

	_, err = svc.ListInvestments(ctx, "user-1", "pending")
	assert.True(t, models.IsKind(err, models.ErrorKindInvalidInput))

	_, err = svc.GetInvestment(ctx, newer.ID, "user-2")
	assert.True(t, models.IsKind(err, models.ErrorKindNotFound))
}

func TestWindowLabel(t *testing.T) {
	assert.Equal(t, "24 hours", windowLabel(24*time.Hour))
	assert.Equal(t, "1 hour", windowLabel(time.Hour))
	assert.Equal(t, "30 minutes", windowLabel(30*time.Minute))
	assert.Equal(t, "1.5s", windowLabel(1500*time.Millisecond))
}
