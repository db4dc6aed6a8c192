package dashboard

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/gripinvest/internal/common"
	"github.com/bobmcallan/gripinvest/internal/models"
	"github.com/bobmcallan/gripinvest/internal/services/insight"
	"github.com/bobmcallan/gripinvest/internal/services/valuation"
	"github.com/bobmcallan/gripinvest/internal/storage/memory"
)

// countingGenerator records every prompt it receives.
type countingGenerator struct {
	mu      sync.Mutex
	prompts []string
	reply   string
	err     error
}

func (g *countingGenerator) GenerateContent(_ context.Context, prompt string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.prompts = append(g.prompts, prompt)
	return g.reply, g.err
}

func (g *countingGenerator) calls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.prompts)
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func setup(t *testing.T, gen *countingGenerator, model valuation.Model) (*Service, *memory.Manager, map[models.InvestmentType]string) {
	t.Helper()
	store := memory.NewManager()
	ids := map[models.InvestmentType]string{}
	for _, typ := range []models.InvestmentType{models.InvestmentTypeBond, models.InvestmentTypeETF, models.InvestmentTypeMF} {
		p := &models.Product{
			Name:           strings.ToUpper(string(typ)) + " Fund",
			InvestmentType: typ,
			TenureMonths:   12,
			AnnualYield:    dec("6"),
			RiskLevel:      models.RiskModerate,
			MinInvestment:  dec("1"),
		}
		require.NoError(t, store.ProductStore().Create(context.Background(), p))
		ids[typ] = p.ID
	}
	delegator := insight.NewDelegator(gen, time.Second, common.NewSilentLogger())
	return NewService(store, model, delegator, common.NewSilentLogger()), store, ids
}

func invest(t *testing.T, store *memory.Manager, userID, productID, amount string, at time.Time) *models.Investment {
	t.Helper()
	inv := &models.Investment{
		UserID:     userID,
		ProductID:  productID,
		Amount:     dec(amount),
		InvestedAt: at,
		Status:     models.InvestmentStatusActive,
	}
	require.NoError(t, store.InvestmentStore().Create(context.Background(), inv))
	return inv
}

func TestFetchDashboardSummary_Empty(t *testing.T) {
	gen := &countingGenerator{reply: "should not be used"}
	svc, _, _ := setup(t, gen, valuation.NewSimulated(1))

	summary, err := svc.FetchDashboardSummary(context.Background(), "new-user")
	require.NoError(t, err)

	assert.True(t, summary.TotalValue.IsZero())
	assert.True(t, summary.ValueChange.IsZero())
	assert.Empty(t, summary.AssetDistribution)
	assert.Empty(t, summary.RecentActivity)
	assert.Equal(t, models.DashboardEmptyInsight, summary.AIInsight)
	assert.Equal(t, 0, gen.calls())
}

func TestFetchDashboardSummary_OnlyInactive(t *testing.T) {
	gen := &countingGenerator{reply: "nope"}
	svc, store, ids := setup(t, gen, valuation.Book())
	inv := invest(t, store, "u1", ids[models.InvestmentTypeBond], "1000", time.Now())
	_, err := store.InvestmentStore().TransitionStatus(context.Background(), inv.ID, models.InvestmentStatusActive, models.InvestmentStatusCancelled)
	require.NoError(t, err)

	summary, err := svc.FetchDashboardSummary(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, models.DashboardEmptyInsight, summary.AIInsight)
	assert.Equal(t, 0, gen.calls())
}

func TestFetchDashboardSummary_Distribution(t *testing.T) {
	gen := &countingGenerator{reply: "  Consider adding some fixed income.  "}
	svc, store, ids := setup(t, gen, valuation.Book())
	base := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	invest(t, store, "u1", ids[models.InvestmentTypeBond], "1000", base)
	invest(t, store, "u1", ids[models.InvestmentTypeBond], "500", base.Add(time.Hour))
	invest(t, store, "u1", ids[models.InvestmentTypeETF], "1000", base.Add(2*time.Hour))
	invest(t, store, "u1", ids[models.InvestmentTypeMF], "500", base.Add(3*time.Hour))

	summary, err := svc.FetchDashboardSummary(context.Background(), "u1")
	require.NoError(t, err)

	assert.True(t, dec("3000").Equal(summary.TotalValue))
	assert.Equal(t, "Consider adding some fixed income.", summary.AIInsight)
	assert.Equal(t, 1, gen.calls())

	got := map[string]models.DistributionSlice{}
	for _, d := range summary.AssetDistribution {
		got[d.Name] = d
	}
	require.Len(t, got, 3)
	assert.True(t, dec("50").Equal(got["BOND"].Value))
	assert.Equal(t, "#3b82f6", got["BOND"].Color)
	assert.True(t, dec("33.33").Equal(got["ETF"].Value))
	assert.Equal(t, "#14b8a6", got["ETF"].Color)
	assert.True(t, dec("16.67").Equal(got["MF"].Value))
	assert.Equal(t, "#f97316", got["MF"].Color)

	prompt := gen.prompts[0]
	assert.Contains(t, prompt, "16.67% in MF")
	assert.Contains(t, prompt, "33.33% in ETF")
	assert.Contains(t, prompt, "50% in BOND")
}

func TestFetchDashboardSummary_BookValueIgnoresModel(t *testing.T) {
	gen := &countingGenerator{reply: "ok"}
	model := &valuation.Fixed{Adjustment: dec("3"), Change: dec("0.456")}
	svc, store, ids := setup(t, gen, model)
	invest(t, store, "u1", ids[models.InvestmentTypeETF], "1234.56", time.Now())

	summary, err := svc.FetchDashboardSummary(context.Background(), "u1")
	require.NoError(t, err)
	assert.True(t, dec("1234.56").Equal(summary.TotalValue))
	assert.True(t, dec("0.46").Equal(summary.ValueChange))
}

func TestFetchDashboardSummary_ValueChangeClamped(t *testing.T) {
	svc, store, ids := setup(t, &countingGenerator{reply: "ok"}, &valuation.Fixed{Adjustment: dec("1"), Change: dec("-7")})
	invest(t, store, "u1", ids[models.InvestmentTypeETF], "10", time.Now())

	summary, err := svc.FetchDashboardSummary(context.Background(), "u1")
	require.NoError(t, err)
	assert.True(t, dec("-1").Equal(summary.ValueChange))
}

func TestFetchDashboardSummary_SimulatedValueChangeInRange(t *testing.T) {
	svc, store, ids := setup(t, &countingGenerator{reply: "ok"}, valuation.NewSimulated(5))
	invest(t, store, "u1", ids[models.InvestmentTypeETF], "10", time.Now())

	for i := 0; i < 50; i++ {
		summary, err := svc.FetchDashboardSummary(context.Background(), "u1")
		require.NoError(t, err)
		assert.True(t, summary.ValueChange.GreaterThanOrEqual(dec("-1")))
		assert.True(t, summary.ValueChange.LessThanOrEqual(dec("1")))
	}
}

func TestFetchDashboardSummary_GeneratorFailure(t *testing.T) {
	gen := &countingGenerator{err: errors.New("503 overloaded")}
	svc, store, ids := setup(t, gen, valuation.Book())
	invest(t, store, "u1", ids[models.InvestmentTypeBond], "1000", time.Now())

	summary, err := svc.FetchDashboardSummary(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, models.DashboardFallbackInsight, summary.AIInsight)
	assert.Equal(t, 1, gen.calls())
}

func TestFetchDashboardSummary_RecentActivity(t *testing.T) {
	svc, store, ids := setup(t, &countingGenerator{reply: "ok"}, valuation.Book())
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	var created []*models.Investment
	for i := 0; i < 7; i++ {
		created = append(created, invest(t, store, "u1", ids[models.InvestmentTypeETF], "100", base.AddDate(0, 0, i)))
	}

	summary, err := svc.FetchDashboardSummary(context.Background(), "u1")
	require.NoError(t, err)

	require.Len(t, summary.RecentActivity, RecentActivityLimit)
	assert.Equal(t, created[6].ID, summary.RecentActivity[0].ID)
	assert.Equal(t, created[2].ID, summary.RecentActivity[4].ID)
	assert.Equal(t, "ETF", summary.RecentActivity[0].Type)
	assert.Equal(t, "ETF Fund", summary.RecentActivity[0].Product)
	assert.Equal(t, models.InvestmentStatusActive, summary.RecentActivity[0].Status)
	assert.True(t, dec("100").Equal(summary.RecentActivity[0].Amount))
}
