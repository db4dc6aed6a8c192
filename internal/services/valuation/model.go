// Package valuation provides the pricing strategies used to mark investments
// to market. Simulated stands in until a pricing feed exists.
package valuation

import (
	"math/rand"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/bobmcallan/gripinvest/internal/models"
)

// Model supplies the market-dependent inputs of portfolio valuation.
type Model interface {
	// PriceAdjustment returns the multiplier applied to an investment's principal.
	PriceAdjustment(inv *models.Investment) decimal.Decimal

	// MarketFluctuation returns the relative move applied to the running value for a month.
	MarketFluctuation(month time.Time) decimal.Decimal

	// DailyChange returns today's headline change percentage in [-1, 1].
	DailyChange() decimal.Decimal
}

// Model names accepted by New.
const (
	ModelSimulated = "simulated"
	ModelBook      = "book"
)

var (
	adjustmentCentre  = decimal.RequireFromString("0.4")
	adjustmentScale   = decimal.RequireFromString("0.2")
	fluctuationCentre = decimal.RequireFromString("0.45")
	fluctuationScale  = decimal.RequireFromString("0.05")
	one               = decimal.NewFromInt(1)
	two               = decimal.NewFromInt(2)
)

// Simulated draws every figure from a seeded pseudo-random source.
//
//	PriceAdjustment   1 + (r - 0.4) * 0.2   in [0.92, 1.12)
//	MarketFluctuation (r - 0.45) * 0.05     in [-0.0225, 0.0275)
//	DailyChange       r * 2 - 1             in [-1, 1)
type Simulated struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewSimulated creates a simulated model. Seed 0 seeds from the clock.
func NewSimulated(seed int64) *Simulated {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Simulated{rng: rand.New(rand.NewSource(seed))}
}

func (s *Simulated) float() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return decimal.NewFromFloat(s.rng.Float64())
}

func (s *Simulated) PriceAdjustment(_ *models.Investment) decimal.Decimal {
	return one.Add(s.float().Sub(adjustmentCentre).Mul(adjustmentScale))
}

func (s *Simulated) MarketFluctuation(_ time.Time) decimal.Decimal {
	return s.float().Sub(fluctuationCentre).Mul(fluctuationScale)
}

func (s *Simulated) DailyChange() decimal.Decimal {
	return s.float().Mul(two).Sub(one)
}

// Fixed returns the same figures every time. It makes valuation deterministic.
type Fixed struct {
	Adjustment  decimal.Decimal
	Fluctuation decimal.Decimal
	Change      decimal.Decimal
}

// Book values every investment at its principal with a flat market.
func Book() *Fixed {
	return &Fixed{Adjustment: one, Fluctuation: decimal.Zero, Change: decimal.Zero}
}

func (f *Fixed) PriceAdjustment(_ *models.Investment) decimal.Decimal {
	return f.Adjustment
}

func (f *Fixed) MarketFluctuation(_ time.Time) decimal.Decimal {
	return f.Fluctuation
}

func (f *Fixed) DailyChange() decimal.Decimal {
	return f.Change
}

// New builds the model selected by name; unknown names fall back to simulated.
func New(name string, seed int64) Model {
	if name == ModelBook {
		return Book()
	}
	return NewSimulated(seed)
}

var (
	_ Model = (*Simulated)(nil)
	_ Model = (*Fixed)(nil)
)
