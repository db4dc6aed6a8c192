package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// InvestmentStatus is the lifecycle state of an investment.
// active -> cancelled and active -> matured are the only transitions.
type InvestmentStatus string

const (
	InvestmentStatusActive    InvestmentStatus = "active"
	InvestmentStatusCancelled InvestmentStatus = "cancelled"
	InvestmentStatusMatured   InvestmentStatus = "matured"
)

// Valid reports whether s is a known status.
func (s InvestmentStatus) Valid() bool {
	switch s {
	case InvestmentStatusActive, InvestmentStatusCancelled, InvestmentStatusMatured:
		return true
	}
	return false
}

// Terminal reports whether no further transition is possible from s.
func (s InvestmentStatus) Terminal() bool {
	return s == InvestmentStatusCancelled || s == InvestmentStatusMatured
}

// Investment is a user's principal placed in a single product.
type Investment struct {
	ID             string           `json:"id"`
	UserID         string           `json:"user_id"`
	ProductID      string           `json:"product_id"`
	Amount         decimal.Decimal  `json:"amount"`
	InvestedAt     time.Time        `json:"invested_at"`
	MaturityDate   time.Time        `json:"maturity_date"`
	ExpectedReturn decimal.Decimal  `json:"expected_return"`
	Status         InvestmentStatus `json:"status"`
	Product        *Product         `json:"product,omitempty"` // populated by joins, never persisted
}

// AddMonths shifts t forward by n calendar months keeping the day of month,
// clamped to the last day of the target month (Jan 31 + 1 -> Feb 28/29).
// Time of day and location are preserved.
func AddMonths(t time.Time, n int) time.Time {
	y, m, d := t.Date()
	first := time.Date(y, m, 1, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
	target := first.AddDate(0, n, 0)
	if last := daysIn(target.Year(), target.Month(), t.Location()); d > last {
		d = last
	}
	return target.AddDate(0, 0, d-1)
}

func daysIn(year int, month time.Month, loc *time.Location) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, loc).Day()
}

var (
	hundred = decimal.NewFromInt(100)
	twelve  = decimal.NewFromInt(12)
)

// ExpectedReturn is simple interest on amount at annualYield percent, prorated
// over tenureMonths and rounded to currency precision.
func ExpectedReturn(amount, annualYield decimal.Decimal, tenureMonths int) decimal.Decimal {
	return amount.
		Mul(annualYield).
		Mul(decimal.NewFromInt(int64(tenureMonths))).
		Div(hundred.Mul(twelve)).
		Round(2)
}
