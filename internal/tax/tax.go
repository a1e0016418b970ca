// Package tax computes the progressive 종합소득세 figures for a trader
// property's transfer income.
//
// The calculator is a pure function of its inputs. It never writes the
// result into a record; the caller decides whether the advisory figures
// are persisted into the prepaid-tax fields, which the user can always
// overwrite by hand afterwards.
package tax

import (
	"errors"

	"github.com/shopspring/decimal"
)

// ErrNonPositiveIncome reports a calculation request on a transfer
// income of zero or less. No fields are mutated.
var ErrNonPositiveIncome = errors.New("transfer income must be positive")

// Bracket is one row of the progressive rate table. Limit is the
// inclusive upper bound of taxable income for the bracket; 0 means
// unbounded. Deduction is the cumulative 누진공제 amount.
type Bracket struct {
	Limit     int64
	Rate      decimal.Decimal
	Deduction int64
}

// brackets is the 2024 종합소득세율표, ordered ascending by upper limit.
var brackets = []Bracket{
	{Limit: 14_000_000, Rate: decimal.RequireFromString("0.06"), Deduction: 0},
	{Limit: 50_000_000, Rate: decimal.RequireFromString("0.15"), Deduction: 1_260_000},
	{Limit: 88_000_000, Rate: decimal.RequireFromString("0.24"), Deduction: 5_760_000},
	{Limit: 150_000_000, Rate: decimal.RequireFromString("0.35"), Deduction: 15_440_000},
	{Limit: 300_000_000, Rate: decimal.RequireFromString("0.38"), Deduction: 19_940_000},
	{Limit: 500_000_000, Rate: decimal.RequireFromString("0.40"), Deduction: 25_940_000},
	{Limit: 1_000_000_000, Rate: decimal.RequireFromString("0.42"), Deduction: 35_940_000},
	{Limit: 0, Rate: decimal.RequireFromString("0.45"), Deduction: 65_940_000},
}

// Result carries the computed taxes plus the bracket parameters that
// produced them, for display in the calculation notice and the filing
// report.
type Result struct {
	IncomeTax int64           `json:"incomeTax"`
	LocalTax  int64           `json:"localTax"`
	Rate      decimal.Decimal `json:"rate"`
	Deduction int64           `json:"deduction"`
}

// lookup returns the first bracket whose limit covers income.
func lookup(income int64) Bracket {
	for _, b := range brackets {
		if b.Limit == 0 || income <= b.Limit {
			return b
		}
	}
	return brackets[len(brackets)-1]
}

// Compute calculates income tax and the 10% local surtax on a transfer
// income. Under 비교과세 both taxes are forced to zero with no marginal
// computation. Amounts are truncated down to the nearest 10 won and
// floored at zero.
func Compute(transferIncome int64, comparative bool) (Result, error) {
	if comparative {
		return Result{Rate: decimal.Zero}, nil
	}
	if transferIncome <= 0 {
		return Result{}, ErrNonPositiveIncome
	}

	b := lookup(transferIncome)
	raw := decimal.NewFromInt(transferIncome).Mul(b.Rate).Sub(decimal.NewFromInt(b.Deduction))
	incomeTax := truncateToTen(raw)
	if incomeTax < 0 {
		incomeTax = 0
	}
	localTax := truncateToTen(decimal.NewFromInt(incomeTax).Mul(decimal.RequireFromString("0.1")))

	return Result{
		IncomeTax: incomeTax,
		LocalTax:  localTax,
		Rate:      b.Rate,
		Deduction: b.Deduction,
	}, nil
}

// truncateToTen drops the ones digit: 19,560,004 becomes 19,560,000.
func truncateToTen(d decimal.Decimal) int64 {
	return d.Div(decimal.NewFromInt(10)).Floor().Mul(decimal.NewFromInt(10)).IntPart()
}
