package query

import (
	"math"

	"github.com/shopspring/decimal"
)

// Round2 rounds half-up to two decimals. NaN and infinities become 0.
func Round2(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}

// Percent returns part/whole*100 rounded to two decimals, 0 when whole is 0.
func Percent(part, whole float64) float64 {
	if whole == 0 {
		return 0
	}
	return decimal.NewFromFloat(part).
		Div(decimal.NewFromFloat(whole)).
		Mul(decimal.NewFromInt(100)).
		Round(2).
		InexactFloat64()
}

// Average returns sum/n rounded to two decimals, 0 for an empty group.
func Average(sum float64, n int) float64 {
	if n == 0 {
		return 0
	}
	return decimal.NewFromFloat(sum).Div(decimal.NewFromInt(int64(n))).Round(2).InexactFloat64()
}

// sum adds with decimal precision so totals of currency values do not drift.
type sum struct {
	d decimal.Decimal
}

func (s *sum) Add(v float64) {
	s.d = s.d.Add(decimal.NewFromFloat(v))
}

func (s *sum) AddProduct(qty int, price float64) {
	s.d = s.d.Add(decimal.NewFromInt(int64(qty)).Mul(decimal.NewFromFloat(price)))
}

func (s sum) Float() float64 {
	return s.d.InexactFloat64()
}
