package accounting

import (
	"github.com/SscSPs/ledger_engine/internal/core/domain"
	"github.com/shopspring/decimal"
)

// SplitAmount places a signed amount on side, or its absolute value on the opposite side
// when negative. It returns (debit, credit).
func SplitAmount(side domain.BalanceSide, amount decimal.Decimal) (decimal.Decimal, decimal.Decimal) {
	if amount.IsNegative() {
		side = side.Opposite()
		amount = amount.Abs()
	}
	if side == domain.Debit {
		return amount, decimal.Zero
	}
	return decimal.Zero, amount
}

// NetIncome is revenue minus expense, both given in their own normal direction.
func NetIncome(revenue, expense decimal.Decimal) decimal.Decimal {
	return revenue.Sub(expense)
}

// SumActivity adds the raw activity of every entry in the map.
func SumActivity(activity map[string]domain.PeriodActivity) domain.PeriodActivity {
	var total domain.PeriodActivity
	for _, a := range activity {
		total = total.Add(a)
	}
	return total
}
