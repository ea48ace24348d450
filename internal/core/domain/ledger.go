package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// SignedBalance expresses raw debit and credit sums in the given normal direction.
func SignedBalance(side BalanceSide, debit, credit decimal.Decimal) decimal.Decimal {
	if side == Debit {
		return debit.Sub(credit)
	}
	return credit.Sub(debit)
}

// ConvertBalance re-expresses a balance held in direction from into direction to.
func ConvertBalance(balance decimal.Decimal, from, to BalanceSide) decimal.Decimal {
	if from == to {
		return balance
	}
	return balance.Neg()
}

// DateOnly truncates t to midnight UTC of its calendar day.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// FiscalYearBounds returns the first and last day of a fiscal year. Fiscal years follow the calendar.
func FiscalYearBounds(year int) (time.Time, time.Time) {
	return time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC),
		time.Date(year, time.December, 31, 0, 0, 0, 0, time.UTC)
}

// FiscalYearStart returns the first day of the fiscal year containing t.
func FiscalYearStart(t time.Time) time.Time {
	start, _ := FiscalYearBounds(t.Year())
	return start
}

// PeriodActivity holds raw, undirected debit and credit sums for an account over a period.
type PeriodActivity struct {
	AccountCode string          `json:"accountCode"`
	TotalDebit  decimal.Decimal `json:"totalDebit"`
	TotalCredit decimal.Decimal `json:"totalCredit"`
}

// IsZero reports whether the account saw no posted amounts in the period.
func (p PeriodActivity) IsZero() bool {
	return p.TotalDebit.IsZero() && p.TotalCredit.IsZero()
}

// Add accumulates another activity into p.
func (p PeriodActivity) Add(o PeriodActivity) PeriodActivity {
	p.TotalDebit = p.TotalDebit.Add(o.TotalDebit)
	p.TotalCredit = p.TotalCredit.Add(o.TotalCredit)
	return p
}

// WindowActivity splits one account's POSTED activity at a period start.
type WindowActivity struct {
	AccountCode string
	Opening     PeriodActivity // dated before the period start
	Period      PeriodActivity // dated on or after the period start
}

// AccountBalance is the opening balance, period activity and closing balance of one account.
// Balances are expressed in the account's normal direction.
type AccountBalance struct {
	Account  Account         `json:"account"`
	From     *time.Time      `json:"from,omitempty"` // Nil means since inception
	To       time.Time       `json:"to"`
	Opening  decimal.Decimal `json:"opening"`
	Activity PeriodActivity  `json:"activity"`
	Closing  decimal.Decimal `json:"closing"`
}

// LedgerLine is one posted journal line seen from a single account.
type LedgerLine struct {
	JournalID       string          `json:"journalID"`
	JournalNumber   string          `json:"journalNumber"`
	JournalDate     time.Time       `json:"journalDate"`
	ReferenceNumber string          `json:"referenceNumber"`
	Description     string          `json:"description"`
	Memo            string          `json:"memo"`
	Debit           decimal.Decimal `json:"debit"`
	Credit          decimal.Decimal `json:"credit"`
	RunningBalance  decimal.Decimal `json:"runningBalance"`
}

// GeneralLedger is the account card for a period.
type GeneralLedger struct {
	Account     Account         `json:"account"`
	From        time.Time       `json:"from"`
	To          time.Time       `json:"to"`
	Opening     decimal.Decimal `json:"opening"`
	Lines       []LedgerLine    `json:"lines"`
	TotalDebit  decimal.Decimal `json:"totalDebit"`
	TotalCredit decimal.Decimal `json:"totalCredit"`
	Closing     decimal.Decimal `json:"closing"`
}
