package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// JournalStatus indicates the state of a journal entry.
type JournalStatus string

const (
	Draft  JournalStatus = "DRAFT"
	Posted JournalStatus = "POSTED"
	Void   JournalStatus = "VOID"
)

// CanTransitionTo reports whether the state machine DRAFT -> POSTED -> VOID allows the move.
func (s JournalStatus) CanTransitionTo(next JournalStatus) bool {
	switch s {
	case Draft:
		return next == Posted
	case Posted:
		return next == Void
	}
	return false
}

// MinJournalLines is the minimum number of lines an entry must carry.
const MinJournalLines = 2

// MoneyScale is the number of fractional digits stored for every amount.
const MoneyScale = 2

// HasMoneyScale reports whether d can be stored without rounding.
func HasMoneyScale(d decimal.Decimal) bool {
	return d.Equal(d.Round(MoneyScale))
}

// FormatJournalNumber renders a per-year sequence as JE-YYYY-NNNN.
func FormatJournalNumber(year int, seq int64) string {
	return fmt.Sprintf("JE-%d-%04d", year, seq)
}

// JournalEntry is a dated, numbered set of debit and credit lines.
type JournalEntry struct {
	JournalID       string        `json:"journalID"`       // Primary Key (UUID)
	JournalNumber   string        `json:"journalNumber"`   // JE-YYYY-NNNN, unique
	JournalDate     time.Time     `json:"journalDate"`     // Accounting date (day precision)
	ReferenceNumber string        `json:"referenceNumber"` // Free text, non-unique
	Description     string        `json:"description"`
	Status          JournalStatus `json:"status"`
	PostedAt        *time.Time    `json:"postedAt,omitempty"`
	PostedBy        string        `json:"postedBy,omitempty"`
	VoidedAt        *time.Time    `json:"voidedAt,omitempty"`
	VoidedBy        string        `json:"voidedBy,omitempty"`
	VoidReason      string        `json:"voidReason,omitempty"`
	Lines           []JournalLine `json:"lines"`
	AuditFields
}

// JournalLine is a single debit or credit against one account.
type JournalLine struct {
	LineID      string          `json:"lineID"`
	JournalID   string          `json:"journalID"`
	LineNo      int             `json:"lineNo"` // 1-based order within the entry
	AccountCode string          `json:"accountCode"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
	Memo        string          `json:"memo"`
}

// Side returns the side carrying the amount. The line must be well formed.
func (l JournalLine) Side() BalanceSide {
	if l.Debit.IsPositive() {
		return Debit
	}
	return Credit
}

// Amount returns the positive amount of the line.
func (l JournalLine) Amount() decimal.Decimal {
	if l.Debit.IsPositive() {
		return l.Debit
	}
	return l.Credit
}

// IsWellFormed reports whether exactly one side is strictly positive and the other exactly zero.
func (l JournalLine) IsWellFormed() bool {
	switch {
	case l.Debit.IsPositive() && l.Credit.IsZero():
		return true
	case l.Credit.IsPositive() && l.Debit.IsZero():
		return true
	}
	return false
}

// Totals returns sum(debit) and sum(credit) across the lines.
func (e JournalEntry) Totals() (decimal.Decimal, decimal.Decimal) {
	debit, credit := decimal.Zero, decimal.Zero
	for _, l := range e.Lines {
		debit = debit.Add(l.Debit)
		credit = credit.Add(l.Credit)
	}
	return debit, credit
}

// IsBalanced reports exact decimal equality of the debit and credit sums.
func (e JournalEntry) IsBalanced() bool {
	debit, credit := e.Totals()
	return debit.Equal(credit)
}

// AccountCodes returns the distinct account codes referenced by the lines, in line order.
func (e JournalEntry) AccountCodes() []string {
	seen := make(map[string]struct{}, len(e.Lines))
	codes := make([]string, 0, len(e.Lines))
	for _, l := range e.Lines {
		if _, ok := seen[l.AccountCode]; ok {
			continue
		}
		seen[l.AccountCode] = struct{}{}
		codes = append(codes, l.AccountCode)
	}
	return codes
}

// JournalFilter narrows entry listings. Zero values mean "no filter".
type JournalFilter struct {
	Status          *JournalStatus
	From            *time.Time
	To              *time.Time
	ReferencePrefix string
}

// DraftInput is the caller-supplied content of a draft entry.
type DraftInput struct {
	JournalDate     time.Time
	ReferenceNumber string
	Description     string
	Lines           []LineInput
}

// LineInput is one caller-supplied journal line.
type LineInput struct {
	AccountCode string
	Debit       decimal.Decimal
	Credit      decimal.Decimal
	Memo        string
}

// AccountImpact is the effect posting an entry would have on one account.
type AccountImpact struct {
	AccountCode   string          `json:"accountCode"`
	AccountName   string          `json:"accountName"`
	NormalBalance BalanceSide     `json:"normalBalance"`
	Debit         decimal.Decimal `json:"debit"`
	Credit        decimal.Decimal `json:"credit"`
	BalanceBefore decimal.Decimal `json:"balanceBefore"`
	BalanceAfter  decimal.Decimal `json:"balanceAfter"`
}
