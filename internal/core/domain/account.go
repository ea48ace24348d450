package domain

import (
	"strings"
)

// AccountType defines the fundamental accounting type of an account.
type AccountType string

const (
	Asset     AccountType = "ASSET"
	Liability AccountType = "LIABILITY"
	Equity    AccountType = "EQUITY"
	Revenue   AccountType = "REVENUE"
	Expense   AccountType = "EXPENSE"
)

// AccountTypes lists every account type in statement order.
var AccountTypes = []AccountType{Asset, Liability, Equity, Revenue, Expense}

// IsValid reports whether t is one of the five account types.
func (t AccountType) IsValid() bool {
	switch t {
	case Asset, Liability, Equity, Revenue, Expense:
		return true
	}
	return false
}

// IsIncomeStatement reports whether the type is zeroed at fiscal year end.
func (t AccountType) IsIncomeStatement() bool {
	return t == Revenue || t == Expense
}

// BalanceSide indicates whether an amount sits on the debit or the credit side.
type BalanceSide string

const (
	Debit  BalanceSide = "DEBIT"
	Credit BalanceSide = "CREDIT"
)

// IsValid reports whether s is DEBIT or CREDIT.
func (s BalanceSide) IsValid() bool {
	return s == Debit || s == Credit
}

// Opposite returns the other side.
func (s BalanceSide) Opposite() BalanceSide {
	if s == Debit {
		return Credit
	}
	return Debit
}

// NormalBalanceFor returns the normal balance side fixed to an account type.
// ASSET and EXPENSE increase on the debit side; LIABILITY, EQUITY and REVENUE on the credit side.
func NormalBalanceFor(t AccountType) (BalanceSide, bool) {
	switch t {
	case Asset, Expense:
		return Debit, true
	case Liability, Equity, Revenue:
		return Credit, true
	}
	return "", false
}

// CodeSeparator separates the segments of a hierarchical account code.
const CodeSeparator = "."

// Account represents a node in the chart of accounts.
// Code is the business key: dotted, globally unique and immutable once created.
type Account struct {
	AccountID     string      `json:"accountID"`     // Surrogate key (UUID)
	Code          string      `json:"code"`          // e.g. "1.1.01"
	Name          string      `json:"name"`          // Display name
	Description   string      `json:"description"`   // Nullable user description
	AccountType   AccountType `json:"accountType"`   // Inherited from the root ancestor for non-root accounts
	NormalBalance BalanceSide `json:"normalBalance"` // Always NormalBalanceFor(AccountType)
	ParentCode    string      `json:"parentCode"`    // Empty for root accounts
	Level         int         `json:"level"`         // 1 for roots
	IsHeader      bool        `json:"isHeader"`      // True while the account has children
	Permanent     bool        `json:"permanent"`     // Survives fiscal year closing (e.g. retained earnings)
	IsActive      bool        `json:"isActive"`      // Soft-disable flag
	AuditFields
}

// IsRoot reports whether the account has no parent.
func (a Account) IsRoot() bool {
	return a.ParentCode == ""
}

// IsPostable reports whether journal lines may reference the account when posting.
func (a Account) IsPostable() bool {
	return a.IsActive && !a.IsHeader
}

// ValidCode reports whether code is made of non-empty digit segments separated by dots.
func ValidCode(code string) bool {
	if code == "" {
		return false
	}
	for _, seg := range strings.Split(code, CodeSeparator) {
		if seg == "" {
			return false
		}
		for _, r := range seg {
			if r < '0' || r > '9' {
				return false
			}
		}
	}
	return true
}

// IsChildCode reports whether child sits directly or indirectly under parent by code prefix.
func IsChildCode(parent, child string) bool {
	return strings.HasPrefix(child, parent+CodeSeparator)
}

// AccountFilter narrows account listings. Zero values mean "no filter".
type AccountFilter struct {
	AccountType *AccountType
	ParentCode  *string
	RootsOnly   bool
	ActiveOnly  bool
	LeafOnly    bool
	Search      string
	Limit       int
	Offset      int
}
