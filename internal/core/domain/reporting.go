package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TrialBalanceStatus reports whether the debit and credit grand totals agree.
type TrialBalanceStatus string

const (
	TrialBalanceBalanced   TrialBalanceStatus = "BALANCED"
	TrialBalanceUnbalanced TrialBalanceStatus = "UNBALANCED"
)

// TrialBalanceRow represents a single leaf account in a trial balance report
type TrialBalanceRow struct {
	AccountCode   string          `json:"accountCode"`
	AccountName   string          `json:"accountName"`
	AccountType   AccountType     `json:"accountType"`
	NormalBalance BalanceSide     `json:"normalBalance"`
	TotalDebit    decimal.Decimal `json:"totalDebit"`    // Raw posted debits since inception
	TotalCredit   decimal.Decimal `json:"totalCredit"`   // Raw posted credits since inception
	Balance       decimal.Decimal `json:"balance"`       // Closing balance in the normal direction
	DebitBalance  decimal.Decimal `json:"debitBalance"`  // Balance shown in the debit column
	CreditBalance decimal.Decimal `json:"creditBalance"` // Balance shown in the credit column
}

// TrialBalanceReport is the trial balance as of a date.
type TrialBalanceReport struct {
	AsOf             time.Time          `json:"asOf"`
	Rows             []TrialBalanceRow  `json:"rows"`
	GrandTotalDebit  decimal.Decimal    `json:"grandTotalDebit"`  // Sum of closing balances of DEBIT-normal accounts
	GrandTotalCredit decimal.Decimal    `json:"grandTotalCredit"` // Sum of closing balances of CREDIT-normal accounts
	Status           TrialBalanceStatus `json:"status"`
}

// StatementLine is one account (or synthetic) line in a financial statement.
type StatementLine struct {
	AccountCode string          `json:"accountCode,omitempty"`
	Name        string          `json:"name"`
	Amount      decimal.Decimal `json:"amount"`
	Synthetic   bool            `json:"synthetic,omitempty"`
}

// IncomeStatementReport summarises revenue and expense over a period.
type IncomeStatementReport struct {
	From         time.Time       `json:"from"`
	To           time.Time       `json:"to"`
	Revenue      []StatementLine `json:"revenue"`
	Expenses     []StatementLine `json:"expenses"`
	TotalRevenue decimal.Decimal `json:"totalRevenue"`
	TotalExpense decimal.Decimal `json:"totalExpense"`
	NetIncome    decimal.Decimal `json:"netIncome"`
}

// BalanceSheetReport represents a balance sheet report
type BalanceSheetReport struct {
	AsOf                time.Time       `json:"asOf"`
	FiscalYearStart     time.Time       `json:"fiscalYearStart"`
	Assets              []StatementLine `json:"assets"`
	Liabilities         []StatementLine `json:"liabilities"`
	Equity              []StatementLine `json:"equity"`
	TotalAssets         decimal.Decimal `json:"totalAssets"`
	TotalLiabilities    decimal.Decimal `json:"totalLiabilities"`
	TotalEquity         decimal.Decimal `json:"totalEquity"` // Includes the synthetic earnings lines
	CurrentYearEarnings decimal.Decimal `json:"currentYearEarnings"`
	PriorYearsEarnings  decimal.Decimal `json:"priorYearsEarnings"` // Net income of years not yet closed
	Balanced            bool            `json:"balanced"`
}
