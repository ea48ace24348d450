package dto

import (
	"github.com/SscSPs/ledger_engine/internal/core/domain"
	"github.com/shopspring/decimal"
)

// TrialBalanceRowResponse represents a row in the trial balance report response
type TrialBalanceRowResponse struct {
	AccountCode   string          `json:"accountCode"`
	AccountName   string          `json:"accountName"`
	AccountType   string          `json:"accountType"`
	NormalBalance string          `json:"normalBalance"`
	TotalDebit    decimal.Decimal `json:"totalDebit"`
	TotalCredit   decimal.Decimal `json:"totalCredit"`
	Balance       decimal.Decimal `json:"balance"`
	Debit         decimal.Decimal `json:"debit"`
	Credit        decimal.Decimal `json:"credit"`
}

// TrialBalanceResponse represents the trial balance report response
type TrialBalanceResponse struct {
	AsOf   string                    `json:"asOf"`
	Rows   []TrialBalanceRowResponse `json:"rows"`
	Status string                    `json:"status"`
	Totals struct {
		Debit  decimal.Decimal `json:"debit"`
		Credit decimal.Decimal `json:"credit"`
	} `json:"totals"`
}

// AccountAmountResponse represents an account with its amount in a financial report
type AccountAmountResponse struct {
	AccountCode string          `json:"accountCode,omitempty"`
	Name        string          `json:"name"`
	Amount      decimal.Decimal `json:"amount"`
	Synthetic   bool            `json:"synthetic,omitempty"`
}

// IncomeStatementResponse represents the income statement report response
type IncomeStatementResponse struct {
	FromDate string                  `json:"fromDate"`
	ToDate   string                  `json:"toDate"`
	Revenue  []AccountAmountResponse `json:"revenue"`
	Expenses []AccountAmountResponse `json:"expenses"`
	Summary  struct {
		TotalRevenue  decimal.Decimal `json:"totalRevenue"`
		TotalExpenses decimal.Decimal `json:"totalExpenses"`
		NetIncome     decimal.Decimal `json:"netIncome"`
	} `json:"summary"`
}

// BalanceSheetResponse represents the balance sheet report response
type BalanceSheetResponse struct {
	AsOf            string                  `json:"asOf"`
	FiscalYearStart string                  `json:"fiscalYearStart"`
	Assets          []AccountAmountResponse `json:"assets"`
	Liabilities     []AccountAmountResponse `json:"liabilities"`
	Equity          []AccountAmountResponse `json:"equity"`
	Summary         struct {
		TotalAssets         decimal.Decimal `json:"totalAssets"`
		TotalLiabilities    decimal.Decimal `json:"totalLiabilities"`
		TotalEquity         decimal.Decimal `json:"totalEquity"`
		CurrentYearEarnings decimal.Decimal `json:"currentYearEarnings"`
		PriorYearsEarnings  decimal.Decimal `json:"priorYearsEarnings"`
		Balanced            bool            `json:"balanced"`
	} `json:"summary"`
}

func toAmountResponses(lines []domain.StatementLine) []AccountAmountResponse {
	res := make([]AccountAmountResponse, len(lines))
	for i, l := range lines {
		res[i] = AccountAmountResponse{
			AccountCode: l.AccountCode,
			Name:        l.Name,
			Amount:      l.Amount,
			Synthetic:   l.Synthetic,
		}
	}
	return res
}

// ToTrialBalanceResponse converts a domain trial balance to a DTO response
func ToTrialBalanceResponse(report *domain.TrialBalanceReport) TrialBalanceResponse {
	response := TrialBalanceResponse{
		AsOf:   report.AsOf.Format(DateLayout),
		Rows:   make([]TrialBalanceRowResponse, len(report.Rows)),
		Status: string(report.Status),
	}

	for i, row := range report.Rows {
		response.Rows[i] = TrialBalanceRowResponse{
			AccountCode:   row.AccountCode,
			AccountName:   row.AccountName,
			AccountType:   string(row.AccountType),
			NormalBalance: string(row.NormalBalance),
			TotalDebit:    row.TotalDebit,
			TotalCredit:   row.TotalCredit,
			Balance:       row.Balance,
			Debit:         row.DebitBalance,
			Credit:        row.CreditBalance,
		}
	}

	response.Totals.Debit = report.GrandTotalDebit
	response.Totals.Credit = report.GrandTotalCredit

	return response
}

// ToIncomeStatementResponse converts a domain income statement to a DTO response
func ToIncomeStatementResponse(report *domain.IncomeStatementReport) IncomeStatementResponse {
	response := IncomeStatementResponse{
		FromDate: report.From.Format(DateLayout),
		ToDate:   report.To.Format(DateLayout),
		Revenue:  toAmountResponses(report.Revenue),
		Expenses: toAmountResponses(report.Expenses),
	}
	response.Summary.TotalRevenue = report.TotalRevenue
	response.Summary.TotalExpenses = report.TotalExpense
	response.Summary.NetIncome = report.NetIncome
	return response
}

// ToBalanceSheetResponse converts a domain balance sheet report to a DTO response
func ToBalanceSheetResponse(report *domain.BalanceSheetReport) BalanceSheetResponse {
	response := BalanceSheetResponse{
		AsOf:            report.AsOf.Format(DateLayout),
		FiscalYearStart: report.FiscalYearStart.Format(DateLayout),
		Assets:          toAmountResponses(report.Assets),
		Liabilities:     toAmountResponses(report.Liabilities),
		Equity:          toAmountResponses(report.Equity),
	}

	response.Summary.TotalAssets = report.TotalAssets
	response.Summary.TotalLiabilities = report.TotalLiabilities
	response.Summary.TotalEquity = report.TotalEquity
	response.Summary.CurrentYearEarnings = report.CurrentYearEarnings
	response.Summary.PriorYearsEarnings = report.PriorYearsEarnings
	response.Summary.Balanced = report.Balanced

	return response
}
