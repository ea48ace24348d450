package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/SscSPs/ledger_engine/internal/apperrors"
	"github.com/SscSPs/ledger_engine/internal/core/domain"
	portssvc "github.com/SscSPs/ledger_engine/internal/core/ports/services"
	"github.com/SscSPs/ledger_engine/internal/utils/accounting"
	"github.com/shopspring/decimal"
)

const (
	currentYearEarningsLabel = "Current year earnings"
	priorYearsEarningsLabel  = "Unclosed prior years earnings"
)

// reportingService implements the ReportingSvc interface
type reportingService struct {
	BaseService
	ledger portssvc.LedgerSvcFacade
}

// ReportingServiceOption is a functional option for configuring the reporting service
type ReportingServiceOption func(*reportingService)

// WithReportingBase sets shared service dependencies.
func WithReportingBase(base BaseService) ReportingServiceOption {
	return func(s *reportingService) {
		s.BaseService = base
	}
}

// NewReportingService creates a new reporting service with the provided options
func NewReportingService(ledger portssvc.LedgerSvcFacade, options ...ReportingServiceOption) portssvc.ReportingSvc {
	svc := &reportingService{
		ledger: ledger,
	}

	// Apply all options
	for _, option := range options {
		option(svc)
	}

	return svc
}

// Ensure reportingService implements the ReportingSvc interface
var _ portssvc.ReportingSvc = (*reportingService)(nil)

// TrialBalance generates a trial balance report as of a specific date
func (s *reportingService) TrialBalance(ctx context.Context, asOf time.Time) (*domain.TrialBalanceReport, error) {
	if asOf.IsZero() {
		return nil, apperrors.NewValidationError(apperrors.CodeInvalidPeriod, "asOf", "asOf is required")
	}
	balances, err := s.ledger.AccountBalances(ctx, nil, asOf)
	if err != nil {
		s.LogError(ctx, err, "Failed to retrieve trial balance data", slog.String("asOf", asOf.Format(time.DateOnly)))
		return nil, err
	}

	report := &domain.TrialBalanceReport{
		AsOf:             domain.DateOnly(asOf),
		Rows:             []domain.TrialBalanceRow{},
		GrandTotalDebit:  decimal.Zero,
		GrandTotalCredit: decimal.Zero,
	}
	for _, b := range balances {
		if b.Account.IsHeader || b.Activity.IsZero() {
			continue
		}
		debitBalance, creditBalance := accounting.SplitAmount(b.Account.NormalBalance, b.Closing)
		report.Rows = append(report.Rows, domain.TrialBalanceRow{
			AccountCode:   b.Account.Code,
			AccountName:   b.Account.Name,
			AccountType:   b.Account.AccountType,
			NormalBalance: b.Account.NormalBalance,
			TotalDebit:    b.Activity.TotalDebit,
			TotalCredit:   b.Activity.TotalCredit,
			Balance:       b.Closing,
			DebitBalance:  debitBalance,
			CreditBalance: creditBalance,
		})
		if b.Account.NormalBalance == domain.Debit {
			report.GrandTotalDebit = report.GrandTotalDebit.Add(b.Closing)
		} else {
			report.GrandTotalCredit = report.GrandTotalCredit.Add(b.Closing)
		}
	}

	report.Status = domain.TrialBalanceBalanced
	if !report.GrandTotalDebit.Equal(report.GrandTotalCredit) {
		report.Status = domain.TrialBalanceUnbalanced
		s.GetLogger(ctx).Warn("Trial balance is inconsistent",
			slog.String("asOf", report.AsOf.Format(time.DateOnly)),
			slog.String("grand_total_debit", report.GrandTotalDebit.String()),
			slog.String("grand_total_credit", report.GrandTotalCredit.String()))
	}

	s.LogInfo(ctx, "Trial balance report generated successfully",
		slog.String("asOf", report.AsOf.Format(time.DateOnly)),
		slog.Int("row_count", len(report.Rows)),
		slog.String("status", string(report.Status)))
	return report, nil
}

// IncomeStatement summarises revenue and expenses within [from, to]
func (s *reportingService) IncomeStatement(ctx context.Context, from, to time.Time) (*domain.IncomeStatementReport, error) {
	if from.IsZero() {
		return nil, apperrors.NewValidationError(apperrors.CodeInvalidPeriod, "from", "from is required")
	}
	balances, err := s.ledger.AccountBalances(ctx, &from, to)
	if err != nil {
		s.LogError(ctx, err, "Failed to retrieve income statement data",
			slog.String("from", from.Format(time.DateOnly)),
			slog.String("to", to.Format(time.DateOnly)))
		return nil, err
	}

	report := incomeStatementFrom(balances)
	report.From = domain.DateOnly(from)
	report.To = domain.DateOnly(to)

	s.LogInfo(ctx, "Income statement generated successfully",
		slog.String("from", report.From.Format(time.DateOnly)),
		slog.String("to", report.To.Format(time.DateOnly)),
		slog.Int("revenue_accounts", len(report.Revenue)),
		slog.Int("expense_accounts", len(report.Expenses)))
	return report, nil
}

// BalanceSheet generates a balance sheet as of a specific date.
// Income accounts that are not yet closed appear as synthetic equity lines.
func (s *reportingService) BalanceSheet(ctx context.Context, asOf time.Time) (*domain.BalanceSheetReport, error) {
	if asOf.IsZero() {
		return nil, apperrors.NewValidationError(apperrors.CodeInvalidPeriod, "asOf", "asOf is required")
	}
	asOf = domain.DateOnly(asOf)
	fyStart := domain.FiscalYearStart(asOf)

	// One read split at the fiscal year start: Closing is the balance since inception,
	// Opening is what earlier years left in the income accounts.
	balances, err := s.ledger.AccountBalances(ctx, &fyStart, asOf)
	if err != nil {
		s.LogError(ctx, err, "Failed to retrieve balance sheet data", slog.String("asOf", asOf.Format(time.DateOnly)))
		return nil, err
	}

	report := &domain.BalanceSheetReport{
		AsOf:             asOf,
		FiscalYearStart:  fyStart,
		Assets:           []domain.StatementLine{},
		Liabilities:      []domain.StatementLine{},
		Equity:           []domain.StatementLine{},
		TotalAssets:      decimal.Zero,
		TotalLiabilities: decimal.Zero,
		TotalEquity:      decimal.Zero,
	}
	for _, b := range balances {
		if b.Account.IsHeader || b.Closing.IsZero() {
			continue
		}
		side, _ := domain.NormalBalanceFor(b.Account.AccountType)
		line := domain.StatementLine{
			AccountCode: b.Account.Code,
			Name:        b.Account.Name,
			Amount:      domain.ConvertBalance(b.Closing, b.Account.NormalBalance, side),
		}
		switch b.Account.AccountType {
		case domain.Asset:
			report.Assets = append(report.Assets, line)
			report.TotalAssets = report.TotalAssets.Add(line.Amount)
		case domain.Liability:
			report.Liabilities = append(report.Liabilities, line)
			report.TotalLiabilities = report.TotalLiabilities.Add(line.Amount)
		case domain.Equity:
			report.Equity = append(report.Equity, line)
			report.TotalEquity = report.TotalEquity.Add(line.Amount)
		}
	}

	report.CurrentYearEarnings = incomeStatementFrom(balances).NetIncome
	report.PriorYearsEarnings = incomeStatementFrom(openingBalances(balances)).NetIncome
	if !report.PriorYearsEarnings.IsZero() {
		report.Equity = append(report.Equity, domain.StatementLine{
			Name:      priorYearsEarningsLabel,
			Amount:    report.PriorYearsEarnings,
			Synthetic: true,
		})
	}
	report.Equity = append(report.Equity, domain.StatementLine{
		Name:      currentYearEarningsLabel,
		Amount:    report.CurrentYearEarnings,
		Synthetic: true,
	})
	report.TotalEquity = report.TotalEquity.Add(report.PriorYearsEarnings).Add(report.CurrentYearEarnings)
	report.Balanced = report.TotalAssets.Equal(report.TotalLiabilities.Add(report.TotalEquity))

	if !report.Balanced {
		s.GetLogger(ctx).Warn("Balance sheet does not balance",
			slog.String("asOf", asOf.Format(time.DateOnly)),
			slog.String("total_assets", report.TotalAssets.String()),
			slog.String("total_liabilities", report.TotalLiabilities.String()),
			slog.String("total_equity", report.TotalEquity.String()))
	}
	s.LogInfo(ctx, "Balance sheet generated successfully",
		slog.String("asOf", asOf.Format(time.DateOnly)),
		slog.Bool("balanced", report.Balanced))
	return report, nil
}

// openingBalances restates each balance as of the period start, as a period from inception.
func openingBalances(balances []domain.AccountBalance) []domain.AccountBalance {
	out := make([]domain.AccountBalance, len(balances))
	for i, b := range balances {
		out[i] = domain.AccountBalance{
			Account: b.Account,
			To:      b.To,
			Opening: decimal.Zero,
			Closing: b.Opening,
		}
	}
	return out
}

// incomeStatementFrom builds revenue and expense lines from period movements (closing minus opening).
func incomeStatementFrom(balances []domain.AccountBalance) *domain.IncomeStatementReport {
	report := &domain.IncomeStatementReport{
		Revenue:      []domain.StatementLine{},
		Expenses:     []domain.StatementLine{},
		TotalRevenue: decimal.Zero,
		TotalExpense: decimal.Zero,
	}
	for _, b := range balances {
		if b.Account.IsHeader || !b.Account.AccountType.IsIncomeStatement() {
			continue
		}
		movement := b.Closing.Sub(b.Opening)
		if movement.IsZero() {
			continue
		}
		side, _ := domain.NormalBalanceFor(b.Account.AccountType)
		line := domain.StatementLine{
			AccountCode: b.Account.Code,
			Name:        b.Account.Name,
			Amount:      domain.ConvertBalance(movement, b.Account.NormalBalance, side),
		}
		if b.Account.AccountType == domain.Revenue {
			report.Revenue = append(report.Revenue, line)
			report.TotalRevenue = report.TotalRevenue.Add(line.Amount)
		} else {
			report.Expenses = append(report.Expenses, line)
			report.TotalExpense = report.TotalExpense.Add(line.Amount)
		}
	}
	report.NetIncome = accounting.NetIncome(report.TotalRevenue, report.TotalExpense)
	return report
}
