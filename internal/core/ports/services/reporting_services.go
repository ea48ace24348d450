package services

import (
	"context"
	"time"

	"github.com/SscSPs/ledger_engine/internal/core/domain"
)

// ReportingSvc defines the financial statement operations
type ReportingSvc interface {
	// TrialBalance lists every leaf account with activity up to asOf.
	TrialBalance(ctx context.Context, asOf time.Time) (*domain.TrialBalanceReport, error)

	// BalanceSheet reports assets, liabilities and equity at asOf.
	BalanceSheet(ctx context.Context, asOf time.Time) (*domain.BalanceSheetReport, error)

	// IncomeStatement reports revenue and expenses within [from, to].
	IncomeStatement(ctx context.Context, from, to time.Time) (*domain.IncomeStatementReport, error)
}
