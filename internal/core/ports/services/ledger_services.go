package services

import (
	"context"
	"time"

	"github.com/SscSPs/ledger_engine/internal/core/domain"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// LedgerSvcFacade defines balance computations over POSTED journal lines.
// Header accounts report the rollup of their descendants.
// Each call reads one consistent snapshot of the ledger.
type LedgerSvcFacade interface {
	// OpeningBalance is the signed balance of all activity strictly before periodStart.
	OpeningBalance(ctx context.Context, code string, periodStart time.Time) (decimal.Decimal, error)

	// PeriodActivity sums debits and credits dated within [from, to].
	PeriodActivity(ctx context.Context, code string, from, to time.Time) (domain.PeriodActivity, error)

	// ClosingBalance computes opening, activity and closing for [from, to].
	// A nil from means since inception.
	ClosingBalance(ctx context.Context, code string, from *time.Time, to time.Time) (*domain.AccountBalance, error)

	// GeneralLedger lists the account's POSTED lines within [from, to] with a running balance.
	GeneralLedger(ctx context.Context, code string, from, to time.Time) (*domain.GeneralLedger, error)

	// AccountBalances computes balances for every account in the chart in one pass.
	AccountBalances(ctx context.Context, from *time.Time, to time.Time) ([]domain.AccountBalance, error)

	LedgerTxSvc
}

// LedgerTxSvc computes balances inside a caller-owned transaction,
// so a writer can act on exactly what it read.
type LedgerTxSvc interface {
	AccountBalancesTx(ctx context.Context, tx pgx.Tx, from *time.Time, to time.Time) ([]domain.AccountBalance, error)
}
