package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/ledger_engine/internal/core/domain"
	"github.com/jackc/pgx/v5"
)

// ActivityQuery selects POSTED journal lines dated on or before To (nil is open).
// Lines dated before PeriodStart count as opening activity, the rest as period activity.
// A nil PeriodStart puts every line in the period.
type ActivityQuery struct {
	AccountCodes []string // Empty means every account
	PeriodStart  *time.Time
	To           *time.Time
}

// LedgerReader defines read-only aggregations over POSTED journal lines.
// DRAFT and VOID entries never contribute.
//
// Every read takes the transaction it runs in. Reports open one with BeginSnapshot so that
// all their reads see the same committed state; writers pass their own transaction.
type LedgerReader interface {
	// BeginSnapshot starts a read-only REPEATABLE READ transaction.
	BeginSnapshot(ctx context.Context) (pgx.Tx, error)

	// EndSnapshot releases a transaction started by BeginSnapshot.
	EndSnapshot(ctx context.Context, tx pgx.Tx) error

	// SumPostedActivity returns raw debit and credit sums per account code, split at
	// q.PeriodStart, from a single statement. Accounts without matching lines are absent.
	// A nil tx reads through the pool.
	SumPostedActivity(ctx context.Context, tx pgx.Tx, q ActivityQuery) (map[string]domain.WindowActivity, error)

	// ListPostedLines returns the POSTED lines of the accounts within [from, to], ordered by
	// journal date, journal number and line number. RunningBalance is left zero.
	ListPostedLines(ctx context.Context, tx pgx.Tx, accountCodes []string, from, to time.Time) ([]domain.LedgerLine, error)
}
