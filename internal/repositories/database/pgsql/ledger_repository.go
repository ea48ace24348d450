package pgsql

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/SscSPs/ledger_engine/internal/apperrors"
	"github.com/SscSPs/ledger_engine/internal/core/domain"
	portsrepo "github.com/SscSPs/ledger_engine/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// PgxLedgerRepository aggregates POSTED journal lines.
type PgxLedgerRepository struct {
	BaseRepository
}

func newPgxLedgerRepository(pool *pgxpool.Pool) *PgxLedgerRepository {
	return &PgxLedgerRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.LedgerReader = (*PgxLedgerRepository)(nil)

// BeginSnapshot starts a read-only REPEATABLE READ transaction.
// All statements in it see the data committed before its first statement.
func (r *PgxLedgerRepository) BeginSnapshot(ctx context.Context) (pgx.Tx, error) {
	tx, err := r.Pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead, AccessMode: pgx.ReadOnly})
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to begin snapshot", err)
	}
	return tx, nil
}

// EndSnapshot releases a snapshot. There is nothing to commit.
func (r *PgxLedgerRepository) EndSnapshot(ctx context.Context, tx pgx.Tx) error {
	if err := tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		return apperrors.NewAppError(500, "failed to end snapshot", err)
	}
	return nil
}

func (r *PgxLedgerRepository) conn(tx pgx.Tx) querier {
	if tx == nil {
		return r.Pool
	}
	return tx
}

// SumPostedActivity returns opening and period sums per account code in one grouped statement.
func (r *PgxLedgerRepository) SumPostedActivity(ctx context.Context, tx pgx.Tx, q portsrepo.ActivityQuery) (map[string]domain.WindowActivity, error) {
	var args []any
	arg := func(v any) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}
	start := arg(q.PeriodStart)
	where := []string{"e.status = 'POSTED'"}
	if len(q.AccountCodes) > 0 {
		where = append(where, "l.account_code = ANY("+arg(q.AccountCodes)+")")
	}
	if q.To != nil {
		where = append(where, "e.journal_date <= "+arg(*q.To))
	}

	query := `
		SELECT l.account_code,
		       COALESCE(SUM(l.debit)  FILTER (WHERE e.journal_date < ` + start + `::date), 0),
		       COALESCE(SUM(l.credit) FILTER (WHERE e.journal_date < ` + start + `::date), 0),
		       COALESCE(SUM(l.debit)  FILTER (WHERE ` + start + `::date IS NULL OR e.journal_date >= ` + start + `::date), 0),
		       COALESCE(SUM(l.credit) FILTER (WHERE ` + start + `::date IS NULL OR e.journal_date >= ` + start + `::date), 0)
		FROM journal_lines l
		JOIN journal_entries e ON e.journal_id = l.journal_id
		WHERE ` + strings.Join(where, " AND ") + `
		GROUP BY l.account_code;
	`
	rows, err := r.conn(tx).Query(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to sum posted activity", err)
	}
	defer rows.Close()

	out := make(map[string]domain.WindowActivity)
	for rows.Next() {
		var code string
		var openDebit, openCredit, debit, credit decimal.Decimal
		if err := rows.Scan(&code, &openDebit, &openCredit, &debit, &credit); err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan activity row", err)
		}
		out[code] = domain.WindowActivity{
			AccountCode: code,
			Opening:     domain.PeriodActivity{AccountCode: code, TotalDebit: openDebit, TotalCredit: openCredit},
			Period:      domain.PeriodActivity{AccountCode: code, TotalDebit: debit, TotalCredit: credit},
		}
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating activity rows", err)
	}
	return out, nil
}

// ListPostedLines returns the POSTED lines of the accounts within [from, to] in posting order.
func (r *PgxLedgerRepository) ListPostedLines(ctx context.Context, tx pgx.Tx, accountCodes []string, from, to time.Time) ([]domain.LedgerLine, error) {
	lines := []domain.LedgerLine{}
	if len(accountCodes) == 0 {
		return lines, nil
	}
	query := `
		SELECT e.journal_id, e.journal_number, e.journal_date, e.reference_number, e.description,
		       l.memo, l.debit, l.credit
		FROM journal_lines l
		JOIN journal_entries e ON e.journal_id = l.journal_id
		WHERE e.status = 'POSTED' AND l.account_code = ANY($1) AND e.journal_date BETWEEN $2 AND $3
		ORDER BY e.journal_date, e.journal_number, l.line_no;
	`
	rows, err := r.conn(tx).Query(ctx, query, accountCodes, from, to)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to list ledger lines", err)
	}
	defer rows.Close()

	for rows.Next() {
		var l domain.LedgerLine
		var reference, description, memo sql.NullString
		if err := rows.Scan(&l.JournalID, &l.JournalNumber, &l.JournalDate, &reference, &description, &memo, &l.Debit, &l.Credit); err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan ledger line", err)
		}
		l.ReferenceNumber = reference.String
		l.Description = description.String
		l.Memo = memo.String
		lines = append(lines, l)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating ledger lines", err)
	}
	return lines, nil
}
