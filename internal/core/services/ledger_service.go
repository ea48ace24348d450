package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/SscSPs/ledger_engine/internal/apperrors"
	"github.com/SscSPs/ledger_engine/internal/core/domain"
	portsrepo "github.com/SscSPs/ledger_engine/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/ledger_engine/internal/core/ports/services"
	"github.com/SscSPs/ledger_engine/internal/utils/accounting"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// ledgerService computes balances from POSTED journal lines.
type ledgerService struct {
	BaseService
	accountRepo portsrepo.AccountRepositoryFacade
	ledgerRepo  portsrepo.LedgerReader
	maxDepth    int
}

// LedgerServiceOption is a functional option for configuring the ledger service
type LedgerServiceOption func(*ledgerService)

// WithLedgerMaxDepth bounds hierarchy walks during rollup.
func WithLedgerMaxDepth(depth int) LedgerServiceOption {
	return func(s *ledgerService) {
		s.maxDepth = depth
	}
}

// WithLedgerBase sets shared service dependencies.
func WithLedgerBase(base BaseService) LedgerServiceOption {
	return func(s *ledgerService) {
		s.BaseService = base
	}
}

// NewLedgerService creates a new LedgerService.
func NewLedgerService(accountRepo portsrepo.AccountRepositoryFacade, ledgerRepo portsrepo.LedgerReader, options ...LedgerServiceOption) portssvc.LedgerSvcFacade {
	svc := &ledgerService{
		accountRepo: accountRepo,
		ledgerRepo:  ledgerRepo,
		maxDepth:    accounting.DefaultMaxDepth,
	}
	for _, option := range options {
		option(svc)
	}
	return svc
}

var _ portssvc.LedgerSvcFacade = (*ledgerService)(nil)

// snapshot runs fn against one point-in-time view of the chart and the ledger.
func (s *ledgerService) snapshot(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := s.ledgerRepo.BeginSnapshot(ctx)
	if err != nil {
		s.LogError(ctx, err, "Failed to open ledger snapshot")
		return err
	}
	defer func() {
		if endErr := s.ledgerRepo.EndSnapshot(ctx, tx); endErr != nil {
			s.LogError(ctx, endErr, "Failed to release ledger snapshot")
		}
	}()
	return fn(tx)
}

func (s *ledgerService) loadChart(ctx context.Context, tx pgx.Tx) (*accounting.Chart, error) {
	accounts, err := s.accountRepo.ListAccountsTx(ctx, tx, domain.AccountFilter{})
	if err != nil {
		s.LogError(ctx, err, "Failed to load chart of accounts")
		return nil, err
	}
	return accounting.NewChart(accounts, s.maxDepth), nil
}

// subtree resolves an account and the codes whose lines roll up into it.
func (s *ledgerService) subtree(ctx context.Context, tx pgx.Tx, code string) (domain.Account, []string, error) {
	chart, err := s.loadChart(ctx, tx)
	if err != nil {
		return domain.Account{}, nil, err
	}
	acc, ok := chart.Account(code)
	if !ok {
		return domain.Account{}, nil, apperrors.NewNotFoundError("account", code)
	}
	codes, err := chart.SubtreeCodes(code)
	if err != nil {
		return domain.Account{}, nil, err
	}
	return acc, codes, nil
}

// sumCodes aggregates posted activity of codes dated on or before to, split at periodStart.
func (s *ledgerService) sumCodes(ctx context.Context, tx pgx.Tx, codes []string, periodStart *time.Time, to time.Time) (domain.WindowActivity, error) {
	windows, err := s.ledgerRepo.SumPostedActivity(ctx, tx, portsrepo.ActivityQuery{AccountCodes: codes, PeriodStart: periodStart, To: &to})
	if err != nil {
		return domain.WindowActivity{}, err
	}
	var total domain.WindowActivity
	for _, w := range windows {
		total.Opening = total.Opening.Add(w.Opening)
		total.Period = total.Period.Add(w.Period)
	}
	return total, nil
}

// splitWindows separates opening and period activity for rollup.
func splitWindows(windows map[string]domain.WindowActivity) (map[string]domain.PeriodActivity, map[string]domain.PeriodActivity) {
	opening := make(map[string]domain.PeriodActivity, len(windows))
	period := make(map[string]domain.PeriodActivity, len(windows))
	for code, w := range windows {
		opening[code] = w.Opening
		period[code] = w.Period
	}
	return opening, period
}

// dayBefore returns the last day strictly before t.
func dayBefore(t time.Time) time.Time {
	return domain.DateOnly(t).AddDate(0, 0, -1)
}

func validatePeriod(from *time.Time, to time.Time) error {
	if to.IsZero() {
		return apperrors.NewValidationError(apperrors.CodeInvalidPeriod, "to", "an end date is required")
	}
	if from != nil && domain.DateOnly(to).Before(domain.DateOnly(*from)) {
		return apperrors.NewValidationError(apperrors.CodeInvalidPeriod, "to",
			"period end %s is before start %s", to.Format(time.DateOnly), from.Format(time.DateOnly))
	}
	return nil
}

// OpeningBalance returns the balance of all activity dated strictly before periodStart.
func (s *ledgerService) OpeningBalance(ctx context.Context, code string, periodStart time.Time) (decimal.Decimal, error) {
	balance := decimal.Zero
	err := s.snapshot(ctx, func(tx pgx.Tx) error {
		acc, codes, err := s.subtree(ctx, tx, code)
		if err != nil {
			return err
		}
		start := domain.DateOnly(periodStart)
		total, err := s.sumCodes(ctx, tx, codes, &start, dayBefore(start))
		if err != nil {
			s.LogError(ctx, err, "Failed to compute opening balance", slog.String("account_code", code))
			return err
		}
		balance = domain.SignedBalance(acc.NormalBalance, total.Opening.TotalDebit, total.Opening.TotalCredit)
		return nil
	})
	if err != nil {
		return decimal.Zero, err
	}
	return balance, nil
}

// PeriodActivity returns raw debit and credit sums within [from, to].
func (s *ledgerService) PeriodActivity(ctx context.Context, code string, from, to time.Time) (domain.PeriodActivity, error) {
	if err := validatePeriod(&from, to); err != nil {
		return domain.PeriodActivity{}, err
	}
	var activity domain.PeriodActivity
	err := s.snapshot(ctx, func(tx pgx.Tx) error {
		_, codes, err := s.subtree(ctx, tx, code)
		if err != nil {
			return err
		}
		f := domain.DateOnly(from)
		total, err := s.sumCodes(ctx, tx, codes, &f, domain.DateOnly(to))
		if err != nil {
			s.LogError(ctx, err, "Failed to compute period activity", slog.String("account_code", code))
			return err
		}
		activity = total.Period
		return nil
	})
	if err != nil {
		return domain.PeriodActivity{}, err
	}
	activity.AccountCode = code
	return activity, nil
}

// ClosingBalance returns opening, activity and closing for one account.
func (s *ledgerService) ClosingBalance(ctx context.Context, code string, from *time.Time, to time.Time) (*domain.AccountBalance, error) {
	if err := validatePeriod(from, to); err != nil {
		return nil, err
	}
	t := domain.DateOnly(to)
	var periodFrom *time.Time
	if from != nil {
		f := domain.DateOnly(*from)
		periodFrom = &f
	}

	var balance domain.AccountBalance
	err := s.snapshot(ctx, func(tx pgx.Tx) error {
		acc, codes, err := s.subtree(ctx, tx, code)
		if err != nil {
			return err
		}
		total, err := s.sumCodes(ctx, tx, codes, periodFrom, t)
		if err != nil {
			s.LogError(ctx, err, "Failed to compute account balance", slog.String("account_code", code))
			return err
		}
		balance = newAccountBalance(acc, periodFrom, t, total.Opening, total.Period)
		balance.Activity.AccountCode = code
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &balance, nil
}

// newAccountBalance expresses opening and period activity in the account's normal direction.
func newAccountBalance(acc domain.Account, from *time.Time, to time.Time, opening, period domain.PeriodActivity) domain.AccountBalance {
	openingBalance := domain.SignedBalance(acc.NormalBalance, opening.TotalDebit, opening.TotalCredit)
	return domain.AccountBalance{
		Account:  acc,
		From:     from,
		To:       to,
		Opening:  openingBalance,
		Activity: period,
		Closing:  openingBalance.Add(domain.SignedBalance(acc.NormalBalance, period.TotalDebit, period.TotalCredit)),
	}
}

// GeneralLedger lists posted lines with a running balance in the account's normal direction.
// For a header account the lines of every descendant are merged.
func (s *ledgerService) GeneralLedger(ctx context.Context, code string, from, to time.Time) (*domain.GeneralLedger, error) {
	if err := validatePeriod(&from, to); err != nil {
		return nil, err
	}
	f, t := domain.DateOnly(from), domain.DateOnly(to)

	var gl *domain.GeneralLedger
	err := s.snapshot(ctx, func(tx pgx.Tx) error {
		acc, codes, err := s.subtree(ctx, tx, code)
		if err != nil {
			return err
		}
		opening, err := s.sumCodes(ctx, tx, codes, &f, dayBefore(f))
		if err != nil {
			s.LogError(ctx, err, "Failed to compute opening balance", slog.String("account_code", code))
			return err
		}
		lines, err := s.ledgerRepo.ListPostedLines(ctx, tx, codes, f, t)
		if err != nil {
			s.LogError(ctx, err, "Failed to list posted lines", slog.String("account_code", code))
			return err
		}

		gl = &domain.GeneralLedger{
			Account:     acc,
			From:        f,
			To:          t,
			Opening:     domain.SignedBalance(acc.NormalBalance, opening.Opening.TotalDebit, opening.Opening.TotalCredit),
			Lines:       make([]domain.LedgerLine, 0, len(lines)),
			TotalDebit:  decimal.Zero,
			TotalCredit: decimal.Zero,
		}
		running := gl.Opening
		for _, l := range lines {
			running = running.Add(domain.SignedBalance(acc.NormalBalance, l.Debit, l.Credit))
			l.RunningBalance = running
			gl.TotalDebit = gl.TotalDebit.Add(l.Debit)
			gl.TotalCredit = gl.TotalCredit.Add(l.Credit)
			gl.Lines = append(gl.Lines, l)
		}
		gl.Closing = running
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.LogDebug(ctx, "General ledger computed",
		slog.String("account_code", code),
		slog.Int("line_count", len(gl.Lines)))
	return gl, nil
}

// AccountBalances computes every account's balance from one grouped query.
// Headers are rolled up from their subtrees.
func (s *ledgerService) AccountBalances(ctx context.Context, from *time.Time, to time.Time) ([]domain.AccountBalance, error) {
	if err := validatePeriod(from, to); err != nil {
		return nil, err
	}
	var balances []domain.AccountBalance
	err := s.snapshot(ctx, func(tx pgx.Tx) error {
		var err error
		balances, err = s.accountBalances(ctx, tx, from, to)
		return err
	})
	if err != nil {
		return nil, err
	}
	return balances, nil
}

// AccountBalancesTx is AccountBalances read inside the caller's transaction.
func (s *ledgerService) AccountBalancesTx(ctx context.Context, tx pgx.Tx, from *time.Time, to time.Time) ([]domain.AccountBalance, error) {
	if err := validatePeriod(from, to); err != nil {
		return nil, err
	}
	return s.accountBalances(ctx, tx, from, to)
}

func (s *ledgerService) accountBalances(ctx context.Context, tx pgx.Tx, from *time.Time, to time.Time) ([]domain.AccountBalance, error) {
	chart, err := s.loadChart(ctx, tx)
	if err != nil {
		return nil, err
	}

	t := domain.DateOnly(to)
	var periodFrom *time.Time
	if from != nil {
		f := domain.DateOnly(*from)
		periodFrom = &f
	}
	windows, err := s.ledgerRepo.SumPostedActivity(ctx, tx, portsrepo.ActivityQuery{PeriodStart: periodFrom, To: &t})
	if err != nil {
		s.LogError(ctx, err, "Failed to sum posted activity")
		return nil, err
	}
	openingActivity, periodActivity := splitWindows(windows)

	accounts := chart.Accounts()
	balances := make([]domain.AccountBalance, 0, len(accounts))
	for _, acc := range accounts {
		opening, err := chart.RollUp(acc.Code, openingActivity)
		if err != nil {
			return nil, err
		}
		activity, err := chart.RollUp(acc.Code, periodActivity)
		if err != nil {
			return nil, err
		}
		balances = append(balances, newAccountBalance(acc, periodFrom, t, opening, activity))
	}
	return balances, nil
}
