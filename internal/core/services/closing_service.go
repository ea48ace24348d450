package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel/attribute"

	"github.com/SscSPs/ledger_engine/internal/apperrors"
	"github.com/SscSPs/ledger_engine/internal/core/domain"
	portsrepo "github.com/SscSPs/ledger_engine/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/ledger_engine/internal/core/ports/services"
	"github.com/SscSPs/ledger_engine/internal/utils/accounting"
	"github.com/shopspring/decimal"
)

const (
	DefaultRetainedEarningsCode = "3.2.01"
	DefaultCurrentEarningsCode  = "3.2.02"
)

// closingService zeroes income statement accounts into retained earnings at year end.
type closingService struct {
	BaseService
	journalRepo          portsrepo.JournalRepositoryWithTx
	journals             portssvc.JournalTxSvc
	ledger               portssvc.LedgerSvcFacade
	retainedEarningsCode string
	currentEarningsCode  string
}

// ClosingServiceOption is a functional option for configuring the closing service
type ClosingServiceOption func(*closingService)

// WithEarningsAccounts overrides the retained earnings and clearing account codes.
func WithEarningsAccounts(retainedEarningsCode, currentEarningsCode string) ClosingServiceOption {
	return func(s *closingService) {
		if retainedEarningsCode != "" {
			s.retainedEarningsCode = retainedEarningsCode
		}
		if currentEarningsCode != "" {
			s.currentEarningsCode = currentEarningsCode
		}
	}
}

// WithClosingBase sets shared service dependencies.
func WithClosingBase(base BaseService) ClosingServiceOption {
	return func(s *closingService) {
		s.BaseService = base
	}
}

// NewClosingService creates a new fiscal year closing service.
func NewClosingService(journalRepo portsrepo.JournalRepositoryWithTx, journals portssvc.JournalTxSvc, ledger portssvc.LedgerSvcFacade, options ...ClosingServiceOption) portssvc.ClosingSvc {
	svc := &closingService{
		journalRepo:          journalRepo,
		journals:             journals,
		ledger:               ledger,
		retainedEarningsCode: DefaultRetainedEarningsCode,
		currentEarningsCode:  DefaultCurrentEarningsCode,
	}
	for _, option := range options {
		option(svc)
	}
	return svc
}

var _ portssvc.ClosingSvc = (*closingService)(nil)

// HasClosingEntries reports whether a POSTED CLOSING- entry is dated within the year.
func (s *closingService) HasClosingEntries(ctx context.Context, year int) (bool, error) {
	start, end := domain.FiscalYearBounds(year)
	closed, err := s.journalRepo.HasPostedWithReferencePrefix(ctx, domain.ClosingRefPrefix, start, end)
	if err != nil {
		s.LogError(ctx, err, "Failed to check closing entries", slog.Int("year", year))
		return false, err
	}
	return closed, nil
}

// GetClosingEntries lists the POSTED closing entries of a year.
func (s *closingService) GetClosingEntries(ctx context.Context, year int) ([]domain.JournalEntry, error) {
	start, end := domain.FiscalYearBounds(year)
	entries, err := s.journalRepo.FindPostedByReferencePrefix(ctx, domain.ClosingRefPrefix, start, end)
	if err != nil {
		s.LogError(ctx, err, "Failed to list closing entries", slog.Int("year", year))
		return nil, err
	}
	return entries, nil
}

// PreviewClosing computes what CloseYear would post. Nothing is written.
// For a year that is already closed the preview is rebuilt from the posted closing entries.
func (s *closingService) PreviewClosing(ctx context.Context, year int) (*domain.ClosingPreview, error) {
	closed, err := s.HasClosingEntries(ctx, year)
	if err != nil {
		return nil, err
	}
	start, end := domain.FiscalYearBounds(year)
	balances, err := s.ledger.AccountBalances(ctx, &start, end)
	if err != nil {
		s.LogError(ctx, err, "Failed to compute year balances", slog.Int("year", year))
		return nil, err
	}

	if closed {
		entries, err := s.GetClosingEntries(ctx, year)
		if err != nil {
			return nil, err
		}
		return PreviewFromClosingEntries(year, entries, balances), nil
	}

	preview, err := BuildClosingPreview(year, balances, s.retainedEarningsCode, s.currentEarningsCode)
	if err != nil {
		s.LogError(ctx, err, "Failed to build closing preview", slog.Int("year", year))
		return nil, err
	}
	return preview, nil
}

// CloseYear creates and posts the closing entries of a year in one transaction.
// The year lock and the in-transaction re-check make concurrent calls for the same year serialize.
func (s *closingService) CloseYear(ctx context.Context, year int, userID string) (*domain.ClosingResult, error) {
	ctx, span := s.startSpan(ctx, "closing.close_year")
	span.SetAttributes(attribute.Int("closing.year", year))
	started := time.Now()

	result, err := s.closeYear(ctx, year, userID)
	endSpan(span, err)
	if err != nil {
		s.LogError(ctx, err, "Failed to close fiscal year", slog.Int("year", year))
		return nil, err
	}
	if len(result.JournalIDs) > 0 {
		s.Metrics.YearClosed(time.Since(started))
	}
	s.LogInfo(ctx, "Fiscal year closed",
		slog.Int("year", year),
		slog.String("net_income", result.NetIncome.String()),
		slog.Int("entries", len(result.JournalIDs)))
	return result, nil
}

func (s *closingService) closeYear(ctx context.Context, year int, userID string) (*domain.ClosingResult, error) {
	closed, err := s.HasClosingEntries(ctx, year)
	if err != nil {
		return nil, err
	}
	if closed {
		return nil, apperrors.NewStateError(apperrors.CodeAlreadyClosed, "CLOSED", "fiscal year %d is already closed", year)
	}

	start, end := domain.FiscalYearBounds(year)
	var result *domain.ClosingResult
	err = withTx(ctx, s.journalRepo, func(tx pgx.Tx) error {
		if err := s.journalRepo.LockFiscalYear(ctx, tx, year); err != nil {
			return fmt.Errorf("failed to lock fiscal year %d: %w", year, err)
		}
		closed, err := s.journalRepo.HasPostedWithReferencePrefixTx(ctx, tx, domain.ClosingRefPrefix, start, end)
		if err != nil {
			return err
		}
		if closed {
			return apperrors.NewStateError(apperrors.CodeAlreadyClosed, "CLOSED", "fiscal year %d is already closed", year)
		}

		// Read under the year lock: the entries close exactly these balances.
		balances, err := s.ledger.AccountBalancesTx(ctx, tx, &start, end)
		if err != nil {
			return err
		}
		preview, err := BuildClosingPreview(year, balances, s.retainedEarningsCode, s.currentEarningsCode)
		if err != nil {
			return err
		}
		result = &domain.ClosingResult{
			ClosingPreview: *preview,
			JournalIDs:     []string{},
			JournalNumbers: []string{},
		}

		for _, entry := range preview.Entries {
			draft, err := s.journals.CreateDraftTx(ctx, tx, entry.ToDraftInput(), userID)
			if err != nil {
				return fmt.Errorf("failed to create closing entry %s: %w", entry.ReferenceNumber, err)
			}
			posted, err := s.journals.PostJournalTx(ctx, tx, draft.JournalID, userID)
			if err != nil {
				return fmt.Errorf("failed to post closing entry %s: %w", entry.ReferenceNumber, err)
			}
			result.JournalIDs = append(result.JournalIDs, posted.JournalID)
			result.JournalNumbers = append(result.JournalNumbers, posted.JournalNumber)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	result.AlreadyClosed = len(result.JournalIDs) > 0
	return result, nil
}

// ReverseClosing voids every POSTED closing entry of the year in one transaction.
func (s *closingService) ReverseClosing(ctx context.Context, year int, reason string, userID string) (int, error) {
	ctx, span := s.startSpan(ctx, "closing.reverse")
	span.SetAttributes(attribute.Int("closing.year", year))

	var voided int
	err := func() error {
		if strings.TrimSpace(reason) == "" {
			return apperrors.NewValidationError(apperrors.CodeVoidReasonRequired, "reason", "a reason is required to reverse a closing")
		}
		start, end := domain.FiscalYearBounds(year)
		return withTx(ctx, s.journalRepo, func(tx pgx.Tx) error {
			if err := s.journalRepo.LockFiscalYear(ctx, tx, year); err != nil {
				return fmt.Errorf("failed to lock fiscal year %d: %w", year, err)
			}
			entries, err := s.journalRepo.FindPostedByReferencePrefixForUpdate(ctx, tx, domain.ClosingRefPrefix, start, end)
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				return apperrors.NewStateError(apperrors.CodeNotClosed, "OPEN", "fiscal year %d has no closing entries", year)
			}
			for _, e := range entries {
				if _, err := s.journals.VoidJournalTx(ctx, tx, e.JournalID, reason, userID); err != nil {
					return fmt.Errorf("failed to void closing entry %s: %w", e.JournalNumber, err)
				}
				voided++
			}
			return nil
		})
	}()
	endSpan(span, err)
	if err != nil {
		s.LogError(ctx, err, "Failed to reverse fiscal year closing", slog.Int("year", year))
		return 0, err
	}

	s.Metrics.YearReopened()
	s.LogInfo(ctx, "Fiscal year closing reversed", slog.Int("year", year), slog.Int("voided", voided))
	return voided, nil
}

// BuildClosingPreview computes the closing entries of a year from the year's account balances.
// Revenue accounts are debited into the clearing account, expense accounts credited out of it,
// and the clearing net is moved to retained earnings. Every entry is checked for balance.
func BuildClosingPreview(year int, balances []domain.AccountBalance, retainedEarningsCode, currentEarningsCode string) (*domain.ClosingPreview, error) {
	preview := &domain.ClosingPreview{
		Year:         year,
		TotalRevenue: decimal.Zero,
		TotalExpense: decimal.Zero,
		NetIncome:    decimal.Zero,
		Entries:      []domain.ClosingEntryPreview{},
	}

	accounts := make(map[string]domain.Account, len(balances))
	var revenueLines, expenseLines []domain.ClosingLinePreview
	for _, b := range balances {
		accounts[b.Account.Code] = b.Account
		if b.Account.IsHeader || !b.Account.AccountType.IsIncomeStatement() {
			continue
		}
		movement := b.Closing.Sub(b.Opening)
		if movement.IsZero() {
			continue
		}
		memo := "Close " + b.Account.Name
		if b.Account.AccountType == domain.Revenue {
			amount := domain.ConvertBalance(movement, b.Account.NormalBalance, domain.Credit)
			preview.TotalRevenue = preview.TotalRevenue.Add(amount)
			debit, credit := accounting.SplitAmount(domain.Debit, amount)
			revenueLines = append(revenueLines, domain.ClosingLinePreview{
				AccountCode: b.Account.Code, AccountName: b.Account.Name, Debit: debit, Credit: credit, Memo: memo,
			})
		} else {
			amount := domain.ConvertBalance(movement, b.Account.NormalBalance, domain.Debit)
			preview.TotalExpense = preview.TotalExpense.Add(amount)
			debit, credit := accounting.SplitAmount(domain.Credit, amount)
			expenseLines = append(expenseLines, domain.ClosingLinePreview{
				AccountCode: b.Account.Code, AccountName: b.Account.Name, Debit: debit, Credit: credit, Memo: memo,
			})
		}
	}
	preview.NetIncome = accounting.NetIncome(preview.TotalRevenue, preview.TotalExpense)

	if len(revenueLines) == 0 && len(expenseLines) == 0 {
		return preview, nil
	}

	clearing, ok := accounts[currentEarningsCode]
	if !ok {
		return nil, apperrors.NewValidationError(apperrors.CodeUnknownAccount, "currentEarningsCode",
			"current year earnings account %s does not exist", currentEarningsCode)
	}
	retained, ok := accounts[retainedEarningsCode]
	if !ok {
		return nil, apperrors.NewValidationError(apperrors.CodeUnknownAccount, "retainedEarningsCode",
			"retained earnings account %s does not exist", retainedEarningsCode)
	}

	_, yearEnd := domain.FiscalYearBounds(year)
	seq := 0
	add := func(description string, lines []domain.ClosingLinePreview) error {
		if len(lines) < domain.MinJournalLines {
			return nil
		}
		seq++
		entry := domain.ClosingEntryPreview{
			ReferenceNumber: domain.ClosingReference(year, seq),
			Description:     description,
			Date:            yearEnd,
			Lines:           lines,
		}
		if debit, credit := entry.Totals(); !debit.Equal(credit) {
			return apperrors.NewAppError(500, fmt.Sprintf("closing entry %s is unbalanced: debit %s, credit %s",
				entry.ReferenceNumber, debit, credit), nil)
		}
		preview.Entries = append(preview.Entries, entry)
		return nil
	}

	if len(revenueLines) > 0 {
		lines := revenueLines
		if !preview.TotalRevenue.IsZero() {
			debit, credit := accounting.SplitAmount(domain.Credit, preview.TotalRevenue)
			lines = append(lines, domain.ClosingLinePreview{
				AccountCode: clearing.Code, AccountName: clearing.Name, Debit: debit, Credit: credit,
				Memo: fmt.Sprintf("Revenue %d", year),
			})
		}
		if err := add(fmt.Sprintf("Close revenue accounts for fiscal year %d", year), lines); err != nil {
			return nil, err
		}
	}
	if len(expenseLines) > 0 {
		lines := expenseLines
		if !preview.TotalExpense.IsZero() {
			debit, credit := accounting.SplitAmount(domain.Debit, preview.TotalExpense)
			lines = append(lines, domain.ClosingLinePreview{
				AccountCode: clearing.Code, AccountName: clearing.Name, Debit: debit, Credit: credit,
				Memo: fmt.Sprintf("Expenses %d", year),
			})
		}
		if err := add(fmt.Sprintf("Close expense accounts for fiscal year %d", year), lines); err != nil {
			return nil, err
		}
	}
	if !preview.NetIncome.IsZero() {
		clearDebit, clearCredit := accounting.SplitAmount(domain.Debit, preview.NetIncome)
		retDebit, retCredit := accounting.SplitAmount(domain.Credit, preview.NetIncome)
		err := add(fmt.Sprintf("Transfer net income for fiscal year %d to retained earnings", year), []domain.ClosingLinePreview{
			{AccountCode: clearing.Code, AccountName: clearing.Name, Debit: clearDebit, Credit: clearCredit, Memo: "Net income transfer"},
			{AccountCode: retained.Code, AccountName: retained.Name, Debit: retDebit, Credit: retCredit, Memo: "Net income transfer"},
		})
		if err != nil {
			return nil, err
		}
	}
	return preview, nil
}

// PreviewFromClosingEntries rebuilds a preview from the posted closing entries of a year.
// Revenue and expense totals are read back from the lines that touched income accounts.
func PreviewFromClosingEntries(year int, entries []domain.JournalEntry, balances []domain.AccountBalance) *domain.ClosingPreview {
	accounts := make(map[string]domain.Account, len(balances))
	for _, b := range balances {
		accounts[b.Account.Code] = b.Account
	}

	preview := &domain.ClosingPreview{
		Year:          year,
		TotalRevenue:  decimal.Zero,
		TotalExpense:  decimal.Zero,
		Entries:       make([]domain.ClosingEntryPreview, 0, len(entries)),
		AlreadyClosed: true,
	}
	for _, e := range entries {
		entry := domain.ClosingEntryPreview{
			ReferenceNumber: e.ReferenceNumber,
			Description:     e.Description,
			Date:            e.JournalDate,
			Lines:           make([]domain.ClosingLinePreview, 0, len(e.Lines)),
		}
		for _, l := range e.Lines {
			acc := accounts[l.AccountCode]
			entry.Lines = append(entry.Lines, domain.ClosingLinePreview{
				AccountCode: l.AccountCode, AccountName: acc.Name, Debit: l.Debit, Credit: l.Credit, Memo: l.Memo,
			})
			switch acc.AccountType {
			case domain.Revenue:
				preview.TotalRevenue = preview.TotalRevenue.Add(l.Debit.Sub(l.Credit))
			case domain.Expense:
				preview.TotalExpense = preview.TotalExpense.Add(l.Credit.Sub(l.Debit))
			}
		}
		preview.Entries = append(preview.Entries, entry)
	}
	preview.NetIncome = accounting.NetIncome(preview.TotalRevenue, preview.TotalExpense)
	return preview
}
