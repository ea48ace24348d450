package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel/attribute"

	"github.com/SscSPs/ledger_engine/internal/apperrors"
	"github.com/SscSPs/ledger_engine/internal/core/domain"
	portsrepo "github.com/SscSPs/ledger_engine/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/ledger_engine/internal/core/ports/services"
	"github.com/SscSPs/ledger_engine/internal/dto"
	"github.com/SscSPs/ledger_engine/internal/middleware"
)

const (
	defaultJournalPageSize = 20
	maxJournalPageSize     = 100
)

// journalService provides the journal entry lifecycle: draft, post, void.
type journalService struct {
	BaseService
	journalRepo portsrepo.JournalRepositoryWithTx
	accountRepo portsrepo.AccountRepositoryFacade
	ledgerRepo  portsrepo.LedgerReader
}

// JournalServiceOption is a functional option for configuring the journal service
type JournalServiceOption func(*journalService)

// WithJournalLedgerReader enables account impact previews.
func WithJournalLedgerReader(repo portsrepo.LedgerReader) JournalServiceOption {
	return func(s *journalService) {
		s.ledgerRepo = repo
	}
}

// WithJournalBase sets shared service dependencies such as metrics and the clock.
func WithJournalBase(base BaseService) JournalServiceOption {
	return func(s *journalService) {
		s.BaseService = base
	}
}

// NewJournalService creates a new JournalService.
func NewJournalService(journalRepo portsrepo.JournalRepositoryWithTx, accountRepo portsrepo.AccountRepositoryFacade, options ...JournalServiceOption) portssvc.JournalSvcFacade {
	svc := &journalService{
		journalRepo: journalRepo,
		accountRepo: accountRepo,
	}
	for _, option := range options {
		option(svc)
	}
	return svc
}

// Ensure journalService implements the portssvc.JournalSvcFacade interface
var _ portssvc.JournalSvcFacade = (*journalService)(nil)

// validateDraft runs the structural checks shared by create and update.
// Balance is not required for a draft.
func (s *journalService) validateDraft(ctx context.Context, input domain.DraftInput) error {
	if input.JournalDate.IsZero() {
		return apperrors.NewValidationError(apperrors.CodeRequiredField, "date", "date is required")
	}
	if len(input.Lines) < domain.MinJournalLines {
		return apperrors.NewValidationError(apperrors.CodeTooFewLines, "lines",
			"a journal entry needs at least %d lines, got %d", domain.MinJournalLines, len(input.Lines))
	}

	codes := make([]string, 0, len(input.Lines))
	for i, l := range input.Lines {
		field := fmt.Sprintf("lines[%d]", i)
		if strings.TrimSpace(l.AccountCode) == "" {
			return apperrors.NewValidationError(apperrors.CodeRequiredField, field+".accountCode", "line %d has no account", i+1)
		}
		line := domain.JournalLine{Debit: l.Debit, Credit: l.Credit}
		if !line.IsWellFormed() {
			return apperrors.NewValidationError(apperrors.CodeInvalidLine, field,
				"line %d must carry exactly one positive amount (debit %s, credit %s)", i+1, l.Debit, l.Credit)
		}
		if !domain.HasMoneyScale(l.Debit) || !domain.HasMoneyScale(l.Credit) {
			return apperrors.NewValidationError(apperrors.CodeInvalidLine, field,
				"line %d amount has more than %d decimal places", i+1, domain.MoneyScale)
		}
		codes = append(codes, strings.TrimSpace(l.AccountCode))
	}

	accounts, err := s.accountRepo.FindAccountsByCodes(ctx, uniqueStrings(codes))
	if err != nil {
		return fmt.Errorf("failed to fetch accounts: %w", err)
	}
	for i, code := range codes {
		if _, ok := accounts[code]; !ok {
			return apperrors.NewValidationError(apperrors.CodeUnknownAccount, fmt.Sprintf("lines[%d].accountCode", i),
				"account %s does not exist", code)
		}
	}
	return nil
}

// buildLines assigns IDs and 1-based order to the input lines.
func buildLines(journalID string, input []domain.LineInput) []domain.JournalLine {
	lines := make([]domain.JournalLine, len(input))
	for i, l := range input {
		lines[i] = domain.JournalLine{
			LineID:      uuid.NewString(),
			JournalID:   journalID,
			LineNo:      i + 1,
			AccountCode: strings.TrimSpace(l.AccountCode),
			Debit:       l.Debit,
			Credit:      l.Credit,
			Memo:        l.Memo,
		}
	}
	return lines
}

// CreateDraft validates the input and stores a new DRAFT entry.
func (s *journalService) CreateDraft(ctx context.Context, input domain.DraftInput, creatorUserID string) (*domain.JournalEntry, error) {
	var entry *domain.JournalEntry
	err := withTx(ctx, s.journalRepo, func(tx pgx.Tx) error {
		var err error
		entry, err = s.CreateDraftTx(ctx, tx, input, creatorUserID)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.Metrics.JournalCreated()
	return entry, nil
}

// CreateDraftTx is CreateDraft inside the caller's transaction.
func (s *journalService) CreateDraftTx(ctx context.Context, tx pgx.Tx, input domain.DraftInput, creatorUserID string) (*domain.JournalEntry, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if err := s.validateDraft(ctx, input); err != nil {
		if !errors.Is(err, apperrors.ErrValidation) {
			logger.Error("Failed to validate draft", slog.String("error", err.Error()))
		}
		return nil, err
	}

	date := domain.DateOnly(input.JournalDate)
	seq, err := s.journalRepo.NextJournalSequence(ctx, tx, date.Year())
	if err != nil {
		logger.Error("Failed to allocate journal number", slog.String("error", err.Error()), slog.Int("year", date.Year()))
		return nil, fmt.Errorf("failed to allocate journal number: %w", err)
	}

	now := s.now()
	journalID := uuid.NewString()
	entry := domain.JournalEntry{
		JournalID:       journalID,
		JournalNumber:   domain.FormatJournalNumber(date.Year(), seq),
		JournalDate:     date,
		ReferenceNumber: strings.TrimSpace(input.ReferenceNumber),
		Description:     input.Description,
		Status:          domain.Draft,
		Lines:           buildLines(journalID, input.Lines),
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     creatorUserID,
			LastUpdatedAt: now,
			LastUpdatedBy: creatorUserID,
		},
	}

	if err := s.journalRepo.InsertJournal(ctx, tx, entry); err != nil {
		logger.Error("Failed to save journal", slog.String("error", err.Error()), slog.String("journal_number", entry.JournalNumber))
		return nil, fmt.Errorf("failed to save journal: %w", err)
	}

	logger.Info("Draft journal created",
		slog.String("journal_id", entry.JournalID),
		slog.String("journal_number", entry.JournalNumber))
	return &entry, nil
}

// UpdateDraft replaces the header and lines of a DRAFT entry. The journal number is kept.
func (s *journalService) UpdateDraft(ctx context.Context, journalID string, input domain.DraftInput, userID string) (*domain.JournalEntry, error) {
	var entry *domain.JournalEntry
	err := withTx(ctx, s.journalRepo, func(tx pgx.Tx) error {
		current, err := s.journalRepo.FindJournalByIDForUpdate(ctx, tx, journalID)
		if err != nil {
			return err
		}
		if current.Status != domain.Draft {
			return apperrors.NewStateError(apperrors.CodeNotEditable, string(current.Status),
				"journal %s is %s and can no longer be edited", current.JournalNumber, current.Status)
		}
		if err := s.validateDraft(ctx, input); err != nil {
			return err
		}

		current.JournalDate = domain.DateOnly(input.JournalDate)
		current.ReferenceNumber = strings.TrimSpace(input.ReferenceNumber)
		current.Description = input.Description
		current.Lines = buildLines(current.JournalID, input.Lines)
		current.LastUpdatedAt = s.now()
		current.LastUpdatedBy = userID

		if err := s.journalRepo.ReplaceDraft(ctx, tx, *current); err != nil {
			return fmt.Errorf("failed to update journal: %w", err)
		}
		entry = current
		return nil
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to update draft journal", slog.String("journal_id", journalID))
		return nil, err
	}

	s.LogInfo(ctx, "Draft journal updated", slog.String("journal_id", journalID))
	return entry, nil
}

// DeleteDraft removes a DRAFT entry. Its number is not reused.
func (s *journalService) DeleteDraft(ctx context.Context, journalID string, userID string) error {
	err := withTx(ctx, s.journalRepo, func(tx pgx.Tx) error {
		current, err := s.journalRepo.FindJournalByIDForUpdate(ctx, tx, journalID)
		if err != nil {
			return err
		}
		if current.Status != domain.Draft {
			return apperrors.NewStateError(apperrors.CodeNotEditable, string(current.Status),
				"journal %s is %s and cannot be deleted", current.JournalNumber, current.Status)
		}
		return s.journalRepo.DeleteJournal(ctx, tx, journalID)
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to delete draft journal", slog.String("journal_id", journalID))
		return err
	}
	s.LogInfo(ctx, "Draft journal deleted", slog.String("journal_id", journalID), slog.String("user_id", userID))
	return nil
}

// PostJournal moves a balanced DRAFT entry to POSTED.
func (s *journalService) PostJournal(ctx context.Context, journalID string, userID string) (*domain.JournalEntry, error) {
	ctx, span := s.startSpan(ctx, "journal.post")
	span.SetAttributes(attribute.String("journal.id", journalID))

	var entry *domain.JournalEntry
	err := withTx(ctx, s.journalRepo, func(tx pgx.Tx) error {
		var err error
		entry, err = s.PostJournalTx(ctx, tx, journalID, userID)
		return err
	})
	endSpan(span, err)
	if err != nil {
		s.Metrics.PostRejected(rejectionReason(err))
		s.LogError(ctx, err, "Failed to post journal", slog.String("journal_id", journalID))
		return nil, err
	}

	s.Metrics.JournalPosted()
	s.LogInfo(ctx, "Journal posted",
		slog.String("journal_id", entry.JournalID),
		slog.String("journal_number", entry.JournalNumber))
	return entry, nil
}

// PostJournalTx is PostJournal inside the caller's transaction.
// The entry row stays locked until the transaction ends, so concurrent posts serialize.
func (s *journalService) PostJournalTx(ctx context.Context, tx pgx.Tx, journalID string, userID string) (*domain.JournalEntry, error) {
	entry, err := s.journalRepo.FindJournalByIDForUpdate(ctx, tx, journalID)
	if err != nil {
		return nil, err
	}
	if entry.Status != domain.Draft {
		return nil, apperrors.NewStateError(apperrors.CodeNotDraft, string(entry.Status),
			"journal %s is %s; only drafts can be posted", entry.JournalNumber, entry.Status)
	}
	if len(entry.Lines) < domain.MinJournalLines {
		return nil, apperrors.NewValidationError(apperrors.CodeTooFewLines, "lines",
			"journal %s has %d lines", entry.JournalNumber, len(entry.Lines))
	}
	for i, l := range entry.Lines {
		if !l.IsWellFormed() {
			return nil, apperrors.NewValidationError(apperrors.CodeInvalidLine, fmt.Sprintf("lines[%d]", i),
				"line %d must carry exactly one positive amount", l.LineNo)
		}
	}
	if debit, credit := entry.Totals(); !debit.Equal(credit) {
		return nil, apperrors.NewValidationError(apperrors.CodeUnbalanced, "lines",
			"journal %s is unbalanced: debit %s, credit %s", entry.JournalNumber, debit.StringFixed(domain.MoneyScale), credit.StringFixed(domain.MoneyScale))
	}

	accounts, err := s.accountRepo.FindAccountsByCodesForShare(ctx, tx, entry.AccountCodes())
	if err != nil {
		return nil, fmt.Errorf("failed to fetch accounts: %w", err)
	}
	for i, l := range entry.Lines {
		acc, ok := accounts[l.AccountCode]
		if !ok {
			return nil, apperrors.NewValidationError(apperrors.CodeUnknownAccount, fmt.Sprintf("lines[%d].accountCode", i),
				"account %s does not exist", l.AccountCode)
		}
		if !acc.IsPostable() {
			reason := "inactive"
			if acc.IsHeader {
				reason = "a header account"
			}
			return nil, apperrors.NewValidationError(apperrors.CodeNonPostableAccount, fmt.Sprintf("lines[%d].accountCode", i),
				"account %s is %s", acc.Code, reason)
		}
	}

	now := s.now()
	entry.Status = domain.Posted
	entry.PostedAt = &now
	entry.PostedBy = userID
	entry.LastUpdatedAt = now
	entry.LastUpdatedBy = userID
	if err := s.journalRepo.UpdateJournalStatus(ctx, tx, *entry); err != nil {
		return nil, fmt.Errorf("failed to update journal status: %w", err)
	}
	return entry, nil
}

// VoidJournal moves a POSTED entry to VOID. Lines and amounts are kept for audit.
func (s *journalService) VoidJournal(ctx context.Context, journalID string, reason string, userID string) (*domain.JournalEntry, error) {
	ctx, span := s.startSpan(ctx, "journal.void")
	span.SetAttributes(attribute.String("journal.id", journalID))

	var entry *domain.JournalEntry
	err := withTx(ctx, s.journalRepo, func(tx pgx.Tx) error {
		var err error
		entry, err = s.VoidJournalTx(ctx, tx, journalID, reason, userID)
		return err
	})
	endSpan(span, err)
	if err != nil {
		s.LogError(ctx, err, "Failed to void journal", slog.String("journal_id", journalID))
		return nil, err
	}

	s.Metrics.JournalVoided()
	s.LogInfo(ctx, "Journal voided",
		slog.String("journal_id", entry.JournalID),
		slog.String("journal_number", entry.JournalNumber))
	return entry, nil
}

// VoidJournalTx is VoidJournal inside the caller's transaction.
func (s *journalService) VoidJournalTx(ctx context.Context, tx pgx.Tx, journalID string, reason string, userID string) (*domain.JournalEntry, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, apperrors.NewValidationError(apperrors.CodeVoidReasonRequired, "reason", "a void reason is required")
	}

	entry, err := s.journalRepo.FindJournalByIDForUpdate(ctx, tx, journalID)
	if err != nil {
		return nil, err
	}
	if entry.Status != domain.Posted {
		return nil, apperrors.NewStateError(apperrors.CodeNotPosted, string(entry.Status),
			"journal %s is %s; only posted entries can be voided", entry.JournalNumber, entry.Status)
	}

	now := s.now()
	entry.Status = domain.Void
	entry.VoidedAt = &now
	entry.VoidedBy = userID
	entry.VoidReason = reason
	entry.LastUpdatedAt = now
	entry.LastUpdatedBy = userID
	if err := s.journalRepo.UpdateJournalStatus(ctx, tx, *entry); err != nil {
		return nil, fmt.Errorf("failed to update journal status: %w", err)
	}
	return entry, nil
}

// GetJournalByID retrieves a journal entry with its lines.
func (s *journalService) GetJournalByID(ctx context.Context, journalID string) (*domain.JournalEntry, error) {
	entry, err := s.journalRepo.FindJournalByID(ctx, journalID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to find journal by ID", slog.String("journal_id", journalID))
		}
		return nil, err
	}
	return entry, nil
}

// GetJournalByNumber retrieves a journal entry by its number.
func (s *journalService) GetJournalByNumber(ctx context.Context, journalNumber string) (*domain.JournalEntry, error) {
	entry, err := s.journalRepo.FindJournalByNumber(ctx, journalNumber)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to find journal by number", slog.String("journal_number", journalNumber))
		}
		return nil, err
	}
	return entry, nil
}

// ListJournals retrieves a page of journal entries, newest first.
func (s *journalService) ListJournals(ctx context.Context, params dto.ListJournalsParams) (*dto.ListJournalsResponse, error) {
	filter, err := params.ToFilter()
	if err != nil {
		return nil, apperrors.NewValidationError(apperrors.CodeInvalidPeriod, "from", "dates must use the YYYY-MM-DD format")
	}
	if filter.From != nil && filter.To != nil && filter.To.Before(*filter.From) {
		return nil, apperrors.NewValidationError(apperrors.CodeInvalidPeriod, "to", "to must not be before from")
	}

	limit := params.Limit
	if limit <= 0 {
		limit = defaultJournalPageSize
	}
	if limit > maxJournalPageSize {
		limit = maxJournalPageSize
	}

	entries, nextToken, err := s.journalRepo.ListJournals(ctx, filter, limit, params.NextToken)
	if err != nil {
		s.LogError(ctx, err, "Failed to list journals")
		return nil, err
	}

	s.LogDebug(ctx, "Journals listed", slog.Int("count", len(entries)))
	return &dto.ListJournalsResponse{
		Journals:  dto.ToJournalResponses(entries),
		NextToken: nextToken,
	}, nil
}

// GetAccountImpact reports each referenced account's balance before and after the entry,
// as of the entry date. Entries that are already posted are excluded from "before".
func (s *journalService) GetAccountImpact(ctx context.Context, journalID string) ([]domain.AccountImpact, error) {
	if s.ledgerRepo == nil {
		return nil, apperrors.NewAppError(500, "account impact is not configured", nil)
	}
	entry, err := s.GetJournalByID(ctx, journalID)
	if err != nil {
		return nil, err
	}

	codes := entry.AccountCodes()
	accounts, err := s.accountRepo.FindAccountsByCodes(ctx, codes)
	if err != nil {
		return nil, err
	}
	to := entry.JournalDate
	activity, err := s.ledgerRepo.SumPostedActivity(ctx, nil, portsrepo.ActivityQuery{AccountCodes: codes, To: &to})
	if err != nil {
		s.LogError(ctx, err, "Failed to sum account activity", slog.String("journal_id", journalID))
		return nil, err
	}

	own := make(map[string]domain.PeriodActivity, len(codes))
	for _, l := range entry.Lines {
		a := own[l.AccountCode]
		a.AccountCode = l.AccountCode
		own[l.AccountCode] = a.Add(domain.PeriodActivity{TotalDebit: l.Debit, TotalCredit: l.Credit})
	}

	impacts := make([]domain.AccountImpact, 0, len(codes))
	for _, code := range codes {
		acc, ok := accounts[code]
		if !ok {
			continue
		}
		mine := own[code]
		before := activity[code].Period
		if entry.Status == domain.Posted {
			before.TotalDebit = before.TotalDebit.Sub(mine.TotalDebit)
			before.TotalCredit = before.TotalCredit.Sub(mine.TotalCredit)
		}
		balanceBefore := domain.SignedBalance(acc.NormalBalance, before.TotalDebit, before.TotalCredit)
		delta := domain.SignedBalance(acc.NormalBalance, mine.TotalDebit, mine.TotalCredit)
		impacts = append(impacts, domain.AccountImpact{
			AccountCode:   code,
			AccountName:   acc.Name,
			NormalBalance: acc.NormalBalance,
			Debit:         mine.TotalDebit,
			Credit:        mine.TotalCredit,
			BalanceBefore: balanceBefore,
			BalanceAfter:  balanceBefore.Add(delta),
		})
	}
	return impacts, nil
}

// rejectionReason extracts the error code used to label rejected posts.
func rejectionReason(err error) string {
	var verr *apperrors.ValidationError
	if errors.As(err, &verr) {
		return string(verr.Code)
	}
	var serr *apperrors.StateError
	if errors.As(err, &serr) {
		return string(serr.Code)
	}
	if errors.Is(err, apperrors.ErrNotFound) {
		return "NotFound"
	}
	return "Internal"
}

// uniqueStrings returns the distinct values of in, keeping first-seen order.
func uniqueStrings(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, v := range in {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
