package handlers_test

import (
	"context"
	"time"

	"github.com/SscSPs/ledger_engine/internal/core/domain"
	portssvc "github.com/SscSPs/ledger_engine/internal/core/ports/services"
	"github.com/SscSPs/ledger_engine/internal/dto"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// --- Mock AccountService ---
type MockAccountService struct {
	mock.Mock
}

func (m *MockAccountService) GetAccountByCode(ctx context.Context, code string) (*domain.Account, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}
func (m *MockAccountService) ListAccounts(ctx context.Context, filter domain.AccountFilter) ([]domain.Account, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Account), args.Error(1)
}
func (m *MockAccountService) ListChildren(ctx context.Context, code string) ([]domain.Account, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Account), args.Error(1)
}
func (m *MockAccountService) ResolveAncestry(ctx context.Context, code string) ([]domain.Account, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Account), args.Error(1)
}
func (m *MockAccountService) CreateAccount(ctx context.Context, req dto.CreateAccountRequest, creatorUserID string) (*domain.Account, error) {
	args := m.Called(ctx, req, creatorUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}
func (m *MockAccountService) UpdateAccount(ctx context.Context, code string, req dto.UpdateAccountRequest, userID string) (*domain.Account, error) {
	args := m.Called(ctx, code, req, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}
func (m *MockAccountService) ActivateAccount(ctx context.Context, code string, userID string) (*domain.Account, error) {
	args := m.Called(ctx, code, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}
func (m *MockAccountService) DeactivateAccount(ctx context.Context, code string, userID string) (*domain.Account, error) {
	args := m.Called(ctx, code, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}
func (m *MockAccountService) DeleteAccount(ctx context.Context, code string) error {
	args := m.Called(ctx, code)
	return args.Error(0)
}

// Ensure mock implements the interface
var _ portssvc.AccountSvcFacade = (*MockAccountService)(nil)

// --- Mock JournalService ---
type MockJournalService struct {
	mock.Mock
}

func (m *MockJournalService) journal(args mock.Arguments) (*domain.JournalEntry, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.JournalEntry), args.Error(1)
}

func (m *MockJournalService) GetJournalByID(ctx context.Context, journalID string) (*domain.JournalEntry, error) {
	return m.journal(m.Called(ctx, journalID))
}
func (m *MockJournalService) GetJournalByNumber(ctx context.Context, journalNumber string) (*domain.JournalEntry, error) {
	return m.journal(m.Called(ctx, journalNumber))
}
func (m *MockJournalService) ListJournals(ctx context.Context, params dto.ListJournalsParams) (*dto.ListJournalsResponse, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.ListJournalsResponse), args.Error(1)
}
func (m *MockJournalService) GetAccountImpact(ctx context.Context, journalID string) ([]domain.AccountImpact, error) {
	args := m.Called(ctx, journalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.AccountImpact), args.Error(1)
}
func (m *MockJournalService) CreateDraft(ctx context.Context, input domain.DraftInput, creatorUserID string) (*domain.JournalEntry, error) {
	return m.journal(m.Called(ctx, input, creatorUserID))
}
func (m *MockJournalService) UpdateDraft(ctx context.Context, journalID string, input domain.DraftInput, userID string) (*domain.JournalEntry, error) {
	return m.journal(m.Called(ctx, journalID, input, userID))
}
func (m *MockJournalService) DeleteDraft(ctx context.Context, journalID string, userID string) error {
	return m.Called(ctx, journalID, userID).Error(0)
}
func (m *MockJournalService) PostJournal(ctx context.Context, journalID string, userID string) (*domain.JournalEntry, error) {
	return m.journal(m.Called(ctx, journalID, userID))
}
func (m *MockJournalService) VoidJournal(ctx context.Context, journalID string, reason string, userID string) (*domain.JournalEntry, error) {
	return m.journal(m.Called(ctx, journalID, reason, userID))
}
func (m *MockJournalService) CreateDraftTx(ctx context.Context, tx pgx.Tx, input domain.DraftInput, creatorUserID string) (*domain.JournalEntry, error) {
	return m.journal(m.Called(ctx, tx, input, creatorUserID))
}
func (m *MockJournalService) PostJournalTx(ctx context.Context, tx pgx.Tx, journalID string, userID string) (*domain.JournalEntry, error) {
	return m.journal(m.Called(ctx, tx, journalID, userID))
}
func (m *MockJournalService) VoidJournalTx(ctx context.Context, tx pgx.Tx, journalID string, reason string, userID string) (*domain.JournalEntry, error) {
	return m.journal(m.Called(ctx, tx, journalID, reason, userID))
}

// Ensure mock implements the interface
var _ portssvc.JournalSvcFacade = (*MockJournalService)(nil)

// --- Mock LedgerService ---
type MockLedgerService struct {
	mock.Mock
}

func (m *MockLedgerService) OpeningBalance(ctx context.Context, code string, periodStart time.Time) (decimal.Decimal, error) {
	args := m.Called(ctx, code, periodStart)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}
func (m *MockLedgerService) PeriodActivity(ctx context.Context, code string, from, to time.Time) (domain.PeriodActivity, error) {
	args := m.Called(ctx, code, from, to)
	return args.Get(0).(domain.PeriodActivity), args.Error(1)
}
func (m *MockLedgerService) ClosingBalance(ctx context.Context, code string, from *time.Time, to time.Time) (*domain.AccountBalance, error) {
	args := m.Called(ctx, code, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AccountBalance), args.Error(1)
}
func (m *MockLedgerService) GeneralLedger(ctx context.Context, code string, from, to time.Time) (*domain.GeneralLedger, error) {
	args := m.Called(ctx, code, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.GeneralLedger), args.Error(1)
}
func (m *MockLedgerService) AccountBalances(ctx context.Context, from *time.Time, to time.Time) ([]domain.AccountBalance, error) {
	args := m.Called(ctx, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.AccountBalance), args.Error(1)
}
func (m *MockLedgerService) AccountBalancesTx(ctx context.Context, tx pgx.Tx, from *time.Time, to time.Time) ([]domain.AccountBalance, error) {
	args := m.Called(ctx, tx, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.AccountBalance), args.Error(1)
}

var _ portssvc.LedgerSvcFacade = (*MockLedgerService)(nil)

// --- Mock ReportingService ---
type MockReportingService struct {
	mock.Mock
}

func (m *MockReportingService) TrialBalance(ctx context.Context, asOf time.Time) (*domain.TrialBalanceReport, error) {
	args := m.Called(ctx, asOf)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TrialBalanceReport), args.Error(1)
}
func (m *MockReportingService) BalanceSheet(ctx context.Context, asOf time.Time) (*domain.BalanceSheetReport, error) {
	args := m.Called(ctx, asOf)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BalanceSheetReport), args.Error(1)
}
func (m *MockReportingService) IncomeStatement(ctx context.Context, from, to time.Time) (*domain.IncomeStatementReport, error) {
	args := m.Called(ctx, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.IncomeStatementReport), args.Error(1)
}

var _ portssvc.ReportingSvc = (*MockReportingService)(nil)

// --- Mock ClosingService ---
type MockClosingService struct {
	mock.Mock
}

func (m *MockClosingService) HasClosingEntries(ctx context.Context, year int) (bool, error) {
	args := m.Called(ctx, year)
	return args.Bool(0), args.Error(1)
}
func (m *MockClosingService) GetClosingEntries(ctx context.Context, year int) ([]domain.JournalEntry, error) {
	args := m.Called(ctx, year)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.JournalEntry), args.Error(1)
}
func (m *MockClosingService) PreviewClosing(ctx context.Context, year int) (*domain.ClosingPreview, error) {
	args := m.Called(ctx, year)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ClosingPreview), args.Error(1)
}
func (m *MockClosingService) CloseYear(ctx context.Context, year int, userID string) (*domain.ClosingResult, error) {
	args := m.Called(ctx, year, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ClosingResult), args.Error(1)
}
func (m *MockClosingService) ReverseClosing(ctx context.Context, year int, reason string, userID string) (int, error) {
	args := m.Called(ctx, year, reason, userID)
	return args.Int(0), args.Error(1)
}

var _ portssvc.ClosingSvc = (*MockClosingService)(nil)
