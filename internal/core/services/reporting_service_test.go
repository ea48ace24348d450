package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/SscSPs/ledger_engine/internal/core/domain"
	portsrepo "github.com/SscSPs/ledger_engine/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/ledger_engine/internal/core/ports/services"
	"github.com/SscSPs/ledger_engine/internal/core/services"
)

// --- Mock LedgerSvcFacade ---
type MockLedgerService struct {
	mock.Mock
}

var _ portssvc.LedgerSvcFacade = (*MockLedgerService)(nil)

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

type ReportingServiceTestSuite struct {
	suite.Suite
	ctx context.Context
	f   *fixture
}

func (s *ReportingServiceTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.f = newFixture()
	s.f.seedChart(s.T(), s.ctx)
}

func TestReportingServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ReportingServiceTestSuite))
}

func rowByCode(rows []domain.TrialBalanceRow, code string) *domain.TrialBalanceRow {
	for i := range rows {
		if rows[i].AccountCode == code {
			return &rows[i]
		}
	}
	return nil
}

func (s *ReportingServiceTestSuite) TestTrialBalanceAfterPostingAndVoid() {
	entry := s.f.post(s.T(), s.ctx, date(2024, 6, 1), "SALE",
		debit("1.1.01", "1000000"), credit("4.1.01", "1000000"))

	tb, err := s.f.svc.Reporting.TrialBalance(s.ctx, date(2024, 6, 30))
	s.Require().NoError(err)
	s.Equal(domain.TrialBalanceBalanced, tb.Status)
	s.Require().Len(tb.Rows, 2)

	kas := rowByCode(tb.Rows, "1.1.01")
	s.Require().NotNil(kas)
	s.True(dec("1000000").Equal(kas.DebitBalance))
	s.True(kas.CreditBalance.IsZero())
	pendapatan := rowByCode(tb.Rows, "4.1.01")
	s.Require().NotNil(pendapatan)
	s.True(dec("1000000").Equal(pendapatan.CreditBalance))
	s.True(tb.GrandTotalDebit.Equal(tb.GrandTotalCredit))
	s.True(dec("1000000").Equal(tb.GrandTotalDebit))

	// Entries dated after asOf do not count.
	early, err := s.f.svc.Reporting.TrialBalance(s.ctx, date(2024, 5, 31))
	s.Require().NoError(err)
	s.Empty(early.Rows)

	_, err = s.f.svc.Journal.VoidJournal(s.ctx, entry.JournalID, "test", testUserID)
	s.Require().NoError(err)
	tb, err = s.f.svc.Reporting.TrialBalance(s.ctx, date(2024, 6, 30))
	s.Require().NoError(err)
	s.Empty(tb.Rows, "voided entries contribute nothing")
	s.True(tb.GrandTotalDebit.IsZero())
	s.Equal(domain.TrialBalanceBalanced, tb.Status)
}

func (s *ReportingServiceTestSuite) TestTrialBalanceSplitsContraBalances() {
	// Overdrawn cash shows on the credit column.
	s.f.post(s.T(), s.ctx, date(2024, 6, 1), "RENT", debit("5.1.02", "40.00"), credit("1.1.01", "40.00"))

	tb, err := s.f.svc.Reporting.TrialBalance(s.ctx, date(2024, 6, 30))
	s.Require().NoError(err)
	kas := rowByCode(tb.Rows, "1.1.01")
	s.Require().NotNil(kas)
	s.True(dec("-40").Equal(kas.Balance))
	s.True(kas.DebitBalance.IsZero())
	s.True(dec("40").Equal(kas.CreditBalance))
	s.Equal(domain.TrialBalanceBalanced, tb.Status)
}

func (s *ReportingServiceTestSuite) TestIncomeStatement() {
	s.f.post(s.T(), s.ctx, date(2024, 3, 1), "SALE", debit("1.1.01", "1500.00"), credit("4.1.01", "1500.00"))
	s.f.post(s.T(), s.ctx, date(2024, 3, 2), "OTHER", debit("1.1.01", "250.25"), credit("4.1.02", "250.25"))
	s.f.post(s.T(), s.ctx, date(2024, 3, 5), "SALARY", debit("5.1.01", "900.00"), credit("1.1.01", "900.00"))
	s.f.post(s.T(), s.ctx, date(2025, 1, 5), "NEXT", debit("5.1.02", "10.00"), credit("1.1.01", "10.00"))

	is, err := s.f.svc.Reporting.IncomeStatement(s.ctx, date(2024, 1, 1), date(2024, 12, 31))
	s.Require().NoError(err)
	s.Len(is.Revenue, 2)
	s.Len(is.Expenses, 1)
	s.True(dec("1750.25").Equal(is.TotalRevenue))
	s.True(dec("900").Equal(is.TotalExpense))
	s.True(dec("850.25").Equal(is.NetIncome))
}

func (s *ReportingServiceTestSuite) TestBalanceSheetIdentityAcrossYears() {
	s.f.post(s.T(), s.ctx, date(2023, 2, 1), "CAPITAL", debit("1.1.02", "10000.00"), credit("3.1.01", "10000.00"))
	s.f.post(s.T(), s.ctx, date(2023, 5, 1), "SALE-23", debit("1.1.01", "3000.00"), credit("4.1.01", "3000.00"))
	s.f.post(s.T(), s.ctx, date(2023, 6, 1), "RENT-23", debit("5.1.02", "1000.00"), credit("1.1.01", "1000.00"))
	s.f.post(s.T(), s.ctx, date(2024, 2, 1), "LOAN", debit("1.1.02", "5000.00"), credit("2.1.01", "5000.00"))
	s.f.post(s.T(), s.ctx, date(2024, 3, 1), "SALE-24", debit("1.1.01", "4000.00"), credit("4.1.01", "4000.00"))
	s.f.post(s.T(), s.ctx, date(2024, 4, 1), "SALARY-24", debit("5.1.01", "2500.00"), credit("1.1.01", "2500.00"))

	bs, err := s.f.svc.Reporting.BalanceSheet(s.ctx, date(2024, 6, 30))
	s.Require().NoError(err)
	s.True(bs.Balanced)
	s.True(dec("18500").Equal(bs.TotalAssets), "got %s", bs.TotalAssets)
	s.True(dec("5000").Equal(bs.TotalLiabilities))
	s.True(dec("1500").Equal(bs.CurrentYearEarnings))
	s.True(dec("2000").Equal(bs.PriorYearsEarnings), "2023 was never closed")
	s.True(dec("13500").Equal(bs.TotalEquity))
	s.Equal(date(2024, 1, 1), bs.FiscalYearStart)

	synthetic := 0
	for _, l := range bs.Equity {
		if l.Synthetic {
			synthetic++
		}
	}
	s.Equal(2, synthetic)

	// Closing 2023 moves the prior earnings into retained earnings.
	_, err = s.f.svc.Closing.CloseYear(s.ctx, 2023, testUserID)
	s.Require().NoError(err)
	bs, err = s.f.svc.Reporting.BalanceSheet(s.ctx, date(2024, 6, 30))
	s.Require().NoError(err)
	s.True(bs.Balanced)
	s.True(bs.PriorYearsEarnings.IsZero(), "got %s", bs.PriorYearsEarnings)
	s.True(dec("13500").Equal(bs.TotalEquity))
}

func TestBalanceSheetReadsOneSnapshot(t *testing.T) {
	ctx := context.Background()
	ledger := &hookedLedger{}
	f := newFixtureWith(func(r *portsrepo.RepositoryProvider) {
		ledger.LedgerReader = r.LedgerRepo
		r.LedgerRepo = ledger
	})
	f.seedChart(t, ctx)
	f.post(t, ctx, date(2024, 1, 2), "CAPITAL", debit("1.1.01", "1000.00"), credit("3.1.01", "1000.00"))

	// A revenue entry commits while the report is being read.
	ledger.beforeSum.arm(func() {
		f.post(t, ctx, date(2024, 5, 1), "SALE", debit("1.1.01", "500.00"), credit("4.1.01", "500.00"))
	})
	bs, err := f.svc.Reporting.BalanceSheet(ctx, date(2024, 6, 30))
	require.NoError(t, err)
	assert.True(t, bs.Balanced, "assets %s, liabilities %s, equity %s", bs.TotalAssets, bs.TotalLiabilities, bs.TotalEquity)
	assert.True(t, dec("1000").Equal(bs.TotalAssets), "got %s", bs.TotalAssets)
	assert.True(t, dec("1000").Equal(bs.TotalEquity), "got %s", bs.TotalEquity)

	bs, err = f.svc.Reporting.BalanceSheet(ctx, date(2024, 6, 30))
	require.NoError(t, err)
	assert.True(t, bs.Balanced)
	assert.True(t, dec("1500").Equal(bs.TotalAssets), "got %s", bs.TotalAssets)
	assert.True(t, dec("500").Equal(bs.CurrentYearEarnings))
}

func TestTrialBalanceReportsInconsistentLedger(t *testing.T) {
	ledger := new(MockLedgerService)
	svc := services.NewReportingService(ledger)
	asOf := date(2024, 6, 30)

	kas := domain.Account{Code: "1.1.01", Name: "Kas", AccountType: domain.Asset, NormalBalance: domain.Debit, IsActive: true}
	rev := domain.Account{Code: "4.1.01", Name: "Pendapatan", AccountType: domain.Revenue, NormalBalance: domain.Credit, IsActive: true}
	ledger.On("AccountBalances", mock.Anything, (*time.Time)(nil), asOf).Return([]domain.AccountBalance{
		{Account: kas, Activity: domain.PeriodActivity{TotalDebit: dec("100"), TotalCredit: decimal.Zero}, Closing: dec("100")},
		{Account: rev, Activity: domain.PeriodActivity{TotalDebit: decimal.Zero, TotalCredit: dec("90")}, Closing: dec("90")},
	}, nil)

	tb, err := svc.TrialBalance(context.Background(), asOf)
	require.NoError(t, err, "an inconsistent ledger is a result, not an error")
	assert.Equal(t, domain.TrialBalanceUnbalanced, tb.Status)
	assert.True(t, dec("100").Equal(tb.GrandTotalDebit))
	assert.True(t, dec("90").Equal(tb.GrandTotalCredit))
	ledger.AssertExpectations(t)
}
