package services_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/SscSPs/ledger_engine/internal/apperrors"
	"github.com/SscSPs/ledger_engine/internal/core/domain"
	portsrepo "github.com/SscSPs/ledger_engine/internal/core/ports/repositories"
	"github.com/SscSPs/ledger_engine/internal/core/services"
	"github.com/SscSPs/ledger_engine/internal/dto"
)

func yearBalance(acc domain.Account, debitTotal, creditTotal string) domain.AccountBalance {
	activity := domain.PeriodActivity{AccountCode: acc.Code, TotalDebit: dec(debitTotal), TotalCredit: dec(creditTotal)}
	return domain.AccountBalance{
		Account:  acc,
		Opening:  dec("0"),
		Activity: activity,
		Closing:  domain.SignedBalance(acc.NormalBalance, activity.TotalDebit, activity.TotalCredit),
	}
}

func leaf(code, name string, t domain.AccountType) domain.Account {
	side, _ := domain.NormalBalanceFor(t)
	return domain.Account{Code: code, Name: name, AccountType: t, NormalBalance: side, IsActive: true}
}

var (
	clearingAccount = leaf("3.2.02", "Laba Berjalan", domain.Equity)
	retainedAccount = leaf("3.2.01", "Laba Ditahan", domain.Equity)
)

func TestBuildClosingPreview(t *testing.T) {
	balances := []domain.AccountBalance{
		yearBalance(leaf("1.1.01", "Kas", domain.Asset), "100000000", "60000000"),
		yearBalance(leaf("4.1.01", "Pendapatan Jasa", domain.Revenue), "0", "70000000"),
		yearBalance(leaf("4.1.02", "Pendapatan Lain", domain.Revenue), "0", "30000000"),
		yearBalance(leaf("5.1.01", "Beban Gaji", domain.Expense), "60000000", "0"),
		yearBalance(clearingAccount, "0", "0"),
		yearBalance(retainedAccount, "0", "0"),
	}

	preview, err := services.BuildClosingPreview(2024, balances, "3.2.01", "3.2.02")
	require.NoError(t, err)
	assert.True(t, dec("100000000").Equal(preview.TotalRevenue))
	assert.True(t, dec("60000000").Equal(preview.TotalExpense))
	assert.True(t, dec("40000000").Equal(preview.NetIncome))
	require.Len(t, preview.Entries, 3)

	for i, e := range preview.Entries {
		assert.Equal(t, domain.ClosingReference(2024, i+1), e.ReferenceNumber)
		assert.Equal(t, date(2024, 12, 31), e.Date)
		debitTotal, creditTotal := e.Totals()
		assert.True(t, debitTotal.Equal(creditTotal), "entry %s must balance", e.ReferenceNumber)
	}

	revenue := preview.Entries[0]
	require.Len(t, revenue.Lines, 3)
	assert.True(t, dec("70000000").Equal(revenue.Lines[0].Debit))
	assert.Equal(t, "3.2.02", revenue.Lines[2].AccountCode)
	assert.True(t, dec("100000000").Equal(revenue.Lines[2].Credit))

	expense := preview.Entries[1]
	require.Len(t, expense.Lines, 2)
	assert.True(t, dec("60000000").Equal(expense.Lines[0].Credit))
	assert.True(t, dec("60000000").Equal(expense.Lines[1].Debit))

	transfer := preview.Entries[2]
	require.Len(t, transfer.Lines, 2)
	assert.Equal(t, "3.2.02", transfer.Lines[0].AccountCode)
	assert.True(t, dec("40000000").Equal(transfer.Lines[0].Debit))
	assert.Equal(t, "3.2.01", transfer.Lines[1].AccountCode)
	assert.True(t, dec("40000000").Equal(transfer.Lines[1].Credit))
}

func TestBuildClosingPreviewNetLossFlipsTransfer(t *testing.T) {
	balances := []domain.AccountBalance{
		yearBalance(leaf("4.1.01", "Pendapatan", domain.Revenue), "0", "100.00"),
		yearBalance(leaf("5.1.01", "Beban", domain.Expense), "250.00", "0"),
		yearBalance(clearingAccount, "0", "0"),
		yearBalance(retainedAccount, "0", "0"),
	}
	preview, err := services.BuildClosingPreview(2024, balances, "3.2.01", "3.2.02")
	require.NoError(t, err)
	assert.True(t, dec("-150").Equal(preview.NetIncome))

	transfer := preview.Entries[2]
	assert.True(t, dec("150").Equal(transfer.Lines[0].Credit), "clearing is credited on a loss")
	assert.True(t, dec("150").Equal(transfer.Lines[1].Debit), "retained earnings is debited on a loss")
}

func TestBuildClosingPreviewEdgeCases(t *testing.T) {
	empty, err := services.BuildClosingPreview(2024, []domain.AccountBalance{
		yearBalance(leaf("1.1.01", "Kas", domain.Asset), "10", "0"),
	}, "3.2.01", "3.2.02")
	require.NoError(t, err, "a year without income activity is not an error")
	assert.Empty(t, empty.Entries)
	assert.True(t, empty.NetIncome.IsZero())

	_, err = services.BuildClosingPreview(2024, []domain.AccountBalance{
		yearBalance(leaf("4.1.01", "Pendapatan", domain.Revenue), "0", "10"),
		yearBalance(retainedAccount, "0", "0"),
	}, "3.2.01", "3.2.02")
	assert.True(t, apperrors.IsValidation(err, apperrors.CodeUnknownAccount), "got %v", err)

	// A contra revenue balance is closed on the opposite side.
	contra, err := services.BuildClosingPreview(2024, []domain.AccountBalance{
		yearBalance(leaf("4.1.01", "Pendapatan", domain.Revenue), "0", "100"),
		yearBalance(leaf("4.1.09", "Retur Penjualan", domain.Revenue), "20", "0"),
		yearBalance(clearingAccount, "0", "0"),
		yearBalance(retainedAccount, "0", "0"),
	}, "3.2.01", "3.2.02")
	require.NoError(t, err)
	lines := contra.Entries[0].Lines
	assert.True(t, dec("20").Equal(lines[1].Credit))
	assert.True(t, dec("80").Equal(lines[2].Credit))
	assert.True(t, dec("80").Equal(contra.TotalRevenue))
}

type ClosingServiceTestSuite struct {
	suite.Suite
	ctx context.Context
	f   *fixture
}

func (s *ClosingServiceTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.f = newFixture()
	s.f.seedChart(s.T(), s.ctx)

	s.f.post(s.T(), s.ctx, date(2024, 3, 1), "SALE", debit("1.1.01", "100000000"), credit("4.1.01", "100000000"))
	s.f.post(s.T(), s.ctx, date(2024, 4, 1), "SALARY", debit("5.1.01", "60000000"), credit("1.1.01", "60000000"))
}

func TestClosingServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ClosingServiceTestSuite))
}

func (s *ClosingServiceTestSuite) closingJournals() []dto.JournalResponse {
	list, err := s.f.svc.Journal.ListJournals(s.ctx, dto.ListJournalsParams{ReferencePrefix: domain.ClosingRefPrefix, Limit: 100})
	s.Require().NoError(err)
	return list.Journals
}

func (s *ClosingServiceTestSuite) TestPreviewIsSideEffectFree() {
	first, err := s.f.svc.Closing.PreviewClosing(s.ctx, 2024)
	s.Require().NoError(err)
	second, err := s.f.svc.Closing.PreviewClosing(s.ctx, 2024)
	s.Require().NoError(err)

	s.Require().Len(second.Entries, len(first.Entries))
	for i := range first.Entries {
		s.Equal(first.Entries[i].ReferenceNumber, second.Entries[i].ReferenceNumber)
		d1, c1 := first.Entries[i].Totals()
		d2, c2 := second.Entries[i].Totals()
		s.True(d1.Equal(d2) && c1.Equal(c2))
	}
	s.True(first.NetIncome.Equal(second.NetIncome))
	s.True(dec("40000000").Equal(first.NetIncome))
	s.False(first.AlreadyClosed)
	s.Len(first.Entries, 3)
	s.Empty(s.closingJournals())
}

func (s *ClosingServiceTestSuite) TestCloseYearThenAlreadyClosed() {
	result, err := s.f.svc.Closing.CloseYear(s.ctx, 2024, testUserID)
	s.Require().NoError(err)
	s.True(dec("40000000").Equal(result.NetIncome))
	s.Len(result.JournalIDs, 3)
	s.Equal([]string{"JE-2024-0003", "JE-2024-0004", "JE-2024-0005"}, result.JournalNumbers)

	for _, id := range result.JournalIDs {
		entry, err := s.f.svc.Journal.GetJournalByID(s.ctx, id)
		s.Require().NoError(err)
		s.Equal(domain.Posted, entry.Status)
		s.Equal(date(2024, 12, 31), entry.JournalDate)
	}

	closed, err := s.f.svc.Closing.HasClosingEntries(s.ctx, 2024)
	s.Require().NoError(err)
	s.True(closed)

	yearStart := date(2024, 1, 1)
	revenue, err := s.f.svc.Ledger.ClosingBalance(s.ctx, "4", &yearStart, date(2024, 12, 31))
	s.Require().NoError(err)
	s.True(revenue.Closing.IsZero(), "revenue is zeroed, got %s", revenue.Closing)
	retained, err := s.f.svc.Ledger.ClosingBalance(s.ctx, "3.2.01", nil, date(2024, 12, 31))
	s.Require().NoError(err)
	s.True(dec("40000000").Equal(retained.Closing))
	clearing, err := s.f.svc.Ledger.ClosingBalance(s.ctx, "3.2.02", nil, date(2024, 12, 31))
	s.Require().NoError(err)
	s.True(clearing.Closing.IsZero())

	_, err = s.f.svc.Closing.CloseYear(s.ctx, 2024, testUserID)
	s.True(apperrors.IsState(err, apperrors.CodeAlreadyClosed), "got %v", err)
	s.Len(s.closingJournals(), 3, "a rejected second close writes nothing")

	preview, err := s.f.svc.Closing.PreviewClosing(s.ctx, 2024)
	s.Require().NoError(err)
	s.True(preview.AlreadyClosed)
	s.True(dec("40000000").Equal(preview.NetIncome))
	s.True(dec("100000000").Equal(preview.TotalRevenue))

	entries, err := s.f.svc.Closing.GetClosingEntries(s.ctx, 2024)
	s.Require().NoError(err)
	s.Len(entries, 3)
}

func (s *ClosingServiceTestSuite) TestReverseClosingReopensYear() {
	_, err := s.f.svc.Closing.ReverseClosing(s.ctx, 2024, "not closed yet", testUserID)
	s.True(apperrors.IsState(err, apperrors.CodeNotClosed), "got %v", err)

	_, err = s.f.svc.Closing.CloseYear(s.ctx, 2024, testUserID)
	s.Require().NoError(err)

	_, err = s.f.svc.Closing.ReverseClosing(s.ctx, 2024, " ", testUserID)
	s.True(apperrors.IsValidation(err, apperrors.CodeVoidReasonRequired))

	voided, err := s.f.svc.Closing.ReverseClosing(s.ctx, 2024, "late invoice", testUserID)
	s.Require().NoError(err)
	s.Equal(3, voided)

	closed, err := s.f.svc.Closing.HasClosingEntries(s.ctx, 2024)
	s.Require().NoError(err)
	s.False(closed)

	result, err := s.f.svc.Closing.CloseYear(s.ctx, 2024, testUserID)
	s.Require().NoError(err, "a reopened year can be closed again")
	s.Len(result.JournalIDs, 3)
}

func (s *ClosingServiceTestSuite) TestCloseYearIsAllOrNothing() {
	_, err := s.f.svc.Account.DeactivateAccount(s.ctx, "3.2.01", testUserID)
	s.Require().NoError(err)

	_, err = s.f.svc.Closing.CloseYear(s.ctx, 2024, testUserID)
	s.True(apperrors.IsValidation(err, apperrors.CodeNonPostableAccount), "got %v", err)
	s.Empty(s.closingJournals(), "the first two entries were rolled back with the third")

	closed, err := s.f.svc.Closing.HasClosingEntries(s.ctx, 2024)
	s.Require().NoError(err)
	s.False(closed)

	_, err = s.f.svc.Account.ActivateAccount(s.ctx, "3.2.01", testUserID)
	s.Require().NoError(err)
	_, err = s.f.svc.Closing.CloseYear(s.ctx, 2024, testUserID)
	s.NoError(err, "a failed close can be retried")
}

func (s *ClosingServiceTestSuite) TestCloseYearWithoutActivity() {
	result, err := s.f.svc.Closing.CloseYear(s.ctx, 2019, testUserID)
	s.Require().NoError(err)
	s.Empty(result.Entries)
	s.Empty(result.JournalIDs)
	s.True(result.NetIncome.IsZero())
}

func TestConcurrentCloseYearClosesOnce(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	f.seedChart(t, ctx)
	f.post(t, ctx, date(2024, 3, 1), "SALE", debit("1.1.01", "500.00"), credit("4.1.01", "500.00"))

	const workers = 6
	errs := make(chan error, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.Closing.CloseYear(ctx, 2024, testUserID)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	succeeded := 0
	for err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.True(t, apperrors.IsState(err, apperrors.CodeAlreadyClosed), "unexpected error %v", err)
	}
	assert.Equal(t, 1, succeeded)

	entries, err := f.svc.Closing.GetClosingEntries(ctx, 2024)
	require.NoError(t, err)
	assert.Len(t, entries, 2, "revenue entry and transfer entry only")
}

func TestCloseYearClosesEntriesPostedBeforeTheLock(t *testing.T) {
	ctx := context.Background()
	journals := &hookedJournals{}
	f := newFixtureWith(func(r *portsrepo.RepositoryProvider) {
		journals.JournalRepositoryWithTx = r.JournalRepo
		r.JournalRepo = journals
	})
	f.seedChart(t, ctx)
	f.post(t, ctx, date(2024, 3, 1), "SALE", debit("1.1.01", "500.00"), credit("4.1.01", "500.00"))

	// Commits after the already-closed check and before the closing transaction opens.
	journals.beforeBegin.arm(func() {
		f.post(t, ctx, date(2024, 6, 1), "LATE-SALE", debit("1.1.01", "250.00"), credit("4.1.02", "250.00"))
	})
	result, err := f.svc.Closing.CloseYear(ctx, 2024, testUserID)
	require.NoError(t, err)
	assert.True(t, dec("750").Equal(result.NetIncome), "got %s", result.NetIncome)

	yearStart := date(2024, 1, 1)
	revenue, err := f.svc.Ledger.ClosingBalance(ctx, "4", &yearStart, date(2024, 12, 31))
	require.NoError(t, err)
	assert.True(t, revenue.Closing.IsZero(), "revenue is zeroed, got %s", revenue.Closing)
	retained, err := f.svc.Ledger.ClosingBalance(ctx, "3.2.01", nil, date(2024, 12, 31))
	require.NoError(t, err)
	assert.True(t, dec("750").Equal(retained.Closing), "got %s", retained.Closing)
}
