package services_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/SscSPs/ledger_engine/internal/apperrors"
	"github.com/SscSPs/ledger_engine/internal/core/domain"
	"github.com/SscSPs/ledger_engine/internal/dto"
)

type JournalServiceTestSuite struct {
	suite.Suite
	ctx context.Context
	f   *fixture
}

func (s *JournalServiceTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.f = newFixture()
	s.f.seedChart(s.T(), s.ctx)
}

func TestJournalServiceTestSuite(t *testing.T) {
	suite.Run(t, new(JournalServiceTestSuite))
}

func (s *JournalServiceTestSuite) createDraft(on time.Time, lines ...domain.LineInput) *domain.JournalEntry {
	entry, err := s.f.svc.Journal.CreateDraft(s.ctx, draftInput(on, "REF", lines...), testUserID)
	s.Require().NoError(err)
	return entry
}

func (s *JournalServiceTestSuite) TestCreateDraftNumbersPerYear() {
	first := s.createDraft(date(2024, 1, 2), debit("1.1.01", "10.00"), credit("4.1.01", "10.00"))
	second := s.createDraft(date(2024, 5, 2), debit("1.1.01", "10.00"), credit("4.1.01", "10.00"))
	other := s.createDraft(date(2025, 1, 2), debit("1.1.01", "10.00"), credit("4.1.01", "10.00"))

	s.Equal("JE-2024-0001", first.JournalNumber)
	s.Equal("JE-2024-0002", second.JournalNumber)
	s.Equal("JE-2025-0001", other.JournalNumber)
	s.Equal(domain.Draft, first.Status)
	s.Equal(1, first.Lines[0].LineNo)
	s.Equal(2, first.Lines[1].LineNo)

	// A deleted draft leaves a gap.
	s.Require().NoError(s.f.svc.Journal.DeleteDraft(s.ctx, second.JournalID, testUserID))
	third := s.createDraft(date(2024, 6, 2), debit("1.1.01", "10.00"), credit("4.1.01", "10.00"))
	s.Equal("JE-2024-0003", third.JournalNumber)

	_, err := s.f.svc.Journal.GetJournalByID(s.ctx, second.JournalID)
	s.ErrorIs(err, apperrors.ErrNotFound)
}

func (s *JournalServiceTestSuite) TestCreateDraftValidation() {
	tests := []struct {
		name  string
		input domain.DraftInput
		code  apperrors.ValidationCode
		field string
	}{
		{
			name:  "single line",
			input: draftInput(date(2024, 1, 1), "X", debit("1.1.01", "1.00")),
			code:  apperrors.CodeTooFewLines,
			field: "lines",
		},
		{
			name:  "missing date",
			input: draftInput(time.Time{}, "X", debit("1.1.01", "1.00"), credit("4.1.01", "1.00")),
			code:  apperrors.CodeRequiredField,
			field: "date",
		},
		{
			name: "both sides set",
			input: draftInput(date(2024, 1, 1), "X",
				domain.LineInput{AccountCode: "1.1.01", Debit: dec("1.00"), Credit: dec("1.00")},
				credit("4.1.01", "1.00")),
			code:  apperrors.CodeInvalidLine,
			field: "lines[0]",
		},
		{
			name: "zero line",
			input: draftInput(date(2024, 1, 1), "X",
				debit("1.1.01", "1.00"),
				domain.LineInput{AccountCode: "4.1.01", Debit: decimal.Zero, Credit: decimal.Zero}),
			code:  apperrors.CodeInvalidLine,
			field: "lines[1]",
		},
		{
			name:  "negative amount",
			input: draftInput(date(2024, 1, 1), "X", debit("1.1.01", "-1.00"), credit("4.1.01", "1.00")),
			code:  apperrors.CodeInvalidLine,
			field: "lines[0]",
		},
		{
			name:  "sub-cent amount",
			input: draftInput(date(2024, 1, 1), "X", debit("1.1.01", "1.005"), credit("4.1.01", "1.005")),
			code:  apperrors.CodeInvalidLine,
			field: "lines[0]",
		},
		{
			name:  "blank account",
			input: draftInput(date(2024, 1, 1), "X", debit(" ", "1.00"), credit("4.1.01", "1.00")),
			code:  apperrors.CodeRequiredField,
			field: "lines[0].accountCode",
		},
		{
			name:  "unknown account",
			input: draftInput(date(2024, 1, 1), "X", debit("1.1.01", "1.00"), credit("4.1.99", "1.00")),
			code:  apperrors.CodeUnknownAccount,
			field: "lines[1].accountCode",
		},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			_, err := s.f.svc.Journal.CreateDraft(s.ctx, tt.input, testUserID)
			var verr *apperrors.ValidationError
			s.Require().True(errors.As(err, &verr), "expected a ValidationError, got %v", err)
			s.Equal(tt.code, verr.Code)
			s.Equal(tt.field, verr.Field)
		})
	}

	list, err := s.f.svc.Journal.ListJournals(s.ctx, dto.ListJournalsParams{})
	s.Require().NoError(err)
	s.Empty(list.Journals, "rejected drafts leave nothing behind")
}

func (s *JournalServiceTestSuite) TestUnbalancedDraftIsAcceptedButNotPostable() {
	draft := s.createDraft(date(2024, 6, 1),
		debit("5.1.01", "300000.00"), debit("5.1.02", "200000.00"),
		credit("1.1.01", "300000.00"))

	_, err := s.f.svc.Journal.PostJournal(s.ctx, draft.JournalID, testUserID)
	s.True(apperrors.IsValidation(err, apperrors.CodeUnbalanced), "got %v", err)

	reloaded, err := s.f.svc.Journal.GetJournalByID(s.ctx, draft.JournalID)
	s.Require().NoError(err)
	s.Equal(domain.Draft, reloaded.Status)
	s.Nil(reloaded.PostedAt)
}

func (s *JournalServiceTestSuite) TestPostRejectsNonPostableAccounts() {
	header := s.createDraft(date(2024, 6, 1), debit("1.1", "10.00"), credit("4.1.01", "10.00"))
	_, err := s.f.svc.Journal.PostJournal(s.ctx, header.JournalID, testUserID)
	s.True(apperrors.IsValidation(err, apperrors.CodeNonPostableAccount), "got %v", err)

	inactive := s.createDraft(date(2024, 6, 1), debit("1.1.02", "10.00"), credit("4.1.01", "10.00"))
	_, err = s.f.svc.Account.DeactivateAccount(s.ctx, "1.1.02", testUserID)
	s.Require().NoError(err)
	_, err = s.f.svc.Journal.PostJournal(s.ctx, inactive.JournalID, testUserID)
	s.True(apperrors.IsValidation(err, apperrors.CodeNonPostableAccount), "got %v", err)
}

func (s *JournalServiceTestSuite) TestPostSetsAuditFields() {
	draft := s.createDraft(date(2024, 6, 1), debit("1.1.01", "1000000.00"), credit("4.1.01", "1000000.00"))
	posted, err := s.f.svc.Journal.PostJournal(s.ctx, draft.JournalID, "poster")
	s.Require().NoError(err)
	s.Equal(domain.Posted, posted.Status)
	s.Require().NotNil(posted.PostedAt)
	s.Equal("poster", posted.PostedBy)

	_, err = s.f.svc.Journal.PostJournal(s.ctx, draft.JournalID, "poster")
	s.True(apperrors.IsState(err, apperrors.CodeNotDraft), "a second post is a state error, got %v", err)
}

func (s *JournalServiceTestSuite) TestVoidPreservesEntry() {
	posted := s.f.post(s.T(), s.ctx, date(2024, 6, 1), "SALE-1",
		debit("1.1.01", "1000000.00"), credit("4.1.01", "1000000.00"))

	_, err := s.f.svc.Journal.VoidJournal(s.ctx, posted.JournalID, "   ", testUserID)
	s.True(apperrors.IsValidation(err, apperrors.CodeVoidReasonRequired))

	voided, err := s.f.svc.Journal.VoidJournal(s.ctx, posted.JournalID, "test", "auditor")
	s.Require().NoError(err)
	s.Equal(domain.Void, voided.Status)
	s.Equal("test", voided.VoidReason)
	s.Equal("auditor", voided.VoidedBy)
	s.NotNil(voided.VoidedAt)

	reloaded, err := s.f.svc.Journal.GetJournalByID(s.ctx, posted.JournalID)
	s.Require().NoError(err)
	s.Equal(posted.JournalNumber, reloaded.JournalNumber)
	s.Equal(posted.Description, reloaded.Description)
	s.Require().Len(reloaded.Lines, len(posted.Lines))
	for i := range posted.Lines {
		s.Equal(posted.Lines[i].AccountCode, reloaded.Lines[i].AccountCode)
		s.True(posted.Lines[i].Debit.Equal(reloaded.Lines[i].Debit))
		s.True(posted.Lines[i].Credit.Equal(reloaded.Lines[i].Credit))
	}
	s.Equal(posted.PostedAt, reloaded.PostedAt)

	_, err = s.f.svc.Journal.VoidJournal(s.ctx, posted.JournalID, "again", testUserID)
	s.True(apperrors.IsState(err, apperrors.CodeNotPosted))
	_, err = s.f.svc.Journal.PostJournal(s.ctx, posted.JournalID, testUserID)
	s.True(apperrors.IsState(err, apperrors.CodeNotDraft))
	_, err = s.f.svc.Journal.UpdateDraft(s.ctx, posted.JournalID, draftInput(date(2024, 6, 1), "X",
		debit("1.1.01", "1.00"), credit("4.1.01", "1.00")), testUserID)
	s.True(apperrors.IsState(err, apperrors.CodeNotEditable))
	err = s.f.svc.Journal.DeleteDraft(s.ctx, posted.JournalID, testUserID)
	s.True(apperrors.IsState(err, apperrors.CodeNotEditable))
}

func (s *JournalServiceTestSuite) TestVoidDraftRejected() {
	draft := s.createDraft(date(2024, 6, 1), debit("1.1.01", "1.00"), credit("4.1.01", "1.00"))
	_, err := s.f.svc.Journal.VoidJournal(s.ctx, draft.JournalID, "mistake", testUserID)
	s.True(apperrors.IsState(err, apperrors.CodeNotPosted))
}

func (s *JournalServiceTestSuite) TestUpdateDraftKeepsNumber() {
	draft := s.createDraft(date(2024, 6, 1), debit("1.1.01", "1.00"), credit("4.1.01", "1.00"))

	updated, err := s.f.svc.Journal.UpdateDraft(s.ctx, draft.JournalID, draftInput(date(2024, 7, 15), "REF-2",
		debit("1.1.02", "75.50"), credit("4.1.01", "50.00"), credit("4.1.02", "25.50")), "editor")
	s.Require().NoError(err)
	s.Equal(draft.JournalNumber, updated.JournalNumber)
	s.Equal(date(2024, 7, 15), updated.JournalDate)
	s.Equal("REF-2", updated.ReferenceNumber)
	s.Len(updated.Lines, 3)
	s.Equal("editor", updated.LastUpdatedBy)

	_, err = s.f.svc.Journal.UpdateDraft(s.ctx, draft.JournalID, draftInput(date(2024, 7, 15), "REF-2",
		debit("1.1.02", "75.50")), testUserID)
	s.True(apperrors.IsValidation(err, apperrors.CodeTooFewLines))

	byNumber, err := s.f.svc.Journal.GetJournalByNumber(s.ctx, draft.JournalNumber)
	s.Require().NoError(err)
	s.Equal(draft.JournalID, byNumber.JournalID)
	s.Len(byNumber.Lines, 3)
}

func (s *JournalServiceTestSuite) TestUpdateDraftAcrossYearsKeepsNumber() {
	draft := s.createDraft(date(2024, 12, 30), debit("1.1.01", "1.00"), credit("4.1.01", "1.00"))
	s.Require().Equal("JE-2024-0001", draft.JournalNumber)

	updated, err := s.f.svc.Journal.UpdateDraft(s.ctx, draft.JournalID, draftInput(date(2025, 1, 2), "REF",
		debit("1.1.01", "1.00"), credit("4.1.01", "1.00")), testUserID)
	s.Require().NoError(err)
	s.Equal("JE-2024-0001", updated.JournalNumber, "the number records the year it was drafted in")
	s.Equal(date(2025, 1, 2), updated.JournalDate)

	next := s.createDraft(date(2025, 1, 3), debit("1.1.01", "1.00"), credit("4.1.01", "1.00"))
	s.Equal("JE-2025-0001", next.JournalNumber)
}

func (s *JournalServiceTestSuite) TestListJournals() {
	s.f.post(s.T(), s.ctx, date(2024, 1, 10), "INV-1", debit("1.1.01", "5.00"), credit("4.1.01", "5.00"))
	s.f.post(s.T(), s.ctx, date(2024, 2, 10), "INV-2", debit("1.1.01", "5.00"), credit("4.1.01", "5.00"))
	s.createDraft(date(2024, 3, 10), debit("1.1.01", "5.00"), credit("4.1.01", "5.00"))

	posted, err := s.f.svc.Journal.ListJournals(s.ctx, dto.ListJournalsParams{Status: "POSTED"})
	s.Require().NoError(err)
	s.Require().Len(posted.Journals, 2)
	s.Equal("INV-2", posted.Journals[0].ReferenceNumber, "newest first")

	ranged, err := s.f.svc.Journal.ListJournals(s.ctx, dto.ListJournalsParams{From: "2024-02-01", To: "2024-03-31"})
	s.Require().NoError(err)
	s.Len(ranged.Journals, 2)

	_, err = s.f.svc.Journal.ListJournals(s.ctx, dto.ListJournalsParams{From: "02/01/2024"})
	s.True(apperrors.IsValidation(err, apperrors.CodeInvalidPeriod))
	_, err = s.f.svc.Journal.ListJournals(s.ctx, dto.ListJournalsParams{From: "2024-03-01", To: "2024-02-01"})
	s.True(apperrors.IsValidation(err, apperrors.CodeInvalidPeriod))
}

func (s *JournalServiceTestSuite) TestAccountImpact() {
	s.f.post(s.T(), s.ctx, date(2024, 1, 10), "CAP", debit("1.1.01", "100.00"), credit("3.1.01", "100.00"))
	draft := s.createDraft(date(2024, 2, 1), debit("1.1.01", "50.00"), credit("4.1.01", "50.00"))

	impacts, err := s.f.svc.Journal.GetAccountImpact(s.ctx, draft.JournalID)
	s.Require().NoError(err)
	s.Require().Len(impacts, 2)
	s.Equal("1.1.01", impacts[0].AccountCode)
	s.True(dec("100").Equal(impacts[0].BalanceBefore))
	s.True(dec("150").Equal(impacts[0].BalanceAfter))
	s.True(decimal.Zero.Equal(impacts[1].BalanceBefore))
	s.True(dec("50").Equal(impacts[1].BalanceAfter))

	// Once posted the entry no longer counts toward its own "before".
	_, err = s.f.svc.Journal.PostJournal(s.ctx, draft.JournalID, testUserID)
	s.Require().NoError(err)
	impacts, err = s.f.svc.Journal.GetAccountImpact(s.ctx, draft.JournalID)
	s.Require().NoError(err)
	s.True(dec("100").Equal(impacts[0].BalanceBefore))
	s.True(dec("150").Equal(impacts[0].BalanceAfter))
}

func (s *JournalServiceTestSuite) TestFailedInsertRollsBackNumber() {
	s.f.store.failInsert = errors.New("disk full")
	_, err := s.f.svc.Journal.CreateDraft(s.ctx, draftInput(date(2024, 1, 1), "X",
		debit("1.1.01", "1.00"), credit("4.1.01", "1.00")), testUserID)
	s.Require().Error(err)
	s.NotErrorIs(err, apperrors.ErrValidation)

	s.f.store.failInsert = nil
	draft := s.createDraft(date(2024, 1, 1), debit("1.1.01", "1.00"), credit("4.1.01", "1.00"))
	s.Equal("JE-2024-0001", draft.JournalNumber)
}

func TestConcurrentCreateDraftAllocatesUniqueNumbers(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	f.seedChart(t, ctx)

	const workers = 25
	numbers := make(chan string, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			entry, err := f.svc.Journal.CreateDraft(ctx, draftInput(date(2024, 4, 1), "C",
				debit("1.1.01", "1.00"), credit("4.1.01", "1.00")), testUserID)
			if assert.NoError(t, err) {
				numbers <- entry.JournalNumber
			}
		}()
	}
	wg.Wait()
	close(numbers)

	seen := map[string]struct{}{}
	for n := range numbers {
		_, dup := seen[n]
		assert.False(t, dup, "number %s allocated twice", n)
		seen[n] = struct{}{}
	}
	assert.Len(t, seen, workers)
	assert.Contains(t, seen, "JE-2024-0025")
}

func TestConcurrentPostSucceedsExactlyOnce(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	f.seedChart(t, ctx)

	draft, err := f.svc.Journal.CreateDraft(ctx, draftInput(date(2024, 4, 1), "P",
		debit("1.1.01", "9.99"), credit("4.1.01", "9.99")), testUserID)
	require.NoError(t, err)

	const workers = 10
	errs := make(chan error, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.Journal.PostJournal(ctx, draft.JournalID, testUserID)
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
		assert.True(t, apperrors.IsState(err, apperrors.CodeNotDraft), "unexpected error %v", err)
	}
	assert.Equal(t, 1, succeeded)
}
