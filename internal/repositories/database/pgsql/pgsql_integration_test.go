//go:build integration

package pgsql_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/SscSPs/ledger_engine/internal/apperrors"
	"github.com/SscSPs/ledger_engine/internal/core/domain"
	portsrepo "github.com/SscSPs/ledger_engine/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/ledger_engine/internal/core/ports/services"
	"github.com/SscSPs/ledger_engine/internal/core/services"
	"github.com/SscSPs/ledger_engine/internal/dto"
	"github.com/SscSPs/ledger_engine/internal/platform/config"
	"github.com/SscSPs/ledger_engine/internal/repositories/database/pgsql"
	"github.com/SscSPs/ledger_engine/pkg/database"
)

const (
	migrationsPath = "file://../../../../migrations"
	testUserID     = "integration"
)

type PgsqlIntegrationSuite struct {
	suite.Suite
	ctx       context.Context
	container *tcpostgres.PostgresContainer
	pool      *pgxpool.Pool
	repos     portsrepo.RepositoryProvider
	svc       *portssvc.ServiceContainer
}

func TestPgsqlIntegrationSuite(t *testing.T) {
	suite.Run(t, new(PgsqlIntegrationSuite))
}

func (s *PgsqlIntegrationSuite) SetupSuite() {
	s.ctx = context.Background()

	container, err := tcpostgres.Run(s.ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("ledger"),
		tcpostgres.WithUsername("test"),
		tcpostgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	s.Require().NoError(err)
	s.container = container

	dsn, err := container.ConnectionString(s.ctx, "sslmode=disable")
	s.Require().NoError(err)
	s.Require().NoError(database.RunMigrations(dsn, migrationsPath, nil))

	s.pool, err = database.NewPgxPool(s.ctx, dsn, database.PoolOptions{MaxConns: 10, Ping: true})
	s.Require().NoError(err)

	s.repos = pgsql.NewRepositoryProvider(s.pool)
	cfg := &config.Config{MaxAccountDepth: 16, RetainedEarningsCode: "3.2.01", CurrentEarningsCode: "3.2.02"}
	s.svc = services.NewServiceContainer(cfg, s.repos, nil)
}

func (s *PgsqlIntegrationSuite) TearDownSuite() {
	database.ClosePgxPool(s.pool)
	if s.container != nil {
		s.Require().NoError(s.container.Terminate(s.ctx))
	}
}

func (s *PgsqlIntegrationSuite) SetupTest() {
	_, err := s.pool.Exec(s.ctx, `TRUNCATE journal_lines, journal_entries, journal_sequences, accounts;`)
	s.Require().NoError(err)

	chart := []struct{ code, name, parent string }{
		{"1", "Aset", ""}, {"1.1", "Aset Lancar", "1"}, {"1.1.01", "Kas", "1.1"},
		{"3", "Ekuitas", ""}, {"3.1", "Modal", "3"}, {"3.1.01", "Modal Disetor", "3.1"},
		{"3.2", "Laba", "3"}, {"3.2.01", "Laba Ditahan", "3.2"}, {"3.2.02", "Laba Berjalan", "3.2"},
		{"4", "Pendapatan", ""}, {"4.1", "Pendapatan Usaha", "4"}, {"4.1.01", "Pendapatan Jasa", "4.1"},
		{"5", "Beban", ""}, {"5.1", "Beban Operasional", "5"}, {"5.1.01", "Beban Gaji", "5.1"},
	}
	roots := map[string]domain.AccountType{"1": domain.Asset, "3": domain.Equity, "4": domain.Revenue, "5": domain.Expense}
	for _, a := range chart {
		req := dto.CreateAccountRequest{Code: a.code, Name: a.name}
		if a.parent == "" {
			req.AccountType = roots[a.code]
			req.NormalBalance, _ = domain.NormalBalanceFor(req.AccountType)
		} else {
			parent := a.parent
			req.ParentCode = &parent
		}
		_, err := s.svc.Account.CreateAccount(s.ctx, req, testUserID)
		s.Require().NoError(err, a.code)
	}
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func line(code, debit, credit string) domain.LineInput {
	return domain.LineInput{AccountCode: code, Debit: decimal.RequireFromString(debit), Credit: decimal.RequireFromString(credit)}
}

func (s *PgsqlIntegrationSuite) post(on time.Time, ref string, lines ...domain.LineInput) *domain.JournalEntry {
	draft, err := s.svc.Journal.CreateDraft(s.ctx, domain.DraftInput{JournalDate: on, ReferenceNumber: ref, Lines: lines}, testUserID)
	s.Require().NoError(err)
	posted, err := s.svc.Journal.PostJournal(s.ctx, draft.JournalID, testUserID)
	s.Require().NoError(err)
	return posted
}

func (s *PgsqlIntegrationSuite) TestAccountHeaderFlagAndDuplicate() {
	parent, err := s.repos.AccountRepo.FindAccountByCode(s.ctx, "1.1")
	s.Require().NoError(err)
	s.True(parent.IsHeader)

	parentCode := "1.1"
	_, err = s.svc.Account.CreateAccount(s.ctx, dto.CreateAccountRequest{Code: "1.1.01", Name: "Dup", ParentCode: &parentCode}, testUserID)
	s.True(apperrors.IsValidation(err, apperrors.CodeDuplicateCode), "got %v", err)

	s.Require().NoError(s.svc.Account.DeleteAccount(s.ctx, "5.1.01"))
	leaf, err := s.repos.AccountRepo.FindAccountByCode(s.ctx, "5.1")
	s.Require().NoError(err)
	s.False(leaf.IsHeader)

	_, err = s.repos.AccountRepo.FindAccountByCode(s.ctx, "9")
	s.ErrorIs(err, apperrors.ErrNotFound)
}

func (s *PgsqlIntegrationSuite) TestListAccountsFilters() {
	leaves, err := s.repos.AccountRepo.ListAccounts(s.ctx, domain.AccountFilter{LeafOnly: true})
	s.Require().NoError(err)
	s.Len(leaves, 6)

	found, err := s.repos.AccountRepo.ListAccounts(s.ctx, domain.AccountFilter{Search: "laba"})
	s.Require().NoError(err)
	s.Len(found, 3)

	page, err := s.repos.AccountRepo.ListAccounts(s.ctx, domain.AccountFilter{RootsOnly: true, Limit: 2, Offset: 1})
	s.Require().NoError(err)
	s.Require().Len(page, 2)
	s.Equal("3", page[0].Code)
}

func (s *PgsqlIntegrationSuite) TestJournalRoundTripAndBalances() {
	entry := s.post(day(2024, 3, 1), "SALE", line("1.1.01", "150.25", "0"), line("4.1.01", "0", "150.25"))
	s.Equal("JE-2024-0001", entry.JournalNumber)

	loaded, err := s.repos.JournalRepo.FindJournalByNumber(s.ctx, "JE-2024-0001")
	s.Require().NoError(err)
	s.Equal(domain.Posted, loaded.Status)
	s.Require().Len(loaded.Lines, 2)
	s.Equal(1, loaded.Lines[0].LineNo)
	s.True(decimal.RequireFromString("150.25").Equal(loaded.Lines[0].Debit))

	balance, err := s.svc.Ledger.ClosingBalance(s.ctx, "1", nil, day(2024, 12, 31))
	s.Require().NoError(err)
	s.True(decimal.RequireFromString("150.25").Equal(balance.Closing), "got %s", balance.Closing)

	gl, err := s.svc.Ledger.GeneralLedger(s.ctx, "4.1.01", day(2024, 1, 1), day(2024, 12, 31))
	s.Require().NoError(err)
	s.Require().Len(gl.Lines, 1)
	s.Equal("SALE", gl.Lines[0].ReferenceNumber)

	_, err = s.svc.Journal.VoidJournal(s.ctx, entry.JournalID, "wrong amount", testUserID)
	s.Require().NoError(err)
	balance, err = s.svc.Ledger.ClosingBalance(s.ctx, "1", nil, day(2024, 12, 31))
	s.Require().NoError(err)
	s.True(balance.Closing.IsZero())
}

func (s *PgsqlIntegrationSuite) TestSnapshotIgnoresLaterCommits() {
	s.post(day(2024, 1, 2), "CAPITAL", line("1.1.01", "1000", "0"), line("3.1.01", "0", "1000"))
	yearStart := day(2024, 1, 1)
	asOf := day(2024, 6, 30)
	query := portsrepo.ActivityQuery{AccountCodes: []string{"1.1.01", "4.1.01"}, PeriodStart: &yearStart, To: &asOf}

	tx, err := s.repos.LedgerRepo.BeginSnapshot(s.ctx)
	s.Require().NoError(err)
	defer func() { s.NoError(s.repos.LedgerRepo.EndSnapshot(s.ctx, tx)) }()

	before, err := s.repos.LedgerRepo.SumPostedActivity(s.ctx, tx, query)
	s.Require().NoError(err)
	s.post(day(2024, 5, 1), "SALE", line("1.1.01", "500", "0"), line("4.1.01", "0", "500"))

	after, err := s.repos.LedgerRepo.SumPostedActivity(s.ctx, tx, query)
	s.Require().NoError(err)
	s.True(before["1.1.01"].Period.TotalDebit.Equal(after["1.1.01"].Period.TotalDebit), "snapshot saw a later commit")
	s.NotContains(after, "4.1.01")
	lines, err := s.repos.LedgerRepo.ListPostedLines(s.ctx, tx, []string{"1.1.01"}, yearStart, asOf)
	s.Require().NoError(err)
	s.Len(lines, 1)

	fresh, err := s.repos.LedgerRepo.SumPostedActivity(s.ctx, nil, query)
	s.Require().NoError(err)
	s.True(decimal.RequireFromString("1500").Equal(fresh["1.1.01"].Period.TotalDebit))

	bs, err := s.svc.Reporting.BalanceSheet(s.ctx, asOf)
	s.Require().NoError(err)
	s.True(bs.Balanced)
}

func (s *PgsqlIntegrationSuite) TestListJournalsPagination() {
	for i := 1; i <= 5; i++ {
		s.post(day(2024, 1, i), "PAGE", line("1.1.01", "10", "0"), line("3.1.01", "0", "10"))
	}

	seen := map[string]bool{}
	var token *string
	pages := 0
	for {
		entries, next, err := s.repos.JournalRepo.ListJournals(s.ctx, domain.JournalFilter{ReferencePrefix: "PAGE"}, 2, token)
		s.Require().NoError(err)
		for _, e := range entries {
			s.False(seen[e.JournalID], "entry %s returned twice", e.JournalNumber)
			seen[e.JournalID] = true
		}
		pages++
		if next == nil {
			break
		}
		token = next
	}
	s.Len(seen, 5)
	s.Equal(3, pages)

	bad := "not-a-token"
	_, _, err := s.repos.JournalRepo.ListJournals(s.ctx, domain.JournalFilter{}, 2, &bad)
	s.Error(err)
}

func (s *PgsqlIntegrationSuite) TestConcurrentDraftsGetUniqueNumbers() {
	const workers = 8
	var wg sync.WaitGroup
	numbers := make(chan string, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			draft, err := s.svc.Journal.CreateDraft(s.ctx, domain.DraftInput{
				JournalDate: day(2025, 2, 1),
				Lines:       []domain.LineInput{line("1.1.01", "1", "0"), line("3.1.01", "0", "1")},
			}, testUserID)
			if err == nil {
				numbers <- draft.JournalNumber
			}
		}()
	}
	wg.Wait()
	close(numbers)

	unique := map[string]bool{}
	for n := range numbers {
		unique[n] = true
	}
	s.Len(unique, workers)
}

func (s *PgsqlIntegrationSuite) TestCloseAndReverseYear() {
	s.post(day(2024, 2, 1), "CAPITAL", line("1.1.01", "1000", "0"), line("3.1.01", "0", "1000"))
	s.post(day(2024, 5, 1), "SALE", line("1.1.01", "400", "0"), line("4.1.01", "0", "400"))
	s.post(day(2024, 6, 1), "SALARY", line("5.1.01", "150", "0"), line("1.1.01", "0", "150"))

	var wg sync.WaitGroup
	results := make(chan error, 3)
	for i := 0; i < 3; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.svc.Closing.CloseYear(s.ctx, 2024, testUserID)
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	succeeded := 0
	for err := range results {
		if err == nil {
			succeeded++
			continue
		}
		s.ErrorIs(err, apperrors.ErrState)
	}
	s.Equal(1, succeeded, "exactly one close wins")

	entries, err := s.svc.Closing.GetClosingEntries(s.ctx, 2024)
	s.Require().NoError(err)
	s.Len(entries, 3)

	retained, err := s.svc.Ledger.ClosingBalance(s.ctx, "3.2.01", nil, day(2024, 12, 31))
	s.Require().NoError(err)
	s.True(decimal.RequireFromString("250").Equal(retained.Closing), "got %s", retained.Closing)

	voided, err := s.svc.Closing.ReverseClosing(s.ctx, 2024, "reopen", testUserID)
	s.Require().NoError(err)
	s.Equal(3, voided)
	closed, err := s.svc.Closing.HasClosingEntries(s.ctx, 2024)
	s.Require().NoError(err)
	s.False(closed)
}
