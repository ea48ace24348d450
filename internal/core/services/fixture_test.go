package services_test

import (
	"context"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/SscSPs/ledger_engine/internal/core/domain"
	portsrepo "github.com/SscSPs/ledger_engine/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/ledger_engine/internal/core/ports/services"
	"github.com/SscSPs/ledger_engine/internal/core/services"
	"github.com/SscSPs/ledger_engine/internal/dto"
	"github.com/SscSPs/ledger_engine/internal/platform/config"
)

const testUserID = "user-1"

type seedAccount struct {
	code, name, parent string
	accountType        domain.AccountType
}

// standardChart is a small chart with one header branch per account type.
var standardChart = []seedAccount{
	{code: "1", name: "Aset", accountType: domain.Asset},
	{code: "1.1", name: "Aset Lancar", parent: "1"},
	{code: "1.1.01", name: "Kas", parent: "1.1"},
	{code: "1.1.02", name: "Bank", parent: "1.1"},
	{code: "2", name: "Kewajiban", accountType: domain.Liability},
	{code: "2.1", name: "Utang Lancar", parent: "2"},
	{code: "2.1.01", name: "Utang Usaha", parent: "2.1"},
	{code: "3", name: "Ekuitas", accountType: domain.Equity},
	{code: "3.1", name: "Modal", parent: "3"},
	{code: "3.1.01", name: "Modal Disetor", parent: "3.1"},
	{code: "3.2", name: "Laba", parent: "3"},
	{code: "3.2.01", name: "Laba Ditahan", parent: "3.2"},
	{code: "3.2.02", name: "Laba Berjalan", parent: "3.2"},
	{code: "4", name: "Pendapatan", accountType: domain.Revenue},
	{code: "4.1", name: "Pendapatan Usaha", parent: "4"},
	{code: "4.1.01", name: "Pendapatan Jasa", parent: "4.1"},
	{code: "4.1.02", name: "Pendapatan Lain", parent: "4.1"},
	{code: "5", name: "Beban", accountType: domain.Expense},
	{code: "5.1", name: "Beban Operasional", parent: "5"},
	{code: "5.1.01", name: "Beban Gaji", parent: "5.1"},
	{code: "5.1.02", name: "Beban Sewa", parent: "5.1"},
}

type fixture struct {
	store *memStore
	svc   *portssvc.ServiceContainer
}

func newFixture() *fixture {
	return newFixtureWith(nil)
}

// newFixtureWith lets a test wrap repositories before the services are built.
func newFixtureWith(wrap func(*portsrepo.RepositoryProvider)) *fixture {
	store := newMemStore()
	cfg := &config.Config{
		MaxAccountDepth:      16,
		RetainedEarningsCode: "3.2.01",
		CurrentEarningsCode:  "3.2.02",
	}
	repos := store.provider()
	if wrap != nil {
		wrap(&repos)
	}
	return &fixture{store: store, svc: services.NewServiceContainer(cfg, repos, nil)}
}

// oneShot runs a callback the next time fire is called, then disarms.
type oneShot struct {
	mu sync.Mutex
	fn func()
}

func (o *oneShot) arm(fn func()) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.fn = fn
}

func (o *oneShot) fire() {
	o.mu.Lock()
	fn := o.fn
	o.fn = nil
	o.mu.Unlock()
	if fn != nil {
		fn()
	}
}

// hookedLedger interleaves a write with a running ledger read.
type hookedLedger struct {
	portsrepo.LedgerReader
	beforeSum   oneShot
	beforeLines oneShot
}

func (h *hookedLedger) SumPostedActivity(ctx context.Context, tx pgx.Tx, q portsrepo.ActivityQuery) (map[string]domain.WindowActivity, error) {
	h.beforeSum.fire()
	return h.LedgerReader.SumPostedActivity(ctx, tx, q)
}

func (h *hookedLedger) ListPostedLines(ctx context.Context, tx pgx.Tx, accountCodes []string, from, to time.Time) ([]domain.LedgerLine, error) {
	h.beforeLines.fire()
	return h.LedgerReader.ListPostedLines(ctx, tx, accountCodes, from, to)
}

// hookedJournals runs a callback just before a write transaction opens.
type hookedJournals struct {
	portsrepo.JournalRepositoryWithTx
	beforeBegin oneShot
}

func (h *hookedJournals) Begin(ctx context.Context) (pgx.Tx, error) {
	h.beforeBegin.fire()
	return h.JournalRepositoryWithTx.Begin(ctx)
}

func (f *fixture) seedChart(t require.TestingT, ctx context.Context) {
	for _, a := range standardChart {
		req := dto.CreateAccountRequest{Code: a.code, Name: a.name}
		if a.parent != "" {
			parent := a.parent
			req.ParentCode = &parent
		} else {
			side, _ := domain.NormalBalanceFor(a.accountType)
			req.AccountType = a.accountType
			req.NormalBalance = side
		}
		_, err := f.svc.Account.CreateAccount(ctx, req, testUserID)
		require.NoError(t, err, "seeding %s", a.code)
	}
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func debit(code, amount string) domain.LineInput {
	return domain.LineInput{AccountCode: code, Debit: dec(amount), Credit: decimal.Zero}
}

func credit(code, amount string) domain.LineInput {
	return domain.LineInput{AccountCode: code, Debit: decimal.Zero, Credit: dec(amount)}
}

func draftInput(on time.Time, ref string, lines ...domain.LineInput) domain.DraftInput {
	return domain.DraftInput{JournalDate: on, ReferenceNumber: ref, Description: ref, Lines: lines}
}

// post creates and posts an entry, failing the test on any error.
func (f *fixture) post(t require.TestingT, ctx context.Context, on time.Time, ref string, lines ...domain.LineInput) *domain.JournalEntry {
	draft, err := f.svc.Journal.CreateDraft(ctx, draftInput(on, ref, lines...), testUserID)
	require.NoError(t, err)
	posted, err := f.svc.Journal.PostJournal(ctx, draft.JournalID, testUserID)
	require.NoError(t, err)
	return posted
}
