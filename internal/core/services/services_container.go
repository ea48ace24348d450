package services

import (
	"time"

	portsrepo "github.com/SscSPs/ledger_engine/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/ledger_engine/internal/core/ports/services"
	"github.com/SscSPs/ledger_engine/internal/platform/config"
	"github.com/SscSPs/ledger_engine/internal/platform/metrics"
)

// NewServiceContainer creates a new service container with properly initialized dependencies
func NewServiceContainer(cfg *config.Config, repos portsrepo.RepositoryProvider, m *metrics.Metrics) *portssvc.ServiceContainer {
	base := BaseService{Metrics: m, Now: time.Now}
	container := &portssvc.ServiceContainer{}

	container.Account = NewAccountService(
		repos.AccountRepo,
		WithAccountBase(base),
		WithMaxAccountDepth(cfg.MaxAccountDepth),
	)

	journals := NewJournalService(
		repos.JournalRepo,
		repos.AccountRepo,
		WithJournalBase(base),
		WithJournalLedgerReader(repos.LedgerRepo),
	)
	container.Journal = journals

	container.Ledger = NewLedgerService(
		repos.AccountRepo,
		repos.LedgerRepo,
		WithLedgerBase(base),
		WithLedgerMaxDepth(cfg.MaxAccountDepth),
	)

	// Reporting and closing both read balances through the ledger service
	container.Reporting = NewReportingService(container.Ledger, WithReportingBase(base))
	container.Closing = NewClosingService(
		repos.JournalRepo,
		journals,
		container.Ledger,
		WithClosingBase(base),
		WithEarningsAccounts(cfg.RetainedEarningsCode, cfg.CurrentEarningsCode),
	)

	return container
}

// Helper to check interface implementations at compile time
var (
	_ portssvc.AccountSvcFacade = (*accountService)(nil)
	_ portssvc.JournalSvcFacade = (*journalService)(nil)
	_ portssvc.ClosingSvc       = (*closingService)(nil)
)
