package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/ledger_engine/internal/core/domain"
	"github.com/jackc/pgx/v5"
)

// AccountReader defines read operations for account data
type AccountReader interface {
	// FindAccountByCode retrieves a specific account by its code.
	FindAccountByCode(ctx context.Context, code string) (*domain.Account, error)

	// FindAccountsByCodes retrieves multiple accounts keyed by code. Unknown codes are absent from the map.
	FindAccountsByCodes(ctx context.Context, codes []string) (map[string]domain.Account, error)

	// ListAccounts retrieves accounts ordered by code. An empty filter returns the whole chart.
	ListAccounts(ctx context.Context, filter domain.AccountFilter) ([]domain.Account, error)

	// ListChildren retrieves the direct children of an account.
	ListChildren(ctx context.Context, parentCode string) ([]domain.Account, error)

	// HasJournalLines reports whether any journal line, in any status, references one of the codes.
	HasJournalLines(ctx context.Context, codes []string) (bool, error)
}

// AccountWriter defines write operations for account data
type AccountWriter interface {
	// SaveAccount persists a new account and marks its parent as a header.
	// A code collision is reported as apperrors.ErrDuplicate.
	SaveAccount(ctx context.Context, account domain.Account) error

	// UpdateAccount updates an existing account's mutable fields.
	UpdateAccount(ctx context.Context, account domain.Account) error

	// RetypeSubtree sets the type and normal balance of a root account and all its descendants.
	RetypeSubtree(ctx context.Context, rootCode string, accountType domain.AccountType, side domain.BalanceSide, userID string, now time.Time) error

	// SetAccountActive toggles the active flag.
	SetAccountActive(ctx context.Context, code string, active bool, userID string, now time.Time) error

	// DeleteAccount hard-deletes an account and clears its parent's header flag when it was the last child.
	DeleteAccount(ctx context.Context, code string) error
}

// AccountTransactionSupport defines operations that support journal transactions
type AccountTransactionSupport interface {
	// FindAccountsByCodesForShare reads accounts inside tx and holds a share lock on them,
	// so they cannot be deactivated or turned into headers until the transaction ends.
	FindAccountsByCodesForShare(ctx context.Context, tx pgx.Tx, codes []string) (map[string]domain.Account, error)

	// ListAccountsTx is ListAccounts read inside tx.
	ListAccountsTx(ctx context.Context, tx pgx.Tx, filter domain.AccountFilter) ([]domain.Account, error)
}

// AccountRepositoryFacade combines all account-related repository interfaces
// This is a facade for clients that need access to all operations
type AccountRepositoryFacade interface {
	AccountReader
	AccountWriter
	AccountTransactionSupport
}

// AccountRepositoryWithTx extends AccountRepositoryFacade with transaction capabilities
type AccountRepositoryWithTx interface {
	AccountRepositoryFacade
	TransactionManager
}
