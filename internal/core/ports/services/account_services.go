package services

import (
	"context"

	"github.com/SscSPs/ledger_engine/internal/core/domain"
	"github.com/SscSPs/ledger_engine/internal/dto"
)

// AccountReaderSvc defines read operations for accounts
type AccountReaderSvc interface {
	// GetAccountByCode retrieves a specific account by its code.
	GetAccountByCode(ctx context.Context, code string) (*domain.Account, error)

	// ListAccounts retrieves accounts matching the filter, ordered by code.
	ListAccounts(ctx context.Context, filter domain.AccountFilter) ([]domain.Account, error)

	// ListChildren retrieves the direct children of an account.
	ListChildren(ctx context.Context, code string) ([]domain.Account, error)

	// ResolveAncestry returns the chain from the account up to its root, the account first.
	ResolveAncestry(ctx context.Context, code string) ([]domain.Account, error)
}

// AccountWriterSvc defines write operations for accounts
type AccountWriterSvc interface {
	// CreateAccount creates a new account in the chart.
	CreateAccount(ctx context.Context, req dto.CreateAccountRequest, creatorUserID string) (*domain.Account, error)

	// UpdateAccount updates an existing account.
	UpdateAccount(ctx context.Context, code string, req dto.UpdateAccountRequest, userID string) (*domain.Account, error)

	// ActivateAccount allows the account to receive postings again.
	ActivateAccount(ctx context.Context, code string, userID string) (*domain.Account, error)

	// DeactivateAccount blocks new postings to the account. History is kept.
	DeactivateAccount(ctx context.Context, code string, userID string) (*domain.Account, error)

	// DeleteAccount hard-deletes an account without children or journal lines.
	DeleteAccount(ctx context.Context, code string) error
}

// AccountSvcFacade combines all account-related service interfaces
// This is a facade for clients that need access to all operations
type AccountSvcFacade interface {
	AccountReaderSvc
	AccountWriterSvc
}
