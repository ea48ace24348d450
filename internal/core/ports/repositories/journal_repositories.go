package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/ledger_engine/internal/core/domain"
	"github.com/jackc/pgx/v5"
)

// JournalReader defines read operations for journal data
type JournalReader interface {
	// FindJournalByID retrieves a journal entry and its lines.
	FindJournalByID(ctx context.Context, journalID string) (*domain.JournalEntry, error)

	// FindJournalByNumber retrieves a journal entry and its lines by JE-YYYY-NNNN number.
	FindJournalByNumber(ctx context.Context, journalNumber string) (*domain.JournalEntry, error)

	// ListJournals retrieves a page of entries (newest first) using token-based pagination.
	// It returns the entries, a token for the next page, and an error.
	ListJournals(ctx context.Context, filter domain.JournalFilter, limit int, nextToken *string) ([]domain.JournalEntry, *string, error)

	// FindPostedByReferencePrefix retrieves POSTED entries whose reference starts with prefix,
	// dated within [from, to].
	FindPostedByReferencePrefix(ctx context.Context, prefix string, from, to time.Time) ([]domain.JournalEntry, error)

	// HasPostedWithReferencePrefix reports whether any POSTED entry matches prefix within [from, to].
	HasPostedWithReferencePrefix(ctx context.Context, prefix string, from, to time.Time) (bool, error)
}

// JournalWriter defines transactional write operations for journal data.
// Every method runs inside the caller's transaction.
type JournalWriter interface {
	// NextJournalSequence atomically increments and returns the per-year journal counter.
	NextJournalSequence(ctx context.Context, tx pgx.Tx, year int) (int64, error)

	// InsertJournal persists a new entry with its lines.
	InsertJournal(ctx context.Context, tx pgx.Tx, entry domain.JournalEntry) error

	// ReplaceDraft overwrites the header fields and the full line set of a draft.
	ReplaceDraft(ctx context.Context, tx pgx.Tx, entry domain.JournalEntry) error

	// FindJournalByIDForUpdate reads an entry and locks its row until the transaction ends.
	FindJournalByIDForUpdate(ctx context.Context, tx pgx.Tx, journalID string) (*domain.JournalEntry, error)

	// UpdateJournalStatus persists the status, posting and voiding fields of an entry.
	UpdateJournalStatus(ctx context.Context, tx pgx.Tx, entry domain.JournalEntry) error

	// DeleteJournal removes an entry and its lines.
	DeleteJournal(ctx context.Context, tx pgx.Tx, journalID string) error
}

// JournalTransactionSupport defines locking reads used by multi-step writers such as year closing.
type JournalTransactionSupport interface {
	// LockFiscalYear takes a transaction-scoped exclusive lock for one fiscal year.
	LockFiscalYear(ctx context.Context, tx pgx.Tx, year int) error

	// HasPostedWithReferencePrefixTx is HasPostedWithReferencePrefix evaluated inside tx.
	HasPostedWithReferencePrefixTx(ctx context.Context, tx pgx.Tx, prefix string, from, to time.Time) (bool, error)

	// FindPostedByReferencePrefixForUpdate is FindPostedByReferencePrefix with row locks.
	FindPostedByReferencePrefixForUpdate(ctx context.Context, tx pgx.Tx, prefix string, from, to time.Time) ([]domain.JournalEntry, error)
}

// JournalRepositoryFacade combines all journal-related repository interfaces
// This is a facade for clients that need access to all operations
type JournalRepositoryFacade interface {
	JournalReader
	JournalWriter
	JournalTransactionSupport
}

// JournalRepositoryWithTx extends JournalRepositoryFacade with transaction capabilities
type JournalRepositoryWithTx interface {
	JournalRepositoryFacade
	TransactionManager
}
