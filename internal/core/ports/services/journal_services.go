package services

import (
	"context"

	"github.com/SscSPs/ledger_engine/internal/core/domain"
	"github.com/SscSPs/ledger_engine/internal/dto"
	"github.com/jackc/pgx/v5"
)

// JournalReaderSvc defines read operations for journal entries
type JournalReaderSvc interface {
	// GetJournalByID retrieves a journal entry with its lines.
	GetJournalByID(ctx context.Context, journalID string) (*domain.JournalEntry, error)

	// GetJournalByNumber retrieves a journal entry by its JE-YYYY-NNNN number.
	GetJournalByNumber(ctx context.Context, journalNumber string) (*domain.JournalEntry, error)

	// ListJournals retrieves a page of journal entries.
	ListJournals(ctx context.Context, params dto.ListJournalsParams) (*dto.ListJournalsResponse, error)

	// GetAccountImpact previews how an entry moves each account it touches.
	GetAccountImpact(ctx context.Context, journalID string) ([]domain.AccountImpact, error)
}

// JournalWriterSvc defines lifecycle operations for journal entries
type JournalWriterSvc interface {
	// CreateDraft validates the input and stores a new DRAFT entry with a fresh number.
	CreateDraft(ctx context.Context, input domain.DraftInput, creatorUserID string) (*domain.JournalEntry, error)

	// UpdateDraft replaces the header and lines of a DRAFT entry.
	UpdateDraft(ctx context.Context, journalID string, input domain.DraftInput, userID string) (*domain.JournalEntry, error)

	// DeleteDraft removes a DRAFT entry.
	DeleteDraft(ctx context.Context, journalID string, userID string) error

	// PostJournal moves a balanced DRAFT entry to POSTED.
	PostJournal(ctx context.Context, journalID string, userID string) (*domain.JournalEntry, error)

	// VoidJournal moves a POSTED entry to VOID.
	VoidJournal(ctx context.Context, journalID string, reason string, userID string) (*domain.JournalEntry, error)
}

// JournalTxSvc exposes the lifecycle operations inside a caller-owned transaction,
// so several entries can be created and posted atomically.
type JournalTxSvc interface {
	CreateDraftTx(ctx context.Context, tx pgx.Tx, input domain.DraftInput, creatorUserID string) (*domain.JournalEntry, error)
	PostJournalTx(ctx context.Context, tx pgx.Tx, journalID string, userID string) (*domain.JournalEntry, error)
	VoidJournalTx(ctx context.Context, tx pgx.Tx, journalID string, reason string, userID string) (*domain.JournalEntry, error)
}

// JournalSvcFacade combines all journal-related service interfaces
// This is a facade for clients that need access to all operations
type JournalSvcFacade interface {
	JournalReaderSvc
	JournalWriterSvc
	JournalTxSvc
}
