package services

import (
	"context"

	"github.com/SscSPs/ledger_engine/internal/core/domain"
)

// ClosingSvc defines fiscal year closing operations
type ClosingSvc interface {
	// HasClosingEntries reports whether the year has POSTED closing entries.
	HasClosingEntries(ctx context.Context, year int) (bool, error)

	// GetClosingEntries lists the POSTED closing entries of a year.
	GetClosingEntries(ctx context.Context, year int) ([]domain.JournalEntry, error)

	// PreviewClosing computes the closing entries without writing anything.
	PreviewClosing(ctx context.Context, year int) (*domain.ClosingPreview, error)

	// CloseYear creates and posts the closing entries atomically.
	CloseYear(ctx context.Context, year int, userID string) (*domain.ClosingResult, error)

	// ReverseClosing voids the closing entries of a year and returns how many were voided.
	ReverseClosing(ctx context.Context, year int, reason string, userID string) (int, error)
}
