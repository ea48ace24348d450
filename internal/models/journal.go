package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// JournalStatus indicates the state of a journal entry.
type JournalStatus string

const (
	Draft  JournalStatus = "DRAFT"
	Posted JournalStatus = "POSTED"
	Void   JournalStatus = "VOID"
)

// JournalEntry mirrors a row of the journal_entries table.
type JournalEntry struct {
	JournalID       string        `db:"journal_id"`
	JournalNumber   string        `db:"journal_number"`
	JournalDate     time.Time     `db:"journal_date"`
	ReferenceNumber string        `db:"reference_number"`
	Description     string        `db:"description"`
	Status          JournalStatus `db:"status"`
	PostedAt        *time.Time    `db:"posted_at"`
	PostedBy        string        `db:"posted_by"`
	VoidedAt        *time.Time    `db:"voided_at"`
	VoidedBy        string        `db:"voided_by"`
	VoidReason      string        `db:"void_reason"`
	AuditFields
}

// JournalLine mirrors a row of the journal_lines table.
type JournalLine struct {
	LineID      string          `db:"line_id"`
	JournalID   string          `db:"journal_id"`
	LineNo      int             `db:"line_no"`
	AccountCode string          `db:"account_code"`
	Debit       decimal.Decimal `db:"debit"`
	Credit      decimal.Decimal `db:"credit"`
	Memo        string          `db:"memo"`
}
