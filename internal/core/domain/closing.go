package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// ClosingRefPrefix tags the reference number of every fiscal year closing entry.
const ClosingRefPrefix = "CLOSING-"

// ClosingReference builds CLOSING-<year>-<seq>.
func ClosingReference(year, seq int) string {
	return fmt.Sprintf("%s%d-%02d", ClosingRefPrefix, year, seq)
}

// ClosingYearPrefix is the reference prefix shared by all closing entries of one year.
func ClosingYearPrefix(year int) string {
	return fmt.Sprintf("%s%d-", ClosingRefPrefix, year)
}

// ClosingLinePreview is one line of a proposed closing entry.
type ClosingLinePreview struct {
	AccountCode string          `json:"accountCode"`
	AccountName string          `json:"accountName"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
	Memo        string          `json:"memo"`
}

// ClosingEntryPreview is one proposed closing entry with its own balanced lines.
type ClosingEntryPreview struct {
	ReferenceNumber string               `json:"referenceNumber"`
	Description     string               `json:"description"`
	Date            time.Time            `json:"date"`
	Lines           []ClosingLinePreview `json:"lines"`
}

// Totals returns sum(debit) and sum(credit) across the preview lines.
func (p ClosingEntryPreview) Totals() (decimal.Decimal, decimal.Decimal) {
	debit, credit := decimal.Zero, decimal.Zero
	for _, l := range p.Lines {
		debit = debit.Add(l.Debit)
		credit = credit.Add(l.Credit)
	}
	return debit, credit
}

// ToDraftInput converts the preview into journal draft content.
func (p ClosingEntryPreview) ToDraftInput() DraftInput {
	lines := make([]LineInput, len(p.Lines))
	for i, l := range p.Lines {
		lines[i] = LineInput{AccountCode: l.AccountCode, Debit: l.Debit, Credit: l.Credit, Memo: l.Memo}
	}
	return DraftInput{
		JournalDate:     p.Date,
		ReferenceNumber: p.ReferenceNumber,
		Description:     p.Description,
		Lines:           lines,
	}
}

// ClosingPreview is what closing a fiscal year would post.
type ClosingPreview struct {
	Year          int                   `json:"year"`
	TotalRevenue  decimal.Decimal       `json:"totalRevenue"`
	TotalExpense  decimal.Decimal       `json:"totalExpense"`
	NetIncome     decimal.Decimal       `json:"netIncome"`
	Entries       []ClosingEntryPreview `json:"entries"`
	AlreadyClosed bool                  `json:"alreadyClosed"`
}

// ClosingResult is a committed closing: the preview plus the persisted entries.
type ClosingResult struct {
	ClosingPreview
	JournalIDs     []string `json:"journalIDs"`
	JournalNumbers []string `json:"journalNumbers"`
}
