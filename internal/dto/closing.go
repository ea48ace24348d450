package dto

import (
	"github.com/SscSPs/ledger_engine/internal/core/domain"
	"github.com/shopspring/decimal"
)

// ReverseClosingRequest carries the reason recorded on each voided closing entry.
type ReverseClosingRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// ReverseClosingResponse reports how many closing entries were voided.
type ReverseClosingResponse struct {
	Year   int `json:"year"`
	Voided int `json:"voided"`
}

// ClosingEntryResponse is one proposed or posted closing entry.
type ClosingEntryResponse struct {
	ReferenceNumber string                      `json:"referenceNumber"`
	Description     string                      `json:"description"`
	Date            string                      `json:"date"`
	Lines           []domain.ClosingLinePreview `json:"lines"`
	TotalDebit      decimal.Decimal             `json:"totalDebit"`
	TotalCredit     decimal.Decimal             `json:"totalCredit"`
	JournalID       string                      `json:"journalID,omitempty"`
	JournalNumber   string                      `json:"journalNumber,omitempty"`
}

// ClosingPreviewResponse defines the data returned when previewing or closing a year.
type ClosingPreviewResponse struct {
	Year          int                    `json:"year"`
	TotalRevenue  decimal.Decimal        `json:"totalRevenue"`
	TotalExpense  decimal.Decimal        `json:"totalExpense"`
	NetIncome     decimal.Decimal        `json:"netIncome"`
	AlreadyClosed bool                   `json:"alreadyClosed"`
	Entries       []ClosingEntryResponse `json:"entries"`
}

// ToClosingPreviewResponse converts a domain.ClosingPreview to its DTO.
func ToClosingPreviewResponse(p *domain.ClosingPreview) ClosingPreviewResponse {
	res := ClosingPreviewResponse{
		Year:          p.Year,
		TotalRevenue:  p.TotalRevenue,
		TotalExpense:  p.TotalExpense,
		NetIncome:     p.NetIncome,
		AlreadyClosed: p.AlreadyClosed,
		Entries:       make([]ClosingEntryResponse, len(p.Entries)),
	}
	for i, e := range p.Entries {
		debit, credit := e.Totals()
		res.Entries[i] = ClosingEntryResponse{
			ReferenceNumber: e.ReferenceNumber,
			Description:     e.Description,
			Date:            e.Date.Format(DateLayout),
			Lines:           e.Lines,
			TotalDebit:      debit,
			TotalCredit:     credit,
		}
	}
	return res
}

// ToClosingResultResponse converts a committed closing to its DTO.
func ToClosingResultResponse(r *domain.ClosingResult) ClosingPreviewResponse {
	res := ToClosingPreviewResponse(&r.ClosingPreview)
	for i := range res.Entries {
		if i < len(r.JournalIDs) {
			res.Entries[i].JournalID = r.JournalIDs[i]
			res.Entries[i].JournalNumber = r.JournalNumbers[i]
		}
	}
	return res
}
