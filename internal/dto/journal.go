package dto

import (
	"time"

	"github.com/SscSPs/ledger_engine/internal/core/domain"
	"github.com/shopspring/decimal"
)

// DateLayout is the wire format of accounting dates.
const DateLayout = "2006-01-02"

// JournalLineRequest is one line of a draft entry.
type JournalLineRequest struct {
	AccountCode string          `json:"accountCode" binding:"required"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
	Memo        string          `json:"memo"`
}

// CreateJournalRequest defines the data needed to create a draft journal entry.
type CreateJournalRequest struct {
	Date            string               `json:"date" binding:"required" example:"2024-01-15"`
	ReferenceNumber string               `json:"referenceNumber"`
	Description     string               `json:"description"`
	Lines           []JournalLineRequest `json:"lines" binding:"required,dive"`
}

// UpdateJournalRequest replaces the content of a draft entry.
type UpdateJournalRequest = CreateJournalRequest

// ToDraftInput parses the request into domain.DraftInput.
func (r CreateJournalRequest) ToDraftInput() (domain.DraftInput, error) {
	date, err := time.Parse(DateLayout, r.Date)
	if err != nil {
		return domain.DraftInput{}, err
	}
	lines := make([]domain.LineInput, len(r.Lines))
	for i, l := range r.Lines {
		lines[i] = domain.LineInput{AccountCode: l.AccountCode, Debit: l.Debit, Credit: l.Credit, Memo: l.Memo}
	}
	return domain.DraftInput{
		JournalDate:     date,
		ReferenceNumber: r.ReferenceNumber,
		Description:     r.Description,
		Lines:           lines,
	}, nil
}

// VoidJournalRequest carries the mandatory void reason.
type VoidJournalRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// JournalLineResponse defines the data returned for a journal line.
type JournalLineResponse struct {
	LineID      string          `json:"lineID"`
	LineNo      int             `json:"lineNo"`
	AccountCode string          `json:"accountCode"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
	Memo        string          `json:"memo,omitempty"`
}

// JournalResponse defines the data returned for a journal entry.
type JournalResponse struct {
	JournalID       string                `json:"journalID"`
	JournalNumber   string                `json:"journalNumber"`
	Date            string                `json:"date"`
	ReferenceNumber string                `json:"referenceNumber"`
	Description     string                `json:"description"`
	Status          domain.JournalStatus  `json:"status"`
	TotalDebit      decimal.Decimal       `json:"totalDebit"`
	TotalCredit     decimal.Decimal       `json:"totalCredit"`
	PostedAt        *time.Time            `json:"postedAt,omitempty"`
	PostedBy        string                `json:"postedBy,omitempty"`
	VoidedAt        *time.Time            `json:"voidedAt,omitempty"`
	VoidedBy        string                `json:"voidedBy,omitempty"`
	VoidReason      string                `json:"voidReason,omitempty"`
	Lines           []JournalLineResponse `json:"lines"`
	CreatedAt       time.Time             `json:"createdAt"`
	CreatedBy       string                `json:"createdBy"`
	LastUpdatedAt   time.Time             `json:"lastUpdatedAt"`
	LastUpdatedBy   string                `json:"lastUpdatedBy"`
}

// ToJournalResponse converts a domain.JournalEntry to JournalResponse DTO.
func ToJournalResponse(j *domain.JournalEntry) JournalResponse {
	debit, credit := j.Totals()
	lines := make([]JournalLineResponse, len(j.Lines))
	for i, l := range j.Lines {
		lines[i] = JournalLineResponse{
			LineID:      l.LineID,
			LineNo:      l.LineNo,
			AccountCode: l.AccountCode,
			Debit:       l.Debit,
			Credit:      l.Credit,
			Memo:        l.Memo,
		}
	}
	return JournalResponse{
		JournalID:       j.JournalID,
		JournalNumber:   j.JournalNumber,
		Date:            j.JournalDate.Format(DateLayout),
		ReferenceNumber: j.ReferenceNumber,
		Description:     j.Description,
		Status:          j.Status,
		TotalDebit:      debit,
		TotalCredit:     credit,
		PostedAt:        j.PostedAt,
		PostedBy:        j.PostedBy,
		VoidedAt:        j.VoidedAt,
		VoidedBy:        j.VoidedBy,
		VoidReason:      j.VoidReason,
		Lines:           lines,
		CreatedAt:       j.CreatedAt,
		CreatedBy:       j.CreatedBy,
		LastUpdatedAt:   j.LastUpdatedAt,
		LastUpdatedBy:   j.LastUpdatedBy,
	}
}

// ToJournalResponses converts a slice of domain.JournalEntry to []JournalResponse.
func ToJournalResponses(entries []domain.JournalEntry) []JournalResponse {
	responses := make([]JournalResponse, len(entries))
	for i, e := range entries {
		responses[i] = ToJournalResponse(&e)
	}
	return responses
}

// ListJournalsParams defines query parameters for listing journal entries.
type ListJournalsParams struct {
	Status          string  `form:"status" binding:"omitempty,oneof=DRAFT POSTED VOID"`
	From            string  `form:"from"`
	To              string  `form:"to"`
	ReferencePrefix string  `form:"reference"`
	Limit           int     `form:"limit,default=20" binding:"min=1,max=100"`
	NextToken       *string `form:"nextToken"`
}

// ToFilter converts the query parameters to a domain.JournalFilter.
func (p ListJournalsParams) ToFilter() (domain.JournalFilter, error) {
	filter := domain.JournalFilter{ReferencePrefix: p.ReferencePrefix}
	if p.Status != "" {
		status := domain.JournalStatus(p.Status)
		filter.Status = &status
	}
	if p.From != "" {
		from, err := time.Parse(DateLayout, p.From)
		if err != nil {
			return filter, err
		}
		filter.From = &from
	}
	if p.To != "" {
		to, err := time.Parse(DateLayout, p.To)
		if err != nil {
			return filter, err
		}
		filter.To = &to
	}
	return filter, nil
}

// ListJournalsResponse wraps a page of journal entries.
type ListJournalsResponse struct {
	Journals  []JournalResponse `json:"journals"`
	NextToken *string           `json:"nextToken,omitempty"`
}

// AccountImpactResponse wraps the per-account impact of an entry.
type AccountImpactResponse struct {
	JournalID string                 `json:"journalID"`
	Impacts   []domain.AccountImpact `json:"impacts"`
}
