package dto

import (
	"github.com/SscSPs/ledger_engine/internal/core/domain"
	"github.com/shopspring/decimal"
)

// PeriodParams are the from/to query parameters shared by ledger and report endpoints.
type PeriodParams struct {
	From string `form:"from"`
	To   string `form:"to"`
}

// AsOfParams is the asOf query parameter of point-in-time reports.
type AsOfParams struct {
	AsOf string `form:"asOf"`
}

// LedgerLineResponse is one row of an account card.
type LedgerLineResponse struct {
	JournalID       string          `json:"journalID"`
	JournalNumber   string          `json:"journalNumber"`
	Date            string          `json:"date"`
	ReferenceNumber string          `json:"referenceNumber"`
	Description     string          `json:"description"`
	Memo            string          `json:"memo,omitempty"`
	Debit           decimal.Decimal `json:"debit"`
	Credit          decimal.Decimal `json:"credit"`
	RunningBalance  decimal.Decimal `json:"runningBalance"`
}

// GeneralLedgerResponse is the account card for a period.
type GeneralLedgerResponse struct {
	AccountCode   string               `json:"accountCode"`
	AccountName   string               `json:"accountName"`
	NormalBalance domain.BalanceSide   `json:"normalBalance"`
	From          string               `json:"from"`
	To            string               `json:"to"`
	Opening       decimal.Decimal      `json:"opening"`
	Lines         []LedgerLineResponse `json:"lines"`
	TotalDebit    decimal.Decimal      `json:"totalDebit"`
	TotalCredit   decimal.Decimal      `json:"totalCredit"`
	Closing       decimal.Decimal      `json:"closing"`
}

// ToGeneralLedgerResponse converts a domain.GeneralLedger to its DTO.
func ToGeneralLedgerResponse(gl *domain.GeneralLedger) GeneralLedgerResponse {
	lines := make([]LedgerLineResponse, len(gl.Lines))
	for i, l := range gl.Lines {
		lines[i] = LedgerLineResponse{
			JournalID:       l.JournalID,
			JournalNumber:   l.JournalNumber,
			Date:            l.JournalDate.Format(DateLayout),
			ReferenceNumber: l.ReferenceNumber,
			Description:     l.Description,
			Memo:            l.Memo,
			Debit:           l.Debit,
			Credit:          l.Credit,
			RunningBalance:  l.RunningBalance,
		}
	}
	return GeneralLedgerResponse{
		AccountCode:   gl.Account.Code,
		AccountName:   gl.Account.Name,
		NormalBalance: gl.Account.NormalBalance,
		From:          gl.From.Format(DateLayout),
		To:            gl.To.Format(DateLayout),
		Opening:       gl.Opening,
		Lines:         lines,
		TotalDebit:    gl.TotalDebit,
		TotalCredit:   gl.TotalCredit,
		Closing:       gl.Closing,
	}
}
