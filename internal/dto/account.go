package dto

import (
	"time"

	"github.com/SscSPs/ledger_engine/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateAccountRequest defines the data needed to create a new account.
// AccountType and NormalBalance are ignored when ParentCode is set: children inherit them from their root.
type CreateAccountRequest struct {
	Code          string             `json:"code" binding:"required" validate:"required"`
	Name          string             `json:"name" binding:"required" validate:"required"`
	AccountType   domain.AccountType `json:"accountType" validate:"required_without=ParentCode"`
	NormalBalance domain.BalanceSide `json:"normalBalance" validate:"required_without=ParentCode"`
	ParentCode    *string            `json:"parentCode"`  // Optional, use pointer for nullability
	Description   string             `json:"description"` // Optional
	Permanent     bool               `json:"permanent"`   // Optional
}

// AccountResponse defines the data returned for an account.
// Mirrors domain.Account.
type AccountResponse struct {
	AccountID     string             `json:"accountID"`
	Code          string             `json:"code"`
	Name          string             `json:"name"`
	AccountType   domain.AccountType `json:"accountType"`
	NormalBalance domain.BalanceSide `json:"normalBalance"`
	ParentCode    string             `json:"parentCode"` // Note: Empty string for root accounts
	Level         int                `json:"level"`
	IsHeader      bool               `json:"isHeader"`
	Permanent     bool               `json:"permanent"`
	Description   string             `json:"description"`
	IsActive      bool               `json:"isActive"`
	CreatedAt     time.Time          `json:"createdAt"`
	CreatedBy     string             `json:"createdBy"`
	LastUpdatedAt time.Time          `json:"lastUpdatedAt"`
	LastUpdatedBy string             `json:"lastUpdatedBy"`
}

// UpdateAccountRequest defines the data allowed for updating an account.
// Use pointers to distinguish between zero-value updates and fields not provided.
type UpdateAccountRequest struct {
	Name          *string             `json:"name"`          // Optional: New name
	Description   *string             `json:"description"`   // Optional: New description
	Permanent     *bool               `json:"permanent"`     // Optional
	IsActive      *bool               `json:"isActive"`      // Optional: New active status
	AccountType   *domain.AccountType `json:"accountType"`   // Optional, locked once the account has journal lines
	NormalBalance *domain.BalanceSide `json:"normalBalance"` // Optional, locked once the account has journal lines
}

// ToAccountResponse converts a domain.Account to AccountResponse DTO
func ToAccountResponse(acc *domain.Account) AccountResponse {
	return AccountResponse{
		AccountID:     acc.AccountID,
		Code:          acc.Code,
		Name:          acc.Name,
		AccountType:   acc.AccountType,
		NormalBalance: acc.NormalBalance,
		ParentCode:    acc.ParentCode,
		Level:         acc.Level,
		IsHeader:      acc.IsHeader,
		Permanent:     acc.Permanent,
		Description:   acc.Description,
		IsActive:      acc.IsActive,
		CreatedAt:     acc.CreatedAt,
		CreatedBy:     acc.CreatedBy,
		LastUpdatedAt: acc.LastUpdatedAt,
		LastUpdatedBy: acc.LastUpdatedBy,
	}
}

// ToListAccountResponse converts a slice of domain.Account to a slice of AccountResponse DTOs
func ToListAccountResponse(accounts []domain.Account) []AccountResponse {
	res := make([]AccountResponse, len(accounts))
	for i, acc := range accounts {
		res[i] = ToAccountResponse(&acc) // Reuse the single converter
	}
	return res
}

// AccountBalanceResponse defines the data returned for an account balance query.
type AccountBalanceResponse struct {
	AccountCode   string             `json:"accountCode"`
	NormalBalance domain.BalanceSide `json:"normalBalance"`
	From          *string            `json:"from,omitempty"`
	To            string             `json:"to"`
	Opening       decimal.Decimal    `json:"opening"`
	TotalDebit    decimal.Decimal    `json:"totalDebit"`
	TotalCredit   decimal.Decimal    `json:"totalCredit"`
	Closing       decimal.Decimal    `json:"closing"`
}

// ToAccountBalanceResponse converts a domain.AccountBalance to its DTO.
func ToAccountBalanceResponse(b *domain.AccountBalance) AccountBalanceResponse {
	res := AccountBalanceResponse{
		AccountCode:   b.Account.Code,
		NormalBalance: b.Account.NormalBalance,
		To:            b.To.Format(DateLayout),
		Opening:       b.Opening,
		TotalDebit:    b.Activity.TotalDebit,
		TotalCredit:   b.Activity.TotalCredit,
		Closing:       b.Closing,
	}
	if b.From != nil {
		from := b.From.Format(DateLayout)
		res.From = &from
	}
	return res
}

// ListAccountsParams defines query parameters for listing accounts.
type ListAccountsParams struct {
	Type     string `form:"type" binding:"omitempty,oneof=ASSET LIABILITY EQUITY REVENUE EXPENSE"`
	Parent   string `form:"parent"`
	Roots    bool   `form:"roots"`
	Active   bool   `form:"active"`
	LeafOnly bool   `form:"leafOnly"`
	Search   string `form:"search"`
	Limit    int    `form:"limit,default=100" binding:"min=0,max=1000"`
	Offset   int    `form:"offset,default=0" binding:"min=0"`
}

// ToFilter converts the query parameters to a domain.AccountFilter.
func (p ListAccountsParams) ToFilter() domain.AccountFilter {
	filter := domain.AccountFilter{
		RootsOnly:  p.Roots,
		ActiveOnly: p.Active,
		LeafOnly:   p.LeafOnly,
		Search:     p.Search,
		Limit:      p.Limit,
		Offset:     p.Offset,
	}
	if p.Type != "" {
		t := domain.AccountType(p.Type)
		filter.AccountType = &t
	}
	if p.Parent != "" {
		parent := p.Parent
		filter.ParentCode = &parent
	}
	return filter
}

// ListAccountsResponse wraps the list of accounts.
type ListAccountsResponse struct {
	Accounts []AccountResponse `json:"accounts"`
}
