package mapping

import (
	"github.com/SscSPs/ledger_engine/internal/core/domain"
	"github.com/SscSPs/ledger_engine/internal/models"
)

// ToModelAccount converts a domain Account to a model Account
func ToModelAccount(d domain.Account) models.Account {
	return models.Account{
		AccountID:     d.AccountID,
		Code:          d.Code,
		Name:          d.Name,
		Description:   d.Description,
		AccountType:   models.AccountType(d.AccountType),
		NormalBalance: string(d.NormalBalance),
		ParentCode:    d.ParentCode,
		Level:         d.Level,
		IsHeader:      d.IsHeader,
		Permanent:     d.Permanent,
		IsActive:      d.IsActive,
		AuditFields:   ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainAccount converts a model Account to a domain Account
func ToDomainAccount(m models.Account) domain.Account {
	return domain.Account{
		AccountID:     m.AccountID,
		Code:          m.Code,
		Name:          m.Name,
		Description:   m.Description,
		AccountType:   domain.AccountType(m.AccountType),
		NormalBalance: domain.BalanceSide(m.NormalBalance),
		ParentCode:    m.ParentCode,
		Level:         m.Level,
		IsHeader:      m.IsHeader,
		Permanent:     m.Permanent,
		IsActive:      m.IsActive,
		AuditFields:   ToDomainAuditFields(m.AuditFields),
	}
}

// ToDomainAccountSlice converts a slice of model Accounts to a slice of domain Accounts
func ToDomainAccountSlice(ms []models.Account) []domain.Account {
	ds := make([]domain.Account, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainAccount(m)
	}
	return ds
}
