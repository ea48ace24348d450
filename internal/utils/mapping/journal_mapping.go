package mapping

import (
	"github.com/SscSPs/ledger_engine/internal/core/domain"
	"github.com/SscSPs/ledger_engine/internal/models"
)

// ToModelJournal converts a domain JournalEntry to a model JournalEntry
func ToModelJournal(d domain.JournalEntry) models.JournalEntry {
	return models.JournalEntry{
		JournalID:       d.JournalID,
		JournalNumber:   d.JournalNumber,
		JournalDate:     d.JournalDate,
		ReferenceNumber: d.ReferenceNumber,
		Description:     d.Description,
		Status:          models.JournalStatus(d.Status),
		PostedAt:        d.PostedAt,
		PostedBy:        d.PostedBy,
		VoidedAt:        d.VoidedAt,
		VoidedBy:        d.VoidedBy,
		VoidReason:      d.VoidReason,
		AuditFields:     ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainJournal converts a model JournalEntry to a domain JournalEntry without lines
func ToDomainJournal(m models.JournalEntry) domain.JournalEntry {
	return domain.JournalEntry{
		JournalID:       m.JournalID,
		JournalNumber:   m.JournalNumber,
		JournalDate:     m.JournalDate,
		ReferenceNumber: m.ReferenceNumber,
		Description:     m.Description,
		Status:          domain.JournalStatus(m.Status),
		PostedAt:        m.PostedAt,
		PostedBy:        m.PostedBy,
		VoidedAt:        m.VoidedAt,
		VoidedBy:        m.VoidedBy,
		VoidReason:      m.VoidReason,
		AuditFields:     ToDomainAuditFields(m.AuditFields),
	}
}

// ToModelJournalLine converts a domain JournalLine to a model JournalLine
func ToModelJournalLine(d domain.JournalLine) models.JournalLine {
	return models.JournalLine{
		LineID:      d.LineID,
		JournalID:   d.JournalID,
		LineNo:      d.LineNo,
		AccountCode: d.AccountCode,
		Debit:       d.Debit,
		Credit:      d.Credit,
		Memo:        d.Memo,
	}
}

// ToDomainJournalLine converts a model JournalLine to a domain JournalLine
func ToDomainJournalLine(m models.JournalLine) domain.JournalLine {
	return domain.JournalLine{
		LineID:      m.LineID,
		JournalID:   m.JournalID,
		LineNo:      m.LineNo,
		AccountCode: m.AccountCode,
		Debit:       m.Debit,
		Credit:      m.Credit,
		Memo:        m.Memo,
	}
}

// ToDomainJournalLineSlice converts a slice of model lines to domain lines
func ToDomainJournalLineSlice(ms []models.JournalLine) []domain.JournalLine {
	ds := make([]domain.JournalLine, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainJournalLine(m)
	}
	return ds
}
