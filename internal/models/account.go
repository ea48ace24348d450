package models

// AccountType defines the fundamental accounting type of an account.
type AccountType string

const (
	Asset     AccountType = "ASSET"
	Liability AccountType = "LIABILITY"
	Equity    AccountType = "EQUITY"
	Revenue   AccountType = "REVENUE"
	Expense   AccountType = "EXPENSE"
)

// Account mirrors a row of the accounts table.
// ParentCode and Description are empty strings when NULL in the database.
type Account struct {
	AccountID     string      `db:"account_id"`
	Code          string      `db:"code"`
	Name          string      `db:"name"`
	Description   string      `db:"description"`
	AccountType   AccountType `db:"account_type"`
	NormalBalance string      `db:"normal_balance"`
	ParentCode    string      `db:"parent_code"` // Nullable
	Level         int         `db:"level"`
	IsHeader      bool        `db:"is_header"`
	Permanent     bool        `db:"permanent"`
	IsActive      bool        `db:"is_active"`
	AuditFields               // Embed common audit fields
}
