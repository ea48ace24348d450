package pgsql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/SscSPs/ledger_engine/internal/apperrors"
	"github.com/SscSPs/ledger_engine/internal/core/domain"
	portsrepo "github.com/SscSPs/ledger_engine/internal/core/ports/repositories"
	"github.com/SscSPs/ledger_engine/internal/models"
	"github.com/SscSPs/ledger_engine/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const accountColumns = `account_id, code, name, description, account_type, normal_balance, parent_code,
	level, is_header, permanent, is_active, created_at, created_by, last_updated_at, last_updated_by`

type PgxAccountRepository struct {
	BaseRepository
}

// newPgxAccountRepository creates a new repository for the chart of accounts.
func newPgxAccountRepository(pool *pgxpool.Pool) *PgxAccountRepository {
	return &PgxAccountRepository{BaseRepository: BaseRepository{Pool: pool}}
}

// Ensure PgxAccountRepository implements portsrepo.AccountRepositoryWithTx
var _ portsrepo.AccountRepositoryWithTx = (*PgxAccountRepository)(nil)

func scanAccount(row pgx.Row) (models.Account, error) {
	var m models.Account
	var description, parentCode sql.NullString
	err := row.Scan(
		&m.AccountID,
		&m.Code,
		&m.Name,
		&description,
		&m.AccountType,
		&m.NormalBalance,
		&parentCode,
		&m.Level,
		&m.IsHeader,
		&m.Permanent,
		&m.IsActive,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	m.Description = description.String
	m.ParentCode = parentCode.String
	return m, err
}

func collectAccounts(rows pgx.Rows) ([]domain.Account, error) {
	defer rows.Close()
	var out []models.Account
	for rows.Next() {
		m, err := scanAccount(rows)
		if err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan account row", err)
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating account rows", err)
	}
	return mapping.ToDomainAccountSlice(out), nil
}

func nullIfEmpty(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// SaveAccount inserts a new account and flags its parent as a header.
func (r *PgxAccountRepository) SaveAccount(ctx context.Context, account domain.Account) error {
	m := mapping.ToModelAccount(account)

	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	query := `
		INSERT INTO accounts (` + accountColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15);
	`
	_, err = tx.Exec(ctx, query,
		m.AccountID,
		m.Code,
		m.Name,
		nullIfEmpty(m.Description),
		m.AccountType,
		m.NormalBalance,
		nullIfEmpty(m.ParentCode),
		m.Level,
		m.IsHeader,
		m.Permanent,
		m.IsActive,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: account with code %s already exists", apperrors.ErrDuplicate, m.Code)
		}
		return apperrors.NewAppError(500, "failed to save account "+m.Code, err)
	}

	if m.ParentCode != "" {
		_, err = tx.Exec(ctx, `UPDATE accounts SET is_header = TRUE WHERE code = $1;`, m.ParentCode)
		if err != nil {
			return apperrors.NewAppError(500, "failed to flag parent account "+m.ParentCode, err)
		}
	}
	return r.Commit(ctx, tx)
}

// UpdateAccount updates the descriptive and status fields of an account.
func (r *PgxAccountRepository) UpdateAccount(ctx context.Context, account domain.Account) error {
	m := mapping.ToModelAccount(account)
	query := `
		UPDATE accounts
		SET name = $2, description = $3, permanent = $4, is_active = $5, last_updated_at = $6, last_updated_by = $7
		WHERE code = $1;
	`
	tag, err := r.Pool.Exec(ctx, query,
		m.Code,
		m.Name,
		nullIfEmpty(m.Description),
		m.Permanent,
		m.IsActive,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to update account "+m.Code, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NewNotFoundError("account", m.Code)
	}
	return nil
}

// RetypeSubtree rewrites the type of a root and every account under it.
func (r *PgxAccountRepository) RetypeSubtree(ctx context.Context, rootCode string, accountType domain.AccountType, side domain.BalanceSide, userID string, now time.Time) error {
	query := `
		UPDATE accounts
		SET account_type = $2, normal_balance = $3, last_updated_at = $4, last_updated_by = $5
		WHERE code = $1 OR code LIKE $1 || '.%';
	`
	tag, err := r.Pool.Exec(ctx, query, rootCode, string(accountType), string(side), now, userID)
	if err != nil {
		return apperrors.NewAppError(500, "failed to retype accounts under "+rootCode, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NewNotFoundError("account", rootCode)
	}
	return nil
}

// SetAccountActive toggles the active flag of an account.
func (r *PgxAccountRepository) SetAccountActive(ctx context.Context, code string, active bool, userID string, now time.Time) error {
	query := `UPDATE accounts SET is_active = $2, last_updated_at = $3, last_updated_by = $4 WHERE code = $1;`
	tag, err := r.Pool.Exec(ctx, query, code, active, now, userID)
	if err != nil {
		return apperrors.NewAppError(500, "failed to change active flag of account "+code, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NewNotFoundError("account", code)
	}
	return nil
}

// DeleteAccount removes an account. The parent becomes a leaf again when this was its last child.
func (r *PgxAccountRepository) DeleteAccount(ctx context.Context, code string) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	var parentCode sql.NullString
	err = tx.QueryRow(ctx, `DELETE FROM accounts WHERE code = $1 RETURNING parent_code;`, code).Scan(&parentCode)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFoundError("account", code)
		}
		return apperrors.NewAppError(500, "failed to delete account "+code, err)
	}

	if parentCode.Valid {
		query := `
			UPDATE accounts p SET is_header = FALSE
			WHERE p.code = $1 AND NOT EXISTS (SELECT 1 FROM accounts c WHERE c.parent_code = p.code);
		`
		if _, err := tx.Exec(ctx, query, parentCode.String); err != nil {
			return apperrors.NewAppError(500, "failed to reset header flag of "+parentCode.String, err)
		}
	}
	return r.Commit(ctx, tx)
}

// FindAccountByCode retrieves an account by its code.
func (r *PgxAccountRepository) FindAccountByCode(ctx context.Context, code string) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE code = $1;`
	m, err := scanAccount(r.Pool.QueryRow(ctx, query, code))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFoundError("account", code)
		}
		return nil, apperrors.NewAppError(500, "failed to find account "+code, err)
	}
	acc := mapping.ToDomainAccount(m)
	return &acc, nil
}

// FindAccountsByCodes retrieves multiple accounts keyed by code.
func (r *PgxAccountRepository) FindAccountsByCodes(ctx context.Context, codes []string) (map[string]domain.Account, error) {
	return r.findByCodes(ctx, r.Pool, codes, "")
}

// FindAccountsByCodesForShare reads accounts inside tx under FOR SHARE row locks.
func (r *PgxAccountRepository) FindAccountsByCodesForShare(ctx context.Context, tx pgx.Tx, codes []string) (map[string]domain.Account, error) {
	return r.findByCodes(ctx, tx, codes, " FOR SHARE")
}

func (r *PgxAccountRepository) findByCodes(ctx context.Context, q querier, codes []string, lockClause string) (map[string]domain.Account, error) {
	if len(codes) == 0 {
		return map[string]domain.Account{}, nil
	}
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE code = ANY($1) ORDER BY code` + lockClause + `;`
	rows, err := q.Query(ctx, query, codes)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query accounts by code", err)
	}
	accounts, err := collectAccounts(rows)
	if err != nil {
		return nil, err
	}
	out := make(map[string]domain.Account, len(accounts))
	for _, a := range accounts {
		out[a.Code] = a
	}
	return out, nil
}

// ListAccounts retrieves accounts ordered by code.
func (r *PgxAccountRepository) ListAccounts(ctx context.Context, filter domain.AccountFilter) ([]domain.Account, error) {
	return r.listAccounts(ctx, r.Pool, filter)
}

// ListAccountsTx retrieves accounts ordered by code inside tx.
func (r *PgxAccountRepository) ListAccountsTx(ctx context.Context, tx pgx.Tx, filter domain.AccountFilter) ([]domain.Account, error) {
	return r.listAccounts(ctx, tx, filter)
}

func (r *PgxAccountRepository) listAccounts(ctx context.Context, q querier, filter domain.AccountFilter) ([]domain.Account, error) {
	var where []string
	var args []any
	arg := func(v any) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}

	if filter.AccountType != nil {
		where = append(where, "account_type = "+arg(string(*filter.AccountType)))
	}
	if filter.ParentCode != nil {
		where = append(where, "parent_code = "+arg(*filter.ParentCode))
	}
	if filter.RootsOnly {
		where = append(where, "parent_code IS NULL")
	}
	if filter.ActiveOnly {
		where = append(where, "is_active")
	}
	if filter.LeafOnly {
		where = append(where, "NOT is_header")
	}
	if filter.Search != "" {
		p := arg("%" + filter.Search + "%")
		where = append(where, "(code LIKE "+p+" OR name ILIKE "+p+")")
	}

	query := `SELECT ` + accountColumns + ` FROM accounts`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY code"
	if filter.Limit > 0 {
		query += " LIMIT " + arg(filter.Limit)
	}
	if filter.Offset > 0 {
		query += " OFFSET " + arg(filter.Offset)
	}

	rows, err := q.Query(ctx, query+";", args...)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to list accounts", err)
	}
	return collectAccounts(rows)
}

// ListChildren retrieves the direct children of an account.
func (r *PgxAccountRepository) ListChildren(ctx context.Context, parentCode string) ([]domain.Account, error) {
	return r.ListAccounts(ctx, domain.AccountFilter{ParentCode: &parentCode})
}

// HasJournalLines reports whether any journal line references one of the codes.
func (r *PgxAccountRepository) HasJournalLines(ctx context.Context, codes []string) (bool, error) {
	if len(codes) == 0 {
		return false, nil
	}
	var exists bool
	err := r.Pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM journal_lines WHERE account_code = ANY($1));`, codes).Scan(&exists)
	if err != nil {
		return false, apperrors.NewAppError(500, "failed to check journal lines", err)
	}
	return exists, nil
}
