package pgsql

import (
	"context"
	"database/sql"
	"hash/fnv"
	"strconv"
	"strings"
	"time"

	"github.com/SscSPs/ledger_engine/internal/apperrors"
	"github.com/SscSPs/ledger_engine/internal/core/domain"
	portsrepo "github.com/SscSPs/ledger_engine/internal/core/ports/repositories"
	"github.com/SscSPs/ledger_engine/internal/models"
	"github.com/SscSPs/ledger_engine/internal/utils/mapping"
	"github.com/SscSPs/ledger_engine/internal/utils/pagination"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const journalColumns = `journal_id, journal_number, journal_date, reference_number, description, status,
	posted_at, posted_by, voided_at, voided_by, void_reason,
	created_at, created_by, last_updated_at, last_updated_by`

type PgxJournalRepository struct {
	BaseRepository
}

// newPgxJournalRepository creates a new repository for journal entries and their lines.
func newPgxJournalRepository(pool *pgxpool.Pool) *PgxJournalRepository {
	return &PgxJournalRepository{BaseRepository: BaseRepository{Pool: pool}}
}

// Ensure PgxJournalRepository implements portsrepo.JournalRepositoryWithTx
var _ portsrepo.JournalRepositoryWithTx = (*PgxJournalRepository)(nil)

func scanJournal(row pgx.Row) (models.JournalEntry, error) {
	var m models.JournalEntry
	var reference, description, postedBy, voidedBy, voidReason sql.NullString
	err := row.Scan(
		&m.JournalID,
		&m.JournalNumber,
		&m.JournalDate,
		&reference,
		&description,
		&m.Status,
		&m.PostedAt,
		&postedBy,
		&m.VoidedAt,
		&voidedBy,
		&voidReason,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	m.ReferenceNumber = reference.String
	m.Description = description.String
	m.PostedBy = postedBy.String
	m.VoidedBy = voidedBy.String
	m.VoidReason = voidReason.String
	return m, err
}

// queryJournals runs a header query and attaches the lines of every returned entry.
func (r *PgxJournalRepository) queryJournals(ctx context.Context, q querier, query string, args ...any) ([]domain.JournalEntry, error) {
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query journals", err)
	}
	var headers []models.JournalEntry
	for rows.Next() {
		m, err := scanJournal(rows)
		if err != nil {
			rows.Close()
			return nil, apperrors.NewAppError(500, "failed to scan journal row", err)
		}
		headers = append(headers, m)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating journal rows", err)
	}

	ids := make([]string, len(headers))
	for i, h := range headers {
		ids[i] = h.JournalID
	}
	lines, err := r.findLines(ctx, q, ids)
	if err != nil {
		return nil, err
	}

	entries := make([]domain.JournalEntry, len(headers))
	for i, h := range headers {
		entries[i] = mapping.ToDomainJournal(h)
		entries[i].Lines = lines[h.JournalID]
	}
	return entries, nil
}

// findLines loads the lines of the given entries, keyed by journal id, in line order.
func (r *PgxJournalRepository) findLines(ctx context.Context, q querier, journalIDs []string) (map[string][]domain.JournalLine, error) {
	out := make(map[string][]domain.JournalLine, len(journalIDs))
	if len(journalIDs) == 0 {
		return out, nil
	}
	query := `
		SELECT line_id, journal_id, line_no, account_code, debit, credit, memo
		FROM journal_lines
		WHERE journal_id = ANY($1::uuid[])
		ORDER BY journal_id, line_no;
	`
	rows, err := q.Query(ctx, query, journalIDs)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query journal lines", err)
	}
	defer rows.Close()

	byJournal := make(map[string][]models.JournalLine, len(journalIDs))
	for rows.Next() {
		var m models.JournalLine
		var memo sql.NullString
		if err := rows.Scan(&m.LineID, &m.JournalID, &m.LineNo, &m.AccountCode, &m.Debit, &m.Credit, &memo); err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan journal line", err)
		}
		m.Memo = memo.String
		byJournal[m.JournalID] = append(byJournal[m.JournalID], m)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating journal lines", err)
	}
	for id, ms := range byJournal {
		out[id] = mapping.ToDomainJournalLineSlice(ms)
	}
	return out, nil
}

func (r *PgxJournalRepository) findOne(ctx context.Context, q querier, key, query string, args ...any) (*domain.JournalEntry, error) {
	entries, err := r.queryJournals(ctx, q, query, args...)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, apperrors.NewNotFoundError("journal", key)
	}
	return &entries[0], nil
}

// FindJournalByID retrieves a journal entry and its lines.
func (r *PgxJournalRepository) FindJournalByID(ctx context.Context, journalID string) (*domain.JournalEntry, error) {
	query := `SELECT ` + journalColumns + ` FROM journal_entries WHERE journal_id = $1;`
	return r.findOne(ctx, r.Pool, journalID, query, journalID)
}

// FindJournalByNumber retrieves a journal entry and its lines by number.
func (r *PgxJournalRepository) FindJournalByNumber(ctx context.Context, journalNumber string) (*domain.JournalEntry, error) {
	query := `SELECT ` + journalColumns + ` FROM journal_entries WHERE journal_number = $1;`
	return r.findOne(ctx, r.Pool, journalNumber, query, journalNumber)
}

// FindJournalByIDForUpdate reads an entry and holds its row lock until tx ends.
func (r *PgxJournalRepository) FindJournalByIDForUpdate(ctx context.Context, tx pgx.Tx, journalID string) (*domain.JournalEntry, error) {
	query := `SELECT ` + journalColumns + ` FROM journal_entries WHERE journal_id = $1 FOR UPDATE;`
	return r.findOne(ctx, tx, journalID, query, journalID)
}

// ListJournals retrieves entries newest first using keyset pagination.
func (r *PgxJournalRepository) ListJournals(ctx context.Context, filter domain.JournalFilter, limit int, nextToken *string) ([]domain.JournalEntry, *string, error) {
	if limit <= 0 {
		limit = 20
	}
	// One extra row tells whether another page exists.
	fetchLimit := limit + 1

	var where []string
	var args []any
	arg := func(v any) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}

	if filter.Status != nil {
		where = append(where, "status = "+arg(string(*filter.Status)))
	}
	if filter.From != nil {
		where = append(where, "journal_date >= "+arg(*filter.From))
	}
	if filter.To != nil {
		where = append(where, "journal_date <= "+arg(*filter.To))
	}
	if filter.ReferencePrefix != "" {
		where = append(where, "reference_number LIKE "+arg(escapeLike(filter.ReferencePrefix)+"%"))
	}
	if nextToken != nil && *nextToken != "" {
		lastDate, lastCreatedAt, lastID, err := pagination.DecodeToken(*nextToken)
		if err != nil {
			return nil, nil, apperrors.NewAppError(400, "invalid nextToken", err)
		}
		where = append(where, "(journal_date, created_at, journal_id) < ("+arg(lastDate)+", "+arg(lastCreatedAt)+", "+arg(lastID)+")")
	}

	query := `SELECT ` + journalColumns + ` FROM journal_entries`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY journal_date DESC, created_at DESC, journal_id DESC LIMIT " + arg(fetchLimit) + ";"

	entries, err := r.queryJournals(ctx, r.Pool, query, args...)
	if err != nil {
		return nil, nil, err
	}

	var nextTokenVal *string
	if len(entries) > limit {
		last := entries[limit-1]
		token := pagination.EncodeToken(last.JournalDate, last.CreatedAt, last.JournalID)
		nextTokenVal = &token
		entries = entries[:limit]
	}
	return entries, nextTokenVal, nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

const postedByPrefixQuery = `
	SELECT ` + journalColumns + `
	FROM journal_entries
	WHERE status = 'POSTED' AND reference_number LIKE $1 AND journal_date BETWEEN $2 AND $3
	ORDER BY reference_number`

// FindPostedByReferencePrefix retrieves POSTED entries whose reference starts with prefix.
func (r *PgxJournalRepository) FindPostedByReferencePrefix(ctx context.Context, prefix string, from, to time.Time) ([]domain.JournalEntry, error) {
	return r.queryJournals(ctx, r.Pool, postedByPrefixQuery+";", escapeLike(prefix)+"%", from, to)
}

// FindPostedByReferencePrefixForUpdate is FindPostedByReferencePrefix under row locks.
func (r *PgxJournalRepository) FindPostedByReferencePrefixForUpdate(ctx context.Context, tx pgx.Tx, prefix string, from, to time.Time) ([]domain.JournalEntry, error) {
	return r.queryJournals(ctx, tx, postedByPrefixQuery+" FOR UPDATE;", escapeLike(prefix)+"%", from, to)
}

const hasPostedByPrefixQuery = `
	SELECT EXISTS (
		SELECT 1 FROM journal_entries
		WHERE status = 'POSTED' AND reference_number LIKE $1 AND journal_date BETWEEN $2 AND $3
	);`

// HasPostedWithReferencePrefix reports whether a POSTED entry matches prefix within [from, to].
func (r *PgxJournalRepository) HasPostedWithReferencePrefix(ctx context.Context, prefix string, from, to time.Time) (bool, error) {
	return r.hasPosted(ctx, r.Pool, prefix, from, to)
}

// HasPostedWithReferencePrefixTx is HasPostedWithReferencePrefix evaluated inside tx.
func (r *PgxJournalRepository) HasPostedWithReferencePrefixTx(ctx context.Context, tx pgx.Tx, prefix string, from, to time.Time) (bool, error) {
	return r.hasPosted(ctx, tx, prefix, from, to)
}

func (r *PgxJournalRepository) hasPosted(ctx context.Context, q querier, prefix string, from, to time.Time) (bool, error) {
	var exists bool
	if err := q.QueryRow(ctx, hasPostedByPrefixQuery, escapeLike(prefix)+"%", from, to).Scan(&exists); err != nil {
		return false, apperrors.NewAppError(500, "failed to check posted entries for "+prefix, err)
	}
	return exists, nil
}

// NextJournalSequence increments and returns the counter for year.
// The row lock taken by the upsert serializes concurrent allocators until tx ends.
func (r *PgxJournalRepository) NextJournalSequence(ctx context.Context, tx pgx.Tx, year int) (int64, error) {
	query := `
		INSERT INTO journal_sequences (year, last_number) VALUES ($1, 1)
		ON CONFLICT (year) DO UPDATE SET last_number = journal_sequences.last_number + 1
		RETURNING last_number;
	`
	var next int64
	if err := tx.QueryRow(ctx, query, year).Scan(&next); err != nil {
		return 0, apperrors.NewAppError(500, "failed to allocate journal number for "+strconv.Itoa(year), err)
	}
	return next, nil
}

// InsertJournal persists a new entry with its lines.
func (r *PgxJournalRepository) InsertJournal(ctx context.Context, tx pgx.Tx, entry domain.JournalEntry) error {
	m := mapping.ToModelJournal(entry)
	query := `
		INSERT INTO journal_entries (` + journalColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15);
	`
	_, err := tx.Exec(ctx, query,
		m.JournalID,
		m.JournalNumber,
		m.JournalDate,
		nullIfEmpty(m.ReferenceNumber),
		nullIfEmpty(m.Description),
		m.Status,
		m.PostedAt,
		nullIfEmpty(m.PostedBy),
		m.VoidedAt,
		nullIfEmpty(m.VoidedBy),
		nullIfEmpty(m.VoidReason),
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.NewAppError(500, "journal number "+m.JournalNumber+" already allocated", err)
		}
		return apperrors.NewAppError(500, "failed to insert journal "+m.JournalID, err)
	}
	return r.insertLines(ctx, tx, entry.JournalID, entry.Lines)
}

func (r *PgxJournalRepository) insertLines(ctx context.Context, tx pgx.Tx, journalID string, lines []domain.JournalLine) error {
	if len(lines) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	query := `
		INSERT INTO journal_lines (line_id, journal_id, line_no, account_code, debit, credit, memo)
		VALUES ($1, $2, $3, $4, $5, $6, $7);
	`
	for _, l := range lines {
		m := mapping.ToModelJournalLine(l)
		batch.Queue(query, m.LineID, journalID, m.LineNo, m.AccountCode, m.Debit, m.Credit, nullIfEmpty(m.Memo))
	}

	br := tx.SendBatch(ctx, batch)
	for range lines {
		if _, err := br.Exec(); err != nil {
			br.Close()
			return apperrors.NewAppError(500, "failed to insert lines for journal "+journalID, err)
		}
	}
	if err := br.Close(); err != nil {
		return apperrors.NewAppError(500, "failed to close line batch for journal "+journalID, err)
	}
	return nil
}

// ReplaceDraft overwrites the header fields and the full line set of a draft.
func (r *PgxJournalRepository) ReplaceDraft(ctx context.Context, tx pgx.Tx, entry domain.JournalEntry) error {
	m := mapping.ToModelJournal(entry)
	query := `
		UPDATE journal_entries
		SET journal_date = $2, reference_number = $3, description = $4, last_updated_at = $5, last_updated_by = $6
		WHERE journal_id = $1 AND status = 'DRAFT';
	`
	tag, err := tx.Exec(ctx, query,
		m.JournalID,
		m.JournalDate,
		nullIfEmpty(m.ReferenceNumber),
		nullIfEmpty(m.Description),
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to update journal "+m.JournalID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NewNotFoundError("journal", m.JournalID)
	}
	if _, err := tx.Exec(ctx, `DELETE FROM journal_lines WHERE journal_id = $1;`, m.JournalID); err != nil {
		return apperrors.NewAppError(500, "failed to clear lines of journal "+m.JournalID, err)
	}
	return r.insertLines(ctx, tx, entry.JournalID, entry.Lines)
}

// UpdateJournalStatus persists the status, posting and voiding fields of an entry.
func (r *PgxJournalRepository) UpdateJournalStatus(ctx context.Context, tx pgx.Tx, entry domain.JournalEntry) error {
	m := mapping.ToModelJournal(entry)
	query := `
		UPDATE journal_entries
		SET status = $2, posted_at = $3, posted_by = $4, voided_at = $5, voided_by = $6, void_reason = $7,
		    last_updated_at = $8, last_updated_by = $9
		WHERE journal_id = $1;
	`
	tag, err := tx.Exec(ctx, query,
		m.JournalID,
		m.Status,
		m.PostedAt,
		nullIfEmpty(m.PostedBy),
		m.VoidedAt,
		nullIfEmpty(m.VoidedBy),
		nullIfEmpty(m.VoidReason),
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to update status of journal "+m.JournalID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NewNotFoundError("journal", m.JournalID)
	}
	return nil
}

// DeleteJournal removes an entry; its lines cascade.
func (r *PgxJournalRepository) DeleteJournal(ctx context.Context, tx pgx.Tx, journalID string) error {
	tag, err := tx.Exec(ctx, `DELETE FROM journal_entries WHERE journal_id = $1;`, journalID)
	if err != nil {
		return apperrors.NewAppError(500, "failed to delete journal "+journalID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NewNotFoundError("journal", journalID)
	}
	return nil
}

// LockFiscalYear takes a transaction-scoped advisory lock keyed on the year.
func (r *PgxJournalRepository) LockFiscalYear(ctx context.Context, tx pgx.Tx, year int) error {
	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock($1);`, fiscalYearLockKey(year)); err != nil {
		return apperrors.NewAppError(500, "failed to lock fiscal year "+strconv.Itoa(year), err)
	}
	return nil
}

func fiscalYearLockKey(year int) int64 {
	h := fnv.New32a()
	h.Write([]byte("fiscal-year-close"))
	return int64(h.Sum32())<<32 | int64(uint32(year))
}
