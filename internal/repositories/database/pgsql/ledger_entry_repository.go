package pgsql

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/corebank/posting-engine/internal/core/domain"
	portsrepo "github.com/corebank/posting-engine/internal/core/ports/repositories"
	"github.com/corebank/posting-engine/internal/utils/pagination"
)

type PgxLedgerEntryRepository struct {
	BaseRepository
}

// newPgxLedgerEntryRepository creates a new read-side repository for the
// append-only ledger. Inserts happen only inside the approval transaction
// owned by the posted entry repository.
func newPgxLedgerEntryRepository(pool *pgxpool.Pool) portsrepo.LedgerEntryReader {
	return &PgxLedgerEntryRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.LedgerEntryReader = (*PgxLedgerEntryRepository)(nil)

const ledgerEntryColumns = `ledger_entry_id, account_id, reference, amount, direction, posting_date, narrative, created_at, created_by, last_updated_at, last_updated_by`

func scanLedgerEntry(row pgx.Row) (*domain.LedgerEntry, error) {
	var e domain.LedgerEntry
	err := row.Scan(
		&e.LedgerEntryID,
		&e.AccountID,
		&e.Reference,
		&e.Amount,
		&e.Direction,
		&e.PostingDate,
		&e.Narrative,
		&e.CreatedAt,
		&e.CreatedBy,
		&e.LastUpdatedAt,
		&e.LastUpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// ListLedgerEntriesByAccountID retrieves a page of entries for an account
// using a (created_at, ledger_entry_id) keyset token.
func (r *PgxLedgerEntryRepository) ListLedgerEntriesByAccountID(ctx context.Context, accountID string, limit int, nextToken *string) ([]domain.LedgerEntry, *string, error) {
	args := []any{accountID, limit + 1}
	query := `
		SELECT ` + ledgerEntryColumns + `
		FROM ledger_entries
		WHERE account_id = $1
	`
	if nextToken != nil && *nextToken != "" {
		fields, err := pagination.DecodeMultiFieldToken(*nextToken)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid pagination token: %w", err)
		}
		if len(fields) != 2 {
			return nil, nil, fmt.Errorf("invalid pagination token: expected 2 fields, got %d", len(fields))
		}
		cursorTime, err := time.Parse(time.RFC3339Nano, fields[0])
		if err != nil {
			return nil, nil, fmt.Errorf("invalid pagination token (time): %w", err)
		}
		query += ` AND (created_at, ledger_entry_id) > ($3, $4)`
		args = append(args, cursorTime, fields[1])
	}
	query += ` ORDER BY created_at, ledger_entry_id LIMIT $2;`

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to query ledger entries for account %s: %w", accountID, err)
	}
	defer rows.Close()

	entries := []domain.LedgerEntry{}
	for rows.Next() {
		e, err := scanLedgerEntry(rows)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to scan ledger entry row: %w", err)
		}
		entries = append(entries, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("error iterating ledger entry rows: %w", err)
	}

	var token *string
	if len(entries) > limit {
		entries = entries[:limit]
		last := entries[len(entries)-1]
		t := pagination.EncodeMultiFieldToken(last.CreatedAt.Format(time.RFC3339Nano), last.LedgerEntryID)
		token = &t
	}
	return entries, token, nil
}

// FindLedgerEntriesByReference retrieves the entries written by one approved batch.
func (r *PgxLedgerEntryRepository) FindLedgerEntriesByReference(ctx context.Context, reference string) ([]domain.LedgerEntry, error) {
	query := `
		SELECT ` + ledgerEntryColumns + `
		FROM ledger_entries
		WHERE reference = $1
		ORDER BY created_at, ledger_entry_id;
	`
	rows, err := r.Pool.Query(ctx, query, reference)
	if err != nil {
		return nil, fmt.Errorf("failed to query ledger entries for reference %s: %w", reference, err)
	}
	defer rows.Close()

	entries := []domain.LedgerEntry{}
	for rows.Next() {
		e, err := scanLedgerEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan ledger entry row: %w", err)
		}
		entries = append(entries, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating ledger entry rows: %w", err)
	}
	return entries, nil
}
