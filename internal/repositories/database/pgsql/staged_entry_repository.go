package pgsql

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/corebank/posting-engine/internal/core/domain"
	portsrepo "github.com/corebank/posting-engine/internal/core/ports/repositories"
)

type PgxStagedEntryRepository struct {
	BaseRepository
}

// newPgxStagedEntryRepository creates a new repository for staged entry data.
func newPgxStagedEntryRepository(pool *pgxpool.Pool) portsrepo.StagedEntryRepositoryFacade {
	return &PgxStagedEntryRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.StagedEntryRepositoryFacade = (*PgxStagedEntryRepository)(nil)

const stagedEntryColumns = `entry_id, account_id, amount, direction, reference, event_code, source, status, branch_id, narrative, deleted, created_at, created_by, last_updated_at, last_updated_by`

func scanStagedEntry(row pgx.Row) (*domain.StagedEntry, error) {
	var e domain.StagedEntry
	err := row.Scan(
		&e.EntryID,
		&e.AccountID,
		&e.Amount,
		&e.Direction,
		&e.Reference,
		&e.EventCode,
		&e.Source,
		&e.Status,
		&e.BranchID,
		&e.Narrative,
		&e.Deleted,
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

// SaveStagedEntry persists one newly staged line.
func (r *PgxStagedEntryRepository) SaveStagedEntry(ctx context.Context, entry domain.StagedEntry) error {
	query := `
		INSERT INTO staged_entries (` + stagedEntryColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15);
	`
	_, err := r.Pool.Exec(ctx, query,
		entry.EntryID,
		entry.AccountID,
		entry.Amount,
		entry.Direction,
		entry.Reference,
		entry.EventCode,
		entry.Source,
		entry.Status,
		entry.BranchID,
		entry.Narrative,
		entry.Deleted,
		entry.CreatedAt,
		entry.CreatedBy,
		entry.LastUpdatedAt,
		entry.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to insert staged entry %s: %w", entry.EntryID, err)
	}
	return nil
}

// FindStagedEntries retrieves the not-yet-sealed lines for (reference, creator, branch).
func (r *PgxStagedEntryRepository) FindStagedEntries(ctx context.Context, reference, creatorID, branchID string) ([]domain.StagedEntry, error) {
	query := `
		SELECT ` + stagedEntryColumns + `
		FROM staged_entries
		WHERE reference = $1 AND created_by = $2 AND branch_id = $3 AND status = $4 AND NOT deleted
		ORDER BY created_at, entry_id;
	`
	return r.queryEntries(ctx, query, reference, creatorID, branchID, domain.Staged)
}

// FindEntriesByReference retrieves every non-deleted line for a reference.
func (r *PgxStagedEntryRepository) FindEntriesByReference(ctx context.Context, reference string) ([]domain.StagedEntry, error) {
	query := `
		SELECT ` + stagedEntryColumns + `
		FROM staged_entries
		WHERE reference = $1 AND NOT deleted
		ORDER BY created_at, entry_id;
	`
	return r.queryEntries(ctx, query, reference)
}

// FindSealedEntries retrieves the UNDER_REVIEW lines of the sealed batch
// identified by (reference, creator, branch).
func (r *PgxStagedEntryRepository) FindSealedEntries(ctx context.Context, reference, creatorID, branchID string) ([]domain.StagedEntry, error) {
	query := `
		SELECT ` + stagedEntryColumns + `
		FROM staged_entries
		WHERE reference = $1 AND created_by = $2 AND branch_id = $3 AND status = $4 AND NOT deleted
		ORDER BY created_at, entry_id;
	`
	return r.queryEntries(ctx, query, reference, creatorID, branchID, domain.UnderReview)
}

func (r *PgxStagedEntryRepository) queryEntries(ctx context.Context, query string, args ...any) ([]domain.StagedEntry, error) {
	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query staged entries: %w", err)
	}
	defer rows.Close()

	entries := []domain.StagedEntry{}
	for rows.Next() {
		e, err := scanStagedEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan staged entry row: %w", err)
		}
		entries = append(entries, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating staged entry rows: %w", err)
	}
	return entries, nil
}
