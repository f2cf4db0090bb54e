package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/corebank/posting-engine/internal/apperrors"
	"github.com/corebank/posting-engine/internal/core/domain"
	portsrepo "github.com/corebank/posting-engine/internal/core/ports/repositories"
)

type PgxPostedEntryRepository struct {
	BaseRepository
	accountRepo portsrepo.AccountRepositoryFacade
}

// newPgxPostedEntryRepository creates a new repository for posted batch data.
// It owns the multi-table posting transactions, so it takes the account
// repository for the in-transaction balance operations.
func newPgxPostedEntryRepository(pool *pgxpool.Pool, accountRepo portsrepo.AccountRepositoryFacade) portsrepo.PostedEntryRepositoryFacade {
	return &PgxPostedEntryRepository{
		BaseRepository: BaseRepository{Pool: pool},
		accountRepo:    accountRepo,
	}
}

var _ portsrepo.PostedEntryRepositoryFacade = (*PgxPostedEntryRepository)(nil)

const postedEntryColumns = `reference, total_debit, description, source, status, validated, approved_by, approved_at, branch_id, entry_detail, created_at, created_by, last_updated_at, last_updated_by`

// FindPostedEntryByReference retrieves a sealed batch by its reference.
func (r *PgxPostedEntryRepository) FindPostedEntryByReference(ctx context.Context, reference string) (*domain.PostedEntry, error) {
	query := `SELECT ` + postedEntryColumns + ` FROM posted_entries WHERE reference = $1;`

	var p domain.PostedEntry
	err := r.Pool.QueryRow(ctx, query, reference).Scan(
		&p.Reference,
		&p.TotalDebit,
		&p.Description,
		&p.Source,
		&p.Status,
		&p.Validated,
		&p.ApprovedBy,
		&p.ApprovedAt,
		&p.BranchID,
		&p.EntryDetail,
		&p.CreatedAt,
		&p.CreatedBy,
		&p.LastUpdatedAt,
		&p.LastUpdatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find posted entry %s: %w", reference, err)
	}
	return &p, nil
}

// SealBatch inserts the PENDING batch and flips its staged lines to
// UNDER_REVIEW in one transaction. The primary key on reference makes
// concurrent seals lose cleanly with ErrDuplicate.
func (r *PgxPostedEntryRepository) SealBatch(ctx context.Context, posted domain.PostedEntry, entryIDs []string) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	insertQuery := `
		INSERT INTO posted_entries (` + postedEntryColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14);
	`
	_, err = tx.Exec(ctx, insertQuery,
		posted.Reference,
		posted.TotalDebit,
		posted.Description,
		posted.Source,
		posted.Status,
		posted.Validated,
		posted.ApprovedBy,
		posted.ApprovedAt,
		posted.BranchID,
		posted.EntryDetail,
		posted.CreatedAt,
		posted.CreatedBy,
		posted.LastUpdatedAt,
		posted.LastUpdatedBy,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: posted entry %s", apperrors.ErrDuplicate, posted.Reference)
		}
		return fmt.Errorf("failed to insert posted entry %s: %w", posted.Reference, err)
	}

	sealQuery := `
		UPDATE staged_entries
		SET status = $2, last_updated_at = $3, last_updated_by = $4
		WHERE entry_id = ANY($1) AND status = $5;
	`
	ct, err := tx.Exec(ctx, sealQuery, entryIDs, domain.UnderReview, posted.LastUpdatedAt, posted.LastUpdatedBy, domain.Staged)
	if err != nil {
		return fmt.Errorf("failed to seal staged entries for %s: %w", posted.Reference, err)
	}
	if ct.RowsAffected() != int64(len(entryIDs)) {
		// A concurrent caller touched some of the gathered lines; give up
		// rather than seal a batch missing lines from its snapshot.
		return fmt.Errorf("%w: staged entries changed while sealing batch %s", apperrors.ErrConflict, posted.Reference)
	}

	return r.Commit(ctx, tx)
}

// ApplyApproval commits an approval as one unit: balance deltas, ledger
// entries, staged-line removal, and the status transition. Any failure rolls
// the whole unit back, leaving the batch PENDING.
func (r *PgxPostedEntryRepository) ApplyApproval(ctx context.Context, posted domain.PostedEntry, entryIDs []string, balanceChanges map[string]decimal.Decimal, ledgerEntries []domain.LedgerEntry) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	// Serialize with any concurrent resolution of the same batch: only the
	// caller that still observes PENDING may proceed.
	statusQuery := `
		UPDATE posted_entries
		SET status = $2, validated = $3, approved_by = $4, approved_at = $5, entry_detail = $6, last_updated_at = $7, last_updated_by = $8
		WHERE reference = $1 AND status = $9;
	`
	ct, err := tx.Exec(ctx, statusQuery,
		posted.Reference,
		posted.Status,
		posted.Validated,
		posted.ApprovedBy,
		posted.ApprovedAt,
		posted.EntryDetail,
		posted.LastUpdatedAt,
		posted.LastUpdatedBy,
		domain.Pending,
	)
	if err != nil {
		return fmt.Errorf("failed to update posted entry %s: %w", posted.Reference, err)
	}
	if ct.RowsAffected() == 0 {
		return fmt.Errorf("%w: posted entry %s is no longer pending", apperrors.ErrConflict, posted.Reference)
	}

	accountIDs := make([]string, 0, len(balanceChanges))
	for accountID := range balanceChanges {
		accountIDs = append(accountIDs, accountID)
	}
	if _, err := r.accountRepo.FindAccountsByIDsForUpdate(ctx, tx, accountIDs); err != nil {
		return fmt.Errorf("failed to lock accounts for approval of %s: %w", posted.Reference, err)
	}
	if err := r.accountRepo.UpdateAccountBalancesInTx(ctx, tx, balanceChanges, posted.LastUpdatedBy, posted.LastUpdatedAt); err != nil {
		return fmt.Errorf("failed to update balances for approval of %s: %w", posted.Reference, err)
	}

	ledgerQuery := `
		INSERT INTO ledger_entries (ledger_entry_id, account_id, reference, amount, direction, posting_date, narrative, created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11);
	`
	batch := &pgx.Batch{}
	for _, le := range ledgerEntries {
		batch.Queue(ledgerQuery,
			le.LedgerEntryID,
			le.AccountID,
			le.Reference,
			le.Amount,
			le.Direction,
			le.PostingDate,
			le.Narrative,
			le.CreatedAt,
			le.CreatedBy,
			le.LastUpdatedAt,
			le.LastUpdatedBy,
		)
	}
	br := tx.SendBatch(ctx, batch)
	if err := br.Close(); err != nil {
		return fmt.Errorf("failed to insert ledger entries for %s: %w", posted.Reference, err)
	}

	// Approved lines no longer represent in-flight work; the EntryDetail
	// snapshot on the batch remains the audit record.
	deleteQuery := `DELETE FROM staged_entries WHERE entry_id = ANY($1);`
	if _, err := tx.Exec(ctx, deleteQuery, entryIDs); err != nil {
		return fmt.Errorf("failed to remove staged entries for %s: %w", posted.Reference, err)
	}

	return r.Commit(ctx, tx)
}

// ApplyRejection finalizes the batch without balance impact. Staged lines are
// retained for correction and audit.
func (r *PgxPostedEntryRepository) ApplyRejection(ctx context.Context, posted domain.PostedEntry) error {
	query := `
		UPDATE posted_entries
		SET status = $2, validated = $3, approved_by = $4, approved_at = $5, entry_detail = $6, last_updated_at = $7, last_updated_by = $8
		WHERE reference = $1 AND status = $9;
	`
	ct, err := r.Pool.Exec(ctx, query,
		posted.Reference,
		posted.Status,
		posted.Validated,
		posted.ApprovedBy,
		posted.ApprovedAt,
		posted.EntryDetail,
		posted.LastUpdatedAt,
		posted.LastUpdatedBy,
		domain.Pending,
	)
	if err != nil {
		return fmt.Errorf("failed to reject posted entry %s: %w", posted.Reference, err)
	}
	if ct.RowsAffected() == 0 {
		return fmt.Errorf("%w: posted entry %s is no longer pending", apperrors.ErrConflict, posted.Reference)
	}
	return nil
}
