package repositories

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/corebank/posting-engine/internal/core/domain"
)

// PostedEntryReader defines read operations for sealed batches.
type PostedEntryReader interface {
	// FindPostedEntryByReference retrieves a sealed batch by its reference.
	FindPostedEntryByReference(ctx context.Context, reference string) (*domain.PostedEntry, error)
}

// PostedEntryWriter defines the batch-level write operations. Each method is a
// single all-or-nothing database transaction.
type PostedEntryWriter interface {
	// SealBatch inserts a PENDING PostedEntry and flips the given staged lines
	// to UNDER_REVIEW atomically. The reference is unique at the store level;
	// the loser of a concurrent seal gets apperrors.ErrDuplicate.
	SealBatch(ctx context.Context, posted domain.PostedEntry, entryIDs []string) error

	// ApplyApproval commits an approval as one unit: locks the touched accounts,
	// applies the balance deltas, appends the ledger entries, deletes the staged
	// lines, and moves the batch PENDING -> APPROVED. Returns
	// apperrors.ErrConflict if the batch is no longer PENDING; nothing is
	// applied in that case.
	ApplyApproval(ctx context.Context, posted domain.PostedEntry, entryIDs []string, balanceChanges map[string]decimal.Decimal, ledgerEntries []domain.LedgerEntry) error

	// ApplyRejection moves the batch PENDING -> REJECTED, refreshing the audit
	// snapshot. Staged lines and balances are untouched. Returns
	// apperrors.ErrConflict if the batch is no longer PENDING.
	ApplyRejection(ctx context.Context, posted domain.PostedEntry) error
}

// PostedEntryRepositoryFacade combines all posted-entry repository interfaces.
type PostedEntryRepositoryFacade interface {
	PostedEntryReader
	PostedEntryWriter
}
