package repositories

import (
	"context"

	"github.com/corebank/posting-engine/internal/core/domain"
)

// LedgerEntryReader defines read operations for final ledger entries.
// The ledger is append-only; there is no writer interface outside the
// approval transaction owned by PostedEntryWriter.
type LedgerEntryReader interface {
	// ListLedgerEntriesByAccountID retrieves a page of ledger entries for an
	// account using token-based pagination. Returns the entries, a token for
	// the next page, and an error.
	ListLedgerEntriesByAccountID(ctx context.Context, accountID string, limit int, nextToken *string) ([]domain.LedgerEntry, *string, error)

	// FindLedgerEntriesByReference retrieves the entries written by one approved batch.
	FindLedgerEntriesByReference(ctx context.Context, reference string) ([]domain.LedgerEntry, error)
}
