package repositories

import (
	"context"

	"github.com/corebank/posting-engine/internal/core/domain"
)

// StagedEntryReader defines read operations for staged lines.
type StagedEntryReader interface {
	// FindStagedEntries retrieves the not-yet-sealed lines for (reference, creator, branch).
	FindStagedEntries(ctx context.Context, reference, creatorID, branchID string) ([]domain.StagedEntry, error)

	// FindEntriesByReference retrieves every non-deleted line for a reference,
	// regardless of status. Used by read endpoints only; resolution works from
	// the sealed membership, never from this view.
	FindEntriesByReference(ctx context.Context, reference string) ([]domain.StagedEntry, error)

	// FindSealedEntries retrieves the UNDER_REVIEW lines belonging to the
	// sealed batch (reference, creator, branch). Lines staged under the same
	// reference after sealing are not part of the batch and are excluded.
	FindSealedEntries(ctx context.Context, reference, creatorID, branchID string) ([]domain.StagedEntry, error)
}

// StagedEntryWriter defines write operations for staged lines.
type StagedEntryWriter interface {
	// SaveStagedEntry persists one newly staged line.
	SaveStagedEntry(ctx context.Context, entry domain.StagedEntry) error
}

// StagedEntryRepositoryFacade combines all staged-entry repository interfaces.
type StagedEntryRepositoryFacade interface {
	StagedEntryReader
	StagedEntryWriter
}
