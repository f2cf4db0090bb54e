package services

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/corebank/posting-engine/internal/core/domain"
)

// StageEntryInput carries everything needed to stage one proposed movement.
// Caller identity is explicit; the engine holds no ambient user or branch state.
type StageEntryInput struct {
	AccountID string
	Amount    decimal.Decimal
	Direction domain.EntryDirection
	Reference string
	EventCode string
	Narrative string
	Source    domain.EntrySource
	CreatorID string
	BranchID  string
}

// StagingSvcFacade stages proposed ledger movements.
type StagingSvcFacade interface {
	// StageEntry validates and persists one proposed line with status STAGED.
	// It never touches balances.
	StageEntry(ctx context.Context, input StageEntryInput) (*domain.StagedEntry, error)

	// ListEntriesByReference returns the current lines recorded under a reference.
	ListEntriesByReference(ctx context.Context, reference string) ([]domain.StagedEntry, error)
}

// BatchSvcFacade seals staged lines into posting batches.
type BatchSvcFacade interface {
	// SealBatch gathers the staged lines for (reference, creator, branch),
	// enforces the double-entry invariant, and creates the PENDING batch.
	SealBatch(ctx context.Context, reference, creatorID, branchID, description string, source domain.EntrySource) (*domain.PostedEntry, error)

	// GetPostedEntry retrieves a sealed batch by reference.
	GetPostedEntry(ctx context.Context, reference string) (*domain.PostedEntry, error)
}

// ResolveInput carries one approval or rejection decision.
type ResolveInput struct {
	Reference   string
	ApproverID  string
	Approve     bool
	PostingDate time.Time

	// SkipSelfCheck disables the maker-checker rule for fully automated
	// system postings. The HTTP layer only honors it for callers holding a
	// valid service token; in-process callers set it deliberately.
	SkipSelfCheck bool
}

// ApprovalSvcFacade drives the maker-checker state machine.
type ApprovalSvcFacade interface {
	// Resolve applies an approval or rejection to a PENDING batch. On
	// approval, balances are mutated and ledger entries written as one
	// atomic unit; on rejection the batch is finalized without balance impact.
	Resolve(ctx context.Context, input ResolveInput) (*domain.PostedEntry, error)
}

// AccountResolverSvcFacade finds or provisions the concrete account for a
// chart position and branch pair.
type AccountResolverSvcFacade interface {
	// ResolveAccount returns exactly one account for the triple, provisioning
	// a new one through the external collaborator when none exists. Idempotent
	// per (chartPosition, ownerBranch, liaisonBranch).
	ResolveAccount(ctx context.Context, chartPositionID string, owner domain.Branch, liaisonBranchID *string) (*domain.Account, error)
}

// BranchExpansion is the per-branch output of a propagated event: a fresh set
// of staged lines under a branch-specific reference, ready to be sealed and
// approved independently.
type BranchExpansion struct {
	Branch    domain.Branch
	Reference string
	Entries   []domain.StagedEntry
}

// ExpandInput describes one business event fanning out across branches.
type ExpandInput struct {
	SourceEntries []domain.StagedEntry
	EventCode     string
	Branches      []domain.Branch
	ActingBranch  domain.Branch
	CreatorID     string
	PostingDate   time.Time
}

// PropagationSvcFacade expands a business event into per-branch staged lines
// against liaison accounts.
type PropagationSvcFacade interface {
	ExpandAcrossBranches(ctx context.Context, input ExpandInput) ([]BranchExpansion, error)
}

// AccountSvcFacade exposes account reads for the query surface.
type AccountSvcFacade interface {
	GetAccountByID(ctx context.Context, accountID string) (*domain.Account, error)
	ListLedgerEntries(ctx context.Context, accountID string, limit int, nextToken *string) ([]domain.LedgerEntry, *string, error)
}

// ServiceContainer bundles the service facades handed to the HTTP layer.
type ServiceContainer struct {
	Staging     StagingSvcFacade
	Batch       BatchSvcFacade
	Approval    ApprovalSvcFacade
	Resolver    AccountResolverSvcFacade
	Propagation PropagationSvcFacade
	Account     AccountSvcFacade
}
