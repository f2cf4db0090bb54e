package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/corebank/posting-engine/internal/apperrors"
	"github.com/corebank/posting-engine/internal/core/domain"
	portsrepo "github.com/corebank/posting-engine/internal/core/ports/repositories"
	portssvc "github.com/corebank/posting-engine/internal/core/ports/services"
	"github.com/corebank/posting-engine/internal/middleware"
)

var (
	ErrAlreadyResolved = errors.New("batch has already been resolved")
	ErrSelfApproval    = errors.New("batch cannot be approved by its creator")
)

// approvalService is the maker-checker state machine. A PENDING batch moves to
// APPROVED or REJECTED exactly once; only approval mutates balances.
type approvalService struct {
	entryRepo  portsrepo.StagedEntryRepositoryFacade
	postedRepo portsrepo.PostedEntryRepositoryFacade
	audit      portssvc.AuditLogger
}

// NewApprovalService creates a new approval service.
func NewApprovalService(entryRepo portsrepo.StagedEntryRepositoryFacade, postedRepo portsrepo.PostedEntryRepositoryFacade, audit portssvc.AuditLogger) portssvc.ApprovalSvcFacade {
	return &approvalService{
		entryRepo:  entryRepo,
		postedRepo: postedRepo,
		audit:      audit,
	}
}

var _ portssvc.ApprovalSvcFacade = (*approvalService)(nil)

// Resolve applies one approval or rejection decision to a PENDING batch.
func (s *approvalService) Resolve(ctx context.Context, input portssvc.ResolveInput) (*domain.PostedEntry, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	posted, err := s.postedRepo.FindPostedEntryByReference(ctx, input.Reference)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: batch %s", apperrors.ErrNotFound, input.Reference)
		}
		logger.Error("Failed to load batch for resolution", slog.String("reference", input.Reference), slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to load batch %s: %w", input.Reference, err)
	}

	if posted.IsResolved() {
		return nil, fmt.Errorf("%w: %w: batch %s is %s", apperrors.ErrConflict, ErrAlreadyResolved, posted.Reference, posted.Status)
	}

	// Maker-checker: the identity that staged the lines cannot resolve them.
	// SkipSelfCheck exists for fully automated system postings only; the HTTP
	// layer refuses to set it for ordinary callers.
	if input.ApproverID == posted.CreatedBy && !input.SkipSelfCheck {
		return nil, fmt.Errorf("%w: %w: batch %s was created by %s", apperrors.ErrConflict, ErrSelfApproval, posted.Reference, posted.CreatedBy)
	}

	// Only the membership frozen at seal time counts. Lines staged under the
	// same reference afterwards, by anyone, are not part of this batch.
	entries, err := s.entryRepo.FindSealedEntries(ctx, posted.Reference, posted.CreatedBy, posted.BranchID)
	if err != nil {
		logger.Error("Failed to load sealed entries for resolution", slog.String("reference", posted.Reference), slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to load entries for batch %s: %w", posted.Reference, err)
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("%w: batch %s has no sealed entries", apperrors.ErrNotFound, posted.Reference)
	}

	// Re-run the invariant over the sealed lines: the batch may have been
	// tampered with between seal and resolution.
	if _, err := validateDoubleEntry(entries); err != nil {
		logger.Warn("Batch failed re-validation at resolution", slog.String("reference", posted.Reference), slog.String("error", err.Error()))
		return nil, err
	}

	snapshot, err := domain.SnapshotEntries(entries)
	if err != nil {
		return nil, fmt.Errorf("failed to snapshot entries for %s: %w", posted.Reference, err)
	}

	now := time.Now().UTC()
	posted.Validated = true
	posted.ApprovedBy = &input.ApproverID
	posted.ApprovedAt = &now
	posted.EntryDetail = snapshot
	posted.LastUpdatedAt = now
	posted.LastUpdatedBy = input.ApproverID

	if !input.Approve {
		return s.reject(ctx, posted)
	}
	return s.approve(ctx, posted, entries, input)
}

// reject finalizes the batch without touching balances; staged lines are kept
// for correction and audit.
func (s *approvalService) reject(ctx context.Context, posted *domain.PostedEntry) (*domain.PostedEntry, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	posted.Status = domain.Rejected
	if err := s.postedRepo.ApplyRejection(ctx, *posted); err != nil {
		if errors.Is(err, apperrors.ErrConflict) {
			return nil, fmt.Errorf("%w: %w: batch %s", apperrors.ErrConflict, ErrAlreadyResolved, posted.Reference)
		}
		logger.Error("Failed to reject batch", slog.String("reference", posted.Reference), slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to reject batch %s: %w", posted.Reference, err)
	}

	if s.audit != nil {
		s.audit.RecordBatchResolved(ctx, *posted)
	}
	logger.Info("Batch rejected", slog.String("reference", posted.Reference), slog.String("approver", *posted.ApprovedBy))
	return posted, nil
}

// approve applies the batch as one atomic unit: balance deltas, ledger entries,
// staged-line removal, and the PENDING -> APPROVED transition commit together
// or not at all.
func (s *approvalService) approve(ctx context.Context, posted *domain.PostedEntry, entries []domain.StagedEntry, input portssvc.ResolveInput) (*domain.PostedEntry, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	postingDate := input.PostingDate
	if postingDate.IsZero() {
		postingDate = time.Now().UTC()
	}

	balanceChanges := make(map[string]decimal.Decimal, len(entries))
	ledgerEntries := make([]domain.LedgerEntry, len(entries))
	entryIDs := make([]string, len(entries))
	now := posted.LastUpdatedAt

	for i, e := range entries {
		balanceChanges[e.AccountID] = balanceChanges[e.AccountID].Add(e.SignedAmount())
		narrative := e.Narrative
		if narrative == "" {
			narrative = posted.Description
		}
		ledgerEntries[i] = domain.LedgerEntry{
			LedgerEntryID: uuid.NewString(),
			AccountID:     e.AccountID,
			Reference:     posted.Reference,
			Amount:        e.Amount,
			Direction:     e.Direction,
			PostingDate:   postingDate,
			Narrative:     narrative,
			AuditFields: domain.AuditFields{
				CreatedAt:     now,
				CreatedBy:     input.ApproverID,
				LastUpdatedAt: now,
				LastUpdatedBy: input.ApproverID,
			},
		}
		entryIDs[i] = e.EntryID
	}

	posted.Status = domain.Approved
	if err := s.postedRepo.ApplyApproval(ctx, *posted, entryIDs, balanceChanges, ledgerEntries); err != nil {
		if errors.Is(err, apperrors.ErrConflict) {
			return nil, fmt.Errorf("%w: %w: batch %s", apperrors.ErrConflict, ErrAlreadyResolved, posted.Reference)
		}
		logger.Error("Failed to apply approval", slog.String("reference", posted.Reference), slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to approve batch %s: %w", posted.Reference, err)
	}

	if s.audit != nil {
		s.audit.RecordBatchResolved(ctx, *posted)
	}
	logger.Info("Batch approved",
		slog.String("reference", posted.Reference),
		slog.String("approver", input.ApproverID),
		slog.Int("ledger_entries", len(ledgerEntries)))
	return posted, nil
}
