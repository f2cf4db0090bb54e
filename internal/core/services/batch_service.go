package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/corebank/posting-engine/internal/apperrors"
	"github.com/corebank/posting-engine/internal/core/domain"
	portsrepo "github.com/corebank/posting-engine/internal/core/ports/repositories"
	portssvc "github.com/corebank/posting-engine/internal/core/ports/services"
	"github.com/corebank/posting-engine/internal/middleware"
)

var (
	ErrUnbalanced   = errors.New("debit and credit totals do not balance")
	ErrNoStagedRows = errors.New("no staged entries found for reference")
)

// batchService seals staged lines into posting batches.
type batchService struct {
	entryRepo  portsrepo.StagedEntryRepositoryFacade
	postedRepo portsrepo.PostedEntryRepositoryFacade
	audit      portssvc.AuditLogger
}

// NewBatchService creates a new batch sealing service.
func NewBatchService(entryRepo portsrepo.StagedEntryRepositoryFacade, postedRepo portsrepo.PostedEntryRepositoryFacade, audit portssvc.AuditLogger) portssvc.BatchSvcFacade {
	return &batchService{
		entryRepo:  entryRepo,
		postedRepo: postedRepo,
		audit:      audit,
	}
}

var _ portssvc.BatchSvcFacade = (*batchService)(nil)

// validateDoubleEntry checks the double-entry invariant over a set of lines.
func validateDoubleEntry(entries []domain.StagedEntry) (totalDebit decimal.Decimal, err error) {
	debits, credits := domain.SumByDirection(entries)
	if !debits.Equal(credits) {
		return decimal.Zero, fmt.Errorf("%w: debit total is %s, credit total is %s",
			ErrUnbalanced, debits.String(), credits.String())
	}
	return debits, nil
}

// SealBatch gathers the staged lines for (reference, creator, branch), enforces
// the double-entry invariant, and atomically creates the PENDING batch while
// flipping the lines to UNDER_REVIEW. On invariant failure nothing is persisted
// and the lines remain STAGED for correction.
func (s *batchService) SealBatch(ctx context.Context, reference, creatorID, branchID, description string, source domain.EntrySource) (*domain.PostedEntry, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if strings.TrimSpace(reference) == "" {
		return nil, fmt.Errorf("%w: %w", apperrors.ErrValidation, ErrEmptyReference)
	}
	if source == "" {
		source = domain.SourceUser
	}

	entries, err := s.entryRepo.FindStagedEntries(ctx, reference, creatorID, branchID)
	if err != nil {
		logger.Error("Failed to gather staged entries", slog.String("reference", reference), slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to gather staged entries for %s: %w", reference, err)
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("%w: %w (creator %s, branch %s)", apperrors.ErrNotFound, ErrNoStagedRows, creatorID, branchID)
	}

	totalDebit, err := validateDoubleEntry(entries)
	if err != nil {
		logger.Warn("Batch failed double-entry validation", slog.String("reference", reference), slog.String("error", err.Error()))
		return nil, err
	}

	// Freeze the member lines now; this snapshot is the audit record and is
	// not recomputed later even if underlying rows change.
	snapshot, err := domain.SnapshotEntries(entries)
	if err != nil {
		return nil, fmt.Errorf("failed to snapshot entries for %s: %w", reference, err)
	}

	now := time.Now().UTC()
	posted := domain.PostedEntry{
		Reference:   reference,
		TotalDebit:  totalDebit,
		Description: description,
		Source:      source,
		Status:      domain.Pending,
		Validated:   false,
		BranchID:    branchID,
		EntryDetail: snapshot,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     creatorID,
			LastUpdatedAt: now,
			LastUpdatedBy: creatorID,
		},
	}

	entryIDs := make([]string, len(entries))
	for i, e := range entries {
		entryIDs[i] = e.EntryID
	}

	if err := s.postedRepo.SealBatch(ctx, posted, entryIDs); err != nil {
		if errors.Is(err, apperrors.ErrDuplicate) {
			return nil, fmt.Errorf("%w: batch %s already sealed", apperrors.ErrConflict, reference)
		}
		logger.Error("Failed to seal batch", slog.String("reference", reference), slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to seal batch %s: %w", reference, err)
	}

	if s.audit != nil {
		s.audit.RecordBatchSealed(ctx, posted)
	}

	logger.Info("Batch sealed",
		slog.String("reference", reference),
		slog.String("total_debit", totalDebit.String()),
		slog.Int("line_count", len(entries)))
	return &posted, nil
}

// GetPostedEntry retrieves a sealed batch by reference.
func (s *batchService) GetPostedEntry(ctx context.Context, reference string) (*domain.PostedEntry, error) {
	posted, err := s.postedRepo.FindPostedEntryByReference(ctx, reference)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: batch %s", apperrors.ErrNotFound, reference)
		}
		return nil, fmt.Errorf("failed to find batch %s: %w", reference, err)
	}
	return posted, nil
}
