package services

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/corebank/posting-engine/internal/apperrors"
	"github.com/corebank/posting-engine/internal/core/domain"
	portsrepo "github.com/corebank/posting-engine/internal/core/ports/repositories"
	portssvc "github.com/corebank/posting-engine/internal/core/ports/services"
	"github.com/corebank/posting-engine/internal/middleware"
)

var (
	ErrInvalidAmount    = errors.New("entry amount must be positive")
	ErrInvalidDirection = errors.New("entry direction must be DEBIT or CREDIT")
	ErrEmptyReference   = errors.New("entry reference is required")
	ErrReservedAccount  = errors.New("account is reserved for automated operations")
	ErrAccountInactive  = errors.New("account is inactive")
)

// ReservedAccountRules is the externally configured predicate identifying
// accounts operated by the system. Manual staging against them is refused.
type ReservedAccountRules struct {
	// NumberPrefixes are account-number prefixes denoting system-operated accounts.
	NumberPrefixes []string
	// EventCodes are system event codes (e.g. mobile-money collection tills);
	// any account whose chart position is wired to one of them is reserved.
	EventCodes []string
}

// matchesPrefix reports whether the account number carries a reserved prefix.
func (r ReservedAccountRules) matchesPrefix(accountNumber string) bool {
	for _, p := range r.NumberPrefixes {
		if p != "" && strings.HasPrefix(accountNumber, p) {
			return true
		}
	}
	return false
}

// matchesEventCode reports whether any of the given codes is reserved.
func (r ReservedAccountRules) matchesEventCode(codes []string) bool {
	for _, reserved := range r.EventCodes {
		for _, c := range codes {
			if reserved != "" && reserved == c {
				return true
			}
		}
	}
	return false
}

// stagingService records proposed ledger movements ahead of sealing.
type stagingService struct {
	accountRepo portsrepo.AccountRepositoryFacade
	entryRepo   portsrepo.StagedEntryRepositoryFacade
	ruleRepo    portsrepo.EventRuleReader
	reserved    ReservedAccountRules
}

// NewStagingService creates a new staging service.
func NewStagingService(accountRepo portsrepo.AccountRepositoryFacade, entryRepo portsrepo.StagedEntryRepositoryFacade, ruleRepo portsrepo.EventRuleReader, reserved ReservedAccountRules) portssvc.StagingSvcFacade {
	return &stagingService{
		accountRepo: accountRepo,
		entryRepo:   entryRepo,
		ruleRepo:    ruleRepo,
		reserved:    reserved,
	}
}

var _ portssvc.StagingSvcFacade = (*stagingService)(nil)

// StageEntry validates one proposed movement and persists it with status STAGED.
// Staging never touches account balances.
func (s *stagingService) StageEntry(ctx context.Context, input portssvc.StageEntryInput) (*domain.StagedEntry, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if input.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("%w: %w: got %s", apperrors.ErrValidation, ErrInvalidAmount, input.Amount.String())
	}
	if input.Direction != domain.Debit && input.Direction != domain.Credit {
		return nil, fmt.Errorf("%w: %w: got %q", apperrors.ErrValidation, ErrInvalidDirection, input.Direction)
	}
	if strings.TrimSpace(input.Reference) == "" {
		return nil, fmt.Errorf("%w: %w", apperrors.ErrValidation, ErrEmptyReference)
	}
	if input.Source == "" {
		input.Source = domain.SourceUser
	}

	account, err := s.accountRepo.FindAccountByID(ctx, input.AccountID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: account %s", apperrors.ErrNotFound, input.AccountID)
		}
		logger.Error("Failed to load account for staging", slog.String("account_id", input.AccountID), slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to load account %s: %w", input.AccountID, err)
	}
	if !account.IsActive {
		return nil, fmt.Errorf("%w: %w: account %s (%s)", apperrors.ErrConflict, ErrAccountInactive, account.AccountID, account.AccountNumber)
	}

	// Only user-originated staging is subject to the reserved-account check;
	// the system posts against its own tills by definition.
	if input.Source == domain.SourceUser {
		if err := s.checkReserved(ctx, account); err != nil {
			return nil, err
		}
	}

	now := time.Now().UTC()
	entry := domain.StagedEntry{
		EntryID:   uuid.NewString(),
		AccountID: account.AccountID,
		Amount:    input.Amount,
		Direction: input.Direction,
		Reference: strings.TrimSpace(input.Reference),
		EventCode: input.EventCode,
		Source:    input.Source,
		Status:    domain.Staged,
		BranchID:  input.BranchID,
		Narrative: input.Narrative,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     input.CreatorID,
			LastUpdatedAt: now,
			LastUpdatedBy: input.CreatorID,
		},
	}

	if err := s.entryRepo.SaveStagedEntry(ctx, entry); err != nil {
		logger.Error("Failed to save staged entry", slog.String("reference", entry.Reference), slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to save staged entry: %w", err)
	}

	logger.Info("Entry staged",
		slog.String("entry_id", entry.EntryID),
		slog.String("reference", entry.Reference),
		slog.String("account_id", entry.AccountID),
		slog.String("direction", string(entry.Direction)))
	return &entry, nil
}

// checkReserved refuses staging against accounts operated by the system,
// naming the account in the error.
func (s *stagingService) checkReserved(ctx context.Context, account *domain.Account) error {
	if s.reserved.matchesPrefix(account.AccountNumber) {
		return fmt.Errorf("%w: %w: account %s (%s) carries a system account-number prefix",
			apperrors.ErrConflict, ErrReservedAccount, account.AccountID, account.AccountNumber)
	}

	if len(s.reserved.EventCodes) > 0 {
		codes, err := s.ruleRepo.FindEventCodesByChartPosition(ctx, account.ChartPositionID)
		if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
			return fmt.Errorf("failed to resolve event codes for chart position %s: %w", account.ChartPositionID, err)
		}
		if s.reserved.matchesEventCode(codes) {
			return fmt.Errorf("%w: %w: account %s (%s) belongs to a system event chart position",
				apperrors.ErrConflict, ErrReservedAccount, account.AccountID, account.AccountNumber)
		}
	}
	return nil
}

// ListEntriesByReference returns the current lines recorded under a reference.
func (s *stagingService) ListEntriesByReference(ctx context.Context, reference string) ([]domain.StagedEntry, error) {
	entries, err := s.entryRepo.FindEntriesByReference(ctx, reference)
	if err != nil {
		return nil, fmt.Errorf("failed to list entries for reference %s: %w", reference, err)
	}
	return entries, nil
}
