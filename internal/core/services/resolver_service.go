package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/corebank/posting-engine/internal/apperrors"
	"github.com/corebank/posting-engine/internal/core/domain"
	portsrepo "github.com/corebank/posting-engine/internal/core/ports/repositories"
	portssvc "github.com/corebank/posting-engine/internal/core/ports/services"
	"github.com/corebank/posting-engine/internal/middleware"
)

// resolverService finds or provisions the concrete account behind a chart
// position and branch pair.
type resolverService struct {
	accountRepo portsrepo.AccountRepositoryFacade
	provisioner portssvc.AccountProvisioner
}

// NewResolverService creates a new account resolver.
func NewResolverService(accountRepo portsrepo.AccountRepositoryFacade, provisioner portssvc.AccountProvisioner) portssvc.AccountResolverSvcFacade {
	return &resolverService{
		accountRepo: accountRepo,
		provisioner: provisioner,
	}
}

var _ portssvc.AccountResolverSvcFacade = (*resolverService)(nil)

// ResolveAccount returns exactly one account for the triple, walking the
// resolution ladder: exact liaison match, then the branch's plain account,
// then provisioning a new one through the external collaborator. The store's
// unique index on the triple keeps repeated calls idempotent.
func (s *resolverService) ResolveAccount(ctx context.Context, chartPositionID string, owner domain.Branch, liaisonBranchID *string) (*domain.Account, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if liaisonBranchID != nil {
		account, err := s.accountRepo.FindAccountByChartPosition(ctx, chartPositionID, owner.BranchID, liaisonBranchID)
		if err == nil {
			return account, nil
		}
		if !errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("failed to resolve liaison account for chart position %s: %w", chartPositionID, err)
		}
	}

	account, err := s.accountRepo.FindAccountByChartPosition(ctx, chartPositionID, owner.BranchID, nil)
	if err == nil {
		return account, nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, fmt.Errorf("failed to resolve account for chart position %s: %w", chartPositionID, err)
	}

	// Nothing to reuse; ask account management for a fresh account. The
	// provisioner reports NotFound when the chart position itself is unknown.
	account, err = s.provisioner.ProvisionAccount(ctx, chartPositionID, owner, liaisonBranchID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: chart position %s", apperrors.ErrNotFound, chartPositionID)
		}
		logger.Error("Account provisioning failed",
			slog.String("chart_position_id", chartPositionID),
			slog.String("branch_id", owner.BranchID),
			slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to provision account for chart position %s: %w", chartPositionID, err)
	}

	if err := s.accountRepo.SaveAccount(ctx, *account); err != nil {
		if errors.Is(err, apperrors.ErrDuplicate) {
			// A concurrent resolve won the race; reuse its account.
			return s.accountRepo.FindAccountByChartPosition(ctx, chartPositionID, owner.BranchID, liaisonBranchID)
		}
		return nil, fmt.Errorf("failed to save provisioned account: %w", err)
	}

	logger.Info("Account provisioned",
		slog.String("account_id", account.AccountID),
		slog.String("chart_position_id", chartPositionID),
		slog.String("branch_id", owner.BranchID))
	return account, nil
}
