package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/corebank/posting-engine/internal/apperrors"
	"github.com/corebank/posting-engine/internal/core/domain"
	portsrepo "github.com/corebank/posting-engine/internal/core/ports/repositories"
	portssvc "github.com/corebank/posting-engine/internal/core/ports/services"
)

// accountService exposes account reads for the query surface. Balance reads
// outside the approval transaction are allowed to be eventually consistent.
type accountService struct {
	accountRepo portsrepo.AccountRepositoryFacade
	ledgerRepo  portsrepo.LedgerEntryReader
}

// NewAccountService creates a new account read service.
func NewAccountService(accountRepo portsrepo.AccountRepositoryFacade, ledgerRepo portsrepo.LedgerEntryReader) portssvc.AccountSvcFacade {
	return &accountService{
		accountRepo: accountRepo,
		ledgerRepo:  ledgerRepo,
	}
}

var _ portssvc.AccountSvcFacade = (*accountService)(nil)

func (s *accountService) GetAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	account, err := s.accountRepo.FindAccountByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: account %s", apperrors.ErrNotFound, accountID)
		}
		return nil, fmt.Errorf("failed to find account %s: %w", accountID, err)
	}
	return account, nil
}

func (s *accountService) ListLedgerEntries(ctx context.Context, accountID string, limit int, nextToken *string) ([]domain.LedgerEntry, *string, error) {
	if limit <= 0 {
		limit = 20
	}
	entries, next, err := s.ledgerRepo.ListLedgerEntriesByAccountID(ctx, accountID, limit, nextToken)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list ledger entries for account %s: %w", accountID, err)
	}
	return entries, next, nil
}
