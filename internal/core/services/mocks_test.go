package services_test

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"github.com/corebank/posting-engine/internal/core/domain"
	portsrepo "github.com/corebank/posting-engine/internal/core/ports/repositories"
	portssvc "github.com/corebank/posting-engine/internal/core/ports/services"
)

// --- Mock AccountRepository ---

type MockAccountRepository struct {
	mock.Mock
}

var _ portsrepo.AccountRepositoryFacade = (*MockAccountRepository)(nil)

func (m *MockAccountRepository) FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountRepository) FindAccountsByIDs(ctx context.Context, accountIDs []string) (map[string]domain.Account, error) {
	args := m.Called(ctx, accountIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]domain.Account), args.Error(1)
}

func (m *MockAccountRepository) FindAccountByChartPosition(ctx context.Context, chartPositionID, branchID string, liaisonBranchID *string) (*domain.Account, error) {
	args := m.Called(ctx, chartPositionID, branchID, liaisonBranchID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountRepository) SaveAccount(ctx context.Context, account domain.Account) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

func (m *MockAccountRepository) FindAccountsByIDsForUpdate(ctx context.Context, tx pgx.Tx, accountIDs []string) (map[string]domain.Account, error) {
	args := m.Called(ctx, tx, accountIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]domain.Account), args.Error(1)
}

func (m *MockAccountRepository) UpdateAccountBalancesInTx(ctx context.Context, tx pgx.Tx, balanceChanges map[string]decimal.Decimal, userID string, now time.Time) error {
	args := m.Called(ctx, tx, balanceChanges, userID, now)
	return args.Error(0)
}

// --- Mock StagedEntryRepository ---

type MockStagedEntryRepository struct {
	mock.Mock
}

var _ portsrepo.StagedEntryRepositoryFacade = (*MockStagedEntryRepository)(nil)

func (m *MockStagedEntryRepository) FindStagedEntries(ctx context.Context, reference, creatorID, branchID string) ([]domain.StagedEntry, error) {
	args := m.Called(ctx, reference, creatorID, branchID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.StagedEntry), args.Error(1)
}

func (m *MockStagedEntryRepository) FindEntriesByReference(ctx context.Context, reference string) ([]domain.StagedEntry, error) {
	args := m.Called(ctx, reference)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.StagedEntry), args.Error(1)
}

func (m *MockStagedEntryRepository) FindSealedEntries(ctx context.Context, reference, creatorID, branchID string) ([]domain.StagedEntry, error) {
	args := m.Called(ctx, reference, creatorID, branchID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.StagedEntry), args.Error(1)
}

func (m *MockStagedEntryRepository) SaveStagedEntry(ctx context.Context, entry domain.StagedEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

// --- Mock PostedEntryRepository ---

type MockPostedEntryRepository struct {
	mock.Mock
}

var _ portsrepo.PostedEntryRepositoryFacade = (*MockPostedEntryRepository)(nil)

func (m *MockPostedEntryRepository) FindPostedEntryByReference(ctx context.Context, reference string) (*domain.PostedEntry, error) {
	args := m.Called(ctx, reference)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PostedEntry), args.Error(1)
}

func (m *MockPostedEntryRepository) SealBatch(ctx context.Context, posted domain.PostedEntry, entryIDs []string) error {
	args := m.Called(ctx, posted, entryIDs)
	return args.Error(0)
}

func (m *MockPostedEntryRepository) ApplyApproval(ctx context.Context, posted domain.PostedEntry, entryIDs []string, balanceChanges map[string]decimal.Decimal, ledgerEntries []domain.LedgerEntry) error {
	args := m.Called(ctx, posted, entryIDs, balanceChanges, ledgerEntries)
	return args.Error(0)
}

func (m *MockPostedEntryRepository) ApplyRejection(ctx context.Context, posted domain.PostedEntry) error {
	args := m.Called(ctx, posted)
	return args.Error(0)
}

// --- Mock LedgerEntryReader ---

type MockLedgerEntryReader struct {
	mock.Mock
}

var _ portsrepo.LedgerEntryReader = (*MockLedgerEntryReader)(nil)

func (m *MockLedgerEntryReader) ListLedgerEntriesByAccountID(ctx context.Context, accountID string, limit int, nextToken *string) ([]domain.LedgerEntry, *string, error) {
	args := m.Called(ctx, accountID, limit, nextToken)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	var returnedNextToken *string
	if args.Get(1) != nil {
		tokenVal := args.Get(1).(string)
		returnedNextToken = &tokenVal
	}
	return args.Get(0).([]domain.LedgerEntry), returnedNextToken, args.Error(2)
}

func (m *MockLedgerEntryReader) FindLedgerEntriesByReference(ctx context.Context, reference string) ([]domain.LedgerEntry, error) {
	args := m.Called(ctx, reference)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.LedgerEntry), args.Error(1)
}

// --- Mock EventRuleReader ---

type MockEventRuleReader struct {
	mock.Mock
}

var _ portsrepo.EventRuleReader = (*MockEventRuleReader)(nil)

func (m *MockEventRuleReader) FindEventRuleByCode(ctx context.Context, eventCode string) (*domain.AccountingEventRule, error) {
	args := m.Called(ctx, eventCode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AccountingEventRule), args.Error(1)
}

func (m *MockEventRuleReader) FindEventCodesByChartPosition(ctx context.Context, chartPositionID string) ([]string, error) {
	args := m.Called(ctx, chartPositionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

// --- Mock AccountProvisioner ---

type MockAccountProvisioner struct {
	mock.Mock
}

var _ portssvc.AccountProvisioner = (*MockAccountProvisioner)(nil)

func (m *MockAccountProvisioner) ProvisionAccount(ctx context.Context, chartPositionID string, owner domain.Branch, liaisonBranchID *string) (*domain.Account, error) {
	args := m.Called(ctx, chartPositionID, owner, liaisonBranchID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

// --- Mock AuditLogger ---

type MockAuditLogger struct {
	mock.Mock
}

var _ portssvc.AuditLogger = (*MockAuditLogger)(nil)

func (m *MockAuditLogger) RecordBatchSealed(ctx context.Context, posted domain.PostedEntry) {
	m.Called(ctx, posted)
}

func (m *MockAuditLogger) RecordBatchResolved(ctx context.Context, posted domain.PostedEntry) {
	m.Called(ctx, posted)
}

// --- Mock StagingSvcFacade (as used by the propagation service) ---

type MockStagingService struct {
	mock.Mock
}

var _ portssvc.StagingSvcFacade = (*MockStagingService)(nil)

func (m *MockStagingService) StageEntry(ctx context.Context, input portssvc.StageEntryInput) (*domain.StagedEntry, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.StagedEntry), args.Error(1)
}

func (m *MockStagingService) ListEntriesByReference(ctx context.Context, reference string) ([]domain.StagedEntry, error) {
	args := m.Called(ctx, reference)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.StagedEntry), args.Error(1)
}

// --- Mock AccountResolverSvcFacade (as used by the propagation service) ---

type MockResolverService struct {
	mock.Mock
}

var _ portssvc.AccountResolverSvcFacade = (*MockResolverService)(nil)

func (m *MockResolverService) ResolveAccount(ctx context.Context, chartPositionID string, owner domain.Branch, liaisonBranchID *string) (*domain.Account, error) {
	args := m.Called(ctx, chartPositionID, owner, liaisonBranchID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}
