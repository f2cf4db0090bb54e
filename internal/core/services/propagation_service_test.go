package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/corebank/posting-engine/internal/apperrors"
	"github.com/corebank/posting-engine/internal/core/domain"
	portssvc "github.com/corebank/posting-engine/internal/core/ports/services"
	"github.com/corebank/posting-engine/internal/core/services"
)

type PropagationServiceTestSuite struct {
	suite.Suite
	mockRuleRepo    *MockEventRuleReader
	mockAccountRepo *MockAccountRepository
	mockResolver    *MockResolverService
	mockStaging     *MockStagingService
	service         portssvc.PropagationSvcFacade
	actingBranch    domain.Branch
	branchA         domain.Branch
	branchB         domain.Branch
	creatorID       string
}

func (suite *PropagationServiceTestSuite) SetupTest() {
	suite.mockRuleRepo = new(MockEventRuleReader)
	suite.mockAccountRepo = new(MockAccountRepository)
	suite.mockResolver = new(MockResolverService)
	suite.mockStaging = new(MockStagingService)
	suite.service = services.NewPropagationService(suite.mockRuleRepo, suite.mockAccountRepo, suite.mockResolver, suite.mockStaging)

	suite.actingBranch = domain.Branch{BranchID: uuid.NewString(), Code: "HQ01"}
	suite.branchA = domain.Branch{BranchID: uuid.NewString(), Code: "BR01"}
	suite.branchB = domain.Branch{BranchID: uuid.NewString(), Code: "BR02"}
	suite.creatorID = uuid.NewString()
}

// sourceFixture builds one source line per branch, each against an account
// whose number carries the branch code.
func (suite *PropagationServiceTestSuite) sourceFixture(branches ...domain.Branch) ([]domain.StagedEntry, map[string]domain.Account) {
	entries := make([]domain.StagedEntry, 0, len(branches))
	accounts := make(map[string]domain.Account, len(branches))
	for i, b := range branches {
		acc := domain.Account{
			AccountID:     uuid.NewString(),
			AccountNumber: "4001-" + b.Code,
			BranchID:      suite.actingBranch.BranchID,
			IsActive:      true,
		}
		accounts[acc.AccountID] = acc
		entries = append(entries, domain.StagedEntry{
			EntryID:   uuid.NewString(),
			AccountID: acc.AccountID,
			Amount:    decimal.NewFromInt(int64(100 * (i + 1))),
			Direction: domain.Credit,
			Reference: "REF-COLLECT-001",
		})
	}
	return entries, accounts
}

func settlementRule(eventCode string, next *string) *domain.AccountingEventRule {
	return &domain.AccountingEventRule{
		EventCode:     eventCode,
		Description:   "branch settlement",
		ChainEntry:    next != nil,
		NextEventCode: next,
		Rules: []domain.AccountingRule{
			{RuleID: uuid.NewString(), EventCode: eventCode, ChartPositionID: "LIAISON_DEBIT", Direction: domain.Debit},
			{RuleID: uuid.NewString(), EventCode: eventCode, ChartPositionID: "LIAISON_CREDIT", Direction: domain.Credit},
		},
	}
}

func (suite *PropagationServiceTestSuite) expandInput(entries []domain.StagedEntry, branches ...domain.Branch) portssvc.ExpandInput {
	return portssvc.ExpandInput{
		SourceEntries: entries,
		EventCode:     "BRANCH_SETTLEMENT",
		Branches:      branches,
		ActingBranch:  suite.actingBranch,
		CreatorID:     suite.creatorID,
		PostingDate:   time.Now().UTC(),
	}
}

func (suite *PropagationServiceTestSuite) stubResolverAndStaging() {
	liaisonAccount := &domain.Account{AccountID: uuid.NewString(), IsActive: true}
	suite.mockResolver.On("ResolveAccount", mock.Anything, mock.AnythingOfType("string"), mock.AnythingOfType("domain.Branch"), mock.AnythingOfType("*string")).Return(liaisonAccount, nil)
	suite.mockStaging.On("StageEntry", mock.Anything, mock.AnythingOfType("services.StageEntryInput")).
		Return(&domain.StagedEntry{EntryID: uuid.NewString(), Source: domain.SourceSystem}, nil)
}

func (suite *PropagationServiceTestSuite) TestExpand_TwoBranches() {
	ctx := context.Background()
	entries, accounts := suite.sourceFixture(suite.branchA, suite.branchB)
	input := suite.expandInput(entries, suite.branchA, suite.branchB)

	suite.mockAccountRepo.On("FindAccountsByIDs", ctx, mock.AnythingOfType("[]string")).Return(accounts, nil).Once()
	suite.mockRuleRepo.On("FindEventRuleByCode", ctx, "BRANCH_SETTLEMENT").Return(settlementRule("BRANCH_SETTLEMENT", nil), nil).Twice()

	var stagedInputs []portssvc.StageEntryInput
	liaisonAccount := &domain.Account{AccountID: uuid.NewString(), IsActive: true}
	suite.mockResolver.On("ResolveAccount", ctx, mock.AnythingOfType("string"), mock.AnythingOfType("domain.Branch"), mock.AnythingOfType("*string")).Return(liaisonAccount, nil)
	suite.mockStaging.On("StageEntry", ctx, mock.AnythingOfType("services.StageEntryInput")).
		Run(func(args mock.Arguments) {
			stagedInputs = append(stagedInputs, args.Get(1).(portssvc.StageEntryInput))
		}).
		Return(&domain.StagedEntry{EntryID: uuid.NewString(), Source: domain.SourceSystem}, nil)

	expansions, err := suite.service.ExpandAcrossBranches(ctx, input)

	suite.Require().NoError(err)
	suite.Require().Len(expansions, 2)
	suite.Equal("REF-COLLECT-001-BR01", expansions[0].Reference)
	suite.Equal("REF-COLLECT-001-BR02", expansions[1].Reference)
	suite.Len(expansions[0].Entries, 2)
	suite.Len(expansions[1].Entries, 2)

	// Each branch posts its own share, taken from the matching source line.
	suite.Require().Len(stagedInputs, 4)
	suite.True(stagedInputs[0].Amount.Equal(decimal.NewFromInt(100)))
	suite.True(stagedInputs[2].Amount.Equal(decimal.NewFromInt(200)))
	for _, in := range stagedInputs {
		suite.Equal(domain.SourceSystem, in.Source)
		suite.Equal(suite.creatorID, in.CreatorID)
	}
}

func (suite *PropagationServiceTestSuite) TestExpand_ChainedEventRules() {
	ctx := context.Background()
	entries, accounts := suite.sourceFixture(suite.branchA)
	input := suite.expandInput(entries, suite.branchA)

	next := "LIAISON_MIRROR"
	suite.mockAccountRepo.On("FindAccountsByIDs", ctx, mock.AnythingOfType("[]string")).Return(accounts, nil).Once()
	suite.mockRuleRepo.On("FindEventRuleByCode", ctx, "BRANCH_SETTLEMENT").Return(settlementRule("BRANCH_SETTLEMENT", &next), nil).Once()
	suite.mockRuleRepo.On("FindEventRuleByCode", ctx, "LIAISON_MIRROR").Return(settlementRule("LIAISON_MIRROR", nil), nil).Once()
	suite.stubResolverAndStaging()

	expansions, err := suite.service.ExpandAcrossBranches(ctx, input)

	suite.Require().NoError(err)
	suite.Require().Len(expansions, 1)
	// Two rules per event, two chained events.
	suite.Len(expansions[0].Entries, 4)
	suite.mockRuleRepo.AssertExpectations(suite.T())
}

func (suite *PropagationServiceTestSuite) TestExpand_RuleCycle() {
	ctx := context.Background()
	entries, accounts := suite.sourceFixture(suite.branchA)
	input := suite.expandInput(entries, suite.branchA)

	self := "BRANCH_SETTLEMENT"
	suite.mockAccountRepo.On("FindAccountsByIDs", ctx, mock.AnythingOfType("[]string")).Return(accounts, nil).Once()
	suite.mockRuleRepo.On("FindEventRuleByCode", ctx, "BRANCH_SETTLEMENT").Return(settlementRule("BRANCH_SETTLEMENT", &self), nil).Once()
	suite.stubResolverAndStaging()

	_, err := suite.service.ExpandAcrossBranches(ctx, input)

	suite.Require().Error(err)
	suite.ErrorIs(err, services.ErrRuleCycle)
}

func (suite *PropagationServiceTestSuite) TestExpand_NoSourceEntries() {
	ctx := context.Background()
	input := suite.expandInput(nil, suite.branchA)

	_, err := suite.service.ExpandAcrossBranches(ctx, input)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.ErrorIs(err, services.ErrNoSourceEntries)
}

func (suite *PropagationServiceTestSuite) TestExpand_NoBranches() {
	ctx := context.Background()
	entries, _ := suite.sourceFixture(suite.branchA)
	input := suite.expandInput(entries)

	_, err := suite.service.ExpandAcrossBranches(ctx, input)

	suite.Require().Error(err)
	suite.ErrorIs(err, services.ErrNoBranches)
}

// A branch with no matching source line is an explicit failure, never a
// silent zero posting.
func (suite *PropagationServiceTestSuite) TestExpand_BranchAmountMissing() {
	ctx := context.Background()
	entries, accounts := suite.sourceFixture(suite.branchA)
	input := suite.expandInput(entries, suite.branchA, suite.branchB)

	suite.mockAccountRepo.On("FindAccountsByIDs", ctx, mock.AnythingOfType("[]string")).Return(accounts, nil).Once()
	suite.mockRuleRepo.On("FindEventRuleByCode", ctx, "BRANCH_SETTLEMENT").Return(settlementRule("BRANCH_SETTLEMENT", nil), nil).Maybe()
	suite.stubResolverAndStaging()

	_, err := suite.service.ExpandAcrossBranches(ctx, input)

	suite.Require().Error(err)
	suite.ErrorIs(err, services.ErrAmountNotFound)
	suite.Contains(err.Error(), suite.branchB.Code)
}

func TestPropagationServiceTestSuite(t *testing.T) {
	suite.Run(t, new(PropagationServiceTestSuite))
}
