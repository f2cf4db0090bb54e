package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/corebank/posting-engine/internal/apperrors"
	"github.com/corebank/posting-engine/internal/core/domain"
	portssvc "github.com/corebank/posting-engine/internal/core/ports/services"
	"github.com/corebank/posting-engine/internal/core/services"
)

type ApprovalServiceTestSuite struct {
	suite.Suite
	mockEntryRepo  *MockStagedEntryRepository
	mockPostedRepo *MockPostedEntryRepository
	mockAudit      *MockAuditLogger
	service        portssvc.ApprovalSvcFacade
	makerID        string
	checkerID      string
	reference      string
	debitAccount   string
	creditAccount  string
}

func (suite *ApprovalServiceTestSuite) SetupTest() {
	suite.mockEntryRepo = new(MockStagedEntryRepository)
	suite.mockPostedRepo = new(MockPostedEntryRepository)
	suite.mockAudit = new(MockAuditLogger)
	suite.service = services.NewApprovalService(suite.mockEntryRepo, suite.mockPostedRepo, suite.mockAudit)

	suite.makerID = uuid.NewString()
	suite.checkerID = uuid.NewString()
	suite.reference = "REF-APPROVE-001"
	suite.debitAccount = uuid.NewString()
	suite.creditAccount = uuid.NewString()
}

func (suite *ApprovalServiceTestSuite) pendingBatch() *domain.PostedEntry {
	return &domain.PostedEntry{
		Reference:   suite.reference,
		TotalDebit:  decimal.NewFromInt(500),
		Description: "interbranch settlement",
		Source:      domain.SourceUser,
		Status:      domain.Pending,
		BranchID:    uuid.NewString(),
		EntryDetail: []byte(`[]`),
		AuditFields: domain.AuditFields{CreatedBy: suite.makerID},
	}
}

func (suite *ApprovalServiceTestSuite) batchEntries() []domain.StagedEntry {
	return []domain.StagedEntry{
		{
			EntryID:   uuid.NewString(),
			AccountID: suite.debitAccount,
			Amount:    decimal.NewFromInt(500),
			Direction: domain.Debit,
			Reference: suite.reference,
			Status:    domain.UnderReview,
			Narrative: "cash leg",
		},
		{
			EntryID:   uuid.NewString(),
			AccountID: suite.creditAccount,
			Amount:    decimal.NewFromInt(500),
			Direction: domain.Credit,
			Reference: suite.reference,
			Status:    domain.UnderReview,
		},
	}
}

func (suite *ApprovalServiceTestSuite) resolveInput(approve bool) portssvc.ResolveInput {
	return portssvc.ResolveInput{
		Reference:   suite.reference,
		ApproverID:  suite.checkerID,
		Approve:     approve,
		PostingDate: time.Now().UTC(),
	}
}

func (suite *ApprovalServiceTestSuite) TestResolve_ApproveSuccess() {
	ctx := context.Background()
	batch := suite.pendingBatch()
	entries := suite.batchEntries()

	suite.mockPostedRepo.On("FindPostedEntryByReference", ctx, suite.reference).Return(batch, nil).Once()
	suite.mockEntryRepo.On("FindSealedEntries", ctx, suite.reference, suite.makerID, batch.BranchID).Return(entries, nil).Once()

	var capturedChanges map[string]decimal.Decimal
	var capturedLedger []domain.LedgerEntry
	suite.mockPostedRepo.On("ApplyApproval", ctx, mock.AnythingOfType("domain.PostedEntry"), mock.AnythingOfType("[]string"), mock.AnythingOfType("map[string]decimal.Decimal"), mock.AnythingOfType("[]domain.LedgerEntry")).
		Run(func(args mock.Arguments) {
			capturedChanges = args.Get(3).(map[string]decimal.Decimal)
			capturedLedger = args.Get(4).([]domain.LedgerEntry)
		}).Return(nil).Once()
	suite.mockAudit.On("RecordBatchResolved", ctx, mock.AnythingOfType("domain.PostedEntry")).Once()

	resolved, err := suite.service.Resolve(ctx, suite.resolveInput(true))

	suite.Require().NoError(err)
	suite.Equal(domain.Approved, resolved.Status)
	suite.True(resolved.Validated)
	suite.Require().NotNil(resolved.ApprovedBy)
	suite.Equal(suite.checkerID, *resolved.ApprovedBy)
	suite.NotNil(resolved.ApprovedAt)

	// Debits decrease, credits increase; one ledger entry per line.
	suite.True(capturedChanges[suite.debitAccount].Equal(decimal.NewFromInt(-500)))
	suite.True(capturedChanges[suite.creditAccount].Equal(decimal.NewFromInt(500)))
	suite.Require().Len(capturedLedger, 2)
	suite.Equal("cash leg", capturedLedger[0].Narrative)
	// Narrative falls back to the batch description when the line has none.
	suite.Equal(batch.Description, capturedLedger[1].Narrative)

	suite.mockPostedRepo.AssertExpectations(suite.T())
	suite.mockAudit.AssertExpectations(suite.T())
}

// Lines staged under the same reference after the seal, even balanced ones
// from another user, are not part of the batch. Resolution must work from the
// sealed membership alone so a foreign account never receives a delta.
func (suite *ApprovalServiceTestSuite) TestResolve_IgnoresLinesStagedAfterSeal() {
	ctx := context.Background()
	batch := suite.pendingBatch()
	sealed := suite.batchEntries()

	strangerAccount := uuid.NewString()
	intruders := []domain.StagedEntry{
		{
			EntryID:   uuid.NewString(),
			AccountID: strangerAccount,
			Amount:    decimal.NewFromInt(100),
			Direction: domain.Debit,
			Reference: suite.reference,
			Status:    domain.Staged,
		},
		{
			EntryID:   uuid.NewString(),
			AccountID: suite.creditAccount,
			Amount:    decimal.NewFromInt(100),
			Direction: domain.Credit,
			Reference: suite.reference,
			Status:    domain.Staged,
		},
	}

	suite.mockPostedRepo.On("FindPostedEntryByReference", ctx, suite.reference).Return(batch, nil).Once()
	suite.mockEntryRepo.On("FindSealedEntries", ctx, suite.reference, suite.makerID, batch.BranchID).Return(sealed, nil).Once()
	suite.mockEntryRepo.On("FindEntriesByReference", ctx, suite.reference).Return(append(sealed, intruders...), nil).Maybe()

	var capturedIDs []string
	var capturedChanges map[string]decimal.Decimal
	var capturedLedger []domain.LedgerEntry
	suite.mockPostedRepo.On("ApplyApproval", ctx, mock.AnythingOfType("domain.PostedEntry"), mock.AnythingOfType("[]string"), mock.AnythingOfType("map[string]decimal.Decimal"), mock.AnythingOfType("[]domain.LedgerEntry")).
		Run(func(args mock.Arguments) {
			capturedIDs = args.Get(2).([]string)
			capturedChanges = args.Get(3).(map[string]decimal.Decimal)
			capturedLedger = args.Get(4).([]domain.LedgerEntry)
		}).Return(nil).Once()
	suite.mockAudit.On("RecordBatchResolved", ctx, mock.AnythingOfType("domain.PostedEntry")).Once()

	_, err := suite.service.Resolve(ctx, suite.resolveInput(true))

	suite.Require().NoError(err)
	suite.ElementsMatch([]string{sealed[0].EntryID, sealed[1].EntryID}, capturedIDs)
	suite.Require().Len(capturedLedger, 2)
	suite.NotContains(capturedChanges, strangerAccount)
	suite.True(capturedChanges[suite.creditAccount].Equal(decimal.NewFromInt(500)))
	suite.mockEntryRepo.AssertNotCalled(suite.T(), "FindEntriesByReference", mock.Anything, mock.Anything)
}

func (suite *ApprovalServiceTestSuite) TestResolve_RejectSuccess() {
	ctx := context.Background()
	batch := suite.pendingBatch()
	entries := suite.batchEntries()

	suite.mockPostedRepo.On("FindPostedEntryByReference", ctx, suite.reference).Return(batch, nil).Once()
	suite.mockEntryRepo.On("FindSealedEntries", ctx, suite.reference, suite.makerID, batch.BranchID).Return(entries, nil).Once()
	suite.mockPostedRepo.On("ApplyRejection", ctx, mock.AnythingOfType("domain.PostedEntry")).Return(nil).Once()
	suite.mockAudit.On("RecordBatchResolved", ctx, mock.AnythingOfType("domain.PostedEntry")).Once()

	resolved, err := suite.service.Resolve(ctx, suite.resolveInput(false))

	suite.Require().NoError(err)
	suite.Equal(domain.Rejected, resolved.Status)
	suite.Require().NotNil(resolved.ApprovedBy)
	suite.Equal(suite.checkerID, *resolved.ApprovedBy)
	suite.mockPostedRepo.AssertNotCalled(suite.T(), "ApplyApproval", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *ApprovalServiceTestSuite) TestResolve_NotFound() {
	ctx := context.Background()

	suite.mockPostedRepo.On("FindPostedEntryByReference", ctx, suite.reference).Return(nil, apperrors.ErrNotFound).Once()

	_, err := suite.service.Resolve(ctx, suite.resolveInput(true))

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrNotFound)
}

func (suite *ApprovalServiceTestSuite) TestResolve_AlreadyResolved() {
	ctx := context.Background()
	batch := suite.pendingBatch()
	batch.Status = domain.Approved

	suite.mockPostedRepo.On("FindPostedEntryByReference", ctx, suite.reference).Return(batch, nil).Once()

	_, err := suite.service.Resolve(ctx, suite.resolveInput(true))

	suite.Require().Error(err)
	suite.ErrorIs(err, services.ErrAlreadyResolved)
	suite.mockEntryRepo.AssertNotCalled(suite.T(), "FindSealedEntries", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *ApprovalServiceTestSuite) TestResolve_SelfApprovalRefused() {
	ctx := context.Background()
	batch := suite.pendingBatch()

	suite.mockPostedRepo.On("FindPostedEntryByReference", ctx, suite.reference).Return(batch, nil).Once()

	input := suite.resolveInput(true)
	input.ApproverID = suite.makerID

	_, err := suite.service.Resolve(ctx, input)

	suite.Require().Error(err)
	suite.ErrorIs(err, services.ErrSelfApproval)
	suite.mockPostedRepo.AssertNotCalled(suite.T(), "ApplyApproval", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *ApprovalServiceTestSuite) TestResolve_SkipSelfCheckForSystemPostings() {
	ctx := context.Background()
	batch := suite.pendingBatch()
	entries := suite.batchEntries()

	suite.mockPostedRepo.On("FindPostedEntryByReference", ctx, suite.reference).Return(batch, nil).Once()
	suite.mockEntryRepo.On("FindSealedEntries", ctx, suite.reference, suite.makerID, batch.BranchID).Return(entries, nil).Once()
	suite.mockPostedRepo.On("ApplyApproval", ctx, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil).Once()
	suite.mockAudit.On("RecordBatchResolved", ctx, mock.AnythingOfType("domain.PostedEntry")).Once()

	input := suite.resolveInput(true)
	input.ApproverID = suite.makerID
	input.SkipSelfCheck = true

	resolved, err := suite.service.Resolve(ctx, input)

	suite.Require().NoError(err)
	suite.Equal(domain.Approved, resolved.Status)
}

func (suite *ApprovalServiceTestSuite) TestResolve_RevalidationFailure() {
	ctx := context.Background()
	batch := suite.pendingBatch()
	entries := suite.batchEntries()
	entries[0].Amount = decimal.NewFromInt(499)

	suite.mockPostedRepo.On("FindPostedEntryByReference", ctx, suite.reference).Return(batch, nil).Once()
	suite.mockEntryRepo.On("FindSealedEntries", ctx, suite.reference, suite.makerID, batch.BranchID).Return(entries, nil).Once()

	_, err := suite.service.Resolve(ctx, suite.resolveInput(true))

	suite.Require().Error(err)
	suite.ErrorIs(err, services.ErrUnbalanced)
	suite.mockPostedRepo.AssertNotCalled(suite.T(), "ApplyApproval", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

// Two checkers race; the store accepts exactly one transition and the loser
// surfaces as already resolved.
func (suite *ApprovalServiceTestSuite) TestResolve_ConcurrentResolutionLoses() {
	ctx := context.Background()
	batch := suite.pendingBatch()
	entries := suite.batchEntries()

	suite.mockPostedRepo.On("FindPostedEntryByReference", ctx, suite.reference).Return(batch, nil).Once()
	suite.mockEntryRepo.On("FindSealedEntries", ctx, suite.reference, suite.makerID, batch.BranchID).Return(entries, nil).Once()
	suite.mockPostedRepo.On("ApplyApproval", ctx, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(apperrors.ErrConflict).Once()

	_, err := suite.service.Resolve(ctx, suite.resolveInput(true))

	suite.Require().Error(err)
	suite.ErrorIs(err, services.ErrAlreadyResolved)
	suite.mockAudit.AssertNotCalled(suite.T(), "RecordBatchResolved", mock.Anything, mock.Anything)
}

// An infrastructure failure inside the apply transaction must surface; the
// store rolls everything back so no partial balance change survives.
func (suite *ApprovalServiceTestSuite) TestResolve_ApplyFailureSurfaces() {
	ctx := context.Background()
	batch := suite.pendingBatch()
	entries := suite.batchEntries()

	suite.mockPostedRepo.On("FindPostedEntryByReference", ctx, suite.reference).Return(batch, nil).Once()
	suite.mockEntryRepo.On("FindSealedEntries", ctx, suite.reference, suite.makerID, batch.BranchID).Return(entries, nil).Once()
	suite.mockPostedRepo.On("ApplyApproval", ctx, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(assert.AnError).Once()

	_, err := suite.service.Resolve(ctx, suite.resolveInput(true))

	suite.Require().Error(err)
	suite.Contains(err.Error(), assert.AnError.Error())
	suite.mockAudit.AssertNotCalled(suite.T(), "RecordBatchResolved", mock.Anything, mock.Anything)
}

func (suite *ApprovalServiceTestSuite) TestResolve_NoEntriesLeft() {
	ctx := context.Background()
	batch := suite.pendingBatch()

	suite.mockPostedRepo.On("FindPostedEntryByReference", ctx, suite.reference).Return(batch, nil).Once()
	suite.mockEntryRepo.On("FindSealedEntries", ctx, suite.reference, suite.makerID, batch.BranchID).Return([]domain.StagedEntry{}, nil).Once()

	_, err := suite.service.Resolve(ctx, suite.resolveInput(true))

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrNotFound)
}

func TestApprovalServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ApprovalServiceTestSuite))
}
