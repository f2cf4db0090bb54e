package services

import (
	"context"

	"github.com/corebank/posting-engine/internal/core/domain"
)

// AccountProvisioner is the external account-management collaborator the
// resolver asks to create a brand-new account for a chart position and branch.
// The owner branch carries its code so implementations can embed it in the
// account number, which propagation matches branches by.
// Implementations must return apperrors.ErrNotFound when the chart position
// itself does not exist.
type AccountProvisioner interface {
	ProvisionAccount(ctx context.Context, chartPositionID string, owner domain.Branch, liaisonBranchID *string) (*domain.Account, error)
}

// AuditLogger is the fire-and-forget audit side channel. The engine calls it
// on seal and resolution; failures are logged and never affect correctness.
type AuditLogger interface {
	RecordBatchSealed(ctx context.Context, posted domain.PostedEntry)
	RecordBatchResolved(ctx context.Context, posted domain.PostedEntry)
}
