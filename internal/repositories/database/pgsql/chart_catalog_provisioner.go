package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/corebank/posting-engine/internal/apperrors"
	"github.com/corebank/posting-engine/internal/core/domain"
	portssvc "github.com/corebank/posting-engine/internal/core/ports/services"
)

// PgxChartCatalogProvisioner provisions accounts from the chart_positions
// catalog table. It stands in for the account-management system when postings
// run against the local catalog.
type PgxChartCatalogProvisioner struct {
	BaseRepository
}

// NewChartCatalogProvisioner creates the catalog backed provisioner.
func NewChartCatalogProvisioner(pool *pgxpool.Pool) portssvc.AccountProvisioner {
	return &PgxChartCatalogProvisioner{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portssvc.AccountProvisioner = (*PgxChartCatalogProvisioner)(nil)

// settlementAccountNumber builds the account number for a provisioned account.
// The owner branch code goes into the number because branch expansion matches
// source lines to branches by code substring.
func settlementAccountNumber(prefix string, owner domain.Branch, liaisonBranchID *string) string {
	number := fmt.Sprintf("%s-%s", prefix, owner.Code)
	if liaisonBranchID != nil {
		number = fmt.Sprintf("%s-%s", number, *liaisonBranchID)
	}
	return number
}

// ProvisionAccount materializes a fresh account for the chart position and
// branch pair. Returns apperrors.ErrNotFound when the chart position is not
// in the catalog, so callers can distinguish bad input from infrastructure
// failures.
func (r *PgxChartCatalogProvisioner) ProvisionAccount(ctx context.Context, chartPositionID string, owner domain.Branch, liaisonBranchID *string) (*domain.Account, error) {
	query := `
		SELECT chart_position_id, name, account_number_prefix
		FROM chart_positions
		WHERE chart_position_id = $1;
	`
	var (
		catalogID    string
		name         string
		numberPrefix string
	)
	err := r.Pool.QueryRow(ctx, query, chartPositionID).Scan(&catalogID, &name, &numberPrefix)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: chart position %s", apperrors.ErrNotFound, chartPositionID)
		}
		return nil, fmt.Errorf("failed to load chart position %s: %w", chartPositionID, err)
	}

	number := settlementAccountNumber(numberPrefix, owner, liaisonBranchID)
	accountName := fmt.Sprintf("%s / %s", name, owner.Code)
	if liaisonBranchID != nil {
		accountName = fmt.Sprintf("%s (liaison %s)", accountName, *liaisonBranchID)
	}

	now := time.Now().UTC()
	return &domain.Account{
		AccountID:       uuid.NewString(),
		AccountNumber:   number,
		BranchID:        owner.BranchID,
		LiaisonBranchID: liaisonBranchID,
		ChartPositionID: catalogID,
		Name:            accountName,
		IsActive:        true,
		Balance:         decimal.Zero,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     "account-provisioner",
			LastUpdatedAt: now,
			LastUpdatedBy: "account-provisioner",
		},
	}, nil
}
