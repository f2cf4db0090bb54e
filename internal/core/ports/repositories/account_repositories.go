package repositories

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/corebank/posting-engine/internal/core/domain"
)

// AccountReader defines read operations for account data.
type AccountReader interface {
	// FindAccountByID retrieves a single account by its unique identifier.
	FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error)

	// FindAccountsByIDs retrieves multiple accounts keyed by account ID.
	FindAccountsByIDs(ctx context.Context, accountIDs []string) (map[string]domain.Account, error)

	// FindAccountByChartPosition resolves an account for a chart position and
	// owning branch. When liaisonBranchID is non-nil only accounts with that
	// exact liaison are matched; when nil, only accounts without a liaison.
	FindAccountByChartPosition(ctx context.Context, chartPositionID, branchID string, liaisonBranchID *string) (*domain.Account, error)
}

// AccountWriter defines write operations for account data.
type AccountWriter interface {
	// SaveAccount inserts a newly provisioned account.
	SaveAccount(ctx context.Context, account domain.Account) error
}

// AccountTxOps are account operations that must run inside an open pgx transaction.
type AccountTxOps interface {
	// FindAccountsByIDsForUpdate locks the account rows and returns their current state.
	FindAccountsByIDsForUpdate(ctx context.Context, tx pgx.Tx, accountIDs []string) (map[string]domain.Account, error)

	// UpdateAccountBalancesInTx applies signed balance deltas to the locked accounts.
	UpdateAccountBalancesInTx(ctx context.Context, tx pgx.Tx, balanceChanges map[string]decimal.Decimal, userID string, now time.Time) error
}

// AccountRepositoryFacade combines all account repository interfaces.
type AccountRepositoryFacade interface {
	AccountReader
	AccountWriter
	AccountTxOps
}
