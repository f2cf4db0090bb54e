package domain

import (
	"github.com/shopspring/decimal"
)

// Account represents a concrete ledger account attached to a chart-of-account position.
// Its balance is mutated only by batch approval, never by staging.
type Account struct {
	AccountID       string          `json:"accountID"`       // Primary Key (UUID)
	AccountNumber   string          `json:"accountNumber"`   // Human-facing number; branch code is embedded in it
	BranchID        string          `json:"branchID"`        // Owning branch
	LiaisonBranchID *string         `json:"liaisonBranchID"` // Set only for inter-branch settlement accounts
	ChartPositionID string          `json:"chartPositionID"` // FK -> chart-of-account position (external)
	Name            string          `json:"name"`
	IsActive        bool            `json:"isActive"`
	Balance         decimal.Decimal `json:"balance"` // Running balance; credit increases, debit decreases
	AuditFields
}

// IsLiaison reports whether the account exists purely for inter-branch settlement.
func (a *Account) IsLiaison() bool {
	return a.LiaisonBranchID != nil && *a.LiaisonBranchID != ""
}
