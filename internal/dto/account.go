package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/corebank/posting-engine/internal/core/domain"
)

// ResolveAccountRequest is the payload for locating or provisioning the
// concrete account behind a chart position / branch pair. The owner branch
// code ends up embedded in a freshly provisioned account number.
type ResolveAccountRequest struct {
	ChartPositionID string  `json:"chartPositionID" binding:"required"`
	OwnerBranchID   string  `json:"ownerBranchID" binding:"required"`
	OwnerBranchCode string  `json:"ownerBranchCode" binding:"required"`
	LiaisonBranchID *string `json:"liaisonBranchID,omitempty"`
}

// AccountResponse defines the data returned for an account.
type AccountResponse struct {
	AccountID       string          `json:"accountID"`
	AccountNumber   string          `json:"accountNumber"`
	BranchID        string          `json:"branchID"`
	LiaisonBranchID *string         `json:"liaisonBranchID,omitempty"`
	ChartPositionID string          `json:"chartPositionID"`
	Name            string          `json:"name"`
	IsActive        bool            `json:"isActive"`
	Balance         decimal.Decimal `json:"balance"`
}

// ToAccountResponse converts a domain.Account to its response DTO.
func ToAccountResponse(a *domain.Account) AccountResponse {
	return AccountResponse{
		AccountID:       a.AccountID,
		AccountNumber:   a.AccountNumber,
		BranchID:        a.BranchID,
		LiaisonBranchID: a.LiaisonBranchID,
		ChartPositionID: a.ChartPositionID,
		Name:            a.Name,
		IsActive:        a.IsActive,
		Balance:         a.Balance,
	}
}

// LedgerEntryResponse defines the data returned for one ledger entry.
type LedgerEntryResponse struct {
	LedgerEntryID string          `json:"ledgerEntryID"`
	AccountID     string          `json:"accountID"`
	Reference     string          `json:"reference"`
	Amount        decimal.Decimal `json:"amount"`
	Direction     string          `json:"direction"`
	PostingDate   time.Time       `json:"postingDate"`
	Narrative     string          `json:"narrative,omitempty"`
}

// ListLedgerEntriesResponse is a page of ledger entries with its continuation token.
type ListLedgerEntriesResponse struct {
	Entries   []LedgerEntryResponse `json:"entries"`
	NextToken *string               `json:"nextToken,omitempty"`
}

// ToLedgerEntryResponses converts a slice of domain.LedgerEntry.
func ToLedgerEntryResponses(entries []domain.LedgerEntry) []LedgerEntryResponse {
	responses := make([]LedgerEntryResponse, len(entries))
	for i, e := range entries {
		responses[i] = LedgerEntryResponse{
			LedgerEntryID: e.LedgerEntryID,
			AccountID:     e.AccountID,
			Reference:     e.Reference,
			Amount:        e.Amount,
			Direction:     string(e.Direction),
			PostingDate:   e.PostingDate,
			Narrative:     e.Narrative,
		}
	}
	return responses
}
