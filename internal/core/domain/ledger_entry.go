package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// LedgerEntry is an immutable, final posting written on batch approval.
// One entry is created per approved staged line; entries are never updated
// or deleted once written.
type LedgerEntry struct {
	LedgerEntryID string          `json:"ledgerEntryID"` // Primary Key (UUID)
	AccountID     string          `json:"accountID"`
	Reference     string          `json:"reference"` // FK -> the approving PostedEntry
	Amount        decimal.Decimal `json:"amount"`
	Direction     EntryDirection  `json:"direction"`
	PostingDate   time.Time       `json:"postingDate"`
	Narrative     string          `json:"narrative"`
	AuditFields
}

// ReplayBalance applies a sequence of ledger entries to an opening balance.
// A replay over all entries for an account must reproduce its running balance.
func ReplayBalance(opening decimal.Decimal, entries []LedgerEntry) decimal.Decimal {
	balance := opening
	for _, e := range entries {
		if e.Direction == Debit {
			balance = balance.Sub(e.Amount)
		} else {
			balance = balance.Add(e.Amount)
		}
	}
	return balance
}
