package domain

import (
	"github.com/shopspring/decimal"
)

// EntryDirection indicates whether an entry line is a Debit or a Credit.
type EntryDirection string

const (
	Debit  EntryDirection = "DEBIT"
	Credit EntryDirection = "CREDIT"
)

// EntrySource distinguishes lines typed in by a user from lines generated by the system.
type EntrySource string

const (
	SourceUser   EntrySource = "USER"
	SourceSystem EntrySource = "SYSTEM"
)

// StagedEntryStatus tracks a staged line through the posting pipeline.
type StagedEntryStatus string

const (
	Staged      StagedEntryStatus = "STAGED"       // freely correctable
	UnderReview StagedEntryStatus = "UNDER_REVIEW" // sealed into a batch, immutable
)

// StagedEntry is one proposed ledger movement awaiting batching and approval.
// Lines sharing a Reference are sealed together into a single PostedEntry.
type StagedEntry struct {
	EntryID   string            `json:"entryID"` // Primary Key (UUID)
	AccountID string            `json:"accountID"`
	Amount    decimal.Decimal   `json:"amount"` // Always positive; Direction carries the sign
	Direction EntryDirection    `json:"direction"`
	Reference string            `json:"reference"` // Groups lines into one batch
	EventCode string            `json:"eventCode"` // Business event that produced the line
	Source    EntrySource       `json:"source"`
	Status    StagedEntryStatus `json:"status"`
	BranchID  string            `json:"branchID"`
	Narrative string            `json:"narrative"`
	Deleted   bool              `json:"deleted"`
	AuditFields
}

// SignedAmount returns the balance delta this line applies on approval:
// credits increase the running balance, debits decrease it. The same
// convention is used everywhere, regardless of the account's chart category.
func (e *StagedEntry) SignedAmount() decimal.Decimal {
	if e.Direction == Debit {
		return e.Amount.Neg()
	}
	return e.Amount
}

// SumByDirection totals the given lines per direction.
func SumByDirection(entries []StagedEntry) (debits, credits decimal.Decimal) {
	debits = decimal.Zero
	credits = decimal.Zero
	for _, e := range entries {
		if e.Direction == Debit {
			debits = debits.Add(e.Amount)
		} else {
			credits = credits.Add(e.Amount)
		}
	}
	return debits, credits
}
